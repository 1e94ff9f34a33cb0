package cache

// Keyer builds cache keys for the values the pipeline stores.
type Keyer interface {
	// LayoutKey identifies a computed layout.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies rendered output for a cached layout.
	ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout.
type LayoutKeyOpts struct {
	Mode         string  `json:"mode"`
	X            float64 `json:"x,omitempty"`
	Y            float64 `json:"y,omitempty"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Hierarchical bool    `json:"hierarchical,omitempty"`
	GroupBy      string  `json:"group_by,omitempty"`
	LabelMargin  float64 `json:"label_margin,omitempty"`
	Padding      float64 `json:"padding,omitempty"`
	Folder       string  `json:"folder,omitempty"`
}

// ArtifactKeyOpts lists every option that changes rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Title  string `json:"title,omitempty"`
	Labels bool   `json:"labels"`
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutKey, opts)
}
