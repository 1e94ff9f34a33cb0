package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments (or
// users of one Redis instance) get separate cache namespaces.
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "vidtree:api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(itemsHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutKey, opts)
}
