package sink

import (
	"encoding/json"

	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact   bool
	stripMeta bool
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// WithJSONStripMeta drops item metadata (titles, tags) from the blocks.
func WithJSONStripMeta() JSONOption { return func(r *jsonRenderer) { r.stripMeta = true } }

// RenderJSON exports the layout document. The output can be read back with
// [layout.UnmarshalLayout] and rendered again without recomputing.
// It does not modify l.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	if r.stripMeta && len(l.Blocks) > 0 {
		blocks := make([]treemap.Block, len(l.Blocks))
		copy(blocks, l.Blocks)
		for i := range blocks {
			blocks[i].Meta = nil
		}
		l.Blocks = blocks
	}

	if r.compact {
		if l.Groups == nil {
			l.Groups = []treemap.GroupBlock{}
		}
		if l.Blocks == nil {
			l.Blocks = []treemap.Block{}
		}
		return json.Marshal(l)
	}
	return layout.MarshalLayout(l)
}
