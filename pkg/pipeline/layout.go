package pipeline

import (
	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Layout kinds reported to observability hooks.
const (
	KindFlat         = "flat"
	KindHierarchical = "hierarchical"
)

// Compute lays out items on the canvas described by opts. It is pure and
// performs no caching; use [Runner.Generate] for memoized layouts.
//
// Flat layouts place every item directly on the canvas. Hierarchical layouts
// group items with the GroupBy key function and nest each group's items
// inside its frame.
func Compute(items []treemap.Item, opts Options) (layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}

	l := layout.Layout{
		X:            opts.X,
		Y:            opts.Y,
		Width:        opts.Width,
		Height:       opts.Height,
		Mode:         opts.WeightMode().String(),
		Hierarchical: opts.Hierarchical,
		Folder:       opts.Folder,
		Groups:       []treemap.GroupBlock{},
	}
	rect := l.Canvas()

	if opts.Hierarchical {
		key, err := catalog.KeyFuncByName(opts.GroupBy)
		if err != nil {
			return layout.Layout{}, err
		}
		margin := opts.Margin()
		h := treemap.LayoutHierarchical(items, key, rect, opts.WeightMode(), margin)
		l.GroupBy = opts.GroupBy
		l.Margin = &margin
		if h.Groups != nil {
			l.Groups = h.Groups
		}
		l.Blocks = h.Items
	} else {
		l.Blocks = treemap.Layout(items, rect, opts.WeightMode())
	}
	if l.Blocks == nil {
		l.Blocks = []treemap.Block{}
	}

	l.Stats = layout.ComputeStats(&l, len(items))
	return l, nil
}

// kind returns the hook label for the layout opts describe.
func (o *Options) kind() string {
	if o.Hierarchical {
		return KindHierarchical
	}
	return KindFlat
}
