// Package treemap computes squarified treemap layouts.
//
// # Overview
//
// A treemap partitions a rectangle into non-overlapping sub-rectangles whose
// areas are proportional to the weights of the items they represent. This
// package implements the squarified heuristic of Bruls, Huizing, and van Wijk:
// items are sorted by weight and packed into rows along the short edge of the
// remaining space, and a row keeps growing only while doing so does not make
// its worst aspect ratio any larger. The result favors near-square tiles over
// long thin slivers.
//
// Two entry points are provided:
//
//   - [Layout]: a single-level partition of a flat item list.
//   - [LayoutHierarchical]: a two-level partition that first lays out groups
//     (for example folders) and then lays out each group's members inside the
//     group's rectangle, minus a label strip and padding.
//
// # Weights
//
// Every [Item] carries a raw weight that is never modified. The area actually
// assigned is driven by the item's effective weight, which depends on the
// [WeightMode]:
//
//   - [Linear]: the raw weight, clamped at zero.
//   - [Logarithmic]: ln(max(weight, 1)), for libraries where a handful of huge
//     files would otherwise crowd everything else out.
//
// Items with zero effective weight are kept in the output with a zero-size
// block so that callers can still account for them.
//
// # Coordinates
//
// All area arithmetic runs in float64. Coordinates are rounded to integers
// only when a [Block] is emitted, and rounding is applied to edges rather than
// to sizes, so two blocks that share an edge in float space share it exactly
// on the pixel grid as well.
//
// # Usage
//
//	items := []treemap.Item{
//	    {ID: "movies/a.mkv", Weight: 300},
//	    {ID: "movies/b.mkv", Weight: 100},
//	}
//	blocks := treemap.Layout(items, treemap.Rect{W: 400, H: 200}, treemap.Linear)
//
//	h := treemap.LayoutHierarchical(items, byFolder, treemap.Rect{W: 1200, H: 800},
//	    treemap.Logarithmic, treemap.Margin{Label: 18, Padding: 2})
//
// # Concurrency
//
// Layout calls hold no state between invocations and never share mutable data
// across recursive steps. Independent calls can run from any number of
// goroutines without coordination.
package treemap
