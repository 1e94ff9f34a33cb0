package treemap

import (
	"math"
	"slices"
	"sort"
)

// weighted is an item annotated with its effective weight and, once the
// top-level scale is known, its target area.
type weighted struct {
	item      Item
	effective float64
	area      float64
}

// Layout partitions rect among items using the squarified heuristic.
//
// The result has one block per item, ordered by descending effective weight
// (ties keep input order). Items with zero effective weight receive a
// zero-size block at the rectangle's origin. If the total effective weight is
// zero, or rect has no area, Layout returns nil.
//
// Layout is a pure function and safe for concurrent use.
func Layout(items []Item, rect Rect, mode WeightMode) []Block {
	if len(items) == 0 || rect.Empty() {
		return nil
	}

	ws := make([]weighted, len(items))
	var peak float64
	for i, it := range items {
		e := mode.Effective(it.Weight)
		ws[i] = weighted{item: it, effective: e}
		peak = math.Max(peak, e)
	}
	if peak <= 0 {
		return nil
	}

	// Weights relative to the largest keep the sum finite and non-subnormal.
	var total float64
	for _, w := range ws {
		total += w.effective / peak
	}

	sort.SliceStable(ws, func(i, j int) bool { return ws[i].effective > ws[j].effective })

	n := 0
	for i := range ws {
		ws[i].area = rect.Area() * (ws[i].effective / peak / total)
		if ws[i].area > 0 {
			n++
		}
	}

	blocks := squarify(ws[:n], rect)
	slices.Reverse(blocks)

	origin := Rect{X: rect.X, Y: rect.Y}
	for _, w := range ws[n:] {
		blocks = append(blocks, emit(w, origin))
	}
	return blocks
}

// squarify places ws into remaining and returns the placed blocks with the
// deepest row first and each row in reverse order. Every call returns its own
// slice; callers append their row to what the deeper call handed back.
//
// ws must be sorted by descending area and every area must be positive.
func squarify(ws []weighted, remaining Rect) []Block {
	switch len(ws) {
	case 0:
		return nil
	case 1:
		return []Block{emit(ws[0], remaining)}
	}

	horizontal := remaining.W >= remaining.H
	side := remaining.W
	if horizontal {
		side = remaining.H
	}

	n := rowLength(ws, side)
	row, rest := layoutRow(ws[:n], remaining, horizontal, n == len(ws))

	blocks := squarify(ws[n:], rest)
	for i := len(row) - 1; i >= 0; i-- {
		blocks = append(blocks, row[i])
	}
	return blocks
}

// rowLength returns how many leading items of ws form the next row: items are
// appended while the row's worst aspect ratio does not increase.
func rowLength(ws []weighted, side float64) int {
	sum, lo, hi := ws[0].area, ws[0].area, ws[0].area
	worst := worstRatio(sum, lo, hi, side)

	n := 1
	for n < len(ws) {
		a := ws[n].area
		nsum, nlo, nhi := sum+a, math.Min(lo, a), math.Max(hi, a)
		next := worstRatio(nsum, nlo, nhi, side)
		if next > worst {
			break
		}
		sum, lo, hi, worst = nsum, nlo, nhi, next
		n++
	}
	return n
}

// worstRatio is max(s²·max/sum², sum²/(s²·min)) for a row laid against side s.
func worstRatio(sum, lo, hi, side float64) float64 {
	s2 := side * side
	sum2 := sum * sum
	return math.Max(s2*hi/sum2, sum2/(s2*lo))
}

// WorstAspectRatio returns the worst aspect ratio of a row of the given areas
// laid out along an edge of length side. It returns +Inf for an empty row or a
// row containing a non-positive area.
func WorstAspectRatio(areas []float64, side float64) float64 {
	if len(areas) == 0 {
		return math.Inf(1)
	}
	sum, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, a := range areas {
		if a <= 0 {
			return math.Inf(1)
		}
		sum += a
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	return worstRatio(sum, lo, hi, side)
}

// layoutRow cuts a strip for row off remaining and stacks the row's items
// along it. A horizontal strip spans the full height and is rowSum/H wide;
// a vertical strip is the symmetric swap. When last is set the strip takes
// the whole remaining thickness so that the final row closes the rectangle.
func layoutRow(row []weighted, remaining Rect, horizontal, last bool) ([]Block, Rect) {
	var sum float64
	for _, w := range row {
		sum += w.area
	}

	length, extent := remaining.H, remaining.W
	if !horizontal {
		length, extent = remaining.W, remaining.H
	}

	thickness := extent
	if !last && length > 0 {
		thickness = math.Min(sum/length, extent)
	}

	start, end := remaining.Y, remaining.Y+remaining.H
	if !horizontal {
		start, end = remaining.X, remaining.X+remaining.W
	}
	near, far := remaining.X, remaining.X+thickness
	if !horizontal {
		near, far = remaining.Y, remaining.Y+thickness
	}

	blocks := make([]Block, len(row))
	lo := start
	for i, w := range row {
		hi := end
		if i < len(row)-1 && thickness > 0 {
			hi = math.Min(lo+w.area/thickness, end)
		} else if i < len(row)-1 {
			hi = lo
		}
		if horizontal {
			blocks[i] = emitEdges(w, near, lo, far, hi)
		} else {
			blocks[i] = emitEdges(w, lo, near, hi, far)
		}
		lo = hi
	}

	rest := Rect{X: remaining.X + thickness, Y: remaining.Y, W: remaining.W - thickness, H: remaining.H}
	if !horizontal {
		rest = Rect{X: remaining.X, Y: remaining.Y + thickness, W: remaining.W, H: remaining.H - thickness}
	}
	return blocks, rest
}
