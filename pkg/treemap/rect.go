package treemap

import "math"

// Item is a weighted element to be laid out.
type Item struct {
	ID     string         `json:"id"`
	Weight float64        `json:"weight"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Rect is an axis-aligned rectangle with its origin at (X, Y).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns W*H, or 0 when either side is non-positive.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Empty reports whether the rectangle has no interior.
func (r Rect) Empty() bool { return !(r.W > 0 && r.H > 0) }

// Inset shrinks r by the padding on every side and by the label strip on top.
// Negative margin values are treated as zero.
func (r Rect) Inset(m Margin) Rect {
	p := math.Max(m.Padding, 0)
	l := math.Max(m.Label, 0)
	return Rect{
		X: r.X + p,
		Y: r.Y + p + l,
		W: r.W - 2*p,
		H: r.H - 2*p - l,
	}
}

// Block is an item placed on the integer pixel grid.
type Block struct {
	Item
	Effective float64 `json:"effective"`
	Group     string  `json:"group,omitempty"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	W         int     `json:"w"`
	H         int     `json:"h"`
}

// Area returns the block's pixel area.
func (b Block) Area() int { return b.W * b.H }

// Right returns the exclusive right edge.
func (b Block) Right() int { return b.X + b.W }

// Bottom returns the exclusive bottom edge.
func (b Block) Bottom() int { return b.Y + b.H }

// CenterX returns the horizontal center point of the block.
func (b Block) CenterX() float64 { return float64(b.X) + float64(b.W)/2 }

// CenterY returns the vertical center point of the block.
func (b Block) CenterY() float64 { return float64(b.Y) + float64(b.H)/2 }

// Rect returns the block's bounds as a float rectangle.
func (b Block) Rect() Rect {
	return Rect{X: float64(b.X), Y: float64(b.Y), W: float64(b.W), H: float64(b.H)}
}

// Within reports whether the block lies inside r, allowing for the rounding
// applied at emission.
func (b Block) Within(r Rect) bool {
	return float64(b.X) >= math.Round(r.X) &&
		float64(b.Y) >= math.Round(r.Y) &&
		float64(b.Right()) <= math.Round(r.X+r.W) &&
		float64(b.Bottom()) <= math.Round(r.Y+r.H)
}

// AspectRatio returns max(W/H, H/W), or 0 for a block without area.
func (b Block) AspectRatio() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	w, h := float64(b.W), float64(b.H)
	return math.Max(w/h, h/w)
}

// Overlap returns the interior intersection area of two blocks.
func Overlap(a, b Block) int {
	w := min(a.Right(), b.Right()) - max(a.X, b.X)
	h := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// emit rounds r to the pixel grid and wraps it into a Block.
func emit(w weighted, r Rect) Block {
	return emitEdges(w, r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// emitEdges rounds each edge independently so that neighbours computed from
// the same boundary value keep sharing an edge on the grid.
func emitEdges(w weighted, x0, y0, x1, y1 float64) Block {
	x0, y0 = math.Round(x0), math.Round(y0)
	x1, y1 = math.Round(x1), math.Round(y1)
	return Block{
		Item:      w.item,
		Effective: w.effective,
		X:         int(x0),
		Y:         int(y0),
		W:         int(math.Max(x1-x0, 0)),
		H:         int(math.Max(y1-y0, 0)),
	}
}
