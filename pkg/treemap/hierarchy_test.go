package treemap

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byPrefix(it Item) string {
	k, _, _ := strings.Cut(it.ID, "/")
	return k
}

func TestLayoutHierarchicalScenario(t *testing.T) {
	items := []Item{
		{ID: "big/1", Weight: 1},
		{ID: "big/2", Weight: 1},
		{ID: "big/3", Weight: 1},
		{ID: "small/1", Weight: 1},
	}
	margin := Margin{Label: 10, Padding: 1}
	h := LayoutHierarchical(items, byPrefix, Rect{W: 100, H: 100}, Linear, margin)
	require.Len(t, h.Groups, 2)

	big, small := h.Groups[0], h.Groups[1]
	assert.Equal(t, "big", big.Key)
	assert.Equal(t, 3, big.Count)
	assert.Equal(t, 7500, big.W*big.H)
	assert.Equal(t, "small", small.Key)
	assert.Equal(t, 2500, small.W*small.H)

	assert.Equal(t, Rect{X: 1, Y: 11, W: 73, H: 88}, big.Inner)

	var bigBlocks []Block
	for _, b := range h.Items {
		if b.Group == "big" {
			bigBlocks = append(bigBlocks, b)
		}
	}
	require.Len(t, bigBlocks, 3)

	total := 0
	for i, b := range bigBlocks {
		assert.True(t, b.Within(big.Inner), b.ID)
		total += b.Area()
		for _, o := range bigBlocks[i+1:] {
			assert.Zero(t, Overlap(b, o))
		}
	}
	assert.InDelta(t, big.Inner.Area(), float64(total), 3)
}

func TestLayoutHierarchicalSingleMemberFillsInner(t *testing.T) {
	items := []Item{{ID: "big/1", Weight: 3}, {ID: "small/1", Weight: 1}}
	h := LayoutHierarchical(items, byPrefix, Rect{W: 100, H: 100}, Linear, Margin{Label: 10, Padding: 1})
	require.Len(t, h.Groups, 2)
	require.Len(t, h.Items, 2)

	for _, b := range h.Items {
		for _, g := range h.Groups {
			if g.Key != b.Group {
				continue
			}
			assert.Equal(t, int(g.Inner.X), b.X)
			assert.Equal(t, int(g.Inner.Y), b.Y)
			assert.Equal(t, int(g.Inner.W), b.W)
			assert.Equal(t, int(g.Inner.H), b.H)
		}
	}
}

func TestLayoutHierarchicalContainment(t *testing.T) {
	var items []Item
	for g := 0; g < 12; g++ {
		for i := 0; i <= g; i++ {
			items = append(items, Item{
				ID:     fmt.Sprintf("folder%02d/file%02d.mp4", g, i),
				Weight: float64((g+1)*(i+3)) * 10,
			})
		}
	}
	rect := Rect{X: 4, Y: 6, W: 1200, H: 800}
	margin := Margin{Label: 18, Padding: 2}

	for _, mode := range []WeightMode{Linear, Logarithmic} {
		t.Run(mode.String(), func(t *testing.T) {
			h := LayoutHierarchical(items, byPrefix, rect, mode, margin)
			require.Len(t, h.Groups, 12)

			groups := make(map[string]GroupBlock, len(h.Groups))
			groupArea := 0
			for _, g := range h.Groups {
				groups[g.Key] = g
				groupArea += g.W * g.H
				assert.True(t, Block{X: g.X, Y: g.Y, W: g.W, H: g.H}.Within(rect), g.Key)
			}
			assert.InDelta(t, rect.Area(), float64(groupArea), 12)

			for _, b := range h.Items {
				g, ok := groups[b.Group]
				require.True(t, ok, "item %s has unknown group %q", b.ID, b.Group)
				assert.True(t, strings.HasPrefix(b.ID, g.Key+"/"))
				assert.True(t, b.Within(g.Inner), "%s escapes inner rect of %s", b.ID, g.Key)
				assert.True(t, b.Within(g.Rect()))
			}
		})
	}
}

func TestLayoutHierarchicalEffectiveGroupWeights(t *testing.T) {
	items := []Item{
		{ID: "a/1", Weight: math.E},
		{ID: "a/2", Weight: math.E},
		{ID: "b/1", Weight: math.Exp(2)},
		{ID: "b/2", Weight: 0.5},
	}
	h := LayoutHierarchical(items, byPrefix, Rect{W: 400, H: 100}, Logarithmic, Margin{})
	require.Len(t, h.Groups, 2)

	for _, g := range h.Groups {
		assert.InDelta(t, 2.0, g.Effective, 1e-12, g.Key)
		assert.Equal(t, 20000, g.W*g.H, g.Key)
		if g.Key == "a" {
			assert.InDelta(t, 2*math.E, g.Weight, 1e-12)
		}
	}
}

func TestLayoutHierarchicalSkipsCollapsedGroups(t *testing.T) {
	items := []Item{{ID: "a/1", Weight: 100}, {ID: "b/1", Weight: 1}, {ID: "b/2", Weight: 1}}
	h := LayoutHierarchical(items, byPrefix, Rect{W: 200, H: 100}, Linear, Margin{Label: 12, Padding: 2})
	require.Len(t, h.Groups, 2)

	b := h.Groups[1]
	assert.Equal(t, "b", b.Key)
	assert.True(t, b.Inner.Empty())
	for _, it := range h.Items {
		assert.NotEqual(t, "b", it.Group)
	}
	assert.Len(t, h.Items, 1)
}

func TestLayoutHierarchicalZeroWeightGroup(t *testing.T) {
	items := []Item{{ID: "a/1", Weight: 10}, {ID: "z/1", Weight: 0}}
	h := LayoutHierarchical(items, byPrefix, Rect{W: 100, H: 100}, Linear, Margin{})
	require.Len(t, h.Groups, 2)

	assert.Equal(t, "z", h.Groups[1].Key)
	assert.Zero(t, h.Groups[1].W*h.Groups[1].H)
	require.Len(t, h.Items, 1)
	assert.Equal(t, "a/1", h.Items[0].ID)
}

func TestLayoutHierarchicalNilKey(t *testing.T) {
	items := []Item{{ID: "x", Weight: 1}, {ID: "y", Weight: 1}}
	h := LayoutHierarchical(items, nil, Rect{W: 50, H: 50}, Linear, Margin{})
	require.Len(t, h.Groups, 1)
	assert.Equal(t, "", h.Groups[0].Key)
	assert.Len(t, h.Items, 2)
}

func TestLayoutHierarchicalEmpty(t *testing.T) {
	assert.Equal(t, Hierarchy{}, LayoutHierarchical(nil, byPrefix, Rect{W: 10, H: 10}, Linear, Margin{}))
	assert.Equal(t, Hierarchy{}, LayoutHierarchical([]Item{{ID: "a/1"}}, byPrefix, Rect{W: 10, H: 10}, Linear, Margin{}))
}

func TestRectInset(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		margin Margin
		want   Rect
		empty  bool
	}{
		{"no margin", Rect{X: 1, Y: 2, W: 10, H: 20}, Margin{}, Rect{X: 1, Y: 2, W: 10, H: 20}, false},
		{"label and padding", Rect{W: 100, H: 100}, Margin{Label: 10, Padding: 2}, Rect{X: 2, Y: 12, W: 96, H: 86}, false},
		{"negative ignored", Rect{W: 10, H: 10}, Margin{Label: -5, Padding: -1}, Rect{W: 10, H: 10}, false},
		{"collapsed", Rect{W: 10, H: 10}, Margin{Label: 12}, Rect{Y: 12, W: 10, H: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rect.Inset(tt.margin)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.empty, got.Empty())
		})
	}
}
