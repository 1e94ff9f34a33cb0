package treemap

// KeyFunc maps an item to the key of the group it belongs to.
type KeyFunc func(Item) string

// Margin reserves space inside each group rectangle: a label strip along the
// top edge plus symmetric padding on all four sides.
type Margin struct {
	Label   float64 `json:"label"`
	Padding float64 `json:"padding"`
}

// GroupBlock is a group placed by [LayoutHierarchical]. Inner is the area left
// for the group's members after the margin inset; it may be empty.
type GroupBlock struct {
	Key       string  `json:"key"`
	Weight    float64 `json:"weight"`
	Effective float64 `json:"effective"`
	Count     int     `json:"count"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	W         int     `json:"w"`
	H         int     `json:"h"`
	Inner     Rect    `json:"inner"`
}

// Rect returns the group's bounds as a float rectangle.
func (g GroupBlock) Rect() Rect {
	return Rect{X: float64(g.X), Y: float64(g.Y), W: float64(g.W), H: float64(g.H)}
}

// Hierarchy is the result of a two-level layout.
type Hierarchy struct {
	Groups []GroupBlock `json:"groups"`
	Items  []Block      `json:"items"`
}

// group collects the members of one key in input order.
type group struct {
	key       string
	members   []Item
	weight    float64
	effective float64
}

// LayoutHierarchical lays out groups of items as a two-level treemap.
//
// Items are partitioned by key (groups ordered by first appearance, a nil key
// puts everything into a single group ""). The groups are laid out over rect
// with weights equal to the sum of their members' effective weights, so the
// group level and the item level share one area scale. Each group's members
// are then laid out with the same mode inside the group's rectangle inset by
// margin. Groups whose inner rectangle has no area contribute no item blocks.
//
// Every item block is tagged with its group's key.
func LayoutHierarchical(items []Item, key KeyFunc, rect Rect, mode WeightMode, margin Margin) Hierarchy {
	groups := partition(items, key, mode)
	if len(groups) == 0 {
		return Hierarchy{}
	}

	byKey := make(map[string]*group, len(groups))
	synthetic := make([]Item, len(groups))
	for i, g := range groups {
		byKey[g.key] = g
		synthetic[i] = Item{ID: g.key, Weight: g.effective}
	}

	// Group weights are already effective; re-applying the mode here would
	// break the shared area scale.
	placed := Layout(synthetic, rect, Linear)
	if len(placed) == 0 {
		return Hierarchy{}
	}

	h := Hierarchy{Groups: make([]GroupBlock, 0, len(placed))}
	for _, b := range placed {
		g := byKey[b.ID]
		gb := GroupBlock{
			Key:       g.key,
			Weight:    g.weight,
			Effective: g.effective,
			Count:     len(g.members),
			X:         b.X,
			Y:         b.Y,
			W:         b.W,
			H:         b.H,
		}
		gb.Inner = gb.Rect().Inset(margin)
		h.Groups = append(h.Groups, gb)

		if gb.Inner.Empty() {
			continue
		}
		for _, ib := range Layout(g.members, gb.Inner, mode) {
			ib.Group = g.key
			h.Items = append(h.Items, ib)
		}
	}
	return h
}

// partition splits items by key, summing raw and effective weights per group.
func partition(items []Item, key KeyFunc, mode WeightMode) []*group {
	var groups []*group
	index := make(map[string]int)
	for _, it := range items {
		k := ""
		if key != nil {
			k = key(it)
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, &group{key: k})
		}
		g := groups[i]
		g.members = append(g.members, it)
		g.weight += Linear.Effective(it.Weight)
		g.effective += mode.Effective(it.Weight)
	}
	return groups
}
