// Package layout defines the serialized treemap document shared by the
// pipeline, the renderers, the cache and the HTTP API.
//
// A [Layout] records the canvas, the options that produced it, the placed
// group frames (hierarchical layouts only), the placed item blocks and summary
// statistics. It is written by "vidtree layout" and can be rendered later
// without recomputing.
package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/vidtree/pkg/treemap"
)

// =============================================================================
// Layout - Serialized Treemap
// =============================================================================

// Layout is a computed treemap ready for rendering.
//
// Groups and Blocks are always non-nil so that JSON consumers see [] rather
// than null. Blocks are ordered by descending effective weight (within each
// group for hierarchical layouts).
type Layout struct {
	X            float64 `json:"x,omitempty"`
	Y            float64 `json:"y,omitempty"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Mode         string  `json:"mode"`
	Hierarchical bool    `json:"hierarchical,omitempty"`
	GroupBy      string  `json:"group_by,omitempty"`
	Folder       string  `json:"folder,omitempty"`

	Margin *treemap.Margin `json:"margin,omitempty"`

	Groups []treemap.GroupBlock `json:"groups"`
	Blocks []treemap.Block      `json:"blocks"`
	Stats  Stats                `json:"stats"`
}

// Canvas returns the layout rectangle. The origin is (0, 0) unless the
// layout was requested for an offset rectangle.
func (l *Layout) Canvas() treemap.Rect {
	return treemap.Rect{X: l.X, Y: l.Y, W: l.Width, H: l.Height}
}

// Group returns the group frame with the given key.
func (l *Layout) Group(key string) (treemap.GroupBlock, bool) {
	for _, g := range l.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return treemap.GroupBlock{}, false
}

// =============================================================================
// Stats - Layout Quality Summary
// =============================================================================

// Stats summarizes a layout. Aspect ratios consider only blocks with area.
type Stats struct {
	Items       int     `json:"items"`
	Groups      int     `json:"groups"`
	Blocks      int     `json:"blocks"`
	Visible     int     `json:"visible"`
	CoveredArea int     `json:"covered_area"`
	Coverage    float64 `json:"coverage"`
	MeanAspect  float64 `json:"mean_aspect"`
	WorstAspect float64 `json:"worst_aspect"`
}

// ComputeStats fills in Stats for l given the number of input items.
func ComputeStats(l *Layout, items int) Stats {
	s := Stats{Items: items, Groups: len(l.Groups), Blocks: len(l.Blocks)}
	var sum float64
	for _, b := range l.Blocks {
		a := b.AspectRatio()
		if a == 0 {
			continue
		}
		s.Visible++
		s.CoveredArea += b.Area()
		sum += a
		s.WorstAspect = max(s.WorstAspect, a)
	}
	if s.Visible > 0 {
		s.MeanAspect = sum / float64(s.Visible)
	}
	if area := l.Canvas().Area(); area > 0 {
		s.Coverage = float64(s.CoveredArea) / area
	}
	return s
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	if l.Groups == nil {
		l.Groups = []treemap.GroupBlock{}
	}
	if l.Blocks == nil {
		l.Blocks = []treemap.Block{}
	}
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and checks that the
// canvas and mode are usable.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if !(l.Width > 0 && l.Height > 0) {
		return Layout{}, fmt.Errorf("layout must have a positive canvas (got %gx%g)", l.Width, l.Height)
	}
	if _, err := treemap.ParseWeightMode(l.Mode); err != nil {
		return Layout{}, fmt.Errorf("layout: %w", err)
	}
	if l.Groups == nil {
		l.Groups = []treemap.GroupBlock{}
	}
	if l.Blocks == nil {
		l.Blocks = []treemap.Block{}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
