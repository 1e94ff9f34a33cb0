// Package pipeline provides the load → layout → render pipeline for vidtree.
//
// The CLI, the HTTP API and the interactive browser all go through this
// package so that defaults, validation and caching behave the same
// everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a catalogue file (JSON or YAML) and validate it
//  2. Layout: compute a flat or hierarchical treemap of the catalogue
//  3. Render: generate output in various formats (SVG, JSON, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
// The layout stage is pure, so the [Runner] memoizes it (and rendering) in a
// [cache.Cache].
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Catalog:      "library.yaml",
//	    Hierarchical: true,
//	    Formats:      []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout an already loaded catalogue
//	l, hit, err := runner.Generate(ctx, cat, opts)
//
//	// Render an existing layout
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vidtree/pkg/cache"
	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Browser
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultMode is the default weight mode. Video sizes span several orders
	// of magnitude, so log mode keeps small files visible.
	DefaultMode = "log"

	// DefaultGroupBy is the default grouping for hierarchical layouts.
	DefaultGroupBy = catalog.GroupParent

	// DefaultLabelMargin is the height of the label strip above each group.
	DefaultLabelMargin = 18.0

	// DefaultPadding is the inset on every side of a group frame.
	DefaultPadding = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// DefaultMargin returns the standard group margin.
func DefaultMargin() treemap.Margin {
	return treemap.Margin{Label: DefaultLabelMargin, Padding: DefaultPadding}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
//
// LabelMargin and Padding are never defaulted: zero is a meaningful value.
// Front ends start from [DefaultMargin].
type Options struct {
	// Load options
	Catalog string `json:"catalog,omitempty"` // Catalogue file path (Execute only)
	Folder  string `json:"folder,omitempty"`  // Restrict to a folder subtree

	// Layout options
	Mode         string  `json:"mode,omitempty"`
	X            float64 `json:"x,omitempty"` // Canvas origin
	Y            float64 `json:"y,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	Hierarchical bool    `json:"hierarchical,omitempty"`
	GroupBy      string  `json:"group_by,omitempty"`
	LabelMargin  float64 `json:"label_margin,omitempty"`
	Padding      float64 `json:"padding,omitempty"`
	Refresh      bool    `json:"refresh,omitempty"` // Recompute even when cached

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`
	NoLabels bool     `json:"no_labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Catalog is the loaded catalogue (before folder filtering).
	Catalog *catalog.Catalog

	// Layout is the computed treemap.
	Layout layout.Layout

	// LayoutKey is the cache key of the layout, usable as a content id.
	LayoutKey string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Videos     int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a weight mode name is valid.
func ValidateMode(mode string) error {
	if _, err := treemap.ParseWeightMode(mode); err != nil {
		return errors.New(errors.ErrCodeInvalidWeightMode, "%v", err)
	}
	return nil
}

// ValidateMargin checks that group margins are finite and non-negative.
func ValidateMargin(label, padding float64) error {
	if !nonNegative(label) {
		return errors.New(errors.ErrCodeInvalidInput, "label margin must be a non-negative number (got %g)", label)
	}
	if !nonNegative(padding) {
		return errors.New(errors.ErrCodeInvalidInput, "padding must be a non-negative number (got %g)", padding)
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Hierarchical && o.GroupBy == "" {
		o.GroupBy = DefaultGroupBy
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if math.IsNaN(o.X) || math.IsNaN(o.Y) || math.IsInf(o.X, 0) || math.IsInf(o.Y, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "canvas origin must be finite")
	}
	if !o.Hierarchical {
		return nil
	}
	if _, err := catalog.KeyFuncByName(o.GroupBy); err != nil {
		return err
	}
	return ValidateMargin(o.LabelMargin, o.Padding)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults checks every stage's options for a full run.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Catalog == "" {
		return errors.New(errors.ErrCodeInvalidInput, "catalog path is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// WeightMode returns the parsed weight mode. Call after validation.
func (o *Options) WeightMode() treemap.WeightMode {
	m, _ := treemap.ParseWeightMode(o.Mode)
	return m
}

// Margin returns the group margin.
func (o *Options) Margin() treemap.Margin {
	return treemap.Margin{Label: o.LabelMargin, Padding: o.Padding}
}

// LayoutKeyOpts returns cache key options for layout computation. Mode is
// canonicalized so that "log" and "logarithmic" share entries.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Mode:         o.WeightMode().String(),
		X:            o.X,
		Y:            o.Y,
		Width:        o.Width,
		Height:       o.Height,
		Hierarchical: o.Hierarchical,
		Folder:       o.Folder,
	}
	if o.Hierarchical {
		k.GroupBy = o.GroupBy
		k.LabelMargin = o.LabelMargin
		k.Padding = o.Padding
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Title:  o.Title,
		Labels: !o.NoLabels,
	}
}

// describe renders an error-message-friendly summary of the layout request.
func (o *Options) describe() string {
	if o.Hierarchical {
		return fmt.Sprintf("%s %gx%g grouped by %s", o.Mode, o.Width, o.Height, o.GroupBy)
	}
	return fmt.Sprintf("%s %gx%g", o.Mode, o.Width, o.Height)
}
