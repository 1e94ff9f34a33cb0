// Package sink provides output format renderers for treemap layouts.
//
// # Overview
//
// A "sink" transforms a computed [layout.Layout] into a final output format:
//
//   - SVG: group frames with labels, one rectangle per video, hover tooltips
//   - JSON: the layout document itself
//   - PNG, PDF: the SVG converted with rsvg-convert
//
// # SVG Output
//
//	svg := sink.RenderSVG(l, sink.WithTitle("Media library"))
//
// Colors are derived from the group key (or the parent folder for flat
// layouts) so the same folder keeps its hue across runs. Tooltips show the
// video's raw size formatted with [FormatSize], not its effective weight.
//
// # SVG Options
//
//   - [WithTitle]: draw a title strip above the treemap
//   - [WithoutLabels]: omit block labels (tooltips are kept)
//
// # Concurrency
//
// All renderers are pure functions of their input and safe for concurrent use.
//
// [layout.Layout]: github.com/matzehuels/vidtree/pkg/layout.Layout
package sink
