// Package render turns computed treemap layouts into output files.
//
// # Overview
//
//   - [sink]: SVG, JSON, PNG and PDF renderers for a [layout.Layout]
//   - [ToPNG], [ToPDF]: SVG conversion through the external rsvg-convert tool
//
// # Format Conversion
//
//	svg := sink.RenderSVG(l, sink.WithTitle("Library"))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0) // 2x scale
//
// Conversion requires librsvg: brew install librsvg (macOS),
// apt install librsvg2-bin (Linux). [ConverterAvailable] reports whether it
// is installed.
//
// [sink]: github.com/matzehuels/vidtree/pkg/render/sink
// [layout.Layout]: github.com/matzehuels/vidtree/pkg/layout.Layout
package render
