// Package pkg provides the core libraries for vidtree video library treemaps.
//
// # Overview
//
// vidtree maps a video library onto a rectangle: every video becomes a tile
// whose area follows its file size, optionally grouped into labelled folder
// frames. The pkg directory is organized into these areas:
//
//  1. [treemap] - The squarified layout algorithm (flat and hierarchical)
//  2. [catalog] - Video catalogues: reading, writing, scanning, grouping
//  3. [layout] - The serialized layout document
//  4. [render] - SVG, JSON, PNG and PDF output
//  5. [pipeline] - Orchestration (load → layout → render) with caching
//  6. [cache] - File, Redis and MongoDB cache backends
//  7. [server] - The JSON HTTP API
//
// # Architecture
//
// The typical data flow through vidtree:
//
//	catalogue (YAML/JSON) or directory scan
//	         ↓
//	    [catalog] package (videos → weighted items)
//	         ↓
//	    [treemap] package (items → placed blocks)
//	         ↓
//	    [render/sink] package (layout → SVG/PNG/PDF/JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/vidtree/pkg/catalog"
//	    "github.com/matzehuels/vidtree/pkg/treemap"
//	)
//
//	cat, _ := catalog.ReadFile("library.yaml")
//	rect := treemap.Rect{W: 1200, H: 800}
//	blocks := treemap.Layout(cat.Items(), rect, treemap.Logarithmic)
//
// Or with caching and rendering:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Catalog:      "library.yaml",
//	    Hierarchical: true,
//	    LabelMargin:  pipeline.DefaultLabelMargin,
//	    Formats:      []string{pipeline.FormatSVG},
//	})
//
// [treemap]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/treemap
// [catalog]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/catalog
// [layout]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/vidtree/pkg/server
package pkg
