package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/observability"
	"github.com/matzehuels/vidtree/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))
	hooks := observability.Pipeline()

	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(l, svgOpts...)
		default:
			err = ValidateFormat(format)
		}

		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.NoLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	return svgOpts
}
