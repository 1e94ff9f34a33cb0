package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/pipeline"
)

// renderCommand creates the render command. Its input is either a catalogue
// (laid out first) or a layout file written by "vidtree layout".
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := newLayoutOptions()

	cmd := &cobra.Command{
		Use:   "render [catalog|layout.json]",
		Short: "Render a treemap to SVG, PNG, PDF or JSON",
		Long: `Render a treemap to SVG, PNG, PDF or JSON.

The input is either a catalogue, which is laid out first using the layout
flags, or a *.layout.json file from 'layout', which is rendered as-is.

PNG and PDF output require rsvg-convert (librsvg) on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			c.applyLayoutConfig(cmd, &opts)
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title drawn above the treemap")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "omit block and group labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runRender produces every requested format and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	var (
		artifacts map[string][]byte
		l         layout.Layout
		videos    int
		cached    bool
	)
	spinner := newSpinner(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()

	if strings.HasSuffix(input, layoutExt) {
		l, err = layout.ReadLayoutFile(input)
		if err == nil {
			videos = l.Stats.Items
			artifacts, cached, err = runner.RenderWithCacheInfo(ctx, l, opts)
		}
	} else {
		opts.Catalog = input
		var result *pipeline.Result
		result, err = runner.Execute(ctx, opts)
		if err == nil {
			l, artifacts = result.Layout, result.Artifacts
			videos = result.Layout.Stats.Items
			cached = result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifacts, input, basePath(output, input), output, len(opts.Formats) == 1)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(videos, l.Stats.Visible, len(l.Groups), cached)
	return nil
}

// basePath derives the base output path from the output and input paths.
// With no output the input's extension is stripped; an output carrying a
// format extension loses it.
func basePath(output, input string) string {
	if output == "" {
		return trimCatalogExt(input)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes each artifact to base.<format>, or to output itself
// when a single format was requested with an explicit output path. Paths are
// returned in format order. The input file is never overwritten.
func writeArtifacts(artifacts map[string][]byte, input, base, output string, single bool) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + format
		if single && output != "" {
			path = output
		}
		if filepath.Clean(path) == filepath.Clean(input) {
			return paths, errors.New(errors.ErrCodeInvalidPath, "output %s would overwrite the input", path)
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
