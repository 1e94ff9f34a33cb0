package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/pipeline"
)

// layoutExt is the suffix of layout files written by "vidtree layout".
const layoutExt = ".layout.json"

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := newLayoutOptions()

	cmd := &cobra.Command{
		Use:   "layout [catalog]",
		Short: "Compute a treemap layout from a video catalogue",
		Long: `Compute a treemap layout from a video catalogue.

The layout command reads a catalogue (YAML or JSON, as produced by 'scan') and
places every video as a rectangle whose area follows its size. The output is a
layout.json file that 'render' turns into SVG, PNG or PDF without recomputing.

With --hierarchical the videos are first grouped (by parent folder unless
--group-by says otherwise) and each group gets a labelled frame.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyLayoutConfig(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <catalog>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the catalogue, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	cat, err := pipeline.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	spinner := newSpinner(ctx, fmt.Sprintf("Computing %s layout...", kindLabel(opts)))
	spinner.Start()

	l, cacheHit, err := runner.Generate(ctx, cat, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = trimCatalogExt(input) + layoutExt
	}
	if err := layout.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(l.Stats.Items, l.Stats.Visible, len(l.Groups), cacheHit)
	if l.Stats.Visible == 0 {
		printWarning("No video received any area")
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

func kindLabel(opts pipeline.Options) string {
	if opts.Hierarchical {
		return "hierarchical"
	}
	return "flat"
}

// trimCatalogExt strips the extension of a catalogue or layout file.
func trimCatalogExt(p string) string {
	if strings.HasSuffix(p, layoutExt) {
		return strings.TrimSuffix(p, layoutExt)
	}
	return strings.TrimSuffix(p, filepath.Ext(p))
}
