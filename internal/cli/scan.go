package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/render/sink"
)

const defaultCatalogFile = "library.yaml"

// scanCommand creates the scan command, which builds a catalogue from a
// directory tree.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		output string
		exts   []string
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Build a video catalogue by walking a directory",
		Long: `Build a video catalogue by walking a directory.

Every regular file with a video extension becomes an entry with its path
relative to dir and its size in megabytes. The catalogue format follows the
output extension (.yaml, .yml or .json).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			cat, err := catalog.Scan(ctx, args[0], exts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Scanned %d videos", len(cat.Videos)))

			if err := catalog.WriteFile(cat, output); err != nil {
				return fmt.Errorf("write catalog %s: %w", output, err)
			}

			printSuccess("Catalogue written")
			printFile(output)
			printKeyValue("Root", cat.Root)
			printKeyValue("Videos", fmt.Sprint(len(cat.Videos)))
			printKeyValue("Total", sink.FormatSize(cat.TotalMB()))
			printNewline()
			printNextStep("Lay out", appName+" layout "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultCatalogFile, "catalogue file (.yaml or .json)")
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "video extensions (default: "+strings.Join(catalog.DefaultExtensions, ",")+")")

	return cmd
}
