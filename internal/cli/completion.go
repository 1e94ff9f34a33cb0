package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for vidtree.

To load completions:

Bash:
  $ source <(vidtree completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ vidtree completion bash > /etc/bash_completion.d/vidtree
  # macOS:
  $ vidtree completion bash > $(brew --prefix)/etc/bash_completion.d/vidtree

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ vidtree completion zsh > "${fpath[1]}/_vidtree"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ vidtree completion fish | source

  # To load completions for each session, execute once:
  $ vidtree completion fish > ~/.config/fish/completions/vidtree.fish

PowerShell:
  PS> vidtree completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> vidtree completion powershell > vidtree.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// registerLayoutCompletions offers the fixed choices of the layout flags.
func registerLayoutCompletions(cmd *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = cmd.RegisterFlagCompletionFunc("mode", fixed("log", "linear"))
	_ = cmd.RegisterFlagCompletionFunc("group-by", fixed(catalog.GroupNames...))
	if cmd.Flags().Lookup("format") != nil {
		_ = cmd.RegisterFlagCompletionFunc("format", fixed(pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatPNG, pipeline.FormatPDF))
	}
}
