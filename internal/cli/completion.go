package cli

import (
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

// completionShells maps each supported shell to its script generator. desc
// controls whether completions carry descriptions.
var completionShells = map[string]func(root *cobra.Command, w io.Writer, desc bool) error{
	"bash": func(root *cobra.Command, w io.Writer, desc bool) error {
		return root.GenBashCompletionV2(w, desc)
	},
	"zsh": func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, desc bool) error {
		return root.GenFishCompletion(w, desc)
	},
	"powershell": func(root *cobra.Command, w io.Writer, desc bool) error {
		if desc {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	var noDesc bool

	shells := slices.Sorted(maps.Keys(completionShells))

	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Completion prints a completion script for the given shell to stdout.

Load it in the current shell:

  bash:        source <(linkscope completion bash)
  zsh:         source <(linkscope completion zsh)
  fish:        linkscope completion fish | source
  powershell:  linkscope completion powershell | Out-String | Invoke-Expression

To install it permanently, write the script to your shell's completion
directory, e.g. ~/.config/fish/completions/linkscope.fish.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), cmd.OutOrStdout(), !noDesc)
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit completion descriptions")
	return cmd
}
