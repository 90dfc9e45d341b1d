package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/engine"
)

// completionCommand generates shell completion scripts. Node ids of the
// document argument are completed by [completeNodeIDs].
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for lineage.

  bash:        source <(lineage completion bash)
  zsh:         lineage completion zsh > "${fpath[1]}/_lineage"
  fish:        lineage completion fish > ~/.config/fish/completions/lineage.fish
  powershell:  lineage completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeNodeIDs completes the node and attribute arguments of trace from
// the document given as the first argument.
func (c *CLI) completeNodeIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 || len(args) > 2 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := engine.Load(ctx, args[0], c.engineOptions())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	if len(args) == 2 {
		if n, err := e.Node(args[1]); err == nil {
			for _, a := range n.Attributes {
				out = append(out, a.Name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	for _, n := range e.Search(toComplete) {
		out = append(out, n.ID)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
