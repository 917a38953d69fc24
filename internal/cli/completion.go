package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	gen := map[string]func(*cobra.Command) error{
		"bash":       func(root *cobra.Command) error { return root.GenBashCompletionV2(stdout, true) },
		"zsh":        func(root *cobra.Command) error { return root.GenZshCompletion(stdout) },
		"fish":       func(root *cobra.Command) error { return root.GenFishCompletion(stdout, true) },
		"powershell": func(root *cobra.Command) error { return root.GenPowerShellCompletionWithDesc(stdout) },
	}

	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lanechart.

Bash:
  $ source <(lanechart completion bash)

Zsh (with compinit enabled):
  $ lanechart completion zsh > "${fpath[1]}/_lanechart"

Fish:
  $ lanechart completion fish > ~/.config/fish/completions/lanechart.fish

PowerShell:
  PS> lanechart completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gen[args[0]](cmd.Root())
		},
	}
}
