package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// completionGenerators maps a shell name to cobra's script generator for it.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a completion script for bash, zsh, fish or powershell",
	Long: `Print a completion script for the given shell on stdout. Scenario IDs
are completed for "run --scenario" and template names for "init".

  bash   source <(shellprobe completion bash)
  zsh    shellprobe completion zsh > "${fpath[1]}/_shellprobe"
  fish   shellprobe completion fish > ~/.config/fish/completions/shellprobe.fish
  pwsh   shellprobe completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
