package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

// completionCommand prints a shell completion script for the chosen shell.
func (c *CLI) completionCommand() *cobra.Command {
	shells := map[string]func(*cobra.Command) error{
		"bash":       func(cmd *cobra.Command) error { return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true) },
		"zsh":        func(cmd *cobra.Command) error { return cmd.Root().GenZshCompletion(cmd.OutOrStdout()) },
		"fish":       func(cmd *cobra.Command) error { return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true) },
		"powershell": func(cmd *cobra.Command) error { return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()) },
	}

	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Print a shell completion script",
		Example: `  source <(fwmeta completion bash)
  fwmeta completion zsh > "${fpath[1]}/_fwmeta"
  fwmeta completion fish > ~/.config/fish/completions/fwmeta.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := shells[args[0]]
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "unsupported shell %q", args[0])
			}
			return gen(cmd)
		},
	}
}
