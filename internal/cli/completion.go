package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command. Completions cover the
// subcommands, their flags and the enumerated flag values.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for tablescape.

Completions include the layout, render, groups, visible, simulate and cache
commands, their flags, and the values of --algorithm, --direction,
--group-by, --format and --cache-backend.

Load for the current shell:

  source <(tablescape completion bash)
  tablescape completion zsh > "${fpath[1]}/_tablescape"
  tablescape completion fish | source
  tablescape completion powershell | Out-String | Invoke-Expression

Write the script to your shell's completion directory to load it in every
session.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			registerFlagCompletions(root)
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.out, true)
			case "zsh":
				return root.GenZshCompletion(c.out)
			case "fish":
				return root.GenFishCompletion(c.out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(c.out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// flagValues lists the fixed values of enumerated flags.
var flagValues = map[string][]string{
	"algorithm":     {"auto", "force", "grouped"},
	"direction":     {"TB", "BT", "LR", "RL"},
	"group-by":      {"relationship", "schema"},
	"format":        {"dot", "svg", "png", "pdf", "json"},
	"cache-backend": {"none", "file", "redis"},
}

// registerFlagCompletions attaches value completions to every command that
// defines one of the enumerated flags. Registering twice is harmless.
func registerFlagCompletions(root *cobra.Command) {
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, values := range flagValues {
			if cmd.LocalNonPersistentFlags().Lookup(name) == nil && cmd.PersistentFlags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}
