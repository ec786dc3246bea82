package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/timeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for barrace.

Bash:
  $ source <(barrace completion bash)

Zsh:
  $ barrace completion zsh > "${fpath[1]}/_barrace"

Fish:
  $ barrace completion fish | source

PowerShell:
  PS> barrace completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerFlagCompletions adds value completion for enum-like flags across
// the command tree.
func registerFlagCompletions(root *cobra.Command) {
	fixed := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp)
	}

	_ = root.RegisterFlagCompletionFunc("cache-backend", fixed(
		cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo, cache.BackendNone))

	var states []string
	for _, s := range timeline.States(true) {
		states = append(states, s.String())
	}

	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "render", "frames":
			_ = cmd.RegisterFlagCompletionFunc("format", fixed("svg", "png", "pdf", "json"))
		case "timeline-graph":
			_ = cmd.RegisterFlagCompletionFunc("format", fixed("svg", "png", "pdf", "dot"))
			_ = cmd.RegisterFlagCompletionFunc("highlight", fixed(states...))
		}
		if cmd.Flags().Lookup("empty-cells") != nil {
			_ = cmd.RegisterFlagCompletionFunc("empty-cells", fixed(string(dataset.EmptyInterpolate), string(dataset.EmptyZero)))
		}
	}
}
