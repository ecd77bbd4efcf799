package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for companion.

To load completions:

Bash:
  $ source <(companion completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ companion completion bash > /etc/bash_completion.d/companion
  # macOS:
  $ companion completion bash > $(brew --prefix)/etc/bash_completion.d/companion

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ companion completion zsh > "${fpath[1]}/_companion"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ companion completion fish | source

  # To load completions for each session, execute once:
  $ companion completion fish > ~/.config/fish/completions/companion.fish

PowerShell:
  PS> companion completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, add the line above to your
  # PowerShell profile ($PROFILE).

Completions include model names for --model and 'config set model', and the
setting keys for 'config get' and 'config set'.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}
