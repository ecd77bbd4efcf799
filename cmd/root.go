package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/aicompanion/companion/internal/settings"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Metadata describes the running build.
type Metadata struct {
	Version string
	Commit  string
	Date    string
}

var metadata = Metadata{Version: "dev"}

// stderr receives notices while stdout carries json or raw output.
var stderr io.Writer = os.Stderr

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Send selected text to a completion model and keep the results",
	Long: `companion fills a prompt template with your current selection, sends it to
an OpenAI-compatible completions endpoint and prints the cleaned result.

The selection comes from command line arguments, piped stdin, a file, a
directory of source files or the system clipboard. Use {SELECTION} in the
prompt to mark where it goes.`,
	Example: `  # Summarize the clipboard
  companion generate -p "Summarize: {SELECTION}"

  # Pipe a file through a prompt and copy the result
  cat notes.md | companion generate -p "Fix the grammar: {SELECTION}" --copy

  # Store your API key in the OS keyring
  companion auth login`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default: $"+settings.ConfigPathEnv+" or the user config dir)")
	rootCmd.PersistentFlags().String("api-key", "", "API key for this invocation (default: $"+settings.APIKeyEnv+" or the keyring)")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug logs")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cobra.OnInitialize(func() {
		if noColor, _ := rootCmd.PersistentFlags().GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
			pterm.DisableColor()
		}
	})

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute(m Metadata) {
	metadata = m

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, rootCmd, fang.WithVersion(m.Version), fang.WithCommit(m.Commit)); err != nil {
		stop()
		os.Exit(1)
	}
}

// getLogger returns the diagnostic logger, at debug level when --debug is set.
func getLogger(cmd *cobra.Command) *pterm.Logger {
	level := pterm.LogLevelWarn
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithLevel(level)
}

// openStore opens the settings file selected by --config.
func openStore(cmd *cobra.Command) (*settings.FileStore, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	store, err := settings.Open(path)
	if err != nil {
		return nil, err
	}
	getLogger(cmd).Debug("opened settings", getLogger(cmd).Args("path", path))
	return store, nil
}

// notice returns p, redirected to stderr when stdout is reserved for
// machine-readable output.
func notice(p pterm.PrefixPrinter, quiet bool) *pterm.PrefixPrinter {
	if quiet {
		return p.WithWriter(stderr)
	}
	return &p
}
