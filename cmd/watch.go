package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aicompanion/companion/internal/selection"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Generate a completion every time the clipboard changes",
	Long: `Poll the clipboard and run the prompt on every new non-empty selection.

Selections are handled one at a time; the clipboard is not polled while a
request is in flight. Whatever is on the clipboard when the command starts is
skipped unless --include-current is set. Press Ctrl+C to stop.`,
	Example: `  companion watch -p "Explain this error: {SELECTION}"
  companion watch -p "Translate to German: {SELECTION}" --interval 500ms`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addGenerationFlags(watchCmd.Flags())
	watchCmd.Flags().Duration("interval", selection.DefaultPollInterval, "How often to poll the clipboard")
	watchCmd.Flags().Bool("include-current", false, "Also submit the clipboard contents present at startup")
	watchCmd.Flags().StringP("output", "o", "", "Output format: raw")

	_ = watchCmd.RegisterFlagCompletionFunc("model", completeModels)
}

// WatchCmd submits each new selection reported by a Watcher.
type WatchCmd struct {
	generate GenerateCmd
	source   selection.Provider
	logger   *pterm.Logger
}

// WatchInput holds input for a watch loop.
type WatchInput struct {
	Template       string
	Overrides      ParamOverrides
	Interval       time.Duration
	IncludeCurrent bool
	NoHistory      bool
	Output         string
}

// Watch polls until ctx is canceled. A failed generation is reported and the
// loop keeps going.
func (w WatchCmd) Watch(ctx context.Context, in WatchInput) error {
	if in.Output != "" && in.Output != "raw" {
		return fmt.Errorf("unsupported --output value: use 'raw'")
	}

	watcher := selection.NewWatcher(w.source, in.Interval, w.logger)
	if !in.IncludeCurrent {
		if _, err := watcher.Poll(ctx); err != nil && w.logger != nil {
			w.logger.Warn("initial selection poll failed", w.logger.Args("error", err.Error()))
		}
	}

	if in.Output == "" {
		pterm.Info.Println("Watching the clipboard. Press Ctrl+C to stop.")
	}

	err := watcher.Run(ctx, func(sel string) {
		err := w.generate.Generate(ctx, GenerateInput{
			Template:  in.Template,
			Selection: selection.Static(sel),
			Overrides: in.Overrides,
			NoHistory: in.NoHistory,
			Output:    in.Output,
		})
		if err != nil && ctx.Err() == nil {
			notice(pterm.Error, in.Output != "").Println(err.Error())
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runWatch(cmd *cobra.Command, args []string) error {
	template, overrides, err := readGenerationFlags(cmd.Flags())
	if err != nil {
		return err
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	includeCurrent, _ := cmd.Flags().GetBool("include-current")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	output, _ := cmd.Flags().GetString("output")

	if !selection.ClipboardAvailable() {
		return fmt.Errorf("the clipboard is not available on this system")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	stored, err := store.Load()
	if err != nil {
		return err
	}
	client, err := getCompleter(cmd, stored)
	if err != nil {
		return err
	}

	logger := getLogger(cmd)
	w := WatchCmd{
		generate: GenerateCmd{completer: client, store: store, out: os.Stdout, logger: logger},
		source:   selection.NewClipboard(),
		logger:   logger,
	}
	return w.Watch(cmd.Context(), WatchInput{
		Template:       template,
		Overrides:      overrides,
		Interval:       interval,
		IncludeCurrent: includeCurrent,
		NoHistory:      noHistory,
		Output:         output,
	})
}
