package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aicompanion/companion/internal/pipeline"
	"github.com/aicompanion/companion/internal/selection"
	"github.com/aicompanion/companion/internal/settings"
	"github.com/aicompanion/companion/pkg/util"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Selection sources accepted by --source.
const (
	sourceAuto      = ""
	sourceArgs      = "args"
	sourceStdin     = "stdin"
	sourceClipboard = "clipboard"
	sourceFile      = "file"
	sourceDir       = "dir"
	sourceNone      = "none"
)

var selectionSources = []string{sourceArgs, sourceStdin, sourceClipboard, sourceFile, sourceDir, sourceNone}

var resultStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1)

var generateCmd = &cobra.Command{
	Use:     "generate [selection...]",
	Aliases: []string{"gen", "g"},
	Short:   "Fill the prompt with the selection and generate a completion",
	Long: `Fill the prompt template with the current selection, send it to the
completion endpoint and print the cleaned result.

The selection is read once, when the command starts. Without --source it is
taken from the arguments, then piped stdin, then the clipboard.

Blank lines are removed from the result before it is printed, copied or
added to the history.`,
	Example: `  # Explain the clipboard contents
  companion generate -p "Explain this code: {SELECTION}"

  # Selection as arguments
  companion generate -p "Translate to French: {SELECTION}" good morning

  # Prompt without a selection
  companion generate -p "Write a haiku about autumn" --source none

  # Reuse the most recent history entry as the prompt
  companion generate --from-history 1

  # Scripting
  cat error.log | companion generate -p "What went wrong? {SELECTION}" -o raw`,
	RunE: runGenerate,
}

func init() {
	addGenerationFlags(generateCmd.Flags())
	generateCmd.Flags().String("source", sourceAuto, "Where to read the selection: "+strings.Join(selectionSources, ", "))
	generateCmd.Flags().StringP("file", "f", "", "Read the selection from a file (implies --source file)")
	generateCmd.Flags().String("dir", "", "Use the source files of a directory as the selection (implies --source dir)")
	generateCmd.Flags().Int("from-history", 0, "Use history entry N (1 = most recent) as the prompt template")
	generateCmd.Flags().Bool("copy", false, "Copy the result to the clipboard")
	generateCmd.Flags().Duration("timeout", 0, "Give up after this long (default: no limit)")
	generateCmd.Flags().StringP("output", "o", "", "Output format: json or raw")

	_ = generateCmd.RegisterFlagCompletionFunc("model", completeModels)
	_ = generateCmd.RegisterFlagCompletionFunc("source", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return selectionSources, cobra.ShellCompDirectiveNoFileComp
	})
	_ = generateCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "raw"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// GenerateCmd runs the prompt pipeline for one selection.
type GenerateCmd struct {
	completer Completer
	store     settings.Store
	copyText  func(string) error
	out       io.Writer
	logger    *pterm.Logger
}

// GenerateInput holds input for a single generation.
type GenerateInput struct {
	Template    string
	FromHistory int
	Selection   selection.Provider
	Overrides   ParamOverrides
	Copy        bool
	NoHistory   bool
	Output      string
}

// GenerateOutput is the JSON shape printed by --output json.
type GenerateOutput struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Template    string  `json:"template"`
	Selection   string  `json:"selection"`
	Prompt      string  `json:"prompt"`
	RawText     string  `json:"raw_text"`
	CleanedText string  `json:"cleaned_text"`
}

// Generate snapshots the selection, submits the filled template and prints
// the result. A failed submission leaves the history untouched.
func (g GenerateCmd) Generate(ctx context.Context, in GenerateInput) error {
	if in.Output != "" && in.Output != "json" && in.Output != "raw" {
		return fmt.Errorf("unsupported --output value: use 'json' or 'raw'")
	}
	quiet := in.Output != ""

	stored, err := g.store.Load()
	if err != nil {
		return err
	}
	params := in.Overrides.Apply(stored.Params())

	template, err := g.resolveTemplate(in)
	if err != nil {
		return err
	}

	var sel string
	if in.Selection != nil {
		if sel, err = in.Selection.Selection(ctx); err != nil {
			return err
		}
	}
	if g.logger != nil {
		g.logger.Debug("selection captured", g.logger.Args("size", util.FormatBytes(int64(len(sel)))))
	}
	if sel == "" && strings.Contains(template, pipeline.Placeholder) && !quiet {
		pterm.Warning.Printf("No selection found; %s will be empty\n", pipeline.Placeholder)
	}

	body := pipeline.BuildRequestBody(template, sel, params)

	var spinner *pterm.SpinnerPrinter
	if !quiet {
		spinner, _ = pterm.DefaultSpinner.Start(fmt.Sprintf("Generating with %s...", params.Model))
	}
	res, err := g.completer.Submit(ctx, body)
	if spinner != nil {
		if err != nil {
			spinner.Fail("Generation failed")
		} else {
			spinner.Success("Done")
		}
	}
	if err != nil {
		return describeSubmitError(err, quiet)
	}

	if !in.NoHistory {
		if err := g.appendHistory(res.CleanedText); err != nil {
			notice(pterm.Warning, quiet).Printf("Could not save history: %v\n", err)
		}
	}

	if in.Copy {
		if err := g.copyText(res.CleanedText); err != nil {
			notice(pterm.Warning, quiet).Printf("Could not copy to clipboard: %v\n", err)
		} else if !quiet {
			pterm.Success.Println("Copied to clipboard")
		}
	}

	switch in.Output {
	case "json":
		return util.WriteJSON(g.out, GenerateOutput{
			Model:       body.Model,
			Temperature: body.Temperature,
			MaxTokens:   body.MaxTokens,
			Template:    template,
			Selection:   sel,
			Prompt:      body.Prompt,
			RawText:     res.RawText,
			CleanedText: res.CleanedText,
		})
	case "raw":
		_, err := fmt.Fprintln(g.out, res.CleanedText)
		return err
	}

	printResult(g.out, res.CleanedText)
	return nil
}

func (g GenerateCmd) resolveTemplate(in GenerateInput) (string, error) {
	if in.FromHistory == 0 {
		if in.Template == "" {
			return pipeline.DefaultTemplate, nil
		}
		return in.Template, nil
	}

	history, err := g.store.History()
	if err != nil {
		return "", err
	}
	if in.FromHistory < 1 || in.FromHistory > len(history) {
		return "", fmt.Errorf("history entry %d does not exist (history has %d entries)", in.FromHistory, len(history))
	}
	return history[in.FromHistory-1], nil
}

// appendHistory re-reads the history right before writing so entries saved
// by other invocations in the meantime are kept.
func (g GenerateCmd) appendHistory(text string) error {
	history, err := g.store.History()
	if err != nil {
		return err
	}
	return g.store.SetHistory(pipeline.AppendHistory(history, text))
}

func printResult(w io.Writer, text string) {
	if text == "" {
		pterm.Warning.Println("The completion was empty")
		return
	}
	fmt.Fprintln(w, resultStyle.Render(text))
}

// resolveSelection picks the selection provider for the given flags.
func resolveSelection(source, file, dir string, args []string) (selection.Provider, error) {
	if source == sourceAuto {
		switch {
		case len(args) > 0:
			source = sourceArgs
		case file != "":
			source = sourceFile
		case dir != "":
			source = sourceDir
		case selection.PipedStdin():
			source = sourceStdin
		case selection.ClipboardAvailable():
			source = sourceClipboard
		default:
			source = sourceNone
		}
	}

	switch source {
	case sourceArgs:
		return selection.Static(strings.Join(args, " ")), nil
	case sourceStdin:
		return selection.NewReader(os.Stdin), nil
	case sourceClipboard:
		return selection.NewClipboard(), nil
	case sourceFile:
		if file == "" {
			return nil, fmt.Errorf("--source file requires --file")
		}
		return selection.File{Path: file}, nil
	case sourceDir:
		if dir == "" {
			return nil, fmt.Errorf("--source dir requires --dir")
		}
		return selection.Dir{Root: dir}, nil
	case sourceNone:
		return selection.Static(""), nil
	default:
		return nil, fmt.Errorf("unsupported --source value %q: use one of %s", source, strings.Join(selectionSources, ", "))
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	template, overrides, err := readGenerationFlags(cmd.Flags())
	if err != nil {
		return err
	}
	source, _ := cmd.Flags().GetString("source")
	file, _ := cmd.Flags().GetString("file")
	dir, _ := cmd.Flags().GetString("dir")
	fromHistory, _ := cmd.Flags().GetInt("from-history")
	copyResult, _ := cmd.Flags().GetBool("copy")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	output, _ := cmd.Flags().GetString("output")

	if cmd.Flags().Changed("from-history") && cmd.Flags().Changed("prompt") {
		return fmt.Errorf("--from-history and --prompt cannot be used together")
	}

	sel, err := resolveSelection(source, file, dir, args)
	if err != nil {
		return err
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

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger := getLogger(cmd)
	g := GenerateCmd{completer: client, store: store, copyText: clipboard.WriteAll, out: os.Stdout, logger: logger}
	start := time.Now()
	err = g.Generate(ctx, GenerateInput{
		Template:    template,
		FromHistory: fromHistory,
		Selection:   sel,
		Overrides:   overrides,
		Copy:        copyResult,
		NoHistory:   noHistory,
		Output:      output,
	})
	logger.Debug("generate finished", logger.Args("duration", time.Since(start).Round(time.Millisecond).String()))
	return err
}
