package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aicompanion/companion/internal/settings"
	"github.com/aicompanion/companion/pkg/table"
	"github.com/aicompanion/companion/pkg/util"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const historyPreviewWidth = 80

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and clear previous results",
	Long:  "Inspect and clear previous results. Entry 1 is the most recent.",
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List previous results, most recent first",
	Args:    cobra.NoArgs,
	RunE:    runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <n>",
	Short: "Print history entry n in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntP("limit", "n", 0, "Show at most this many entries (0 = all)")
	historyListCmd.Flags().StringP("output", "o", "", "Output format (json)")
	historyShowCmd.Flags().Bool("raw", false, "Print the entry without formatting")
	historyClearCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
}

// HistoryCmd handles history operations independent of cobra.
type HistoryCmd struct {
	store settings.Store
	out   io.Writer
}

type HistoryListInput struct {
	Limit  int
	Output string
}

type HistoryShowInput struct {
	Index int
	Raw   bool
}

type HistoryClearInput struct {
	SkipConfirm bool
}

type historyEntry struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func (h HistoryCmd) List(in HistoryListInput) error {
	if in.Output != "" && in.Output != "json" {
		return fmt.Errorf("unsupported --output value: use 'json'")
	}

	history, err := h.store.History()
	if err != nil {
		return err
	}
	if in.Limit > 0 {
		history = lo.Subset(history, 0, uint(in.Limit))
	}
	entries := lo.Map(history, func(text string, i int) historyEntry {
		return historyEntry{Index: i + 1, Text: text}
	})

	if in.Output == "json" {
		return util.WriteJSON(h.out, entries)
	}

	if len(entries) == 0 {
		pterm.Println("<empty>")
		return nil
	}

	rows := pterm.TableData{{"#", "Result"}}
	for _, e := range entries {
		rows = append(rows, []string{strconv.Itoa(e.Index), util.Truncate(util.FirstLine(e.Text), historyPreviewWidth)})
	}
	table.PrintTableNoPad(rows, true)
	return nil
}

func (h HistoryCmd) Show(in HistoryShowInput) error {
	history, err := h.store.History()
	if err != nil {
		return err
	}
	if in.Index < 1 || in.Index > len(history) {
		return fmt.Errorf("history entry %d does not exist (history has %d entries)", in.Index, len(history))
	}

	text := history[in.Index-1]
	if in.Raw {
		_, err := fmt.Fprintln(h.out, text)
		return err
	}
	printResult(h.out, text)
	return nil
}

func (h HistoryCmd) Clear(in HistoryClearInput) error {
	history, err := h.store.History()
	if err != nil {
		return err
	}
	if len(history) == 0 {
		pterm.Info.Println("History is already empty")
		return nil
	}

	if !in.SkipConfirm {
		msg := fmt.Sprintf("Delete %d history entries?", len(history))
		pterm.DefaultInteractiveConfirm.DefaultText = msg
		ok, _ := pterm.DefaultInteractiveConfirm.Show()
		if !ok {
			pterm.Info.Println("Deletion cancelled")
			return nil
		}
	}

	if err := h.store.SetHistory(nil); err != nil {
		return err
	}
	pterm.Success.Printf("Deleted %d history entries\n", len(history))
	return nil
}

func newHistoryCmd(cmd *cobra.Command) (HistoryCmd, error) {
	store, err := openStore(cmd)
	if err != nil {
		return HistoryCmd{}, err
	}
	return HistoryCmd{store: store, out: os.Stdout}, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")
	h, err := newHistoryCmd(cmd)
	if err != nil {
		return err
	}
	return h.List(HistoryListInput{Limit: limit, Output: output})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid history entry %q: must be a number", args[0])
	}
	raw, _ := cmd.Flags().GetBool("raw")
	h, err := newHistoryCmd(cmd)
	if err != nil {
		return err
	}
	return h.Show(HistoryShowInput{Index: index, Raw: raw})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	h, err := newHistoryCmd(cmd)
	if err != nil {
		return err
	}
	return h.Clear(HistoryClearInput{SkipConfirm: yes})
}
