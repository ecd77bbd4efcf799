// Package table renders pterm tables the same way across commands.
package table

import (
	"strings"

	"github.com/pterm/pterm"
)

// PrintTableNoPad renders rows as a left-aligned table. Cells containing
// newlines are flattened so rows stay aligned.
func PrintTableNoPad(rows pterm.TableData, hasHeader bool) {
	flat := make(pterm.TableData, len(rows))
	for i, row := range rows {
		flat[i] = make([]string, len(row))
		for j, cell := range row {
			flat[i][j] = strings.ReplaceAll(cell, "\n", " ⏎ ")
		}
	}

	t := pterm.DefaultTable.WithData(flat).WithLeftAlignment()
	if hasHeader {
		t = t.WithHasHeader()
	}
	_ = t.Render()
}
