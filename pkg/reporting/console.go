// console.go prints the end-of-run session summary as a table, grounded
// on the teacher's cmd/live-bot table output built with go-pretty.
package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintSummary writes a formatted session summary table to w.
func PrintSummary(w io.Writer, s Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Symbol", "Bars", "Fills", "Grid", "DCA", "TP", "Realized PnL", "Equity", "Hard Stops"})
	t.AppendRow(table.Row{
		s.Symbol,
		s.BarsProcessed,
		s.FillsTotal,
		s.GridFills,
		s.DCAFills,
		s.TPFills,
		fmt.Sprintf("%.2f", s.RealizedPnL),
		fmt.Sprintf("%.2f", s.FinalEquity),
		s.HardStopCount,
	})
	t.Render()
}
