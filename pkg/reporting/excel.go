// excel.go is the optional .xlsx session export SPEC_FULL §6 wires to
// excelize, using the same layout as the teacher's
// pkg/reporting/excel.go (a single sheet per record kind, header row
// plus one row per record) narrowed to this engine's Fill/Summary
// vocabulary. The driver writes it only when its -xlsx flag is set.
package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// WriteExcelReport writes fills and the session summary into a single
// workbook at path, one sheet each.
func WriteExcelReport(path string, fills []types.Fill, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	const fillsSheet = "Fills"
	f.NewSheet(fillsSheet)
	fillsHeader := []string{"Order ID", "Symbol", "Side", "Reason", "Fill Price", "Fill Qty", "Fee", "Fee Asset", "Realized PnL", "Cumulative PnL", "Timestamp"}
	for col, h := range fillsHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(fillsSheet, cell, h)
	}
	for i, fl := range fills {
		row := i + 2
		values := []interface{}{
			fl.OrderID, fl.Symbol, string(fl.Side), string(fl.Reason),
			fl.FillPrice, fl.FillQty, fl.Fee, fl.FeeAsset,
			fl.RealizedPnL, fl.CumulativePnL, fl.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(fillsSheet, cell, v)
		}
	}

	const summarySheet = "Summary"
	f.NewSheet(summarySheet)
	summaryRows := [][2]interface{}{
		{"Symbol", summary.Symbol},
		{"Bars Processed", summary.BarsProcessed},
		{"Fills Total", summary.FillsTotal},
		{"Grid Fills", summary.GridFills},
		{"DCA Fills", summary.DCAFills},
		{"TP Fills", summary.TPFills},
		{"Realized PnL", summary.RealizedPnL},
		{"Final Equity", summary.FinalEquity},
		{"Hard Stop Count", summary.HardStopCount},
	}
	for i, pair := range summaryRows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(summarySheet, labelCell, pair[0])
		f.SetCellValue(summarySheet, valueCell, pair[1])
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("reporting: save xlsx report: %w", err)
	}
	return nil
}
