// Package reporting implements the append-only CSV writers and console
// summary §6 calls the "Persisted output" and "reporter collaborator":
// an orders log, a fills log, and a session summary, plus an optional
// console table. Grounded on the teacher's pkg/reporting/csv.go
// dispatch-by-record-kind idiom, re-keyed from the teacher's
// Trade/Cycle vocabulary to this engine's Plan/PendingOrder/Fill
// vocabulary. Readers (the session summary, the console table)
// snapshot-copy the ledgers rather than mutating them, per §5's
// shared-resource policy.
package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// CSVWriter appends orders and fills to orders.csv and fills.csv under
// dir, writing a header row when it creates a file.
type CSVWriter struct {
	dir          string
	orders       *csv.Writer
	fills        *csv.Writer
	ordersFile   *os.File
	fillsFile    *os.File
}

// NewCSVWriter opens (or creates) orders.csv and fills.csv under dir.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("reporting: create output dir: %w", err)
	}

	ordersPath := filepath.Join(dir, "orders.csv")
	fillsPath := filepath.Join(dir, "fills.csv")

	w := &CSVWriter{dir: dir}

	ordersNew := !fileExists(ordersPath)
	of, err := os.OpenFile(ordersPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("reporting: open orders.csv: %w", err)
	}
	w.ordersFile = of
	w.orders = csv.NewWriter(of)
	if ordersNew {
		w.orders.Write([]string{"id", "symbol", "side", "reason", "price", "quantity", "value", "placed_at", "initial_rsi", "tag", "status"})
		w.orders.Flush()
	}

	fillsNew := !fileExists(fillsPath)
	ff, err := os.OpenFile(fillsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		of.Close()
		return nil, fmt.Errorf("reporting: open fills.csv: %w", err)
	}
	w.fillsFile = ff
	w.fills = csv.NewWriter(ff)
	if fillsNew {
		w.fills.Write([]string{"order_id", "symbol", "side", "reason", "fill_price", "fill_qty", "fee", "fee_asset", "realized_pnl", "cumulative_pnl", "timestamp"})
		w.fills.Flush()
	}

	return w, nil
}

// WriteOrder appends one placed/cancelled order row.
func (w *CSVWriter) WriteOrder(o types.PendingOrder) error {
	row := []string{
		o.ID, o.Symbol, string(o.Side), string(o.Reason),
		formatFloat(o.Price), formatFloat(o.Quantity), formatFloat(o.Value),
		o.PlacedAt.Format(time.RFC3339), formatFloat(o.InitialRSI),
		o.Tag, string(o.Status),
	}
	if err := w.orders.Write(row); err != nil {
		return fmt.Errorf("reporting: write order row: %w", err)
	}
	w.orders.Flush()
	return w.orders.Error()
}

// WriteFill appends one settled fill row.
func (w *CSVWriter) WriteFill(f types.Fill) error {
	row := []string{
		f.OrderID, f.Symbol, string(f.Side), string(f.Reason),
		formatFloat(f.FillPrice), formatFloat(f.FillQty), formatFloat(f.Fee), f.FeeAsset,
		formatFloat(f.RealizedPnL), formatFloat(f.CumulativePnL),
		f.Timestamp.Format(time.RFC3339),
	}
	if err := w.fills.Write(row); err != nil {
		return fmt.Errorf("reporting: write fill row: %w", err)
	}
	w.fills.Flush()
	return w.fills.Error()
}

// Close flushes and closes both underlying files.
func (w *CSVWriter) Close() error {
	w.orders.Flush()
	w.fills.Flush()
	if err := w.ordersFile.Close(); err != nil {
		return err
	}
	return w.fillsFile.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
