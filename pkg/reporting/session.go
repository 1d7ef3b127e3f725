package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Summary is the session-level rollup §6 calls the "session summary":
// one row written at the end of a run (or periodically by the driver).
type Summary struct {
	Symbol        string
	StartedAt     time.Time
	EndedAt       time.Time
	BarsProcessed int
	FillsTotal    int
	GridFills     int
	DCAFills      int
	TPFills       int
	RealizedPnL   float64
	FinalEquity   float64
	HardStopCount int
}

// WriteSessionSummary appends one row to session_summary.csv under dir,
// creating the file with a header on first write.
func WriteSessionSummary(dir string, s Summary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("reporting: create output dir: %w", err)
	}
	path := filepath.Join(dir, "session_summary.csv")
	isNew := !fileExists(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("reporting: open session_summary.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if isNew {
		w.Write([]string{"symbol", "started_at", "ended_at", "bars_processed", "fills_total", "grid_fills", "dca_fills", "tp_fills", "realized_pnl", "final_equity", "hard_stop_count"})
	}

	return w.Write([]string{
		s.Symbol,
		s.StartedAt.Format(time.RFC3339),
		s.EndedAt.Format(time.RFC3339),
		fmt.Sprintf("%d", s.BarsProcessed),
		fmt.Sprintf("%d", s.FillsTotal),
		fmt.Sprintf("%d", s.GridFills),
		fmt.Sprintf("%d", s.DCAFills),
		fmt.Sprintf("%d", s.TPFills),
		formatFloat(s.RealizedPnL),
		formatFloat(s.FinalEquity),
		fmt.Sprintf("%d", s.HardStopCount),
	})
}
