// Package data implements the historical-bar CSV reader §1 scopes out
// of the core's design budget but still requires as driver plumbing:
// the outer loop needs bars from somewhere before it can call
// Engine.ProcessBar. Grounded on the teacher's CSV-backed data provider
// idiom (read once, iterate in order), narrowed to the columns this
// spec's Bar needs.
package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// LoadBarsCSV reads a CSV file with header columns
// timestamp,open,high,low,close,volume (timestamp as RFC3339 or unix
// seconds) into an ordered slice of Bars. Bars are returned in file
// order; the caller (the driver) is responsible for the monotonic
// ordering and duplicate-timestamp checks the engine enforces (R1).
func LoadBarsCSV(path string) ([]types.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("data: %s is empty", path)
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, required := range []string{"timestamp", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("data: %s missing required column %q", path, required)
		}
	}

	bars := make([]types.Bar, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ts, err := parseTimestamp(row[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("data: parse timestamp %q: %w", row[col["timestamp"]], err)
		}

		open, err1 := strconv.ParseFloat(row[col["open"]], 64)
		high, err2 := strconv.ParseFloat(row[col["high"]], 64)
		low, err3 := strconv.ParseFloat(row[col["low"]], 64)
		closePx, err4 := strconv.ParseFloat(row[col["close"]], 64)
		volume, err5 := strconv.ParseFloat(row[col["volume"]], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil, fmt.Errorf("data: non-numeric OHLCV in row for timestamp %q", row[col["timestamp"]])
		}

		bars = append(bars, types.Bar{
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			Volume:    volume,
		})
	}

	return bars, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", raw)
}
