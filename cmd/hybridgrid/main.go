// Command hybridgrid is the outer driver §1/§6/§9 describe as owned by
// "the driver, not the core": it loads a policy file, replays a CSV of
// historical bars through one internal/engine.Engine per symbol, and
// writes the orders/fills/session-summary reports. It contains no
// trading logic of its own — every decision comes from Engine.ProcessBar.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tranvietduc/hybridgrid-engine/internal/engine"
	"github.com/tranvietduc/hybridgrid-engine/internal/monitoring"
	"github.com/tranvietduc/hybridgrid-engine/internal/obslog"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/data"
	"github.com/tranvietduc/hybridgrid-engine/pkg/reporting"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func main() {
	var (
		symbol       = flag.String("symbol", "BTCUSDT", "trading symbol")
		policyPath   = flag.String("policy", "", "path to a YAML policy document (optional; defaults used if empty)")
		barsPath     = flag.String("bars", "", "path to a CSV of historical bars (required)")
		outDir       = flag.String("out", "./reports", "directory for orders.csv, fills.csv, session_summary.csv")
		startingCash = flag.Float64("equity", 10000, "starting portfolio equity")
		logDir       = flag.String("log-dir", "./logs", "directory for per-symbol structured logs")
		metricsAddr  = flag.String("metrics-addr", "", "if set, serve /metrics and /healthz on this address (e.g. :9090)")
		xlsx         = flag.Bool("xlsx", false, "also write an .xlsx session report")
	)
	flag.Parse()

	if *barsPath == "" {
		fmt.Fprintln(os.Stderr, "hybridgrid: -bars is required")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("hybridgrid: no .env file loaded (%v); continuing with process environment", err)
	}

	policy := config.DefaultPolicy()
	if *policyPath != "" {
		doc, err := config.LoadPoliciesFile(*policyPath)
		if err != nil {
			log.Fatalf("hybridgrid: load policy file: %v", err)
		}
		policy = doc.Resolve(*symbol)
	}
	if err := policy.Validate(); err != nil {
		log.Fatalf("hybridgrid: invalid policy: %v", err)
	}

	bars, err := data.LoadBarsCSV(*barsPath)
	if err != nil {
		log.Fatalf("hybridgrid: load bars: %v", err)
	}

	logger, err := obslog.New(*logDir, *symbol)
	if err != nil {
		log.Fatalf("hybridgrid: create logger: %v", err)
	}
	defer logger.Close()

	health := monitoring.NewHealthChecker()
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/healthz", health)
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("hybridgrid: metrics server stopped: %v", err)
			}
		}()
		log.Printf("hybridgrid: serving /metrics and /healthz on %s", *metricsAddr)
	}

	csvWriter, err := reporting.NewCSVWriter(*outDir)
	if err != nil {
		log.Fatalf("hybridgrid: open report writers: %v", err)
	}
	defer csvWriter.Close()

	eng := engine.New(*symbol, policy, *startingCash, logger)
	eng.SetOrderObserver(func(order types.PendingOrder, event string) {
		if err := csvWriter.WriteOrder(order); err != nil {
			log.Printf("hybridgrid: write order event %s: %v", event, err)
		}
	})

	summary := reporting.Summary{
		Symbol:    *symbol,
		StartedAt: time.Now(),
	}
	var allFills []types.Fill
	var lastTimestamp time.Time

	for _, bar := range bars {
		if !bar.Timestamp.After(lastTimestamp) && !lastTimestamp.IsZero() {
			continue // R1/§3: duplicate or out-of-order bars are ignored
		}
		lastTimestamp = bar.Timestamp

		result, err := eng.ProcessBar(bar)
		health.RecordBar(bar.Timestamp, bar.Close)
		if err != nil {
			health.SetFatal(err)
			log.Fatalf("hybridgrid: fatal invariant breach: %v", err)
		}
		if result.Skipped {
			continue
		}

		health.SetHardStop(result.Plan.SLAction.Stop)
		if result.Plan.SLAction.Stop {
			summary.HardStopCount++
		}

		for _, f := range result.Fills {
			if err := csvWriter.WriteFill(f); err != nil {
				log.Printf("hybridgrid: write fill: %v", err)
			}
			allFills = append(allFills, f)
			summary.FillsTotal++
			summary.RealizedPnL += f.RealizedPnL
			switch f.Reason {
			case types.ReasonGrid:
				summary.GridFills++
			case types.ReasonDCA:
				summary.DCAFills++
			case types.ReasonTP:
				summary.TPFills++
			}
		}
		summary.BarsProcessed++
		summary.FinalEquity = result.Equity
	}

	summary.EndedAt = time.Now()
	if err := reporting.WriteSessionSummary(*outDir, summary); err != nil {
		log.Printf("hybridgrid: write session summary: %v", err)
	}
	reporting.PrintSummary(os.Stdout, summary)

	if *xlsx {
		xlsxPath := *outDir + "/session_report.xlsx"
		if err := reporting.WriteExcelReport(xlsxPath, allFills, summary); err != nil {
			log.Printf("hybridgrid: write xlsx report: %v", err)
		}
	}
}

