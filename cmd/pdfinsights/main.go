package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/chart"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/export"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/pipeline"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/runlog"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/source"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		docType   = flag.String("type", "", "document type: invoice or report (required)")
		input     = flag.String("input", "", "directory containing PDF files (required)")
		output    = flag.String("output", "./output", "directory for generated artifacts")
		workers   = flag.Int("workers", 0, "extraction worker count (overrides PDX_WORKERS)")
		threshold = flag.Float64("threshold", 0, "anomaly z-score threshold (overrides PDX_ANOMALY_THRESHOLD)")
		noCharts  = flag.Bool("no-charts", false, "skip chart rendering")
	)
	flag.Parse()

	if *docType == "" || *input == "" {
		printError("Error: --type and --input are required\n")
		flag.Usage()
		os.Exit(1)
	}
	kind, err := constants.ParseDocKind(*docType)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	cfg := common.LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if *workers > 0 {
		cfg.Extraction.Workers = *workers
	}
	if *threshold > 0 {
		cfg.Analysis.AnomalyThreshold = *threshold
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// The run journal is advisory: if the database cannot be opened the
	// batch proceeds without history.
	var store *runlog.Store
	if !cfg.RunLog.Disabled {
		path := cfg.RunLog.Path
		if path == "" {
			if err := os.MkdirAll(*output, 0o755); err != nil {
				logger.Error("failed to create output directory", "error", err)
				os.Exit(1)
			}
			path = filepath.Join(*output, "runs.db")
		}
		store, err = runlog.Open(ctx, path, logger)
		if err != nil {
			logger.Warn("run journal unavailable, continuing without it", "error", err)
			store = nil
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("failed to close run journal", "error", err)
				}
			}()
		}
	}

	var charts *chart.Service
	if !*noCharts {
		charts = chart.NewService(logger, cfg.Charts.Width, cfg.Charts.Height)
	}

	p := pipeline.New(cfg, logger,
		source.NewPDFSource(logger),
		export.NewService(logger),
		charts,
		store,
	)

	res, err := p.Run(ctx, pipeline.Request{
		Kind:      kind,
		InputDir:  *input,
		OutputDir: *output,
	})
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	if res.NoData {
		fmt.Printf("No extractable data found.\n")
		fmt.Printf("- Documents scanned: %d\n", res.DocCount)
		fmt.Printf("- Load failures: %d\n", res.FailedCount)
		return
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", res.DocCount)
	fmt.Printf("- Load failures: %d\n", res.FailedCount)
	fmt.Printf("- Rows tabulated: %d\n", len(res.Dataset.Rows))
	fmt.Printf("- Anomalies flagged: %d\n", len(res.Insights.Anomalies))
	for _, name := range []string{"csv", "xlsx", "json", "insights"} {
		if path, ok := res.OutputFiles[name]; ok {
			fmt.Printf("- Output: %s\n", path)
		}
	}
	for _, path := range res.Charts {
		fmt.Printf("- Chart: %s\n", path)
	}
}
