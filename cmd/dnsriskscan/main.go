package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/dnsscience/dnsriskscan/internal/catalog"
	"github.com/dnsscience/dnsriskscan/internal/classifier"
	"github.com/dnsscience/dnsriskscan/internal/eventbus"
	"github.com/dnsscience/dnsriskscan/internal/ingest"
	"github.com/dnsscience/dnsriskscan/internal/memocache"
	"github.com/dnsscience/dnsriskscan/internal/metrics"
	"github.com/dnsscience/dnsriskscan/internal/pipeline"
	"github.com/dnsscience/dnsriskscan/internal/provider"
	"github.com/dnsscience/dnsriskscan/internal/record"
	"github.com/dnsscience/dnsriskscan/internal/report"
)

var (
	outputFormat  = flag.String("output", "table", "report format: table|json|csv")
	riskLevel     = flag.String("risk-level", "", "filter results to this level or higher: critical|high|medium|low")
	outputFile    = flag.String("output-file", "", "stream detailed CSV to PATH; also emits summary to stdout")
	patternsPath  = flag.String("patterns", "configs/patterns.yaml", "pattern catalog location")
	providerID    = flag.String("provider", "", "bypass detection and force provider adapter ID")
	forceStream   = flag.Bool("stream", false, "force bounded-memory streaming mode")
	enhanced      = flag.Bool("enhanced", false, "enable adaptive chunking + multi-stage pipeline")
	distributed   = flag.Bool("distributed", false, "enable worker-parallel mode")
	workers       = flag.Int("workers", 0, "worker-parallel mode with N workers (implies --distributed)")
	chunkSize     = flag.Int("chunk-size", 0, "fixed chunk size (disables adaptive)")
	memoryLimitMB = flag.Int("memory-limit", pipeline.DefaultMemoryLimitMB, "soft memory cap in MiB")
	english       = flag.Bool("english", true, "English-locale messages")
	verbose       = flag.Bool("verbose", false, "extended table and per-chunk diagnostics")
	metricsListen = flag.String("metrics-listen", "", "optional ADDR to serve Prometheus metrics on, e.g. :9090")
	ingestRate    = flag.Int("ingest-rate", 0, "optional records/sec ingestion throttle (0 disables)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: analyze <files...> [options]")
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "analyze: at least one input file is required")
		flag.Usage()
		os.Exit(1)
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                                                              ║")
	fmt.Println("║              DNS Zone Risk Analyzer                         ║")
	fmt.Println("║                                                              ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	os.Exit(run(files))
}

// run returns the process exit code, per spec.md §6: 0 success (including a
// cancelled-but-partial run), 1 input/validation error, 2 runtime failure.
func run(files []string) int {
	format := report.Format(*outputFormat)
	if format != report.FormatTable && format != report.FormatJSON && format != report.FormatCSV {
		fmt.Fprintf(os.Stderr, "analyze: unknown --output %q\n", *outputFormat)
		return 1
	}

	workerCount := *workers
	if *distributed && workerCount == 0 {
		workerCount = pipeline.DefaultParallelism
	}
	streaming := *forceStream || workerCount > 0

	// JSON requires the full retained result set, which streaming modes
	// don't materialise (spec.md §5's Ordering guarantees).
	if format == report.FormatJSON && streaming {
		fmt.Fprintln(os.Stderr, "analyze: --output json is unavailable with --stream or --distributed/--workers")
		return 1
	}

	cat, err := loadCatalog(*patternsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsListen != "" {
		srv, err := metrics.Listen(ctx, *metricsListen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze: metrics listener: %v\n", err)
			return 1
		}
		defer srv.Close()
		fmt.Printf("Metrics:            http://%s/metrics\n", srv.Addr())
	}

	bus := eventbus.New(16)
	cache := memocache.New(memocache.Config{})

	var rateLimit rate.Limit
	if *ingestRate > 0 {
		rateLimit = rate.Limit(*ingestRate)
	}

	cfg := pipeline.Config{
		ChunkSize:     *chunkSize,
		MemoryLimitMB: *memoryLimitMB,
		Workers:       workerCount,
		MemoCache:     cache,
		Bus:           bus,
		RateLimit:     rateLimit,
	}
	if !*enhanced && *chunkSize == 0 {
		cfg.ChunkSize = pipeline.DefaultChunkSize // --enhanced is what opts into adaptive sizing
	}

	opts := report.Options{RiskLevel: *riskLevel, Verbose: *verbose, English: *english}

	var csvWriter *report.CSVWriter
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze: opening --output-file: %v\n", err)
			return 1
		}
		csvWriter = report.NewCSVWriter(f, opts)
		defer closeSink(f, csvWriter)
	} else if format == report.FormatCSV {
		csvWriter = report.NewCSVWriter(os.Stdout, opts)
	}

	// JSON needs every result; the table's detailed section needs them only
	// when --verbose or --risk-level asks for it.
	retainResults := format == report.FormatJSON ||
		(format == report.FormatTable && *outputFile == "" && (*verbose || *riskLevel != ""))
	var retained []classifier.Result

	registry := provider.NewRegistry()
	p := pipeline.New(cfg, cat)

	exitCode := 0
	var lastSummary pipeline.Summary

	for _, file := range files {
		summary, err := analyzeFile(ctx, p, registry, file, csvWriter, &retained, retainResults, bus)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze: %s: %v\n", file, err)
			if code := runtimeOrValidationCode(err); code > exitCode {
				exitCode = code
			}
			if exitCode == 2 {
				break
			}
			continue
		}
		lastSummary = summary
		if summary.Interrupted {
			break
		}
	}

	if *outputFile == "" {
		switch format {
		case report.FormatTable:
			report.WriteTable(os.Stdout, lastSummary, retained, opts)
		case report.FormatJSON:
			report.WriteJSON(os.Stdout, lastSummary, retained, opts)
		case report.FormatCSV:
			csvWriter.Close() // rows were streamed to stdout as they were classified
		}
	} else {
		report.WriteTable(os.Stdout, lastSummary, nil, opts)
	}

	return exitCode
}

func closeSink(f io.Closer, w *report.CSVWriter) {
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: closing --output-file: %v\n", err)
	}
	f.Close()
}

// analyzeFile runs one input file through ingestion and the pipeline,
// writing detailed rows to csvWriter (if non-nil) and optionally retaining
// the full result set for JSON output.
func analyzeFile(ctx context.Context, p *pipeline.Pipeline, registry *provider.Registry, file string, csvWriter *report.CSVWriter, retained *[]classifier.Result, retain bool, bus *eventbus.Bus) (pipeline.Summary, error) {
	f, err := os.Open(file)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("input missing: %w", err)
	}

	reader, warnings, err := ingest.Open(f, file, registry, *providerID)
	if err != nil {
		f.Close()
		return pipeline.Summary{}, err
	}
	defer reader.Close()

	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.String())
	}

	emitWarning := func(msg string) {
		fmt.Fprintln(os.Stderr, "warning:", msg)
		if bus != nil {
			bus.Publish(ctx, eventbus.TopicWarning, msg)
		}
	}
	src := &ingestSource{reader: reader, onWarning: emitWarning}

	cb := pipeline.Callbacks{
		OnWarning: emitWarning,
	}
	if csvWriter != nil {
		cb.OnResult = func(r classifier.Result) { csvWriter.WriteResult(r) }
	}
	if retain {
		prior := cb.OnResult
		cb.OnResult = func(r classifier.Result) {
			if prior != nil {
				prior(r)
			}
			*retained = append(*retained, r)
		}
	}
	if *verbose {
		cb.OnProgress = func(pr pipeline.Progress) {
			fmt.Fprintf(os.Stderr, "%s: %d records, %.0f rec/s\n", file, pr.RecordsProcessed, pr.CurrentThroughput)
			if pr.WorkerQueueDepth >= 0 {
				fmt.Fprintf(os.Stderr, "%s: worker pool queue depth %d, healthy=%v\n", file, pr.WorkerQueueDepth, pr.WorkerPoolHealthy)
			}
		}
	}

	summary, err := p.Run(ctx, src, cb)
	summary.Warnings += src.rowWarnings
	return summary, err
}

// ingestSource adapts ingest.Reader (which yields ingest.Result) to
// pipeline.RecordSource (which yields record.Record). ingest.Reader
// swallows per-row rejections internally and only surfaces them via
// Warnings after a Next call returns; ingestSource drains and reports
// those immediately (rather than waiting for the pipeline's own
// error-triggered warning path, which only fires for Next itself failing)
// and tallies them in rowWarnings so the caller can fold the count into
// the pipeline's Summary.Warnings.
type ingestSource struct {
	reader      *ingest.Reader
	onWarning   func(string)
	rowWarnings int
}

func (s *ingestSource) Next() (record.Record, error) {
	res, err := s.reader.Next()
	for _, w := range s.reader.Warnings() {
		s.rowWarnings++
		if s.onWarning != nil {
			s.onWarning(w.String())
		}
	}
	if err != nil {
		return record.Record{}, err
	}
	return res.Record, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	return catalog.Load(path)
}

// runtimeOrValidationCode maps a pipeline/ingest error to the spec.md §6
// exit-code taxonomy: memory/worker failures are runtime (2); everything
// else at this layer (input missing, config invalid, detection ambiguous)
// is input/validation (1).
func runtimeOrValidationCode(err error) int {
	if errors.Is(err, pipeline.ErrMemoryExceeded) || errors.Is(err, pipeline.ErrWorkerFailed) {
		return 2
	}
	return 1
}
