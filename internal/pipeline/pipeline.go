// Package pipeline implements the Chunk Pipeline (C7): the streaming
// engine that reads canonical records, batches them into chunks, classifies
// each chunk (in-process or via the Worker Pool), and feeds qualifying
// results to a Top-K aggregator and any registered output callback. It
// generalises the teacher's recursive-resolver event loop and rate-limited
// ingestion path (internal/resolver, internal/rrl in the source) into a
// single-writer streaming state machine over record batches instead of DNS
// queries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dnsscience/dnsriskscan/internal/catalog"
	"github.com/dnsscience/dnsriskscan/internal/classifier"
	"github.com/dnsscience/dnsriskscan/internal/eventbus"
	"github.com/dnsscience/dnsriskscan/internal/memocache"
	"github.com/dnsscience/dnsriskscan/internal/metrics"
	"github.com/dnsscience/dnsriskscan/internal/pool"
	"github.com/dnsscience/dnsriskscan/internal/record"
	"github.com/dnsscience/dnsriskscan/internal/runid"
	"github.com/dnsscience/dnsriskscan/internal/topk"
	"github.com/dnsscience/dnsriskscan/internal/workerpool"
)

// ErrMemoryExceeded is fatal: the soft memory cap was exceeded by more than
// 2x for a full chunk.
var ErrMemoryExceeded = errors.New("memory limit exceeded")

// ErrWorkerFailed is fatal: a chunk failed classification twice (original
// attempt plus one retry on another worker).
var ErrWorkerFailed = errors.New("worker classification failed")

// ErrInterrupted names the interrupted outcome. Run does not return it: an
// interrupted run returns a nil error and a Summary with Interrupted set,
// which the caller does not treat as a failure (exit code 0 per spec.md §7).
var ErrInterrupted = errors.New("interrupted")

// State is the pipeline's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateReading
	StateDraining
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Defaults per spec.md §4.5.
const (
	DefaultMinChunk         = 500
	DefaultMaxChunk         = 10000
	DefaultChunkSize        = 2000
	DefaultMemoryLimitMB    = 100
	DefaultProgressInterval = 1000
	DefaultParallelism      = 4
	DefaultTopK             = 100
)

// RecordSource yields canonical records one at a time, returning io.EOF
// when exhausted. internal/ingest.Reader (adapted) satisfies this for a
// single file; main wires one RecordSource per input file in sequence.
type RecordSource interface {
	Next() (record.Record, error)
}

// Progress is reported to Callbacks.OnProgress every ProgressInterval
// records, per spec.md §4.5.
type Progress struct {
	RecordsProcessed  uint64
	BytesProcessed    uint64
	CurrentThroughput float64 // records/sec, trailing window
	MemoryUsageBytes  uint64
	WorkerQueueDepth  int  // -1 when not running in worker-parallel mode
	WorkerPoolHealthy bool
}

// Callbacks are invoked synchronously from Run's caller goroutine in every
// mode (in worker-parallel mode Run waits for each chunk's results before
// delivering them) — never concurrently.
type Callbacks struct {
	// OnResult is called once per classified record, in input order.
	OnResult func(classifier.Result)
	// OnProgress is called periodically; nil disables progress reporting.
	OnProgress func(Progress)
	// OnWarning is called for every non-fatal per-row/per-file issue.
	OnWarning func(string)
}

// Config configures one pipeline run.
type Config struct {
	ChunkSize        int  // 0 enables adaptive chunk sizing
	MinChunk         int  // clamp floor for adaptive sizing
	MaxChunk         int  // clamp ceiling for adaptive sizing
	MemoryLimitMB    int  // soft cap; 0 uses DefaultMemoryLimitMB
	ProgressInterval int  // 0 uses DefaultProgressInterval
	Parallelism      int  // max in-flight chunks; 0 uses DefaultParallelism
	Workers          int  // >0 enables worker-parallel mode
	TopK             int  // 0 uses DefaultTopK
	MemoCache        *memocache.Cache // optional; nil disables memoization
	Bus              *eventbus.Bus    // optional; nil disables event publishing
	RateLimit        rate.Limit       // 0 disables ingestion throttling
}

// Summary is the AnalysisSummary: aggregate counts, elapsed time, and the
// bounded top-K slice.
type Summary struct {
	RunID        string
	TotalRecords int
	ByLevel      map[string]int
	Warnings     int
	Elapsed      time.Duration
	TopK         []classifier.Result
	State        State
	Interrupted  bool
}

// Pipeline runs one analysis over a sequence of RecordSources using a
// fixed catalog.
type Pipeline struct {
	cfg     Config
	catalog *catalog.Catalog
}

// New builds a Pipeline, filling in defaults for any zero-valued Config
// fields.
func New(cfg Config, cat *catalog.Catalog) *Pipeline {
	if cfg.MinChunk == 0 {
		cfg.MinChunk = DefaultMinChunk
	}
	if cfg.MaxChunk == 0 {
		cfg.MaxChunk = DefaultMaxChunk
	}
	if cfg.MemoryLimitMB == 0 {
		cfg.MemoryLimitMB = DefaultMemoryLimitMB
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if cfg.TopK == 0 {
		cfg.TopK = DefaultTopK
	}
	return &Pipeline{cfg: cfg, catalog: cat}
}

// Run drains source to completion (or until ctx is cancelled), classifying
// every record and reporting progress/results through cb.
func (p *Pipeline) Run(ctx context.Context, source RecordSource, cb Callbacks) (Summary, error) {
	start := time.Now()
	state := StateReading

	summary := Summary{ByLevel: make(map[string]int)}
	agg := topk.New(p.cfg.TopK)

	var limiter *rate.Limiter
	if p.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(p.cfg.RateLimit, int(p.cfg.RateLimit)+1)
	}

	var workers *workerpool.Pool
	if p.cfg.Workers > 0 {
		// classifyViaPool queues one job per record of a chunk without
		// blocking, so the queue must hold a whole chunk.
		workers = workerpool.NewPool(workerpool.Config{
			Workers:   p.cfg.Workers,
			QueueSize: max(p.cfg.ChunkSize, p.cfg.MaxChunk, DefaultChunkSize),
		})
		defer workers.Close()
	}

	chunkSize := p.cfg.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	adaptive := p.cfg.ChunkSize == 0

	var (
		recordsSeen uint64
		lastReport  = start
		lastCount   uint64
		// overCapRecords counts records read since the heap last went above
		// 2x the memory limit; a full chunk's worth aborts the run.
		overCapRecords int
	)

	publish := func(topic eventbus.Topic, data interface{}) {
		if p.cfg.Bus != nil {
			p.cfg.Bus.Publish(ctx, topic, data)
		}
	}

	reportProgress := func() {
		if cb.OnProgress == nil && p.cfg.Bus == nil {
			return
		}
		now := time.Now()
		elapsed := now.Sub(lastReport).Seconds()
		var throughput float64
		if elapsed > 0 {
			throughput = float64(recordsSeen-lastCount) / elapsed
		}
		progress := Progress{
			RecordsProcessed:  recordsSeen,
			CurrentThroughput: throughput,
			MemoryUsageBytes:  currentHeapBytes(),
			WorkerQueueDepth:  -1,
		}
		if workers != nil {
			progress.WorkerQueueDepth = workers.QueueDepth()
			progress.WorkerPoolHealthy = workers.IsHealthy()
		}
		if cb.OnProgress != nil {
			cb.OnProgress(progress)
		}
		publish(eventbus.TopicProgress, progress)
		lastReport = now
		lastCount = recordsSeen
	}

	dispatch := func(chunk []record.Record) error {
		mode := "in-process"
		chunkStart := time.Now()
		var results []classifier.Result
		var err error
		if workers != nil {
			mode = "worker-pool"
			results, err = p.classifyViaPool(ctx, workers, chunk)
		} else {
			results = p.classifyInProcess(chunk)
		}
		metrics.ObserveChunk(mode, time.Since(chunkStart))
		if err != nil {
			return err
		}
		for _, r := range results {
			summary.ByLevel[r.Level]++
			metrics.RecordsProcessed.WithLabelValues(r.Level).Inc()
			agg.Add(r)
			if cb.OnResult != nil {
				cb.OnResult(r)
			}
		}
		return nil
	}

	chunk := pool.GetChunk()
	defer func() { pool.PutChunk(chunk) }()

	for {
		select {
		case <-ctx.Done():
			state = StateDraining
			if len(chunk) > 0 {
				if err := dispatch(chunk); err != nil {
					return p.finish(summary, agg, StateFailed, start, false), err
				}
				chunk = chunk[:0]
			}
			summary.TotalRecords = int(recordsSeen)
			summary.Interrupted = true
			final := p.finish(summary, agg, StateDone, start, true)
			publish(eventbus.TopicDone, final)
			return final, nil
		default:
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				continue // ctx cancellation handled at top of loop
			}
		}

		rec, err := source.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			if cb.OnWarning != nil {
				cb.OnWarning(err.Error())
			}
			summary.Warnings++
			metrics.RowsRejected.WithLabelValues("read-error").Inc()
			continue
		}

		chunk = append(chunk, rec)
		recordsSeen++

		if uint64(p.cfg.ProgressInterval) > 0 && recordsSeen%uint64(p.cfg.ProgressInterval) == 0 {
			reportProgress()
		}

		if mem := currentHeapBytes(); mem > uint64(p.cfg.MemoryLimitMB)*2*1024*1024 {
			overCapRecords++
			if overCapRecords >= chunkSize {
				state = StateFailed
				summary.TotalRecords = int(recordsSeen)
				return p.finish(summary, agg, state, start, false), fmt.Errorf("%w: heap at %d MiB exceeds 2x of %d MiB cap", ErrMemoryExceeded, mem/(1024*1024), p.cfg.MemoryLimitMB)
			}
		} else {
			overCapRecords = 0
			if mem > uint64(p.cfg.MemoryLimitMB)*1024*1024 && adaptive && chunkSize > p.cfg.MinChunk {
				chunkSize = shrink(chunkSize, p.cfg.MinChunk)
			}
		}

		if len(chunk) >= chunkSize {
			if err := dispatch(chunk); err != nil {
				state = StateFailed
				summary.TotalRecords = int(recordsSeen)
				return p.finish(summary, agg, state, start, false), fmt.Errorf("%w: %v", ErrWorkerFailed, err)
			}
			chunk = chunk[:0]
			if adaptive {
				chunkSize = grow(chunkSize, p.cfg.MaxChunk)
			}
		}
	}

	if len(chunk) > 0 {
		if err := dispatch(chunk); err != nil {
			state = StateFailed
			summary.TotalRecords = int(recordsSeen)
			return p.finish(summary, agg, state, start, false), fmt.Errorf("%w: %v", ErrWorkerFailed, err)
		}
	}

	state = StateDone
	summary.TotalRecords = int(recordsSeen)
	final := p.finish(summary, agg, state, start, false)
	publish(eventbus.TopicDone, final)
	return final, nil
}

func (p *Pipeline) finish(summary Summary, agg *topk.Aggregator, state State, start time.Time, interrupted bool) Summary {
	summary.RunID = runid.New()
	summary.TopK = agg.Top()
	summary.Elapsed = time.Since(start)
	summary.State = state
	summary.Interrupted = interrupted
	metrics.ObserveRun(state.String(), summary.Elapsed)
	return summary
}

func (p *Pipeline) classifyInProcess(chunk []record.Record) []classifier.Result {
	results := make([]classifier.Result, 0, len(chunk))
	for _, rec := range chunk {
		results = append(results, p.classifyOne(rec))
	}
	return results
}

func (p *Pipeline) classifyOne(rec record.Record) classifier.Result {
	if p.cfg.MemoCache == nil {
		return classifier.Classify(p.catalog, rec)
	}
	key := memocache.Key(record.NormalizeName(rec.Name), rec.Type, p.catalog.Version)
	if cached, ok := p.cfg.MemoCache.Get(key); ok {
		cached.Record = rec
		return cached
	}
	result := classifier.Classify(p.catalog, rec)
	p.cfg.MemoCache.Set(key, result)
	return result
}

// classifyViaPool dispatches one chunk as a workerpool Job, retrying once
// on another attempt if the job returns an error, per spec.md §4.6.
func (p *Pipeline) classifyViaPool(ctx context.Context, wp *workerpool.Pool, chunk []record.Record) ([]classifier.Result, error) {
	results := make([]classifier.Result, len(chunk))

	run := func() error {
		var mu sync.Mutex
		var firstErr error
		var wg sync.WaitGroup
		for i, rec := range chunk {
			i, rec := i, rec
			wg.Add(1)
			job := workerpool.JobFunc(func(ctx context.Context) error {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = fmt.Errorf("panic: %v", r)
						}
						mu.Unlock()
					}
				}()
				results[i] = p.classifyOne(rec)
				return nil
			})
			if err := wp.SubmitAsync(ctx, job); err != nil {
				wg.Done()
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}
		wg.Wait()
		return firstErr
	}

	if err := run(); err != nil {
		if err := run(); err != nil { // single retry on another attempt
			return nil, err
		}
	}
	return results, nil
}

func currentHeapBytes() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

func grow(current, max int) int {
	next := current + current/2
	if next > max {
		return max
	}
	return next
}

func shrink(current, min int) int {
	next := current - current/4
	if next < min {
		return min
	}
	return next
}

