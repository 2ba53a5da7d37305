// bench_ingest measures classification throughput over synthetic records
// generated in memory (no CSV parsing or provider decoding), running the
// Chunk Pipeline in one mode per invocation (-mode=stream or
// -mode=workers) to check against spec.md's P4 throughput floor (100 000 records/s in
// bounded-memory mode on a representative catalog). It generalises the
// teacher's tools/bench_throughput.go (a raw-UDP DNS query flooder) from
// measuring query round-trips to measuring record classification rate.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/dnsscience/dnsriskscan/internal/catalog"
	"github.com/dnsscience/dnsriskscan/internal/pipeline"
	"github.com/dnsscience/dnsriskscan/internal/record"
)

var (
	rows    = flag.Int("rows", 1000000, "number of synthetic rows to generate")
	mode    = flag.String("mode", "stream", "execution mode: stream|workers")
	workers = flag.Int("workers", 4, "worker count when -mode=workers")
)

func main() {
	flag.Parse()

	log.Printf("Generating %d synthetic records", *rows)
	cat, err := catalog.LoadBytes([]byte(benchCatalogYAML))
	if err != nil {
		log.Fatalf("loading benchmark catalog: %v", err)
	}

	cfg := pipeline.Config{}
	if *mode == "workers" {
		cfg.Workers = *workers
	}
	p := pipeline.New(cfg, cat)

	src := &syntheticSource{remaining: *rows}

	start := time.Now()
	summary, err := p.Run(context.Background(), src, pipeline.Callbacks{})
	if err != nil {
		log.Fatalf("pipeline run: %v", err)
	}
	elapsed := time.Since(start)

	rate := float64(summary.TotalRecords) / elapsed.Seconds()

	fmt.Printf("\n--- Results ---\n")
	fmt.Printf("Mode:           %s\n", *mode)
	fmt.Printf("Total Records:  %d\n", summary.TotalRecords)
	fmt.Printf("Duration:       %.2fs\n", elapsed.Seconds())
	fmt.Printf("Records/sec:    %.0f\n", rate)
	fmt.Printf("By Level:       %v\n", summary.ByLevel)
}

// syntheticSource yields a deterministic, evenly-mixed stream of records
// without ever materialising the whole set, so bench_ingest itself doesn't
// become the bottleneck it's trying to measure.
type syntheticSource struct {
	remaining int
	i         int
}

var namePrefixes = []string{"old-", "www.", "test-", "api.", "mail.", "legacy-"}

func (s *syntheticSource) Next() (record.Record, error) {
	if s.remaining <= 0 {
		return record.Record{}, io.EOF
	}
	s.remaining--
	s.i++
	prefix := namePrefixes[s.i%len(namePrefixes)]
	return record.Record{
		Name:    prefix + strconv.Itoa(s.i) + ".example.com",
		Type:    record.TypeA,
		Content: "192.0.2.1",
		TTL:     300,
	}, nil
}

const benchCatalogYAML = `
version: "1.0"
patterns:
  prefixes:
    high: ["old-", "legacy-"]
    medium: ["test-"]
    low: []
  suffixes:
    high: []
    medium: []
    low: []
  keywords:
    high: []
    medium: []
    low: []
scoring:
  high: 80
  medium: 50
  low: 15
  base: 10
thresholds:
  critical: 90
  high: 70
  medium: 40
  low: 10
  safe: 0
`
