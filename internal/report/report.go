// Package report implements the Report Formatter (C10): table, JSON, and
// streaming CSV output over a pipeline.Summary and its classifier.Results.
// The table mode's box-drawing banner follows the teacher's cmd/dnsscienced
// main.go console style; the streaming CSV writer is hand-built over
// encoding/csv + bufio for the same reason internal/csvsource is — no pack
// example demonstrates a third-party table-rendering library actually in
// use (only in dependency manifests), so text/tabwriter (stdlib) backs the
// table column alignment.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dnsscience/dnsriskscan/internal/classifier"
	"github.com/dnsscience/dnsriskscan/internal/pipeline"
	"github.com/dnsscience/dnsriskscan/internal/pool"
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// Format selects the output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// levelRank orders risk levels highest-first for --risk-level filtering;
// a level not in this table (shouldn't happen for a validated catalog)
// sorts as lowest.
var levelRank = map[string]int{
	"critical": 4,
	"high":     3,
	"medium":   2,
	"low":      1,
	"safe":     0,
}

// Options controls formatting and filtering, shared by every mode.
type Options struct {
	RiskLevel string // "" = no filter; otherwise keep this level or higher
	Verbose   bool
	English   bool // reserved for localized headers; true is the only supported locale today
}

// Keep reports whether level passes the configured --risk-level filter.
// Per spec.md §4.8/P6, filtering never affects summary counts — callers
// apply Keep only when building the results section.
func (o Options) Keep(level string) bool {
	if o.RiskLevel == "" {
		return true
	}
	return levelRank[level] >= levelRank[o.RiskLevel]
}

// detailedCSVHeader is the fixed column order from spec.md §6.
var detailedCSVHeader = []string{
	"Name", "Type", "Content", "TTL", "Proxied", "Created", "Modified",
	"RiskScore", "RiskLevel", "MatchedPatterns", "Reasons",
}

// CSVWriter streams detailed rows incrementally so the full result set
// never needs to be materialised in memory, per spec.md §4.8. Output is
// staged through a pool.MediumBufferPool-backed bufio.Writer, sized for a
// typical run's worth of CSV rows between flushes.
type CSVWriter struct {
	buf   []byte
	bw    *bufio.Writer
	w     *csv.Writer
	opts  Options
	wrote bool
}

// NewCSVWriter wraps w; the header row is written lazily on the first
// WriteResult call that passes the risk-level filter (or eagerly if no
// results are ever written, Close still emits the header).
func NewCSVWriter(w io.Writer, opts Options) *CSVWriter {
	buf := pool.GetMediumBuffer()
	bw := bufio.NewWriterSize(w, len(buf))
	return &CSVWriter{buf: buf, bw: bw, w: csv.NewWriter(bw), opts: opts}
}

// WriteResult appends one row if it passes the configured risk-level
// filter; otherwise it's a no-op (the filter applies at the formatter
// stage, not the classifier, per P6).
func (cw *CSVWriter) WriteResult(r classifier.Result) error {
	if !cw.opts.Keep(r.Level) {
		return nil
	}
	if !cw.wrote {
		if err := cw.w.Write(detailedCSVHeader); err != nil {
			return err
		}
		cw.wrote = true
	}
	row := []string{
		r.Record.Name,
		record.TypeString(r.Record.Type),
		r.Record.Content,
		strconv.FormatUint(uint64(r.Record.TTL), 10),
		proxiedString(r.Record.Proxied),
		r.Record.Created,
		r.Record.Modified,
		strconv.Itoa(r.Score),
		r.Level,
		strings.Join(r.MatchedPatterns, ";"),
		strings.Join(r.Reasons, ";"),
	}
	return cw.w.Write(row)
}

// Close flushes buffered output, writing the header alone if no row ever
// passed the filter, and returns the staging buffer to its pool.
func (cw *CSVWriter) Close() error {
	if !cw.wrote {
		if err := cw.w.Write(detailedCSVHeader); err != nil {
			return err
		}
	}
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return err
	}
	err := cw.bw.Flush()
	pool.PutMediumBuffer(cw.buf)
	return err
}

func proxiedString(p *bool) string {
	if p == nil {
		return ""
	}
	if *p {
		return "true"
	}
	return "false"
}

// jsonDocument is the single `{summary, results[]}` document from spec.md
// §4.8's JSON mode.
type jsonDocument struct {
	Summary jsonSummary  `json:"summary"`
	Results []jsonResult `json:"results"`
}

type jsonSummary struct {
	RunID        string         `json:"runId"`
	TotalRecords int            `json:"totalRecords"`
	ByLevel      map[string]int `json:"byLevel"`
	Warnings     int            `json:"warnings"`
	ElapsedSecs  float64        `json:"elapsedSeconds"`
	Interrupted  bool           `json:"interrupted"`
}

type jsonResult struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Content         string   `json:"content"`
	TTL             uint32   `json:"ttl"`
	Score           int      `json:"score"`
	Level           string   `json:"level"`
	MatchedPatterns []string `json:"matchedPatterns"`
	Reasons         []string `json:"reasons"`
}

// WriteJSON emits the full `{summary, results[]}` document. Only valid for
// modes that retain the complete result set (in-memory, or bounded-memory
// with explicit retention) — streaming modes must use WriteTable or
// NewCSVWriter instead, per spec.md's Ordering guarantees.
func WriteJSON(w io.Writer, summary pipeline.Summary, results []classifier.Result, opts Options) error {
	doc := jsonDocument{
		Summary: jsonSummary{
			RunID:        summary.RunID,
			TotalRecords: summary.TotalRecords,
			ByLevel:      summary.ByLevel,
			Warnings:     summary.Warnings,
			ElapsedSecs:  summary.Elapsed.Seconds(),
			Interrupted:  summary.Interrupted,
		},
	}
	for _, r := range results {
		if !opts.Keep(r.Level) {
			continue
		}
		doc.Results = append(doc.Results, jsonResult{
			Name:            r.Record.Name,
			Type:            record.TypeString(r.Record.Type),
			Content:         r.Record.Content,
			TTL:             r.Record.TTL,
			Score:           r.Score,
			Level:           r.Level,
			MatchedPatterns: r.MatchedPatterns,
			Reasons:         r.Reasons,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// levelsHighToLow is the fixed display order for the per-level breakdown.
var levelsHighToLow = []string{"critical", "high", "medium", "low", "safe"}

// WriteTable renders the fixed-width summary banner, then (if opts.Verbose
// or opts.RiskLevel is set) a detailed table of the filtered results.
func WriteTable(w io.Writer, summary pipeline.Summary, results []classifier.Result, opts Options) error {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                    DNS Zone Risk Analysis                     ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	status := "completed"
	if summary.Interrupted {
		status = "interrupted"
	}
	fmt.Fprintf(w, "Run ID:             %s\n", summary.RunID)
	fmt.Fprintf(w, "Run status:        %s\n", status)
	fmt.Fprintf(w, "Total records:      %d\n", summary.TotalRecords)
	fmt.Fprintf(w, "Warnings:           %d\n", summary.Warnings)
	fmt.Fprintf(w, "Elapsed:            %s\n", summary.Elapsed.Round(1e6))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Risk level breakdown:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, level := range levelsHighToLow {
		count := summary.ByLevel[level]
		pct := 0.0
		if summary.TotalRecords > 0 {
			pct = float64(count) / float64(summary.TotalRecords) * 100
		}
		fmt.Fprintf(tw, "  %s\t%d\t(%.1f%%)\n", level, count, pct)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if len(summary.TopK) > 0 {
		n := 10
		if n > len(summary.TopK) {
			n = len(summary.TopK)
		}
		fmt.Fprintf(w, "Top %d offenders:\n", n)
		topTw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(topTw, "  Name\tScore\tLevel\n")
		for _, r := range summary.TopK[:n] {
			fmt.Fprintf(topTw, "  %s\t%d\t%s\n", r.Record.Name, r.Score, r.Level)
		}
		if err := topTw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if !opts.Verbose && opts.RiskLevel == "" {
		return nil
	}

	filtered := filterSorted(results, opts)
	if len(filtered) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Detailed results:")
	dtw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(dtw, "  Name\tType\tScore\tLevel\tMatched Patterns\n")
	for _, r := range filtered {
		fmt.Fprintf(dtw, "  %s\t%s\t%d\t%s\t%s\n",
			r.Record.Name, record.TypeString(r.Record.Type), r.Score, r.Level,
			strings.Join(r.MatchedPatterns, ";"))
	}
	return dtw.Flush()
}

func filterSorted(results []classifier.Result, opts Options) []classifier.Result {
	out := make([]classifier.Result, 0, len(results))
	for _, r := range results {
		if opts.Keep(r.Level) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
