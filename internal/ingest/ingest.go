// Package ingest is the Record Normaliser (C5): it drives a csvsource.Source
// through a provider.Registry, turning raw rows into canonical
// record.Record values and classifying every outcome as Ok, Skip (warning,
// non-fatal), or Fatal, per spec.md §9's translation strategy.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/miekg/dns"

	"github.com/dnsscience/dnsriskscan/internal/csvsource"
	"github.com/dnsscience/dnsriskscan/internal/provider"
	"github.com/dnsscience/dnsriskscan/internal/record"
)

// ErrDetectionAmbiguous is surfaced as a non-fatal warning when no adapter
// clears the confidence floor and the generic adapter had to be used.
var ErrDetectionAmbiguous = errors.New("provider detection ambiguous")

// Warning is a non-fatal per-row or per-file issue collected during ingest.
type Warning struct {
	File   string
	Line   int
	Reason string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Reason)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Reason)
}

// Result is one successfully normalised record plus its source location.
type Result struct {
	File   string
	Line   int
	Record record.Record
}

// Reader ties a csvsource.Source to a provider.Registry (or an explicit
// --provider override) for one input file, and yields Results and Warnings
// one row at a time via Next.
type Reader struct {
	file     string
	zone     string
	source   *csvsource.Source
	adapter  provider.Adapter
	registry *provider.Registry
	pending  []Warning
}

// Open detects the input format from its header row and prepares a Reader.
// If forceID is non-empty, detection is skipped and that adapter is used
// unconditionally. The zone apex hint is derived from the file's base name
// (without extension); it qualifies a bare "@" row and, when it contains a
// dot, drives the out-of-zone warning in Next.
func Open(rc io.ReadCloser, file string, registry *provider.Registry, forceID string) (*Reader, []Warning, error) {
	src, err := csvsource.Open(rc)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	var adapter provider.Adapter
	if forceID != "" {
		adapter = registry.ByID(forceID)
	} else {
		var ambiguous bool
		adapter, ambiguous = registry.Detect(src.Header())
		if ambiguous {
			warnings = append(warnings, Warning{
				File:   file,
				Reason: fmt.Sprintf("%v: using generic adapter", ErrDetectionAmbiguous),
			})
		}
	}

	return &Reader{
		file:     file,
		zone:     zoneFromFilename(file),
		source:   src,
		adapter:  adapter,
		registry: registry,
	}, warnings, nil
}

// Adapter reports which provider adapter this reader settled on.
func (r *Reader) Adapter() provider.Adapter {
	return r.adapter
}

// Next returns the next normalised record, or io.EOF once the file is
// exhausted. Rows the CSV tokenizer or the adapter reject are accumulated
// as Warnings and skipped transparently; call Warnings to retrieve them
// after a nil-error Next, or at EOF.
func (r *Reader) Next() (Result, error) {
	for {
		row, err := r.source.Next()
		if err != nil {
			if err == io.EOF {
				return Result{}, io.EOF
			}
			r.pending = append(r.pending, Warning{File: r.file, Reason: err.Error()})
			continue
		}

		decoded := r.adapter.Decode(r.source.Header(), row.Fields, r.zone)
		if decoded.Outcome == provider.OutcomeSkip {
			r.pending = append(r.pending, Warning{
				File:   r.file,
				Line:   row.Line,
				Reason: decoded.Reason,
			})
			continue
		}

		// The zone hint is only trustworthy when it looks like an actual
		// domain (e.g. derived from "example.com.csv"); a generic filename
		// like "export.csv" yields a single-label "zone" that isn't one, so
		// membership against it would just be noise.
		if strings.Contains(r.zone, ".") && !dns.IsSubDomain(record.Fqdn(r.zone), record.Fqdn(decoded.Record.Name)) {
			r.pending = append(r.pending, Warning{
				File:   r.file,
				Line:   row.Line,
				Reason: fmt.Sprintf("record %q is outside zone %q", decoded.Record.Name, r.zone),
			})
		}

		return Result{File: r.file, Line: row.Line, Record: decoded.Record}, nil
	}
}

// Warnings drains and returns every warning accumulated since the last call.
func (r *Reader) Warnings() []Warning {
	w := r.pending
	r.pending = nil
	return w
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.source.Close()
}

// zoneFromFilename derives an apex hint from a CSV file's base name, e.g.
// "example.com.csv" -> "example.com". Used to qualify rows that reference
// the apex as a bare "@" and for the zone-membership check in Next.
func zoneFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".")
}
