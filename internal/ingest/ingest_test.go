package ingest

import (
	"io"
	"strings"
	"testing"

	"github.com/dnsscience/dnsriskscan/internal/provider"
	"github.com/dnsscience/dnsriskscan/internal/record"
)

type stringReadCloser struct {
	io.Reader
}

func (stringReadCloser) Close() error { return nil }

func TestReader_DetectsAndNormalises(t *testing.T) {
	data := "Name,Type,Content,TTL,Proxied\n" +
		"old-api.example.com,A,192.0.2.1,300,false\n" +
		"www.example.com,A,192.0.2.2,300,true\n"

	r, warnings, err := Open(stringReadCloser{strings.NewReader(data)}, "export.csv", provider.NewRegistry(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if r.Adapter().ID() != "cloudflare" {
		t.Fatalf("adapter = %s, want cloudflare", r.Adapter().ID())
	}

	var got []record.Record
	for {
		res, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, res.Record)
	}

	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Name != "old-api.example.com" {
		t.Fatalf("got[0].Name = %q", got[0].Name)
	}
}

func TestReader_SkippedRowsBecomeWarnings(t *testing.T) {
	data := "Name,Type,Content,TTL\n" +
		"www.example.com,SOA,v,300\n" +
		"api.example.com,A,192.0.2.1,300\n"

	r, _, err := Open(stringReadCloser{strings.NewReader(data)}, "export.csv", provider.NewRegistry(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	res, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if res.Record.Name != "api.example.com" {
		t.Fatalf("got %q, want the A record to survive the skip", res.Record.Name)
	}

	warnings := r.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", warnings)
	}
	if warnings[0].Line != 2 {
		t.Fatalf("warning line = %d, want 2", warnings[0].Line)
	}
}

func TestReader_ForcedProviderSkipsDetection(t *testing.T) {
	data := "Name,Type,Value,TTL\nwww.example.com,A,192.0.2.1,300\n"

	r, _, err := Open(stringReadCloser{strings.NewReader(data)}, "export.csv", provider.NewRegistry(), "route53")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Adapter().ID() != "route53" {
		t.Fatalf("adapter = %s, want route53 (forced)", r.Adapter().ID())
	}
}

func TestReader_OutOfZoneRecordBecomesWarning(t *testing.T) {
	data := "Name,Type,Content,TTL\n" +
		"www.example.com,A,192.0.2.1,300\n" +
		"host.other-domain.com,A,192.0.2.2,300\n"

	r, _, err := Open(stringReadCloser{strings.NewReader(data)}, "example.com.csv", provider.NewRegistry(), "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var got []record.Record
	for {
		res, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, res.Record)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2 (out-of-zone rows are warned, not dropped)", len(got))
	}

	warnings := r.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly 1", warnings)
	}
	if !strings.Contains(warnings[0].Reason, "outside zone") {
		t.Fatalf("warning reason = %q, want an out-of-zone message", warnings[0].Reason)
	}
}

func TestZoneFromFilename(t *testing.T) {
	cases := map[string]string{
		"example.com.csv":       "example.com",
		"/tmp/zones/acme.net.csv": "acme.net",
		"export.csv":             "export",
	}
	for in, want := range cases {
		if got := zoneFromFilename(in); got != want {
			t.Errorf("zoneFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
