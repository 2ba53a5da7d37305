package csvsource

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type stringReadCloser struct {
	io.Reader
}

func (stringReadCloser) Close() error { return nil }

func newSource(t *testing.T, data string) *Source {
	t.Helper()
	s, err := Open(stringReadCloser{strings.NewReader(data)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpen_ParsesHeaderRow(t *testing.T) {
	s := newSource(t, "Name,Type,Content,TTL\nwww.example.com,A,192.0.2.1,300\n")

	header := s.Header()
	want := []string{"Name", "Type", "Content", "TTL"}
	if len(header) != len(want) {
		t.Fatalf("header = %v, want %v", header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
}

func TestOpen_StripsLeadingBOM(t *testing.T) {
	s := newSource(t, bom+"Name,Type\nwww.example.com,A\n")

	header := s.Header()
	if header[0] != "Name" {
		t.Fatalf("header[0] = %q, want %q (BOM not stripped)", header[0], "Name")
	}
}

func TestOpen_EmptyFileIsInputMissing(t *testing.T) {
	_, err := Open(stringReadCloser{strings.NewReader("")})
	if !errors.Is(err, ErrInputMissing) {
		t.Fatalf("err = %v, want ErrInputMissing", err)
	}
}

func TestSource_NextReturnsRowsThenEOF(t *testing.T) {
	s := newSource(t, "Name,Type\na.example.com,A\nb.example.com,CNAME\n")

	row, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.Line != 2 || row.Fields[0] != "a.example.com" {
		t.Fatalf("row = %+v, want line 2 a.example.com", row)
	}

	row, err = s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row.Line != 3 || row.Fields[0] != "b.example.com" {
		t.Fatalf("row = %+v, want line 3 b.example.com", row)
	}

	_, err = s.Next()
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestSource_MalformedRowReportsLineNumber(t *testing.T) {
	s := newSource(t, "Name,Type\na.example.com,A\n\"unterminated,CNAME\n")

	_, err := s.Next()
	if err != nil {
		t.Fatalf("Next (row 2): %v", err)
	}

	_, err = s.Next()
	if !errors.Is(err, ErrRowMalformed) {
		t.Fatalf("err = %v, want ErrRowMalformed", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("err = %v, want it to mention line 3", err)
	}
}
