package metrics

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestListen_ServesMetricsEndpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := Listen(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()

	ObserveRun("completed", 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	if !strings.Contains(string(buf[:n]), "dnsriskscan_run_duration_seconds") {
		t.Fatalf("expected registered metric name in output, got %q", string(buf[:n]))
	}
}

func TestObserveChunkAndRun_DoNotPanic(t *testing.T) {
	ObserveChunk("in-process", time.Millisecond)
	ObserveChunk("worker-pool", 2*time.Millisecond)
	ObserveRun("failed", time.Second)
}
