package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adcondev/rawbt-daemon/internal/config"
	"github.com/adcondev/rawbt-daemon/internal/server"
	"github.com/adcondev/rawbt-daemon/internal/sink"
	"github.com/adcondev/rawbt-daemon/internal/worker"
)

func newTestProgram(t *testing.T) *Program {
	t.Helper()
	dir := t.TempDir()
	spool, err := sink.NewSpool(sink.SpoolConfig{Dir: dir})
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}
	ws := server.NewServer(server.Config{QueueSize: 10}, nil)
	w := worker.NewWorker(ws.JobQueue(), ws, spool, worker.Config{})
	w.Start()
	t.Cleanup(w.Stop)

	return &Program{
		wsServer:    ws,
		printWorker: w,
		spool:       spool,
		inventory:   NewSpoolInventory(dir, time.Minute),
		startTime:   time.Now(),
	}
}

func TestHandleHealth(t *testing.T) {
	p := newTestProgram(t)

	rec := httptest.NewRecorder()
	p.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("Status = %q; want ok", got.Status)
	}
	if got.Queue.Capacity != 10 || got.Queue.Current != 0 {
		t.Errorf("Queue = %+v", got.Queue)
	}
	if !got.Worker.Running {
		t.Error("worker reported stopped")
	}
	if got.Sink.Kind != "spool" || got.Sink.Status != "ok" {
		t.Errorf("Sink = %+v", got.Sink)
	}
	if got.Build.Env != config.BuildEnvironment {
		t.Errorf("Build.Env = %q", got.Build.Env)
	}
}

func TestHandleHealthDegraded(t *testing.T) {
	p := newTestProgram(t)
	p.printWorker.Stop()

	rec := httptest.NewRecorder()
	p.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var got HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if got.Status != "degraded" {
		t.Errorf("Status = %q; want degraded", got.Status)
	}
}

func TestHandleLogs(t *testing.T) {
	initTestLogger(t, true)

	tests := []struct {
		name     string
		method   string
		body     string
		wantCode int
		verbose  bool
	}{
		{"get", http.MethodGet, "", http.StatusOK, true},
		{"quiet", http.MethodPost, "verbose=false", http.StatusOK, false},
		{"flush", http.MethodPost, "action=flush", http.StatusOK, false},
		{"bad post", http.MethodPost, "", http.StatusBadRequest, false},
		{"delete", http.MethodDelete, "", http.StatusMethodNotAllowed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/admin/logs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			handleLogs(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d; want %d", rec.Code, tt.wantCode)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var st LogStatus
			if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if st.Verbose != tt.verbose {
				t.Errorf("Verbose = %v; want %v", st.Verbose, tt.verbose)
			}
		})
	}
}
