package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// PrintJob represents a queued print request
type PrintJob struct {
	ID         string          `json:"id"`
	ClientConn *websocket.Conn `json:"-"`
	Document   json.RawMessage `json:"datos"`
	ReceivedAt time.Time       `json:"received_at"`

	ready     chan struct{}
	readyOnce sync.Once

	mu       sync.Mutex
	canceled bool
	running  bool
	done     bool
	cancel   context.CancelFunc
	onFinish func()
}

// NewPrintJob returns a job that the worker will not start until
// MarkReady is called.
func NewPrintJob(id string, conn *websocket.Conn, doc json.RawMessage) *PrintJob {
	return &PrintJob{
		ID:         id,
		ClientConn: conn,
		Document:   doc,
		ReceivedAt: time.Now(),
		ready:      make(chan struct{}),
	}
}

// MarkReady releases the job to the worker once every reply about its
// admission has been written to the client.
func (j *PrintJob) MarkReady() {
	if j.ready == nil {
		return
	}
	j.readyOnce.Do(func() { close(j.ready) })
}

// WaitReady blocks until MarkReady is called or ctx is done. Jobs built
// without NewPrintJob are always ready.
func (j *PrintJob) WaitReady(ctx context.Context) error {
	if j.ready == nil {
		return nil
	}
	select {
	case <-j.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Begin marks the job as running and returns its context. ok is false if
// the job was canceled while it waited in the queue.
func (j *PrintJob) Begin(parent context.Context) (ctx context.Context, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.canceled {
		return nil, false
	}
	ctx, j.cancel = context.WithCancel(parent)
	j.running = true
	return ctx, true
}

// Cancel stops the job if it is running or drops it if still queued.
// It returns false once the job has finished.
func (j *PrintJob) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done {
		return false
	}
	j.canceled = true
	if j.cancel != nil {
		j.cancel()
	}
	return true
}

// Canceled reports whether Cancel was called.
func (j *PrintJob) Canceled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.canceled
}

// Finish releases the job's resources and removes it from the server's
// cancel index.
func (j *PrintJob) Finish() {
	j.mu.Lock()
	if j.done {
		j.mu.Unlock()
		return
	}
	j.done = true
	j.running = false
	if j.cancel != nil {
		j.cancel()
	}
	fn := j.onFinish
	j.mu.Unlock()

	if fn != nil {
		fn()
	}
}
