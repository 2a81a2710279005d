// Package worker contiene la lógica del procesador de trabajos de impresión.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
	"github.com/adcondev/rawbt-daemon/internal/protocol"
	"github.com/adcondev/rawbt-daemon/internal/server"
	"github.com/adcondev/rawbt-daemon/internal/sink"
	"github.com/adcondev/rawbt-daemon/internal/status"
	workererrors "github.com/adcondev/rawbt-daemon/internal/worker/errors"
)

// outboxSize bounds the notifications waiting for a slow client.
const outboxSize = 256

// Config holds worker configuration
type Config struct {
	DefaultPrinter string // Printer used when the document targets "current"
}

// ClientNotifier interface for sending results back to clients
type ClientNotifier interface {
	NotifyClient(conn *websocket.Conn, response protocol.Response) error
}

type notification struct {
	jobID    string
	conn     *websocket.Conn
	response protocol.Response
}

// Worker consumes print jobs from the queue and delivers them to a sink
type Worker struct {
	jobQueue      <-chan *server.PrintJob
	notifier      ClientNotifier
	sink          sink.Sink
	config        Config
	ctx           context.Context
	cancel        context.CancelFunc
	outbox        chan notification
	stopChan      chan struct{}
	wg            sync.WaitGroup
	notifyWG      sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
	jobsProcessed int64
	jobsFailed    int64
	jobsCanceled  int64
	lastJobTime   time.Time
}

// NewWorker creates a new print worker
func NewWorker(jobQueue <-chan *server.PrintJob, notifier ClientNotifier, target sink.Sink, config Config) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		jobQueue: jobQueue,
		notifier: notifier,
		sink:     target,
		config:   config,
		ctx:      ctx,
		cancel:   cancel,
		outbox:   make(chan notification, outboxSize),
		stopChan: make(chan struct{}),
	}
}

// Start begins the worker goroutine
func (w *Worker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()

	w.notifyWG.Add(1)
	go w.deliverNotifications()

	log.Println("[WORKER] ✅ Print worker started and ready")
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	close(w.stopChan)
	w.cancel()
	w.wg.Wait()

	close(w.outbox)
	w.notifyWG.Wait()

	stats := w.Stats()
	log.Printf("[WORKER] 🛑 Print worker stopped (processed: %d, failed: %d, canceled: %d)",
		stats.JobsProcessed, stats.JobsFailed, stats.JobsCanceled)
}

// run is the main worker loop
func (w *Worker) run() {
	defer w.wg.Done()

	log.Println("[WORKER] 👂 Waiting for print jobs...")

	for {
		select {
		case <-w.stopChan:
			log.Println("[WORKER] 📴 Received stop signal")
			return

		case job, ok := <-w.jobQueue:
			if !ok {
				log.Println("[WORKER] 📴 Job channel closed, exiting")
				return
			}
			w.processJob(job)
		}
	}
}

// deliverNotifications sends events in order without blocking the worker loop
func (w *Worker) deliverNotifications() {
	defer w.notifyWG.Done()
	for n := range w.outbox {
		if err := w.notifier.NotifyClient(n.conn, n.response); err != nil {
			log.Printf("[WORKER] ⚠️ Failed to notify client for job %s: %v", n.jobID, err)
		}
	}
}

func (w *Worker) emit(job *server.PrintJob, ev status.Event) {
	if job.ClientConn == nil || w.notifier == nil {
		return
	}
	select {
	case w.outbox <- notification{jobID: job.ID, conn: job.ClientConn, response: protocol.EventResponse(job.ID, ev)}:
	default:
		log.Printf("[WORKER] ⚠️ Outbox full, dropping %s event for job %s", ev.Status, job.ID)
	}
}

// processJob handles a single print job
func (w *Worker) processJob(job *server.PrintJob) {
	defer job.Finish()

	if err := job.WaitReady(w.ctx); err != nil {
		log.Printf("[WORKER] 📴 Job %s dropped on shutdown", job.ID)
		return
	}

	ctx, ok := job.Begin(w.ctx)
	if !ok {
		log.Printf("[WORKER] ✋ Job %s canceled before start", job.ID)
		w.record(func() { w.jobsCanceled++ })
		w.emit(job, status.Event{Status: status.Canceled, Message: "Job canceled"})
		return
	}

	startTime := time.Now()
	log.Printf("[WORKER] 🔄 Processing job: %s", job.ID)

	err := w.executePrint(ctx, job)
	duration := time.Since(startTime)

	switch {
	case err == nil:
		w.record(func() { w.jobsProcessed++ })
		log.Printf("[WORKER] ✅ Job %s completed in %v", job.ID, duration)
		w.emit(job, status.Event{
			Status:  status.Success,
			Message: fmt.Sprintf("Print completed in %v", duration.Round(time.Millisecond)),
		})

	case errors.Is(err, context.Canceled) && job.Canceled():
		w.record(func() { w.jobsCanceled++ })
		log.Printf("[WORKER] ✋ Job %s canceled after %v", job.ID, duration)
		w.emit(job, status.Event{Status: status.Canceled, Message: "Job canceled"})

	default:
		w.record(func() { w.jobsFailed++ })
		// Log detailed error to file for debugging
		log.Printf("[WORKER] ❌ Job %s FAILED after %v: %v", job.ID, duration, err)
		w.emit(job, status.Event{
			Status:  status.Error,
			Message: workererrors.ExtractUserFriendlyError(err),
		})
	}
}

func (w *Worker) record(update func()) {
	w.mu.Lock()
	update()
	w.lastJobTime = time.Now()
	w.mu.Unlock()
}

// executePrint decodes, validates and delivers the document
func (w *Worker) executePrint(ctx context.Context, job *server.PrintJob) (err error) {
	// Capturar panics y convertirlos en errores
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic recovered in executePrint: %v", r)
			log.Printf("[WORKER] 💥 Panic in job %s: %v\nStack: %s", job.ID, r, debug.Stack())
		}
	}()

	// 1. Parse document from JSON
	doc, err := printjob.Parse(job.Document)
	if err != nil {
		return fmt.Errorf("error parseando documento: %w", err)
	}

	// 2. Validate document
	if err := printjob.Validate(doc); err != nil {
		return fmt.Errorf("documento inválido: %w", err)
	}

	// 3. Resolve printer
	printerName := w.getPrinterName(doc)
	log.Printf("[WORKER] 🖨️ Job %s -> Printer: %s (%d commands, %d copies)", job.ID, printerName, doc.Len(), doc.Copies)

	// 4. Deliver every copy, reporting overall progress
	lastPercent := 0
	for c := 0; c < doc.Copies; c++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		delivery := sink.Delivery{
			JobID:   job.ID,
			Printer: printerName,
			Copy:    c + 1,
			Job:     doc,
		}
		report := func(fraction float64) {
			percent := int((float64(c) + fraction) / float64(doc.Copies) * 100)
			if percent <= lastPercent || percent <= 0 {
				return
			}
			lastPercent = min(percent, 100)
			w.emit(job, status.Event{Status: status.Progress, Progress: lastPercent, Message: status.Progress})
		}
		if err := w.sink.Deliver(ctx, delivery, report); err != nil {
			return fmt.Errorf("error ejecutando documento: %w", err)
		}
	}

	return nil
}

// getPrinterName resolves the "current" printer to the configured default
func (w *Worker) getPrinterName(doc *printjob.Job) string {
	if doc.Printer != "" && doc.Printer != printjob.DefaultPrinter {
		return doc.Printer
	}
	if w.config.DefaultPrinter != "" {
		return w.config.DefaultPrinter
	}
	return printjob.DefaultPrinter
}

// Stats returns current worker statistics
func (w *Worker) Stats() Statistics {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Statistics{
		IsRunning:     w.isRunning,
		JobsProcessed: w.jobsProcessed,
		JobsFailed:    w.jobsFailed,
		JobsCanceled:  w.jobsCanceled,
		LastJobTime:   w.lastJobTime,
	}
}

// Statistics holds worker runtime statistics
type Statistics struct {
	IsRunning     bool      `json:"is_running"`
	JobsProcessed int64     `json:"jobs_processed"`
	JobsFailed    int64     `json:"jobs_failed"`
	JobsCanceled  int64     `json:"jobs_canceled"`
	LastJobTime   time.Time `json:"last_job_time,omitempty"`
}
