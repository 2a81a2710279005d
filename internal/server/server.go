// Package server maneja las conexiones WebSocket y el encolamiento de trabajos.
package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/adcondev/rawbt-daemon/internal/protocol"
	"github.com/adcondev/rawbt-daemon/internal/status"
)

// TokenValidator checks the token carried by job submissions.
type TokenValidator interface {
	ValidateToken(token string) bool
}

// Config holds server configuration
type Config struct {
	QueueSize int
	// AllowedOrigins lists origin patterns accepted on /ws. Empty enforces
	// same origin, "*" accepts any origin.
	AllowedOrigins []string
	// JobsPerMinute limits tickets per job token, or per host for
	// connections without one; 0 disables it.
	JobsPerMinute int
}

// Server manages WebSocket connections and job queue
type Server struct {
	clients      *ClientRegistry
	jobQueue     chan *PrintJob
	queueSize    int
	origins      []string
	limiter      *SubmitLimiter
	tokens       TokenValidator
	shutdownOnce sync.Once
	shutdownChan chan struct{}

	jobsMu sync.Mutex
	jobs   map[string]*PrintJob
}

// NewServer creates a new WebSocket server. tokens may be nil to accept
// every submission.
func NewServer(cfg Config, tokens TokenValidator) *Server {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}

	s := &Server{
		clients:      NewClientRegistry(),
		jobQueue:     make(chan *PrintJob, cfg.QueueSize),
		queueSize:    cfg.QueueSize,
		origins:      cfg.AllowedOrigins,
		tokens:       tokens,
		shutdownChan: make(chan struct{}),
		jobs:         make(map[string]*PrintJob),
	}
	if cfg.JobsPerMinute > 0 {
		s.limiter = NewSubmitLimiter(cfg.JobsPerMinute)
	}
	return s
}

// QueueStatus returns current and max queue size
func (s *Server) QueueStatus() (current, capacity int) {
	return len(s.jobQueue), cap(s.jobQueue)
}

// JobQueue returns the job queue channel (for worker consumption)
func (s *Server) JobQueue() <-chan *PrintJob {
	return s.jobQueue
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	return s.clients.Count()
}

func (s *Server) acceptOptions() *websocket.AcceptOptions {
	if slices.Contains(s.origins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: s.origins}
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, s.acceptOptions())
	if err != nil {
		log.Printf("[WS] ❌ Error accepting client: %v", err)
		return
	}

	// Register client
	s.clients.Add(conn)
	log.Printf("[+] Cliente conectado (total: %d) desde %s", s.clients.Count(), r.RemoteAddr)

	// The print service announces itself the same way it reports jobs
	ctx := r.Context()
	welcome := protocol.EventResponse("", status.Event{
		Status:  status.Connected,
		Message: "✅ Servidor respondiendo desde RawBT Daemon",
	})
	_ = wsjson.Write(ctx, conn, welcome)

	// Handle messages
	s.handleMessages(ctx, conn, r.RemoteAddr)

	// Cleanup on disconnect
	s.clients.Remove(conn)
	_ = conn.Close(websocket.StatusNormalClosure, "disconnected")
	log.Printf("[-] Cliente desconectado (remaining: %d)", s.clients.Count())
}

// handleMessages processes incoming messages from a client
func (s *Server) handleMessages(ctx context.Context, conn *websocket.Conn, remoteAddr string) {
	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		var msg protocol.Message
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			// Normal closure or context cancelled
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway ||
				ctx.Err() != nil {
				return
			}
			log.Printf("[WS] ⚠️ Error reading message: %v", err)
			return
		}

		s.routeMessage(ctx, conn, remoteAddr, &msg)
	}
}

// routeMessage routes message to appropriate handler
func (s *Server) routeMessage(ctx context.Context, conn *websocket.Conn, remoteAddr string, msg *protocol.Message) {
	switch msg.Tipo {
	case protocol.TypeTicket:
		s.handleTicket(ctx, conn, remoteAddr, msg)
	case protocol.TypeCancel:
		s.handleCancel(ctx, conn, msg)
	case protocol.TypeStatus:
		s.handleStatus(ctx, conn)
	case protocol.TypePing:
		s.handlePing(ctx, conn, msg)
	default:
		log.Printf("[WS] ⚠️ Unknown message type: %s", msg.Tipo)
		s.sendError(ctx, conn, msg.ID, "Unknown message type: "+msg.Tipo)
	}
}

// handleTicket processes a print job request
func (s *Server) handleTicket(ctx context.Context, conn *websocket.Conn, remoteAddr string, msg *protocol.Message) {
	// Generate ID if not provided
	jobID := msg.ID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	if s.tokens != nil && !s.tokens.ValidateToken(msg.Token) {
		log.Printf("[AUDIT] JOB_REJECTED | id=%s | IP=%s | reason=token", jobID, remoteAddr)
		s.sendError(ctx, conn, jobID, "Invalid or missing token")
		return
	}

	if s.limiter != nil {
		if wait := s.limiter.Admit(submitterKey(msg.Token, remoteAddr)); wait > 0 {
			secs := int((wait + time.Second - 1) / time.Second)
			log.Printf("[QUEUE] 🚫 Job %s rejected: rate limit for %s (retry in %ds)", jobID, remoteAddr, secs)
			s.sendError(ctx, conn, jobID, "Too many jobs, please retry in "+strconv.Itoa(secs)+"s")
			return
		}
	}

	// Validate document exists
	if len(msg.Datos) == 0 {
		log.Printf("[QUEUE] ❌ Job %s rejected: missing 'datos' field", jobID)
		s.sendError(ctx, conn, jobID, "Field 'datos' is required for type 'ticket'")
		return
	}

	s.jobsMu.Lock()
	if _, dup := s.jobs[jobID]; dup {
		s.jobsMu.Unlock()
		s.sendError(ctx, conn, jobID, "Job id already in use")
		return
	}
	job := NewPrintJob(jobID, conn, msg.Datos)
	job.onFinish = func() { s.forget(jobID) }
	s.jobs[jobID] = job
	s.jobsMu.Unlock()

	// Try to enqueue (non-blocking)
	select {
	case s.jobQueue <- job:
		// The worker holds the job until the ack and queued event are out,
		// so they always reach the client before the job's own events.
		defer job.MarkReady()

		current, capacity := s.QueueStatus()
		log.Printf("[>] Job enviado a cola: %s (queue: %d/%d)", jobID, current, capacity)

		_ = wsjson.Write(ctx, conn, protocol.Response{
			Tipo:     protocol.TypeAck,
			ID:       jobID,
			Status:   "queued",
			Current:  current,
			Capacity: capacity,
			Mensaje:  "Job queued for printing",
		})
		_ = wsjson.Write(ctx, conn, protocol.EventResponse(jobID, status.Event{
			Status:  status.Info,
			Message: "Job queued (" + formatStatus(current, capacity) + ")",
		}))

	default:
		// Queue full
		s.forget(jobID)
		current, capacity := s.QueueStatus()
		log.Printf("[QUEUE] 🚫 Queue full, rejecting job: %s (%d/%d)", jobID, current, capacity)
		s.sendError(ctx, conn, jobID, "Queue full, please retry in a few seconds")
	}
}

// handleCancel cancels a queued or running job
func (s *Server) handleCancel(ctx context.Context, conn *websocket.Conn, msg *protocol.Message) {
	s.jobsMu.Lock()
	job, ok := s.jobs[msg.ID]
	s.jobsMu.Unlock()

	response := protocol.Response{Tipo: protocol.TypeCancel, ID: msg.ID, Status: "ok"}
	if !ok || !job.Cancel() {
		response.Status = "error"
		response.Mensaje = "Job not found or already finished"
	} else {
		log.Printf("[QUEUE] ✋ Job %s cancel requested", msg.ID)
	}
	_ = wsjson.Write(ctx, conn, response)
}

func (s *Server) forget(jobID string) {
	s.jobsMu.Lock()
	delete(s.jobs, jobID)
	s.jobsMu.Unlock()
}

// handleStatus sends queue status
func (s *Server) handleStatus(ctx context.Context, conn *websocket.Conn) {
	current, capacity := s.QueueStatus()

	response := protocol.Response{
		Tipo:     protocol.TypeStatus,
		Status:   "ok",
		Current:  current,
		Capacity: capacity,
		Mensaje:  formatStatus(current, capacity),
	}
	_ = wsjson.Write(ctx, conn, response)
}

// handlePing responds to ping
func (s *Server) handlePing(ctx context.Context, conn *websocket.Conn, msg *protocol.Message) {
	response := protocol.Response{
		Tipo:   protocol.TypePong,
		ID:     msg.ID,
		Status: "ok",
	}
	_ = wsjson.Write(ctx, conn, response)
}

// sendError sends error response to client
func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, id, mensaje string) {
	response := protocol.Response{
		Tipo:    protocol.TypeError,
		ID:      id,
		Status:  "error",
		Mensaje: mensaje,
	}
	_ = wsjson.Write(ctx, conn, response)
}

// NotifyClient sends a result back to a specific client
func (s *Server) NotifyClient(conn *websocket.Conn, response protocol.Response) error {
	if conn == nil || !s.clients.Contains(conn) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return wsjson.Write(ctx, conn, response)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)

		clientCount := s.clients.Count()
		log.Printf("[WS] 🛑 Shutting down, disconnecting %d clients", clientCount)

		bye := protocol.EventResponse("", status.Event{Status: status.Info, Message: "Service stopping"})
		s.clients.Broadcast(func(conn *websocket.Conn) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return wsjson.Write(ctx, conn, bye)
		})

		// Notify all clients
		s.clients.ForEach(func(conn *websocket.Conn) {
			_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		})
	})
}

// clientHost strips the port so every connection from one host shares a
// rate limit.
func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func formatStatus(current, capacity int) string {
	return "Queue: " + strconv.Itoa(current) + "/" + strconv.Itoa(capacity)
}
