// Package protocol contains the WebSocket message types shared by the
// server, the worker and the client, kept apart to avoid import cycles.
package protocol

import (
	"encoding/json"

	"github.com/adcondev/rawbt-daemon/internal/status"
)

// Message types sent by clients.
const (
	TypeTicket = "ticket"
	TypeCancel = "cancel"
	TypeStatus = "status"
	TypePing   = "ping"
)

// Response types sent by the service.
const (
	TypeAck   = "ack"
	TypeError = "error"
	TypeEvent = "event"
	TypePong  = "pong"
)

// Message represents incoming WebSocket message
type Message struct {
	Tipo  string          `json:"tipo"`
	ID    string          `json:"id,omitempty"`
	Token string          `json:"token,omitempty"`
	Datos json.RawMessage `json:"datos,omitempty"`
}

// Response represents outgoing WebSocket message
type Response struct {
	Tipo     string `json:"tipo"`
	ID       string `json:"id,omitempty"`
	Status   string `json:"status,omitempty"`
	Progress int    `json:"progress,omitempty"`
	Mensaje  string `json:"mensaje,omitempty"`
	Current  int    `json:"current,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

// EventResponse wraps a status event for job id.
func EventResponse(id string, ev status.Event) Response {
	return Response{
		Tipo:     TypeEvent,
		ID:       id,
		Status:   ev.Status,
		Progress: ev.Progress,
		Mensaje:  ev.Message,
	}
}

// Event extracts the status event carried by an event response.
func (r Response) Event() status.Event {
	return status.Event{Status: r.Status, Progress: r.Progress, Message: r.Mensaje}
}

// SinkSummary provides a lightweight overview of the delivery target for health checks
type SinkSummary struct {
	Status    string `json:"status"` // "ok", "error"
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Preview   bool   `json:"preview"`
	Delivered int64  `json:"delivered"`
}
