// Package client talks to the print service over its WebSocket endpoint:
// it submits wire documents, cancels jobs and fans status events out to
// subscribers such as a status.Machine.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
	"github.com/adcondev/rawbt-daemon/internal/protocol"
	"github.com/adcondev/rawbt-daemon/internal/status"
)

var (
	// ErrClosed is returned once the connection is gone.
	ErrClosed = errors.New("client: connection closed")
	// ErrRejected wraps the service's reason for refusing a request.
	ErrRejected = errors.New("client: request rejected")
)

// Options configures Dial.
type Options struct {
	// Token is sent with every submitted job.
	Token string
	// Header is added to the handshake request, e.g. Origin.
	Header http.Header
}

// Client is a connection to the print service. It is safe for concurrent use.
type Client struct {
	conn  *websocket.Conn
	token string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	pending map[string]chan protocol.Response
	subs    map[int]func(status.Event)
	nextSub int
	err     error

	statusMu  sync.Mutex
	closeOnce sync.Once
}

// Dial connects to the service at url (ws:// or wss://).
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: opts.Header})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		token:   opts.Token,
		ctx:     cctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		pending: make(map[string]chan protocol.Response),
		subs:    make(map[int]func(status.Event)),
	}
	go c.readLoop()
	return c, nil
}

// Submit serializes job and submits it.
func (c *Client) Submit(ctx context.Context, job *printjob.Job) (string, error) {
	doc, err := job.Serialize()
	if err != nil {
		return "", fmt.Errorf("encoding job: %w", err)
	}
	return c.SubmitJob(ctx, doc)
}

// SubmitJob hands a wire document to the service and waits until it is
// queued. The returned id tags the job's status events.
func (c *Client) SubmitJob(ctx context.Context, doc []byte) (string, error) {
	id := uuid.NewString()
	resp, err := c.call(ctx, id, protocol.Message{
		Tipo:  protocol.TypeTicket,
		ID:    id,
		Token: c.token,
		Datos: doc,
	})
	if err != nil {
		return "", err
	}
	if resp.Tipo != protocol.TypeAck {
		return "", fmt.Errorf("%w: %s", ErrRejected, resp.Mensaje)
	}
	return id, nil
}

// Cancel asks the service to stop job id.
func (c *Client) Cancel(ctx context.Context, id string) error {
	resp, err := c.call(ctx, protocol.TypeCancel+"/"+id, protocol.Message{Tipo: protocol.TypeCancel, ID: id})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Mensaje)
	}
	return nil
}

// QueueStatus reports how many jobs wait in the service queue.
func (c *Client) QueueStatus(ctx context.Context) (current, capacity int, err error) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()

	resp, err := c.call(ctx, protocol.TypeStatus, protocol.Message{Tipo: protocol.TypeStatus})
	if err != nil {
		return 0, 0, err
	}
	return resp.Current, resp.Capacity, nil
}

// Subscribe registers fn for every status event, including those of
// other clients' broadcasts. fn runs on the read goroutine.
func (c *Client) Subscribe(fn func(status.Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, or nil while it is open.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close ends the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.err == nil {
		c.err = ErrClosed
	}
	c.mu.Unlock()

	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close(websocket.StatusNormalClosure, "bye")
		c.cancel()
	})
	<-c.done
	return err
}

func (c *Client) call(ctx context.Context, key string, msg protocol.Message) (protocol.Response, error) {
	ch := make(chan protocol.Response, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return protocol.Response{}, err
	}
	if _, busy := c.pending[key]; busy {
		c.mu.Unlock()
		return protocol.Response{}, fmt.Errorf("client: request %s already pending", key)
	}
	c.pending[key] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
	}()

	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return protocol.Response{}, fmt.Errorf("sending %s: %w", msg.Tipo, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return protocol.Response{}, ctx.Err()
	case <-c.done:
		return protocol.Response{}, c.Err()
	}
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		var resp protocol.Response
		if err := wsjson.Read(c.ctx, c.conn, &resp); err != nil {
			c.mu.Lock()
			closedByUs := c.err != nil
			if !closedByUs {
				c.err = fmt.Errorf("%w: %v", ErrClosed, err)
			}
			c.mu.Unlock()
			if !closedByUs {
				c.publish(status.Event{Status: status.Error, Message: "Connection to print service lost"})
			}
			return
		}
		c.dispatch(resp)
	}
}

func (c *Client) dispatch(resp protocol.Response) {
	key := resp.ID
	switch resp.Tipo {
	case protocol.TypeEvent:
		c.publish(resp.Event())
		return
	case protocol.TypeCancel:
		key = protocol.TypeCancel + "/" + resp.ID
	case protocol.TypeStatus:
		key = protocol.TypeStatus
	case protocol.TypePong:
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[key]
	c.mu.Unlock()
	if ok {
		select {
		case ch <- resp:
		default:
		}
		return
	}
	if resp.Tipo == protocol.TypeError {
		c.publish(status.Event{Status: status.Error, Message: resp.Mensaje})
	}
}

func (c *Client) publish(ev status.Event) {
	c.mu.Lock()
	fns := make([]func(status.Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
