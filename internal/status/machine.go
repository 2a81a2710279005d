// Package status folds the print service's asynchronous status events
// into the state shown to the user, hiding informational messages after a
// short idle period.
package status

import (
	"sync"
	"time"
)

// Status values carried by service events, plus Hide which only the
// machine itself produces.
const (
	Unknown   = "unknown"
	Connected = "connected"
	Info      = "info"
	Progress  = "progress"
	Error     = "error"
	Success   = "success"
	Canceled  = "canceled"
	Hide      = "hide"
)

// DefaultHideDelay is how long info and connected messages stay visible.
const DefaultHideDelay = 2 * time.Second

// Event is one record of the service's status stream.
type Event struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Kind says what a status display renders.
type Kind int

const (
	// KindNone renders nothing.
	KindNone Kind = iota
	// KindProgress renders a percent-complete bar.
	KindProgress
	// KindError renders a dismissible error panel.
	KindError
	// KindMessage renders a transient message.
	KindMessage
)

// View is the displayable state derived from the current event.
type View struct {
	Kind    Kind
	Status  string
	Percent int
	Message string
}

// Stopper cancels a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Stopper

// Source delivers status events until the returned function is called.
type Source interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Config tunes a Machine. Zero values select the defaults.
type Config struct {
	// HideDelay is the idle time after an info or connected event before
	// the display hides.
	HideDelay time.Duration
	// ProgressIdleHide, when positive, also hides a progress display that
	// received no update for that long. Zero keeps progress on screen.
	ProgressIdleHide time.Duration
	// Schedule arms timers; defaults to time.AfterFunc.
	Schedule Scheduler
	// OnChange is called with every new view, in order, while the machine
	// holds its lock. It must not call back into the machine.
	OnChange func(View)
}

// Machine is the status state machine of one live status display. It owns
// at most one pending timer and at most one event subscription.
type Machine struct {
	// attachMu serializes Attach so only one subscription is ever live.
	attachMu sync.Mutex

	mu          sync.Mutex
	cfg         Config
	current     Event
	timer       Stopper
	generation  uint64
	unsubscribe func()
	closed      bool
}

// NewMachine returns a machine in the unknown state.
func NewMachine(cfg Config) *Machine {
	if cfg.HideDelay <= 0 {
		cfg.HideDelay = DefaultHideDelay
	}
	if cfg.Schedule == nil {
		cfg.Schedule = func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		}
	}
	return &Machine{
		cfg:     cfg,
		current: Event{Status: Unknown},
	}
}

// Attach subscribes the machine to src. A previous subscription is
// released first.
func (m *Machine) Attach(src Source) {
	m.attachMu.Lock()
	defer m.attachMu.Unlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	prev := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if prev != nil {
		prev()
	}
	unsub := src.Subscribe(m.Handle)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		unsub()
		return
	}
	m.unsubscribe = unsub
}

// Handle applies an incoming event. Any pending hide timer is canceled
// before the event takes effect.
func (m *Machine) Handle(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	m.stopTimerLocked()
	m.current = ev

	switch view := render(ev); {
	case view.Kind == KindMessage:
		m.armLocked(m.cfg.HideDelay)
	case view.Kind == KindProgress && m.cfg.ProgressIdleHide > 0:
		m.armLocked(m.cfg.ProgressIdleHide)
	}
	m.notifyLocked()
}

// Dismiss closes the error panel. It has no effect in other states.
func (m *Machine) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.current.Status != Error {
		return
	}
	m.current = Event{Status: Canceled}
	m.notifyLocked()
}

// View returns the current displayable state.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return render(m.current)
}

// Event returns the last applied event.
func (m *Machine) Event() Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close stops the pending timer and releases the subscription. Events
// arriving afterwards are ignored.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTimerLocked()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (m *Machine) armLocked(d time.Duration) {
	m.generation++
	gen := m.generation
	m.timer = m.cfg.Schedule(d, func() { m.expire(gen) })
}

func (m *Machine) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	// a callback that already started sees a stale generation and returns
	m.generation++
}

func (m *Machine) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.generation {
		return
	}
	m.timer = nil
	m.current = Event{Status: Hide}
	m.notifyLocked()
}

func (m *Machine) notifyLocked() {
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(render(m.current))
	}
}

func render(ev Event) View {
	v := View{Status: ev.Status, Message: ev.Message}
	switch {
	case ev.Status == Progress && ev.Progress > 0:
		v.Kind = KindProgress
		v.Percent = min(ev.Progress, 100)
	case ev.Status == Error:
		v.Kind = KindError
	case ev.Status == Info || ev.Status == Connected:
		v.Kind = KindMessage
	default:
		v.Kind = KindNone
		v.Message = ""
	}
	return v
}
