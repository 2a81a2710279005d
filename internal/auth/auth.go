// Package auth guards the daemon's operator surfaces (dashboard, spool
// browser and log admin) with a bcrypt password session, and checks the
// token carried by submitted tickets.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/adcondev/rawbt-daemon/internal/config"
)

const (
	SessionCookieName = "rb_session"
	LoginPath         = "/login"
	// APIPrefix marks routes answered with 401 instead of a login redirect.
	APIPrefix = "/admin/"
)

// Defaults applied by NewManager to zero Config fields.
const (
	DefaultSessionTTL  = 15 * time.Minute
	DefaultMaxAttempts = 5
	DefaultLockout     = 5 * time.Minute
	cleanupInterval    = 5 * time.Minute
)

// Config holds the operator credentials and session policy.
type Config struct {
	// PasswordHash is a bcrypt hash. Empty leaves the operator pages open.
	PasswordHash []byte
	// JobToken must accompany every ticket. Empty accepts any ticket.
	JobToken    string
	SessionTTL  time.Duration
	MaxAttempts int
	Lockout     time.Duration
}

// BuildConfig reads the credentials injected at build time.
func BuildConfig() (Config, error) {
	cfg := Config{JobToken: config.AuthToken}
	if config.PasswordHashB64 == "" {
		return cfg, nil
	}
	hash, err := base64.StdEncoding.DecodeString(config.PasswordHashB64)
	if err != nil {
		return cfg, fmt.Errorf("decoding password hash: %w", err)
	}
	if _, err := bcrypt.Cost(hash); err != nil {
		return cfg, fmt.Errorf("password hash is not bcrypt: %w", err)
	}
	cfg.PasswordHash = hash
	return cfg, nil
}

type session struct {
	expires time.Time
	host    string
}

type failures struct {
	count       int
	lockedUntil time.Time
}

// Manager issues operator sessions bound to the host that logged in and
// throttles password guessing per host.
type Manager struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]session
	failed   map[string]failures
}

// NewManager returns a manager whose cleanup goroutine stops with ctx.
func NewManager(ctx context.Context, cfg Config) *Manager {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = DefaultLockout
	}
	m := &Manager{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]session),
		failed:   make(map[string]failures),
	}
	go m.cleanupLoop(ctx)
	log.Printf("[AUTH] 🔐 Operator login=%v, ticket token=%v", m.Enabled(), m.TokenRequired())
	return m
}

// Enabled reports whether operator pages require a login.
func (m *Manager) Enabled() bool {
	return len(m.cfg.PasswordHash) > 0
}

// TokenRequired reports whether tickets must carry the job token.
func (m *Manager) TokenRequired() bool {
	return m.cfg.JobToken != ""
}

// ValidateToken checks a ticket's token. It satisfies server.TokenValidator.
func (m *Manager) ValidateToken(token string) bool {
	if !m.TokenRequired() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.cfg.JobToken)) == 1
}

// ValidatePassword compares password with the configured hash.
func (m *Manager) ValidatePassword(password string) bool {
	if !m.Enabled() {
		return true
	}
	return bcrypt.CompareHashAndPassword(m.cfg.PasswordHash, []byte(password)) == nil
}

func (m *Manager) newSession(host string) string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("auth: reading random session id: %v", err))
	}
	id := hex.EncodeToString(b)
	m.mu.Lock()
	m.sessions[id] = session{expires: m.now().Add(m.cfg.SessionTTL), host: host}
	m.mu.Unlock()
	return id
}

// touch validates a session for host and slides its expiry forward.
func (m *Manager) touch(id, host string) bool {
	if id == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	now := m.now()
	if now.After(s.expires) {
		delete(m.sessions, id)
		return false
	}
	if s.host != host {
		return false
	}
	s.expires = now.Add(m.cfg.SessionTTL)
	m.sessions[id] = s
	return true
}

// Authenticated reports whether r carries a live session for its host.
func (m *Manager) Authenticated(r *http.Request) bool {
	if !m.Enabled() {
		return true
	}
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	return m.touch(c.Value, host(r.RemoteAddr))
}

// LockedOut reports whether host has used up its login attempts.
func (m *Manager) LockedOut(host string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.failed[host]
	return ok && f.count >= m.cfg.MaxAttempts && m.now().Before(f.lockedUntil)
}

func (m *Manager) recordFailure(host string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.failed[host]
	f.count++
	if f.count >= m.cfg.MaxAttempts {
		f.lockedUntil = m.now().Add(m.cfg.Lockout)
		log.Printf("[AUDIT] LOGIN_LOCKOUT | host=%s | attempts=%d | for=%v", host, f.count, m.cfg.Lockout)
	}
	m.failed[host] = f
}

// Require protects an operator handler. Pages redirect to the login form,
// routes under APIPrefix answer 401.
func (m *Manager) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.Authenticated(r) {
			next(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, APIPrefix) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	}
}

// ServeLogin serves page, or sends an authenticated operator home.
func (m *Manager) ServeLogin(page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() || m.Authenticated(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

// HandleLogin processes the login form posted to /auth/login.
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h := host(r.RemoteAddr)
	if m.LockedOut(h) {
		log.Printf("[AUDIT] LOGIN_BLOCKED | host=%s", h)
		http.Redirect(w, r, LoginPath+"?locked=1", http.StatusSeeOther)
		return
	}
	if !m.ValidatePassword(r.FormValue("password")) {
		m.recordFailure(h)
		log.Printf("[AUDIT] LOGIN_FAILED | host=%s", h)
		http.Redirect(w, r, LoginPath+"?error=1", http.StatusSeeOther)
		return
	}

	m.mu.Lock()
	delete(m.failed, h)
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    m.newSession(h),
		Path:     "/",
		MaxAge:   int(m.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	log.Printf("[AUDIT] LOGIN_SUCCESS | host=%s", h)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout ends the caller's session.
func (m *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		m.mu.Lock()
		delete(m.sessions, c.Value)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// Sessions returns the number of live operator sessions.
func (m *Manager) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, s := range m.sessions {
		if now.After(s.expires) {
			delete(m.sessions, id)
		}
	}
	for h, f := range m.failed {
		if f.count >= m.cfg.MaxAttempts && now.After(f.lockedUntil) {
			delete(m.failed, h)
		}
	}
}

func (m *Manager) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.expire()
		}
	}
}

func host(remoteAddr string) string {
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return h
	}
	return remoteAddr
}
