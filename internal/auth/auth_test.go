package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/adcondev/rawbt-daemon/internal/config"
)

func hashOf(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return hash
}

func newManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewManager(ctx, cfg)
}

func setBuildVar(t *testing.T, v *string, value string) {
	t.Helper()
	old := *v
	*v = value
	t.Cleanup(func() { *v = old })
}

// login posts password from addr and returns the response.
func login(m *Manager, addr, password string) *httptest.ResponseRecorder {
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	m.HandleLogin(rec, req)
	return rec
}

func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestBuildConfig(t *testing.T) {
	setBuildVar(t, &config.AuthToken, "tok")
	tests := []struct {
		name    string
		hashB64 string
		enabled bool
		wantErr bool
	}{
		{"no password", "", false, false},
		{"bcrypt hash", base64.StdEncoding.EncodeToString(hashOf(t, "pw")), true, false},
		{"bad base64", "%%%", false, true},
		{"not bcrypt", base64.StdEncoding.EncodeToString([]byte("plain")), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuildVar(t, &config.PasswordHashB64, tt.hashB64)
			cfg, err := BuildConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildConfig() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := len(cfg.PasswordHash) > 0; got != tt.enabled {
				t.Errorf("password enabled = %v; want %v", got, tt.enabled)
			}
			if cfg.JobToken != "tok" {
				t.Errorf("JobToken = %q; want tok", cfg.JobToken)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	if !newManager(t, Config{}).ValidateToken("anything") {
		t.Error("token rejected with no job token configured")
	}

	m := newManager(t, Config{JobToken: "s3cret"})
	tests := []struct {
		token string
		want  bool
	}{
		{"s3cret", true},
		{"S3CRET", false},
		{"", false},
		{"s3cret ", false},
	}
	for _, tt := range tests {
		if got := m.ValidateToken(tt.token); got != tt.want {
			t.Errorf("ValidateToken(%q) = %v; want %v", tt.token, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	m := newManager(t, Config{PasswordHash: hashOf(t, "hunter2")})
	if !m.ValidatePassword("hunter2") {
		t.Error("correct password rejected")
	}
	if m.ValidatePassword("hunter3") {
		t.Error("wrong password accepted")
	}
}

func TestRequire(t *testing.T) {
	next := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }

	open := newManager(t, Config{}).Require(next)
	rec := httptest.NewRecorder()
	open(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("login disabled: code = %d; want passthrough", rec.Code)
	}

	m := newManager(t, Config{PasswordHash: hashOf(t, "pw")})
	guarded := m.Require(next)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"dashboard redirects", "/", http.StatusSeeOther},
		{"spool redirects", "/spool/EPSON/", http.StatusSeeOther},
		{"admin api answers 401", APIPrefix + "logs", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			guarded(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusSeeOther && rec.Header().Get("Location") != LoginPath {
				t.Errorf("location = %q; want %s", rec.Header().Get("Location"), LoginPath)
			}
		})
	}

	session := login(m, "10.0.0.7:5000", "pw")
	if session.Code != http.StatusSeeOther || session.Header().Get("Location") != "/" {
		t.Fatalf("login: code = %d location = %q", session.Code, session.Header().Get("Location"))
	}

	req := withCookies(httptest.NewRequest(http.MethodGet, APIPrefix+"logs", nil), session)
	req.RemoteAddr = "10.0.0.7:6000"
	rec = httptest.NewRecorder()
	guarded(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("valid session: code = %d; want passthrough", rec.Code)
	}

	req = withCookies(httptest.NewRequest(http.MethodGet, APIPrefix+"logs", nil), session)
	req.RemoteAddr = "10.0.0.8:6000"
	rec = httptest.NewRecorder()
	guarded(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("session from another host: code = %d; want 401", rec.Code)
	}
}

func TestSessionSlidesAndExpires(t *testing.T) {
	m := newManager(t, Config{PasswordHash: hashOf(t, "pw"), SessionTTL: time.Minute})
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	now := start
	m.now = func() time.Time { return now }

	id := m.newSession("10.0.0.7")

	now = start.Add(50 * time.Second)
	if !m.touch(id, "10.0.0.7") {
		t.Fatal("session expired before its TTL")
	}
	now = start.Add(100 * time.Second)
	if !m.touch(id, "10.0.0.7") {
		t.Fatal("use did not extend the session")
	}
	now = start.Add(200 * time.Second)
	if m.touch(id, "10.0.0.7") {
		t.Error("idle session still valid")
	}
	if m.Sessions() != 0 {
		t.Errorf("sessions = %d; want expired session removed", m.Sessions())
	}
}

func TestLoginLockout(t *testing.T) {
	m := newManager(t, Config{PasswordHash: hashOf(t, "pw"), MaxAttempts: 3})

	// every attempt arrives on a new source port
	for i := 0; i < 3; i++ {
		rec := login(m, "10.0.0.9:"+strconv.Itoa(5000+i), "wrong")
		if loc := rec.Header().Get("Location"); loc != LoginPath+"?error=1" {
			t.Fatalf("attempt %d: location = %q", i, loc)
		}
	}
	if !m.LockedOut("10.0.0.9") {
		t.Fatal("host not locked out after MaxAttempts")
	}
	if loc := login(m, "10.0.0.9:4000", "pw").Header().Get("Location"); loc != LoginPath+"?locked=1" {
		t.Errorf("locked host: location = %q", loc)
	}
	if loc := login(m, "10.0.0.10:4000", "pw").Header().Get("Location"); loc != "/" {
		t.Errorf("other host: location = %q; want login", loc)
	}
}

func TestHandleLogout(t *testing.T) {
	m := newManager(t, Config{PasswordHash: hashOf(t, "pw")})
	session := login(m, "10.0.0.7:5000", "pw")
	if m.Sessions() != 1 {
		t.Fatalf("sessions = %d; want 1", m.Sessions())
	}

	req := withCookies(httptest.NewRequest(http.MethodGet, "/auth/logout", nil), session)
	rec := httptest.NewRecorder()
	m.HandleLogout(rec, req)
	if m.Sessions() != 0 {
		t.Errorf("sessions = %d after logout; want 0", m.Sessions())
	}
	if rec.Header().Get("Location") != LoginPath {
		t.Errorf("location = %q; want %s", rec.Header().Get("Location"), LoginPath)
	}
}

func TestServeLogin(t *testing.T) {
	page := []byte("<form></form>")

	rec := httptest.NewRecorder()
	newManager(t, Config{}).ServeLogin(page)(rec, httptest.NewRequest(http.MethodGet, LoginPath, nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("login disabled: code = %d; want redirect home", rec.Code)
	}

	rec = httptest.NewRecorder()
	newManager(t, Config{PasswordHash: hashOf(t, "pw")}).ServeLogin(page)(rec, httptest.NewRequest(http.MethodGet, LoginPath, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != string(page) {
		t.Errorf("code = %d body = %q; want login page", rec.Code, rec.Body.String())
	}
}
