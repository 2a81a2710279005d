// Package config define la configuración por entorno del RawBT Daemon.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Build variables, injected at compile time
var (
	BuildEnvironment = "local"
	BuildDate        = "unknown"
	BuildTime        = "unknown"
	// ServiceName is used for logging and as part of the log file path.
	ServiceName = "RawBT_Daemon"
	// PasswordHashB64 is a base64-encoded bcrypt hash injected via ldflags.
	// If empty, dashboard authentication is disabled (dev mode).
	PasswordHashB64 = ""
	// AuthToken is injected via ldflags.
	// If empty, print job submissions are accepted without token validation.
	AuthToken = ""
	// ServerPort is the default port for the service, can be overridden by environment config.
	ServerPort = "8766"
	// AllowedOrigins is a comma-separated list of allowed origin host patterns injected via ldflags.
	// Example: "pos.example.com,localhost:*"
	AllowedOrigins = ""
)

// Environment holds environment-specific settings
type Environment struct {
	// Identificación
	Name        string `yaml:"-"`
	ServiceName string `yaml:"-"`

	// Red
	ListenAddr   string        `yaml:"listen_addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// Cola
	QueueCapacity int `yaml:"queue_capacity"`
	JobsPerMinute int `yaml:"jobs_per_minute"`

	// Logging
	Verbose bool `yaml:"verbose"`

	// Impresora
	DefaultPrinter string `yaml:"default_printer"`

	// Spool
	SpoolDir   string `yaml:"spool_dir"`
	Preview    bool   `yaml:"preview"`
	PaperWidth int    `yaml:"paper_width"`

	// Security
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogPath returns the full log file path for this environment.
// Uses the convention: <programData>/<ServiceName>/<ServiceName>.log
func (e Environment) LogPath(programData string) string {
	return filepath.Join(programData, e.ServiceName, e.ServiceName+".log")
}

// SpoolPath returns SpoolDir, or <programData>/<ServiceName>/spool when unset.
func (e Environment) SpoolPath(programData string) string {
	if e.SpoolDir != "" {
		return e.SpoolDir
	}
	return filepath.Join(programData, e.ServiceName, "spool")
}

// environments defines available deployment configurations
var environments = map[string]Environment{
	"remote": {
		Name:           "REMOTO",
		ServiceName:    ServiceName,
		ListenAddr:     "0.0.0.0:" + ServerPort,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		QueueCapacity:  50,
		JobsPerMinute:  30,
		Verbose:        false,
		DefaultPrinter: "",
		Preview:        false,
		PaperWidth:     384,
		// By default, restrict to localhost for security
		AllowedOrigins: []string{"localhost:*", "127.0.0.1:*"},
	},
	"local": {
		Name:           "LOCAL",
		ServiceName:    ServiceName,
		ListenAddr:     "localhost:" + ServerPort,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		QueueCapacity:  50,
		JobsPerMinute:  0,
		Verbose:        true,
		DefaultPrinter: "58mm PT-210",
		Preview:        true,
		PaperWidth:     384,
		// Allow all in local dev mode for convenience, but can be overridden
		AllowedOrigins: []string{"*"},
	},
}

// GetEnvironment returns config for the specified environment.
func GetEnvironment(env string) Environment {
	cfg, ok := environments[env]
	if !ok {
		log.Printf("[!] Unknown environment '%s', defaulting to 'local'", env)
		cfg = environments["local"]
	}

	// Override allowed origins from ldflags if provided
	if AllowedOrigins != "" {
		cfg.AllowedOrigins = strings.Split(AllowedOrigins, ",")
	}

	return cfg
}

// Load returns the env environment with the YAML file at path applied on
// top. Keys missing from the file keep their environment value. An empty
// path skips the overlay.
func Load(env, path string) (Environment, error) {
	cfg := GetEnvironment(env)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.QueueCapacity <= 0 {
		return cfg, fmt.Errorf("parsing config %s: queue_capacity must be positive", path)
	}

	log.Printf("[i] Config overlay loaded from %s", path)
	return cfg, nil
}
