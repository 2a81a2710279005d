package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/judwhite/go-svc"

	embed "github.com/adcondev/rawbt-daemon"
	"github.com/adcondev/rawbt-daemon/internal/auth"
	"github.com/adcondev/rawbt-daemon/internal/config"
	"github.com/adcondev/rawbt-daemon/internal/server"
	"github.com/adcondev/rawbt-daemon/internal/sink"
	"github.com/adcondev/rawbt-daemon/internal/worker"
)

// spoolScanTTL bounds how often /health rescans the spool directory.
const spoolScanTTL = 30 * time.Second

// Program implements svc.Service interface
type Program struct {
	// ConfigFile is an optional YAML overlay for the build environment.
	ConfigFile string
	// Console mirrors the log to stdout.
	Console bool

	wg          sync.WaitGroup
	quit        chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
	cfg         config.Environment
	httpServer  *http.Server
	wsServer    *server.Server
	printWorker *worker.Worker
	spool       *sink.Spool
	inventory   *SpoolInventory
	authMgr     *auth.Manager
	startTime   time.Time
}

// Init loads configuration and initializes logging
func (p *Program) Init(_ svc.Environment) error {
	cfg, err := config.Load(config.BuildEnvironment, p.ConfigFile)
	if err != nil {
		return err
	}
	p.cfg = cfg

	var mirror io.Writer
	if p.Console {
		mirror = os.Stdout
	}
	if err := initLogging(cfg, mirror); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║   🧾 RAWBT DAEMON - Receipt Print Service                  ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")
	log.Printf("[INIT] 🚀 Starting service - Environment: %s", cfg.Name)
	log.Printf("[INIT] 📅 Build: %s %s", config.BuildDate, config.BuildTime)

	return nil
}

// Start starts the service
func (p *Program) Start() error {
	p.quit = make(chan struct{})
	p.startTime = time.Now()
	p.ctx, p.cancel = context.WithCancel(context.Background())
	cfg := p.cfg

	// Operator login and ticket token (bound to service context for clean shutdown)
	authCfg, err := auth.BuildConfig()
	if err != nil {
		p.cancel()
		return fmt.Errorf("invalid auth configuration: %w", err)
	}
	p.authMgr = auth.NewManager(p.ctx, authCfg)

	// Delivery target
	spoolDir := cfg.SpoolPath(os.Getenv("PROGRAMDATA"))
	spool, err := sink.NewSpool(sink.SpoolConfig{
		Dir:        spoolDir,
		Preview:    cfg.Preview,
		PaperWidth: cfg.PaperWidth,
	})
	if err != nil {
		p.cancel()
		return fmt.Errorf("failed to initialize spool: %w", err)
	}
	p.spool = spool
	p.inventory = NewSpoolInventory(spoolDir, spoolScanTTL)
	p.inventory.LogStartupDiagnostics()

	// Initialize WebSocket server
	p.wsServer = server.NewServer(server.Config{
		QueueSize:      cfg.QueueCapacity,
		AllowedOrigins: cfg.AllowedOrigins,
		JobsPerMinute:  cfg.JobsPerMinute,
	}, p.authMgr)

	// Initialize print worker
	p.printWorker = worker.NewWorker(
		p.wsServer.JobQueue(),
		p.wsServer,
		p.spool,
		worker.Config{DefaultPrinter: cfg.DefaultPrinter},
	)
	p.printWorker.Start()

	// Setup embedded filesystem
	webFS, err := fs.Sub(embed.WebFiles, "internal/assets/web")
	if err != nil {
		log.Fatalf("[FATAL] Error loading web assets: %v", err)
	}

	// Parse index.html as Go template for token injection
	indexBytes := readWebFile(webFS, "index.html")
	dashboardTmpl, err := template.New("dashboard").Parse(string(indexBytes))
	if err != nil {
		log.Fatalf("[FATAL] Error parsing index.html as template: %v", err)
	}

	// Read login.html
	loginHTML := readWebFile(webFS, "login.html")

	// Create HTTP mux with auth boundaries
	mux := http.NewServeMux()

	// ── PUBLIC ROUTES (no auth required) ─────────────────────
	mux.Handle("/css/", http.FileServer(http.FS(webFS)))
	mux.Handle("/js/", http.FileServer(http.FS(webFS)))
	mux.HandleFunc(auth.LoginPath, p.authMgr.ServeLogin(loginHTML))
	mux.HandleFunc("/auth/login", p.authMgr.HandleLogin)
	mux.HandleFunc("/auth/logout", p.authMgr.HandleLogout)
	mux.HandleFunc("/ws", p.wsServer.HandleWebSocket) // WS is public; token validates inside per-message
	mux.HandleFunc("/health", p.handleHealth)         // Health is public for monitoring tools

	// ── PROTECTED ROUTES (session required for dashboard) ────
	mux.Handle("/spool/", p.authMgr.Require(http.StripPrefix("/spool/", http.FileServer(http.Dir(spoolDir))).ServeHTTP))
	mux.HandleFunc(auth.APIPrefix+"logs", p.authMgr.Require(handleLogs))
	mux.HandleFunc("/", p.authMgr.Require(serveDashboard(dashboardTmpl)))

	p.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		log.Println("┌─────────────────────────────────────────────────────────────┐")
		log.Printf("│ 🧾 RAWBT DAEMON READY - Environment: %-23s│", cfg.Name)
		log.Printf("│ 🔌 WebSocket: ws://%s/ws%-25s│", cfg.ListenAddr, "")
		log.Printf("│ 🌐 Dashboard: http://%s%-27s│", cfg.ListenAddr, "")
		log.Printf("│ 💚 Health:     http://%s/health%-20s│", cfg.ListenAddr, "")
		log.Printf("│ 📂 Spool:      %-43s│", spoolDir)
		log.Printf("│ 🔐 Auth:       %-43v│", p.authMgr.Enabled())
		log.Println("└─────────────────────────────────────────────────────────────┘")

		if err := p.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[HTTP] ❌ Error starting HTTP server: %v", err)
		}
	}()

	return nil
}

// Stop stops the service gracefully
func (p *Program) Stop() error {
	log.Println("[STOP] 🛑 Service shutting down...")

	// 1. Cancel context (stops auth cleanup goroutine)
	if p.cancel != nil {
		p.cancel()
	}

	// 2. Stop print worker
	if p.printWorker != nil {
		p.printWorker.Stop()
	}

	// 3. Graceful HTTP shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if p.httpServer != nil {
		if err := p.httpServer.Shutdown(ctx); err != nil {
			log.Printf("[STOP] ⚠️ HTTP shutdown error: %v", err)
		}
	}

	// 4. Shutdown WebSocket server
	if p.wsServer != nil {
		p.wsServer.Shutdown()
	}

	if p.quit != nil {
		close(p.quit)
	}
	p.wg.Wait()

	uptime := time.Since(p.startTime)
	log.Printf("[STOP] ✅ Service stopped (uptime: %v)", uptime.Round(time.Second))
	return CloseLogger()
}

// handleHealth reports queue, worker and spool state
func (p *Program) handleHealth(w http.ResponseWriter, _ *http.Request) {
	current, capacity := p.wsServer.QueueStatus()
	stats := p.printWorker.Stats()

	var utilization float64
	if capacity > 0 {
		utilization = float64(current) / float64(capacity) * 100
	}

	response := HealthResponse{
		Status: "ok",
		Queue: QueueStatus{
			Current:     current,
			Capacity:    capacity,
			Utilization: utilization,
		},
		Worker: WorkerStatus{
			Running:       stats.IsRunning,
			JobsProcessed: stats.JobsProcessed,
			JobsFailed:    stats.JobsFailed,
			JobsCanceled:  stats.JobsCanceled,
		},
		Sink:    p.spool.Summary(),
		Clients: p.wsServer.ClientCount(),
		Build: BuildInfo{
			Env:  config.BuildEnvironment,
			Date: config.BuildDate,
			Time: config.BuildTime,
		},
		Uptime: int(time.Since(p.startTime).Seconds()),
	}

	queues, err := p.inventory.Queues(false)
	if err != nil {
		log.Printf("[SPOOL] ⚠️ Error scanning spool: %v", err)
	}
	response.Spool = queues

	if response.Sink.Status == "error" || !stats.IsRunning {
		response.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(response)
}

func initLogging(envConfig config.Environment, mirror io.Writer) error {
	logPath := envConfig.LogPath(os.Getenv("PROGRAMDATA"))
	logDir := filepath.Dir(logPath)

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return err
	}

	if err := InitLogger(logPath, envConfig.Verbose, mirror); err != nil {
		return err
	}

	log.Printf("[INIT] 📁 Log file: %s", logPath)
	return nil
}

// serveDashboard renders the dashboard template with token injection.
func serveDashboard(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := struct{ AuthToken string }{AuthToken: config.AuthToken}
		if err := tmpl.Execute(w, data); err != nil {
			log.Printf("[X] Error rendering dashboard: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// LogStatus is the body of /admin/logs.
type LogStatus struct {
	Verbose bool  `json:"verbose"`
	Size    int64 `json:"size_bytes"`
}

// handleLogs reports log state on GET. POST accepts action=flush to trim
// the file, or verbose=true|false.
func handleLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		switch {
		case r.FormValue("action") == "flush":
			if err := FlushLogFile(); err != nil {
				log.Printf("[X] Error flushing log: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		case r.FormValue("verbose") != "":
			SetVerbose(r.FormValue("verbose") == "true")
		default:
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LogStatus{Verbose: GetVerbose(), Size: GetLogFileSize()})
}

// readWebFile reads a file from the embedded FS, fataling on error.
func readWebFile(webFS fs.FS, name string) []byte {
	data, err := fs.ReadFile(webFS, name)
	if err != nil {
		log.Fatalf("[FATAL] Error reading %s: %v", name, err)
	}
	return data
}
