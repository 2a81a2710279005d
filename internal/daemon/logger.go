// Package daemon contiene la lógica del servicio (Windows o consola) del RawBT Daemon.
package daemon

import (
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Log configuration
const (
	maxLogSize        = 5 * 1024 * 1024 // 5MB
	keepLinesOnRotate = 1000
	keepLinesOnFlush  = 50
	tailReadSize      = 64 * 1024
)

var errLogNotInitialized = errors.New("log file not initialized")

// Logger state
var (
	logConfig    = struct{ Verbose bool }{Verbose: true}
	logConfigMux sync.RWMutex
	logFilePath  string
	logFile      *os.File
	logFileMu    sync.Mutex // Protege operaciones de archivo (write, flush, rotate)
)

// Non-critical prefixes (filtered when verbose=false)
var nonCriticalPrefixes = []string{
	"[>] Job enviado",
	"[+] Cliente conectado",
	"[-] Cliente desconectado",
	"[SINK] 📄 Job",
}

// FilteredLogger implements io.Writer with filtering. Lines that pass the
// filter go to the log file and, if set, to Mirror.
type FilteredLogger struct {
	Mirror io.Writer
}

func isNonCritical(msg string) bool {
	for _, prefix := range nonCriticalPrefixes {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}

// Write filters log messages based on verbosity
func (l *FilteredLogger) Write(p []byte) (n int, err error) {
	if !GetVerbose() && isNonCritical(string(p)) {
		return len(p), nil // Discard silently
	}

	if l.Mirror != nil {
		_, _ = l.Mirror.Write(p)
	}

	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return 0, errLogNotInitialized
	}
	return logFile.Write(p)
}

// InitLogger points the standard logger at path, rotating it first if it
// outgrew maxLogSize. mirror, when non-nil, receives a copy of every line.
func InitLogger(path string, verbose bool, mirror io.Writer) error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	logFilePath = path

	logConfigMux.Lock()
	logConfig.Verbose = verbose
	logConfigMux.Unlock()

	if err := rotateLogIfNeeded(path); err != nil {
		log.Printf("[!] Error en rotación de logs: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) //nolint:gosec
	if err != nil {
		return err
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f

	log.SetOutput(&FilteredLogger{Mirror: mirror})
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	return nil
}

// CloseLogger detaches the standard logger from the log file.
func CloseLogger() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	log.SetOutput(os.Stderr)
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// SetVerbose changes the verbosity level at runtime
func SetVerbose(v bool) {
	logConfigMux.Lock()
	logConfig.Verbose = v
	logConfigMux.Unlock()
	log.Printf("[OK] Verbosidad de logs: %v", v)
}

// GetVerbose returns current verbosity level
func GetVerbose() bool {
	logConfigMux.RLock()
	defer logConfigMux.RUnlock()
	return logConfig.Verbose
}

// GetLogFileSize returns current log file size
func GetLogFileSize() int64 {
	logFileMu.Lock()
	path := logFilePath
	logFileMu.Unlock()

	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// FlushLogFile keeps the last keepLinesOnFlush lines and clears the rest
func FlushLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFilePath == "" {
		return errors.New("ruta de log no configurada")
	}

	if err := truncateToTail(logFilePath, keepLinesOnFlush); err != nil {
		return err
	}

	// ningún Write() puede ocurrir mientras se reabre
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) //nolint:gosec
	if err != nil {
		logFile = nil
		return err
	}
	logFile = f
	_, _ = logFile.WriteString("[OK] Logs limpiados\n")

	return nil
}

// rotateLogIfNeeded trims the log to its tail if it exceeds maxLogSize
func rotateLogIfNeeded(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.Size() < maxLogSize {
		return nil
	}
	return truncateToTail(path, keepLinesOnRotate)
}

func truncateToTail(path string, n int) error {
	lines := readLastNLines(path, n)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	return os.WriteFile(path, []byte(content), 0600)
}

// readLastNLines reads the last n lines within the final tailReadSize bytes
func readLastNLines(path string, n int) []string {
	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil || stat.Size() == 0 {
		return nil
	}

	size := stat.Size()
	bufSize := min(size, int64(tailReadSize))

	buf := make([]byte, bufSize)
	if _, err := file.ReadAt(buf, size-bufSize); err != nil && !errors.Is(err, io.EOF) {
		return nil
	}

	allLines := strings.Split(strings.TrimRight(string(buf), "\n"), "\n")

	// If we started mid-line, discard first partial line
	if size > bufSize && len(allLines) > 0 {
		allLines = allLines[1:]
	}

	if len(allLines) <= n {
		return allLines
	}
	return allLines[len(allLines)-n:]
}
