package daemon

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// SpoolQueue summarizes one printer directory of the spool.
type SpoolQueue struct {
	Printer  string    `json:"printer"`
	Copies   int       `json:"copies"`
	Previews int       `json:"previews"`
	LastJob  time.Time `json:"last_job,omitempty"`
}

// SpoolInventory lists the printer directories of the spool with caching
type SpoolInventory struct {
	dir         string
	cache       []SpoolQueue
	lastRefresh time.Time
	cacheTTL    time.Duration
	mu          sync.RWMutex
}

// NewSpoolInventory creates an inventory of dir refreshed at most every ttl
func NewSpoolInventory(dir string, ttl time.Duration) *SpoolInventory {
	return &SpoolInventory{
		dir:      dir,
		cacheTTL: ttl,
	}
}

// Queues returns cached queues or rescans the spool if stale
func (si *SpoolInventory) Queues(forceRefresh bool) ([]SpoolQueue, error) {
	si.mu.RLock()
	if !forceRefresh && time.Since(si.lastRefresh) < si.cacheTTL && si.cache != nil {
		result := make([]SpoolQueue, len(si.cache))
		copy(result, si.cache)
		si.mu.RUnlock()
		return result, nil
	}
	si.mu.RUnlock()

	si.mu.Lock()
	defer si.mu.Unlock()

	// Double-check after acquiring write lock
	if !forceRefresh && time.Since(si.lastRefresh) < si.cacheTTL && si.cache != nil {
		result := make([]SpoolQueue, len(si.cache))
		copy(result, si.cache)
		return result, nil
	}

	queues, err := scanSpool(si.dir)
	if err != nil {
		if si.cache != nil {
			result := make([]SpoolQueue, len(si.cache))
			copy(result, si.cache)
			return result, err // Return stale cache copy on error
		}
		return nil, err
	}

	si.cache = queues
	si.lastRefresh = time.Now()

	result := make([]SpoolQueue, len(queues))
	copy(result, queues)
	return result, nil
}

func scanSpool(dir string) ([]SpoolQueue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	queues := make([]SpoolQueue, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		q := SpoolQueue{Printer: e.Name()}
		for _, f := range files {
			switch {
			case strings.HasSuffix(f.Name(), ".json"):
				q.Copies++
			case strings.HasSuffix(f.Name(), ".png"):
				q.Previews++
			default:
				continue
			}
			if info, err := f.Info(); err == nil && info.ModTime().After(q.LastJob) {
				q.LastJob = info.ModTime()
			}
		}
		queues = append(queues, q)
	}
	sort.Slice(queues, func(i, j int) bool { return queues[i].Printer < queues[j].Printer })
	return queues, nil
}

// LogStartupDiagnostics logs spool contents at service start
func (si *SpoolInventory) LogStartupDiagnostics() {
	queues, err := si.Queues(true)
	if err != nil {
		log.Printf("[SPOOL] ⚠️ Error scanning spool %s: %v", si.dir, err)
		return
	}

	log.Println("[SPOOL] ══════════════════════════════════════════════════")
	log.Printf("[SPOOL] 📂 %s holds %d printer queue(s)", si.dir, len(queues))
	if GetVerbose() {
		for _, q := range queues {
			log.Printf("[SPOOL]    • %s: %d copies, %d previews", q.Printer, q.Copies, q.Previews)
		}
	}
	log.Println("[SPOOL] ══════════════════════════════════════════════════")
}
