package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSpoolFile(t *testing.T, dir, printer, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, printer), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, printer, name), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestNewSpoolInventory(t *testing.T) {
	ttl := 10 * time.Second
	si := NewSpoolInventory("spool", ttl)
	if si.cacheTTL != ttl {
		t.Errorf("expected cacheTTL %v, got %v", ttl, si.cacheTTL)
	}
}

func TestSpoolInventoryQueues(t *testing.T) {
	dir := t.TempDir()
	writeSpoolFile(t, dir, "zebra", "a-01.json")
	writeSpoolFile(t, dir, "epson", "b-01.json")
	writeSpoolFile(t, dir, "epson", "b-01.png")
	writeSpoolFile(t, dir, "epson", "b-02.json")
	writeSpoolFile(t, dir, "epson", "b-03.json.tmp")

	si := NewSpoolInventory(dir, time.Hour)
	queues, err := si.Queues(false)
	if err != nil {
		t.Fatalf("Queues: %v", err)
	}
	if len(queues) != 2 || queues[0].Printer != "epson" || queues[1].Printer != "zebra" {
		t.Fatalf("queues = %+v", queues)
	}
	if queues[0].Copies != 2 || queues[0].Previews != 1 {
		t.Errorf("epson = %+v, want 2 copies 1 preview", queues[0])
	}

	// cached until forced
	writeSpoolFile(t, dir, "star", "c-01.json")
	if queues, _ = si.Queues(false); len(queues) != 2 {
		t.Errorf("cache not used: %d queues", len(queues))
	}
	if queues, _ = si.Queues(true); len(queues) != 3 {
		t.Errorf("forced refresh: %d queues, want 3", len(queues))
	}
}

func TestSpoolInventoryStaleCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	writeSpoolFile(t, dir, "epson", "a-01.json")

	si := NewSpoolInventory(dir, time.Hour)
	if _, err := si.Queues(false); err != nil {
		t.Fatalf("Queues: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	queues, err := si.Queues(true)
	if err == nil {
		t.Error("expected scan error")
	}
	if len(queues) != 1 {
		t.Errorf("stale cache not returned: %+v", queues)
	}
}
