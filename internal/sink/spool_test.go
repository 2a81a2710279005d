package sink

import (
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
)

func testJob() *printjob.Job {
	job := printjob.New()
	job.Print("Hello world", printjob.NewAttributesString(printjob.Align(printjob.AlignmentCenter)))
	job.DrawLine("-")
	job.LeftRightText("Total", "$10.00")
	job.QRCode("https://example.com", printjob.NewAttributesQRCode())
	job.Ln()
	job.Cut()
	return job
}

func TestSpoolDeliver(t *testing.T) {
	dir := t.TempDir()
	sp, err := NewSpool(SpoolConfig{Dir: dir})
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}

	var last float64
	d := Delivery{JobID: "job-1", Printer: "current", Copy: 1, Job: testJob()}
	if err := sp.Deliver(context.Background(), d, func(p float64) { last = p }); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if last != 1 {
		t.Errorf("final progress = %v, want 1", last)
	}

	data, err := os.ReadFile(filepath.Join(dir, "current", "job-1-01.json"))
	if err != nil {
		t.Fatalf("spooled document missing: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("spooled document is not JSON: %v", err)
	}
	if doc["printer"] != "current" {
		t.Errorf("printer = %v", doc["printer"])
	}
	if _, err := os.Stat(filepath.Join(dir, "current", "job-1-01.png")); !os.IsNotExist(err) {
		t.Errorf("preview written without Preview enabled")
	}

	sum := sp.Summary()
	if sum.Status != "ok" || sum.Delivered != 1 || sum.Preview {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestSpoolPreview(t *testing.T) {
	dir := t.TempDir()
	sp, err := NewSpool(SpoolConfig{Dir: dir, Preview: true, PaperWidth: 576})
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}

	d := Delivery{JobID: "job-2", Printer: "EPSON TM/T20", Copy: 2, Job: testJob()}
	if err := sp.Deliver(context.Background(), d, func(float64) {}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "EPSON_TM_T20", "job-2-02.png"))
	if err != nil {
		t.Fatalf("preview missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("preview is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 576 {
		t.Errorf("preview width = %d, want 576", img.Bounds().Dx())
	}
}

func TestSpoolCanceledContext(t *testing.T) {
	sp, err := NewSpool(SpoolConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sp.Deliver(ctx, Delivery{JobID: "x", Printer: "p", Copy: 1, Job: testJob()}, func(float64) {})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if sp.Summary().Delivered != 0 {
		t.Error("canceled delivery was counted")
	}
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"current":      "current",
		"EPSON TM-T20": "EPSON_TM-T20",
		"../etc":       "_etc",
		"..":           "_",
		"":             "_",
	}
	for in, want := range tests {
		if got := safeName(in); got != want {
			t.Errorf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}
