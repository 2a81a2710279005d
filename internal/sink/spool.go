package sink

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/adcondev/rawbt-daemon/internal/protocol"
)

// SpoolConfig configures a Spool.
type SpoolConfig struct {
	Dir string
	// Preview also writes a PNG rendering of each copy.
	Preview bool
	// PaperWidth is the preview width in dots; 384 (58mm) when zero.
	PaperWidth int
}

// Spool writes each delivered copy as a wire document, and optionally a
// PNG preview, under <Dir>/<printer>/<job>-<copy>.
type Spool struct {
	dir       string
	renderer  *Renderer
	delivered atomic.Int64
}

// NewSpool creates the spool directory and returns the sink.
func NewSpool(cfg SpoolConfig) (*Spool, error) {
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("spool directory: %w", err)
	}
	s := &Spool{dir: cfg.Dir}
	if cfg.Preview {
		s.renderer = NewRenderer(cfg.PaperWidth)
	}
	return s, nil
}

// Deliver implements Sink.
func (s *Spool) Deliver(ctx context.Context, d Delivery, report func(float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.dir, safeName(d.Printer))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("spool directory: %w", err)
	}
	base := filepath.Join(dir, fmt.Sprintf("%s-%02d", safeName(d.JobID), d.Copy))

	doc, err := d.Job.Serialize()
	if err != nil {
		return fmt.Errorf("encoding job: %w", err)
	}
	if err := writeFileAtomic(base+".json", doc); err != nil {
		return fmt.Errorf("spool directory: %w", err)
	}

	if s.renderer == nil {
		report(1)
	} else {
		img, err := s.renderer.Render(ctx, d.Job, report)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		if err := writeFileAtomic(base+".png", buf.Bytes()); err != nil {
			return fmt.Errorf("spool directory: %w", err)
		}
	}

	s.delivered.Add(1)
	log.Printf("[SINK] 📄 Job %s copy %d spooled to %s", d.JobID, d.Copy, base)
	return nil
}

// Summary implements Sink.
func (s *Spool) Summary() protocol.SinkSummary {
	st := "ok"
	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		st = "error"
	}
	return protocol.SinkSummary{
		Status:    st,
		Kind:      "spool",
		Target:    s.dir,
		Preview:   s.renderer != nil,
		Delivered: s.delivered.Load(),
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// safeName maps an identifier to a single path element.
func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
	s = strings.Trim(s, ".")
	if s == "" {
		return "_"
	}
	return s
}
