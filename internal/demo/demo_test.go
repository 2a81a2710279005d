package demo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	pj "github.com/adcondev/rawbt-daemon/internal/printjob"
)

func testImage(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestEveryDemoIsValid(t *testing.T) {
	img := testImage(t)
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			job, err := Build(name, img)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if err := pj.Validate(job); err != nil {
				t.Errorf("Validate: %v", err)
			}

			// survives the wire unchanged
			data, err := job.Serialize()
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			back, err := pj.Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			again, _ := back.Serialize()
			if !bytes.Equal(data, again) {
				t.Error("re-encoded document differs")
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build("nope", ""); err == nil {
		t.Error("expected error for unknown demo")
	}
	if !NeedsImage("images") || NeedsImage("hello") {
		t.Error("NeedsImage disagrees with the demo table")
	}
	if _, err := Build("images", ""); !errors.Is(err, ErrImageRequired) {
		t.Errorf("err = %v; want ErrImageRequired", err)
	}
}

func TestRichFormatBothFormats(t *testing.T) {
	cmds := RichFormat().Commands()
	last, ok := cmds[len(cmds)-1].(pj.LeftRightTextCommand)
	if !ok {
		t.Fatalf("last command is %T", cmds[len(cmds)-1])
	}
	// each span keeps its own format
	if !last.LeftAttr.DoubleWidth || last.LeftAttr.DoubleHeight {
		t.Errorf("left attr = %+v", last.LeftAttr)
	}
	if !last.RightAttr.DoubleHeight || last.RightAttr.DoubleWidth {
		t.Errorf("right attr = %+v", last.RightAttr)
	}
}

func TestFontsUsesJobDefaults(t *testing.T) {
	job := Fonts()
	if job.DefaultStringAttributes().PrinterFont != pj.FontA {
		t.Fatalf("default font = %d", job.DefaultStringAttributes().PrinterFont)
	}
	// "If a document requires..." uses the job default
	plain, ok := job.Commands()[1].(pj.PrintCommand)
	if !ok || plain.Attributes.PrinterFont != pj.FontA {
		t.Errorf("second command = %+v", job.Commands()[1])
	}
}
