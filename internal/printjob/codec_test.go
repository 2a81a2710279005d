package printjob

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func sampleJob() *Job {
	title := NewAttributesString(Align(AlignmentCenter), DoubleHeight(), DoubleWidth())
	return New().
		SetCopies(2).
		Print("Rich Format", title).
		DrawLine("*", title).
		LeftRightTextWithFormat("Total", "100.00", title).
		LeftIndentRightText(6, "left indent 6", "right part").
		Add(NewBarcodeCommand(BarcodeUPCA, "012345678905").WithHeight(64).WithHRI(HRIAbove).WithAlignment(AlignmentCenter)).
		QRCode("https://rawbt.ru", NewAttributesQRCode().WithMultiply(5)).
		Image("aGVsbG8=", NewAttributesImage().WithScale(8).WithGraphicFilter(DitheringSF)).
		LineFeed(3).
		Cut()
}

func commandsArray(t *testing.T, b []byte) json.RawMessage {
	t.Helper()
	var doc struct {
		Commands json.RawMessage `json:"commands"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatal(err)
	}
	return doc.Commands
}

func TestRoundTrip(t *testing.T) {
	orig := sampleJob()
	first, err := orig.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := parsed.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(commandsArray(t, first), commandsArray(t, second)) {
		t.Errorf("commands differ after round trip:\n%s\n%s", first, second)
	}
	if parsed.Copies != 2 || parsed.Printer != DefaultPrinter || parsed.Template != DefaultTemplate {
		t.Errorf("job fields = %d %q %q", parsed.Copies, parsed.Printer, parsed.Template)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var j Job
	if err := json.Unmarshal([]byte(sampleJob().String()), &j); err != nil {
		t.Fatal(err)
	}
	if j.Len() != sampleJob().Len() {
		t.Errorf("Len() = %d; want %d", j.Len(), sampleJob().Len())
	}
}

func TestParseDefaults(t *testing.T) {
	j, err := Parse([]byte(`{"commands":[
		{"command":"print","text":"hi"},
		{"command":"ln"},
		{"command":"qrcode","data":"x","aligment":"right"},
		{"command":"barcode","data":"123"}
	]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if j.Copies != 1 || j.Printer != "current" || j.Template != "default" {
		t.Errorf("job defaults = %d %q %q", j.Copies, j.Printer, j.Template)
	}
	cmds := j.Commands()
	if got := cmds[0].(PrintCommand).Attributes; got != NewAttributesString() {
		t.Errorf("print attributes = %+v; want defaults", got)
	}
	if got := cmds[1].(LineFeedCommand).Count; got != 1 {
		t.Errorf("ln count = %d; want 1", got)
	}
	if got := cmds[2].(QRCodeCommand); got.Alignment != AlignmentRight || got.Multiply != 3 {
		t.Errorf("qrcode = %+v", got)
	}
	if got := cmds[3].(BarcodeCommand); got.Type != BarcodeUPCE || got.Width != 3 {
		t.Errorf("barcode = %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `{"commands":`, ErrMalformedDocument},
		{"unknown tag", `{"commands":[{"command":"beep"}]}`, ErrUnknownCommand},
		{"bad field type", `{"commands":[{"command":"ln","count":"two"}]}`, ErrMalformedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestQRCodeAlignmentKey(t *testing.T) {
	qr := NewAttributesQRCode().WithAlignment(AlignmentRight)
	cmd := commandsOf(t, decodeDoc(t, New().QRCode("x", qr)))[0]
	if cmd["aligment"] != AlignmentRight {
		t.Errorf("aligment = %v; want %s", cmd["aligment"], AlignmentRight)
	}

	for _, key := range []string{"aligment", "alignment"} {
		j, err := Parse([]byte(`{"commands":[{"command":"qrcode","data":"x","` + key + `":"left"}]}`))
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", key, err)
		}
		if got := j.Commands()[0].(QRCodeCommand).Alignment; got != AlignmentLeft {
			t.Errorf("%s: alignment = %q; want left", key, got)
		}
	}
}
