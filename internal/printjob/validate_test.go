package printjob

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     *Job
		wantErr string
	}{
		{"valid", sampleJob(), ""},
		{"empty", New(), "at least one command"},
		{"zero copies", New().SetCopies(0).Print("x"), "invalid copies"},
		{"bad alignment", New().Print("x", NewAttributesString().WithAlignment("middle")), "invalid alignment"},
		{"unknown symbology", New().Add(NewBarcodeCommand("qr", "1")), "unsupported barcode symbology"},
		{"missing symbology", New().Add(NewBarcodeCommand("", "1")), "barcode symbology is required"},
		{"missing barcode data", New().Barcode(""), "barcode data is required"},
		{"empty qr", New().QRCode(""), "QR data cannot be empty"},
		{"qr too long", New().QRCode(strings.Repeat("x", 8000)), "QR data too long"},
		{"scale", New().Image("aGk=", NewAttributesImage().WithScale(17)), "invalid image scale"},
		{"bad base64", New().Image("%%%"), "failed to load image"},
		{"empty line char", New().DrawLine(""), "line character is required"},
		{"negative feed", New().LineFeed(-1), "invalid line feed count"},
		{"feed too long", New().LineFeed(MaxLineFeed + 1), "invalid line feed count"},
		{"longest feed", New().LineFeed(MaxLineFeed), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.job)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v; want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v; want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeImageDataIgnoresLineBreaks(t *testing.T) {
	got, err := DecodeImageData("aGVs\nbG8=\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("DecodeImageData() = %q; want hello", got)
	}
}

func TestValidateParsedFeedCount(t *testing.T) {
	j, err := Parse([]byte(`{"commands":[{"command":"ln","count":20000}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := Validate(j); err == nil || !strings.Contains(err.Error(), "invalid line feed count") {
		t.Errorf("Validate() error = %v; want line feed count error", err)
	}
}
