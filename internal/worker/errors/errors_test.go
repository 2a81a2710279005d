package workererrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
)

func TestExtractUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected string
	}{
		// Specific Error Mappings
		{
			name:     "At least one command",
			input:    errors.New("documento inválido: document must contain at least one command"),
			expected: "VALIDATION: Document must contain at least one command",
		},
		{
			name:     "Invalid copies",
			input:    errors.New("documento inválido: invalid copies: 0"),
			expected: "VALIDATION: Copies must be 1 or more",
		},
		{
			name:     "Invalid alignment",
			input:    errors.New(`command 2 (print): invalid alignment "middle"`),
			expected: "VALIDATION: Invalid alignment (use left, center or right)",
		},
		{
			name:     "Malformed document",
			input:    fmt.Errorf("error parseando documento: %w", printjob.ErrMalformedDocument),
			expected: "JSON: Invalid document structure",
		},
		{
			name:     "QR data empty",
			input:    errors.New("QR data cannot be empty"),
			expected: "QR: Data cannot be empty",
		},
		{
			name:     "QR data too long",
			input:    errors.New("QR data too long: no version fits"),
			expected: "QR: Data exceeds maximum length",
		},
		{
			name:     "Barcode symbology required",
			input:    errors.New("barcode symbology is required"),
			expected: "BARCODE: Symbology type is required",
		},
		{
			name:     "Unsupported symbology",
			input:    errors.New(`unsupported barcode symbology "qr"`),
			expected: "BARCODE: Unsupported symbology",
		},
		{
			name:     "Barcode data required",
			input:    errors.New("barcode data is required"),
			expected: "BARCODE: Data is required",
		},
		{
			name:     "Image scale",
			input:    errors.New("invalid image scale 17 (use 1-16)"),
			expected: "IMAGE: Scale must be between 1 and 16",
		},
		{
			name:     "Failed to load image",
			input:    errors.New("failed to load image: illegal base64 data"),
			expected: "IMAGE: Invalid or corrupted base64 data",
		},
		{
			name:     "Unknown command type",
			input:    fmt.Errorf("command 0: %w: %q", printjob.ErrUnknownCommand, "beep"),
			expected: "COMMAND: Unknown command type",
		},
		{
			name:     "Spool directory",
			input:    errors.New("error ejecutando documento: spool directory: permission denied"),
			expected: "SINK: Cannot write to spool directory",
		},

		// Categorization Logic
		{
			name:     "Document invalid (categorization)",
			input:    errors.New("documento inválido: field X is wrong"),
			expected: "VALIDATION: field X is wrong",
		},
		{
			name:     "Error parsing (categorization)",
			input:    errors.New("error parseando JSON"),
			expected: "JSON: Invalid document structure",
		},
		{
			name:     "Error executing (categorization)",
			input:    errors.New("error ejecutando: printer failed"),
			expected: "EXECUTION: printer failed",
		},

		// Fallback Logic
		{
			name:     "Fallback with clean error message",
			input:    errors.New("some random error"),
			expected: "ERROR: some random error",
		},
		{
			name:     "Nested error",
			input:    errors.New("outer error: inner error"),
			expected: "ERROR: outer error: inner error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractUserFriendlyError(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractUserFriendlyError() = %v, want %v", got, tt.expected)
			}
		})
	}
}
