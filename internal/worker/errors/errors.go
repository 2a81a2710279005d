package workererrors

import (
	"fmt"
	"strings"
)

// ExtractUserFriendlyError creates a clean error message for the UI
func ExtractUserFriendlyError(err error) string {
	errStr := err.Error()

	// Common error patterns and their friendly messages
	errorMappings := []struct {
		pattern string
		message string
	}{
		{"at least one command", "VALIDATION: Document must contain at least one command"},
		{"invalid copies", "VALIDATION: Copies must be 1 or more"},
		{"invalid alignment", "VALIDATION: Invalid alignment (use left, center or right)"},
		{"malformed job document", "JSON: Invalid document structure"},
		{"line character is required", "LINE: Fill character is required"},
		{"invalid line feed count", "FEED: Line count cannot be negative"},
		{"QR data cannot be empty", "QR: Data cannot be empty"},
		{"QR data too long", "QR: Data exceeds maximum length"},
		{"barcode symbology is required", "BARCODE: Symbology type is required"},
		{"unsupported barcode symbology", "BARCODE: Unsupported symbology"},
		{"barcode data is required", "BARCODE: Data is required"},
		{"invalid image scale", "IMAGE: Scale must be between 1 and 16"},
		{"failed to load image", "IMAGE: Invalid or corrupted base64 data"},
		{"unknown command type", "COMMAND: Unknown command type"},
		{"spool directory", "SINK: Cannot write to spool directory"},
		{"preview", "SINK: Receipt preview could not be rendered"},
	}

	// Check for matching patterns
	for _, mapping := range errorMappings {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(mapping.pattern)) {
			return mapping.message
		}
	}

	// Categorize by error source
	if strings.Contains(errStr, "documento inválido") {
		return fmt.Sprintf("VALIDATION: %s", extractInnerError(errStr))
	}
	if strings.Contains(errStr, "error parseando") {
		return "JSON: Invalid document structure"
	}
	if strings.Contains(errStr, "error ejecutando") {
		return fmt.Sprintf("EXECUTION: %s", extractInnerError(errStr))
	}

	// Fallback:  return cleaned error
	return fmt.Sprintf("ERROR: %s", cleanErrorMessage(errStr))
}

// extractInnerError gets the innermost error message
func extractInnerError(errStr string) string {
	// Find the last colon-separated segment
	parts := strings.Split(errStr, ": ")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return errStr
}

// cleanErrorMessage removes verbose prefixes
func cleanErrorMessage(errStr string) string {
	// Remove common prefixes
	prefixes := []string{
		"error parseando documento: ",
		"documento inválido: ",
		"error ejecutando documento: ",
	}
	result := errStr
	for _, prefix := range prefixes {
		result = strings.TrimPrefix(result, prefix)
	}
	return result
}
