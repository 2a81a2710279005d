package printjob

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
)

// Validate checks a received job before it is printed. The authoring API
// never calls it; it is the print service's gate.
func Validate(job *Job) error {
	if job.Copies < 1 {
		return fmt.Errorf("invalid copies: %d", job.Copies)
	}
	if len(job.commands) == 0 {
		return errors.New("document must contain at least one command")
	}
	for i, cmd := range job.commands {
		if err := validateCommand(cmd); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd.Tag(), err)
		}
	}
	return nil
}

func validateCommand(cmd Command) error {
	switch c := cmd.(type) {
	case PrintCommand:
		return validateAlignment(c.Attributes.Alignment)
	case LineCommand:
		if c.Char == "" {
			return errors.New("line character is required")
		}
		return validateAlignment(c.Attributes.Alignment)
	case ImageCommand:
		if c.Attributes.Scale < 1 || c.Attributes.Scale > 16 {
			return fmt.Errorf("invalid image scale %d (use 1-16)", c.Attributes.Scale)
		}
		if _, err := DecodeImageData(c.Base64); err != nil {
			return err
		}
		return validateAlignment(c.Attributes.Alignment)
	case LeftRightTextCommand:
		if err := validateAlignment(c.LeftAttr.Alignment); err != nil {
			return err
		}
		return validateAlignment(c.RightAttr.Alignment)
	case BarcodeCommand:
		if c.Type == "" {
			return errors.New("barcode symbology is required")
		}
		if !IsSymbology(c.Type) {
			return fmt.Errorf("unsupported barcode symbology %q", c.Type)
		}
		if c.Data == "" {
			return errors.New("barcode data is required")
		}
		return validateAlignment(c.Alignment)
	case QRCodeCommand:
		if c.Data == "" {
			return errors.New("QR data cannot be empty")
		}
		if _, err := qrcode.New(c.Data); err != nil {
			return fmt.Errorf("QR data too long: %w", err)
		}
		return validateAlignment(c.Alignment)
	case LineFeedCommand:
		if c.Count < 0 || c.Count > MaxLineFeed {
			return fmt.Errorf("invalid line feed count %d (use 0-%d)", c.Count, MaxLineFeed)
		}
		return nil
	case CutCommand:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func validateAlignment(a string) error {
	switch a {
	case AlignmentLeft, AlignmentCenter, AlignmentRight:
		return nil
	default:
		return fmt.Errorf("invalid alignment %q", a)
	}
}

// DecodeImageData decodes the base64 payload of an image command. Line
// breaks inserted by MIME style encoders are ignored.
func DecodeImageData(s string) ([]byte, error) {
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(s)
	if clean == "" {
		return nil, errors.New("failed to load image: empty data")
	}
	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return data, nil
}
