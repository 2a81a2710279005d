package printjob

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when the input is not a JSON job document.
	ErrMalformedDocument = errors.New("malformed job document")
	// ErrUnknownCommand is returned for a command tag outside the known set.
	ErrUnknownCommand = errors.New("unknown command type")
)

// Wire shapes. Only these fields are ever written; anything else the job
// holds in memory stays out of the document.
type (
	wireDocument struct {
		Copies   int    `json:"copies"`
		Printer  string `json:"printer"`
		Template string `json:"template"`
		Commands []any  `json:"commands"`
	}

	wirePrint struct {
		Command          string           `json:"command"`
		Text             string           `json:"text"`
		AttributesString AttributesString `json:"attributesString"`
	}

	wireLine struct {
		Command          string           `json:"command"`
		Ch               string           `json:"ch"`
		AttributesString AttributesString `json:"attributesString"`
	}

	wireImage struct {
		Command         string          `json:"command"`
		Base64          string          `json:"base64"`
		AttributesImage AttributesImage `json:"attributesImage"`
	}

	wireLeftRightText struct {
		Command     string           `json:"command"`
		LeftText    string           `json:"leftText"`
		RightText   string           `json:"rightText"`
		LeftIndent  int              `json:"leftIndent"`
		RightIndent int              `json:"rightIndent"`
		LeftAttr    AttributesString `json:"leftAttr"`
		RightAttr   AttributesString `json:"rightAttr"`
	}

	wireBarcode struct {
		Command   string `json:"command"`
		Data      string `json:"data"`
		Type      string `json:"type"`
		HRI       string `json:"hri"`
		Font      int    `json:"font"`
		Height    int    `json:"height"`
		Width     int    `json:"width"`
		Alignment string `json:"alignment"`
	}

	// The RawBT service reads the qrcode alignment as "aligment".
	wireQRCode struct {
		Command   string `json:"command"`
		Data      string `json:"data"`
		Alignment string `json:"aligment"`
		Multiply  int    `json:"multiply"`
		// accepted on decode only
		SpelledAlignment string `json:"alignment,omitempty"`
	}

	wireLineFeed struct {
		Command string `json:"command"`
		Count   int    `json:"count"`
	}

	wireCut struct {
		Command string `json:"command"`
	}
)

func encodeCommand(cmd Command) (any, error) {
	switch c := cmd.(type) {
	case PrintCommand:
		return wirePrint{TagPrint, c.Text, c.Attributes}, nil
	case LineCommand:
		return wireLine{TagLine, c.Char, c.Attributes}, nil
	case ImageCommand:
		return wireImage{TagImage, c.Base64, c.Attributes}, nil
	case LeftRightTextCommand:
		return wireLeftRightText{
			Command:     TagLeftRightText,
			LeftText:    c.LeftText,
			RightText:   c.RightText,
			LeftIndent:  c.LeftIndent,
			RightIndent: c.RightIndent,
			LeftAttr:    c.LeftAttr,
			RightAttr:   c.RightAttr,
		}, nil
	case BarcodeCommand:
		return wireBarcode{
			Command:   TagBarcode,
			Data:      c.Data,
			Type:      c.Type,
			HRI:       c.HRI,
			Font:      c.Font,
			Height:    c.Height,
			Width:     c.Width,
			Alignment: c.Alignment,
		}, nil
	case QRCodeCommand:
		return wireQRCode{Command: TagQRCode, Data: c.Data, Alignment: c.Alignment, Multiply: c.Multiply}, nil
	case LineFeedCommand:
		return wireLineFeed{TagLineFeed, c.Count}, nil
	case CutCommand:
		return wireCut{TagCut}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// MarshalJSON encodes the job as the wire document.
func (j *Job) MarshalJSON() ([]byte, error) {
	doc := wireDocument{
		Copies:   j.Copies,
		Printer:  j.Printer,
		Template: j.Template,
		Commands: make([]any, 0, len(j.commands)),
	}
	for i, cmd := range j.commands {
		w, err := encodeCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		doc.Commands = append(doc.Commands, w)
	}
	return json.Marshal(doc)
}

// Serialize returns the wire document handed to the submit-job capability.
func (j *Job) Serialize() ([]byte, error) {
	return j.MarshalJSON()
}

// String returns the wire document, or an empty string if encoding fails.
func (j *Job) String() string {
	b, err := j.Serialize()
	if err != nil {
		return ""
	}
	return string(b)
}

// Parse decodes a wire document. Missing job fields and missing attribute
// objects take their defaults.
func Parse(data []byte) (*Job, error) {
	var raw struct {
		Copies   *int              `json:"copies"`
		Printer  *string           `json:"printer"`
		Template *string           `json:"template"`
		Commands []json.RawMessage `json:"commands"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	job := New()
	if raw.Copies != nil {
		job.Copies = *raw.Copies
	}
	if raw.Printer != nil {
		job.Printer = *raw.Printer
	}
	if raw.Template != nil {
		job.Template = *raw.Template
	}

	for i, rc := range raw.Commands {
		cmd, err := decodeCommand(rc)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		job.commands = append(job.commands, cmd)
	}
	return job, nil
}

// UnmarshalJSON replaces j with the decoded document. Default attribute
// sets already configured on j are kept.
func (j *Job) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	j.Printer = parsed.Printer
	j.Copies = parsed.Copies
	j.Template = parsed.Template
	j.commands = parsed.commands
	return nil
}

func decodeCommand(data []byte) (Command, error) {
	var head struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	switch head.Command {
	case TagPrint:
		w := wirePrint{AttributesString: NewAttributesString()}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		return NewPrintCommand(w.Text, w.AttributesString), nil
	case TagLine:
		w := wireLine{AttributesString: NewAttributesString()}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		return NewLineCommand(w.Ch, w.AttributesString), nil
	case TagImage:
		w := wireImage{AttributesImage: NewAttributesImage()}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		return NewImageCommand(w.Base64, w.AttributesImage), nil
	case TagLeftRightText:
		w := wireLeftRightText{LeftAttr: NewAttributesString(), RightAttr: NewAttributesString()}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		return NewLeftRightTextCommand(w.LeftText, w.RightText, w.LeftAttr, w.RightAttr).
			WithLeftIndent(w.LeftIndent).
			WithRightIndent(w.RightIndent), nil
	case TagBarcode:
		def := NewAttributesBarcode()
		w := wireBarcode{
			Type:      def.Type,
			HRI:       def.HRI,
			Font:      def.Font,
			Height:    def.Height,
			Width:     def.Width,
			Alignment: def.Alignment,
		}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		return BarcodeCommand{
			Type:      w.Type,
			Data:      w.Data,
			HRI:       w.HRI,
			Font:      w.Font,
			Height:    w.Height,
			Width:     w.Width,
			Alignment: w.Alignment,
		}, nil
	case TagQRCode:
		def := NewAttributesQRCode()
		w := wireQRCode{Multiply: def.Multiply}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		alignment := w.Alignment
		if alignment == "" {
			alignment = w.SpelledAlignment
		}
		if alignment == "" {
			alignment = def.Alignment
		}
		return QRCodeCommand{Data: w.Data, Alignment: alignment, Multiply: w.Multiply}, nil
	case TagLineFeed:
		w := wireLineFeed{Count: 1}
		if err := decodeInto(data, &w); err != nil {
			return nil, err
		}
		return NewLineFeedCommand(w.Count), nil
	case TagCut:
		return CutCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Command)
	}
}

func decodeInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return nil
}
