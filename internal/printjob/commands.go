package printjob

// Command is one print primitive of a job. The set of implementations is
// closed: only the types in this package satisfy it.
type Command interface {
	// Tag returns the value of the "command" field on the wire.
	Tag() string
	isCommand()
}

// PrintCommand prints a line of text.
type PrintCommand struct {
	Text       string
	Attributes AttributesString
}

// NewPrintCommand returns a print command using attr.
func NewPrintCommand(text string, attr AttributesString) PrintCommand {
	return PrintCommand{Text: text, Attributes: attr}
}

// LineCommand fills the printer width with a repeated character.
type LineCommand struct {
	Char       string
	Attributes AttributesString
}

// NewLineCommand returns a full-width rule of ch.
func NewLineCommand(ch string, attr AttributesString) LineCommand {
	return LineCommand{Char: ch, Attributes: attr}
}

// ImageCommand prints a base64 encoded bitmap.
type ImageCommand struct {
	Base64     string
	Attributes AttributesImage
}

// NewImageCommand returns an image command using attr.
func NewImageCommand(base64 string, attr AttributesImage) ImageCommand {
	return ImageCommand{Base64: base64, Attributes: attr}
}

// LeftRightTextCommand prints two spans justified to opposite margins.
type LeftRightTextCommand struct {
	LeftText    string
	RightText   string
	LeftIndent  int
	RightIndent int
	LeftAttr    AttributesString
	RightAttr   AttributesString
}

// NewLeftRightTextCommand returns a left/right text command with no indents.
func NewLeftRightTextCommand(left, right string, leftAttr, rightAttr AttributesString) LeftRightTextCommand {
	return LeftRightTextCommand{
		LeftText:  left,
		RightText: right,
		LeftAttr:  leftAttr,
		RightAttr: rightAttr,
	}
}

func (c LeftRightTextCommand) WithLeftIndent(n int) LeftRightTextCommand {
	c.LeftIndent = n
	return c
}

func (c LeftRightTextCommand) WithRightIndent(n int) LeftRightTextCommand {
	c.RightIndent = n
	return c
}

// BarcodeCommand prints a barcode. Its settings are flattened on the wire
// rather than nested under an attributes key.
type BarcodeCommand struct {
	Type      string
	Data      string
	HRI       string
	Font      int
	Height    int
	Width     int
	Alignment string
}

// NewBarcodeCommand returns a barcode of the given symbology with default
// HRI, font, size and alignment.
func NewBarcodeCommand(symbology, data string) BarcodeCommand {
	return NewBarcodeCommandWith(data, NewAttributesBarcode().WithType(symbology))
}

// NewBarcodeCommandWith returns a barcode command taking every setting from attr.
func NewBarcodeCommandWith(data string, attr AttributesBarcode) BarcodeCommand {
	return BarcodeCommand{
		Type:      attr.Type,
		Data:      data,
		HRI:       attr.HRI,
		Font:      attr.Font,
		Height:    attr.Height,
		Width:     attr.Width,
		Alignment: attr.Alignment,
	}
}

func (c BarcodeCommand) WithHRI(hri string) BarcodeCommand {
	c.HRI = hri
	return c
}

func (c BarcodeCommand) WithFont(font int) BarcodeCommand {
	c.Font = font
	return c
}

func (c BarcodeCommand) WithHeight(h int) BarcodeCommand {
	c.Height = h
	return c
}

func (c BarcodeCommand) WithWidth(w int) BarcodeCommand {
	c.Width = w
	return c
}

func (c BarcodeCommand) WithAlignment(alignment string) BarcodeCommand {
	c.Alignment = alignment
	return c
}

// QRCodeCommand prints a QR code.
type QRCodeCommand struct {
	Data      string
	Alignment string
	Multiply  int
}

// NewQRCodeCommand returns a QR code command using attr.
func NewQRCodeCommand(data string, attr AttributesQRCode) QRCodeCommand {
	return QRCodeCommand{Data: data, Alignment: attr.Alignment, Multiply: attr.Multiply}
}

// LineFeedCommand advances the paper by Count lines.
type LineFeedCommand struct {
	Count int
}

// NewLineFeedCommand returns a feed of n lines.
func NewLineFeedCommand(n int) LineFeedCommand {
	return LineFeedCommand{Count: n}
}

// CutCommand cuts the paper.
type CutCommand struct{}

func (PrintCommand) Tag() string         { return TagPrint }
func (LineCommand) Tag() string          { return TagLine }
func (ImageCommand) Tag() string         { return TagImage }
func (LeftRightTextCommand) Tag() string { return TagLeftRightText }
func (BarcodeCommand) Tag() string       { return TagBarcode }
func (QRCodeCommand) Tag() string        { return TagQRCode }
func (LineFeedCommand) Tag() string      { return TagLineFeed }
func (CutCommand) Tag() string           { return TagCut }

func (PrintCommand) isCommand()         {}
func (LineCommand) isCommand()          {}
func (ImageCommand) isCommand()         {}
func (LeftRightTextCommand) isCommand() {}
func (BarcodeCommand) isCommand()       {}
func (QRCodeCommand) isCommand()        {}
func (LineFeedCommand) isCommand()      {}
func (CutCommand) isCommand()           {}
