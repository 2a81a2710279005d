package printjob

// Job is an ordered list of commands plus the job-level settings sent to
// the print service. Authoring methods return the job so calls can be
// chained. The default attribute sets only fill in attributes for
// commands appended later; they are never encoded.
type Job struct {
	Printer  string
	Copies   int
	Template string

	commands []Command

	defaultString  *AttributesString
	defaultImage   *AttributesImage
	defaultBarcode *AttributesBarcode
}

// New returns an empty job for the current printer, one copy, default template.
func New() *Job {
	return &Job{
		Printer:  DefaultPrinter,
		Copies:   DefaultCopies,
		Template: DefaultTemplate,
		commands: []Command{},
	}
}

func (j *Job) SetPrinter(printer string) *Job {
	j.Printer = printer
	return j
}

func (j *Job) SetCopies(copies int) *Job {
	j.Copies = copies
	return j
}

func (j *Job) SetTemplate(template string) *Job {
	j.Template = template
	return j
}

// SetDefaultStringAttributes replaces the text format used when a text
// command is appended without one.
func (j *Job) SetDefaultStringAttributes(attr AttributesString) *Job {
	j.defaultString = &attr
	return j
}

// SetDefaultImageAttributes replaces the image format used when Image is
// called without one.
func (j *Job) SetDefaultImageAttributes(attr AttributesImage) *Job {
	j.defaultImage = &attr
	return j
}

// SetDefaultBarcodeAttributes replaces the barcode settings used when
// Barcode is called without any.
func (j *Job) SetDefaultBarcodeAttributes(attr AttributesBarcode) *Job {
	j.defaultBarcode = &attr
	return j
}

// DefaultStringAttributes returns the text format applied to commands
// appended without an explicit one.
func (j *Job) DefaultStringAttributes() AttributesString {
	if j.defaultString == nil {
		return NewAttributesString()
	}
	return *j.defaultString
}

func (j *Job) DefaultImageAttributes() AttributesImage {
	if j.defaultImage == nil {
		return NewAttributesImage()
	}
	return *j.defaultImage
}

func (j *Job) DefaultBarcodeAttributes() AttributesBarcode {
	if j.defaultBarcode == nil {
		return NewAttributesBarcode()
	}
	return *j.defaultBarcode
}

func (j *Job) stringAttr(attr []AttributesString) AttributesString {
	if len(attr) > 0 {
		return attr[0]
	}
	return j.DefaultStringAttributes()
}

// Add appends a command built by the caller.
func (j *Job) Add(cmd Command) *Job {
	j.commands = append(j.commands, cmd)
	return j
}

// Print appends a line of text. Without attr the job default is used.
func (j *Job) Print(text string, attr ...AttributesString) *Job {
	return j.Add(NewPrintCommand(text, j.stringAttr(attr)))
}

// DrawLine appends a full-width rule made of ch.
func (j *Job) DrawLine(ch string, attr ...AttributesString) *Job {
	return j.Add(NewLineCommand(ch, j.stringAttr(attr)))
}

// Image appends a base64 encoded bitmap.
func (j *Job) Image(base64 string, attr ...AttributesImage) *Job {
	a := j.DefaultImageAttributes()
	if len(attr) > 0 {
		a = attr[0]
	}
	return j.Add(NewImageCommand(base64, a))
}

// Barcode appends a barcode whose symbology and look come from attr or,
// without attr, from the job default.
func (j *Job) Barcode(data string, attr ...AttributesBarcode) *Job {
	a := j.DefaultBarcodeAttributes()
	if len(attr) > 0 {
		a = attr[0]
	}
	return j.Add(NewBarcodeCommandWith(data, a))
}

// QRCode appends a QR code, centered with multiplier 3 unless attr says otherwise.
func (j *Job) QRCode(data string, attr ...AttributesQRCode) *Job {
	a := NewAttributesQRCode()
	if len(attr) > 0 {
		a = attr[0]
	}
	return j.Add(NewQRCodeCommand(data, a))
}

// LeftRightText appends two spans in the default text format.
func (j *Job) LeftRightText(left, right string) *Job {
	attr := j.DefaultStringAttributes()
	return j.Add(NewLeftRightTextCommand(left, right, attr, attr))
}

// LeftRightTextWithFormat appends two spans sharing attr.
func (j *Job) LeftRightTextWithFormat(left, right string, attr AttributesString) *Job {
	return j.Add(NewLeftRightTextCommand(left, right, attr, attr))
}

// LeftRightTextWithBothFormat appends two independently formatted spans.
func (j *Job) LeftRightTextWithBothFormat(left, right string, leftAttr, rightAttr AttributesString) *Job {
	return j.Add(NewLeftRightTextCommand(left, right, leftAttr, rightAttr))
}

// LeftIndentRightText appends two spans with the left one indented.
func (j *Job) LeftIndentRightText(indent int, left, right string) *Job {
	attr := j.DefaultStringAttributes()
	return j.Add(NewLeftRightTextCommand(left, right, attr, attr).WithLeftIndent(indent))
}

// LeftRightIndentText appends two spans with the right one indented.
func (j *Job) LeftRightIndentText(indent int, left, right string) *Job {
	attr := j.DefaultStringAttributes()
	return j.Add(NewLeftRightTextCommand(left, right, attr, attr).WithRightIndent(indent))
}

// LineFeed appends count empty lines.
func (j *Job) LineFeed(count int) *Job {
	return j.Add(NewLineFeedCommand(count))
}

// Ln appends a single line feed.
func (j *Job) Ln() *Job {
	return j.LineFeed(1)
}

func (j *Job) Cut() *Job {
	return j.Add(CutCommand{})
}

// Commands returns a copy of the command list in print order.
func (j *Job) Commands() []Command {
	out := make([]Command, len(j.commands))
	copy(out, j.commands)
	return out
}

// Len returns the number of commands.
func (j *Job) Len() int {
	return len(j.commands)
}
