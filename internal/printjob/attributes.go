// Package printjob models a receipt print job as an ordered list of
// commands and encodes it to the JSON document consumed by the print
// service.
//
// Attribute sets and commands are plain values. Every With* method returns
// a modified copy, so an attribute set captured by a command can never be
// changed afterwards through another variable.
package printjob

// AttributesString formats text, rules and left/right text spans.
type AttributesString struct {
	Alignment          string `json:"alignment"`
	Bold               bool   `json:"bold"`
	DoubleHeight       bool   `json:"doubleHeight"`
	DoubleWidth        bool   `json:"doubleWidth"`
	FontsCPI           int    `json:"fontsCpi"`
	InternationalChars int    `json:"internationalChars"`
	Lang               string `json:"lang"`
	PrinterFont        int    `json:"printerFont"`
	TrueTypeFontSize   int    `json:"truetypeFontSize"`
	Underline          bool   `json:"underline"`
}

// StringOption overrides one of the common text fields at construction.
type StringOption func(*AttributesString)

// Align sets the alignment of a new AttributesString.
func Align(alignment string) StringOption {
	return func(a *AttributesString) { a.Alignment = alignment }
}

// Bold enables emphasis on a new AttributesString.
func Bold() StringOption {
	return func(a *AttributesString) { a.Bold = true }
}

// DoubleHeight doubles the character height of a new AttributesString.
func DoubleHeight() StringOption {
	return func(a *AttributesString) { a.DoubleHeight = true }
}

// DoubleWidth doubles the character width of a new AttributesString.
func DoubleWidth() StringOption {
	return func(a *AttributesString) { a.DoubleWidth = true }
}

// NewAttributesString returns the default text format with opts applied.
func NewAttributesString(opts ...StringOption) AttributesString {
	a := AttributesString{
		Alignment:        AlignmentLeft,
		Lang:             "default",
		PrinterFont:      FontDefault,
		TrueTypeFontSize: 21,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a AttributesString) WithAlignment(alignment string) AttributesString {
	a.Alignment = alignment
	return a
}

func (a AttributesString) WithBold(bold bool) AttributesString {
	a.Bold = bold
	return a
}

func (a AttributesString) WithDoubleHeight(h bool) AttributesString {
	a.DoubleHeight = h
	return a
}

func (a AttributesString) WithDoubleWidth(w bool) AttributesString {
	a.DoubleWidth = w
	return a
}

func (a AttributesString) WithPrinterFont(font int) AttributesString {
	a.PrinterFont = font
	return a
}

func (a AttributesString) WithTrueTypeFontSize(size int) AttributesString {
	a.TrueTypeFontSize = size
	return a
}

func (a AttributesString) WithUnderline(u bool) AttributesString {
	a.Underline = u
	return a
}

func (a AttributesString) WithLang(lang string) AttributesString {
	a.Lang = lang
	return a
}

func (a AttributesString) WithFontsCPI(cpi int) AttributesString {
	a.FontsCPI = cpi
	return a
}

func (a AttributesString) WithInternationalChars(set int) AttributesString {
	a.InternationalChars = set
	return a
}

// AttributesImage formats a bitmap. Scale is expressed in sixteenths of
// the printer width, 16 meaning full width.
type AttributesImage struct {
	Alignment     string `json:"alignment"`
	DoScale       bool   `json:"doScale"`
	GraphicFilter int    `json:"graphicFilter"`
	InverseColor  bool   `json:"inverseColor"`
	RotateImage   bool   `json:"rotateImage"`
	Scale         int    `json:"scale"`
}

// NewAttributesImage returns a full-width, left aligned, black and white image format.
func NewAttributesImage() AttributesImage {
	return AttributesImage{
		Alignment:     AlignmentLeft,
		DoScale:       true,
		GraphicFilter: DitheringBW,
		Scale:         16,
	}
}

func (a AttributesImage) WithAlignment(alignment string) AttributesImage {
	a.Alignment = alignment
	return a
}

func (a AttributesImage) WithGraphicFilter(filter int) AttributesImage {
	a.GraphicFilter = filter
	return a
}

func (a AttributesImage) WithInverseColor(inverse bool) AttributesImage {
	a.InverseColor = inverse
	return a
}

func (a AttributesImage) WithRotateImage(rotate bool) AttributesImage {
	a.RotateImage = rotate
	return a
}

func (a AttributesImage) WithScale(scale int) AttributesImage {
	a.Scale = scale
	return a
}

func (a AttributesImage) WithDoScale(doScale bool) AttributesImage {
	a.DoScale = doScale
	return a
}

// AttributesBarcode holds the barcode settings used by Job.Barcode.
type AttributesBarcode struct {
	Type      string `json:"type"`
	HRI       string `json:"hri"`
	Font      int    `json:"font"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Alignment string `json:"alignment"`
}

// NewAttributesBarcode returns the default UPC-E barcode format.
func NewAttributesBarcode() AttributesBarcode {
	return AttributesBarcode{
		Type:      BarcodeUPCE,
		HRI:       HRINone,
		Font:      FontA,
		Height:    162,
		Width:     3,
		Alignment: AlignmentLeft,
	}
}

func (a AttributesBarcode) WithType(symbology string) AttributesBarcode {
	a.Type = symbology
	return a
}

func (a AttributesBarcode) WithHRI(hri string) AttributesBarcode {
	a.HRI = hri
	return a
}

func (a AttributesBarcode) WithFont(font int) AttributesBarcode {
	a.Font = font
	return a
}

func (a AttributesBarcode) WithHeight(h int) AttributesBarcode {
	a.Height = h
	return a
}

func (a AttributesBarcode) WithWidth(w int) AttributesBarcode {
	a.Width = w
	return a
}

func (a AttributesBarcode) WithAlignment(alignment string) AttributesBarcode {
	a.Alignment = alignment
	return a
}

// AttributesQRCode holds QR code placement and module multiplier.
type AttributesQRCode struct {
	Alignment string
	Multiply  int
}

// NewAttributesQRCode returns a centered QR code with multiplier 3.
func NewAttributesQRCode() AttributesQRCode {
	return AttributesQRCode{Alignment: AlignmentCenter, Multiply: 3}
}

func (a AttributesQRCode) WithAlignment(alignment string) AttributesQRCode {
	a.Alignment = alignment
	return a
}

func (a AttributesQRCode) WithMultiply(n int) AttributesQRCode {
	a.Multiply = n
	return a
}
