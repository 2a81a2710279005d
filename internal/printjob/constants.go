package printjob

// Alignment values shared by text, image, barcode and QR code commands.
const (
	AlignmentLeft   = "left"
	AlignmentCenter = "center"
	AlignmentRight  = "right"
)

// Barcode symbologies understood by the print service.
const (
	BarcodeUPCA                = "upc_a"
	BarcodeUPCE                = "upc_e"
	BarcodeEAN13               = "ean13"
	BarcodeJAN13               = "jan13"
	BarcodeEAN8                = "ean8"
	BarcodeJAN8                = "jan8"
	BarcodeCode39              = "code39"
	BarcodeITF                 = "itf"
	BarcodeCodabar             = "codabar"
	BarcodeCode93              = "code93"
	BarcodeCode128             = "code128"
	BarcodeGS1128              = "gs1_128"
	BarcodeGS1DataBarOmni      = "databar_omni"
	BarcodeGS1DataBarTruncated = "databar_trunc"
	BarcodeGS1DataBarLimited   = "databar_limit"
	BarcodeGS1DataBarExpanded  = "databar_expand"
)

// Printer fonts.
const (
	FontDefault  = 0
	FontA        = 1
	FontB        = 2
	FontC        = 3
	FontTrueType = 4
)

// HRI placement for barcodes.
const (
	HRINone  = "none"
	HRIAbove = "above"
	HRIBelow = "below"
	HRIBoth  = "both"
)

// Graphic filters (dithering) for images.
const (
	DitheringBW             = 0
	DitheringSF             = 1
	DitheringAtkinson       = 2
	DitheringBurkes         = 3
	DitheringSierra         = 4
	DitheringSketch         = 5
	DitheringBestContrast   = 6
	DitheringRegular        = 7
	DitheringNoneResizeOnly = 8
	Dithering127            = 9
)

// Command tags as they appear in the "command" field of the wire document.
const (
	TagPrint         = "print"
	TagLine          = "line"
	TagImage         = "image"
	TagLeftRightText = "leftRightText"
	TagBarcode       = "barcode"
	TagQRCode        = "qrcode"
	TagLineFeed      = "ln"
	TagCut           = "cut"
)

// Job-level defaults.
const (
	DefaultPrinter  = "current"
	DefaultTemplate = "default"
	DefaultCopies   = 1
)

var symbologies = map[string]bool{
	BarcodeUPCA: true, BarcodeUPCE: true, BarcodeEAN13: true, BarcodeJAN13: true,
	BarcodeEAN8: true, BarcodeJAN8: true, BarcodeCode39: true, BarcodeITF: true,
	BarcodeCodabar: true, BarcodeCode93: true, BarcodeCode128: true, BarcodeGS1128: true,
	BarcodeGS1DataBarOmni: true, BarcodeGS1DataBarTruncated: true,
	BarcodeGS1DataBarLimited: true, BarcodeGS1DataBarExpanded: true,
}

// IsSymbology reports whether s names a supported barcode symbology.
func IsSymbology(s string) bool {
	return symbologies[s]
}

// MaxLineFeed is the largest count a single ln command may feed, the
// limit of the ESC d n printer command.
const MaxLineFeed = 255
