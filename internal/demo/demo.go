// Package demo builds the sample receipts shown by rawbtctl demo.
package demo

import (
	"errors"
	"fmt"
	"sort"

	pj "github.com/adcondev/rawbt-daemon/internal/printjob"
)

// ErrImageRequired is returned by Build for demos that print a picture
// when no image was supplied.
var ErrImageRequired = errors.New("demo needs an image (base64 PNG)")

type builder struct {
	needsImage bool
	build      func(image string) *pj.Job
}

var demos = map[string]builder{
	"hello":    {build: func(string) *pj.Job { return Hello() }},
	"rich":     {build: func(string) *pj.Job { return RichFormat() }},
	"fonts":    {build: func(string) *pj.Job { return Fonts() }},
	"barcode":  {build: func(string) *pj.Job { return Barcode() }},
	"barcodes": {build: func(string) *pj.Job { return BarcodeTypes() }},
	"images":   {needsImage: true, build: Images},
}

// Names lists the available demos.
func Names() []string {
	names := make([]string, 0, len(demos))
	for n := range demos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NeedsImage reports whether demo name prints a picture.
func NeedsImage(name string) bool {
	return demos[name].needsImage
}

// Build returns the named demo. image is only used by picture demos.
func Build(name, image string) (*pj.Job, error) {
	d, ok := demos[name]
	if !ok {
		return nil, fmt.Errorf("unknown demo %q", name)
	}
	if d.needsImage && image == "" {
		return nil, ErrImageRequired
	}
	return d.build(image), nil
}

// Hello is the smallest possible job.
func Hello() *pj.Job {
	return pj.New().Print("Hello,World!")
}

// RichFormat shows rules and two-column text.
func RichFormat() *pj.Job {
	job := pj.New()
	title := pj.NewAttributesString().
		WithPrinterFont(pj.FontA).
		WithAlignment(pj.AlignmentCenter).
		WithDoubleHeight(true).
		WithDoubleWidth(true)

	job.Print("Rich Format", title)
	job.DrawLine("*", title)

	job.Print("drawLine(char) - print full line of char")
	job.DrawLine("-")
	job.DrawLine("=")
	job.DrawLine(".")
	job.LineFeed(2)

	job.Print("leftRightText() ")
	job.DrawLine("-")

	job.LeftRightText("left part", "right part")
	job.LeftIndentRightText(6, "left indent 6", "right part")
	job.LeftRightIndentText(4, "left part", "right indent 4")
	job.DrawLine("=")

	job.LeftRightTextWithFormat("Total", "100.00", title)
	job.LeftRightText("Long text as left part", "compare 58/80 mm")

	plain := pj.NewAttributesString()
	job.LeftRightTextWithBothFormat("width", "Height",
		plain.WithDoubleWidth(true),
		plain.WithDoubleHeight(true))
	return job
}

// Fonts shows printer fonts, sizes, alignment and decoration.
func Fonts() *pj.Job {
	job := pj.New()
	job.SetDefaultStringAttributes(pj.NewAttributesString(pj.Align(pj.AlignmentLeft)).WithPrinterFont(pj.FontA))

	title := pj.NewAttributesString(pj.Align(pj.AlignmentCenter), pj.Bold())

	job.Print("Important", title)
	job.Print("If a document requires several styles, then specify them explicitly for each purpose.")
	job.Print("Attribute sets are values: changing one after use does not alter commands already added.")
	job.Ln()

	job.Print("Font sizes", title)
	for _, font := range []struct {
		name string
		font int
	}{{"A", pj.FontA}, {"B", pj.FontB}} {
		base := pj.NewAttributesString().WithPrinterFont(font.font)
		job.Print("Normal Font "+font.name, base)
		job.Print("Double height", base.WithDoubleHeight(true))
		job.Print("Double width", base.WithDoubleWidth(true))
		job.Print("width & height", base.WithDoubleHeight(true).WithDoubleWidth(true))
		job.Ln()
	}
	job.LineFeed(2)

	job.Print("True Type", title)
	trueType := pj.NewAttributesString().WithPrinterFont(pj.FontTrueType)
	job.Print("If the printer does not support the required language, then text printing is available by creating a picture with text displayed in a truetype font.", trueType)
	job.Print("à, è, ì, ò, ù, À, È, Ì, Ò, Ù, á, é, í, ó, ú, ý, Á, É, Í, Ó, Ú, Ý, â, ê, î, ô, û, ð, Â, Ê, Î, Ô, Û, Ð, ã, ñ, õ, Ã, Ñ, Õ, ä, ë, ï, ö, ü, ÿ, Ä, Ë, Ï, Ö, Ü, Ÿ, å, Å, æ, œ, Æ, Œ or ß, ç, Ç, ¿ , ¡", trueType)
	job.LineFeed(2)

	job.Print("Alignment", title)
	job.Print("left", pj.NewAttributesString(pj.Align(pj.AlignmentLeft)))
	job.Print("center", pj.NewAttributesString(pj.Align(pj.AlignmentCenter)))
	job.Print("right", pj.NewAttributesString(pj.Align(pj.AlignmentRight)))
	job.LineFeed(2)

	bold := pj.NewAttributesString(pj.Bold())
	job.Print("Decoration", title)
	job.Print("Normal text")
	job.Print("Bold text.", bold)
	job.Print("Underline text", pj.NewAttributesString().WithUnderline(true))
	job.Print("Underline bold", bold.WithUnderline(true))
	job.LineFeed(2)

	job.Print("Notice", bold)
	job.Print("Using different styles on the same line is not supported. See rich format.")
	job.Ln()
	return job
}

// Barcode shows HRI placement, alignment, height and module width.
func Barcode() *pj.Job {
	job := pj.New()
	title := pj.NewAttributesString(pj.Align(pj.AlignmentCenter), pj.DoubleHeight())
	bold := pj.NewAttributesString(pj.Bold())

	job.Print("Barcode", title)
	job.Print("HRI & Alignment")
	job.Ln()

	upcA := pj.NewBarcodeCommand(pj.BarcodeUPCA, "012345678905").WithHeight(64)
	job.Print("Center / HRI none")
	job.Add(upcA.WithAlignment(pj.AlignmentCenter)).Ln()
	job.Print("Left / HRI above")
	job.Add(upcA.WithHRI(pj.HRIAbove).WithAlignment(pj.AlignmentLeft)).Ln()
	job.Print("Right / HRI below")
	job.Add(upcA.WithHRI(pj.HRIBelow).WithAlignment(pj.AlignmentRight)).Ln()

	job.Print("Height", bold)
	job.Ln()
	job.Print("Default look")
	job.Add(pj.NewBarcodeCommand(pj.BarcodeUPCE, "0123456").WithHRI(pj.HRIBoth)).Ln()
	job.Print("Minimum. 12 dots")
	job.Add(pj.NewBarcodeCommand(pj.BarcodeUPCE, "0123456").WithHeight(12).WithHRI(pj.HRIBoth)).Ln()
	job.Print("Safe max. 192 dots")
	job.Add(pj.NewBarcodeCommand(pj.BarcodeUPCE, "01234565").WithHeight(192).WithHRI(pj.HRIBoth)).Ln()

	job.Print("Width", bold)
	job.Ln()
	ean := pj.NewBarcodeCommand(pj.BarcodeEAN13, "012345678901").WithHRI(pj.HRIBoth)
	job.Print("Default look")
	job.Add(ean.WithHeight(32))
	job.Print("1-4 for 58mm")
	for w := 1; w <= 4; w++ {
		job.Add(ean.WithHeight(32).WithWidth(w))
	}
	job.Print("5-6 for 80mm or for 300 dpi")
	for w := 5; w <= 6; w++ {
		job.Print(fmt.Sprintf("%d)", w))
		job.Add(ean.WithHeight(64).WithWidth(w))
	}
	job.Print("Reduces the width when overflow")
	for w := 7; w <= 8; w++ {
		job.Print(fmt.Sprintf("%d)", w))
		job.Add(ean.WithHeight(96).WithWidth(w))
	}
	job.LineFeed(2)
	return job
}

// BarcodeTypes prints one sample per common symbology.
func BarcodeTypes() *pj.Job {
	job := pj.New()
	title := pj.NewAttributesString(pj.Align(pj.AlignmentCenter), pj.DoubleHeight(), pj.DoubleWidth())
	attr := pj.NewAttributesBarcode().WithHeight(64).WithHRI(pj.HRIBelow)

	samples := []struct {
		title, symbology, data string
	}{
		{"UPC-A", pj.BarcodeUPCA, "40204020402"},
		{"UPC-E", pj.BarcodeUPCE, "0402402"},
		{"EAN13", pj.BarcodeEAN13, "4606224236582"},
		{"EAN8", pj.BarcodeEAN8, "4020402"},
		{"CODE39", pj.BarcodeCode39, "RAWBT-402D"},
		{"ITF", pj.BarcodeITF, "30712345000010"},
		{"CODABAR", pj.BarcodeCodabar, "A4020402A"},
		{"CODE93", pj.BarcodeCode93, "RAWBT-402-/+"},
		{"CODE128", pj.BarcodeCode128, "RawBT402d"},
	}
	for _, s := range samples {
		job.Print(s.title, title)
		job.Barcode(s.data, attr.WithType(s.symbology))
		job.Ln()
	}
	return job
}

// Images prints image at several scales and alignments.
func Images(image string) *pj.Job {
	job := pj.New()
	title := pj.NewAttributesString(pj.Align(pj.AlignmentCenter), pj.DoubleHeight(), pj.DoubleWidth())

	job.Print("Images", title)
	job.Print("The picture is scaled to the width of the printer as a fraction. 16/16 means full width. Values 1-16 allowed.")

	job.Image(image)
	job.Ln()
	job.Print("Scale 16(default) - full width")
	job.Ln()

	variants := []struct {
		attr    pj.AttributesImage
		caption string
	}{
		{pj.NewAttributesImage().WithScale(8).WithAlignment(pj.AlignmentCenter).WithGraphicFilter(pj.DitheringSF), "Scale: 8(50%). Alignment: center"},
		{pj.NewAttributesImage().WithScale(12).WithAlignment(pj.AlignmentRight), "Scale: 12(75%). Alignment: right"},
		{pj.NewAttributesImage().WithScale(4).WithAlignment(pj.AlignmentLeft), "Scale: 4(25%). Alignment: left"},
		{pj.NewAttributesImage().WithRotateImage(true), "Rotate"},
	}
	for _, v := range variants {
		job.Image(image, v.attr)
		job.Ln()
		job.Print(v.caption)
		job.Ln()
	}
	job.LineFeed(2)
	return job
}
