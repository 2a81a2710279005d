package sink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // image decoders for image commands
	_ "image/jpeg" // and for the QR writer output
	_ "image/png"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	_ "golang.org/x/image/webp"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
)

// DefaultPaperWidth is the printable width of a 58mm printer in dots.
const DefaultPaperWidth = 384

// MaxPreviewHeight bounds the canvas; content below it is cut off.
const MaxPreviewHeight = 16384

const (
	margin     = 8
	charWidth  = 7 // basicfont.Face7x13
	lineHeight = 13
	lineGap    = 2
)

// Renderer draws an approximate picture of a receipt. Barcodes are drawn
// as a bit pattern of their data, not as the real symbology.
type Renderer struct {
	width int
}

// NewRenderer returns a renderer for paper width dots wide.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = DefaultPaperWidth
	}
	return &Renderer{width: width}
}

type block struct {
	height float64
	draw   func(dc *gg.Context, y float64)
}

// Render lays out every command and draws the receipt.
func (r *Renderer) Render(ctx context.Context, job *printjob.Job, report func(float64)) (image.Image, error) {
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(basicfont.Face7x13)

	cmds := job.Commands()
	blocks := make([]block, 0, len(cmds))
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := r.layout(measure, cmd)
		if err != nil {
			return nil, fmt.Errorf("command %d (%s): %w", i, cmd.Tag(), err)
		}
		blocks = append(blocks, b)
		// drawing is cheap next to decoding, keep the last tenth for it
		report(0.9 * float64(i+1) / float64(len(cmds)))
	}

	total := float64(2 * margin)
	for _, b := range blocks {
		total += b.height
	}

	height := min(int(math.Ceil(total)), MaxPreviewHeight)
	dc := gg.NewContext(r.width, height)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)

	y := float64(margin)
	for _, b := range blocks {
		if y >= float64(height) {
			break
		}
		if b.draw != nil {
			b.draw(dc, y)
		}
		y += b.height
	}
	report(1)
	return dc.Image(), nil
}

func (r *Renderer) contentWidth() float64 {
	return float64(r.width - 2*margin)
}

func (r *Renderer) layout(measure *gg.Context, cmd printjob.Command) (block, error) {
	switch c := cmd.(type) {
	case printjob.PrintCommand:
		return r.textBlock(measure, c.Text, c.Attributes), nil
	case printjob.LineCommand:
		return r.lineBlock(measure, c), nil
	case printjob.LeftRightTextCommand:
		return r.leftRightBlock(measure, c), nil
	case printjob.ImageCommand:
		return r.imageBlock(c)
	case printjob.BarcodeCommand:
		return r.barcodeBlock(measure, c), nil
	case printjob.QRCodeCommand:
		return r.qrBlock(c)
	case printjob.LineFeedCommand:
		count := min(max(c.Count, 0), printjob.MaxLineFeed)
		return block{height: float64(count * (lineHeight + lineGap))}, nil
	case printjob.CutCommand:
		return r.cutBlock(), nil
	default:
		return block{}, fmt.Errorf("%w: %T", printjob.ErrUnknownCommand, cmd)
	}
}

func scaleOf(attr printjob.AttributesString) (sx, sy float64) {
	sx, sy = 1, 1
	if attr.DoubleWidth {
		sx = 2
	}
	if attr.DoubleHeight {
		sy = 2
	}
	return sx, sy
}

func (r *Renderer) alignX(alignment string, w float64) float64 {
	switch alignment {
	case printjob.AlignmentCenter:
		return margin + (r.contentWidth()-w)/2
	case printjob.AlignmentRight:
		return margin + r.contentWidth() - w
	default:
		return margin
	}
}

func drawText(dc *gg.Context, s string, x, y float64, attr printjob.AttributesString) {
	sx, sy := scaleOf(attr)
	dc.Push()
	dc.Scale(sx, sy)
	dc.DrawStringAnchored(s, x/sx, y/sy, 0, 1)
	if attr.Bold {
		dc.DrawStringAnchored(s, x/sx+1, y/sy, 0, 1)
	}
	dc.Pop()

	if attr.Underline {
		w, _ := dc.MeasureString(s)
		base := y + (lineHeight+1)*sy
		dc.DrawLine(x, base, x+w*sx, base)
		dc.Stroke()
	}
}

func (r *Renderer) textBlock(measure *gg.Context, text string, attr printjob.AttributesString) block {
	sx, sy := scaleOf(attr)
	lines := measure.WordWrap(text, r.contentWidth()/sx)
	if len(lines) == 0 {
		lines = []string{""}
	}
	lh := (lineHeight + lineGap) * sy

	return block{
		height: float64(len(lines)) * lh,
		draw: func(dc *gg.Context, y float64) {
			for i, line := range lines {
				w, _ := dc.MeasureString(line)
				drawText(dc, line, r.alignX(attr.Alignment, w*sx), y+float64(i)*lh, attr)
			}
		},
	}
}

func (r *Renderer) lineBlock(measure *gg.Context, c printjob.LineCommand) block {
	sx, _ := scaleOf(c.Attributes)
	unit := max(len([]rune(c.Char)), 1)
	n := int(r.contentWidth()/(charWidth*sx)) / unit
	return r.textBlock(measure, strings.Repeat(c.Char, max(n, 1)), c.Attributes)
}

func (r *Renderer) leftRightBlock(measure *gg.Context, c printjob.LeftRightTextCommand) block {
	lsx, lsy := scaleOf(c.LeftAttr)
	rsx, rsy := scaleOf(c.RightAttr)
	lw, _ := measure.MeasureString(c.LeftText)
	rw, _ := measure.MeasureString(c.RightText)
	lw *= lsx
	rw *= rsx

	lx := margin + float64(c.LeftIndent*charWidth)
	rx := margin + r.contentWidth() - float64(c.RightIndent*charWidth) - rw
	lh := (lineHeight + lineGap) * lsy
	rh := (lineHeight + lineGap) * rsy

	// spans that collide are stacked, right span on its own line
	stacked := lx+lw > rx-charWidth
	height := math.Max(lh, rh)
	if stacked {
		height = lh + rh
	}

	return block{
		height: height,
		draw: func(dc *gg.Context, y float64) {
			drawText(dc, c.LeftText, lx, y, c.LeftAttr)
			if stacked {
				drawText(dc, c.RightText, rx, y+lh, c.RightAttr)
				return
			}
			drawText(dc, c.RightText, rx, y, c.RightAttr)
		},
	}
}

func (r *Renderer) barcodeBlock(measure *gg.Context, c printjob.BarcodeCommand) block {
	module := float64(max(c.Width, 1))
	bits := float64(len(c.Data) * 8)
	if bits*module > r.contentWidth() {
		module = math.Max(1, math.Floor(r.contentWidth()/bits))
	}
	barsW := bits * module
	barsH := float64(min(max(c.Height, 12), 255))

	hriH := float64(lineHeight + lineGap)
	above := c.HRI == printjob.HRIAbove || c.HRI == printjob.HRIBoth
	below := c.HRI == printjob.HRIBelow || c.HRI == printjob.HRIBoth

	height := barsH + lineGap
	if above {
		height += hriH
	}
	if below {
		height += hriH
	}

	return block{
		height: height,
		draw: func(dc *gg.Context, y float64) {
			x0 := r.alignX(c.Alignment, barsW)
			textAttr := printjob.NewAttributesString()
			tw, _ := dc.MeasureString(c.Data)
			tx := x0 + (barsW-tw)/2

			if above {
				drawText(dc, c.Data, tx, y, textAttr)
				y += hriH
			}
			for i, b := range []byte(c.Data) {
				for bit := 0; bit < 8; bit++ {
					if b&(0x80>>bit) == 0 {
						continue
					}
					x := x0 + float64(i*8+bit)*module
					dc.DrawRectangle(x, y, module, barsH)
				}
			}
			dc.Fill()
			if below {
				drawText(dc, c.Data, tx, y+barsH+lineGap, textAttr)
			}
		},
	}
}

type bufferCloser struct {
	*bytes.Buffer
}

func (bufferCloser) Close() error { return nil }

func (r *Renderer) qrBlock(c printjob.QRCodeCommand) (block, error) {
	qrc, err := qrcode.New(c.Data)
	if err != nil {
		return block{}, fmt.Errorf("QR data too long: %w", err)
	}
	buf := bufferCloser{&bytes.Buffer{}}
	if err := qrc.Save(standard.NewWithWriter(buf)); err != nil {
		return block{}, fmt.Errorf("rendering QR: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return block{}, fmt.Errorf("rendering QR: %w", err)
	}

	side := int(math.Min(r.contentWidth(), float64(50*max(c.Multiply, 1))))
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return block{
		height: float64(side + lineGap),
		draw: func(dc *gg.Context, y float64) {
			dc.DrawImage(dst, int(r.alignX(c.Alignment, float64(side))), int(y))
		},
	}, nil
}

func (r *Renderer) imageBlock(c printjob.ImageCommand) (block, error) {
	data, err := printjob.DecodeImageData(c.Base64)
	if err != nil {
		return block{}, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return block{}, fmt.Errorf("failed to load image: %w", err)
	}
	if c.Attributes.RotateImage {
		src = rotate90(src)
	}

	sb := src.Bounds()
	w := sb.Dx()
	if c.Attributes.DoScale {
		w = int(r.contentWidth()) * min(max(c.Attributes.Scale, 1), 16) / 16
	}
	w = max(min(w, int(r.contentWidth())), 1)
	h := max(sb.Dy()*w/max(sb.Dx(), 1), 1)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(scaled, scaled.Bounds(), image.White, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, sb, draw.Over, nil)
	out := monochrome(scaled, c.Attributes)

	return block{
		height: float64(h + lineGap),
		draw: func(dc *gg.Context, y float64) {
			dc.DrawImage(out, int(r.alignX(c.Attributes.Alignment, float64(w))), int(y))
		},
	}, nil
}

// monochrome converts to gray, applying inversion and, for the plain
// black and white filter, a fixed threshold.
func monochrome(src *image.RGBA, attr printjob.AttributesImage) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y
			if attr.InverseColor {
				g = 255 - g
			}
			if attr.GraphicFilter == printjob.DitheringBW {
				if g < 128 {
					g = 0
				} else {
					g = 255
				}
			}
			out.SetGray(x, y, color.Gray{Y: g})
		}
	}
	return out
}

func rotate90(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.Y-1-y, x-b.Min.X, src.At(x, y))
		}
	}
	return dst
}

func (r *Renderer) cutBlock() block {
	return block{
		height: 12,
		draw: func(dc *gg.Context, y float64) {
			for x := float64(margin); x < float64(r.width-margin); x += 8 {
				dc.DrawLine(x, y+6, x+4, y+6)
			}
			dc.Stroke()
		},
	}
}
