package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// AnnotatedBox is one box to draw on a preview.
type AnnotatedBox struct {
	Box   PixelBox
	Class int
}

// BoxesFor converts label lines to clamped pixel boxes on img, one per line.
func BoxesFor(img image.Image, lines []labels.Line) []AnnotatedBox {
	boxes := make([]AnnotatedBox, len(lines))
	for i, l := range lines {
		boxes[i] = AnnotatedBox{Box: BoxFor(img, l.Box), Class: l.Class}
	}
	return boxes
}

// fillAlpha is the opacity of the tint drawn inside each box.
const fillAlpha = 64

// goldenAngle spreads consecutive class hues around the color wheel.
const goldenAngle = 137.50776405003785

// classColor picks a hue for a class index by walking the golden angle in
// HCL space, which keeps neighbouring indices far apart.
func classColor(class int) colorful.Color {
	h := math.Mod(float64(class)*goldenAngle, 360)
	return colorful.Hcl(h, 0.6, 0.65).Clamped()
}

// ClassColor returns a stable, visually distinct color for a class index.
func ClassColor(class int) color.NRGBA {
	r, g, b := classColor(class).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// ClassColorHex returns ClassColor as "#rrggbb".
func ClassColorHex(class int) string {
	return classColor(class).Hex()
}

// Annotate renders boxes onto a copy of img for visual inspection.
//
// Each box gets a translucent fill in its class color, a 2-pixel outline, and
// its class index printed just above the top-left corner (inside the box when
// there is no room above). Pixels away from the boxes and their labels are
// left unchanged. Boxes are relative to the image's top-left corner.
func Annotate(img image.Image, boxes []AnnotatedBox) *image.RGBA {
	base := imaging.Clone(img)
	bounds := base.Bounds()

	overlay := image.NewNRGBA(bounds)
	for _, b := range boxes {
		c := ClassColor(b.Class)
		c.A = fillAlpha
		draw.Draw(overlay, b.Box.Rect(bounds.Min), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	out := blend.Normal(base, overlay)

	for _, b := range boxes {
		if b.Box.Empty() {
			continue
		}
		c := ClassColor(b.Class)
		drawOutline(out, b.Box.Rect(out.Bounds().Min), 2, c)

		label := strconv.Itoa(b.Class)
		lx, ly := b.Box.X1+2, b.Box.Y1-labelHeight-1
		if ly < 0 {
			ly = b.Box.Y1 + 2
		}
		drawLabel(out, lx, ly, label, color.RGBA{255, 255, 255, 255}, color.RGBA{c.R, c.G, c.B, 255})
	}

	return out
}

// drawOutline draws a rectangle border of the given thickness inside r.
func drawOutline(img *image.RGBA, r image.Rectangle, thickness int, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	src := &image.Uniform{C: c}
	for i := 0; i < thickness; i++ {
		inner := r.Inset(i)
		if inner.Empty() {
			return
		}
		draw.Draw(img, image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+1), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(inner.Min.X, inner.Max.Y-1, inner.Max.X, inner.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+1, inner.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(inner.Max.X-1, inner.Min.Y, inner.Max.X, inner.Max.Y), src, image.Point{}, draw.Src)
	}
}

const (
	charWidth   = 4
	labelHeight = 7
)

// digitGlyphs is a 3x5 pixel font for class indices.
var digitGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws text on a filled background at (x, y). Characters outside
// digitGlyphs leave a blank cell.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	bounds := img.Bounds()
	inside := func(px, py int) bool {
		return px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y
	}

	labelWidth := len(text) * charWidth
	for dy := -1; dy < labelHeight-1; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if px, py := x+dx, y+dy; inside(px, py) {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range digitGlyphs[ch] {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if px, py := cx+col, y+row; inside(px, py) {
					img.SetRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}
