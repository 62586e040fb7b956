package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// PixelBox is a box in absolute pixel coordinates. (X1, Y1) is inclusive and
// (X2, Y2) is exclusive.
type PixelBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FromNormalized converts a normalized YOLO box to pixel coordinates for an
// image of the given size. Each edge is limited to [0, width] or [0, height]
// before it is truncated toward zero, so arbitrarily large coordinates cannot
// overflow; call Clamp to also order the corners before cropping.
func FromNormalized(b labels.Box, width, height int) PixelBox {
	w := float64(width)
	h := float64(height)
	return PixelBox{
		X1: toPixel(b.CX-b.W/2, w),
		Y1: toPixel(b.CY-b.H/2, h),
		X2: toPixel(b.CX+b.W/2, w),
		Y2: toPixel(b.CY+b.H/2, h),
	}
}

// toPixel scales v by size and limits it to [0, size] in float space.
func toPixel(v, size float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(v*size, size)))
}

// Clamp limits the box to [0, width] x [0, height]. The result always
// satisfies 0 <= X1 <= X2 <= width and 0 <= Y1 <= Y2 <= height.
func (p PixelBox) Clamp(width, height int) PixelBox {
	x1 := clamp(p.X1, 0, width)
	y1 := clamp(p.Y1, 0, height)
	x2 := clamp(p.X2, x1, width)
	y2 := clamp(p.Y2, y1, height)
	return PixelBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Empty reports whether the box has zero width or height.
func (p PixelBox) Empty() bool {
	return p.X2 <= p.X1 || p.Y2 <= p.Y1
}

// Width returns X2 - X1.
func (p PixelBox) Width() int { return p.X2 - p.X1 }

// Height returns Y2 - Y1.
func (p PixelBox) Height() int { return p.Y2 - p.Y1 }

// Rect returns the box as an image.Rectangle offset by origin.
func (p PixelBox) Rect(origin image.Point) image.Rectangle {
	return image.Rect(p.X1, p.Y1, p.X2, p.Y2).Add(origin)
}

// BoxFor converts and clamps a normalized box against img's bounds.
func BoxFor(img image.Image, b labels.Box) PixelBox {
	bounds := img.Bounds()
	return FromNormalized(b, bounds.Dx(), bounds.Dy()).Clamp(bounds.Dx(), bounds.Dy())
}

// Crop extracts a clamped box from img. The box is relative to the image's
// top-left corner.
func Crop(img image.Image, box PixelBox) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if box.X1 < 0 || box.Y1 < 0 || box.X2 > bounds.Dx() || box.Y2 > bounds.Dy() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			box.X1, box.Y1, box.X2, box.Y2, bounds.Dx(), bounds.Dy())
	}
	if box.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, box.Rect(bounds.Min)), nil
}

// FitWithin scales img down, keeping the aspect ratio, so it fits inside a
// size x size square. Smaller images are returned as copies. A size of 0 or
// less returns img unchanged.
func FitWithin(img *image.NRGBA, size int) *image.NRGBA {
	if size <= 0 {
		return img
	}
	return imaging.Fit(img, size, size, imaging.Lanczos)
}

// OutputName returns the filename a crop is saved under. Formats that cannot
// be encoded (such as WebP) are written as PNG.
func OutputName(filename string) string {
	if _, err := imaging.FormatFromFilename(filename); err != nil {
		return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".png"
	}
	return filename
}

// Save encodes img to path using the format implied by its extension,
// creating parent directories as needed.
func Save(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return fmt.Errorf("failed to save %s: unsupported output format", path)
		}
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
