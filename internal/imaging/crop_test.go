package imaging

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestFromNormalized(t *testing.T) {
	got := FromNormalized(labels.Box{CX: 0.5, CY: 0.5, W: 0.5, H: 0.25}, 200, 100)
	want := PixelBox{X1: 50, Y1: 37, X2: 150, Y2: 62}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestClamp_OversizedBox(t *testing.T) {
	// 100x100 image, box 1.2 wide centered: roughly -10..110 before clamping.
	got := FromNormalized(labels.Box{CX: 0.5, CY: 0.5, W: 1.2, H: 1.2}, 100, 100).Clamp(100, 100)
	want := PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 100}
	if got != want {
		t.Errorf("clamped: got %+v, want %+v", got, want)
	}
	if got.Empty() {
		t.Error("clamped box should not be empty")
	}
}

func TestFromNormalized_HugeValues(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 255, 255})
	full := PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 100}
	tests := []struct {
		name string
		box  labels.Box
		want PixelBox
	}{
		{"huge size", labels.Box{CX: 0.5, CY: 0.5, W: 1e18, H: 1e18}, full},
		{"max float size", labels.Box{CX: 0.5, CY: 0.5, W: math.MaxFloat64, H: math.MaxFloat64}, full},
		{"huge center", labels.Box{CX: 1e18, CY: 1e18, W: 0.5, H: 0.5}, PixelBox{X1: 100, Y1: 100, X2: 100, Y2: 100}},
		{"huge negative center", labels.Box{CX: -1e18, CY: 0.5, W: 0.5, H: 0.5}, PixelBox{X1: 0, Y1: 25, X2: 0, Y2: 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromNormalized(tt.box, 100, 100)
			if got != tt.want {
				t.Errorf("FromNormalized: got %+v, want %+v", got, tt.want)
			}
			if got := BoxFor(img, tt.box); got != tt.want {
				t.Errorf("BoxFor: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClamp_EdgeCentered(t *testing.T) {
	// Centered on the right edge with a half-width larger than the margin.
	got := FromNormalized(labels.Box{CX: 1.0, CY: 0.5, W: 0.6, H: 0.2}, 100, 50).Clamp(100, 50)
	want := PixelBox{X1: 70, Y1: 20, X2: 100, Y2: 30}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got = FromNormalized(labels.Box{CX: 0, CY: 0, W: 0.4, H: 0.4}, 100, 100).Clamp(100, 100)
	want = PixelBox{X1: 0, Y1: 0, X2: 20, Y2: 20}
	if got != want {
		t.Errorf("corner: got %+v, want %+v", got, want)
	}
}

func TestClamp_Bounds(t *testing.T) {
	boxes := []PixelBox{
		{-50, -50, -10, -10},
		{120, 120, 200, 200},
		{-10, 40, 300, 60},
		{30, 30, 20, 20},
		{0, 0, 0, 0},
		{100, 0, 100, 100},
	}
	for _, b := range boxes {
		c := b.Clamp(100, 80)
		if c.X1 < 0 || c.Y1 < 0 || c.X1 > c.X2 || c.Y1 > c.Y2 || c.X2 > 100 || c.Y2 > 80 {
			t.Errorf("Clamp(%+v) = %+v violates bounds", b, c)
		}
	}
}

func TestClamp_OutsideIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		box  labels.Box
	}{
		{"left of image", labels.Box{CX: -0.5, CY: 0.5, W: 0.2, H: 0.2}},
		{"below image", labels.Box{CX: 0.5, CY: 1.5, W: 0.2, H: 0.2}},
		{"zero width", labels.Box{CX: 0.5, CY: 0.5, W: 0, H: 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := FromNormalized(tt.box, 100, 100).Clamp(100, 100)
			if !b.Empty() {
				t.Errorf("expected empty box, got %+v", b)
			}
		})
	}
}

func TestBoxFor(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})
	got := BoxFor(img, labels.Box{CX: 0.5, CY: 0.5, W: 1.2, H: 1.2})
	if got != (PixelBox{0, 0, 100, 100}) {
		t.Errorf("got %+v", got)
	}
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	cropped, err := Crop(img, PixelBox{X1: 0, Y1: 0, X2: 50, Y2: 50})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if cropped.Bounds().Dx() != 50 || cropped.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", cropped.Bounds().Dx(), cropped.Bounds().Dy())
	}
	if r, g, b := rgb8(cropped.At(25, 25)); r != 255 || g != 0 || b != 0 {
		t.Errorf("cropped color: got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
}

func TestCrop_NonZeroOrigin(t *testing.T) {
	pattern := createPatternImage(100, 100)
	// A sub-image keeps the parent's coordinates; boxes stay relative.
	sub := pattern.SubImage(image.Rect(50, 50, 100, 100))

	cropped, err := Crop(sub, PixelBox{X1: 0, Y1: 0, X2: 10, Y2: 10})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if r, g, b := rgb8(cropped.At(5, 5)); r != 255 || g != 255 || b != 255 {
		t.Errorf("cropped color: got (%d,%d,%d), want white", r, g, b)
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		box  PixelBox
	}{
		{"x1 negative", PixelBox{-1, 0, 50, 50}},
		{"y2 too large", PixelBox{0, 0, 50, 101}},
		{"zero width", PixelBox{50, 0, 50, 50}},
		{"zero area", PixelBox{50, 50, 50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.box); err == nil {
				t.Error("Crop should fail")
			}
		})
	}
}

func TestFitWithin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))

	got := FitWithin(img, 50)
	if got.Bounds().Dx() != 50 || got.Bounds().Dy() != 25 {
		t.Errorf("got %dx%d, want 50x25", got.Bounds().Dx(), got.Bounds().Dy())
	}

	if same := FitWithin(img, 0); same != img {
		t.Error("size 0 should return the input")
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a.jpg", "a.jpg"},
		{"a.JPEG", "a.JPEG"},
		{"a.png", "a.png"},
		{"a.bmp", "a.bmp"},
		{"a.webp", "a.png"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in); got != tt.want {
			t.Errorf("OutputName(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))

	for _, name := range []string{"out.png", "out.jpg", "out.bmp"} {
		path := filepath.Join(dir, "nested", name)
		if err := Save(img, path); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
		decoded, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s) failed: %v", name, err)
		}
		if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 6 {
			t.Errorf("%s: got %dx%d, want 8x6", name, decoded.Bounds().Dx(), decoded.Bounds().Dy())
		}
	}

	if err := Save(img, filepath.Join(dir, "out.webp")); err == nil {
		t.Error("Save should fail for an unsupported extension")
	}
}
