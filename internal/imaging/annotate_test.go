package imaging

import (
	"image/color"
	"regexp"
	"testing"

	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

func TestClassColor_StableAndDistinct(t *testing.T) {
	seen := make(map[color.NRGBA]int)
	for i := 0; i < 20; i++ {
		c := ClassColor(i)
		if c != ClassColor(i) {
			t.Fatalf("ClassColor(%d) is not stable", i)
		}
		if c.A != 255 {
			t.Errorf("ClassColor(%d) alpha: got %d, want 255", i, c.A)
		}
		if prev, ok := seen[c]; ok {
			t.Errorf("ClassColor(%d) repeats ClassColor(%d)", i, prev)
		}
		seen[c] = i
	}
}

func TestClassColorHex(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for i := 0; i < 5; i++ {
		if got := ClassColorHex(i); !hex.MatchString(got) {
			t.Errorf("ClassColorHex(%d): got %q", i, got)
		}
	}
}

func TestAnnotate(t *testing.T) {
	img := createInMemoryImage(100, 80, color.RGBA{10, 20, 30, 255})
	box := PixelBox{X1: 20, Y1: 30, X2: 60, Y2: 70}

	out := Annotate(img, []AnnotatedBox{{Box: box, Class: 3}})

	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 80 {
		t.Fatalf("dimensions: got %dx%d, want 100x80", out.Bounds().Dx(), out.Bounds().Dy())
	}

	// Far from the box: untouched.
	if r, g, b := rgb8(out.At(95, 5)); r != 10 || g != 20 || b != 30 {
		t.Errorf("outside pixel: got (%d,%d,%d), want (10,20,30)", r, g, b)
	}

	// Outline pixel: exact class color.
	want := ClassColor(3)
	if r, g, b := rgb8(out.At(40, 69)); r != want.R || g != want.G || b != want.B {
		t.Errorf("outline pixel: got (%d,%d,%d), want (%d,%d,%d)", r, g, b, want.R, want.G, want.B)
	}

	// Interior: tinted, so neither the original nor the outline color.
	r, g, b := rgb8(out.At(40, 50))
	if r == 10 && g == 20 && b == 30 {
		t.Error("interior pixel should be tinted")
	}
	if r == want.R && g == want.G && b == want.B {
		t.Error("interior pixel should not be fully opaque")
	}
}

func TestAnnotate_DoesNotModifyInput(t *testing.T) {
	img := createPatternImage(40, 40)
	Annotate(img, []AnnotatedBox{{Box: PixelBox{0, 0, 40, 40}, Class: 0}})
	if r, g, b := rgb8(img.At(5, 5)); r != 255 || g != 0 || b != 0 {
		t.Errorf("input modified: got (%d,%d,%d)", r, g, b)
	}
}

func TestAnnotate_EmptyBoxSkipped(t *testing.T) {
	img := createInMemoryImage(20, 20, color.Black)
	out := Annotate(img, []AnnotatedBox{{Box: PixelBox{5, 5, 5, 15}, Class: 1}})
	if r, g, b := rgb8(out.At(5, 10)); r != 0 || g != 0 || b != 0 {
		t.Errorf("empty box drew pixels: got (%d,%d,%d)", r, g, b)
	}
}

func TestBoxesFor(t *testing.T) {
	img := createInMemoryImage(100, 50, color.White)
	lines := []labels.Line{
		labels.NewLine(0, labels.Box{CX: 0.5, CY: 0.5, W: 0.2, H: 0.4}),
		labels.NewLine(4, labels.Box{CX: 0.5, CY: 0.5, W: 1.2, H: 1.2}),
	}

	boxes := BoxesFor(img, lines)
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}
	if boxes[0].Box != (PixelBox{X1: 40, Y1: 15, X2: 60, Y2: 35}) || boxes[0].Class != 0 {
		t.Errorf("boxes[0]: got %+v", boxes[0])
	}
	if boxes[1].Box != (PixelBox{X1: 0, Y1: 0, X2: 100, Y2: 50}) || boxes[1].Class != 4 {
		t.Errorf("boxes[1]: got %+v", boxes[1])
	}
}
