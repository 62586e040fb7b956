package crop

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/yolo-dataset-tools/internal/imaging"
	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// ErrClassOutOfRange is returned when a label references a class index with
// no class-list entry.
var ErrClassOutOfRange = errors.New("class index out of range")

// Crop is one extracted object.
type Crop struct {
	Line      int              `json:"line"`
	Class     int              `json:"class"`
	ClassName string           `json:"class_name"`
	Box       imaging.PixelBox `json:"box"`
	Image     *image.NRGBA     `json:"-"`
}

// Skip records a label line that produced no crop.
type Skip struct {
	Line   int              `json:"line"`
	Class  int              `json:"class"`
	Box    imaging.PixelBox `json:"box"`
	Reason string           `json:"reason"`
}

// CheckClasses verifies that every line's class index has a class-list
// entry. The error wraps ErrClassOutOfRange and names the first bad line.
func CheckClasses(lines []labels.Line, classes []string) error {
	for _, l := range lines {
		if l.Class < 0 || l.Class >= len(classes) {
			return fmt.Errorf("%w: line %d references class %d, class list has %d entries",
				ErrClassOutOfRange, l.Number, l.Class, len(classes))
		}
	}
	return nil
}

// ExtractImage crops every labelled box out of img.
//
// All class indices are checked before any crop is made, so an out-of-range
// index yields no crops at all. Boxes that clamp to zero area are returned as
// skips.
func ExtractImage(img image.Image, lines []labels.Line, classes []string) ([]Crop, []Skip, error) {
	if err := CheckClasses(lines, classes); err != nil {
		return nil, nil, err
	}

	var crops []Crop
	var skips []Skip
	for _, l := range lines {
		box := imaging.BoxFor(img, l.Box)
		if box.Empty() {
			skips = append(skips, Skip{Line: l.Number, Class: l.Class, Box: box, Reason: "empty after clamping"})
			continue
		}
		cropped, err := imaging.Crop(img, box)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", l.Number, err)
		}
		crops = append(crops, Crop{
			Line:      l.Number,
			Class:     l.Class,
			ClassName: classes[l.Class],
			Box:       box,
			Image:     cropped,
		})
	}
	return crops, skips, nil
}
