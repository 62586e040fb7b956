package labels

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedLine is wrapped by every error returned for a label line that
// cannot be parsed.
var ErrMalformedLine = errors.New("malformed label line")

// LineError describes a malformed label line.
type LineError struct {
	File   string // Label file path, empty when parsing a bare line
	Line   int    // 1-based line number within the file
	Reason string
}

func (e *LineError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s: %s", e.Line, ErrMalformedLine, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, ErrMalformedLine, e.Reason)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

// Box is a bounding box in normalized YOLO coordinates.
type Box struct {
	CX float64 `json:"x_center"`
	CY float64 `json:"y_center"`
	W  float64 `json:"width"`
	H  float64 `json:"height"`
}

// Line is one parsed label line.
type Line struct {
	// Class is the class index as written in the file.
	Class int `json:"class"`

	// Box holds the parsed coordinates.
	Box Box `json:"box"`

	// Coords keeps the four coordinate tokens exactly as they appeared in the
	// file so a rewrite reproduces them byte-for-byte.
	Coords [4]string `json:"-"`

	// Extra holds any tokens after the fifth (e.g. polygon points).
	Extra []string `json:"extra,omitempty"`

	// Number is the 1-based line number in the source file.
	Number int `json:"line"`
}

// ParseLine parses one whitespace-separated label line.
//
// The first token must be a non-negative integer. The next four must be finite
// numbers and the width and height must not be negative. Values outside [0,1]
// are accepted; they are clamped to the image when converted to pixels.
func ParseLine(text string, number int) (Line, error) {
	fields := strings.Fields(text)
	if len(fields) < 5 {
		return Line{}, &LineError{Line: number, Reason: fmt.Sprintf("expected at least 5 tokens, got %d", len(fields))}
	}

	class, err := strconv.Atoi(fields[0])
	if err != nil {
		return Line{}, &LineError{Line: number, Reason: fmt.Sprintf("class index %q is not an integer", fields[0])}
	}
	if class < 0 {
		return Line{}, &LineError{Line: number, Reason: fmt.Sprintf("class index %d is negative", class)}
	}

	var vals [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Line{}, &LineError{Line: number, Reason: fmt.Sprintf("coordinate %q is not a finite number", fields[i+1])}
		}
		vals[i] = v
	}
	if vals[2] < 0 || vals[3] < 0 {
		return Line{}, &LineError{Line: number, Reason: "box width and height must not be negative"}
	}

	l := Line{
		Class:  class,
		Box:    Box{CX: vals[0], CY: vals[1], W: vals[2], H: vals[3]},
		Number: number,
	}
	copy(l.Coords[:], fields[1:5])
	if len(fields) > 5 {
		l.Extra = append([]string(nil), fields[5:]...)
	}
	return l, nil
}

// Format renders the line with the given class index, preserving the
// original coordinate and extra tokens.
func (l Line) Format(class int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(class))
	vals := [4]float64{l.Box.CX, l.Box.CY, l.Box.W, l.Box.H}
	for i, c := range l.Coords {
		b.WriteByte(' ')
		if c == "" {
			c = strconv.FormatFloat(vals[i], 'f', -1, 64)
		}
		b.WriteString(c)
	}
	for _, e := range l.Extra {
		b.WriteByte(' ')
		b.WriteString(e)
	}
	return b.String()
}

// NewLine builds a line from a class index and a box, formatting the
// coordinates with the shortest exact representation.
func NewLine(class int, box Box) Line {
	l := Line{Class: class, Box: box}
	for i, v := range [4]float64{box.CX, box.CY, box.W, box.H} {
		l.Coords[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return l
}
