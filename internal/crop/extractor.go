package crop

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/yolo-dataset-tools/internal/imaging"
	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// Extractor writes crops into per-class folders under an output root. It
// remembers which output paths it has written so that several crops of one
// image into one class get distinct names.
type Extractor struct {
	classes   []string
	outputDir string
	size      int
	logger    *log.Logger
	used      map[string]bool
}

// NewExtractor returns an Extractor writing under outputDir. When size is
// positive every crop is scaled down to fit a size x size square. A nil
// logger uses log.Default().
func NewExtractor(classes []string, outputDir string, size int, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{
		classes:   classes,
		outputDir: outputDir,
		size:      size,
		logger:    logger,
		used:      make(map[string]bool),
	}
}

// Written is one crop saved to disk.
type Written struct {
	Crop
	Path    string `json:"path"`
	Renamed bool   `json:"renamed,omitempty"`
}

// ImageResult describes what happened to one image.
type ImageResult struct {
	Image   string    `json:"image"`
	Written []Written `json:"written"`
	Skips   []Skip    `json:"skips,omitempty"`
}

// ProcessImage decodes the image at imagePath and saves one crop per label
// line. Nothing is written when a class index is out of range or names a class
// that is not a usable folder name.
func (e *Extractor) ProcessImage(imagePath string, lines []labels.Line) (*ImageResult, error) {
	if err := CheckClasses(lines, e.classes); err != nil {
		return nil, err
	}
	for _, l := range lines {
		if err := labels.ValidateClassName(e.classes[l.Class]); err != nil {
			return nil, fmt.Errorf("line %d: class %d: %w", l.Number, l.Class, err)
		}
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, err
	}

	crops, skips, err := ExtractImage(img, lines, e.classes)
	if err != nil {
		return nil, err
	}

	result := &ImageResult{Image: imagePath, Skips: skips}
	for _, s := range skips {
		e.logger.Printf("Cropped region is empty: %s line %d", filepath.Base(imagePath), s.Line)
	}

	name := imaging.OutputName(filepath.Base(imagePath))
	for _, c := range crops {
		path, renamed, err := e.reserve(c.ClassName, name)
		if err != nil {
			return result, err
		}
		if err := imaging.Save(imaging.FitWithin(c.Image, e.size), path); err != nil {
			return result, err
		}
		c.Image = nil
		result.Written = append(result.Written, Written{Crop: c, Path: path, Renamed: renamed})
	}
	return result, nil
}

// ProcessFile reads labelPath and crops imagePath with it.
func (e *Extractor) ProcessFile(imagePath, labelPath string) (*ImageResult, error) {
	lines, err := labels.ReadFile(labelPath)
	if err != nil {
		return nil, err
	}
	return e.ProcessImage(imagePath, lines)
}

// reserve picks the output path for a crop of filename into class. The first
// request keeps filename; later ones add _1, _2, ... before the extension.
// The class folder must lie directly under the output root.
func (e *Extractor) reserve(class, filename string) (string, bool, error) {
	dir := filepath.Join(e.outputDir, class)
	if filepath.Dir(dir) != filepath.Clean(e.outputDir) || filepath.Base(dir) != class {
		return "", false, fmt.Errorf("%w: %q escapes the output folder", labels.ErrInvalidClassName, class)
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	candidate := filepath.Join(dir, filename)
	for n := 1; e.used[candidate]; n++ {
		candidate = filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
	}
	e.used[candidate] = true
	return candidate, candidate != filepath.Join(dir, filename), nil
}

// Failure kinds reported in a Report.
const (
	KindMissingImage     = "missing_image"
	KindUndecodableImage = "undecodable_image"
	KindMalformedLabel   = "malformed_label"
	KindClassOutOfRange  = "class_out_of_range"
	KindInvalidClassName = "invalid_class_name"
	KindIO               = "io_error"
)

// Failure records an image that could not be processed.
type Failure struct {
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
	Kind  string `json:"kind"`
	Err   string `json:"error"`
}

// SkipReport is a Skip tagged with its image.
type SkipReport struct {
	Image string `json:"image"`
	Skip
}

// Report summarizes a dataset run.
type Report struct {
	Images   int          `json:"images_processed"`
	Crops    int          `json:"crops_written"`
	Renamed  int          `json:"crops_renamed"`
	Skips    []SkipReport `json:"skips,omitempty"`
	Failures []Failure    `json:"failures,omitempty"`
}

// Options configures a dataset run.
type Options struct {
	ImagesDir   string
	LabelsDir   string
	ClassesFile string
	OutputDir   string

	// Size, when positive, scales crops down to fit a Size x Size square.
	Size int

	// Clean removes OutputDir before the run.
	Clean bool

	Logger *log.Logger
}

// DataDirs returns the images and labels folders under a data root.
func DataDirs(root string) (images, labelsDir string) {
	return filepath.Join(root, "images"), filepath.Join(root, "labels")
}

// Run crops every labelled image of a dataset.
//
// Label files are visited in lexicographic order. Each one is matched to the
// image with the same stem in ImagesDir. Per-image problems are collected in
// the Report; Run itself fails only when the class list or the labels folder
// cannot be read, or the output folder cannot be prepared.
func Run(opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	classes, err := labels.ReadClassList(opts.ClassesFile)
	if err != nil {
		return nil, err
	}
	names, err := labels.ListLabelFiles(opts.LabelsDir)
	if err != nil {
		return nil, err
	}

	if opts.Clean {
		if err := cleanOutput(opts); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e := NewExtractor(classes, opts.OutputDir, opts.Size, logger)
	report := &Report{}

	for _, name := range names {
		labelPath := filepath.Join(opts.LabelsDir, name)
		stem := strings.TrimSuffix(name, filepath.Ext(name))

		imagePath, err := imaging.FindImage(opts.ImagesDir, stem)
		if err != nil {
			report.fail(logger, name, "", err)
			continue
		}

		res, err := e.ProcessFile(imagePath, labelPath)
		if res != nil {
			report.add(res)
		}
		if err != nil {
			report.fail(logger, name, imagePath, err)
			continue
		}
		report.Images++
	}

	return report, nil
}

func (r *Report) add(res *ImageResult) {
	base := filepath.Base(res.Image)
	for _, w := range res.Written {
		r.Crops++
		if w.Renamed {
			r.Renamed++
		}
	}
	for _, s := range res.Skips {
		r.Skips = append(r.Skips, SkipReport{Image: base, Skip: s})
	}
}

func (r *Report) fail(logger *log.Logger, label, image string, err error) {
	kind := FailureKind(err)
	logger.Printf("Skipping %s (%s): %v", label, kind, err)
	r.Failures = append(r.Failures, Failure{Label: label, Image: image, Kind: kind, Err: err.Error()})
}

// FailureKind classifies a per-image error.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, imaging.ErrMissingImage):
		return KindMissingImage
	case errors.Is(err, imaging.ErrUndecodableImage):
		return KindUndecodableImage
	case errors.Is(err, labels.ErrMalformedLine):
		return KindMalformedLabel
	case errors.Is(err, ErrClassOutOfRange):
		return KindClassOutOfRange
	case errors.Is(err, labels.ErrInvalidClassName):
		return KindInvalidClassName
	default:
		return KindIO
	}
}

// cleanOutput removes the output folder, refusing paths that would take the
// input data with it.
func cleanOutput(opts Options) error {
	out, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if out == filepath.Dir(out) {
		return fmt.Errorf("refusing to clean %s", out)
	}
	for _, in := range []string{opts.ImagesDir, opts.LabelsDir, opts.ClassesFile} {
		abs, err := filepath.Abs(in)
		if err != nil {
			continue
		}
		if abs == out || strings.HasPrefix(abs, out+string(filepath.Separator)) {
			return fmt.Errorf("refusing to clean %s: it contains input %s", out, in)
		}
	}
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	return nil
}
