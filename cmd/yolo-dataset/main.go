package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/yolo-dataset-tools/internal/crop"
	"github.com/ironsheep/yolo-dataset-tools/internal/imaging"
	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
	"github.com/ironsheep/yolo-dataset-tools/internal/remap"
	"github.com/ironsheep/yolo-dataset-tools/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// errUsage marks errors already explained by a usage message.
var errUsage = errors.New("usage error")

func main() {
	// Configure logging to stderr (stdout is for results and the MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	debug := os.Getenv("YOLO_DATASET_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("yolo-dataset v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	var err error
	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "yolo-dataset %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "remap":
		err = runRemap(args[1:], stdout, stderr)
	case "crop":
		err = runCrop(args[1:], stdout, stderr)
	case "preview":
		err = runPreview(args[1:], stdout, stderr)
	case "serve":
		if debug {
			log.Printf("Serving MCP over stdio")
		}
		err = server.New(Version).Run()
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		log.Printf("Error: %v", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "yolo-dataset - prepare YOLO label corpora and classification crops")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  yolo-dataset remap   -labels DIR -out DIR -classes FILE [-mapping FILE]")
	fmt.Fprintln(w, "  yolo-dataset crop    -data DIR [-labels DIR] -classes FILE -out DIR [-size N] [-clean]")
	fmt.Fprintln(w, "  yolo-dataset preview -image FILE -label FILE [-classes FILE] -out FILE")
	fmt.Fprintln(w, "  yolo-dataset serve")
	fmt.Fprintln(w, "  yolo-dataset version | help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  remap      Merge per-category label files into one global class space")
	fmt.Fprintln(w, "  crop       Cut labelled objects into per-class folders")
	fmt.Fprintln(w, "  preview    Draw a label file's boxes onto its image")
	fmt.Fprintln(w, "  serve      Run as an MCP server over stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  YOLO_DATASET_LOG_LEVEL=debug    Enable debug logging")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name, usage string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: yolo-dataset %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args and checks that every named flag was given a value.
func parseFlags(fs *flag.FlagSet, args []string, required map[string]*string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	var missing []string
	fs.VisitAll(func(f *flag.Flag) {
		if v, ok := required[f.Name]; ok && *v == "" {
			missing = append(missing, "-"+f.Name)
		}
	})
	if len(missing) > 0 {
		fmt.Fprintf(fs.Output(), "missing required flags: %v\n", missing)
		fs.Usage()
		return errUsage
	}
	return nil
}

func runRemap(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("remap", "-labels DIR -out DIR -classes FILE [-mapping FILE]", stderr)
	labelsDir := fs.String("labels", "", "folder of source label files")
	outDir := fs.String("out", "", "folder for the rewritten label files")
	classesFile := fs.String("classes", "", "class list to write")
	mappingFile := fs.String("mapping", "", "optional JSON file recording the index mapping")

	if err := parseFlags(fs, args, map[string]*string{
		"labels":  labelsDir,
		"out":     outDir,
		"classes": classesFile,
	}); err != nil {
		return err
	}

	res, err := remap.Run(remap.Options{
		LabelsDir:   *labelsDir,
		OutputDir:   *outDir,
		ClassesFile: *classesFile,
		MappingFile: *mappingFile,
		Logger:      log.Default(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Rewrote %d label files (%d lines) into %s\n", res.FilesRewritten, res.LinesRewritten, *outDir)
	fmt.Fprintf(stdout, "Wrote %d classes to %s\n", len(res.Classes), *classesFile)
	if len(res.Problems) > 0 {
		fmt.Fprintf(stdout, "Skipped %d unusable label files\n", len(res.Problems))
	}
	if len(res.DuplicateNames) > 0 {
		fmt.Fprintf(stdout, "Duplicate class names: %v\n", res.DuplicateNames)
	}
	return nil
}

func runCrop(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("crop", "-data DIR [-labels DIR] -classes FILE -out DIR [-size N] [-clean]", stderr)
	dataRoot := fs.String("data", "", "dataset root containing images/ and labels/")
	labelsDir := fs.String("labels", "", "labels folder (default <data>/labels)")
	classesFile := fs.String("classes", "", "class list naming the output folders")
	outDir := fs.String("out", "", "root folder for the per-class crops")
	size := fs.Int("size", 0, "scale crops down to fit a size x size square (0 keeps the original size)")
	clean := fs.Bool("clean", false, "remove the output folder before cropping")

	if err := parseFlags(fs, args, map[string]*string{
		"data":    dataRoot,
		"classes": classesFile,
		"out":     outDir,
	}); err != nil {
		return err
	}
	if *size < 0 {
		fmt.Fprintf(stderr, "-size must not be negative, got %d\n", *size)
		return errUsage
	}

	imagesDir, defaultLabels := crop.DataDirs(*dataRoot)
	if *labelsDir == "" {
		*labelsDir = defaultLabels
	}

	report, err := crop.Run(crop.Options{
		ImagesDir:   imagesDir,
		LabelsDir:   *labelsDir,
		ClassesFile: *classesFile,
		OutputDir:   *outDir,
		Size:        *size,
		Clean:       *clean,
		Logger:      log.Default(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Processed %d images, wrote %d crops into %s\n", report.Images, report.Crops, *outDir)
	if report.Renamed > 0 {
		fmt.Fprintf(stdout, "Renamed %d crops to avoid name collisions\n", report.Renamed)
	}
	if len(report.Skips) > 0 {
		fmt.Fprintf(stdout, "Skipped %d empty boxes\n", len(report.Skips))
	}
	if len(report.Failures) > 0 {
		kinds := make(map[string]int)
		for _, f := range report.Failures {
			kinds[f.Kind]++
		}
		fmt.Fprintf(stdout, "Skipped %d images: %v\n", len(report.Failures), kinds)
	}
	return nil
}

func runPreview(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("preview", "-image FILE -label FILE [-classes FILE] -out FILE", stderr)
	imagePath := fs.String("image", "", "image to annotate")
	labelPath := fs.String("label", "", "YOLO label file for the image")
	classesFile := fs.String("classes", "", "optional class list used to range-check indices")
	outPath := fs.String("out", "", "where to write the annotated image")

	if err := parseFlags(fs, args, map[string]*string{
		"image": imagePath,
		"label": labelPath,
		"out":   outPath,
	}); err != nil {
		return err
	}

	lines, err := labels.ReadFile(*labelPath)
	if err != nil {
		return err
	}
	var classes []string
	if *classesFile != "" {
		if classes, err = labels.ReadClassList(*classesFile); err != nil {
			return err
		}
		if err := crop.CheckClasses(lines, classes); err != nil {
			return err
		}
	}

	img, err := imaging.Open(*imagePath)
	if err != nil {
		return err
	}
	boxes := imaging.BoxesFor(img, lines)
	if err := imaging.Save(imaging.Annotate(img, boxes), *outPath); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s with %d boxes\n", *outPath, len(boxes))
	for i, b := range boxes {
		name := ""
		if b.Class < len(classes) {
			name = " " + classes[b.Class]
		}
		fmt.Fprintf(stdout, "  line %d: class %d%s %s (%d,%d)-(%d,%d)\n",
			lines[i].Number, b.Class, name, imaging.ClassColorHex(b.Class), b.Box.X1, b.Box.Y1, b.Box.X2, b.Box.Y2)
	}
	return nil
}
