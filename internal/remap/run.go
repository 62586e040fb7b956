package remap

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// Options configures a corpus run.
type Options struct {
	// LabelsDir is the folder of source label files.
	LabelsDir string

	// OutputDir receives one rewritten label file per valid source file.
	// It is created if absent.
	OutputDir string

	// ClassesFile is the class list written at the end of the run.
	ClassesFile string

	// MappingFile, when set, receives the mapping as a JSON array of Entry.
	MappingFile string

	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Problem records a label file that was left out of the run.
type Problem struct {
	File string `json:"file"`
	Err  string `json:"error"`
}

// Result summarizes a corpus run.
type Result struct {
	Classes        []string  `json:"classes"`
	Entries        []Entry   `json:"mapping"`
	FilesRewritten int       `json:"files_rewritten"`
	LinesRewritten int       `json:"lines_rewritten"`
	Problems       []Problem `json:"problems,omitempty"`
	// DuplicateNames lists class names produced by more than one global
	// index, e.g. category "b" with indices {0,1} next to a category "b1".
	DuplicateNames []string `json:"duplicate_names,omitempty"`
}

type parsedFile struct {
	name     string
	category string
	lines    []labels.Line
}

// Run scans the label corpus, assigns global indices, rewrites every valid
// label file, and writes the class list.
//
// A malformed label file, or one whose category cannot serve as a class
// name (empty, ".", "..", or padded with whitespace), is reported in
// Result.Problems and contributes no pairs; the rest of the corpus is still
// processed. Run fails only when the labels folder cannot be listed or an
// output cannot be written.
func Run(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	names, err := labels.ListLabelFiles(opts.LabelsDir)
	if err != nil {
		return nil, err
	}

	r := New()
	result := &Result{}

	// First pass: a file is parsed completely before its pairs are
	// registered so a bad line late in a file cannot leave partial state.
	files := make([]parsedFile, 0, len(names))
	for _, name := range names {
		lines, err := labels.ReadFile(filepath.Join(opts.LabelsDir, name))
		if err != nil {
			logger.Printf("Skipping label file %s: %v", name, err)
			result.Problems = append(result.Problems, Problem{File: name, Err: err.Error()})
			continue
		}
		category := labels.Category(name)
		if err := labels.ValidateClassName(category); err != nil {
			logger.Printf("Skipping label file %s: category %v", name, err)
			result.Problems = append(result.Problems, Problem{File: name, Err: "category " + err.Error()})
			continue
		}
		pf := parsedFile{name: name, category: category, lines: lines}
		r.ObserveFile(pf.category, pf.lines)
		files = append(files, pf)
	}

	result.Classes = r.Names()
	result.Entries = r.Entries()
	result.DuplicateNames = duplicates(result.Classes)
	for _, d := range result.DuplicateNames {
		logger.Printf("Warning: class name %q is used by more than one class index", d)
	}

	// Second pass.
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, pf := range files {
		indices, err := r.Rewrite(pf.category, pf.lines)
		if err != nil {
			return nil, fmt.Errorf("failed to remap %s: %w", pf.name, err)
		}
		rewritten := make([]labels.Line, len(pf.lines))
		for i, l := range pf.lines {
			l.Class = indices[i]
			rewritten[i] = l
		}
		if err := labels.WriteFile(filepath.Join(opts.OutputDir, pf.name), rewritten, nil); err != nil {
			return nil, fmt.Errorf("failed to rewrite %s: %w", pf.name, err)
		}
		result.FilesRewritten++
		result.LinesRewritten += len(pf.lines)
	}

	if err := labels.WriteClassList(opts.ClassesFile, result.Classes); err != nil {
		return nil, err
	}

	if opts.MappingFile != "" {
		if err := writeMapping(opts.MappingFile, result.Entries); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func writeMapping(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create mapping directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write mapping: %w", err)
	}
	return nil
}

func duplicates(names []string) []string {
	seen := make(map[string]int, len(names))
	var dups []string
	for _, n := range names {
		seen[n]++
		if seen[n] == 2 {
			dups = append(dups, n)
		}
	}
	return dups
}
