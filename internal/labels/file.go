package labels

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ClassListName is the conventional class list filename. It is skipped when
// listing label files so a class list stored next to the labels is not read
// as one.
const ClassListName = "classes.txt"

// Category derives the category key from a label filename.
//
// The extension is removed first, then everything from the last underscore
// on. A name without an underscore is its own category.
func Category(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		return stem[:i]
	}
	return stem
}

// ErrInvalidClassName is wrapped by ValidateClassName errors.
var ErrInvalidClassName = errors.New("invalid class name")

// ValidateClassName checks that name can be written to a class list and
// used as a folder name under an output root. It must be non-empty, free of
// surrounding whitespace and path separators, and not "." or "..".
func ValidateClassName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidClassName)
	case name != strings.TrimSpace(name):
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidClassName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidClassName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidClassName, name)
	}
	return nil
}

// ListLabelFiles returns the names of the .txt files in dir, sorted
// lexicographically. Directories and the class list file are skipped.
func ListLabelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list label directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".txt") || name == ClassListName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile parses every non-blank line of a label file.
//
// Parsing stops at the first malformed line; the returned *LineError carries
// the file path and line number.
func ReadFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	number := 0
	for scanner.Scan() {
		number++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		l, err := ParseLine(text, number)
		if err != nil {
			var le *LineError
			if errors.As(err, &le) {
				le.File = path
			}
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read label file %s: %w", path, err)
	}
	return lines, nil
}

// WriteFile writes lines to path, using classOf to pick each line's class
// index. Pass nil to keep the indices unchanged.
func WriteFile(path string, lines []Line, classOf func(Line) int) error {
	var b strings.Builder
	for _, l := range lines {
		class := l.Class
		if classOf != nil {
			class = classOf(l)
		}
		b.WriteString(l.Format(class))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write label file: %w", err)
	}
	return nil
}

// ReadClassList reads a class list file. Trailing blank lines are ignored;
// a blank name anywhere else is an error because it would shift every
// following index.
func ReadClassList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class list: %w", err)
	}

	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(raw) > 0 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}

	names := make([]string, len(raw))
	for i, r := range raw {
		name := strings.TrimSpace(r)
		if name == "" {
			return nil, fmt.Errorf("class list %s: line %d is blank", path, i+1)
		}
		names[i] = name
	}
	return names, nil
}

// WriteClassList writes one class name per line, in index order. Every name
// must pass ValidateClassName so the list reads back unchanged.
func WriteClassList(path string, names []string) error {
	for i, n := range names {
		if err := ValidateClassName(n); err != nil {
			return fmt.Errorf("failed to write class list: class %d: %w", i, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create class list directory: %w", err)
		}
	}

	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write class list: %w", err)
	}
	return nil
}
