package remap

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
)

// Key identifies a class as it appears in the source label files.
type Key struct {
	Category string `json:"category"`
	OldIndex int    `json:"old_index"`
}

// Entry is one row of the final mapping.
type Entry struct {
	Key
	GlobalIndex int    `json:"global_index"`
	ClassName   string `json:"class_name"`
}

// Remapper holds the mapping state for one corpus run.
//
// The zero value is not usable; call New. Register pairs with Observe (or
// ObserveFile), then call Names once all files have been seen.
type Remapper struct {
	global     map[Key]int
	categories map[string][]int // category -> distinct old indices in first-seen order
	order      []Key            // keys by global index
}

// New returns an empty Remapper.
func New() *Remapper {
	return &Remapper{
		global:     make(map[Key]int),
		categories: make(map[string][]int),
	}
}

// Observe registers a pair and returns its global index. A pair seen before
// keeps the index it was first given.
func (r *Remapper) Observe(category string, oldIndex int) int {
	k := Key{Category: category, OldIndex: oldIndex}
	if idx, ok := r.global[k]; ok {
		return idx
	}
	idx := len(r.order)
	r.global[k] = idx
	r.order = append(r.order, k)
	r.categories[category] = append(r.categories[category], oldIndex)
	return idx
}

// ObserveFile registers every line of an already parsed label file.
func (r *Remapper) ObserveFile(category string, lines []labels.Line) {
	for _, l := range lines {
		r.Observe(category, l.Class)
	}
}

// Lookup returns the global index of a pair.
func (r *Remapper) Lookup(category string, oldIndex int) (int, bool) {
	idx, ok := r.global[Key{Category: category, OldIndex: oldIndex}]
	return idx, ok
}

// Len returns the number of distinct pairs seen so far.
func (r *Remapper) Len() int {
	return len(r.order)
}

// Categories returns the observed category names, sorted.
func (r *Remapper) Categories() []string {
	names := make([]string, 0, len(r.categories))
	for c := range r.categories {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// Names returns the class name for every global index, in index order.
func (r *Remapper) Names() []string {
	names := make([]string, len(r.order))
	for i, k := range r.order {
		names[i] = r.className(k)
	}
	return names
}

// Entries returns the full mapping ordered by global index.
func (r *Remapper) Entries() []Entry {
	entries := make([]Entry, len(r.order))
	for i, k := range r.order {
		entries[i] = Entry{Key: k, GlobalIndex: i, ClassName: r.className(k)}
	}
	return entries
}

func (r *Remapper) className(k Key) string {
	switch len(r.categories[k.Category]) {
	case 1:
		return k.Category
	default:
		return k.Category + strconv.Itoa(k.OldIndex+1)
	}
}

// Rewrite returns the global index for every line of a file in category.
// Every pair must have been observed.
func (r *Remapper) Rewrite(category string, lines []labels.Line) ([]int, error) {
	out := make([]int, len(lines))
	for i, l := range lines {
		idx, ok := r.Lookup(category, l.Class)
		if !ok {
			return nil, fmt.Errorf("line %d: class %d of category %q was never observed", l.Number, l.Class, category)
		}
		out[i] = idx
	}
	return out, nil
}
