// Package remap merges category-local YOLO class indices into one global
// class index space.
//
// Label corpora assembled from several sources often reuse small class
// indices: index 0 in brandA's files is unrelated to index 0 in brandB's.
// The Remapper assigns every distinct (category, old index) pair a global
// index in first-seen order, names each global class, and rewrites the label
// files with the new indices.
//
// # Naming
//
// Names are decided after the whole corpus has been scanned:
//   - a category with a single distinct index keeps its name ("brandA")
//   - a category with several indices gets a 1-based suffix per index
//     ("brandB1", "brandB2")
//
// # Determinism
//
// Files are visited in lexicographic filename order and lines in file order,
// so running the remapper twice over the same corpus produces identical
// output.
package remap
