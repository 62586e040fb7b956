// Package crop cuts labelled objects out of images and files them into
// per-class folders for classification training.
//
// Given a data root laid out as
//
//	data/images/logo_001.jpg
//	data/labels/logo_001.txt
//
// and a class list, every box in logo_001.txt is converted to pixels, clamped
// to the image, cropped, and written to
//
//	output/<ClassName>/logo_001.jpg
//
// # Name Collisions
//
// The first crop of an image into a class keeps the image's filename. Further
// crops of the same image into the same class get a numeric suffix
// (logo_001_1.jpg, logo_001_2.jpg, ...) so no crop of the current run is lost.
// Files left over from earlier runs are overwritten; use Options.Clean to
// start from an empty output folder.
//
// # Error Handling
//
// Problems are local to one image: a missing or undecodable image, a
// malformed label file, or a class index with no class-list entry is recorded
// in the Report and the run moves on. A class index out of range, or one whose
// class name is not a plain folder name (empty, "." or "..", padded with
// whitespace, or containing a separator), stops the image before anything is
// written for it. Crops are never written outside the output root. Boxes that
// clamp to nothing are reported as skips, not errors.
package crop
