// Package labels reads, validates, and writes YOLO label files and class lists.
//
// A YOLO label file holds one bounding box per line:
//
//	<class_index> <x_center> <y_center> <width> <height>
//
// Coordinates are normalized to the image size, so (0.5, 0.5) is the image
// center and a width of 1.0 spans the full image width. Tokens after the fifth
// are kept verbatim so that rewriting a file never loses data.
//
// # Categories
//
// Label files are grouped into categories by filename. The category is the
// filename with its extension and its final "_<suffix>" segment removed:
//
//	brandA_0001.txt  -> brandA
//	acme_corp_17.txt -> acme_corp
//	plain.txt        -> plain
//
// # Class Lists
//
// A class list is a text file with one class name per line. Line i (0-based)
// names class index i.
//
// # Error Handling
//
// Malformed lines are reported as *LineError values wrapping ErrMalformedLine.
// The error carries the file path and the 1-based line number so the operator
// can find the offending line.
package labels
