// Package server implements an MCP (Model Context Protocol) server for YOLO
// dataset preparation.
//
// This package provides a JSON-RPC 2.0 server that exposes the label remapping
// and crop extraction operations, plus two single-image inspection tools, so
// an MCP-compatible client can prepare and check a dataset without a shell.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Batch Operations:
//   - dataset_remap_labels: Merge per-category label files into one class space
//   - dataset_crop_objects: Cut labelled objects into per-class folders
//
// Single Image Inspection:
//   - dataset_preview_labels: Draw a label file's boxes onto its image
//   - dataset_label_info: Report a label file's boxes in pixel coordinates
//
// # Image Caching
//
// The inspection tools read images through an in-memory cache keyed by path,
// so previewing and inspecting the same image decodes it once. Preview output
// paths are evicted after writing. The batch tools bypass the cache and hold
// one decoded image at a time.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Per-file problems inside a batch run are not errors; they are listed in the
// tool result alongside the counts.
//
// # Usage
//
//	srv := server.New(version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
