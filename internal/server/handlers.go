package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/yolo-dataset-tools/internal/crop"
	"github.com/ironsheep/yolo-dataset-tools/internal/imaging"
	"github.com/ironsheep/yolo-dataset-tools/internal/labels"
	"github.com/ironsheep/yolo-dataset-tools/internal/remap"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dataset_remap_labels").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Batch operations
	case "dataset_remap_labels":
		return s.handleRemapLabels(args)
	case "dataset_crop_objects":
		return s.handleCropObjects(args)

	// Single image inspection
	case "dataset_preview_labels":
		return s.handlePreviewLabels(args)
	case "dataset_label_info":
		return s.handleLabelInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errors.New("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// requireFields reports the first {name, value} pair with an empty value.
func requireFields(fields [][2]string) error {
	for _, f := range fields {
		if f[1] == "" {
			return fmt.Errorf("%s is required", f[0])
		}
	}
	return nil
}

// === Batch Operation Handlers ===

type remapLabelsArgs struct {
	LabelsDir   string `json:"labels_dir"`
	OutputDir   string `json:"output_dir"`
	ClassesFile string `json:"classes_file"`
	MappingFile string `json:"mapping_file"`
}

func (s *Server) handleRemapLabels(args json.RawMessage) (interface{}, error) {
	var a remapLabelsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFields([][2]string{
		{"labels_dir", a.LabelsDir},
		{"output_dir", a.OutputDir},
		{"classes_file", a.ClassesFile},
	}); err != nil {
		return nil, err
	}

	return remap.Run(remap.Options{
		LabelsDir:   a.LabelsDir,
		OutputDir:   a.OutputDir,
		ClassesFile: a.ClassesFile,
		MappingFile: a.MappingFile,
		Logger:      log.Default(),
	})
}

type cropObjectsArgs struct {
	DataRoot    string `json:"data_root"`
	LabelsDir   string `json:"labels_dir"`
	ClassesFile string `json:"classes_file"`
	OutputDir   string `json:"output_dir"`
	Size        int    `json:"size"`
	Clean       bool   `json:"clean"`
}

func (s *Server) handleCropObjects(args json.RawMessage) (interface{}, error) {
	var a cropObjectsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFields([][2]string{
		{"data_root", a.DataRoot},
		{"classes_file", a.ClassesFile},
		{"output_dir", a.OutputDir},
	}); err != nil {
		return nil, err
	}
	if a.Size < 0 {
		return nil, fmt.Errorf("size must not be negative, got %d", a.Size)
	}

	imagesDir, labelsDir := crop.DataDirs(a.DataRoot)
	if a.LabelsDir != "" {
		labelsDir = a.LabelsDir
	}
	return crop.Run(crop.Options{
		ImagesDir:   imagesDir,
		LabelsDir:   labelsDir,
		ClassesFile: a.ClassesFile,
		OutputDir:   a.OutputDir,
		Size:        a.Size,
		Clean:       a.Clean,
		Logger:      log.Default(),
	})
}

// === Single Image Handlers ===

// labelBox is one label line as seen on a specific image.
type labelBox struct {
	Line      int              `json:"line"`
	Class     int              `json:"class"`
	ClassName string           `json:"class_name,omitempty"`
	Color     string           `json:"color,omitempty"`
	Box       labels.Box       `json:"normalized"`
	Pixels    imaging.PixelBox `json:"pixels"`
	Empty     bool             `json:"empty,omitempty"`
}

func describeBoxes(lines []labels.Line, boxes []imaging.AnnotatedBox, classes []string) []labelBox {
	out := make([]labelBox, len(lines))
	for i, l := range lines {
		out[i] = labelBox{
			Line:   l.Number,
			Class:  l.Class,
			Color:  imaging.ClassColorHex(l.Class),
			Box:    l.Box,
			Pixels: boxes[i].Box,
			Empty:  boxes[i].Box.Empty(),
		}
		if l.Class < len(classes) {
			out[i].ClassName = classes[l.Class]
		}
	}
	return out
}

type previewLabelsArgs struct {
	ImagePath   string `json:"image_path"`
	LabelPath   string `json:"label_path"`
	ClassesFile string `json:"classes_file"`
	OutputPath  string `json:"output_path"`
}

type previewResult struct {
	OutputPath string     `json:"output_path"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Boxes      []labelBox `json:"boxes"`
}

func (s *Server) handlePreviewLabels(args json.RawMessage) (interface{}, error) {
	var a previewLabelsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFields([][2]string{
		{"image_path", a.ImagePath},
		{"label_path", a.LabelPath},
		{"output_path", a.OutputPath},
	}); err != nil {
		return nil, err
	}

	lines, err := labels.ReadFile(a.LabelPath)
	if err != nil {
		return nil, err
	}

	var classes []string
	if a.ClassesFile != "" {
		if classes, err = labels.ReadClassList(a.ClassesFile); err != nil {
			return nil, err
		}
		if err := crop.CheckClasses(lines, classes); err != nil {
			return nil, err
		}
	}

	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}

	boxes := imaging.BoxesFor(img, lines)
	if err := imaging.Save(imaging.Annotate(img, boxes), a.OutputPath); err != nil {
		return nil, err
	}
	s.cache.Evict(a.OutputPath)

	bounds := img.Bounds()
	return &previewResult{
		OutputPath: a.OutputPath,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Boxes:      describeBoxes(lines, boxes, classes),
	}, nil
}

type labelInfoArgs struct {
	ImagePath string `json:"image_path"`
	LabelPath string `json:"label_path"`
}

type labelInfoResult struct {
	Image    *imaging.ImageInfo `json:"image"`
	Category string             `json:"category"`
	Boxes    []labelBox         `json:"boxes"`
}

func (s *Server) handleLabelInfo(args json.RawMessage) (interface{}, error) {
	var a labelInfoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFields([][2]string{
		{"image_path", a.ImagePath},
		{"label_path", a.LabelPath},
	}); err != nil {
		return nil, err
	}

	lines, err := labels.ReadFile(a.LabelPath)
	if err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.ImagePath)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.ImagePath)
	if err != nil {
		return nil, err
	}

	return &labelInfoResult{
		Image:    info,
		Category: labels.Category(a.LabelPath),
		Boxes:    describeBoxes(lines, imaging.BoxesFor(img, lines), nil),
	}, nil
}
