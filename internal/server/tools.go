package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Batch operations
		{
			Name:        "dataset_remap_labels",
			Description: "Merge per-category YOLO label files into one global class space. " +
				"Every (category, class index) pair found in the labels folder gets a contiguous global index; " +
				"rewritten label files go to output_dir and the class list to classes_file. " +
				"Malformed label files, and files whose category is not a usable folder name, are reported and left out.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"labels_dir": map[string]interface{}{
						"type":        "string",
						"description": "Folder of source label files named <category>_<suffix>.txt",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Folder that receives the rewritten label files (created if absent)",
					},
					"classes_file": map[string]interface{}{
						"type":        "string",
						"description": "Path of the class list to write, one name per line",
					},
					"mapping_file": map[string]interface{}{
						"type":        "string",
						"description": "Optional path of a JSON file recording every (category, old index) to global index assignment",
					},
				},
				"required": []string{"labels_dir", "output_dir", "classes_file"},
			},
		},
		{
			Name:        "dataset_crop_objects",
			Description: "Crop every labelled object out of a dataset's images into output_dir/<ClassName>/. " +
				"Boxes are clamped to the image; empty boxes, missing or undecodable images, malformed label files " +
				"and out-of-range class indices are reported without stopping the run.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"data_root": map[string]interface{}{
						"type":        "string",
						"description": "Dataset root containing images/ and labels/",
					},
					"labels_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional labels folder overriding <data_root>/labels",
					},
					"classes_file": map[string]interface{}{
						"type":        "string",
						"description": "Class list mapping indices to folder names",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Root folder for the per-class crop folders",
					},
					"size": map[string]interface{}{
						"type":        "integer",
						"description": "Optional maximum crop side in pixels; crops are scaled down to fit. 0 keeps the original size",
						"default":     0,
					},
					"clean": map[string]interface{}{
						"type":        "boolean",
						"description": "Remove output_dir before cropping",
						"default":     false,
					},
				},
				"required": []string{"data_root", "classes_file", "output_dir"},
			},
		},

		// Single image inspection
		{
			Name:        "dataset_preview_labels",
			Description: "Draw the boxes of one label file onto its image and save the result. " +
				"Each class gets a stable color; the response lists every box in normalized and pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"label_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the YOLO label file",
					},
					"classes_file": map[string]interface{}{
						"type":        "string",
						"description": "Optional class list; when given, class names are reported and indices are range-checked",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the annotated image; the extension selects the format",
					},
				},
				"required": []string{"image_path", "label_path", "output_path"},
			},
		},
		{
			Name:        "dataset_label_info",
			Description: "Parse one label file against its image and report image metadata, the label's category, and each box in normalized and clamped pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"label_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the YOLO label file",
					},
				},
				"required": []string{"image_path", "label_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
