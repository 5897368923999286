package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// boxSchema describes the rendered bounding box of the drawing surface.
var boxSchema = map[string]interface{}{
	"type":        "object",
	"description": "Bounding box of the rendered image in client (CSS) pixels, measured at the time of the event",
	"properties": map[string]interface{}{
		"left":   map[string]interface{}{"type": "number"},
		"top":    map[string]interface{}{"type": "number"},
		"width":  map[string]interface{}{"type": "number"},
		"height": map[string]interface{}{"type": "number"},
	},
	"required": []string{"left", "top", "width", "height"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Input
		{
			Name:        "image_load",
			Description: "Load an image as the session input, from a file path or base64 data. Resets the mask to the new dimensions and drops any previous result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image data (PNG, JPEG, GIF, BMP, TIFF or WebP). Used when path is empty.",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Optional display name for base64 uploads",
					},
				},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, or of the session image when no path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
			},
		},

		// Session State
		{
			Name:        "session_set_tab",
			Description: "Switch the active task tab. Mask drawing is only active on the inpainting tab; leaving it ends any stroke in progress.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tab": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"outpainting", "inpainting", "superresolution"},
						"description": "Task tab to activate",
					},
				},
				"required": []string{"tab"},
			},
		},
		{
			Name:        "mask_set_mode",
			Description: "Choose whether strokes add to the mask or erase it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"draw", "erase"},
						"description": "draw adds semi-transparent red, erase removes drawing",
					},
				},
				"required": []string{"mode"},
			},
		},

		// Pointer Input
		{
			Name:        "pointer_map",
			Description: "Convert a client-space pointer position to session image coordinates without drawing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"client_x": map[string]interface{}{"type": "number"},
					"client_y": map[string]interface{}{"type": "number"},
					"box":      boxSchema,
				},
				"required": []string{"client_x", "client_y", "box"},
			},
		},
		{
			Name:        "pointer_event",
			Description: "Deliver a mouse or touch event to the drawing surface. down starts a stroke and paints a dot, move extends it while the pointer is down, up and leave end it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"type": map[string]interface{}{
						"type": "string",
						"enum": []string{"down", "move", "up", "leave"},
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"mouse", "touch"},
						"description": "Input device. Default mouse",
						"default":     "mouse",
					},
					"client_x": map[string]interface{}{"type": "number"},
					"client_y": map[string]interface{}{"type": "number"},
					"touches": map[string]interface{}{
						"type":        "array",
						"description": "Active touches for touch events; the first one is used",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"client_x": map[string]interface{}{"type": "number"},
								"client_y": map[string]interface{}{"type": "number"},
							},
						},
					},
					"box": boxSchema,
				},
				"required": []string{"type"},
			},
		},

		// Mask Operations
		{
			Name:        "mask_stroke",
			Description: "Draw a complete stroke through image-space points on the mask. A single point paints a dot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
							},
							"required": []string{"x", "y"},
						},
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"draw", "erase"},
						"description": "Defaults to the session mode",
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "mask_clear",
			Description: "Erase the whole mask drawing.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "mask_export",
			Description: "Export the binary inpainting mask as a base64 PNG: white where drawn, black elsewhere, at the session image size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"refined": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the dilated and feathered mask the service will apply instead of the binary export",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "mask_sample",
			Description: "Read drawing layer pixels at image coordinates, including stroke alpha.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "canvas_composite",
			Description: "Render the visible canvas (image with the mask drawing on top) as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display width limit; the image is downscaled to fit",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display height limit",
					},
				},
			},
		},

		// Outpainting
		{
			Name:        "outpaint_pixels",
			Description: "Compute how many pixels an outpainting request adds on each side for a direction and percentage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"direction": map[string]interface{}{
						"type": "string",
						"enum": []string{"left", "right", "top", "bottom", "horizontal", "vertical", "all"},
					},
					"percentage": map[string]interface{}{
						"type":        "integer",
						"description": "Expansion as a percentage of the image size (1-100)",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Image width. Defaults to the session image",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height. Defaults to the session image",
					},
				},
				"required": []string{"direction", "percentage"},
			},
		},
		{
			Name:        "outpaint_preview",
			Description: "Preview an outpainting request: the expanded canvas and the feathered mask over the new area, as base64 PNGs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"direction": map[string]interface{}{
						"type": "string",
						"enum": []string{"left", "right", "top", "bottom", "horizontal", "vertical", "all"},
					},
					"percentage": map[string]interface{}{"type": "integer"},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display width limit",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display height limit",
					},
				},
				"required": []string{"direction", "percentage"},
			},
		},

		// Processing
		{
			Name:        "image_process",
			Description: "Send the session image to the processing service. Runs in the background; only one request may be in flight. Inpainting sends the current mask.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"task": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"outpainting", "inpainting", "superresolution"},
						"description": "Defaults to the active tab",
					},
					"params": map[string]interface{}{
						"type":        "object",
						"description": "Task parameters; omitted fields use the service defaults. outpainting: direction, percentage, prompt, negative_prompt, guidance_scale, num_inference_steps, strength. inpainting: prompt, negative_prompt, guidance_scale, num_inference_steps, strength. superresolution: scale, model, denoise_strength.",
					},
					"wait": map[string]interface{}{
						"type":        "boolean",
						"description": "Block until the job finishes",
						"default":     false,
					},
					"timeout_seconds": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum time to wait when wait is true. The job keeps running after the wait gives up",
					},
				},
			},
		},
		{
			Name:        "image_process_status",
			Description: "Report the session state, the current processing job and whether a result is available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_result": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the processed image as base64",
						"default":     false,
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display width limit for the included result",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Optional display height limit for the included result",
					},
				},
			},
		},
		{
			Name:        "image_use_result",
			Description: "Make the processed result the new session input so further edits build on it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_save_result",
			Description: "Write the processed result as processed_<task>_<timestamp>.png.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Output directory. Defaults to the configured output directory",
					},
				},
			},
		},

		// Service
		{
			Name:        "service_health",
			Description: "Check that the processing service is reachable and healthy.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "service_models",
			Description: "List the tasks and models the processing service offers.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
