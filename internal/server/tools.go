package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	toolLoadImage       = "mirror_load_image"
	toolReset           = "mirror_reset"
	toolAddSegment      = "mirror_add_segment"
	toolUndoSegment     = "mirror_undo_segment"
	toolStartGroup      = "mirror_start_group"
	toolState           = "mirror_state"
	toolFitCircle       = "mirror_fit_circle"
	toolAnalyze         = "mirror_analyze"
	toolRenderOverlay   = "mirror_render_overlay"
	toolPlotCandidates  = "mirror_plot_candidates"
	toolSampleIntensity = "mirror_sample_intensity"
)

var modeProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"planar", "spherical"},
	"description": "Surface hypothesis: planar (lines meet at one point per object) or spherical (lines pass through the sphere center)",
}

func coordinate(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func noArguments() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        toolLoadImage,
			Description: "Load a photograph of a mirror and start a fresh annotation session on it. Returns the image dimensions and the active hypothesis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG or GIF)",
					},
					"mode": modeProperty,
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Re-read the file from disk even if it is cached. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        toolReset,
			Description: "Discard all line collections and any fitted circle. Optionally switch the hypothesis. The loaded image is kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": modeProperty,
				},
			},
		},

		// Annotation
		{
			Name:        toolAddSegment,
			Description: "Add a line segment, in image pixels, to the open line collection. The infinite line through it is what the analysis uses.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1": coordinate("Start X (pixels from left)"),
					"y1": coordinate("Start Y (pixels from top)"),
					"x2": coordinate("End X (pixels from left)"),
					"y2": coordinate("End Y (pixels from top)"),
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        toolUndoSegment,
			Description: "Remove the most recently added segment of the open line collection.",
			InputSchema: noArguments(),
		},
		{
			Name:        toolStartGroup,
			Description: "Start a new line collection for the next reflective object. Later segments go to it.",
			InputSchema: noArguments(),
		},
		{
			Name:        toolState,
			Description: "Return the session: image, hypothesis, every line collection with its color, segments and intersections, and the fitted circle if any.",
			InputSchema: noArguments(),
		},
		{
			Name:        toolFitCircle,
			Description: "Spherical mode only. Fit a circle to points on the mirror's visible rim, snap each point to the strongest intensity edge along its radius, and fit again.",
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
						"description": "Rim points in image pixels; at least the configured minimum (default 9)",
					},
				},
				"required": []string{"points"},
			},
		},

		// Analysis
		{
			Name:        toolAnalyze,
			Description: "Run the active hypothesis. Planar: rank every possible object count by intersection clustering. Spherical: distance from the fitted center to every annotated line.",
			InputSchema: noArguments(),
		},
		{
			Name:        toolRenderOverlay,
			Description: "Render the image with all annotations drawn on it as a base64 PNG, optionally cropped and zoomed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Magnification, up to 8. Default 1.0",
						"default":     1.0,
					},
					"clip": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required":    []string{"x1", "y1", "x2", "y2"},
						"description": "Optional region to render; (x2, y2) is exclusive",
					},
				},
			},
		},
		{
			Name:        toolPlotCandidates,
			Description: "Run the analysis and chart it as a base64 PNG: candidate scores per cluster count (planar) or center distance per segment (spherical).",
			InputSchema: noArguments(),
		},
		{
			Name:        toolSampleIntensity,
			Description: "Return the intensity the edge refiner sees at a pixel, after grayscale conversion and optional blur.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": coordinate("X (pixels from left)"),
					"y": coordinate("Y (pixels from top)"),
				},
				"required": []string{"x", "y"},
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
