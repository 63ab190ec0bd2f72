package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func placementProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Optional marker placement override: 0 when the inner circle sits on the default side, 1 when mirrored. Defaults to the configured placement",
		"enum":        []int{0, 1},
	}
}

func markerSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":      pathProperty(),
			"placement": placementProperty(),
		},
		"required": []string{"path"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent marker operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run Canny edge detection and return the edge map as base64-encoded PNG together with the edge pixel count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Lower hysteresis threshold (0-255). Defaults to the configured value",
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "Upper hysteresis threshold (0-255). Defaults to the configured value",
					},
				},
				"required": []string{"path"},
			},
		},

		// Marker Detection
		{
			Name:        "marker_detect_contours",
			Description: "Trace closed edge contours in an image. Returns each contour's length, bounding box and starting point.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_length": map[string]interface{}{
						"type":        "integer",
						"description": "Only report contours with at least this many points. Default 0",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "marker_detect_ellipses",
			Description: "Fit ellipses to the image contours and return those passing the error, axis ratio and axis length filters, with a per-stage rejection report.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_length": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum contour length to attempt a fit (at least 6)",
					},
					"error_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Maximum algebraic fit residual",
					},
					"axis_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Maximum major/minor axis ratio",
					},
					"axis_length": map[string]interface{}{
						"type":        "number",
						"description": "Minimum semi-major axis length in pixels",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "marker_detect_markers",
			Description: "Detect circular markers: pairs of nested ellipses where the inner centre lies inside the outer ellipse.",
			InputSchema: markerSchema(),
		},
		{
			Name:        "marker_estimate_pose",
			Description: "Estimate the camera pose of every detected marker. Returns rotation, translation and the column-major model-view matrix per marker, plus the camera intrinsics and projection matrix. Unless u0/v0 are configured, the principal point is the centre of the image.",
			InputSchema: markerSchema(),
		},
		{
			Name:        "marker_detect_squares",
			Description: "Find convex quadrilaterals with near-right corners among the image contours.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Minimum area in square pixels. Default 1000",
					},
					"max_cosine": map[string]interface{}{
						"type":        "number",
						"description": "Largest allowed |cos| of any corner angle. Default 0.3",
					},
				},
				"required": []string{"path"},
			},
		},

		// Rendering
		{
			Name:        "marker_overlay",
			Description: "Draw detected ellipse centres, numbered markers and each marker's projected outline and axes onto the image. Returns base64-encoded PNG.",
			InputSchema: markerSchema(),
		},
		{
			Name:        "marker_crop",
			Description: "Crop the region around one detected marker's outer ellipse and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Marker index as reported by marker_detect_markers",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around the ellipse. Default 10",
						"default":     10,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor applied to the crop. Default 2.0",
						"default":     2.0,
					},
				},
				"required": []string{"path", "index"},
			},
		},

		// Session
		{
			Name:        "marker_settings",
			Description: "Return the active configuration: camera, marker geometry, detection thresholds and edge mode.",
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
