package server

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
	"github.com/ironsheep/circular-marker-ar/internal/imaging"
	"github.com/ironsheep/circular-marker-ar/internal/pipeline"
	"github.com/ironsheep/circular-marker-ar/internal/pose"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "marker_estimate_pose").
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
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Marker Detection
	case "marker_detect_contours":
		return s.handleDetectContours(args)
	case "marker_detect_ellipses":
		return s.handleDetectEllipses(args)
	case "marker_detect_markers":
		return s.handleDetectMarkers(args)
	case "marker_estimate_pose":
		return s.handleEstimatePose(args)
	case "marker_detect_squares":
		return s.handleDetectSquares(args)

	// Rendering
	case "marker_overlay":
		return s.handleOverlay(args)
	case "marker_crop":
		return s.handleCrop(args)

	// Session
	case "marker_settings":
		return s.pipeline.Config(), nil

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	edge := s.pipeline.Config().Edge
	if a.ThresholdLow == 0 {
		a.ThresholdLow = edge.ThresholdLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = edge.ThresholdHigh
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}

// === Marker Detection Handlers ===

type contourSummary struct {
	Index  int         `json:"index"`
	Length int         `json:"length"`
	Bounds [4]int      `json:"bounds"`
	Start  image.Point `json:"start"`
}

type contoursResult struct {
	Count    int              `json:"count"`
	Total    int              `json:"total"`
	Contours []contourSummary `json:"contours"`
}

type detectContoursArgs struct {
	Path      string `json:"path"`
	MinLength int    `json:"min_length"`
}

func (s *Server) handleDetectContours(args json.RawMessage) (interface{}, error) {
	var a detectContoursArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	contours := s.pipeline.Contours(img)
	res := &contoursResult{Total: len(contours), Contours: []contourSummary{}}
	for i, c := range contours {
		if c.Length() < a.MinLength {
			continue
		}
		b := c.Bounds()
		res.Contours = append(res.Contours, contourSummary{
			Index:  i,
			Length: c.Length(),
			Bounds: [4]int{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y},
			Start:  c[0],
		})
	}
	res.Count = len(res.Contours)
	return res, nil
}

type detectEllipsesArgs struct {
	Path           string   `json:"path"`
	MinLength      *int     `json:"min_length"`
	ErrorThreshold *float64 `json:"error_threshold"`
	AxisRatio      *float64 `json:"axis_ratio"`
	AxisLength     *float64 `json:"axis_length"`
}

type ellipsesResult struct {
	Found    bool                   `json:"found"`
	Ellipses []detection.Ellipse    `json:"ellipses"`
	Report   detection.DetectReport `json:"report"`
}

func (s *Server) handleDetectEllipses(args json.RawMessage) (interface{}, error) {
	var a detectEllipsesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.pipeline.Config()
	if a.MinLength != nil {
		cfg.Detection.MinLength = *a.MinLength
	}
	if a.ErrorThreshold != nil {
		cfg.Detection.ErrorThreshold = *a.ErrorThreshold
	}
	if a.AxisRatio != nil {
		cfg.Detection.AxisRatio = *a.AxisRatio
	}
	if a.AxisLength != nil {
		cfg.Detection.AxisLength = *a.AxisLength
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	det := detection.NewEllipseDetector(cfg.DetectorConfig())
	ellipses, report := det.DetectWithReport(s.pipeline.Contours(img))
	if ellipses == nil {
		ellipses = []detection.Ellipse{}
	}
	return &ellipsesResult{
		Found:    len(ellipses) >= 2,
		Ellipses: ellipses,
		Report:   report,
	}, nil
}

type markerArgs struct {
	Path      string `json:"path"`
	Placement *int   `json:"placement"`
}

type markerSummary struct {
	Index       int                 `json:"index"`
	OuterCenter r2.Point            `json:"outer_center"`
	InnerCenter r2.Point            `json:"inner_center"`
	OuterAxes   [2]float64          `json:"outer_axes"`
	InnerAxes   [2]float64          `json:"inner_axes"`
	Placement   detection.Placement `json:"placement"`
}

type markersResult struct {
	Found   bool            `json:"found"`
	Message string          `json:"message,omitempty"`
	Markers []markerSummary `json:"markers"`
}

// process runs the pipeline on the image named by a, honouring a placement
// override. The camera is resized to the image unless the principal point is
// configured.
func (s *Server) process(a markerArgs) (*pipeline.Pipeline, image.Image, *pipeline.Result, error) {
	p := s.pipeline
	if a.Placement != nil {
		cfg := p.Config()
		cfg.Marker.Placement = detection.Placement(*a.Placement)
		if err := cfg.Validate(); err != nil {
			return nil, nil, nil, err
		}
		p = s.newPipeline(cfg)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	p = p.ForImage(img)
	return p, img, p.ProcessImage(img), nil
}

func summarizeMarkers(r *pipeline.Result) *markersResult {
	res := &markersResult{Found: len(r.Markers) > 0, Markers: []markerSummary{}}
	if err := r.Err(); err != nil {
		res.Message = err.Error()
	}
	for i, m := range r.Markers {
		res.Markers = append(res.Markers, markerSummary{
			Index:       i,
			OuterCenter: m.OuterImage.Center,
			InnerCenter: m.InnerImage.Center,
			OuterAxes:   [2]float64{m.OuterImage.MajorLength, m.OuterImage.MinorLength},
			InnerAxes:   [2]float64{m.InnerImage.MajorLength, m.InnerImage.MinorLength},
			Placement:   m.Placement,
		})
	}
	return res
}

func (s *Server) handleDetectMarkers(args json.RawMessage) (interface{}, error) {
	var a markerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, _, r, err := s.process(a)
	if err != nil {
		return nil, err
	}
	return summarizeMarkers(r), nil
}

type poseResult struct {
	*markersResult
	Poses      []pipeline.MarkerPose `json:"poses"`
	Intrinsics pose.Intrinsics       `json:"intrinsics"`
	Frustum    pose.Frustum          `json:"frustum"`
	Projection [16]float64           `json:"projection"`
}

func (s *Server) handleEstimatePose(args json.RawMessage) (interface{}, error) {
	var a markerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, _, r, err := s.process(a)
	if err != nil {
		return nil, err
	}

	fr := p.Config().Frustum()
	poses := r.Poses
	if poses == nil {
		poses = []pipeline.MarkerPose{}
	}
	return &poseResult{
		markersResult: summarizeMarkers(r),
		Poses:         poses,
		Intrinsics:    p.Intrinsics(),
		Frustum:       fr,
		Projection:    fr.Matrix(),
	}, nil
}

type detectSquaresArgs struct {
	Path      string   `json:"path"`
	MinArea   *float64 `json:"min_area"`
	MaxCosine *float64 `json:"max_cosine"`
}

type squaresResult struct {
	Count   int                       `json:"count"`
	Squares []detection.Quadrilateral `json:"squares"`
}

func (s *Server) handleDetectSquares(args json.RawMessage) (interface{}, error) {
	var a detectSquaresArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg := detection.DefaultSquareConfig()
	if a.MinArea != nil {
		cfg.MinArea = *a.MinArea
	}
	if a.MaxCosine != nil {
		cfg.MaxCosine = *a.MaxCosine
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	squares := detection.DetectSquares(s.pipeline.Contours(img), cfg)
	if squares == nil {
		squares = []detection.Quadrilateral{}
	}
	return &squaresResult{Count: len(squares), Squares: squares}, nil
}

// === Rendering Handlers ===

type overlayResult struct {
	*imaging.EncodedImage
	Ellipses int `json:"ellipses"`
	Markers  int `json:"markers"`
	Poses    int `json:"poses"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a markerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, img, r, err := s.process(a)
	if err != nil {
		return nil, err
	}

	enc, err := imaging.EncodeImage(p.Overlay(img, r))
	if err != nil {
		return nil, err
	}
	poses := 0
	for _, mp := range r.Poses {
		if mp.Pose != nil {
			poses++
		}
	}
	return &overlayResult{
		EncodedImage: enc,
		Ellipses:     len(r.Ellipses),
		Markers:      len(r.Markers),
		Poses:        poses,
	}, nil
}

type cropArgs struct {
	Path   string  `json:"path"`
	Index  int     `json:"index"`
	Margin *int    `json:"margin"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	margin := 10
	if a.Margin != nil {
		margin = *a.Margin
	}
	if a.Scale == 0 {
		a.Scale = 2.0
	}

	_, img, r, err := s.process(markerArgs{Path: a.Path})
	if err != nil {
		return nil, err
	}
	if len(r.Markers) == 0 {
		return nil, r.Err()
	}
	if a.Index < 0 || a.Index >= len(r.Markers) {
		return nil, fmt.Errorf("marker index %d out of range [0,%d)", a.Index, len(r.Markers))
	}
	return imaging.CropRegion(img, ellipseBounds(r.Markers[a.Index].OuterImage), margin, a.Scale)
}

// ellipseBounds returns the square around e's centre reaching its major axis.
func ellipseBounds(e detection.Ellipse) image.Rectangle {
	r := int(math.Ceil(e.MajorLength))
	cx, cy := int(math.Round(e.Center.X)), int(math.Round(e.Center.Y))
	return image.Rect(cx-r, cy-r, cx+r+1, cy+r+1)
}
