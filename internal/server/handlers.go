package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/mirror-tools-mcp/internal/analysis"
	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/circlefit"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
	"github.com/ironsheep/mirror-tools-mcp/internal/imaging"
	"github.com/ironsheep/mirror-tools-mcp/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mirror_add_segment").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// toolErrorData is the data member of a failed tool call.
type toolErrorData struct {
	Type   apperrors.ErrorType `json:"type"`
	Detail string              `json:"detail"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data carries the error type and detail.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	entry := s.log.WithFields(logrus.Fields{
		"tool":     params.Name,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", toolErrorData{
			Type:   apperrors.TypeOf(err),
			Detail: err.Error(),
		})
	}
	entry.Debug("tool completed")

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", toolErrorData{
			Type:   apperrors.ErrorTypeInternal,
			Detail: fmt.Sprintf("failed to encode result: %v", err),
		})
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case toolLoadImage:
		return s.handleLoadImage(args)
	case toolReset:
		return s.handleReset(args)

	// Annotation
	case toolAddSegment:
		return s.handleAddSegment(args)
	case toolUndoSegment:
		return s.handleUndoSegment()
	case toolStartGroup:
		return s.handleStartGroup()
	case toolState:
		return s.handleState(), nil
	case toolFitCircle:
		return s.handleFitCircle(args)

	// Analysis
	case toolAnalyze:
		return s.handleAnalyze()
	case toolRenderOverlay:
		return s.handleRenderOverlay(args)
	case toolPlotCandidates:
		return s.handlePlotCandidates()
	case toolSampleIntensity:
		return s.handleSampleIntensity(args)

	default:
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("unknown tool: %s", name), nil)
	}
}

// decodeArgs unmarshals tool arguments. Absent arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return apperrors.NewValidationError("invalid tool arguments", err)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// === Session Handlers ===

type loadImageArgs struct {
	Path   string `json:"path"`
	Mode   string `json:"mode"`
	Reload bool   `json:"reload"`
}

type loadImageResult struct {
	Image     imaging.ImageInfo     `json:"image"`
	Mode      analysis.Kind         `json:"mode"`
	Intensity imaging.IntensityMode `json:"intensity"`
	BlurSigma float64               `json:"blur_sigma"`
	MinPoints int                   `json:"min_circle_points"`
}

func (s *Server) handleLoadImage(args json.RawMessage) (interface{}, error) {
	var a loadImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, apperrors.NewValidationError("path is required", nil)
	}
	kind := analysis.KindPlanar
	if a.Mode != "" {
		k, err := analysis.ParseKind(a.Mode)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	mode, err := imaging.ParseIntensityMode(s.cfg.Intensity)
	if err != nil {
		return nil, err
	}

	if a.Reload {
		s.cache.Evict(a.Path)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	sampler, err := imaging.NewSampler(img.Image, mode, s.cfg.BlurSigma)
	if err != nil {
		return nil, fmt.Errorf("prepare intensity sampler: %w", err)
	}
	if err := s.sess.start(kind); err != nil {
		return nil, err
	}
	s.sess.image = img
	s.sess.sampler = sampler

	info := img.Info()
	s.log.WithFields(logrus.Fields{
		"path":   info.Path,
		"width":  info.Width,
		"height": info.Height,
		"mode":   kind,
	}).Info("image loaded")

	return &loadImageResult{
		Image:     info,
		Mode:      kind,
		Intensity: sampler.Mode(),
		BlurSigma: sampler.BlurSigma(),
		MinPoints: s.cfg.MinCirclePoints,
	}, nil
}

type resetArgs struct {
	Mode string `json:"mode"`
}

func (s *Server) handleReset(args json.RawMessage) (interface{}, error) {
	var a resetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		s.sess.analysis.Reset()
		s.sess.invalidate()
		return s.handleState(), nil
	}
	kind, err := analysis.ParseKind(a.Mode)
	if err != nil {
		return nil, err
	}
	if err := s.sess.start(kind); err != nil {
		return nil, err
	}
	return s.handleState(), nil
}

// === Annotation Handlers ===

type addSegmentArgs struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type segmentResult struct {
	Collection    int               `json:"collection"`
	Segments      int               `json:"segments"`
	Intersections []geometry.Point  `json:"intersections"`
	Segment       *geometry.Segment `json:"segment,omitempty"`
	Undone        *bool             `json:"undone,omitempty"`
}

func (s *Server) openCollectionResult() *segmentResult {
	views := s.sess.analysis.Collections()
	open := views[len(views)-1]
	return &segmentResult{
		Collection:    open.Index,
		Segments:      len(open.Segments),
		Intersections: open.Intersections,
	}
}

func (s *Server) handleAddSegment(args json.RawMessage) (interface{}, error) {
	var a addSegmentArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if !finite(a.X1, a.Y1, a.X2, a.Y2) {
		return nil, apperrors.NewValidationError("segment coordinates must be finite", nil)
	}
	seg := geometry.Seg(geometry.Pt(a.X1, a.Y1), geometry.Pt(a.X2, a.Y2))
	if seg.IsDegenerate() {
		return nil, apperrors.NewInsufficientInputError(
			fmt.Sprintf("segment endpoints coincide at %s; a line needs two distinct points", seg.P1), nil)
	}

	s.sess.analysis.AddLine(seg.P1, seg.P2)
	s.sess.invalidate()

	res := s.openCollectionResult()
	res.Segment = &seg
	return res, nil
}

func (s *Server) handleUndoSegment() (interface{}, error) {
	undone := s.sess.analysis.UndoLine()
	if undone {
		s.sess.invalidate()
	}
	res := s.openCollectionResult()
	res.Undone = &undone
	return res, nil
}

func (s *Server) handleStartGroup() (interface{}, error) {
	idx := s.sess.analysis.StartNewGroup()
	s.sess.invalidate()
	return map[string]interface{}{
		"collection": idx,
		"color":      analysis.GroupColor(idx).Hex(),
	}, nil
}

type stateResult struct {
	Mode            analysis.Kind             `json:"mode"`
	Image           *imaging.ImageInfo        `json:"image,omitempty"`
	Collections     []analysis.CollectionView `json:"collections"`
	Circle          *circlefit.Result         `json:"circle,omitempty"`
	MinCirclePoints int                       `json:"min_circle_points,omitempty"`
}

func (s *Server) handleState() *stateResult {
	st := &stateResult{
		Mode:        s.sess.analysis.Kind(),
		Collections: s.sess.analysis.Collections(),
	}
	if s.sess.image != nil {
		info := s.sess.image.Info()
		st.Image = &info
	}
	if sph, ok := s.sess.analysis.(*analysis.Spherical); ok {
		st.Circle = sph.Fit()
		st.MinCirclePoints = sph.MinCirclePoints()
	}
	return st
}

type fitCircleArgs struct {
	Points []geometry.Point `json:"points"`
}

func (s *Server) handleFitCircle(args json.RawMessage) (interface{}, error) {
	var a fitCircleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sph, err := s.sess.spherical()
	if err != nil {
		return nil, err
	}
	if _, err := s.sess.requireImage(); err != nil {
		return nil, err
	}
	result, err := sph.AddCircle(a.Points, s.sess.sampler)
	if err != nil {
		return nil, err
	}
	s.sess.invalidate()
	return result, nil
}

// === Analysis Handlers ===

type analyzeResult struct {
	Report *analysis.Report `json:"report"`
	Text   string           `json:"text"`
}

func (s *Server) analyze() (*analysis.Report, error) {
	if s.sess.report != nil {
		return s.sess.report, nil
	}
	r, err := s.sess.analysis.Analyze()
	if err != nil {
		return nil, err
	}
	s.sess.report = r
	return r, nil
}

func (s *Server) handleAnalyze() (interface{}, error) {
	r, err := s.analyze()
	if err != nil {
		return nil, err
	}
	return &analyzeResult{Report: r, Text: r.Text()}, nil
}

type clipArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type renderOverlayArgs struct {
	Zoom float64   `json:"zoom"`
	Clip *clipArgs `json:"clip"`
}

func (s *Server) handleRenderOverlay(args json.RawMessage) (interface{}, error) {
	var a renderOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.sess.requireImage()
	if err != nil {
		return nil, err
	}

	opts := imaging.RenderOptions{Zoom: a.Zoom}
	if a.Clip != nil {
		if a.Clip.X1 >= a.Clip.X2 || a.Clip.Y1 >= a.Clip.Y2 {
			return nil, apperrors.NewValidationError("invalid clip region: x1 must be < x2, y1 must be < y2", nil)
		}
		r := image.Rect(a.Clip.X1, a.Clip.Y1, a.Clip.X2, a.Clip.Y2)
		opts.Clip = &r
	}

	overlay := imaging.NewOverlay(img.Image)
	s.sess.analysis.Draw(overlay)
	return overlay.Render(opts)
}

type chartResult struct {
	Mode        analysis.Kind `json:"mode"`
	ImageBase64 string        `json:"image_base64"`
	MimeType    string        `json:"mime_type"`
}

func (s *Server) handlePlotCandidates() (interface{}, error) {
	r, err := s.analyze()
	if err != nil {
		return nil, err
	}
	png, err := report.Chart(r, report.ChartOptions{Width: s.cfg.PlotWidth, Height: s.cfg.PlotHeight})
	if err != nil {
		return nil, err
	}
	return &chartResult{
		Mode:        r.Kind,
		ImageBase64: base64.StdEncoding.EncodeToString(png),
		MimeType:    "image/png",
	}, nil
}

type sampleIntensityArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleSampleIntensity(args json.RawMessage) (interface{}, error) {
	var a sampleIntensityArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.sess.requireImage(); err != nil {
		return nil, err
	}
	sample := s.sess.sampler.Describe(geometry.Pt(a.X, a.Y))
	return &sample, nil
}
