package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/mirror-tools-mcp/internal/analysis"
	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/circlefit"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
	"github.com/ironsheep/mirror-tools-mcp/internal/imaging"
)

// createTestImageFile writes a PNG whose pixels come from fill and returns its path.
func createTestImageFile(t *testing.T, width, height int, fill func(x, y int) color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill(x, y))
		}
	}

	path := filepath.Join(t.TempDir(), "mirror.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func uniform(c color.Color) func(x, y int) color.Color {
	return func(x, y int) color.Color { return c }
}

// darkDisc draws a black disc of radius r at (cx, cy) on a white background.
func darkDisc(cx, cy, r int) func(x, y int) color.Color {
	return func(x, y int) color.Color {
		dx, dy := x-cx, y-cy
		if dx*dx+dy*dy <= r*r {
			return color.Black
		}
		return color.White
	}
}

// callTool runs a tools/call request and decodes the text content into out.
// It returns the error of a failed call.
func callTool(t *testing.T, s *Server, name string, args interface{}, out interface{}) *MCPError {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: paramsJSON})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if out != nil {
		if err := json.Unmarshal([]byte(text), out); err != nil {
			t.Fatalf("decode %s result: %v\n%s", name, err, text)
		}
	}
	return nil
}

func mustCall(t *testing.T, s *Server, name string, args interface{}, out interface{}) {
	t.Helper()
	if mcpErr := callTool(t, s, name, args, out); mcpErr != nil {
		t.Fatalf("%s failed: %+v", name, mcpErr)
	}
}

// expectToolError asserts a failed call of the given error type.
func expectToolError(t *testing.T, mcpErr *MCPError, want apperrors.ErrorType) {
	t.Helper()
	if mcpErr == nil {
		t.Fatalf("expected %s error, call succeeded", want)
	}
	if mcpErr.Code != codeToolFailed {
		t.Errorf("code: got %d, want %d", mcpErr.Code, codeToolFailed)
	}
	data, ok := mcpErr.Data.(toolErrorData)
	if !ok {
		t.Fatalf("error data: got %T", mcpErr.Data)
	}
	if data.Type != want {
		t.Errorf("error type: got %s, want %s (%s)", data.Type, want, data.Detail)
	}
}

func segment(x1, y1, x2, y2 float64) map[string]float64 {
	return map[string]float64{"x1": x1, "y1": y1, "x2": x2, "y2": y2}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`[1,2]`)})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Errorf("expected invalid params, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := New(nil)
	expectToolError(t, callTool(t, s, "image_crop", nil, nil), apperrors.ErrorTypeNotFound)
}

func TestHandleLoadImage(t *testing.T) {
	path := createTestImageFile(t, 120, 80, uniform(color.RGBA{200, 10, 10, 255}))

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantErr  apperrors.ErrorType
		wantMode analysis.Kind
	}{
		{"default mode", map[string]interface{}{"path": path}, "", analysis.KindPlanar},
		{"spherical", map[string]interface{}{"path": path, "mode": "spherical"}, "", analysis.KindSpherical},
		{"reload", map[string]interface{}{"path": path, "reload": true}, "", analysis.KindPlanar},
		{"missing path", map[string]interface{}{}, apperrors.ErrorTypeValidation, ""},
		{"bad mode", map[string]interface{}{"path": path, "mode": "conical"}, apperrors.ErrorTypeValidation, ""},
		{"missing file", map[string]interface{}{"path": "/nonexistent/mirror.png"}, apperrors.ErrorTypeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			var got loadImageResult
			mcpErr := callTool(t, s, toolLoadImage, tt.args, &got)
			if tt.wantErr != "" {
				expectToolError(t, mcpErr, tt.wantErr)
				if s.sess.image != nil {
					t.Error("failed load should not set an image")
				}
				return
			}
			if mcpErr != nil {
				t.Fatalf("unexpected error: %+v", mcpErr)
			}
			if got.Image.Width != 120 || got.Image.Height != 80 {
				t.Errorf("dimensions: got %dx%d, want 120x80", got.Image.Width, got.Image.Height)
			}
			if got.Mode != tt.wantMode {
				t.Errorf("mode: got %s, want %s", got.Mode, tt.wantMode)
			}
			if got.Intensity != imaging.IntensityLuma {
				t.Errorf("intensity: got %s, want luma", got.Intensity)
			}
			if s.sess.analysis.Kind() != tt.wantMode {
				t.Errorf("session mode: got %s", s.sess.analysis.Kind())
			}
		})
	}
}

func TestHandleLoadImage_DiscardsAnnotations(t *testing.T) {
	path := createTestImageFile(t, 50, 50, uniform(color.White))
	s := New(nil)

	mustCall(t, s, toolAddSegment, segment(0, 0, 10, 10), nil)
	mustCall(t, s, toolLoadImage, map[string]interface{}{"path": path}, nil)

	var st stateResult
	mustCall(t, s, toolState, nil, &st)
	if len(st.Collections) != 1 || len(st.Collections[0].Segments) != 0 {
		t.Errorf("expected one empty collection after load, got %+v", st.Collections)
	}
	if st.Image == nil || st.Image.Path != path {
		t.Errorf("state image: got %+v", st.Image)
	}
}

func TestHandleAddSegment_Validation(t *testing.T) {
	tests := []struct {
		name string
		args interface{}
		want apperrors.ErrorType
	}{
		{"coincident endpoints", segment(5, 5, 5, 5), apperrors.ErrorTypeInsufficientInput},
		{"wrong type", map[string]interface{}{"x1": "left"}, apperrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			expectToolError(t, callTool(t, s, toolAddSegment, tt.args, nil), tt.want)
			if n := len(s.sess.analysis.Collections()[0].Segments); n != 0 {
				t.Errorf("rejected segment was stored: %d segments", n)
			}
		})
	}
}

func TestPlanarSession(t *testing.T) {
	s := New(nil)

	// Two stars of three lines, each meeting at a single point.
	stars := [][]map[string]float64{
		{segment(0, 10, 20, 10), segment(10, 0, 10, 20), segment(0, 0, 20, 20)},
		{segment(50, 40, 70, 40), segment(60, 30, 60, 50), segment(50, 30, 70, 50)},
	}

	for i, star := range stars {
		if i > 0 {
			var group map[string]interface{}
			mustCall(t, s, toolStartGroup, nil, &group)
			if group["collection"] != float64(i) {
				t.Errorf("start group: got collection %v, want %d", group["collection"], i)
			}
			if group["color"] != analysis.GroupColor(i).Hex() {
				t.Errorf("start group color: got %v", group["color"])
			}
		}
		var res segmentResult
		for _, seg := range star {
			mustCall(t, s, toolAddSegment, seg, &res)
		}
		if res.Collection != i || res.Segments != 3 || len(res.Intersections) != 3 {
			t.Errorf("collection %d: got %+v", i, res)
		}
	}

	var got analyzeResult
	mustCall(t, s, toolAnalyze, nil, &got)
	if got.Report == nil {
		t.Fatal("analyze returned no report")
	}
	if got.Report.Kind != analysis.KindPlanar || got.Report.Collections != 2 {
		t.Errorf("report: kind %s collections %d", got.Report.Kind, got.Report.Collections)
	}
	if len(got.Report.Candidates) != 6 {
		t.Fatalf("candidates: got %d, want 6", len(got.Report.Candidates))
	}
	if best := got.Report.Candidates[0]; best.Score != 0 {
		t.Errorf("best score: got %v, want 0", best.Score)
	}
	if worst := got.Report.Candidates[5]; worst.NumClusters != 1 || worst.Score <= 0 {
		t.Errorf("single cluster should rank last: %+v", worst)
	}
	if got.Text == "" {
		t.Error("analyze text is empty")
	}
	if s.sess.report == nil {
		t.Error("report should be cached")
	}

	var plot chartResult
	mustCall(t, s, toolPlotCandidates, nil, &plot)
	if plot.MimeType != "image/png" || plot.ImageBase64 == "" {
		t.Errorf("plot: got mime %q, %d bytes", plot.MimeType, len(plot.ImageBase64))
	}

	var undo segmentResult
	mustCall(t, s, toolUndoSegment, nil, &undo)
	if undo.Undone == nil || !*undo.Undone || undo.Segments != 2 || len(undo.Intersections) != 1 {
		t.Errorf("undo: got %+v", undo)
	}
	if s.sess.report != nil {
		t.Error("undo should drop the cached report")
	}
}

func TestHandleUndoSegment_Empty(t *testing.T) {
	s := New(nil)
	var res segmentResult
	mustCall(t, s, toolUndoSegment, nil, &res)
	if res.Undone == nil || *res.Undone {
		t.Errorf("undo on empty collection: got %+v", res.Undone)
	}
}

func TestHandleAnalyze_Errors(t *testing.T) {
	t.Run("no intersections", func(t *testing.T) {
		s := New(nil)
		mustCall(t, s, toolAddSegment, segment(0, 0, 10, 0), nil)
		mustCall(t, s, toolAddSegment, segment(0, 5, 10, 5), nil)
		expectToolError(t, callTool(t, s, toolAnalyze, nil, nil), apperrors.ErrorTypeNoIntersectionData)
		expectToolError(t, callTool(t, s, toolPlotCandidates, nil, nil), apperrors.ErrorTypeNoIntersectionData)
	})

	t.Run("spherical before fit", func(t *testing.T) {
		s := New(nil)
		mustCall(t, s, toolReset, map[string]string{"mode": "spherical"}, nil)
		expectToolError(t, callTool(t, s, toolAnalyze, nil, nil), apperrors.ErrorTypeNotFitted)
	})
}

func TestHandleReset(t *testing.T) {
	s := New(nil)
	mustCall(t, s, toolAddSegment, segment(0, 0, 10, 10), nil)
	mustCall(t, s, toolStartGroup, nil, nil)

	var st stateResult
	mustCall(t, s, toolReset, nil, &st)
	if st.Mode != analysis.KindPlanar || len(st.Collections) != 1 {
		t.Errorf("reset: got %+v", st)
	}

	mustCall(t, s, toolReset, map[string]string{"mode": "spherical"}, &st)
	if st.Mode != analysis.KindSpherical {
		t.Errorf("reset mode: got %s", st.Mode)
	}
	if st.MinCirclePoints != 9 {
		t.Errorf("min circle points: got %d, want 9", st.MinCirclePoints)
	}

	expectToolError(t, callTool(t, s, toolReset, map[string]string{"mode": "hyperbolic"}, nil), apperrors.ErrorTypeValidation)
	if s.sess.analysis.Kind() != analysis.KindSpherical {
		t.Error("failed reset should keep the session")
	}
}

func TestHandleFitCircle_Preconditions(t *testing.T) {
	points := map[string]interface{}{"points": geometry.CirclePoints(geometry.Circle{Center: geometry.Pt(50, 50), Radius: 30}, 9)}

	t.Run("planar mode", func(t *testing.T) {
		s := New(nil)
		expectToolError(t, callTool(t, s, toolFitCircle, points, nil), apperrors.ErrorTypeValidation)
	})

	t.Run("no image", func(t *testing.T) {
		s := New(nil)
		mustCall(t, s, toolReset, map[string]string{"mode": "spherical"}, nil)
		expectToolError(t, callTool(t, s, toolFitCircle, points, nil), apperrors.ErrorTypeNotFound)
	})

	t.Run("too few points", func(t *testing.T) {
		path := createTestImageFile(t, 100, 100, darkDisc(50, 50, 30))
		s := New(nil)
		mustCall(t, s, toolLoadImage, map[string]interface{}{"path": path, "mode": "spherical"}, nil)
		few := map[string]interface{}{"points": []geometry.Point{{X: 20, Y: 50}, {X: 80, Y: 50}, {X: 50, Y: 20}}}
		expectToolError(t, callTool(t, s, toolFitCircle, few, nil), apperrors.ErrorTypeInsufficientInput)
	})
}

func TestSphericalSession(t *testing.T) {
	path := createTestImageFile(t, 100, 100, darkDisc(50, 50, 30))
	s := New(nil)
	mustCall(t, s, toolLoadImage, map[string]interface{}{"path": path, "mode": "spherical"}, nil)

	// Rim points placed a few pixels outside the visible edge.
	rough := geometry.CirclePoints(geometry.Circle{Center: geometry.Pt(50, 50), Radius: 33}, 9)
	var fit circlefit.Result
	mustCall(t, s, toolFitCircle, map[string]interface{}{"points": rough}, &fit)

	if d := fit.Circle.Center.Distance(geometry.Pt(50, 50)); d > 1.5 {
		t.Errorf("refined center %s is %.2f px from (50, 50)", fit.Circle.Center, d)
	}
	if fit.Circle.Radius < 29 || fit.Circle.Radius > 32 {
		t.Errorf("refined radius: got %.2f, want about 30", fit.Circle.Radius)
	}
	if len(fit.RefinedPoints) != 9 {
		t.Errorf("refined points: got %d, want 9", len(fit.RefinedPoints))
	}

	mustCall(t, s, toolAddSegment, segment(0, 50, 100, 50), nil)
	mustCall(t, s, toolAddSegment, segment(0, 10, 100, 10), nil)

	var got analyzeResult
	mustCall(t, s, toolAnalyze, nil, &got)
	if got.Report.Circle == nil {
		t.Fatal("spherical report has no circle")
	}
	if len(got.Report.Distances) != 2 {
		t.Fatalf("distances: got %d, want 2", len(got.Report.Distances))
	}
	wants := []float64{0, 40}
	for i, want := range wants {
		if d := got.Report.Distances[i].Distance; math.Abs(d-want) > 1.5 {
			t.Errorf("distance %d: got %.2f, want about %.0f", i, d, want)
		}
	}

	var st stateResult
	mustCall(t, s, toolState, nil, &st)
	if st.Circle == nil {
		t.Error("state should include the fitted circle")
	}

	var plot chartResult
	mustCall(t, s, toolPlotCandidates, nil, &plot)
	if plot.Mode != analysis.KindSpherical || plot.ImageBase64 == "" {
		t.Errorf("plot: got %+v", plot.Mode)
	}
}

func TestHandleRenderOverlay(t *testing.T) {
	path := createTestImageFile(t, 100, 80, uniform(color.Gray{Y: 128}))

	t.Run("no image", func(t *testing.T) {
		s := New(nil)
		expectToolError(t, callTool(t, s, toolRenderOverlay, nil, nil), apperrors.ErrorTypeNotFound)
	})

	tests := []struct {
		name         string
		args         map[string]interface{}
		wantW, wantH int
		wantOriginX  int
		wantErr      apperrors.ErrorType
	}{
		{"full image", nil, 100, 80, 0, ""},
		{"clip and zoom", map[string]interface{}{"zoom": 2, "clip": map[string]int{"x1": 10, "y1": 20, "x2": 30, "y2": 50}}, 40, 60, 10, ""},
		{"inverted clip", map[string]interface{}{"clip": map[string]int{"x1": 30, "y1": 20, "x2": 10, "y2": 50}}, 0, 0, 0, apperrors.ErrorTypeValidation},
		{"zoom too large", map[string]interface{}{"zoom": 20}, 0, 0, 0, apperrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			mustCall(t, s, toolLoadImage, map[string]interface{}{"path": path}, nil)
			mustCall(t, s, toolAddSegment, segment(0, 0, 99, 79), nil)

			var got imaging.RenderResult
			var args interface{}
			if tt.args != nil {
				args = tt.args
			}
			mcpErr := callTool(t, s, toolRenderOverlay, args, &got)
			if tt.wantErr != "" {
				expectToolError(t, mcpErr, tt.wantErr)
				return
			}
			if mcpErr != nil {
				t.Fatalf("unexpected error: %+v", mcpErr)
			}
			if got.Width != tt.wantW || got.Height != tt.wantH || got.OriginX != tt.wantOriginX {
				t.Errorf("render: got %dx%d at x=%d, want %dx%d at x=%d",
					got.Width, got.Height, got.OriginX, tt.wantW, tt.wantH, tt.wantOriginX)
			}
			if got.MimeType != "image/png" || got.ImageBase64 == "" {
				t.Error("render should return a base64 PNG")
			}
		})
	}
}

func TestHandleSampleIntensity(t *testing.T) {
	path := createTestImageFile(t, 100, 100, darkDisc(50, 50, 30))
	s := New(nil)

	expectToolError(t, callTool(t, s, toolSampleIntensity, map[string]float64{"x": 1, "y": 1}, nil), apperrors.ErrorTypeNotFound)

	mustCall(t, s, toolLoadImage, map[string]interface{}{"path": path}, nil)

	tests := []struct {
		name        string
		x, y        float64
		want        float64
		wantClamped bool
	}{
		{"inside disc", 50, 50, 0, false},
		{"background", 2, 2, 255, false},
		{"outside image", -10, 50, 255, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got imaging.IntensitySample
			mustCall(t, s, toolSampleIntensity, map[string]float64{"x": tt.x, "y": tt.y}, &got)
			if got.Intensity != tt.want {
				t.Errorf("intensity: got %v, want %v", got.Intensity, tt.want)
			}
			if got.Clamped != tt.wantClamped {
				t.Errorf("clamped: got %v, want %v", got.Clamped, tt.wantClamped)
			}
		})
	}
}
