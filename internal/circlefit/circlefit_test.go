package circlefit

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// discSampler returns a sampler for a bright disc on a dark background. It
// looks up the nearest pixel, like an image-backed sampler does.
func discSampler(center geometry.Point, radius, inside, outside float64) SamplerFunc {
	return func(p geometry.Point) float64 {
		px := geometry.Pt(math.Round(p.X), math.Round(p.Y))
		if px.Distance(center) <= radius {
			return inside
		}
		return outside
	}
}

func TestFit_ThreePointsExact(t *testing.T) {
	points := []geometry.Point{
		geometry.Pt(15, 5),
		geometry.Pt(5, 15),
		geometry.Pt(-5, 5),
	}

	c, err := Fit(points, 3)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if math.Abs(c.Center.X-5) > 1e-6 || math.Abs(c.Center.Y-5) > 1e-6 {
		t.Errorf("Center: got %v, want (5, 5)", c.Center)
	}
	if math.Abs(c.Radius-10) > 1e-6 {
		t.Errorf("Radius: got %v, want 10", c.Radius)
	}
}

func TestFit_Overdetermined(t *testing.T) {
	want := geometry.Circle{Center: geometry.Pt(812.5, 604.25), Radius: 143.75}
	points := geometry.CirclePoints(want, 24)

	c, err := Fit(points, 9)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if c.Center.Distance(want.Center) > 1e-6 {
		t.Errorf("Center: got %v, want %v", c.Center, want.Center)
	}
	if math.Abs(c.Radius-want.Radius) > 1e-6 {
		t.Errorf("Radius: got %v, want %v", c.Radius, want.Radius)
	}
}

func TestFit_NoisyPoints(t *testing.T) {
	want := geometry.Circle{Center: geometry.Pt(100, 80), Radius: 40}
	points := geometry.CirclePoints(want, 16)
	for i := range points {
		// Alternate half a pixel in and out along the radius.
		offset := 0.5
		if i%2 == 1 {
			offset = -0.5
		}
		dir := points[i].Sub(want.Center).Scale(1 / want.Radius)
		points[i] = points[i].Add(dir.Scale(offset))
	}

	c, err := Fit(points, 3)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if c.Center.Distance(want.Center) > 0.1 {
		t.Errorf("Center: got %v, want %v", c.Center, want.Center)
	}
	if math.Abs(c.Radius-want.Radius) > 0.1 {
		t.Errorf("Radius: got %v, want %v", c.Radius, want.Radius)
	}
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name      string
		points    []geometry.Point
		minPoints int
		wantType  apperrors.ErrorType
	}{
		{
			"collinear",
			[]geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 1), geometry.Pt(2, 2)},
			3,
			apperrors.ErrorTypeInsufficientInput,
		},
		{
			"collinear many",
			[]geometry.Point{geometry.Pt(0, 5), geometry.Pt(10, 5), geometry.Pt(20, 5), geometry.Pt(-7, 5)},
			3,
			apperrors.ErrorTypeInsufficientInput,
		},
		{
			"too few",
			[]geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 0)},
			3,
			apperrors.ErrorTypeInsufficientInput,
		},
		{
			"below requested minimum",
			[]geometry.Point{geometry.Pt(15, 5), geometry.Pt(5, 15), geometry.Pt(-5, 5)},
			9,
			apperrors.ErrorTypeInsufficientInput,
		},
		{
			"coincident",
			[]geometry.Point{geometry.Pt(3, 3), geometry.Pt(3, 3), geometry.Pt(3, 3)},
			3,
			apperrors.ErrorTypeInsufficientInput,
		},
		{
			"not finite",
			[]geometry.Point{geometry.Pt(0, 0), geometry.Pt(math.NaN(), 1), geometry.Pt(2, 0)},
			3,
			apperrors.ErrorTypeInsufficientInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.points, tt.minPoints)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsType(err, tt.wantType) {
				t.Errorf("error type: got %s (%v), want %s", apperrors.TypeOf(err), err, tt.wantType)
			}
		})
	}
}

func TestFit_MinPointsFloor(t *testing.T) {
	points := []geometry.Point{geometry.Pt(15, 5), geometry.Pt(5, 15), geometry.Pt(-5, 5)}
	if _, err := Fit(points, 0); err != nil {
		t.Fatalf("minPoints below 3 should be raised to 3: %v", err)
	}
}

func TestRefine_FlatImageIsNoOp(t *testing.T) {
	points := geometry.CirclePoints(geometry.Circle{Center: geometry.Pt(50, 50), Radius: 20}, 9)
	flat := SamplerFunc(func(geometry.Point) float64 { return 128 })

	refined := Refine(points, geometry.Circle{Center: geometry.Pt(50, 50), Radius: 20}, flat)

	if diff := cmp.Diff(points, refined); diff != "" {
		t.Errorf("Refine on flat image changed points (-want +got):\n%s", diff)
	}
}

func TestRefine_SnapsToEdge(t *testing.T) {
	center := geometry.Pt(50, 50)
	s := discSampler(center, 20, 255, 0)
	c := geometry.Circle{Center: center, Radius: 20}

	tests := []struct {
		name  string
		point geometry.Point
		want  geometry.Point
	}{
		// Pixels x <= 70 are inside; the step is between 70 and 71.
		{"outside on +x axis", geometry.Pt(73, 50), geometry.Pt(70.5, 50)},
		{"inside on +x axis", geometry.Pt(67, 50), geometry.Pt(70.5, 50)},
		{"outside on -y axis", geometry.Pt(50, 27), geometry.Pt(50, 29.5)},
		{"inside on -x axis", geometry.Pt(33, 50), geometry.Pt(29.5, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Refine([]geometry.Point{tt.point}, c, s)[0]
			if !cmp.Equal(got, tt.want, cmpopts.EquateApprox(0, 1e-9)) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefine_PointAtCenterUnchanged(t *testing.T) {
	center := geometry.Pt(10, 10)
	s := discSampler(center, 5, 255, 0)
	got := Refine([]geometry.Point{center}, geometry.Circle{Center: center, Radius: 5}, s)
	if got[0] != center {
		t.Errorf("got %v, want %v", got[0], center)
	}
}

func TestRefine_DoesNotModifyInput(t *testing.T) {
	center := geometry.Pt(50, 50)
	points := []geometry.Point{geometry.Pt(73, 50)}
	Refine(points, geometry.Circle{Center: center, Radius: 20}, discSampler(center, 20, 255, 0))
	if points[0] != geometry.Pt(73, 50) {
		t.Errorf("input modified: %v", points[0])
	}
}

func TestRadialStep(t *testing.T) {
	tests := []struct {
		name   string
		p      geometry.Point
		center geometry.Point
		want   geometry.Point
	}{
		{"horizontal", geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(1, 0)},
		{"vertical", geometry.Pt(0, 0), geometry.Pt(0, -10), geometry.Pt(0, -1)},
		{"shallow", geometry.Pt(0, 0), geometry.Pt(-10, 5), geometry.Pt(-1, 0.5)},
		{"steep", geometry.Pt(0, 0), geometry.Pt(2, 8), geometry.Pt(0.25, 1)},
		{"diagonal", geometry.Pt(5, 5), geometry.Pt(0, 0), geometry.Pt(-1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := radialStep(tt.p, tt.center)
			if !ok {
				t.Fatal("radialStep reported no direction")
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := radialStep(geometry.Pt(1, 1), geometry.Pt(1, 1)); ok {
		t.Error("radialStep should fail when the point is the center")
	}
}

func TestFitRefined_RecoversDisc(t *testing.T) {
	truth := geometry.Circle{Center: geometry.Pt(60, 55), Radius: 25}
	s := discSampler(truth.Center, truth.Radius, 220, 20)

	// Clicks scattered up to three pixels either side of the rim.
	points := geometry.CirclePoints(truth, 12)
	offsets := []float64{3, -2, 2.5, -3, 1, -1.5, 3, -2.5, 2, -1, 1.5, -3}
	for i := range points {
		dir := points[i].Sub(truth.Center).Scale(1 / truth.Radius)
		points[i] = points[i].Add(dir.Scale(offsets[i]))
	}

	result, err := FitRefined(points, 9, s)
	if err != nil {
		t.Fatalf("FitRefined failed: %v", err)
	}

	if d := result.Circle.Center.Distance(truth.Center); d > 1.0 {
		t.Errorf("refined center %v is %.2f px from %v", result.Circle.Center, d, truth.Center)
	}
	if math.Abs(result.Circle.Radius-truth.Radius) > 1.5 {
		t.Errorf("refined radius: got %.2f, want ~%.2f", result.Circle.Radius, truth.Radius)
	}
	if len(result.RefinedPoints) != len(points) {
		t.Errorf("RefinedPoints: got %d, want %d", len(result.RefinedPoints), len(points))
	}
	if math.Abs(result.CenterShift-result.Initial.Center.Distance(result.Circle.Center)) > 1e-12 {
		t.Error("CenterShift does not match the two centers")
	}
	t.Logf("initial %v, refined %v, shift %.3f, rms %.3f",
		result.Initial, result.Circle, result.CenterShift, result.RMSResidual)
}

func TestFitRefined_PropagatesFitError(t *testing.T) {
	points := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 1), geometry.Pt(2, 2)}
	_, err := FitRefined(points, 3, SamplerFunc(func(geometry.Point) float64 { return 0 }))
	if !apperrors.IsType(err, apperrors.ErrorTypeInsufficientInput) {
		t.Errorf("got %v, want insufficient input", err)
	}
}
