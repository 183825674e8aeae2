package circlefit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// Offsets sampled along the radial line, start inclusive and end exclusive.
const (
	profileStart = -5
	profileEnd   = 5
)

// Sampler returns a comparable intensity for the image pixel nearest to p.
// Bounds checking and color-to-scalar conversion are the sampler's job.
type Sampler interface {
	Sample(p geometry.Point) float64
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func(p geometry.Point) float64

// Sample calls f(p).
func (f SamplerFunc) Sample(p geometry.Point) float64 {
	return f(p)
}

// Refine moves each point onto the strongest intensity step along the line
// from the point to c.Center. Points on a flat profile, or sitting exactly on
// the center, are returned unchanged. The input slice is not modified.
func Refine(points []geometry.Point, c geometry.Circle, s Sampler) []geometry.Point {
	refined := make([]geometry.Point, len(points))
	for i, p := range points {
		refined[i] = refinePoint(p, c.Center, s)
	}
	return refined
}

func refinePoint(p, center geometry.Point, s Sampler) geometry.Point {
	step, ok := radialStep(p, center)
	if !ok {
		return p
	}

	var candidates [profileEnd - profileStart]geometry.Point
	var samples [profileEnd - profileStart]float64
	for i := range candidates {
		candidates[i] = p.Add(step.Scale(float64(profileStart + i)))
		samples[i] = s.Sample(candidates[i])
	}

	best := -1
	bestDiff := 0.0
	for i := 0; i+1 < len(samples); i++ {
		if diff := math.Abs(samples[i+1] - samples[i]); diff > bestDiff {
			bestDiff = diff
			best = i
		}
	}
	if best < 0 {
		return p
	}
	return candidates[best].Midpoint(candidates[best+1])
}

// radialStep returns the step from p toward center scaled so the dominant
// axis moves by exactly one pixel. Scaling by the larger component avoids the
// blow-up a slope-based step has on vertical or horizontal radii.
func radialStep(p, center geometry.Point) (geometry.Point, bool) {
	d := center.Sub(p)
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	if ax == 0 && ay == 0 {
		return geometry.Point{}, false
	}
	if ax >= ay {
		return geometry.Point{X: math.Copysign(1, d.X), Y: d.Y / ax}, true
	}
	return geometry.Point{X: d.X / ay, Y: math.Copysign(1, d.Y)}, true
}

// Result is the outcome of a fit, refine, fit pass.
type Result struct {
	// Initial is the fit over the points as supplied.
	Initial geometry.Circle `json:"initial"`
	// Circle is the fit over the refined points.
	Circle geometry.Circle `json:"circle"`

	Points        []geometry.Point `json:"points"`
	RefinedPoints []geometry.Point `json:"refined_points"`

	// CenterShift is the distance between the two centers. Larger shifts
	// mean the supplied points were further from the visible rim.
	CenterShift  float64 `json:"center_shift"`
	RadiusChange float64 `json:"radius_change"`

	// RMSResidual is the root mean square radial residual of the refined
	// points against Circle.
	RMSResidual float64 `json:"rms_residual"`
}

// FitRefined runs Fit, Refine and Fit again over points.
func FitRefined(points []geometry.Point, minPoints int, s Sampler) (*Result, error) {
	initial, err := Fit(points, minPoints)
	if err != nil {
		return nil, fmt.Errorf("initial fit: %w", err)
	}

	refined := Refine(points, initial, s)

	final, err := Fit(refined, minPoints)
	if err != nil {
		return nil, fmt.Errorf("refit after edge refinement: %w", err)
	}

	input := make([]geometry.Point, len(points))
	copy(input, points)

	return &Result{
		Initial:       initial,
		Circle:        final,
		Points:        input,
		RefinedPoints: refined,
		CenterShift:   initial.Center.Distance(final.Center),
		RadiusChange:  final.Radius - initial.Radius,
		RMSResidual:   rmsResidual(refined, final),
	}, nil
}

func rmsResidual(points []geometry.Point, c geometry.Circle) float64 {
	if len(points) == 0 {
		return 0
	}
	sq := make([]float64, len(points))
	for i, p := range points {
		r := c.RadialResidual(p)
		sq[i] = r * r
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
