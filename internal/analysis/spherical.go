package analysis

import (
	"fmt"
	"image/color"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/circlefit"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
	"github.com/ironsheep/mirror-tools-mcp/internal/logger"
)

var (
	circleColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rawColor     = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	refinedColor = color.RGBA{R: 64, G: 255, B: 64, A: 255}
)

// Spherical tests the hypothesis that the mirror is a sphere. The operator
// marks points on the mirror's visible rim; the fitted circle's center is
// where every line reflected by the sphere should pass.
type Spherical struct {
	model

	minPoints int
	fit       *circlefit.Result
}

// NewSpherical returns a Spherical analysis with no circle fitted.
func NewSpherical(opts Options) *Spherical {
	n := opts.MinCirclePoints
	if n < circlefit.MinPoints {
		n = circlefit.MinPoints
	}
	if opts.Logger == nil {
		opts.Logger = logger.Logger
	}
	return &Spherical{model: newModel(opts.Logger), minPoints: n}
}

func (s *Spherical) Kind() Kind { return KindSpherical }

// MinCirclePoints is the fewest rim points AddCircle accepts.
func (s *Spherical) MinCirclePoints() int { return s.minPoints }

// AddCircle fits a circle to points, snaps each point to the strongest
// intensity edge along its radius using sampler, and fits again. On success
// the new circle replaces any previous one; on error the previous state is
// kept.
func (s *Spherical) AddCircle(points []geometry.Point, sampler circlefit.Sampler) (*circlefit.Result, error) {
	if sampler == nil {
		return nil, apperrors.NewValidationError("circle refinement needs an image sampler", nil)
	}
	if len(points) < s.minPoints {
		return nil, apperrors.NewInsufficientInputError(
			fmt.Sprintf("need at least %d rim points, got %d", s.minPoints, len(points)), nil)
	}

	result, err := circlefit.FitRefined(points, s.minPoints, sampler)
	if err != nil {
		return nil, fmt.Errorf("add circle: %w", err)
	}
	s.fit = result

	s.log.WithFields(logrus.Fields{
		"points":        len(points),
		"initial":       result.Initial.String(),
		"refined":       result.Circle.String(),
		"center_shift":  result.CenterShift,
		"radius_change": result.RadiusChange,
		"rms_residual":  result.RMSResidual,
	}).Info("circle refined")

	return result, nil
}

// Circle returns the fitted circle, or the zero Circle before AddCircle
// succeeds.
func (s *Spherical) Circle() geometry.Circle {
	if s.fit == nil {
		return geometry.Circle{}
	}
	return s.fit.Circle
}

// Fit returns the last fit result, or nil.
func (s *Spherical) Fit() *circlefit.Result {
	return s.fit
}

// Points returns the rim points as supplied to AddCircle.
func (s *Spherical) Points() []geometry.Point {
	if s.fit == nil {
		return nil
	}
	return append([]geometry.Point(nil), s.fit.Points...)
}

// RefinedPoints returns the rim points after edge refinement.
func (s *Spherical) RefinedPoints() []geometry.Point {
	if s.fit == nil {
		return nil
	}
	return append([]geometry.Point(nil), s.fit.RefinedPoints...)
}

// Analyze reports, for every segment of every collection, the perpendicular
// distance from the fitted center to the line through the segment.
func (s *Spherical) Analyze() (*Report, error) {
	if s.fit == nil {
		return nil, apperrors.NewNotFittedError("no circle fitted: add rim points first", nil)
	}

	center := s.fit.Circle.Center
	var distances []SegmentDistance
	for ci, lc := range s.collections {
		for si, seg := range lc.Segments() {
			distances = append(distances, SegmentDistance{
				Collection: ci,
				Segment:    si,
				Line:       seg,
				Distance:   geometry.PerpendicularDistance(center, seg),
			})
		}
	}

	s.log.WithFields(logrus.Fields{
		"segments": len(distances),
		"center":   center.String(),
	}).Info("spherical analysis complete")

	circle := s.fit.Circle
	return &Report{
		Kind:        KindSpherical,
		Collections: len(s.collections),
		Circle:      &circle,
		Distances:   distances,
	}, nil
}

// Reset clears the collections and the fitted circle.
func (s *Spherical) Reset() {
	s.model.Reset()
	s.fit = nil
}

func (s *Spherical) Draw(c Canvas) {
	s.drawLines(c)
	if s.fit == nil {
		return
	}
	for _, p := range s.fit.Points {
		c.DrawPoint(p, 2, rawColor)
	}
	for _, p := range s.fit.RefinedPoints {
		c.DrawPoint(p, 2, refinedColor)
	}
	c.DrawCircle(s.fit.Circle, circleColor)
	c.DrawPoint(s.fit.Circle.Center, 3, circleColor)
}
