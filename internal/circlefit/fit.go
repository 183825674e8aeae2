package circlefit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// MinPoints is the smallest sample count that determines a circle.
const MinPoints = 3

// collinearTolerance is the largest perpendicular spread, relative to the
// sample extent, still treated as a straight line.
const collinearTolerance = 1e-9

// Fit fits a circle to points by algebraic least squares.
//
// minPoints below MinPoints is raised to MinPoints. Fit fails with an
// insufficient-input error when there are fewer than minPoints samples, when
// the samples are coincident or collinear, or when the solve is singular. A
// negative squared radius fails with an invalid-geometry error. Fit never
// substitutes a fallback circle.
func Fit(points []geometry.Point, minPoints int) (geometry.Circle, error) {
	if minPoints < MinPoints {
		minPoints = MinPoints
	}
	if len(points) < minPoints {
		return geometry.Circle{}, apperrors.NewInsufficientInputError(
			fmt.Sprintf("need at least %d points, got %d", minPoints, len(points)), nil)
	}
	for i, p := range points {
		if !p.IsFinite() {
			return geometry.Circle{}, apperrors.NewInsufficientInputError(
				fmt.Sprintf("point %d is not finite: %v", i, p), nil)
		}
	}
	if collinear(points) {
		return geometry.Circle{}, apperrors.NewInsufficientInputError("points are collinear", nil)
	}

	origin, _ := geometry.Centroid(points)

	n := len(points)
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range points {
		q := p.Sub(origin)
		a.SetRow(i, []float64{q.X, q.Y, 1})
		b.SetVec(i, -(q.X*q.X + q.Y*q.Y))
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return geometry.Circle{}, apperrors.NewInsufficientInputError("singular least-squares system", err)
		}
		return geometry.Circle{}, apperrors.NewInternalError("circle solve failed", err)
	}

	h := -x.AtVec(0) / 2
	k := -x.AtVec(1) / 2
	r2 := h*h + k*k - x.AtVec(2)
	if r2 < 0 || math.IsNaN(r2) {
		return geometry.Circle{}, apperrors.NewInvalidGeometryError(
			fmt.Sprintf("negative squared radius %.6g", r2), nil)
	}

	return geometry.Circle{
		Center: geometry.Point{X: h + origin.X, Y: k + origin.Y},
		Radius: math.Sqrt(r2),
	}, nil
}

// collinear reports whether every point lies on the line through the first
// point and the point farthest from it. Coincident points count as collinear.
func collinear(points []geometry.Point) bool {
	p0 := points[0]
	far := p0
	extent := 0.0
	for _, p := range points[1:] {
		if d := p.Distance(p0); d > extent {
			extent = d
			far = p
		}
	}
	if extent == 0 {
		return true
	}

	line := geometry.Seg(p0, far)
	limit := collinearTolerance * math.Max(1, extent)
	for _, p := range points {
		if geometry.PerpendicularDistance(p, line) > limit {
			return false
		}
	}
	return true
}
