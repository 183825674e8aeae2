package geometry

import (
	"fmt"
	"math"
)

// Circle is a center and a non-negative radius. A zero radius marks a circle
// that has not been fitted yet.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// IsFitted reports whether the circle holds a real fit.
func (c Circle) IsFitted() bool {
	return c.Radius > 0
}

// PointAt returns the point on the circle at the given angle in radians.
func (c Circle) PointAt(angle float64) Point {
	return Point{
		X: c.Center.X + c.Radius*math.Cos(angle),
		Y: c.Center.Y + c.Radius*math.Sin(angle),
	}
}

// RadialResidual returns the signed distance of p from the circle boundary,
// positive outside.
func (c Circle) RadialResidual(p Point) float64 {
	return p.Distance(c.Center) - c.Radius
}

func (c Circle) String() string {
	return fmt.Sprintf("center=%s radius=%.2f", c.Center, c.Radius)
}

// CirclePoints generates n evenly-spaced points around c, starting at angle 0.
func CirclePoints(c Circle, n int) []Point {
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = c.PointAt(float64(i) * 2.0 * math.Pi / float64(n))
	}
	return points
}
