package geometry

import "math"

// parallelEpsilon is the largest |denominator| treated as parallel lines.
const parallelEpsilon = 1e-12

// Segment is an ordered pair of points. It doubles as the description of the
// infinite line through P1 and P2.
type Segment struct {
	P1 Point `json:"p1"`
	P2 Point `json:"p2"`
}

// Seg is shorthand for Segment{P1: p1, P2: p2}.
func Seg(p1, p2 Point) Segment {
	return Segment{P1: p1, P2: p2}
}

// Direction returns P2 - P1.
func (s Segment) Direction() Point {
	return s.P2.Sub(s.P1)
}

// Length returns the distance between the endpoints.
func (s Segment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// IsDegenerate reports whether both endpoints coincide.
func (s Segment) IsDegenerate() bool {
	return s.P1 == s.P2
}

// PointAt returns P1 + t*(P2-P1).
func (s Segment) PointAt(t float64) Point {
	return s.P1.Add(s.Direction().Scale(t))
}

// Intersection describes where the lines through two segments cross.
//
// T is the parameter along the first segment and U along the second, both
// in the P1 + t*(P2-P1) form, so a value in [0, 1] lies on the drawn segment.
type Intersection struct {
	Point Point   `json:"point"`
	T     float64 `json:"t"`
	U     float64 `json:"u"`
}

// Bounded reports whether the crossing lies on both bounded segments.
func (ix Intersection) Bounded() bool {
	return ix.T >= 0 && ix.T <= 1 && ix.U >= 0 && ix.U <= 1
}

// Intersect returns the crossing of the infinite lines through a and b.
//
// The second result is false only when the lines are parallel or coincident,
// or when either segment has zero length. Crossings outside the drawn extent
// are still reported: annotation lines are rays, and which pairs count as
// intersecting feeds directly into cluster estimation. Use
// Intersection.Bounded to restrict to segment-on-segment crossings.
func Intersect(a, b Segment) (Intersection, bool) {
	da := a.Direction()
	db := b.P1.Sub(b.P2)
	c := a.P1.Sub(b.P1)

	denom := da.Y*db.X - da.X*db.Y
	if math.Abs(denom) <= parallelEpsilon || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return Intersection{}, false
	}

	t := (db.Y*c.X - db.X*c.Y) / denom
	u := (da.X*c.Y - da.Y*c.X) / denom

	return Intersection{
		Point: a.PointAt(t),
		T:     t,
		U:     u,
	}, true
}

// PerpendicularDistance returns the distance from p to the infinite line
// through line, computed as |(a-p) - ((a-p)·n) n| where a is line.P1 and n is
// the line's unit direction. A zero-length line has no direction; the
// distance from p to line.P1 is returned instead.
func PerpendicularDistance(p Point, line Segment) float64 {
	a := line.P1
	length := line.Length()
	if length == 0 {
		return p.Distance(a)
	}
	n := line.Direction().Scale(1 / length)
	ap := a.Sub(p)
	return ap.Sub(n.Scale(ap.Dot(n))).Norm()
}
