package geometry

import "image"

// clipEpsilon absorbs rounding when testing whether a clipped point is inside
// the rectangle or duplicates a corner hit.
const clipEpsilon = 1e-9

// Rect is an axis-aligned rectangle with Min as the top-left corner.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectFromImage converts integer image bounds to a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		Min: Point{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		Max: Point{X: float64(r.Max.X), Y: float64(r.Max.Y)},
	}
}

// Width returns Max.X - Min.X.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside or on the border of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X-clipEpsilon && p.X <= r.Max.X+clipEpsilon &&
		p.Y >= r.Min.Y-clipEpsilon && p.Y <= r.Max.Y+clipEpsilon
}

// Edges returns the four borders in top, right, bottom, left order.
func (r Rect) Edges() [4]Segment {
	tl := r.Min
	tr := Point{X: r.Max.X, Y: r.Min.Y}
	br := r.Max
	bl := Point{X: r.Min.X, Y: r.Max.Y}
	return [4]Segment{
		{P1: tl, P2: tr},
		{P1: tr, P2: br},
		{P1: br, P2: bl},
		{P1: bl, P2: tl},
	}
}

// IntersectLineWithRect clips the infinite line through line against r.
//
// Each rectangle edge is treated as a bounded segment. Points outside r are
// dropped and a line through a corner contributes that corner once, so the
// result holds between 0 and 2 points. Fewer than 2 means the line misses the
// rectangle or only touches a corner; callers must treat that as "nothing to
// draw" rather than indexing into the result.
func IntersectLineWithRect(line Segment, r Rect) []Point {
	points := make([]Point, 0, 2)
	for _, edge := range r.Edges() {
		ix, ok := Intersect(line, edge)
		if !ok || ix.U < -clipEpsilon || ix.U > 1+clipEpsilon {
			continue
		}
		if !r.Contains(ix.Point) || containsNear(points, ix.Point) {
			continue
		}
		points = append(points, ix.Point)
	}
	return points
}

func containsNear(points []Point, p Point) bool {
	for _, q := range points {
		if q.Distance(p) <= clipEpsilon {
			return true
		}
	}
	return false
}
