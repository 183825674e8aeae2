package analysis

import "github.com/ironsheep/mirror-tools-mcp/internal/geometry"

// LineCollection holds the segments annotated for one reflective object and
// the pairwise intersections of the lines through them.
//
// The intersection cache always equals a full recomputation over the current
// segments. The zero value is an empty collection ready to use.
type LineCollection struct {
	segments      []geometry.Segment
	intersections []geometry.Point
}

// NewLineCollection returns an empty collection.
func NewLineCollection() *LineCollection {
	return &LineCollection{}
}

// AddSegment appends the segment p1→p2 and recomputes intersections.
func (lc *LineCollection) AddSegment(p1, p2 geometry.Point) {
	lc.Add(geometry.Seg(p1, p2))
}

// Add appends s and recomputes intersections.
func (lc *LineCollection) Add(s geometry.Segment) {
	lc.segments = append(lc.segments, s)
	lc.recompute()
}

// UndoLast removes the most recently added segment. It reports false, and
// changes nothing, when the collection is empty.
func (lc *LineCollection) UndoLast() bool {
	if len(lc.segments) == 0 {
		return false
	}
	lc.segments = lc.segments[:len(lc.segments)-1]
	lc.recompute()
	return true
}

// Len returns the number of segments.
func (lc *LineCollection) Len() int {
	return len(lc.segments)
}

// Segments returns a copy of the segments in insertion order.
func (lc *LineCollection) Segments() []geometry.Segment {
	if len(lc.segments) == 0 {
		return nil
	}
	out := make([]geometry.Segment, len(lc.segments))
	copy(out, lc.segments)
	return out
}

// Intersections returns a copy of the cached intersection points, ordered by
// segment pair (0,1), (0,2), ..., (1,2), ...
func (lc *LineCollection) Intersections() []geometry.Point {
	if len(lc.intersections) == 0 {
		return nil
	}
	out := make([]geometry.Point, len(lc.intersections))
	copy(out, lc.intersections)
	return out
}

// recompute rebuilds the intersection cache over every segment pair. Parallel
// pairs contribute nothing; everything else contributes the crossing of the
// infinite lines, wherever it falls.
func (lc *LineCollection) recompute() {
	var out []geometry.Point
	for i := 0; i < len(lc.segments); i++ {
		for j := i + 1; j < len(lc.segments); j++ {
			if ix, ok := geometry.Intersect(lc.segments[i], lc.segments[j]); ok {
				out = append(out, ix.Point)
			}
		}
	}
	lc.intersections = out
}
