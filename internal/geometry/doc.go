// Package geometry provides the 2-D primitives used by the reflection analysis
// engine: points, line segments, clipping rectangles and circles.
//
// # Coordinate System
//
// Coordinates are image coordinates in pixels with the origin at the top-left
// corner, X increasing rightward and Y increasing downward. Values are float64
// so that intersection points and fitted centers keep their fractional part.
// Callers convert from screen coordinates (dividing out any zoom factor) before
// handing points to this package.
//
// # Lines Are Rays
//
// An annotated Segment stands for the ray an operator traced across a mirror
// reflection, not a bounded stroke. Intersect therefore reports the crossing
// of the infinite lines through two segments even when the crossing lies
// outside both drawn segments. The Bounded flag on the result tells the two
// cases apart for callers that care (rectangle clipping does).
//
// # Value Semantics
//
// Point, Segment, Rect and Circle are small immutable value types. Every
// operation returns a new value and none of them hold references to caller
// data, so they can be copied and compared freely.
package geometry
