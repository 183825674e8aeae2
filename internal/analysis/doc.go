// Package analysis is the reflection geometry engine. It decides whether an
// operator's annotations of a mirror are consistent with a planar or a
// spherical surface and estimates how many reflective objects they describe.
//
// # Model
//
// An Analysis owns an ordered list of LineCollections, one per object being
// annotated. New segments go to the open collection, which is always the last
// one started. Each LineCollection caches the pairwise intersections of its
// segments and recomputes them on every AddSegment and UndoLast.
//
// # Hypotheses
//
// Two variants implement Analysis:
//
//   - Planar groups the per-collection intersection sets with a greedy
//     agglomeration (EstimateClusters) and ranks every candidate object count.
//   - Spherical fits a circle to boundary samples of the mirror (see package
//     circlefit) and measures how far each annotated line passes from the
//     circle's center. Lines reflected by a sphere pass through its center.
//
// # Usage
//
//	a, _ := analysis.New(analysis.KindPlanar, analysis.DefaultOptions())
//	a.AddLine(geometry.Pt(10, 10), geometry.Pt(200, 180))
//	a.AddLine(geometry.Pt(10, 180), geometry.Pt(200, 10))
//	a.StartNewGroup()
//	...
//	report, err := a.Analyze()
//	fmt.Println(report.Text())
//
// # Concurrency
//
// Analysis values are not safe for concurrent use. Every operation is a
// bounded computation over tens of points; callers serialize their calls.
package analysis
