package analysis

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// SegmentDistance is the distance from a fitted sphere center to the line
// through one annotated segment.
type SegmentDistance struct {
	Collection int              `json:"collection"`
	Segment    int              `json:"segment"`
	Line       geometry.Segment `json:"line"`
	Distance   float64          `json:"distance"`
}

// Report is the outcome of Analyze. Planar reports carry Candidates;
// spherical reports carry Circle and Distances.
type Report struct {
	Kind        Kind              `json:"kind"`
	Collections int               `json:"collections"`
	Candidates  []Candidate       `json:"candidates,omitempty"`
	Circle      *geometry.Circle  `json:"circle,omitempty"`
	Distances   []SegmentDistance `json:"distances,omitempty"`
}

// Best returns the top-ranked candidate of a planar report.
func (r *Report) Best() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Text renders the report for a human reader.
func (r *Report) Text() string {
	var b strings.Builder
	switch r.Kind {
	case KindPlanar:
		r.writePlanar(&b)
	case KindSpherical:
		r.writeSpherical(&b)
	default:
		fmt.Fprintf(&b, "unknown analysis kind %q\n", r.Kind)
	}
	return b.String()
}

func (r *Report) writePlanar(b *strings.Builder) {
	fmt.Fprintf(b, "Planar analysis of %d line collection(s), lowest score first:\n", r.Collections)
	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tclusters\tscore\tpoints\tcollections")
	for i, c := range r.Candidates {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%v\t%v\n", i+1, c.NumClusters, c.Score, c.PointCounts, c.OriginalIndices)
	}
	tw.Flush()
	b.WriteString("Scores are summed centroid distances and are not normalised across cluster counts;\n")
	b.WriteString("more clusters tend to score lower, so weigh the whole ranking.\n")
}

func (r *Report) writeSpherical(b *strings.Builder) {
	if r.Circle != nil {
		fmt.Fprintf(b, "Spherical analysis against %s:\n", r.Circle)
	}
	if len(r.Distances) == 0 {
		b.WriteString("No segments annotated.\n")
		return
	}
	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "collection\tsegment\tdistance")
	for _, d := range r.Distances {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\n", d.Collection, d.Segment, d.Distance)
	}
	tw.Flush()
	b.WriteString("Lines reflected by a sphere pass through its center; small distances support the hypothesis.\n")
}
