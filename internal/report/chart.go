// Package report renders analysis reports as PNG charts.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/mirror-tools-mcp/internal/analysis"
	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
)

var (
	candidateColor = color.RGBA{R: 110, G: 130, B: 160, A: 255}
	bestColor      = color.RGBA{R: 230, G: 140, B: 30, A: 255}
)

// ChartOptions sizes a chart, in inches.
type ChartOptions struct {
	Width  float64
	Height float64
}

// DefaultChartOptions returns a 6x4 inch chart.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 6, Height: 4}
}

func (o ChartOptions) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return apperrors.NewValidationError(fmt.Sprintf("invalid chart size %gx%g in", o.Width, o.Height), nil)
	}
	return nil
}

// Chart renders r: candidate scores for planar reports, center distances
// for spherical ones.
func Chart(r *analysis.Report, opts ChartOptions) ([]byte, error) {
	if r == nil {
		return nil, apperrors.NewNotFoundError("no analysis report to chart", nil)
	}
	switch r.Kind {
	case analysis.KindPlanar:
		return CandidateChart(r.Candidates, opts)
	case analysis.KindSpherical:
		return DistanceChart(r.Distances, opts)
	}
	return nil, apperrors.NewValidationError(fmt.Sprintf("cannot chart %q report", r.Kind), nil)
}

// CandidateChart draws one bar per cluster count, in ascending count order,
// with the top-ranked candidate highlighted.
func CandidateChart(candidates []analysis.Candidate, opts ChartOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewNoIntersectionDataError("no candidates to chart", nil)
	}

	// The first candidate is the best ranked; the bars are ordered by count.
	best := candidates[0].NumClusters
	byCount := append([]analysis.Candidate(nil), candidates...)
	sort.Slice(byCount, func(i, j int) bool { return byCount[i].NumClusters < byCount[j].NumClusters })

	p := plot.New()
	p.Title.Text = "Cluster candidates"
	p.X.Label.Text = "Number of clusters"
	p.Y.Label.Text = "Total distance sum (px)"

	names := make([]string, len(byCount))
	for i, c := range byCount {
		names[i] = fmt.Sprintf("%d", c.NumClusters)

		bar, err := plotter.NewBarChart(plotter.Values{c.Score}, vg.Points(24))
		if err != nil {
			return nil, fmt.Errorf("failed to build candidate bar: %w", err)
		}
		bar.XMin = float64(i)
		bar.LineStyle.Width = vg.Length(0)
		bar.Color = candidateColor
		if c.NumClusters == best {
			bar.Color = bestColor
			p.Legend.Add("best ranked", bar)
		}
		p.Add(bar)
	}
	p.NominalX(names...)
	p.Legend.Top = true

	return encode(p, opts)
}

// DistanceChart draws one bar per annotated segment, grouped and colored by
// line collection.
func DistanceChart(distances []analysis.SegmentDistance, opts ChartOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(distances) == 0 {
		return nil, apperrors.NewInsufficientInputError("no segments to chart", nil)
	}

	p := plot.New()
	p.Title.Text = "Distance from sphere center"
	p.X.Label.Text = "Segment (collection.segment)"
	p.Y.Label.Text = "Distance (px)"

	names := make([]string, len(distances))
	start := 0
	for start < len(distances) {
		coll := distances[start].Collection
		end := start
		var values plotter.Values
		for end < len(distances) && distances[end].Collection == coll {
			values = append(values, distances[end].Distance)
			names[end] = fmt.Sprintf("%d.%d", coll, distances[end].Segment)
			end++
		}

		bar, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return nil, fmt.Errorf("failed to build distance bars: %w", err)
		}
		bar.XMin = float64(start)
		bar.LineStyle.Width = vg.Length(0)
		bar.Color = analysis.GroupColor(coll)
		p.Add(bar)
		p.Legend.Add(fmt.Sprintf("#%d", coll), bar)

		start = end
	}
	p.NominalX(names...)
	p.Legend.Top = true

	return encode(p, opts)
}

func encode(p *plot.Plot, opts ChartOptions) ([]byte, error) {
	w, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create chart writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
