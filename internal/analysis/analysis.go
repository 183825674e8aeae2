package analysis

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/circlefit"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
	"github.com/ironsheep/mirror-tools-mcp/internal/logger"
)

// Kind names a surface hypothesis.
type Kind string

const (
	KindPlanar    Kind = "planar"
	KindSpherical Kind = "spherical"
)

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPlanar:
		return KindPlanar, nil
	case KindSpherical:
		return KindSpherical, nil
	}
	return "", apperrors.NewValidationError(
		fmt.Sprintf("unknown analysis mode %q: want planar or spherical", s), nil)
}

// Canvas receives the primitives an Analysis draws. Coordinates are image
// pixels. Implementations clip as they see fit.
type Canvas interface {
	// DrawSegment draws the full line through s, not just the segment.
	DrawSegment(s geometry.Segment, c color.Color)
	DrawPoint(p geometry.Point, radius float64, c color.Color)
	DrawCircle(circle geometry.Circle, c color.Color)
	DrawLabel(p geometry.Point, text string, c color.Color)
}

// Analysis is the operation set shared by both hypotheses.
type Analysis interface {
	Kind() Kind

	// Draw renders the analysis state onto c.
	Draw(c Canvas)

	// AddLine appends a segment to the open collection.
	AddLine(p1, p2 geometry.Point)

	// UndoLine removes the last segment of the open collection. It reports
	// false when that collection is empty.
	UndoLine() bool

	// StartNewGroup opens a new, empty collection and returns its index.
	StartNewGroup() int

	Analyze() (*Report, error)

	// Reset discards every collection and any fitted state, leaving one
	// empty open collection.
	Reset()

	Collections() []CollectionView
}

// CollectionView is a read-only snapshot of one LineCollection.
type CollectionView struct {
	Index         int                `json:"index"`
	Color         string             `json:"color"`
	Open          bool               `json:"open"`
	Segments      []geometry.Segment `json:"segments"`
	Intersections []geometry.Point   `json:"intersections"`
}

// Options configures New.
type Options struct {
	// MinCirclePoints is the fewest boundary points AddCircle accepts.
	// Values below circlefit.MinPoints are raised to it.
	MinCirclePoints int

	Logger logrus.FieldLogger
}

// DefaultOptions returns the options used by the MCP server.
func DefaultOptions() Options {
	return Options{
		MinCirclePoints: 9,
		Logger:          logger.Logger,
	}
}

// New returns an empty Analysis of the given kind.
func New(kind Kind, opts Options) (Analysis, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Logger
	}
	if opts.MinCirclePoints < circlefit.MinPoints {
		opts.MinCirclePoints = circlefit.MinPoints
	}

	switch kind {
	case KindPlanar:
		return NewPlanar(opts), nil
	case KindSpherical:
		return NewSpherical(opts), nil
	}
	return nil, apperrors.NewValidationError(fmt.Sprintf("unknown analysis mode %q", kind), nil)
}

// model is the collection bookkeeping shared by both variants.
type model struct {
	collections []*LineCollection
	log         logrus.FieldLogger
}

func newModel(log logrus.FieldLogger) model {
	return model{
		collections: []*LineCollection{NewLineCollection()},
		log:         log,
	}
}

func (m *model) open() *LineCollection {
	return m.collections[len(m.collections)-1]
}

func (m *model) AddLine(p1, p2 geometry.Point) {
	m.open().AddSegment(p1, p2)
}

func (m *model) UndoLine() bool {
	return m.open().UndoLast()
}

func (m *model) StartNewGroup() int {
	m.collections = append(m.collections, NewLineCollection())
	idx := len(m.collections) - 1
	m.log.WithField("collection", idx).Debug("started line collection")
	return idx
}

func (m *model) Reset() {
	m.collections = []*LineCollection{NewLineCollection()}
}

func (m *model) Collections() []CollectionView {
	views := make([]CollectionView, len(m.collections))
	for i, lc := range m.collections {
		views[i] = CollectionView{
			Index:         i,
			Color:         GroupColor(i).Hex(),
			Open:          i == len(m.collections)-1,
			Segments:      lc.Segments(),
			Intersections: lc.Intersections(),
		}
	}
	return views
}

func (m *model) intersectionSets() [][]geometry.Point {
	sets := make([][]geometry.Point, len(m.collections))
	for i, lc := range m.collections {
		sets[i] = lc.Intersections()
	}
	return sets
}

// drawLines renders every collection in its group color, labelled with its
// index next to its first segment.
func (m *model) drawLines(c Canvas) {
	for i, lc := range m.collections {
		col := toRGBA(GroupColor(i))
		segs := lc.Segments()
		if len(segs) > 0 {
			c.DrawLabel(segs[0].P1.Add(geometry.Pt(4, -4)), fmt.Sprintf("#%d", i), col)
		}
		for _, s := range segs {
			c.DrawSegment(s, col)
			c.DrawPoint(s.P1, 3, col)
			c.DrawPoint(s.P2, 3, col)
		}
		for _, p := range lc.Intersections() {
			c.DrawPoint(p, 2, col)
		}
	}
}
