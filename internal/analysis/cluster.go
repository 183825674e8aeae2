package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
	"github.com/ironsheep/mirror-tools-mcp/internal/geometry"
)

// Candidate is one hypothesis for how many objects the annotations describe.
//
// Entry i of DistanceSums, PointCounts and OriginalIndices describes the same
// cluster. Across the clusters of a Candidate, OriginalIndices partitions the
// collection indices 0..m-1.
type Candidate struct {
	NumClusters int `json:"num_clusters"`

	// DistanceSums holds, per cluster, the summed distance from the
	// cluster's centroid to each of its intersection points. A cluster
	// without points contributes 0.
	DistanceSums []float64 `json:"distance_sums"`

	PointCounts     []int   `json:"point_counts"`
	OriginalIndices [][]int `json:"original_indices"`

	// Score is the total of DistanceSums; lower ranks better.
	Score float64 `json:"score"`
}

func (c Candidate) String() string {
	return fmt.Sprintf("Number of clusters: %d, Distance sums: %s, Original indices: %v",
		c.NumClusters, formatSums(c.DistanceSums), c.OriginalIndices)
}

func formatSums(sums []float64) string {
	s := "["
	for i, v := range sums {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%.2f", v)
	}
	return s + "]"
}

// cluster is a working group of intersection points during agglomeration.
type cluster struct {
	indices  []int
	points   []geometry.Point
	centroid geometry.Point
	defined  bool
}

func newCluster(indices []int, points []geometry.Point) cluster {
	c := cluster{indices: indices, points: points}
	c.centroid, c.defined = geometry.Centroid(points)
	return c
}

func (c cluster) distanceSum() float64 {
	if !c.defined {
		return 0
	}
	sum := 0.0
	for _, p := range c.points {
		sum += p.Distance(c.centroid)
	}
	return sum
}

// separation is the centroid distance between two clusters. A cluster with
// no points has no centroid and is infinitely far from everything, so it is
// merged only once no populated pair is left.
func separation(a, b cluster) float64 {
	if !a.defined || !b.defined {
		return math.Inf(1)
	}
	return a.centroid.Distance(b.centroid)
}

// EstimateClusters ranks every possible object count for the given
// per-collection intersection sets.
//
// Starting from one cluster per set, it records a Candidate, merges the two
// clusters with the nearest centroids, and repeats until one cluster is left,
// yielding exactly len(sets) candidates with cluster counts len(sets)..1.
// Ties between pairs go to the first pair in (i, j) enumeration order. The
// merged cluster replaces its inputs at the end of the working list.
//
// The result is sorted by ascending Score, ties keeping generation order. The
// first entry is the best-supported count, but Score is not normalised across
// counts: more clusters trivially tend to score lower. Present the whole list.
//
// Sets without intersections take part with a zero distance sum. If every set
// is empty there is nothing to rank and a no-intersection-data error is
// returned.
func EstimateClusters(sets [][]geometry.Point) ([]Candidate, error) {
	m := len(sets)
	if m == 0 {
		return nil, apperrors.NewInsufficientInputError("no line collections to cluster", nil)
	}

	populated := false
	clusters := make([]cluster, m)
	for i, set := range sets {
		points := make([]geometry.Point, len(set))
		copy(points, set)
		clusters[i] = newCluster([]int{i}, points)
		populated = populated || len(set) > 0
	}
	if !populated {
		return nil, apperrors.NewNoIntersectionDataError(
			fmt.Sprintf("none of the %d line collections has an intersection", m), nil)
	}

	candidates := make([]Candidate, 0, m)
	for k := m; k >= 1; k-- {
		if k < m {
			i, j := nearestPair(clusters)
			clusters = merge(clusters, i, j)
		}
		candidates = append(candidates, snapshot(clusters))
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score < candidates[b].Score
	})
	return candidates, nil
}

// nearestPair returns the indices i < j of the clusters with the strictly
// smallest separation, first found on ties. It needs at least two clusters.
func nearestPair(clusters []cluster) (int, int) {
	bi, bj := 0, 1
	best := separation(clusters[0], clusters[1])
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if d := separation(clusters[i], clusters[j]); d < best {
				best, bi, bj = d, i, j
			}
		}
	}
	return bi, bj
}

// merge removes clusters i and j (i < j) and appends their union.
func merge(clusters []cluster, i, j int) []cluster {
	a, b := clusters[i], clusters[j]

	indices := make([]int, 0, len(a.indices)+len(b.indices))
	indices = append(indices, a.indices...)
	indices = append(indices, b.indices...)

	points := make([]geometry.Point, 0, len(a.points)+len(b.points))
	points = append(points, a.points...)
	points = append(points, b.points...)

	out := make([]cluster, 0, len(clusters)-1)
	for n, c := range clusters {
		if n != i && n != j {
			out = append(out, c)
		}
	}
	return append(out, newCluster(indices, points))
}

func snapshot(clusters []cluster) Candidate {
	c := Candidate{
		NumClusters:     len(clusters),
		DistanceSums:    make([]float64, len(clusters)),
		PointCounts:     make([]int, len(clusters)),
		OriginalIndices: make([][]int, len(clusters)),
	}
	for n, cl := range clusters {
		c.DistanceSums[n] = cl.distanceSum()
		c.PointCounts[n] = len(cl.points)
		c.OriginalIndices[n] = append([]int(nil), cl.indices...)
		c.Score += c.DistanceSums[n]
	}
	return c
}
