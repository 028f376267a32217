package floorplan

import (
	"fmt"
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
)

// ComparisonSummary holds the scalar metrics of a summary comparison. Percent
// differences are relative to the reference value and 0 when the reference
// value is 0.
type ComparisonSummary struct {
	ReferenceArea        float64 `json:"reference_area"`
	CandidateArea        float64 `json:"candidate_area"`
	AreaDiff             float64 `json:"area_diff"`
	AreaDiffPercent      float64 `json:"area_diff_percent"`
	ReferencePerimeter   float64 `json:"reference_perimeter"`
	CandidatePerimeter   float64 `json:"candidate_perimeter"`
	PerimeterDiff        float64 `json:"perimeter_diff"`
	PerimeterDiffPercent float64 `json:"perimeter_diff_percent"`

	// SimilarityScore is 100 minus the mean of the two percent differences.
	// Deliberately unclamped; large mismatches can push it negative.
	SimilarityScore float64 `json:"similarity_score"`

	Transform AlignmentTransform `json:"transform"`
	Aligned   orb.Ring           `json:"aligned"`
}

// EdgeMatch pairs a reference edge with the candidate edge whose length is
// nearest. The match is nearest-neighbor, not one-to-one: a single candidate
// edge may match several reference edges.
type EdgeMatch struct {
	ReferenceLength float64 `json:"reference_length"`
	CandidateLength float64 `json:"candidate_length"`
	Diff            float64 `json:"diff"`
}

// AngleMatch pairs a reference interior turn angle (degrees) with the nearest
// candidate angle.
type AngleMatch struct {
	ReferenceAngle float64 `json:"reference_angle"`
	CandidateAngle float64 `json:"candidate_angle"`
	Diff           float64 `json:"diff"`
}

// ComparisonResult holds the detailed comparison metrics.
type ComparisonResult struct {
	AreaDiff      float64      `json:"area_diff"`
	PerimeterDiff float64      `json:"perimeter_diff"`
	IoU           float64      `json:"iou"`
	EdgeMatches   []EdgeMatch  `json:"edge_matches"`
	AngleMatches  []AngleMatch `json:"angle_matches"`

	Transform AlignmentTransform `json:"transform"`
	Aligned   orb.Ring           `json:"aligned"`
}

// CompareSummary aligns the candidate onto the reference and reports
// area/perimeter differences plus an aggregate similarity score.
func CompareSummary(reference, candidate orb.Ring, cfg AlignerConfig) (ComparisonSummary, error) {
	transform, aligned, err := Align(reference, candidate, cfg)
	if err != nil {
		return ComparisonSummary{}, fmt.Errorf("compare summary: %w", err)
	}

	s := ComparisonSummary{
		ReferenceArea:      Area(reference),
		CandidateArea:      Area(aligned),
		ReferencePerimeter: Perimeter(reference),
		CandidatePerimeter: Perimeter(aligned),
		Transform:          transform,
		Aligned:            aligned,
	}
	s.AreaDiff = math.Abs(s.ReferenceArea - s.CandidateArea)
	s.PerimeterDiff = math.Abs(s.ReferencePerimeter - s.CandidatePerimeter)
	s.AreaDiffPercent = percentOf(s.AreaDiff, s.ReferenceArea)
	s.PerimeterDiffPercent = percentOf(s.PerimeterDiff, s.ReferencePerimeter)
	s.SimilarityScore = 100 - (s.AreaDiffPercent+s.PerimeterDiffPercent)/2

	return s, nil
}

// CompareDetailed aligns the candidate onto the reference and reports IoU
// plus per-edge and per-angle nearest-neighbor differences.
func CompareDetailed(reference, candidate orb.Ring, cfg AlignerConfig) (ComparisonResult, error) {
	transform, aligned, err := Align(reference, candidate, cfg)
	if err != nil {
		return ComparisonResult{}, fmt.Errorf("compare detailed: %w", err)
	}

	r := ComparisonResult{
		AreaDiff:      math.Abs(Area(reference) - Area(aligned)),
		PerimeterDiff: math.Abs(Perimeter(reference) - Perimeter(aligned)),
		IoU:           IoU(reference, aligned),
		EdgeMatches:   matchEdges(reference, aligned),
		AngleMatches:  matchAngles(reference, aligned),
		Transform:     transform,
		Aligned:       aligned,
	}
	return r, nil
}

// IoU returns the intersection-over-union of two polygons as planar regions.
// Returns 0 if either polygon is empty or the union area is 0.
func IoU(a, b orb.Ring) float64 {
	pa := toClipPolygon(a)
	pb := toClipPolygon(b)
	if len(pa) == 0 || len(pb) == 0 {
		return 0
	}

	union := clipArea(pa.Construct(polyclip.UNION, pb))
	if union == 0 {
		return 0
	}
	intersection := clipArea(pa.Construct(polyclip.INTERSECTION, pb))
	return intersection / union
}

// toClipPolygon converts a ring into a clipping polygon with the closing
// vertex dropped; contours are implicitly closed.
func toClipPolygon(ring orb.Ring) polyclip.Polygon {
	closed := CloseRing(ring)
	if len(closed) < 4 {
		return nil
	}
	contour := make(polyclip.Contour, len(closed)-1)
	for i, p := range closed[:len(closed)-1] {
		contour[i] = polyclip.Point{X: p[0], Y: p[1]}
	}
	return polyclip.Polygon{contour}
}

// clipArea sums the signed shoelace area over all contours so holes subtract
// from their enclosing ring, then returns the magnitude.
func clipArea(p polyclip.Polygon) float64 {
	total := 0.0
	for _, contour := range p {
		n := len(contour)
		if n < 3 {
			continue
		}
		signed := 0.0
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			signed += contour[i].X*contour[j].Y - contour[j].X*contour[i].Y
		}
		total += signed / 2
	}
	return math.Abs(total)
}

// edgeLengths returns the length of every non-degenerate edge of the ring,
// including the wrap edge.
func edgeLengths(ring orb.Ring) []float64 {
	closed := CloseRing(ring)
	lengths := make([]float64, 0, len(closed))
	for i := 0; i+1 < len(closed); i++ {
		l := math.Hypot(closed[i+1][0]-closed[i][0], closed[i+1][1]-closed[i][1])
		if l > 0 {
			lengths = append(lengths, l)
		}
	}
	return lengths
}

// interiorAngles returns the signed turn angle at every vertex of the ring,
// in degrees, computed between consecutive edge vectors via atan2(cross, dot).
func interiorAngles(ring orb.Ring) []float64 {
	closed := CloseRing(ring)
	if len(closed) == 0 {
		return nil
	}
	// Drop consecutive duplicate vertices: a doubled vertex would yield a
	// zero-length edge vector and a spurious 0-degree turn angle.
	verts := make(orb.Ring, 0, len(closed)-1)
	for _, p := range closed[:len(closed)-1] {
		if len(verts) == 0 || !verts[len(verts)-1].Equal(p) {
			verts = append(verts, p)
		}
	}
	n := len(verts)
	if n < 3 {
		return nil
	}
	angles := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		prev := verts[(i+n-1)%n]
		cur := verts[i]
		next := verts[(i+1)%n]

		ax, ay := cur[0]-prev[0], cur[1]-prev[1]
		bx, by := next[0]-cur[0], next[1]-cur[1]
		cross := ax*by - ay*bx
		dot := ax*bx + ay*by
		angles = append(angles, math.Atan2(cross, dot)*180/math.Pi)
	}
	return angles
}

// matchEdges pairs every reference edge length with the nearest candidate
// edge length.
func matchEdges(reference, candidate orb.Ring) []EdgeMatch {
	refLens := edgeLengths(reference)
	candLens := edgeLengths(candidate)
	if len(candLens) == 0 {
		return nil
	}

	matches := make([]EdgeMatch, 0, len(refLens))
	for _, rl := range refLens {
		best := candLens[0]
		for _, cl := range candLens[1:] {
			if math.Abs(rl-cl) < math.Abs(rl-best) {
				best = cl
			}
		}
		matches = append(matches, EdgeMatch{
			ReferenceLength: rl,
			CandidateLength: best,
			Diff:            math.Abs(rl - best),
		})
	}
	return matches
}

// matchAngles pairs every reference interior angle with the nearest candidate
// angle.
func matchAngles(reference, candidate orb.Ring) []AngleMatch {
	refAngles := interiorAngles(reference)
	candAngles := interiorAngles(candidate)
	if len(candAngles) == 0 {
		return nil
	}

	matches := make([]AngleMatch, 0, len(refAngles))
	for _, ra := range refAngles {
		best := candAngles[0]
		for _, ca := range candAngles[1:] {
			if math.Abs(ra-ca) < math.Abs(ra-best) {
				best = ca
			}
		}
		matches = append(matches, AngleMatch{
			ReferenceAngle: ra,
			CandidateAngle: best,
			Diff:           math.Abs(ra - best),
		})
	}
	return matches
}

func percentOf(diff, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return diff / reference * 100
}
