package floorplan

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// AlignmentTransform describes the rigid map from a candidate polygon's frame
// into a reference polygon's frame: a rotation about the candidate's centroid
// followed by a translation. Computed fresh per comparison; never cached.
type AlignmentTransform struct {
	// Rotation is the angle in radians. Principal axes are folded into
	// [0, pi/2), so the rotation is canonical up to the 4-fold symmetry of a
	// rectangular ring.
	Rotation float64
	// Translation moves the rotated candidate's centroid onto the
	// reference's centroid.
	Translation orb.Point
	// Pivot is the candidate centroid the rotation was applied about.
	Pivot orb.Point
}

// DefaultAlignerConfig returns the alignment tolerances the comparison
// pipeline was tuned with.
func DefaultAlignerConfig() AlignerConfig {
	return AlignerConfig{
		AxisTolerance: DefaultAxisTolerance,
		MinEdgeLength: DefaultMinEdgeLength,
	}
}

// DetectPrincipalAxis returns the dominant boundary-edge direction of a
// polygon as an angle from the x axis, folded into [0, pi/2). Folding
// collapses the four symmetric edge directions of an approximately
// rectangular ring onto one representative axis. Edges shorter than
// MinEdgeLength are skipped; returns 0 when no edge qualifies.
func DetectPrincipalAxis(ring orb.Ring, cfg AlignerConfig) float64 {
	axis, _ := detectAxis(ring, cfg)
	return axis
}

// detectAxis returns the principal axis and the number of qualifying edges.
func detectAxis(ring orb.Ring, cfg AlignerConfig) (float64, int) {
	closed := CloseRing(ring)

	// Histogram edge directions into bins AxisTolerance wide; the mode wins.
	counts := make(map[int]int)
	qualifying := 0
	for i := 0; i+1 < len(closed); i++ {
		dx := closed[i+1][0] - closed[i][0]
		dy := closed[i+1][1] - closed[i][1]
		if math.Hypot(dx, dy) < cfg.MinEdgeLength {
			continue
		}
		qualifying++

		angle := math.Mod(math.Abs(math.Atan2(dy, dx)), math.Pi/2)
		bin := int(math.Round(angle / cfg.AxisTolerance))
		counts[bin]++
	}

	if qualifying == 0 {
		return 0, 0
	}

	bestBin, bestCount := 0, 0
	for bin, count := range counts {
		if count > bestCount || (count == bestCount && bin < bestBin) {
			bestBin = bin
			bestCount = count
		}
	}
	return float64(bestBin) * cfg.AxisTolerance, qualifying
}

// Align registers the candidate polygon onto the reference polygon:
//
//  1. rotation = principalAxis(reference) - principalAxis(candidate)
//  2. rotate every candidate vertex about the candidate's own centroid
//  3. translate so the rotated candidate's centroid lands on the reference's
//
// The candidate is never mutated; the aligned ring is a new polygon. When
// either polygon has fewer than 2 qualifying edges the rotation defaults to
// 0 and alignment degrades to translation only.
//
// This is a fast deterministic heuristic using dominant edge directions, not
// full point-set registration: on non-rectilinear or rotationally symmetric
// footprints it produces a plausible but possibly wrong alignment without
// reporting an error.
func Align(reference, candidate orb.Ring, cfg AlignerConfig) (AlignmentTransform, orb.Ring, error) {
	if err := ValidatePolygon(reference); err != nil {
		return AlignmentTransform{}, nil, fmt.Errorf("reference: %w", err)
	}
	if err := ValidatePolygon(candidate); err != nil {
		return AlignmentTransform{}, nil, fmt.Errorf("candidate: %w", err)
	}

	refAxis, refEdges := detectAxis(reference, cfg)
	candAxis, candEdges := detectAxis(candidate, cfg)

	rotation := refAxis - candAxis
	if refEdges < 2 || candEdges < 2 {
		rotation = 0
	}

	pivot := AreaCentroid(candidate)
	rotated := RotateRing(CloseRing(candidate), rotation, pivot)

	refCentroid := AreaCentroid(reference)
	rotCentroid := AreaCentroid(rotated)
	dx := refCentroid[0] - rotCentroid[0]
	dy := refCentroid[1] - rotCentroid[1]

	aligned := TranslateRing(rotated, dx, dy)

	transform := AlignmentTransform{
		Rotation:    rotation,
		Translation: orb.Point{dx, dy},
		Pivot:       pivot,
	}
	return transform, aligned, nil
}
