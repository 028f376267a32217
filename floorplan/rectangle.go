package floorplan

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// MinimumAreaRectangle fits the minimum-area oriented rectangle enclosing the
// given 2D points, returned as a closed ring with counter-clockwise winding.
// This is a rotating-calipers computation over the convex hull: the optimal
// rectangle has one side collinear with a hull edge, so it suffices to test
// the axis-aligned bounding box in each hull-edge frame.
//
// The rectangle approximates a rectangular room footprint robustly against
// stray points; for non-rectangular (e.g. L-shaped) footprints it
// deliberately circumscribes, which overestimates the true area.
//
// Fewer than 3 non-collinear points fail with ErrInsufficientGeometry.
func MinimumAreaRectangle(points []orb.Point) (orb.Ring, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("building floor plan: %w", ErrEmptyInput)
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("need at least 3 points, got %d: %w", len(points), ErrInsufficientGeometry)
	}

	hull := convexHull(points)
	if len(hull) < 3 {
		return nil, fmt.Errorf("points are collinear: %w", ErrInsufficientGeometry)
	}

	bestArea := math.Inf(1)
	var bestRect [4]orb.Point

	for i := 0; i < len(hull); i++ {
		p0 := hull[i]
		p1 := hull[(i+1)%len(hull)]
		angle := math.Atan2(p1[1]-p0[1], p1[0]-p0[0])
		cos, sin := math.Cos(-angle), math.Sin(-angle)

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range hull {
			rx := p[0]*cos - p[1]*sin
			ry := p[0]*sin + p[1]*cos
			minX = math.Min(minX, rx)
			minY = math.Min(minY, ry)
			maxX = math.Max(maxX, rx)
			maxY = math.Max(maxY, ry)
		}

		area := (maxX - minX) * (maxY - minY)
		if area < bestArea {
			bestArea = area
			// Rotate the box corners back into the input frame.
			ucos, usin := math.Cos(angle), math.Sin(angle)
			corners := [4][2]float64{
				{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
			}
			for c, rc := range corners {
				bestRect[c] = orb.Point{
					rc[0]*ucos - rc[1]*usin,
					rc[0]*usin + rc[1]*ucos,
				}
			}
		}
	}

	ring := orb.Ring{bestRect[0], bestRect[1], bestRect[2], bestRect[3], bestRect[0]}
	return ring, nil
}

// convexHull computes the convex hull of a set of 2D points using Andrew's
// monotone chain algorithm. Returns hull vertices in counter-clockwise order
// without the duplicated closing point; collinear interior points are
// dropped.
func convexHull(points []orb.Point) []orb.Point {
	if len(points) < 3 {
		result := make([]orb.Point, len(points))
		copy(result, points)
		return result
	}

	sorted := make([]orb.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	n := len(sorted)
	hull := make([]orb.Point, 0, 2*n)

	// Lower hull
	for _, p := range sorted {
		for len(hull) >= 2 && cross2(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Upper hull
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross2(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	// Remove last point (duplicate of first)
	return hull[:len(hull)-1]
}
