package floorplan

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon helpers. A floor-plan polygon is a closed orb.Ring: the first
// vertex equals the last, and after optional repair the ring is simple
// (non-self-intersecting). All transformations return new rings.

// CloseRing returns a ring whose last vertex equals its first, copying the
// input so the original is never mutated.
func CloseRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring), len(ring)+1)
	copy(out, ring)
	if len(out) > 0 && !out[0].Equal(out[len(out)-1]) {
		out = append(out, out[0])
	}
	return out
}

// EdgeCount returns the number of non-degenerate edges of a closed ring.
func EdgeCount(ring orb.Ring) int {
	count := 0
	for i := 0; i+1 < len(ring); i++ {
		if !ring[i].Equal(ring[i+1]) {
			count++
		}
	}
	return count
}

// ValidatePolygon rejects polygons the aligner and comparator cannot work
// with: nil or empty rings, and rings with fewer than 3 distinct
// non-degenerate edges.
func ValidatePolygon(ring orb.Ring) error {
	if len(ring) == 0 {
		return fmt.Errorf("validating polygon: %w", ErrInvalidPolygon)
	}
	if EdgeCount(CloseRing(ring)) < 3 {
		return fmt.Errorf("polygon has fewer than 3 edges: %w", ErrInvalidPolygon)
	}
	return nil
}

// Area returns the unsigned enclosed area of the ring.
func Area(ring orb.Ring) float64 {
	return math.Abs(planar.Area(ring))
}

// Perimeter returns the boundary length of the ring.
func Perimeter(ring orb.Ring) float64 {
	return planar.Length(CloseRing(ring))
}

// AreaCentroid returns the area-weighted centroid of the ring.
func AreaCentroid(ring orb.Ring) orb.Point {
	c, _ := planar.CentroidArea(orb.Polygon{CloseRing(ring)})
	return c
}

// RotateRing rotates every vertex about the given pivot, returning a new
// ring. The angle is in radians, counter-clockwise.
func RotateRing(ring orb.Ring, angle float64, pivot orb.Point) orb.Ring {
	if angle == 0 {
		out := make(orb.Ring, len(ring))
		copy(out, ring)
		return out
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		tx := p[0] - pivot[0]
		ty := p[1] - pivot[1]
		out[i] = orb.Point{
			tx*cos - ty*sin + pivot[0],
			tx*sin + ty*cos + pivot[1],
		}
	}
	return out
}

// TranslateRing shifts every vertex by (dx, dy), returning a new ring.
func TranslateRing(ring orb.Ring, dx, dy float64) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{p[0] + dx, p[1] + dy}
	}
	return out
}

// RepairRing attempts to turn an arbitrary vertex sequence into a valid
// simple closed ring. Consecutive duplicate vertices are dropped and the ring
// is closed; if the result still self-intersects, the convex hull of the
// vertices is used as a conservative repair. Rings that cannot be repaired
// into 3+ edges fail with ErrInvalidPolygon.
func RepairRing(ring orb.Ring) (orb.Ring, error) {
	if len(ring) == 0 {
		return nil, fmt.Errorf("repairing polygon: %w", ErrInvalidPolygon)
	}

	dedup := make(orb.Ring, 0, len(ring))
	for _, p := range ring {
		if len(dedup) == 0 || !dedup[len(dedup)-1].Equal(p) {
			dedup = append(dedup, p)
		}
	}
	// Drop a trailing vertex equal to the first; CloseRing re-adds it.
	if len(dedup) > 1 && dedup[0].Equal(dedup[len(dedup)-1]) {
		dedup = dedup[:len(dedup)-1]
	}

	closed := CloseRing(dedup)
	if EdgeCount(closed) >= 3 && Area(closed) > 0 && !ringSelfIntersects(closed) {
		return closed, nil
	}

	hull := convexHull(dedup)
	closed = CloseRing(hull)
	if EdgeCount(closed) < 3 || Area(closed) == 0 {
		return nil, fmt.Errorf("repairing polygon: %w", ErrInvalidPolygon)
	}
	return closed, nil
}

// ringSelfIntersects reports whether any two non-adjacent edges of the closed
// ring properly intersect.
func ringSelfIntersects(ring orb.Ring) bool {
	n := len(ring) - 1 // edges in the closed ring
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			// Skip the wrap adjacency between the last and first edge.
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsIntersect(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect reports proper intersection of segments (p1,p2), (p3,p4).
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := cross2(p3, p4, p1)
	d2 := cross2(p3, p4, p2)
	d3 := cross2(p1, p2, p3)
	d4 := cross2(p1, p2, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
