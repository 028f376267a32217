package floorplan

import (
	"math"
	"testing"
)

// boxCloud samples a solid axis-aligned box on a regular grid.
func boxCloud(lx, ly, lz, step float64) PointCloud {
	var cloud PointCloud
	for x := 0.0; x <= lx+1e-9; x += step {
		for y := 0.0; y <= ly+1e-9; y += step {
			for z := 0.0; z <= lz+1e-9; z += step {
				cloud = append(cloud, Point3{x, y, z})
			}
		}
	}
	return cloud
}

func TestOrientedExtentsAxisAligned(t *testing.T) {
	cloud := boxCloud(4, 2, 1, 0.25)
	extents := orientedExtents(cloud)

	if math.Abs(extents[0]-4) > 0.1 {
		t.Errorf("longest extent: expected ~4, got %v", extents[0])
	}
	if math.Abs(extents[1]-2) > 0.1 {
		t.Errorf("middle extent: expected ~2, got %v", extents[1])
	}
	if math.Abs(extents[2]-1) > 0.1 {
		t.Errorf("shortest extent: expected ~1, got %v", extents[2])
	}
}

func TestOrientedExtentsRotationInvariant(t *testing.T) {
	base := boxCloud(4, 2, 1, 0.25)

	// Rotate the whole box 35 degrees about z; the oriented extents must not
	// change, unlike an axis-aligned bounding box.
	theta := 35 * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	rotated := make(PointCloud, len(base))
	for i, p := range base {
		rotated[i] = Point3{
			X: p.X*cos - p.Y*sin,
			Y: p.X*sin + p.Y*cos,
			Z: p.Z,
		}
	}

	a := orientedExtents(base)
	b := orientedExtents(rotated)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 0.05 {
			t.Errorf("extent %d changed under rotation: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestOrientedExtentsSortedDescending(t *testing.T) {
	extents := orientedExtents(boxCloud(1, 3, 2, 0.25))
	if extents[0] < extents[1] || extents[1] < extents[2] {
		t.Errorf("extents not sorted descending: %v", extents)
	}
}

func TestOrientedExtentsDegenerate(t *testing.T) {
	if extents := orientedExtents(nil); extents != [3]float64{} {
		t.Errorf("empty cloud: expected zero extents, got %v", extents)
	}

	single := PointCloud{{1, 2, 3}}
	if extents := orientedExtents(single); extents != [3]float64{} {
		t.Errorf("single point: expected zero extents, got %v", extents)
	}

	// A straight wall edge: one dominant extent, two near zero.
	var line PointCloud
	for x := 0.0; x <= 2; x += 0.1 {
		line = append(line, Point3{x, 0, 0})
	}
	extents := orientedExtents(line)
	if math.Abs(extents[0]-2) > 0.01 {
		t.Errorf("line: expected longest extent ~2, got %v", extents[0])
	}
	if extents[1] > 0.01 || extents[2] > 0.01 {
		t.Errorf("line: expected flat minor extents, got %v", extents)
	}
}

func TestAxisAlignedExtents(t *testing.T) {
	cloud := PointCloud{{0, 0, 0}, {3, 1, 2}}
	extents := axisAlignedExtents(cloud)
	if extents != [3]float64{3, 2, 1} {
		t.Errorf("expected [3 2 1], got %v", extents)
	}
}
