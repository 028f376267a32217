package floorplan

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestVoxelDownsample(t *testing.T) {
	// Four points inside one voxel collapse into their centroid.
	cloud := PointCloud{
		{0.01, 0.01, 0.01},
		{0.03, 0.01, 0.01},
		{0.01, 0.03, 0.01},
		{0.03, 0.03, 0.01},
		{1.0, 1.0, 1.0},
	}
	out, err := VoxelDownsample(cloud, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 voxels, got %d", len(out))
	}
	if !almostEqual(out[0].X, 0.02) || !almostEqual(out[0].Y, 0.02) || !almostEqual(out[0].Z, 0.01) {
		t.Errorf("unexpected centroid: %+v", out[0])
	}
}

func TestVoxelDownsampleOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	var cloud PointCloud
	for i := 0; i < 500; i++ {
		cloud = append(cloud, Point3{rng.Float64() * 2, rng.Float64() * 2, rng.Float64()})
	}

	shuffled := make(PointCloud, len(cloud))
	copy(shuffled, cloud)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	a, err := VoxelDownsample(cloud, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	b, err := VoxelDownsample(shuffled, 0.25)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("voxel counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if math.Abs(a[i].X-b[i].X) > 1e-12 ||
			math.Abs(a[i].Y-b[i].Y) > 1e-12 ||
			math.Abs(a[i].Z-b[i].Z) > 1e-12 {
			t.Fatalf("voxel %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestVoxelDownsampleErrors(t *testing.T) {
	if _, err := VoxelDownsample(nil, 0.1); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := VoxelDownsample(PointCloud{{0, 0, 0}}, 0); err == nil {
		t.Error("expected error for zero voxel size")
	}
}

func TestRemoveStatisticalOutliers(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	// A dense blob plus one point far away.
	cloud := denseBlob(rng, 0, 0, 0, 200)
	cloud = append(cloud, Point3{20, 20, 20})

	out, err := RemoveStatisticalOutliers(cloud, 10, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range out {
		if p.X > 10 {
			t.Fatalf("outlier survived filtering: %+v", p)
		}
	}
	if len(out) < 150 {
		t.Errorf("filter was too aggressive: kept %d of 201", len(out))
	}
}

func TestRemoveStatisticalOutliersSmallCloud(t *testing.T) {
	cloud := PointCloud{{0, 0, 0}, {1, 0, 0}}
	out, err := RemoveStatisticalOutliers(cloud, 10, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("clouds smaller than the neighbor count pass through, got %d points", len(out))
	}
}

func TestRemoveStatisticalOutliersErrors(t *testing.T) {
	if _, err := RemoveStatisticalOutliers(nil, 10, 2.0); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := RemoveStatisticalOutliers(PointCloud{{0, 0, 0}}, 0, 2.0); err == nil {
		t.Error("expected error for zero neighbor count")
	}
}

func TestMergeClouds(t *testing.T) {
	a := PointCloud{{0, 0, 0}}
	b := PointCloud{{1, 1, 1}, {2, 2, 2}}

	merged, err := MergeClouds(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("expected 3 points, got %d", len(merged))
	}
	if merged[0] != a[0] || merged[1] != b[0] || merged[2] != b[1] {
		t.Errorf("merge changed point order: %v", merged)
	}

	if _, err := MergeClouds(nil, PointCloud{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestCloudBounds(t *testing.T) {
	cloud := PointCloud{{1, 5, -2}, {-4, 0, 3}, {2, 2, 2}}
	minP, maxP := cloudBounds(cloud)
	if minP != (Point3{-4, 0, -2}) {
		t.Errorf("unexpected min: %+v", minP)
	}
	if maxP != (Point3{2, 5, 3}) {
		t.Errorf("unexpected max: %+v", maxP)
	}
}
