package floorplan

import (
	"math"
	"math/rand"
	"testing"
)

func TestPlaneFrom3Points(t *testing.T) {
	// z = 2 plane.
	model, ok := planeFrom3Points(Point3{0, 0, 2}, Point3{1, 0, 2}, Point3{0, 1, 2})
	if !ok {
		t.Fatal("expected a valid plane")
	}
	if !almostEqual(math.Abs(model.C), 1) {
		t.Errorf("expected |C|=1 for a horizontal plane, got %v", model.C)
	}
	if !almostEqual(model.DistanceTo(Point3{5, -3, 2}), 0) {
		t.Errorf("point on plane has nonzero distance")
	}
	if !almostEqual(model.DistanceTo(Point3{0, 0, 5}), 3) {
		t.Errorf("expected distance 3, got %v", model.DistanceTo(Point3{0, 0, 5}))
	}
}

func TestPlaneFrom3PointsCollinear(t *testing.T) {
	if _, ok := planeFrom3Points(Point3{0, 0, 0}, Point3{1, 1, 1}, Point3{2, 2, 2}); ok {
		t.Error("collinear points must not produce a plane")
	}
}

func TestPlaneIsVertical(t *testing.T) {
	wall := PlaneModel{A: 1, B: 0, C: 0, D: -2} // x = 2
	if !wall.IsVertical(0.2) {
		t.Error("x=2 plane should be vertical")
	}
	floor := PlaneModel{A: 0, B: 0, C: 1, D: 0} // z = 0
	if floor.IsVertical(0.2) {
		t.Error("z=0 plane should not be vertical")
	}
}

func TestFitPlaneRANSAC(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// 200 points on x = 3 with small jitter plus 20 off-plane outliers.
	var cloud PointCloud
	for i := 0; i < 200; i++ {
		cloud = append(cloud, Point3{
			X: 3 + (rng.Float64()-0.5)*0.02,
			Y: rng.Float64() * 4,
			Z: rng.Float64() * 2.5,
		})
	}
	for i := 0; i < 20; i++ {
		cloud = append(cloud, Point3{
			X: rng.Float64()*10 - 5,
			Y: rng.Float64() * 4,
			Z: rng.Float64() * 2.5,
		})
	}

	model, inliers := fitPlaneRANSAC(cloud, 0.05, 300, rand.New(rand.NewSource(DefaultSeed)))
	if len(inliers) < 190 {
		t.Fatalf("expected at least 190 inliers, got %d", len(inliers))
	}
	if !model.IsVertical(0.2) {
		t.Errorf("fitted plane should be vertical, normal z = %v", model.C)
	}
	if math.Abs(math.Abs(model.A)-1) > 0.05 {
		t.Errorf("expected normal near (1,0,0), got (%v, %v, %v)", model.A, model.B, model.C)
	}

	// Inlier indices come back in ascending order.
	for i := 1; i < len(inliers); i++ {
		if inliers[i] <= inliers[i-1] {
			t.Fatalf("inliers not ascending at %d: %v <= %v", i, inliers[i], inliers[i-1])
		}
	}
}

func TestFitPlaneRANSACDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var cloud PointCloud
	for i := 0; i < 100; i++ {
		cloud = append(cloud, Point3{rng.Float64(), rng.Float64(), rng.Float64()})
	}

	m1, in1 := fitPlaneRANSAC(cloud, 0.1, 100, rand.New(rand.NewSource(DefaultSeed)))
	m2, in2 := fitPlaneRANSAC(cloud, 0.1, 100, rand.New(rand.NewSource(DefaultSeed)))
	if m1 != m2 {
		t.Errorf("same seed produced different models: %+v vs %+v", m1, m2)
	}
	if len(in1) != len(in2) {
		t.Fatalf("same seed produced different inlier counts: %d vs %d", len(in1), len(in2))
	}
	for i := range in1 {
		if in1[i] != in2[i] {
			t.Fatalf("same seed produced different inliers at %d", i)
		}
	}
}

func TestFitPlaneRANSACTooFewPoints(t *testing.T) {
	_, inliers := fitPlaneRANSAC(PointCloud{{0, 0, 0}, {1, 1, 1}}, 0.1, 10, rand.New(rand.NewSource(1)))
	if inliers != nil {
		t.Errorf("expected nil inliers for a 2-point cloud, got %v", inliers)
	}
}

func TestBestPlaneAcrossThresholds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var cloud PointCloud
	for i := 0; i < 150; i++ {
		// y = 1 plane with ~0.08 jitter: a tight threshold misses most
		// points, a loose one catches them.
		cloud = append(cloud, Point3{
			X: rng.Float64() * 5,
			Y: 1 + (rng.Float64()-0.5)*0.16,
			Z: rng.Float64() * 2,
		})
	}

	_, tight := fitPlaneRANSAC(cloud, 0.01, 200, rand.New(rand.NewSource(DefaultSeed)))
	_, best := bestPlaneAcrossThresholds(cloud, []float64{0.01, 0.1}, 200, rand.New(rand.NewSource(DefaultSeed)))
	if len(best) <= len(tight) {
		t.Errorf("best-of-thresholds (%d inliers) should beat the tight threshold alone (%d)", len(best), len(tight))
	}
	if len(best) < 140 {
		t.Errorf("loose threshold should capture nearly all points, got %d", len(best))
	}
}
