package floorplan

import (
	"math"
	"math/rand"
)

// DistanceTo returns the unsigned distance from p to the plane. The model's
// normal is unit length, so no renormalization is needed here.
func (m PlaneModel) DistanceTo(p Point3) float64 {
	return math.Abs(m.A*p.X + m.B*p.Y + m.C*p.Z + m.D)
}

// IsVertical reports whether the plane describes a near-vertical surface:
// a wall has a near-horizontal normal, so the z component of the normal must
// be small. Floors and ceilings fail this test.
func (m PlaneModel) IsVertical(tolerance float64) bool {
	return math.Abs(m.C) < tolerance
}

// planeFrom3Points builds a unit-normal plane through three points.
// Returns false for (near-)collinear samples.
func planeFrom3Points(p1, p2, p3 Point3) (PlaneModel, bool) {
	ux, uy, uz := p2.X-p1.X, p2.Y-p1.Y, p2.Z-p1.Z
	vx, vy, vz := p3.X-p1.X, p3.Y-p1.Y, p3.Z-p1.Z

	// Normal = u x v
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx

	norm := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if norm < 1e-12 {
		return PlaneModel{}, false
	}

	nx, ny, nz = nx/norm, ny/norm, nz/norm
	d := -(nx*p1.X + ny*p1.Y + nz*p1.Z)
	return PlaneModel{A: nx, B: ny, C: nz, D: d}, true
}

// fitPlaneRANSAC runs a fixed-budget RANSAC plane fit on the cloud: sample a
// 3-point minimal model, count inliers within threshold, keep the best model.
// The caller supplies the random source so runs are reproducible.
// Returns the winning model and the indices of its inliers; inliers is nil
// when no non-degenerate model was found.
func fitPlaneRANSAC(cloud PointCloud, threshold float64, iterations int, rng *rand.Rand) (PlaneModel, []int) {
	n := len(cloud)
	if n < 3 {
		return PlaneModel{}, nil
	}

	var bestModel PlaneModel
	bestCount := 0

	for iter := 0; iter < iterations; iter++ {
		i, j, k := sampleDistinct3(n, rng)
		model, ok := planeFrom3Points(cloud[i], cloud[j], cloud[k])
		if !ok {
			continue
		}

		count := 0
		for _, p := range cloud {
			if model.DistanceTo(p) <= threshold {
				count++
			}
		}

		if count > bestCount {
			bestCount = count
			bestModel = model
		}
	}

	if bestCount == 0 {
		return PlaneModel{}, nil
	}

	// Collect inlier indices for the winning model in input order.
	inliers := make([]int, 0, bestCount)
	for idx, p := range cloud {
		if bestModel.DistanceTo(p) <= threshold {
			inliers = append(inliers, idx)
		}
	}
	return bestModel, inliers
}

// bestPlaneAcrossThresholds runs one RANSAC fit per candidate threshold and
// keeps the (model, inliers) pair with the most inliers. This is a pure
// function over the remaining cloud; no state is shared across trials.
func bestPlaneAcrossThresholds(cloud PointCloud, thresholds []float64, iterations int, rng *rand.Rand) (PlaneModel, []int) {
	var bestModel PlaneModel
	var bestInliers []int

	for _, threshold := range thresholds {
		model, inliers := fitPlaneRANSAC(cloud, threshold, iterations, rng)
		if len(inliers) > len(bestInliers) {
			bestModel = model
			bestInliers = inliers
		}
	}

	return bestModel, bestInliers
}

// sampleDistinct3 draws three distinct indices in [0, n).
func sampleDistinct3(n int, rng *rand.Rand) (int, int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n)
	for j == i {
		j = rng.Intn(n)
	}
	k := rng.Intn(n)
	for k == i || k == j {
		k = rng.Intn(n)
	}
	return i, j, k
}
