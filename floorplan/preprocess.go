package floorplan

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Preprocessing filters applied to raw scans before wall segmentation. Both
// filters return new clouds; the input is never mutated.

// VoxelDownsample replaces all points falling in the same cubic voxel with
// their centroid. Output order follows voxel coordinates, so downsampling is
// deterministic regardless of input ordering.
func VoxelDownsample(cloud PointCloud, voxelSize float64) (PointCloud, error) {
	if len(cloud) == 0 {
		return nil, fmt.Errorf("downsampling: %w", ErrEmptyInput)
	}
	if voxelSize <= 0 {
		return nil, fmt.Errorf("voxel size must be positive, got %g", voxelSize)
	}

	type acc struct {
		x, y, z float64
		n       int
	}
	voxels := make(map[gridKey]*acc, len(cloud)/8+1)
	for _, p := range cloud {
		key := gridKey{
			x: int32(math.Floor(p.X / voxelSize)),
			y: int32(math.Floor(p.Y / voxelSize)),
			z: int32(math.Floor(p.Z / voxelSize)),
		}
		a := voxels[key]
		if a == nil {
			a = &acc{}
			voxels[key] = a
		}
		a.x += p.X
		a.y += p.Y
		a.z += p.Z
		a.n++
	}

	keys := make([]gridKey, 0, len(voxels))
	for k := range voxels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.x != b.x {
			return a.x < b.x
		}
		if a.y != b.y {
			return a.y < b.y
		}
		return a.z < b.z
	})

	out := make(PointCloud, 0, len(keys))
	for _, k := range keys {
		a := voxels[k]
		n := float64(a.n)
		out = append(out, Point3{X: a.x / n, Y: a.y / n, Z: a.z / n})
	}
	return out, nil
}

// RemoveStatisticalOutliers drops points whose mean distance to their k
// nearest neighbors exceeds mean + stdRatio * stddev of that
// statistic over the whole cloud. Clouds too small for the neighbor count
// are returned unchanged.
func RemoveStatisticalOutliers(cloud PointCloud, neighbors int, stdRatio float64) (PointCloud, error) {
	if len(cloud) == 0 {
		return nil, fmt.Errorf("outlier removal: %w", ErrEmptyInput)
	}
	if neighbors < 1 {
		return nil, fmt.Errorf("neighbor count must be at least 1, got %d", neighbors)
	}
	if len(cloud) <= neighbors {
		out := make(PointCloud, len(cloud))
		copy(out, cloud)
		return out, nil
	}

	meanDists := knnMeanDistances(cloud, neighbors)
	mean, std := stat.MeanStdDev(meanDists, nil)
	limit := mean + stdRatio*std

	out := make(PointCloud, 0, len(cloud))
	for i, p := range cloud {
		if meanDists[i] <= limit {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("outlier removal rejected every point: %w", ErrEmptyInput)
	}
	return out, nil
}

// MergeClouds concatenates multiple clouds into one.
func MergeClouds(clouds ...PointCloud) (PointCloud, error) {
	total := 0
	for _, c := range clouds {
		total += len(c)
	}
	if total == 0 {
		return nil, fmt.Errorf("merging clouds: %w", ErrEmptyInput)
	}
	out := make(PointCloud, 0, total)
	for _, c := range clouds {
		out = append(out, c...)
	}
	return out, nil
}

// knnMeanDistances returns, per point, the mean distance to its k nearest
// neighbors. Queries run over the regular-grid index with an expanding search
// radius seeded from the cloud's average density.
func knnMeanDistances(cloud PointCloud, k int) []float64 {
	// Pick a cell size so an average cell holds about k points.
	minP, maxP := cloudBounds(cloud)
	dx := maxP.X - minP.X
	dy := maxP.Y - minP.Y
	dz := maxP.Z - minP.Z
	volume := dx * dy * dz
	cellSize := math.Cbrt(volume * float64(k) / float64(len(cloud)))
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = 1e-3
	}
	diag := math.Sqrt(dx*dx+dy*dy+dz*dz) + cellSize

	si := newSpatialIndex(cloud, cellSize)
	out := make([]float64, len(cloud))
	dists := make([]float64, 0, 4*k)

	for i, p := range cloud {
		dists = dists[:0]
		for radius := cellSize; ; radius *= 2 {
			dists = dists[:0]
			for _, j := range si.queryWithin(p, radius) {
				if j == i {
					continue
				}
				q := cloud[j]
				ddx := q.X - p.X
				ddy := q.Y - p.Y
				ddz := q.Z - p.Z
				dists = append(dists, math.Sqrt(ddx*ddx+ddy*ddy+ddz*ddz))
			}
			if len(dists) >= k || radius > diag {
				break
			}
		}

		sort.Float64s(dists)
		n := k
		if len(dists) < n {
			n = len(dists)
		}
		sum := 0.0
		for _, d := range dists[:n] {
			sum += d
		}
		if n > 0 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// queryWithin returns indices of all points within radius of p, scanning the
// full cell range the radius covers.
func (si *spatialIndex) queryWithin(p Point3, radius float64) []int {
	lo := si.keyFor(Point3{X: p.X - radius, Y: p.Y - radius, Z: p.Z - radius})
	hi := si.keyFor(Point3{X: p.X + radius, Y: p.Y + radius, Z: p.Z + radius})
	r2 := radius * radius

	var hits []int
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				for _, ci := range si.cells[gridKey{x, y, z}] {
					q := si.points[ci]
					ddx := q.X - p.X
					ddy := q.Y - p.Y
					ddz := q.Z - p.Z
					if ddx*ddx+ddy*ddy+ddz*ddz <= r2 {
						hits = append(hits, ci)
					}
				}
			}
		}
	}
	return hits
}

// cloudBounds returns the axis-aligned min and max corners of the cloud.
func cloudBounds(cloud PointCloud) (Point3, Point3) {
	minP := cloud[0]
	maxP := cloud[0]
	for _, p := range cloud[1:] {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		minP.Z = math.Min(minP.Z, p.Z)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
		maxP.Z = math.Max(maxP.Z, p.Z)
	}
	return minP, maxP
}
