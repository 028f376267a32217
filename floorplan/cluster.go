package floorplan

import "math"

// Density clustering (DBSCAN) over a 3D point cloud. Points in locally dense
// regions are grouped; sparse points are labeled noise. A regular-grid
// spatial index keeps neighborhood queries near O(1) for typical wall
// densities, and the fixed cell iteration order keeps results deterministic
// for a given input ordering.

// noiseLabel marks points that do not belong to any cluster.
const noiseLabel = -1

// gridKey addresses one cell of the spatial index.
type gridKey struct {
	x, y, z int32
}

// spatialIndex is a regular 3D grid over point indices. Cell size should
// match the clustering radius so a neighborhood query only touches the
// surrounding 3x3x3 block.
type spatialIndex struct {
	cellSize float64
	cells    map[gridKey][]int
	points   PointCloud
}

func newSpatialIndex(points PointCloud, cellSize float64) *spatialIndex {
	si := &spatialIndex{
		cellSize: cellSize,
		cells:    make(map[gridKey][]int, len(points)/4+1),
		points:   points,
	}
	for i, p := range points {
		si.cells[si.keyFor(p)] = append(si.cells[si.keyFor(p)], i)
	}
	return si
}

func (si *spatialIndex) keyFor(p Point3) gridKey {
	return gridKey{
		x: int32(math.Floor(p.X / si.cellSize)),
		y: int32(math.Floor(p.Y / si.cellSize)),
		z: int32(math.Floor(p.Z / si.cellSize)),
	}
}

// regionQuery returns indices of all points within radius of points[idx],
// including idx itself. Iteration over the 3x3x3 neighbor cells uses fixed
// loop order, so the result order depends only on the input ordering.
func (si *spatialIndex) regionQuery(idx int, radius float64) []int {
	p := si.points[idx]
	base := si.keyFor(p)
	r2 := radius * radius

	var neighbors []int
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				cell := gridKey{base.x + dx, base.y + dy, base.z + dz}
				for _, ci := range si.cells[cell] {
					q := si.points[ci]
					ddx := q.X - p.X
					ddy := q.Y - p.Y
					ddz := q.Z - p.Z
					if ddx*ddx+ddy*ddy+ddz*ddz <= r2 {
						neighbors = append(neighbors, ci)
					}
				}
			}
		}
	}
	return neighbors
}

// clusterDensity labels every point with a cluster id (0, 1, ...) or
// noiseLabel. radius is the neighborhood distance, minPoints the core-point
// threshold. The labeling is deterministic for a given input ordering.
func clusterDensity(points PointCloud, radius float64, minPoints int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = math.MinInt32 // unvisited
	}
	if len(points) == 0 {
		return labels
	}

	si := newSpatialIndex(points, radius)
	clusterID := 0

	for i := range points {
		if labels[i] != math.MinInt32 {
			continue
		}

		neighbors := si.regionQuery(i, radius)
		if len(neighbors) < minPoints {
			labels[i] = noiseLabel
			continue
		}

		expandCluster(si, labels, i, neighbors, clusterID, radius, minPoints)
		clusterID++
	}

	return labels
}

// expandCluster grows cluster clusterID outward from a core point using a
// queue of neighbor indices. Noise points reachable from a core point become
// border points of the cluster.
func expandCluster(si *spatialIndex, labels []int, seed int, neighbors []int, clusterID int, radius float64, minPoints int) {
	labels[seed] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == noiseLabel {
			labels[idx] = clusterID
		}
		if labels[idx] != math.MinInt32 {
			continue
		}

		labels[idx] = clusterID
		next := si.regionQuery(idx, radius)
		if len(next) >= minPoints {
			neighbors = append(neighbors, next...)
		}
	}
}

// majorityCluster returns the cluster label with the most members and its
// size. Noise points are ignored. Ties break toward the smaller label so the
// choice is deterministic. Returns (-1, 0) when every point is noise.
func majorityCluster(labels []int) (int, int) {
	counts := make(map[int]int)
	maxLabel := -1
	for _, l := range labels {
		if l < 0 {
			continue
		}
		counts[l]++
		if l > maxLabel {
			maxLabel = l
		}
	}

	best, bestCount := -1, 0
	for l := 0; l <= maxLabel; l++ {
		if counts[l] > bestCount {
			best = l
			bestCount = counts[l]
		}
	}
	return best, bestCount
}
