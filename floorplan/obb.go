package floorplan

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// orientedExtents computes the extents of the PCA-oriented bounding box of a
// point cloud: the eigenvectors of the 3x3 covariance matrix give the box
// axes, and the extent along each axis is the spread of the projected points.
// Extents are returned sorted descending, so [0] is the longest dimension.
func orientedExtents(points PointCloud) [3]float64 {
	var extents [3]float64
	n := len(points)
	if n == 0 {
		return extents
	}

	var cx, cy, cz float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
		cz += p.Z
	}
	fn := float64(n)
	cx, cy, cz = cx/fn, cy/fn, cz/fn

	var xx, xy, xz, yy, yz, zz float64
	for _, p := range points {
		dx, dy, dz := p.X-cx, p.Y-cy, p.Z-cz
		xx += dx * dx
		xy += dx * dy
		xz += dx * dz
		yy += dy * dy
		yz += dy * dz
		zz += dz * dz
	}

	cov := mat.NewSymDense(3, []float64{
		xx / fn, xy / fn, xz / fn,
		xy / fn, yy / fn, yz / fn,
		xz / fn, yz / fn, zz / fn,
	})

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		// Degenerate covariance: fall back to the axis-aligned box.
		return axisAlignedExtents(points)
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Project every point onto each eigenvector and take the spread.
	for axis := 0; axis < 3; axis++ {
		ax := vecs.At(0, axis)
		ay := vecs.At(1, axis)
		az := vecs.At(2, axis)

		minProj, maxProj := math.Inf(1), math.Inf(-1)
		for _, p := range points {
			proj := (p.X-cx)*ax + (p.Y-cy)*ay + (p.Z-cz)*az
			if proj < minProj {
				minProj = proj
			}
			if proj > maxProj {
				maxProj = proj
			}
		}
		extents[axis] = maxProj - minProj
	}

	sortExtentsDesc(&extents)
	return extents
}

func axisAlignedExtents(points PointCloud) [3]float64 {
	var extents [3]float64
	if len(points) == 0 {
		return extents
	}
	minP, maxP := points[0], points[0]
	for _, p := range points[1:] {
		minP.X = math.Min(minP.X, p.X)
		minP.Y = math.Min(minP.Y, p.Y)
		minP.Z = math.Min(minP.Z, p.Z)
		maxP.X = math.Max(maxP.X, p.X)
		maxP.Y = math.Max(maxP.Y, p.Y)
		maxP.Z = math.Max(maxP.Z, p.Z)
	}
	extents = [3]float64{maxP.X - minP.X, maxP.Y - minP.Y, maxP.Z - minP.Z}
	sortExtentsDesc(&extents)
	return extents
}

func sortExtentsDesc(e *[3]float64) {
	if e[0] < e[1] {
		e[0], e[1] = e[1], e[0]
	}
	if e[1] < e[2] {
		e[1], e[2] = e[2], e[1]
	}
	if e[0] < e[1] {
		e[0], e[1] = e[1], e[0]
	}
}
