package floorplan

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/paulmach/orb"
)

// SegmenterConfig holds configuration for wall segmentation. All distances
// are in the same units as the input cloud.
type SegmenterConfig struct {
	DistanceThresholds   []float64  // RANSAC distance-threshold candidates, tried per round
	RANSACIterations     int        // Fixed iteration budget per threshold
	MaxRounds            int        // Maximum plane-extraction rounds
	VerticalityTolerance float64    // Max |normal.z| for a plane to count as a wall
	ClusterRadius        float64    // Density clustering neighborhood radius
	ClusterMinPoints     int        // Density clustering minimum cluster size
	MinWallLength        float64    // Minimum OBB longest extent for an accepted wall
	RNG                  *rand.Rand // Random source for deterministic sampling
}

// DefaultSegmenterConfig returns the tuned defaults with a fixed seed.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		DistanceThresholds:   DefaultDistanceThresholds(),
		RANSACIterations:     DefaultRANSACIterations,
		MaxRounds:            DefaultMaxRounds,
		VerticalityTolerance: DefaultVerticalityTolerance,
		ClusterRadius:        DefaultClusterRadius,
		ClusterMinPoints:     DefaultClusterMinPoints,
		MinWallLength:        DefaultMinWallLength,
		RNG:                  rand.New(rand.NewSource(DefaultSeed)),
	}
}

// SegmenterConfigFrom builds a SegmenterConfig from file configuration,
// seeding a fresh random source so concurrent invocations stay independent.
func SegmenterConfigFrom(e ExtractionConfig) SegmenterConfig {
	cfg := DefaultSegmenterConfig()
	if len(e.DistanceThresholds) > 0 {
		cfg.DistanceThresholds = e.DistanceThresholds
	}
	if e.RANSACIterations > 0 {
		cfg.RANSACIterations = e.RANSACIterations
	}
	if e.MaxRounds > 0 {
		cfg.MaxRounds = e.MaxRounds
	}
	if e.VerticalityTolerance > 0 {
		cfg.VerticalityTolerance = e.VerticalityTolerance
	}
	if e.ClusterRadius > 0 {
		cfg.ClusterRadius = e.ClusterRadius
	}
	if e.ClusterMinPoints > 0 {
		cfg.ClusterMinPoints = e.ClusterMinPoints
	}
	if e.MinWallLength > 0 {
		cfg.MinWallLength = e.MinWallLength
	}
	seed := e.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	cfg.RNG = rand.New(rand.NewSource(seed))
	return cfg
}

// Segmentation is the output of SegmentWalls: the accepted wall points
// flattened to their 2D projection, per-segment index groups into that flat
// slice, and the accepted plane models.
type Segmentation struct {
	WallPoints []orb.Point
	Segments   [][]int
	Walls      []WallSegment
}

// SegmentWalls isolates vertical-wall point clusters from a 3D cloud.
//
// Each round runs a best-of-K threshold RANSAC plane search over the
// remaining points, rejects non-vertical planes, density-clusters the plane's
// inliers and keeps only the largest cluster, then filters it by minimum wall
// length. All inliers are removed from the remaining cloud regardless of
// acceptance, guaranteeing progress and termination within MaxRounds.
//
// Identical input, configuration, and seed reproduce identical output.
func SegmentWalls(cloud PointCloud, config SegmenterConfig) (*Segmentation, error) {
	if len(cloud) == 0 {
		return nil, fmt.Errorf("segmenting walls: %w", ErrEmptyInput)
	}
	rng := config.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(DefaultSeed))
	}

	log.Printf("Starting wall segmentation with %d points", len(cloud))

	result := &Segmentation{}
	remaining := cloud

	for round := 0; round < config.MaxRounds; round++ {
		if len(remaining) == 0 {
			break
		}

		model, inliers := bestPlaneAcrossThresholds(remaining, config.DistanceThresholds, config.RANSACIterations, rng)
		if len(inliers) == 0 {
			break
		}

		if model.IsVertical(config.VerticalityTolerance) {
			wallCloud := selectByIndex(remaining, inliers)
			labels := clusterDensity(wallCloud, config.ClusterRadius, config.ClusterMinPoints)

			// A plane can cut through several physically separate, parallel
			// wall patches; keep only the single most populated cluster.
			label, count := majorityCluster(labels)
			if label >= 0 && count >= config.ClusterMinPoints {
				cluster := make(PointCloud, 0, count)
				for i, l := range labels {
					if l == label {
						cluster = append(cluster, wallCloud[i])
					}
				}

				extents := orientedExtents(cluster)
				if extents[0] >= config.MinWallLength {
					start := len(result.WallPoints)
					group := make([]int, 0, len(cluster))
					for i, p := range cluster {
						result.WallPoints = append(result.WallPoints, orb.Point{p.X, p.Y})
						group = append(group, start+i)
					}
					result.Segments = append(result.Segments, group)
					result.Walls = append(result.Walls, WallSegment{
						Points:  cluster,
						Plane:   model,
						Extents: extents,
					})
					log.Printf("Round %d: accepted wall segment with %d points (length %.2f)",
						round+1, count, extents[0])
				} else {
					log.Printf("Round %d: cluster too short (%.2f < %.2f), rejected",
						round+1, extents[0], config.MinWallLength)
				}
			}
		} else {
			log.Printf("Round %d: plane not vertical (|nz|=%.2f), rejected", round+1, absf(model.C))
		}

		// Remove all RANSAC inliers before the next round, accepted or not.
		remaining = removeByIndex(remaining, inliers)
	}

	if len(result.Walls) == 0 {
		return nil, fmt.Errorf("segmentation exhausted after %d rounds: %w", config.MaxRounds, ErrNoWallsFound)
	}

	log.Printf("Wall segmentation complete: %d segments, %d points",
		len(result.Walls), len(result.WallPoints))
	return result, nil
}

// selectByIndex returns a new cloud holding the points at the given indices.
func selectByIndex(cloud PointCloud, indices []int) PointCloud {
	out := make(PointCloud, 0, len(indices))
	for _, i := range indices {
		out = append(out, cloud[i])
	}
	return out
}

// removeByIndex returns a new cloud without the points at the given indices.
// Indices must be sorted ascending, which bestPlaneAcrossThresholds provides.
func removeByIndex(cloud PointCloud, indices []int) PointCloud {
	out := make(PointCloud, 0, len(cloud)-len(indices))
	j := 0
	for i, p := range cloud {
		if j < len(indices) && indices[j] == i {
			j++
			continue
		}
		out = append(out, p)
	}
	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
