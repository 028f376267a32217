package floorplan

// Point3 is a single 3D sample from a scan.
type Point3 struct {
	X, Y, Z float64
}

// PointCloud is an ordered set of 3D points. Clouds are treated as immutable:
// filtering operations return new clouds rather than mutating in place.
type PointCloud []Point3

// PlaneModel holds the coefficients of the plane ax + by + cz + d = 0.
// The normal (a, b, c) is kept at unit length so coefficient d is the signed
// distance of the plane from the origin.
type PlaneModel struct {
	A, B, C, D float64
}

// WallSegment is a cluster of points believed to lie on one physical wall,
// together with the plane it was fitted from and its oriented-bounding-box
// extents (sorted descending). Segments are created once per accepted
// segmentation round and never modified afterwards.
type WallSegment struct {
	Points  PointCloud
	Plane   PlaneModel
	Extents [3]float64
}

// LongestExtent returns the largest oriented-bounding-box dimension.
func (w WallSegment) LongestExtent() float64 {
	return w.Extents[0]
}

// Config is the full configuration file. Zero values are filled in with
// defaults by LoadConfig / ApplyDefaults.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Comparison AlignerConfig    `yaml:"comparison" json:"comparison"`
	Report     ReportConfig     `yaml:"report" json:"report"`
	MQTT       *MQTTConfig      `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
}

// ExtractionConfig holds the wall-segmentation and preprocessing parameters.
// Distances are in the same units as the input cloud (metres for typical
// scanner output).
type ExtractionConfig struct {
	// VoxelSize is the downsampling voxel edge length. 0 means the default;
	// a negative value disables downsampling entirely.
	VoxelSize            float64   `yaml:"voxelSize" json:"voxelSize"`
	DistanceThresholds   []float64 `yaml:"distanceThresholds" json:"distanceThresholds"`
	RANSACIterations     int       `yaml:"ransacIterations" json:"ransacIterations"`
	MaxRounds            int       `yaml:"maxRounds" json:"maxRounds"`
	VerticalityTolerance float64   `yaml:"verticalityTolerance" json:"verticalityTolerance"`
	ClusterRadius        float64   `yaml:"clusterRadius" json:"clusterRadius"`
	ClusterMinPoints     int       `yaml:"clusterMinPoints" json:"clusterMinPoints"`
	MinWallLength        float64   `yaml:"minWallLength" json:"minWallLength"`
	OutlierNeighbors     int       `yaml:"outlierNeighbors" json:"outlierNeighbors"`
	OutlierStdRatio      float64   `yaml:"outlierStdRatio" json:"outlierStdRatio"`
	Seed                 int64     `yaml:"seed" json:"seed"`
}

// AlignerConfig holds the polygon alignment parameters.
type AlignerConfig struct {
	// AxisTolerance is the bin width (radians) used when detecting the
	// principal wall direction of a polygon.
	AxisTolerance float64 `yaml:"axisTolerance" json:"axisTolerance"`
	// MinEdgeLength excludes very short boundary edges from axis detection.
	MinEdgeLength float64 `yaml:"minEdgeLength" json:"minEdgeLength"`
}

// ReportConfig holds rendering options for plots and comparison reports.
type ReportConfig struct {
	Format      string  `yaml:"format,omitempty" json:"format,omitempty"` // "svg" or "png"
	Resolution  float64 `yaml:"resolution,omitempty" json:"resolution,omitempty"`
	GridSpacing float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"`
}

// MQTTConfig holds optional MQTT connection settings for result publishing.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// ProgressFunc receives advisory stage-name notifications from a pipeline.
// It must not be used to obtain partial results; stages report names only.
type ProgressFunc func(stage string)
