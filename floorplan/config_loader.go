package floorplan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default extraction parameters. These match the values the pipeline was
// tuned with on handheld indoor scans; distances are in metres.
const (
	DefaultVoxelSize            = 0.04
	DefaultRANSACIterations     = 1000
	DefaultMaxRounds            = 5
	DefaultVerticalityTolerance = 0.2
	DefaultClusterRadius        = 0.8
	DefaultClusterMinPoints     = 30
	DefaultMinWallLength        = 0.8
	DefaultOutlierNeighbors     = 20
	DefaultOutlierStdRatio      = 2.0
	DefaultSeed                 = 42

	DefaultAxisTolerance = 0.1
	DefaultMinEdgeLength = 0.1
)

// DefaultDistanceThresholds returns the RANSAC distance-threshold candidates
// tried each segmentation round. The best-scoring threshold wins per round,
// which auto-selects the noise tolerance instead of requiring one fixed value.
func DefaultDistanceThresholds() []float64 {
	return []float64{0.02, 0.05, 0.1, 0.12}
}

// DefaultConfig returns a fully populated configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero-valued fields with defaults. A negative
// voxelSize survives defaulting and disables downsampling, since 0 cannot
// express "off" here.
func (c *Config) ApplyDefaults() {
	e := &c.Extraction
	if e.VoxelSize == 0 {
		e.VoxelSize = DefaultVoxelSize
	}
	if len(e.DistanceThresholds) == 0 {
		e.DistanceThresholds = DefaultDistanceThresholds()
	}
	if e.RANSACIterations == 0 {
		e.RANSACIterations = DefaultRANSACIterations
	}
	if e.MaxRounds == 0 {
		e.MaxRounds = DefaultMaxRounds
	}
	if e.VerticalityTolerance == 0 {
		e.VerticalityTolerance = DefaultVerticalityTolerance
	}
	if e.ClusterRadius == 0 {
		e.ClusterRadius = DefaultClusterRadius
	}
	if e.ClusterMinPoints == 0 {
		e.ClusterMinPoints = DefaultClusterMinPoints
	}
	if e.MinWallLength == 0 {
		e.MinWallLength = DefaultMinWallLength
	}
	if e.OutlierNeighbors == 0 {
		e.OutlierNeighbors = DefaultOutlierNeighbors
	}
	if e.OutlierStdRatio == 0 {
		e.OutlierStdRatio = DefaultOutlierStdRatio
	}
	if e.Seed == 0 {
		e.Seed = DefaultSeed
	}

	if c.Comparison.AxisTolerance == 0 {
		c.Comparison.AxisTolerance = DefaultAxisTolerance
	}
	if c.Comparison.MinEdgeLength == 0 {
		c.Comparison.MinEdgeLength = DefaultMinEdgeLength
	}

	if c.Report.Format == "" {
		c.Report.Format = "svg"
	}
	if c.Report.Resolution == 0 {
		c.Report.Resolution = 300
	}
	if c.Report.GridSpacing == 0 {
		c.Report.GridSpacing = 1.0
	}
}

// Validate rejects configurations the pipelines cannot run with.
func (c *Config) Validate() error {
	e := c.Extraction
	for i, t := range e.DistanceThresholds {
		if t <= 0 {
			return fmt.Errorf("extraction.distanceThresholds[%d] must be > 0, got %v", i, t)
		}
	}
	if e.RANSACIterations <= 0 {
		return fmt.Errorf("extraction.ransacIterations must be > 0, got %d", e.RANSACIterations)
	}
	if e.MaxRounds <= 0 {
		return fmt.Errorf("extraction.maxRounds must be > 0, got %d", e.MaxRounds)
	}
	if e.VerticalityTolerance <= 0 || e.VerticalityTolerance >= 1 {
		return fmt.Errorf("extraction.verticalityTolerance must be in (0, 1), got %v", e.VerticalityTolerance)
	}
	if e.ClusterRadius <= 0 {
		return fmt.Errorf("extraction.clusterRadius must be > 0, got %v", e.ClusterRadius)
	}
	if e.ClusterMinPoints <= 0 {
		return fmt.Errorf("extraction.clusterMinPoints must be > 0, got %d", e.ClusterMinPoints)
	}
	if e.MinWallLength <= 0 {
		return fmt.Errorf("extraction.minWallLength must be > 0, got %v", e.MinWallLength)
	}
	if c.Comparison.AxisTolerance <= 0 {
		return fmt.Errorf("comparison.axisTolerance must be > 0, got %v", c.Comparison.AxisTolerance)
	}
	if c.MQTT != nil && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when the mqtt section is present")
	}
	switch c.Report.Format {
	case "svg", "png":
	default:
		return fmt.Errorf("report.format must be svg or png, got %q", c.Report.Format)
	}
	return nil
}

// LoadConfig loads the configuration from a YAML file, applying defaults for
// fields the file leaves unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
