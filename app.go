package main

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/paulmach/orb"

	"github.com/kwv/floorscan/floorplan"
)

// App encapsulates the application state and dependencies
type App struct {
	Config    *floorplan.Config
	Publisher *floorplan.Publisher

	mqttClient mqtt.Client

	// CLI flags (effectively dependencies)
	OutputFile    string
	ReferenceFile string
	CandidateFile string
	ReportFile    string
	PlotFile      string
	Dimensions    bool
	Detailed      bool
	BinaryPCD     bool
	MqttMode      bool
}

// AppOptions carries parsed CLI options into the App
type AppOptions struct {
	OutputFile    string
	ReferenceFile string
	CandidateFile string
	ReportFile    string
	PlotFile      string
	Dimensions    bool
	Detailed      bool
	BinaryPCD     bool
	MqttMode      bool
}

// NewApp creates a new App instance with default configuration
func NewApp() *App {
	return &App{Config: floorplan.DefaultConfig()}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.OutputFile = opts.OutputFile
	a.ReferenceFile = opts.ReferenceFile
	a.CandidateFile = opts.CandidateFile
	a.ReportFile = opts.ReportFile
	a.PlotFile = opts.PlotFile
	a.Dimensions = opts.Dimensions
	a.Detailed = opts.Detailed
	a.BinaryPCD = opts.BinaryPCD
	a.MqttMode = opts.MqttMode
}

// ConnectPublisher connects the MQTT publisher when MQTT mode is requested.
// Without MQTT mode the publisher stays nil-backed and every publish is a
// no-op.
func (a *App) ConnectPublisher() error {
	if !a.MqttMode {
		a.Publisher = floorplan.NewPublisher(nil, a.Config.MQTT)
		return nil
	}
	if a.Config.MQTT == nil {
		return fmt.Errorf("mqtt mode requested but config has no mqtt section")
	}

	client, err := floorplan.ConnectMQTT(a.Config.MQTT)
	if err != nil {
		return err
	}
	a.mqttClient = client
	a.Publisher = floorplan.NewPublisher(client, a.Config.MQTT)
	return nil
}

// Close disconnects external resources.
func (a *App) Close() {
	if a.mqttClient != nil {
		a.mqttClient.Disconnect(250)
	}
}

// progress reports a stage name to the log and, when connected, to MQTT.
func (a *App) progress(stage string) {
	log.Printf("Stage: %s", stage)
	a.Publisher.PublishStage(stage)
}

// RunExtract runs the full extraction pipeline on one or more PCD scans:
// merge, preprocess, segment walls, fit the floor-plan rectangle, then write
// the DXF and optionally a plot.
func (a *App) RunExtract(inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input PCD files given")
	}
	if a.OutputFile == "" {
		return fmt.Errorf("no -output DXF path given")
	}

	cloud, err := a.loadClouds(inputs)
	if err != nil {
		return err
	}

	ring, seg, err := a.extractFloorPlan(cloud)
	if err != nil {
		return err
	}

	a.progress("export")
	if err := floorplan.ExportPolygonDXF(a.OutputFile, ring, a.Dimensions); err != nil {
		return err
	}
	log.Printf("Wrote floor plan to %s (area %.2f m2, perimeter %.2f m)",
		a.OutputFile, floorplan.Area(ring), floorplan.Perimeter(ring))

	if a.PlotFile != "" {
		renderer := a.newRenderer()
		renderer.Candidate = ring
		renderer.WallPoints = seg.WallPoints
		if err := renderer.RenderToFile(a.PlotFile); err != nil {
			return err
		}
		log.Printf("Wrote floor-plan plot to %s", a.PlotFile)
	}

	if err := a.Publisher.PublishFloorPlan(ring); err != nil {
		log.Printf("Error publishing floor plan: %v", err)
	}
	return nil
}

// RunCompare imports the reference and candidate DXF drawings, aligns them
// and reports similarity metrics.
func (a *App) RunCompare() error {
	if a.ReferenceFile == "" || a.CandidateFile == "" {
		return fmt.Errorf("compare mode needs both -reference and -candidate DXF paths")
	}

	a.progress("import")
	reference, err := floorplan.ImportPolygonDXF(a.ReferenceFile)
	if err != nil {
		return err
	}
	candidate, err := floorplan.ImportPolygonDXF(a.CandidateFile)
	if err != nil {
		return err
	}

	a.progress("compare")
	summary, err := floorplan.CompareSummary(reference, candidate, a.Config.Comparison)
	if err != nil {
		return err
	}
	metrics := floorplan.SummaryLines(summary)
	for _, line := range metrics {
		log.Print(line)
	}

	aligned := summary.Aligned
	if a.Detailed {
		detail, err := floorplan.CompareDetailed(reference, candidate, a.Config.Comparison)
		if err != nil {
			return err
		}
		detailLines := floorplan.DetailLines(detail)
		for _, line := range detailLines {
			log.Print(line)
		}
		metrics = append(metrics, detailLines...)
		aligned = detail.Aligned
	}

	if a.ReportFile != "" {
		renderer := a.newRenderer()
		renderer.Reference = reference
		renderer.Candidate = aligned
		renderer.Metrics = metrics
		if err := renderer.RenderToFile(a.ReportFile); err != nil {
			return err
		}
		log.Printf("Wrote comparison report to %s", a.ReportFile)
	}

	if err := a.Publisher.PublishComparison(summary); err != nil {
		log.Printf("Error publishing comparison: %v", err)
	}
	return nil
}

// RunMerge concatenates multiple PCD scans into one output cloud.
func (a *App) RunMerge(inputs []string) error {
	if len(inputs) < 2 {
		return fmt.Errorf("merge mode needs at least 2 input PCD files")
	}
	if a.OutputFile == "" {
		return fmt.Errorf("no -output PCD path given")
	}

	merged, err := a.loadClouds(inputs)
	if err != nil {
		return err
	}
	if err := floorplan.SavePCD(a.OutputFile, merged, a.BinaryPCD); err != nil {
		return err
	}
	log.Printf("Wrote merged cloud to %s (%d points)", a.OutputFile, len(merged))
	return nil
}

// loadClouds reads and merges the input scans.
func (a *App) loadClouds(inputs []string) (floorplan.PointCloud, error) {
	a.progress("load")
	clouds := make([]floorplan.PointCloud, 0, len(inputs))
	for _, path := range inputs {
		cloud, err := floorplan.LoadPCD(path)
		if err != nil {
			return nil, err
		}
		log.Printf("Loaded %s: %d points", path, len(cloud))
		clouds = append(clouds, cloud)
	}
	return floorplan.MergeClouds(clouds...)
}

// extractFloorPlan runs preprocessing, segmentation, and rectangle fitting.
func (a *App) extractFloorPlan(cloud floorplan.PointCloud) (orb.Ring, *floorplan.Segmentation, error) {
	e := a.Config.Extraction

	a.progress("preprocess")
	filtered, err := floorplan.RemoveStatisticalOutliers(cloud, e.OutlierNeighbors, e.OutlierStdRatio)
	if err != nil {
		return nil, nil, err
	}
	if e.VoxelSize > 0 {
		if filtered, err = floorplan.VoxelDownsample(filtered, e.VoxelSize); err != nil {
			return nil, nil, err
		}
	}
	log.Printf("Preprocessing kept %d of %d points", len(filtered), len(cloud))

	a.progress("segment")
	seg, err := floorplan.SegmentWalls(filtered, floorplan.SegmenterConfigFrom(e))
	if err != nil {
		return nil, nil, err
	}

	a.progress("build")
	ring, err := floorplan.MinimumAreaRectangle(seg.WallPoints)
	if err != nil {
		return nil, nil, err
	}
	return ring, seg, nil
}

// newRenderer builds a report renderer from the report configuration.
func (a *App) newRenderer() *floorplan.ReportRenderer {
	renderer := floorplan.NewReportRenderer()
	if a.Config.Report.GridSpacing > 0 {
		renderer.GridSpacing = a.Config.Report.GridSpacing
	}
	return renderer
}
