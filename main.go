package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kwv/floorscan/floorplan"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile = flag.String("config", "", "Path to configuration file (optional)")

	extractMode = flag.Bool("extract", false, "Extract a floor plan from the given PCD scans")
	compareMode = flag.Bool("compare", false, "Compare a candidate DXF against a reference DXF")
	mergeMode   = flag.Bool("merge", false, "Merge the given PCD scans into one cloud")

	outputFile    = flag.String("output", "", "Output file (DXF for extract, PCD for merge)")
	referenceFile = flag.String("reference", "", "Reference DXF for compare mode")
	candidateFile = flag.String("candidate", "", "Candidate DXF for compare mode")
	reportFile    = flag.String("report", "", "Comparison report output (.svg or .png)")
	plotFile      = flag.String("plot", "", "Floor-plan plot output (.svg or .png)")
	dimensions    = flag.Bool("dimensions", false, "Annotate exported DXF with edge lengths and area")
	detailed      = flag.Bool("detailed", false, "Include IoU and per-edge/per-angle metrics in compare mode")
	binaryPCD     = flag.Bool("binary", false, "Write merged PCD in binary format")
	mqttMode      = flag.Bool("mqtt", false, "Publish stages and results to MQTT")
)

func main() {
	flag.Parse()
	fmt.Printf("floorscan version: %s\n", Version)

	app := NewApp()
	if *configFile != "" {
		config, err := floorplan.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		app.Config = config
	}

	app.ApplyOptions(AppOptions{
		OutputFile:    *outputFile,
		ReferenceFile: *referenceFile,
		CandidateFile: *candidateFile,
		ReportFile:    *reportFile,
		PlotFile:      *plotFile,
		Dimensions:    *dimensions,
		Detailed:      *detailed,
		BinaryPCD:     *binaryPCD,
		MqttMode:      *mqttMode,
	})

	if err := app.ConnectPublisher(); err != nil {
		log.Fatalf("Error connecting MQTT: %v", err)
	}
	defer app.Close()

	var err error
	switch {
	case *extractMode:
		err = app.RunExtract(flag.Args())
	case *compareMode:
		err = app.RunCompare()
	case *mergeMode:
		err = app.RunMerge(flag.Args())
	default:
		fmt.Println("Use -extract, -compare, or -merge")
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}
