package floorplan

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ReportRenderer draws floor-plan outlines and comparison overlays as vector
// graphics. World coordinates are metres; Scale converts them to canvas
// units. Metrics text is rasterized onto PNG output only, since vector text
// would require shipping a font.
type ReportRenderer struct {
	Reference  orb.Ring    // outline drawn in blue, may be nil
	Candidate  orb.Ring    // outline drawn in red, may be nil
	WallPoints []orb.Point // scatter of extracted wall points, gray
	Metrics    []string    // summary block, PNG output only

	Scale       float64 // canvas units per metre
	Padding     float64 // metres around the drawing bounds
	GridSpacing float64 // metres between grid lines, 0 disables
	Resolution  canvas.Resolution
}

// NewReportRenderer returns a renderer with rendering defaults tuned for
// room-scale drawings.
func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{
		Scale:       10.0,
		Padding:     0.5,
		GridSpacing: 1.0,
		Resolution:  canvas.DPI(300),
	}
}

// canvasRenderer is the subset both the svg and rasterizer backends
// implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the report as an SVG document.
func (r *ReportRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, width, height, err := r.drawingBounds()
	if err != nil {
		return err
	}

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, width, height)
	if err := svgRenderer.Close(); err != nil {
		return fmt.Errorf("finalizing SVG: %w", err)
	}
	return nil
}

// RenderToPNG rasterizes the report and overlays the metrics text block.
func (r *ReportRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, width, height, err := r.drawingBounds()
	if err != nil {
		return err
	}

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, width, height)
	drawMetricsBlock(rast, r.Metrics)

	if err := png.Encode(w, rast); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// RenderToFile picks the output format from the file extension (.svg or
// .png).
func (r *ReportRenderer) RenderToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		err = r.RenderToSVG(f)
	case ".png":
		err = r.RenderToPNG(f)
	default:
		err = fmt.Errorf("unsupported report format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

// drawingBounds computes the world-space extent of everything to be drawn.
func (r *ReportRenderer) drawingBounds() (minX, minY, width, height float64, err error) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	extend := func(p orb.Point) {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}

	for _, p := range r.Reference {
		extend(p)
	}
	for _, p := range r.Candidate {
		extend(p)
	}
	for _, p := range r.WallPoints {
		extend(p)
	}
	if minX > maxX {
		return 0, 0, 0, 0, fmt.Errorf("rendering report: %w", ErrEmptyInput)
	}

	width = (maxX - minX + 2*r.Padding) * r.Scale
	height = (maxY - minY + 2*r.Padding) * r.Scale
	return minX, minY, width, height, nil
}

func (r *ReportRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p orb.Point) (float64, float64) {
		return (p[0] - minX + r.Padding) * r.Scale, (p[1] - minY + r.Padding) * r.Scale
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Lightgray}
		gridStyle.StrokeWidth = 0.2
		gridStyle.Dashes = []float64{1.0, 1.0}

		worldW := width/r.Scale - 2*r.Padding
		worldH := height/r.Scale - 2*r.Padding
		for x := math.Ceil(minX/r.GridSpacing) * r.GridSpacing; x <= minX+worldW; x += r.GridSpacing {
			p := &canvas.Path{}
			x1, y1 := toCanvas(orb.Point{x, minY})
			x2, y2 := toCanvas(orb.Point{x, minY + worldH})
			p.MoveTo(x1, y1)
			p.LineTo(x2, y2)
			renderer.RenderPath(p, gridStyle, canvas.Identity)
		}
		for y := math.Ceil(minY/r.GridSpacing) * r.GridSpacing; y <= minY+worldH; y += r.GridSpacing {
			p := &canvas.Path{}
			x1, y1 := toCanvas(orb.Point{minX, y})
			x2, y2 := toCanvas(orb.Point{minX + worldW, y})
			p.MoveTo(x1, y1)
			p.LineTo(x2, y2)
			renderer.RenderPath(p, gridStyle, canvas.Identity)
		}
	}

	if len(r.WallPoints) > 0 {
		dotStyle := canvas.DefaultStyle
		dotStyle.Fill = canvas.Paint{Color: canvas.Gray}
		dotStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
		for _, p := range r.WallPoints {
			cx, cy := toCanvas(p)
			renderer.RenderPath(canvas.Circle(0.3).Translate(cx, cy), dotStyle, canvas.Identity)
		}
	}

	r.strokeRing(renderer, r.Reference, canvas.Blue, toCanvas)
	r.strokeRing(renderer, r.Candidate, canvas.Red, toCanvas)
}

func (r *ReportRenderer) strokeRing(renderer canvasRenderer, ring orb.Ring, strokeColor color.RGBA, toCanvas func(orb.Point) (float64, float64)) {
	if len(ring) == 0 {
		return
	}
	style := canvas.DefaultStyle
	style.Fill = canvas.Paint{Color: canvas.Transparent}
	style.Stroke = canvas.Paint{Color: strokeColor}
	style.StrokeWidth = 0.6

	cp := &canvas.Path{}
	for i, p := range CloseRing(ring) {
		cx, cy := toCanvas(p)
		if i == 0 {
			cp.MoveTo(cx, cy)
		} else {
			cp.LineTo(cx, cy)
		}
	}
	renderer.RenderPath(cp, style, canvas.Identity)
}

// drawMetricsBlock writes the metrics lines into the top-left corner of a
// rasterized image with a fixed bitmap face.
func drawMetricsBlock(dst *rasterizer.Rasterizer, lines []string) {
	if len(lines) == 0 {
		return
	}
	face := basicfont.Face7x13
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{A: 255}),
		Face: face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(8, 8+(i+1)*face.Height)
		drawer.DrawString(line)
	}
}

// SummaryLines formats a summary comparison as report text.
func SummaryLines(s ComparisonSummary) []string {
	return []string{
		fmt.Sprintf("Area: ref %.2f m2, cand %.2f m2 (diff %.2f, %.1f%%)",
			s.ReferenceArea, s.CandidateArea, s.AreaDiff, s.AreaDiffPercent),
		fmt.Sprintf("Perimeter: ref %.2f m, cand %.2f m (diff %.2f, %.1f%%)",
			s.ReferencePerimeter, s.CandidatePerimeter, s.PerimeterDiff, s.PerimeterDiffPercent),
		fmt.Sprintf("Similarity: %.1f", s.SimilarityScore),
	}
}

// DetailLines formats a detailed comparison as report text.
func DetailLines(d ComparisonResult) []string {
	lines := []string{
		fmt.Sprintf("Area diff: %.2f m2", d.AreaDiff),
		fmt.Sprintf("Perimeter diff: %.2f m", d.PerimeterDiff),
		fmt.Sprintf("IoU: %.3f", d.IoU),
	}
	if n := len(d.EdgeMatches); n > 0 {
		worst := 0.0
		for _, m := range d.EdgeMatches {
			worst = math.Max(worst, m.Diff)
		}
		lines = append(lines, fmt.Sprintf("Edges matched: %d (worst diff %.2f m)", n, worst))
	}
	if n := len(d.AngleMatches); n > 0 {
		worst := 0.0
		for _, m := range d.AngleMatches {
			worst = math.Max(worst, m.Diff)
		}
		lines = append(lines, fmt.Sprintf("Angles matched: %d (worst diff %.1f deg)", n, worst))
	}
	return lines
}
