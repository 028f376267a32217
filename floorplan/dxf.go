package floorplan

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF drawing exchange. Export writes one LINE entity per polygon edge on
// the walls layer, with optional per-edge length and area annotations on a
// separate dimensions layer. Import concatenates the vertices of all
// line/polyline entities outside the dimensions layer into one ring and
// repairs it.

const (
	dxfWallLayer      = "WALLS"
	dxfDimensionLayer = "DIMENSIONS"
)

// ExportPolygonDXF writes the floor-plan polygon to a DXF file. When
// dimensions is true, each edge gets a length label at its midpoint and the
// polygon area is annotated at the centroid.
func ExportPolygonDXF(path string, ring orb.Ring, dimensions bool) error {
	if err := ValidatePolygon(ring); err != nil {
		return fmt.Errorf("exporting DXF: %w", err)
	}

	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	d.AddLayer(dxfWallLayer, color.White, dxf.DefaultLineType, true)
	closed := CloseRing(ring)
	for i := 0; i+1 < len(closed); i++ {
		a, b := closed[i], closed[i+1]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return fmt.Errorf("adding wall edge: %w", err)
		}
	}

	if dimensions {
		d.AddLayer(dxfDimensionLayer, color.Yellow, dxf.DefaultLineType, true)
		textHeight := dimensionTextHeight(closed)
		for i := 0; i+1 < len(closed); i++ {
			a, b := closed[i], closed[i+1]
			length := math.Hypot(b[0]-a[0], b[1]-a[1])
			mx, my := (a[0]+b[0])/2, (a[1]+b[1])/2
			if _, err := d.Text(fmt.Sprintf("%.2fm", length), mx, my, 0, textHeight); err != nil {
				return fmt.Errorf("adding edge label: %w", err)
			}
		}
		c := AreaCentroid(ring)
		label := fmt.Sprintf("Area: %.2f m2", Area(ring))
		if _, err := d.Text(label, c[0], c[1], 0, textHeight); err != nil {
			return fmt.Errorf("adding area label: %w", err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving DXF %s: %w", path, err)
	}
	return nil
}

// dimensionTextHeight scales annotation text to roughly 2% of the polygon's
// larger bounding dimension so labels stay legible at any drawing scale.
func dimensionTextHeight(ring orb.Ring) float64 {
	bound := ring.Bound()
	h := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1]) * 0.02
	if h <= 0 {
		h = 0.1
	}
	return h
}

// ImportPolygonDXF reads a reference floor plan from a DXF file.
func ImportPolygonDXF(path string) (orb.Ring, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening DXF: %w", err)
	}
	defer f.Close()

	ring, err := ReadPolygonDXF(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ring, nil
}

// ReadPolygonDXF parses a DXF stream, concatenates the vertices of its wall
// geometry into one ring and repairs it into a valid simple polygon.
// Annotation entities on the dimensions layer are skipped.
func ReadPolygonDXF(r io.Reader) (orb.Ring, error) {
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, fmt.Errorf("parsing DXF: %w", err)
	}

	vertices := collectDXFVertices(doc.Entities.Entities)
	for _, block := range doc.Blocks {
		vertices = append(vertices, collectDXFVertices(block.Entities)...)
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("DXF contains no wall geometry: %w", ErrEmptyInput)
	}

	ring, err := RepairRing(orb.Ring(vertices))
	if err != nil {
		return nil, fmt.Errorf("assembling DXF polygon: %w", err)
	}
	return ring, nil
}

// collectDXFVertices gathers line and polyline vertices in entity order. Line
// entities usually arrive as exported edges sharing endpoints; RepairRing
// deduplicates the doubled vertices afterwards.
func collectDXFVertices(ents []entities.Entity) []orb.Point {
	var vertices []orb.Point
	for _, e := range ents {
		switch ent := e.(type) {
		case *entities.Line:
			if ent.LayerName == dxfDimensionLayer {
				continue
			}
			vertices = append(vertices,
				orb.Point{ent.Start.X, ent.Start.Y},
				orb.Point{ent.End.X, ent.End.Y})
		case *entities.Polyline:
			if ent.LayerName == dxfDimensionLayer {
				continue
			}
			for _, v := range ent.Vertices {
				vertices = append(vertices, orb.Point{v.Location.X, v.Location.Y})
			}
		case *entities.LWPolyline:
			if ent.LayerName == dxfDimensionLayer {
				continue
			}
			for _, v := range ent.Points {
				vertices = append(vertices, orb.Point{v.Point.X, v.Point.Y})
			}
		}
	}
	return vertices
}
