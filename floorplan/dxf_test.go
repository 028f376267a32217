package floorplan

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportPolygonDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	require.NoError(t, ExportPolygonDXF(path, rectangle10x5(), false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "LINE")
	assert.Contains(t, content, dxfWallLayer)
	assert.NotContains(t, content, dxfDimensionLayer)
}

func TestExportPolygonDXFWithDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	require.NoError(t, ExportPolygonDXF(path, rectangle10x5(), true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, dxfDimensionLayer)
	assert.Contains(t, content, "TEXT")
	assert.Contains(t, content, "Area: 50.00 m2")
}

func TestExportPolygonDXFInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	err := ExportPolygonDXF(path, orb.Ring{{0, 0}, {1, 1}}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPolygon)
}

// minimalDXF builds a bare ENTITIES-only DXF with one LINE per edge.
func minimalDXF(ring orb.Ring, layer string) string {
	coord := func(code string, v float64) string {
		return code + "\n" + strconv.FormatFloat(v, 'f', 6, 64) + "\n"
	}

	var b strings.Builder
	b.WriteString("0\nSECTION\n2\nENTITIES\n")
	closed := CloseRing(ring)
	for i := 0; i+1 < len(closed); i++ {
		a, c := closed[i], closed[i+1]
		b.WriteString("0\nLINE\n8\n" + layer + "\n")
		b.WriteString(coord("10", a[0]))
		b.WriteString(coord("20", a[1]))
		b.WriteString(coord("30", 0))
		b.WriteString(coord("11", c[0]))
		b.WriteString(coord("21", c[1]))
		b.WriteString(coord("31", 0))
	}
	b.WriteString("0\nENDSEC\n0\nEOF\n")
	return b.String()
}

func TestReadPolygonDXFLines(t *testing.T) {
	data := minimalDXF(unitSquare(), dxfWallLayer)

	ring, err := ReadPolygonDXF(strings.NewReader(data))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, Area(ring), 1e-9)
	assert.Equal(t, 4, EdgeCount(ring))
}

func TestReadPolygonDXFSkipsDimensionLayer(t *testing.T) {
	// A dimension-layer line crossing the square must not corrupt the ring.
	data := minimalDXF(unitSquare(), dxfWallLayer)
	extra := minimalDXF(orb.Ring{{-5, -5}, {5, 5}, {-5, -5}}, dxfDimensionLayer)
	merged := strings.Replace(data, "0\nENDSEC\n0\nEOF\n", "", 1) +
		strings.Replace(extra, "0\nSECTION\n2\nENTITIES\n", "", 1)

	ring, err := ReadPolygonDXF(strings.NewReader(merged))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, Area(ring), 1e-9)
}

func TestReadPolygonDXFEmpty(t *testing.T) {
	data := "0\nSECTION\n2\nENTITIES\n0\nENDSEC\n0\nEOF\n"
	_, err := ReadPolygonDXF(strings.NewReader(data))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.dxf")
	require.NoError(t, ExportPolygonDXF(path, rectangle10x5(), true))

	ring, err := ImportPolygonDXF(path)
	require.NoError(t, err)
	assert.InDelta(t, 50, Area(ring), 1e-6)
	assert.InDelta(t, 30, Perimeter(ring), 1e-6)
}

func TestDimensionTextHeight(t *testing.T) {
	h := dimensionTextHeight(rectangle10x5())
	assert.InDelta(t, 0.2, h, 1e-9)

	// Degenerate bounds fall back to a fixed height.
	assert.Equal(t, 0.1, dimensionTextHeight(orb.Ring{{1, 1}, {1, 1}}))
}
