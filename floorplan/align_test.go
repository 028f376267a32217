package floorplan

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDetectPrincipalAxisAxisAligned(t *testing.T) {
	axis := DetectPrincipalAxis(rectangle10x5(), DefaultAlignerConfig())
	if !almostEqual(axis, 0) {
		t.Errorf("axis-aligned rectangle: expected axis 0, got %v", axis)
	}
}

func TestDetectPrincipalAxisRotated(t *testing.T) {
	theta := 30 * math.Pi / 180
	rotated := RotateRing(rectangle10x5(), theta, orb.Point{5, 2.5})

	cfg := DefaultAlignerConfig()
	axis := DetectPrincipalAxis(rotated, cfg)
	if math.Abs(axis-theta) > cfg.AxisTolerance {
		t.Errorf("expected axis near %v, got %v", theta, axis)
	}
}

func TestDetectPrincipalAxisTranslationInvariant(t *testing.T) {
	cfg := DefaultAlignerConfig()
	r := RotateRing(rectangle10x5(), 0.4, orb.Point{5, 2.5})
	moved := TranslateRing(r, 123.4, -56.7)
	if a, b := DetectPrincipalAxis(r, cfg), DetectPrincipalAxis(moved, cfg); !almostEqual(a, b) {
		t.Errorf("translation changed detected axis: %v vs %v", a, b)
	}
}

func TestDetectPrincipalAxisQuarterTurnPeriodic(t *testing.T) {
	cfg := DefaultAlignerConfig()
	base := RotateRing(rectangle10x5(), 0.3, orb.Point{5, 2.5})
	baseAxis := DetectPrincipalAxis(base, cfg)
	for k := 1; k <= 3; k++ {
		turned := RotateRing(base, float64(k)*math.Pi/2, orb.Point{5, 2.5})
		if axis := DetectPrincipalAxis(turned, cfg); !almostEqual(axis, baseAxis) {
			t.Errorf("rotation by %d*pi/2 changed axis: %v vs %v", k, axis, baseAxis)
		}
	}
}

func TestDetectPrincipalAxisShortEdgesSkipped(t *testing.T) {
	// Every edge shorter than the minimum length: no qualifying edge, axis 0.
	tiny := orb.Ring{{0, 0}, {0.05, 0}, {0.05, 0.05}, {0, 0.05}, {0, 0}}
	if axis := DetectPrincipalAxis(tiny, DefaultAlignerConfig()); axis != 0 {
		t.Errorf("expected axis 0 for all-short edges, got %v", axis)
	}
}

func TestAlignIdentity(t *testing.T) {
	r := rectangle10x5()
	transform, aligned, err := Align(r, r, DefaultAlignerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(transform.Rotation, 0) {
		t.Errorf("expected rotation 0, got %v", transform.Rotation)
	}
	if !almostEqual(transform.Translation[0], 0) || !almostEqual(transform.Translation[1], 0) {
		t.Errorf("expected translation (0,0), got %v", transform.Translation)
	}
	if !ringsAlmostEqual(CloseRing(r), aligned, 1e-9) {
		t.Errorf("aligned ring differs from input:\n%v\n%v", r, aligned)
	}
}

func TestAlignRotatedAndTranslated(t *testing.T) {
	reference := rectangle10x5()
	theta := 30 * math.Pi / 180
	candidate := TranslateRing(RotateRing(reference, theta, AreaCentroid(reference)), 3, 3)

	cfg := DefaultAlignerConfig()
	transform, aligned, err := Align(reference, candidate, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The detected rotation is quantized by the axis bin width.
	if math.Abs(transform.Rotation+theta) > cfg.AxisTolerance {
		t.Errorf("expected rotation near %v, got %v", -theta, transform.Rotation)
	}

	refCentroid := AreaCentroid(reference)
	gotCentroid := AreaCentroid(aligned)
	if math.Abs(refCentroid[0]-gotCentroid[0]) > 1e-9 || math.Abs(refCentroid[1]-gotCentroid[1]) > 1e-9 {
		t.Errorf("centroids not aligned: %v vs %v", refCentroid, gotCentroid)
	}

	if math.Abs(Area(aligned)-Area(reference)) > 1e-9 {
		t.Errorf("alignment changed area: %v vs %v", Area(aligned), Area(reference))
	}
	if math.Abs(Perimeter(aligned)-Perimeter(reference)) > 1e-9 {
		t.Errorf("alignment changed perimeter: %v vs %v", Perimeter(aligned), Perimeter(reference))
	}
}

func TestAlignDoesNotMutateCandidate(t *testing.T) {
	reference := rectangle10x5()
	candidate := TranslateRing(reference, 7, 7)
	saved := make(orb.Ring, len(candidate))
	copy(saved, candidate)

	if _, _, err := Align(reference, candidate, DefaultAlignerConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ringsAlmostEqual(candidate, saved, 0) {
		t.Errorf("candidate polygon was mutated")
	}
}

func TestAlignRejectsInvalidPolygons(t *testing.T) {
	r := rectangle10x5()
	if _, _, err := Align(r, orb.Ring{}, DefaultAlignerConfig()); !errors.Is(err, ErrInvalidPolygon) {
		t.Errorf("empty candidate: expected ErrInvalidPolygon, got %v", err)
	}
	if _, _, err := Align(nil, r, DefaultAlignerConfig()); !errors.Is(err, ErrInvalidPolygon) {
		t.Errorf("nil reference: expected ErrInvalidPolygon, got %v", err)
	}
}
