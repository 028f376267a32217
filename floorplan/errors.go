package floorplan

import "errors"

// Failure kinds returned by the core pipelines. Callers discriminate with
// errors.Is; call sites add context with fmt.Errorf("...: %w", err).
var (
	// ErrEmptyInput indicates no points or no polygon were supplied.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoWallsFound indicates segmentation exhausted all rounds without
	// accepting a single wall segment.
	ErrNoWallsFound = errors.New("no vertical walls found")

	// ErrInsufficientGeometry indicates fewer than 3 usable points or edges
	// were available for polygon construction.
	ErrInsufficientGeometry = errors.New("insufficient geometry")

	// ErrInvalidPolygon indicates a malformed or non-repairable ring.
	ErrInvalidPolygon = errors.New("invalid polygon")
)
