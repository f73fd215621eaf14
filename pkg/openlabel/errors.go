package openlabel

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is wrapped by every error caused by bad importer options
var ErrInvalidConfiguration = errors.New("Invalid configuration")

// MalformedShapeError is returned when a shape has the wrong number of coordinates
type MalformedShapeError struct {
	Kind     ShapeKind
	Expected int
	Found    int
}

func (e *MalformedShapeError) Error() string {
	if e.Expected == 0 {
		return fmt.Sprintf("Malformed %v coordinates: found %d values", e.Kind, e.Found)
	}
	return fmt.Sprintf("Expected %v to have %d coordinates, found %d", e.Kind, e.Expected, e.Found)
}

// TypeMismatchError is returned when a collection that must contain only points contains other shapes
type TypeMismatchError struct {
	Found ShapeKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("Found non-point shapes (%v) when attempting to convert to Keypoint labels", e.Found)
}
