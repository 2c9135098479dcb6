package render

import (
	"errors"
	"fmt"
)

// Stage names the part of the report being composed when a failure occurred.
type Stage string

// Render stages, in execution order.
const (
	StageGeometry Stage = "geometry"
	StageSummary  Stage = "summary"
	StageDiagram  Stage = "diagram"
	StageOutput   Stage = "output"
)

// ErrPanic is wrapped by a RenderError created from a recovered panic.
var ErrPanic = errors.New("panic while rendering")

// RenderError is returned when a report could not be composed.
// No output is produced when a RenderError is returned.
type RenderError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// runStage calls fn and converts both a returned error and a panic into a
// *RenderError tagged with stage.
func runStage(stage Stage, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &RenderError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrPanic, p)}
		}
	}()

	if err := fn(); err != nil {
		return &RenderError{Stage: stage, Err: err}
	}
	return nil
}
