package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can test for them with errors.Is.
var (
	// ErrNoTarget is returned when no preflight report is given.
	ErrNoTarget = errors.New("no target specified: provide at least one preflight report XML file")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingOutput is returned when --output is combined with several
	// reports or with --output-dir.
	ErrConflictingOutput = errors.New("conflicting output: --output names a single file and cannot be used with several reports or --output-dir")

	// ErrConflictingPreview is returned when --preview is combined with several
	// reports. Each report then finds its own preview next to it.
	ErrConflictingPreview = errors.New("conflicting preview: --preview can only be used with a single report")

	// ErrInvalidPreviewExtension is returned when a preview extension does not
	// start with a dot.
	ErrInvalidPreviewExtension = errors.New("invalid preview extension: must start with '.'")
)
