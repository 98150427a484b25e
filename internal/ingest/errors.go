package ingest

import (
	"fmt"

	"github.com/AngelCh415/funnel_go/internal/models"
)

// MalformedInputError means an upload could not be read as delimited text
// (or as a workbook).
type MalformedInputError struct {
	Source models.Source
	Line   int
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: malformed input at line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: malformed input: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// MissingDateColumnError means no header of the upload contains "date".
type MissingDateColumnError struct {
	Source models.Source
}

func (e *MissingDateColumnError) Error() string {
	return fmt.Sprintf("%s: no date column found, each file needs a column whose name contains \"Date\"", e.Source)
}

// ProcessingError wraps any other failure inside the pipeline.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string { return "processing failed: " + e.Err.Error() }

func (e *ProcessingError) Unwrap() error { return e.Err }
