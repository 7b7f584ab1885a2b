package surveyimport

import (
	"errors"
	"fmt"
)

// File-level errors. They abort the pipeline before any row is processed.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no data rows")
)

// Override errors.
var (
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrOverrideTarget = errors.New("override target outcome id is required")
)

// MissingColumnError reports a canonical field with no matching header.
type MissingColumnError struct {
	Field Field
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found", e.Field)
}

// Stable codes for file-level errors.
const (
	CodeUnsupportedFormat = "unsupported_format"
	CodeEmptyFile         = "empty_file"
	CodeMissingColumn     = "missing_column"
)

// ErrorCode returns the stable code of a file-level error, or "" if err is
// not one.
func ErrorCode(err error) string {
	var mc *MissingColumnError
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, ErrEmptyFile):
		return CodeEmptyFile
	case errors.As(err, &mc):
		return CodeMissingColumn
	}
	return ""
}

// IsFileError reports whether err is a file-level pipeline error.
func IsFileError(err error) bool { return ErrorCode(err) != "" }
