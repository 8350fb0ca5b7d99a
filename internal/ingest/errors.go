package ingest

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFileType indicates the filename extension is not one of
// xlsx, xls or csv.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrFileTooLarge indicates the upload exceeds the configured size cap.
var ErrFileTooLarge = errors.New("file too large")

// ErrEmptyDataset indicates no rows survived cleaning.
var ErrEmptyDataset = errors.New("dataset is empty")

// ParseError wraps a parser-level failure (malformed file, corrupt
// encoding). It is always recoverable at the request boundary.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
