package ingest

import "errors"

var (
	// ErrUnsupportedFormat is returned when the file extension is not one of the accepted formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrParse is returned when the payload cannot be decoded in its declared format.
	ErrParse = errors.New("failed to parse file")
	// ErrEmptyInput is returned when the file holds no data rows.
	ErrEmptyInput = errors.New("file is empty or invalid")
	// ErrMissingColumns is returned when the header lacks required columns.
	ErrMissingColumns = errors.New("missing required columns")
)
