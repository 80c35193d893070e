package lists

import "errors"

var (
	// ErrBatchNotFound is returned when no line item carries the batch id.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrItemNotFound is returned when the line item does not exist.
	ErrItemNotFound = errors.New("list item not found")
	// ErrAgentNotFound is returned when the referenced agent does not exist.
	ErrAgentNotFound = errors.New("agent not found")
)
