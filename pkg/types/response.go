package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// CountedList wraps collection payloads with their cardinality.
type CountedList[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewCountedList never serialises a nil slice as null.
func NewCountedList[T any](items []T) CountedList[T] {
	if items == nil {
		items = []T{}
	}
	return CountedList[T]{Count: len(items), Items: items}
}
