package types

import "encoding/json"

// ErrorKind classifies why an operation failed.
type ErrorKind int

const (
	// KindNone means the operation succeeded.
	KindNone ErrorKind = iota
	// KindValidation means the input broke one or more field rules. No cache or store access happened.
	KindValidation
	// KindOperational means a cache or store call failed.
	KindOperational
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindOperational:
		return "operational"
	default:
		return "none"
	}
}

// OperationResult is the uniform response envelope of the API.
// An empty Errors list means success.
type OperationResult[T any] struct {
	Errors  []string
	Result  *T
	Message string
	Kind    ErrorKind
}

// NewOperationResult returns an empty, successful result.
func NewOperationResult[T any]() OperationResult[T] {
	return OperationResult[T]{Errors: []string{}}
}

// HasError reports whether any error was recorded.
func (r OperationResult[T]) HasError() bool {
	return len(r.Errors) > 0
}

// Fail records errors of the given kind.
func (r *OperationResult[T]) Fail(kind ErrorKind, messages ...string) {
	r.Kind = kind
	r.Errors = append(r.Errors, messages...)
}

type operationResultJSON[T any] struct {
	Errors   []string `json:"errors"`
	Result   *T       `json:"result,omitempty"`
	Message  string   `json:"message,omitempty"`
	HasError bool     `json:"hasError"`
}

// MarshalJSON writes the wire form, with hasError derived from the error list.
func (r OperationResult[T]) MarshalJSON() ([]byte, error) {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return json.Marshal(operationResultJSON[T]{
		Errors:   errs,
		Result:   r.Result,
		Message:  r.Message,
		HasError: len(errs) > 0,
	})
}

// UnmarshalJSON reads the wire form. hasError is ignored since it is derived.
func (r *OperationResult[T]) UnmarshalJSON(data []byte) error {
	var wire operationResultJSON[T]
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Errors = wire.Errors
	if r.Errors == nil {
		r.Errors = []string{}
	}
	r.Result = wire.Result
	r.Message = wire.Message
	return nil
}
