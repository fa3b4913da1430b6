// Package response holds the envelope every controller operation returns.
package response

import (
	"errors"
	"fmt"
)

// Response carries an operation's payload and the errors it reported.
// Batch operations may populate both.
type Response[T any] struct {
	Data   T
	Errors []error
}

func New[T any]() *Response[T] {
	return &Response[T]{}
}

func (r *Response[T]) SetData(data T) {
	r.Data = data
}

func (r *Response[T]) Report(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

func (r *Response[T]) Reportf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Errorf(format, args...))
}

func (r *Response[T]) OK() bool {
	return len(r.Errors) == 0
}

// Err joins every reported error, or returns nil when there are none.
func (r *Response[T]) Err() error {
	return errors.Join(r.Errors...)
}
