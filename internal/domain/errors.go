package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrValidation    = errors.New("validation failed")
	ErrPrecondition  = errors.New("precondition failed")
	ErrIncomplete    = errors.New("not all items were uploaded")
)

// NotFoundError reports that a name lookup matched nothing.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateNameError reports that a lookup requiring a unique match found several entities.
type DuplicateNameError struct {
	Kind  string
	Name  string
	Count int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("there are %d %ss named %q; names must be unique", e.Count, e.Kind, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// PreconditionError is a non-recoverable setup fault such as a missing token.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// IncompleteError summarises a bulk call in which some items failed.
type IncompleteError struct {
	Failed int
	Total  int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d of %d items were not uploaded", e.Failed, e.Total)
}

func (e *IncompleteError) Is(target error) bool { return target == ErrIncomplete }
