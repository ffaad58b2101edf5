package core

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vuuvv/errors"
)

var (
	ErrNotLocatable = errors.New("definition is not statically locatable")
	ErrVariableSize = errors.New("size of variable length array is not statically known")
	ErrNotInteger   = errors.New("value is not an integer")
	ErrTruncated    = errors.New("truncated record")
)

// NotLocatableError names the first subtree that prevents static offsets.
type NotLocatableError struct {
	Path []string
	Kind string
}

func (e *NotLocatableError) Error() string {
	return fmt.Sprintf("%s at '%s' is not statically locatable", e.Kind, strings.Join(e.Path, "."))
}

func (e *NotLocatableError) Is(target error) bool {
	return target == ErrNotLocatable
}

// AsNotLocatable finds a *NotLocatableError in the chain of err.
func AsNotLocatable(err error) (*NotLocatableError, bool) {
	var nl *NotLocatableError
	ok := stderrors.As(err, &nl)
	return nl, ok
}

type UnknownEnumValueError struct {
	Field string
	Code  int64
}

// Error leaves out Field, the enclosing FieldError already names it.
func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown enum value %d", e.Code)
}

type TruncatedError struct {
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated at offset %d: need %d bytes, have %d", e.Offset, e.Need, e.Have)
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncated
}

// MissingArraySourceError is only returned under Policy.StrictArrays.
type MissingArraySourceError struct {
	Array string
	Ref   string
}

func (e *MissingArraySourceError) Error() string {
	return fmt.Sprintf("array %s: size field '%s' not decoded yet", e.Array, e.Ref)
}

// NoBranchMatchError is only returned under Policy.StrictSubcom.
type NoBranchMatchError struct {
	Subcom       string
	Discriminant Value
}

func (e *NoBranchMatchError) Error() string {
	return fmt.Sprintf("subcom %s: no branch matches discriminant %s", e.Subcom, e.Discriminant)
}

// FieldError attaches the field name to a primitive decode failure.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
