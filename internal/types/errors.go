package types

import (
	"errors"
	"fmt"
)

type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewFetchError(source string, err error) *FetchError {
	return &FetchError{Source: source, Err: err}
}

func NewStatusError(source string, statusCode int) *FetchError {
	return &FetchError{Source: source, StatusCode: statusCode}
}

func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ParseError means the body could not be read as markup at all. A document
// without any item or entry nodes is not a ParseError.
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

func NewParseError(source string, err error) *ParseError {
	return &ParseError{Source: source, Err: err}
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
