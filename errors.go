package vimcfg

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFlag   = errors.New("unsupported flag for mapping")
	ErrDuplicateFileType = errors.New("duplicate filetype flag not supported")
	ErrMissingFileType   = errors.New("filetype flag only supported when filetype is given")
)

// KeySpecError is returned when a flag-key string cannot be parsed.
type KeySpecError struct {
	// The raw flag-key string as written in the document
	Raw string
	// The offending flag character, zero if the error is not tied to a single character
	Char rune
	Err  error
}

func (e *KeySpecError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("%s: `%c` in %q", e.Err, e.Char, e.Raw)
	}
	return fmt.Sprintf("%s: %q", e.Err, e.Raw)
}

func (e *KeySpecError) Unwrap() error {
	return e.Err
}

// DecodeError reports a malformed or schema-violating configuration document.
//
// Line and Column are 1-indexed, and zero when the position is unknown.
type DecodeError struct {
	Line   int
	Column int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DocumentError annotates any failure to load a document with its file name.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to parse file: %s: %s", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
