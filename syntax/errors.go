// Copyright © 2024 The cstlint authors

package syntax

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch is returned when a child is narrowed to a kind it does
	// not have.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMalformedParseResult is returned when a parse result does not match
	// the node schema.
	ErrMalformedParseResult = errors.New("malformed parse result")

	// ErrUnknownSlot is returned when a child name is not part of a node's
	// schema.
	ErrUnknownSlot = errors.New("unknown child")
)

// TypeMismatchError describes a failed narrowing.
type TypeMismatchError struct {
	Parent Kind   // kind of the node owning the slot; empty for As
	Slot   string // slot name; empty for As
	Want   []Kind
	Got    Kind
}

func (err *TypeMismatchError) Error() string {
	want := make([]string, len(err.Want))
	for i, k := range err.Want {
		want[i] = string(k)
	}
	msg := fmt.Sprintf("expected %s, got %s", strings.Join(want, " | "), err.Got)
	if err.Slot == "" {
		return msg
	}
	return fmt.Sprintf("%s.%s: %s", err.Parent, err.Slot, msg)
}

func (err *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// MalformedError locates a problem in a parse result.
type MalformedError struct {
	Path   string // dotted path into the parse result
	Offset int    // absolute byte offset reached when the problem was found
	Reason string
}

func (err *MalformedError) Error() string {
	return fmt.Sprintf("%s at %s (offset %d): %s", ErrMalformedParseResult, err.Path, err.Offset, err.Reason)
}

func (err *MalformedError) Unwrap() error {
	return ErrMalformedParseResult
}

func malformed(path string, offset int, format string, args ...interface{}) error {
	return &MalformedError{Path: path, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
