package quick

import (
	"errors"
	"fmt"

	"github.com/open-cli-collective/ecq/pkg/tt"
)

// Construct names the grammar construct a committed error belongs to.
type Construct int

const (
	ConstructNone      Construct = iota // ordinary mismatch
	ConstructShorthand                  // quick!(...)
	ConstructBlock                      // errors { ... }
)

// ParseError is a grammar failure at a position.
//
// An error with Committed set was raised after enough of a construct matched
// to know the author meant it. Callers trying alternatives must return it
// as is instead of falling through to the next rule.
type ParseError struct {
	Pos       tt.Pos
	Msg       string
	Committed bool
	Construct Construct
	Start     tt.Pos // where the committed construct begins
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s", e.Pos, e.Msg)
}

func mismatch(pos tt.Pos, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// commit tags err as committed to construct c starting at start. An error
// that is already committed keeps its original construct.
func commit(err error, c Construct, start tt.Pos) error {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Committed {
		return pe
	}
	committed := *pe
	committed.Committed = true
	committed.Construct = c
	committed.Start = start
	return &committed
}

// isCommitted reports whether err must stop the search for alternatives.
func isCommitted(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Committed
}

// Error is the error returned by Parse and Expand for a committed failure.
// Msg names the malformed construct; Cause holds the low-level detail.
type Error struct {
	Pos   tt.Pos
	Msg   string
	Cause *ParseError
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%v: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%v: %s: %v", e.Pos, e.Msg, e.Cause)
}

func (e *Error) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// ErrUnconverted is the panic value raised when a shorthand entry reaches
// the serializer. It signals a bug in the caller, not bad input.
var ErrUnconverted = errors.New("quick: shorthand entry was not rewritten before serialization")
