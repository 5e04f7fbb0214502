// Package errs defines the error kinds shared by every stage of the
// pipeline (decode, translate, build, disassemble, symbolicate) and a
// single annotated error type carrying the byte offset or trace line at
// which a failure was detected.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a failure, independent of where in the
// pipeline it was raised.
type Kind int

const (
	// Truncated indicates a read ran off the end of a buffer or sub-reader
	// window.
	Truncated Kind = iota
	// VersionMismatch indicates the bytecode version byte did not match the
	// profile's expected constant.
	VersionMismatch
	// UnsupportedTag indicates an unknown top-level section tag byte.
	UnsupportedTag
	// UnsupportedOpcode indicates an opcode byte absent from the operator
	// table.
	UnsupportedOpcode
	// Overflow indicates a LEB128 value exceeded the target integer width.
	Overflow
	// UnknownAtom indicates a resolver was called with an out-of-range atom
	// index.
	UnknownAtom
	// UnknownFunction indicates a resolver was called with an out-of-range
	// function index.
	UnknownFunction
	// Redeclaration indicates the SSA builder was asked to declare a local
	// that is already declared.
	Redeclaration
	// UnsealedBlock indicates builder validation found a reachable block
	// that was never sealed.
	UnsealedBlock
	// SealOrder indicates placeholder resolution failed while sealing a
	// block because no predecessor produced a value for a local.
	SealOrder
	// MalformedTrace indicates a trace event line could not be parsed, or
	// native-call frame nesting was violated.
	MalformedTrace
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case VersionMismatch:
		return "version mismatch"
	case UnsupportedTag:
		return "unsupported tag"
	case UnsupportedOpcode:
		return "unsupported opcode"
	case Overflow:
		return "overflow"
	case UnknownAtom:
		return "unknown atom"
	case UnknownFunction:
		return "unknown function"
	case Redeclaration:
		return "redeclaration"
	case UnsealedBlock:
		return "unsealed block"
	case SealOrder:
		return "seal order"
	case MalformedTrace:
		return "malformed trace"
	default:
		return "unknown error kind"
	}
}

// noPosition marks an Error's Offset or Line as not applicable.
const noPosition = -1

// Error is the annotated error type every pipeline stage returns. It
// always carries a Kind and, when known, the byte offset (decode,
// translate, build, disassemble) or trace line number (symbolicate) at
// which the failure was detected.
type Error struct {
	kind   Kind
	offset int
	line   int
	detail string
	cause  error
}

// Kind reports the category of failure.
func (e *Error) Kind() Kind { return e.kind }

// Offset reports the byte offset the failure was detected at, or -1 if
// the failure is not offset-addressable (e.g. a trace error).
func (e *Error) Offset() int { return e.offset }

// Line reports the trace line number the failure was detected at, or -1
// if the failure did not occur while parsing a trace.
func (e *Error) Line() int { return e.line }

func (e *Error) Error() string {
	switch {
	case e.line >= 0:
		return fmt.Sprintf("%s at trace line %d: %s", e.kind, e.line, e.detail)
	case e.offset >= 0:
		return fmt.Sprintf("%s at offset 0x%x: %s", e.kind, e.offset, e.detail)
	default:
		return fmt.Sprintf("%s: %s", e.kind, e.detail)
	}
}

// Unwrap exposes the wrapped cause, if any, so errors.Is/errors.As chain
// through an *Error the same way they would through any fmt.Errorf %w.
func (e *Error) Unwrap() error { return e.cause }

// AtOffset builds an *Error annotated with a byte offset.
func AtOffset(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{kind: kind, offset: offset, line: noPosition, detail: fmt.Sprintf(format, args...)}
}

// AtLine builds an *Error annotated with a trace line number.
func AtLine(kind Kind, line int, format string, args ...any) *Error {
	return &Error{kind: kind, offset: noPosition, line: line, detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around an existing error, preserving it for
// errors.Unwrap while still annotating kind and offset.
func Wrap(kind Kind, offset int, cause error) *Error {
	return &Error{kind: kind, offset: offset, line: noPosition, detail: cause.Error(), cause: cause}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
// Callers that need the offset/line too should use errors.As(err, &e)
// directly.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == kind
}
