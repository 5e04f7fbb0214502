package jac

import "github.com/saulecabrera/jac/internal/errs"

// Error is the annotated error type returned by every stage of this
// package's pipeline. Use errors.As to recover it and inspect Kind,
// Offset, or Line for programmatic handling.
type Error = errs.Error

// ErrorKind categorizes an Error independent of which stage raised it.
type ErrorKind = errs.Kind

// Error kinds, re-exported for callers that want to compare against
// Error.Kind() without importing the internal errs package directly.
const (
	Truncated         = errs.Truncated
	VersionMismatch   = errs.VersionMismatch
	UnsupportedTag    = errs.UnsupportedTag
	UnsupportedOpcode = errs.UnsupportedOpcode
	Overflow          = errs.Overflow
	UnknownAtom       = errs.UnknownAtom
	UnknownFunction   = errs.UnknownFunction
	Redeclaration     = errs.Redeclaration
	UnsealedBlock     = errs.UnsealedBlock
	SealOrder         = errs.SealOrder
	MalformedTrace    = errs.MalformedTrace
)
