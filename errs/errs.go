// Package errs implements the error taxonomy of spec.md §7: every failure
// raised by this core is one of four kinds, each carrying the context a
// caller needs to report it without the core doing any reporting itself.
//
// The shape follows google-gapid/core/fault: a small error type per concern
// that still satisfies the standard error interface, rather than the
// exception-throwing style of the original C++ (spec.md §9: "Exceptions for
// control flow → result types").
package errs

import "fmt"

// ParserError reports malformed SPIR-V, an unknown opcode, or a semantic
// violation (bad memory model, disallowed capability, missing/duplicate
// entry point, out-of-range index, ...). InstructionWord is the word offset
// of the instruction's header — the sole source of blame locations spec.md
// §3 requires.
type ParserError struct {
	InstructionWord int
	Reason          string
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("spir-v parse error at word %d: %s", e.InstructionWord, e.Reason)
}

// TranslationFailure reports that LLVM module verification failed, an
// intrinsic could not be materialized, or an unimplemented-but-recognized
// SPIR-V construct was hit during code generation.
type TranslationFailure struct {
	Reason string
	Cause  error
}

func (e *TranslationFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("translation failed: %s", e.Reason)
}

func (e *TranslationFailure) Unwrap() error { return e.Cause }

// Unsupported reports a recognized but deliberately-not-implemented feature:
// a derivative pipeline, an unrecognized vertex format, an unimplemented
// built-in, volatile/aligned memory access, a non-zero fragment output
// location, a geometry/tessellation stage, or struct recursion.
type Unsupported struct {
	Feature string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Feature)
}

// RuntimeFailure reports JIT initialization failure, an LLVM build that is
// not multithreaded, or a symbol-resolution miss for a required helper.
type RuntimeFailure struct {
	Reason string
	Cause  error
}

func (e *RuntimeFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("runtime failure: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("runtime failure: %s", e.Reason)
}

func (e *RuntimeFailure) Unwrap() error { return e.Cause }

// Parserf is a convenience constructor for ParserError.
func Parserf(word int, format string, args ...interface{}) error {
	return &ParserError{InstructionWord: word, Reason: fmt.Sprintf(format, args...)}
}

// Translationf is a convenience constructor for TranslationFailure.
func Translationf(format string, args ...interface{}) error {
	return &TranslationFailure{Reason: fmt.Sprintf(format, args...)}
}

// Unsupportedf is a convenience constructor for Unsupported.
func Unsupportedf(format string, args ...interface{}) error {
	return &Unsupported{Feature: fmt.Sprintf(format, args...)}
}

// Runtimef is a convenience constructor for RuntimeFailure.
func Runtimef(format string, args ...interface{}) error {
	return &RuntimeFailure{Reason: fmt.Sprintf(format, args...)}
}
