// Package llvmir is a thin, ownership-safe wrapper around the LLVM C API
// (component 4.A of spec.md: "a thin owning wrapper around an LLVM ORC-style
// compile stack"). It exposes a Module with a Types registry for building
// native LLVM types, a Builder for emitting instructions into a function
// body, and an Executor that eagerly JIT-compiles a verified module and
// resolves symbol addresses.
//
// The shape is adapted from google-gapid/core/codegen, which solves the same
// problem (translate an IR into LLVM IR and JIT it) for a different source
// language. Reflection-driven type derivation (TypeOf/FieldsOf in the
// teacher) is dropped because every type this package manufactures comes
// from the typegraph package's SPIR-V type descriptors, never from Go
// values.
package llvmir
