// Package typegraph is the typed SPIR-V type-descriptor graph (spec.md
// §4.B): one Descriptor node per OpType* instruction, forward-declarable so
// a pointer-to-struct cycle can be built before the struct it points to is
// complete, and lazily materialized into a native llvmir.Type only the
// first time a descriptor is actually needed.
//
// StructDescriptor additionally owns the packed struct-layout engine of
// spec.md §4.C: every byte of inter-member padding is synthesized as an
// explicit u8[N] filler field rather than left to the LLVM struct packer,
// so that two translations of the same SPIR-V module against the same ABI
// always produce byte-identical native layouts.
package typegraph
