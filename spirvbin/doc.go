// Package spirvbin is the SPIR-V binary front end (spec.md §4.D): it
// validates the five-word module header, walks the word stream into a
// sequence of Instruction values (opcode, word count, raw operand words,
// and the word offset errs.ParserError blames failures on), and exposes the
// numeric enumerant tables (opcodes, decorations, storage classes,
// execution models, capabilities, built-ins, and formats) that translate
// and vkapi both dispatch on.
//
// It does not interpret any instruction's meaning — that is translate's
// job. spirvbin only knows how to cut the word stream into instructions and
// how to decode an instruction's fixed-shape operand kinds (Id, literal
// integer, literal string).
package spirvbin
