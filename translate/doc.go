// Package translate implements the two-pass SPIR-V-to-native translator
// (spec.md §4.E): calculate_types walks every instruction once to build the
// type-descriptor graph, the constant table, names, decorations,
// capabilities, and entry points; generate_code then walks the function
// bodies a second time to emit native IR through llvmir, binding each
// SPIR-V id that carries a runtime value to the llvmir.Value that computes
// it.
//
// It also owns the shader-interface assembler (spec.md §4.F): once pass one
// has located an entry point's Input/Output OpVariables and their Location
// decorations, it packs them into native "inputs" and "outputs" structs.
// translateEntryPoint wraps pointers to both in an "io_struct" and binds
// each interface variable to a field GEP emitted once at the start of the
// entry block.
package translate
