package llvmir

/*
#include <string.h>
#include <math.h>

static void *kazan_memcpy_addr(void)  { return (void*)&memcpy; }
static void *kazan_memset_addr(void)  { return (void*)&memset; }
static void *kazan_memmove_addr(void) { return (void*)&memmove; }
static void *kazan_sqrtf_addr(void)   { return (void*)&sqrtf; }
static void *kazan_sqrt_addr(void)    { return (void*)&sqrt; }
static void *kazan_fabsf_addr(void)   { return (void*)&fabsf; }
static void *kazan_fabs_addr(void)    { return (void*)&fabs; }
*/
import "C"

// DefaultResolver is the core's own whitelist SymbolResolver (spec.md §4.A:
// "The default resolver in the core only recognizes a small whitelist of
// C-runtime/unwind helpers; unknown symbols resolve to null"). The members
// are exactly the C-runtime helpers the two-pass translator's arithmetic and
// GLSL.std.450 lowering can emit calls to (SPEC_FULL.md supplemented
// feature 4, grounded on the original kazan source's Jit_symbol_resolver).
//
// Addresses are taken through a small cgo trampoline rather than dlopen/
// dlsym, in the style of google-gapid/gapil/executor's own cgo-call
// bridge to its compiled functions.
func DefaultResolver(name string) uintptr {
	switch name {
	case "memcpy":
		return uintptr(C.kazan_memcpy_addr())
	case "memset":
		return uintptr(C.kazan_memset_addr())
	case "memmove":
		return uintptr(C.kazan_memmove_addr())
	case "sqrtf":
		return uintptr(C.kazan_sqrtf_addr())
	case "sqrt":
		return uintptr(C.kazan_sqrt_addr())
	case "fabsf":
		return uintptr(C.kazan_fabsf_addr())
	case "fabs":
		return uintptr(C.kazan_fabs_addr())
	default:
		return 0
	}
}
