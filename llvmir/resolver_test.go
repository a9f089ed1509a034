package llvmir

import "testing"

func TestDefaultResolverKnowsTheWhitelist(t *testing.T) {
	for _, name := range []string{"memcpy", "memset", "memmove", "sqrtf", "sqrt", "fabsf", "fabs"} {
		if addr := DefaultResolver(name); addr == 0 {
			t.Fatalf("DefaultResolver(%q) = 0, want a non-null address", name)
		}
	}
}

func TestDefaultResolverRejectsUnknownSymbols(t *testing.T) {
	for _, name := range []string{"printf", "malloc", "exit", ""} {
		if addr := DefaultResolver(name); addr != 0 {
			t.Fatalf("DefaultResolver(%q) = %#x, want 0", name, addr)
		}
	}
}
