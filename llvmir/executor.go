package llvmir

import (
	"sync"

	"github.com/kazan-3d/kazan-go/errs"

	"tinygo.org/x/go-llvm"
)

var nativeTargetOnce sync.Once

func initNativeTarget() {
	nativeTargetOnce.Do(func() {
		llvm.InitializeNativeTarget()
		llvm.InitializeNativeAsmPrinter()
		llvm.InitializeAllTargetInfos()
		llvm.InitializeAllTargets()
		llvm.InitializeAllTargetMCs()
		llvm.InitializeAllAsmParsers()
		llvm.InitializeAllAsmPrinters()
	})
}

// SymbolResolver answers address lookups for external symbols referenced by
// JIT'd code (the C standard library helpers a translated shader may call,
// e.g. sqrtf) that are not defined in the Module itself. It must return 0
// for anything outside its whitelist (spec.md §4.A: "closed whitelist,
// falling back to a null address for everything else").
type SymbolResolver func(name string) uintptr

// Executor owns one compiled Module's native code. It eagerly compiles
// every function in the module at construction time rather than lazily on
// first call, so that a RuntimeFailure surfaces at pipeline-creation time
// rather than mid-draw (spec.md §4.A, §4.H step 6).
//
// Mirrors google-gapid/core/codegen.Executor, generalized from the
// teacher's single fixed host target to any verified Module and adapted
// from MCJIT's lazy-by-default compilation to eager compilation of every
// defined function.
type Executor struct {
	engine   llvm.ExecutionEngine
	m        *Module
	resolver SymbolResolver
	mu       sync.Mutex
}

// NewExecutor verifies m and builds a JIT execution engine over it. Every
// defined function is compiled before NewExecutor returns.
func NewExecutor(m *Module, resolver SymbolResolver) (*Executor, error) {
	initNativeTarget()

	if resolver == nil {
		resolver = DefaultResolver
	}

	if err := m.Verify(); err != nil {
		return nil, err
	}

	opts := llvm.NewMCJITCompilerOptions()
	opts.SetMCJITOptimizationLevel(2)

	engine, err := llvm.NewMCJITCompiler(m.llvm, opts)
	if err != nil {
		return nil, errs.Runtimef("creating JIT execution engine: %v", err)
	}

	e := &Executor{engine: engine, m: m, resolver: resolver}

	for f := m.llvm.FirstFunction(); !f.IsNil(); f = llvm.NextFunction(f) {
		if f.IsDeclaration() {
			continue
		}
		if addr := e.engine.PointerToGlobal(f); addr == nil {
			return nil, errs.Runtimef("compiling function %q produced no native address", f.Name())
		}
	}

	return e, nil
}

// FunctionAddress returns the native entry-point address of a previously
// compiled, defined function.
func (e *Executor) FunctionAddress(name string) (uintptr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.m.LookupFunction(name)
	if f == nil {
		return 0, errs.Runtimef("no such function %q in compiled module", name)
	}
	return uintptr(e.engine.PointerToGlobal(f.llvm)), nil
}

// ResolveSymbol looks up an external symbol by name through the Executor's
// whitelist resolver.
//
// tinygo.org/x/go-llvm, like the teacher's llvm/bindings/go/llvm, does not
// expose a way to install a custom RTDyldMemoryManager or symbol-resolution
// callback on an MCJIT ExecutionEngine — that requires subclassing a C++
// type the cgo binding never wraps, and the teacher's own
// core/codegen.Executor has the identical gap (it builds the same
// llvm.NewMCJITCompiler and never calls anything resembling
// InstallLazyFunctionCreator or AddGlobalMapping). MCJIT therefore resolves
// any symbol a translated function calls, such as the libm helpers emitted
// for GLSL.std.450 lowering, through the process's own dynamic symbol table
// before this method ever runs; ResolveSymbol is reachable only from code
// that calls it directly (this package's tests, and any future caller that
// chooses to pre-check a symbol against the whitelist itself). Closing this
// gap for real would mean dropping MCJIT for the ORC v2 compile stack the
// original C++ core uses (llvm_wrapper/orc_compile_stack.cpp), which does
// expose a symbol-resolution hook — out of scope while on this binding.
func (e *Executor) ResolveSymbol(name string) uintptr {
	if e.resolver != nil {
		if addr := e.resolver(name); addr != 0 {
			return addr
		}
	}
	return 0
}

// Dispose releases the native code and the execution engine. The Module
// itself (and any Types it produced) must not be used after this call.
func (e *Executor) Dispose() {
	e.engine.Dispose()
}
