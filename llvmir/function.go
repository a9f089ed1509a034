package llvmir

import (
	"github.com/kazan-3d/kazan-go/errs"

	"tinygo.org/x/go-llvm"
)

// Function is a callable, native function declared in a Module.
type Function struct {
	Name       string
	Type       *FunctionType
	paramNames []string
	llvm       llvm.Value
	m          *Module
	built      bool
}

func (f *Function) String() string { return f.Type.Signature.string(f.Name) }

// SetParameterNames assigns debug names to the function's parameters.
func (f *Function) SetParameterNames(names ...string) *Function {
	f.paramNames = names
	return f
}

// LinkPrivate gives the function internal (non-exported) linkage. Used by
// the translator (translate.translateEntryPoint) for the translated SPIR-V
// entry function, which is
// only ever called from the synthesized vertex/fragment wrapper in the same
// module (spec.md §4.G).
func (f *Function) LinkPrivate() *Function {
	f.llvm.SetLinkage(llvm.PrivateLinkage)
	return f
}

// Build calls cb with a Builder positioned at the function's entry block.
// A failure raised inside cb through the builder's fail() is recovered and
// returned as a TranslationFailure. If cb leaves the last block
// unterminated, a void function gets an implicit return; a non-void
// function makes Build return a TranslationFailure.
func (f *Function) Build(cb func(*Builder)) (err error) {
	if f.built {
		return errs.Translationf("function %q already built", f.Name)
	}
	f.built = true

	lb := f.m.ctx.NewBuilder()
	defer lb.Dispose()

	entry := f.m.ctx.AddBasicBlock(f.llvm, "entry")
	b := &Builder{
		function: f,
		params:   make([]*Value, len(f.Type.Signature.Parameters)),
		entry:    entry,
		llvm:     lb,
		m:        f.m,
	}
	lb.SetInsertPointAtEnd(entry)

	for i, p := range f.llvm.Params() {
		b.params[i] = b.val(f.Type.Signature.Parameters[i], p)
		if i < len(f.paramNames) {
			b.params[i].SetName(f.paramNames[i])
		}
	}

	defer func() {
		if r := recover(); r != nil {
			if bf, ok := r.(buildFailure); ok {
				err = errs.Translationf("building function %q: %s", f.Name, string(bf))
				return
			}
			panic(r)
		}
	}()

	cb(b)

	if !b.IsBlockTerminated() {
		if f.Type.Signature.Result == f.m.Types.Void {
			lb.CreateRetVoid()
		} else {
			return errs.Translationf("function %q falls off the end without returning a value", f.Name)
		}
	}

	return nil
}
