package llvmir

import (
	"fmt"

	"tinygo.org/x/go-llvm"
)

// IndexOrName is either an int member/element index or a string field name.
type IndexOrName interface{}

// Builder constructs the body of one Function. Mirrors
// google-gapid/core/codegen.Builder's block-management helpers (If/While/
// CountingLoop/Switch). The entry-point synthesizer builds its vertex loop
// with CountingLoop; the two-pass translator emits SPIR-V control flow
// through NewBlock/SetBlock/Branch/CondBranch.
type Builder struct {
	function *Function
	params   []*Value
	entry    llvm.BasicBlock
	llvm     llvm.Builder
	m        *Module
}

// buildFailure is panicked by fail() and recovered in Function.Build.
type buildFailure string

func fail(format string, args ...interface{}) {
	panic(buildFailure(fmt.Sprintf(format, args...)))
}

// Module returns the module this builder is emitting into.
func (b *Builder) Module() *Module { return b.m }

// ConstValue lifts a module-level Const into a usable *Value at the
// current insertion point.
func (b *Builder) ConstValue(c Const) *Value { return b.val(c.Type, c.llvm) }

// GlobalValue returns a usable pointer *Value for a module-level Global.
func (b *Builder) GlobalValue(g Global) *Value { return b.val(g.Type, g.llvm) }

// Parameter returns the i'th function parameter.
func (b *Builder) Parameter(i int) *Value { return b.params[i] }

// Local declares a stack allocation in the function's entry block (SPIR-V
// Function-storage OpVariable, spec.md §4.E).
func (b *Builder) Local(name string, ty Type) *Value {
	cur := b.llvm.GetInsertBlock()
	b.llvm.SetInsertPoint(b.entry, b.entry.FirstInstruction())
	alloca := b.llvm.CreateAlloca(ty.llvmTy(), name)
	b.llvm.SetInsertPointAtEnd(cur)
	return b.val(b.m.Types.Pointer(ty), alloca)
}

// LocalZeroed declares and zero-initializes a stack allocation.
func (b *Builder) LocalZeroed(name string, ty Type) *Value {
	local := b.Local(name, ty)
	b.llvm.CreateStore(llvm.ConstNull(ty.llvmTy()), local.llvm)
	return local
}

// Call invokes f with the given arguments.
func (b *Builder) Call(f *Function, args ...*Value) *Value {
	if got, want := len(args), len(f.Type.Signature.Parameters); got != want {
		fail("call to %q: got %d arguments, want %d", f.Name, got, want)
	}
	vals := make([]llvm.Value, len(args))
	for i, a := range args {
		vals[i] = a.llvm
	}
	name := ""
	if f.Type.Signature.Result != b.m.Types.Void {
		name = f.Name + "_result"
	}
	return b.val(f.Type.Signature.Result, b.llvm.CreateCall(f.llvm, vals, name))
}

// Return terminates the current block with a return of val (or a bare
// return if val is nil, for a void-returning function).
func (b *Builder) Return(val *Value) {
	if val == nil {
		b.llvm.CreateRetVoid()
		return
	}
	b.llvm.CreateRet(val.llvm)
}

// IsBlockTerminated reports whether the current block already ends in a
// terminator instruction; emitting anything after a terminator is illegal
// IR (spec.md §4.E basic-block state machine).
func (b *Builder) IsBlockTerminated() bool {
	return !b.llvm.GetInsertBlock().LastInstruction().IsATerminatorInst().IsNil()
}

func (b *Builder) setInsertPointAtEnd(block llvm.BasicBlock) {
	b.llvm.SetInsertPointAtEnd(block)
}

func (b *Builder) block(block, next llvm.BasicBlock, f func()) {
	b.setInsertPointAtEnd(block)
	f()
	if !next.IsNil() && !b.IsBlockTerminated() {
		b.llvm.CreateBr(next)
	}
}

// If builds a one-armed if statement.
func (b *Builder) If(cond *Value, onTrue func()) { b.IfElse(cond, onTrue, nil) }

// IfElse builds a two-armed if/else statement.
func (b *Builder) IfElse(cond *Value, onTrue, onFalse func()) {
	trueBlock := b.m.ctx.AddBasicBlock(b.function.llvm, "if_true")
	var falseBlock llvm.BasicBlock
	if onFalse != nil {
		falseBlock = b.m.ctx.AddBasicBlock(b.function.llvm, "if_false")
	}
	end := b.m.ctx.AddBasicBlock(b.function.llvm, "end_if")
	if onFalse == nil {
		falseBlock = end
	}

	b.llvm.CreateCondBr(cond.llvm, trueBlock, falseBlock)
	b.block(trueBlock, end, onTrue)
	if onFalse != nil {
		b.block(falseBlock, end, onFalse)
	}
	b.setInsertPointAtEnd(end)
}

// While builds: while test() { loop() }
func (b *Builder) While(test func() *Value, loop func()) {
	testBlock := b.m.ctx.AddBasicBlock(b.function.llvm, "while_test")
	loopBlock := b.m.ctx.AddBasicBlock(b.function.llvm, "while_loop")
	exit := b.m.ctx.AddBasicBlock(b.function.llvm, "while_exit")

	b.llvm.CreateBr(testBlock)
	b.block(testBlock, llvm.BasicBlock{}, func() {
		cond := test()
		if !b.IsBlockTerminated() {
			b.llvm.CreateCondBr(cond.llvm, loopBlock, exit)
		}
	})
	b.block(loopBlock, testBlock, loop)
	b.setInsertPointAtEnd(exit)
}

// CountingLoop builds the vertex-loop driver shape of spec.md §4.G step 4:
//
//	for i := start; i < end; i++ { body(i) }
//
// constructed with an explicit condition check before entry so start==end
// runs the body zero times, and a phi node for i.
func (b *Builder) CountingLoop(start, end *Value, body func(i *Value)) {
	ty := start.Type()
	one := b.ConstScalar(ty, 1)

	preheader := b.llvm.GetInsertBlock()
	testBlock := b.m.ctx.AddBasicBlock(b.function.llvm, "loop_test")
	bodyBlock := b.m.ctx.AddBasicBlock(b.function.llvm, "loop_body")
	exit := b.m.ctx.AddBasicBlock(b.function.llvm, "loop_exit")

	b.llvm.CreateBr(testBlock)

	b.setInsertPointAtEnd(testBlock)
	phi := b.llvm.CreatePHI(ty.llvmTy(), "loop_index")
	phi.AddIncoming([]llvm.Value{start.llvm}, []llvm.BasicBlock{preheader})
	index := b.val(ty, phi)
	cond := b.val(b.m.Types.Bool, b.llvm.CreateICmp(llvm.IntULT, phi, end.llvm, "loop_cond"))
	b.llvm.CreateCondBr(cond.llvm, bodyBlock, exit)

	b.setInsertPointAtEnd(bodyBlock)
	body(index)
	if !b.IsBlockTerminated() {
		next := b.llvm.CreateAdd(phi, one.llvm, "loop_index_next")
		phi.AddIncoming([]llvm.Value{next}, []llvm.BasicBlock{b.llvm.GetInsertBlock()})
		b.llvm.CreateBr(testBlock)
	}

	b.setInsertPointAtEnd(exit)
}

// SwitchCase is one labeled case of a Switch.
type SwitchCase struct {
	Values []int64
	Block  func()
}

// Switch builds a multi-way branch over an integer selector. The
// translator does not use it: its dispatch refuses OpSwitch as Unsupported.
func (b *Builder) Switch(selector *Value, cases []SwitchCase, defaultCase func()) {
	def := b.m.ctx.AddBasicBlock(b.function.llvm, "switch_default")
	end := b.m.ctx.AddBasicBlock(b.function.llvm, "switch_end")

	sw := b.llvm.CreateSwitch(selector.llvm, def, len(cases))
	for _, c := range cases {
		block := b.m.ctx.AddBasicBlock(b.function.llvm, "switch_case")
		for _, v := range c.Values {
			sw.AddCase(llvm.ConstInt(selector.llvm.Type(), uint64(v), true), block)
		}
		b.block(block, end, c.Block)
	}

	if defaultCase != nil {
		b.block(def, end, defaultCase)
	} else {
		b.block(def, end, func() { b.llvm.CreateUnreachable() })
	}

	b.setInsertPointAtEnd(end)
}

// Branch unconditionally jumps to a block created and filled by body.
// Exposed for the translator's OpBranch/OpLabel handling, where blocks are
// created lazily as labels are encountered rather than structured by this
// package.
func (b *Builder) Branch(target llvm.BasicBlock) { b.llvm.CreateBr(target) }

// NewBlock creates (but does not move the insertion point to) a new basic
// block in the current function, named hint.
func (b *Builder) NewBlock(hint string) llvm.BasicBlock {
	return b.m.ctx.AddBasicBlock(b.function.llvm, hint)
}

// SetBlock moves the insertion point to block.
func (b *Builder) SetBlock(block llvm.BasicBlock) { b.setInsertPointAtEnd(block) }

// Block returns the block currently being built into.
func (b *Builder) Block() llvm.BasicBlock { return b.llvm.GetInsertBlock() }

// EntryBlock returns the function's entry block.
func (b *Builder) EntryBlock() llvm.BasicBlock { return b.entry }

// CondBranch conditionally jumps to one of two already-created blocks,
// used by the translator's OpBranchConditional handling.
func (b *Builder) CondBranch(cond *Value, onTrue, onFalse llvm.BasicBlock) {
	b.llvm.CreateCondBr(cond.llvm, onTrue, onFalse)
}

// Unreachable marks the current point as not reachable, used by the
// translator to lower OpUnreachable.
func (b *Builder) Unreachable() { b.llvm.CreateUnreachable() }

// Phi is an SSA phi node being incrementally filled in with predecessor
// values, matching SPIR-V's OpPhi.
type Phi struct {
	*Value
	phi llvm.Value
}

// NewPhi creates a phi node of the given type at the current insertion
// point.
func (b *Builder) NewPhi(ty Type) *Phi {
	p := b.llvm.CreatePHI(ty.llvmTy(), "")
	return &Phi{Value: b.val(ty, p), phi: p}
}

// AddIncoming records that control reaching this phi from block carries
// value val.
func (p *Phi) AddIncoming(val *Value, block llvm.BasicBlock) {
	p.phi.AddIncoming([]llvm.Value{val.llvm}, []llvm.BasicBlock{block})
}
