package translate

import (
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"
)

// resolveValue returns the runtime value bound to id: either an
// already-computed SSA value from this function, or a lazily-materialized
// module-scope constant.
func (tr *Translator) resolveValue(fs *funcState, id int) (*llvmir.Value, error) {
	if v, ok := fs.values[id]; ok {
		return v, nil
	}
	c, err := tr.materializeConstant(id)
	if err != nil {
		return nil, errs.Translationf("id %%%d is neither a computed value nor a constant: %v", id, err)
	}
	return fs.b.ConstValue(c), nil
}

// dispatch lowers one instruction from an entry point's function body. It
// runs inside Function.Build's callback. Helpers it calls report errors by
// panicking with buildFailureErr; dispatch recovers those and returns them
// as its ordinary error result, like the errors it returns directly.
func (tr *Translator) dispatch(fs *funcState, ins Instruction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if bf, ok := r.(buildFailureErr); ok {
				err = bf.err
				return
			}
			panic(r)
		}
	}()

	switch ins.Op {
	case spirvbin.OpLabel:
		id := mustWord(ins, 0)
		fs.b.SetBlock(fs.blocks[int(id)])

	case spirvbin.OpVariable:
		tyId, resId := mustWord(ins, 0), mustWord(ins, 1)
		ptrDesc := must(tr.Ids.Type(ins.Offset, int(tyId)))
		ptr := ptrDesc.(*typegraph.PointerDescriptor)
		elTy := must(tr.Graph.Materialize(ptr.Pointee))
		local := fs.b.Local(tr.Ids.Name(int(resId)), elTy)
		fs.values[int(resId)] = local
		fs.descs[int(resId)] = ptr.Pointee
		if len(ins.Operands) > 3 {
			init := must(tr.resolveValue(fs, int(ins.Operands[3])))
			local.Store(init)
		}

	case spirvbin.OpLoad:
		resId := mustWord(ins, 1)
		ptrId := mustWord(ins, 2)
		ptr := must(tr.resolveValue(fs, int(ptrId)))
		fs.values[int(resId)] = ptr.Load()

	case spirvbin.OpStore:
		ptrId, objId := mustWord(ins, 0), mustWord(ins, 1)
		ptr := must(tr.resolveValue(fs, int(ptrId)))
		obj := must(tr.resolveValue(fs, int(objId)))
		ptr.Store(obj)

	case spirvbin.OpAccessChain:
		resId, baseId := mustWord(ins, 1), mustWord(ins, 2)
		base := must(tr.resolveValue(fs, int(baseId)))
		baseDesc, ok := fs.descs[int(baseId)]
		if !ok {
			return errs.Translationf("OpAccessChain base %%%d has no known pointee type", baseId)
		}
		result, resultDesc, err := tr.walkAccessChain(fs, base, baseDesc, ins.Operands[3:], ins.Offset)
		if err != nil {
			return err
		}
		fs.values[int(resId)] = result
		fs.descs[int(resId)] = resultDesc

	case spirvbin.OpCompositeExtract:
		resId, compId := mustWord(ins, 1), mustWord(ins, 2)
		v := must(tr.resolveValue(fs, int(compId)))
		for _, idx := range ins.Operands[3:] {
			v = v.Extract(int(idx))
		}
		fs.values[int(resId)] = v

	case spirvbin.OpCompositeInsert:
		resId, objId, compId := mustWord(ins, 1), mustWord(ins, 2), mustWord(ins, 3)
		obj := must(tr.resolveValue(fs, int(objId)))
		comp := must(tr.resolveValue(fs, int(compId)))
		if len(ins.Operands) > 5 {
			return errs.Unsupportedf("OpCompositeInsert with more than one index")
		}
		fs.values[int(resId)] = comp.Insert(int(ins.Operands[4]), obj)

	case spirvbin.OpCompositeConstruct:
		resTyId, resId := mustWord(ins, 0), mustWord(ins, 1)
		ty := must(tr.Graph.Materialize(must(tr.Ids.Type(ins.Offset, int(resTyId)))))
		v := fs.b.Zero(ty)
		for i, cId := range ins.Operands[2:] {
			part := must(tr.resolveValue(fs, int(cId)))
			v = v.Insert(i, part)
		}
		fs.values[int(resId)] = v

	case spirvbin.OpBitcast:
		resTyId, resId, operandId := mustWord(ins, 0), mustWord(ins, 1), mustWord(ins, 2)
		ty := must(tr.Graph.Materialize(must(tr.Ids.Type(ins.Offset, int(resTyId)))))
		v := must(tr.resolveValue(fs, int(operandId)))
		fs.values[int(resId)] = must(v.Bitcast(ty))

	case spirvbin.OpConvertFToU, spirvbin.OpConvertFToS, spirvbin.OpConvertSToF, spirvbin.OpConvertUToF,
		spirvbin.OpUConvert, spirvbin.OpSConvert, spirvbin.OpFConvert:
		resTyId, resId, operandId := mustWord(ins, 0), mustWord(ins, 1), mustWord(ins, 2)
		ty := must(tr.Graph.Materialize(must(tr.Ids.Type(ins.Offset, int(resTyId)))))
		v := must(tr.resolveValue(fs, int(operandId)))
		fs.values[int(resId)] = v.Cast(ty)

	case spirvbin.OpSNegate, spirvbin.OpFNegate:
		resId, operandId := mustWord(ins, 1), mustWord(ins, 2)
		v := must(tr.resolveValue(fs, int(operandId)))
		fs.values[int(resId)] = v.Negate()

	case spirvbin.OpLogicalNot, spirvbin.OpNot:
		resId, operandId := mustWord(ins, 1), mustWord(ins, 2)
		v := must(tr.resolveValue(fs, int(operandId)))
		if ins.Op == spirvbin.OpLogicalNot {
			fs.values[int(resId)] = v.Not()
		} else {
			fs.values[int(resId)] = v.BitwiseInvert()
		}

	case spirvbin.OpIAdd, spirvbin.OpFAdd, spirvbin.OpISub, spirvbin.OpFSub, spirvbin.OpIMul, spirvbin.OpFMul,
		spirvbin.OpUDiv, spirvbin.OpSDiv, spirvbin.OpFDiv, spirvbin.OpUMod, spirvbin.OpSRem, spirvbin.OpSMod,
		spirvbin.OpFRem, spirvbin.OpFMod, spirvbin.OpBitwiseAnd, spirvbin.OpBitwiseOr, spirvbin.OpBitwiseXor,
		spirvbin.OpLogicalAnd, spirvbin.OpLogicalOr, spirvbin.OpLogicalEqual, spirvbin.OpLogicalNotEqual,
		spirvbin.OpShiftLeftLogical, spirvbin.OpShiftRightLogical, spirvbin.OpShiftRightArithmetic,
		spirvbin.OpIEqual, spirvbin.OpINotEqual, spirvbin.OpUGreaterThan, spirvbin.OpSGreaterThan,
		spirvbin.OpUGreaterThanEqual, spirvbin.OpSGreaterThanEqual, spirvbin.OpULessThan, spirvbin.OpSLessThan,
		spirvbin.OpULessThanEqual, spirvbin.OpSLessThanEqual, spirvbin.OpFOrdEqual, spirvbin.OpFOrdNotEqual,
		spirvbin.OpFOrdLessThan, spirvbin.OpFOrdGreaterThan, spirvbin.OpFOrdLessThanEqual, spirvbin.OpFOrdGreaterThanEqual:
		resId, aId, bId := mustWord(ins, 1), mustWord(ins, 2), mustWord(ins, 3)
		a := must(tr.resolveValue(fs, int(aId)))
		b := must(tr.resolveValue(fs, int(bId)))
		fs.values[int(resId)] = binaryOp(ins.Op, a, b)

	case spirvbin.OpSelect:
		resId, condId, aId, bId := mustWord(ins, 1), mustWord(ins, 2), mustWord(ins, 3), mustWord(ins, 4)
		cond := must(tr.resolveValue(fs, int(condId)))
		a := must(tr.resolveValue(fs, int(aId)))
		b := must(tr.resolveValue(fs, int(bId)))
		fs.values[int(resId)] = cond.Select(a, b)

	case spirvbin.OpPhi:
		resTyId, resId := mustWord(ins, 0), mustWord(ins, 1)
		ty := must(tr.Graph.Materialize(must(tr.Ids.Type(ins.Offset, int(resTyId)))))
		phi := fs.b.NewPhi(ty)
		fs.values[int(resId)] = phi.Value
		var pairs []phiOperand
		for w := 2; w+1 < len(ins.Operands); w += 2 {
			pairs = append(pairs, phiOperand{valueId: int(ins.Operands[w]), blockId: int(ins.Operands[w+1])})
		}
		fs.phis = append(fs.phis, pendingPhi{phi: phi, pairs: pairs})

	case spirvbin.OpBranch:
		target := mustWord(ins, 0)
		fs.b.Branch(fs.blocks[int(target)])

	case spirvbin.OpBranchConditional:
		condId, trueId, falseId := mustWord(ins, 0), mustWord(ins, 1), mustWord(ins, 2)
		cond := must(tr.resolveValue(fs, int(condId)))
		fs.b.CondBranch(cond, fs.blocks[int(trueId)], fs.blocks[int(falseId)])

	case spirvbin.OpSelectionMerge, spirvbin.OpLoopMerge:
		// Structured control-flow hints only; the block graph built from
		// OpBranch/OpBranchConditional/OpLabel already expresses the same
		// control flow natively.

	case spirvbin.OpReturn:
		fs.b.Return(nil)

	case spirvbin.OpReturnValue:
		valId := mustWord(ins, 0)
		v := must(tr.resolveValue(fs, int(valId)))
		fs.b.Return(v)

	case spirvbin.OpUnreachable:
		fs.b.Unreachable()

	case spirvbin.OpExtInst:
		return tr.dispatchExtInst(fs, ins)

	case spirvbin.OpFunctionCall:
		return errs.Unsupportedf("function calls within a shader")

	default:
		return errs.Unsupportedf("opcode %d", ins.Op)
	}
	return nil
}

// walkAccessChain resolves an OpAccessChain's index operand list against
// baseDesc, mapping each SPIR-V struct member index to its native (post
// filler-insertion) field index via the struct's computed StructLayout
// (spec.md §4.C), and inserting the extra ".value" step a stride-wrapped
// array element requires.
func (tr *Translator) walkAccessChain(fs *funcState, base *llvmir.Value, baseDesc typegraph.Descriptor, indexIds []uint32, word int) (*llvmir.Value, typegraph.Descriptor, error) {
	cur := base
	desc := baseDesc
	for _, idxId := range indexIds {
		c, err := tr.Ids.Constant(word, int(idxId))
		if err != nil {
			return nil, nil, errs.Unsupportedf("OpAccessChain with a non-constant index")
		}
		idx := int(c.Bits)

		switch d := desc.(type) {
		case *typegraph.StructDescriptor:
			native, ok := d.Layout().NativeIndexByID[idx]
			if !ok {
				return nil, nil, errs.Translationf("struct %q has no member %d", d.Name, idx)
			}
			cur = cur.Index(native)
			desc = d.Members[idx].Type

		case *typegraph.ArrayDescriptor:
			cur = cur.Index(idx)
			desc = d.Element
			if d.Stride != 0 {
				elTy, err := tr.Graph.Materialize(d.Element)
				if err != nil {
					return nil, nil, err
				}
				size, err := typegraph.SizeOf(tr.Target, elTy)
				if err != nil {
					return nil, nil, err
				}
				if size != d.Stride {
					cur = cur.Index("value")
				}
			}

		case *typegraph.VectorDescriptor:
			cur = cur.Index(idx)
			desc = d.Element

		default:
			return nil, nil, errs.Translationf("cannot index into a %v", desc.Kind())
		}
	}
	return cur, desc, nil
}

func binaryOp(op spirvbin.Op, a, b *llvmir.Value) *llvmir.Value {
	switch op {
	case spirvbin.OpIAdd, spirvbin.OpFAdd:
		return a.Add(b)
	case spirvbin.OpISub, spirvbin.OpFSub:
		return a.Sub(b)
	case spirvbin.OpIMul, spirvbin.OpFMul:
		return a.Mul(b)
	case spirvbin.OpUDiv, spirvbin.OpSDiv, spirvbin.OpFDiv:
		return a.Div(b)
	case spirvbin.OpUMod:
		return a.Rem(b)
	case spirvbin.OpSRem, spirvbin.OpFRem:
		return a.Rem(b)
	case spirvbin.OpSMod, spirvbin.OpFMod:
		return a.Mod(b)
	case spirvbin.OpBitwiseAnd, spirvbin.OpLogicalAnd:
		return a.And(b)
	case spirvbin.OpBitwiseOr, spirvbin.OpLogicalOr:
		return a.Or(b)
	case spirvbin.OpBitwiseXor:
		return a.Xor(b)
	case spirvbin.OpLogicalEqual, spirvbin.OpIEqual, spirvbin.OpFOrdEqual:
		return a.Equal(b)
	case spirvbin.OpLogicalNotEqual, spirvbin.OpINotEqual, spirvbin.OpFOrdNotEqual:
		return a.NotEqual(b)
	case spirvbin.OpShiftLeftLogical:
		return a.Shl(b)
	case spirvbin.OpShiftRightLogical, spirvbin.OpShiftRightArithmetic:
		return a.Shr(b)
	case spirvbin.OpUGreaterThan, spirvbin.OpSGreaterThan, spirvbin.OpFOrdGreaterThan:
		return a.GreaterThan(b)
	case spirvbin.OpUGreaterThanEqual, spirvbin.OpSGreaterThanEqual, spirvbin.OpFOrdGreaterThanEqual:
		return a.GreaterEqual(b)
	case spirvbin.OpULessThan, spirvbin.OpSLessThan, spirvbin.OpFOrdLessThan:
		return a.LessThan(b)
	case spirvbin.OpULessThanEqual, spirvbin.OpSLessThanEqual, spirvbin.OpFOrdLessThanEqual:
		return a.LessEqual(b)
	default:
		panic(buildFailureErr{errs.Unsupportedf("binary opcode %d", op)})
	}
}

func (tr *Translator) dispatchExtInst(fs *funcState, ins Instruction) error {
	setId := mustWord(ins, 2)
	if _, ok := tr.Ids.ExtInstSet(int(setId)); !ok {
		return errs.Unsupportedf("extended instruction set id %%%d", setId)
	}
	resId := mustWord(ins, 1)
	instrNum := spirvbin.ExtInstGLSLStd450(mustWord(ins, 3))
	args := make([]*llvmir.Value, 0, len(ins.Operands)-4)
	for _, id := range ins.Operands[4:] {
		args = append(args, must(tr.resolveValue(fs, int(id))))
	}

	switch instrNum {
	case spirvbin.GLSLFAbs, spirvbin.GLSLSAbs:
		zero := fs.b.Zero(args[0].Type())
		fs.values[int(resId)] = zero.LessThan(args[0]).Select(args[0], args[0].Negate())
	case spirvbin.GLSLFMin, spirvbin.GLSLUMin, spirvbin.GLSLSMin:
		fs.values[int(resId)] = args[0].Min(args[1])
	case spirvbin.GLSLFMax, spirvbin.GLSLUMax, spirvbin.GLSLSMax:
		fs.values[int(resId)] = args[0].Max(args[1])
	case spirvbin.GLSLFClamp, spirvbin.GLSLUClamp, spirvbin.GLSLSClamp:
		fs.values[int(resId)] = args[0].Clamp(args[1], args[2])
	default:
		return errs.Unsupportedf("GLSL.std.450 instruction %d", instrNum)
	}
	return nil
}

func mustWord(ins Instruction, i int) uint32 {
	w, err := ins.Word(i)
	if err != nil {
		llvmirFail(err)
	}
	return w
}

func must[T any](v T, err error) T {
	if err != nil {
		llvmirFail(err)
	}
	return v
}
