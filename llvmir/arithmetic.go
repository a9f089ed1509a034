package llvmir

import "tinygo.org/x/go-llvm"

// ConstScalar builds a constant of a scalar (or per-element vector-splat)
// numeric type from an integer literal, used internally for things like
// loop increments.
func (b *Builder) ConstScalar(ty Type, v int64) *Value {
	scalar := ScalarOf(ty)
	var c llvm.Value
	if IsFloat(scalar) {
		c = llvm.ConstFloat(scalar.llvmTy(), float64(v))
	} else {
		c = llvm.ConstInt(scalar.llvmTy(), uint64(v), v < 0)
	}
	if vec, ok := ty.(Vector); ok {
		elems := make([]llvm.Value, vec.Count)
		for i := range elems {
			elems[i] = c
		}
		return b.val(ty, llvm.ConstVector(elems, false))
	}
	return b.val(ty, c)
}

// Zero returns the zero value of ty.
func (b *Builder) Zero(ty Type) *Value { return b.val(ty, llvm.ConstNull(ty.llvmTy())) }

// Not computes the boolean complement of v.
func (v *Value) Not() *Value {
	return v.b.val(v.ty, v.b.llvm.CreateNot(v.llvm, ""))
}

// BitwiseInvert computes the bitwise complement (~v) of an integer value.
func (v *Value) BitwiseInvert() *Value {
	return v.b.val(v.ty, v.b.llvm.CreateXor(v.llvm, llvm.ConstAllOnes(v.ty.llvmTy()), ""))
}

// Negate computes the arithmetic negation of a signed integer or float
// value, matching OpSNegate/OpFNegate.
func (v *Value) Negate() *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.b.val(v.ty, v.b.llvm.CreateFNeg(v.llvm, ""))
	}
	return v.b.val(v.ty, v.b.llvm.CreateNeg(v.llvm, ""))
}

type binOp func(b llvm.Builder, l, r llvm.Value, name string) llvm.Value

func (v *Value) binary(rhs *Value, iop, uop, fop binOp) *Value {
	scalar := ScalarOf(v.ty)
	switch {
	case IsFloat(scalar):
		return v.b.val(v.ty, fop(v.b.llvm, v.llvm, rhs.llvm, ""))
	case IsSignedInteger(scalar):
		return v.b.val(v.ty, iop(v.b.llvm, v.llvm, rhs.llvm, ""))
	default:
		return v.b.val(v.ty, uop(v.b.llvm, v.llvm, rhs.llvm, ""))
	}
}

// Add computes v + rhs, elementwise for vectors.
func (v *Value) Add(rhs *Value) *Value {
	return v.binary(rhs, llvm.Builder.CreateAdd, llvm.Builder.CreateAdd, llvm.Builder.CreateFAdd)
}

// Sub computes v - rhs, elementwise for vectors.
func (v *Value) Sub(rhs *Value) *Value {
	return v.binary(rhs, llvm.Builder.CreateSub, llvm.Builder.CreateSub, llvm.Builder.CreateFSub)
}

// Mul computes v * rhs, elementwise for vectors.
func (v *Value) Mul(rhs *Value) *Value {
	return v.binary(rhs, llvm.Builder.CreateMul, llvm.Builder.CreateMul, llvm.Builder.CreateFMul)
}

// Div computes v / rhs (OpSDiv/OpUDiv/OpFDiv), elementwise for vectors.
func (v *Value) Div(rhs *Value) *Value {
	return v.binary(rhs, llvm.Builder.CreateSDiv, llvm.Builder.CreateUDiv, llvm.Builder.CreateFDiv)
}

// Rem computes the truncating remainder (OpSRem/OpUMod/OpFRem): result
// takes the sign of the dividend.
func (v *Value) Rem(rhs *Value) *Value {
	return v.binary(rhs, llvm.Builder.CreateSRem, llvm.Builder.CreateURem, llvm.Builder.CreateFRem)
}

// Mod computes the flooring modulo (OpSMod): result takes the sign of the
// divisor. Lowered as: r = srem(a,b); if r!=0 && sign(r)!=sign(b) { r += b }.
func (v *Value) Mod(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		fail("Mod is only defined for integer operands, got %v", v.ty)
	}
	r := v.binary(rhs, llvm.Builder.CreateSRem, llvm.Builder.CreateURem, llvm.Builder.CreateFRem)
	if IsUnsignedInteger(ScalarOf(v.ty)) {
		return r // UMod and URem coincide.
	}
	zero := v.b.Zero(v.ty)
	rNonZero := v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateICmp(llvm.IntNE, r.llvm, zero.llvm, ""))
	rNeg := v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateICmp(llvm.IntSLT, r.llvm, zero.llvm, ""))
	bNeg := v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateICmp(llvm.IntSLT, rhs.llvm, zero.llvm, ""))
	signsDiffer := v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateXor(rNeg.llvm, bNeg.llvm, ""))
	needsAdjust := v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateAnd(rNonZero.llvm, signsDiffer.llvm, ""))
	adjusted := r.binary(rhs, llvm.Builder.CreateAdd, llvm.Builder.CreateAdd, llvm.Builder.CreateFAdd)
	return v.b.val(v.ty, v.b.llvm.CreateSelect(needsAdjust.llvm, adjusted.llvm, r.llvm, ""))
}

// And computes the bitwise AND of two integer/boolean values.
func (v *Value) And(rhs *Value) *Value {
	return v.b.val(v.ty, v.b.llvm.CreateAnd(v.llvm, rhs.llvm, ""))
}

// Or computes the bitwise OR of two integer/boolean values.
func (v *Value) Or(rhs *Value) *Value {
	return v.b.val(v.ty, v.b.llvm.CreateOr(v.llvm, rhs.llvm, ""))
}

// Xor computes the bitwise XOR of two integer/boolean values.
func (v *Value) Xor(rhs *Value) *Value {
	return v.b.val(v.ty, v.b.llvm.CreateXor(v.llvm, rhs.llvm, ""))
}

// Shl computes a logical left shift.
func (v *Value) Shl(rhs *Value) *Value {
	return v.b.val(v.ty, v.b.llvm.CreateShl(v.llvm, rhs.llvm, ""))
}

// Shr computes a right shift, arithmetic if v's scalar type is signed.
func (v *Value) Shr(rhs *Value) *Value {
	if IsSignedInteger(ScalarOf(v.ty)) {
		return v.b.val(v.ty, v.b.llvm.CreateAShr(v.llvm, rhs.llvm, ""))
	}
	return v.b.val(v.ty, v.b.llvm.CreateLShr(v.llvm, rhs.llvm, ""))
}

func (v *Value) icmp(rhs *Value, signed, unsigned llvm.IntPredicate) *Value {
	pred := unsigned
	if IsSignedInteger(ScalarOf(v.ty)) {
		pred = signed
	}
	return v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateICmp(pred, v.llvm, rhs.llvm, ""))
}

func (v *Value) fcmp(rhs *Value, pred llvm.FloatPredicate) *Value {
	return v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateFCmp(pred, v.llvm, rhs.llvm, ""))
}

// Equal reports value equality (OpIEqual/OpFOrdEqual).
func (v *Value) Equal(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.fcmp(rhs, llvm.FloatOEQ)
	}
	return v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateICmp(llvm.IntEQ, v.llvm, rhs.llvm, ""))
}

// NotEqual reports value inequality.
func (v *Value) NotEqual(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.fcmp(rhs, llvm.FloatONE)
	}
	return v.b.val(v.b.m.Types.Bool, v.b.llvm.CreateICmp(llvm.IntNE, v.llvm, rhs.llvm, ""))
}

// LessThan reports v < rhs.
func (v *Value) LessThan(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.fcmp(rhs, llvm.FloatOLT)
	}
	return v.icmp(rhs, llvm.IntSLT, llvm.IntULT)
}

// LessEqual reports v <= rhs.
func (v *Value) LessEqual(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.fcmp(rhs, llvm.FloatOLE)
	}
	return v.icmp(rhs, llvm.IntSLE, llvm.IntULE)
}

// GreaterThan reports v > rhs.
func (v *Value) GreaterThan(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.fcmp(rhs, llvm.FloatOGT)
	}
	return v.icmp(rhs, llvm.IntSGT, llvm.IntUGT)
}

// GreaterEqual reports v >= rhs.
func (v *Value) GreaterEqual(rhs *Value) *Value {
	if IsFloat(ScalarOf(v.ty)) {
		return v.fcmp(rhs, llvm.FloatOGE)
	}
	return v.icmp(rhs, llvm.IntSGE, llvm.IntUGE)
}

// Select chooses onTrue or onFalse based on a boolean value, matching
// OpSelect.
func (v *Value) Select(onTrue, onFalse *Value) *Value {
	return v.b.val(onTrue.ty, v.b.llvm.CreateSelect(v.llvm, onTrue.llvm, onFalse.llvm, ""))
}

// Min returns the smaller of v and rhs (ext.inst GLSL.std.450 FMin/SMin/UMin).
func (v *Value) Min(rhs *Value) *Value {
	return v.LessThan(rhs).Select(v, rhs)
}

// Max returns the larger of v and rhs (ext.inst GLSL.std.450 FMax/SMax/UMax).
func (v *Value) Max(rhs *Value) *Value {
	return v.GreaterThan(rhs).Select(v, rhs)
}

// Clamp returns v restricted to [lo, hi] (ext.inst GLSL.std.450 {F,S,U}Clamp,
// and the fragment entry point's output clamp, spec.md §4.G step 6).
func (v *Value) Clamp(lo, hi *Value) *Value {
	return v.Max(lo).Min(hi)
}
