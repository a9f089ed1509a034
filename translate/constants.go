package translate

import (
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
)

// materializeConstant builds the native constant value for a module-scope
// SPIR-V constant, recursing through OpConstantComposite constituents.
// Results are memoized on the Translator so a constant referenced from
// multiple functions is only ever built once.
func (tr *Translator) materializeConstant(id int) (llvmir.Const, error) {
	if c, ok := tr.constCache[id]; ok {
		return c, nil
	}
	sc, err := tr.Ids.Constant(0, id)
	if err != nil {
		return llvmir.Const{}, err
	}
	ty, err := tr.Graph.Materialize(sc.Type)
	if err != nil {
		return llvmir.Const{}, err
	}

	var out llvmir.Const
	switch sc.Kind {
	case ConstantNull:
		out = tr.Module.ConstNull(ty)

	case ConstantScalar:
		switch {
		case llvmir.IsFloat(ty):
			if ty.TypeName() == "float64" {
				out = tr.Module.ConstFloat(ty, float64FromBits(sc.Bits))
			} else {
				out = tr.Module.ConstFloat(ty, float64(float32FromBits(sc.Bits)))
			}
		case llvmir.IsBool(ty) || llvmir.IsInteger(ty):
			out = tr.Module.ConstInt(ty, sc.Bits, llvmir.IsSignedInteger(ty))
		default:
			return llvmir.Const{}, errs.Translationf("scalar constant of unsupported type %v", ty)
		}

	case ConstantComposite:
		members := make([]llvmir.Const, len(sc.Constituents))
		for i, cid := range sc.Constituents {
			m, err := tr.materializeConstant(cid)
			if err != nil {
				return llvmir.Const{}, err
			}
			members[i] = m
		}
		switch {
		case llvmir.IsVector(ty):
			out = tr.Module.ConstVector(ty.(llvmir.Vector), members)
		case llvmir.IsStruct(ty):
			out = tr.Module.ConstStruct(ty.(*llvmir.Struct), members)
		default:
			el := ty
			if arr, ok := ty.(*llvmir.Array); ok {
				el = arr.Element
			}
			out = tr.Module.ConstArray(el, members)
		}

	default:
		return llvmir.Const{}, errs.Translationf("unknown constant kind for id %%%d", id)
	}

	tr.constCache[id] = out
	return out, nil
}

