package translate

import (
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"

	"tinygo.org/x/go-llvm"
)

// funcState is the per-function working state of generate_code: the label
// id -> native block map (pre-populated so forward branches can reference
// a not-yet-built block), the id -> bound runtime value map, and the
// OpPhi nodes whose incoming edges are resolved only after every
// instruction in the function has been walked once (spec.md §4.E: a
// back-edge phi operand may name a value or block that is only defined
// later in the lexical instruction stream).
type funcState struct {
	b      *llvmir.Builder
	blocks map[int]llvm.BasicBlock
	values map[int]*llvmir.Value
	descs  map[int]typegraph.Descriptor
	phis   []pendingPhi
}

type pendingPhi struct {
	phi   *llvmir.Phi
	pairs []phiOperand
}

type phiOperand struct {
	valueId int
	blockId int
}

func entryFuncName(ep *EntryPoint) string {
	return "kazan_main_" + ep.Model.String() + "_" + ep.Name
}

// translateEntryPoint builds the native function implementing one SPIR-V
// entry point. io_struct holds inputs_pointer/outputs_pointer members
// pointing at the separately allocated inputs_struct/outputs_struct
// (spec.md §3), and the function's sole parameter is a pointer to io_struct
// (spec.md §4.G step 7); a recognized built-in, like any Location-decorated
// interface variable, is simply a member of inputs_struct/outputs_struct
// (spec.md §4.G step 5), not an out-of-band parameter.
func (tr *Translator) translateEntryPoint(instrs []Instruction, ep *EntryPoint, iface *Interface) (*llvmir.Function, error) {
	fi, err := tr.Ids.Function(0, ep.FunctionId)
	if err != nil {
		return nil, err
	}

	ioDesc := &typegraph.StructDescriptor{
		Name: ep.Name + "_io",
		Members: []typegraph.StructMember{
			{Name: "inputs_pointer", Type: &typegraph.PointerDescriptor{Pointee: iface.Inputs}},
			{Name: "outputs_pointer", Type: &typegraph.PointerDescriptor{Pointee: iface.Outputs}},
		},
	}
	ioNative, err := tr.Graph.Materialize(ioDesc)
	if err != nil {
		return nil, err
	}

	fn := tr.Module.Function(tr.Module.Types.Void, entryFuncName(ep), tr.Module.Types.Pointer(ioNative))
	fn.LinkPrivate()

	body, err := sliceFunctionBody(instrs, fi.FirstWord)
	if err != nil {
		return nil, err
	}

	var walkErr error
	err = fn.Build(func(b *llvmir.Builder) {
		defer func() {
			if r := recover(); r != nil {
				if bf, ok := r.(buildFailureErr); ok {
					walkErr = bf.err
					return
				}
				panic(r)
			}
		}()

		fs := &funcState{
			b:      b,
			blocks: map[int]llvm.BasicBlock{},
			values: map[int]*llvmir.Value{},
			descs:  map[int]typegraph.Descriptor{},
		}

		ioPtr := b.Parameter(0)
		inputsPtr := ioPtr.Index("inputs_pointer").Load()
		outputsPtr := ioPtr.Index("outputs_pointer").Load()

		for _, id := range ep.InterfaceIds {
			slot, ok := iface.Slots[id]
			if !ok {
				continue
			}
			base := inputsPtr
			if slot.Side == "outputs" {
				base = outputsPtr
			}
			fs.values[id] = base.Index(slot.FieldName)
			if v, ok := tr.Ids.Variable(id); ok {
				fs.descs[id] = v.PointeeType
			}
		}

		for _, ins := range body {
			if ins.Op == spirvbin.OpLabel {
				id, _ := ins.Word(0)
				fs.blocks[int(id)] = b.NewBlock(labelName(tr, int(id)))
			}
		}

		for _, ins := range body {
			if err := tr.dispatch(fs, ins); err != nil {
				llvmirFail(err)
			}
		}

		for _, pp := range fs.phis {
			for _, op := range pp.pairs {
				val, err := tr.resolveValue(fs, op.valueId)
				if err != nil {
					llvmirFail(err)
				}
				block, ok := fs.blocks[op.blockId]
				if !ok {
					llvmirFail(errs.Translationf("OpPhi refers to unknown block %%%d", op.blockId))
				}
				pp.phi.AddIncoming(val, block)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}

	return fn, nil
}

func labelName(tr *Translator, id int) string {
	if n := tr.Ids.Name(id); n != "" {
		return n
	}
	return "block"
}

func sliceFunctionBody(instrs []Instruction, firstWord int) ([]Instruction, error) {
	start := -1
	for i, ins := range instrs {
		if ins.Offset == firstWord {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, errs.Translationf("could not locate OpFunction at word %d", firstWord)
	}
	depth := 0
	for i := start; i < len(instrs); i++ {
		switch instrs[i].Op {
		case spirvbin.OpFunction:
			depth++
		case spirvbin.OpFunctionEnd:
			depth--
			if depth == 0 {
				return instrs[start+1 : i], nil
			}
		}
	}
	return nil, errs.Translationf("OpFunction at word %d has no matching OpFunctionEnd", firstWord)
}

// buildFailureErr lets dispatch report an *errs.* error through the same
// recover()-based unwind Function.Build already uses for llvmir-internal
// invariant violations, keeping one error-reporting path out of the
// translator's instruction loop instead of threading an error return
// through every helper the callback tree calls.
type buildFailureErr struct{ err error }

func llvmirFail(err error) { panic(buildFailureErr{err}) }
