// Package entrypoint synthesizes the host-ABI wrapper functions a pipeline
// calls into: vertex_entry drives the per-vertex loop and attribute fetch
// around a translated SPIR-V Vertex entry point, fragment_entry drives the
// color-output quantization around a translated Fragment entry point
// (spec.md §4.G). Neither wrapper touches SPIR-V directly; both work purely
// off the already-translated llvmir.Function and the Vulkan vertex-input
// state the pipeline was created with.
package entrypoint

import (
	"sort"

	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/translate"
	"github.com/kazan-3d/kazan-go/vkapi"
)

func ioStructOf(fn *llvmir.Function) (*llvmir.Struct, error) {
	if len(fn.Type.Signature.Parameters) != 1 {
		return nil, errs.Translationf("entry point %q does not take a single io_struct parameter", fn.Name)
	}
	ptrTy, ok := fn.Type.Signature.Parameters[0].(llvmir.Pointer)
	if !ok {
		return nil, errs.Translationf("entry point %q's sole parameter is not a pointer", fn.Name)
	}
	s, ok := ptrTy.Element.(*llvmir.Struct)
	if !ok {
		return nil, errs.Translationf("entry point %q's io_struct parameter is not a struct", fn.Name)
	}
	return s, nil
}

// pointerField resolves io_struct's "inputs_pointer"/"outputs_pointer"
// member to the struct type it points to (spec.md §3: io_struct holds
// pointers to separately allocated inputs_struct/outputs_struct, grounded on
// _examples/original_source/src/spirv_to_llvm/vertex_entry_point.cpp's
// inputs_pointer/outputs_pointer GEP members).
func pointerField(s *llvmir.Struct, name string) (*llvmir.Struct, error) {
	i := s.FieldIndex(name)
	if i < 0 {
		return nil, errs.Translationf("io_struct has no %q member", name)
	}
	ptrTy, ok := s.Fields()[i].Type.(llvmir.Pointer)
	if !ok {
		return nil, errs.Translationf("io_struct member %q is not a pointer", name)
	}
	f, ok := ptrTy.Element.(*llvmir.Struct)
	if !ok {
		return nil, errs.Translationf("io_struct member %q does not point to a struct", name)
	}
	return f, nil
}

func vertexFormatType(m *llvmir.Module, f vkapi.Format) (llvmir.Type, error) {
	switch f {
	case spirvbin.FormatR32G32B32Sfloat:
		return m.Types.Vector(m.Types.Float32, 3), nil
	case spirvbin.FormatR32G32B32A32Sfloat:
		return m.Types.Vector(m.Types.Float32, 4), nil
	default:
		return nil, errs.Unsupportedf("vertex format %v", f)
	}
}

// BuildVertexEntry synthesizes vertex_entry for one translated Vertex entry
// point (spec.md §4.G "Vertex entry point"). target and m must be the same
// ABI and module res.Function was translated into. The returned *llvmir.Struct
// is outputs_struct's native type: output_buffer is strided by this struct
// alone (spec.md §4.G steps 3/4/6, §4.H step 7), never by a combined record,
// so a Position built-in output — when a shader declares one — is just
// another member of it, the same as any Location-decorated output.
func BuildVertexEntry(m *llvmir.Module, target *abi.ABI, res *translate.EntryPointResult, vis *vkapi.PipelineVertexInputStateCreateInfo) (*llvmir.Function, *llvmir.Struct, error) {
	if res.EntryInfo.Model != spirvbin.ExecutionModelVertex {
		return nil, nil, errs.Translationf("%q is not a Vertex entry point", res.EntryInfo.Name)
	}

	ioStruct, err := ioStructOf(res.Function)
	if err != nil {
		return nil, nil, err
	}
	inputsNative, err := pointerField(ioStruct, "inputs_pointer")
	if err != nil {
		return nil, nil, err
	}
	outputsNative, err := pointerField(ioStruct, "outputs_pointer")
	if err != nil {
		return nil, nil, err
	}

	u32 := m.Types.Uint32
	u8ptr := m.Types.Pointer(m.Types.Uint8)
	bindingsTy := m.Types.Pointer(u8ptr)
	outputsPtrTy := m.Types.Pointer(outputsNative)

	fn := m.Function(m.Types.Void, "kazan_vertex_"+res.EntryInfo.Name, u32, u32, u32, u8ptr, bindingsTy, u8ptr)

	// Index non-builtin input slots by field name so the per-iteration loop
	// only has to walk the attribute table once per member, not rescan the
	// whole interface.
	type attributeSlot struct {
		fieldName string
		location  int
	}
	type builtinInputSlot struct {
		fieldName string
		builtIn   spirvbin.BuiltIn
	}
	var slots []attributeSlot
	var builtinSlots []builtinInputSlot
	for _, slot := range res.Interface.Slots {
		if slot.Side != "inputs" {
			continue
		}
		if slot.IsBuiltIn {
			builtinSlots = append(builtinSlots, builtinInputSlot{fieldName: slot.FieldName, builtIn: slot.BuiltIn})
			continue
		}
		slots = append(slots, attributeSlot{fieldName: slot.FieldName, location: slot.Location})
	}
	// Map iteration order is randomized; sort so two translations of the
	// same module emit identical IR (spec.md §8 property 1).
	sort.Slice(slots, func(i, j int) bool { return slots[i].location < slots[j].location })
	sort.Slice(builtinSlots, func(i, j int) bool { return builtinSlots[i].builtIn < builtinSlots[j].builtIn })

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

		start := b.Parameter(0)
		end := b.Parameter(1)
		instanceId := b.Parameter(2)
		outputBuffer := b.Parameter(3)
		bindings := b.Parameter(4)
		_ = b.Parameter(5) // uniforms: no descriptor-set binding model yet

		bindingPtrs := make(map[uint32]*llvmir.Value, len(vis.VertexBindings))
		for i, vb := range vis.VertexBindings {
			bindingPtrs[vb.Binding] = bindings.Offset(b.ConstScalar(u32, int64(i))).Load()
		}
		bindingStride := make(map[uint32]uint32, len(vis.VertexBindings))
		bindingRate := make(map[uint32]vkapi.VertexInputRate, len(vis.VertexBindings))
		for _, vb := range vis.VertexBindings {
			bindingStride[vb.Binding] = vb.Stride
			bindingRate[vb.Binding] = vb.InputRate
		}

		io := b.LocalZeroed("io", ioStruct)
		inputsLocal := b.LocalZeroed("inputs", inputsNative)
		outputsLocal := b.LocalZeroed("outputs", outputsNative)
		io.Index("inputs_pointer").Store(inputsLocal)
		io.Index("outputs_pointer").Store(outputsLocal)
		outBase := mustV(outputBuffer.Bitcast(outputsPtrTy))

		b.CountingLoop(start, end, func(vertexIndex *llvmir.Value) {
			for _, bs := range builtinSlots {
				var val *llvmir.Value
				switch bs.builtIn {
				case spirvbin.BuiltInVertexIndex:
					val = vertexIndex
				case spirvbin.BuiltInInstanceIndex:
					val = instanceId
				default:
					llvmirFailHelper(errs.Unsupportedf("unimplemented built-in input variable %v", bs.builtIn))
				}
				inputsLocal.Index(bs.fieldName).Store(val)
			}

			for _, s := range slots {
				var attr *vkapi.VertexInputAttributeDescription
				for i := range vis.VertexAttributes {
					if vis.VertexAttributes[i].Location == uint32(s.location) {
						if attr != nil {
							llvmirFailHelper(errs.Unsupportedf("multiple vertex attributes at Location %d", s.location))
						}
						attr = &vis.VertexAttributes[i]
					}
				}
				if attr == nil {
					llvmirFailHelper(errs.Translationf("no vertex attribute description at Location %d", s.location))
				}

				memberIdx := inputsNative.FieldIndex(s.fieldName)
				if memberIdx < 0 {
					llvmirFailHelper(errs.Translationf("inputs struct has no member %q", s.fieldName))
				}
				memberType := inputsNative.Fields()[memberIdx].Type

				formatType, ferr := vertexFormatType(m, attr.Format)
				if ferr != nil {
					llvmirFailHelper(ferr)
				}
				if formatType != memberType {
					llvmirFailHelper(errs.Translationf("vertex attribute at Location %d has format %v, shader input %q expects %v", s.location, attr.Format, s.fieldName, memberType))
				}

				base, ok := bindingPtrs[attr.Binding]
				if !ok {
					llvmirFailHelper(errs.Translationf("vertex attribute at Location %d references unknown binding %d", s.location, attr.Binding))
				}
				stride := bindingStride[attr.Binding]

				var elemPtr *llvmir.Value
				if stride == 0 {
					elemPtr = base
				} else {
					elementIndex := vertexIndex
					if bindingRate[attr.Binding] == vkapi.VertexInputRateInstance {
						elementIndex = instanceId
					}
					byteOffset := elementIndex.Mul(b.ConstScalar(u32, int64(stride)))
					if attr.Offset != 0 {
						byteOffset = byteOffset.Add(b.ConstScalar(u32, int64(attr.Offset)))
					}
					elemPtr = base.Offset(byteOffset)
				}

				val := mustV(elemPtr.Bitcast(m.Types.Pointer(formatType))).Load()
				inputsLocal.Index(s.fieldName).Store(val)
			}

			b.Call(res.Function, io)

			outBase.Offset(vertexIndex).Store(outputsLocal.Load())
		})
	})
	if err != nil {
		return nil, nil, err
	}
	if walkErr != nil {
		return nil, nil, walkErr
	}

	return fn, outputsNative, nil
}

func llvmirFailHelper(err error) { panic(buildFailureErr{err}) }

// buildFailureErr mirrors package translate's panic/recover convention for
// reporting an *errs.* error out of a deeply nested Builder callback.
type buildFailureErr struct{ err error }

// mustV is llvmirFailHelper's counterpart to package translate's must: it
// unwraps a (*Value, error) pair so call sites read as a plain expression,
// panicking through the same recover() Function.Build already unwinds.
func mustV(v *llvmir.Value, err error) *llvmir.Value {
	if err != nil {
		llvmirFailHelper(err)
	}
	return v
}
