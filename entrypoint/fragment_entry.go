package entrypoint

import (
	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/translate"
)

// BuildFragmentEntry synthesizes fragment_entry for one translated Fragment
// entry point (spec.md §4.G "Fragment entry point"). Only a single
// Location-0 4-wide f32 output is implemented; any other output location, or
// any built-in input variable, is refused (the built-in-input gap is
// inherited straight from the shader-interface assembler, spec.md §9).
func BuildFragmentEntry(m *llvmir.Module, target *abi.ABI, res *translate.EntryPointResult) (*llvmir.Function, error) {
	if res.EntryInfo.Model != spirvbin.ExecutionModelFragment {
		return nil, errs.Translationf("%q is not a Fragment entry point", res.EntryInfo.Name)
	}

	ioStruct, err := ioStructOf(res.Function)
	if err != nil {
		return nil, err
	}
	inputsNative, err := pointerField(ioStruct, "inputs_pointer")
	if err != nil {
		return nil, err
	}
	outputsNative, err := pointerField(ioStruct, "outputs_pointer")
	if err != nil {
		return nil, err
	}

	colorField := "loc0"
	for _, slot := range res.Interface.Slots {
		if slot.IsBuiltIn {
			return nil, errs.Unsupportedf("unimplemented built-in interface variable %v", slot.BuiltIn)
		}
		if slot.Side == "outputs" && slot.Location == 0 {
			colorField = slot.FieldName
		}
	}

	colorIdx := outputsNative.FieldIndex(colorField)
	if colorIdx < 0 {
		return nil, errs.Translationf("fragment shader %q has no output at Location 0", res.EntryInfo.Name)
	}
	if len(outputsNative.Fields()) != 1 {
		return nil, errs.Unsupportedf("fragment output location other than 0")
	}
	vec4f := m.Types.Vector(m.Types.Float32, 4)
	if outputsNative.Fields()[colorIdx].Type != vec4f {
		return nil, errs.Translationf("fragment output at Location 0 must be a 4-wide f32 vector")
	}

	u32 := m.Types.Uint32
	u32ptr := m.Types.Pointer(u32)
	u8vec4 := m.Types.Vector(m.Types.Uint8, 4)

	fn := m.Function(m.Types.Void, "kazan_fragment_"+res.EntryInfo.Name, u32ptr)

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

		colorAttachmentPixel := b.Parameter(0)

		io := b.LocalZeroed("io", ioStruct)
		inputsLocal := b.LocalZeroed("inputs", inputsNative)
		outputsLocal := b.LocalZeroed("outputs", outputsNative)
		io.Index("inputs_pointer").Store(inputsLocal)
		io.Index("outputs_pointer").Store(outputsLocal)
		b.Call(res.Function, io)

		color := outputsLocal.Index(colorField).Load()

		zero := b.ConstScalar(vec4f, 0)
		one := b.ConstScalar(vec4f, 1)
		clamped := color.Clamp(zero, one)

		// nextafterf(256.0f, -1): the largest float32 strictly below 256,
		// so the truncating multiply below never produces 256 for an input
		// of exactly 1.0 (spec.md §4.G step 7).
		const nextafter256 = 255.99998474121094
		lane := m.ConstFloat(m.Types.Float32, nextafter256)
		scale := b.ConstValue(m.ConstVector(vec4f, []llvmir.Const{lane, lane, lane, lane}))
		scaled := clamped.Mul(scale)
		quantized := scaled.TruncateToUint32()
		narrowed := quantized.Cast(u8vec4)
		pixel := mustV(narrowed.Bitcast(u32))

		colorAttachmentPixel.Store(pixel)
	})
	if err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}

	return fn, nil
}
