package entrypoint

import (
	"testing"

	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/translate"
	"github.com/kazan-3d/kazan-go/vkapi"
)

// shaderStub stands in for a translated SPIR-V entry point: a native
// function taking a single io_struct pointer parameter, with a trivial body
// (these tests exercise the entry-point synthesizer, not code generation).
func shaderStub(m *llvmir.Module, name string, ioPtr llvmir.Type) *llvmir.Function {
	fn := m.Function(m.Types.Void, name, ioPtr)
	if err := fn.Build(func(b *llvmir.Builder) {}); err != nil {
		panic(err)
	}
	return fn
}

// vertexShaderModule builds a module with a
// "shader_io{inputs_pointer:*inputs{pos:vec3f} outputs_pointer:*outputs{loc0:vec4f}}"
// struct and a stub main function taking a pointer to it, mimicking what
// translateEntryPoint would have produced for a vertex shader with one
// Location-0 vec3f input and one Location-0 vec4f output.
func vertexShaderModule(t *testing.T) (*llvmir.Module, *llvmir.Function, *llvmir.Struct) {
	t.Helper()
	m := llvmir.NewModule("vtest", abi.LinuxX86_64)
	vec3f := m.Types.Vector(m.Types.Float32, 3)
	vec4f := m.Types.Vector(m.Types.Float32, 4)

	inputs := m.Types.DeclarePackedStruct("inputs")
	inputs.SetBody([]llvmir.Field{{Name: "pos", Type: vec3f}})
	outputs := m.Types.DeclarePackedStruct("outputs")
	outputs.SetBody([]llvmir.Field{{Name: "loc0", Type: vec4f}})
	io := m.Types.DeclarePackedStruct("shader_io")
	io.SetBody([]llvmir.Field{
		{Name: "inputs_pointer", Type: m.Types.Pointer(inputs)},
		{Name: "outputs_pointer", Type: m.Types.Pointer(outputs)},
	})

	fn := shaderStub(m, "main_vertex", m.Types.Pointer(io))
	return m, fn, outputs
}

func TestBuildVertexEntrySucceedsWithMatchingAttribute(t *testing.T) {
	m, fn, outputs := vertexShaderModule(t)

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelVertex, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{
			1: {Side: "inputs", FieldName: "pos", Location: 0},
		}},
	}
	vis := &vkapi.PipelineVertexInputStateCreateInfo{
		VertexBindings: []vkapi.VertexInputBindingDescription{
			{Binding: 0, Stride: 12, InputRate: vkapi.VertexInputRateVertex},
		},
		VertexAttributes: []vkapi.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: spirvbin.FormatR32G32B32Sfloat},
		},
	}

	entry, outputsNative, err := BuildVertexEntry(m, abi.LinuxX86_64, res, vis)
	if err != nil {
		t.Fatalf("BuildVertexEntry: %v", err)
	}
	if entry == nil || outputsNative == nil {
		t.Fatal("expected a non-nil entry function and outputs struct")
	}
	if outputsNative != outputs {
		t.Fatal("expected the returned struct to be outputs_struct itself, not a combined record")
	}
}

func TestBuildVertexEntryRejectsFormatMismatch(t *testing.T) {
	m, fn, _ := vertexShaderModule(t)

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelVertex, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{
			1: {Side: "inputs", FieldName: "pos", Location: 0},
		}},
	}
	vis := &vkapi.PipelineVertexInputStateCreateInfo{
		VertexBindings: []vkapi.VertexInputBindingDescription{
			{Binding: 0, Stride: 16, InputRate: vkapi.VertexInputRateVertex},
		},
		VertexAttributes: []vkapi.VertexInputAttributeDescription{
			// shader wants vec3f; attribute supplies vec4f.
			{Location: 0, Binding: 0, Format: spirvbin.FormatR32G32B32A32Sfloat},
		},
	}

	if _, _, err := BuildVertexEntry(m, abi.LinuxX86_64, res, vis); err == nil {
		t.Fatal("expected an error for a format/shader-input type mismatch")
	}
}

func TestBuildVertexEntryRejectsMissingAttribute(t *testing.T) {
	m, fn, _ := vertexShaderModule(t)

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelVertex, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{
			1: {Side: "inputs", FieldName: "pos", Location: 0},
		}},
	}
	vis := &vkapi.PipelineVertexInputStateCreateInfo{}

	if _, _, err := BuildVertexEntry(m, abi.LinuxX86_64, res, vis); err == nil {
		t.Fatal("expected an error for a Location with no matching attribute description")
	}
}

func TestBuildVertexEntryRejectsUnimplementedBuiltin(t *testing.T) {
	m := llvmir.NewModule("vtest_builtin", abi.LinuxX86_64)
	inputs := m.Types.DeclarePackedStruct("binputs")
	inputs.SetBody(nil)
	outputs := m.Types.DeclarePackedStruct("boutputs")
	outputs.SetBody([]llvmir.Field{{Name: "loc0", Type: m.Types.Vector(m.Types.Float32, 4)}})
	io := m.Types.DeclarePackedStruct("bshader_io")
	io.SetBody([]llvmir.Field{
		{Name: "inputs_pointer", Type: m.Types.Pointer(inputs)},
		{Name: "outputs_pointer", Type: m.Types.Pointer(outputs)},
	})
	fn := shaderStub(m, "main_vertex_builtin", m.Types.Pointer(io))

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelVertex, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{
			1: {Side: "inputs", FieldName: "unrecognized", IsBuiltIn: true, BuiltIn: spirvbin.BuiltIn(99)},
		}},
	}
	vis := &vkapi.PipelineVertexInputStateCreateInfo{}

	if _, _, err := BuildVertexEntry(m, abi.LinuxX86_64, res, vis); err == nil {
		t.Fatal("expected an error for an unrecognized built-in input variable")
	}
}

func fragmentShaderModule(t *testing.T, outputFields []llvmir.Field) (*llvmir.Module, *llvmir.Function) {
	t.Helper()
	m := llvmir.NewModule("ftest", abi.LinuxX86_64)
	inputs := m.Types.DeclarePackedStruct("finputs")
	inputs.SetBody(nil)
	outputs := m.Types.DeclarePackedStruct("foutputs")
	outputs.SetBody(outputFields)
	io := m.Types.DeclarePackedStruct("fragment_io")
	io.SetBody([]llvmir.Field{
		{Name: "inputs_pointer", Type: m.Types.Pointer(inputs)},
		{Name: "outputs_pointer", Type: m.Types.Pointer(outputs)},
	})

	fn := shaderStub(m, "main_fragment", m.Types.Pointer(io))
	return m, fn
}

func TestBuildFragmentEntrySucceedsWithVec4Output(t *testing.T) {
	m, fn := fragmentShaderModuleWithVec4Fields(t, []string{"loc0"})

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelFragment, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{}},
	}

	entry, err := BuildFragmentEntry(m, abi.LinuxX86_64, res)
	if err != nil {
		t.Fatalf("BuildFragmentEntry: %v", err)
	}
	if entry == nil {
		t.Fatal("expected a non-nil entry function")
	}
}

func TestBuildFragmentEntryRejectsSecondOutputLocation(t *testing.T) {
	m, fn := fragmentShaderModuleWithVec4Fields(t, []string{"loc0", "loc1"})

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelFragment, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{}},
	}

	if _, err := BuildFragmentEntry(m, abi.LinuxX86_64, res); err == nil {
		t.Fatal("expected an error for an output at a location other than 0")
	}
}

func TestBuildFragmentEntryRejectsBuiltinInput(t *testing.T) {
	m, fn := fragmentShaderModuleWithVec4Fields(t, []string{"loc0"})

	res := &translate.EntryPointResult{
		Function:  fn,
		EntryInfo: &translate.EntryPoint{Model: spirvbin.ExecutionModelFragment, Name: "main"},
		Interface: &translate.Interface{Slots: map[int]translate.IfaceSlot{
			1: {Side: "inputs", FieldName: "position", IsBuiltIn: true, BuiltIn: spirvbin.BuiltInPosition},
		}},
	}

	if _, err := BuildFragmentEntry(m, abi.LinuxX86_64, res); err == nil {
		t.Fatal("expected an error for a fragment shader declaring a built-in input")
	}
}

// fragmentShaderModuleWithVec4Fields builds an outputs_struct with one
// 4-wide f32 member per name in fieldNames, wrapped in the usual
// inputs_pointer/outputs_pointer io_struct.
func fragmentShaderModuleWithVec4Fields(t *testing.T, fieldNames []string) (*llvmir.Module, *llvmir.Function) {
	t.Helper()
	m := llvmir.NewModule("ftest", abi.LinuxX86_64)
	vec4f := m.Types.Vector(m.Types.Float32, 4)
	fields := make([]llvmir.Field, len(fieldNames))
	for i, name := range fieldNames {
		fields[i] = llvmir.Field{Name: name, Type: vec4f}
	}
	return fragmentShaderModule(t, fields)
}
