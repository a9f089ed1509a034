// Package pipeline assembles a VkGraphicsPipelineCreateInfo into a compiled,
// callable graphics pipeline: one LLVM context per pipeline, one translated
// module per shader stage, a shared JIT stack over all of them, and the
// vertex/fragment entry-point addresses the rasterizer dispatches through
// (spec.md §4.H). Mirrors the way google-gapid/gapis/api/executor wires a
// codegen.Module into a codegen.Executor, generalized from one compute
// kernel to a multi-stage graphics pipeline.
package pipeline

import (
	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/entrypoint"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/translate"
	"github.com/kazan-3d/kazan-go/typegraph"
	"github.com/kazan-3d/kazan-go/vkapi"
)

// GraphicsPipeline owns the JIT stack backing one compiled pipeline. It
// exclusively owns that stack: Dispose frees the native code and makes
// VertexEntryAddress/FragmentEntryAddress immediately invalid (spec.md §5
// "destroying the pipeline frees the native code and invalidates the
// function pointers").
type GraphicsPipeline struct {
	executors []*llvmir.Executor

	vertexAddr   uintptr
	fragmentAddr uintptr

	// VertexOutputStructSize is the native ABI size of outputs_struct, the
	// vertex shader's assembled Location/BuiltIn-decorated output struct,
	// under the target data layout (spec.md §4.H step 7; §4.G steps 3/4/6:
	// output_buffer is strided by outputs_struct alone). The rasterizer
	// strides its varyings buffer by this value.
	VertexOutputStructSize int
}

// stageResult is what stage translation + entry-point synthesis produces
// for one VkPipelineShaderStageCreateInfo, before the shared Executor is
// built.
type stageResult struct {
	model         spirvbin.ExecutionModel
	module        *llvmir.Module
	entryFn       *llvmir.Function
	outputsNative *llvmir.Struct // only set for the vertex stage
}

// Create runs spec.md §4.H's seven-step pipeline assembly algorithm against
// info, targeting target. resolver is handed to each stage's
// llvmir.Executor (nil selects llvmir.DefaultResolver); MCJIT does not
// consult it when linking the stages' code (see Executor.ResolveSymbol).
func Create(info *vkapi.GraphicsPipelineCreateInfo, target *abi.ABI, resolver llvmir.SymbolResolver) (*GraphicsPipeline, error) {
	if info.SType != vkapi.StructureTypeGraphicsPipelineCreateInfo {
		return nil, errs.Translationf("GraphicsPipelineCreateInfo.SType is not VK_STRUCTURE_TYPE_GRAPHICS_PIPELINE_CREATE_INFO")
	}
	if info.Flags&vkapi.PipelineCreateDerivativeBit != 0 {
		return nil, errs.Unsupportedf("derivative pipeline")
	}
	if len(info.Stages) == 0 {
		return nil, errs.Translationf("pipeline declares no shader stages")
	}

	var results []stageResult
	var haveVertex bool

	for _, stage := range info.Stages {
		if stage.SType != vkapi.StructureTypePipelineShaderStageCreateInfo {
			return nil, errs.Translationf("PipelineShaderStageCreateInfo.SType is not VK_STRUCTURE_TYPE_PIPELINE_SHADER_STAGE_CREATE_INFO")
		}
		model, ok := stage.Stage.ExecutionModel()
		if !ok {
			return nil, errs.Unsupportedf("shader stage %v", stage.Stage)
		}
		if stage.Module == nil {
			return nil, errs.Translationf("stage %v has no shader module", stage.Stage)
		}
		if stage.Module.SType != vkapi.StructureTypeShaderModuleCreateInfo {
			return nil, errs.Translationf("ShaderModuleCreateInfo.SType is not VK_STRUCTURE_TYPE_SHADER_MODULE_CREATE_INFO")
		}
		if len(stage.Module.Code)%4 != 0 {
			return nil, errs.Parserf(0, "shader module codeSize %d is not a multiple of 4", len(stage.Module.Code))
		}

		tr, epResults, err := translate.Translate("kazan_stage_"+stage.Stage.String(), stage.Module.Code, target)
		if err != nil {
			return nil, err
		}
		ep, err := translate.EntryPoint(epResults, model, stage.Name)
		if err != nil {
			return nil, err
		}
		if err := tr.Module.Verify(); err != nil {
			return nil, err
		}

		sr := stageResult{model: model, module: tr.Module}

		switch model {
		case spirvbin.ExecutionModelVertex:
			if info.VertexInputState == nil {
				return nil, errs.Translationf("pipeline has a Vertex stage but no VkPipelineVertexInputStateCreateInfo")
			}
			fn, outputsNative, err := entrypoint.BuildVertexEntry(tr.Module, target, ep, info.VertexInputState)
			if err != nil {
				return nil, err
			}
			sr.entryFn = fn
			sr.outputsNative = outputsNative
			haveVertex = true

		case spirvbin.ExecutionModelFragment:
			fn, err := entrypoint.BuildFragmentEntry(tr.Module, target, ep)
			if err != nil {
				return nil, err
			}
			sr.entryFn = fn

		default:
			// vkapi.ShaderStageFlagBits.ExecutionModel() only maps Vertex and
			// Fragment bits (spec.md §4.H step 3: "the mapping must be
			// bijective"), so every other execution model — geometry,
			// tessellation, compute — is already refused above, before a
			// module is ever translated for it. Compute in particular is
			// refused here on purpose: it belongs to a compute pipeline
			// (spec.md §4.H step 5).
			return nil, errs.Unsupportedf("execution model %v in a graphics pipeline", model)
		}

		if err := tr.Module.Verify(); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}

	if !haveVertex {
		return nil, errs.Translationf("graphics pipeline has no Vertex stage")
	}

	p := &GraphicsPipeline{}
	for _, sr := range results {
		exec, err := llvmir.NewExecutor(sr.module, resolver)
		if err != nil {
			p.disposeAll()
			return nil, err
		}
		p.executors = append(p.executors, exec)

		addr, err := exec.FunctionAddress(sr.entryFn.Name)
		if err != nil {
			p.disposeAll()
			return nil, err
		}

		switch sr.model {
		case spirvbin.ExecutionModelVertex:
			p.vertexAddr = addr
			size, err := typegraph.SizeOf(target, sr.outputsNative)
			if err != nil {
				p.disposeAll()
				return nil, err
			}
			p.VertexOutputStructSize = size
		case spirvbin.ExecutionModelFragment:
			p.fragmentAddr = addr
		}
	}

	return p, nil
}

func (p *GraphicsPipeline) disposeAll() {
	for _, e := range p.executors {
		e.Dispose()
	}
	p.executors = nil
}

// VertexEntryAddress returns the native address of the compiled vertex_entry
// function (spec.md §6: "void(u32 vertex_start, u32 vertex_end, u32
// instance_id, void* output_buffer, void* const* bindings, void* uniforms)").
func (p *GraphicsPipeline) VertexEntryAddress() uintptr { return p.vertexAddr }

// FragmentEntryAddress returns the native address of the compiled
// fragment_entry function (spec.md §6: "void(u32* color_attachment_pixel)").
func (p *GraphicsPipeline) FragmentEntryAddress() uintptr { return p.fragmentAddr }

// Dispose frees every stage's native code and execution engine. The
// pipeline's entry-point addresses must not be called, and must not be
// cached past this call, by the caller (spec.md §5).
func (p *GraphicsPipeline) Dispose() {
	p.disposeAll()
}
