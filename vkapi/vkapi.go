// Package vkapi is the Vulkan pipeline-creation data model this core reads:
// a verbatim, Go-native shape of the subset of the Vulkan structs a graphics
// pipeline needs (spec.md §6), with no cgo dependency on a real ICD loader.
// sType is kept as an explicit discriminated-union tag, asserted by the
// pipeline assembler, the way the rest of the Vulkan struct chain is walked
// by pointer-and-sType in the real API.
package vkapi

import "github.com/kazan-3d/kazan-go/spirvbin"

// StructureType mirrors VkStructureType: the discriminant every Vulkan
// create-info struct carries as its first field.
type StructureType uint32

const (
	StructureTypeShaderModuleCreateInfo         StructureType = 16
	StructureTypePipelineShaderStageCreateInfo  StructureType = 18
	StructureTypePipelineVertexInputStateCreateInfo StructureType = 19
	StructureTypeGraphicsPipelineCreateInfo     StructureType = 28
)

// ShaderStageFlagBits mirrors VkShaderStageFlagBits. Only Vertex and
// Fragment map to an execution model (see ExecutionModel); a pipeline stage
// with any other bit is Unsupported.
type ShaderStageFlagBits uint32

const (
	ShaderStageVertex                  ShaderStageFlagBits = 0x00000001
	ShaderStageFragment                ShaderStageFlagBits = 0x00000010
	ShaderStageGeometry                ShaderStageFlagBits = 0x00000008
	ShaderStageTessellationControl     ShaderStageFlagBits = 0x00000002
	ShaderStageTessellationEvaluation  ShaderStageFlagBits = 0x00000004
	ShaderStageCompute                 ShaderStageFlagBits = 0x00000020
)

func (s ShaderStageFlagBits) String() string {
	switch s {
	case ShaderStageVertex:
		return "VK_SHADER_STAGE_VERTEX_BIT"
	case ShaderStageFragment:
		return "VK_SHADER_STAGE_FRAGMENT_BIT"
	case ShaderStageGeometry:
		return "VK_SHADER_STAGE_GEOMETRY_BIT"
	case ShaderStageTessellationControl:
		return "VK_SHADER_STAGE_TESSELLATION_CONTROL_BIT"
	case ShaderStageTessellationEvaluation:
		return "VK_SHADER_STAGE_TESSELLATION_EVALUATION_BIT"
	case ShaderStageCompute:
		return "VK_SHADER_STAGE_COMPUTE_BIT"
	default:
		return "VK_SHADER_STAGE_UNKNOWN"
	}
}

// ExecutionModel returns the SPIR-V execution model this stage bit
// translates to, and whether the mapping exists. The mapping is bijective:
// each recognized bit names exactly one model.
func (s ShaderStageFlagBits) ExecutionModel() (spirvbin.ExecutionModel, bool) {
	switch s {
	case ShaderStageVertex:
		return spirvbin.ExecutionModelVertex, true
	case ShaderStageFragment:
		return spirvbin.ExecutionModelFragment, true
	default:
		return 0, false
	}
}

// PipelineCreateFlags mirrors VkPipelineCreateFlagBits.
type PipelineCreateFlags uint32

const PipelineCreateDerivativeBit PipelineCreateFlags = 0x00000004

// Format mirrors the subset of VkFormat this core's vertex-input assembler
// understands; spirvbin.VertexFormat carries the same numeric values so the
// two packages share one enumerant space without an import cycle.
type Format = spirvbin.VertexFormat

// ShaderModuleCreateInfo mirrors VkShaderModuleCreateInfo: codeSize/pCode
// collapse to a single Go byte slice, copied verbatim from the caller
// (spec.md §6: "bytes copied verbatim, codeSize must be a multiple of 4").
type ShaderModuleCreateInfo struct {
	SType StructureType
	Code  []byte
}

// PipelineShaderStageCreateInfo mirrors VkPipelineShaderStageCreateInfo.
type PipelineShaderStageCreateInfo struct {
	SType  StructureType
	Stage  ShaderStageFlagBits
	Module *ShaderModuleCreateInfo
	Name   string
}

// VertexInputRate mirrors VkVertexInputRate.
type VertexInputRate uint32

const (
	VertexInputRateVertex   VertexInputRate = 0
	VertexInputRateInstance VertexInputRate = 1
)

// VertexInputBindingDescription mirrors VkVertexInputBindingDescription.
type VertexInputBindingDescription struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

// VertexInputAttributeDescription mirrors VkVertexInputAttributeDescription.
type VertexInputAttributeDescription struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

// PipelineVertexInputStateCreateInfo mirrors
// VkPipelineVertexInputStateCreateInfo.
type PipelineVertexInputStateCreateInfo struct {
	SType                 StructureType
	VertexBindings        []VertexInputBindingDescription
	VertexAttributes      []VertexInputAttributeDescription
}

// GraphicsPipelineCreateInfo mirrors VkGraphicsPipelineCreateInfo, restricted
// to the fields the pipeline assembler actually reads (spec.md §6).
type GraphicsPipelineCreateInfo struct {
	SType             StructureType
	Flags             PipelineCreateFlags
	Stages            []PipelineShaderStageCreateInfo
	VertexInputState  *PipelineVertexInputStateCreateInfo
	RenderPass        uintptr
	Layout            uintptr
}
