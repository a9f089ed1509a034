package pipeline

import (
	"testing"

	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/vkapi"
)

func validInfo() *vkapi.GraphicsPipelineCreateInfo {
	return &vkapi.GraphicsPipelineCreateInfo{
		SType: vkapi.StructureTypeGraphicsPipelineCreateInfo,
		Stages: []vkapi.PipelineShaderStageCreateInfo{
			{
				SType: vkapi.StructureTypePipelineShaderStageCreateInfo,
				Stage: vkapi.ShaderStageVertex,
				Module: &vkapi.ShaderModuleCreateInfo{
					SType: vkapi.StructureTypeShaderModuleCreateInfo,
					Code:  []byte{1, 2, 3, 4},
				},
				Name: "main",
			},
		},
		VertexInputState: &vkapi.PipelineVertexInputStateCreateInfo{
			SType: vkapi.StructureTypePipelineVertexInputStateCreateInfo,
		},
	}
}

func TestCreateRejectsDerivativePipeline(t *testing.T) {
	info := validInfo()
	info.Flags = vkapi.PipelineCreateDerivativeBit
	_, err := Create(info, abi.LinuxX86_64, nil)
	if err == nil {
		t.Fatal("expected an error for a derivative pipeline")
	}
}

func TestCreateRejectsWrongSType(t *testing.T) {
	info := validInfo()
	info.SType = vkapi.StructureTypeShaderModuleCreateInfo
	_, err := Create(info, abi.LinuxX86_64, nil)
	if err == nil {
		t.Fatal("expected an error for a mistagged GraphicsPipelineCreateInfo")
	}
}

func TestCreateRejectsNoStages(t *testing.T) {
	info := validInfo()
	info.Stages = nil
	_, err := Create(info, abi.LinuxX86_64, nil)
	if err == nil {
		t.Fatal("expected an error for a pipeline with no shader stages")
	}
}

func TestCreateRejectsUnsupportedStageBit(t *testing.T) {
	info := validInfo()
	info.Stages[0].Stage = vkapi.ShaderStageGeometry
	_, err := Create(info, abi.LinuxX86_64, nil)
	if err == nil {
		t.Fatal("expected an error for a geometry stage")
	}
}

func TestCreateRejectsMissingShaderModule(t *testing.T) {
	info := validInfo()
	info.Stages[0].Module = nil
	_, err := Create(info, abi.LinuxX86_64, nil)
	if err == nil {
		t.Fatal("expected an error for a stage with no shader module")
	}
}

func TestCreateRejectsUnalignedCodeSize(t *testing.T) {
	info := validInfo()
	info.Stages[0].Module.Code = []byte{1, 2, 3}
	_, err := Create(info, abi.LinuxX86_64, nil)
	if err == nil {
		t.Fatal("expected an error for a codeSize that is not a multiple of 4")
	}
}
