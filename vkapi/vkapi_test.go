package vkapi

import (
	"testing"

	"github.com/kazan-3d/kazan-go/spirvbin"
)

func TestExecutionModelMappingIsBijective(t *testing.T) {
	cases := []struct {
		bit   ShaderStageFlagBits
		model spirvbin.ExecutionModel
	}{
		{ShaderStageVertex, spirvbin.ExecutionModelVertex},
		{ShaderStageFragment, spirvbin.ExecutionModelFragment},
	}
	seen := map[spirvbin.ExecutionModel]ShaderStageFlagBits{}
	for _, c := range cases {
		model, ok := c.bit.ExecutionModel()
		if !ok {
			t.Fatalf("%v: expected a recognized execution model", c.bit)
		}
		if model != c.model {
			t.Fatalf("%v.ExecutionModel() = %v, want %v", c.bit, model, c.model)
		}
		if prior, dup := seen[model]; dup {
			t.Fatalf("execution model %v claimed by both %v and %v", model, prior, c.bit)
		}
		seen[model] = c.bit
	}
}

func TestExecutionModelRejectsUnmappedStages(t *testing.T) {
	for _, bit := range []ShaderStageFlagBits{
		ShaderStageGeometry,
		ShaderStageTessellationControl,
		ShaderStageTessellationEvaluation,
		ShaderStageCompute,
	} {
		if _, ok := bit.ExecutionModel(); ok {
			t.Fatalf("%v: expected no execution model mapping", bit)
		}
	}
}
