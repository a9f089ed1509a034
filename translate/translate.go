package translate

import (
	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"
)

// Translator holds everything built while translating one SPIR-V module
// against one target ABI: the type graph, the llvmir module its native
// types and functions live in, the id table pass one populated, and the
// memoized native constants/globals/functions pass two has produced so
// far.
type Translator struct {
	Target *abi.ABI
	Module *llvmir.Module
	Graph  *typegraph.Graph
	Ids    *IdTable

	constCache map[int]llvmir.Const
	globals    map[int]*llvmir.Global
	functions  map[int]*llvmir.Function
	interfaces map[int]*Interface
}

// EntryPointResult is the translated form of one OpEntryPoint: the native
// function that implements it, and the assembled shader interface it
// reads/writes through.
type EntryPointResult struct {
	Function  *llvmir.Function
	Interface *Interface
	EntryInfo *EntryPoint
}

// Translate runs both passes of the translator over bin against target,
// returning one EntryPointResult per OpEntryPoint the module declares.
// Name is used to name the resulting llvmir.Module.
func Translate(name string, bin []byte, target *abi.ABI) (*Translator, map[string]*EntryPointResult, error) {
	header, reader, err := spirvbin.ParseHeader(bin)
	if err != nil {
		return nil, nil, err
	}
	if header.VersionMajor != 1 {
		return nil, nil, errs.Unsupportedf("SPIR-V version %d.%d", header.VersionMajor, header.VersionMinor)
	}

	instrs, err := reader.Instructions()
	if err != nil {
		return nil, nil, err
	}

	ids := NewIdTable(header.IdBound)
	if err := calculateTypes(instrs, ids); err != nil {
		return nil, nil, err
	}
	if !ids.HasCapability(spirvbin.CapabilityShader) {
		return nil, nil, errs.Unsupportedf("module without the Shader capability")
	}

	m := llvmir.NewModule(name, target)
	tr := &Translator{
		Target:     target,
		Module:     m,
		Graph:      typegraph.NewGraph(m, target),
		Ids:        ids,
		constCache: map[int]llvmir.Const{},
		globals:    map[int]*llvmir.Global{},
		functions:  map[int]*llvmir.Function{},
		interfaces: map[int]*Interface{},
	}

	results := map[string]*EntryPointResult{}
	for _, ep := range ids.EntryPoints() {
		iface, err := AssembleInterface(ids, ep)
		if err != nil {
			return nil, nil, err
		}
		tr.interfaces[ep.FunctionId] = iface

		fn, err := tr.translateEntryPoint(instrs, ep, iface)
		if err != nil {
			return nil, nil, err
		}
		results[entryPointKey(ep.Model, ep.Name)] = &EntryPointResult{Function: fn, Interface: iface, EntryInfo: ep}
	}

	return tr, results, nil
}

func entryPointKey(model spirvbin.ExecutionModel, name string) string {
	return model.String() + ":" + name
}

// EntryPoint looks up a translated entry point by (execution model, name).
func EntryPoint(results map[string]*EntryPointResult, model spirvbin.ExecutionModel, name string) (*EntryPointResult, error) {
	r, ok := results[entryPointKey(model, name)]
	if !ok {
		return nil, errs.Translationf("no translated %v entry point named %q", model, name)
	}
	return r, nil
}
