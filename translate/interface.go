package translate

import (
	"sort"

	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"
)

// IfaceSlot says where a module-scope Input/Output OpVariable lives once
// the shader interface has been assembled: a named field of the "inputs"
// or "outputs" struct, whether it came from a Location decoration or a
// recognized BuiltIn (spec.md §4.G step 5: a built-in is materialized into
// an io_struct member, the same as any Location-decorated variable, not
// passed to the entry point out of band).
type IfaceSlot struct {
	Side      string // "inputs" or "outputs"
	FieldName string
	Location  int
	BuiltIn   spirvbin.BuiltIn
	IsBuiltIn bool
}

// Interface is the assembled shader-interface layout of spec.md §4.F:
// packed "inputs" and "outputs" structs built from every Location-decorated
// Input/Output OpVariable in an entry point's interface list, plus the
// slot each interface variable id resolves to.
type Interface struct {
	Inputs  *typegraph.StructDescriptor
	Outputs *typegraph.StructDescriptor
	Slots   map[int]IfaceSlot
}

type locationVar struct {
	id       int
	location int
	ty       typegraph.Descriptor
	name     string
}

// builtinVar is a recognized BuiltIn-decorated interface variable, destined
// for a fixed-name member of the "inputs" or "outputs" struct rather than a
// Location-numbered one.
type builtinVar struct {
	id      int
	builtIn spirvbin.BuiltIn
	ty      typegraph.Descriptor
	field   string
}

// AssembleInterface builds the Interface for one entry point. Only the
// BuiltIn values this core implements (VertexIndex, InstanceIndex for
// Vertex-stage Input; Position for Vertex-stage Output) are recognized; any
// other BuiltIn decoration is Unsupported, as is any interface variable
// with neither a Location nor a recognized BuiltIn decoration.
func AssembleInterface(ids *IdTable, ep *EntryPoint) (*Interface, error) {
	var inputVars, outputVars []locationVar
	var inputBuiltins, outputBuiltins []builtinVar
	slots := map[int]IfaceSlot{}

	for _, id := range ep.InterfaceIds {
		v, ok := ids.Variable(id)
		if !ok {
			return nil, errs.Translationf("interface id %%%d is not a module-scope variable", id)
		}

		if d, ok := ids.Decoration(id, spirvbin.DecorationBuiltIn); ok && len(d.Operands) > 0 {
			b := spirvbin.BuiltIn(d.Operands[0])
			switch {
			case ep.Model == spirvbin.ExecutionModelVertex && v.StorageClass == spirvbin.StorageClassInput &&
				(b == spirvbin.BuiltInVertexIndex || b == spirvbin.BuiltInInstanceIndex):
				field := "vertex_index"
				if b == spirvbin.BuiltInInstanceIndex {
					field = "instance_index"
				}
				inputBuiltins = append(inputBuiltins, builtinVar{
					id: id, builtIn: b, field: field,
					ty: &typegraph.IntDescriptor{Width: 32, Signed: false},
				})
				continue
			case ep.Model == spirvbin.ExecutionModelVertex && v.StorageClass == spirvbin.StorageClassOutput &&
				b == spirvbin.BuiltInPosition:
				outputBuiltins = append(outputBuiltins, builtinVar{
					id: id, builtIn: b, field: "position",
					ty: &typegraph.VectorDescriptor{Element: &typegraph.FloatDescriptor{Width: 32}, ColumnSize: 4},
				})
				continue
			default:
				return nil, errs.Unsupportedf("built-in %d on a %v-stage interface variable", b, ep.Model)
			}
		}

		loc, ok := ids.Decoration(id, spirvbin.DecorationLocation)
		if !ok || len(loc.Operands) == 0 {
			return nil, errs.Unsupportedf("interface variable %%%d has neither Location nor a recognized BuiltIn", id)
		}
		lv := locationVar{id: id, location: int(loc.Operands[0]), ty: v.PointeeType, name: ids.Name(id)}

		switch v.StorageClass {
		case spirvbin.StorageClassInput:
			inputVars = append(inputVars, lv)
		case spirvbin.StorageClassOutput:
			outputVars = append(outputVars, lv)
		default:
			return nil, errs.Unsupportedf("storage class %d on an entry point interface variable", v.StorageClass)
		}
	}

	sort.Slice(inputVars, func(i, j int) bool { return inputVars[i].location < inputVars[j].location })
	sort.Slice(outputVars, func(i, j int) bool { return outputVars[i].location < outputVars[j].location })
	sort.Slice(inputBuiltins, func(i, j int) bool { return inputBuiltins[i].builtIn < inputBuiltins[j].builtIn })
	sort.Slice(outputBuiltins, func(i, j int) bool { return outputBuiltins[i].builtIn < outputBuiltins[j].builtIn })

	inputs := buildIfaceStruct(ep.Name+"_inputs", inputVars, inputBuiltins, "inputs", slots)
	outputs := buildIfaceStruct(ep.Name+"_outputs", outputVars, outputBuiltins, "outputs", slots)

	return &Interface{Inputs: inputs, Outputs: outputs, Slots: slots}, nil
}

func buildIfaceStruct(name string, vars []locationVar, builtins []builtinVar, side string, slots map[int]IfaceSlot) *typegraph.StructDescriptor {
	sd := &typegraph.StructDescriptor{Name: name}
	sd.Members = make([]typegraph.StructMember, 0, len(vars)+len(builtins))
	for _, v := range vars {
		field := v.name
		if field == "" {
			field = fieldNameForLocation(v.location)
		}
		sd.Members = append(sd.Members, typegraph.StructMember{Name: field, Type: v.ty})
		slots[v.id] = IfaceSlot{Side: side, FieldName: field, Location: v.location}
	}
	for _, bv := range builtins {
		sd.Members = append(sd.Members, typegraph.StructMember{Name: bv.field, Type: bv.ty})
		slots[bv.id] = IfaceSlot{Side: side, FieldName: bv.field, IsBuiltIn: true, BuiltIn: bv.builtIn}
	}
	return sd
}

func fieldNameForLocation(loc int) string {
	const digits = "0123456789"
	if loc == 0 {
		return "loc0"
	}
	var buf []byte
	for loc > 0 {
		buf = append([]byte{digits[loc%10]}, buf...)
		loc /= 10
	}
	return "loc" + string(buf)
}
