package translate

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"
)

// calculateTypes is pass one (spec.md §4.E): it walks every instruction
// once, populating ids with every type, constant, name, decoration,
// capability, extended-instruction-set import, entry point, and
// module-scope variable the module declares. It does not look inside
// function bodies beyond recording where each OpFunction starts, so
// pass two can re-walk just the function regions.
// implementedCapabilities is the closed allowlist spec.md §7/§12 pins:
// every capability a translated module may declare, once its requested
// capabilities have been expanded by the SPIR-V implication graph.
// Anything outside it is a Parser_error (spec.md §12 S6).
var implementedCapabilities = map[spirvbin.Capability]bool{
	spirvbin.CapabilityMatrix:            true,
	spirvbin.CapabilityShader:            true,
	spirvbin.CapabilityInputAttachment:   true,
	spirvbin.CapabilitySampled1D:         true,
	spirvbin.CapabilityImage1D:           true,
	spirvbin.CapabilitySampledBuffer:     true,
	spirvbin.CapabilityImageBuffer:       true,
	spirvbin.CapabilityImageQuery:        true,
	spirvbin.CapabilityDerivativeControl: true,
	spirvbin.CapabilityInt64:             true,
}

// capabilityClosure expands c by the SPIR-V capability-implication graph:
// c itself, plus every capability it implies, transitively, each appearing
// once, in expansion order.
func capabilityClosure(c spirvbin.Capability) []spirvbin.Capability {
	var closure []spirvbin.Capability
	seen := map[spirvbin.Capability]bool{}
	for {
		if seen[c] {
			break
		}
		seen[c] = true
		closure = append(closure, c)
		parent, ok := c.Implies()
		if !ok {
			break
		}
		c = parent
	}
	return closure
}

func calculateTypes(instrs []Instruction, ids *IdTable) error {
	var pendingStructMembers = map[int][]pendingMember{}

	for i, ins := range instrs {
		switch ins.Op {
		case spirvbin.OpCapability:
			v, err := ins.Word(0)
			if err != nil {
				return err
			}
			cap := spirvbin.Capability(v)
			closure := capabilityClosure(cap)
			for _, c := range closure {
				if !implementedCapabilities[c] {
					return errs.Parserf(ins.Offset, "capability not implemented: %s", c)
				}
			}
			for _, c := range closure {
				ids.AddCapability(c)
			}

		case spirvbin.OpExtInstImport:
			resId, err := ins.Word(0)
			if err != nil {
				return err
			}
			name, _, err := ins.String(1)
			if err != nil {
				return err
			}
			if name != "GLSL.std.450" {
				return errs.Unsupportedf("extended instruction set %q", name)
			}
			ids.SetExtInstSet(int(resId), name)

		case spirvbin.OpName:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			name, _, err := ins.String(1)
			if err != nil {
				return err
			}
			ids.SetName(int(id), name)

		case spirvbin.OpMemberName:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			member, err := ins.Word(1)
			if err != nil {
				return err
			}
			name, _, err := ins.String(2)
			if err != nil {
				return err
			}
			ids.SetMemberName(int(id), int(member), name)

		case spirvbin.OpDecorate:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			kind, err := ins.Word(1)
			if err != nil {
				return err
			}
			ids.AddDecoration(int(id), Decoration{Kind: spirvbin.Decoration(kind), Operands: ins.Operands[2:]})

		case spirvbin.OpMemberDecorate:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			member, err := ins.Word(1)
			if err != nil {
				return err
			}
			kind, err := ins.Word(2)
			if err != nil {
				return err
			}
			ids.AddMemberDecoration(int(id), int(member), Decoration{Kind: spirvbin.Decoration(kind), Operands: ins.Operands[3:]})

		case spirvbin.OpEntryPoint:
			model, err := ins.Word(0)
			if err != nil {
				return err
			}
			fn, err := ins.Word(1)
			if err != nil {
				return err
			}
			name, next, err := ins.String(2)
			if err != nil {
				return err
			}
			var iface []int
			for w := next; w < len(ins.Operands); w++ {
				iface = append(iface, int(ins.Operands[w]))
			}
			ids.AddEntryPoint(&EntryPoint{
				Model:        spirvbin.ExecutionModel(model),
				FunctionId:   int(fn),
				Name:         name,
				InterfaceIds: iface,
			})

		case spirvbin.OpTypeVoid:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			ids.SetType(int(id), typegraph.Void)

		case spirvbin.OpTypeBool:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			ids.SetType(int(id), typegraph.Bool)

		case spirvbin.OpTypeInt:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			width, err := ins.Word(1)
			if err != nil {
				return err
			}
			signed, err := ins.Word(2)
			if err != nil {
				return err
			}
			ids.SetType(int(id), &typegraph.IntDescriptor{Width: int(width), Signed: signed != 0})

		case spirvbin.OpTypeFloat:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			width, err := ins.Word(1)
			if err != nil {
				return err
			}
			ids.SetType(int(id), &typegraph.FloatDescriptor{Width: int(width)})

		case spirvbin.OpTypeVector:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			elId, err := ins.Word(1)
			if err != nil {
				return err
			}
			count, err := ins.Word(2)
			if err != nil {
				return err
			}
			el, err := ids.Type(ins.Offset, int(elId))
			if err != nil {
				return err
			}
			ids.SetType(int(id), &typegraph.VectorDescriptor{Element: el, ColumnSize: int(count)})

		case spirvbin.OpTypeMatrix:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			colId, err := ins.Word(1)
			if err != nil {
				return err
			}
			count, err := ins.Word(2)
			if err != nil {
				return err
			}
			col, err := ids.Type(ins.Offset, int(colId))
			if err != nil {
				return err
			}
			colVec, ok := col.(*typegraph.VectorDescriptor)
			if !ok {
				return errs.Parserf(ins.Offset, "OpTypeMatrix column type must be a vector")
			}
			ids.SetType(int(id), &typegraph.MatrixDescriptor{ColumnType: colVec, ColumnCount: int(count)})

		case spirvbin.OpTypeArray:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			elId, err := ins.Word(1)
			if err != nil {
				return err
			}
			lenId, err := ins.Word(2)
			if err != nil {
				return err
			}
			el, err := ids.Type(ins.Offset, int(elId))
			if err != nil {
				return err
			}
			lenConst, err := ids.Constant(ins.Offset, int(lenId))
			if err != nil {
				return err
			}
			stride := 0
			if d, ok := ids.Decoration(int(id), spirvbin.DecorationArrayStride); ok && len(d.Operands) > 0 {
				stride = int(d.Operands[0])
			}
			ids.SetType(int(id), &typegraph.ArrayDescriptor{Element: el, Length: int(lenConst.Bits), Stride: stride})

		case spirvbin.OpTypeRuntimeArray:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			elId, err := ins.Word(1)
			if err != nil {
				return err
			}
			el, err := ids.Type(ins.Offset, int(elId))
			if err != nil {
				return err
			}
			stride := 0
			if d, ok := ids.Decoration(int(id), spirvbin.DecorationArrayStride); ok && len(d.Operands) > 0 {
				stride = int(d.Operands[0])
			}
			ids.SetType(int(id), &typegraph.RuntimeArrayDescriptor{Element: el, Stride: stride})

		case spirvbin.OpTypeStruct:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			sd := &typegraph.StructDescriptor{Name: structName(ids, int(id))}
			for mi, w := 0, 1; w < len(ins.Operands); mi, w = mi+1, w+1 {
				pendingStructMembers[int(id)] = append(pendingStructMembers[int(id)], pendingMember{index: mi, typeId: int(ins.Operands[w])})
			}
			ids.SetType(int(id), sd)

		case spirvbin.OpTypePointer:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			storage, err := ins.Word(1)
			if err != nil {
				return err
			}
			pointeeId, err := ins.Word(2)
			if err != nil {
				return err
			}
			// Resolved immediately: the pointee must already be declared
			// (types precede use). A struct referencing itself through this
			// pointer id still works, since Type() below finds the struct's
			// descriptor already registered (StructDescriptor itself, not
			// yet Complete()'d).
			pointee, err := ids.Type(ins.Offset, int(pointeeId))
			if err != nil {
				return err
			}
			ids.SetType(int(id), &typegraph.PointerDescriptor{StorageClass: int(storage), Pointee: pointee})

		case spirvbin.OpTypeFunction:
			id, err := ins.Word(0)
			if err != nil {
				return err
			}
			retId, err := ins.Word(1)
			if err != nil {
				return err
			}
			ret, err := ids.Type(ins.Offset, int(retId))
			if err != nil {
				return err
			}
			var params []typegraph.Descriptor
			for w := 2; w < len(ins.Operands); w++ {
				pd, err := ids.Type(ins.Offset, int(ins.Operands[w]))
				if err != nil {
					return err
				}
				params = append(params, pd)
			}
			ids.SetType(int(id), &typegraph.FunctionDescriptor{Return: ret, Parameters: params})

		case spirvbin.OpTypeImage:
			id, _ := ins.Word(0)
			ids.SetType(int(id), &typegraph.OpaqueDescriptor{Name: "image", K: typegraph.KindImage})
		case spirvbin.OpTypeSampler:
			id, _ := ins.Word(0)
			ids.SetType(int(id), &typegraph.OpaqueDescriptor{Name: "sampler", K: typegraph.KindSampler})
		case spirvbin.OpTypeSampledImage:
			id, _ := ins.Word(0)
			ids.SetType(int(id), &typegraph.OpaqueDescriptor{Name: "sampled_image", K: typegraph.KindSampledImage})
		case spirvbin.OpTypeEvent:
			id, _ := ins.Word(0)
			ids.SetType(int(id), &typegraph.OpaqueDescriptor{Name: "event", K: typegraph.KindEvent})
		case spirvbin.OpTypeOpaque:
			id, _ := ins.Word(0)
			ids.SetType(int(id), &typegraph.OpaqueDescriptor{Name: "opaque", K: typegraph.KindStruct})

		case spirvbin.OpConstantTrue, spirvbin.OpConstantFalse:
			tyId, err := ins.Word(0)
			if err != nil {
				return err
			}
			id, err := ins.Word(1)
			if err != nil {
				return err
			}
			ty, err := ids.Type(ins.Offset, int(tyId))
			if err != nil {
				return err
			}
			bits := uint64(0)
			if ins.Op == spirvbin.OpConstantTrue {
				bits = 1
			}
			ids.SetConstant(int(id), &Constant{Id: int(id), Kind: ConstantScalar, Type: ty, Bits: bits})

		case spirvbin.OpConstant:
			tyId, err := ins.Word(0)
			if err != nil {
				return err
			}
			id, err := ins.Word(1)
			if err != nil {
				return err
			}
			ty, err := ids.Type(ins.Offset, int(tyId))
			if err != nil {
				return err
			}
			bits := packLiteral(ins.Operands[2:])
			ids.SetConstant(int(id), &Constant{Id: int(id), Kind: ConstantScalar, Type: ty, Bits: bits})

		case spirvbin.OpConstantComposite:
			tyId, err := ins.Word(0)
			if err != nil {
				return err
			}
			id, err := ins.Word(1)
			if err != nil {
				return err
			}
			ty, err := ids.Type(ins.Offset, int(tyId))
			if err != nil {
				return err
			}
			var constituents []int
			for w := 2; w < len(ins.Operands); w++ {
				constituents = append(constituents, int(ins.Operands[w]))
			}
			ids.SetConstant(int(id), &Constant{Id: int(id), Kind: ConstantComposite, Type: ty, Constituents: constituents})

		case spirvbin.OpConstantNull:
			tyId, err := ins.Word(0)
			if err != nil {
				return err
			}
			id, err := ins.Word(1)
			if err != nil {
				return err
			}
			ty, err := ids.Type(ins.Offset, int(tyId))
			if err != nil {
				return err
			}
			ids.SetConstant(int(id), &Constant{Id: int(id), Kind: ConstantNull, Type: ty})

		case spirvbin.OpVariable:
			if insideFunction(instrs, i) {
				continue // Function-storage locals are handled in pass two.
			}
			tyId, err := ins.Word(0)
			if err != nil {
				return err
			}
			id, err := ins.Word(1)
			if err != nil {
				return err
			}
			storage, err := ins.Word(2)
			if err != nil {
				return err
			}
			ptrTy, err := ids.Type(ins.Offset, int(tyId))
			if err != nil {
				return err
			}
			ptr, ok := ptrTy.(*typegraph.PointerDescriptor)
			if !ok {
				return errs.Parserf(ins.Offset, "OpVariable result type must be a pointer")
			}
			init := 0
			if len(ins.Operands) > 3 {
				init = int(ins.Operands[3])
			}
			ids.SetVariable(int(id), &Variable{
				Id:           int(id),
				StorageClass: spirvbin.StorageClass(storage),
				PointeeType:  ptr.Pointee,
				Initializer:  init,
			})

		case spirvbin.OpFunction:
			tyId, err := ins.Word(0)
			if err != nil {
				return err
			}
			id, err := ins.Word(1)
			if err != nil {
				return err
			}
			fnTypeId, err := ins.Word(3)
			if err != nil {
				return err
			}
			resTy, err := ids.Type(ins.Offset, int(tyId))
			if err != nil {
				return err
			}
			fnTyDesc, err := ids.Type(ins.Offset, int(fnTypeId))
			if err != nil {
				return err
			}
			fnTy, ok := fnTyDesc.(*typegraph.FunctionDescriptor)
			if !ok {
				return errs.Parserf(ins.Offset, "OpFunction function type must be an OpTypeFunction")
			}
			ids.SetFunction(int(id), &FunctionInfo{
				Id:           int(id),
				Name:         ids.Name(int(id)),
				ResultType:   resTy,
				FunctionType: fnTy,
				FirstWord:    ins.Offset,
			})
		}
	}

	for id, members := range pendingStructMembers {
		sdDesc, err := ids.Type(0, id)
		if err != nil {
			return err
		}
		sd := sdDesc.(*typegraph.StructDescriptor)
		sd.Members = make([]typegraph.StructMember, len(members))
		for _, pm := range members {
			pty, err := ids.Type(0, pm.typeId)
			if err != nil {
				return err
			}
			var offset *int
			if d, ok := ids.MemberDecoration(id, pm.index, spirvbin.DecorationOffset); ok && len(d.Operands) > 0 {
				v := int(d.Operands[0])
				offset = &v
			}
			sd.Members[pm.index] = typegraph.StructMember{
				Name:   ids.MemberName(id, pm.index),
				Type:   pty,
				Offset: offset,
			}
		}
	}

	return nil
}

type pendingMember struct {
	index  int
	typeId int
}

func structName(ids *IdTable, id int) string {
	if n := ids.Name(id); n != "" {
		return n
	}
	return fmt.Sprintf("anon_struct_%%%d", id)
}

// insideFunction reports whether instrs[i] lexically falls between an
// OpFunction and its matching OpFunctionEnd.
func insideFunction(instrs []Instruction, i int) bool {
	depth := 0
	for j := 0; j < i; j++ {
		switch instrs[j].Op {
		case spirvbin.OpFunction:
			depth++
		case spirvbin.OpFunctionEnd:
			depth--
		}
	}
	return depth > 0
}

// packLiteral concatenates an OpConstant's literal words into a single
// little-endian 64-bit value, matching how the SPIR-V binary form stores a
// 64-bit constant as two consecutive words.
func packLiteral(words []uint32) uint64 {
	if len(words) == 1 {
		return uint64(words[0])
	}
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	if len(buf) >= 8 {
		return binary.LittleEndian.Uint64(buf[:8])
	}
	return uint64(words[0])
}

// float32FromBits and float64FromBits convert a Constant's raw Bits back to
// a float value for a given descriptor width, used when materializing
// constants during generate_code.
func float32FromBits(bits uint64) float32 { return math.Float32frombits(uint32(bits)) }
func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
