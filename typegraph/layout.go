package typegraph

import (
	"github.com/kazan-3d/kazan-go/abi"
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/llvmir"
)

// SizeOf returns the byte size of a native type under target, by walking
// its structure down to the scalar types target.MemoryLayout describes.
// Struct sizes come from the fields already committed by BuildPackedStruct
// (every struct this core builds is already fully padded, so its size is
// just the sum of its native fields).
func SizeOf(target *abi.ABI, ty llvmir.Type) (int, error) {
	switch t := ty.(type) {
	case *llvmir.Struct:
		total := 0
		for _, f := range t.Fields() {
			sz, err := SizeOf(target, f.Type)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	case *llvmir.Array:
		el, err := SizeOf(target, t.Element)
		if err != nil {
			return 0, err
		}
		return el * t.Len, nil
	case llvmir.Vector:
		el, err := SizeOf(target, t.Element)
		if err != nil {
			return 0, err
		}
		return el * t.Count, nil
	case llvmir.Pointer:
		return target.MemoryLayout.Pointer.Size, nil
	default:
		return scalarSize(target, ty)
	}
}

// AlignOf returns the natural alignment of a native type under target.
func AlignOf(target *abi.ABI, ty llvmir.Type) (int, error) {
	switch t := ty.(type) {
	case *llvmir.Struct:
		max := 1
		for _, f := range t.Fields() {
			a, err := AlignOf(target, f.Type)
			if err != nil {
				return 0, err
			}
			if a > max {
				max = a
			}
		}
		return max, nil
	case *llvmir.Array:
		return AlignOf(target, t.Element)
	case llvmir.Vector:
		return AlignOf(target, t.Element)
	case llvmir.Pointer:
		return target.MemoryLayout.Pointer.Alignment, nil
	default:
		sz, err := scalarSize(target, ty)
		if err != nil {
			return 0, err
		}
		return sz, nil
	}
}

func scalarSize(target *abi.ABI, ty llvmir.Type) (int, error) {
	ml := target.MemoryLayout
	switch {
	case llvmir.IsBool(ty):
		return 1, nil
	case llvmir.IsInteger(ty):
		switch ty.TypeName() {
		case "int8", "uint8":
			return ml.I8.Size, nil
		case "int16", "uint16":
			return ml.I16.Size, nil
		case "int32", "uint32":
			return ml.I32.Size, nil
		case "int64", "uint64":
			return ml.I64.Size, nil
		case "uintptr":
			return ml.Pointer.Size, nil
		case "size":
			return ml.Size.Size, nil
		}
	case llvmir.IsFloat(ty):
		switch ty.TypeName() {
		case "float16":
			return ml.F16.Size, nil
		case "float32":
			return ml.F32.Size, nil
		case "float64":
			return ml.F64.Size, nil
		}
	case ty.TypeName() == "void":
		return 0, nil
	}
	return 0, errs.Translationf("no known size for native type %v", ty)
}

// Member is one field of a struct being laid out: its SPIR-V member index,
// its name (from OpMemberName, or a synthesized name), its native type,
// and — if the enclosing struct carries interface-block decorations — the
// explicit byte Offset assigned by Decoration Offset. Offset is nil for
// structs synthesized internally by this core (e.g. the vertex-shader I/O
// structs of spec.md §4.F), whose members are placed in declaration order,
// each at the next offset that satisfies its natural alignment.
type Member struct {
	SPIRVIndex int
	Name       string
	Type       llvmir.Type
	Offset     *int
}

// StructLayout is the computed result of packing a Member list: the final
// []llvmir.Field (including synthesized filler members), and a lookup from
// a member's original SPIR-V index to its native field index, since filler
// insertion shifts every later member's index (spec.md §4.C: "a member's
// native index generally differs from its SPIR-V member index").
type StructLayout struct {
	Fields          []llvmir.Field
	NativeIndexByID map[int]int
	SizeBytes       int
}

// BuildPackedStruct computes an explicit byte-for-byte packed layout for
// members and commits it to s via s.SetBody. Members must already be in
// SPIR-V declaration order. m supplies the Uint8 element type used to
// build filler arrays.
//
// Algorithm (spec.md §4.C steps 1-6):
//  1. Track a running byte cursor, starting at 0.
//  2. For each member: determine its wanted offset (the explicit Offset if
//     given, otherwise the cursor rounded up to the member's natural
//     alignment).
//  3. If the wanted offset is greater than the cursor, insert a u8[N]
//     filler field of the gap before the member.
//  4. Append the member's own native field, recording its native index.
//  5. Advance the cursor by the member's size.
//  6. After the last member, if the cursor is not a multiple of the
//     struct's overall alignment (the max alignment of any member),
//     append one final u8[N] filler so the struct's size is array-safe.
//     A struct with zero members gets exactly one filler u8 so it is
//     never zero-sized.
func BuildPackedStruct(target *abi.ABI, m *llvmir.Module, s *llvmir.Struct, members []Member) (*StructLayout, error) {
	var fields []llvmir.Field
	nativeIndex := map[int]int{}
	cursor := 0
	maxAlign := 1
	fillerSeq := 0

	u8Array := func(n int) llvmir.Type { return m.Types.Array(m.Types.Uint8, n) }

	appendFiller := func(n int) {
		fillerSeq++
		fields = append(fields, llvmir.Field{Name: fillerName(fillerSeq), Type: u8Array(n)})
	}

	for _, mem := range members {
		align, err := AlignOf(target, mem.Type)
		if err != nil {
			return nil, err
		}
		size, err := SizeOf(target, mem.Type)
		if err != nil {
			return nil, err
		}
		if align > maxAlign {
			maxAlign = align
		}

		wantOffset := cursor
		if mem.Offset != nil {
			wantOffset = *mem.Offset
		} else {
			wantOffset = alignUp(cursor, align)
		}
		if wantOffset < cursor {
			return nil, errs.Translationf("member %q offset %d overlaps previous member ending at %d", mem.Name, wantOffset, cursor)
		}
		if gap := wantOffset - cursor; gap > 0 {
			appendFiller(gap)
		}

		name := mem.Name
		if name == "" {
			name = syntheticMemberName(mem.SPIRVIndex)
		}
		fields = append(fields, llvmir.Field{Name: name, Type: mem.Type})
		nativeIndex[mem.SPIRVIndex] = len(fields) - 1
		cursor = wantOffset + size
	}

	if len(members) == 0 {
		fields = append(fields, llvmir.Field{Name: "_empty", Type: m.Types.Uint8})
		cursor = 1
	} else if pad := alignUp(cursor, maxAlign) - cursor; pad > 0 {
		appendFiller(pad)
		cursor += pad
	}

	s.SetBody(fields)
	return &StructLayout{Fields: fields, NativeIndexByID: nativeIndex, SizeBytes: cursor}, nil
}

func alignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

func fillerName(seq int) string { return "_filler" + itoa(seq) }

func syntheticMemberName(spirvIndex int) string { return "_member" + itoa(spirvIndex) }
