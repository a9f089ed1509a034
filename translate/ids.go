package translate

import (
	"github.com/kazan-3d/kazan-go/errs"
	"github.com/kazan-3d/kazan-go/spirvbin"
	"github.com/kazan-3d/kazan-go/typegraph"
)

// Instruction is a decoded SPIR-V instruction, as produced by spirvbin.
type Instruction = spirvbin.Instruction

// Decoration is one Decoration or MemberDecorate application.
type Decoration struct {
	Kind     spirvbin.Decoration
	Operands []uint32
}

// Variable is a module-scope OpVariable (Input, Output, UniformConstant,
// PushConstant, or Private storage class; Function-storage OpVariables are
// handled locally within generate_code instead).
type Variable struct {
	Id           int
	StorageClass spirvbin.StorageClass
	PointeeType  typegraph.Descriptor
	Initializer  int
}

// ConstantKind discriminates Constant's variants.
type ConstantKind int

const (
	ConstantScalar ConstantKind = iota
	ConstantComposite
	ConstantNull
)

// Constant is a module-scope constant value.
type Constant struct {
	Id   int
	Kind ConstantKind
	Type typegraph.Descriptor

	// ConstantScalar: Bits holds the raw little-endian bit pattern (as
	// stored in the instruction's literal words), up to 64 bits.
	Bits uint64

	// ConstantComposite: Constituents holds the id of each element/member,
	// in order.
	Constituents []int
}

// FunctionInfo is a module-scope OpFunction declaration.
type FunctionInfo struct {
	Id           int
	Name         string
	ResultType   typegraph.Descriptor
	FunctionType *typegraph.FunctionDescriptor
	ParamIds     []int
	FirstWord    int // offset of OpFunction, for generate_code's second walk
}

// EntryPoint is one OpEntryPoint declaration.
type EntryPoint struct {
	Model        spirvbin.ExecutionModel
	FunctionId   int
	Name         string
	InterfaceIds []int
}

// IdTable accumulates every piece of information pass one discovers about
// each SPIR-V id, indexed by id. A record is built up incrementally: a
// forward-referenced id (e.g. a struct member's own pointer-to-self type)
// can have its type completed before its name or decorations arrive, since
// SPIR-V does not require those instructions be emitted in any particular
// relative order other than "ids must be defined before their first use in
// a non-forward-reference position" (spec.md §3).
type IdTable struct {
	bound int

	names             map[int]string
	memberNames       map[int]map[int]string
	decorations       map[int][]Decoration
	memberDecorations map[int]map[int][]Decoration

	types     map[int]typegraph.Descriptor
	constants map[int]*Constant
	variables map[int]*Variable
	functions map[int]*FunctionInfo
	extInsts  map[int]string

	entryPoints  []*EntryPoint
	capabilities map[spirvbin.Capability]bool
}

// NewIdTable creates an id table sized for bound distinct ids (OpEntryPoint
// etc. reference ids up to, but not including, bound).
func NewIdTable(bound int) *IdTable {
	return &IdTable{
		bound:             bound,
		names:             map[int]string{},
		memberNames:       map[int]map[int]string{},
		decorations:       map[int][]Decoration{},
		memberDecorations: map[int]map[int][]Decoration{},
		types:             map[int]typegraph.Descriptor{},
		constants:         map[int]*Constant{},
		variables:         map[int]*Variable{},
		functions:         map[int]*FunctionInfo{},
		extInsts:          map[int]string{},
		capabilities:      map[spirvbin.Capability]bool{},
	}
}

func (t *IdTable) checkId(word int, id int) error {
	if id < 1 || id >= t.bound {
		return errs.Parserf(word, "id %%%d is outside the declared bound %d", id, t.bound)
	}
	return nil
}

// SetName records an OpName.
func (t *IdTable) SetName(id int, name string) { t.names[id] = name }

// Name returns the debug name of id, or "" if none was given.
func (t *IdTable) Name(id int) string { return t.names[id] }

// SetMemberName records an OpMemberName.
func (t *IdTable) SetMemberName(structId, member int, name string) {
	m, ok := t.memberNames[structId]
	if !ok {
		m = map[int]string{}
		t.memberNames[structId] = m
	}
	m[member] = name
}

// MemberName returns the debug name of a struct's member, or "".
func (t *IdTable) MemberName(structId, member int) string { return t.memberNames[structId][member] }

// AddDecoration records an OpDecorate.
func (t *IdTable) AddDecoration(id int, d Decoration) {
	t.decorations[id] = append(t.decorations[id], d)
}

// Decorations returns every decoration applied to id.
func (t *IdTable) Decorations(id int) []Decoration { return t.decorations[id] }

// Decoration returns the first decoration of the given kind on id, and
// whether one was found.
func (t *IdTable) Decoration(id int, kind spirvbin.Decoration) (Decoration, bool) {
	for _, d := range t.decorations[id] {
		if d.Kind == kind {
			return d, true
		}
	}
	return Decoration{}, false
}

// AddMemberDecoration records an OpMemberDecorate.
func (t *IdTable) AddMemberDecoration(structId, member int, d Decoration) {
	m, ok := t.memberDecorations[structId]
	if !ok {
		m = map[int][]Decoration{}
		t.memberDecorations[structId] = m
	}
	m[member] = append(m[member], d)
}

// MemberDecoration returns the first decoration of the given kind on a
// struct member, and whether one was found.
func (t *IdTable) MemberDecoration(structId, member int, kind spirvbin.Decoration) (Decoration, bool) {
	for _, d := range t.memberDecorations[structId][member] {
		if d.Kind == kind {
			return d, true
		}
	}
	return Decoration{}, false
}

// SetType binds id (an OpType* result) to its descriptor.
func (t *IdTable) SetType(id int, d typegraph.Descriptor) { t.types[id] = d }

// Type returns the descriptor bound to id, or an error if none was bound.
func (t *IdTable) Type(word, id int) (typegraph.Descriptor, error) {
	d, ok := t.types[id]
	if !ok {
		return nil, errs.Parserf(word, "id %%%d is not a type", id)
	}
	return d, nil
}

// SetConstant binds id to a Constant.
func (t *IdTable) SetConstant(id int, c *Constant) { t.constants[id] = c }

// Constant returns the constant bound to id, or an error if none was bound.
func (t *IdTable) Constant(word, id int) (*Constant, error) {
	c, ok := t.constants[id]
	if !ok {
		return nil, errs.Parserf(word, "id %%%d is not a constant", id)
	}
	return c, nil
}

// SetVariable binds id to a module-scope Variable.
func (t *IdTable) SetVariable(id int, v *Variable) { t.variables[id] = v }

// Variable returns the module-scope variable bound to id, if any.
func (t *IdTable) Variable(id int) (*Variable, bool) { v, ok := t.variables[id]; return v, ok }

// SetFunction binds id to a FunctionInfo.
func (t *IdTable) SetFunction(id int, f *FunctionInfo) { t.functions[id] = f }

// Function returns the function bound to id, or an error if none was
// bound.
func (t *IdTable) Function(word, id int) (*FunctionInfo, error) {
	f, ok := t.functions[id]
	if !ok {
		return nil, errs.Parserf(word, "id %%%d is not a function", id)
	}
	return f, nil
}

// SetExtInstSet records an OpExtInstImport's set name.
func (t *IdTable) SetExtInstSet(id int, name string) { t.extInsts[id] = name }

// ExtInstSet returns the extended instruction set name bound to id.
func (t *IdTable) ExtInstSet(id int) (string, bool) { s, ok := t.extInsts[id]; return s, ok }

// AddEntryPoint records an OpEntryPoint.
func (t *IdTable) AddEntryPoint(e *EntryPoint) { t.entryPoints = append(t.entryPoints, e) }

// EntryPoints returns every entry point declared in the module.
func (t *IdTable) EntryPoints() []*EntryPoint { return t.entryPoints }

// EntryPoint looks up an entry point by (execution model, name), which
// together uniquely pin one (spec.md §4.E).
func (t *IdTable) EntryPoint(model spirvbin.ExecutionModel, name string) (*EntryPoint, error) {
	for _, e := range t.entryPoints {
		if e.Model == model && e.Name == name {
			return e, nil
		}
	}
	return nil, errs.Translationf("no %v entry point named %q", model, name)
}

// AddCapability records an OpCapability.
func (t *IdTable) AddCapability(c spirvbin.Capability) { t.capabilities[c] = true }

// HasCapability reports whether c was declared.
func (t *IdTable) HasCapability(c spirvbin.Capability) bool { return t.capabilities[c] }
