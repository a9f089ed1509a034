package spirvbin

// Op is a SPIR-V opcode. Values match the SPIR-V specification's binary
// encoding exactly, not just the subset this core implements, so that an
// unrecognized-but-well-formed instruction can still be named in a
// ParserError message.
type Op uint16

const (
	OpNop                      Op = 0
	OpUndef                    Op = 1
	OpSourceContinued          Op = 2
	OpSource                   Op = 3
	OpSourceExtension          Op = 4
	OpName                     Op = 5
	OpMemberName               Op = 6
	OpString                   Op = 7
	OpLine                     Op = 8
	OpExtension                Op = 10
	OpExtInstImport            Op = 11
	OpExtInst                  Op = 12
	OpMemoryModel              Op = 14
	OpEntryPoint               Op = 15
	OpExecutionMode            Op = 16
	OpCapability               Op = 17
	OpTypeVoid                 Op = 19
	OpTypeBool                 Op = 20
	OpTypeInt                  Op = 21
	OpTypeFloat                Op = 22
	OpTypeVector               Op = 23
	OpTypeMatrix               Op = 24
	OpTypeImage                Op = 25
	OpTypeSampler              Op = 26
	OpTypeSampledImage         Op = 27
	OpTypeArray                Op = 28
	OpTypeRuntimeArray         Op = 29
	OpTypeStruct               Op = 30
	OpTypeOpaque               Op = 31
	OpTypePointer              Op = 32
	OpTypeFunction             Op = 33
	OpTypeEvent                Op = 34
	OpConstantTrue             Op = 41
	OpConstantFalse            Op = 42
	OpConstant                 Op = 43
	OpConstantComposite        Op = 44
	OpConstantNull             Op = 46
	OpFunction                 Op = 54
	OpFunctionParameter        Op = 55
	OpFunctionEnd              Op = 56
	OpFunctionCall             Op = 57
	OpVariable                 Op = 59
	OpLoad                     Op = 61
	OpStore                    Op = 62
	OpAccessChain              Op = 65
	OpDecorate                 Op = 71
	OpMemberDecorate           Op = 72
	OpCompositeConstruct       Op = 80
	OpCompositeExtract         Op = 81
	OpCompositeInsert          Op = 82
	OpConvertFToU              Op = 109
	OpConvertFToS              Op = 110
	OpConvertSToF              Op = 111
	OpConvertUToF              Op = 112
	OpUConvert                 Op = 113
	OpSConvert                 Op = 114
	OpFConvert                 Op = 115
	OpBitcast                  Op = 124
	OpSNegate                  Op = 126
	OpFNegate                  Op = 127
	OpIAdd                     Op = 128
	OpFAdd                     Op = 129
	OpISub                     Op = 130
	OpFSub                     Op = 131
	OpIMul                     Op = 132
	OpFMul                     Op = 133
	OpUDiv                     Op = 134
	OpSDiv                     Op = 135
	OpFDiv                     Op = 136
	OpUMod                     Op = 137
	OpSRem                     Op = 138
	OpSMod                     Op = 139
	OpFRem                     Op = 140
	OpFMod                     Op = 141
	OpLogicalEqual             Op = 164
	OpLogicalNotEqual          Op = 165
	OpLogicalOr                Op = 166
	OpLogicalAnd               Op = 167
	OpLogicalNot               Op = 168
	OpSelect                   Op = 169
	OpIEqual                   Op = 170
	OpINotEqual                Op = 171
	OpUGreaterThan             Op = 172
	OpSGreaterThan             Op = 173
	OpUGreaterThanEqual        Op = 174
	OpSGreaterThanEqual        Op = 175
	OpULessThan                Op = 176
	OpSLessThan                Op = 177
	OpULessThanEqual           Op = 178
	OpSLessThanEqual           Op = 179
	OpFOrdEqual                Op = 180
	OpFOrdNotEqual             Op = 182
	OpFOrdLessThan             Op = 184
	OpFOrdGreaterThan          Op = 186
	OpFOrdLessThanEqual        Op = 188
	OpFOrdGreaterThanEqual     Op = 190
	OpShiftRightLogical        Op = 194
	OpShiftRightArithmetic     Op = 195
	OpShiftLeftLogical         Op = 196
	OpBitwiseOr                Op = 197
	OpBitwiseXor               Op = 198
	OpBitwiseAnd               Op = 199
	OpNot                      Op = 200
	OpPhi                      Op = 245
	OpLoopMerge                Op = 246
	OpSelectionMerge           Op = 247
	OpLabel                    Op = 248
	OpBranch                   Op = 249
	OpBranchConditional        Op = 250
	OpSwitch                   Op = 251
	OpReturn                   Op = 253
	OpReturnValue              Op = 254
	OpUnreachable              Op = 255
)

// Decoration identifies a SPIR-V Decoration enumerant.
type Decoration uint32

const (
	DecorationBlock         Decoration = 2
	DecorationBufferBlock   Decoration = 3
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationLocation      Decoration = 30
	DecorationComponent     Decoration = 31
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

// StorageClass identifies a SPIR-V StorageClass enumerant.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassFunction        StorageClass = 7
	StorageClassPrivate         StorageClass = 6
	StorageClassPushConstant    StorageClass = 9
)

// ExecutionModel identifies a SPIR-V ExecutionModel enumerant.
type ExecutionModel uint32

const (
	ExecutionModelVertex   ExecutionModel = 0
	ExecutionModelFragment ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
	ExecutionModelKernel   ExecutionModel = 6
)

func (e ExecutionModel) String() string {
	switch e {
	case ExecutionModelVertex:
		return "Vertex"
	case ExecutionModelFragment:
		return "Fragment"
	case ExecutionModelGLCompute:
		return "GLCompute"
	case ExecutionModelKernel:
		return "Kernel"
	default:
		return "Unknown"
	}
}

// Capability identifies a SPIR-V Capability enumerant. Values match the
// SPIR-V specification's numbering exactly, not just the subset this core
// implements (translate.implementedCapabilities is the allowlist), so that
// a refused capability can still be named in a ParserError message (spec.md
// §12 S6: "Parser_error{capability not implemented: Geometry}").
type Capability uint32

const (
	CapabilityMatrix       Capability = 0
	CapabilityShader       Capability = 1
	CapabilityGeometry     Capability = 2
	CapabilityTessellation Capability = 3
	CapabilityAddresses    Capability = 4
	CapabilityLinkage      Capability = 5
	CapabilityKernel       Capability = 6
	CapabilityInt64        Capability = 11

	CapabilityInputAttachment  Capability = 40
	CapabilitySampled1D        Capability = 43
	CapabilityImage1D          Capability = 44
	CapabilitySampledBuffer    Capability = 46
	CapabilityImageBuffer      Capability = 47
	CapabilityImageQuery       Capability = 50
	CapabilityDerivativeControl Capability = 51
)

func (c Capability) String() string {
	switch c {
	case CapabilityMatrix:
		return "Matrix"
	case CapabilityShader:
		return "Shader"
	case CapabilityGeometry:
		return "Geometry"
	case CapabilityTessellation:
		return "Tessellation"
	case CapabilityAddresses:
		return "Addresses"
	case CapabilityLinkage:
		return "Linkage"
	case CapabilityKernel:
		return "Kernel"
	case CapabilityInt64:
		return "Int64"
	case CapabilityInputAttachment:
		return "InputAttachment"
	case CapabilitySampled1D:
		return "Sampled1D"
	case CapabilityImage1D:
		return "Image1D"
	case CapabilitySampledBuffer:
		return "SampledBuffer"
	case CapabilityImageBuffer:
		return "ImageBuffer"
	case CapabilityImageQuery:
		return "ImageQuery"
	case CapabilityDerivativeControl:
		return "DerivativeControl"
	default:
		return "Unknown"
	}
}

// capabilityImpliesOf is the SPIR-V specification's per-capability
// "implicitly declares" column, restricted to the capabilities this core
// names. Implication is single-parent and acyclic in the SPIR-V spec
// itself; Implies walks it one step, calculateTypes' capability closure
// walks it to a fixed point.
var capabilityImpliesOf = map[Capability]Capability{
	CapabilityShader:            CapabilityMatrix,
	CapabilityGeometry:          CapabilityShader,
	CapabilityTessellation:      CapabilityShader,
	CapabilityInputAttachment:   CapabilityShader,
	CapabilityImage1D:           CapabilitySampled1D,
	CapabilityImageBuffer:       CapabilitySampledBuffer,
	CapabilityImageQuery:        CapabilityShader,
	CapabilityDerivativeControl: CapabilityShader,
}

// Implies reports the single capability c implicitly declares, per the
// SPIR-V specification's capability table, if any.
func (c Capability) Implies() (Capability, bool) {
	parent, ok := capabilityImpliesOf[c]
	return parent, ok
}

// BuiltIn identifies a SPIR-V BuiltIn enumerant.
type BuiltIn uint32

const (
	BuiltInPosition      BuiltIn = 0
	BuiltInVertexIndex   BuiltIn = 42
	BuiltInInstanceIndex BuiltIn = 43
)

func (b BuiltIn) String() string {
	switch b {
	case BuiltInPosition:
		return "Position"
	case BuiltInVertexIndex:
		return "VertexIndex"
	case BuiltInInstanceIndex:
		return "InstanceIndex"
	default:
		return "Unknown"
	}
}

// ExtInstGLSLStd450 identifies an instruction number within the
// "GLSL.std.450" extended instruction set.
type ExtInstGLSLStd450 uint32

const (
	GLSLFAbs    ExtInstGLSLStd450 = 4
	GLSLSAbs    ExtInstGLSLStd450 = 5
	GLSLFSign   ExtInstGLSLStd450 = 6
	GLSLFloor   ExtInstGLSLStd450 = 8
	GLSLFMin    ExtInstGLSLStd450 = 37
	GLSLUMin    ExtInstGLSLStd450 = 38
	GLSLSMin    ExtInstGLSLStd450 = 39
	GLSLFMax    ExtInstGLSLStd450 = 40
	GLSLUMax    ExtInstGLSLStd450 = 41
	GLSLSMax    ExtInstGLSLStd450 = 42
	GLSLFClamp  ExtInstGLSLStd450 = 43
	GLSLUClamp  ExtInstGLSLStd450 = 44
	GLSLSClamp  ExtInstGLSLStd450 = 45
	GLSLSqrt    ExtInstGLSLStd450 = 31
	GLSLInverseSqrt ExtInstGLSLStd450 = 32
)

// VertexFormat identifies a VkFormat value this core's vertex-input
// assembler knows how to convert (spec.md §4.G; vertex formats outside this
// table raise Unsupported).
type VertexFormat uint32

const (
	FormatR32G32B32Sfloat    VertexFormat = 106
	FormatR32G32B32A32Sfloat VertexFormat = 109
)

func (f VertexFormat) String() string {
	switch f {
	case FormatR32G32B32Sfloat:
		return "R32G32B32_SFLOAT"
	case FormatR32G32B32A32Sfloat:
		return "R32G32B32A32_SFLOAT"
	default:
		return "unknown"
	}
}
