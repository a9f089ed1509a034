package spirvbin

import (
	"encoding/binary"

	"github.com/kazan-3d/kazan-go/errs"
)

// MagicNumber is the required first word of every SPIR-V module.
const MagicNumber uint32 = 0x07230203

// Header is the fixed five-word SPIR-V module header.
type Header struct {
	VersionMajor, VersionMinor int
	GeneratorMagic             uint32
	IdBound                    int
	Schema                     uint32
}

// Instruction is one decoded SPIR-V instruction: its opcode, its operand
// words (not including the opcode/word-count header word), and the offset
// of its header word in the module — the location errs.ParserError blames.
type Instruction struct {
	Op       Op
	Operands []uint32
	Offset   int
}

// Word returns operand i, or a ParserError if the instruction is too
// short.
func (ins Instruction) Word(i int) (uint32, error) {
	if i < 0 || i >= len(ins.Operands) {
		return 0, errs.Parserf(ins.Offset, "opcode %d: expected at least %d operand words, got %d", ins.Op, i+1, len(ins.Operands))
	}
	return ins.Operands[i], nil
}

// String decodes a null-terminated, word-packed UTF-8 literal string
// starting at operand index i, per the SPIR-V binary form, and returns the
// index of the first operand word following it.
func (ins Instruction) String(i int) (string, int, error) {
	var b []byte
	for {
		w, err := ins.Word(i)
		if err != nil {
			return "", 0, errs.Parserf(ins.Offset, "unterminated literal string")
		}
		i++
		bs := [4]byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
		done := false
		for _, c := range bs {
			if c == 0 {
				done = true
				break
			}
			b = append(b, c)
		}
		if done {
			return string(b), i, nil
		}
	}
}

// Reader decodes a SPIR-V binary module word-by-word.
type Reader struct {
	words []uint32
}

// ParseHeader validates the module's magic number and decodes its header.
// bin's length must be a multiple of 4 and at least 20 bytes (spec.md §4.D).
func ParseHeader(bin []byte) (*Header, *Reader, error) {
	if len(bin) < 20 {
		return nil, nil, errs.Parserf(0, "module is only %d bytes, shorter than the 20-byte header", len(bin))
	}
	if len(bin)%4 != 0 {
		return nil, nil, errs.Parserf(0, "module length %d is not a multiple of 4", len(bin))
	}

	words := make([]uint32, len(bin)/4)
	var order binary.ByteOrder = binary.LittleEndian
	if binary.LittleEndian.Uint32(bin[0:4]) != MagicNumber {
		order = binary.BigEndian
		if order.Uint32(bin[0:4]) != MagicNumber {
			return nil, nil, errs.Parserf(0, "bad magic number 0x%08x", binary.LittleEndian.Uint32(bin[0:4]))
		}
	}
	for i := range words {
		words[i] = order.Uint32(bin[i*4 : i*4+4])
	}

	h := &Header{
		VersionMajor: int(words[1]>>16) & 0xff,
		VersionMinor: int(words[1]>>8) & 0xff,
		GeneratorMagic: words[2],
		IdBound:      int(words[3]),
		Schema:       words[4],
	}
	if h.Schema != 0 {
		return nil, nil, errs.Parserf(4, "non-zero schema %d is not supported", h.Schema)
	}
	if h.IdBound < 1 {
		return nil, nil, errs.Parserf(3, "id bound %d must be at least 1", h.IdBound)
	}

	return h, &Reader{words: words[5:]}, nil
}

// Next decodes the next instruction, or returns ok=false at end of stream.
func (r *Reader) Next(startOffset int) (Instruction, bool, error) {
	if len(r.words) == 0 {
		return Instruction{}, false, nil
	}
	header := r.words[0]
	wordCount := int(header >> 16)
	op := Op(header & 0xffff)
	if wordCount < 1 {
		return Instruction{}, false, errs.Parserf(startOffset, "instruction word count %d must be at least 1", wordCount)
	}
	if wordCount > len(r.words) {
		return Instruction{}, false, errs.Parserf(startOffset, "instruction claims %d words but only %d remain", wordCount, len(r.words))
	}
	ins := Instruction{Op: op, Operands: r.words[1:wordCount], Offset: startOffset}
	r.words = r.words[wordCount:]
	return ins, true, nil
}

// Instructions decodes every remaining instruction in the stream.
func (r *Reader) Instructions() ([]Instruction, error) {
	var out []Instruction
	offset := 5
	for {
		ins, ok, err := r.Next(offset)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, ins)
		offset += len(ins.Operands) + 1
	}
}
