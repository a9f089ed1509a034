package spirvbin

import (
	"encoding/binary"
	"testing"
)

func words(ws ...uint32) []byte {
	buf := make([]byte, len(ws)*4)
	for i, w := range ws {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func packString(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

func header(idBound uint32) []uint32 {
	return []uint32{MagicNumber, 0x00010300, 0, idBound, 0}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	bin := words(0xdeadbeef, 0, 0, 1, 0)
	if _, _, err := ParseHeader(bin); err == nil {
		t.Fatal("expected an error for a bad magic number")
	}
}

func TestParseHeaderRejectsShortModule(t *testing.T) {
	if _, _, err := ParseHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a too-short module")
	}
}

func TestParseHeaderDecodesVersionAndIdBound(t *testing.T) {
	bin := words(header(42)...)
	h, _, err := ParseHeader(bin)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.VersionMajor != 1 || h.VersionMinor != 3 {
		t.Fatalf("version = %d.%d, want 1.3", h.VersionMajor, h.VersionMinor)
	}
	if h.IdBound != 42 {
		t.Fatalf("IdBound = %d, want 42", h.IdBound)
	}
}

func TestReaderDecodesInstructionStream(t *testing.T) {
	ws := header(2)
	// OpTypeVoid %1: word count 2, opcode 19
	ws = append(ws, uint32(2)<<16|uint32(OpTypeVoid), 1)
	bin := words(ws...)
	_, r, err := ParseHeader(bin)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	instrs, err := r.Instructions()
	if err != nil {
		t.Fatalf("Instructions: %v", err)
	}
	if len(instrs) != 1 {
		t.Fatalf("got %d instructions, want 1", len(instrs))
	}
	if instrs[0].Op != OpTypeVoid {
		t.Fatalf("op = %v, want OpTypeVoid", instrs[0].Op)
	}
}

func TestReaderRejectsTruncatedInstruction(t *testing.T) {
	ws := header(2)
	ws = append(ws, uint32(5)<<16|uint32(OpTypeVoid)) // claims 5 words, only 1 present
	bin := words(ws...)
	_, r, err := ParseHeader(bin)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if _, err := r.Instructions(); err == nil {
		t.Fatal("expected an error for a truncated instruction")
	}
}

func TestInstructionStringDecodesNullTerminatedLiteral(t *testing.T) {
	ws := header(2)
	body := packString("main")
	ws = append(ws, uint32(len(body)+2)<<16|uint32(OpName), 1)
	ws = append(ws, body...)
	bin := words(ws...)
	_, r, err := ParseHeader(bin)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	instrs, err := r.Instructions()
	if err != nil {
		t.Fatalf("Instructions: %v", err)
	}
	name, _, err := instrs[0].String(1)
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	if name != "main" {
		t.Fatalf("name = %q, want %q", name, "main")
	}
}
