package mobj

import (
	"encoding/binary"
	"testing"

	"github.com/yxbh/bdpl/internal/model"
)

func be16(v uint16) []byte { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); return b }
func be32(v uint32) []byte { b := make([]byte, 4); binary.BigEndian.PutUint32(b, v); return b }

func opcodeWord(g, sg, c uint32) uint32 {
	return (g&0xFF)<<24 | (sg&0xFF)<<16 | (c & 0xFFFF)
}

func buildInstruction(opcode, op1, op2 uint32) []byte {
	b := append([]byte{}, be32(opcode)...)
	b = append(b, be32(op1)...)
	b = append(b, be32(op2)...)
	return b
}

func buildObject(instructions [][]byte) []byte {
	var b []byte
	b = append(b, be16(0)...) // object flags
	b = append(b, be16(uint16(len(instructions)))...)
	for _, ins := range instructions {
		b = append(b, ins...)
	}
	return b
}

func buildMOBJ(objects [][]byte) []byte {
	var body []byte
	for _, o := range objects {
		body = append(body, o...)
	}
	header := []byte("MOBJ0200")
	buf := append([]byte{}, header...)
	buf = append(buf, be32(0)...)                       // extension data start address
	buf = append(buf, be32(uint32(4+len(body)))...)     // section length
	buf = append(buf, make([]byte, 4)...)               // reserved
	buf = append(buf, be32(uint32(len(objects)))...)
	buf = append(buf, body...)
	return buf
}

func TestParse_ReferencedPlaylistsFromPlayPLFamily(t *testing.T) {
	playPL := buildInstruction(opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPL), 7, 0)
	playPLAtMark := buildInstruction(opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPLAtMark), 7, 3)
	jumpTitle := buildInstruction(opcodeWord(groupBranch, subGroupJumpTitle, cmdJumpTitle), 1, 0)
	unknown := buildInstruction(0xFFFFFFFF, 0, 0)

	obj := buildObject([][]byte{playPL, playPLAtMark, jumpTitle, unknown})
	data := buildMOBJ([][]byte{obj})

	res, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(res.Objects) != 1 {
		t.Fatalf("Objects = %d, want 1", len(res.Objects))
	}
	got := res.Objects[0]
	if len(got.Instructions) != 4 {
		t.Fatalf("Instructions = %d, want 4", len(got.Instructions))
	}
	if len(got.ReferencedPlaylists) != 1 || got.ReferencedPlaylists[0] != "00007" {
		t.Errorf("ReferencedPlaylists = %v, want [00007] (deduplicated)", got.ReferencedPlaylists)
	}
	if got.Instructions[2].Mnemonic != "JumpTitle" {
		t.Errorf("Instructions[2].Mnemonic = %q, want JumpTitle", got.Instructions[2].Mnemonic)
	}
	if got.Instructions[3].Mnemonic != "" {
		t.Errorf("Instructions[3].Mnemonic = %q, want empty for unknown opcode", got.Instructions[3].Mnemonic)
	}
}

func TestParse_MissingMagicFails(t *testing.T) {
	data := append([]byte("XXXX0200"), make([]byte, 12)...)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for bad magic, got nil")
	}
}

func TestParse_MultipleObjects(t *testing.T) {
	obj1 := buildObject([][]byte{buildInstruction(opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPL), 1, 0)})
	obj2 := buildObject([][]byte{buildInstruction(opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPL), 2, 0)})
	data := buildMOBJ([][]byte{obj1, obj2})

	res, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(res.Objects) != 2 {
		t.Fatalf("Objects = %d, want 2", len(res.Objects))
	}
	if res.Objects[0].ID != 0 || res.Objects[1].ID != 1 {
		t.Errorf("object IDs = %d, %d, want 0, 1", res.Objects[0].ID, res.Objects[1].ID)
	}
}

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		opcode uint32
		want   model.IGTargetKind
	}{
		{opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPL), model.IGTargetPlayPL},
		{opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPLAtMark), model.IGTargetPlayPLAtMark},
		{opcodeWord(groupBranch, subGroupPlayPL, cmdPlayPLAtChapter), model.IGTargetPlayPLAtChapter},
		{opcodeWord(groupSystem, subGroupSetRegister, cmdSetRegister), model.IGTargetSetRegister},
		{0xDEADBEEF, model.IGTargetOther},
	}
	for _, tt := range tests {
		got, _ := Classify(tt.opcode)
		if got != tt.want {
			t.Errorf("Classify(0x%x) = %s, want %s", tt.opcode, got, tt.want)
		}
	}
}
