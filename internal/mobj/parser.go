package mobj

import (
	"github.com/yxbh/bdpl/internal/bdplerr"
	"github.com/yxbh/bdpl/internal/binreader"
	"github.com/yxbh/bdpl/internal/model"
)

const instructionSize = 12

// Result is the outcome of parsing MovieObject.bdmv.
type Result struct {
	Objects  []model.MovieObject
	Warnings []model.Warning
}

// Parse decodes MovieObject.bdmv: a 32-bit object count followed by
// that many objects, each a flags word, a 16-bit instruction count,
// and that many 12-byte instructions (§4.5).
func Parse(data []byte) (Result, error) {
	res := Result{}
	r := binreader.New(data)

	if err := r.Magic("MOBJ"); err != nil {
		return res, err
	}
	if _, err := r.String(4); err != nil { // version
		return res, err
	}
	if _, err := r.U32(); err != nil { // extension data start address
		return res, err
	}
	if _, err := r.U32(); err != nil { // MovieObjects section length
		return res, err
	}
	if err := r.Skip(4); err != nil { // reserved
		return res, err
	}

	objectCount, err := r.U32()
	if err != nil {
		return res, err
	}

	objects := make([]model.MovieObject, 0, objectCount)
	for i := 0; i < int(objectCount); i++ {
		obj, warns, err := parseOneObject(r, i)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			return res, err
		}
		objects = append(objects, obj)
	}

	res.Objects = objects
	return res, nil
}

func parseOneObject(r *binreader.Reader, index int) (model.MovieObject, []model.Warning, error) {
	var warnings []model.Warning
	obj := model.MovieObject{ID: index}

	if _, err := r.U16(); err != nil { // object flags (resume_intention_flag, menu_call_mask, title_search_mask)
		return obj, warnings, err
	}
	instructionCount, err := r.U16()
	if err != nil {
		return obj, warnings, err
	}

	if r.Remaining() < int(instructionCount)*instructionSize {
		return obj, warnings, &bdplerr.LengthOverflow{
			Section:   "MovieObject instructions",
			Declared:  int(instructionCount) * instructionSize,
			Remaining: r.Remaining(),
		}
	}

	seen := make(map[string]bool)
	for i := 0; i < int(instructionCount); i++ {
		opcode, err := r.U32()
		if err != nil {
			return obj, warnings, err
		}
		op1, err := r.U32()
		if err != nil {
			return obj, warnings, err
		}
		op2, err := r.U32()
		if err != nil {
			return obj, warnings, err
		}

		insn := decodeInstruction(opcode, op1, op2)
		obj.Instructions = append(obj.Instructions, insn)

		kind, _ := Classify(opcode)
		if IsPlayPLFamily(kind) {
			stem := PlaylistStem(op1)
			if !seen[stem] {
				seen[stem] = true
				obj.ReferencedPlaylists = append(obj.ReferencedPlaylists, stem)
			}
		}
	}

	return obj, warnings, nil
}
