package igstream

import (
	"github.com/yxbh/bdpl/internal/binreader"
	"github.com/yxbh/bdpl/internal/mobj"
	"github.com/yxbh/bdpl/internal/model"
)

// commandListSlots names the three per-button command lists an ICS
// button carries, in the order they're stored (§4.6).
var commandListSlots = []string{"selected", "activated", "normal"}

// parseICS walks one Interactive Composition Segment's page/BOG/button
// hierarchy and decodes every button's command lists. Any malformed
// page, BOG, or button is skipped with a warning — this function never
// fails (§4.6, §7).
func parseICS(data []byte) (actions []model.IGButtonAction, chapterMarks []int, warnings []model.Warning) {
	r := binreader.New(data)

	pageCount, err := r.U8()
	if err != nil {
		warnings = append(warnings, warn("ICS", "missing page count"))
		return
	}

	for p := 0; p < int(pageCount); p++ {
		bogCount, err := r.U8()
		if err != nil {
			warnings = append(warnings, warn("ICS page", "truncated before BOG count"))
			return
		}
		for b := 0; b < int(bogCount); b++ {
			buttonCount, err := r.U8()
			if err != nil {
				warnings = append(warnings, warn("ICS BOG", "truncated before button count"))
				return
			}
			for btn := 0; btn < int(buttonCount); btn++ {
				buttonID, err := r.U16()
				if err != nil {
					warnings = append(warnings, warn("ICS button", "truncated before button id"))
					return
				}
				for _, slot := range commandListSlots {
					insnCount, err := r.U8()
					if err != nil {
						warnings = append(warnings, warn("ICS button "+slot, "truncated before instruction count"))
						return
					}
					for i := 0; i < int(insnCount); i++ {
						opcode, op1, op2, ok := readInstruction(r)
						if !ok {
							warnings = append(warnings, warn("ICS command list", "truncated instruction, skipping remainder of page"))
							return
						}
						kind, mnemonic := mobj.Classify(opcode)
						actions = append(actions, model.IGButtonAction{
							PageID:     p,
							ButtonID:   int(buttonID),
							TargetKind: kind,
							Arguments:  []uint32{op1, op2},
						})
						if kind == model.IGTargetPlayPLAtChapter {
							chapterMarks = append(chapterMarks, int(op2))
						}
						_ = mnemonic
					}
				}
			}
		}
	}

	return actions, chapterMarks, warnings
}

func readInstruction(r *binreader.Reader) (opcode, op1, op2 uint32, ok bool) {
	var err error
	if opcode, err = r.U32(); err != nil {
		return 0, 0, 0, false
	}
	if op1, err = r.U32(); err != nil {
		return 0, 0, 0, false
	}
	if op2, err = r.U32(); err != nil {
		return 0, 0, 0, false
	}
	return opcode, op1, op2, true
}

func warn(context, message string) model.Warning {
	return model.Warning{Code: model.WarnMalformedSection, Context: context, Message: message}
}
