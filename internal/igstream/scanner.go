// Package igstream is the experimental IG Stream Parser (§4.6): it
// scans a candidate menu *.m2ts for Interactive Composition Segments
// and emits the button navigation commands they contain.
//
// Grounded on the MPEG-TS packet layout from ausocean/av's
// container/mts package (188-byte sync-byte-prefixed packets, PID in
// the low 13 bits of the header's second/third bytes, payload offset
// shifted past an optional adaptation field) — the same bit
// arithmetic, rewritten as a bounded scan over binreader.Reader. HDMV
// instruction decoding is shared with internal/mobj since IG button
// command lists use the identical 12-byte encoding (§4.6).
package igstream

import (
	"github.com/yxbh/bdpl/internal/model"
)

const (
	packetSize = 188
	syncByte   = 0x47

	igPIDLow  = 0x1400
	igPIDHigh = 0x141F

	icsSegmentType = 0x18

	// maxPacketsScanned is the fallback packet-scan cap when Scan is
	// called with maxPackets <= 0.
	maxPacketsScanned = 200000
)

// Result is the outcome of scanning one candidate menu clip.
type Result struct {
	Actions        []model.IGButtonAction
	ChapterMarks   []int // chapter indices referenced by PlayPLAtChapter operands
	Warnings       []model.Warning
	PacketsScanned int
	Truncated      bool // true if the scan hit the packet cap (Scan's maxPackets) before EOF
}

// Scan walks data as an MPEG-TS byte stream and extracts IG button
// actions. It never fails: malformed packets, PES, or segments are
// skipped with a warning, and the function always returns a Result
// (possibly empty, §4.6, §7). maxPackets bounds worst-case cost on
// malformed streams (§5); a value <= 0 falls back to maxPacketsScanned.
func Scan(data []byte, maxPackets int) Result {
	if maxPackets <= 0 {
		maxPackets = maxPacketsScanned
	}

	res := Result{}
	pidPayloads := make(map[uint16][]byte)

	n := len(data) / packetSize
	for i := 0; i < n; i++ {
		if res.PacketsScanned >= maxPackets {
			res.Truncated = true
			res.Warnings = append(res.Warnings, model.Warning{
				Code:    model.WarnIGScanTruncated,
				Context: "igstream",
				Message: "reached packet scan limit before end of stream",
			})
			break
		}
		res.PacketsScanned++

		pkt := data[i*packetSize : (i+1)*packetSize]
		if pkt[0] != syncByte {
			continue // lost sync; skip this packet and resynchronize on the next
		}
		pid := (uint16(pkt[1]&0x1F) << 8) | uint16(pkt[2])
		if pid < igPIDLow || pid > igPIDHigh {
			continue
		}

		payload, pusi, ok := packetPayload(pkt)
		if !ok {
			res.Warnings = append(res.Warnings, model.Warning{
				Code:    model.WarnMalformedSection,
				Context: "igstream packet",
				Message: "packet has no payload (adaptation-field-only)",
			})
			continue
		}

		if pusi {
			// A new PES unit starts here; flush whatever was accumulated
			// for this PID and start fresh.
			if prior, found := pidPayloads[pid]; found && len(prior) > 0 {
				processPES(prior, &res)
			}
			pesPayload, ok := pesData(payload)
			if !ok {
				res.Warnings = append(res.Warnings, model.Warning{
					Code:    model.WarnMalformedSection,
					Context: "igstream PES header",
					Message: "unrecognized PES start code",
				})
				pidPayloads[pid] = nil
				continue
			}
			pidPayloads[pid] = append([]byte{}, pesPayload...)
		} else if prior, found := pidPayloads[pid]; found {
			pidPayloads[pid] = append(prior, payload...)
		}
	}

	for _, payload := range pidPayloads {
		if len(payload) > 0 {
			processPES(payload, &res)
		}
	}

	return res
}

// packetPayload extracts a transport packet's payload bytes, honoring
// an optional adaptation field, and reports whether this packet
// carries the payload-unit-start-indicator.
func packetPayload(pkt []byte) (payload []byte, pusi bool, ok bool) {
	if len(pkt) < 4 {
		return nil, false, false
	}
	pusi = pkt[1]&0x40 != 0
	afc := (pkt[3] >> 4) & 0x03
	switch afc {
	case 0x01: // payload only
		return pkt[4:], pusi, true
	case 0x03: // adaptation field then payload
		if len(pkt) < 5 {
			return nil, pusi, false
		}
		adaptLen := int(pkt[4])
		off := 5 + adaptLen
		if off > len(pkt) {
			return nil, pusi, false
		}
		return pkt[off:], pusi, true
	default: // adaptation field only, or reserved: no payload
		return nil, pusi, false
	}
}

// pesData strips a PES packet's start code, stream id, and header
// fields, returning the segment payload that follows.
func pesData(b []byte) ([]byte, bool) {
	if len(b) < 9 {
		return nil, false
	}
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x01 {
		return nil, false
	}
	headerDataLength := int(b[8])
	off := 9 + headerDataLength
	if off > len(b) {
		return nil, false
	}
	return b[off:], true
}

// processPES scans a reassembled PES payload for an Interactive
// Composition Segment and, if found, decodes its button actions.
func processPES(payload []byte, res *Result) {
	if len(payload) < 3 {
		return
	}
	segmentType := payload[0]
	segmentLength := int(payload[1])<<8 | int(payload[2])
	if 3+segmentLength > len(payload) {
		res.Warnings = append(res.Warnings, model.Warning{
			Code:    model.WarnMalformedSection,
			Context: "igstream segment",
			Message: "segment declares length past end of PES payload",
		})
		return
	}
	if segmentType != icsSegmentType {
		return
	}
	segment := payload[3 : 3+segmentLength]
	actions, marks, warns := parseICS(segment)
	res.Actions = append(res.Actions, actions...)
	res.ChapterMarks = append(res.ChapterMarks, marks...)
	res.Warnings = append(res.Warnings, warns...)
}
