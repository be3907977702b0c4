// Package clpi parses BDMV ClipInfo files (§4.3): the per-clip program
// stream table referenced by play items via their 5-digit clip id.
//
// Grounded on go-bdinfo's internal/bdrom/clipinfo.go StreamClipFile.Scan
// — the same HDMV0x00 header, clip-index indirection, and per-PID
// attribute walk, rewritten over a bounds-checked binreader.Reader and
// returning an immutable model.Clip instead of a mutated map.
package clpi

import (
	"fmt"
	"strings"

	"github.com/yxbh/bdpl/internal/bdplerr"
	"github.com/yxbh/bdpl/internal/binreader"
	"github.com/yxbh/bdpl/internal/model"
	"github.com/yxbh/bdpl/internal/stream"
)

// Result is the outcome of parsing one *.clpi file.
type Result struct {
	Clip     model.Clip
	Warnings []model.Warning
}

// Parse decodes one CLPI file's bytes into a Clip tagged with clipID
// (the 5-digit stem of the source filename, e.g. "00001").
func Parse(clipID string, data []byte) (Result, error) {
	res := Result{Clip: model.Clip{ClipID: clipID}}

	r := binreader.New(data)
	fileType, err := r.String(8)
	if err != nil {
		return res, err
	}
	switch fileType {
	case "HDMV0100", "HDMV0200", "HDMV0300":
	default:
		if !strings.HasPrefix(fileType, "HDMV") {
			return res, &bdplerr.MagicMismatch{Expected: "HDMV", Got: fileType}
		}
		return res, &bdplerr.UnsupportedVersion{Got: fileType}
	}

	if err := r.Seek(12); err != nil {
		return res, err
	}
	clipInfoOffset, err := r.U32()
	if err != nil {
		return res, err
	}
	if err := r.Seek(int(clipInfoOffset)); err != nil {
		return res, &bdplerr.BoundsError{Offset: int(clipInfoOffset), Want: 0, Have: len(data)}
	}
	clipInfoLength, err := r.U32()
	if err != nil {
		return res, err
	}
	blockStart := r.Tell()
	clipInfoData, err := r.Sub(blockStart, int(clipInfoLength))
	if err != nil {
		return res, &bdplerr.LengthOverflow{Section: "ClipInfo", Declared: int(clipInfoLength), Remaining: len(data) - blockStart}
	}
	if len(clipInfoData) < 12 {
		return res, fmt.Errorf("clip %s: ClipInfo block too short (%d bytes)", clipID, len(clipInfoData))
	}

	streams, warnings := parseProgramInfo(clipInfoData)
	res.Clip.Streams = streams
	res.Warnings = warnings
	return res, nil
}

// parseProgramInfo walks the ClipInfo block's program-stream table: a
// stream count at byte 8, then a run of PID + length-prefixed
// attribute entries starting at byte 10.
func parseProgramInfo(clipData []byte) ([]stream.Stream, []model.Warning) {
	var warnings []model.Warning
	r := binreader.New(clipData)
	if err := r.Seek(8); err != nil {
		return nil, warnings
	}
	streamCount, err := r.U8()
	if err != nil {
		return nil, warnings
	}
	if err := r.Skip(1); err != nil { // reserved
		return nil, warnings
	}

	var streams []stream.Stream
	for i := 0; i < int(streamCount); i++ {
		if r.Remaining() < 4 {
			warnings = append(warnings, model.Warning{
				Code:    model.WarnMalformedSection,
				Context: fmt.Sprintf("program info entry %d", i),
				Message: "stream table truncated before PID",
			})
			break
		}
		pid, err := r.U16()
		if err != nil {
			break
		}
		attrLength, err := r.U8()
		if err != nil {
			break
		}
		attrStart := r.Tell()
		attrEnd := attrStart + int(attrLength)
		if attrEnd > len(clipData) {
			warnings = append(warnings, model.Warning{
				Code:    model.WarnMalformedSection,
				Context: fmt.Sprintf("program info entry %d (pid %d)", i, pid),
				Message: "stream attribute block runs past end of buffer",
			})
			break
		}

		codingType, err := r.U8()
		if err != nil {
			break
		}
		codec, known := stream.FromCodingType(codingType)
		if !known {
			warnings = append(warnings, model.Warning{
				Code:    model.WarnUnknownOpcode,
				Context: fmt.Sprintf("pid %d", pid),
				Message: fmt.Sprintf("unknown stream coding type 0x%x", codingType),
			})
		}

		var lang string
		switch {
		case stream.IsAudio(codec):
			if _, err := r.U8(); err == nil { // channel layout / sample rate nibble
				lang, _ = r.String(3)
			}
		case stream.IsGraphicsOrSubtitle(codec):
			if codec == stream.CodecSubtitle {
				_, _ = r.U8() // reserved
			}
			lang, _ = r.String(3)
		}

		streams = append(streams, stream.Stream{PID: pid, Codec: codec, Language: strings.TrimRight(lang, "\x00")})

		if err := r.Seek(attrEnd); err != nil {
			break
		}
	}

	return streams, warnings
}
