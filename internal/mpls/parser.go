// Package mpls parses BDMV PlayList files (§4.2): header, play items
// (clip refs, in/out times, stream number tables), and playlist marks.
//
// Grounded on go-bdinfo's internal/bdrom/playlist.go Scan — the same
// cursor arithmetic, generalized to return an immutable model.Playlist
// instead of mutating a live PlaylistFile, and to record warnings
// instead of aborting when a sub-block's declared length misbehaves.
package mpls

import (
	"fmt"
	"strings"

	"github.com/yxbh/bdpl/internal/bdplerr"
	"github.com/yxbh/bdpl/internal/binreader"
	"github.com/yxbh/bdpl/internal/model"
	"github.com/yxbh/bdpl/internal/stream"
)

// Result is the outcome of parsing one *.mpls file: the playlist plus
// any non-fatal warnings encountered along the way (§4.2's robustness
// contract).
type Result struct {
	Playlist model.Playlist
	Warnings []model.Warning
}

// Parse decodes one MPLS file's bytes into a Playlist. Fatal failures
// (missing magic, a section header overrunning the buffer) abort the
// whole file per §4.2/§7; everything else becomes a warning and
// parsing continues with the next play item or mark.
func Parse(filename string, data []byte) (Result, error) {
	r := binreader.New(data)
	res := Result{}

	if err := r.Magic("MPLS"); err != nil {
		return res, err
	}
	version, err := r.String(4)
	if err != nil {
		return res, err
	}
	res.Playlist.MPLSFilename = filename
	res.Playlist.Version = version

	playlistOffset, err := r.U32()
	if err != nil {
		return res, err
	}
	marksOffset, err := r.U32()
	if err != nil {
		return res, err
	}
	_, err = r.U32() // ExtensionData offset, may be zero; unused by the core
	if err != nil {
		return res, err
	}

	items, warns, err := parsePlayItems(data, int(playlistOffset))
	if err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, warns...)
	res.Playlist.PlayItems = items

	if marksOffset != 0 {
		marks, warns := parseMarks(data, int(marksOffset), len(items))
		res.Warnings = append(res.Warnings, warns...)
		res.Playlist.Chapters = marks
	}

	if len(res.Playlist.PlayItems) == 0 {
		return res, fmt.Errorf("playlist %s has no play items", filename)
	}

	return res, nil
}

func warnf(code model.WarningCode, context, format string, args ...any) model.Warning {
	return model.Warning{Code: code, Message: fmt.Sprintf(format, args...), Context: context}
}

func parsePlayItems(data []byte, sectionStart int) ([]model.PlayItem, []model.Warning, error) {
	var warnings []model.Warning

	r := binreader.New(data)
	if err := r.Seek(sectionStart); err != nil {
		return nil, warnings, err
	}
	sectionLength, err := r.U32()
	if err != nil {
		return nil, warnings, err
	}
	sectionEnd := sectionStart + 4 + int(sectionLength)
	if sectionEnd > len(data) {
		return nil, warnings, &bdplerr.LengthOverflow{Section: "PlayList", Declared: int(sectionLength), Remaining: len(data) - sectionStart - 4}
	}

	if _, err := r.U16(); err != nil { // reserved
		return nil, warnings, err
	}
	itemCount, err := r.U16()
	if err != nil {
		return nil, warnings, err
	}
	if _, err := r.U16(); err != nil { // sub-path item count
		return nil, warnings, err
	}

	items := make([]model.PlayItem, 0, itemCount)
	for i := 0; i < int(itemCount); i++ {
		itemStart := r.Tell()
		itemLength, err := r.U16()
		if err != nil {
			return items, warnings, err
		}
		itemEnd := itemStart + 2 + int(itemLength)
		limit := sectionEnd
		if len(data) < limit {
			limit = len(data)
		}
		if itemEnd > limit {
			warnings = append(warnings, warnf(model.WarnMalformedSection, fmt.Sprintf("play item %d", i),
				"play item declares length %d past end of section, skipping remainder", itemLength))
			break
		}

		item, warns, perr := parseOnePlayItem(data, r, itemStart, itemEnd, i)
		warnings = append(warnings, warns...)
		if perr != nil {
			warnings = append(warnings, warnf(model.WarnMalformedSection, fmt.Sprintf("play item %d", i), "%v", perr))
			if err := r.Seek(itemEnd); err != nil {
				return items, warnings, nil
			}
			continue
		}
		items = append(items, item)
		if err := r.Seek(itemEnd); err != nil {
			break
		}
	}

	return items, warnings, nil
}

func parseOnePlayItem(data []byte, r *binreader.Reader, itemStart, itemEnd, index int) (model.PlayItem, []model.Warning, error) {
	var warnings []model.Warning
	var item model.PlayItem

	clipID, err := r.String(5)
	if err != nil {
		return item, warnings, err
	}
	if _, err := r.String(4); err != nil { // clip codec id, always "M2TS"
		return item, warnings, err
	}
	item.ClipID = clipID

	if err := r.Skip(1); err != nil { // reserved
		return item, warnings, err
	}
	flagsByte, err := r.U8()
	if err != nil {
		return item, warnings, err
	}
	multiAngle := (flagsByte >> 4) & 0x01
	if err := r.Skip(1); err != nil { // remainder of the connection-condition word
		return item, warnings, err
	}

	inTicks, err := r.U32()
	if err != nil {
		return item, warnings, err
	}
	outTicks, err := r.U32()
	if err != nil {
		return item, warnings, err
	}
	item.InTimeTicks = inTicks & 0x7fffffff
	item.OutTimeTicks = outTicks & 0x7fffffff
	if item.OutTimeTicks < item.InTimeTicks {
		warnings = append(warnings, warnf(model.WarnMalformedSection, fmt.Sprintf("play item %d", index),
			"out_time %d < in_time %d, clamping", item.OutTimeTicks, item.InTimeTicks))
		item.OutTimeTicks = item.InTimeTicks
	}
	item.SegmentKey = model.NewSegmentKey(item.ClipID, item.InTimeTicks, item.OutTimeTicks)

	// UO mask (8 bytes) + item flags (1) + still mode (1) + still time (2).
	if err := r.Skip(12); err != nil {
		return item, warnings, err
	}

	if multiAngle > 0 {
		angleCount, err := r.U8()
		if err != nil {
			return item, warnings, err
		}
		if err := r.Skip(1); err != nil { // angle flags
			return item, warnings, err
		}
		for a := 0; a < int(angleCount)-1; a++ {
			if r.Tell()+10 > itemEnd {
				warnings = append(warnings, warnf(model.WarnMalformedSection, fmt.Sprintf("play item %d angle %d", index, a),
					"angle block runs past play item end, skipping remaining angles"))
				break
			}
			if err := r.Skip(10); err != nil { // 5-char clip id + 4-char codec id + reserved byte
				return item, warnings, err
			}
			item.AngleIndex = a + 1
		}
	}

	if r.Tell()+2 > itemEnd {
		warnings = append(warnings, warnf(model.WarnMalformedSection, fmt.Sprintf("play item %d", index),
			"stream number table truncated"))
		return item, warnings, nil
	}
	if _, err := r.U16(); err != nil { // STN table length
		return item, warnings, err
	}
	if err := r.Skip(2); err != nil { // reserved
		return item, warnings, err
	}

	counts := make([]int, 7)
	for i := range counts {
		b, err := r.U8()
		if err != nil {
			return item, warnings, err
		}
		counts[i] = int(b)
	}
	if err := r.Skip(5); err != nil { // reserved
		return item, warnings, err
	}

	// video, audio, PG, IG, secondary audio, secondary video, PIP — in that order.
	var streams []stream.Stream
	for kind := 0; kind < 7; kind++ {
		for n := 0; n < counts[kind]; n++ {
			if r.Tell() >= itemEnd {
				warnings = append(warnings, warnf(model.WarnMalformedSection, fmt.Sprintf("play item %d", index),
					"stream table entry runs past play item end"))
				item.Streams = streams
				return item, warnings, nil
			}
			st, warn, err := parseStreamEntry(r)
			if err != nil {
				item.Streams = streams
				return item, warnings, nil
			}
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			if st != nil {
				streams = append(streams, *st)
			}
			if kind == 4 { // secondary audio carries two extra reference bytes
				_ = r.Skip(2)
			}
			if kind == 5 { // secondary video carries six extra reference bytes
				_ = r.Skip(6)
			}
		}
	}
	item.Streams = streams

	return item, warnings, nil
}

// parseStreamEntry parses one Stream Number Table entry: a
// length-prefixed header (carries the PID) followed by a
// length-prefixed attributes block (coding type + codec-specific
// fields, §4.2).
func parseStreamEntry(r *binreader.Reader) (*stream.Stream, *model.Warning, error) {
	headerLength, err := r.U8()
	if err != nil {
		return nil, nil, err
	}
	headerStart := r.Tell()
	headerType, err := r.U8()
	if err != nil {
		return nil, nil, err
	}

	var pid uint16
	switch headerType {
	case 1:
		pid, err = r.U16()
	case 2:
		if err = r.Skip(2); err == nil {
			pid, err = r.U16()
		}
	case 3:
		if err = r.Skip(1); err == nil {
			pid, err = r.U16()
		}
	case 4:
		if err = r.Skip(2); err == nil {
			pid, err = r.U16()
		}
	default:
		pid, err = r.U16()
	}
	if err != nil {
		return nil, nil, err
	}
	if err := r.Seek(headerStart + int(headerLength)); err != nil {
		return nil, nil, err
	}

	attrLength, err := r.U8()
	if err != nil {
		return nil, nil, err
	}
	attrStart := r.Tell()
	codingType, err := r.U8()
	if err != nil {
		return nil, nil, err
	}

	codec, known := stream.FromCodingType(codingType)
	var warn *model.Warning
	if !known {
		w := warnf(model.WarnUnknownOpcode, fmt.Sprintf("pid %d", pid), "unknown stream coding type 0x%x", codingType)
		warn = &w
	}

	var lang string
	switch {
	case stream.IsVideo(codec):
		// video format / frame rate / aspect ratio byte — not part of the §3 model
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

	if err := r.Seek(attrStart + int(attrLength)); err != nil {
		return nil, warn, err
	}

	return &stream.Stream{PID: pid, Codec: codec, Language: strings.TrimRight(lang, "\x00")}, warn, nil
}

func parseMarks(data []byte, offset, playItemCount int) ([]model.ChapterMark, []model.Warning) {
	var warnings []model.Warning
	r := binreader.New(data)
	if err := r.Seek(offset); err != nil {
		warnings = append(warnings, warnf(model.WarnMalformedSection, "PlayListMark", "marks offset out of range"))
		return nil, warnings
	}
	if _, err := r.U32(); err != nil { // section length
		warnings = append(warnings, warnf(model.WarnMalformedSection, "PlayListMark", "truncated section header"))
		return nil, warnings
	}
	count, err := r.U16()
	if err != nil {
		warnings = append(warnings, warnf(model.WarnMalformedSection, "PlayListMark", "truncated mark count"))
		return nil, warnings
	}

	marks := make([]model.ChapterMark, 0, count)
	for i := 0; i < int(count); i++ {
		if r.Remaining() < 14 {
			warnings = append(warnings, warnf(model.WarnMalformedSection, "PlayListMark", "mark %d runs past end of buffer", i))
			break
		}
		if _, err := r.U8(); err != nil { // reserved
			break
		}
		markType, err := r.U8()
		if err != nil {
			break
		}
		itemIdx, err := r.U16()
		if err != nil {
			break
		}
		timeTicks, err := r.U32()
		if err != nil {
			break
		}
		if err := r.Skip(6); err != nil { // duration + two reserved 16-bit fields
			break
		}
		if int(itemIdx) >= playItemCount {
			warnings = append(warnings, warnf(model.WarnMalformedSection, "PlayListMark", "mark %d references out-of-range play item %d", i, itemIdx))
			continue
		}
		marks = append(marks, model.ChapterMark{ID: i, Type: int(markType), TimeTicks: timeTicks, PlayItemIndex: int(itemIdx)})
	}
	return marks, warnings
}
