// Package stream defines the Stream entity (§3) and the stream-coding
// type table used by the MPLS and CLPI parsers (§4.2, §4.3) to map a
// raw coding-type byte to a codec tag.
package stream

import "github.com/yxbh/bdpl/internal/langname"

// Codec is the enum tag carried by Stream.Codec. Unknown coding types
// map to CodecUnknown rather than failing the parse (§4.2, §7).
type Codec string

const (
	CodecH264             Codec = "H.264/AVC"
	CodecHEVC             Codec = "HEVC"
	CodecMPEG1Video       Codec = "MPEG-1"
	CodecMPEG2Video       Codec = "MPEG-2"
	CodecVC1              Codec = "VC-1"
	CodecLPCM             Codec = "LPCM"
	CodecMPEG1Audio       Codec = "MP1"
	CodecMPEG2Audio       Codec = "MP2"
	CodecAC3              Codec = "AC3"
	CodecAC3Plus          Codec = "AC3+"
	CodecAC3PlusSecondary Codec = "AC3+ Secondary"
	CodecTrueHD           Codec = "TrueHD"
	CodecDTS              Codec = "DTS"
	CodecDTSHD            Codec = "DTS-HD"
	CodecDTSHDMaster      Codec = "DTS-HD MA"
	CodecDTSHDSecondary   Codec = "DTS-HD Secondary"
	CodecMPEG2AAC         Codec = "MPEG-2 AAC"
	CodecMPEG4AAC         Codec = "MPEG-4 AAC"
	CodecPG               Codec = "PGS"
	CodecIG               Codec = "IGS"
	CodecSubtitle         Codec = "Subtitle"
	CodecUnknown          Codec = "UNKNOWN"
)

// codingTypes maps the 1-byte BDMV stream_coding_type field (as it
// appears in both MPLS STN tables and CLPI ProgramInfo entries) to a
// Codec tag. Matches the table named in spec §4.2.
var codingTypes = map[byte]Codec{
	0x01: CodecMPEG1Video,
	0x02: CodecMPEG2Video,
	0x1B: CodecH264,
	0x24: CodecHEVC,
	0xEA: CodecVC1,
	0x80: CodecLPCM,
	0x03: CodecMPEG1Audio,
	0x04: CodecMPEG2Audio,
	0x81: CodecAC3,
	0x82: CodecDTS,
	0x83: CodecTrueHD,
	0x84: CodecAC3Plus,
	0x85: CodecDTSHD,
	0x86: CodecDTSHDMaster,
	0xA1: CodecAC3PlusSecondary,
	0xA2: CodecDTSHDSecondary,
	0x0F: CodecMPEG2AAC,
	0x11: CodecMPEG4AAC,
	0x90: CodecPG,
	0x91: CodecIG,
	0x92: CodecSubtitle,
}

// FromCodingType maps a raw stream_coding_type byte to a Codec. ok is
// false for a coding type this table does not recognize; callers
// should use CodecUnknown and record an UnknownEnum warning rather
// than fail the parse (§4.2, §7).
func FromCodingType(raw byte) (codec Codec, ok bool) {
	c, found := codingTypes[raw]
	if !found {
		return CodecUnknown, false
	}
	return c, true
}

// IsGraphicsOrSubtitle reports whether codec is a presentation
// graphics, interactive graphics, or text subtitle stream — the
// stream kinds whose attribute block carries a 3-byte language code
// the same way audio does.
func IsGraphicsOrSubtitle(codec Codec) bool {
	switch codec {
	case CodecPG, CodecIG, CodecSubtitle:
		return true
	default:
		return false
	}
}

// IsAudio reports whether codec is one of the audio coding types.
func IsAudio(codec Codec) bool {
	switch codec {
	case CodecLPCM, CodecMPEG1Audio, CodecMPEG2Audio, CodecAC3, CodecAC3Plus,
		CodecAC3PlusSecondary, CodecTrueHD, CodecDTS, CodecDTSHD, CodecDTSHDMaster,
		CodecDTSHDSecondary, CodecMPEG2AAC, CodecMPEG4AAC:
		return true
	default:
		return false
	}
}

// IsVideo reports whether codec is one of the video coding types.
func IsVideo(codec Codec) bool {
	switch codec {
	case CodecH264, CodecHEVC, CodecMPEG1Video, CodecMPEG2Video, CodecVC1:
		return true
	default:
		return false
	}
}

// Stream is the immutable §3 Stream entity: a transport-stream PID
// tagged with a codec and an optional 3-letter language code.
type Stream struct {
	PID      uint16 `json:"pid"`
	Codec    Codec  `json:"codec"`
	Language string `json:"lang,omitempty"`

	// Hidden marks a stream present in a clip's full program table but
	// absent from a playlist's own STN table (§4.2's playlist-local
	// Stream Number Table) — a disc muxing tracks the playlist never
	// actually selects. No parser or analysis stage in this module sets
	// it, so parsed streams always carry false.
	Hidden bool
}

// LanguageName returns the display name for Language, or "" if unset.
func (s Stream) LanguageName() string {
	return langname.Name(s.Language)
}
