// Package model holds the §3 data-model entities shared by every
// analysis stage: Stream (defined in internal/stream), PlayItem,
// Chapter, Playlist, Clip, TitleEntry, MovieObject, IGButtonAction,
// Episode, DiscAnalysis, and Warning. Every entity is produced by
// exactly one parser or analysis stage and is read-only thereafter.
package model

import (
	"fmt"

	"github.com/yxbh/bdpl/internal/stream"
)

// TicksPerMillisecond is the 45 kHz Blu-ray tick rate expressed as
// ticks per millisecond (45000 / 1000).
const TicksPerMillisecond = 45.0

// TicksToMillis converts a 45 kHz tick count to milliseconds.
func TicksToMillis(ticks uint32) float64 {
	return float64(ticks) / TicksPerMillisecond
}

// MillisToTicks converts milliseconds back to 45 kHz ticks, rounding
// to the nearest tick.
func MillisToTicks(ms float64) uint32 {
	return uint32(ms*TicksPerMillisecond + 0.5)
}

// Quantize rounds x to the nearest multiple of q. With q=250 this is
// the segment-key time tolerance defined in §3.
func Quantize(x float64, q float64) float64 {
	if q <= 0 {
		return x
	}
	return float64(int64(x/q+0.5)) * q
}

// PlayItem is one entry in a Playlist, referencing a clip and a time range.
type PlayItem struct {
	ClipID        string `json:"clip_id"` // zero-padded to width 5
	InTimeTicks   uint32 `json:"-"`
	OutTimeTicks  uint32 `json:"-"`
	Streams       []stream.Stream `json:"streams"`
	SegmentKey    SegmentKey      `json:"-"`
	Label         SegmentLabel    `json:"label"`
	AngleIndex    int             `json:"-"` // number of extra angle entries skipped in the multi-angle block; 0 for single-angle items
}

// M2TSFilename derives the STREAM/*.m2ts filename this play item refers to.
func (p PlayItem) M2TSFilename() string {
	return p.ClipID + ".m2ts"
}

// DurationTicks is out − in, per §3's invariant (out ≥ in).
func (p PlayItem) DurationTicks() uint32 {
	if p.OutTimeTicks < p.InTimeTicks {
		return 0
	}
	return p.OutTimeTicks - p.InTimeTicks
}

func (p PlayItem) DurationMillis() float64 {
	return TicksToMillis(p.DurationTicks())
}

// SegmentLabel is the heuristic role the Classifier assigns to a segment.
type SegmentLabel string

const (
	LabelUnknown SegmentLabel = "UNKNOWN"
	LabelLegal   SegmentLabel = "LEGAL"
	LabelOP      SegmentLabel = "OP"
	LabelBody    SegmentLabel = "BODY"
	LabelED      SegmentLabel = "ED"
	LabelPreview SegmentLabel = "PREVIEW"
)

// SegmentKey is the canonical identity of a reused segment across
// playlists (§3): (clip_id, quantize(in_ms,250), quantize(out_ms,250)).
type SegmentKey struct {
	ClipID string  `json:"clip_id"`
	InMS   float64 `json:"in_ms"`
	OutMS  float64 `json:"out_ms"`
}

func (k SegmentKey) String() string {
	return fmt.Sprintf("%s@%.0f-%.0f", k.ClipID, k.InMS, k.OutMS)
}

// NewSegmentKey builds the canonical segment key for a play item.
func NewSegmentKey(clipID string, inTicks, outTicks uint32) SegmentKey {
	const q = 250.0
	return SegmentKey{
		ClipID: clipID,
		InMS:   Quantize(TicksToMillis(inTicks), q),
		OutMS:  Quantize(TicksToMillis(outTicks), q),
	}
}

// ChapterMark is one playlist mark entry, ordered by ID.
type ChapterMark struct {
	ID            int    `json:"mark_id"`
	Type          int    `json:"mark_type"`
	TimeTicks     uint32 `json:"-"` // see timestamp in the bdpl.disc.v1 schema: ms, derived via TicksToMillis
	PlayItemIndex int    `json:"-"`
}

// PlaylistClass is the §4.10 playlist classification enum.
type PlaylistClass string

const (
	ClassUnclassified   PlaylistClass = ""
	ClassEpisode        PlaylistClass = "episode"
	ClassPlayAll        PlaylistClass = "play_all"
	ClassBumper         PlaylistClass = "bumper"
	ClassCreditlessOP   PlaylistClass = "creditless_op"
	ClassCreditlessED   PlaylistClass = "creditless_ed"
	ClassExtra          PlaylistClass = "extra"
	ClassDuplicateVariant PlaylistClass = "duplicate_variant"
)

// ExactSignatureEntry is one tuple of the ordered signature_exact sequence.
type ExactSignatureEntry struct {
	ClipID  string
	InTicks uint32
	OutTicks uint32
}

// Playlist is the §3 Playlist entity.
type Playlist struct {
	MPLSFilename string        `json:"mpls"`
	Version      string        `json:"-"` // 4 ASCII bytes, e.g. "0200"
	PlayItems    []PlayItem    `json:"play_items"`
	Chapters     []ChapterMark `json:"chapters"`

	SignatureExact []ExactSignatureEntry `json:"-"`
	SignatureLoose []SegmentKey          `json:"signature_loose"`

	Classification PlaylistClass `json:"classification"`

	// Alternates holds near-duplicate playlists this one represents
	// (§4.7); empty unless this playlist is a dedup representative.
	Alternates []string `json:"alternates,omitempty"`
}

// DurationTicks is the sum of every play item's duration (§3, derived).
func (p Playlist) DurationTicks() uint64 {
	var total uint64
	for _, pi := range p.PlayItems {
		total += uint64(pi.DurationTicks())
	}
	return total
}

func (p Playlist) DurationMillis() float64 {
	return float64(p.DurationTicks()) / TicksPerMillisecond
}

func (p Playlist) DurationSeconds() float64 {
	return p.DurationMillis() / 1000.0
}

// AudioStreamCount counts audio streams in the playlist's first play item.
func (p Playlist) AudioStreamCount() int {
	return p.streamCount(stream.IsAudio)
}

// SubtitleStreamCount counts subtitle streams in the playlist's first play item.
func (p Playlist) SubtitleStreamCount() int {
	return p.streamCount(func(c stream.Codec) bool { return c == stream.CodecSubtitle })
}

func (p Playlist) streamCount(pred func(stream.Codec) bool) int {
	if len(p.PlayItems) == 0 {
		return 0
	}
	n := 0
	for _, s := range p.PlayItems[0].Streams {
		if pred(s.Codec) {
			n++
		}
	}
	return n
}

// Clip is the §3 Clip entity, one per parsed CLPI file.
type Clip struct {
	ClipID  string          `json:"clip_id"`
	Streams []stream.Stream `json:"streams"`
}

// TitleEntry is one row of the index.bdmv title table (§3, §4.4).
type TitleEntry struct {
	TitleNumber   int    `json:"title"`
	MovieObjectID uint16 `json:"movie_object_id"`
}

// MovieObjectInstruction is one raw 12-byte HDMV instruction record.
type MovieObjectInstruction struct {
	Opcode   uint32
	Operand1 uint32
	Operand2 uint32
	// Mnemonic is a best-effort human label for supplemental opcodes
	// the MovieObject/IG parsers recognize beyond the PlayPL family
	// (SPEC_FULL.md §4); empty when the opcode is not interpreted.
	Mnemonic string
}

// MovieObject is the §3 MovieObject entity: a flat list of navigation
// objects, each a sequence of 12-byte HDMV instructions.
type MovieObject struct {
	ID                  int
	Instructions        []MovieObjectInstruction
	ReferencedPlaylists []string // zero-padded 5-digit mpls stems, derived
}

// IGTargetKind is the §3 IGButtonAction.target_kind enum.
type IGTargetKind string

const (
	IGTargetPlayPL         IGTargetKind = "PlayPL"
	IGTargetPlayPLAtMark   IGTargetKind = "PlayPLAtMark"
	IGTargetPlayPLAtChapter IGTargetKind = "PlayPLAtChapter"
	IGTargetSetRegister    IGTargetKind = "SetRegister"
	IGTargetJumpTitle      IGTargetKind = "JumpTitle"
	IGTargetOther          IGTargetKind = "other"
)

// IGButtonAction is one navigation command attached to an IG button (§3, §4.6).
type IGButtonAction struct {
	PageID     int
	ButtonID   int
	TargetKind IGTargetKind
	Arguments  []uint32
}

// Episode is one inferred episode (§3, §4.11).
type Episode struct {
	EpisodeNumber          int        `json:"episode"`
	RepresentativePlaylist string     `json:"playlist"`
	DurationTicks          uint64     `json:"-"`
	Confidence             float64    `json:"confidence"`
	Segments               []PlayItem `json:"segments"`
	Alternates             []string   `json:"alternates,omitempty"`
}

func (e Episode) DurationMillis() float64 {
	return float64(e.DurationTicks) / TicksPerMillisecond
}

// WarningCode is the stable warning enum (§6).
type WarningCode string

const (
	WarnNoEpisodesFound   WarningCode = "NO_EPISODES_FOUND"
	WarnPlayAllOnly       WarningCode = "PLAY_ALL_ONLY"
	WarnLowConfidenceOrder WarningCode = "LOW_CONFIDENCE_ORDER"
	WarnNoCLPIFound       WarningCode = "NO_CLPI_FOUND"
	WarnDuplicateVariants WarningCode = "DUPLICATE_VARIANTS"
	WarnMalformedSection  WarningCode = "MALFORMED_SECTION"
	WarnUnknownOpcode     WarningCode = "UNKNOWN_OPCODE"
	WarnIGScanTruncated   WarningCode = "IG_SCAN_TRUNCATED"
)

// Warning is a non-fatal condition recorded against the DiscAnalysis.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	Context string      `json:"context"`
}

// Hints aggregates the navigation-derived inputs §4.11 incorporates:
// title→playlist mappings from index.bdmv/MovieObject.bdmv, and
// chapter marks reported by the IG stream parser.
type Hints struct {
	// TitleToPlaylist maps a title number to the mpls filename its
	// movie object resolves to, when resolvable.
	TitleToPlaylist map[int]string `json:"titles,omitempty"`
	// IGChapterMarks are chapter indices referenced by PlayPLAtChapter
	// operands found in IG button command lists, keyed by mpls filename.
	IGChapterMarks map[string][]int `json:"ig_chapter_marks,omitempty"`
}

// DiscAnalysis is the single aggregate result (§3): every entity the
// pipeline produced, plus warnings. Constructed by a single producer
// and handed off fully formed.
type DiscAnalysis struct {
	DiscPath     string       `json:"-"` // see disc.path in the bdpl.disc.v1 schema
	Playlists    []Playlist   `json:"playlists"`
	Clips        []Clip       `json:"clips"`
	Titles       []TitleEntry `json:"-"`
	MovieObjects []MovieObject `json:"-"`
	Episodes     []Episode    `json:"episodes"`
	Warnings     []Warning    `json:"warnings"`
	Hints        Hints        `json:"-"` // see analysis.hints in the bdpl.disc.v1 schema
}

func (d *DiscAnalysis) AddWarning(code WarningCode, message, context string) {
	d.Warnings = append(d.Warnings, Warning{Code: code, Message: message, Context: context})
}

// PlaylistByName returns the playlist with the given mpls filename, if any.
func (d *DiscAnalysis) PlaylistByName(name string) (Playlist, bool) {
	for _, p := range d.Playlists {
		if p.MPLSFilename == name {
			return p, true
		}
	}
	return Playlist{}, false
}
