// Package classify implements the Classifier (§4.10): per-segment
// labelling (LEGAL/OP/BODY/ED/PREVIEW/UNKNOWN) and per-playlist
// classification (episode/play_all/bumper/creditless_op/creditless_ed/
// extra/duplicate_variant), both driven by segment frequency and
// position within episode-length candidates.
//
// Grounded on go-bdinfo's ordered-rule-evaluation style: classify.go
// mirrors the same "evaluate guards top to bottom, first match wins"
// shape as internal/bdrom's format-detection switches, generalized to
// the heuristic rule list §4.10 specifies.
package classify

import (
	"github.com/yxbh/bdpl/internal/model"
	"github.com/yxbh/bdpl/internal/seggraph"
)

const (
	legalMaxSeconds = 8.0
	legalMinFreqPct = 0.60

	opMinSeconds  = 60.0
	opMaxSeconds  = 150.0
	opMinFreqPct  = 0.50

	edMinSeconds = 60.0
	edMaxSeconds = 180.0
	edMinFreqPct = 0.50

	previewMaxSeconds = 60.0

	bodyMinSeconds = 600.0

	bumperMaxSeconds = 10.0
)

// LabelInputs is everything LabelSegments needs about the episode
// candidate playlists' segments to classify them.
type LabelInputs struct {
	// EpisodeCandidates are the representative playlists considered
	// "episode-length" by duration clustering (§4.8).
	EpisodeCandidates []model.Playlist
	Frequency         map[model.SegmentKey]int
}

// LabelSegments assigns a SegmentLabel to every play item across the
// given episode candidates, mutating their Label fields in place.
func LabelSegments(in LabelInputs) {
	total := len(in.EpisodeCandidates)
	if total == 0 {
		return
	}

	for pi := range in.EpisodeCandidates {
		p := &in.EpisodeCandidates[pi]
		n := len(p.PlayItems)
		for i := range p.PlayItems {
			item := &p.PlayItems[i]
			freq := in.Frequency[item.SegmentKey]
			freqPct := float64(freq) / float64(total)
			dur := item.DurationMillis() / 1000.0
			isFirst := i == 0
			// A segment counts as a "prefix" segment (§4.10, OP) if it
			// leads the playlist, or immediately follows a leading
			// LEGAL segment.
			isPrefix := i == 0 || (i == 1 && p.PlayItems[0].Label == model.LabelLegal)
			isLast := i == n-1
			// A segment counts as a "suffix" segment (§4.10, ED) if it
			// trails the playlist, or is immediately followed by a
			// short PREVIEW-range segment.
			isSuffix := isLast || (i == n-2 && p.PlayItems[n-1].DurationMillis()/1000.0 <= previewMaxSeconds)
			isPreviewAfterED := i > 0 && p.PlayItems[i-1].Label == model.LabelED

			switch {
			case isFirst && dur <= legalMaxSeconds && freqPct >= legalMinFreqPct:
				item.Label = model.LabelLegal
			case isPrefix && dur >= opMinSeconds && dur <= opMaxSeconds && freqPct >= opMinFreqPct:
				item.Label = model.LabelOP
			case isSuffix && dur >= edMinSeconds && dur <= edMaxSeconds && freqPct >= edMinFreqPct:
				item.Label = model.LabelED
			case isPreviewAfterED && dur <= previewMaxSeconds:
				item.Label = model.LabelPreview
			case dur >= bodyMinSeconds:
				item.Label = model.LabelBody
			default:
				item.Label = model.LabelUnknown
			}
		}
	}
}

// PlaylistInputs is everything ClassifyPlaylist needs to classify one
// playlist per the §4.10 ordered rule list.
type PlaylistInputs struct {
	Playlist          model.Playlist
	IsDuplicateAlternate bool
	PlayAllMemberCount   int // number of episode candidates this playlist is a near-contiguous superset of
	InEpisodeCluster     bool
}

// ClassifyPlaylist evaluates the §4.10 rules in order and returns the
// first matching classification.
func ClassifyPlaylist(in PlaylistInputs) model.PlaylistClass {
	p := in.Playlist
	durSec := p.DurationSeconds()

	if in.IsDuplicateAlternate {
		return model.ClassDuplicateVariant
	}
	if in.PlayAllMemberCount >= 2 {
		return model.ClassPlayAll
	}
	if len(p.PlayItems) == 1 && durSec <= bumperMaxSeconds {
		return model.ClassBumper
	}
	if len(p.PlayItems) == 1 {
		label := model.LabelUnknown
		if len(p.PlayItems) > 0 {
			label = p.PlayItems[0].Label
		}
		if durSec >= opMinSeconds && durSec <= opMaxSeconds && label == model.LabelOP {
			return model.ClassCreditlessOP
		}
		if durSec >= edMinSeconds && durSec <= edMaxSeconds && label == model.LabelED {
			return model.ClassCreditlessED
		}
	}
	if in.InEpisodeCluster && hasBodySegment(p) {
		return model.ClassEpisode
	}
	return model.ClassExtra
}

func hasBodySegment(p model.Playlist) bool {
	for _, item := range p.PlayItems {
		if item.Label == model.LabelBody {
			return true
		}
	}
	return false
}

// PlayAllMemberCounts computes, for every playlist, how many
// episode-length candidates it is a near-contiguous superset of
// (§4.9, feeding §4.10 rule 2).
func PlayAllMemberCounts(playlists []model.Playlist, episodeCandidateNames map[string]bool) map[string]int {
	counts := make(map[string]int)
	for _, c := range seggraph.FindPlayAllSupersets(playlists) {
		n := 0
		for _, member := range c.Episodes {
			if episodeCandidateNames[member] {
				n++
			}
		}
		counts[c.PlayAll] = n
	}
	return counts
}
