// Package seggraph builds the Segment Graph (§4.9): a frequency map
// over segment keys across all playlists, and play-all superset
// detection between playlists.
//
// Grounded on go-bdinfo's deterministic-ordering conventions (sorted
// map iteration via an explicit key slice, as internal/bdrom does when
// producing PlaylistOrder) applied to frequency counting and
// subsequence search.
package seggraph

import (
	"sort"

	"github.com/yxbh/bdpl/internal/model"
)

// FrequencyMap counts how many playlists reference each segment key.
func FrequencyMap(playlists []model.Playlist) map[model.SegmentKey]int {
	freq := make(map[model.SegmentKey]int)
	for _, p := range playlists {
		seen := make(map[model.SegmentKey]bool)
		for _, k := range p.SignatureLoose {
			if seen[k] {
				continue // count each segment once per playlist
			}
			seen[k] = true
			freq[k]++
		}
	}
	return freq
}

// maxMissingSegments is the §4.9 "nearly-contiguous" tolerance: a
// candidate subsequence may omit at most this many segments from the
// superset and still qualify.
const maxMissingSegments = 1

// IsSupersetOf reports whether sub's ordered loose signature appears
// as a contiguous (or nearly-contiguous, up to maxMissingSegments)
// subsequence of super's.
func IsSupersetOf(super, sub []model.SegmentKey) bool {
	if len(sub) == 0 {
		return true
	}
	if len(sub) > len(super) {
		return false
	}
	for start := 0; start+len(sub) <= len(super)+maxMissingSegments; start++ {
		if matchesWithTolerance(super, sub, start) {
			return true
		}
	}
	return false
}

// matchesWithTolerance checks sub against super starting near index
// start, allowing up to maxMissingSegments super-side skips while
// walking sub in order.
func matchesWithTolerance(super, sub []model.SegmentKey, start int) bool {
	si := start
	missing := 0
	for _, want := range sub {
		for si < len(super) && super[si] != want {
			si++
			missing++
			if missing > maxMissingSegments {
				return false
			}
		}
		if si >= len(super) {
			return false
		}
		si++
	}
	return true
}

// PlayAllCandidate pairs a play-all playlist with the episode-like
// playlists it's a superset of.
type PlayAllCandidate struct {
	PlayAll  string
	Episodes []string
}

// FindPlayAllSupersets returns, for every playlist, the set of other
// playlists whose loose signature it contains as a (near-)contiguous
// subsequence (§4.9). Results are sorted by the play-all's mpls
// filename, with episode members sorted the same way.
func FindPlayAllSupersets(playlists []model.Playlist) []PlayAllCandidate {
	var out []PlayAllCandidate
	for _, p := range playlists {
		var members []string
		for _, q := range playlists {
			if q.MPLSFilename == p.MPLSFilename {
				continue
			}
			if len(q.SignatureLoose) == 0 {
				continue
			}
			if IsSupersetOf(p.SignatureLoose, q.SignatureLoose) {
				members = append(members, q.MPLSFilename)
			}
		}
		if len(members) == 0 {
			continue
		}
		sort.Strings(members)
		out = append(out, PlayAllCandidate{PlayAll: p.MPLSFilename, Episodes: members})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayAll < out[j].PlayAll })
	return out
}
