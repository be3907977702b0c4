// Package signature computes playlist signatures and groups
// near-duplicate playlists (§4.7): exact and loose ordered signatures,
// near-duplicate grouping by loose-signature equality, and
// deterministic representative selection within each group.
//
// Grounded on go-bdinfo's internal/bdrom/playlist_sort_test.go
// comparator-chain style (sort.Slice with a tie-break sequence) and
// on the builder/state-accumulator shape the teacher uses throughout
// internal/bdrom for multi-pass derived data.
package signature

import (
	"sort"

	"github.com/yxbh/bdpl/internal/model"
)

// Compute fills SignatureExact and SignatureLoose on every playlist in
// place and returns the updated slice, ordered unchanged (callers sort
// playlists lexicographically by mpls filename before invoking the
// rest of the pipeline, per §5).
func Compute(playlists []model.Playlist) []model.Playlist {
	for i := range playlists {
		p := &playlists[i]
		p.SignatureExact = make([]model.ExactSignatureEntry, 0, len(p.PlayItems))
		p.SignatureLoose = make([]model.SegmentKey, 0, len(p.PlayItems))
		for _, pi := range p.PlayItems {
			p.SignatureExact = append(p.SignatureExact, model.ExactSignatureEntry{
				ClipID: pi.ClipID, InTicks: pi.InTimeTicks, OutTicks: pi.OutTimeTicks,
			})
			p.SignatureLoose = append(p.SignatureLoose, pi.SegmentKey)
		}
	}
	return playlists
}

// Group is one near-duplicate cluster: a representative playlist's
// mpls filename and the mpls filenames of every other member.
type Group struct {
	Representative string
	Alternates     []string
}

// looseKey renders a loose signature as a comparable string so equal
// signatures hash/compare identically regardless of slice identity.
func looseKey(sig []model.SegmentKey) string {
	var b []byte
	for _, k := range sig {
		b = append(b, []byte(k.String())...)
		b = append(b, '|')
	}
	return string(b)
}

// GroupNearDuplicates partitions playlists into near-duplicate groups
// by loose-signature equality (§4.7) and writes each non-representative
// member's name into its representative's Alternates field. Playlists
// must already carry their computed signatures (see Compute).
func GroupNearDuplicates(playlists []model.Playlist) ([]model.Playlist, []Group) {
	buckets := make(map[string][]int) // looseKey -> indices into playlists
	order := make([]string, 0)
	for i, p := range playlists {
		k := looseKey(p.SignatureLoose)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], i)
	}
	sort.Strings(order)

	var groups []Group
	for _, k := range order {
		members := buckets[k]
		if len(members) == 0 {
			continue
		}
		repIdx := pickRepresentative(playlists, members)
		var alternates []string
		for _, idx := range members {
			if idx == repIdx {
				continue
			}
			alternates = append(alternates, playlists[idx].MPLSFilename)
		}
		sort.Strings(alternates)
		playlists[repIdx].Alternates = alternates
		groups = append(groups, Group{Representative: playlists[repIdx].MPLSFilename, Alternates: alternates})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Representative < groups[j].Representative })
	return playlists, groups
}

// pickRepresentative chooses the preferred member of a near-duplicate
// group per §4.7's ordered tie-break: more audio streams, then more
// subtitle streams, then presence of chapters, then lower mpls
// filename lexicographically.
func pickRepresentative(playlists []model.Playlist, members []int) int {
	best := members[0]
	for _, idx := range members[1:] {
		if isBetterRepresentative(playlists[idx], playlists[best]) {
			best = idx
		}
	}
	return best
}

func isBetterRepresentative(a, b model.Playlist) bool {
	if n, m := a.AudioStreamCount(), b.AudioStreamCount(); n != m {
		return n > m
	}
	if n, m := a.SubtitleStreamCount(), b.SubtitleStreamCount(); n != m {
		return n > m
	}
	if n, m := len(a.Chapters) > 0, len(b.Chapters) > 0; n != m {
		return n
	}
	return a.MPLSFilename < b.MPLSFilename
}
