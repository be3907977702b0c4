package seggraph

import (
	"testing"

	"github.com/yxbh/bdpl/internal/model"
)

func key(clipID string, in, out uint32) model.SegmentKey {
	return model.NewSegmentKey(clipID, in, out)
}

func TestFrequencyMap_CountsOncePerPlaylist(t *testing.T) {
	k := key("00001", 0, 45000)
	playlists := []model.Playlist{
		{MPLSFilename: "a.mpls", SignatureLoose: []model.SegmentKey{k, k}}, // repeated within one playlist
		{MPLSFilename: "b.mpls", SignatureLoose: []model.SegmentKey{k}},
	}
	freq := FrequencyMap(playlists)
	if freq[k] != 2 {
		t.Errorf("freq[k] = %d, want 2 (one per playlist, not per occurrence)", freq[k])
	}
}

func TestIsSupersetOf_ExactContiguousMatch(t *testing.T) {
	a := key("00001", 0, 45000)
	b := key("00002", 0, 45000)
	c := key("00003", 0, 45000)
	super := []model.SegmentKey{a, b, c}
	sub := []model.SegmentKey{b, c}
	if !IsSupersetOf(super, sub) {
		t.Error("expected sub to be a contiguous subsequence of super")
	}
}

func TestIsSupersetOf_ToleratesOneMissingSegment(t *testing.T) {
	a := key("00001", 0, 45000)
	b := key("00002", 0, 45000)
	c := key("00003", 0, 45000)
	d := key("00004", 0, 45000)
	super := []model.SegmentKey{a, b, c, d}
	sub := []model.SegmentKey{a, c, d} // b missing
	if !IsSupersetOf(super, sub) {
		t.Error("expected sub to match with one segment tolerated as missing")
	}
}

func TestIsSupersetOf_RejectsTwoMissingSegments(t *testing.T) {
	a := key("00001", 0, 45000)
	b := key("00002", 0, 45000)
	c := key("00003", 0, 45000)
	d := key("00004", 0, 45000)
	e := key("00005", 0, 45000)
	super := []model.SegmentKey{a, b, c, d, e}
	sub := []model.SegmentKey{a, d, e} // b,c missing — exceeds tolerance from position of a
	if IsSupersetOf(super, sub) {
		t.Error("expected sub with two missing segments (from a contiguous run) to fail")
	}
}

func TestFindPlayAllSupersets_RequiresNonEmptySubsignature(t *testing.T) {
	a := key("00001", 0, 45000)
	playlists := []model.Playlist{
		{MPLSFilename: "00002.mpls", SignatureLoose: []model.SegmentKey{a}},
		{MPLSFilename: "00099.mpls", SignatureLoose: nil}, // no play items; never a member
	}
	candidates := FindPlayAllSupersets(playlists)
	for _, c := range candidates {
		for _, m := range c.Episodes {
			if m == "00099.mpls" {
				t.Errorf("empty-signature playlist should never be reported as a member, got %+v", c)
			}
		}
	}
}
