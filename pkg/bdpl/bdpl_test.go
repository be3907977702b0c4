package bdpl

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yxbh/bdpl/internal/model"
)

func be16(v uint16) []byte { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); return b }
func be32(v uint32) []byte { b := make([]byte, 4); binary.BigEndian.PutUint32(b, v); return b }

// buildPlayItemBody assembles one play item block (minus its own
// length prefix): a clip reference and in/out times with no stream
// number table entries, an empty multi-angle flag, and every
// reserved/unused field zeroed.
func buildPlayItemBody(clipID string, inTicks, outTicks uint32) []byte {
	var body []byte
	body = append(body, []byte(clipID)...)
	body = append(body, []byte("M2TS")...)
	body = append(body, 0x00) // reserved
	body = append(body, 0x00) // flags: multiangle=0
	body = append(body, 0x00) // remainder of connection-condition word
	body = append(body, be32(inTicks)...)
	body = append(body, be32(outTicks)...)
	body = append(body, make([]byte, 12)...) // UO mask + still mode fields
	body = append(body, be16(0)...)           // STN table length (unused by parser)
	body = append(body, make([]byte, 2)...)   // reserved
	body = append(body, make([]byte, 7)...)   // stream counts, all zero
	body = append(body, make([]byte, 5)...)   // reserved
	return body
}

func buildPlayItem(clipID string, inTicks, outTicks uint32) []byte {
	body := buildPlayItemBody(clipID, inTicks, outTicks)
	return append(be16(uint16(len(body))), body...)
}

// buildMPLS assembles a minimal but valid *.mpls file: header, a
// PlayList section with the given items, and no marks section.
func buildMPLS(items [][]byte) []byte {
	var itemSection []byte
	for _, it := range items {
		itemSection = append(itemSection, it...)
	}
	playlistBody := append(be16(0), be16(uint16(len(items)))...)
	playlistBody = append(playlistBody, be16(0)...) // sub-path count
	playlistBody = append(playlistBody, itemSection...)
	playlistSection := append(be32(uint32(len(playlistBody))), playlistBody...)

	const headerLen = 4 + 4 + 4 + 4 + 4 // magic + version + 3 offsets
	playlistOffset := uint32(headerLen)

	var out []byte
	out = append(out, []byte("MPLS")...)
	out = append(out, []byte("0200")...)
	out = append(out, be32(playlistOffset)...)
	out = append(out, be32(0)...) // marks offset: none
	out = append(out, be32(0)...) // extension data offset: none
	out = append(out, playlistSection...)
	return out
}

func writeDiscFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

// minutesToTicks converts whole minutes into 45kHz ticks for building
// synthetic play item durations.
func minutesToTicks(min float64) uint32 {
	return model.MillisToTicks(min * 60 * 1000)
}

func TestDefaultSettings_MatchesSettingsDefault(t *testing.T) {
	got := DefaultSettings()
	if !got.FilterShortPlaylists || got.FilterShortPlaylistsVal != 180 {
		t.Errorf("DefaultSettings() = %+v, want the package defaults", got)
	}
}

func TestRun_EmptyPathReturnsError(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestRun_ContextCanceledReturnsError(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "BDMV", "PLAYLIST"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Path: root})
	if err == nil {
		t.Fatal("expected an error for an already-canceled context")
	}
}

func TestRun_NoBDMVDirectoryReturnsError(t *testing.T) {
	root := t.TempDir()
	_, err := Run(context.Background(), Options{Path: root})
	if err == nil {
		t.Fatal("expected an error locating BDMV under a plain directory")
	}
}

func TestRun_EmptyBDMVTreeProducesDiscSummaryOnly(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "BDMV", "PLAYLIST"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	res, err := Run(context.Background(), Options{Path: root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Analysis.Playlists) != 0 {
		t.Errorf("expected no playlists, got %d", len(res.Analysis.Playlists))
	}
	if !strings.Contains(res.Report, "DISC SUMMARY:") {
		t.Errorf("expected a disc summary section, got:\n%s", res.Report)
	}
}

// TestRun_TwoLongPlaylistsInferIndividualEpisodes exercises the
// Individual strategy (§4.11) end to end: two representative playlists
// each carrying a single ~24-minute body segment should each be
// classified episode and emitted as their own Episode.
func TestRun_TwoLongPlaylistsInferIndividualEpisodes(t *testing.T) {
	root := t.TempDir()

	bodyTicks := minutesToTicks(24)
	mpls1 := buildMPLS([][]byte{buildPlayItem("00001", 0, bodyTicks)})
	mpls2 := buildMPLS([][]byte{buildPlayItem("00002", 0, bodyTicks)})

	writeDiscFile(t, filepath.Join(root, "BDMV", "PLAYLIST", "00001.mpls"), mpls1)
	writeDiscFile(t, filepath.Join(root, "BDMV", "PLAYLIST", "00002.mpls"), mpls2)
	writeDiscFile(t, filepath.Join(root, "BDMV", "STREAM", "00001.m2ts"), []byte{})
	writeDiscFile(t, filepath.Join(root, "BDMV", "STREAM", "00002.m2ts"), []byte{})

	res, err := Run(context.Background(), Options{Path: root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Analysis.Playlists) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(res.Analysis.Playlists))
	}
	for _, p := range res.Analysis.Playlists {
		if p.Classification != model.ClassEpisode {
			t.Errorf("playlist %s classified %s, want %s", p.MPLSFilename, p.Classification, model.ClassEpisode)
		}
	}
	if len(res.Analysis.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(res.Analysis.Episodes))
	}
	if !strings.Contains(res.Report, "EPISODES:") {
		t.Errorf("expected an episodes section, got:\n%s", res.Report)
	}
}

func TestRun_ShortPlaylistsNeverBecomeEpisodes(t *testing.T) {
	root := t.TempDir()

	shortTicks := minutesToTicks(1)
	mpls1 := buildMPLS([][]byte{buildPlayItem("00001", 0, shortTicks)})
	writeDiscFile(t, filepath.Join(root, "BDMV", "PLAYLIST", "00001.mpls"), mpls1)

	res, err := Run(context.Background(), Options{Path: root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Analysis.Episodes) != 0 {
		t.Fatalf("expected no episodes from a single short playlist, got %d", len(res.Analysis.Episodes))
	}
	found := false
	for _, w := range res.Analysis.Warnings {
		if w.Code == model.WarnNoEpisodesFound {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s warning, got %+v", model.WarnNoEpisodesFound, res.Analysis.Warnings)
	}
}

func TestResolveTitleHints_MapsTitleToPlaylistFilename(t *testing.T) {
	titles := []model.TitleEntry{{TitleNumber: 1, MovieObjectID: 0}}
	objects := []model.MovieObject{{ID: 0, ReferencedPlaylists: []string{"00001"}}}

	hints := resolveTitleHints(titles, objects)
	if hints[1] != "00001.mpls" {
		t.Errorf("hints[1] = %q, want %q", hints[1], "00001.mpls")
	}
}

func TestResolveTitleHints_UnmatchedMovieObjectIDSkipped(t *testing.T) {
	titles := []model.TitleEntry{{TitleNumber: 1, MovieObjectID: 99}}
	objects := []model.MovieObject{{ID: 0, ReferencedPlaylists: []string{"00001"}}}

	hints := resolveTitleHints(titles, objects)
	if hints != nil {
		t.Errorf("hints = %+v, want nil for an unresolvable title", hints)
	}
}

func TestStemOf_StripsExtension(t *testing.T) {
	if got := stemOf("/disc/BDMV/CLIPINF/00001.clpi"); got != "00001" {
		t.Errorf("stemOf() = %q, want %q", got, "00001")
	}
}
