package explain

import (
	"strings"
	"testing"

	"github.com/yxbh/bdpl/internal/model"
)

func sampleAnalysis() *model.DiscAnalysis {
	return &model.DiscAnalysis{
		DiscPath: "/mnt/disc",
		Playlists: []model.Playlist{
			{
				MPLSFilename:   "00002.mpls",
				Classification: model.ClassEpisode,
				PlayItems:      []model.PlayItem{{ClipID: "00002", OutTimeTicks: model.MillisToTicks(1400 * 1000)}},
			},
			{
				MPLSFilename:   "00001.mpls",
				Classification: model.ClassEpisode,
				PlayItems:      []model.PlayItem{{ClipID: "00001", OutTimeTicks: model.MillisToTicks(1400 * 1000)}},
			},
		},
		Episodes: []model.Episode{
			{
				EpisodeNumber:          1,
				RepresentativePlaylist: "00001.mpls",
				DurationTicks:          uint64(model.MillisToTicks(1400 * 1000)),
				Confidence:             0.9,
				Segments:               []model.PlayItem{{ClipID: "00001"}},
				Alternates:             []string{"00003.mpls"},
			},
		},
		Warnings: []model.Warning{
			{Code: model.WarnNoCLPIFound, Message: "missing clip info", Context: "00005.clpi"},
		},
		Hints: model.Hints{
			TitleToPlaylist: map[int]string{1: "00001.mpls"},
			IGChapterMarks:  map[string][]int{"00001.mpls": {0, 1, 2}},
		},
	}
}

func TestRender_IncludesAllSections(t *testing.T) {
	out := Render(sampleAnalysis())

	for _, want := range []string{
		"DISC SUMMARY:",
		"PLAYLISTS:",
		"EPISODES:",
		"WARNINGS:",
		"HINTS:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing section %q", want)
		}
	}
}

func TestRender_PlaylistsSortedByFilename(t *testing.T) {
	out := Render(sampleAnalysis())
	idx1 := strings.Index(out, "00001.mpls")
	idx2 := strings.Index(out, "00002.mpls")
	if idx1 == -1 || idx2 == -1 {
		t.Fatalf("expected both playlist names present, got:\n%s", out)
	}
	if idx1 > idx2 {
		t.Errorf("expected 00001.mpls to be listed before 00002.mpls")
	}
}

func TestRender_EpisodeAlternatesListed(t *testing.T) {
	out := Render(sampleAnalysis())
	if !strings.Contains(out, "alternates: 00003.mpls") {
		t.Errorf("expected alternates line for episode, got:\n%s", out)
	}
}

func TestRender_WarningIncludesCodeAndContext(t *testing.T) {
	out := Render(sampleAnalysis())
	if !strings.Contains(out, string(model.WarnNoCLPIFound)) || !strings.Contains(out, "00005.clpi") {
		t.Errorf("expected warning code and context rendered, got:\n%s", out)
	}
}

func TestRender_HintsIncludeTitleMappingAndChapterMarks(t *testing.T) {
	out := Render(sampleAnalysis())
	if !strings.Contains(out, "00001.mpls") {
		t.Errorf("expected title hint mapping in report")
	}
	if !strings.Contains(out, "0,1,2") {
		t.Errorf("expected IG chapter marks rendered as comma-joined list, got:\n%s", out)
	}
}

func TestRender_EmptyAnalysisOmitsOptionalSections(t *testing.T) {
	out := Render(&model.DiscAnalysis{DiscPath: "/mnt/empty"})

	if !strings.Contains(out, "DISC SUMMARY:") {
		t.Errorf("disc summary should always render")
	}
	for _, unwanted := range []string{"PLAYLISTS:", "EPISODES:", "WARNINGS:", "HINTS:"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("empty analysis should omit section %q", unwanted)
		}
	}
}
