// Package explain implements the Explainer (§4.12): a deterministic
// text report over a fully-formed DiscAnalysis. It takes no decisions
// of its own — every field it prints was already decided upstream.
//
// Grounded on go-bdinfo's internal/report package: section-header +
// fixed-width-column rendering via strings.Builder and fmt.Fprintf,
// with one pass per top-level section in a fixed order.
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yxbh/bdpl/internal/model"
)

// Render produces the full deterministic text report for a DiscAnalysis.
func Render(d *model.DiscAnalysis) string {
	var b strings.Builder

	writeDiscSummary(&b, d)
	writePlaylists(&b, d)
	writeEpisodes(&b, d)
	writeWarnings(&b, d)
	writeHints(&b, d)

	return b.String()
}

func writeDiscSummary(b *strings.Builder, d *model.DiscAnalysis) {
	b.WriteString("DISC SUMMARY:\n\n")
	fmt.Fprintf(b, "%-16s%s\n", "Path:", d.DiscPath)
	fmt.Fprintf(b, "%-16s%d\n", "Playlists:", len(d.Playlists))
	fmt.Fprintf(b, "%-16s%d\n", "Clips:", len(d.Clips))
	fmt.Fprintf(b, "%-16s%d\n", "Titles:", len(d.Titles))
	fmt.Fprintf(b, "%-16s%d\n", "Movie Objects:", len(d.MovieObjects))
	fmt.Fprintf(b, "%-16s%d\n", "Episodes:", len(d.Episodes))
	fmt.Fprintf(b, "%-16s%d\n\n\n", "Warnings:", len(d.Warnings))
}

func writePlaylists(b *strings.Builder, d *model.DiscAnalysis) {
	if len(d.Playlists) == 0 {
		return
	}
	b.WriteString("PLAYLISTS:\n\n")
	fmt.Fprintf(b, "%-16s%-16s%-8s%-20s\n", "Name", "Duration", "Items", "Classification")
	fmt.Fprintf(b, "%-16s%-16s%-8s%-20s\n", "----", "--------", "-----", "--------------")

	playlists := sortedPlaylists(d.Playlists)
	for _, p := range playlists {
		class := string(p.Classification)
		if class == "" {
			class = "(unclassified)"
		}
		fmt.Fprintf(b, "%-16s%-16s%-8d%-20s\n",
			p.MPLSFilename,
			formatDuration(p.DurationSeconds()),
			len(p.PlayItems),
			class,
		)
	}
	b.WriteString("\n\n")
}

func writeEpisodes(b *strings.Builder, d *model.DiscAnalysis) {
	if len(d.Episodes) == 0 {
		return
	}
	b.WriteString("EPISODES:\n\n")
	fmt.Fprintf(b, "%-8s%-16s%-16s%-10s%s\n", "Number", "Playlist", "Duration", "Confidence", "Clips")
	fmt.Fprintf(b, "%-8s%-16s%-16s%-10s%s\n", "------", "--------", "--------", "----------", "-----")
	for _, e := range d.Episodes {
		fmt.Fprintf(b, "%-8d%-16s%-16s%-10.2f%s\n",
			e.EpisodeNumber,
			e.RepresentativePlaylist,
			formatDuration(e.DurationMillis()/1000.0),
			e.Confidence,
			strings.Join(clipIDs(e.Segments), ","),
		)
		if len(e.Alternates) > 0 {
			fmt.Fprintf(b, "%-8s%-16s%s\n", "", "", "alternates: "+strings.Join(e.Alternates, ","))
		}
	}
	b.WriteString("\n\n")
}

func writeWarnings(b *strings.Builder, d *model.DiscAnalysis) {
	if len(d.Warnings) == 0 {
		return
	}
	b.WriteString("WARNINGS:\n\n")
	for _, w := range d.Warnings {
		fmt.Fprintf(b, "%-24s%-16s%s\n", w.Code, w.Context, w.Message)
	}
	b.WriteString("\n\n")
}

func writeHints(b *strings.Builder, d *model.DiscAnalysis) {
	hasTitleHints := len(d.Hints.TitleToPlaylist) > 0
	hasChapterHints := len(d.Hints.IGChapterMarks) > 0
	if !hasTitleHints && !hasChapterHints {
		return
	}
	b.WriteString("HINTS:\n\n")
	if hasTitleHints {
		b.WriteString("Title -> Playlist:\n")
		titles := make([]int, 0, len(d.Hints.TitleToPlaylist))
		for t := range d.Hints.TitleToPlaylist {
			titles = append(titles, t)
		}
		sort.Ints(titles)
		for _, t := range titles {
			fmt.Fprintf(b, "  %-8d%s\n", t, d.Hints.TitleToPlaylist[t])
		}
		b.WriteString("\n")
	}
	if hasChapterHints {
		b.WriteString("IG Chapter Marks:\n")
		playlistNames := make([]string, 0, len(d.Hints.IGChapterMarks))
		for name := range d.Hints.IGChapterMarks {
			playlistNames = append(playlistNames, name)
		}
		sort.Strings(playlistNames)
		for _, name := range playlistNames {
			marks := d.Hints.IGChapterMarks[name]
			strs := make([]string, len(marks))
			for i, m := range marks {
				strs[i] = fmt.Sprintf("%d", m)
			}
			fmt.Fprintf(b, "  %-16s%s\n", name, strings.Join(strs, ","))
		}
		b.WriteString("\n")
	}
}

func sortedPlaylists(playlists []model.Playlist) []model.Playlist {
	out := make([]model.Playlist, len(playlists))
	copy(out, playlists)
	sort.Slice(out, func(i, j int) bool { return out[i].MPLSFilename < out[j].MPLSFilename })
	return out
}

func clipIDs(segments []model.PlayItem) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.ClipID
	}
	return out
}

func formatDuration(seconds float64) string {
	total := int64(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
