// Package infer implements Episode Inference (§4.11): strategy
// selection (Individual / Play-all decomposition / Chapter split /
// None), confidence computation, and hint-driven confidence boosts.
//
// Grounded on go-bdinfo's builder/state-accumulator shape (the same
// pattern internal/bdrom uses to assemble a BDROM from its component
// scans) applied to assembling an ordered Episode list from prior
// pipeline stages' outputs.
package infer

import (
	"math"
	"sort"

	"github.com/yxbh/bdpl/internal/model"
)

const (
	individualBaseConfidence = 0.9
	playAllBaseConfidence    = 0.7
	chapterSplitBaseConfidence = 0.6

	titleHintBoost   = 0.1
	igChapterHintBoost = 0.1

	playAllMinItemSeconds = 600.0 // 10 minutes
	chapterSplitMinPlaylistSeconds = 2400.0 // 40 minutes
	chapterSplitMinMarks           = 2
	defaultTargetEpisodeSeconds    = 22.0 * 60.0
	chapterSplitTolerancePct       = 0.20
)

// Strategy names the episode-inference approach that produced a
// result, used only for diagnostics/explaining (§4.12).
type Strategy string

const (
	StrategyIndividual Strategy = "individual"
	StrategyPlayAll    Strategy = "play_all_decomposition"
	StrategyChapterSplit Strategy = "chapter_split"
	StrategyNone       Strategy = "none"
)

// Inputs bundles everything episode inference needs from prior stages.
type Inputs struct {
	Playlists []model.Playlist // already classified, sorted by mpls filename
	Hints     model.Hints
}

// Result is the outcome of episode inference.
type Result struct {
	Episodes []model.Episode
	Strategy Strategy
	Warning  *model.Warning // set only for the None strategy
}

// Infer selects a strategy per §4.11's ordered preference and
// produces a numbered episode list.
func Infer(in Inputs) Result {
	if episodes, ok := individual(in); ok {
		return Result{Episodes: episodes, Strategy: StrategyIndividual}
	}
	if episodes, ok := playAllDecomposition(in); ok {
		return Result{Episodes: episodes, Strategy: StrategyPlayAll}
	}
	if episodes, ok := chapterSplit(in); ok {
		return Result{Episodes: episodes, Strategy: StrategyChapterSplit}
	}
	w := model.Warning{Code: model.WarnNoEpisodesFound, Message: "no episode strategy produced any episodes", Context: "infer"}
	return Result{Strategy: StrategyNone, Warning: &w}
}

func titleHintsFor(hints model.Hints, mpls string) bool {
	for _, target := range hints.TitleToPlaylist {
		if target == mpls {
			return true
		}
	}
	return false
}

func capConfidence(c float64) float64 {
	if c > 1.0 {
		return 1.0
	}
	if c < 0 {
		return 0
	}
	return c
}

// individual handles the ≥2 classified-episode case: order by
// ascending clip_id of the first BODY segment, tie-break by mpls
// filename.
func individual(in Inputs) ([]model.Episode, bool) {
	var episodePlaylists []model.Playlist
	for _, p := range in.Playlists {
		if p.Classification == model.ClassEpisode {
			episodePlaylists = append(episodePlaylists, p)
		}
	}
	if len(episodePlaylists) < 2 {
		return nil, false
	}

	sort.Slice(episodePlaylists, func(i, j int) bool {
		ci, oki := firstBodyClipID(episodePlaylists[i])
		cj, okj := firstBodyClipID(episodePlaylists[j])
		if oki && okj && ci != cj {
			return ci < cj
		}
		return episodePlaylists[i].MPLSFilename < episodePlaylists[j].MPLSFilename
	})

	episodes := make([]model.Episode, 0, len(episodePlaylists))
	for i, p := range episodePlaylists {
		conf := capConfidence(individualBaseConfidence + boost(titleHintsFor(in.Hints, p.MPLSFilename)))
		episodes = append(episodes, model.Episode{
			EpisodeNumber:           i + 1,
			RepresentativePlaylist:  p.MPLSFilename,
			DurationTicks:           p.DurationTicks(),
			Confidence:              conf,
			Segments:                p.PlayItems,
			Alternates:              p.Alternates,
		})
	}
	return episodes, true
}

func firstBodyClipID(p model.Playlist) (string, bool) {
	for _, item := range p.PlayItems {
		if item.Label == model.LabelBody {
			return item.ClipID, true
		}
	}
	return "", false
}

func boost(hasHint bool) float64 {
	if hasHint {
		return titleHintBoost
	}
	return 0
}

// playAllDecomposition handles the case where a playlist is classified
// play_all (the first one in input order when there are several): each
// of its play items with duration ≥10 min becomes one episode, in
// playlist order.
func playAllDecomposition(in Inputs) ([]model.Episode, bool) {
	var playAll *model.Playlist
	for i := range in.Playlists {
		if in.Playlists[i].Classification == model.ClassPlayAll {
			playAll = &in.Playlists[i]
			break
		}
	}
	if playAll == nil {
		return nil, false
	}

	hasHint := titleHintsFor(in.Hints, playAll.MPLSFilename)
	var episodes []model.Episode
	n := 0
	for _, item := range playAll.PlayItems {
		if item.DurationMillis()/1000.0 < playAllMinItemSeconds {
			continue
		}
		n++
		episodes = append(episodes, model.Episode{
			EpisodeNumber:          n,
			RepresentativePlaylist: playAll.MPLSFilename,
			DurationTicks:          uint64(item.DurationTicks()),
			Confidence:             capConfidence(playAllBaseConfidence + boost(hasHint)),
			Segments:               []model.PlayItem{item},
		})
	}
	if len(episodes) == 0 {
		return nil, false
	}
	return episodes, true
}

// chapterSplit handles the single-long-playlist-with-chapters case:
// partition by chapter boundaries, merging adjacent chapters until
// each piece reaches at least 80% of the target episode length. No
// upper bound is applied, and the last piece covers whatever remains
// up to the playlist end.
func chapterSplit(in Inputs) ([]model.Episode, bool) {
	var candidates []model.Playlist
	for _, p := range in.Playlists {
		if p.DurationSeconds() >= chapterSplitMinPlaylistSeconds && len(p.Chapters) >= chapterSplitMinMarks {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) != 1 {
		return nil, false
	}
	p := candidates[0]

	target := defaultTargetEpisodeSeconds
	igMatchesWithinOne := false
	if marks, ok := in.Hints.IGChapterMarks[p.MPLSFilename]; ok && len(marks) > 0 {
		target = medianChapterSpacingSeconds(p, marks)
	}

	boundaries := mergeChapterBoundaries(p, target)
	if len(boundaries) < 2 {
		return nil, false
	}

	hasHint := titleHintsFor(in.Hints, p.MPLSFilename)

	if marks, ok := in.Hints.IGChapterMarks[p.MPLSFilename]; ok {
		igMatchesWithinOne = boundariesMatchWithinOne(boundaries, marks)
	}

	var episodes []model.Episode
	for i := 0; i < len(boundaries)-1; i++ {
		startIdx, endIdx := boundaries[i], boundaries[i+1]
		segs := segmentsBetween(p, startIdx, endIdx)
		conf := chapterSplitBaseConfidence + boost(hasHint)
		if igMatchesWithinOne {
			conf += igChapterHintBoost
		}
		episodes = append(episodes, model.Episode{
			EpisodeNumber:          i + 1,
			RepresentativePlaylist: p.MPLSFilename,
			DurationTicks:          durationOfSegments(segs),
			Confidence:             capConfidence(conf),
			Segments:               segs,
		})
	}
	return episodes, true
}

// mergeChapterBoundaries returns a list of boundary markers, each in
// the 1-indexed convention boundaryTimeSeconds expects (0 = playlist
// start, k = p.Chapters[k-1], len(p.Chapters)+1 = playlist end), such
// that every interval except the last is at least (1-tolerance) of
// target, merging adjacent chapters as needed. The last interval ends
// at the playlist end whatever its length.
func mergeChapterBoundaries(p model.Playlist, targetSeconds float64) []int {
	marks := p.Chapters
	if len(marks) == 0 {
		return nil
	}
	times := make([]float64, 0, len(marks)+1)
	for _, m := range marks {
		times = append(times, model.TicksToMillis(m.TimeTicks)/1000.0)
	}
	times = append(times, p.DurationSeconds())

	boundaries := []int{0}
	start := 0.0
	for i, t := range times {
		if t-start >= targetSeconds*(1-chapterSplitTolerancePct) || i == len(times)-1 {
			boundaries = append(boundaries, i+1)
			start = t
		}
	}
	return dedupeInts(boundaries)
}

func dedupeInts(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	out := []int{xs[0]}
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// segmentsBetween returns synthetic play items covering the playlist
// duration between two chapter-time boundary indices, derived by
// slicing the playlist's own play items at the relevant tick range.
func segmentsBetween(p model.Playlist, startBoundary, endBoundary int) []model.PlayItem {
	startSec := boundaryTimeSeconds(p, startBoundary)
	endSec := boundaryTimeSeconds(p, endBoundary)
	startTicks := model.MillisToTicks(startSec * 1000)
	endTicks := model.MillisToTicks(endSec * 1000)

	var segs []model.PlayItem
	for _, item := range p.PlayItems {
		lo := maxU32(item.InTimeTicks, startTicks)
		hi := minU32(item.OutTimeTicks, endTicks)
		if lo >= hi {
			continue
		}
		seg := item
		seg.InTimeTicks = lo
		seg.OutTimeTicks = hi
		segs = append(segs, seg)
	}
	return segs
}

func boundaryTimeSeconds(p model.Playlist, boundary int) float64 {
	if boundary == 0 {
		return 0
	}
	if boundary-1 < len(p.Chapters) {
		return model.TicksToMillis(p.Chapters[boundary-1].TimeTicks) / 1000.0
	}
	return p.DurationSeconds()
}

func durationOfSegments(segs []model.PlayItem) uint64 {
	var total uint64
	for _, s := range segs {
		total += uint64(s.DurationTicks())
	}
	return total
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func medianChapterSpacingSeconds(p model.Playlist, markIndices []int) float64 {
	if len(markIndices) < 2 {
		return defaultTargetEpisodeSeconds
	}
	var spacings []float64
	for i := 1; i < len(markIndices); i++ {
		a, b := markIndices[i-1], markIndices[i]
		if a < 0 || b >= len(p.Chapters) || a >= len(p.Chapters) {
			continue
		}
		ta := model.TicksToMillis(p.Chapters[a].TimeTicks) / 1000.0
		tb := model.TicksToMillis(p.Chapters[b].TimeTicks) / 1000.0
		spacings = append(spacings, tb-ta)
	}
	if len(spacings) == 0 {
		return defaultTargetEpisodeSeconds
	}
	sort.Float64s(spacings)
	return spacings[len(spacings)/2]
}

func boundariesMatchWithinOne(boundaries []int, igMarks []int) bool {
	if len(boundaries) == 0 || len(igMarks) == 0 {
		return false
	}
	matches := 0
	for _, ig := range igMarks {
		for _, b := range boundaries {
			if int(math.Abs(float64(ig-b))) <= 1 {
				matches++
				break
			}
		}
	}
	return matches >= len(igMarks)-1 // allow one mismatch
}
