// Package bdpl is the public facade for the episode-inference
// pipeline: locate a disc's BDMV tree, run every parser and analysis
// stage in order, and render a deterministic report.
//
// Grounded on go-bdinfo's pkg/bdinfo.Run: the same Stage/ProgressEvent
// shape and Options/Settings/Result structuring, retargeted to
// produce a *model.DiscAnalysis instead of a scan report path.
package bdpl

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yxbh/bdpl/internal/bdindex"
	"github.com/yxbh/bdpl/internal/classify"
	"github.com/yxbh/bdpl/internal/clpi"
	"github.com/yxbh/bdpl/internal/cluster"
	"github.com/yxbh/bdpl/internal/discfs"
	"github.com/yxbh/bdpl/internal/explain"
	"github.com/yxbh/bdpl/internal/igstream"
	"github.com/yxbh/bdpl/internal/infer"
	"github.com/yxbh/bdpl/internal/mobj"
	"github.com/yxbh/bdpl/internal/model"
	"github.com/yxbh/bdpl/internal/mpls"
	"github.com/yxbh/bdpl/internal/seggraph"
	"github.com/yxbh/bdpl/internal/settings"
	"github.com/yxbh/bdpl/internal/signature"
)

// Stage is a coarse progress stage reported during Run.
type Stage string

const (
	StageStarting   Stage = "starting"
	StageDiscovered Stage = "discovered"
	StageParsing    Stage = "parsing"
	StageAnalyzing  Stage = "analyzing"
	StageExplaining Stage = "explaining"
	StageDone       Stage = "done"
)

// ProgressEvent is emitted when Run transitions between major phases.
type ProgressEvent struct {
	Stage      Stage
	Path       string
	Playlists  int
	Clips      int
	Elapsed    time.Duration
	OccurredAt time.Time
}

// Options configure one Run call for a single BDMV directory tree.
type Options struct {
	Path       string
	Settings   settings.Settings
	OnProgress func(ProgressEvent)
}

// Result bundles the structured analysis and its rendered report.
type Result struct {
	Analysis *model.DiscAnalysis
	Report   string
}

// DefaultSettings returns the scan/analysis defaults Run uses unless overridden.
func DefaultSettings() settings.Settings {
	return settings.Default()
}

// Run locates the disc at Options.Path, parses every component file,
// runs the analysis pipeline in order (§2), and renders the final report.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Path == "" {
		return Result{}, errors.New("path is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	cfg := opts.Settings
	if cfg == (settings.Settings{}) {
		cfg = settings.Default()
	}

	start := time.Now()
	emit(opts.OnProgress, ProgressEvent{Stage: StageStarting, Path: opts.Path, OccurredAt: time.Now()})

	disc, err := discfs.Locate(opts.Path)
	if err != nil {
		return Result{}, err
	}

	playlistFiles, err := disc.PlaylistFiles()
	if err != nil {
		return Result{}, err
	}
	clipFiles, err := disc.ClipFiles()
	if err != nil {
		return Result{}, err
	}

	emit(opts.OnProgress, ProgressEvent{
		Stage: StageDiscovered, Path: opts.Path,
		Playlists: len(playlistFiles), Clips: len(clipFiles), OccurredAt: time.Now(),
	})
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	analysis := &model.DiscAnalysis{DiscPath: opts.Path}
	emit(opts.OnProgress, ProgressEvent{Stage: StageParsing, Path: opts.Path, OccurredAt: time.Now()})

	parseClips(disc, clipFiles, analysis)
	parsePlaylists(disc, playlistFiles, analysis)
	sort.Slice(analysis.Playlists, func(i, j int) bool {
		return analysis.Playlists[i].MPLSFilename < analysis.Playlists[j].MPLSFilename
	})

	parseIndex(disc, analysis)
	movieObjects := parseMovieObject(disc, analysis)
	analysis.Hints.TitleToPlaylist = resolveTitleHints(analysis.Titles, movieObjects)
	if cfg.ScanIGStreams {
		analysis.Hints.IGChapterMarks = scanMenuStreams(disc, analysis, cfg.MaxIGPacketsPerFile)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	emit(opts.OnProgress, ProgressEvent{Stage: StageAnalyzing, Path: opts.Path, OccurredAt: time.Now()})
	runAnalysis(analysis, cfg)

	emit(opts.OnProgress, ProgressEvent{Stage: StageExplaining, Path: opts.Path, OccurredAt: time.Now()})
	report := explain.Render(analysis)

	emit(opts.OnProgress, ProgressEvent{Stage: StageDone, Path: opts.Path, Elapsed: time.Since(start), OccurredAt: time.Now()})
	return Result{Analysis: analysis, Report: report}, nil
}

func emit(cb func(ProgressEvent), event ProgressEvent) {
	if cb != nil {
		cb(event)
	}
}

func parseClips(disc *discfs.Disc, clipFiles []string, analysis *model.DiscAnalysis) {
	for _, path := range clipFiles {
		data, err := disc.ReadFile(path)
		if err != nil {
			analysis.AddWarning(model.WarnNoCLPIFound, err.Error(), path)
			continue
		}
		clipID := stemOf(path)
		res, err := clpi.Parse(clipID, data)
		if err != nil {
			analysis.AddWarning(model.WarnMalformedSection, err.Error(), path)
			continue
		}
		analysis.Clips = append(analysis.Clips, res.Clip)
		analysis.Warnings = append(analysis.Warnings, res.Warnings...)
	}
}

func parsePlaylists(disc *discfs.Disc, playlistFiles []string, analysis *model.DiscAnalysis) {
	for _, path := range playlistFiles {
		data, err := disc.ReadFile(path)
		if err != nil {
			analysis.AddWarning(model.WarnMalformedSection, err.Error(), path)
			continue
		}
		res, err := mpls.Parse(filepath.Base(path), data)
		if err != nil {
			analysis.AddWarning(model.WarnMalformedSection, err.Error(), path)
			continue
		}
		analysis.Playlists = append(analysis.Playlists, res.Playlist)
		analysis.Warnings = append(analysis.Warnings, res.Warnings...)
	}
}

func parseIndex(disc *discfs.Disc, analysis *model.DiscAnalysis) {
	data, err := disc.IndexBDMV()
	if err != nil || data == nil {
		return
	}
	res, err := bdindex.Parse(data)
	if err != nil {
		analysis.AddWarning(model.WarnMalformedSection, err.Error(), "index.bdmv")
		return
	}
	analysis.Titles = res.Titles
	analysis.Warnings = append(analysis.Warnings, res.Warnings...)
}

func parseMovieObject(disc *discfs.Disc, analysis *model.DiscAnalysis) []model.MovieObject {
	data, err := disc.MovieObject()
	if err != nil || data == nil {
		return nil
	}
	res, err := mobj.Parse(data)
	if err != nil {
		analysis.AddWarning(model.WarnMalformedSection, err.Error(), "MovieObject.bdmv")
		return nil
	}
	analysis.MovieObjects = res.Objects
	analysis.Warnings = append(analysis.Warnings, res.Warnings...)
	return res.Objects
}

func scanMenuStreams(disc *discfs.Disc, analysis *model.DiscAnalysis, maxPackets int) map[string][]int {
	streams, err := disc.CandidateMenuStreams()
	if err != nil {
		return nil
	}
	marks := make(map[string][]int)
	for _, path := range streams {
		data, err := disc.ReadFile(path)
		if err != nil {
			continue
		}
		res := igstream.Scan(data, maxPackets)
		analysis.Warnings = append(analysis.Warnings, res.Warnings...)
		if len(res.ChapterMarks) > 0 {
			marks[filepath.Base(path)] = res.ChapterMarks
		}
	}
	return marks
}

// resolveTitleHints maps a title number to the mpls filename its movie
// object's first referenced playlist resolves to, when resolvable (§4.11).
func resolveTitleHints(titles []model.TitleEntry, objects []model.MovieObject) map[int]string {
	if len(titles) == 0 || len(objects) == 0 {
		return nil
	}
	byID := make(map[int]model.MovieObject, len(objects))
	for _, obj := range objects {
		byID[obj.ID] = obj
	}
	hints := make(map[int]string)
	for _, t := range titles {
		obj, ok := byID[int(t.MovieObjectID)]
		if !ok || len(obj.ReferencedPlaylists) == 0 {
			continue
		}
		hints[t.TitleNumber] = obj.ReferencedPlaylists[0] + ".mpls"
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}

// runAnalysis executes stages 4.7 through 4.11 over an already-parsed
// DiscAnalysis, filling in signatures, classification, and episodes.
func runAnalysis(analysis *model.DiscAnalysis, cfg settings.Settings) {
	signature.Compute(analysis.Playlists)
	_, groups := signature.GroupNearDuplicates(analysis.Playlists)

	alternateNames := make(map[string]bool)
	for _, g := range groups {
		for _, alt := range g.Alternates {
			alternateNames[alt] = true
		}
	}

	freq := seggraph.FrequencyMap(analysis.Playlists)

	threshold := cluster.ShortThresholdSeconds
	if cfg.FilterShortPlaylists && float64(cfg.FilterShortPlaylistsVal) > threshold {
		threshold = float64(cfg.FilterShortPlaylistsVal)
	}

	var representative []model.Playlist
	for _, p := range analysis.Playlists {
		if !alternateNames[p.MPLSFilename] && p.DurationSeconds() >= threshold {
			representative = append(representative, p)
		}
	}

	var durations []float64
	for _, p := range representative {
		durations = append(durations, p.DurationSeconds())
	}

	episodeCandidateNames := make(map[string]bool)
	var episodeCandidates []model.Playlist
	if bucket, ok := cluster.Dominant(durations); ok {
		for _, idx := range bucket.Members {
			episodeCandidates = append(episodeCandidates, representative[idx])
			episodeCandidateNames[representative[idx].MPLSFilename] = true
		}
	}

	classify.LabelSegments(classify.LabelInputs{EpisodeCandidates: episodeCandidates, Frequency: freq})

	playAllCounts := classify.PlayAllMemberCounts(analysis.Playlists, episodeCandidateNames)

	for i := range analysis.Playlists {
		p := &analysis.Playlists[i]
		p.Classification = classify.ClassifyPlaylist(classify.PlaylistInputs{
			Playlist:             *p,
			IsDuplicateAlternate: alternateNames[p.MPLSFilename],
			PlayAllMemberCount:   playAllCounts[p.MPLSFilename],
			InEpisodeCluster:     episodeCandidateNames[p.MPLSFilename],
		})
	}

	result := infer.Infer(infer.Inputs{Playlists: analysis.Playlists, Hints: analysis.Hints})
	analysis.Episodes = result.Episodes
	if result.Warning != nil {
		analysis.Warnings = append(analysis.Warnings, *result.Warning)
	}
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
