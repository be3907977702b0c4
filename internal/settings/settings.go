// Package settings holds the scan/analysis options the bdpl pipeline
// reads. Adapted from go-bdinfo's internal/settings.Settings, trimmed
// to the knobs this domain's components actually consult.
package settings

// Settings controls the episode-inference pipeline's scan behavior.
type Settings struct {
	// FilterShortPlaylists excludes playlists shorter than
	// FilterShortPlaylistsVal seconds from duration clustering (§4.8),
	// the same "ignore short-playlist noise" idea as the teacher's
	// FilterShortPlaylists/FilterShortPlaylistsVal pair.
	FilterShortPlaylists    bool
	FilterShortPlaylistsVal int

	// ScanIGStreams enables the experimental IG stream parser (§4.6).
	// Off by default: it is defensive and never fails the pipeline,
	// but scanning every STREAM/*.m2ts candidate is the most expensive
	// part of a scan.
	ScanIGStreams bool

	// MaxIGPacketsPerFile bounds worst-case cost scanning a malformed
	// menu stream (§5), mirroring K in the spec's IG stream parser.
	MaxIGPacketsPerFile int

	// WorkerCount is carried for callers that set it, but nothing in
	// the pipeline reads it: pkg/bdpl.Run parses playlist and clip
	// files one at a time.
	WorkerCount int
}

// Default returns the settings bdpl uses unless overridden.
func Default() Settings {
	return Settings{
		FilterShortPlaylists:    true,
		FilterShortPlaylistsVal: 180,
		ScanIGStreams:           false,
		MaxIGPacketsPerFile:     200000,
		WorkerCount:             0,
	}
}
