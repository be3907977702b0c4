// Package discfs locates and reads a disc's BDMV directory tree from
// disk (§6 input layout). It performs no parsing of its own: it hands
// raw byte buffers to the component parsers.
//
// Grounded on internal/bdrom.findBDMVDirectory's breadth-first BDMV
// discovery and internal/fs.DiskFileSystem's os-backed directory
// walk, trimmed to disk-only input: the spec's input layout is a plain
// directory tree, so ISO/UDF mounting (internal/fs/isofs.go,
// internal/fs/udf) is not wired here.
package discfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Disc is a located BDMV directory tree, ready for component parsers
// to read files from.
type Disc struct {
	RootPath string // the directory passed in, or its ancestor containing BDMV
	BDMVPath string
}

// Locate finds the BDMV directory under root, breadth-first, the same
// way internal/bdrom's findBDMVDirectory does: root itself may be the
// BDMV directory, or BDMV may be a descendant.
func Locate(root string) (*Disc, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	if strings.EqualFold(filepath.Base(root), "BDMV") && looksLikeBDMV(root) {
		return &Disc{RootPath: filepath.Dir(root), BDMVPath: root}, nil
	}

	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(dir, entry.Name())
			if strings.EqualFold(entry.Name(), "BDMV") && looksLikeBDMV(sub) {
				return &Disc{RootPath: root, BDMVPath: sub}, nil
			}
			queue = append(queue, sub)
		}
	}

	return nil, fmt.Errorf("unable to locate BDMV directory under %s", root)
}

func looksLikeBDMV(path string) bool {
	if _, err := os.Stat(filepath.Join(path, "PLAYLIST")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(path, "STREAM")); err == nil {
		return true
	}
	return false
}

// IndexBDMV reads BDMV/index.bdmv, returning (nil, nil) if it's absent.
func (d *Disc) IndexBDMV() ([]byte, error) {
	return readOptional(filepath.Join(d.BDMVPath, "index.bdmv"))
}

// MovieObject reads BDMV/MovieObject.bdmv, returning (nil, nil) if absent.
func (d *Disc) MovieObject() ([]byte, error) {
	return readOptional(filepath.Join(d.BDMVPath, "MovieObject.bdmv"))
}

// PlaylistFiles lists every BDMV/PLAYLIST/*.mpls path, sorted
// lexicographically (§5's ordering guarantee).
func (d *Disc) PlaylistFiles() ([]string, error) {
	return listFiles(filepath.Join(d.BDMVPath, "PLAYLIST"), ".mpls")
}

// ClipFiles lists every BDMV/CLIPINF/*.clpi path, sorted lexicographically.
func (d *Disc) ClipFiles() ([]string, error) {
	return listFiles(filepath.Join(d.BDMVPath, "CLIPINF"), ".clpi")
}

// CandidateMenuStreams lists BDMV/STREAM/*.m2ts paths that are
// candidates for the IG stream scanner (§4.6); the scanner itself
// decides whether a given file actually carries an IG stream.
func (d *Disc) CandidateMenuStreams() ([]string, error) {
	return listFiles(filepath.Join(d.BDMVPath, "STREAM"), ".m2ts")
}

// ReadFile reads an arbitrary path under the disc tree.
func (d *Disc) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}
