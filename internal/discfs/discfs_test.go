package discfs

import (
	"os"
	"path/filepath"
	"testing"
)

func makeBDMVTree(t *testing.T, root string) string {
	t.Helper()
	bdmv := filepath.Join(root, "BDMV")
	for _, sub := range []string{"PLAYLIST", "CLIPINF", "STREAM"} {
		if err := os.MkdirAll(filepath.Join(bdmv, sub), 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	writeFile(t, filepath.Join(bdmv, "index.bdmv"), []byte("INDX0100"))
	writeFile(t, filepath.Join(bdmv, "MovieObject.bdmv"), []byte("MOBJ0100"))
	writeFile(t, filepath.Join(bdmv, "PLAYLIST", "00002.mpls"), []byte("x"))
	writeFile(t, filepath.Join(bdmv, "PLAYLIST", "00001.mpls"), []byte("x"))
	writeFile(t, filepath.Join(bdmv, "CLIPINF", "00001.clpi"), []byte("x"))
	writeFile(t, filepath.Join(bdmv, "STREAM", "00001.m2ts"), []byte("x"))
	return bdmv
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestLocate_FindsBDMVAtRoot(t *testing.T) {
	root := t.TempDir()
	bdmv := makeBDMVTree(t, root)

	disc, err := Locate(bdmv)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if disc.BDMVPath != bdmv {
		t.Errorf("BDMVPath = %s, want %s", disc.BDMVPath, bdmv)
	}
}

func TestLocate_FindsBDMVNested(t *testing.T) {
	root := t.TempDir()
	bdmv := makeBDMVTree(t, root)

	disc, err := Locate(root)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if disc.BDMVPath != bdmv {
		t.Errorf("BDMVPath = %s, want %s", disc.BDMVPath, bdmv)
	}
}

func TestLocate_MissingBDMVFails(t *testing.T) {
	root := t.TempDir()
	if _, err := Locate(root); err == nil {
		t.Error("expected error for a directory with no BDMV tree")
	}
}

func TestPlaylistFiles_SortedLexicographically(t *testing.T) {
	root := t.TempDir()
	makeBDMVTree(t, root)
	disc, err := Locate(root)
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}

	files, err := disc.PlaylistFiles()
	if err != nil {
		t.Fatalf("PlaylistFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if filepath.Base(files[0]) != "00001.mpls" || filepath.Base(files[1]) != "00002.mpls" {
		t.Errorf("files = %v, want 00001.mpls before 00002.mpls", files)
	}
}

func TestClipFiles_MissingDirectoryReturnsEmpty(t *testing.T) {
	root := t.TempDir()
	bdmv := filepath.Join(root, "BDMV")
	if err := os.MkdirAll(filepath.Join(bdmv, "PLAYLIST"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	disc := &Disc{RootPath: root, BDMVPath: bdmv}

	files, err := disc.ClipFiles()
	if err != nil {
		t.Fatalf("ClipFiles() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want empty (no CLIPINF directory)", files)
	}
}

func TestIndexBDMV_AbsentReturnsNilWithoutError(t *testing.T) {
	root := t.TempDir()
	bdmv := filepath.Join(root, "BDMV")
	if err := os.MkdirAll(bdmv, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	disc := &Disc{RootPath: root, BDMVPath: bdmv}

	data, err := disc.IndexBDMV()
	if err != nil {
		t.Fatalf("IndexBDMV() error = %v", err)
	}
	if data != nil {
		t.Errorf("data = %v, want nil for missing file", data)
	}
}
