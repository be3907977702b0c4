package bdindex

import (
	"encoding/binary"
	"testing"

	"github.com/yxbh/bdpl/internal/model"
)

func be16(v uint16) []byte { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); return b }
func be32(v uint32) []byte { b := make([]byte, 4); binary.BigEndian.PutUint32(b, v); return b }

// objRef builds one 4-byte object reference: a direct (HDMV) type with
// the given movie-object id.
func objRef(id uint16) []byte {
	return append([]byte{0x00, 0x00}, be16(id)...)
}

func buildIndexBDMV(firstPlay, topMenu uint16, titles []uint16) []byte {
	var body []byte
	body = append(body, objRef(firstPlay)...)
	body = append(body, objRef(topMenu)...)
	body = append(body, be16(uint16(len(titles)))...)
	for _, id := range titles {
		body = append(body, objRef(id)...)
	}
	indexesSection := append(be32(uint32(len(body))), body...)

	header := []byte("INDX0300")
	indexesOffset := uint32(len(header) + 8)
	buf := append([]byte{}, header...)
	buf = append(buf, be32(indexesOffset)...)
	buf = append(buf, be32(0)...) // extension data start address
	buf = append(buf, indexesSection...)
	return buf
}

func TestParse_TitlesAndSpecialEntries(t *testing.T) {
	data := buildIndexBDMV(10, 20, []uint16{1, 2, 3})
	res, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", res.Warnings)
	}
	if len(res.Titles) != 5 {
		t.Fatalf("Titles = %d, want 5", len(res.Titles))
	}
	if res.Titles[0].TitleNumber != -1 || res.Titles[0].MovieObjectID != 10 {
		t.Errorf("First Play entry = %+v, want {-1,10}", res.Titles[0])
	}
	if res.Titles[1].TitleNumber != 0 || res.Titles[1].MovieObjectID != 20 {
		t.Errorf("Top Menu entry = %+v, want {0,20}", res.Titles[1])
	}
	for i, want := range []uint16{1, 2, 3} {
		got := res.Titles[i+2]
		if got.TitleNumber != i+1 || got.MovieObjectID != want {
			t.Errorf("Titles[%d] = %+v, want {%d,%d}", i+2, got, i+1, want)
		}
	}
}

func TestParse_MissingMagicFails(t *testing.T) {
	data := append([]byte("XXXX0300"), make([]byte, 16)...)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for bad magic, got nil")
	}
}

func TestParse_TruncatedTitleTableWarns(t *testing.T) {
	// Declares 3 titles but the Indexes section's own length only
	// covers bytes for the first 2 — an internally consistent short
	// buffer, distinct from a buffer that's simply cut off mid-file.
	var body []byte
	body = append(body, objRef(1)...)
	body = append(body, objRef(2)...)
	body = append(body, be16(3)...) // claims 3 titles
	body = append(body, objRef(5)...)
	body = append(body, objRef(6)...)
	// third title's bytes omitted entirely; section length matches what's here.
	indexesSection := append(be32(uint32(len(body))), body...)

	header := []byte("INDX0300")
	indexesOffset := uint32(len(header) + 8)
	buf := append([]byte{}, header...)
	buf = append(buf, be32(indexesOffset)...)
	buf = append(buf, be32(0)...)
	buf = append(buf, indexesSection...)

	res, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Code == model.WarnMalformedSection {
			found = true
		}
	}
	if !found {
		t.Errorf("expected MALFORMED_SECTION warning, got %+v", res.Warnings)
	}
	if len(res.Titles) != 4 { // First Play + Top Menu + 2 complete titles
		t.Errorf("Titles = %d, want 4", len(res.Titles))
	}
}
