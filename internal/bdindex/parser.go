// Package bdindex parses BDMV index.bdmv (§4.4): the disc-level title
// table that maps First Play, Top Menu, and each numbered title to the
// movie object that runs when it's selected.
//
// No teacher file parses this format in full — go-bdinfo's bdrom.go
// only peeks at the 8-byte header to detect a UHD disc — so this
// parser is grounded on that file's magic-check idiom, generalized
// into a full section walk over binreader.Reader.
package bdindex

import (
	"github.com/yxbh/bdpl/internal/bdplerr"
	"github.com/yxbh/bdpl/internal/binreader"
	"github.com/yxbh/bdpl/internal/model"
)

// Result is the outcome of parsing index.bdmv.
type Result struct {
	Titles   []model.TitleEntry
	Warnings []model.Warning
}

// objectTypeIndirect is the 2-bit object_type value meaning the title
// points at a BD-J object rather than a HDMV movie object; those
// titles carry no movie-object id to interpret here.
const objectTypeIndirect = 0x01

// Parse decodes index.bdmv into a TitleEntry list. First Play and Top
// Menu are recorded as synthetic title numbers -1 and 0 respectively,
// matching the convention used by §4.5's referenced_playlists
// resolution (which looks titles up by number).
func Parse(data []byte) (Result, error) {
	res := Result{}
	r := binreader.New(data)

	if err := r.Magic("INDX"); err != nil {
		return res, err
	}
	if _, err := r.String(4); err != nil { // version, e.g. "0200"/"0300"
		return res, err
	}

	indexesOffset, err := r.U32()
	if err != nil {
		return res, err
	}
	if _, err := r.U32(); err != nil { // extension data start address, unused
		return res, err
	}

	if err := r.Seek(int(indexesOffset)); err != nil {
		return res, &bdplerr.BoundsError{Offset: int(indexesOffset), Want: 0, Have: len(data)}
	}
	sectionLength, err := r.U32()
	if err != nil {
		return res, err
	}
	sectionEnd := r.Tell() + int(sectionLength)
	if sectionEnd > len(data) {
		return res, &bdplerr.LengthOverflow{Section: "Indexes", Declared: int(sectionLength), Remaining: len(data) - r.Tell()}
	}

	firstPlay, err := parseObjectRef(r)
	if err != nil {
		return res, err
	}
	topMenu, err := parseObjectRef(r)
	if err != nil {
		return res, err
	}
	titleCount, err := r.U16()
	if err != nil {
		return res, err
	}

	titles := make([]model.TitleEntry, 0, titleCount+2)
	titles = append(titles, model.TitleEntry{TitleNumber: -1, MovieObjectID: firstPlay})
	titles = append(titles, model.TitleEntry{TitleNumber: 0, MovieObjectID: topMenu})

	for i := 0; i < int(titleCount); i++ {
		if r.Tell() >= sectionEnd {
			res.Warnings = append(res.Warnings, model.Warning{
				Code:    model.WarnMalformedSection,
				Context: "Indexes",
				Message: "title table truncated before declared count reached",
			})
			break
		}
		objID, err := parseObjectRef(r)
		if err != nil {
			res.Warnings = append(res.Warnings, model.Warning{
				Code:    model.WarnMalformedSection,
				Context: "Indexes",
				Message: err.Error(),
			})
			break
		}
		titles = append(titles, model.TitleEntry{TitleNumber: i + 1, MovieObjectID: objID})
	}

	res.Titles = titles
	return res, nil
}

// parseObjectRef reads one 4-byte title-index entry: a 2-bit
// object_type, reserved bits, and a 16-bit movie-object id. Indirect
// (BD-J) references are returned as id 0 since this pipeline only
// interprets HDMV movie objects (§4.5, §Non-goals).
func parseObjectRef(r *binreader.Reader) (uint16, error) {
	flags, err := r.U8()
	if err != nil {
		return 0, err
	}
	if err := r.Skip(1); err != nil { // remaining reserved bits of the object_type word
		return 0, err
	}
	objectID, err := r.U16()
	if err != nil {
		return 0, err
	}
	objectType := (flags >> 6) & 0x03
	if objectType == objectTypeIndirect {
		return 0, nil
	}
	return objectID, nil
}
