// Package binreader is the cursor every BDMV binary parser reads
// through: bounds-checked big-endian integer reads and zero-copy
// subslicing over an immutable byte buffer.
package binreader

import (
	"github.com/yxbh/bdpl/internal/bdplerr"
)

// Reader is a cursor over an immutable byte slice. Every successful
// read advances the cursor; a failed read (one that would overrun the
// buffer) leaves the cursor untouched and returns a *bdplerr.BoundsError.
type Reader struct {
	data []byte
	pos  int
}

// New wraps data in a Reader positioned at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Tell returns the current cursor offset.
func (r *Reader) Tell() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Seek moves the cursor to an absolute offset. It fails if off is
// outside [0, len(data)].
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.data) {
		return &bdplerr.BoundsError{Offset: off, Want: 0, Have: len(r.data)}
	}
	r.pos = off
	return nil
}

// Skip advances the cursor by n bytes without reading them.
func (r *Reader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

func (r *Reader) guard(n int) error {
	if n < 0 || r.pos+n > len(r.data) {
		return &bdplerr.BoundsError{Offset: r.pos, Want: n, Have: r.Remaining()}
	}
	return nil
}

// U8 reads an unsigned 8-bit integer.
func (r *Reader) U8() (uint8, error) {
	if err := r.guard(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// U16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) U16() (uint16, error) {
	if err := r.guard(2); err != nil {
		return 0, err
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v, nil
}

// U24 reads a big-endian unsigned 24-bit integer (common for
// length-prefixed BDMV sections).
func (r *Reader) U24() (uint32, error) {
	if err := r.guard(3); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos])<<16 | uint32(r.data[r.pos+1])<<8 | uint32(r.data[r.pos+2])
	r.pos += 3
	return v, nil
}

// U32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) U32() (uint32, error) {
	if err := r.guard(4); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos])<<24 | uint32(r.data[r.pos+1])<<16 | uint32(r.data[r.pos+2])<<8 | uint32(r.data[r.pos+3])
	r.pos += 4
	return v, nil
}

// U64 reads a big-endian unsigned 64-bit integer.
func (r *Reader) U64() (uint64, error) {
	if err := r.guard(8); err != nil {
		return 0, err
	}
	hi, _ := r.U32()
	lo, err := r.U32()
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// Bytes reads and returns a zero-copy view of the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.guard(n); err != nil {
		return nil, err
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// String reads n bytes and returns them as a string (ASCII fields in
// BDMV formats: magic tags, version tags, clip identifiers).
func (r *Reader) String(n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Magic reads len(expected) bytes and fails with *bdplerr.MagicMismatch
// if they don't match exactly. On mismatch the cursor is NOT advanced.
func (r *Reader) Magic(expected string) error {
	if err := r.guard(len(expected)); err != nil {
		return err
	}
	got := string(r.data[r.pos : r.pos+len(expected)])
	if got != expected {
		return &bdplerr.MagicMismatch{Expected: expected, Got: got}
	}
	r.pos += len(expected)
	return nil
}

// Sub returns a zero-copy subslice [off, off+n) of the underlying
// buffer without moving the cursor. Used for offset-indirected
// sections (e.g. CLPI's ClipInfo block reached via a header offset).
func (r *Reader) Sub(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(r.data) {
		return nil, &bdplerr.BoundsError{Offset: off, Want: n, Have: len(r.data) - off}
	}
	return r.data[off : off+n], nil
}

// SkipToSectionEnd advances the cursor to sectionStart+declaredLength,
// used by the "skip remainder of block using its declared length"
// robustness rule. It fails (without moving the cursor) if the
// declared length overruns the buffer.
func (r *Reader) SkipToSectionEnd(sectionStart, declaredLength int, sectionName string) error {
	end := sectionStart + declaredLength
	if end < 0 || end > len(r.data) {
		return &bdplerr.LengthOverflow{Section: sectionName, Declared: declaredLength, Remaining: len(r.data) - sectionStart}
	}
	r.pos = end
	return nil
}
