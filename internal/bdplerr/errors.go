// Package bdplerr defines the typed parse errors shared by every BDMV
// binary parser. The first four are fatal to a single file's parse;
// UnknownEnum is non-fatal and is meant to be folded into a Warning
// instead of aborting anything.
package bdplerr

import "fmt"

// BoundsError reports a read that would run past the end of a buffer.
type BoundsError struct {
	Offset int
	Want   int
	Have   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("bounds error at offset %d: want %d bytes, have %d", e.Offset, e.Want, e.Have)
}

// MagicMismatch reports a missing or wrong magic string at a file's head.
type MagicMismatch struct {
	Expected string
	Got      string
}

func (e *MagicMismatch) Error() string {
	return fmt.Sprintf("magic mismatch: expected %q, got %q", e.Expected, e.Got)
}

// LengthOverflow reports a length-prefixed section whose declared
// length runs past the remaining bytes in the buffer.
type LengthOverflow struct {
	Section   string
	Declared  int
	Remaining int
}

func (e *LengthOverflow) Error() string {
	return fmt.Sprintf("section %s declares length %d but only %d bytes remain", e.Section, e.Declared, e.Remaining)
}

// UnsupportedVersion reports a version tag the parser does not recognize.
type UnsupportedVersion struct {
	Got string
}

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported version %q", e.Got)
}

// UnknownEnum reports a raw value that does not map to any known enum
// member. Non-fatal: callers should record a Warning and substitute
// an UNKNOWN value rather than abort the parse.
type UnknownEnum struct {
	Field string
	Raw   int
}

func (e *UnknownEnum) Error() string {
	return fmt.Sprintf("unknown value for %s: 0x%x", e.Field, e.Raw)
}
