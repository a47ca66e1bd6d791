package wire

import "errors"

// Sentinel errors surfaced while parsing the file-level layout. Higher
// packages wrap these with fmt.Errorf("%w: ...") to add offsets/context,
// following the teacher's internal/format/errors.go pattern.
var (
	// ErrTruncated indicates a header or section claimed more bytes than
	// the buffer actually has.
	ErrTruncated = errors.New("wire: truncated buffer")

	// ErrSignatureMismatch indicates a magic/marker did not match.
	ErrSignatureMismatch = errors.New("wire: signature mismatch")

	// ErrUnsupportedVersion indicates a major format version this build
	// does not understand.
	ErrUnsupportedVersion = errors.New("wire: unsupported version")

	// ErrOffsetOutOfBounds indicates an offset field pointed outside its
	// containing section.
	ErrOffsetOutOfBounds = errors.New("wire: offset out of bounds")

	// ErrMarkerNotFound indicates a bounded scan for a marker exhausted
	// its search window without a match.
	ErrMarkerNotFound = errors.New("wire: marker not found")
)
