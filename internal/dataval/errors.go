package dataval

import "errors"

// Sentinel errors for the typed data codec (spec §7 DecodeError kind).
// The decoder never panics: every one of these is returned, not raised.
var (
	ErrTruncated      = errors.New("dataval: truncated buffer")
	ErrUnknownType    = errors.New("dataval: unknown type")
	ErrSizeOverflow   = errors.New("dataval: size field overflow")
	ErrInvalidUTF8    = errors.New("dataval: string is not valid UTF-8")
	ErrNonStringKey   = errors.New("dataval: map key is not a string")
	ErrForwardPointer = errors.New("dataval: pointer targets an offset at or after itself")
	ErrDepthExceeded  = errors.New("dataval: pointer/nesting depth exceeded")
)

// MaxDecodeDepth bounds the combined pointer-hop and nested-container depth
// a single Decode call will follow (spec §7 ResourceLimit,
// MAX_TOTAL_DEPTH = 64).
const MaxDecodeDepth = 64
