// Package ac implements the Aho-Corasick automaton used to find candidate
// literal substrings inside a query string (spec §4.4). A Builder accumulates
// literals in memory and computes failure links with output merging; Encode
// serializes the result to the four per-node encodings (empty/single/sparse/
// dense) the format uses to keep memory proportional to branching factor
// rather than to the full 256-byte alphabet. Automaton then scans directly
// over that encoded form, so a loaded (or mmap'd) database never rebuilds
// the trie to query it.
//
// This generalizes the teacher's internal/format node-decoder pattern
// (fixed-width records, offsets instead of pointers) from Windows registry
// key nodes to trie states.
package ac

import "errors"

// MatchMode selects whether literal insertion and scanning fold ASCII case.
type MatchMode int

const (
	CaseSensitive MatchMode = iota
	CaseInsensitive
)

// Encoding identifies how a node's outgoing transitions are stored.
type Encoding byte

const (
	EncodingEmpty Encoding = iota
	EncodingSingle
	EncodingSparse
	EncodingDense
)

// sparseMax is the inclusive upper bound on transition count for the
// Sparse encoding; above it a node switches to Dense (spec §4.4 table).
const sparseMax = 8

// NodeSize is the fixed on-disk size, in bytes, of one AC node record.
const NodeSize = 24

// headerSize is the size of the AC section's own header, placed before the
// node array. Real node offsets are always >= headerSize, so 0 is safely
// reserved as the "no link" / "no transition" sentinel throughout the
// section (failure links, outputs, dense-table entries).
const headerSize = 12

// sparseEdgeSize is the fixed on-disk size, in bytes, of one Sparse edge
// entry: 1 byte character, 3 bytes padding, 4 bytes target offset.
const sparseEdgeSize = 8

// denseTableSize is the size, in bytes, of a full 256-entry Dense
// transition table (256 × 4-byte offsets).
const denseTableSize = 256 * 4

var (
	ErrEmptyLiteral   = errors.New("ac: literal must not be empty")
	ErrNoLiterals     = errors.New("ac: at least one literal is required")
	ErrTruncated      = errors.New("ac: truncated AC section")
	ErrOffsetOutOfRange = errors.New("ac: offset out of range")
	ErrSelfLoopFailure  = errors.New("ac: root failure link must stay at root")
)
