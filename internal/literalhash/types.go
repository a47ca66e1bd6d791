// Package literalhash implements the sharded, open-addressed exact-string
// hash table used to resolve literal patterns with no wildcard segments in
// O(1) instead of walking the Aho-Corasick automaton (spec §4.6). Patterns
// are partitioned into power-of-two shards by XXH64 hash, each shard built
// independently as its own linear-probed table, then concatenated into one
// on-disk section with a shard offset index so a lookup only ever probes
// within its own shard.
//
// This generalizes the teacher's internal/format section-reader pattern
// (fixed header, offset table, bounds-checked record access) to a hash
// table instead of a tree.
package literalhash

import "errors"

// MatchMode selects whether patterns and queries fold ASCII case.
type MatchMode int

const (
	CaseSensitive MatchMode = iota
	CaseInsensitive
)

// Magic identifies a literal-hash section.
var Magic = [4]byte{'L', 'H', 'S', 'H'}

// Version is the current on-disk format version.
const Version uint32 = 1

// emptySlot marks an unoccupied hash table entry's string offset.
const emptySlot uint32 = 0xFFFFFFFF

// entrySize is the on-disk size, in bytes, of one HashEntry record:
// 8 bytes hash + 4 bytes string offset + 4 bytes pattern id.
const entrySize = 16

// headerSize is the fixed size, in bytes, of the section header: 4 bytes
// magic + 7 little-endian uint32 fields.
const headerSize = 32

// mappingSize is the on-disk size, in bytes, of one pattern-id-to-data-
// offset mapping record.
const mappingSize = 8

// loadFactor bounds how full a shard's table may be before probe chains
// get long; shard capacity is sized to keep occupancy at or below this.
const loadFactor = 0.60

var (
	ErrNoPatterns   = errors.New("literalhash: at least one pattern is required")
	ErrTruncated    = errors.New("literalhash: truncated literal hash section")
	ErrBadMagic     = errors.New("literalhash: bad magic bytes")
	ErrBadVersion   = errors.New("literalhash: unsupported version")
	ErrEmptyPattern = errors.New("literalhash: pattern must not be empty")
)
