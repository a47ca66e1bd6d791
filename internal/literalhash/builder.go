package literalhash

import (
	"github.com/cespare/xxhash/v2"
)

// computeHash returns the stable, portable XXH64 digest of s used both to
// shard a pattern and to verify a probe hit without touching the string
// pool.
func computeHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

type patternEntry struct {
	literal   string
	patternID uint32
	hash      uint64
}

// Builder accumulates literal patterns for a single literal-hash section.
type Builder struct {
	mode     MatchMode
	patterns []patternEntry
}

// NewBuilder returns an empty Builder for the given case-folding mode.
func NewBuilder(mode MatchMode) *Builder {
	return &Builder{mode: mode}
}

// Add registers a literal pattern under patternID, normalizing it for the
// builder's match mode and pre-computing its hash.
func (b *Builder) Add(literal string, patternID uint32) error {
	if literal == "" {
		return ErrEmptyPattern
	}
	normalized := literal
	if b.mode == CaseInsensitive {
		folded := []byte(literal)
		for i, c := range folded {
			if 'A' <= c && c <= 'Z' {
				folded[i] = c + ('a' - 'A')
			}
		}
		normalized = string(folded)
	}
	b.patterns = append(b.patterns, patternEntry{
		literal:   normalized,
		patternID: patternID,
		hash:      computeHash(normalized),
	})
	return nil
}

// Len returns the number of patterns added so far.
func (b *Builder) Len() int { return len(b.patterns) }

// shardBitsFor returns the adaptive shard-count exponent for n patterns
// (spec §4.6): fewer shards for small datasets to avoid per-shard
// overhead, more for large ones to keep probe chains short.
func shardBitsFor(n int) uint32 {
	switch {
	case n < 10_000:
		return 4
	case n < 100_000:
		return 5
	default:
		return 6
	}
}

// shard is one independently-built bucket of the final table: its own
// linear-probed entry array and its own string pool.
type shard struct {
	table   []hashEntry
	strings []byte
}

type hashEntry struct {
	hash         uint64
	stringOffset uint32
	patternID    uint32
}

func (e hashEntry) isEmpty() bool { return e.stringOffset == emptySlot }

func emptyEntry() hashEntry { return hashEntry{stringOffset: emptySlot} }

// partition splits patterns into numShards buckets by hash modulo, the
// same routing Lookup uses, so a pattern's shard id never
// depends on insertion order.
func partition(patterns []patternEntry, numShards int) [][]patternEntry {
	buckets := make([][]patternEntry, numShards)
	for _, p := range patterns {
		id := int(p.hash % uint64(numShards))
		buckets[id] = append(buckets[id], p)
	}
	return buckets
}

// buildShard constructs one shard's hash table and string pool from its
// partitioned entries (spec §4.6, "Shard layout").
func buildShard(entries []patternEntry) shard {
	if len(entries) == 0 {
		return shard{}
	}

	needed := int(float64(len(entries))/loadFactor + 0.999999)
	capacity := nextPowerOfTwo(needed)
	if capacity < 16 {
		capacity = 16
	}
	mask := capacity - 1

	var strings []byte
	stringOffsets := make([]uint32, len(entries))
	for i, p := range entries {
		stringOffsets[i] = uint32(len(strings))
		var lenBuf [2]byte
		lenBuf[0] = byte(len(p.literal))
		lenBuf[1] = byte(len(p.literal) >> 8)
		strings = append(strings, lenBuf[0], lenBuf[1])
		strings = append(strings, p.literal...)
		strings = append(strings, 0)
	}

	table := make([]hashEntry, capacity)
	for i := range table {
		table[i] = emptyEntry()
	}
	for i, p := range entries {
		pos := int(p.hash) & mask
		for !table[pos].isEmpty() {
			pos = (pos + 1) & mask
		}
		table[pos] = hashEntry{
			hash:         p.hash,
			stringOffset: stringOffsets[i],
			patternID:    p.patternID,
		}
	}

	return shard{table: table, strings: strings}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
