package literalhash

import (
	"bytes"
	"fmt"

	"github.com/matchydb/matchy/internal/buf"
)

// Table is a read-only view over an encoded literal-hash section. It never
// rebuilds the shard tables: Lookup walks the wire bytes directly, probing
// only within the shard a query's hash routes to.
type Table struct {
	data          []byte
	mode          MatchMode
	numShards     int
	shardOffsets  []uint32
	tableStart    int
	stringsStart  int
	mappingsStart int
	entryCount    uint32
}

// Open validates and wraps an encoded literal-hash section.
func Open(data []byte, mode MatchMode) (*Table, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("literalhash: header: %w", ErrTruncated)
	}
	if !bytes.Equal(data[0:4], Magic[:]) {
		return nil, ErrBadMagic
	}
	version := buf.U32LE(data[4:8])
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}
	entryCount := buf.U32LE(data[8:12])
	stringsOffset := buf.U32LE(data[16:20])
	stringsSize := buf.U32LE(data[20:24])
	numShards := int(buf.U32LE(data[24:28]))

	shardTableSize := (numShards + 1) * 4
	shardTableStart := headerSize
	if !buf.Has(data, shardTableStart, shardTableSize) {
		return nil, fmt.Errorf("literalhash: shard offset table: %w", ErrTruncated)
	}
	shardOffsets := make([]uint32, numShards+1)
	for i := 0; i <= numShards; i++ {
		shardOffsets[i] = buf.U32LE(data[shardTableStart+i*4 : shardTableStart+i*4+4])
	}

	tableStart := shardTableStart + shardTableSize
	stringsStart := int(stringsOffset)
	mappingsStart := stringsStart + int(stringsSize)
	if mappingsStart > len(data) {
		return nil, fmt.Errorf("literalhash: string pool: %w", ErrTruncated)
	}

	return &Table{
		data:          data,
		mode:          mode,
		numShards:     numShards,
		shardOffsets:  shardOffsets,
		tableStart:    tableStart,
		stringsStart:  stringsStart,
		mappingsStart: mappingsStart,
		entryCount:    entryCount,
	}, nil
}

// EntryCount returns the number of occupied slots across all shards.
func (t *Table) EntryCount() uint32 { return t.entryCount }

// Lookup reports the pattern id registered for query, if any (spec §4.6,
// "Lookup"). Only the single shard query's hash routes to is probed.
func (t *Table) Lookup(query string) (uint32, bool) {
	normalized := query
	if t.mode == CaseInsensitive {
		folded := []byte(query)
		for i, c := range folded {
			if 'A' <= c && c <= 'Z' {
				folded[i] = c + ('a' - 'A')
			}
		}
		normalized = string(folded)
	}
	hash := computeHash(normalized)

	shardID := int(hash % uint64(t.numShards))
	shardStart := int(t.shardOffsets[shardID])
	shardEnd := int(t.shardOffsets[shardID+1])
	capacity := shardEnd - shardStart
	if capacity == 0 {
		return 0, false
	}
	mask := capacity - 1

	slot := shardStart + (int(hash) & mask)
	for probe := 0; probe < capacity; probe++ {
		entryOffset := t.tableStart + slot*entrySize
		if !buf.Has(t.data, entryOffset, entrySize) {
			return 0, false
		}
		rec := t.data[entryOffset : entryOffset+entrySize]
		entryHash := buf.U64LE(rec[0:8])
		stringOffset := buf.U32LE(rec[8:12])
		patternID := buf.U32LE(rec[12:16])

		if stringOffset == emptySlot {
			return 0, false
		}
		if entryHash == hash {
			if s, ok := t.readString(stringOffset); ok && s == normalized {
				return patternID, true
			}
		}

		slot = shardStart + ((slot + 1 - shardStart) & mask)
	}
	return 0, false
}

func (t *Table) readString(offset uint32) (string, bool) {
	absOffset := t.stringsStart + int(offset)
	if !buf.Has(t.data, absOffset, 2) {
		return "", false
	}
	length := int(buf.U16LE(t.data[absOffset : absOffset+2]))
	strStart := absOffset + 2
	if !buf.Has(t.data, strStart, length) {
		return "", false
	}
	return string(t.data[strStart : strStart+length]), true
}

// VerifyShards walks every occupied slot in every shard and confirms the
// stored hash is a genuine rehash of the stored string and that the slot
// lives in the shard its hash routes to. This is the audit-level
// consistency pass: Lookup never needs it, since it already recomputes
// the hash from the query, but a corrupted string pool or a misrouted
// entry would otherwise only surface as a silent missed match.
func (t *Table) VerifyShards() error {
	for shardID := 0; shardID < t.numShards; shardID++ {
		shardStart := int(t.shardOffsets[shardID])
		shardEnd := int(t.shardOffsets[shardID+1])
		for slot := shardStart; slot < shardEnd; slot++ {
			entryOffset := t.tableStart + slot*entrySize
			if !buf.Has(t.data, entryOffset, entrySize) {
				return fmt.Errorf("literalhash: shard %d slot %d: %w", shardID, slot, ErrTruncated)
			}
			rec := t.data[entryOffset : entryOffset+entrySize]
			stringOffset := buf.U32LE(rec[8:12])
			if stringOffset == emptySlot {
				continue
			}
			entryHash := buf.U64LE(rec[0:8])

			s, ok := t.readString(stringOffset)
			if !ok {
				return fmt.Errorf("literalhash: shard %d slot %d: string at %d: %w", shardID, slot, stringOffset, ErrTruncated)
			}
			if computeHash(s) != entryHash {
				return fmt.Errorf("literalhash: shard %d slot %d: stored hash does not match rehash of %q", shardID, slot, s)
			}
			if int(entryHash%uint64(t.numShards)) != shardID {
				return fmt.Errorf("literalhash: shard %d slot %d: hash routes to shard %d", shardID, slot, entryHash%uint64(t.numShards))
			}
		}
	}
	return nil
}

// DataOffset returns the data-section offset registered for patternID, if
// the section carries a mapping for it.
func (t *Table) DataOffset(patternID uint32) (uint32, bool) {
	if !buf.Has(t.data, t.mappingsStart, 4) {
		return 0, false
	}
	count := buf.U32LE(t.data[t.mappingsStart : t.mappingsStart+4])
	base := t.mappingsStart + 4
	for i := uint32(0); i < count; i++ {
		offset := base + int(i)*mappingSize
		if !buf.Has(t.data, offset, mappingSize) {
			return 0, false
		}
		pid := buf.U32LE(t.data[offset : offset+4])
		if pid == patternID {
			return buf.U32LE(t.data[offset+4 : offset+8]), true
		}
	}
	return 0, false
}
