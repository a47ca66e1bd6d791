package literalhash

import (
	"sort"

	"github.com/matchydb/matchy/internal/buf"
)

// Encode serializes the builder's patterns into a complete literal-hash
// section: header, shard offset index, concatenated shard tables,
// concatenated shard string pools, and the pattern-id-to-data-offset
// mapping table (spec §4.6, "Format"). dataOffsets need not cover every
// pattern id; missing ids simply have no mapping record.
func (b *Builder) Encode(dataOffsets map[uint32]uint32) ([]byte, error) {
	if len(b.patterns) == 0 {
		return nil, ErrNoPatterns
	}

	shardBits := shardBitsFor(len(b.patterns))
	numShards := 1 << shardBits

	buckets := partition(b.patterns, numShards)
	shards := make([]shard, numShards)
	for i, bucket := range buckets {
		shards[i] = buildShard(bucket)
	}

	shardOffsets := make([]uint32, numShards+1)
	var tableSize uint32
	for i, s := range shards {
		shardOffsets[i] = tableSize
		tableSize += uint32(len(s.table))
	}
	shardOffsets[numShards] = tableSize

	finalTable := make([]hashEntry, 0, tableSize)
	var finalStrings []byte
	var poolOffset uint32
	for _, s := range shards {
		for _, e := range s.table {
			if !e.isEmpty() {
				e.stringOffset += poolOffset
			}
			finalTable = append(finalTable, e)
		}
		finalStrings = append(finalStrings, s.strings...)
		poolOffset += uint32(len(s.strings))
	}

	entryCount := 0
	for _, e := range finalTable {
		if !e.isEmpty() {
			entryCount++
		}
	}

	shardTableSize := (numShards + 1) * 4
	tableBytesSize := len(finalTable) * entrySize
	stringsOffset := headerSize + shardTableSize + tableBytesSize
	stringsSize := len(finalStrings)

	ids := sortedDataOffsetKeys(dataOffsets)

	total := stringsOffset + stringsSize + 4 + len(ids)*mappingSize
	out := make([]byte, total)

	copy(out[0:4], Magic[:])
	buf.PutU32LE(out[4:8], Version)
	buf.PutU32LE(out[8:12], uint32(entryCount))
	buf.PutU32LE(out[12:16], uint32(len(finalTable)))
	buf.PutU32LE(out[16:20], uint32(stringsOffset))
	buf.PutU32LE(out[20:24], uint32(stringsSize))
	buf.PutU32LE(out[24:28], uint32(numShards))
	buf.PutU32LE(out[28:32], shardBits)

	pos := headerSize
	for _, off := range shardOffsets {
		buf.PutU32LE(out[pos:pos+4], off)
		pos += 4
	}

	for _, e := range finalTable {
		buf.PutU64LE(out[pos:pos+8], e.hash)
		buf.PutU32LE(out[pos+8:pos+12], e.stringOffset)
		buf.PutU32LE(out[pos+12:pos+16], e.patternID)
		pos += entrySize
	}

	copy(out[pos:pos+stringsSize], finalStrings)
	pos += stringsSize

	buf.PutU32LE(out[pos:pos+4], uint32(len(ids)))
	pos += 4
	for _, id := range ids {
		buf.PutU32LE(out[pos:pos+4], id)
		buf.PutU32LE(out[pos+4:pos+8], dataOffsets[id])
		pos += mappingSize
	}

	return out, nil
}

// sortedDataOffsetKeys returns dataOffsets' keys sorted ascending, giving
// the mapping table a deterministic, reproducible byte layout.
func sortedDataOffsetKeys(dataOffsets map[uint32]uint32) []uint32 {
	ids := make([]uint32, 0, len(dataOffsets))
	for id := range dataOffsets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
