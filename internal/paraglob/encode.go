package paraglob

import (
	"sort"

	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/wire"
)

// encode assembles the complete on-disk section: wire header, AC
// automaton, pattern table, pattern string pool, pure-wildcard index,
// data section, pattern-data mapping table, and AC-literal→pattern-ids
// map (spec §4.6, "Data held per database"; spec §6, "Paraglob bundle
// header").
func (b *Builder) encode(acData []byte, literalToPatterns map[uint32][]uint32) ([]byte, error) {
	patternsOffset := headerSize + len(acData)
	patternEntriesSize := len(b.patterns) * patternEntrySize

	patternStringsOffset := patternsOffset + patternEntriesSize
	var patternStrings []byte
	stringOffsets := make([]int, len(b.patterns))
	for i, p := range b.patterns {
		stringOffsets[i] = len(patternStrings)
		patternStrings = append(patternStrings, p.text...)
		patternStrings = append(patternStrings, 0)
	}
	patternStringsSize := len(patternStrings)

	type wildcardRef struct {
		patternID uint32
		strOffset uint32
	}
	var wildcards []wildcardRef
	for i, p := range b.patterns {
		if p.kind == KindGlob && len(p.literals) == 0 {
			wildcards = append(wildcards, wildcardRef{
				patternID: uint32(i),
				strOffset: uint32(patternStringsOffset + stringOffsets[i]),
			})
		}
	}
	wildcardsOffset := patternStringsOffset + patternStringsSize
	wildcardsSize := len(wildcards) * wildcardEntrySize

	dataSectionOffset := wildcardsOffset + wildcardsSize
	encoder := dataval.NewEncoder()
	type mapping struct {
		patternID  uint32
		dataOffset uint32
	}
	var mappings []mapping
	for i, p := range b.patterns {
		if p.hasData {
			off := encoder.Encode(p.data)
			mappings = append(mappings, mapping{patternID: uint32(i), dataOffset: uint32(off)})
		}
	}
	dataSectionBytes := encoder.Bytes()
	dataSectionSize := len(dataSectionBytes)

	mappingOffset := dataSectionOffset + dataSectionSize
	mappingSize := len(mappings) * 8

	acLiteralMapOffset := mappingOffset + mappingSize
	literalIDs := make([]uint32, 0, len(literalToPatterns))
	for id := range literalToPatterns {
		literalIDs = append(literalIDs, id)
	}
	sort.Slice(literalIDs, func(i, j int) bool { return literalIDs[i] < literalIDs[j] })

	// The AC-literal map is self-describing: a leading entry count
	// followed by [literal_id][pattern_count][pattern_id...] records, so
	// a reader never needs a separate count field from the header.
	acLiteralMapSize := 4
	for _, id := range literalIDs {
		acLiteralMapSize += 8 + len(literalToPatterns[id])*4
	}

	totalSize := acLiteralMapOffset + acLiteralMapSize
	out := make([]byte, totalSize)

	copy(out[headerSize:headerSize+len(acData)], acData)

	for i, p := range b.patterns {
		off := patternsOffset + i*patternEntrySize
		buf.PutU32LE(out[off:off+4], uint32(i))
		out[off+4] = byte(p.kind)
		buf.PutU32LE(out[off+8:off+12], uint32(patternStringsOffset+stringOffsets[i]))
		buf.PutU32LE(out[off+12:off+16], uint32(len(p.text)))
	}

	copy(out[patternStringsOffset:patternStringsOffset+patternStringsSize], patternStrings)

	for i, w := range wildcards {
		off := wildcardsOffset + i*wildcardEntrySize
		buf.PutU32LE(out[off:off+4], w.patternID)
		buf.PutU32LE(out[off+4:off+8], w.strOffset)
	}

	copy(out[dataSectionOffset:dataSectionOffset+dataSectionSize], dataSectionBytes)

	for i, m := range mappings {
		off := mappingOffset + i*8
		buf.PutU32LE(out[off:off+4], m.patternID)
		buf.PutU32LE(out[off+4:off+8], m.dataOffset)
	}

	pos := acLiteralMapOffset
	buf.PutU32LE(out[pos:pos+4], uint32(len(literalIDs)))
	pos += 4
	for _, id := range literalIDs {
		patternIDs := literalToPatterns[id]
		buf.PutU32LE(out[pos:pos+4], id)
		buf.PutU32LE(out[pos+4:pos+8], uint32(len(patternIDs)))
		pos += 8
		for _, pid := range patternIDs {
			buf.PutU32LE(out[pos:pos+4], pid)
			pos += 4
		}
	}

	header := wire.ParaglobHeader{
		Version:              wire.ParaglobVersion3,
		MatchMode:            b.mode.wire(),
		ACNodesOffset:        uint32(headerSize),
		ACNodesSize:          uint32(len(acData)),
		PatternEntriesOffset: uint32(patternsOffset),
		PatternEntriesSize:   uint32(patternEntriesSize),
		PatternStringsOffset: uint32(patternStringsOffset),
		PatternStringsSize:   uint32(patternStringsSize),
		// This port always builds the v3 AC-literal map directly and never
		// needs the older, reconstruction-requiring meta-word mapping
		// the format also reserves a section for; the two describe the
		// same literal→pattern relationship, so MetaWordMap simply
		// aliases the AC-literal map's bytes rather than duplicating them
		// (see DESIGN.md).
		MetaWordMapOffset:    uint32(acLiteralMapOffset),
		MetaWordMapSize:      uint32(acLiteralMapSize),
		PureWildcardOffset:   uint32(wildcardsOffset),
		PureWildcardSize:     uint32(wildcardsSize),
		DataSectionOffset:    uint32(dataSectionOffset),
		DataSectionSize:      uint32(dataSectionSize),
		PatternDataMapOffset: uint32(mappingOffset),
		PatternDataMapSize:   uint32(mappingSize),
		ACLiteralMapOffset:   uint32(acLiteralMapOffset),
		ACLiteralMapSize:     uint32(acLiteralMapSize),
		TotalBufferSize:      uint64(totalSize),
		Endianness:           wire.EndiannessLittle,
	}
	copy(out[0:headerSize], wire.EncodeParaglobHeader(header))

	return out, nil
}
