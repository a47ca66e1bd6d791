package wire

import (
	"fmt"

	"github.com/matchydb/matchy/internal/buf"
)

// ParaglobHeaderSize is the fixed size in bytes of a v3+ Paraglob bundle
// header (spec §6).
const ParaglobHeaderSize = 104

// offsets of each field within the 104-byte header.
const (
	offMagic       = 0  // 8 bytes
	offVersion     = 8  // 4 bytes
	offMatchMode   = 12 // 4 bytes
	offACNodes     = 16 // offset u32, size u32
	offPatternTbl  = 24
	offPatternStr  = 32
	offMetaWordMap = 40
	offPureWild    = 48
	offDataSection = 56
	offPatternData = 64
	offACLitMap    = 72
	offTotalSize   = 80 // 8 bytes
	offEndianness  = 88 // 1 byte
	// bytes 89..104 are reserved for future minor-version fields.
)

// ParaglobHeader is the self-describing header at the start of a Paraglob
// bundle (spec §4.6, §6). Every field is an offset/size relative to the
// start of the bundle (not the whole database file), validated against
// TotalBufferSize before any read.
type ParaglobHeader struct {
	Version   uint32
	MatchMode uint32 // MatchModeCaseSensitive or MatchModeCaseInsensitive

	ACNodesOffset, ACNodesSize             uint32
	PatternEntriesOffset, PatternEntriesSize uint32
	PatternStringsOffset, PatternStringsSize uint32
	MetaWordMapOffset, MetaWordMapSize     uint32
	PureWildcardOffset, PureWildcardSize   uint32
	DataSectionOffset, DataSectionSize     uint32 // optional, Size==0 if absent
	PatternDataMapOffset, PatternDataMapSize uint32 // optional
	ACLiteralMapOffset, ACLiteralMapSize   uint32 // optional

	TotalBufferSize uint64
	Endianness      byte
}

// EncodeParaglobHeader writes h into a new ParaglobHeaderSize-byte buffer.
func EncodeParaglobHeader(h ParaglobHeader) []byte {
	out := make([]byte, ParaglobHeaderSize)
	copy(out[offMagic:], ParaglobMagic)
	buf.PutU32LE(out[offVersion:], h.Version)
	buf.PutU32LE(out[offMatchMode:], h.MatchMode)

	putPair := func(off int, o, s uint32) {
		buf.PutU32LE(out[off:], o)
		buf.PutU32LE(out[off+4:], s)
	}
	putPair(offACNodes, h.ACNodesOffset, h.ACNodesSize)
	putPair(offPatternTbl, h.PatternEntriesOffset, h.PatternEntriesSize)
	putPair(offPatternStr, h.PatternStringsOffset, h.PatternStringsSize)
	putPair(offMetaWordMap, h.MetaWordMapOffset, h.MetaWordMapSize)
	putPair(offPureWild, h.PureWildcardOffset, h.PureWildcardSize)
	putPair(offDataSection, h.DataSectionOffset, h.DataSectionSize)
	putPair(offPatternData, h.PatternDataMapOffset, h.PatternDataMapSize)
	putPair(offACLitMap, h.ACLiteralMapOffset, h.ACLiteralMapSize)

	buf.PutU64LE(out[offTotalSize:], h.TotalBufferSize)
	out[offEndianness] = h.Endianness
	return out
}

// DecodeParaglobHeader parses and validates the header at the start of b.
// Every offset/size pair is checked against TotalBufferSize before the
// caller is handed a ParaglobHeader it can trust to slice from.
func DecodeParaglobHeader(b []byte) (ParaglobHeader, error) {
	if len(b) < ParaglobHeaderSize {
		return ParaglobHeader{}, fmt.Errorf("paraglob header: %w (have %d, need %d)", ErrTruncated, len(b), ParaglobHeaderSize)
	}
	if string(b[offMagic:offMagic+8]) != string(ParaglobMagic) {
		return ParaglobHeader{}, fmt.Errorf("paraglob header: %w", ErrSignatureMismatch)
	}
	h := ParaglobHeader{
		Version:   buf.U32LE(b[offVersion:]),
		MatchMode: buf.U32LE(b[offMatchMode:]),
	}
	if h.Version != ParaglobVersion3 && h.Version != ParaglobVersion4 {
		return ParaglobHeader{}, fmt.Errorf("paraglob header: version %d: %w", h.Version, ErrUnsupportedVersion)
	}

	getPair := func(off int) (uint32, uint32) {
		return buf.U32LE(b[off:]), buf.U32LE(b[off+4:])
	}
	h.ACNodesOffset, h.ACNodesSize = getPair(offACNodes)
	h.PatternEntriesOffset, h.PatternEntriesSize = getPair(offPatternTbl)
	h.PatternStringsOffset, h.PatternStringsSize = getPair(offPatternStr)
	h.MetaWordMapOffset, h.MetaWordMapSize = getPair(offMetaWordMap)
	h.PureWildcardOffset, h.PureWildcardSize = getPair(offPureWild)
	h.DataSectionOffset, h.DataSectionSize = getPair(offDataSection)
	h.PatternDataMapOffset, h.PatternDataMapSize = getPair(offPatternData)
	h.ACLiteralMapOffset, h.ACLiteralMapSize = getPair(offACLitMap)
	h.TotalBufferSize = buf.U64LE(b[offTotalSize:])
	h.Endianness = b[offEndianness]

	for _, pair := range [][2]uint32{
		{h.ACNodesOffset, h.ACNodesSize},
		{h.PatternEntriesOffset, h.PatternEntriesSize},
		{h.PatternStringsOffset, h.PatternStringsSize},
		{h.MetaWordMapOffset, h.MetaWordMapSize},
		{h.PureWildcardOffset, h.PureWildcardSize},
		{h.DataSectionOffset, h.DataSectionSize},
		{h.PatternDataMapOffset, h.PatternDataMapSize},
		{h.ACLiteralMapOffset, h.ACLiteralMapSize},
	} {
		if pair[1] == 0 {
			continue // optional/empty section
		}
		end := uint64(pair[0]) + uint64(pair[1])
		if end > h.TotalBufferSize {
			return ParaglobHeader{}, fmt.Errorf("paraglob header: section [%d,%d) exceeds buffer size %d: %w",
				pair[0], end, h.TotalBufferSize, ErrOffsetOutOfBounds)
		}
	}
	return h, nil
}

// Section slices b at [offset, offset+size), returning an error instead of
// panicking when the bounds don't fit.
func Section(b []byte, offset, size uint32) ([]byte, error) {
	s, ok := buf.Slice(b, int(offset), int(size))
	if !ok {
		return nil, fmt.Errorf("wire: section [%d,%d) out of bounds (len %d): %w", offset, uint64(offset)+uint64(size), len(b), ErrOffsetOutOfBounds)
	}
	return s, nil
}
