// Package wire defines the fixed, cross-reference-by-offset layout of a
// matchy database file (spec §4.1, §6): signature bytes, section markers,
// alignment rules, and the Paraglob bundle header. It mirrors the role the
// teacher's internal/format package plays for the Windows registry hive
// format — constants and header structs, no business logic.
package wire

// SeparatorSize is the width of the all-zero separator between the IP
// tree and the typed data section.
const SeparatorSize = 16

// MetadataScanWindow bounds the backward scan for the metadata marker to
// the last N bytes of the file, so opening a database never requires a
// full-file scan.
const MetadataScanWindow = 128 * 1024

// MetadataMarker is the literal byte sequence that precedes the metadata
// map. It begins with three non-ASCII bytes specifically so it cannot
// collide with a legitimate UTF-8 string value.
var MetadataMarker = []byte{0xAB, 0xCD, 0xEF, 'M', 'a', 'x', 'M', 'i', 'n', 'd', '.', 'c', 'o', 'm'}

// PatternSectionMarker introduces the optional Paraglob bundle.
var PatternSectionMarker = []byte("MMDB_PATTERN\x00\x00\x00\x00")

// LiteralSectionMarker introduces the optional literal-hash section.
var LiteralSectionMarker = []byte("MMDB_LITERAL\x00\x00\x00\x00")

// ParaglobMagic is the 8-byte magic at the start of every Paraglob bundle.
var ParaglobMagic = []byte("PARAGLOB")

// Record widths supported by the IP tree (spec §4.3).
const (
	RecordWidth24 = 24
	RecordWidth28 = 28
	RecordWidth32 = 32
)

// NodeBytes returns the on-disk size in bytes of one IP-tree node for the
// given record width, or 0 for an unsupported width.
func NodeBytes(recordWidth int) int {
	switch recordWidth {
	case RecordWidth24:
		return 6
	case RecordWidth28:
		return 7
	case RecordWidth32:
		return 8
	default:
		return 0
	}
}

// Endianness markers used in the Paraglob header's trailing byte.
const (
	EndiannessLittle byte = 0x01
)

// Paraglob bundle match modes.
const (
	MatchModeCaseSensitive   uint32 = 0
	MatchModeCaseInsensitive uint32 = 1
)

// Current and minimum supported Paraglob bundle versions.
const (
	ParaglobVersion3 uint32 = 3
	ParaglobVersion4 uint32 = 4
)
