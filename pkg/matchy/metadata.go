package matchy

import (
	"fmt"

	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/wire"
)

// formatMajorVersion and formatMinorVersion identify this package's on-disk
// layout (spec §5, "MetadataRecord": binary_format_major_version /
// binary_format_minor_version).
const (
	formatMajorVersion uint16 = 2
	formatMinorVersion uint16 = 0
)

// rootOffsetSize is the width of the little-endian root-offset header
// pkg/matchy writes immediately after wire.MetadataMarker, ahead of the
// encoded metadata Map's own bytes. dataval.Encoder appends a container
// value's children before its own control/pointer bytes, so a fresh
// encoder's top-level offset is essentially never 0 for a non-trivial Map;
// this header is what lets OpenBytes recover it without re-parsing.
const rootOffsetSize = 4

// buildMetadata assembles the metadata Map value for info, recording
// buildEpoch as the build timestamp.
func buildMetadata(info Info, buildEpoch uint64) (dataval.Value, error) {
	description, err := dataval.EncodeDescription(info.Description)
	if err != nil {
		return dataval.Value{}, fmt.Errorf("matchy: encode description: %w", err)
	}

	entries := []dataval.MapEntry{
		{Key: "binary_format_major_version", Value: dataval.Uint16Value(formatMajorVersion)},
		{Key: "binary_format_minor_version", Value: dataval.Uint16Value(formatMinorVersion)},
		{Key: "build_epoch", Value: dataval.Uint64Value(buildEpoch)},
		{Key: "database_type", Value: dataval.String(info.DatabaseType)},
		{Key: "description", Value: description},
		{Key: "ip_version", Value: dataval.Uint16Value(uint16(info.IPVersion))},
		{Key: "node_count", Value: dataval.Uint32Value(info.NodeCount)},
		{Key: "record_size", Value: dataval.Uint16Value(uint16(info.RecordSize))},
		{Key: "case_insensitive", Value: dataval.BoolValue(info.CaseInsensitive)},
		{Key: "has_patterns", Value: dataval.BoolValue(info.HasPatterns)},
		{Key: "has_literal_hash", Value: dataval.BoolValue(info.HasLiteralHash)},
	}
	return dataval.MapValue(entries), nil
}

// encodeMetadataSection builds the complete on-disk metadata record: the
// marker, the root-offset header, and the encoded Map itself.
func encodeMetadataSection(info Info, buildEpoch uint64) ([]byte, error) {
	metaValue, err := buildMetadata(info, buildEpoch)
	if err != nil {
		return nil, err
	}

	enc := dataval.NewEncoder()
	rootOffset := enc.Encode(metaValue)

	out := make([]byte, 0, len(wire.MetadataMarker)+rootOffsetSize+enc.Len())
	out = append(out, wire.MetadataMarker...)
	var rootOffsetBytes [rootOffsetSize]byte
	buf.PutU32LE(rootOffsetBytes[:], uint32(rootOffset))
	out = append(out, rootOffsetBytes[:]...)
	out = append(out, enc.Bytes()...)
	return out, nil
}

// decodeMetadataSection reads the metadata record that begins at
// recordOffset within data (the offset FindMetadataMarker returns) and
// parses it into an Info.
func decodeMetadataSection(data []byte, recordOffset int) (Info, error) {
	if !buf.Has(data, recordOffset, rootOffsetSize) {
		return Info{}, fmt.Errorf("matchy: metadata root offset: %w", ErrInvalidFormat)
	}
	rootOffset := int(buf.U32LE(data[recordOffset : recordOffset+rootOffsetSize]))
	section := data[recordOffset+rootOffsetSize:]

	metaValue, err := dataval.Decode(section, rootOffset)
	if err != nil {
		return Info{}, fmt.Errorf("matchy: decode metadata: %w", err)
	}
	return parseMetadata(metaValue)
}

// parseMetadata reads an Info back out of a decoded metadata Map value.
func parseMetadata(v dataval.Value) (Info, error) {
	if v.Kind != dataval.KindMap {
		return Info{}, fmt.Errorf("matchy: metadata root is %s, want map: %w", v.Kind, ErrInvalidFormat)
	}

	info := Info{}

	if val, ok := v.Get("binary_format_major_version"); ok && val.Kind == dataval.KindUint16 {
		info.FormatMajor = val.U16
	}
	if val, ok := v.Get("binary_format_minor_version"); ok && val.Kind == dataval.KindUint16 {
		info.FormatMinor = val.U16
	}
	if val, ok := v.Get("build_epoch"); ok && val.Kind == dataval.KindUint64 {
		info.BuildEpoch = val.U64
	}
	if val, ok := v.Get("database_type"); ok && val.Kind == dataval.KindString {
		info.DatabaseType = val.Str
	}
	if val, ok := v.Get("description"); ok {
		description, err := dataval.DecodeDescription(val)
		if err != nil {
			return Info{}, fmt.Errorf("matchy: metadata description: %w", err)
		}
		info.Description = description
	}
	if val, ok := v.Get("ip_version"); ok && val.Kind == dataval.KindUint16 {
		info.IPVersion = int(val.U16)
	}
	if val, ok := v.Get("node_count"); ok && val.Kind == dataval.KindUint32 {
		info.NodeCount = val.U32
	}
	if val, ok := v.Get("record_size"); ok && val.Kind == dataval.KindUint16 {
		info.RecordSize = int(val.U16)
	}
	if val, ok := v.Get("case_insensitive"); ok && val.Kind == dataval.KindBool {
		info.CaseInsensitive = val.Bool
	}
	if val, ok := v.Get("has_patterns"); ok && val.Kind == dataval.KindBool {
		info.HasPatterns = val.Bool
	}
	if val, ok := v.Get("has_literal_hash"); ok && val.Kind == dataval.KindBool {
		info.HasLiteralHash = val.Bool
	}

	return info, nil
}
