package wire

import (
	"bytes"
	"fmt"
)

// FindMetadataMarker locates the last occurrence of MetadataMarker within
// the final MetadataScanWindow bytes of buf and returns the offset of the
// byte immediately following the marker. The metadata record begins there:
// a 4-byte little-endian root offset, followed by the encoded metadata Map
// value it points into (pkg/matchy owns this encoding; a fresh encoder's
// top-level value is very rarely written at offset 0, since dataval.Encoder
// appends a Map's children before the Map's own bytes).
//
// The scan is bounded deliberately: spec §5 requires opening a database to
// be a bounded operation, never a full-file scan.
func FindMetadataMarker(buf []byte) (mapOffset int, err error) {
	windowStart := 0
	if len(buf) > MetadataScanWindow {
		windowStart = len(buf) - MetadataScanWindow
	}
	window := buf[windowStart:]

	idx := bytes.LastIndex(window, MetadataMarker)
	if idx < 0 {
		return 0, fmt.Errorf("find metadata marker in last %d bytes: %w", MetadataScanWindow, ErrMarkerNotFound)
	}
	return windowStart + idx + len(MetadataMarker), nil
}

// FindSectionMarker locates the first occurrence of marker within buf
// starting at searchFrom, returning the offset immediately following the
// marker. Used to locate the optional pattern/literal sub-sections when
// their offsets are not recorded directly in the metadata map.
func FindSectionMarker(buf []byte, marker []byte, searchFrom int) (payloadOffset int, ok bool) {
	if searchFrom < 0 || searchFrom > len(buf) {
		return 0, false
	}
	idx := bytes.Index(buf[searchFrom:], marker)
	if idx < 0 {
		return 0, false
	}
	return searchFrom + idx + len(marker), true
}
