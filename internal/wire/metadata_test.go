package wire

import (
	"bytes"
	"testing"
)

func TestFindMetadataMarker(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	data := append([]byte("leading junk"), MetadataMarker...)
	data = append(data, payload...)

	off, err := FindMetadataMarker(data)
	if err != nil {
		t.Fatalf("FindMetadataMarker: %v", err)
	}
	if !bytes.Equal(data[off:], payload) {
		t.Fatalf("marker offset %d does not point at payload: %v", off, data[off:])
	}
}

func TestFindMetadataMarkerUsesLastOccurrence(t *testing.T) {
	data := append([]byte{}, MetadataMarker...)
	data = append(data, []byte("stale")...)
	data = append(data, MetadataMarker...)
	data = append(data, []byte("fresh")...)

	off, err := FindMetadataMarker(data)
	if err != nil {
		t.Fatalf("FindMetadataMarker: %v", err)
	}
	if !bytes.Equal(data[off:], []byte("fresh")) {
		t.Fatalf("expected last occurrence to win, got %q", data[off:])
	}
}

func TestFindMetadataMarkerBoundsScanWindow(t *testing.T) {
	far := append([]byte{}, MetadataMarker...)
	far = append(far, []byte("too far back")...)
	padding := make([]byte, MetadataScanWindow+1)
	data := append(far, padding...)

	if _, err := FindMetadataMarker(data); err == nil {
		t.Fatalf("expected marker outside scan window to be missed")
	}
}

func TestFindMetadataMarkerNotFound(t *testing.T) {
	if _, err := FindMetadataMarker([]byte("no marker here")); err == nil {
		t.Fatalf("expected ErrMarkerNotFound")
	}
}

func TestFindSectionMarker(t *testing.T) {
	data := append([]byte("prefix"), PatternSectionMarker...)
	data = append(data, []byte("payload")...)

	off, ok := FindSectionMarker(data, PatternSectionMarker, 0)
	if !ok {
		t.Fatalf("expected marker to be found")
	}
	if string(data[off:]) != "payload" {
		t.Fatalf("unexpected payload: %q", data[off:])
	}

	if _, ok := FindSectionMarker(data, LiteralSectionMarker, 0); ok {
		t.Fatalf("did not expect literal marker to be found")
	}
}
