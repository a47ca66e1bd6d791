package wire

import "testing"

func sampleHeader() ParaglobHeader {
	return ParaglobHeader{
		Version:              ParaglobVersion3,
		MatchMode:            MatchModeCaseInsensitive,
		ACNodesOffset:        ParaglobHeaderSize,
		ACNodesSize:          32,
		PatternEntriesOffset: ParaglobHeaderSize + 32,
		PatternEntriesSize:   16,
		PatternStringsOffset: ParaglobHeaderSize + 48,
		PatternStringsSize:   8,
		TotalBufferSize:      ParaglobHeaderSize + 56,
		Endianness:           EndiannessLittle,
	}
}

func TestParaglobHeaderRoundTrip(t *testing.T) {
	h := sampleHeader()
	enc := EncodeParaglobHeader(h)
	if len(enc) != ParaglobHeaderSize {
		t.Fatalf("encoded header size = %d, want %d", len(enc), ParaglobHeaderSize)
	}
	got, err := DecodeParaglobHeader(enc)
	if err != nil {
		t.Fatalf("DecodeParaglobHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestParaglobHeaderRejectsBadMagic(t *testing.T) {
	enc := EncodeParaglobHeader(sampleHeader())
	enc[0] = 'X'
	if _, err := DecodeParaglobHeader(enc); err == nil {
		t.Fatalf("expected signature mismatch error")
	}
}

func TestParaglobHeaderRejectsTruncated(t *testing.T) {
	enc := EncodeParaglobHeader(sampleHeader())
	if _, err := DecodeParaglobHeader(enc[:10]); err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestParaglobHeaderRejectsOutOfBoundsSection(t *testing.T) {
	h := sampleHeader()
	h.ACNodesSize = 10_000_000
	enc := EncodeParaglobHeader(h)
	if _, err := DecodeParaglobHeader(enc); err == nil {
		t.Fatalf("expected out-of-bounds section error")
	}
}

func TestParaglobHeaderRejectsUnsupportedVersion(t *testing.T) {
	h := sampleHeader()
	h.Version = 99
	enc := EncodeParaglobHeader(h)
	if _, err := DecodeParaglobHeader(enc); err == nil {
		t.Fatalf("expected unsupported version error")
	}
}

func TestSectionBounds(t *testing.T) {
	data := make([]byte, 100)
	if _, err := Section(data, 10, 20); err != nil {
		t.Fatalf("Section: unexpected error: %v", err)
	}
	if _, err := Section(data, 90, 20); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}
