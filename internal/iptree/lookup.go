package iptree

import (
	"fmt"
	"net/netip"

	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/wire"
)

// Tree is a read-only view over an already-serialized IP tree section,
// suitable for mmap'd or in-memory bytes (spec §4.3, "Lookup").
type Tree struct {
	data        []byte
	nodeCount   uint32
	recordWidth int
	version     Version
}

// NewTree wraps tree bytes for lookups. data must cover exactly
// nodeCount * NodeBytes(recordWidth) bytes.
func NewTree(data []byte, nodeCount uint32, recordWidth int, version Version) (*Tree, error) {
	nodeBytes := wire.NodeBytes(recordWidth)
	if nodeBytes == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedWidth, recordWidth)
	}
	want := int(nodeCount) * nodeBytes
	if len(data) < want {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedTree, len(data), want)
	}
	return &Tree{data: data, nodeCount: nodeCount, recordWidth: recordWidth, version: version}, nil
}

// Lookup performs a longest-prefix-match walk for addr, returning the data
// section offset and the matched prefix length.
func (t *Tree) Lookup(addr netip.Addr) (dataOffset uint32, prefixLen int, ok bool, err error) {
	addr = addr.Unmap()

	if addr.Is4() {
		a4 := addr.As4()
		if t.version == V4 {
			return t.walk(v4Bits(a4), 32)
		}
		off, depth, found, err := t.walk(v4BitsAt96(a4), 128)
		if err != nil || !found {
			return 0, 0, false, err
		}
		if depth < 96 {
			depth = 96
		}
		return off, depth - 96, true, nil
	}

	if t.version == V4 {
		return 0, 0, false, fmt.Errorf("%w: cannot look up IPv6 address in IPv4-only tree", ErrWrongFamily)
	}
	return t.walk(addr.As16(), 128)
}

func (t *Tree) walk(bits [16]byte, totalDepth int) (uint32, int, bool, error) {
	node := uint32(0)
	for depth := 0; depth < totalDepth; depth++ {
		bit := bitAt(bits, depth)
		record, err := t.readRecord(node, bit)
		if err != nil {
			return 0, 0, false, err
		}
		switch {
		case record == t.nodeCount:
			return 0, 0, false, nil
		case record < t.nodeCount:
			node = record
		default:
			off, err := t.dataOffset(record)
			if err != nil {
				return 0, 0, false, err
			}
			return off, depth + 1, true, nil
		}
	}
	return 0, 0, false, nil
}

func (t *Tree) readRecord(node uint32, bit byte) (uint32, error) {
	if node >= t.nodeCount {
		return 0, fmt.Errorf("%w: %d >= %d", ErrNodeOutOfRange, node, t.nodeCount)
	}

	switch t.recordWidth {
	case wire.RecordWidth24:
		off := int(node) * 6
		if bit == 1 {
			off += 3
		}
		b, ok := buf.Slice(t.data, off, 3)
		if !ok {
			return 0, fmt.Errorf("%w: node %d", ErrTruncatedTree, node)
		}
		return buf.U24BE(b), nil

	case wire.RecordWidth28:
		off := int(node) * 7
		b, ok := buf.Slice(t.data, off, 7)
		if !ok {
			return 0, fmt.Errorf("%w: node %d", ErrTruncatedTree, node)
		}
		if bit == 0 {
			high := uint32(b[3]>>4) & 0x0F
			return high<<24 | buf.U24BE(b[0:3]), nil
		}
		high := uint32(b[3]) & 0x0F
		return high<<24 | buf.U24BE(b[4:7]), nil

	case wire.RecordWidth32:
		off := int(node) * 8
		if bit == 1 {
			off += 4
		}
		b, ok := buf.Slice(t.data, off, 4)
		if !ok {
			return 0, fmt.Errorf("%w: node %d", ErrTruncatedTree, node)
		}
		return buf.U32BE(b), nil

	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedWidth, t.recordWidth)
	}
}

// dataOffset converts a record value known to be > nodeCount into an
// offset into the typed data section, undoing the nodeCount+SeparatorSize
// bias applied at encode time.
func (t *Tree) dataOffset(record uint32) (uint32, error) {
	base := t.nodeCount + wire.SeparatorSize
	if record < base {
		return 0, fmt.Errorf("%w: record %d, base %d", ErrRecordUnderflow, record, base)
	}
	return record - base, nil
}
