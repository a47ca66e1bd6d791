package iptree

import (
	"fmt"

	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/wire"
)

// Encode serializes the built arena to its on-disk record form and returns
// the tree bytes alongside the node count (spec §4.3, "Write-out").
func (b *Builder) Encode() ([]byte, uint32, error) {
	nodeCount := uint32(len(b.nodes))
	nodeBytes := wire.NodeBytes(b.recordWidth)
	if nodeBytes == 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedWidth, b.recordWidth)
	}

	out := make([]byte, len(b.nodes)*nodeBytes)
	for i, n := range b.nodes {
		left := b.pointerValue(n.left, nodeCount)
		right := b.pointerValue(n.right, nodeCount)
		writeNode(out, i, b.recordWidth, left, right)
	}
	return out, nodeCount, nil
}

// pointerValue converts a build-time edge into its on-disk record value: a
// record equal to nodeCount means "absent", less than nodeCount is a node
// index, greater is a data pointer biased by nodeCount+SeparatorSize.
func (b *Builder) pointerValue(np nodePointer, nodeCount uint32) uint32 {
	switch np.kind {
	case kindNode:
		return np.node
	case kindData:
		return nodeCount + wire.SeparatorSize + np.dataOffset
	default:
		return nodeCount
	}
}

func writeNode(out []byte, nodeID int, recordWidth int, left, right uint32) {
	switch recordWidth {
	case wire.RecordWidth24:
		off := nodeID * 6
		buf.PutU24BE(out[off:off+3], left)
		buf.PutU24BE(out[off+3:off+6], right)
	case wire.RecordWidth28:
		off := nodeID * 7
		buf.PutU24BE(out[off:off+3], left)
		buf.PutU24BE(out[off+4:off+7], right)
		out[off+3] = byte((left>>24)&0x0F)<<4 | byte((right>>24)&0x0F)
	case wire.RecordWidth32:
		off := nodeID * 8
		buf.PutU32BE(out[off:off+4], left)
		buf.PutU32BE(out[off+4:off+8], right)
	}
}
