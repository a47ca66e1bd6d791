package ac

import "github.com/matchydb/matchy/internal/buf"

// nodeLayout captures one state's serialized placement, computed in a
// single forward pass over the node array so that every sub-block (sparse
// edges, dense tables, output arrays) lands immediately after the node
// array at the offset its own node record will reference.
type nodeLayout struct {
	encoding     Encoding
	singleCh     byte
	singleTarget uint32
	edgesOffset  uint32
	edgesCount   int
	denseOffset  uint32
	failure      uint32
	outputsOff   uint32
	outputsCount int
}

// Encode serializes the built trie to its on-disk form: a small header,
// a fixed-width node array, and — immediately following, in node order —
// each node's sparse edge block, dense transition table, or output
// pattern-id array (spec §4.4, "State encoding").
func (b *Builder) Encode() []byte {
	nodeCount := len(b.states)
	nodesStart := uint32(headerSize)
	nodesSize := uint32(nodeCount) * NodeSize

	layouts := make([]nodeLayout, nodeCount)
	var varData []byte
	cursor := nodesStart + nodesSize

	for i, s := range b.states {
		l := nodeLayout{failure: nodeToOffset(s.failure, nodesStart)}

		switch n := len(s.transitions); {
		case n == 0:
			l.encoding = EncodingEmpty
		case n == 1:
			l.encoding = EncodingSingle
			for ch, target := range s.transitions {
				l.singleCh = ch
				l.singleTarget = nodeToOffset(target, nodesStart)
			}
		case n <= sparseMax:
			l.encoding = EncodingSparse
			l.edgesOffset = cursor
			l.edgesCount = n
			for _, ch := range sortedKeys(s.transitions) {
				entry := make([]byte, sparseEdgeSize)
				entry[0] = ch
				buf.PutU32LE(entry[4:8], nodeToOffset(s.transitions[ch], nodesStart))
				varData = append(varData, entry...)
			}
			cursor += uint32(n * sparseEdgeSize)
		default:
			l.encoding = EncodingDense
			l.denseOffset = cursor
			table := make([]byte, denseTableSize)
			for ch, target := range s.transitions {
				off := int(ch) * 4
				buf.PutU32LE(table[off:off+4], nodeToOffset(target, nodesStart))
			}
			varData = append(varData, table...)
			cursor += denseTableSize
		}

		if len(s.outputs) > 0 {
			l.outputsOff = cursor
			l.outputsCount = len(s.outputs)
			arr := make([]byte, len(s.outputs)*4)
			for j, id := range s.outputs {
				buf.PutU32LE(arr[j*4:j*4+4], id)
			}
			varData = append(varData, arr...)
			cursor += uint32(len(arr))
		}

		layouts[i] = l
	}

	out := make([]byte, int(nodesStart+nodesSize)+len(varData))
	buf.PutU32LE(out[0:4], uint32(nodeCount))
	buf.PutU32LE(out[4:8], uint32(b.mode))
	buf.PutU32LE(out[8:12], uint32(b.count))
	copy(out[nodesStart+nodesSize:], varData)

	for i, l := range layouts {
		writeNodeRecord(out, i, nodesStart, l)
	}
	return out
}

// nodeToOffset converts a build-time state index into its absolute byte
// offset within the encoded section, or 0 ("none") for the root sentinel
// value used by failure links (root's failure always stays at root, and a
// zero offset can never collide with a real node since nodesStart > 0).
func nodeToOffset(stateID uint32, nodesStart uint32) uint32 {
	if stateID == 0 {
		return 0
	}
	return nodesStart + stateID*uint32(NodeSize)
}

func writeNodeRecord(out []byte, stateID int, nodesStart uint32, l nodeLayout) {
	off := int(nodesStart) + stateID*NodeSize
	rec := out[off : off+NodeSize]

	rec[0] = byte(l.encoding)
	buf.PutU32LE(rec[4:8], l.failure)
	buf.PutU32LE(rec[8:12], l.outputsOff)
	buf.PutU32LE(rec[12:16], uint32(l.outputsCount))

	switch l.encoding {
	case EncodingSingle:
		rec[16] = l.singleCh
		buf.PutU32LE(rec[20:24], l.singleTarget)
	case EncodingSparse:
		buf.PutU32LE(rec[16:20], l.edgesOffset)
		buf.PutU32LE(rec[20:24], uint32(l.edgesCount))
	case EncodingDense:
		buf.PutU32LE(rec[16:20], l.denseOffset)
	}
}
