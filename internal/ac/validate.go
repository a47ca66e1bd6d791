package ac

import (
	"fmt"

	"github.com/matchydb/matchy/internal/buf"
)

// Validate checks the integrity invariants spec §4.4 requires of an
// encoded AC section: every transition targets a valid node offset,
// failure links never self-loop away from root, every output pattern id
// is below literalCount, output arrays are sorted, and a BFS from root
// reaches every non-orphan node.
func (a *Automaton) Validate() error {
	reached := make(map[uint32]bool)
	queue := []uint32{rootOffset}
	reached[rootOffset] = true

	for len(queue) > 0 {
		offset := queue[0]
		queue = queue[1:]

		n, err := a.readNode(offset)
		if err != nil {
			return err
		}
		if offset != rootOffset && (n.failure == offset || n.failure == rootOffset) {
			return fmt.Errorf("ac: node at %d: %w", offset, ErrSelfLoopFailure)
		}

		if n.outputsCount > 0 {
			end := int(n.outputsOff) + n.outputsCount*4
			if end > len(a.data) {
				return fmt.Errorf("ac: outputs at %d: %w", n.outputsOff, ErrTruncated)
			}
			prev := int64(-1)
			block := a.data[n.outputsOff:end]
			for i := 0; i < n.outputsCount; i++ {
				id := int64(buf.U32LE(block[i*4 : i*4+4]))
				if id < prev {
					return fmt.Errorf("ac: outputs at %d are not sorted", n.outputsOff)
				}
				if id >= int64(a.literalCnt) {
					return fmt.Errorf("ac: output id %d >= literal count %d", id, a.literalCnt)
				}
				prev = id
			}
		}

		for _, target := range a.transitionTargets(n) {
			if int(target)+NodeSize > len(a.data) {
				return fmt.Errorf("ac: node at %d: %w", target, ErrOffsetOutOfRange)
			}
			if !reached[target] {
				reached[target] = true
				queue = append(queue, target)
			}
		}
	}
	return nil
}

func (a *Automaton) transitionTargets(n acNode) []uint32 {
	switch n.encoding {
	case EncodingSingle:
		return []uint32{resolveOffset(n.singleTarget)}
	case EncodingSparse:
		end := int(n.edgesOffset) + n.edgesCount*sparseEdgeSize
		if end > len(a.data) {
			return nil
		}
		block := a.data[n.edgesOffset:end]
		out := make([]uint32, 0, n.edgesCount)
		for i := 0; i < n.edgesCount; i++ {
			out = append(out, resolveOffset(buf.U32LE(block[i*sparseEdgeSize+4:i*sparseEdgeSize+8])))
		}
		return out
	case EncodingDense:
		end := int(n.denseOffset) + denseTableSize
		if end > len(a.data) {
			return nil
		}
		block := a.data[n.denseOffset:end]
		out := make([]uint32, 0, 16)
		for i := 0; i < 256; i++ {
			if v := buf.U32LE(block[i*4 : i*4+4]); v != 0 {
				out = append(out, resolveOffset(v))
			}
		}
		return out
	default:
		return nil
	}
}

func resolveOffset(raw uint32) uint32 {
	if raw == 0 {
		return rootOffset
	}
	return raw
}
