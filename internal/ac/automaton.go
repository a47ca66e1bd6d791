package ac

import (
	"fmt"
	"sort"

	"github.com/matchydb/matchy/internal/buf"
)

// Automaton is a read-only view over an encoded AC section (spec §4.4,
// "Scan"). It never rebuilds the trie: every operation walks the wire
// bytes directly, so a loaded or mmap'd database pays no reconstruction
// cost.
type Automaton struct {
	data       []byte
	nodeCount  uint32
	mode       MatchMode
	literalCnt uint32
}

// Open validates and wraps an encoded AC section.
func Open(data []byte) (*Automaton, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("ac: header: %w", ErrTruncated)
	}
	nodeCount := buf.U32LE(data[0:4])
	mode := MatchMode(buf.U32LE(data[4:8]))
	literalCount := buf.U32LE(data[8:12])

	want := headerSize + int(nodeCount)*NodeSize
	if len(data) < want {
		return nil, fmt.Errorf("ac: node array: %w", ErrTruncated)
	}
	return &Automaton{data: data, nodeCount: nodeCount, mode: mode, literalCnt: literalCount}, nil
}

// Mode returns the automaton's case-folding mode.
func (a *Automaton) Mode() MatchMode { return a.mode }

type acNode struct {
	encoding     Encoding
	failure      uint32
	outputsOff   uint32
	outputsCount int
	singleCh     byte
	singleTarget uint32
	edgesOffset  uint32
	edgesCount   int
	denseOffset  uint32
}

func (a *Automaton) readNode(offset uint32) (acNode, error) {
	if offset == 0 {
		// Root is always the first node record, immediately after the
		// header — never the literal byte offset 0.
		offset = headerSize
	}
	if int(offset)+NodeSize > len(a.data) {
		return acNode{}, fmt.Errorf("ac: node at %d: %w", offset, ErrOffsetOutOfRange)
	}
	rec := a.data[offset : offset+NodeSize]
	n := acNode{
		encoding:     Encoding(rec[0]),
		failure:      buf.U32LE(rec[4:8]),
		outputsOff:   buf.U32LE(rec[8:12]),
		outputsCount: int(buf.U32LE(rec[12:16])),
	}
	switch n.encoding {
	case EncodingSingle:
		n.singleCh = rec[16]
		n.singleTarget = buf.U32LE(rec[20:24])
	case EncodingSparse:
		n.edgesOffset = buf.U32LE(rec[16:20])
		n.edgesCount = int(buf.U32LE(rec[20:24]))
	case EncodingDense:
		n.denseOffset = buf.U32LE(rec[16:20])
	}
	return n, nil
}

// rootOffset is the wire offset of the root node's record.
const rootOffset = headerSize

// transition returns the target node offset for character ch from the
// node at nodeOffset, or (0, false) if there is none.
func (a *Automaton) transition(nodeOffset uint32, ch byte) (uint32, bool, error) {
	n, err := a.readNode(nodeOffset)
	if err != nil {
		return 0, false, err
	}
	switch n.encoding {
	case EncodingSingle:
		if n.singleCh == ch {
			return n.singleTarget, true, nil
		}
	case EncodingSparse:
		end := int(n.edgesOffset) + n.edgesCount*sparseEdgeSize
		if end > len(a.data) {
			return 0, false, fmt.Errorf("ac: sparse edges at %d: %w", n.edgesOffset, ErrTruncated)
		}
		block := a.data[n.edgesOffset:end]
		// Edges are written in sorted order; binary search.
		lo, hi := 0, n.edgesCount
		for lo < hi {
			mid := (lo + hi) / 2
			entry := block[mid*sparseEdgeSize : mid*sparseEdgeSize+sparseEdgeSize]
			switch {
			case entry[0] == ch:
				return buf.U32LE(entry[4:8]), true, nil
			case entry[0] < ch:
				lo = mid + 1
			default:
				hi = mid
			}
		}
	case EncodingDense:
		end := int(n.denseOffset) + denseTableSize
		if end > len(a.data) {
			return 0, false, fmt.Errorf("ac: dense table at %d: %w", n.denseOffset, ErrTruncated)
		}
		entry := a.data[int(n.denseOffset)+int(ch)*4 : int(n.denseOffset)+int(ch)*4+4]
		if target := buf.U32LE(entry); target != 0 {
			return target, true, nil
		}
	}
	return 0, false, nil
}

// FindLiteralIDs scans text and returns the sorted, deduplicated set of
// literal ids whose string occurs somewhere in text (spec §4.4, "Scan").
func (a *Automaton) FindLiteralIDs(text string) ([]uint32, error) {
	var ids []uint32
	err := a.scan(text, func(pos int, outputs []uint32) error {
		ids = append(ids, outputs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return dedupSortedU32(ids), nil
}

// LiteralMatch is one occurrence of a registered literal within a scanned
// text, reported by the byte offset immediately past its last byte.
type LiteralMatch struct {
	LiteralID uint32
	End       int
}

// FindLiteralMatches scans text and returns every occurrence of every
// registered literal together with its end position, for callers (like
// the TLD suffix scan in internal/extract) that need to expand a match
// outward from where it ended rather than just know that it occurred.
func (a *Automaton) FindLiteralMatches(text string) ([]LiteralMatch, error) {
	var out []LiteralMatch
	err := a.scan(text, func(pos int, outputs []uint32) error {
		seen := make(map[uint32]struct{}, len(outputs))
		for _, id := range outputs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, LiteralMatch{LiteralID: id, End: pos})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// scan walks text byte by byte over the automaton, following failure
// links on a missing transition, and invokes visit with the 1-based end
// position and the current node's (possibly duplicate, per spec §4.4's
// "Build") output list whenever that node has any.
func (a *Automaton) scan(text string, visit func(pos int, outputs []uint32) error) error {
	normalized := []byte(text)
	if a.mode == CaseInsensitive {
		for i, c := range normalized {
			if 'A' <= c && c <= 'Z' {
				normalized[i] = c + ('a' - 'A')
			}
		}
	}

	cur := uint32(rootOffset)
	for i, ch := range normalized {
		next, ok, err := a.transition(cur, ch)
		if err != nil {
			return err
		}
		for !ok && cur != rootOffset {
			node, err := a.readNode(cur)
			if err != nil {
				return err
			}
			failTarget := node.failure
			if failTarget == 0 {
				cur = rootOffset
				break
			}
			cur = failTarget
			next, ok, err = a.transition(cur, ch)
			if err != nil {
				return err
			}
		}
		if !ok {
			next, ok, err = a.transition(rootOffset, ch)
			if err != nil {
				return err
			}
			if !ok {
				next = rootOffset
			}
		}
		cur = next

		node, err := a.readNode(cur)
		if err != nil {
			return err
		}
		if node.outputsCount > 0 {
			end := int(node.outputsOff) + node.outputsCount*4
			if end > len(a.data) {
				return fmt.Errorf("ac: outputs at %d: %w", node.outputsOff, ErrTruncated)
			}
			block := a.data[node.outputsOff:end]
			outputs := make([]uint32, node.outputsCount)
			for j := 0; j < node.outputsCount; j++ {
				outputs[j] = buf.U32LE(block[j*4 : j*4+4])
			}
			if err := visit(i+1, outputs); err != nil {
				return err
			}
		}
	}
	return nil
}

func dedupSortedU32(ids []uint32) []uint32 {
	if len(ids) < 2 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
