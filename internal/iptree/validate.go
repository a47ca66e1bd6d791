package iptree

import "fmt"

// ValidateReachability walks every node record reachable from the root and
// confirms each child pointer is either another in-range node index or a
// well-formed data pointer (spec §4.3's node_count/data-pointer bias). It
// reports the count of nodes visited, mirroring internal/ac.Validate's BFS
// orphan check for the AC trie.
func (t *Tree) ValidateReachability() (visited int, err error) {
	if t.nodeCount == 0 {
		return 0, nil
	}

	seen := make(map[uint32]bool)
	queue := []uint32{0}
	seen[0] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++

		for _, bit := range [2]byte{0, 1} {
			record, err := t.readRecord(node, bit)
			if err != nil {
				return visited, fmt.Errorf("iptree: node %d: %w", node, err)
			}
			switch {
			case record == t.nodeCount:
				continue
			case record < t.nodeCount:
				if !seen[record] {
					seen[record] = true
					queue = append(queue, record)
				}
			default:
				if _, err := t.dataOffset(record); err != nil {
					return visited, fmt.Errorf("iptree: node %d: %w", node, err)
				}
			}
		}
	}
	return visited, nil
}
