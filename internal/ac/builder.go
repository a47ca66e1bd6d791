package ac

import (
	"sort"
)

// buildState is the in-memory trie node used only during construction;
// Encode consumes the finished slice and discards it.
type buildState struct {
	transitions map[byte]uint32
	failure     uint32
	outputs     []uint32
	depth       int
}

func newBuildState(depth int) *buildState {
	return &buildState{transitions: make(map[byte]uint32), depth: depth}
}

// Builder accumulates literals into a trie and, on Build, computes failure
// links with output merging (spec §4.4, "Build").
type Builder struct {
	mode   MatchMode
	states []*buildState
	count  int
}

// NewBuilder returns a Builder with a single root state.
func NewBuilder(mode MatchMode) *Builder {
	return &Builder{mode: mode, states: []*buildState{newBuildState(0)}}
}

// normalize applies the builder's case-folding rule. Case-insensitive
// folding is ASCII-only per spec §4.4.
func (b *Builder) normalize(s string) []byte {
	out := []byte(s)
	if b.mode == CaseInsensitive {
		for i, c := range out {
			if 'A' <= c && c <= 'Z' {
				out[i] = c + ('a' - 'A')
			}
		}
	}
	return out
}

// Add inserts a literal into the trie and returns its literal id — a
// dense, zero-based index in insertion order, independent of any
// downstream pattern numbering (spec §4.6 owns the literal-id→pattern-id
// mapping; this package only knows about strings).
func (b *Builder) Add(literal string) (uint32, error) {
	if literal == "" {
		return 0, ErrEmptyLiteral
	}
	id := uint32(b.count)
	b.count++

	cur := uint32(0)
	depth := 0
	for _, c := range b.normalize(literal) {
		depth++
		if next, ok := b.states[cur].transitions[c]; ok {
			cur = next
		} else {
			newID := uint32(len(b.states))
			b.states = append(b.states, newBuildState(depth))
			b.states[cur].transitions[c] = newID
			cur = newID
		}
	}
	b.states[cur].outputs = append(b.states[cur].outputs, id)
	return id, nil
}

// Build computes BFS failure links with output merging and returns the
// Builder itself, ready for Encode to serialize the automaton.
func (b *Builder) Build() (*Builder, error) {
	if b.count == 0 {
		return nil, ErrNoLiterals
	}
	b.computeFailureLinks()
	for _, s := range b.states {
		sort.Slice(s.outputs, func(i, j int) bool { return s.outputs[i] < s.outputs[j] })
	}
	return b, nil
}

func (b *Builder) computeFailureLinks() {
	queue := make([]uint32, 0, len(b.states))
	for _, next := range sortedTargets(b.states[0].transitions) {
		b.states[next].failure = 0
		queue = append(queue, next)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		state := b.states[id]

		for _, ch := range sortedKeys(state.transitions) {
			next := state.transitions[ch]
			queue = append(queue, next)

			fail := state.failure
			found := false
			for fail != 0 {
				if target, ok := b.states[fail].transitions[ch]; ok {
					b.states[next].failure = target
					found = true
					break
				}
				fail = b.states[fail].failure
			}
			if !found {
				if target, ok := b.states[0].transitions[ch]; ok && target != next {
					b.states[next].failure = target
				} else {
					b.states[next].failure = 0
				}
			}

			// Merge outputs from the entire failure-link chain so a scan
			// never has to walk failure links to collect matches.
			suffix := b.states[next].failure
			for suffix != 0 {
				if len(b.states[suffix].outputs) > 0 {
					b.states[next].outputs = append(b.states[next].outputs, b.states[suffix].outputs...)
				}
				suffix = b.states[suffix].failure
			}
		}
	}
}

func sortedKeys(m map[byte]uint32) []byte {
	keys := make([]byte, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedTargets(m map[byte]uint32) []uint32 {
	keys := sortedKeys(m)
	out := make([]uint32, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
