package paraglob

import (
	"fmt"

	"github.com/matchydb/matchy/internal/ac"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/glob"
)

type patternEntry struct {
	text     string
	kind     PatternKind
	literals []string
	data     dataval.Value
	hasData  bool
}

// Builder accumulates patterns (literal or glob, with optional associated
// data) for a single Paraglob section.
type Builder struct {
	mode     MatchMode
	patterns []patternEntry
	seen     map[string]uint32
}

// NewBuilder returns an empty Builder for the given case-folding mode.
func NewBuilder(mode MatchMode) *Builder {
	return &Builder{seen: make(map[string]uint32), mode: mode}
}

// AddPattern registers pattern with no associated data.
func (b *Builder) AddPattern(pattern string) (uint32, error) {
	return b.AddPatternWithData(pattern, dataval.Value{}, false)
}

// AddPatternWithData registers pattern and, when hasData is true, an
// associated data value decoded on lookup. Re-adding an identical pattern
// string returns its existing id (spec §4.6 mirrors upstream "duplicate
// pattern" behavior by id reuse rather than erroring).
func (b *Builder) AddPatternWithData(pattern string, data dataval.Value, hasData bool) (uint32, error) {
	if pattern == "" {
		return 0, ErrEmptyPattern
	}
	if id, ok := b.seen[pattern]; ok {
		return id, nil
	}

	id := uint32(len(b.patterns))
	kind := KindLiteral
	var literals []string
	if isGlobPattern(pattern) {
		kind = KindGlob
		literals = extractLiterals(pattern)
	}

	b.patterns = append(b.patterns, patternEntry{
		text:     pattern,
		kind:     kind,
		literals: literals,
		data:     data,
		hasData:  hasData,
	})
	b.seen[pattern] = id
	return id, nil
}

// Len returns the number of patterns added so far.
func (b *Builder) Len() int { return len(b.patterns) }

// IsGlobPattern reports whether pattern contains an unescaped wildcard
// metacharacter. Exported so callers building both a Paraglob bundle and a
// literal-hash fast path (pkg/matchy) can classify a pattern once and route
// it to the right builder(s) without duplicating the rule.
func IsGlobPattern(pattern string) bool {
	return isGlobPattern(pattern)
}

// isGlobPattern reports whether pattern contains an unescaped wildcard
// metacharacter (spec §4.6, ported from the extractor's own classifier).
func isGlobPattern(pattern string) bool {
	escaped := false
	for _, ch := range pattern {
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// extractLiterals pulls the maximal literal runs out of a glob pattern,
// skipping over `*`, `?`, and whole `[...]` character classes, so the AC
// automaton can use them as a cheap candidate filter.
func extractLiterals(pattern string) []string {
	var literals []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			literals = append(literals, string(current))
			current = current[:0]
		}
	}

	runes := []rune(pattern)
	escaped := false
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if escaped {
			current = append(current, ch)
			escaped = false
			i++
			continue
		}
		switch ch {
		case '\\':
			escaped = true
			i++
		case '*', '?':
			flush()
			i++
		case '[':
			flush()
			i++
			depth := 1
			for i < len(runes) && depth > 0 {
				switch runes[i] {
				case '\\':
					i++
					if i < len(runes) {
						i++
					}
					continue
				case '[':
					depth++
				case ']':
					depth--
				}
				i++
			}
		default:
			current = append(current, ch)
			i++
		}
	}
	flush()
	return literals
}

// Build validates every glob/pure-wildcard pattern compiles, builds the AC
// automaton over the union of extracted literals, and encodes the
// complete section (spec §4.6, "Build").
func (b *Builder) Build() ([]byte, error) {
	if len(b.patterns) == 0 {
		return nil, ErrNoPatterns
	}

	globMode := glob.CaseSensitive
	acMode := ac.CaseSensitive
	if b.mode == CaseInsensitive {
		globMode = glob.CaseInsensitive
		acMode = ac.CaseInsensitive
	}

	for _, p := range b.patterns {
		if p.kind == KindGlob {
			if _, err := glob.Compile(p.text, globMode); err != nil {
				return nil, fmt.Errorf("paraglob: pattern %q: %w", p.text, err)
			}
		}
	}

	acBuilder := ac.NewBuilder(acMode)
	literalIDs := make(map[string]uint32)
	var literalOrder []string
	literalToPatterns := make(map[uint32][]uint32)

	registerLiteral := func(lit string, patternID uint32) error {
		id, ok := literalIDs[lit]
		if !ok {
			var err error
			id, err = acBuilder.Add(lit)
			if err != nil {
				return err
			}
			literalIDs[lit] = id
			literalOrder = append(literalOrder, lit)
		}
		literalToPatterns[id] = append(literalToPatterns[id], patternID)
		return nil
	}

	for id, p := range b.patterns {
		switch p.kind {
		case KindLiteral:
			if err := registerLiteral(p.text, uint32(id)); err != nil {
				return nil, err
			}
		case KindGlob:
			for _, lit := range p.literals {
				if err := registerLiteral(lit, uint32(id)); err != nil {
					return nil, err
				}
			}
		}
	}

	var acData []byte
	if len(literalOrder) > 0 {
		if _, err := acBuilder.Build(); err != nil {
			return nil, err
		}
		acData = acBuilder.Encode()
	}

	return b.encode(acData, literalToPatterns)
}
