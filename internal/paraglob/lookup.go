package paraglob

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matchydb/matchy/internal/ac"
	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/glob"
	"github.com/matchydb/matchy/internal/wire"
)

// Paraglob is a read-only view over an encoded Paraglob section (spec
// §4.6, "Query path"). It never rebuilds the AC automaton or re-parses
// pattern strings eagerly beyond what the header points at; glob patterns
// are compiled on first use and cached.
type Paraglob struct {
	data []byte
	mode MatchMode

	automaton         *ac.Automaton
	patternCount      int
	patternsOffset    int
	stringsOffset     int
	wildcardCount     int
	wildcardsOffset   int
	literalToPatterns map[uint32][]uint32
	patternData       map[uint32]dataval.Value

	mu        sync.Mutex
	globCache map[uint32]*glob.Pattern
}

// Open validates and wraps an encoded Paraglob section.
func Open(data []byte, mode MatchMode) (*Paraglob, error) {
	header, err := wire.DecodeParaglobHeader(data)
	if err != nil {
		return nil, fmt.Errorf("paraglob: %w", err)
	}

	acOffset := int(header.ACNodesOffset)
	acSize := int(header.ACNodesSize)
	patternCount := int(header.PatternEntriesSize) / patternEntrySize
	patternsOffset := int(header.PatternEntriesOffset)
	stringsOffset := int(header.PatternStringsOffset)
	wildcardCount := int(header.PureWildcardSize) / wildcardEntrySize
	wildcardsOffset := int(header.PureWildcardOffset)
	dataSectionOffset := int(header.DataSectionOffset)
	mappingCount := int(header.PatternDataMapSize) / 8
	mappingOffset := int(header.PatternDataMapOffset)
	acLiteralMapOffset := int(header.ACLiteralMapOffset)

	var automaton *ac.Automaton
	if acSize > 0 {
		if !buf.Has(data, acOffset, acSize) {
			return nil, fmt.Errorf("paraglob: ac section: %w", ErrTruncated)
		}
		automaton, err = ac.Open(data[acOffset : acOffset+acSize])
		if err != nil {
			return nil, fmt.Errorf("paraglob: ac section: %w", err)
		}
	}

	acLiteralMapCount := 0
	if header.ACLiteralMapSize > 0 {
		if !buf.Has(data, acLiteralMapOffset, 4) {
			return nil, fmt.Errorf("paraglob: ac literal map count: %w", ErrTruncated)
		}
		acLiteralMapCount = int(buf.U32LE(data[acLiteralMapOffset : acLiteralMapOffset+4]))
		acLiteralMapOffset += 4
	}

	literalToPatterns := make(map[uint32][]uint32, acLiteralMapCount)
	pos := acLiteralMapOffset
	for i := 0; i < acLiteralMapCount; i++ {
		if !buf.Has(data, pos, 8) {
			return nil, fmt.Errorf("paraglob: ac literal map: %w", ErrTruncated)
		}
		literalID := buf.U32LE(data[pos : pos+4])
		count := int(buf.U32LE(data[pos+4 : pos+8]))
		pos += 8
		if !buf.Has(data, pos, count*4) {
			return nil, fmt.Errorf("paraglob: ac literal map entries: %w", ErrTruncated)
		}
		ids := make([]uint32, count)
		for j := 0; j < count; j++ {
			ids[j] = buf.U32LE(data[pos : pos+4])
			pos += 4
		}
		literalToPatterns[literalID] = ids
	}

	patternData := make(map[uint32]dataval.Value, mappingCount)
	mpos := mappingOffset
	for i := 0; i < mappingCount; i++ {
		if !buf.Has(data, mpos, 8) {
			return nil, fmt.Errorf("paraglob: pattern data mapping: %w", ErrTruncated)
		}
		patternID := buf.U32LE(data[mpos : mpos+4])
		dataOffset := buf.U32LE(data[mpos+4 : mpos+8])
		mpos += 8

		v, err := dataval.Decode(data[dataSectionOffset:], int(dataOffset))
		if err != nil {
			return nil, fmt.Errorf("paraglob: pattern data for id %d: %w", patternID, err)
		}
		patternData[patternID] = v
	}

	return &Paraglob{
		data:              data,
		mode:              mode,
		automaton:         automaton,
		patternCount:      patternCount,
		patternsOffset:    patternsOffset,
		stringsOffset:     stringsOffset,
		wildcardCount:     wildcardCount,
		wildcardsOffset:   wildcardsOffset,
		literalToPatterns: literalToPatterns,
		patternData:       patternData,
		globCache:         make(map[uint32]*glob.Pattern),
	}, nil
}

// PatternCount returns the number of patterns registered in this section.
func (p *Paraglob) PatternCount() int { return p.patternCount }

// ValidateAutomaton runs the embedded AC trie's integrity checks (spec
// §4.4). Returns nil when the bundle has no literal patterns at all, since
// then no automaton was built.
func (p *Paraglob) ValidateAutomaton() error {
	if p.automaton == nil {
		return nil
	}
	return p.automaton.Validate()
}

// GetPattern returns the original pattern string for patternID.
func (p *Paraglob) GetPattern(patternID uint32) (string, bool) {
	if int(patternID) >= p.patternCount {
		return "", false
	}
	off := p.patternsOffset + int(patternID)*patternEntrySize
	if !buf.Has(p.data, off, patternEntrySize) {
		return "", false
	}
	strOffset := buf.U32LE(p.data[off+8 : off+12])
	strLen := buf.U32LE(p.data[off+12 : off+16])
	if !buf.Has(p.data, int(strOffset), int(strLen)) {
		return "", false
	}
	return string(p.data[strOffset : strOffset+strLen]), true
}

// GetPatternData returns the data value associated with patternID, if any.
func (p *Paraglob) GetPatternData(patternID uint32) (dataval.Value, bool) {
	v, ok := p.patternData[patternID]
	return v, ok
}

// FindAll returns the sorted, deduplicated set of pattern ids that match
// text (spec §4.6, "Query path").
func (p *Paraglob) FindAll(text string) ([]uint32, error) {
	candidates := make(map[uint32]struct{})
	if p.automaton != nil {
		literalIDs, err := p.automaton.FindLiteralIDs(text)
		if err != nil {
			return nil, fmt.Errorf("paraglob: ac scan: %w", err)
		}
		for _, lid := range literalIDs {
			for _, pid := range p.literalToPatterns[lid] {
				candidates[pid] = struct{}{}
			}
		}
	}

	var matches []uint32

	for i := 0; i < p.wildcardCount; i++ {
		off := p.wildcardsOffset + i*wildcardEntrySize
		if !buf.Has(p.data, off, wildcardEntrySize) {
			return nil, fmt.Errorf("paraglob: wildcard entry at %d: %w", off, ErrTruncated)
		}
		patternID := buf.U32LE(p.data[off : off+4])
		patternStr, ok := p.GetPattern(patternID)
		if !ok {
			return nil, fmt.Errorf("paraglob: wildcard pattern %d: %w", patternID, ErrUnknownPattern)
		}
		pat, err := p.compiledGlob(patternID, patternStr)
		if err != nil {
			return nil, err
		}
		if pat.Matches(text) {
			matches = append(matches, patternID)
		}
	}

	for patternID := range candidates {
		off := p.patternsOffset + int(patternID)*patternEntrySize
		if !buf.Has(p.data, off, patternEntrySize) {
			return nil, fmt.Errorf("paraglob: pattern entry at %d: %w", off, ErrTruncated)
		}
		kind := PatternKind(p.data[off+4])
		patternStr, ok := p.GetPattern(patternID)
		if !ok {
			return nil, fmt.Errorf("paraglob: candidate pattern %d: %w", patternID, ErrUnknownPattern)
		}

		if kind == KindLiteral {
			haystack, needle := text, patternStr
			if p.mode == CaseInsensitive {
				fold := func(s string) string {
					b := []byte(s)
					for i, c := range b {
						if 'A' <= c && c <= 'Z' {
							b[i] = c + ('a' - 'A')
						}
					}
					return string(b)
				}
				haystack, needle = fold(text), fold(patternStr)
			}
			if strings.Contains(haystack, needle) {
				matches = append(matches, patternID)
			}
			continue
		}

		pat, err := p.compiledGlob(patternID, patternStr)
		if err != nil {
			return nil, err
		}
		if pat.Matches(text) {
			matches = append(matches, patternID)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	return dedupSortedU32(matches), nil
}

func (p *Paraglob) compiledGlob(patternID uint32, patternStr string) (*glob.Pattern, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pat, ok := p.globCache[patternID]; ok {
		return pat, nil
	}
	mode := glob.CaseSensitive
	if p.mode == CaseInsensitive {
		mode = glob.CaseInsensitive
	}
	pat, err := glob.Compile(patternStr, mode)
	if err != nil {
		return nil, fmt.Errorf("paraglob: cached glob %d: %w", patternID, err)
	}
	p.globCache[patternID] = pat
	return pat, nil
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
