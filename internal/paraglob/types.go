// Package paraglob fuses the Aho-Corasick automaton (internal/ac) and the
// glob verifier (internal/glob) into the single pattern-matching index
// spec §4.6 describes: AC finds candidate literal substrings in O(text
// length), pure-wildcard patterns are checked unconditionally, and only
// the (typically small) candidate set pays for full glob verification.
// The on-disk bundle header itself is internal/wire's ParaglobHeader;
// this package owns everything that hangs off it.
//
// This generalizes the teacher's internal/format section-assembly style
// (fixed header, sequential section offsets, each section independently
// bounds-checked on read) to a multi-section pattern index instead of a
// single record tree.
package paraglob

import (
	"errors"

	"github.com/matchydb/matchy/internal/wire"
)

// MatchMode selects whether pattern text and queries fold ASCII case.
type MatchMode int

const (
	CaseSensitive MatchMode = iota
	CaseInsensitive
)

func (m MatchMode) wire() uint32 {
	if m == CaseInsensitive {
		return wire.MatchModeCaseInsensitive
	}
	return wire.MatchModeCaseSensitive
}

// PatternKind discriminates how a registered pattern must be re-verified.
type PatternKind byte

const (
	// KindLiteral patterns are re-verified by substring containment.
	KindLiteral PatternKind = 0
	// KindGlob covers both glob patterns with extractable literals and
	// pure-wildcard patterns; both are re-verified with the glob matcher.
	KindGlob PatternKind = 1
)

// headerSize is the fixed size of the bundle header this package reads
// and writes (spec §6, "Paraglob bundle header"): internal/wire owns the
// byte layout.
const headerSize = wire.ParaglobHeaderSize

// patternEntrySize is the on-disk size of one pattern table record:
// pattern id, kind (padded to 4 bytes), string offset, string length.
const patternEntrySize = 16

// wildcardEntrySize is the on-disk size of one pure-wildcard index record:
// pattern id, string offset.
const wildcardEntrySize = 8

var (
	ErrEmptyPattern   = errors.New("paraglob: pattern must not be empty")
	ErrNoPatterns     = errors.New("paraglob: at least one pattern is required")
	ErrUnknownPattern = errors.New("paraglob: unknown pattern id")

	// ErrTruncated, ErrBadMagic and ErrBadVersion alias internal/wire's
	// sentinels so callers can errors.Is against either package.
	ErrTruncated  = wire.ErrTruncated
	ErrBadMagic   = wire.ErrSignatureMismatch
	ErrBadVersion = wire.ErrUnsupportedVersion
)
