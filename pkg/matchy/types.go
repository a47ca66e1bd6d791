// Package matchy is the public façade over matchy's on-disk database
// format: an IP tree (internal/iptree) for CIDR longest-prefix-match and a
// Paraglob + literal-hash pair (internal/paraglob, internal/literalhash) for
// pattern matching, sharing one typed data section (internal/dataval).
//
// This generalizes the teacher's pkg/hive factory (mmap-backed Open/
// OpenBytes returning a thin reader, plus a separate builder package for
// writing) into a single database with two lookup families instead of one
// registry tree.
package matchy

import (
	"errors"

	"github.com/matchydb/matchy/internal/dataval"
)

var (
	// ErrInvalidFormat is returned when a byte slice does not look like a
	// matchy database: missing metadata marker, bad magic, or a field that
	// fails its bounds check.
	ErrInvalidFormat = errors.New("matchy: invalid database format")
	// ErrIO wraps a filesystem error encountered opening or mapping a
	// database file.
	ErrIO = errors.New("matchy: i/o error")
	// ErrClosed is returned by any Database method called after Close.
	ErrClosed = errors.New("matchy: database is closed")
)

// ResultKind discriminates which lookup family produced a QueryResult.
type ResultKind int

const (
	// ResultIP means the query string parsed as an IP address and was
	// resolved via the CIDR tree.
	ResultIP ResultKind = iota
	// ResultPattern means the query string was matched against registered
	// literal/glob patterns.
	ResultPattern
)

func (k ResultKind) String() string {
	switch k {
	case ResultIP:
		return "ip"
	case ResultPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// QueryResult is the outcome of Database.Lookup, covering both the IP and
// pattern lookup families in one shape so callers that don't already know
// which kind of query they're issuing (spec §4.8, "lookup") can branch on
// Kind once instead of calling two different methods speculatively.
type QueryResult struct {
	Kind ResultKind

	// Populated when Kind == ResultIP.
	Data      dataval.Value
	HasData   bool
	PrefixLen int

	// Populated when Kind == ResultPattern. PatternIDs, PatternData and
	// PatternHas (one entry per id) are parallel slices sorted by id.
	PatternIDs  []uint32
	PatternData []dataval.Value
	PatternHas  []bool
}

// Info summarizes the metadata map of an open database (spec §5,
// "MetadataRecord").
type Info struct {
	// DatabaseType is the free-form type string the database was built
	// with, e.g. "matchy-threatintel".
	DatabaseType string
	// Description maps BCP-47 language tags to a human-readable summary.
	Description map[string]string
	// BuildEpoch is the Unix build timestamp recorded at Build time.
	BuildEpoch uint64
	// NodeCount is the number of nodes in the IP tree (0 if the database
	// carries no CIDR data).
	NodeCount uint32
	// RecordSize is the IP tree's record width in bits: 24, 28 or 32.
	RecordSize int
	// IPVersion is 4 or 6, per the tree the database was built with.
	IPVersion int
	// FormatMajor and FormatMinor are the on-disk format version.
	FormatMajor uint16
	FormatMinor uint16
	// HasPatterns reports whether the database carries a Paraglob bundle.
	HasPatterns bool
	// HasLiteralHash reports whether the database carries a literal-hash
	// fast-path section alongside the Paraglob bundle.
	HasLiteralHash bool
	// CaseInsensitive reports whether pattern matching folds ASCII case.
	// It is the single source of truth read back by both the Paraglob
	// and literal-hash readers: the literal-hash header carries no match
	// mode, and the Paraglob header's MatchMode field is written but not
	// consulted when the bundle is opened.
	CaseInsensitive bool
}
