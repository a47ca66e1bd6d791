// Package extract scans unstructured log text for IP addresses, domains,
// emails, and (when the TLD list recognizes the suffix) validated domain
// boundaries — the streaming extractor spec §4.9 describes. Each kind
// follows the same three-stage pipeline: find a sparse anchor byte with a
// byte-at-a-time scan, grow outward while bytes belong to that kind's
// character class, then validate per-kind rules before reporting a span.
//
// This generalizes the teacher's internal/parser scanning style (anchor
// byte + bounded boundary growth over a byte slice) from Windows registry
// value blobs to arbitrary log text.
package extract

import "errors"

// ItemKind discriminates what was extracted at a Match's span.
type ItemKind int

const (
	KindDomain ItemKind = iota
	KindEmail
	KindIPv4
	KindIPv6
)

// Match is one extracted item together with its byte span in the
// original input (end exclusive).
type Match struct {
	Kind  ItemKind
	Text  string
	Start int
	End   int
}

// Config toggles which kinds extraction looks for and how strict the
// per-kind validators are (spec §4.9, "Configuration").
type Config struct {
	ExtractDomains bool
	ExtractEmails  bool
	ExtractIPv4    bool
	ExtractIPv6    bool

	RequireValidTLD       bool
	MinDomainLabels       int
	RequireWordBoundaries bool
}

// DefaultConfig returns the extractor's default toggles: every kind
// enabled, TLD validation required, at least two domain labels, and word
// boundaries enforced around every match.
func DefaultConfig() Config {
	return Config{
		ExtractDomains:        true,
		ExtractEmails:         true,
		ExtractIPv4:           true,
		ExtractIPv6:           true,
		RequireValidTLD:       true,
		MinDomainLabels:       2,
		RequireWordBoundaries: true,
	}
}

var ErrInvalidConfig = errors.New("extract: min domain labels must be at least 1")
