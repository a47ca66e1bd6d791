package matchy

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/iptree"
	"github.com/matchydb/matchy/internal/literalhash"
	"github.com/matchydb/matchy/internal/paraglob"
	"github.com/matchydb/matchy/internal/wire"
)

// BuildOptions configures NewBuilder.
type BuildOptions struct {
	// DatabaseType is a free-form label stored in the metadata map, e.g.
	// "matchy-threatintel-v1".
	DatabaseType string
	// Description maps BCP-47 language tags to a human-readable summary.
	Description map[string]string
	// CaseInsensitive folds ASCII case for both pattern registration and
	// pattern queries.
	// Default: false
	CaseInsensitive bool
	// RecordWidth is the IP tree's record width in bits: 24, 28 or 32.
	// Default: 28
	RecordWidth int
	// IPVersion selects a pure-IPv4 tree (4) or an IPv4-in-IPv6 tree (6).
	// Default: 6
	IPVersion int
	// BuildLiteralHash additionally builds a literal-hash fast path
	// alongside the Paraglob bundle for any pattern with no wildcard
	// metacharacters.
	// Default: true
	BuildLiteralHash bool
}

// DefaultBuildOptions returns the BuildOptions a caller gets by passing the
// zero value, following the teacher's hive/builder.DefaultOptions shape.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		RecordWidth:      wire.RecordWidth28,
		IPVersion:        6,
		BuildLiteralHash: true,
	}
}

type patternRecord struct {
	pattern string
	literal bool
	data    dataval.Value
	hasData bool
}

// Builder accumulates CIDR routes and patterns for a single database
// image. A Builder is not safe for concurrent use; build one database per
// goroutine, matching the teacher's hive/builder.Builder contract.
type Builder struct {
	opts        BuildOptions
	treeBuilder *iptree.Builder
	encoder     *dataval.Encoder
	ipCount     int
	patterns    []patternRecord
}

// NewBuilder returns an empty Builder. A zero BuildOptions{} is replaced
// with DefaultBuildOptions().
//
//	b, err := matchy.NewBuilder(matchy.DefaultBuildOptions())
//	if err != nil {
//		return err
//	}
//	b.AddCIDR(netip.MustParsePrefix("10.0.0.0/8"), dataval.String("internal"))
//	b.AddPattern("*.evil.example")
//	image, err := b.Build()
func NewBuilder(opts BuildOptions) (*Builder, error) {
	if opts.RecordWidth == 0 && opts.IPVersion == 0 {
		opts = DefaultBuildOptions()
	}
	if wire.NodeBytes(opts.RecordWidth) == 0 {
		return nil, fmt.Errorf("matchy: unsupported record width %d", opts.RecordWidth)
	}
	if opts.IPVersion != 4 && opts.IPVersion != 6 {
		return nil, fmt.Errorf("matchy: unsupported ip version %d", opts.IPVersion)
	}

	version := iptree.V6
	if opts.IPVersion == 4 {
		version = iptree.V4
	}

	return &Builder{
		opts:        opts,
		treeBuilder: iptree.NewBuilder(version, opts.RecordWidth),
		encoder:     dataval.NewEncoder(),
	}, nil
}

// IPCount returns the number of CIDR routes added so far.
func (b *Builder) IPCount() int { return b.ipCount }

// PatternCount returns the number of patterns added so far.
func (b *Builder) PatternCount() int { return len(b.patterns) }

// AddCIDR registers a CIDR route with its associated data (spec §4.8,
// "Builder").
func (b *Builder) AddCIDR(prefix netip.Prefix, data dataval.Value) error {
	offset := b.encoder.Encode(data)
	if err := b.treeBuilder.Insert(prefix.Addr(), prefix.Bits(), uint32(offset)); err != nil {
		return fmt.Errorf("matchy: add cidr %s: %w", prefix, err)
	}
	b.ipCount++
	return nil
}

// AddPattern registers a literal or glob pattern with no associated data.
func (b *Builder) AddPattern(pattern string) error {
	return b.AddPatternWithData(pattern, dataval.Value{}, false)
}

// AddPatternWithData registers pattern and, when hasData is true, the data
// value returned alongside a match.
func (b *Builder) AddPatternWithData(pattern string, data dataval.Value, hasData bool) error {
	if pattern == "" {
		return paraglob.ErrEmptyPattern
	}
	b.patterns = append(b.patterns, patternRecord{
		pattern: pattern,
		literal: !paraglob.IsGlobPattern(pattern),
		data:    data,
		hasData: hasData,
	})
	return nil
}

// Build assembles the final database image: IP tree, zero separator,
// shared typed data section, optional pattern section, optional
// literal-hash section, and metadata record (spec §4.1, "File layout").
func (b *Builder) Build() ([]byte, error) {
	treeBytes, nodeCount, err := b.treeBuilder.Encode()
	if err != nil {
		return nil, fmt.Errorf("matchy: encode ip tree: %w", err)
	}

	var patternSection, literalSection []byte
	patternCount := 0
	if len(b.patterns) > 0 {
		patternSection, literalSection, patternCount, err = b.buildPatternSections()
		if err != nil {
			return nil, err
		}
	}

	info := Info{
		DatabaseType:    b.opts.DatabaseType,
		Description:     b.opts.Description,
		NodeCount:       nodeCount,
		RecordSize:      b.opts.RecordWidth,
		IPVersion:       b.opts.IPVersion,
		CaseInsensitive: b.opts.CaseInsensitive,
		HasPatterns:     patternCount > 0,
		HasLiteralHash:  len(literalSection) > 0,
	}
	metadataSection, err := encodeMetadataSection(info, uint64(time.Now().Unix()))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(treeBytes)+wire.SeparatorSize+b.encoder.Len()+
		len(patternSection)+len(literalSection)+len(metadataSection))
	out = append(out, treeBytes...)
	out = append(out, make([]byte, wire.SeparatorSize)...)
	out = append(out, b.encoder.Bytes()...)
	out = append(out, patternSection...)
	out = append(out, literalSection...)
	out = append(out, metadataSection...)
	return out, nil
}

// buildPatternSections builds the Paraglob bundle (with its
// pattern-id-to-data-offset trailer into the shared data section) and,
// when requested, the literal-hash fast path over every non-glob pattern.
func (b *Builder) buildPatternSections() (patternSection, literalSection []byte, patternCount int, err error) {
	mode := paraglob.CaseSensitive
	lhMode := literalhash.CaseSensitive
	if b.opts.CaseInsensitive {
		mode = paraglob.CaseInsensitive
		lhMode = literalhash.CaseInsensitive
	}

	pgBuilder := paraglob.NewBuilder(mode)
	var lhBuilder *literalhash.Builder
	if b.opts.BuildLiteralHash {
		lhBuilder = literalhash.NewBuilder(lhMode)
	}

	dataOffsets := make(map[uint32]uint32)
	registered := make(map[uint32]bool)

	for _, p := range b.patterns {
		id, err := pgBuilder.AddPatternWithData(p.pattern, p.data, p.hasData)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("matchy: add pattern %q: %w", p.pattern, err)
		}
		if registered[id] {
			continue
		}
		registered[id] = true

		if p.hasData {
			dataOffsets[id] = uint32(b.encoder.Encode(p.data))
		}
		if p.literal && lhBuilder != nil {
			if err := lhBuilder.Add(p.pattern, id); err != nil {
				return nil, nil, 0, fmt.Errorf("matchy: literal hash add %q: %w", p.pattern, err)
			}
		}
	}

	bundle, err := pgBuilder.Build()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("matchy: build paraglob bundle: %w", err)
	}
	patternCount = pgBuilder.Len()

	var body []byte
	var sizeBuf [4]byte
	buf.PutU32LE(sizeBuf[:], uint32(len(bundle)))
	body = append(body, sizeBuf[:]...)
	body = append(body, bundle...)

	buf.PutU32LE(sizeBuf[:], uint32(patternCount))
	body = append(body, sizeBuf[:]...)
	for i := 0; i < patternCount; i++ {
		off, ok := dataOffsets[uint32(i)]
		if !ok {
			off = noData
		}
		var offBuf [4]byte
		buf.PutU32LE(offBuf[:], off)
		body = append(body, offBuf[:]...)
	}

	patternSection = append(patternSection, wire.PatternSectionMarker...)
	var totalBuf [4]byte
	buf.PutU32LE(totalBuf[:], uint32(len(body)))
	patternSection = append(patternSection, totalBuf[:]...)
	patternSection = append(patternSection, body...)

	if lhBuilder != nil && lhBuilder.Len() > 0 {
		lhBytes, err := lhBuilder.Encode(dataOffsets)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("matchy: build literal hash section: %w", err)
		}
		literalSection = append(literalSection, wire.LiteralSectionMarker...)
		literalSection = append(literalSection, lhBytes...)
	}

	return patternSection, literalSection, patternCount, nil
}
