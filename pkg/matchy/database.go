package matchy

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/iptree"
	"github.com/matchydb/matchy/internal/literalhash"
	"github.com/matchydb/matchy/internal/mmapfile"
	"github.com/matchydb/matchy/internal/paraglob"
	"github.com/matchydb/matchy/internal/validate"
	"github.com/matchydb/matchy/internal/wire"
)

// noData marks a pattern id in the façade's own pattern->data_offset
// trailer (spec §6) as carrying no associated value, mirroring
// literalhash's own emptySlot convention.
const noData = 0xFFFFFFFF

// OpenOptions configures Open and OpenBytes. It is currently empty and
// reserved for forward compatibility (e.g. a future zero-copy-vs-owned-copy
// switch), matching the teacher's pkg/hive.OpenOptions re-export pattern of
// keeping a stable options type even before every field has a use.
type OpenOptions struct{}

// Database is a read-only, mmap-friendly view over an encoded matchy
// database file (spec §4.8). It never rebuilds either the IP tree or the
// pattern index eagerly: lookups walk the wire bytes directly, the same
// way internal/iptree.Tree and internal/paraglob.Paraglob do on their own.
type Database struct {
	data    []byte
	cleanup func() error

	info Info

	tree        *iptree.Tree
	dataSection []byte

	pg       *paraglob.Paraglob
	litTable *literalhash.Table

	// patternDataOffsets is the façade's own pattern_id -> data_offset
	// trailer (spec §6), indexing into dataSection alongside the IP
	// tree's own entries. It is distinct from paraglob's private data
	// section, which is only consulted via Paraglob.GetPatternData for a
	// standalone bundle.
	patternDataOffsets []uint32
}

// Open mmaps the database file at path and wraps it for lookups.
//
//	db, err := matchy.Open("threatintel.mmdb", matchy.OpenOptions{})
//	if err != nil {
//		return err
//	}
//	defer db.Close()
func Open(path string, opts OpenOptions) (*Database, error) {
	data, cleanup, err := mmapfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	db, err := OpenBytes(data, opts)
	if err != nil {
		cleanup()
		return nil, err
	}
	db.cleanup = cleanup
	return db, nil
}

// OpenBytes wraps an already-loaded database image for lookups. data is
// retained, not copied; callers must keep it alive (and unmodified) for the
// lifetime of the returned Database.
func OpenBytes(data []byte, opts OpenOptions) (*Database, error) {
	recordOffset, err := wire.FindMetadataMarker(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	info, err := decodeMetadataSection(data, recordOffset)
	if err != nil {
		return nil, err
	}

	db := &Database{data: data, info: info}

	treeBytes := int(info.NodeCount) * wire.NodeBytes(info.RecordSize)
	if info.NodeCount > 0 {
		if !buf.Has(data, 0, treeBytes) {
			return nil, fmt.Errorf("matchy: ip tree: %w", ErrInvalidFormat)
		}
		version := iptree.V6
		if info.IPVersion == 4 {
			version = iptree.V4
		}
		tree, err := iptree.NewTree(data[:treeBytes], info.NodeCount, info.RecordSize, version)
		if err != nil {
			return nil, fmt.Errorf("matchy: ip tree: %w", err)
		}
		db.tree = tree
	}

	dataSectionOffset := treeBytes + wire.SeparatorSize
	if dataSectionOffset > len(data) {
		return nil, fmt.Errorf("matchy: typed data section: %w", ErrInvalidFormat)
	}
	db.dataSection = data[dataSectionOffset:]

	mode := paraglob.CaseSensitive
	lhMode := literalhash.CaseSensitive
	if info.CaseInsensitive {
		mode = paraglob.CaseInsensitive
		lhMode = literalhash.CaseInsensitive
	}

	if info.HasPatterns {
		payloadOffset, ok := wire.FindSectionMarker(data, wire.PatternSectionMarker, dataSectionOffset)
		if !ok {
			return nil, fmt.Errorf("matchy: pattern section marker: %w", ErrInvalidFormat)
		}
		if err := db.openPatternSection(data, payloadOffset, mode); err != nil {
			return nil, err
		}
	}

	if info.HasLiteralHash {
		payloadOffset, ok := wire.FindSectionMarker(data, wire.LiteralSectionMarker, dataSectionOffset)
		if !ok {
			return nil, fmt.Errorf("matchy: literal hash section marker: %w", ErrInvalidFormat)
		}
		litTable, err := literalhash.Open(data[payloadOffset:], lhMode)
		if err != nil {
			return nil, fmt.Errorf("matchy: literal hash section: %w", err)
		}
		db.litTable = litTable
	}

	return db, nil
}

// openPatternSection parses the `[u32 total_size][u32 paraglob_size]
// [paraglob bundle][u32 pattern_count][u32 data_offset]*pattern_count`
// layout (spec §6) beginning at payloadOffset.
func (db *Database) openPatternSection(data []byte, payloadOffset int, mode paraglob.MatchMode) error {
	if !buf.Has(data, payloadOffset, 8) {
		return fmt.Errorf("matchy: pattern section header: %w", ErrInvalidFormat)
	}
	paraglobSize := int(buf.U32LE(data[payloadOffset+4 : payloadOffset+8]))
	bundleStart := payloadOffset + 8
	if !buf.Has(data, bundleStart, paraglobSize) {
		return fmt.Errorf("matchy: paraglob bundle: %w", ErrInvalidFormat)
	}

	pg, err := paraglob.Open(data[bundleStart:bundleStart+paraglobSize], mode)
	if err != nil {
		return fmt.Errorf("matchy: paraglob bundle: %w", err)
	}
	db.pg = pg

	trailerOffset := bundleStart + paraglobSize
	if !buf.Has(data, trailerOffset, 4) {
		return fmt.Errorf("matchy: pattern data trailer: %w", ErrInvalidFormat)
	}
	patternCount := int(buf.U32LE(data[trailerOffset : trailerOffset+4]))
	offsetsStart := trailerOffset + 4
	if !buf.Has(data, offsetsStart, patternCount*4) {
		return fmt.Errorf("matchy: pattern data offsets: %w", ErrInvalidFormat)
	}
	offsets := make([]uint32, patternCount)
	for i := 0; i < patternCount; i++ {
		off := offsetsStart + i*4
		offsets[i] = buf.U32LE(data[off : off+4])
	}
	db.patternDataOffsets = offsets
	return nil
}

// Close releases any mapped memory backing the database. Close is a no-op
// for a Database opened via OpenBytes. Calling Close more than once is
// safe.
func (db *Database) Close() error {
	if db.cleanup == nil {
		return nil
	}
	cleanup := db.cleanup
	db.cleanup = nil
	return cleanup()
}

// Info returns the database's metadata.
func (db *Database) Info() Info { return db.info }

// Validate re-walks db's backing bytes at the given level and returns a
// structural report (spec §6, "validate"). It never mutates db or
// invalidates any previously returned lookup result.
func (db *Database) Validate(level validate.Level) *validate.Report {
	return validate.Database(db.data, level)
}

// LookupIP resolves addr against the CIDR tree, returning its associated
// data, the matched prefix length, and whether any route matched at all
// (spec §4.8, "lookup_ip").
func (db *Database) LookupIP(addr netip.Addr) (dataval.Value, int, bool, error) {
	if db.tree == nil {
		return dataval.Value{}, 0, false, nil
	}
	offset, prefixLen, ok, err := db.tree.Lookup(addr)
	if err != nil {
		return dataval.Value{}, 0, false, fmt.Errorf("matchy: ip lookup: %w", err)
	}
	if !ok {
		return dataval.Value{}, 0, false, nil
	}
	v, err := dataval.Decode(db.dataSection, int(offset))
	if err != nil {
		return dataval.Value{}, 0, false, fmt.Errorf("matchy: ip lookup data: %w", err)
	}
	return v, prefixLen, true, nil
}

// LookupPattern matches text against every registered literal and glob
// pattern, returning the sorted, deduplicated set of matching pattern ids
// together with each one's associated data, if any (spec §4.8,
// "lookup_pattern"). The literal-hash table, when present, resolves an
// exact match in O(1) before the Paraglob/AC path runs at all.
func (db *Database) LookupPattern(text string) ([]uint32, []dataval.Value, []bool, error) {
	ids := make(map[uint32]struct{})

	if db.litTable != nil {
		if id, ok := db.litTable.Lookup(text); ok {
			ids[id] = struct{}{}
		}
	}

	if db.pg != nil {
		matched, err := db.pg.FindAll(text)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("matchy: pattern lookup: %w", err)
		}
		for _, id := range matched {
			ids[id] = struct{}{}
		}
	}

	sorted := make([]uint32, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	data := make([]dataval.Value, len(sorted))
	has := make([]bool, len(sorted))
	for i, id := range sorted {
		if int(id) >= len(db.patternDataOffsets) {
			continue
		}
		off := db.patternDataOffsets[id]
		if off == noData {
			continue
		}
		v, err := dataval.Decode(db.dataSection, int(off))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("matchy: pattern data for id %d: %w", id, err)
		}
		data[i] = v
		has[i] = true
	}

	return sorted, data, has, nil
}

// Lookup routes query to LookupIP or LookupPattern depending on whether it
// parses as an IP address (spec §4.8, "lookup"), bundling either outcome
// into a single QueryResult shape.
func (db *Database) Lookup(query string) (QueryResult, bool, error) {
	if addr, err := netip.ParseAddr(query); err == nil {
		v, prefixLen, ok, err := db.LookupIP(addr)
		if err != nil {
			return QueryResult{}, false, err
		}
		return QueryResult{Kind: ResultIP, Data: v, HasData: ok, PrefixLen: prefixLen}, ok, nil
	}

	ids, data, has, err := db.LookupPattern(query)
	if err != nil {
		return QueryResult{}, false, err
	}
	return QueryResult{Kind: ResultPattern, PatternIDs: ids, PatternData: data, PatternHas: has}, len(ids) > 0, nil
}
