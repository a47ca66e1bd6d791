package validate

import (
	"github.com/matchydb/matchy/internal/buf"
	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/iptree"
	"github.com/matchydb/matchy/internal/literalhash"
	"github.com/matchydb/matchy/internal/paraglob"
	"github.com/matchydb/matchy/internal/wire"
)

// rootOffsetSize mirrors pkg/matchy's metadata root-offset header width.
// It is duplicated rather than imported because pkg/matchy is the
// consumer of this package, not the other way around: internal/validate
// must stay importable from a standalone `validate <file>` CLI path with
// no Database already open.
const rootOffsetSize = 4

// Database walks data's on-disk layout at the requested level and
// returns every finding, continuing past non-fatal problems instead of
// stopping at the first one (spec §6, "validate").
func Database(data []byte, level Level) *Report {
	r := &Report{Level: level}
	r.Stats.FileSize = len(data)

	recordOffset, err := wire.FindMetadataMarker(data)
	if err != nil {
		r.error("MetadataMarker", -1, "%v", err)
		return r
	}

	metaValue, ok := decodeMetadata(data, recordOffset, r)
	if !ok {
		return r
	}

	treeBytes := int(r.Stats.NodeCount) * wire.NodeBytes(r.Stats.RecordSize)
	if r.Stats.NodeCount > 0 && !buf.Has(data, 0, treeBytes) {
		r.error("IPTree", 0, "declared %d nodes need %d bytes, file has %d before the separator", r.Stats.NodeCount, treeBytes, recordOffset)
	}

	dataSectionOffset := treeBytes + wire.SeparatorSize
	if dataSectionOffset > len(data) {
		r.error("DataSection", dataSectionOffset, "typed data section start exceeds file size %d", len(data))
		return r
	}

	var tree *iptree.Tree
	if r.Stats.NodeCount > 0 && treeBytes > 0 {
		version := iptree.V6
		if ipVersion, ok := metaValue.Get("ip_version"); ok && ipVersion.Kind == dataval.KindUint16 && ipVersion.U16 == 4 {
			version = iptree.V4
		}
		var terr error
		tree, terr = iptree.NewTree(data[:treeBytes], r.Stats.NodeCount, r.Stats.RecordSize, version)
		if terr != nil {
			r.error("IPTree", 0, "%v", terr)
		}
	}

	mode := paraglob.CaseSensitive
	lhMode := literalhash.CaseSensitive
	if r.Stats.CaseInsensitive {
		mode = paraglob.CaseInsensitive
		lhMode = literalhash.CaseInsensitive
	}

	var pg *paraglob.Paraglob
	if r.Stats.HasPatterns {
		pg = validatePatternSection(data, dataSectionOffset, mode, r)
	}

	var litTable *literalhash.Table
	if r.Stats.HasLiteralHash {
		litTable = validateLiteralSection(data, dataSectionOffset, lhMode, r)
	}

	if level < Strict {
		return r
	}

	if tree != nil {
		if visited, err := tree.ValidateReachability(); err != nil {
			r.error("IPTreeReachability", 0, "%v", err)
		} else {
			r.info("IPTreeReachability", -1, "%d of %d nodes reachable from root", visited, r.Stats.NodeCount)
		}
	}
	if pg != nil {
		if err := pg.ValidateAutomaton(); err != nil {
			r.error("ACIntegrity", -1, "%v", err)
		} else {
			r.info("ACIntegrity", -1, "automaton reachable and sorted")
		}
	}

	if level < Audit {
		return r
	}

	if litTable != nil {
		if err := litTable.VerifyShards(); err != nil {
			r.error("LiteralHashShards", -1, "%v", err)
		} else {
			r.info("LiteralHashShards", -1, "%d entries rehash and route consistently", litTable.EntryCount())
		}
	}

	// Audit mode in the original implementation tracked literal unsafe
	// memory operations and the trust assumptions they rested on. This
	// port has no unsafe blocks: every field access in internal/buf,
	// internal/dataval, internal/iptree, internal/ac, internal/paraglob
	// and internal/literalhash already goes through a bounds-checked
	// helper, so there is no equivalent inventory to take. Audit mode
	// instead reports, as an info finding, how many pattern data values
	// paraglob.Open decoded through dataval.Decode (whose MaxDecodeDepth
	// bounds pointer hops and nesting). IP-tree entries and the
	// pattern-id trailer's offsets are not re-decoded here.
	walked := walkDataOffsets(pg)
	r.info("DataPointerCycle", -1, "%d data offsets decoded within depth limit %d", walked, dataval.MaxDecodeDepth)

	return r
}

func validatePatternSection(data []byte, dataSectionOffset int, mode paraglob.MatchMode, r *Report) *paraglob.Paraglob {
	payloadOffset, ok := wire.FindSectionMarker(data, wire.PatternSectionMarker, dataSectionOffset)
	if !ok {
		r.error("PatternSection", -1, "has_patterns is set but no pattern section marker was found")
		return nil
	}
	if !buf.Has(data, payloadOffset, 8) {
		r.error("PatternSection", payloadOffset, "truncated pattern section header")
		return nil
	}
	paraglobSize := int(buf.U32LE(data[payloadOffset+4 : payloadOffset+8]))
	bundleStart := payloadOffset + 8
	if !buf.Has(data, bundleStart, paraglobSize) {
		r.error("PatternSection", bundleStart, "paraglob bundle claims %d bytes beyond file bounds", paraglobSize)
		return nil
	}

	pg, err := paraglob.Open(data[bundleStart:bundleStart+paraglobSize], mode)
	if err != nil {
		r.error("ParaglobBundle", bundleStart, "%v", err)
		return nil
	}
	r.Stats.PatternCount = pg.PatternCount()

	trailerOffset := bundleStart + paraglobSize
	if !buf.Has(data, trailerOffset, 4) {
		r.error("PatternDataTrailer", trailerOffset, "truncated pattern count")
		return pg
	}
	patternCount := int(buf.U32LE(data[trailerOffset : trailerOffset+4]))
	offsetsStart := trailerOffset + 4
	if !buf.Has(data, offsetsStart, patternCount*4) {
		r.error("PatternDataTrailer", offsetsStart, "trailer claims %d offsets beyond file bounds", patternCount)
	}
	return pg
}

func validateLiteralSection(data []byte, dataSectionOffset int, lhMode literalhash.MatchMode, r *Report) *literalhash.Table {
	payloadOffset, ok := wire.FindSectionMarker(data, wire.LiteralSectionMarker, dataSectionOffset)
	if !ok {
		r.error("LiteralSection", -1, "has_literal_hash is set but no literal section marker was found")
		return nil
	}
	litTable, err := literalhash.Open(data[payloadOffset:], lhMode)
	if err != nil {
		r.error("LiteralSection", payloadOffset, "%v", err)
		return nil
	}
	r.Stats.LiteralEntries = litTable.EntryCount()
	return litTable
}

// walkDataOffsets counts the patterns that carry a data value in the
// Paraglob bundle. paraglob.Open already decoded each one through
// dataval.Decode, which enforces the MAX_TOTAL_DEPTH pointer/nesting
// limit on every call; this pass decodes nothing itself.
func walkDataOffsets(pg *paraglob.Paraglob) int {
	if pg == nil {
		return 0
	}
	walked := 0
	for id := 0; id < pg.PatternCount(); id++ {
		if _, ok := pg.GetPatternData(uint32(id)); ok {
			walked++
		}
	}
	return walked
}

// decodeMetadata parses the metadata record at recordOffset, populating
// r.Stats field-by-field and reporting a warning for each missing or
// mis-kinded field instead of aborting on the first one. It returns
// ok=false only when the record itself cannot be decoded at all.
func decodeMetadata(data []byte, recordOffset int, r *Report) (dataval.Value, bool) {
	if !buf.Has(data, recordOffset, rootOffsetSize) {
		r.error("MetadataRecord", recordOffset, "truncated root offset header")
		return dataval.Value{}, false
	}
	rootOffset := int(buf.U32LE(data[recordOffset : recordOffset+rootOffsetSize]))
	section := data[recordOffset+rootOffsetSize:]

	v, err := dataval.Decode(section, rootOffset)
	if err != nil {
		r.error("MetadataRecord", recordOffset, "%v", err)
		return dataval.Value{}, false
	}
	if v.Kind != dataval.KindMap {
		r.error("MetadataRecord", recordOffset, "metadata root is %s, want map", v.Kind)
		return dataval.Value{}, false
	}

	if val, ok := v.Get("binary_format_major_version"); ok && val.Kind == dataval.KindUint16 {
		r.Stats.FormatMajor = val.U16
	} else {
		r.warn("MetadataField", -1, "missing or mis-kinded binary_format_major_version")
	}
	if val, ok := v.Get("binary_format_minor_version"); ok && val.Kind == dataval.KindUint16 {
		r.Stats.FormatMinor = val.U16
	} else {
		r.warn("MetadataField", -1, "missing or mis-kinded binary_format_minor_version")
	}
	if val, ok := v.Get("node_count"); ok && val.Kind == dataval.KindUint32 {
		r.Stats.NodeCount = val.U32
	} else {
		r.warn("MetadataField", -1, "missing or mis-kinded node_count")
	}
	if val, ok := v.Get("record_size"); ok && val.Kind == dataval.KindUint16 {
		r.Stats.RecordSize = int(val.U16)
	} else {
		r.warn("MetadataField", -1, "missing or mis-kinded record_size")
	}
	if val, ok := v.Get("case_insensitive"); ok && val.Kind == dataval.KindBool {
		r.Stats.CaseInsensitive = val.Bool
	}
	if val, ok := v.Get("has_patterns"); ok && val.Kind == dataval.KindBool {
		r.Stats.HasPatterns = val.Bool
	}
	if val, ok := v.Get("has_literal_hash"); ok && val.Kind == dataval.KindBool {
		r.Stats.HasLiteralHash = val.Bool
	}

	if r.Stats.RecordSize != 0 && wire.NodeBytes(r.Stats.RecordSize) == 0 {
		r.error("MetadataField", -1, "record_size %d is not a supported IP-tree record width", r.Stats.RecordSize)
	}

	return v, true
}
