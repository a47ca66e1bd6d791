package worker

import (
	"fmt"
	"net/netip"

	"github.com/matchydb/matchy/internal/extract"
	"github.com/matchydb/matchy/pkg/matchy"
)

// MatchType discriminates a MatchRecord's kind-specific fields.
type MatchType string

const (
	MatchTypeIP      MatchType = "ip"
	MatchTypePattern MatchType = "pattern"
)

// MatchRecord is one matched candidate located within its source text
// (spec §6, `match` subcommand's NDJSON record fields).
type MatchRecord struct {
	SourceFile  string
	LineNumber  int // 0 when the candidate came from ProcessBytes, not a line batch
	MatchedText string
	InputLine   string
	MatchType   MatchType

	// PrefixLen is set only for MatchTypeIP.
	PrefixLen int
	Data      interface{}
	HasData   bool

	// PatternIDs is set only for MatchTypePattern.
	PatternIDs []uint32
}

// Options configures New.
type Options struct {
	Extractor *extract.Extractor
}

// DefaultOptions returns an Options using extract.New()'s defaults.
func DefaultOptions() Options {
	return Options{Extractor: extract.New()}
}

// Worker pairs one Database handle with one Extractor and exposes the
// two entry points spec §5 names: ProcessBytes for an unstructured blob
// and ProcessLines for a pre-split LineBatch. A Worker is not safe for
// concurrent use; construct one per goroutine against the same mmap'd
// file (opening a file N times produces N independent mmaps sharing the
// OS page cache, spec §5).
type Worker struct {
	db        *matchy.Database
	extractor *extract.Extractor
}

// New returns a Worker over db. A zero Options{} falls back to
// DefaultOptions().
func New(db *matchy.Database, opts Options) *Worker {
	if opts.Extractor == nil {
		opts = DefaultOptions()
	}
	return &Worker{db: db, extractor: opts.Extractor}
}

// ProcessBytes extracts every candidate from text and looks each one up,
// returning every match found. Line numbers are not tracked; callers
// wanting line-located matches should use ProcessLines instead.
func (w *Worker) ProcessBytes(text []byte) ([]MatchRecord, error) {
	return w.processLine("", 0, text)
}

// ProcessLines splits batch into lines using its pre-computed newline
// offsets and looks up every candidate extracted from each line,
// returning every match located by source, line number, and original
// line text.
func (w *Worker) ProcessLines(batch *LineBatch) ([]MatchRecord, error) {
	var out []MatchRecord
	lineNo := batch.StartLine
	for _, line := range batch.lines() {
		matches, err := w.processLine(batch.Source, lineNo, line)
		if err != nil {
			return nil, fmt.Errorf("worker: %s line %d: %w", batch.Source, lineNo, err)
		}
		out = append(out, matches...)
		lineNo++
	}
	return out, nil
}

func (w *Worker) processLine(source string, lineNo int, line []byte) ([]MatchRecord, error) {
	var out []MatchRecord
	for _, item := range w.extractor.ExtractFromLine(line) {
		record := MatchRecord{
			SourceFile:  source,
			LineNumber:  lineNo,
			MatchedText: item.Text,
			InputLine:   string(line),
		}

		switch item.Kind {
		case extract.KindIPv4, extract.KindIPv6:
			addr, err := netip.ParseAddr(item.Text)
			if err != nil {
				continue
			}
			data, prefixLen, ok, err := w.db.LookupIP(addr)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			record.MatchType = MatchTypeIP
			record.PrefixLen = prefixLen
			record.HasData = true
			record.Data = data.Native()
			out = append(out, record)

		case extract.KindDomain, extract.KindEmail:
			ids, data, has, err := w.db.LookupPattern(item.Text)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				continue
			}
			record.MatchType = MatchTypePattern
			record.PatternIDs = ids
			if len(has) > 0 && has[0] {
				record.HasData = true
				record.Data = data[0].Native()
			}
			out = append(out, record)
		}
	}
	return out, nil
}
