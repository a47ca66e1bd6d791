// Package worker runs a Database and an extract.Extractor over raw text,
// one goroutine at a time (spec §5, "Parallel processing"). Parallelism
// is expressed by constructing N independent Workers, each opening its
// own Database handle over the same file; a Worker itself holds no
// cross-worker state and is not safe for concurrent use from multiple
// goroutines, matching the teacher's hive/builder.Builder contract of
// one object per goroutine.
package worker

import "bytes"

// LineBatch carries one chunk of a file's lines: a source label, the
// 1-indexed line number the batch starts at, the raw bytes, and a
// pre-computed newline offset table so a Worker never re-scans for line
// boundaries (spec §5, "Batch contract"). Ordering between batches from
// one file is the caller's responsibility; ordering across workers is
// not preserved.
type LineBatch struct {
	Source         string
	StartLine      int
	Data           []byte
	NewlineOffsets []int
}

// NewLineBatch computes the newline offset table for data once, up
// front, so ProcessLines never re-scans it.
func NewLineBatch(source string, startLine int, data []byte) *LineBatch {
	offsets := make([]int, 0, bytes.Count(data, []byte{'\n'}))
	for i, b := range data {
		if b == '\n' {
			offsets = append(offsets, i)
		}
	}
	return &LineBatch{Source: source, StartLine: startLine, Data: data, NewlineOffsets: offsets}
}

// lines splits Data into lines using NewlineOffsets, returning each
// line with its trailing '\r' (if any) and '\n' stripped.
func (b *LineBatch) lines() [][]byte {
	out := make([][]byte, 0, len(b.NewlineOffsets)+1)
	start := 0
	for _, nl := range b.NewlineOffsets {
		out = append(out, trimCR(b.Data[start:nl]))
		start = nl + 1
	}
	if start < len(b.Data) {
		out = append(out, trimCR(b.Data[start:]))
	}
	return out
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
