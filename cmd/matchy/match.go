package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/matchydb/matchy/internal/matchylog"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/matchydb/matchy/pkg/worker"
	"github.com/spf13/cobra"
)

var (
	matchFormat  string
	matchThreads int
	matchFollow  bool
)

func init() {
	cmd := newMatchCmd()
	cmd.Flags().StringVar(&matchFormat, "format", "json", "Output record format (only json is supported)")
	cmd.Flags().IntVar(&matchThreads, "threads", 1, "Number of worker goroutines, one Database handle each")
	cmd.Flags().BoolVar(&matchFollow, "follow", false, "Keep watching each input file for appended lines")
	rootCmd.AddCommand(cmd)
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <db> <inputs...>",
		Short: "Stream NDJSON match records for candidates found in input files",
		Long: `The match command extracts IP addresses, domains, and emails from
each input file's lines and streams one NDJSON record per match (spec
§5, "Parallel processing"; spec §6, "match"). --threads worker
goroutines take input files from a shared queue, each worker with an
independent Database handle over the same underlying file.

Example:
  matchy match threatintel.mmdb access.log
  matchy match threatintel.mmdb access.log --follow --threads 4`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(args)
		},
	}
}

// ndjsonRecord is the wire shape of one worker.MatchRecord, tagged with a
// wall-clock timestamp (spec §6, "streams NDJSON match records with
// timestamp, source_file, line_number, matched_text, input_line,
// match_type, and kind-specific fields").
type ndjsonRecord struct {
	Timestamp   time.Time   `json:"timestamp"`
	SourceFile  string      `json:"source_file"`
	LineNumber  int         `json:"line_number"`
	MatchedText string      `json:"matched_text"`
	InputLine   string      `json:"input_line"`
	MatchType   string      `json:"match_type"`
	PrefixLen   int         `json:"prefix_len,omitempty"`
	PatternIDs  []uint32    `json:"pattern_ids,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

func runMatch(args []string) error {
	dbPath, inputs := args[0], args[1:]

	if matchThreads < 1 {
		matchThreads = 1
	}

	encoder := json.NewEncoder(os.Stdout)

	type result struct {
		records []worker.MatchRecord
		err     error
	}

	jobs := make(chan string, len(inputs))
	results := make(chan result, len(inputs))

	runWorker := func() {
		db, err := matchy.Open(dbPath, matchy.OpenOptions{})
		if err != nil {
			results <- result{err: fmt.Errorf("matchy: open %s: %w", dbPath, err)}
			return
		}
		defer db.Close()

		w := worker.New(db, worker.DefaultOptions())
		for path := range jobs {
			records, err := processInputFile(w, path)
			results <- result{records: records, err: err}
			if matchFollow {
				if err := followFile(w, path, encoder); err != nil {
					matchylog.Error("match: follow failed", "file", path, "error", err)
				}
			}
		}
	}

	for i := 0; i < matchThreads; i++ {
		go runWorker()
	}
	for _, path := range inputs {
		jobs <- path
	}
	close(jobs)

	var firstErr error
	for range inputs {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		for _, rec := range r.records {
			if err := encoder.Encode(toNDJSON(rec)); err != nil {
				return err
			}
		}
	}
	return firstErr
}

func processInputFile(w *worker.Worker, path string) ([]worker.MatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("matchy: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("matchy: read %s: %w", path, err)
	}

	batch := worker.NewLineBatch(path, 1, data)
	return w.ProcessLines(batch)
}

// followFile watches path for appended data and streams matches for each
// newly written line as it arrives, until the process is interrupted
// (spec §1 lists the file-watching plumbing itself as an external
// collaborator; this is a minimal, directly-wired implementation of its
// contract rather than a full tailing library).
func followFile(w *worker.Worker, path string, encoder *json.Encoder) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	reader := bufio.NewReader(f)
	lineNo := 1
	for event := range watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		for {
			line, err := reader.ReadString('\n')
			if line == "" && err != nil {
				break
			}
			batch := worker.NewLineBatch(path, lineNo, []byte(line))
			records, procErr := w.ProcessLines(batch)
			if procErr != nil {
				matchylog.Error("match: process line failed", "file", path, "error", procErr)
			}
			for _, rec := range records {
				if err := encoder.Encode(toNDJSON(rec)); err != nil {
					return err
				}
			}
			lineNo++
			if err != nil {
				break
			}
		}
	}
	return nil
}

func toNDJSON(rec worker.MatchRecord) ndjsonRecord {
	return ndjsonRecord{
		Timestamp:   time.Now(),
		SourceFile:  rec.SourceFile,
		LineNumber:  rec.LineNumber,
		MatchedText: rec.MatchedText,
		InputLine:   rec.InputLine,
		MatchType:   string(rec.MatchType),
		PrefixLen:   rec.PrefixLen,
		PatternIDs:  rec.PatternIDs,
		Data:        rec.Data,
	}
}
