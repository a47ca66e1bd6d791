package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/matchylog"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/spf13/cobra"
)

var (
	buildOut             string
	buildFormat          string
	buildCaseInsensitive bool
	buildDatabaseType    string
	buildDescription     string
	buildDescLang        string
)

func init() {
	cmd := newBuildCmd()
	cmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output database path (required)")
	cmd.Flags().StringVar(&buildFormat, "format", "text", "Input format: text, json, csv, misp")
	cmd.Flags().BoolVar(&buildCaseInsensitive, "case-insensitive", false, "Fold ASCII case for pattern matching")
	cmd.Flags().StringVar(&buildDatabaseType, "database-type", "", "Free-form database type label")
	cmd.Flags().StringVar(&buildDescription, "description", "", "Human-readable description")
	cmd.Flags().StringVar(&buildDescLang, "desc-lang", "en", "BCP-47 language tag for --description")
	_ = cmd.MarkFlagRequired("out")
	rootCmd.AddCommand(cmd)
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <inputs...>",
		Short: "Build a matchy database from one or more indicator files",
		Long: `The build command reads IP/CIDR routes and literal/glob patterns from
one or more input files and writes a single matchy database file.

Example:
  matchy build feed.txt -o threatintel.mmdb
  matchy build feed1.txt feed2.txt -o out.mmdb --case-insensitive
  matchy build indicators.json -o out.mmdb --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args)
		},
	}
}

// indicator is one parsed input line, classified before being handed to
// the Builder (spec §6, "Input text file").
type indicator struct {
	prefix  netip.Prefix
	isCIDR  bool
	pattern string
	data    string
	hasData bool
}

func runBuild(inputs []string) error {
	opts := matchy.DefaultBuildOptions()
	opts.CaseInsensitive = buildCaseInsensitive
	opts.DatabaseType = buildDatabaseType
	if buildDescription != "" {
		opts.Description = map[string]string{buildDescLang: buildDescription}
	}

	b, err := matchy.NewBuilder(opts)
	if err != nil {
		return fmt.Errorf("matchy: build: %w", err)
	}

	for _, path := range inputs {
		printVerbose("Reading %s (format=%s)\n", path, buildFormat)
		entries, err := readIndicators(path, buildFormat)
		if err != nil {
			return fmt.Errorf("matchy: read %s: %w", path, err)
		}
		for _, e := range entries {
			if e.isCIDR {
				var data dataval.Value
				if e.hasData {
					data = dataval.String(e.data)
				}
				if err := b.AddCIDR(e.prefix, data); err != nil {
					return fmt.Errorf("matchy: %s: add cidr %s: %w", path, e.prefix, err)
				}
				continue
			}
			if err := b.AddPatternWithData(e.pattern, dataval.String(e.data), e.hasData); err != nil {
				return fmt.Errorf("matchy: %s: add pattern %q: %w", path, e.pattern, err)
			}
		}
	}

	matchylog.Info("build: registered entries", "ip_count", b.IPCount(), "pattern_count", b.PatternCount())

	image, err := b.Build()
	if err != nil {
		return fmt.Errorf("matchy: build: %w", err)
	}

	if err := os.WriteFile(buildOut, image, 0644); err != nil {
		return fmt.Errorf("matchy: write %s: %w", buildOut, err)
	}

	printInfo("Wrote %s (%d bytes, %d IP routes, %d patterns)\n", buildOut, len(image), b.IPCount(), b.PatternCount())
	return nil
}

// readIndicators dispatches to the per-format parser. json/csv/misp are
// thin external-collaborator feeders (spec §1, "DELIBERATELY OUT OF
// SCOPE: the MISP JSON importer"); only the text format is part of the
// core contract.
func readIndicators(path, format string) ([]indicator, error) {
	switch format {
	case "text", "":
		return readTextIndicators(path)
	case "json":
		return readJSONIndicators(path)
	case "csv":
		return readCSVIndicators(path)
	case "misp":
		return readMISPIndicators(path)
	default:
		return nil, fmt.Errorf("unknown --format %q", format)
	}
}

// classify turns one raw indicator string (with optional data) into an
// indicator by attempting CIDR/IP parsing first, then falling back to a
// literal/glob pattern (spec §6: "classified at build time as IP / CIDR /
// pattern by attempted IP parsing ... then by presence of wildcard
// characters").
func classify(raw, data string, hasData bool) (indicator, error) {
	if prefix, err := parseCIDROrAddr(raw); err == nil {
		return indicator{prefix: prefix, isCIDR: true, data: data, hasData: hasData}, nil
	}
	if raw == "" {
		return indicator{}, fmt.Errorf("empty entry")
	}
	return indicator{pattern: raw, data: data, hasData: hasData}, nil
}

func parseCIDROrAddr(raw string) (netip.Prefix, error) {
	if strings.Contains(raw, "/") {
		return netip.ParsePrefix(raw)
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, err
	}
	bits := 32
	if addr.Is6() {
		bits = 128
	}
	return netip.PrefixFrom(addr, bits), nil
}

func readTextIndicators(path string) ([]indicator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []indicator
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw, data, hasData := line, "", false
		if fields := strings.SplitN(line, "\t", 2); len(fields) == 2 {
			raw, data, hasData = fields[0], fields[1], true
		}
		entry, err := classify(raw, data, hasData)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		out = append(out, entry)
	}
	return out, scanner.Err()
}

type jsonIndicator struct {
	Value string `json:"value"`
	Data  string `json:"data,omitempty"`
}

func readJSONIndicators(path string) ([]indicator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []jsonIndicator
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]indicator, 0, len(items))
	for _, item := range items {
		entry, err := classify(item.Value, item.Data, item.Data != "")
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// readCSVIndicators expects a header row with an "indicator" column and
// an optional "data" column.
func readCSVIndicators(path string) ([]indicator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	indicatorCol, dataCol := -1, -1
	for i, col := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "indicator", "value":
			indicatorCol = i
		case "data":
			dataCol = i
		}
	}
	if indicatorCol == -1 {
		return nil, fmt.Errorf("csv: missing indicator/value column")
	}

	out := make([]indicator, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data, hasData := "", false
		if dataCol != -1 && dataCol < len(row) && row[dataCol] != "" {
			data, hasData = row[dataCol], true
		}
		entry, err := classify(strings.TrimSpace(row[indicatorCol]), data, hasData)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// mispAttribute mirrors the handful of fields this feeder needs from a
// MISP event's Attribute array; the rest of the MISP object graph is not
// part of the core contract (spec §1, "external collaborator").
type mispAttribute struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mispEvent struct {
	Event struct {
		Attribute []mispAttribute `json:"Attribute"`
	} `json:"Event"`
}

var mispPatternTypes = map[string]bool{
	"domain": true, "hostname": true, "email": true, "email-src": true, "email-dst": true,
}

var mispIPTypes = map[string]bool{
	"ip-src": true, "ip-dst": true, "ip-src|port": true, "ip-dst|port": true,
}

func readMISPIndicators(path string) ([]indicator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var evt mispEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, err
	}
	var out []indicator
	for _, attr := range evt.Event.Attribute {
		value := attr.Value
		if idx := strings.Index(value, "|"); idx != -1 {
			value = value[:idx]
		}
		switch {
		case mispIPTypes[attr.Type], mispPatternTypes[attr.Type]:
			entry, err := classify(value, attr.Type, true)
			if err != nil {
				continue
			}
			out = append(out, entry)
		}
	}
	return out, nil
}
