package main

import (
	"errors"
	"fmt"

	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/spf13/cobra"
)

// errNoMatch signals a clean "no match" exit (status 1, no error text)
// rather than a failure, mirroring spec §6's "exit 0 on match, 1 on
// no-match" contract for query.
var errNoMatch = errors.New("matchy: no match")

var queryShowData bool

func init() {
	cmd := newQueryCmd()
	cmd.Flags().BoolVar(&queryShowData, "data", false, "Print associated data alongside the match")
	rootCmd.AddCommand(cmd)
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <db> <query>",
		Short: "Look up a single IP address or string against a database",
		Long: `The query command resolves one query string against a matchy
database, routing to the IP tree or the pattern matcher by the shape of
the query (spec §4.8, "lookup"). Exit status is 0 on match, 1 on no-match.

Example:
  matchy query threatintel.mmdb 203.0.113.7
  matchy query threatintel.mmdb evil.example.com --data --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(args)
		},
	}
}

func runQuery(args []string) error {
	dbPath, query := args[0], args[1]

	db, err := matchy.Open(dbPath, matchy.OpenOptions{})
	if err != nil {
		return fmt.Errorf("matchy: open %s: %w", dbPath, err)
	}
	defer db.Close()

	printVerbose("Querying %s against %s\n", query, dbPath)

	result, ok, err := db.Lookup(query)
	if err != nil {
		return fmt.Errorf("matchy: query: %w", err)
	}

	if jsonOut {
		out := map[string]interface{}{
			"query": query,
			"match": ok,
			"kind":  result.Kind.String(),
		}
		if ok && queryShowData {
			attachQueryData(out, result)
		}
		if err := printJSON(out); err != nil {
			return err
		}
	} else if !quiet {
		if !ok {
			printInfo("no match\n")
		} else {
			switch result.Kind {
			case matchy.ResultIP:
				printInfo("match: ip (prefix_len=%d)\n", result.PrefixLen)
				if queryShowData && result.HasData {
					printInfo("  data: %v\n", result.Data.Native())
				}
			case matchy.ResultPattern:
				printInfo("match: pattern (pattern_ids=%v)\n", result.PatternIDs)
				if queryShowData {
					for i, id := range result.PatternIDs {
						if result.PatternHas[i] {
							printInfo("  pattern %d data: %v\n", id, result.PatternData[i].Native())
						}
					}
				}
			}
		}
	}

	if !ok {
		return errNoMatch
	}
	return nil
}

func attachQueryData(out map[string]interface{}, result matchy.QueryResult) {
	switch result.Kind {
	case matchy.ResultIP:
		out["prefix_len"] = result.PrefixLen
		if result.HasData {
			out["data"] = result.Data.Native()
		}
	case matchy.ResultPattern:
		out["pattern_ids"] = result.PatternIDs
		data := make([]interface{}, len(result.PatternIDs))
		for i := range result.PatternIDs {
			if result.PatternHas[i] {
				data[i] = result.PatternData[i].Native()
			}
		}
		out["pattern_data"] = data
	}
}
