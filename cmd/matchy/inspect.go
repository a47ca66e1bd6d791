package main

import (
	"fmt"

	"github.com/matchydb/matchy/internal/validate"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <db>",
		Short: "Print a database's metadata and structural summary",
		Long: `The inspect command opens a matchy database and prints its metadata
map (database type, description, format version) and structural facts
(node count, record size, whether pattern and literal-hash sections are
present) without performing any lookups.

Example:
  matchy inspect threatintel.mmdb
  matchy inspect threatintel.mmdb --json --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
}

func runInspect(args []string) error {
	dbPath := args[0]

	printVerbose("Opening %s\n", dbPath)

	db, err := matchy.Open(dbPath, matchy.OpenOptions{})
	if err != nil {
		return fmt.Errorf("matchy: open %s: %w", dbPath, err)
	}
	defer db.Close()

	info := db.Info()

	if jsonOut {
		return printJSON(info)
	}

	printInfo("Database: %s\n", dbPath)
	printInfo("  Type:             %s\n", orNone(info.DatabaseType))
	for lang, desc := range info.Description {
		printInfo("  Description[%s]:  %s\n", lang, desc)
	}
	printInfo("  Format version:   %d.%d\n", info.FormatMajor, info.FormatMinor)
	printInfo("  Build epoch:      %d\n", info.BuildEpoch)
	printInfo("  IP version:       %d\n", info.IPVersion)
	printInfo("  Node count:       %d\n", info.NodeCount)
	printInfo("  Record size:      %d bits\n", info.RecordSize)
	printInfo("  Has patterns:     %t\n", info.HasPatterns)
	printInfo("  Has literal hash: %t\n", info.HasLiteralHash)
	printInfo("  Case-insensitive: %t\n", info.CaseInsensitive)

	if verbose {
		report := db.Validate(validate.Standard)
		printInfo("\nStandard validation: %s\n", report.Summary())
	}

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
