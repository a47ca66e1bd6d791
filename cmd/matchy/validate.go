package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matchydb/matchy/internal/validate"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/spf13/cobra"
)

// errValidationFailed signals a clean "errors found" exit (status 1, the
// report text was already printed) rather than a failure to run the
// validator itself.
var errValidationFailed = errors.New("matchy: validation found errors")

var validateLevel string

func init() {
	cmd := newValidateCmd()
	cmd.Flags().StringVar(&validateLevel, "level", "standard", "Validation depth: standard, strict, audit")
	rootCmd.AddCommand(cmd)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <db>",
		Short: "Validate a database's structural integrity",
		Long: `The validate command walks a matchy database's sections and reports
every structural finding instead of stopping at the first one (spec §6,
"validate"). Exit status is 0 if no errors were found, 1 otherwise.

Levels:
  standard - section markers, header magic, offset bounds
  strict   - adds AC trie and IP tree reachability checks
  audit    - adds literal-hash shard consistency and a count of decoded pattern data

Example:
  matchy validate threatintel.mmdb
  matchy validate threatintel.mmdb --level audit --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
}

func runValidate(args []string) error {
	dbPath := args[0]

	level, err := validate.ParseLevel(validateLevel)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		return fmt.Errorf("matchy: read %s: %w", dbPath, err)
	}

	printVerbose("Validating %s at level %s\n", dbPath, level)

	report := validate.Database(data, level)

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printInfo("Validating %s at level %s...\n\n", dbPath, level)
		for _, f := range report.Errors {
			printInfo("  ERROR   %s\n", f.String())
		}
		for _, f := range report.Warnings {
			printInfo("  WARNING %s\n", f.String())
		}
		if verbose {
			for _, f := range report.Info {
				printInfo("  INFO    %s\n", f.String())
			}
		}
		printInfo("\n%s\n", report.Summary())
		if report.Valid() {
			printInfo("Result: VALID\n")
		} else {
			printInfo("Result: INVALID\n")
		}
	}

	if !report.Valid() {
		return errValidationFailed
	}

	// Open for real to catch anything a byte-level walk can't see (a
	// mmap failure, for instance) even when the structural report is
	// clean.
	db, err := matchy.Open(dbPath, matchy.OpenOptions{})
	if err != nil {
		return fmt.Errorf("matchy: open %s: %w", dbPath, err)
	}
	return db.Close()
}
