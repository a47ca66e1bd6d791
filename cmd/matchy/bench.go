package main

import (
	"fmt"
	"math/rand"
	"net/netip"
	"time"

	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/spf13/cobra"
)

var (
	benchEntryCount     int
	benchQueryCount     int
	benchLoadIterations int
	benchPatternStyle   string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchEntryCount, "count", "n", 10000, "Number of entries to build")
	cmd.Flags().IntVar(&benchQueryCount, "query-count", 100000, "Number of lookups to time per load iteration")
	cmd.Flags().IntVar(&benchLoadIterations, "load-iterations", 1, "Number of times to rebuild the database and repeat the query timing")
	cmd.Flags().StringVar(&benchPatternStyle, "pattern-style", "suffix", "Pattern shape for 'bench pattern': suffix, prefix, exact")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "bench {ip|literal|pattern}",
		Short:     "Benchmark database build and lookup throughput",
		Long:      `The bench command builds a synthetic in-memory database and times its lookup throughput for one of the three query families.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ip", "literal", "pattern"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(args)
		},
	}
}

func runBench(args []string) error {
	kind := args[0]

	var buildElapsed, queryElapsed time.Duration
	var totalQueries int

	for i := 0; i < max(1, benchLoadIterations); i++ {
		start := time.Now()
		db, queries, err := buildBenchDatabase(kind)
		if err != nil {
			return err
		}
		buildElapsed += time.Since(start)

		start = time.Now()
		for q := 0; q < benchQueryCount; q++ {
			query := queries[q%len(queries)]
			if _, _, err := db.Lookup(query); err != nil {
				db.Close()
				return fmt.Errorf("matchy: bench: %w", err)
			}
		}
		queryElapsed += time.Since(start)
		totalQueries += benchQueryCount

		if err := db.Close(); err != nil {
			return err
		}
	}

	printInfo("Benchmark: %s\n", kind)
	printInfo("  Entries:          %d\n", benchEntryCount)
	printInfo("  Load iterations:  %d\n", benchLoadIterations)
	printInfo("  Build time:       %s\n", buildElapsed)
	printInfo("  Query count:      %d\n", totalQueries)
	printInfo("  Query time:       %s\n", queryElapsed)
	if queryElapsed > 0 {
		printInfo("  Queries/sec:      %.0f\n", float64(totalQueries)/queryElapsed.Seconds())
	}
	printInfo("Benchmark complete\n")
	return nil
}

func buildBenchDatabase(kind string) (db *matchy.Database, queries []string, err error) {
	b, err := matchy.NewBuilder(matchy.DefaultBuildOptions())
	if err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(1))
	queries = make([]string, 0, benchEntryCount)

	switch kind {
	case "ip":
		for i := 0; i < benchEntryCount; i++ {
			addr := netip.AddrFrom4([4]byte{10, byte(i >> 16), byte(i >> 8), byte(i)})
			prefix := netip.PrefixFrom(addr, 32)
			if err := b.AddCIDR(prefix, dataval.String("route")); err != nil {
				return nil, nil, err
			}
			queries = append(queries, addr.String())
		}
	case "literal":
		for i := 0; i < benchEntryCount; i++ {
			lit := fmt.Sprintf("bad-%d.example.com", i)
			if err := b.AddPatternWithData(lit, dataval.String("known-bad"), true); err != nil {
				return nil, nil, err
			}
			queries = append(queries, lit)
		}
	case "pattern":
		for i := 0; i < benchEntryCount; i++ {
			pattern, query := benchPatternPair(benchPatternStyle, i)
			if err := b.AddPatternWithData(pattern, dataval.String("known-bad"), true); err != nil {
				return nil, nil, err
			}
			queries = append(queries, query)
		}
	default:
		return nil, nil, fmt.Errorf("unknown bench target %q (want ip, literal, or pattern)", kind)
	}

	// Shuffle so query order doesn't track insertion order.
	rng.Shuffle(len(queries), func(i, j int) { queries[i], queries[j] = queries[j], queries[i] })

	image, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	db, err = matchy.OpenBytes(image, matchy.OpenOptions{})
	if err != nil {
		return nil, nil, err
	}
	return db, queries, nil
}

func benchPatternPair(style string, i int) (pattern, query string) {
	switch style {
	case "prefix":
		return fmt.Sprintf("bad-%d-*", i), fmt.Sprintf("bad-%d-host.example.com", i)
	case "exact":
		lit := fmt.Sprintf("bad-%d.example.com", i)
		return lit, lit
	default: // suffix
		return fmt.Sprintf("*.bad-%d.example.com", i), fmt.Sprintf("host.bad-%d.example.com", i)
	}
}
