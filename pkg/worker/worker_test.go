package worker_test

import (
	"net/netip"
	"testing"

	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/matchydb/matchy/pkg/worker"
	"github.com/stretchr/testify/require"
)

func buildTestDatabase(t *testing.T) *matchy.Database {
	t.Helper()
	b, err := matchy.NewBuilder(matchy.DefaultBuildOptions())
	require.NoError(t, err)
	require.NoError(t, b.AddCIDR(netip.MustParsePrefix("203.0.113.0/24"), dataval.String("scanner-net")))
	require.NoError(t, b.AddPatternWithData("evil.example.com", dataval.String("known-bad"), true))
	image, err := b.Build()
	require.NoError(t, err)
	db, err := matchy.OpenBytes(image, matchy.OpenOptions{})
	require.NoError(t, err)
	return db
}

func TestProcessBytesFindsIPAndPatternMatches(t *testing.T) {
	db := buildTestDatabase(t)
	w := worker.New(db, worker.DefaultOptions())

	text := []byte("connection from 203.0.113.7 to evil.example.com failed")
	matches, err := w.ProcessBytes(text)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	var sawIP, sawPattern bool
	for _, m := range matches {
		switch m.MatchType {
		case worker.MatchTypeIP:
			sawIP = true
			require.Equal(t, "203.0.113.7", m.MatchedText)
			require.Equal(t, 24, m.PrefixLen)
		case worker.MatchTypePattern:
			sawPattern = true
			require.Equal(t, "evil.example.com", m.MatchedText)
			require.Equal(t, "known-bad", m.Data)
		}
	}
	require.True(t, sawIP)
	require.True(t, sawPattern)
}

func TestProcessLinesTracksLineNumbers(t *testing.T) {
	db := buildTestDatabase(t)
	w := worker.New(db, worker.DefaultOptions())

	data := []byte("nothing here\ntalking to evil.example.com now\nstill clean\n")
	batch := worker.NewLineBatch("test.log", 1, data)

	matches, err := w.ProcessLines(batch)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, 2, matches[0].LineNumber)
	require.Equal(t, "test.log", matches[0].SourceFile)
	require.Equal(t, "talking to evil.example.com now", matches[0].InputLine)
}

func TestProcessBytesNoMatches(t *testing.T) {
	db := buildTestDatabase(t)
	w := worker.New(db, worker.DefaultOptions())

	matches, err := w.ProcessBytes([]byte("completely unrelated text"))
	require.NoError(t, err)
	require.Empty(t, matches)
}
