package ac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildAutomaton(t *testing.T, mode MatchMode, literals []string) (*Automaton, map[string]uint32) {
	t.Helper()
	b := NewBuilder(mode)
	ids := make(map[string]uint32, len(literals))
	for _, lit := range literals {
		id, err := b.Add(lit)
		require.NoError(t, err)
		ids[lit] = id
	}
	_, err := b.Build()
	require.NoError(t, err)

	data := b.Encode()
	a, err := Open(data)
	require.NoError(t, err)
	return a, ids
}

func TestFindLiteralIDsBasic(t *testing.T) {
	a, ids := buildAutomaton(t, CaseSensitive, []string{"he", "she", "his", "hers"})

	got, err := a.FindLiteralIDs("she sells his shells")
	require.NoError(t, err)
	require.Contains(t, got, ids["he"])
	require.Contains(t, got, ids["she"])
	require.Contains(t, got, ids["his"])
}

func TestFindLiteralIDsCaseInsensitive(t *testing.T) {
	a, ids := buildAutomaton(t, CaseInsensitive, []string{"Hello", "World"})

	got, err := a.FindLiteralIDs("hello world")
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{ids["Hello"], ids["World"]}, got)
}

func TestFindLiteralIDsNoMatch(t *testing.T) {
	a, _ := buildAutomaton(t, CaseSensitive, []string{"hello", "world"})

	got, err := a.FindLiteralIDs("nothing here")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFindLiteralIDsOverlapping(t *testing.T) {
	a, ids := buildAutomaton(t, CaseSensitive, []string{"test", "testing", "est"})

	got, err := a.FindLiteralIDs("testing")
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{ids["test"], ids["testing"], ids["est"]}, got)
}

func TestFindLiteralIDsResultsAreSortedAndDeduped(t *testing.T) {
	a, _ := buildAutomaton(t, CaseSensitive, []string{"aa", "a"})

	got, err := a.FindLiteralIDs("aaaa")
	require.NoError(t, err)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1], got[i])
	}
}

func TestDenseEncodingUsedAboveNineTransitions(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	// Ten single-character literals from the root force a 10-way branch,
	// which must use the Dense encoding at the root node.
	for _, c := range "abcdefghij" {
		_, err := b.Add(string(c))
		require.NoError(t, err)
	}
	_, err := b.Build()
	require.NoError(t, err)
	data := b.Encode()

	a, err := Open(data)
	require.NoError(t, err)
	rootNode, err := a.readNode(rootOffset)
	require.NoError(t, err)
	require.Equal(t, EncodingDense, rootNode.encoding)
}

func TestSparseEncodingUsedForFewTransitions(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	for _, c := range "abc" {
		_, err := b.Add(string(c))
		require.NoError(t, err)
	}
	_, err := b.Build()
	require.NoError(t, err)
	data := b.Encode()

	a, err := Open(data)
	require.NoError(t, err)
	rootNode, err := a.readNode(rootOffset)
	require.NoError(t, err)
	require.Equal(t, EncodingSparse, rootNode.encoding)
}

func TestSingleEncodingUsedForOneTransition(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.Add("only")
	require.NoError(t, err)
	_, err = b.Build()
	require.NoError(t, err)
	data := b.Encode()

	a, err := Open(data)
	require.NoError(t, err)
	rootNode, err := a.readNode(rootOffset)
	require.NoError(t, err)
	require.Equal(t, EncodingSingle, rootNode.encoding)
}

func TestFindLiteralMatchesReportsEndPositions(t *testing.T) {
	a, ids := buildAutomaton(t, CaseSensitive, []string{".com", ".co.uk"})

	got, err := a.FindLiteralMatches("visit example.com today")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, ids[".com"], got[0].LiteralID)
	require.Equal(t, len("visit example.com"), got[0].End)
}

func TestValidatePassesOnWellFormedAutomaton(t *testing.T) {
	a, _ := buildAutomaton(t, CaseSensitive, []string{"he", "she", "his", "hers"})
	require.NoError(t, a.Validate())
}

func TestBuildRejectsEmptyLiteral(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.Add("")
	require.ErrorIs(t, err, ErrEmptyLiteral)
}

func TestBuildRejectsNoLiterals(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrNoLiterals)
}
