package paraglob

import (
	"testing"

	"github.com/matchydb/matchy/internal/dataval"
	"github.com/stretchr/testify/require"
)

func buildParaglob(t *testing.T, mode MatchMode, patterns []string) (*Paraglob, map[string]uint32) {
	t.Helper()
	b := NewBuilder(mode)
	ids := make(map[string]uint32, len(patterns))
	for _, p := range patterns {
		id, err := b.AddPattern(p)
		require.NoError(t, err)
		ids[p] = id
	}
	data, err := b.Build()
	require.NoError(t, err)

	pg, err := Open(data, mode)
	require.NoError(t, err)
	return pg, ids
}

func TestFindAllLiteralMatch(t *testing.T) {
	pg, ids := buildParaglob(t, CaseSensitive, []string{"evil.com", "good.com"})
	got, err := pg.FindAll("visited evil.com today")
	require.NoError(t, err)
	require.Equal(t, []uint32{ids["evil.com"]}, got)
}

func TestFindAllGlobMatch(t *testing.T) {
	pg, ids := buildParaglob(t, CaseSensitive, []string{"*.evil.com", "*.good.com"})
	got, err := pg.FindAll("mail.evil.com")
	require.NoError(t, err)
	require.Equal(t, []uint32{ids["*.evil.com"]}, got)
}

func TestFindAllPureWildcardAlwaysChecked(t *testing.T) {
	pg, ids := buildParaglob(t, CaseSensitive, []string{"*"})
	got, err := pg.FindAll("anything at all")
	require.NoError(t, err)
	require.Equal(t, []uint32{ids["*"]}, got)
}

func TestFindAllNoMatch(t *testing.T) {
	pg, _ := buildParaglob(t, CaseSensitive, []string{"evil.com", "*.malware.net"})
	got, err := pg.FindAll("nothing suspicious here")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFindAllCaseInsensitive(t *testing.T) {
	pg, ids := buildParaglob(t, CaseInsensitive, []string{"EVIL.COM"})
	got, err := pg.FindAll("visited evil.com today")
	require.NoError(t, err)
	require.Equal(t, []uint32{ids["EVIL.COM"]}, got)
}

func TestFindAllMultipleMatches(t *testing.T) {
	pg, ids := buildParaglob(t, CaseSensitive, []string{"evil.com", "*.com", "*"})
	got, err := pg.FindAll("sub.evil.com")
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{ids["evil.com"], ids["*.com"], ids["*"]}, got)
}

func TestAddPatternDuplicateReturnsSameID(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	id1, err := b.AddPattern("evil.com")
	require.NoError(t, err)
	id2, err := b.AddPattern("evil.com")
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Equal(t, 1, b.Len())
}

func TestAddPatternRejectsEmpty(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.AddPattern("")
	require.ErrorIs(t, err, ErrEmptyPattern)
}

func TestBuildRejectsNoPatterns(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrNoPatterns)
}

func TestBuildRejectsInvalidGlob(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.AddPattern("[unterminated")
	require.NoError(t, err)
	_, err = b.Build()
	require.Error(t, err)
}

func TestPatternDataRoundTrip(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	id, err := b.AddPatternWithData("evil.com", dataval.String("high"), true)
	require.NoError(t, err)

	data, err := b.Build()
	require.NoError(t, err)

	pg, err := Open(data, CaseSensitive)
	require.NoError(t, err)

	v, ok := pg.GetPatternData(id)
	require.True(t, ok)
	require.Equal(t, "high", v.Str)

	text, ok := pg.GetPattern(id)
	require.True(t, ok)
	require.Equal(t, "evil.com", text)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	copy(data, "XXXX")
	_, err := Open(data, CaseSensitive)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestExtractLiteralsSkipsWildcardsAndClasses(t *testing.T) {
	got := extractLiterals("prefix[0-9]*suffix?end")
	require.Equal(t, []string{"prefix", "suffix", "end"}, got)
}

func TestIsGlobPatternDetectsEscaping(t *testing.T) {
	require.False(t, isGlobPattern(`literal\*text`))
	require.True(t, isGlobPattern("literal*text"))
}
