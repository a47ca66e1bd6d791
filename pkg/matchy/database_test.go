package matchy

import (
	"net/netip"
	"testing"

	"github.com/matchydb/matchy/internal/dataval"
	"github.com/stretchr/testify/require"
)

func buildTestDatabase(t *testing.T, opts BuildOptions) *Database {
	t.Helper()
	b, err := NewBuilder(opts)
	require.NoError(t, err)

	require.NoError(t, b.AddCIDR(netip.MustParsePrefix("10.0.0.0/8"), dataval.String("internal")))
	require.NoError(t, b.AddCIDR(netip.MustParsePrefix("10.1.0.0/16"), dataval.String("internal-dc1")))
	require.NoError(t, b.AddCIDR(netip.MustParsePrefix("192.168.1.1/32"), dataval.String("host")))

	require.NoError(t, b.AddPatternWithData("evil.example", dataval.String("known-bad"), true))
	require.NoError(t, b.AddPatternWithData("*.evil.example", dataval.String("known-bad-subdomain"), true))
	require.NoError(t, b.AddPattern("harmless.example"))

	image, err := b.Build()
	require.NoError(t, err)

	db, err := OpenBytes(image, OpenOptions{})
	require.NoError(t, err)
	return db
}

func TestDatabaseInfoRoundTrip(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.DatabaseType = "matchy-test"
	opts.Description = map[string]string{"en": "unit test database"}
	db := buildTestDatabase(t, opts)

	info := db.Info()
	require.Equal(t, "matchy-test", info.DatabaseType)
	require.Equal(t, "unit test database", info.Description["en"])
	require.True(t, info.HasPatterns)
	require.True(t, info.HasLiteralHash)
	require.Equal(t, 6, info.IPVersion)
	require.Equal(t, opts.RecordWidth, info.RecordSize)
}

func TestLookupIPLongestPrefixMatch(t *testing.T) {
	db := buildTestDatabase(t, DefaultBuildOptions())

	v, prefixLen, ok, err := db.LookupIP(netip.MustParseAddr("10.1.2.3"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 16, prefixLen)
	require.Equal(t, "internal-dc1", v.Str)

	v, prefixLen, ok, err = db.LookupIP(netip.MustParseAddr("10.2.2.3"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 8, prefixLen)
	require.Equal(t, "internal", v.Str)

	_, _, ok, err = db.LookupIP(netip.MustParseAddr("8.8.8.8"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookupPatternExactAndGlob(t *testing.T) {
	db := buildTestDatabase(t, DefaultBuildOptions())

	ids, data, has, err := db.LookupPattern("evil.example")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.True(t, has[0])
	require.Equal(t, "known-bad", data[0].Str)

	// The literal "evil.example" also matches here, by substring.
	ids, data, has, err = db.LookupPattern("mail.evil.example")
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.True(t, has[1])
	require.Equal(t, "known-bad-subdomain", data[1].Str)

	ids, _, _, err = db.LookupPattern("harmless.example")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	ids, _, _, err = db.LookupPattern("unrelated.example")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestLookupRoutesByQueryShape(t *testing.T) {
	db := buildTestDatabase(t, DefaultBuildOptions())

	res, ok, err := db.Lookup("10.1.2.3")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ResultIP, res.Kind)
	require.Equal(t, "internal-dc1", res.Data.Str)

	res, ok, err = db.Lookup("evil.example")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ResultPattern, res.Kind)
	require.Len(t, res.PatternIDs, 1)
	require.Equal(t, "known-bad", res.PatternData[0].Str)
}

func TestCaseInsensitivePatternMatch(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.CaseInsensitive = true
	b, err := NewBuilder(opts)
	require.NoError(t, err)
	require.NoError(t, b.AddPattern("Evil.Example"))
	image, err := b.Build()
	require.NoError(t, err)

	db, err := OpenBytes(image, OpenOptions{})
	require.NoError(t, err)

	ids, _, _, err := db.LookupPattern("EVIL.EXAMPLE")
	require.NoError(t, err)
	require.Len(t, ids, 1)
}
