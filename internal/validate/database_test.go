package validate_test

import (
	"net/netip"
	"testing"

	"github.com/matchydb/matchy/internal/dataval"
	"github.com/matchydb/matchy/internal/validate"
	"github.com/matchydb/matchy/internal/wire"
	"github.com/matchydb/matchy/pkg/matchy"
	"github.com/stretchr/testify/require"
)

func buildImage(t *testing.T) []byte {
	t.Helper()
	b, err := matchy.NewBuilder(matchy.DefaultBuildOptions())
	require.NoError(t, err)
	require.NoError(t, b.AddCIDR(netip.MustParsePrefix("10.0.0.0/8"), dataval.String("internal")))
	require.NoError(t, b.AddPatternWithData("evil.example", dataval.String("known-bad"), true))
	require.NoError(t, b.AddPattern("*.evil.example"))
	image, err := b.Build()
	require.NoError(t, err)
	return image
}

func TestValidateStandardPassesOnWellFormedImage(t *testing.T) {
	image := buildImage(t)
	r := validate.Database(image, validate.Standard)
	require.True(t, r.Valid(), "errors: %v", r.Errors)
	require.Equal(t, 2, r.Stats.PatternCount)
	require.True(t, r.Stats.HasPatterns)
}

func TestValidateStrictPassesAndReportsReachability(t *testing.T) {
	image := buildImage(t)
	r := validate.Database(image, validate.Strict)
	require.True(t, r.Valid(), "errors: %v", r.Errors)
	require.NotEmpty(t, r.Info)
}

func TestValidateAuditPassesAndChecksLiteralShards(t *testing.T) {
	image := buildImage(t)
	r := validate.Database(image, validate.Audit)
	require.True(t, r.Valid(), "errors: %v", r.Errors)

	var sawShardCheck bool
	for _, f := range r.Info {
		if f.Type == "LiteralHashShards" {
			sawShardCheck = true
		}
	}
	require.True(t, sawShardCheck)
}

func TestValidateReportsMissingMetadataMarker(t *testing.T) {
	r := validate.Database([]byte("not a matchy database"), validate.Standard)
	require.False(t, r.Valid())
	require.Equal(t, "MetadataMarker", r.Errors[0].Type)
}

func TestValidateRejectsImageTruncatedInPatternSection(t *testing.T) {
	image := buildImage(t)
	idx := indexOf(image, wire.PatternSectionMarker)
	require.GreaterOrEqual(t, idx, 0)
	truncated := image[:idx+len(wire.PatternSectionMarker)+4]

	r := validate.Database(truncated, validate.Standard)
	require.False(t, r.Valid())
}

func TestParseLevel(t *testing.T) {
	lvl, err := validate.ParseLevel("strict")
	require.NoError(t, err)
	require.Equal(t, validate.Strict, lvl)

	_, err = validate.ParseLevel("bogus")
	require.Error(t, err)
}

func indexOf(haystack, needle []byte) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
