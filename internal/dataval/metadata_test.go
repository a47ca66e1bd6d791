package dataval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeDescriptionRoundTrip(t *testing.T) {
	by := map[string]string{
		"en":    "matchy pattern database",
		"fr":    "base de données matchy",
		"zh-CN": "matchy 模式数据库",
	}
	v, err := EncodeDescription(by)
	require.NoError(t, err)

	enc := NewEncoder()
	off := enc.Encode(v)
	got, err := Decode(enc.Bytes(), off)
	require.NoError(t, err)

	back, err := DecodeDescription(got)
	require.NoError(t, err)
	require.Equal(t, by, back)
}

func TestEncodeDescriptionRejectsInvalidTag(t *testing.T) {
	_, err := EncodeDescription(map[string]string{"not a tag!!": "x"})
	require.ErrorIs(t, err, ErrInvalidLanguageTag)
}

func TestDecodeDescriptionRejectsNonMap(t *testing.T) {
	_, err := DecodeDescription(String("oops"))
	require.Error(t, err)
}
