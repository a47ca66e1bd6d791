package dataval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDedupScalarsShareOffset(t *testing.T) {
	enc := NewEncoder()
	off1 := enc.Encode(String("US"))
	off2 := enc.Encode(String("US"))
	require.Equal(t, off1, off2)
	require.Less(t, enc.Len(), 100)
}

func TestEncodeDedupNestedMaps(t *testing.T) {
	enc := NewEncoder()
	mk := func() Value {
		return MapValue([]MapEntry{
			{Key: "country", Value: String("US")},
			{Key: "city", Value: String("Springfield")},
		})
	}

	off1 := enc.Encode(mk())
	sizeAfterFirst := enc.Len()
	off2 := enc.Encode(mk())
	sizeAfterSecond := enc.Len()

	require.Equal(t, off1, off2)
	require.Equal(t, sizeAfterFirst, sizeAfterSecond, "identical map encodes to zero new bytes")
}

func TestEncodeDistinctValuesDoNotCollide(t *testing.T) {
	enc := NewEncoder()
	off1 := enc.Encode(String("US"))
	off2 := enc.Encode(String("CA"))
	require.NotEqual(t, off1, off2)

	v1, err := Decode(enc.Bytes(), off1)
	require.NoError(t, err)
	require.Equal(t, "US", v1.Str)

	v2, err := Decode(enc.Bytes(), off2)
	require.NoError(t, err)
	require.Equal(t, "CA", v2.Str)
}

func TestEncodeNoForwardPointers(t *testing.T) {
	enc := NewEncoder()
	arr := ArrayValue([]Value{String("a"), String("b"), String("c")})
	off := enc.Encode(arr)

	got, err := Decode(enc.Bytes(), off)
	require.NoError(t, err)
	require.Len(t, got.Array, 3)
	require.Equal(t, "a", got.Array[0].Str)
	require.Equal(t, "b", got.Array[1].Str)
	require.Equal(t, "c", got.Array[2].Str)
}

func TestEncodeLargeBytesUsesMultiByteSizeField(t *testing.T) {
	big := make([]byte, 500)
	for i := range big {
		big[i] = 'a'
	}
	enc := NewEncoder()
	off := enc.Encode(BytesValue(big))

	got, err := Decode(enc.Bytes(), off)
	require.NoError(t, err)
	require.Equal(t, big, got.Bytes)
}

func TestEncodePointerSizeClasses(t *testing.T) {
	cases := []int{0, 2047, 2048, 100000, 600000, 1 << 28}
	for _, offset := range cases {
		pb := encodePointerBytes(offset)
		require.NotEmpty(t, pb)
	}
}

func TestControlBytesRoundTripsThroughDecodeHeader(t *testing.T) {
	sizes := []int{0, 1, 28, 29, 284, 285, 65820, 65821}
	for _, size := range sizes {
		cb := controlBytes(KindBytes, size)
		section := append(append([]byte(nil), cb...), make([]byte, size)...)
		h, err := decodeHeader(section, 0)
		require.NoError(t, err)
		require.Equal(t, size, h.size)
		require.Equal(t, KindBytes, h.kind)
	}
}
