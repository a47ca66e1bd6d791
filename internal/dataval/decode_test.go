package dataval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeScalarRoundTrip(t *testing.T) {
	cases := []Value{
		String("hello world"),
		String(""),
		BytesValue([]byte{0x01, 0x02, 0x03}),
		BoolValue(true),
		BoolValue(false),
		Uint16Value(0xBEEF),
		Uint32Value(0xDEADBEEF),
		Uint64Value(0x0102030405060708),
		Uint128Value(0x1, 0x2),
		Int32Value(-1),
		Int32Value(12345),
		Float32Value(3.5),
		Float64Value(-2.25),
	}
	for _, v := range cases {
		enc := NewEncoder()
		off := enc.Encode(v)
		got, err := Decode(enc.Bytes(), off)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDecodeArrayAndMap(t *testing.T) {
	enc := NewEncoder()
	m := MapValue([]MapEntry{
		{Key: "b", Value: Uint16Value(2)},
		{Key: "a", Value: Uint16Value(1)},
	})
	arr := ArrayValue([]Value{String("x"), String("y"), m})

	off := enc.Encode(arr)
	got, err := Decode(enc.Bytes(), off)
	require.NoError(t, err)
	require.Equal(t, KindArray, got.Kind)
	require.Len(t, got.Array, 3)
	require.Equal(t, "x", got.Array[0].Str)
	require.Equal(t, "y", got.Array[1].Str)

	gotMap := got.Array[2]
	require.Equal(t, KindMap, gotMap.Kind)
	require.Equal(t, []MapEntry{
		{Key: "a", Value: Uint16Value(1)},
		{Key: "b", Value: Uint16Value(2)},
	}, gotMap.Map)
}

func TestDecodeMapGet(t *testing.T) {
	enc := NewEncoder()
	m := MapValue([]MapEntry{{Key: "country", Value: String("US")}})
	off := enc.Encode(m)
	got, err := Decode(enc.Bytes(), off)
	require.NoError(t, err)

	v, ok := got.Get("country")
	require.True(t, ok)
	require.Equal(t, "US", v.Str)

	_, ok = got.Get("missing")
	require.False(t, ok)
}

func TestDecodeTruncatedBuffer(t *testing.T) {
	_, err := Decode([]byte{}, 0)
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Decode([]byte{byte(KindString) << 5}, 0)
	require.Error(t, err)
}

func TestDecodeInvalidUTF8(t *testing.T) {
	section := []byte{(byte(KindString) << 5) | 3, 0xff, 0xfe, 0xfd}
	_, err := Decode(section, 0)
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestDecodeNonStringMapKey(t *testing.T) {
	enc := NewEncoder()
	keyOff := enc.Encode(Uint16Value(1))
	valOff := enc.Encode(Uint16Value(2))
	ctrl := controlBytes(KindMap, 1)
	section := append(enc.Bytes(), ctrl...)
	section = append(section, encodePointerBytes(keyOff)...)
	section = append(section, encodePointerBytes(valOff)...)

	_, err := Decode(section, enc.Len())
	require.ErrorIs(t, err, ErrNonStringKey)
}

func TestDecodeRejectsForwardPointer(t *testing.T) {
	section := append(encodePointerBytes(10), make([]byte, 20)...)
	_, err := Decode(section, 0)
	require.ErrorIs(t, err, ErrForwardPointer)
}

func TestDecodeRejectsSelfPointer(t *testing.T) {
	section := encodePointerBytes(0)
	_, err := Decode(section, 0)
	require.ErrorIs(t, err, ErrForwardPointer)
}

func TestDecodeUnknownType(t *testing.T) {
	section := []byte{0x00, 0xFF}
	_, err := Decode(section, 0)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeDepthExceeded(t *testing.T) {
	enc := NewEncoder()
	target := enc.Encode(Uint16Value(7))

	var lastOff int
	for i := 0; i <= MaxDecodeDepth+1; i++ {
		lastOff = enc.Len()
		enc.buf = append(enc.buf, encodePointerBytes(target)...)
		target = lastOff
	}

	_, err := Decode(enc.Bytes(), lastOff)
	require.ErrorIs(t, err, ErrDepthExceeded)
}
