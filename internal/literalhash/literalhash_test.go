package literalhash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicHashTable(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	require.NoError(t, b.Add("test1", 0))
	require.NoError(t, b.Add("test2", 1))
	require.NoError(t, b.Add("test3", 2))

	data, err := b.Encode(map[uint32]uint32{0: 100, 1: 200, 2: 300})
	require.NoError(t, err)

	tbl, err := Open(data, CaseSensitive)
	require.NoError(t, err)

	id, ok := tbl.Lookup("test1")
	require.True(t, ok)
	require.Equal(t, uint32(0), id)

	id, ok = tbl.Lookup("test2")
	require.True(t, ok)
	require.Equal(t, uint32(1), id)

	_, ok = tbl.Lookup("test4")
	require.False(t, ok)

	off, ok := tbl.DataOffset(0)
	require.True(t, ok)
	require.Equal(t, uint32(100), off)

	off, ok = tbl.DataOffset(2)
	require.True(t, ok)
	require.Equal(t, uint32(300), off)
}

func TestCaseInsensitiveLookup(t *testing.T) {
	b := NewBuilder(CaseInsensitive)
	require.NoError(t, b.Add("Hello", 0))
	require.NoError(t, b.Add("World", 1))

	data, err := b.Encode(nil)
	require.NoError(t, err)

	tbl, err := Open(data, CaseInsensitive)
	require.NoError(t, err)

	id, ok := tbl.Lookup("HELLO")
	require.True(t, ok)
	require.Equal(t, uint32(0), id)

	id, ok = tbl.Lookup("world")
	require.True(t, ok)
	require.Equal(t, uint32(1), id)
}

func TestManyPatternsNoCollisionLoss(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	dataOffsets := make(map[uint32]uint32, 500)
	for i := 0; i < 500; i++ {
		require.NoError(t, b.Add(fmt.Sprintf("pattern_%d", i), uint32(i)))
		dataOffsets[uint32(i)] = uint32(i * 10)
	}

	data, err := b.Encode(dataOffsets)
	require.NoError(t, err)

	tbl, err := Open(data, CaseSensitive)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		id, ok := tbl.Lookup(fmt.Sprintf("pattern_%d", i))
		require.True(t, ok)
		require.Equal(t, uint32(i), id)

		off, ok := tbl.DataOffset(uint32(i))
		require.True(t, ok)
		require.Equal(t, uint32(i*10), off)
	}
}

func TestEncodeRejectsEmptyBuilder(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	_, err := b.Encode(nil)
	require.ErrorIs(t, err, ErrNoPatterns)
}

func TestAddRejectsEmptyLiteral(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	err := b.Add("", 0)
	require.ErrorIs(t, err, ErrEmptyPattern)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	data := make([]byte, headerSize)
	copy(data, "XXXX")
	_, err := Open(data, CaseSensitive)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestOpenRejectsTruncatedHeader(t *testing.T) {
	_, err := Open([]byte{1, 2, 3}, CaseSensitive)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestShardBitsAdaptToDatasetSize(t *testing.T) {
	require.Equal(t, uint32(4), shardBitsFor(100))
	require.Equal(t, uint32(5), shardBitsFor(50_000))
	require.Equal(t, uint32(6), shardBitsFor(150_000))
}

func TestLookupMissingMappingReturnsFalse(t *testing.T) {
	b := NewBuilder(CaseSensitive)
	require.NoError(t, b.Add("only", 7))

	data, err := b.Encode(map[uint32]uint32{})
	require.NoError(t, err)

	tbl, err := Open(data, CaseSensitive)
	require.NoError(t, err)

	id, ok := tbl.Lookup("only")
	require.True(t, ok)
	require.Equal(t, uint32(7), id)

	_, ok = tbl.DataOffset(7)
	require.False(t, ok)
}
