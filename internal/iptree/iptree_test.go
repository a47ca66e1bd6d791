package iptree

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildAndLookup(t *testing.T, version Version, recordWidth int, routes map[string]uint32, query string) (uint32, int, bool) {
	t.Helper()
	b := NewBuilder(version, recordWidth)
	for cidr, off := range routes {
		prefix := netip.MustParsePrefix(cidr)
		err := b.Insert(prefix.Addr(), prefix.Bits(), off)
		require.NoError(t, err)
	}
	data, nodeCount, err := b.Encode()
	require.NoError(t, err)

	tree, err := NewTree(data, nodeCount, recordWidth, version)
	require.NoError(t, err)

	addr := netip.MustParseAddr(query)
	off, prefixLen, ok, err := tree.Lookup(addr)
	require.NoError(t, err)
	return off, prefixLen, ok
}

func TestLookupSingleRoute(t *testing.T) {
	off, prefixLen, ok := buildAndLookup(t, V4, 24, map[string]uint32{
		"192.168.0.0/16": 100,
	}, "192.168.1.42")
	require.True(t, ok)
	require.Equal(t, uint32(100), off)
	require.Equal(t, 16, prefixLen)
}

func TestLookupLongestPrefixWins(t *testing.T) {
	off, prefixLen, ok := buildAndLookup(t, V4, 24, map[string]uint32{
		"10.0.0.0/8":    8,
		"10.1.2.0/24":   24,
	}, "10.1.2.50")
	require.True(t, ok)
	require.Equal(t, uint32(24), off)
	require.Equal(t, 24, prefixLen)
}

func TestLookupFallsBackToLessSpecific(t *testing.T) {
	off, prefixLen, ok := buildAndLookup(t, V4, 24, map[string]uint32{
		"10.0.0.0/8":  8,
		"10.1.2.0/24": 24,
	}, "10.5.5.5")
	require.True(t, ok)
	require.Equal(t, uint32(8), off)
	require.Equal(t, 8, prefixLen)
}

func TestLookupMiss(t *testing.T) {
	_, _, ok := buildAndLookup(t, V4, 24, map[string]uint32{
		"10.0.0.0/8": 1,
	}, "192.168.1.1")
	require.False(t, ok)
}

func TestInsertMoreSpecificAfterLessSpecific(t *testing.T) {
	b := NewBuilder(V4, 24)
	require.NoError(t, b.Insert(netip.MustParseAddr("10.0.0.0"), 8, 1))
	require.NoError(t, b.Insert(netip.MustParseAddr("10.1.2.0"), 24, 2))

	data, nodeCount, err := b.Encode()
	require.NoError(t, err)
	tree, err := NewTree(data, nodeCount, 24, V4)
	require.NoError(t, err)

	off, prefixLen, ok, err := tree.Lookup(netip.MustParseAddr("10.1.2.200"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(2), off)
	require.Equal(t, 24, prefixLen)

	off, prefixLen, ok, err = tree.Lookup(netip.MustParseAddr("10.1.3.1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(1), off)
	require.Equal(t, 8, prefixLen)
}

func TestInsertBackfillPreservesMoreSpecific(t *testing.T) {
	b := NewBuilder(V4, 24)
	// Insert the more specific /24 first, then the less specific /8 —
	// back-fill must not clobber the existing /24 match.
	require.NoError(t, b.Insert(netip.MustParseAddr("10.1.2.0"), 24, 2))
	require.NoError(t, b.Insert(netip.MustParseAddr("10.0.0.0"), 8, 1))

	data, nodeCount, err := b.Encode()
	require.NoError(t, err)
	tree, err := NewTree(data, nodeCount, 24, V4)
	require.NoError(t, err)

	off, prefixLen, ok, err := tree.Lookup(netip.MustParseAddr("10.1.2.200"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(2), off)
	require.Equal(t, 24, prefixLen)

	off, prefixLen, ok, err = tree.Lookup(netip.MustParseAddr("10.9.9.9"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(1), off)
	require.Equal(t, 8, prefixLen)
}

func TestIPv4InIPv6Tree(t *testing.T) {
	b := NewBuilder(V6, 28)
	require.NoError(t, b.Insert(netip.MustParseAddr("192.168.0.0"), 16, 42))

	data, nodeCount, err := b.Encode()
	require.NoError(t, err)
	tree, err := NewTree(data, nodeCount, 28, V6)
	require.NoError(t, err)

	off, prefixLen, ok, err := tree.Lookup(netip.MustParseAddr("192.168.5.5"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(42), off)
	require.Equal(t, 16, prefixLen)
}

func TestIPv6Route(t *testing.T) {
	b := NewBuilder(V6, 32)
	require.NoError(t, b.Insert(netip.MustParseAddr("2001:db8::"), 32, 7))

	data, nodeCount, err := b.Encode()
	require.NoError(t, err)
	tree, err := NewTree(data, nodeCount, 32, V6)
	require.NoError(t, err)

	off, prefixLen, ok, err := tree.Lookup(netip.MustParseAddr("2001:db8::1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(7), off)
	require.Equal(t, 32, prefixLen)
}

func TestRecordWidths24_28_32Agree(t *testing.T) {
	routes := map[string]uint32{
		"172.16.0.0/12": 5,
		"172.16.5.0/24": 9,
	}
	for _, width := range []int{24, 28, 32} {
		off, prefixLen, ok := buildAndLookup(t, V4, width, routes, "172.16.5.77")
		require.True(t, ok, "width=%d", width)
		require.Equal(t, uint32(9), off, "width=%d", width)
		require.Equal(t, 24, prefixLen, "width=%d", width)
	}
}

func TestInsertRejectsIPv6IntoIPv4OnlyTree(t *testing.T) {
	b := NewBuilder(V4, 24)
	err := b.Insert(netip.MustParseAddr("2001:db8::1"), 32, 0)
	require.ErrorIs(t, err, ErrWrongFamily)
}

func TestInsertRejectsOversizedPrefix(t *testing.T) {
	b := NewBuilder(V4, 24)
	err := b.Insert(netip.MustParseAddr("10.0.0.0"), 33, 0)
	require.ErrorIs(t, err, ErrPrefixTooLong)
}
