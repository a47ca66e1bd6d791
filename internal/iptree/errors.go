package iptree

import "errors"

var (
	ErrPrefixTooLong  = errors.New("iptree: prefix length exceeds address width")
	ErrWrongFamily    = errors.New("iptree: address family does not match tree version")
	ErrInvalidAddr    = errors.New("iptree: invalid address")
	ErrNodeOutOfRange = errors.New("iptree: node index exceeds node count")
	ErrTruncatedTree  = errors.New("iptree: record read exceeds tree size")
	ErrRecordUnderflow = errors.New("iptree: data pointer underflows node_count+separator")
	ErrUnsupportedWidth = errors.New("iptree: unsupported record width")
)
