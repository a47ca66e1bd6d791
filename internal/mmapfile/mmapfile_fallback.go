//go:build !unix && !windows

// Package mmapfile provides platform-specific helpers for memory-mapping
// database files so the Database facade can borrow from the OS page cache
// instead of copying the whole file into the Go heap.
package mmapfile

import "os"

// Map reads the entire file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
