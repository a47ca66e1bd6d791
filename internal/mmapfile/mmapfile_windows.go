//go:build windows

package mmapfile

import (
	"os"
)

// Map reads the file at path into memory. A full mmap-backed implementation
// for Windows is not provided; the whole file is read eagerly instead.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
