//go:build !unix

package mmap

import (
	"io"
	"os"
)

// Fallback for platforms without a wired mmap syscall: read the whole file.
// Spill files are bounded by partition size, so this stays reasonable.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func([]byte) error { return nil }, nil
}
