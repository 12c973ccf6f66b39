// Package spill materializes dataset partitions on disk.
//
// Each partition is written as one file: a small header followed by the
// codec-encoded payload, block-compressed with LZ4 (fast, default) or zstd
// (better ratio). Reads go through a read-only memory mapping so repeated
// dataset evaluations decompress straight off the page cache instead of
// re-running upstream lineage.
package spill

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/flowgo/internal/mmap"
)

// Compression selects the algorithm used for spilled partitions.
type Compression uint8

const (
	// CompressionNone stores partitions uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, default).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio, slower).
	CompressionZSTD Compression = 2
)

// Header layout: [magic uint16][compression uint8][pad uint8][uncompressed uint32]
// A compression byte of CompressionNone means the payload is stored raw,
// regardless of what the store was configured with (incompressible data).
const (
	headerSize  = 8
	headerMagic = 0x5f50 // "P_"
)

var (
	// ErrCorrupt is returned when a spill file fails structural checks.
	ErrCorrupt = errors.New("spill: corrupt partition file")
)

// zstd encoder/decoder pools, shared across stores.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Store writes and reads materialized partitions under a single directory.
// It is safe for concurrent use by independent partitions.
type Store struct {
	dir         string
	compression Compression
}

// NewStore creates (if needed) the spill directory and returns a store.
func NewStore(dir string, compression Compression) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("spill: create dir: %w", err)
	}
	return &Store{dir: dir, compression: compression}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".part")
}

// Write stores data under name, replacing any previous contents.
func (s *Store) Write(name string, data []byte) error {
	comp := s.compression
	payload, err := compress(data, comp)
	if err != nil {
		return err
	}
	// Incompressible data is stored raw.
	if payload == nil || len(payload) >= len(data) {
		comp = CompressionNone
		payload = data
	}

	buf := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint16(buf[0:], headerMagic)
	buf[2] = byte(comp)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(data)))
	copy(buf[headerSize:], payload)

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("spill: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("spill: publish %s: %w", name, err)
	}
	return nil
}

// Read returns the decompressed contents stored under name.
func (s *Store) Read(name string) ([]byte, error) {
	m, err := mmap.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("spill: open %s: %w", name, err)
	}
	defer m.Close()

	raw := m.Bytes()
	if len(raw) < headerSize {
		return nil, ErrCorrupt
	}
	if binary.LittleEndian.Uint16(raw[0:]) != headerMagic {
		return nil, ErrCorrupt
	}
	comp := Compression(raw[2])
	size := binary.LittleEndian.Uint32(raw[4:])
	payload := raw[headerSize:]

	out, err := decompress(payload, int(size), comp)
	if err != nil {
		return nil, fmt.Errorf("spill: read %s: %w", name, err)
	}
	return out, nil
}

// Remove deletes the partition stored under name, if present.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func compress(data []byte, comp Compression) ([]byte, error) {
	if comp == CompressionNone || len(data) == 0 {
		return nil, nil
	}

	switch comp {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		dst := make([]byte, bound)
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		return dst[:n], nil

	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil

	default:
		return nil, fmt.Errorf("spill: unknown compression %d", comp)
	}
}

func decompress(payload []byte, size int, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		if len(payload) != size {
			return nil, ErrCorrupt
		}
		// Copy out of the mapping so the result outlives it.
		out := make([]byte, size)
		copy(out, payload)
		return out, nil

	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, ErrCorrupt
		}
		return out, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if len(out) != size {
			return nil, ErrCorrupt
		}
		return out, nil

	default:
		return nil, fmt.Errorf("spill: unknown compression %d", comp)
	}
}
