package spill

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		s, err := NewStore(t.TempDir(), comp)
		require.NoError(t, err)

		// Repetitive payload compresses; covers the compressed path.
		data := bytes.Repeat([]byte("0123456789abcdef"), 1024)
		require.NoError(t, s.Write("p0", data))

		got, err := s.Read("p0")
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestIncompressibleStoredRaw(t *testing.T) {
	s, err := NewStore(t.TempDir(), CompressionLZ4)
	require.NoError(t, err)

	// High-entropy data LZ4 cannot shrink.
	data := make([]byte, 4096)
	state := uint64(0x9e3779b97f4a7c15)
	for i := range data {
		state = state*6364136223846793005 + 1442695040888963407
		data[i] = byte(state >> 56)
	}

	require.NoError(t, s.Write("raw", data))
	got, err := s.Read("raw")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOverwrite(t *testing.T) {
	s, err := NewStore(t.TempDir(), CompressionLZ4)
	require.NoError(t, err)

	require.NoError(t, s.Write("p", bytes.Repeat([]byte("a"), 100)))
	require.NoError(t, s.Write("p", bytes.Repeat([]byte("b"), 200)))

	got, err := s.Read("p")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("b"), 200), got)
}

func TestReadMissing(t *testing.T) {
	s, err := NewStore(t.TempDir(), CompressionLZ4)
	require.NoError(t, err)

	_, err = s.Read("nope")
	assert.Error(t, err)
}

func TestReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, CompressionLZ4)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.path("bad"), []byte{1, 2, 3}, 0o644))
	_, err = s.Read("bad")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRemove(t *testing.T) {
	s, err := NewStore(t.TempDir(), CompressionNone)
	require.NoError(t, err)

	require.NoError(t, s.Write("p", []byte("x")))
	require.NoError(t, s.Remove("p"))
	require.NoError(t, s.Remove("p")) // idempotent

	_, err = s.Read("p")
	assert.Error(t, err)
}
