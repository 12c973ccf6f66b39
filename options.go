package flowgo

import (
	"github.com/hupe1980/flowgo/codec"
	"github.com/hupe1980/flowgo/internal/spill"
)

// Compression selects how spilled partitions are compressed.
type Compression = spill.Compression

const (
	// CompressionNone stores spilled partitions uncompressed.
	CompressionNone = spill.CompressionNone
	// CompressionLZ4 compresses spilled partitions with LZ4 (default).
	CompressionLZ4 = spill.CompressionLZ4
	// CompressionZSTD compresses spilled partitions with zstd.
	CompressionZSTD = spill.CompressionZSTD
)

type options struct {
	partitions     int
	seed           int64
	hasSeed        bool
	logger         *Logger
	codec          codec.Codec
	spillDir       string
	compression    Compression
	maxParallelism int
	ioLimitPerSec  int64
}

// Option configures Engine construction.
type Option func(*options)

// WithPartitions sets the number of partitions datasets are split into.
// Defaults to GOMAXPROCS. Results never depend on this value; it only
// controls the granularity of parallelism.
func WithPartitions(n int) Option {
	return func(o *options) {
		o.partitions = n
	}
}

// WithSeed fixes the engine's random source, making Sample deterministic.
// Without a seed, sampling differs from run to run.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithCodec configures the codec used to encode spilled partitions and
// exchanged records. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithSpillDir enables on-disk materialization for cached datasets. The
// engine creates a private subdirectory under dir and removes it on Close.
// Without a spill dir, cached datasets are pinned in memory.
func WithSpillDir(dir string) Option {
	return func(o *options) {
		o.spillDir = dir
	}
}

// WithCompression selects the compression used for spilled partitions.
// Only meaningful together with WithSpillDir. Defaults to LZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMaxParallelism bounds the number of partition tasks running at once.
// Defaults to the partition count.
func WithMaxParallelism(n int) Option {
	return func(o *options) {
		o.maxParallelism = n
	}
}

// WithIOLimit caps spill read/write throughput in bytes per second.
// Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimitPerSec = bytesPerSec
	}
}
