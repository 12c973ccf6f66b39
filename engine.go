package flowgo

import (
	"hash/maphash"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/flowgo/codec"
	"github.com/hupe1980/flowgo/internal/resource"
	"github.com/hupe1980/flowgo/internal/spill"
)

// Engine owns the execution resources shared by all datasets derived from
// it: the partition count, the random source, the spill store and the
// resource limits. An Engine is safe for concurrent use.
type Engine struct {
	opts     options
	logger   *Logger
	res      *resource.Controller
	store    *spill.Store // nil when spilling is disabled
	hashSeed maphash.Seed

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	cacheSeq atomic.Uint64
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	o := options{
		partitions:  runtime.GOMAXPROCS(0),
		logger:      NoopLogger(),
		codec:       codec.Default,
		compression: CompressionLZ4,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.partitions <= 0 {
		return nil, ErrInvalidPartitions
	}
	if o.maxParallelism <= 0 {
		o.maxParallelism = o.partitions
	}
	if !o.hasSeed {
		o.seed = time.Now().UnixNano()
	}

	eng := &Engine{
		opts:     o,
		logger:   o.logger,
		hashSeed: maphash.MakeSeed(),
		rng:      rand.New(rand.NewSource(o.seed)),
		res: resource.NewController(resource.Config{
			MaxWorkers:         int64(o.maxParallelism),
			IOLimitBytesPerSec: o.ioLimitPerSec,
		}),
	}

	if o.spillDir != "" {
		dir, err := os.MkdirTemp(o.spillDir, "flowgo-*")
		if err != nil {
			return nil, err
		}
		store, err := spill.NewStore(dir, o.compression)
		if err != nil {
			return nil, err
		}
		eng.store = store
	}

	return eng, nil
}

// Partitions returns the number of partitions datasets are split into.
func (e *Engine) Partitions() int { return e.opts.partitions }

// Close releases the engine's spill directory, if any. Datasets derived
// from the engine must not be evaluated afterwards.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return os.RemoveAll(e.store.Dir())
}

// intn draws from the engine RNG. The RNG is only touched from
// single-threaded driver positions, the mutex guards against concurrent
// actions sharing one engine.
func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

func (e *Engine) nextCacheID() uint64 {
	return e.cacheSeq.Add(1)
}
