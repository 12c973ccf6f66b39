package flowgo

import (
	"context"
	"fmt"
	"hash/maphash"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
)

// Dataset is a lazily-evaluated, partitioned collection. Evaluating an
// action (AllGather, Sum, Count) recomputes the full lineage unless a
// Cache node pins it. Elements are plain values; transformations must not
// retain or mutate their inputs.
//
// The order of elements across partitions carries no meaning.
type Dataset[T any] struct {
	eng *Engine
	run func(ctx context.Context) ([][]T, error)
}

// Engine returns the engine this dataset is bound to.
func (d *Dataset[T]) Engine() *Engine { return d.eng }

// FromSlice creates a dataset from items, split into contiguous chunks of
// near-equal size, one per engine partition.
func FromSlice[T any](eng *Engine, items []T) *Dataset[T] {
	np := eng.Partitions()
	return &Dataset[T]{eng: eng, run: func(ctx context.Context) ([][]T, error) {
		parts := make([][]T, np)
		base := len(items) / np
		rem := len(items) % np
		off := 0
		for i := range parts {
			n := base
			if i < rem {
				n++
			}
			parts[i] = items[off : off+n : off+n]
			off += n
		}
		return parts, nil
	}}
}

// Map applies fn independently to every element. Partitions are processed
// in parallel; an fn error aborts the whole evaluation and surfaces to the
// caller wrapped in *ErrElement.
func Map[T, U any](d *Dataset[T], fn func(T) (U, error)) *Dataset[U] {
	eng := d.eng
	return &Dataset[U]{eng: eng, run: func(ctx context.Context) ([][]U, error) {
		parts, err := d.run(ctx)
		if err != nil {
			return nil, err
		}

		out := make([][]U, len(parts))
		g, gctx := errgroup.WithContext(ctx)
		for i, part := range parts {
			g.Go(func() error {
				if err := eng.res.AcquireWorker(gctx); err != nil {
					return err
				}
				defer eng.res.ReleaseWorker()

				mapped := make([]U, len(part))
				for j, v := range part {
					u, err := fn(v)
					if err != nil {
						return &ErrElement{Partition: i, cause: err}
					}
					mapped[j] = u
				}
				out[i] = mapped
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		eng.logger.LogStage(ctx, "map", countElements(out), nil)
		return out, nil
	}}
}

// ReduceByKey groups elements by keyFn and folds each group with combine,
// yielding one element per distinct key. combine is applied in an
// arbitrary pairwise order - locally within each partition first, then
// across partitions - so it must be associative and commutative.
func ReduceByKey[T any, K comparable](d *Dataset[T], keyFn func(T) K, combine func(T, T) T) *Dataset[T] {
	eng := d.eng
	return &Dataset[T]{eng: eng, run: func(ctx context.Context) ([][]T, error) {
		parts, err := d.run(ctx)
		if err != nil {
			return nil, err
		}

		// Local pre-combination per partition (combiner). Valid only
		// because combine is associative and commutative.
		locals := make([]map[K]T, len(parts))
		g, gctx := errgroup.WithContext(ctx)
		for i, part := range parts {
			g.Go(func() error {
				if err := eng.res.AcquireWorker(gctx); err != nil {
					return err
				}
				defer eng.res.ReleaseWorker()

				local := make(map[K]T)
				for _, v := range part {
					k := keyFn(v)
					if acc, ok := local[k]; ok {
						local[k] = combine(acc, v)
					} else {
						local[k] = v
					}
				}
				locals[i] = local
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// Exchange: route each key to a partition by hash and finish the fold.
		np := eng.Partitions()
		buckets := make([]map[K]T, np)
		for i := range buckets {
			buckets[i] = make(map[K]T)
		}
		for _, local := range locals {
			for k, v := range local {
				p := int(maphash.Comparable(eng.hashSeed, k) % uint64(np))
				if acc, ok := buckets[p][k]; ok {
					buckets[p][k] = combine(acc, v)
				} else {
					buckets[p][k] = v
				}
			}
		}

		out := make([][]T, np)
		for i, b := range buckets {
			vals := make([]T, 0, len(b))
			for _, v := range b {
				vals = append(vals, v)
			}
			out[i] = vals
		}

		eng.logger.LogStage(ctx, "reduce_by_key", countElements(out), nil)
		return out, nil
	}}
}

// Cache materializes the dataset on first evaluation and serves all later
// evaluations from the materialized copy, never re-running upstream
// lineage (and so never re-drawing upstream samples). With a spill dir
// configured on the engine, partitions are codec-encoded and compressed to
// disk; otherwise they are pinned in memory.
func (d *Dataset[T]) Cache() *Dataset[T] {
	eng := d.eng
	id := eng.nextCacheID()

	var (
		once     sync.Once
		memo     [][]T
		names    []string
		cacheErr error
	)

	return &Dataset[T]{eng: eng, run: func(ctx context.Context) ([][]T, error) {
		once.Do(func() {
			parts, err := d.run(ctx)
			if err != nil {
				cacheErr = err
				return
			}
			if eng.store == nil {
				memo = parts
				return
			}

			names = make([]string, len(parts))
			g, gctx := errgroup.WithContext(ctx)
			for i, part := range parts {
				g.Go(func() error {
					name := fmt.Sprintf("d%d-p%d", id, i)
					data, err := eng.opts.codec.Marshal(part)
					if err != nil {
						return err
					}
					if err := eng.res.WaitIO(gctx, len(data)); err != nil {
						return err
					}
					if err := eng.store.Write(name, data); err != nil {
						eng.logger.LogSpill(gctx, name, len(data), err)
						return err
					}
					eng.logger.LogSpill(gctx, name, len(data), nil)
					names[i] = name
					return nil
				})
			}
			cacheErr = g.Wait()
		})

		if cacheErr != nil {
			return nil, cacheErr
		}
		if eng.store == nil {
			return memo, nil
		}

		out := make([][]T, len(names))
		g, gctx := errgroup.WithContext(ctx)
		for i, name := range names {
			g.Go(func() error {
				data, err := eng.store.Read(name)
				if err != nil {
					return err
				}
				if err := eng.res.WaitIO(gctx, len(data)); err != nil {
					return err
				}
				return eng.opts.codec.Unmarshal(data, &out[i])
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}}
}

// Sample returns a dataset of exactly k elements drawn uniformly at random
// without replacement from the full logical dataset, independent of the
// partition layout. Fails with ErrInsufficientData if the dataset holds
// fewer than k elements. The draw is re-run on every evaluation; cache the
// result (or the input) when a stable sample is required.
func (d *Dataset[T]) Sample(k int) *Dataset[T] {
	eng := d.eng
	return &Dataset[T]{eng: eng, run: func(ctx context.Context) ([][]T, error) {
		if k <= 0 {
			return nil, ErrInvalidSampleSize
		}
		parts, err := d.run(ctx)
		if err != nil {
			return nil, err
		}

		total := 0
		for _, part := range parts {
			total += len(part)
		}
		if total < k {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientData, total, k)
		}

		// Draw k distinct global indices; the bitmap tracks what has been
		// taken so far.
		picked := roaring.New()
		for picked.GetCardinality() < uint64(k) {
			picked.Add(uint32(eng.intn(total)))
		}

		// Scatter sampled elements round-robin over the partitions.
		np := eng.Partitions()
		out := make([][]T, np)
		next := 0
		it := picked.Iterator()
		for it.HasNext() {
			idx := int(it.Next())
			for _, part := range parts {
				if idx < len(part) {
					out[next%np] = append(out[next%np], part[idx])
					break
				}
				idx -= len(part)
			}
			next++
		}

		eng.logger.LogStage(ctx, "sample", k, nil)
		return out, nil
	}}
}

// AllGather evaluates the dataset and returns the full collection,
// concatenated in partition order.
func (d *Dataset[T]) AllGather(ctx context.Context) ([]T, error) {
	parts, err := d.run(ctx)
	if err != nil {
		return nil, err
	}
	var all []T
	for _, part := range parts {
		all = append(all, part...)
	}
	return all, nil
}

// Count evaluates the dataset and returns the number of elements.
func (d *Dataset[T]) Count(ctx context.Context) (int, error) {
	parts, err := d.run(ctx)
	if err != nil {
		return 0, err
	}
	return countElements(parts), nil
}

// Number covers the element types Sum can reduce.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Sum evaluates the dataset and returns the sum of all elements.
func Sum[T Number](ctx context.Context, d *Dataset[T]) (T, error) {
	parts, err := d.run(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	var total T
	for _, part := range parts {
		for _, v := range part {
			total += v
		}
	}
	return total, nil
}

func countElements[T any](parts [][]T) int {
	n := 0
	for _, part := range parts {
		n += len(part)
	}
	return n
}
