// Package flowgo provides a small, lazily-evaluated dataflow engine for Go.
//
// Computations are expressed over partitioned datasets using a handful of
// order-oblivious primitives (Map, ReduceByKey, Sample, Cache, AllGather,
// Sum). The engine evaluates lineage lazily, runs partitions in parallel
// and never shares mutable state between partition tasks, so results are
// independent of how the data happens to be partitioned.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := flowgo.New(flowgo.WithPartitions(8))
//	defer eng.Close()
//
//	nums := flowgo.FromSlice(eng, []int{1, 2, 3, 4})
//	doubled := flowgo.Map(nums, func(v int) (int, error) { return 2 * v, nil })
//	total, _ := flowgo.Sum(ctx, doubled)
//
// # Materialization
//
// Dataset lineage is recomputed on every action. Cache pins a dataset's
// contents, either in memory or - with WithSpillDir - as compressed
// partition files on disk:
//
//	eng, _ := flowgo.New(
//	    flowgo.WithPartitions(8),
//	    flowgo.WithSpillDir("/fast/nvme/flowgo"),
//	    flowgo.WithCompression(flowgo.CompressionZSTD),
//	)
//
// # Clustering
//
// Package kmeans builds Lloyd's algorithm on top of these primitives; see
// its documentation for the clustering API.
package flowgo
