package kmeans

import (
	"context"
	"sort"

	"github.com/hupe1980/flowgo"
	"github.com/hupe1980/flowgo/point"
)

// CentroidAccumulated is the unnormalized sum of Count points. It forms a
// commutative, associative monoid under Combine, which is what lets the
// engine merge accumulators in any pairwise order.
type CentroidAccumulated struct {
	Sum   point.Point `json:"sum"`
	Count uint64      `json:"count"`
}

// Combine merges two accumulators of the same cluster.
func (a CentroidAccumulated) Combine(b CentroidAccumulated) CentroidAccumulated {
	return CentroidAccumulated{
		Sum:   a.Sum.Add(b.Sum),
		Count: a.Count + b.Count,
	}
}

// Centroid returns the mean of the accumulated points.
func (a CentroidAccumulated) Centroid() point.Point {
	return a.Sum.Div(float64(a.Count))
}

// ClosestCentroid assigns a point to a cluster. It is produced once per
// input point per iteration (with Count 1) and exists only within that
// iteration's aggregation.
type ClosestCentroid struct {
	ClusterID int                 `json:"cluster_id"`
	Center    CentroidAccumulated `json:"center"`
}

type options struct {
	initial []point.Point
	reseed  bool
	logger  *flowgo.Logger
}

// Option configures a clustering run.
type Option func(*options)

// WithInitialCentroids supplies the initial centroid set instead of
// sampling it from the input. Exactly numClusters centroids of the run's
// dimensionality must be given.
func WithInitialCentroids(centroids []point.Point) Option {
	return func(o *options) {
		o.initial = centroids
	}
}

// WithEmptyClusterReseed re-samples a fresh centroid from the input for
// every cluster that lost all its points, keeping the centroid count at
// numClusters across iterations. By default such clusters simply vanish.
func WithEmptyClusterReseed() Option {
	return func(o *options) {
		o.reseed = true
	}
}

// WithLogger configures structured logging for the run. If nil is passed,
// logging is disabled.
func WithLogger(l *flowgo.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = flowgo.NoopLogger()
		}
		o.logger = l
	}
}

// Run clusters the input points into numClusters clusters using Lloyd's
// algorithm for a fixed number of iterations and returns the resulting
// model.
//
// The input is cached before the first iteration so every round reads the
// same materialized points, and the initial centroids are an unordered
// uniform sample of exactly numClusters points (unless overridden via
// WithInitialCentroids). Run fails if the input holds fewer than
// numClusters points, or if any point's dimensionality differs from
// dimensions.
func Run(ctx context.Context, points *flowgo.Dataset[point.Point], dimensions, numClusters, iterations int, opts ...Option) (*Model, error) {
	o := options{logger: flowgo.NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	if dimensions <= 0 {
		return nil, ErrInvalidDimensions
	}
	if numClusters <= 0 {
		return nil, ErrInvalidClusterCount
	}
	if iterations < 0 {
		return nil, ErrInvalidIterations
	}

	cached := points.Cache()

	var centroids *flowgo.Dataset[point.Point]
	if o.initial != nil {
		if len(o.initial) != numClusters {
			return nil, ErrInitialCentroidCount
		}
		for _, c := range o.initial {
			if c.Dim() != dimensions {
				return nil, &ErrDimensionMismatch{Expected: dimensions, Actual: c.Dim()}
			}
		}
		initial := make([]point.Point, len(o.initial))
		for i, c := range o.initial {
			initial[i] = c.Clone()
		}
		centroids = flowgo.FromSlice(points.Engine(), initial)
	} else {
		centroids = cached.Sample(numClusters)
	}

	// Every dataset built below is gathered exactly once, so lineage is
	// never re-evaluated and the initial sample is drawn exactly once.
	final, err := centroids.AllGather(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range final {
		if c.Dim() != dimensions {
			return nil, &ErrDimensionMismatch{Expected: dimensions, Actual: c.Dim()}
		}
	}

	for iter := 0; iter < iterations; iter++ {
		// Broadcast: the assignment closure below captures the complete,
		// finalized centroid set of the previous round.
		local := final
		if o.reseed && len(local) < numClusters {
			extra, err := cached.Sample(numClusters - len(local)).AllGather(ctx)
			if err != nil {
				return nil, err
			}
			local = append(local, extra...)
		}
		if len(local) == 0 {
			return nil, ErrEmptyCentroids
		}
		for _, c := range local {
			if c.Dim() != dimensions {
				return nil, &ErrDimensionMismatch{Expected: dimensions, Actual: c.Dim()}
			}
		}

		o.logger.DebugContext(ctx, "iteration started",
			"iteration", iter,
			"centroids", len(local),
		)

		// Assign: one accumulator per input point.
		closest := flowgo.Map(cached, func(p point.Point) (ClosestCentroid, error) {
			id, err := Classify(p, local)
			if err != nil {
				return ClosestCentroid{}, err
			}
			return ClosestCentroid{
				ClusterID: id,
				Center:    CentroidAccumulated{Sum: p, Count: 1},
			}, nil
		})

		// Aggregate: merge accumulators per cluster id. Clusters with no
		// assigned points produce no accumulator and drop out here.
		reduced := flowgo.ReduceByKey(closest,
			func(cc ClosestCentroid) int { return cc.ClusterID },
			func(a, b ClosestCentroid) ClosestCentroid {
				return ClosestCentroid{ClusterID: a.ClusterID, Center: a.Center.Combine(b.Center)}
			},
		)

		// Recompute: gather the merged accumulators in cluster-id order and
		// divide. The gathered set doubles as the next round's broadcast.
		accs, err := reduced.AllGather(ctx)
		if err != nil {
			return nil, err
		}
		sort.Slice(accs, func(i, j int) bool { return accs[i].ClusterID < accs[j].ClusterID })

		next := make([]point.Point, len(accs))
		for i, acc := range accs {
			next[i] = acc.Center.Centroid()
		}
		final = next
	}

	o.logger.DebugContext(ctx, "clustering finished",
		"iterations", iterations,
		"centroids", len(final),
	)

	return NewModel(dimensions, numClusters, iterations, final), nil
}
