package kmeans

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flowgo"
	"github.com/hupe1980/flowgo/point"
)

func newTestEngine(t *testing.T, opts ...flowgo.Option) *flowgo.Engine {
	t.Helper()
	eng, err := flowgo.New(append([]flowgo.Option{
		flowgo.WithPartitions(4),
		flowgo.WithSeed(42),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func sortedCentroids(m *Model) []point.Point {
	cs := m.Centroids()
	sort.Slice(cs, func(i, j int) bool {
		for d := range cs[i] {
			if cs[i][d] != cs[j][d] {
				return cs[i][d] < cs[j][d]
			}
		}
		return false
	})
	return cs
}

// Merging accumulators of one cluster in any order yields the same sum and count.
func TestCombineAssociativeCommutative(t *testing.T) {
	accs := []CentroidAccumulated{
		{Sum: point.New(1, 2), Count: 1},
		{Sum: point.New(3, 4), Count: 1},
		{Sum: point.New(5, 6), Count: 2},
		{Sum: point.New(7, 8), Count: 3},
	}

	leftFold := accs[0].Combine(accs[1]).Combine(accs[2]).Combine(accs[3])
	tree := accs[0].Combine(accs[1]).Combine(accs[2].Combine(accs[3]))
	reversed := accs[3].Combine(accs[2]).Combine(accs[1]).Combine(accs[0])

	assert.Equal(t, leftFold, tree)
	assert.Equal(t, leftFold, reversed)
	assert.Equal(t, point.New(16, 20), leftFold.Sum)
	assert.Equal(t, uint64(7), leftFold.Count)
}

func TestRunEndToEnd(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{
		point.New(0, 0),
		point.New(0, 1),
		point.New(10, 0),
		point.New(10, 1),
	}
	ds := flowgo.FromSlice(eng, pts)

	model, err := Run(ctx, ds, 2, 2, 5,
		WithInitialCentroids([]point.Point{point.New(0, 0), point.New(10, 0)}),
	)
	require.NoError(t, err)

	cs := sortedCentroids(model)
	require.Len(t, cs, 2)
	assert.InDeltaSlice(t, []float64{0, 0.5}, cs[0], 1e-12)
	assert.InDeltaSlice(t, []float64{10, 0.5}, cs[1], 1e-12)

	cost, err := model.ComputeTotalCost(ctx, ds)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cost, 1e-12)

	assert.Equal(t, 2, model.Dimensions())
	assert.Equal(t, 2, model.NumClusters())
	assert.Equal(t, 5, model.Iterations())
}

// After one round, each centroid is the arithmetic mean of exactly the
// points assigned to it.
func TestRunRecomputesMeans(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{
		point.New(1, 1),
		point.New(3, 1),
		point.New(1, 3),
		point.New(20, 20),
		point.New(22, 24),
	}
	ds := flowgo.FromSlice(eng, pts)

	model, err := Run(ctx, ds, 2, 2, 1,
		WithInitialCentroids([]point.Point{point.New(0, 0), point.New(21, 21)}),
	)
	require.NoError(t, err)

	cs := sortedCentroids(model)
	require.Len(t, cs, 2)
	// Mean of (1,1),(3,1),(1,3) and mean of (20,20),(22,24).
	assert.InDeltaSlice(t, []float64{5.0 / 3, 5.0 / 3}, cs[0], 1e-12)
	assert.InDeltaSlice(t, []float64{21, 22}, cs[1], 1e-12)
}

// Reassigning and recomputing never increases total inertia.
func TestRunCostNonIncreasing(t *testing.T) {
	ctx := context.Background()

	// Three well-separated blobs.
	rng := rand.New(rand.NewSource(7))
	centers := []point.Point{point.New(0, 0), point.New(50, 50), point.New(100, 0)}
	var pts []point.Point
	for _, c := range centers {
		for i := 0; i < 40; i++ {
			pts = append(pts, point.New(c[0]+rng.NormFloat64(), c[1]+rng.NormFloat64()))
		}
	}
	initial := []point.Point{pts[0].Clone(), pts[1].Clone(), pts[2].Clone()}

	var prev float64
	for iters := 1; iters <= 5; iters++ {
		eng := newTestEngine(t)
		ds := flowgo.FromSlice(eng, pts)

		model, err := Run(ctx, ds, 2, 3, iters, WithInitialCentroids(initial))
		require.NoError(t, err)

		cost, err := model.ComputeTotalCost(ctx, ds)
		require.NoError(t, err)

		if iters > 1 {
			assert.LessOrEqual(t, cost, prev+1e-9, "cost increased at iteration %d", iters)
		}
		prev = cost
	}
}

// A cluster that never receives a point vanishes from the centroid set
// instead of crashing the run.
func TestRunDegenerateClusterVanishes(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{
		point.New(0, 0),
		point.New(0, 1),
		point.New(10, 0),
		point.New(10, 1),
	}
	ds := flowgo.FromSlice(eng, pts)

	model, err := Run(ctx, ds, 2, 3, 3,
		WithInitialCentroids([]point.Point{
			point.New(0, 0),
			point.New(10, 0),
			point.New(1000, 1000), // attracts nothing
		}),
	)
	require.NoError(t, err)

	assert.Len(t, model.Centroids(), 2)
	assert.Equal(t, 3, model.NumClusters(), "requested cluster count is preserved")
}

func TestRunEmptyClusterReseed(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{
		point.New(0, 0),
		point.New(0, 1),
		point.New(10, 0),
		point.New(10, 1),
	}
	ds := flowgo.FromSlice(eng, pts)

	model, err := Run(ctx, ds, 2, 3, 2,
		WithInitialCentroids([]point.Point{
			point.New(0, 0),
			point.New(10, 0),
			point.New(1000, 1000),
		}),
		WithEmptyClusterReseed(),
	)
	require.NoError(t, err)

	assert.Len(t, model.Centroids(), 3)
}

// The clustering result must not depend on how the input is partitioned.
func TestRunPartitionOblivious(t *testing.T) {
	ctx := context.Background()

	rng := rand.New(rand.NewSource(3))
	var pts []point.Point
	for _, c := range []point.Point{point.New(0, 0), point.New(30, 0)} {
		for i := 0; i < 25; i++ {
			pts = append(pts, point.New(c[0]+rng.NormFloat64(), c[1]+rng.NormFloat64()))
		}
	}
	initial := []point.Point{pts[0].Clone(), pts[30].Clone()}

	var reference []point.Point
	for _, np := range []int{1, 4, 13} {
		eng, err := flowgo.New(flowgo.WithPartitions(np), flowgo.WithSeed(1))
		require.NoError(t, err)

		model, err := Run(ctx, flowgo.FromSlice(eng, pts), 2, 2, 4, WithInitialCentroids(initial))
		require.NoError(t, err)

		cs := sortedCentroids(model)
		if reference == nil {
			reference = cs
			continue
		}
		require.Len(t, cs, len(reference))
		for i := range cs {
			assert.InDeltaSlice(t, reference[i], cs[i], 1e-9)
		}
	}
}

func TestRunZeroIterations(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{
		point.New(0, 0),
		point.New(1, 1),
		point.New(2, 2),
	}

	model, err := Run(ctx, flowgo.FromSlice(eng, pts), 2, 2, 0)
	require.NoError(t, err)

	cs := model.Centroids()
	require.Len(t, cs, 2)
	for _, c := range cs {
		assert.Contains(t, pts, c, "zero-iteration centroids are sampled input points")
	}
}

func TestRunSampledInitialization(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(11))
	var pts []point.Point
	for _, c := range []point.Point{point.New(0, 0), point.New(40, 40)} {
		for i := 0; i < 20; i++ {
			pts = append(pts, point.New(c[0]+rng.NormFloat64(), c[1]+rng.NormFloat64()))
		}
	}

	model, err := Run(ctx, flowgo.FromSlice(eng, pts), 2, 2, 10)
	require.NoError(t, err)
	require.NotEmpty(t, model.Centroids())

	cost, err := model.ComputeTotalCost(ctx, flowgo.FromSlice(eng, pts))
	require.NoError(t, err)
	// Inertia of two unit-variance 2D blobs of 20 points each is around 80;
	// a collapsed single cluster would be in the tens of thousands.
	assert.Less(t, cost, 1000.0)
}

func TestRunValidation(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{point.New(0, 0), point.New(1, 1)}
	ds := flowgo.FromSlice(eng, pts)

	_, err := Run(ctx, ds, 0, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Run(ctx, ds, 2, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = Run(ctx, ds, 2, 2, -1)
	assert.ErrorIs(t, err, ErrInvalidIterations)

	_, err = Run(ctx, ds, 2, 3, 1)
	assert.ErrorIs(t, err, flowgo.ErrInsufficientData)

	_, err = Run(ctx, ds, 2, 2, 1, WithInitialCentroids([]point.Point{point.New(0, 0)}))
	assert.ErrorIs(t, err, ErrInitialCentroidCount)

	_, err = Run(ctx, ds, 3, 2, 1, WithInitialCentroids([]point.Point{point.New(0, 0), point.New(1, 1)}))
	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}

func TestRunDimensionMismatchInInput(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	pts := []point.Point{
		point.New(0, 0),
		point.New(1, 1),
		point.New(1, 2, 3), // wrong dimensionality
		point.New(2, 2),
	}

	_, err := Run(ctx, flowgo.FromSlice(eng, pts), 2, 2, 1,
		WithInitialCentroids([]point.Point{point.New(0, 0), point.New(2, 2)}),
	)
	require.Error(t, err)

	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}
