package kmeans

import (
	"context"
	"slices"

	"github.com/hupe1980/flowgo"
	"github.com/hupe1980/flowgo/point"
)

// PointClusterID pairs a point with the id of its nearest centroid.
type PointClusterID struct {
	Point     point.Point `json:"point"`
	ClusterID int         `json:"cluster_id"`
}

// Model is the immutable result of a clustering run. It holds the final
// centroids in cluster-id order plus run metadata, and classifies arbitrary
// point collections against them. All methods are read-only and safe for
// concurrent use.
type Model struct {
	dimensions  int
	numClusters int
	iterations  int
	centroids   []point.Point
}

// NewModel creates a model from final centroids. NumClusters records the
// requested cluster count, which may exceed len(centroids) when clusters
// collapsed during the run.
func NewModel(dimensions, numClusters, iterations int, centroids []point.Point) *Model {
	return &Model{
		dimensions:  dimensions,
		numClusters: numClusters,
		iterations:  iterations,
		centroids:   slices.Clone(centroids),
	}
}

// Dimensions returns the dimensionality of the clustered space.
func (m *Model) Dimensions() int { return m.dimensions }

// NumClusters returns the cluster count the run was asked for.
func (m *Model) NumClusters() int { return m.numClusters }

// Iterations returns the number of iterations the run performed.
func (m *Model) Iterations() int { return m.iterations }

// Centroids returns the final centroids in cluster-id order.
func (m *Model) Centroids() []point.Point {
	return slices.Clone(m.centroids)
}

// Classify returns the cluster id of the centroid closest to p.
func (m *Model) Classify(p point.Point) (int, error) {
	return Classify(p, m.centroids)
}

// ClassifyDataset classifies every point, returning the cluster ids only.
func (m *Model) ClassifyDataset(points *flowgo.Dataset[point.Point]) *flowgo.Dataset[int] {
	return flowgo.Map(points, func(p point.Point) (int, error) {
		return Classify(p, m.centroids)
	})
}

// ClassifyPairs classifies every point, returning point and cluster id pairs.
func (m *Model) ClassifyPairs(points *flowgo.Dataset[point.Point]) *flowgo.Dataset[PointClusterID] {
	return flowgo.Map(points, func(p point.Point) (PointClusterID, error) {
		id, err := Classify(p, m.centroids)
		if err != nil {
			return PointClusterID{}, err
		}
		return PointClusterID{Point: p, ClusterID: id}, nil
	})
}

// ComputeCost returns the squared distance from p to its nearest centroid.
func (m *Model) ComputeCost(p point.Point) (float64, error) {
	return ComputeCost(p, m.centroids)
}

// ComputeTotalCost returns the sum of squared distances of all points to
// their nearest centroid (the within-cluster sum of squares, or inertia).
func (m *Model) ComputeTotalCost(ctx context.Context, points *flowgo.Dataset[point.Point]) (float64, error) {
	costs := flowgo.Map(points, func(p point.Point) (float64, error) {
		return ComputeCost(p, m.centroids)
	})
	return flowgo.Sum(ctx, costs)
}
