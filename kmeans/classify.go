package kmeans

import (
	"github.com/hupe1980/flowgo/point"
)

// Classify returns the index of the centroid closest to p by squared
// Euclidean distance. Among equidistant centroids the lowest index wins:
// the scan updates the best index only on a strictly smaller distance.
func Classify(p point.Point, centroids []point.Point) (int, error) {
	if len(centroids) == 0 {
		return 0, ErrEmptyCentroids
	}
	if p.Dim() != centroids[0].Dim() {
		return 0, &ErrDimensionMismatch{Expected: centroids[0].Dim(), Actual: p.Dim()}
	}

	closest := 0
	minDist := p.DistanceSquared(centroids[0])
	for i := 1; i < len(centroids); i++ {
		if dist := p.DistanceSquared(centroids[i]); dist < minDist {
			minDist = dist
			closest = i
		}
	}
	return closest, nil
}

// ComputeCost returns the squared distance from p to its nearest centroid.
func ComputeCost(p point.Point, centroids []point.Point) (float64, error) {
	if len(centroids) == 0 {
		return 0, ErrEmptyCentroids
	}
	if p.Dim() != centroids[0].Dim() {
		return 0, &ErrDimensionMismatch{Expected: centroids[0].Dim(), Actual: p.Dim()}
	}

	minDist := p.DistanceSquared(centroids[0])
	for i := 1; i < len(centroids); i++ {
		if dist := p.DistanceSquared(centroids[i]); dist < minDist {
			minDist = dist
		}
	}
	return minDist, nil
}
