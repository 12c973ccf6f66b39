package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCentroids is returned when a point is classified against an
	// empty centroid set.
	ErrEmptyCentroids = errors.New("centroid set is empty")

	// ErrInvalidClusterCount is returned when the requested number of
	// clusters is not positive.
	ErrInvalidClusterCount = errors.New("number of clusters must be positive")

	// ErrInvalidIterations is returned when the iteration count is negative.
	ErrInvalidIterations = errors.New("iteration count must not be negative")

	// ErrInvalidDimensions is returned when the configured dimensionality is
	// not positive.
	ErrInvalidDimensions = errors.New("dimensionality must be positive")

	// ErrInitialCentroidCount is returned when the number of explicitly
	// provided initial centroids differs from the requested cluster count.
	ErrInitialCentroidCount = errors.New("initial centroid count must equal the number of clusters")
)

// ErrDimensionMismatch indicates a point whose dimensionality differs from
// the run's. It is fatal to the operation in progress and never retried.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
