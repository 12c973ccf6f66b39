package flowgo

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned by Sample when the dataset holds fewer
	// elements than requested.
	ErrInsufficientData = errors.New("dataset holds fewer elements than requested sample size")

	// ErrInvalidPartitions is returned by New when the partition count is not positive.
	ErrInvalidPartitions = errors.New("partition count must be positive")

	// ErrInvalidSampleSize is returned by Sample when k is not positive.
	ErrInvalidSampleSize = errors.New("sample size must be positive")
)

// ErrElement carries the failure of a user function applied to an element.
//
// The underlying error is accessible via errors.Unwrap.
type ErrElement struct {
	Partition int
	cause     error
}

func (e *ErrElement) Error() string {
	return fmt.Sprintf("element function failed in partition %d: %v", e.Partition, e.cause)
}

func (e *ErrElement) Unwrap() error { return e.cause }
