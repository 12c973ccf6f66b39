// Package point provides the real-valued vector type used by flowgo's
// clustering pipelines, together with the arithmetic the algorithms need:
// pointwise addition, scalar division and squared Euclidean distance.
//
// Points are plain float64 slices and are treated as immutable values once
// constructed. All points participating in one computation must share the
// same dimensionality; the arithmetic helpers assume this and leave the
// check to the API boundary (see package kmeans).
package point
