// Package kmeans implements distributed k-means clustering (Lloyd's
// algorithm) on top of flowgo's dataflow primitives.
//
// One round broadcasts the current centroid set, classifies every input
// point against it, merges the per-point accumulators by cluster id and
// divides each merged sum by its count. Because the merge is an
// associative, commutative fold over {point sum, count} pairs, the result
// is independent of how the input is partitioned and of the order in which
// partitions execute.
//
// The algorithm runs a fixed number of iterations with squared Euclidean
// distance; there is no convergence test. Clusters that receive no points
// in an iteration vanish from the centroid set for the following rounds
// (see WithEmptyClusterReseed for the opt-in alternative).
package kmeans
