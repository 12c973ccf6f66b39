package point

import (
	"fmt"
	"slices"
	"strings"
)

// Point is a D-dimensional vector with double precision. The dimensionality
// is fixed at construction; a run mixes points of one dimensionality only.
type Point []float64

// New returns a point with the given components.
func New(components ...float64) Point {
	return Point(components)
}

// Zero returns the origin of a dim-dimensional space.
func Zero(dim int) Point {
	return make(Point, dim)
}

// Dim returns the dimensionality of the point.
func (p Point) Dim() int { return len(p) }

// Clone returns an independent copy of p.
func (p Point) Clone() Point {
	return slices.Clone(p)
}

// Add returns the pointwise sum p + q as a new point.
// Assumes p and q have the same dimensionality (caller's responsibility).
func (p Point) Add(q Point) Point {
	out := make(Point, len(p))
	for i := range p {
		out[i] = p[i] + q[i]
	}
	return out
}

// Div returns p scaled by 1/s as a new point.
func (p Point) Div(s float64) Point {
	out := make(Point, len(p))
	for i := range p {
		out[i] = p[i] / s
	}
	return out
}

// DistanceSquared returns the squared Euclidean distance between p and q.
// Assumes p and q have the same dimensionality (caller's responsibility).
func (p Point) DistanceSquared(q Point) float64 {
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return sum
}

// Equal reports whether p and q have identical components.
func (p Point) Equal(q Point) bool {
	return slices.Equal(p, q)
}

// String returns a compact representation like "(1, 2.5)".
func (p Point) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range p {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteByte(')')
	return sb.String()
}
