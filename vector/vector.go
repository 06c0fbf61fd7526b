// Package vector provides the fixed-length float64 vector value type used
// throughout wordvec. Vectors carry no behavior beyond construction,
// cloning and exact equality; dimension enforcement happens at the index
// boundary, not here.
package vector

// Vector is an ordered sequence of double-precision values. The zero-length
// Vector is valid but will never pass dimension validation on insert.
type Vector []float64

// Zeros returns a length-n vector of 0.0 values.
func Zeros(n int) Vector {
	return make(Vector, n)
}

// FromValues returns a vector holding the given values in order.
func FromValues(values ...float64) Vector {
	v := make(Vector, len(values))
	copy(v, values)
	return v
}

// FromRange returns a vector holding the enumerated values of the inclusive
// integer range [first, last], each coerced to float64. An inverted range
// yields an empty vector.
func FromRange(first, last int) Vector {
	if last < first {
		return Vector{}
	}
	v := make(Vector, 0, last-first+1)
	for i := first; i <= last; i++ {
		v = append(v, float64(i))
	}
	return v
}

// Dimension returns the number of elements in v.
func (v Vector) Dimension() int {
	return len(v)
}

// Clone returns a copy of v that shares no storage with the original.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether a and b have the same length and exactly equal
// elements. Comparison is exact float64 equality; callers and tests rely on
// this, so no tolerance is applied.
func Equal(a, b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
