package labelmodel

import (
	"fmt"

	"github.com/costela/labelmodel/larray"
)

// Integrality records whether a variable family is continuous, integer,
// or binary (binary implies integer with bounds fixed to [0,1]).
type Integrality int

const (
	Continuous Integrality = iota
	Integer
	Binary
)

// Sign is a constraint's comparison operator.
type Sign int

const (
	LE Sign = iota
	GE
	EQ
)

func (s Sign) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "=="
	default:
		return "?"
	}
}

// Bound is a sum type over the three forms a variable bound (lower or
// upper) arrives in: a bare scalar, an unlabeled dense array, or an
// already-labeled array. It is normalized to a single labeled array
// before anything downstream sees it.
type Bound struct {
	scalar   float64
	isScalar bool
	dense    []float64
	labeled  *larray.Array[float64]
}

// ScalarBound wraps a plain float64 bound.
func ScalarBound(v float64) Bound { return Bound{scalar: v, isScalar: true} }

// DenseBound wraps a row-major unlabeled array; normalize requires coords
// to assign it dimension names.
func DenseBound(values []float64) Bound {
	cp := make([]float64, len(values))
	copy(cp, values)
	return Bound{dense: cp}
}

// LabeledBound wraps an already-labeled array.
func LabeledBound(a *larray.Array[float64]) Bound { return Bound{labeled: a} }

// normalize resolves a Bound to a labeled array, using coords/dims when
// the bound arrived scalar or unlabeled. coords/dims may be nil when the
// bound is already labeled or is a plain scalar with no coords (a single
// scalar variable). Supplying coords/dims alongside an already-labeled
// bound overrides its dimension names and coordinates positionally; the
// shape must match.
func (b Bound) normalize(names []string, coords [][]any) (*larray.Array[float64], error) {
	switch {
	case b.labeled != nil:
		if len(coords) == 0 {
			return b.labeled, nil
		}
		shape := b.labeled.Shape()
		if len(coords) != len(shape) {
			return nil, fmt.Errorf("%w: bound has %d dimensions but %d coordinate axes were supplied", ErrDimensionMismatch, len(shape), len(coords))
		}
		for i, c := range coords {
			if len(c) != shape[i] {
				return nil, fmt.Errorf("%w: axis %d has %d coordinates, bound extent is %d", ErrDimensionMismatch, i, len(c), shape[i])
			}
		}
		return larray.New[float64](names, coords, b.labeled.Raw())
	case b.dense != nil:
		if len(coords) == 0 {
			return nil, ErrMissingCoordinates
		}
		return larray.New[float64](names, coords, b.dense)
	default:
		if len(coords) == 0 {
			return larray.Scalar(b.scalar), nil
		}
		return larray.Full[float64](names, coords, b.scalar)
	}
}
