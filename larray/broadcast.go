package larray

import "fmt"

// Shape is the dimension-name/coordinate structure of an array, with its
// element type erased. It is what Broadcast/Expand operate over so two
// arrays of different element type (e.g. float64 coefficients and int64
// variable labels) can be aligned to one common shape.
type Shape struct {
	dims []*dimIndex
}

// ShapeOf captures the shape of an array, independent of its element type.
func ShapeOf[T any](a *Array[T]) *Shape {
	dims := make([]*dimIndex, len(a.dims))
	copy(dims, a.dims)
	return &Shape{dims: dims}
}

// Dims returns the shape's dimension names in order.
func (s *Shape) Dims() []string {
	out := make([]string, len(s.dims))
	for i, d := range s.dims {
		out[i] = d.name
	}
	return out
}

// Lens returns the shape's extents, parallel to Dims.
func (s *Shape) Lens() []int {
	out := make([]int, len(s.dims))
	for i, d := range s.dims {
		out[i] = len(d.coords)
	}
	return out
}

// CoordsList returns each dimension's coordinate values, parallel to
// Dims, suitable for passing straight to New when rebuilding an array
// over this shape.
func (s *Shape) CoordsList() [][]any {
	out := make([][]any, len(s.dims))
	for i, d := range s.dims {
		cp := make([]any, len(d.coords))
		copy(cp, d.coords)
		out[i] = cp
	}
	return out
}

// combine merges s with o: shared-name dimensions must carry identical
// coordinate indexes (else ErrDimensionMismatch); dimensions unique to o are
// appended after s's dimensions, in o's order: the union of named
// dimensions, outer-producting disjoint ones, with dimension order
// determined by first appearance.
func (s *Shape) combine(o *Shape) (*Shape, error) {
	out := make([]*dimIndex, len(s.dims), len(s.dims)+len(o.dims))
	copy(out, s.dims)
	byName := make(map[string]*dimIndex, len(out))
	for _, d := range out {
		byName[d.name] = d
	}
	for _, d := range o.dims {
		if existing, ok := byName[d.name]; ok {
			if !existing.equal(d) {
				return nil, fmt.Errorf("%w: dimension %q", ErrDimensionMismatch, d.name)
			}
			continue
		}
		out = append(out, d)
		byName[d.name] = d
	}
	return &Shape{dims: out}, nil
}

// CombineShapes folds combine across all given shapes, left to right.
func CombineShapes(shapes ...*Shape) (*Shape, error) {
	if len(shapes) == 0 {
		return &Shape{}, nil
	}
	out := shapes[0]
	for _, s := range shapes[1:] {
		var err error
		out, err = out.combine(s)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Expand broadcasts a to the target shape: dimensions a already has are
// aligned positionally (their coordinate indexes must be identical, which
// CombineShapes already validates when target was derived from a);
// dimensions target has but a doesn't are broadcast (a's value is repeated
// across every coordinate of that new dimension).
func Expand[T any](a *Array[T], target *Shape) (*Array[T], error) {
	aPosOf := make([]int, len(target.dims))
	for i, td := range target.dims {
		aPosOf[i] = -1
		for j, ad := range a.dims {
			if ad.name == td.name {
				if !ad.equal(td) {
					return nil, fmt.Errorf("%w: dimension %q", ErrDimensionMismatch, td.name)
				}
				aPosOf[i] = j
				break
			}
		}
	}

	targetShape := make([]int, len(target.dims))
	for i, d := range target.dims {
		targetShape[i] = len(d.coords)
	}

	n := product(targetShape)
	data := make([]T, n)
	idx := make([]int, len(target.dims))
	aIdx := make([]int, len(a.dims))
	for flat := 0; flat < n; flat++ {
		unravel(flat, targetShape, idx)
		for i, ap := range aPosOf {
			if ap >= 0 {
				aIdx[ap] = idx[i]
			}
		}
		data[flat] = a.At(aIdx...)
	}

	dims := make([]*dimIndex, len(target.dims))
	copy(dims, target.dims)
	return &Array[T]{dims: dims, shape: targetShape, data: data}, nil
}

// DropLast returns the shape without its trailing dimension. Used to
// separate a LinearExpression's outer dimensions from its term axis.
func (s *Shape) DropLast() *Shape {
	if len(s.dims) == 0 {
		return &Shape{}
	}
	dims := make([]*dimIndex, len(s.dims)-1)
	copy(dims, s.dims[:len(s.dims)-1])
	return &Shape{dims: dims}
}

// OuterShapeOf captures the shape of a excluding its trailing dimension.
func OuterShapeOf[T any](a *Array[T]) *Shape {
	return ShapeOf(a).DropLast()
}

// ExpandOuter broadcasts only a's non-trailing dimensions to targetOuter,
// leaving a's own trailing dimension (the term axis of a LinearExpression)
// untouched. a must carry at least one dimension.
func ExpandOuter[T any](a *Array[T], targetOuter *Shape) (*Array[T], error) {
	if len(a.dims) == 0 {
		return nil, fmt.Errorf("larray: ExpandOuter requires an array with a trailing dimension")
	}
	full := &Shape{dims: append(append([]*dimIndex{}, targetOuter.dims...), a.dims[len(a.dims)-1])}
	return Expand(a, full)
}

// BroadcastPair aligns a and b to their combined shape in one step.
func BroadcastPair[A, B any](a *Array[A], b *Array[B]) (*Array[A], *Array[B], error) {
	shape, err := CombineShapes(ShapeOf(a), ShapeOf(b))
	if err != nil {
		return nil, nil, err
	}
	ea, err := Expand(a, shape)
	if err != nil {
		return nil, nil, err
	}
	eb, err := Expand(b, shape)
	if err != nil {
		return nil, nil, err
	}
	return ea, eb, nil
}
