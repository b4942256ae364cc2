package labelmodel

import (
	"fmt"

	"github.com/costela/labelmodel/larray"
)

const termDim = "term"

// LinearExpression is a labeled array pair (coeffs: float64, vars: int64)
// over dimensions D ∪ {term} plus a constant labeled array over D. At
// outer coordinate d it denotes:
//
//	Σ_{k∈term} coeffs[d,k] · x(vars[d,k]) + const[d]
//
// Arithmetic is total and pure: every operation below allocates a fresh
// LinearExpression rather than mutating its operands.
type LinearExpression struct {
	model  *Model
	coeffs *larray.Array[float64]
	vars   *larray.Array[int64]
	cnst   *larray.Array[float64]
}

// Dims returns the expression's outer dimension names (excluding term).
func (e *LinearExpression) Dims() []string { return e.cnst.Dims() }

// Shape returns the expression's outer shape (excluding term).
func (e *LinearExpression) Shape() []int { return e.cnst.Shape() }

// NumTerms returns the length of the term axis.
func (e *LinearExpression) NumTerms() int {
	dims := e.coeffs.Dims()
	return e.coeffs.Shape()[len(dims)-1]
}

// Coeffs exposes the raw coefficient array (outer dims ∪ {term}).
func (e *LinearExpression) Coeffs() *larray.Array[float64] { return e.coeffs }

// Vars exposes the raw variable-label array (outer dims ∪ {term}).
func (e *LinearExpression) Vars() *larray.Array[int64] { return e.vars }

// Const exposes the raw constant array (outer dims only).
func (e *LinearExpression) Const() *larray.Array[float64] { return e.cnst }

// newExprFromPair builds a one-term LinearExpression from an aligned
// (coeff, var) pair, broadcasting the coefficient array against the
// variable array.
func newExprFromPair(m *Model, coeff *larray.Array[float64], varLabel *larray.Array[int64]) (*LinearExpression, error) {
	coeffShape, err := larray.CombineShapes(larray.ShapeOf(coeff), larray.ShapeOf(varLabel))
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	ec, err := larray.Expand(coeff, coeffShape)
	if err != nil {
		return nil, err
	}
	ev, err := larray.Expand(varLabel, coeffShape)
	if err != nil {
		return nil, err
	}
	unit, err := newUnitExpr(m, ev)
	if err != nil {
		return nil, err
	}
	outer := larray.OuterShapeOf(unit.coeffs)
	ecFull, err := larray.ExpandOuter(withTrailingTerm(ec), outer)
	if err != nil {
		return nil, err
	}
	coeffs, err := larray.Zip2(unit.coeffs, ecFull, func(x, y float64) float64 { return x * y })
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: m, coeffs: coeffs, vars: unit.vars, cnst: unit.cnst}, nil
}

// Add returns e + other: outer dimensions broadcast-align, term axes
// concatenate.
func (e *LinearExpression) Add(other *LinearExpression) (*LinearExpression, error) {
	return combine(e, other, false)
}

// Sub returns e - other: other's coefficients are negated before the
// term axes concatenate.
func (e *LinearExpression) Sub(other *LinearExpression) (*LinearExpression, error) {
	return combine(e, other, true)
}

func combine(a, b *LinearExpression, negateB bool) (*LinearExpression, error) {
	outer, err := larray.CombineShapes(
		larray.OuterShapeOf(a.coeffs), larray.OuterShapeOf(b.coeffs),
		larray.ShapeOf(a.cnst), larray.ShapeOf(b.cnst),
	)
	if err != nil {
		return nil, err
	}
	ac, err := larray.ExpandOuter(a.coeffs, outer)
	if err != nil {
		return nil, err
	}
	av, err := larray.ExpandOuter(a.vars, outer)
	if err != nil {
		return nil, err
	}
	bc, err := larray.ExpandOuter(b.coeffs, outer)
	if err != nil {
		return nil, err
	}
	bv, err := larray.ExpandOuter(b.vars, outer)
	if err != nil {
		return nil, err
	}
	if negateB {
		bc = larray.Map(bc, func(v float64) float64 { return -v })
	}

	coeffs, err := larray.Concat(termDim, ac, bc)
	if err != nil {
		return nil, err
	}
	vars, err := larray.Concat(termDim, av, bv)
	if err != nil {
		return nil, err
	}

	ac1, err := larray.Expand(a.cnst, outer)
	if err != nil {
		return nil, err
	}
	bc1, err := larray.Expand(b.cnst, outer)
	if err != nil {
		return nil, err
	}
	sign := 1.0
	if negateB {
		sign = -1.0
	}
	cnst, err := larray.Zip2(ac1, bc1, func(x, y float64) float64 { return x + sign*y })
	if err != nil {
		return nil, err
	}

	return &LinearExpression{model: a.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// AddConst adds a scalar to the expression's constant.
func (e *LinearExpression) AddConst(v float64) (*LinearExpression, error) {
	cnst := larray.Map(e.cnst, func(x float64) float64 { return x + v })
	return &LinearExpression{model: e.model, coeffs: e.coeffs, vars: e.vars, cnst: cnst}, nil
}

// AddConstArray adds a labeled array to the expression's constant,
// broadcasting against its outer shape.
func (e *LinearExpression) AddConstArray(v *larray.Array[float64]) (*LinearExpression, error) {
	outer, err := larray.CombineShapes(larray.ShapeOf(e.cnst), larray.ShapeOf(v))
	if err != nil {
		return nil, err
	}
	a, err := larray.Expand(e.cnst, outer)
	if err != nil {
		return nil, err
	}
	b, err := larray.Expand(v, outer)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.Zip2(a, b, func(x, y float64) float64 { return x + y })
	if err != nil {
		return nil, err
	}
	coeffs, err := larray.ExpandOuter(e.coeffs, outer)
	if err != nil {
		return nil, err
	}
	vars, err := larray.ExpandOuter(e.vars, outer)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// MulCoef multiplies coefficients and the constant by a scalar.
func (e *LinearExpression) MulCoef(v float64) (*LinearExpression, error) {
	coeffs := larray.Map(e.coeffs, func(x float64) float64 { return x * v })
	cnst := larray.Map(e.cnst, func(x float64) float64 { return x * v })
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: e.vars, cnst: cnst}, nil
}

// MulCoefArray multiplies coefficients and the constant by a labeled
// array, broadcasting the multiplier across the term axis for free since
// it carries no term dimension of its own.
func (e *LinearExpression) MulCoefArray(v *larray.Array[float64]) (*LinearExpression, error) {
	outer, err := larray.CombineShapes(larray.OuterShapeOf(e.coeffs), larray.ShapeOf(v))
	if err != nil {
		return nil, err
	}
	coeffs, err := larray.ExpandOuter(e.coeffs, outer)
	if err != nil {
		return nil, err
	}
	vars, err := larray.ExpandOuter(e.vars, outer)
	if err != nil {
		return nil, err
	}
	ev, err := larray.ExpandOuter(withTrailingTerm(v), outer)
	if err != nil {
		return nil, err
	}
	coeffs, err = larray.Zip2(coeffs, ev, func(x, y float64) float64 { return x * y })
	if err != nil {
		return nil, err
	}
	cnstOuter, err := larray.CombineShapes(larray.ShapeOf(e.cnst), larray.ShapeOf(v))
	if err != nil {
		return nil, err
	}
	cnstA, err := larray.Expand(e.cnst, cnstOuter)
	if err != nil {
		return nil, err
	}
	cnstB, err := larray.Expand(v, cnstOuter)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.Zip2(cnstA, cnstB, func(x, y float64) float64 { return x * y })
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// Div divides coefficients and the constant by a scalar. Division by an
// array is not part of the expression algebra (it would not stay linear
// for zero entries); only the scalar form exists.
func (e *LinearExpression) Div(v float64) (*LinearExpression, error) {
	if v == 0 {
		return nil, fmt.Errorf("labelmodel: division by zero")
	}
	return e.MulCoef(1 / v)
}

// Neg negates coefficients and the constant.
func (e *LinearExpression) Neg() (*LinearExpression, error) {
	return e.MulCoef(-1)
}

// Sum folds the named dimension into the term axis, or folds every outer
// dimension into term when no dim is given. Summing the term axis itself
// directly is forbidden; use Sum() with no arguments.
func (e *LinearExpression) Sum(dim ...string) (*LinearExpression, error) {
	if len(dim) == 0 {
		coeffs, err := larray.MergeAllIntoLast(e.coeffs)
		if err != nil {
			return nil, err
		}
		vars, err := larray.MergeAllIntoLast(e.vars)
		if err != nil {
			return nil, err
		}
		cnst := larray.SumAllToScalar(e.cnst)
		return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
	}
	d := dim[0]
	if d == termDim {
		return nil, errTermAxis
	}
	coeffs, err := larray.MergeIntoLast(e.coeffs, d)
	if err != nil {
		return nil, err
	}
	vars, err := larray.MergeIntoLast(e.vars, d)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.SumOverDim(e.cnst, d)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// Shift rolls the expression along dim by k positions. Positions that
// fall outside the original extent receive the sentinel label with
// coefficient 0, so shifted expressions retain shape and align cleanly
// with unshifted ones.
func (e *LinearExpression) Shift(dim string, k int) (*LinearExpression, error) {
	coeffs, err := larray.Roll(e.coeffs, dim, k, 0)
	if err != nil {
		return nil, err
	}
	vars, err := larray.Roll(e.vars, dim, k, sentinelLabel)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.Roll(e.cnst, dim, k, 0)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// Sel returns the sub-expression keeping only the given coordinate
// labels along dim; term is never affected.
func (e *LinearExpression) Sel(dim string, labels []any) (*LinearExpression, error) {
	coeffs, err := larray.Sel(e.coeffs, dim, labels)
	if err != nil {
		return nil, err
	}
	vars, err := larray.Sel(e.vars, dim, labels)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.Sel(e.cnst, dim, labels)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// ISel is the positional-index counterpart of Sel.
func (e *LinearExpression) ISel(dim string, idxs []int) (*LinearExpression, error) {
	coeffs, err := larray.ISel(e.coeffs, dim, idxs)
	if err != nil {
		return nil, err
	}
	vars, err := larray.ISel(e.vars, dim, idxs)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.ISel(e.cnst, dim, idxs)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// Le, Ge, Eq build an AnonymousConstraint comparing e against rhs, which
// may be a scalar, a labeled array, a Variable, or another
// LinearExpression.
func (e *LinearExpression) Le(rhs any) (*AnonymousConstraint, error) { return e.compare(LE, rhs) }
func (e *LinearExpression) Ge(rhs any) (*AnonymousConstraint, error) { return e.compare(GE, rhs) }
func (e *LinearExpression) Eq(rhs any) (*AnonymousConstraint, error) { return e.compare(EQ, rhs) }

func (e *LinearExpression) compare(sign Sign, rhs any) (*AnonymousConstraint, error) {
	rhsExpr, isExpr, err := asExpr(e.model, rhs)
	if err != nil {
		return nil, err
	}
	if isExpr {
		lhs, err := e.Sub(rhsExpr)
		if err != nil {
			return nil, err
		}
		rhsArr := larray.Map(lhs.cnst, func(x float64) float64 { return -x })
		lhs.cnst = larray.Map(lhs.cnst, func(float64) float64 { return 0 })
		return &AnonymousConstraint{lhs: lhs, sign: sign, rhs: rhsArr}, nil
	}

	rhsArr, err := toArray(rhs)
	if err != nil {
		return nil, err
	}
	outer, err := larray.CombineShapes(larray.ShapeOf(e.cnst), larray.ShapeOf(rhsArr))
	if err != nil {
		return nil, err
	}
	a, err := larray.Expand(e.cnst, outer)
	if err != nil {
		return nil, err
	}
	b, err := larray.Expand(rhsArr, outer)
	if err != nil {
		return nil, err
	}
	diff, err := larray.Zip2(b, a, func(x, y float64) float64 { return x - y })
	if err != nil {
		return nil, err
	}
	coeffs, err := larray.ExpandOuter(e.coeffs, outer)
	if err != nil {
		return nil, err
	}
	vars, err := larray.ExpandOuter(e.vars, outer)
	if err != nil {
		return nil, err
	}
	lhs := &LinearExpression{model: e.model, coeffs: coeffs, vars: vars, cnst: larray.Map(diff, func(float64) float64 { return 0 })}
	return &AnonymousConstraint{lhs: lhs, sign: sign, rhs: diff}, nil
}

func asExpr(m *Model, v any) (*LinearExpression, bool, error) {
	switch x := v.(type) {
	case *LinearExpression:
		return x, true, nil
	case *Variable:
		e, err := x.Lin()
		return e, true, err
	default:
		return nil, false, nil
	}
}

func toArray(v any) (*larray.Array[float64], error) {
	switch x := v.(type) {
	case float64:
		return larray.Scalar(x), nil
	case int:
		return larray.Scalar(float64(x)), nil
	case *larray.Array[float64]:
		return x, nil
	default:
		return nil, fmt.Errorf("labelmodel: unsupported rhs type %T", v)
	}
}

// withTrailingTerm returns a view of c with an extra trailing "term"
// dimension of length 1, so it can be ExpandOuter'd against a coeffs/vars
// array that expects coordinate arrays one axis deeper than a plain
// multiplier array.
func withTrailingTerm(c *larray.Array[float64]) *larray.Array[float64] {
	dims := append(append([]string{}, c.Dims()...), termDim)
	coordsList := make([][]any, 0, len(dims))
	for _, d := range c.Dims() {
		cs, _ := c.Coords(d)
		coordsList = append(coordsList, cs)
	}
	coordsList = append(coordsList, []any{0})
	out, _ := larray.New[float64](dims, coordsList, c.Raw())
	return out
}
