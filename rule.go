package labelmodel

import (
	"fmt"

	"github.com/costela/labelmodel/larray"
)

// RuleFunc is the scalar expression-building callable the rule builder
// drives: it is invoked once per point of a coordinate product and must
// return a zero-dimensional LinearExpression (no residual outer shape of
// its own; the outer shape comes entirely from the coordinate product
// the rule is evaluated over).
type RuleFunc func(m *Model, idx ...any) (*LinearExpression, error)

// ConstraintRuleFunc is RuleFunc's counterpart for add_constraints(fn, coords).
type ConstraintRuleFunc func(m *Model, idx ...any) (*AnonymousConstraint, error)

// coordProduct walks the Cartesian product of coords in fixed row-major
// order (the last coordinate axis varies fastest). It returns one []any
// tuple per point, in iteration order.
func coordProduct(coords [][]any) [][]any {
	if len(coords) == 0 {
		return [][]any{{}}
	}
	total := 1
	for _, c := range coords {
		total *= len(c)
	}
	out := make([][]any, total)
	idx := make([]int, len(coords))
	for p := 0; p < total; p++ {
		point := make([]any, len(coords))
		for i, c := range coords {
			point[i] = c[idx[i]]
		}
		out[p] = point
		for i := len(coords) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(coords[i]) {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// assembleFromPoints pads a slice of scalar LinearExpressions (one per
// coordinate point, in coordProduct order) to the maximum term count
// with the sentinel label and coefficient 0, then assembles them into a
// single LinearExpression of outer shape dims×coords.
func assembleFromPoints(m *Model, dims []string, coords [][]any, exprs []*LinearExpression) (*LinearExpression, error) {
	maxT := 1
	for _, e := range exprs {
		if len(e.Shape()) != 0 {
			return nil, fmt.Errorf("%w: rule function must return a zero-dimensional expression", ErrRuleArityError)
		}
		if t := e.NumTerms(); t > maxT {
			maxT = t
		}
	}

	coeffData := make([]float64, len(exprs)*maxT)
	varData := make([]int64, len(exprs)*maxT)
	cnsts := make([]float64, len(exprs))
	for i, e := range exprs {
		raw := e.coeffs.Raw()
		rawV := e.vars.Raw()
		for k := 0; k < maxT; k++ {
			pos := i*maxT + k
			if k < len(raw) {
				coeffData[pos] = raw[k]
				varData[pos] = rawV[k]
			} else {
				coeffData[pos] = 0
				varData[pos] = sentinelLabel
			}
		}
		cnsts[i] = e.cnst.At()
	}

	names := append(append([]string{}, dims...), termDim)
	coordsList := append(append([][]any{}, coords...), termIndexCoords(maxT))

	coeffs, err := larray.New[float64](names, coordsList, coeffData)
	if err != nil {
		return nil, err
	}
	vars, err := larray.New[int64](names, coordsList, varData)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.New[float64](dims, coords, cnsts)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: m, coeffs: coeffs, vars: vars, cnst: cnst}, nil
}

// evalRuleLinExpr evaluates fn at every point of coords' Cartesian
// product and assembles the results with assembleFromPoints.
func evalRuleLinExpr(m *Model, dims []string, coords [][]any, fn RuleFunc) (*LinearExpression, error) {
	points := coordProduct(coords)
	exprs := make([]*LinearExpression, len(points))
	for i, pt := range points {
		e, err := fn(m, pt...)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return assembleFromPoints(m, dims, coords, exprs)
}

// evalRuleConstraint is ConstraintRuleFunc's counterpart of
// evalRuleLinExpr: every point's constraint must share the same sign,
// and its lhs/rhs are assembled independently.
func evalRuleConstraint(m *Model, dims []string, coords [][]any, fn ConstraintRuleFunc) (*AnonymousConstraint, error) {
	points := coordProduct(coords)
	lhss := make([]*LinearExpression, len(points))
	rhsData := make([]float64, len(points))
	var sign Sign
	for i, pt := range points {
		c, err := fn(m, pt...)
		if err != nil {
			return nil, err
		}
		if len(c.rhs.Shape()) != 0 {
			return nil, fmt.Errorf("%w: rule function must return a zero-dimensional constraint", ErrRuleArityError)
		}
		if i > 0 && c.sign != sign {
			return nil, fmt.Errorf("%w: rule constraints must share one sign, got %v and %v", ErrRuleArityError, sign, c.sign)
		}
		lhss[i] = c.lhs
		rhsData[i] = c.rhs.At()
		sign = c.sign
	}
	lhs, err := assembleFromPoints(m, dims, coords, lhss)
	if err != nil {
		return nil, err
	}
	rhs, err := larray.New[float64](dims, coords, rhsData)
	if err != nil {
		return nil, err
	}
	return &AnonymousConstraint{lhs: lhs, sign: sign, rhs: rhs}, nil
}

func termIndexCoords(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = i
	}
	return out
}
