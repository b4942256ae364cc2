/*
Copyright © 2015-2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package labelmodel

import (
	"fmt"

	"github.com/costela/labelmodel/larray"
)

// VariableFamily records the metadata of one AddVariables call: stable
// family id, optional user name, dimension shape, bounds, and
// integrality.
type VariableFamily struct {
	id          int
	name        string
	labels      *larray.Array[int64]
	lower       *larray.Array[float64]
	upper       *larray.Array[float64]
	integrality Integrality
}

// Name returns the family's registered name.
func (f *VariableFamily) Name() string { return f.name }

// Shape returns the family's dimension shape.
func (f *VariableFamily) Shape() []int { return f.labels.Shape() }

// Variable is a labeled array of variable-labels. It is immutable:
// selection methods return a new Variable sharing the underlying labels
// rather than mutating in place.
type Variable struct {
	model  *Model
	family *VariableFamily
	labels *larray.Array[int64]
}

// Dims returns the variable's dimension names in declared order.
func (v *Variable) Dims() []string { return v.labels.Dims() }

// Shape returns the variable's shape.
func (v *Variable) Shape() []int { return v.labels.Shape() }

// Coords returns the coordinate values for the named dimension.
func (v *Variable) Coords(name string) ([]any, bool) { return v.labels.Coords(name) }

// Name returns the name of the family this Variable was produced from,
// which may differ from the Variable's own shape after selection.
func (v *Variable) Name() string { return v.family.name }

// Labels exposes the underlying variable-label array. Callers must treat
// it as read-only.
func (v *Variable) Labels() *larray.Array[int64] { return v.labels }

// Lin lifts a Variable to a one-term LinearExpression with unit
// coefficients, the identity every arithmetic entry point normalizes
// through.
func (v *Variable) Lin() (*LinearExpression, error) {
	return newUnitExpr(v.model, v.labels)
}

// Mul builds coeff*v as a one-term LinearExpression, broadcasting coeff
// against v's labels.
func (v *Variable) Mul(coeff *larray.Array[float64]) (*LinearExpression, error) {
	lin, err := v.Lin()
	if err != nil {
		return nil, err
	}
	return lin.MulCoefArray(coeff)
}

// Add returns v + other as a LinearExpression.
func (v *Variable) Add(other *Variable) (*LinearExpression, error) {
	a, err := v.Lin()
	if err != nil {
		return nil, err
	}
	b, err := other.Lin()
	if err != nil {
		return nil, err
	}
	return a.Add(b)
}

// Sub returns v - other as a LinearExpression.
func (v *Variable) Sub(other *Variable) (*LinearExpression, error) {
	a, err := v.Lin()
	if err != nil {
		return nil, err
	}
	b, err := other.Lin()
	if err != nil {
		return nil, err
	}
	return a.Sub(b)
}

// Div returns v/coeff as a LinearExpression; coeff must be nonzero.
func (v *Variable) Div(coeff float64) (*LinearExpression, error) {
	lin, err := v.Lin()
	if err != nil {
		return nil, err
	}
	return lin.Div(coeff)
}

// Le, Ge, Eq compare the variable, treated as a one-term expression,
// against rhs.
func (v *Variable) Le(rhs any) (*AnonymousConstraint, error) { return v.compare(LE, rhs) }
func (v *Variable) Ge(rhs any) (*AnonymousConstraint, error) { return v.compare(GE, rhs) }
func (v *Variable) Eq(rhs any) (*AnonymousConstraint, error) { return v.compare(EQ, rhs) }

func (v *Variable) compare(sign Sign, rhs any) (*AnonymousConstraint, error) {
	lin, err := v.Lin()
	if err != nil {
		return nil, err
	}
	return lin.compare(sign, rhs)
}

// Sel returns the sub-Variable keeping only the given coordinate labels
// along dim, in the order given.
func (v *Variable) Sel(dim string, labels []any) (*Variable, error) {
	sub, err := larray.Sel(v.labels, dim, labels)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.family.name, err)
	}
	return &Variable{model: v.model, family: v.family, labels: sub}, nil
}

// ISel is the positional-index counterpart of Sel.
func (v *Variable) ISel(dim string, idxs []int) (*Variable, error) {
	sub, err := larray.ISel(v.labels, dim, idxs)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.family.name, err)
	}
	return &Variable{model: v.model, family: v.family, labels: sub}, nil
}

// Shift rolls the variable's labels along dim by k positions, filling
// newly-exposed positions with the sentinel label.
func (v *Variable) Shift(dim string, k int) (*Variable, error) {
	shifted, err := larray.Roll(v.labels, dim, k, sentinelLabel)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.family.name, err)
	}
	return &Variable{model: v.model, family: v.family, labels: shifted}, nil
}

func newUnitExpr(m *Model, labels *larray.Array[int64]) (*LinearExpression, error) {
	dims := append(append([]string{}, labels.Dims()...), "term")
	coordsList := make([][]any, 0, len(dims))
	for _, d := range labels.Dims() {
		c, _ := labels.Coords(d)
		coordsList = append(coordsList, c)
	}
	coordsList = append(coordsList, []any{0})

	coeffData := make([]float64, labels.Len())
	for i := range coeffData {
		coeffData[i] = 1
	}
	coeffs, err := larray.New[float64](dims, coordsList, coeffData)
	if err != nil {
		return nil, err
	}
	vars, err := larray.New[int64](dims, coordsList, labels.Raw())
	if err != nil {
		return nil, err
	}
	constNames := labels.Dims()
	constCoords := coordsList[:len(coordsList)-1]
	constData := make([]float64, labels.Len())
	constArr, err := larray.New[float64](constNames, constCoords, constData)
	if err != nil {
		return nil, err
	}
	return &LinearExpression{model: m, coeffs: coeffs, vars: vars, cnst: constArr}, nil
}
