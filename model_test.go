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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/costela/labelmodel/larray"
)

const delta = 0.0000001 // acceptable numerical deviation for test results

func newTestModel(t *testing.T, sense Sense) *Model {
	t.Helper()
	m, err := NewModel("test", sense)
	require.NoError(t, err)
	return m
}

func TestInstantiation(t *testing.T) {
	name := "test model 1"
	model, err := NewModel(name, Maximize)
	require.NoError(t, err)

	assert.Equal(t, name, model.Name())
	assert.Equal(t, Maximize, model.Sense())
}

func TestClone(t *testing.T) {
	model := newTestModel(t, Maximize)

	v, err := model.AddVariables(ScalarBound(0), ScalarBound(10))
	require.NoError(t, err)

	lin, err := v.Lin()
	require.NoError(t, err)
	_, err = model.AddConstraintsTriple(lin, LE, 1.0)
	require.NoError(t, err)

	clone := model.Clone()

	assert.Equal(t, model.Name(), clone.Name())
	assert.Equal(t, model.Sense(), clone.Sense())
	assert.Equal(t, model.VariableCount(), clone.VariableCount())
	assert.Equal(t, model.ConstraintCount(), clone.ConstraintCount())

	// further allocation on the clone must not collide with the original.
	cv, err := clone.AddVariables(ScalarBound(0), ScalarBound(1))
	require.NoError(t, err)
	assert.NotEqual(t, v.Labels().Raw()[0], cv.Labels().Raw()[0])
	assert.NotEqual(t, model.VariableCount(), clone.VariableCount())
}

func TestAddVariablesScalar(t *testing.T) {
	model := newTestModel(t, Minimize)

	v, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithName("x"))
	require.NoError(t, err)

	assert.Equal(t, "x", v.Name())
	assert.Empty(t, v.Dims())
	assert.Equal(t, 1, model.VariableCount())
}

func TestAddVariablesDuplicateName(t *testing.T) {
	model := newTestModel(t, Minimize)

	_, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithName("x"))
	require.NoError(t, err)
	_, err = model.AddVariables(ScalarBound(0), ScalarBound(1), WithName("x"))
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestAddVariablesBinaryOverridesBounds(t *testing.T) {
	model := newTestModel(t, Minimize)

	v, err := model.AddVariables(ScalarBound(-5), ScalarBound(99), AsBinary())
	require.NoError(t, err)
	require.NotNil(t, v)

	view, err := model.ToMatrixView()
	require.NoError(t, err)
	require.Len(t, view.Lower, 1)
	assert.Equal(t, 0.0, view.Lower[0])
	assert.Equal(t, 1.0, view.Upper[0])
	assert.True(t, view.Integer[0])
}

// S2 — dimensioned over a time axis.
func TestScenarioS2Dimensioned(t *testing.T) {
	model := newTestModel(t, Minimize)

	timeCoords := make([]any, 10)
	factorData := make([]float64, 10)
	for i := 0; i < 10; i++ {
		timeCoords[i] = i
		factorData[i] = float64(i)
	}
	factor, err := larray.New[float64]([]string{"time"}, [][]any{timeCoords}, factorData)
	require.NoError(t, err)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(math.Inf(1)), WithCoords(timeCoords), WithDimNames("time"), WithName("x"))
	require.NoError(t, err)
	y, err := model.AddVariables(ScalarBound(0), ScalarBound(math.Inf(1)), WithCoords(timeCoords), WithDimNames("time"), WithName("y"))
	require.NoError(t, err)

	lhs1, err := model.LinExpr(LinExprTerm{Coeff: 3.0, Var: x}, LinExprTerm{Coeff: 7.0, Var: y})
	require.NoError(t, err)

	tenFactor := larray.Map(factor, func(v float64) float64 { return 10 * v })
	con1, err := lhs1.Ge(tenFactor)
	require.NoError(t, err)
	c1, err := model.AddConstraints(con1)
	require.NoError(t, err)
	assert.Equal(t, 10, c1.Labels().Len())

	lhs2, err := model.LinExpr(LinExprTerm{Coeff: 5.0, Var: x}, LinExprTerm{Coeff: 2.0, Var: y})
	require.NoError(t, err)
	threeFactor := larray.Map(factor, func(v float64) float64 { return 3 * v })
	con2, err := lhs2.Ge(threeFactor)
	require.NoError(t, err)
	_, err = model.AddConstraints(con2)
	require.NoError(t, err)

	sumExpr, err := model.LinExpr(LinExprTerm{Coeff: 1.0, Var: x}, LinExprTerm{Coeff: 2.0, Var: y})
	require.NoError(t, err)
	summed, err := sumExpr.Sum("time")
	require.NoError(t, err)
	require.NoError(t, model.AddObjective(summed, Minimize, false))

	view, err := model.ToMatrixView()
	require.NoError(t, err)
	assert.Len(t, view.Vars, 20)
	assert.Len(t, view.Cons, 20)
}

// S3 — broadcast bounds.
func TestScenarioS3BroadcastBounds(t *testing.T) {
	model := newTestModel(t, Minimize)

	lowerArr, err := larray.New[float64]([]string{"a"}, [][]any{{"a1", "a2"}}, []float64{1, 1})
	require.NoError(t, err)
	upperArr, err := larray.New[float64]([]string{"b"}, [][]any{{"b1", "b2"}}, []float64{10, 12})
	require.NoError(t, err)

	v, err := model.AddVariables(LabeledBound(lowerArr), LabeledBound(upperArr))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b"}, v.Dims())
	assert.Equal(t, []int{2, 2}, v.Shape())
	assert.Equal(t, 4, model.VariableCount())
}

func TestLabeledBoundCoordsOverride(t *testing.T) {
	model := newTestModel(t, Minimize)

	lowerArr, err := larray.New[float64]([]string{"a"}, [][]any{{0, 1, 2}}, []float64{1, 2, 3})
	require.NoError(t, err)

	// coords/dims rename the labeled bound's dimension positionally
	tCoords := []any{"t0", "t1", "t2"}
	v, err := model.AddVariables(LabeledBound(lowerArr), ScalarBound(10),
		WithCoords(tCoords), WithDimNames("t"), WithName("x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"t"}, v.Dims())

	view, err := model.ToMatrixView()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, view.Lower)

	// a mismatched extent fails instead of silently collapsing
	_, err = model.AddVariables(LabeledBound(lowerArr), ScalarBound(10),
		WithCoords([]any{0, 1}), WithDimNames("t"), WithName("y"))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTripleCallShapeBroadcastsScalarLhs(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(10), WithName("x"))
	require.NoError(t, err)
	lin, err := x.Lin()
	require.NoError(t, err)

	rhs, err := larray.New[float64]([]string{"k"}, [][]any{{0, 1, 2}}, []float64{1, 2, 3})
	require.NoError(t, err)

	c, err := model.AddConstraintsTriple(lin, GE, rhs)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Labels().Len())

	view, err := model.ToMatrixView()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, view.Rhs)
	require.Len(t, view.Triplets, 3)
	for _, tr := range view.Triplets {
		assert.Equal(t, int64(0), tr.Col)
		assert.Equal(t, 1.0, tr.Value)
	}
}

// S4 — shift.
func TestScenarioS4Shift(t *testing.T) {
	model := newTestModel(t, Minimize)

	timeCoords := make([]any, 10)
	for i := 0; i < 10; i++ {
		timeCoords[i] = i
	}
	y, err := model.AddVariables(ScalarBound(0), ScalarBound(math.Inf(1)), WithCoords(timeCoords), WithDimNames("time"), WithName("y"))
	require.NoError(t, err)

	yLin, err := y.Lin()
	require.NoError(t, err)
	yShifted, err := yLin.Shift("time", 1)
	require.NoError(t, err)
	lhs, err := yLin.Sub(yShifted)
	require.NoError(t, err)

	selCoords := make([]any, 9)
	for i := range selCoords {
		selCoords[i] = i + 1
	}
	selected, err := lhs.Sel("time", selCoords)
	require.NoError(t, err)

	con, err := selected.Le(0.5)
	require.NoError(t, err)
	c, err := model.AddConstraints(con)
	require.NoError(t, err)

	assert.Equal(t, 9, c.Labels().Len())
	for _, lbl := range c.Labels().Raw() {
		assert.NotEqual(t, sentinelLabel, lbl)
	}
}

// S5 — force_dim_names.
func TestScenarioS5ForceDimNames(t *testing.T) {
	model, err := NewModel("strict", Minimize, WithForceDimNames())
	require.NoError(t, err)

	lowerArr, err := larray.New[float64]([]string{""}, [][]any{{0, 1}}, []float64{1, 2})
	require.NoError(t, err)

	_, err = model.AddVariables(LabeledBound(lowerArr), ScalarBound(math.Inf(1)))
	assert.ErrorIs(t, err, ErrUnnamedDimension)
}

// S6 — rule builder.
func TestScenarioS6RuleBuilder(t *testing.T) {
	model := newTestModel(t, Minimize)

	iCoords := make([]any, 10)
	for i := 0; i < 10; i++ {
		iCoords[i] = i
	}
	jCoords := []any{"a", "b"}

	b, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithCoords(iCoords, jCoords), WithDimNames("i", "j"), WithName("b"))
	require.NoError(t, err)

	expr, err := model.LinExprFunc([]string{"i", "j"}, [][]any{iCoords, jCoords}, func(m *Model, idx ...any) (*LinearExpression, error) {
		i := idx[0].(int)
		jIdx := 0
		if idx[1] == "b" {
			jIdx = 1
		}
		if i%2 != 0 {
			sub, err := b.ISel("i", []int{i - 1})
			if err != nil {
				return nil, err
			}
			sub, err = sub.ISel("j", []int{jIdx})
			if err != nil {
				return nil, err
			}
			return sub.Mul(larray.Scalar(2.0))
		}
		sub, err := b.ISel("i", []int{i})
		if err != nil {
			return nil, err
		}
		sub, err = sub.ISel("j", []int{jIdx})
		if err != nil {
			return nil, err
		}
		return sub.Mul(larray.Scalar(float64(i)))
	})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 2}, expr.Shape())
	assert.Equal(t, 1, expr.NumTerms())
}

func TestAddConstraintsFunc(t *testing.T) {
	model := newTestModel(t, Minimize)

	timeCoords := []any{0, 1, 2, 3}
	x, err := model.AddVariables(ScalarBound(0), ScalarBound(math.Inf(1)), WithCoords(timeCoords), WithDimNames("time"), WithName("x"))
	require.NoError(t, err)

	c, err := model.AddConstraintsFunc([]string{"time"}, [][]any{timeCoords}, func(m *Model, idx ...any) (*AnonymousConstraint, error) {
		i := idx[0].(int)
		scalar, err := x.ISel("time", []int{i})
		if err != nil {
			return nil, err
		}
		return scalar.Ge(float64(i))
	}, WithConstraintName("ramp"))
	require.NoError(t, err)

	assert.Equal(t, "ramp", c.Name())
	assert.Equal(t, 4, c.Labels().Len())
	assert.Equal(t, GE, c.Sign())
	assert.Equal(t, []float64{0, 1, 2, 3}, c.Rhs().Raw())
}

func TestAddConstraintsFuncMixedSigns(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithCoords([]any{0, 1}), WithDimNames("time"))
	require.NoError(t, err)

	_, err = model.AddConstraintsFunc([]string{"time"}, [][]any{{0, 1}}, func(m *Model, idx ...any) (*AnonymousConstraint, error) {
		i := idx[0].(int)
		scalar, err := x.ISel("time", []int{i})
		if err != nil {
			return nil, err
		}
		if i == 0 {
			return scalar.Le(1.0)
		}
		return scalar.Ge(0.0)
	})
	assert.ErrorIs(t, err, ErrRuleArityError)
}

func TestObjectiveMustBeScalar(t *testing.T) {
	model := newTestModel(t, Minimize)

	timeCoords := []any{0, 1, 2}
	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithCoords(timeCoords), WithDimNames("time"), WithName("x"))
	require.NoError(t, err)
	lin, err := x.Lin()
	require.NoError(t, err)

	err = model.AddObjective(lin, Minimize, false)
	assert.ErrorIs(t, err, ErrObjectiveNotScalar)
}

func TestRemoveConstraints(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1))
	require.NoError(t, err)
	lin, err := x.Lin()
	require.NoError(t, err)
	con, err := lin.Le(1.0)
	require.NoError(t, err)
	_, err = model.AddConstraints(con, WithConstraintName("cap"))
	require.NoError(t, err)

	require.NoError(t, model.RemoveConstraints("cap"))
	assert.Equal(t, 0, model.ConstraintCount())

	err = model.RemoveConstraints("cap")
	assert.ErrorIs(t, err, ErrUnknownConstraint)
}

func TestMaskedVariablesExcludedFromMatrixView(t *testing.T) {
	model := newTestModel(t, Minimize)

	coords := []any{0, 1, 2, 3}
	mask, err := larray.New[bool]([]string{"t"}, [][]any{coords}, []bool{true, false, true, false})
	require.NoError(t, err)

	v, err := model.AddVariables(ScalarBound(0), ScalarBound(1),
		WithCoords(coords), WithDimNames("t"), WithMask(mask))
	require.NoError(t, err)

	raw := v.Labels().Raw()
	assert.Equal(t, sentinelLabel, raw[1])
	assert.Equal(t, sentinelLabel, raw[3])
	assert.NotEqual(t, sentinelLabel, raw[0])

	view, err := model.ToMatrixView()
	require.NoError(t, err)
	assert.Len(t, view.Vars, 2)
}

func TestMaskedConstraintsExcludedFromMatrixView(t *testing.T) {
	model := newTestModel(t, Minimize)

	coords := []any{0, 1, 2}
	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithCoords(coords), WithDimNames("t"))
	require.NoError(t, err)

	lin, err := x.Lin()
	require.NoError(t, err)
	con, err := lin.Le(1.0)
	require.NoError(t, err)

	mask, err := larray.New[bool]([]string{"t"}, [][]any{coords}, []bool{true, true, false})
	require.NoError(t, err)

	c, err := model.AddConstraints(con, WithConstraintMask(mask))
	require.NoError(t, err)
	assert.Equal(t, sentinelLabel, c.Labels().Raw()[2])

	view, err := model.ToMatrixView()
	require.NoError(t, err)
	assert.Len(t, view.Cons, 2)
}

func TestDenseBoundRequiresCoords(t *testing.T) {
	model := newTestModel(t, Minimize)

	_, err := model.AddVariables(DenseBound([]float64{1, 2}), ScalarBound(10))
	assert.ErrorIs(t, err, ErrMissingCoordinates)
}

func TestBoundsInvalid(t *testing.T) {
	model := newTestModel(t, Minimize)

	_, err := model.AddVariables(ScalarBound(5), ScalarBound(1))
	assert.ErrorIs(t, err, ErrBoundsInvalid)
}

func TestAnonymousConstraintImmutable(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1))
	require.NoError(t, err)
	con, err := x.Le(1.0)
	require.NoError(t, err)

	assert.ErrorIs(t, con.SetSign(GE), ErrImmutable)
	assert.ErrorIs(t, con.SetLhs(nil), ErrImmutable)
	assert.ErrorIs(t, con.SetRhs(larray.Scalar(2.0)), ErrImmutable)
	assert.Equal(t, LE, con.Sign())
}

func TestLinExprConflictingCoords(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1), WithCoords([]any{0, 1}), WithDimNames("time"))
	require.NoError(t, err)

	// same dimension name, different coordinate index
	coeff, err := larray.New[float64]([]string{"time"}, [][]any{{0, 1, 2}}, []float64{1, 2, 3})
	require.NoError(t, err)

	_, err = model.LinExpr(LinExprTerm{Coeff: coeff, Var: x})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestVariableComparisonAndDiv(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(math.Inf(1)))
	require.NoError(t, err)

	con, err := x.Ge(4.0)
	require.NoError(t, err)
	c, err := model.AddConstraints(con)
	require.NoError(t, err)
	assert.Equal(t, GE, c.Sign())

	halved, err := x.Div(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, halved.Coeffs().Raw())

	_, err = halved.Div(0)
	assert.Error(t, err)
}

func TestObjectiveOverwrite(t *testing.T) {
	model := newTestModel(t, Minimize)

	x, err := model.AddVariables(ScalarBound(0), ScalarBound(1))
	require.NoError(t, err)
	lin, err := x.Lin()
	require.NoError(t, err)

	require.NoError(t, model.AddObjective(lin, Minimize, false))
	err = model.AddObjective(lin, Minimize, false)
	assert.ErrorIs(t, err, ErrObjectiveExists)
	require.NoError(t, model.AddObjective(lin, Maximize, true))
}

func TestUnknownVariableRejected(t *testing.T) {
	modelA := newTestModel(t, Minimize)
	modelB := newTestModel(t, Minimize)

	xA, err := modelA.AddVariables(ScalarBound(0), ScalarBound(1))
	require.NoError(t, err)

	lin, err := xA.Lin()
	require.NoError(t, err)
	con, err := lin.Le(1.0)
	require.NoError(t, err)

	_, err = modelB.AddConstraints(con)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}
