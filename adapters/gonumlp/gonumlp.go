// Package gonumlp is a SolverAdapter implementation backed by
// gonum.org/v1/gonum/optimize/convex/lp's dense simplex solver. It is an
// external collaborator, not part of the modeling core: the core only
// depends on the labelmodel.SolverAdapter interface.
package gonumlp

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/costela/labelmodel"
)

// Adapter wraps lp.Simplex behind the labelmodel.SolverAdapter contract.
type Adapter struct{}

// New returns a ready-to-register gonum-backed solver adapter.
func New() *Adapter { return &Adapter{} }

// Solve converts the matrix view's mixed-sign rows and variable bounds
// into lp.Simplex's required Ax = b, x >= 0 standard form, inserting one
// slack or surplus variable per inequality row.
// Variables are shifted by their lower bound (x' = x - lower)
// so every column starts at zero; finite upper bounds become extra <=
// rows. Variables with an unbounded lower bound are not supported by
// this adapter (lp.Simplex has no native free-variable handling) and
// cause Solve to fail.
func (a *Adapter) Solve(ctx context.Context, view *labelmodel.MatrixView, _ map[string]any) (*labelmodel.AdapterResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nVar := len(view.Vars)
	colOf := make(map[int64]int, nVar)
	for i, v := range view.Vars {
		colOf[v] = i
	}
	for i, l := range view.Lower {
		if math.IsInf(l, -1) {
			return nil, fmt.Errorf("gonumlp: variable %d has no lower bound; unsupported by the dense simplex adapter", view.Vars[i])
		}
	}

	nRows := len(view.Cons)
	rowOf := make(map[int64]int, nRows)
	for i, cl := range view.Cons {
		rowOf[cl] = i
	}
	rows := make([][]float64, nRows)
	for r := range rows {
		rows[r] = make([]float64, nVar)
	}
	for _, t := range view.Triplets {
		r, okR := rowOf[t.Row]
		col, okC := colOf[t.Col]
		if !okR || !okC {
			continue
		}
		rows[r][col] = t.Value
	}

	// shift: row·x = row·x' + row·lower, so rhs' = rhs - row·lower
	shiftedRhs := make([]float64, nRows)
	for r := 0; r < nRows; r++ {
		var offset float64
		for c := 0; c < nVar; c++ {
			offset += rows[r][c] * view.Lower[c]
		}
		shiftedRhs[r] = view.Rhs[r] - offset
	}

	var eqRows, leRows []int
	for r, s := range view.Sign {
		switch s {
		case labelmodel.EQ:
			eqRows = append(eqRows, r)
		case labelmodel.LE:
			leRows = append(leRows, r)
		case labelmodel.GE:
			leRows = append(leRows, -r-1) // negative-encoded: flip sign on use
		}
	}

	nUpperRows := 0
	for _, u := range view.Upper {
		if !math.IsInf(u, 1) {
			nUpperRows++
		}
	}

	nSlack := len(leRows) + nUpperRows
	nNewVar := nVar + nSlack
	nNewCons := len(eqRows) + nSlack

	// No rows at all: every shifted variable sits at zero unless its
	// objective coefficient pushes it unbounded upward.
	if nNewCons == 0 {
		for _, ci := range view.C {
			if ci < 0 {
				return &labelmodel.AdapterResult{Status: labelmodel.StatusUnbounded},
					fmt.Errorf("gonumlp: problem is unbounded: no constraints and a negative objective coefficient")
			}
		}
		primals := make(map[int64]float64, nVar)
		var objective float64
		for i, v := range view.Vars {
			primals[v] = view.Lower[i]
			objective += view.C[i] * view.Lower[i]
		}
		return &labelmodel.AdapterResult{
			Status:    labelmodel.StatusOptimal,
			Objective: objective,
			Primals:   primals,
		}, nil
	}

	A := mat.NewDense(nNewCons, nNewVar, nil)
	b := make([]float64, nNewCons)
	c := make([]float64, nNewVar)
	copy(c, view.C)

	row := 0
	for _, r := range eqRows {
		for col := 0; col < nVar; col++ {
			A.Set(row, col, rows[r][col])
		}
		b[row] = shiftedRhs[r]
		row++
	}
	slackCol := nVar
	for _, encoded := range leRows {
		sign := 1.0
		r := encoded
		if encoded < 0 {
			r = -encoded - 1
			sign = -1.0
		}
		for col := 0; col < nVar; col++ {
			A.Set(row, col, sign*rows[r][col])
		}
		A.Set(row, slackCol, 1)
		b[row] = sign * shiftedRhs[r]
		slackCol++
		row++
	}
	for col, u := range view.Upper {
		if math.IsInf(u, 1) {
			continue
		}
		A.Set(row, col, 1)
		A.Set(row, slackCol, 1)
		b[row] = u - view.Lower[col]
		slackCol++
		row++
	}

	z, x, err := lp.Simplex(c, A, b, 0, nil)
	if err != nil {
		return &labelmodel.AdapterResult{Status: labelmodel.StatusInfeasible}, fmt.Errorf("gonumlp: simplex failed: %w", err)
	}

	primals := make(map[int64]float64, nVar)
	for i, v := range view.Vars {
		primals[v] = x[i] + view.Lower[i]
	}

	objective := z
	for i, l := range view.Lower {
		objective += view.C[i] * l
	}

	return &labelmodel.AdapterResult{
		Status:    labelmodel.StatusOptimal,
		Objective: objective,
		Primals:   primals,
	}, nil
}
