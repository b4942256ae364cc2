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
	"context"
	"fmt"

	"github.com/costela/labelmodel/larray"
)

// SolveStatus reports the outcome of a solve, covering the statuses an
// external MILP/LP adapter may report.
type SolveStatus int

const (
	StatusOptimal SolveStatus = iota
	StatusSuboptimal
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s SolveStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "error"
	}
}

// AdapterResult is what a SolverAdapter reports back for one solve call:
// status, objective value, primal values keyed by variable-label, and
// optionally dual values keyed by constraint-label.
type AdapterResult struct {
	Status    SolveStatus
	Objective float64
	Primals   map[int64]float64
	Duals     map[int64]float64
}

// SolverAdapter is the contract a concrete solver implements: given a
// matrix view and an option map, return a solve outcome. The core
// depends only on this interface; concrete adapters (e.g.
// adapters/gonumlp) live outside the core package.
type SolverAdapter interface {
	Solve(ctx context.Context, view *MatrixView, options map[string]any) (*AdapterResult, error)
}

// SolveResult is the read-only handle a Model.Solve call returns,
// resolving primal and dual values by Variable or Constraint.
type SolveResult struct {
	model     *Model
	status    SolveStatus
	objective float64
	primals   map[int64]float64
	duals     map[int64]float64
}

// Status reports the solve outcome.
func (r *SolveResult) Status() SolveStatus { return r.status }

// ObjectiveValue returns the objective value reported by the adapter.
// This value is only optimal if Status also returns StatusOptimal.
func (r *SolveResult) ObjectiveValue() float64 { return r.objective }

// PrimalValue returns v's solution values as a labeled array shaped like
// v itself, looking each label up in the adapter's primal map. Sentinel
// (masked) positions are reported as 0.
func (r *SolveResult) PrimalValue(v *Variable) (*larray.Array[float64], error) {
	return r.lookup(v.labels, r.primals)
}

// DualValue is PrimalValue's counterpart for a Constraint's dual values.
// Returns an error if the adapter did not report duals.
func (r *SolveResult) DualValue(c *Constraint) (*larray.Array[float64], error) {
	if r.duals == nil {
		return nil, fmt.Errorf("labelmodel: solver adapter did not report dual values")
	}
	return r.lookup(c.labels, r.duals)
}

func (r *SolveResult) lookup(labels *larray.Array[int64], values map[int64]float64) (*larray.Array[float64], error) {
	raw := labels.Raw()
	out := make([]float64, len(raw))
	for i, lbl := range raw {
		if lbl == sentinelLabel {
			continue
		}
		out[i] = values[lbl]
	}
	names := labels.Dims()
	coords := make([][]any, len(names))
	for i, n := range names {
		c, _ := labels.Coords(n)
		coords[i] = c
	}
	return larray.New[float64](names, coords, out)
}
