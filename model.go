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

/*

Package labelmodel builds and manipulates large-scale linear (and
mixed-integer linear) optimization models whose variables, constraints
and coefficients are organized as labeled multi-dimensional arrays. A
caller declares families of decision variables indexed by named
dimensions, composes them into linear expressions with ordinary
arithmetic and broadcasting, builds constraints by comparison, sets an
objective, and exports a solver-agnostic matrix view for an external
adapter to consume.

	model, _ := labelmodel.NewModel("diet", labelmodel.Minimize)
	x, _ := model.AddVariables(labelmodel.ScalarBound(0), labelmodel.ScalarBound(1e9))
	y, _ := model.AddVariables(labelmodel.ScalarBound(0), labelmodel.ScalarBound(1e9))

	lhs1, _ := x.Mul(larray.Scalar(3.0))
	// ⋮ compose, compare, register, solve ⋮

*/
package labelmodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/costela/labelmodel/larray"
)

// Sense is a model's optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Model owns a LabelAllocator, the variable and constraint registries,
// an optional objective expression, and (after Solve) the last solve
// result.
type Model struct {
	name          string
	sense         Sense
	logger        Logger
	forceDimNames bool
	solvers       map[string]SolverAdapter

	alloc *LabelAllocator

	varFamilies []*VariableFamily
	varByName   map[string]*VariableFamily

	conFamilies []*Constraint
	conByName   map[string]*Constraint

	objective *LinearExpression
	objSense  Sense

	lastResult *SolveResult
}

// NewModel instantiates a new model with the given name (informational
// only) and optimization direction, applying opts in order.
func NewModel(name string, sense Sense, opts ...Option) (*Model, error) {
	m := &Model{
		name:      name,
		sense:     sense,
		logger:    noopLogger{},
		alloc:     newLabelAllocator(),
		varByName: make(map[string]*VariableFamily),
		conByName: make(map[string]*Constraint),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("applying model option: %w", err)
		}
	}
	return m, nil
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// Sense returns the model's optimization direction.
func (m *Model) Sense() Sense { return m.sense }

// VariableCount returns the number of individually labeled variables
// registered across every family (including masked-out ones).
func (m *Model) VariableCount() int {
	n := 0
	for _, f := range m.varFamilies {
		n += f.labels.Len()
	}
	return n
}

// ConstraintCount is VariableCount's counterpart for constraints.
func (m *Model) ConstraintCount() int {
	n := 0
	for _, c := range m.conFamilies {
		n += c.labels.Len()
	}
	return n
}

// Variables returns the model's registered variable families, in
// registration order. The returned slice is a copy; mutating it does not
// affect the model.
func (m *Model) Variables() []*VariableFamily {
	out := make([]*VariableFamily, len(m.varFamilies))
	copy(out, m.varFamilies)
	return out
}

// Constraints returns the model's registered constraint families, in
// registration order.
func (m *Model) Constraints() []*Constraint {
	out := make([]*Constraint, len(m.conFamilies))
	copy(out, m.conFamilies)
	return out
}

// Clone returns a copy of the model. Labels are copied verbatim (not
// reallocated): label identity, not allocator internals, is what must
// survive a clone for solve-result bookkeeping to remain valid against
// either model.
func (m *Model) Clone() *Model {
	clone := &Model{
		name:          m.name,
		sense:         m.sense,
		logger:        m.logger,
		forceDimNames: m.forceDimNames,
		alloc:         m.alloc.clone(),
		objSense:      m.objSense,
	}
	clone.varFamilies = append([]*VariableFamily{}, m.varFamilies...)
	clone.varByName = make(map[string]*VariableFamily, len(m.varByName))
	for k, v := range m.varByName {
		clone.varByName[k] = v
	}
	clone.conFamilies = append([]*Constraint{}, m.conFamilies...)
	clone.conByName = make(map[string]*Constraint, len(m.conByName))
	for k, v := range m.conByName {
		clone.conByName[k] = v
	}
	clone.solvers = make(map[string]SolverAdapter, len(m.solvers))
	for k, v := range m.solvers {
		clone.solvers[k] = v
	}
	clone.objective = m.objective
	return clone
}

// AddVariables registers a new variable family: lower and upper are
// broadcast-aligned, labels are allocated for the resulting shape, and
// the family's metadata is stored on the model.
func (m *Model) AddVariables(lower, upper Bound, opts ...VariableOption) (*Variable, error) {
	cfg := &variableConfig{integrality: Continuous}
	for _, o := range opts {
		o(cfg)
	}

	names := make([]string, len(cfg.coords))
	for i := range names {
		if i < len(cfg.dims) {
			names[i] = cfg.dims[i]
		}
	}

	lowerArr, err := lower.normalize(names, cfg.coords)
	if err != nil {
		return nil, err
	}
	upperArr, err := upper.normalize(names, cfg.coords)
	if err != nil {
		return nil, err
	}

	shape, err := larray.CombineShapes(larray.ShapeOf(lowerArr), larray.ShapeOf(upperArr))
	if err != nil {
		return nil, err
	}
	lowerArr, err = larray.Expand(lowerArr, shape)
	if err != nil {
		return nil, err
	}
	upperArr, err = larray.Expand(upperArr, shape)
	if err != nil {
		return nil, err
	}

	if cfg.integrality == Binary {
		lowerArr, err = larray.New[float64](shape.Dims(), shape.CoordsList(), zeros(shapeLen(shape)))
		if err != nil {
			return nil, err
		}
		upperArr, err = larray.New[float64](shape.Dims(), shape.CoordsList(), ones(shapeLen(shape)))
		if err != nil {
			return nil, err
		}
	}

	if err := checkBounds(lowerArr, upperArr); err != nil {
		return nil, err
	}

	if m.forceDimNames {
		for _, d := range shape.Dims() {
			if larray.IsAnonymous(d) {
				return nil, fmt.Errorf("%w: dimension %q", ErrUnnamedDimension, d)
			}
		}
	}

	name := cfg.name
	if name == "" {
		name = fmt.Sprintf("var%d", len(m.varFamilies))
	}
	if _, dup := m.varByName[name]; dup {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	var maskArr *larray.Array[bool]
	if cfg.mask != nil {
		maskShape, err := larray.CombineShapes(shape, larray.ShapeOf(cfg.mask))
		if err != nil {
			return nil, err
		}
		if !shapeEqual(shape, maskShape) {
			return nil, fmt.Errorf("%w: mask dimensions must match bounds", ErrDimensionMismatch)
		}
		maskArr, err = larray.Expand(cfg.mask, maskShape)
		if err != nil {
			return nil, err
		}
	}

	// all validation done; the allocator only advances from here on
	n := lowerArr.Len()
	start, _ := m.alloc.AllocateVariables(n)
	labelData := make([]int64, n)
	for i := range labelData {
		labelData[i] = start + int64(i)
	}
	if maskArr != nil {
		for i, keep := range maskArr.Raw() {
			if !keep {
				labelData[i] = sentinelLabel
			}
		}
	}

	labels, err := larray.New[int64](shape.Dims(), shape.CoordsList(), labelData)
	if err != nil {
		return nil, err
	}

	f := &VariableFamily{
		id:          len(m.varFamilies),
		name:        name,
		labels:      labels,
		lower:       lowerArr,
		upper:       upperArr,
		integrality: cfg.integrality,
	}
	m.varFamilies = append(m.varFamilies, f)
	m.varByName[name] = f
	m.logger.Print(fmt.Sprintf("labelmodel: registered variable family %q with %d labels", name, n))

	return &Variable{model: m, family: f, labels: labels}, nil
}

// AddConstraints registers anon as a new constraint family, assigning it
// a contiguous block of constraint-labels.
func (m *Model) AddConstraints(anon *AnonymousConstraint, opts ...ConstraintOption) (*Constraint, error) {
	return m.registerConstraint(anon, opts)
}

// AddConstraintsTriple builds an AnonymousConstraint from (lhs, sign,
// rhs) and registers it, an alternative to comparing expressions first.
func (m *Model) AddConstraintsTriple(lhs *LinearExpression, sign Sign, rhs any, opts ...ConstraintOption) (*Constraint, error) {
	rhsArr, err := toArray(rhs)
	if err != nil {
		return nil, err
	}
	return m.registerConstraint(NewAnonymousConstraint(lhs, sign, rhsArr), opts)
}

// AddConstraintsFunc evaluates fn over the Cartesian product of coords
// and registers the assembled constraint (the rule-builder call shape).
func (m *Model) AddConstraintsFunc(dims []string, coords [][]any, fn ConstraintRuleFunc, opts ...ConstraintOption) (*Constraint, error) {
	anon, err := evalRuleConstraint(m, dims, coords, fn)
	if err != nil {
		return nil, err
	}
	return m.registerConstraint(anon, opts)
}

func (m *Model) registerConstraint(anon *AnonymousConstraint, opts []ConstraintOption) (*Constraint, error) {
	cfg := &constraintConfig{}
	for _, o := range opts {
		o(cfg)
	}

	for _, lbl := range anon.lhs.vars.Raw() {
		if lbl == sentinelLabel {
			continue
		}
		if lbl < 0 || lbl >= m.alloc.nextVar {
			return nil, fmt.Errorf("%w: label %d", ErrUnknownVariable, lbl)
		}
	}

	shape, err := larray.CombineShapes(larray.ShapeOf(anon.lhs.cnst), larray.ShapeOf(anon.rhs))
	if err != nil {
		return nil, err
	}
	// lhs and rhs may still carry only a subset of the combined
	// dimensions (e.g. a scalar lhs compared against an array rhs via the
	// triple call shape); bring both to the full broadcast so labels,
	// terms, and rhs stay index-aligned in the matrix view.
	anon, err = anon.expandTo(shape)
	if err != nil {
		return nil, err
	}

	name := cfg.name
	if name == "" {
		name = fmt.Sprintf("con%d", len(m.conFamilies))
	}
	if _, dup := m.conByName[name]; dup {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	var maskArr *larray.Array[bool]
	if cfg.mask != nil {
		var err error
		maskArr, err = larray.Expand(cfg.mask, shape)
		if err != nil {
			return nil, err
		}
	}

	// all validation done; the allocator only advances from here on
	n := shapeLen(shape)
	start, _ := m.alloc.AllocateConstraints(n)
	labelData := make([]int64, n)
	for i := range labelData {
		labelData[i] = start + int64(i)
	}
	if maskArr != nil {
		for i, keep := range maskArr.Raw() {
			if !keep {
				labelData[i] = sentinelLabel
			}
		}
	}

	labels, err := larray.New[int64](shape.Dims(), shape.CoordsList(), labelData)
	if err != nil {
		return nil, err
	}

	c := &Constraint{id: len(m.conFamilies), name: name, model: m, anon: anon, labels: labels}
	m.conFamilies = append(m.conFamilies, c)
	m.conByName[name] = c
	m.logger.Print(fmt.Sprintf("labelmodel: registered constraint family %q with %d labels", name, n))

	return c, nil
}

// RemoveConstraints releases a previously registered constraint family
// by name. Its constraint-labels are not reused (the allocator is
// strictly monotonic); ToMatrixView simply omits them afterward.
func (m *Model) RemoveConstraints(name string) error {
	c, ok := m.conByName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownConstraint, name)
	}
	delete(m.conByName, name)
	for i, cand := range m.conFamilies {
		if cand == c {
			m.conFamilies = append(m.conFamilies[:i], m.conFamilies[i+1:]...)
			break
		}
	}
	return nil
}

// LinExpr is the builder for c1*v1 + c2*v2 + …: each pair becomes a
// one-term expression (its coefficient broadcast against its variable)
// and is appended to the running result with Add, so the result carries
// one term per pair. The pairs are combined one at a time, not stacked in
// a single pass.
func (m *Model) LinExpr(pairs ...LinExprTerm) (*LinearExpression, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("labelmodel: linexpr requires at least one (coeff, var) pair")
	}
	var out *LinearExpression
	for _, p := range pairs {
		coeffArr, err := toArray(p.Coeff)
		if err != nil {
			return nil, err
		}
		if m.forceDimNames {
			for _, d := range coeffArr.Dims() {
				if larray.IsAnonymous(d) {
					return nil, fmt.Errorf("%w: dimension %q", ErrUnnamedDimension, d)
				}
			}
		}
		term, err := newExprFromPair(m, coeffArr, p.Var.labels)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = term
			continue
		}
		out, err = out.Add(term)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LinExprTerm is one (coefficient, variable) pair passed to LinExpr.
// Coeff may be a float64 or *larray.Array[float64].
type LinExprTerm struct {
	Coeff any
	Var   *Variable
}

// LinExprFunc is the rule-builder counterpart of LinExpr, evaluating fn
// at every point of coords' Cartesian product.
func (m *Model) LinExprFunc(dims []string, coords [][]any, fn RuleFunc) (*LinearExpression, error) {
	return evalRuleLinExpr(m, dims, coords, fn)
}

// AddObjective sets the model's objective expression, which must be
// zero-dimensional (call .Sum() first). A second call overwrites the
// existing objective unless overwrite is false.
func (m *Model) AddObjective(expr *LinearExpression, sense Sense, overwrite bool) error {
	if len(expr.Shape()) != 0 {
		return ErrObjectiveNotScalar
	}
	if m.objective != nil && !overwrite {
		return ErrObjectiveExists
	}
	m.objective = expr
	m.objSense = sense
	return nil
}

// ToMatrixView produces the deterministic solver-facing bundle of
// variables, triplets, rhs, signs, and objective coefficients.
func (m *Model) ToMatrixView() (*MatrixView, error) {
	return buildMatrixView(m)
}

// Solve invokes the solver adapter registered under solverID with the
// model's current matrix view.
func (m *Model) Solve(solverID string, options map[string]any) (*SolveResult, error) {
	return m.SolveWithContext(context.Background(), solverID, options)
}

// SolveWithContext is Solve with explicit cancellation: a cancelled
// context surfaces as its own error wrapped in ErrSolverError.
func (m *Model) SolveWithContext(ctx context.Context, solverID string, options map[string]any) (*SolveResult, error) {
	if m.objective == nil {
		return nil, ErrNoObjective
	}
	adapter, ok := m.solvers[solverID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, solverID)
	}

	view, err := m.ToMatrixView()
	if err != nil {
		return nil, err
	}
	if m.objSense == Maximize {
		for i := range view.C {
			view.C[i] = -view.C[i]
		}
	}

	m.logger.Print(fmt.Sprintf("labelmodel: invoking solver %q on %d variables and %d constraints", solverID, len(view.Vars), len(view.Cons)))
	res, err := adapter.Solve(ctx, view, options)
	if err != nil {
		m.logger.Print(fmt.Sprintf("labelmodel: solver %q failed: %v", solverID, err))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrSolverError, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrSolverError, err)
	}

	obj := res.Objective
	if m.objSense == Maximize {
		obj = -obj
	}

	result := &SolveResult{model: m, status: res.Status, objective: obj, primals: res.Primals, duals: res.Duals}
	m.lastResult = result
	return result, nil
}

func shapeLen(s *larray.Shape) int {
	n := 1
	for _, l := range s.Lens() {
		n *= l
	}
	return n
}

func shapeEqual(a, b *larray.Shape) bool {
	la, lb := a.Lens(), b.Lens()
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if la[i] != lb[i] {
			return false
		}
	}
	return true
}

func zeros(n int) []float64 { return make([]float64, n) }

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func checkBounds(lower, upper *larray.Array[float64]) error {
	lr, ur := lower.Raw(), upper.Raw()
	for i := range lr {
		if lr[i] > ur[i] {
			return fmt.Errorf("%w: lower %v > upper %v", ErrBoundsInvalid, lr[i], ur[i])
		}
	}
	return nil
}
