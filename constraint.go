package labelmodel

import "github.com/costela/labelmodel/larray"

// AnonymousConstraint is an immutable triple (lhs, sign, rhs). It
// carries no constraint-labels; Model.AddConstraints assigns those on
// registration.
type AnonymousConstraint struct {
	lhs  *LinearExpression
	sign Sign
	rhs  *larray.Array[float64]
}

// NewAnonymousConstraint builds a triple directly, bypassing comparison
// operators; every AddConstraints call shape normalizes to this form
// before registration.
func NewAnonymousConstraint(lhs *LinearExpression, sign Sign, rhs *larray.Array[float64]) *AnonymousConstraint {
	return &AnonymousConstraint{lhs: lhs, sign: sign, rhs: rhs}
}

// Lhs returns the constraint's left-hand expression.
func (c *AnonymousConstraint) Lhs() *LinearExpression { return c.lhs }

// Sign returns the constraint's comparison operator.
func (c *AnonymousConstraint) Sign() Sign { return c.sign }

// Rhs returns the constraint's right-hand value array.
func (c *AnonymousConstraint) Rhs() *larray.Array[float64] { return c.rhs }

// Shape returns the constraint's outer shape: broadcast(lhs.Shape(), rhs.Shape()).
func (c *AnonymousConstraint) Shape() ([]int, error) {
	shape, err := larray.CombineShapes(larray.ShapeOf(c.lhs.cnst), larray.ShapeOf(c.rhs))
	if err != nil {
		return nil, err
	}
	return shape.Lens(), nil
}

// expandTo broadcasts the constraint's lhs and rhs to the combined outer
// shape, so registration allocates one constraint-label per position of
// the full broadcast and the matrix view can iterate labels, terms, and
// rhs in lockstep.
func (c *AnonymousConstraint) expandTo(shape *larray.Shape) (*AnonymousConstraint, error) {
	coeffs, err := larray.ExpandOuter(c.lhs.coeffs, shape)
	if err != nil {
		return nil, err
	}
	vars, err := larray.ExpandOuter(c.lhs.vars, shape)
	if err != nil {
		return nil, err
	}
	cnst, err := larray.Expand(c.lhs.cnst, shape)
	if err != nil {
		return nil, err
	}
	rhs, err := larray.Expand(c.rhs, shape)
	if err != nil {
		return nil, err
	}
	lhs := &LinearExpression{model: c.lhs.model, coeffs: coeffs, vars: vars, cnst: cnst}
	return &AnonymousConstraint{lhs: lhs, sign: c.sign, rhs: rhs}, nil
}

// SetLhs always fails with ErrImmutable: an AnonymousConstraint is fixed
// at construction. Build a new one with NewAnonymousConstraint or a fresh
// comparison instead.
func (c *AnonymousConstraint) SetLhs(*LinearExpression) error { return ErrImmutable }

// SetSign always fails with ErrImmutable; see SetLhs.
func (c *AnonymousConstraint) SetSign(Sign) error { return ErrImmutable }

// SetRhs always fails with ErrImmutable; see SetLhs.
func (c *AnonymousConstraint) SetRhs(*larray.Array[float64]) error { return ErrImmutable }

// Constraint is an AnonymousConstraint plus the constraint-label array
// assigned to it at registration, bound to a specific Model.
type Constraint struct {
	id     int
	name   string
	model  *Model
	anon   *AnonymousConstraint
	labels *larray.Array[int64]
}

// Name returns the constraint family's registered name.
func (c *Constraint) Name() string { return c.name }

// Lhs, Sign, Rhs expose the underlying AnonymousConstraint's fields.
func (c *Constraint) Lhs() *LinearExpression      { return c.anon.lhs }
func (c *Constraint) Sign() Sign                  { return c.anon.sign }
func (c *Constraint) Rhs() *larray.Array[float64] { return c.anon.rhs }

// Labels exposes the constraint-label array assigned at registration.
func (c *Constraint) Labels() *larray.Array[int64] { return c.labels }
