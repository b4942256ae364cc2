package labelmodel

import (
	"errors"

	"github.com/costela/labelmodel/larray"
)

// Sentinel errors for the modeling core, one per failure condition.
// Callers should match them with errors.Is; call sites wrap with
// fmt.Errorf("...: %w", err) to add the offending name or dimension.
var (
	// ErrMissingCoordinates: an unlabeled array was supplied as a bound or
	// coefficient without accompanying coords.
	ErrMissingCoordinates = errors.New("labelmodel: coordinates required for unlabeled array")

	// ErrUnnamedDimension: an operation would produce an anonymously named
	// dimension while the model's force_dim_names option is set.
	ErrUnnamedDimension = errors.New("labelmodel: anonymous dimension not allowed")

	// ErrDimensionMismatch: two operands share a dimension name but
	// disagree on its coordinate index. Aliased to the larray
	// collaborator's sentinel so a mismatch detected at any depth of the
	// broadcasting machinery matches with errors.Is at the surface.
	ErrDimensionMismatch = larray.ErrDimensionMismatch

	// ErrDuplicateName: a variable or constraint family name collides with
	// one already registered.
	ErrDuplicateName = errors.New("labelmodel: duplicate name")

	// ErrImmutable: an attempt was made to mutate an AnonymousConstraint
	// after construction.
	ErrImmutable = errors.New("labelmodel: anonymous constraint is immutable")

	// ErrRuleArityError: a rule function returned a value that was not the
	// expected scalar LinearExpression/AnonymousConstraint.
	ErrRuleArityError = errors.New("labelmodel: rule function returned a non-scalar result")

	// ErrUnknownVariable: an expression references a variable-label that
	// does not belong to this Model.
	ErrUnknownVariable = errors.New("labelmodel: unknown variable")

	// ErrObjectiveExists: add_objective was called a second time with
	// overwrite disabled.
	ErrObjectiveExists = errors.New("labelmodel: objective already set")

	// ErrBoundsInvalid: lower > upper somewhere after broadcasting.
	ErrBoundsInvalid = errors.New("labelmodel: lower bound exceeds upper bound")

	// ErrSolverError: the registered solver adapter reported a failure.
	ErrSolverError = errors.New("labelmodel: solver error")

	// ErrNoObjective: solve was invoked before an objective was set.
	ErrNoObjective = errors.New("labelmodel: no objective set")

	// ErrUnknownSolver: solve named a solver id with no registered adapter.
	ErrUnknownSolver = errors.New("labelmodel: unknown solver adapter")

	// ErrUnknownConstraint: remove_constraints named a constraint family
	// that isn't registered.
	ErrUnknownConstraint = errors.New("labelmodel: unknown constraint family")

	// ErrObjectiveNotScalar: AddObjective was called with an expression
	// that still carries residual outer dimensions; call Sum() first.
	ErrObjectiveNotScalar = errors.New("labelmodel: objective expression must be zero-dimensional; call Sum() first")

	// errTermAxis is raised when an operation tries to treat the term axis
	// as an ordinary outer dimension (e.g. summing it directly). The term
	// axis is always the trailing axis and never reduces on its own.
	errTermAxis = errors.New("labelmodel: term axis cannot be reduced directly; use Sum() with no arguments to fold every dimension")
)
