package labelmodel

import "github.com/costela/labelmodel/larray"

// Option configures a Model at construction time.
type Option func(*Model) error

// WithLogger overrides the Model's no-op default Logger.
func WithLogger(logger Logger) Option {
	return func(m *Model) error {
		m.logger = logger
		return nil
	}
}

// WithForceDimNames turns on strict dimension naming: AddVariables fails
// with ErrUnnamedDimension when the family would carry an anonymously
// named dimension (dim_0, dim_1, ...), and LinExpr fails the same way for
// a coefficient array with such a dimension. Other operations (expression
// arithmetic, comparisons, rule builders, constraint registration) do not
// check dimension names.
func WithForceDimNames() Option {
	return func(m *Model) error {
		m.forceDimNames = true
		return nil
	}
}

// WithSolver registers a named SolverAdapter on the model, so Solve can
// be called with just that id.
func WithSolver(id string, adapter SolverAdapter) Option {
	return func(m *Model) error {
		if m.solvers == nil {
			m.solvers = make(map[string]SolverAdapter)
		}
		m.solvers[id] = adapter
		return nil
	}
}

// VariableOption configures a single call to AddVariables.
type VariableOption func(*variableConfig)

type variableConfig struct {
	name        string
	coords      [][]any
	dims        []string
	mask        *larray.Array[bool]
	integrality Integrality
}

// WithMask excludes coordinates where mask is false: those positions
// receive the sentinel label -1 and are omitted from the matrix view.
func WithMask(mask *larray.Array[bool]) VariableOption {
	return func(c *variableConfig) { c.mask = mask }
}

// WithName assigns a stable, unique name to a variable family. Duplicate
// names fail with ErrDuplicateName. Constraint families are named with
// WithConstraintName.
func WithName(name string) VariableOption {
	return func(c *variableConfig) { c.name = name }
}

// WithCoords supplies the coordinate tuple for an unlabeled bound array.
// Omitted dimension names become anonymous (dim_0, dim_1, ...); see
// WithDimNames.
func WithCoords(coords ...[]any) VariableOption {
	return func(c *variableConfig) { c.coords = coords }
}

// WithDimNames names the axes supplied via WithCoords, positionally.
func WithDimNames(names ...string) VariableOption {
	return func(c *variableConfig) { c.dims = names }
}

// AsInteger marks the family's variables as integer-valued.
func AsInteger() VariableOption {
	return func(c *variableConfig) { c.integrality = Integer }
}

// AsBinary marks the family's variables as binary: integer, with bounds
// fixed to [0,1] regardless of the lower/upper arguments passed to
// AddVariables.
func AsBinary() VariableOption {
	return func(c *variableConfig) { c.integrality = Binary }
}

// ConstraintOption configures a single call to AddConstraints.
type ConstraintOption func(*constraintConfig)

type constraintConfig struct {
	name string
	mask *larray.Array[bool]
}

// WithConstraintName assigns a stable, unique name to a constraint
// family, defaulting to "con<k>" when omitted.
func WithConstraintName(name string) ConstraintOption {
	return func(c *constraintConfig) { c.name = name }
}

// WithConstraintMask mirrors WithMask for constraint families: masked
// positions receive sentinel constraint-label -1 but still consume a
// label value, keeping the family's label range contiguous.
func WithConstraintMask(mask *larray.Array[bool]) ConstraintOption {
	return func(c *constraintConfig) { c.mask = mask }
}
