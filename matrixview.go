package labelmodel

import (
	"sort"

	"github.com/fxamacker/cbor/v2"
	"gonum.org/v1/gonum/mat"
)

// Triplet is one non-sentinel, post-summation entry of the constraint
// matrix A.
type Triplet struct {
	Row   int64   `cbor:"row"`
	Col   int64   `cbor:"col"`
	Value float64 `cbor:"value"`
}

// MatrixView is the deterministic, solver-agnostic bundle ToMatrixView
// produces: live variable-labels with aligned bounds and integrality,
// the constraint matrix as a deduplicated triplet list, rhs and sign
// aligned to constraint-label order, and the objective coefficient
// vector aligned to variable-label order.
type MatrixView struct {
	Vars     []int64   `cbor:"vars"`
	Lower    []float64 `cbor:"lower"`
	Upper    []float64 `cbor:"upper"`
	Integer  []bool    `cbor:"integer"`
	Cons     []int64   `cbor:"cons"`
	Triplets []Triplet `cbor:"triplets"`
	Rhs      []float64 `cbor:"rhs"`
	Sign     []Sign    `cbor:"sign"`
	C        []float64 `cbor:"c"`
}

// Marshal encodes the matrix view as CBOR, letting it cross a process
// boundary to an out-of-process solver without a bespoke wire format.
func (v *MatrixView) Marshal() ([]byte, error) {
	return cbor.Marshal(v)
}

// UnmarshalMatrixView decodes a CBOR-encoded matrix view.
func UnmarshalMatrixView(data []byte) (*MatrixView, error) {
	v := new(MatrixView)
	if err := cbor.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Dense materializes the deduplicated triplet list as a dense gonum
// matrix, for callers (or solver adapters) that want to hand gonum a
// ready-made mat.Matrix rather than re-deriving one from the triplets
// themselves. Returns nil when the view has no constraints or no
// variables, since a dense matrix cannot have a zero extent.
func (v *MatrixView) Dense() mat.Matrix {
	if len(v.Cons) == 0 || len(v.Vars) == 0 {
		return nil
	}
	rowOf := make(map[int64]int, len(v.Cons))
	for i, c := range v.Cons {
		rowOf[c] = i
	}
	colOf := make(map[int64]int, len(v.Vars))
	for i, x := range v.Vars {
		colOf[x] = i
	}
	d := mat.NewDense(len(v.Cons), len(v.Vars), nil)
	for _, t := range v.Triplets {
		r, okR := rowOf[t.Row]
		c, okC := colOf[t.Col]
		if !okR || !okC {
			continue
		}
		d.Set(r, c, t.Value)
	}
	return d
}

// buildMatrixView assembles a MatrixView from a Model's registered
// families, objective, and label allocator state. Iteration orders are
// by ascending label, and duplicate (row,col) triplets are summed
// pairwise in that order, so rebuilding a model with the same calls
// yields an identical view.
func buildMatrixView(m *Model) (*MatrixView, error) {
	view := &MatrixView{}

	type varEntry struct {
		label        int64
		lower, upper float64
		integer      bool
	}
	var varEntries []varEntry
	for _, f := range m.varFamilies {
		labels := f.labels.Raw()
		lower := f.lower.Raw()
		upper := f.upper.Raw()
		for i, lbl := range labels {
			if lbl == sentinelLabel {
				continue
			}
			varEntries = append(varEntries, varEntry{
				label:   lbl,
				lower:   lower[i],
				upper:   upper[i],
				integer: f.integrality != Continuous,
			})
		}
	}
	sort.Slice(varEntries, func(i, j int) bool { return varEntries[i].label < varEntries[j].label })
	view.Vars = make([]int64, len(varEntries))
	view.Lower = make([]float64, len(varEntries))
	view.Upper = make([]float64, len(varEntries))
	view.Integer = make([]bool, len(varEntries))
	colOf := make(map[int64]int, len(varEntries))
	for i, e := range varEntries {
		view.Vars[i] = e.label
		view.Lower[i] = e.lower
		view.Upper[i] = e.upper
		view.Integer[i] = e.integer
		colOf[e.label] = i
	}

	triplets := make(map[[2]int64]float64)
	type conEntry struct {
		label int64
		sign  Sign
		rhs   float64
	}
	var conEntries []conEntry
	for _, c := range m.conFamilies {
		conLabels := c.labels.Raw()
		rhs := c.anon.rhs.Raw()
		sign := c.anon.sign
		coeffs := c.anon.lhs.coeffs.Raw()
		vars := c.anon.lhs.vars.Raw()
		numTerms := c.anon.lhs.NumTerms()
		for i, clbl := range conLabels {
			if clbl == sentinelLabel {
				continue
			}
			conEntries = append(conEntries, conEntry{label: clbl, sign: sign, rhs: rhs[i]})
			for k := 0; k < numTerms; k++ {
				pos := i*numTerms + k
				vlbl := vars[pos]
				if vlbl == sentinelLabel {
					continue
				}
				coef := coeffs[pos]
				if coef == 0 {
					continue
				}
				key := [2]int64{clbl, vlbl}
				triplets[key] += coef
			}
		}
	}
	sort.Slice(conEntries, func(i, j int) bool { return conEntries[i].label < conEntries[j].label })
	view.Cons = make([]int64, len(conEntries))
	view.Rhs = make([]float64, len(conEntries))
	view.Sign = make([]Sign, len(conEntries))
	for i, e := range conEntries {
		view.Cons[i] = e.label
		view.Rhs[i] = e.rhs
		view.Sign[i] = e.sign
	}

	keys := make([][2]int64, 0, len(triplets))
	for k, v := range triplets {
		if v == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	view.Triplets = make([]Triplet, len(keys))
	for i, k := range keys {
		view.Triplets[i] = Triplet{Row: k[0], Col: k[1], Value: triplets[k]}
	}

	view.C = make([]float64, len(view.Vars))
	if m.objective != nil {
		coeffs := m.objective.coeffs.Raw()
		vars := m.objective.vars.Raw()
		for k := range coeffs {
			vlbl := vars[k]
			if vlbl == sentinelLabel {
				continue
			}
			if col, ok := colOf[vlbl]; ok {
				view.C[col] += coeffs[k]
			}
		}
	}

	return view, nil
}
