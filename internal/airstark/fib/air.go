// Package fib implements the Fibonacci toy AIR used as an end-to-end test
// fixture: five trace columns carrying a Fibonacci recurrence alongside a
// range-check lookup on the row index, exercising both the constraint
// system and the lookup argument with the smallest AIR that needs both.
//
// Grounded on the teacher's own hardcoded Fibonacci relation in
// protocols/air.go's CreateTransitionConstraints/CreateBoundaryConstraints
// (f_{i+1} = f_i + f_{i-1} is the same recurrence that example already
// proves), generalized from a single-purpose struct into an implementation
// of stark.AIR and extended with a lookup the teacher's fixture didn't have.
package fib

import (
	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/stark"
)

// Column indices, in the fixed order every EvaluationFrame row uses.
const (
	ColX0 = iota
	ColX1
	ColI
	ColJ
	ColFreq
	NumColumns
)

// NumPublicInputs is the Fibonacci AIR's public input width: the first two
// trace values and the expected final output.
const NumPublicInputs = 3

// AIR implements stark.AIR for the Fibonacci recurrence x1' = x0 + x1,
// x0' = x1, with a range-check lookup proving the row-index column i only
// takes values in [0, height).
type AIR struct {
	Field    *core.Field
	ExtField *core.ExtField
	Height   int
}

// NewAIR builds a Fibonacci AIR for a trace of the given (power-of-two)
// height.
func NewAIR(field *core.Field, extField *core.ExtField, height int) *AIR {
	return &AIR{Field: field, ExtField: extField, Height: height}
}

func (a *AIR) Columns() []string {
	return []string{"x0", "x1", "i", "j", "freq"}
}

func (a *AIR) NumPublicInputs() int {
	return NumPublicInputs
}

// ConstraintDegree is 2: the AIR's own transition constraints are all
// degree 1, but the lookup argument's term 1/(looked+gamma) raised through
// the composition makes the effective constraint degree 2, the minimum
// spec.md requires whenever lookups are in play.
func (a *AIR) ConstraintDegree() int {
	return 2
}

// Lookups declares the single range-check lookup: every value of the row
// index column (ColI) must appear in the table column (ColJ), weighted by
// the precomputed multiplicity column (ColFreq). HelperColumn is appended
// after the main columns, matching the layout stark.Prover builds its
// evaluation frame with (main columns first, one helper slot per lookup).
func (a *AIR) Lookups() []stark.Lookup {
	return []stark.Lookup{
		stark.RangeCheckLookup("row index range check", ColI, ColJ, ColFreq, NumColumns),
	}
}

// EvalPackedBase evaluates the AIR's boundary and transition constraints
// over packed base-field rows.
func (a *AIR) EvalPackedBase(frame *stark.EvaluationFrame, publicInputs []*core.Packed, consumer *stark.ConstraintConsumer) {
	width := frame.Width()

	cur := frame.CurrentRow
	next := frame.NextRow

	zero := core.PackedZero(a.Field, width)

	// First row: x0 == public_inputs[0], x1 == public_inputs[1], i == 0.
	consumer.ConstraintFirstRow(cur[ColX0].Sub(publicInputs[0]))
	consumer.ConstraintFirstRow(cur[ColX1].Sub(publicInputs[1]))
	consumer.ConstraintFirstRow(cur[ColI].Sub(zero))

	// Transition: x0' == x1, x1' == x0 + x1, i' == i + 1.
	one := core.Splat(a.Field, width, a.Field.One())
	consumer.ConstraintTransition(next[ColX0].Sub(cur[ColX1]))
	consumer.ConstraintTransition(next[ColX1].Sub(cur[ColX0].Add(cur[ColX1])))
	consumer.ConstraintTransition(next[ColI].Sub(cur[ColI].Add(one)))

	// Last row: x1 == public_inputs[2] (the claimed Fibonacci output).
	consumer.ConstraintLastRow(cur[ColX1].Sub(publicInputs[2]))
}

// EvalExtension is EvalPackedBase's out-of-domain twin: the same
// constraints, evaluated once over the extension field at the verifier's
// challenge point, as stark.AIR's contract requires the two evaluators to
// agree on every constraint value.
func (a *AIR) EvalExtension(frame *stark.ExtensionFrame, publicInputs []*core.ExtElement, consumer *stark.ExtConstraintConsumer) {
	cur := frame.CurrentRow
	next := frame.NextRow

	consumer.ConstraintFirstRow(cur[ColX0].Sub(publicInputs[0]))
	consumer.ConstraintFirstRow(cur[ColX1].Sub(publicInputs[1]))
	consumer.ConstraintFirstRow(cur[ColI])

	one := a.ExtField.One()
	consumer.ConstraintTransition(next[ColX0].Sub(cur[ColX1]))
	consumer.ConstraintTransition(next[ColX1].Sub(cur[ColX0].Add(cur[ColX1])))
	consumer.ConstraintTransition(next[ColI].Sub(cur[ColI]).Sub(one))

	consumer.ConstraintLastRow(cur[ColX1].Sub(publicInputs[2]))
}

// Digest returns a deterministic AIR digest binding the proof's claim to
// this AIR's shape: column count, public input count, constraint degree
// and trace height. Not a cryptographic commitment to the constraint
// polynomials themselves (this toy AIR is fixed in code, not configurable
// at runtime), just the shape stark.Claim.Validate checks against.
func (a *AIR) Digest() []*core.FieldElement {
	return []*core.FieldElement{
		a.Field.NewElementFromInt64(int64(NumColumns)),
		a.Field.NewElementFromInt64(int64(NumPublicInputs)),
		a.Field.NewElementFromInt64(int64(a.ConstraintDegree())),
		a.Field.NewElementFromInt64(int64(a.Height)),
		a.Field.NewElementFromInt64(424242),
	}
}
