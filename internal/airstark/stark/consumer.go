package stark

import "github.com/vybium/airstark/internal/airstark/core"

// ConstraintConsumer accumulates every constraint an AIR emits into
// NumChallenges independent Horner-folded running sums, one per random
// alpha challenge. Folding N constraints into a handful of accumulators
// this way means the prover never materializes N separate quotient
// polynomials: accumulator[c] = accumulator[c]*alpha[c] + value is applied
// once per constraint, in order, so by the end each accumulator equals
// sum_i value_i * alpha[c]^(N-i) -- the same random linear combination a
// naive alpha-power approach would compute, without ever storing alpha^k.
//
// Boundary constraints (first row, last row) and transition constraints
// are masked by Lagrange selectors before folding, so they vanish
// everywhere they shouldn't apply without the AIR author needing to encode
// that masking by hand.
type ConstraintConsumer struct {
	field *core.Field

	alphas []*core.FieldElement

	// zLast is nonzero everywhere except the last row; it masks
	// transition constraints so they don't spuriously fire across the
	// wraparound from the last row back to the first.
	zLast *core.Packed

	// lagrangeFirst is 1 at the first row and 0 elsewhere.
	lagrangeFirst *core.Packed
	// lagrangeLast is 1 at the last row and 0 elsewhere.
	lagrangeLast *core.Packed

	accumulators []*core.Packed
}

// NewConstraintConsumer builds a consumer for the given alpha challenges
// and row selectors, all sharing the same packed lane width.
func NewConstraintConsumer(
	field *core.Field,
	alphas []*core.FieldElement,
	zLast, lagrangeFirst, lagrangeLast *core.Packed,
) *ConstraintConsumer {
	width := zLast.Width()
	accumulators := make([]*core.Packed, len(alphas))
	for i := range accumulators {
		accumulators[i] = core.PackedZero(field, width)
	}
	return &ConstraintConsumer{
		field:         field,
		alphas:        alphas,
		zLast:         zLast,
		lagrangeFirst: lagrangeFirst,
		lagrangeLast:  lagrangeLast,
		accumulators:  accumulators,
	}
}

// Constraint folds an unconditional constraint (one that must vanish on
// every row) into every accumulator.
func (cc *ConstraintConsumer) Constraint(value *core.Packed) {
	for i, alpha := range cc.alphas {
		scaled := cc.accumulators[i].MulScalar(alpha)
		cc.accumulators[i] = scaled.Add(value)
	}
}

// ConstraintTransition folds a constraint that must vanish on every row
// except the last (it relates CurrentRow to NextRow, and there is no "next
// row" after the last one).
func (cc *ConstraintConsumer) ConstraintTransition(value *core.Packed) {
	cc.Constraint(value.Mul(cc.zLast))
}

// ConstraintFirstRow folds a constraint that must vanish everywhere except
// the first row (a boundary/initial-value constraint).
func (cc *ConstraintConsumer) ConstraintFirstRow(value *core.Packed) {
	cc.Constraint(value.Mul(cc.lagrangeFirst))
}

// ConstraintLastRow folds a constraint that must vanish everywhere except
// the last row (a boundary/final-value constraint).
func (cc *ConstraintConsumer) ConstraintLastRow(value *core.Packed) {
	cc.Constraint(value.Mul(cc.lagrangeLast))
}

// Accumulators returns the folded per-challenge running sums.
func (cc *ConstraintConsumer) Accumulators() []*core.Packed {
	return cc.accumulators
}

// ExtConstraintConsumer is ConstraintConsumer's out-of-domain analogue: the
// same Horner-folding, but over single extension-field values rather than
// packed base-field lanes, used for the verifier-side composition check at
// the challenge point zeta.
type ExtConstraintConsumer struct {
	extField *core.ExtField

	alphas []*core.ExtElement

	zLast         *core.ExtElement
	lagrangeFirst *core.ExtElement
	lagrangeLast  *core.ExtElement

	accumulators []*core.ExtElement
}

// NewExtConstraintConsumer builds an out-of-domain consumer.
func NewExtConstraintConsumer(
	extField *core.ExtField,
	alphas []*core.ExtElement,
	zLast, lagrangeFirst, lagrangeLast *core.ExtElement,
) *ExtConstraintConsumer {
	accumulators := make([]*core.ExtElement, len(alphas))
	for i := range accumulators {
		accumulators[i] = extField.Zero()
	}
	return &ExtConstraintConsumer{
		extField:      extField,
		alphas:        alphas,
		zLast:         zLast,
		lagrangeFirst: lagrangeFirst,
		lagrangeLast:  lagrangeLast,
		accumulators:  accumulators,
	}
}

// Constraint folds an unconditional constraint into every accumulator.
func (cc *ExtConstraintConsumer) Constraint(value *core.ExtElement) {
	for i, alpha := range cc.alphas {
		scaled := cc.accumulators[i].Mul(alpha)
		cc.accumulators[i] = scaled.Add(value)
	}
}

// ConstraintTransition masks by zLast before folding.
func (cc *ExtConstraintConsumer) ConstraintTransition(value *core.ExtElement) {
	cc.Constraint(value.Mul(cc.zLast))
}

// ConstraintFirstRow masks by lagrangeFirst before folding.
func (cc *ExtConstraintConsumer) ConstraintFirstRow(value *core.ExtElement) {
	cc.Constraint(value.Mul(cc.lagrangeFirst))
}

// ConstraintLastRow masks by lagrangeLast before folding.
func (cc *ExtConstraintConsumer) ConstraintLastRow(value *core.ExtElement) {
	cc.Constraint(value.Mul(cc.lagrangeLast))
}

// Accumulators returns the folded per-challenge running sums.
func (cc *ExtConstraintConsumer) Accumulators() []*core.ExtElement {
	return cc.accumulators
}
