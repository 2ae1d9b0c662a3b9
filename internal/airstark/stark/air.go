package stark

import "github.com/vybium/airstark/internal/airstark/core"

// AIR is an Algebraic Intermediate Representation: the declaration of a
// computation's trace shape, its lookup arguments, and the polynomial
// constraints that a valid trace must satisfy.
//
// Constraints are evaluated twice per proof: once over the base field,
// packed across lanes, for the bulk of the quotient-domain evaluation
// (EvalPackedBase); and once over the degree-D extension field, at a
// single out-of-domain point, for the verifier's Fiat-Shamir-bound
// composition check (EvalExtension). Both evaluations must agree on every
// constraint, a property exercised directly by the "packed == scalar"
// testable property.
type AIR interface {
	// Columns names each trace column, in the fixed order EvaluationFrame
	// rows are indexed by.
	Columns() []string

	// NumPublicInputs returns how many public input values the AIR's
	// constraints reference (e.g. boundary constraints pinning the first
	// row to externally-known values).
	NumPublicInputs() int

	// ConstraintDegree is the maximum total degree of any single
	// constraint polynomial in the trace columns; it determines the
	// quotient domain size (quotient domain >= ConstraintDegree *
	// interpolant degree).
	ConstraintDegree() int

	// Lookups returns the lookup arguments (permutation/range checks) this
	// AIR requires alongside its polynomial constraints.
	Lookups() []Lookup

	// EvalPackedBase evaluates every constraint at a packed row (current
	// and next rows, lane-batched) over the base field, folding violations
	// into consumer via the alpha-weighted random linear combination.
	EvalPackedBase(frame *EvaluationFrame, publicInputs []*core.Packed, consumer *ConstraintConsumer)

	// EvalExtension evaluates every constraint once, at a single
	// out-of-domain point, over the degree-D extension field.
	EvalExtension(frame *ExtensionFrame, publicInputs []*core.ExtElement, consumer *ExtConstraintConsumer)
}

// quotientDegreeFactor computes how many degree-bounded pieces the
// accumulated quotient polynomial for each alpha challenge must be split
// into before FRI can prove a tight degree bound on it.
//
// A constraint of total degree d, evaluated against trace columns that are
// themselves degree-(N-1) polynomials over the randomized trace domain and
// then divided by that domain's degree-N vanishing polynomial, produces a
// quotient of degree roughly (d-1)*N. Splitting it into max(1, d-1) pieces
// of at most N coefficients each (chunkQuotientColumns) keeps every
// committed piece's true degree within one trace domain length, so FRI's
// StopDegree can enforce the tight bound N-1 per piece instead of the much
// looser bound the full FRI domain length would allow.
func quotientDegreeFactor(air AIR) int {
	factor := air.ConstraintDegree() - 1
	if factor < 1 {
		return 1
	}
	return factor
}
