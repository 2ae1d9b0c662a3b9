package stark

import "github.com/vybium/airstark/internal/airstark/core"

// EvalBasePolyAtExtPoint evaluates a polynomial whose coefficients live in
// the base field at a point of the degree-D extension field, via Horner's
// method carried out in the extension field. This is what lets the
// out-of-domain opening check zeta against polynomials that were never
// interpolated over the extension field in the first place.
func EvalBasePolyAtExtPoint(poly *core.Polynomial, point *core.ExtElement, extField *core.ExtField) *core.ExtElement {
	coeffs := poly.Coefficients()
	result := extField.Zero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result.Mul(point).Add(extField.FromBase(coeffs[i]))
	}
	return result
}

// basisVector returns the degree-D extension field's i-th monomial basis
// element, 1 in coordinate i and 0 elsewhere.
func basisVector(extField *core.ExtField, i int) *core.ExtElement {
	e := extField.Zero()
	limbs := e.Limbs()
	limbs[i] = extField.Base.One()
	out, err := extField.NewExtElement(limbs)
	if err != nil {
		// Degree mismatch here would mean extField itself is malformed;
		// every caller builds limbs from extField.Zero(), so this cannot fail.
		panic(err)
	}
	return out
}

// recombineLimbs reconstructs the value of a degree-D extension-valued
// polynomial at an out-of-domain point from the D separate base-field
// polynomials (one per coordinate limb) that it was decomposed into before
// committing, since Merkle/FRI only operate over base-field codewords.
func recombineLimbs(limbEvals []*core.ExtElement, extField *core.ExtField) *core.ExtElement {
	result := extField.Zero()
	for i, limbEval := range limbEvals {
		result = result.Add(limbEval.Mul(basisVector(extField, i)))
	}
	return result
}

// reduceWithPowers Horner-recombines a sequence of degree-bounded quotient
// chunk openings, chunks[0] + point*chunks[1] + point^2*chunks[2] + ...,
// back into the value the unchunked quotient polynomial would have taken at
// the same argument. point is the out-of-domain point zeta raised to the
// trace domain's length, the same splitting variable chunkQuotientColumns
// uses when dividing a quotient into degree-bounded pieces.
func reduceWithPowers(chunks []*core.ExtElement, point *core.ExtElement) *core.ExtElement {
	result := chunks[len(chunks)-1]
	for i := len(chunks) - 2; i >= 0; i-- {
		result = result.Mul(point).Add(chunks[i])
	}
	return result
}

// decomposeLimbColumns splits a length-n extension-valued column into
// extField.Degree base-field columns, one per coordinate limb, the layout
// Merkle commitment and FRI require.
func decomposeLimbColumns(column []*core.ExtElement, extField *core.ExtField) [][]*core.FieldElement {
	out := make([][]*core.FieldElement, extField.Degree)
	for limb := range out {
		out[limb] = make([]*core.FieldElement, len(column))
	}
	for row, e := range column {
		limbs := e.Limbs()
		for limb := range out {
			out[limb][row] = limbs[limb]
		}
	}
	return out
}
