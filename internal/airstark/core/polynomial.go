package core

import (
	"fmt"
)

// Polynomial represents a polynomial with coefficients in a finite field.
//
// Only the coefficient-form representation and the two operations the
// rest of this module actually drives a polynomial through --
// Coefficients() (handed to an NTT or a domain's Evaluate) and Eval
// (a single out-of-domain opening) -- are kept here. Everything else a
// general-purpose polynomial type might offer (arithmetic, composition,
// division, interpolation) either has no caller in this codebase or is
// better served by core's NTT and barycentric-evaluation machinery, which
// operate directly on domain point/value pairs instead of round-tripping
// through a Polynomial.
type Polynomial struct {
	coefficients []*FieldElement
	field        *Field
}

// NewPolynomial creates a new polynomial from field elements
func NewPolynomial(coefficients []*FieldElement) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial must have at least one coefficient")
	}

	// Get the field from the first coefficient
	field := coefficients[0].Field()

	// Validate all coefficients are from the same field
	for i, coeff := range coefficients {
		if !coeff.Field().Equals(field) {
			return nil, fmt.Errorf("coefficient %d is from a different field", i)
		}
	}

	// Remove leading zeros
	trimmed := make([]*FieldElement, 0, len(coefficients))
	for i := len(coefficients) - 1; i >= 0; i-- {
		if !coefficients[i].IsZero() {
			trimmed = coefficients[:i+1]
			break
		}
	}

	if len(trimmed) == 0 {
		trimmed = []*FieldElement{field.Zero()}
	}

	return &Polynomial{
		coefficients: trimmed,
		field:        field,
	}, nil
}

// Coefficients returns a copy of the polynomial coefficients
func (p *Polynomial) Coefficients() []*FieldElement {
	coeffs := make([]*FieldElement, len(p.coefficients))
	copy(coeffs, p.coefficients)
	return coeffs
}

// Point is a single (x, f(x)) sample used by barycentric evaluation --
// the teacher's polynomial-interpolation input type, kept here since
// BarycentricEvaluateExt takes a domain's points directly rather than
// going through a Polynomial at all.
type Point struct {
	X *FieldElement
	Y *FieldElement
}

// NewPoint creates a new point
func NewPoint(x, y *FieldElement) *Point {
	return &Point{X: x, Y: y}
}

// Eval evaluates the polynomial at the given point
func (p *Polynomial) Eval(point *FieldElement) *FieldElement {
	if !point.Field().Equals(p.field) {
		panic("cannot evaluate polynomial at point from different field")
	}

	result := p.field.Zero()
	power := p.field.One()

	for i, coeff := range p.coefficients {
		if i > 0 {
			power = power.Mul(point)
		}
		term := coeff.Mul(power)
		result = result.Add(term)
	}

	return result
}
