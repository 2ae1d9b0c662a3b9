package stark

import (
	"fmt"
	"math/big"

	"github.com/vybium/airstark/internal/airstark/core"
)

// EvalL0AndLLast evaluates, at a single point x, the three row selectors a
// ConstraintConsumer needs against the trace domain H (generator g, order
// n):
//
//   - l0: the Lagrange basis polynomial that is 1 at H's first point and 0
//     at every other point of H.
//   - lLast: the Lagrange basis polynomial that is 1 at H's last point
//     (g^(n-1)) and 0 at every other point of H.
//   - zLast: the linear factor (x - g^(n-1)), zero exactly at H's last
//     point and nonzero everywhere else in H; this is the mask transition
//     constraints use so they don't apply across the wraparound from the
//     last row back to the first.
//
// All three share the vanishing polynomial Z_H(x) = x^n - 1 in their
// numerator.
func EvalL0AndLLast(domain *ArithmeticDomain, x *core.FieldElement) (l0, lLast, zLast *core.FieldElement, err error) {
	field := domain.Field
	n := domain.Length

	xN := x.Exp(big.NewInt(int64(n)))
	zH := xN.Sub(field.One())

	nF := field.NewElementFromInt64(int64(n))

	denom0 := x.Sub(field.One()).Mul(nF)
	l0, err = zH.Div(denom0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("l0 evaluation point coincides with the domain's first point: %w", err)
	}

	lastPoint := domain.Generator.Exp(big.NewInt(int64(n - 1)))
	zLast = x.Sub(lastPoint)

	denomLast := zLast.Mul(nF)
	lLast, err = zH.Div(denomLast)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("l_last evaluation point coincides with the domain's last point: %w", err)
	}

	return l0, lLast, zLast, nil
}

// PackedL0AndLLast evaluates the same three selectors lane-wise across a
// packed vector of points, for use directly as a ConstraintConsumer's
// selectors while evaluating a whole packed row of the quotient domain.
func PackedL0AndLLast(field *core.Field, domain *ArithmeticDomain, xs *core.Packed) (l0, lLast, zLast *core.Packed, err error) {
	width := xs.Width()
	l0Lanes := make([]*core.FieldElement, width)
	lLastLanes := make([]*core.FieldElement, width)
	zLastLanes := make([]*core.FieldElement, width)

	for i := 0; i < width; i++ {
		l0v, lLastv, zLastv, e := EvalL0AndLLast(domain, xs.Lane(i))
		if e != nil {
			return nil, nil, nil, fmt.Errorf("lane %d: %w", i, e)
		}
		l0Lanes[i] = l0v
		lLastLanes[i] = lLastv
		zLastLanes[i] = zLastv
	}

	return core.NewPacked(field, l0Lanes), core.NewPacked(field, lLastLanes), core.NewPacked(field, zLastLanes), nil
}

// EvalL0AndLLastExt is EvalL0AndLLast's out-of-domain analogue: the same
// selectors, evaluated at a point of the degree-D extension field (the
// verifier's Fiat-Shamir challenge zeta) instead of the base field.
func EvalL0AndLLastExt(domain *ArithmeticDomain, extField *core.ExtField, x *core.ExtElement) (l0, lLast, zLast *core.ExtElement, err error) {
	n := domain.Length

	xN := extFieldPow(extField, x, n)
	zH := xN.Sub(extField.One())

	nF := extField.FromBase(domain.Field.NewElementFromInt64(int64(n)))

	denom0 := x.Sub(extField.One()).Mul(nF)
	l0, err = zH.Div(denom0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("l0 at the out-of-domain point coincides with the domain's first point: %w", err)
	}

	lastPoint := domain.Generator.Exp(big.NewInt(int64(n - 1)))
	zLast = x.Sub(extField.FromBase(lastPoint))

	denomLast := zLast.Mul(nF)
	lLast, err = zH.Div(denomLast)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("l_last at the out-of-domain point coincides with the domain's last point: %w", err)
	}

	return l0, lLast, zLast, nil
}

// extFieldPow raises an extension field element to a non-negative integer
// power by square-and-multiply, since ExtElement carries no Exp method of
// its own (unlike FieldElement, whose modular exponentiation reduces
// directly via big.Int.Exp).
func extFieldPow(extField *core.ExtField, e *core.ExtElement, exp int) *core.ExtElement {
	result := extField.One()
	base := e
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}
