package stark

import (
	"fmt"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/utils"
)

// isPowerOfTwo and nextPowerOfTwo delegate to the shared utils helpers so
// every domain-sizing decision in this package goes through one
// implementation.
func isPowerOfTwo(n int) bool   { return utils.IsPowerOfTwo(n) }
func nextPowerOfTwo(n int) int  { return utils.NextPowerOfTwo(n) }

// ArithmeticDomain represents a domain for polynomial operations: a coset
// of a multiplicative subgroup, {offset * generator^i : i = 0..length-1}.
//
// All domains have power-of-2 lengths for efficient NTT operations.
type ArithmeticDomain struct {
	Field *core.Field

	// Offset shifts the domain (use Field.One() for no offset)
	Offset *core.FieldElement

	// Generator is a primitive n-th root of unity where n = length
	Generator *core.FieldElement

	// Length is the number of elements in the domain (must be power of 2)
	Length int
}

// NewArithmeticDomain creates a domain with the given length and no offset.
func NewArithmeticDomain(field *core.Field, length int) (*ArithmeticDomain, error) {
	if !isPowerOfTwo(length) {
		return nil, fmt.Errorf("domain length must be a power of 2, got %d", length)
	}

	generator := field.GetPrimitiveRootOfUnity(length)
	if generator == nil {
		return nil, fmt.Errorf("field has no primitive %d-th root of unity", length)
	}

	return &ArithmeticDomain{
		Field:     field,
		Offset:    field.One(),
		Generator: generator,
		Length:    length,
	}, nil
}

// WithOffset returns a new domain with the given offset.
func (d *ArithmeticDomain) WithOffset(offset *core.FieldElement) *ArithmeticDomain {
	return &ArithmeticDomain{
		Field:     d.Field,
		Offset:    offset,
		Generator: d.Generator,
		Length:    d.Length,
	}
}

// Halve returns a domain with half the length. Both offset and generator
// are squared (not halved) to stay inside the original coset's square.
func (d *ArithmeticDomain) Halve() (*ArithmeticDomain, error) {
	if d.Length < 2 {
		return nil, fmt.Errorf("cannot halve domain of length %d", d.Length)
	}

	return &ArithmeticDomain{
		Field:     d.Field,
		Offset:    d.Offset.Mul(d.Offset),
		Generator: d.Generator.Mul(d.Generator),
		Length:    d.Length / 2,
	}, nil
}

// Double returns a domain with double the length.
func (d *ArithmeticDomain) Double() (*ArithmeticDomain, error) {
	doubleLength := d.Length * 2

	generator := d.Field.GetPrimitiveRootOfUnity(doubleLength)
	if generator == nil {
		return nil, fmt.Errorf("field has no primitive %d-th root of unity", doubleLength)
	}

	return &ArithmeticDomain{
		Field:     d.Field,
		Offset:    d.Offset,
		Generator: generator,
		Length:    doubleLength,
	}, nil
}

// Elements returns all elements in the domain: {offset * generator^i}.
func (d *ArithmeticDomain) Elements() []*core.FieldElement {
	elements := make([]*core.FieldElement, d.Length)
	current := d.Offset
	for i := 0; i < d.Length; i++ {
		elements[i] = current
		current = current.Mul(d.Generator)
	}
	return elements
}

// Evaluate low-degree-extends a polynomial (in coefficient form) over the
// entire domain. Uses a coset FFT when the domain generator is a power of
// two root of unity matching the polynomial's padded coefficient length;
// otherwise falls back to direct (Horner) evaluation per point.
func (d *ArithmeticDomain) Evaluate(poly *core.Polynomial) ([]*core.FieldElement, error) {
	coeffs := poly.Coefficients()
	if len(coeffs) <= d.Length && isPowerOfTwo(len(coeffs)) && len(coeffs) > 0 {
		padded := make([]*core.FieldElement, d.Length)
		copy(padded, coeffs)
		for i := len(coeffs); i < d.Length; i++ {
			padded[i] = d.Field.Zero()
		}
		if !d.Offset.IsOne() {
			scale := d.Field.One()
			for i := range padded {
				padded[i] = padded[i].Mul(scale)
				scale = scale.Mul(d.Offset)
			}
		}
		return core.FFT(padded, d.Generator, d.Field)
	}

	domainElements := d.Elements()
	values := make([]*core.FieldElement, len(domainElements))
	for i, x := range domainElements {
		values[i] = poly.Eval(x)
	}
	return values, nil
}

// String returns a human-readable representation.
func (d *ArithmeticDomain) String() string {
	return fmt.Sprintf("Domain{length: %d, offset: %s, generator: %s}",
		d.Length, d.Offset, d.Generator)
}

// ProverDomains contains all arithmetic domains used by the prover:
//   - trace: the original execution trace domain
//   - randomized_trace: extended for zero-knowledge randomizers
//   - quotient: for computing constraint quotients
//   - fri: for the FRI low-degree test
type ProverDomains struct {
	// Trace domain: dictated by the execution trace height
	Trace *ArithmeticDomain

	// Randomized trace domain: includes trace randomizers for zero-knowledge.
	// Must be exactly 2x the trace domain length.
	RandomizedTrace *ArithmeticDomain

	// Quotient domain: large enough for constraint computations
	Quotient *ArithmeticDomain

	// FRI domain: for the FRI protocol
	FRI *ArithmeticDomain
}

// DeriveProverDomains computes all domains needed for proving:
//  1. Compute randomized trace length (padded_height + num_randomizers, rounded up to a power of 2)
//  2. Trace domain is half of the randomized trace domain (must be derived, not created directly)
//  3. Quotient domain length is the next power of 2 >= max_degree
//  4. FRI domain is provided by the caller's FRI parameters
func DeriveProverDomains(
	field *core.Field,
	paddedHeight int,
	numTraceRandomizers int,
	friDomain *ArithmeticDomain,
	maxDegree int,
) (*ProverDomains, error) {
	randomizedTraceLen := paddedHeight + numTraceRandomizers
	randomizedTraceLen = nextPowerOfTwo(randomizedTraceLen)
	randomizedTraceDomain, err := NewArithmeticDomain(field, randomizedTraceLen)
	if err != nil {
		return nil, fmt.Errorf("failed to create randomized trace domain: %w", err)
	}

	traceDomain, err := randomizedTraceDomain.Halve()
	if err != nil {
		return nil, fmt.Errorf("failed to halve randomized trace domain: %w", err)
	}

	quotientDomainLen := nextPowerOfTwo(maxDegree)
	quotientDomain, err := NewArithmeticDomain(field, quotientDomainLen)
	if err != nil {
		return nil, fmt.Errorf("failed to create quotient domain: %w", err)
	}
	quotientDomain = quotientDomain.WithOffset(friDomain.Offset)

	return &ProverDomains{
		Trace:           traceDomain,
		RandomizedTrace: randomizedTraceDomain,
		Quotient:        quotientDomain,
		FRI:             friDomain,
	}, nil
}

// String returns a human-readable representation of all domains.
func (pd *ProverDomains) String() string {
	return fmt.Sprintf(`ProverDomains{
  Trace: %s
  RandomizedTrace: %s
  Quotient: %s
  FRI: %s
}`, pd.Trace, pd.RandomizedTrace, pd.Quotient, pd.FRI)
}
