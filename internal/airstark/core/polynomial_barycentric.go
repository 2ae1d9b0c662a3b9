// Package core provides barycentric polynomial evaluation and the NTT
// (FFT/IFFT) pair every domain interpolation in this module is built on.
package core

import (
	"fmt"
	"math/big"
)

// BarycentricEvaluateExt evaluates the unique degree-(n-1) base-field
// polynomial through points -- a trace column's row values over its domain
// -- at a point of the degree-D extension field, without ever recovering
// coefficient form. MasterTable.EvaluateAtExtPoint uses this for
// out-of-domain openings at zeta: a single evaluation has no other use for
// the interpolated polynomial, so paying for an inverse NTT that produces
// coefficients just to Horner-evaluate them once is waste when the
// barycentric formula reaches the same value straight from the row values
// already on hand. The weights w_i live entirely in the base field (every
// x_i is a base-field domain point); only the (point - x_i) differences and
// the final numerator/denominator live in the extension field, since
// evaluationPoint does.
//
// The barycentric formula:
// L(x) = Σ (w_i * y_i) / (x - x_i) / Σ w_i / (x - x_i)
//
// Where w_i are the barycentric weights:
// w_i = 1 / Π_{j≠i} (x_i - x_j)
func BarycentricEvaluateExt(
	points []Point,
	field *Field,
	evaluationPoint *ExtElement,
	extField *ExtField,
) (*ExtElement, error) {
	n := len(points)
	if n == 0 {
		return nil, fmt.Errorf("no points provided")
	}

	// Special case: single point
	if n == 1 {
		return extField.FromBase(points[0].Y), nil
	}

	// Check if evaluation point is one of the interpolation points
	// If so, return the corresponding y value directly
	for _, p := range points {
		if evaluationPoint.Equal(extField.FromBase(p.X)) {
			return extField.FromBase(p.Y), nil
		}
	}

	// Compute barycentric weights (preprocessing step)
	// w_i = 1 / Π_{j≠i} (x_i - x_j)
	weights, err := computeBarycentricWeights(points, field)
	if err != nil {
		return nil, err
	}

	// Compute numerator and denominator using barycentric formula
	// numerator = Σ (w_i * y_i) / (x - x_i)
	// denominator = Σ w_i / (x - x_i)
	numerator := extField.Zero()
	denominator := extField.Zero()

	for i := 0; i < n; i++ {
		diff := evaluationPoint.Sub(extField.FromBase(points[i].X))
		diffInv, err := diff.Inv()
		if err != nil {
			return nil, fmt.Errorf("failed to invert difference %d: %w", i, err)
		}

		// term = w_i / (x - x_i)
		term := extField.FromBase(weights[i]).Mul(diffInv)

		// Add to numerator: w_i * y_i / (x - x_i)
		numerator = numerator.Add(term.Mul(extField.FromBase(points[i].Y)))

		// Add to denominator: w_i / (x - x_i)
		denominator = denominator.Add(term)
	}

	// Result = numerator / denominator
	return numerator.Div(denominator)
}

// computeBarycentricWeights computes the barycentric weights for interpolation
// w_i = 1 / Π_{j≠i} (x_i - x_j). The n products are inverted together via
// BatchInversion's Montgomery trick rather than one FieldElement.Inv call
// per weight, since every caller needs the whole weight vector at once
// anyway (BarycentricEvaluateExt calls this once per column, and every
// column shares the same domain, hence the same weights).
func computeBarycentricWeights(points []Point, field *Field) ([]*FieldElement, error) {
	n := len(points)
	products := make([]*FieldElement, n)

	for i := 0; i < n; i++ {
		product := field.One()

		for j := 0; j < n; j++ {
			if i != j {
				// product *= (x_i - x_j)
				diff := points[i].X.Sub(points[j].X)
				if diff.IsZero() {
					return nil, fmt.Errorf("duplicate interpolation points at index %d and %d", i, j)
				}
				product = product.Mul(diff)
			}
		}

		products[i] = product
	}

	weights, err := field.BatchInversion(products)
	if err != nil {
		return nil, fmt.Errorf("failed to invert barycentric weight products: %w", err)
	}
	return weights, nil
}

// IFFT performs inverse Fast Fourier Transform in the field
// Converts evaluation representation to coefficient representation
func IFFT(values []*FieldElement, omega *FieldElement, field *Field) ([]*FieldElement, error) {
	n := len(values)
	if n == 0 {
		return []*FieldElement{}, nil
	}

	// Check if n is power of 2
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("IFFT requires power-of-2 size, got %d", n)
	}

	// Use omega^(-1) for inverse FFT
	omegaInv, err := omega.Inv()
	if err != nil {
		return nil, fmt.Errorf("failed to invert omega: %w", err)
	}

	// Perform FFT with omega^(-1)
	coeffs, err := FFT(values, omegaInv, field)
	if err != nil {
		return nil, err
	}

	// Scale by 1/n
	nInv, err := field.NewElementFromInt64(int64(n)).Inv()
	if err != nil {
		return nil, fmt.Errorf("failed to compute 1/n: %w", err)
	}

	for i := 0; i < n; i++ {
		coeffs[i] = coeffs[i].Mul(nInv)
	}

	return coeffs, nil
}

// FFT performs Fast Fourier Transform in the field
// Uses Cooley-Tukey radix-2 decimation-in-time algorithm
func FFT(values []*FieldElement, omega *FieldElement, field *Field) ([]*FieldElement, error) {
	n := len(values)
	if n <= 1 {
		return values, nil
	}

	// Check if n is power of 2
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("FFT requires power-of-2 size, got %d", n)
	}

	// Bit-reversal permutation (in-place)
	result := make([]*FieldElement, n)
	copy(result, values)

	logN := 0
	temp := n
	for temp > 1 {
		logN++
		temp >>= 1
	}

	for i := 0; i < n; i++ {
		j := reverseBits(i, logN)
		if i < j {
			result[i], result[j] = result[j], result[i]
		}
	}

	// Cooley-Tukey butterfly
	for s := 1; s <= logN; s++ {
		m := 1 << s
		halfM := m >> 1

		// Compute omega^(n/m)
		exponent := big.NewInt(int64(n / m))
		wm := omega.Exp(exponent)

		for k := 0; k < n; k += m {
			w := field.One()

			for j := 0; j < halfM; j++ {
				t := w.Mul(result[k+j+halfM])
				u := result[k+j]
				result[k+j] = u.Add(t)
				result[k+j+halfM] = u.Sub(t)
				w = w.Mul(wm)
			}
		}
	}

	return result, nil
}

// reverseBits reverses the bits of an integer
func reverseBits(n int, bitLength int) int {
	result := 0
	for i := 0; i < bitLength; i++ {
		if n&(1<<i) != 0 {
			result |= 1 << (bitLength - 1 - i)
		}
	}
	return result
}

// GetPrimitiveRootOfUnity finds a primitive nth root of unity in the field
// Returns nil if no such root exists (n doesn't divide field order - 1)
func (f *Field) GetPrimitiveRootOfUnity(n int) *FieldElement {
	// For a prime field F_p, primitive nth root of unity exists iff n divides (p-1)

	pMinus1 := new(big.Int).Sub(f.modulus, big.NewInt(1))

	// Check if n divides (p-1)
	if new(big.Int).Mod(pMinus1, big.NewInt(int64(n))).Cmp(big.NewInt(0)) != 0 {
		return nil
	}

	// Find a generator g of the multiplicative group
	// Then omega = g^((p-1)/n) is a primitive nth root of unity

	// Try small candidates for generator
	for g := int64(2); g < 100; g++ {
		candidate := f.NewElementFromInt64(g)

		// Check if g^((p-1)/n) has order n
		exponent := new(big.Int).Div(pMinus1, big.NewInt(int64(n)))
		omega := candidate.Exp(exponent)

		// Verify omega^n = 1 and omega^k != 1 for k < n
		if omega.Exp(big.NewInt(int64(n))).Equal(f.One()) {
			// Check that omega has exactly order n
			hasOrderN := true
			for k := 1; k < n; k++ {
				if omega.Exp(big.NewInt(int64(k))).Equal(f.One()) {
					hasOrderN = false
					break
				}
			}

			if hasOrderN {
				return omega
			}
		}
	}

	return nil
}
