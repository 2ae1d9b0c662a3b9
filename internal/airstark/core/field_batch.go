// Package core provides batch field inversion via Montgomery's trick.
package core

import (
	"fmt"
)

// BatchInversion performs batch inversion using Montgomery's trick
// This is approximately 3x faster than individual inversions for large batches
//
// Algorithm:
// 1. Compute accumulative products: acc[i] = elements[0] * ... * elements[i]
// 2. Invert the final accumulator: acc[n-1]^(-1)
// 3. Back-substitute to compute individual inverses
//
// Mathematical correctness:
// For elements a, b, c: (abc)^(-1) * (ab) = c^(-1)
func (f *Field) BatchInversion(elements []*FieldElement) ([]*FieldElement, error) {
	n := len(elements)
	if n == 0 {
		return []*FieldElement{}, nil
	}

	// Handle single element case
	if n == 1 {
		inv, err := elements[0].Inv()
		if err != nil {
			return nil, err
		}
		return []*FieldElement{inv}, nil
	}

	// Check for zero elements (cannot be inverted)
	for i, elem := range elements {
		if elem.IsZero() {
			return nil, fmt.Errorf("cannot invert zero element at index %d", i)
		}
	}

	// Phase 1: Accumulate products
	// acc[i] = elements[0] * elements[1] * ... * elements[i]
	acc := make([]*FieldElement, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	// Phase 2: Invert the final accumulator
	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, fmt.Errorf("failed to invert accumulator: %w", err)
	}

	// Phase 3: Back-substitute to compute individual inverses
	// elements[i]^(-1) = acc[i-1] * acc[i]^(-1)
	results := make([]*FieldElement, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv

	return results, nil
}
