package fib

import (
	"fmt"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/stark"
)

// BuildTrace constructs the five trace columns for a height-n Fibonacci
// run seeded by x0Start, x1Start, plus the public input/output triple
// (spec.md's [x0, x1, F_{n-1}] convention). The row-index column i ranges
// over 0..n-1 and is range-checked by the lookup against the identity
// table j, with freq carrying the multiplicities that check needs.
func BuildTrace(field *core.Field, n int, x0Start, x1Start *core.FieldElement) ([][]*core.FieldElement, []*core.FieldElement, error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("fibonacci trace needs height >= 2, got %d", n)
	}

	x0 := make([]*core.FieldElement, n)
	x1 := make([]*core.FieldElement, n)
	i := make([]*core.FieldElement, n)

	x0[0] = x0Start
	x1[0] = x1Start
	i[0] = field.Zero()

	for row := 1; row < n; row++ {
		x0[row] = x1[row-1]
		x1[row] = x0[row-1].Add(x1[row-1])
		i[row] = field.NewElementFromInt64(int64(row))
	}

	j, err := stark.CreateRangeTable(field, n, n)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build range table: %w", err)
	}
	freq, err := stark.ComputeMultiplicities(field, i, j)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute multiplicities: %w", err)
	}

	columns := make([][]*core.FieldElement, NumColumns)
	columns[ColX0] = x0
	columns[ColX1] = x1
	columns[ColI] = i
	columns[ColJ] = j
	columns[ColFreq] = freq

	publicInputs := []*core.FieldElement{x0Start, x1Start, x1[n-1]}
	return columns, publicInputs, nil
}
