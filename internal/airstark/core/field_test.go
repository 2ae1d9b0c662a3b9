package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldArithmeticRoundTrip(t *testing.T) {
	field, err := NewGoldilocksField()
	require.NoError(t, err)

	a := field.NewElementFromInt64(17)
	b := field.NewElementFromInt64(5)

	require.True(t, a.Add(b).Sub(b).Equal(a))
	require.True(t, a.Mul(b).Equal(field.NewElementFromInt64(85)))
	require.True(t, a.Neg().Add(a).IsZero())
}

func TestFieldInverseAndDivision(t *testing.T) {
	field, err := NewGoldilocksField()
	require.NoError(t, err)

	a := field.NewElementFromInt64(12345)
	inv, err := a.Inv()
	require.NoError(t, err)
	require.True(t, a.Mul(inv).IsOne())

	quotient, err := a.Div(a)
	require.NoError(t, err)
	require.True(t, quotient.IsOne())

	_, err = field.Zero().Inv()
	require.Error(t, err)
}

func TestFieldExpMatchesRepeatedMultiplication(t *testing.T) {
	field, err := NewGoldilocksField()
	require.NoError(t, err)

	a := field.NewElementFromInt64(7)
	expected := field.One()
	for i := 0; i < 5; i++ {
		expected = expected.Mul(a)
	}
	require.True(t, a.Exp(big.NewInt(5)).Equal(expected))
	require.True(t, a.Square().Equal(a.Mul(a)))
}

func TestFieldSqrtRecoversQuadraticResidue(t *testing.T) {
	field, err := NewGoldilocksField()
	require.NoError(t, err)

	square := field.NewElementFromInt64(9).Square()
	root, err := square.Sqrt()
	require.NoError(t, err)
	require.True(t, root.Square().Equal(square))
}

func TestFieldElementsFromDifferentFieldsRejectOperations(t *testing.T) {
	fieldA, err := NewField(big.NewInt(101))
	require.NoError(t, err)
	fieldB, err := NewField(big.NewInt(103))
	require.NoError(t, err)

	a := fieldA.NewElementFromInt64(1)
	b := fieldB.NewElementFromInt64(1)

	require.False(t, a.Equal(b))
	require.Panics(t, func() { a.Add(b) })
}

func TestGetPrimitiveRootOfUnityGeneratesExpectedOrder(t *testing.T) {
	field, err := NewGoldilocksField()
	require.NoError(t, err)

	const n = 16
	root := field.GetPrimitiveRootOfUnity(n)
	require.NotNil(t, root)

	power := field.One()
	for i := 0; i < n; i++ {
		power = power.Mul(root)
	}
	require.True(t, power.IsOne(), "root^n should be 1")

	half := field.One()
	for i := 0; i < n/2; i++ {
		half = half.Mul(root)
	}
	require.False(t, half.IsOne(), "root^(n/2) should not be 1 for a primitive root")
}

func TestBatchInversion(t *testing.T) {
	field, err := NewGoldilocksField()
	require.NoError(t, err)

	elements := []*FieldElement{
		field.NewElementFromInt64(2),
		field.NewElementFromInt64(3),
		field.NewElementFromInt64(4),
	}
	inverses, err := field.BatchInversion(elements)
	require.NoError(t, err)
	require.Len(t, inverses, len(elements))
	for i, e := range elements {
		require.True(t, e.Mul(inverses[i]).IsOne())
	}
}
