package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestExtField(t *testing.T) (*Field, *ExtField) {
	t.Helper()
	field, err := NewGoldilocksField()
	require.NoError(t, err)
	extField, err := NewExtField(field, 2, field.NewElementFromInt64(7))
	require.NoError(t, err)
	return field, extField
}

func TestExtFieldFromBaseIsBase(t *testing.T) {
	field, extField := newTestExtField(t)

	x := field.NewElementFromInt64(42)
	e := extField.FromBase(x)

	require.True(t, e.IsBase())
	require.Equal(t, x.String(), e.Limbs()[0].String())
	require.True(t, e.Limbs()[1].IsZero())
}

func TestExtFieldArithmeticAgreesWithBaseEmbedding(t *testing.T) {
	field, extField := newTestExtField(t)

	a := field.NewElementFromInt64(11)
	b := field.NewElementFromInt64(13)
	ea, eb := extField.FromBase(a), extField.FromBase(b)

	require.True(t, ea.Add(eb).Equal(extField.FromBase(a.Add(b))))
	require.True(t, ea.Mul(eb).Equal(extField.FromBase(a.Mul(b))))
	require.True(t, ea.Sub(eb).Equal(extField.FromBase(a.Sub(b))))
}

func TestExtFieldMulWrapsAcrossNonResidue(t *testing.T) {
	_, extField := newTestExtField(t)

	// Build X (limbs [0, 1]) and compute X * X, which must fold through
	// the nonResidue since the result has degree 2.
	x, err := extField.NewExtElement([]*FieldElement{extField.Base.Zero(), extField.Base.One()})
	require.NoError(t, err)

	xSquared := x.Mul(x)
	expected := extField.FromBase(extField.NonResidue)
	require.True(t, xSquared.Equal(expected))
}

func TestExtFieldInverseRoundTrip(t *testing.T) {
	_, extField := newTestExtField(t)

	e, err := extField.NewExtElement([]*FieldElement{
		extField.Base.NewElementFromInt64(3),
		extField.Base.NewElementFromInt64(5),
	})
	require.NoError(t, err)

	inv, err := e.Inv()
	require.NoError(t, err)
	require.True(t, e.Mul(inv).Equal(extField.One()))

	quotient, err := e.Div(e)
	require.NoError(t, err)
	require.True(t, quotient.Equal(extField.One()))
}

func TestExtFieldInverseOfZeroFails(t *testing.T) {
	_, extField := newTestExtField(t)
	_, err := extField.Zero().Inv()
	require.Error(t, err)
}

func TestExtFieldNewExtElementRejectsWrongLimbCount(t *testing.T) {
	_, extField := newTestExtField(t)
	_, err := extField.NewExtElement([]*FieldElement{extField.Base.One()})
	require.Error(t, err)
}
