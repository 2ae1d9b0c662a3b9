package fib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/stark"
)

// goldilocksQuadraticNonResidue is 7, the standard choice making X^2 - 7
// irreducible over the Goldilocks base field (the same constant already
// used as this module's FRI coset offset).
const goldilocksQuadraticNonResidue = 7

func newTestFields(t *testing.T) (*core.Field, *core.ExtField) {
	t.Helper()
	field, err := core.NewGoldilocksField()
	require.NoError(t, err)
	extField, err := core.NewExtField(field, 2, field.NewElementFromInt64(goldilocksQuadraticNonResidue))
	require.NoError(t, err)
	return field, extField
}

func buildClaim(air *AIR, publicInputs []*core.FieldElement) *stark.Claim {
	return stark.NewClaim(air.Digest()).WithInput(publicInputs)
}

// TestFibonacciProveVerifyRoundTrip exercises the happy path (spec.md's S1
// scenario): a valid Fibonacci trace of height 32 proves and verifies.
func TestFibonacciProveVerifyRoundTrip(t *testing.T) {
	field, extField := newTestFields(t)
	const height = 32

	columns, publicInputs, err := BuildTrace(field, height, field.Zero(), field.One())
	require.NoError(t, err)

	air := NewAIR(field, extField, height)
	claim := buildClaim(air, publicInputs)

	config := stark.StandardFastConfig()
	prover := stark.NewProver(field, extField, config)
	proofWithInputs, err := prover.Prove(air, claim, columns)
	require.NoError(t, err)

	verifier := stark.NewVerifier(field, extField, config)
	err = verifier.Verify(air, proofWithInputs, height)
	require.NoError(t, err)
}

// TestFibonacciProveIsDeterministic checks that proving the same trace
// twice produces byte-for-byte identical openings: the transcript is seeded
// only by the claim and the committed data, never by fresh randomness.
func TestFibonacciProveIsDeterministic(t *testing.T) {
	field, extField := newTestFields(t)
	const height = 16

	columns, publicInputs, err := BuildTrace(field, height, field.Zero(), field.One())
	require.NoError(t, err)

	air := NewAIR(field, extField, height)
	claim := buildClaim(air, publicInputs)
	config := stark.StandardFastConfig()
	prover := stark.NewProver(field, extField, config)

	first, err := prover.Prove(air, claim, columns)
	require.NoError(t, err)
	second, err := prover.Prove(air, claim, columns)
	require.NoError(t, err)

	require.Equal(t, len(first.Proof.Openings.TraceLocal), len(second.Proof.Openings.TraceLocal))
	for i := range first.Proof.Openings.TraceLocal {
		require.True(t, first.Proof.Openings.TraceLocal[i].Equal(second.Proof.Openings.TraceLocal[i]))
	}
	require.True(t, first.Proof.Openings.QuotientChunks[0].Equal(second.Proof.Openings.QuotientChunks[0]))
}

// TestFibonacciVerifyRejectsTamperedOpening checks that mutating a single
// opened trace value after proving, without touching anything else, makes
// verification fail: the composition identity ties every opening to the
// transcript-derived challenge point, so no single opening can be changed
// in isolation.
func TestFibonacciVerifyRejectsTamperedOpening(t *testing.T) {
	field, extField := newTestFields(t)
	const height = 16

	columns, publicInputs, err := BuildTrace(field, height, field.Zero(), field.One())
	require.NoError(t, err)

	air := NewAIR(field, extField, height)
	claim := buildClaim(air, publicInputs)
	config := stark.StandardFastConfig()
	prover := stark.NewProver(field, extField, config)

	proofWithInputs, err := prover.Prove(air, claim, columns)
	require.NoError(t, err)

	tampered := proofWithInputs.Proof.Openings.TraceLocal[ColX0]
	proofWithInputs.Proof.Openings.TraceLocal[ColX0] = tampered.Add(extField.One())

	verifier := stark.NewVerifier(field, extField, config)
	err = verifier.Verify(air, proofWithInputs, height)
	require.Error(t, err)
}

// TestFibonacciVerifyRejectsMismatchedPublicOutput checks spec.md's S4
// scenario: claiming a final output that does not match the trace the
// proof was actually built from is rejected at verification time.
func TestFibonacciVerifyRejectsMismatchedPublicOutput(t *testing.T) {
	field, extField := newTestFields(t)
	const height = 16

	columns, publicInputs, err := BuildTrace(field, height, field.Zero(), field.One())
	require.NoError(t, err)

	air := NewAIR(field, extField, height)
	config := stark.StandardFastConfig()
	prover := stark.NewProver(field, extField, config)

	validClaim := buildClaim(air, publicInputs)
	proofWithInputs, err := prover.Prove(air, validClaim, columns)
	require.NoError(t, err)

	tamperedInputs := make([]*core.FieldElement, len(publicInputs))
	copy(tamperedInputs, publicInputs)
	tamperedInputs[2] = tamperedInputs[2].Add(field.One())
	proofWithInputs.Claim = *buildClaim(air, tamperedInputs)

	verifier := stark.NewVerifier(field, extField, config)
	err = verifier.Verify(air, proofWithInputs, height)
	require.Error(t, err)
}

// TestLagrangeSelectorsAgreeBaseAndExtension checks that EvalL0AndLLastExt,
// evaluated at a base-field point embedded via FromBase, agrees with
// EvalL0AndLLast evaluated directly in the base field -- the two selector
// evaluators must compute the same closed-form rational function, just
// over different rings.
func TestLagrangeSelectorsAgreeBaseAndExtension(t *testing.T) {
	field, extField := newTestFields(t)
	domain, err := stark.NewArithmeticDomain(field, 16)
	require.NoError(t, err)

	x := field.NewElementFromInt64(12345)
	l0, lLast, zLast, err := stark.EvalL0AndLLast(domain, x)
	require.NoError(t, err)

	l0Ext, lLastExt, zLastExt, err := stark.EvalL0AndLLastExt(domain, extField, extField.FromBase(x))
	require.NoError(t, err)

	require.True(t, l0Ext.Equal(extField.FromBase(l0)))
	require.True(t, lLastExt.Equal(extField.FromBase(lLast)))
	require.True(t, zLastExt.Equal(extField.FromBase(zLast)))
}

// TestEvalPackedBaseMatchesEvalExtension checks the "packed == scalar"
// consistency spec.md requires: evaluating the AIR's constraints through
// the packed base-field path (width 1) and through the extension-field
// path, on the same row pair embedded via FromBase, must fold to the same
// accumulator values.
func TestEvalPackedBaseMatchesEvalExtension(t *testing.T) {
	field, extField := newTestFields(t)
	const height = 8
	air := NewAIR(field, extField, height)

	columns, publicInputs, err := BuildTrace(field, height, field.Zero(), field.One())
	require.NoError(t, err)

	row := 1
	curVals := make([]*core.FieldElement, NumColumns)
	nextVals := make([]*core.FieldElement, NumColumns)
	for c := 0; c < NumColumns; c++ {
		curVals[c] = columns[c][row]
		nextVals[c] = columns[c][row+1]
	}

	curPacked := make([]*core.Packed, NumColumns)
	nextPacked := make([]*core.Packed, NumColumns)
	curExt := make([]*core.ExtElement, NumColumns)
	nextExt := make([]*core.ExtElement, NumColumns)
	for c := 0; c < NumColumns; c++ {
		curPacked[c] = core.NewPacked(field, []*core.FieldElement{curVals[c]})
		nextPacked[c] = core.NewPacked(field, []*core.FieldElement{nextVals[c]})
		curExt[c] = extField.FromBase(curVals[c])
		nextExt[c] = extField.FromBase(nextVals[c])
	}

	alphas := []*core.FieldElement{field.NewElementFromInt64(3)}
	alphasExt := []*core.ExtElement{extField.FromBase(alphas[0])}

	one := core.Splat(field, 1, field.One())
	zero := core.PackedZero(field, 1)
	packedConsumer := stark.NewConstraintConsumer(field, alphas, one, zero, zero)
	extConsumer := stark.NewExtConstraintConsumer(extField, alphasExt, extField.One(), extField.Zero(), extField.Zero())

	air.EvalPackedBase(stark.NewEvaluationFrame(curPacked, nextPacked), publicInputsAsPacked(field, publicInputs), packedConsumer)
	air.EvalExtension(stark.NewExtensionFrame(curExt, nextExt), publicInputsAsExt(extField, publicInputs), extConsumer)

	packedResult := packedConsumer.Accumulators()[0].Lane(0)
	extResult := extConsumer.Accumulators()[0]
	require.True(t, extResult.Equal(extField.FromBase(packedResult)))
}

func publicInputsAsPacked(field *core.Field, inputs []*core.FieldElement) []*core.Packed {
	out := make([]*core.Packed, len(inputs))
	for i, v := range inputs {
		out[i] = core.NewPacked(field, []*core.FieldElement{v})
	}
	return out
}

func publicInputsAsExt(extField *core.ExtField, inputs []*core.FieldElement) []*core.ExtElement {
	out := make([]*core.ExtElement, len(inputs))
	for i, v := range inputs {
		out[i] = extField.FromBase(v)
	}
	return out
}
