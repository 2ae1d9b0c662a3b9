package airstark_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/airstark/internal/airstark/fib"
	"github.com/vybium/airstark/pkg/airstark"
)

// TestPublicAPIProveVerifyRoundTrip exercises the public re-exported
// Prover/Verifier against the Fibonacci fixture AIR, checking that the
// pkg/airstark aliases wire through to the same internal implementation
// fib/air_test.go already exercises directly.
func TestPublicAPIProveVerifyRoundTrip(t *testing.T) {
	field, err := airstark.NewGoldilocksField()
	require.NoError(t, err)
	extField, err := airstark.NewExtField(field, 2, field.NewElementFromInt64(7))
	require.NoError(t, err)

	const height = 16
	columns, publicInputs, err := fib.BuildTrace(field, height, field.Zero(), field.One())
	require.NoError(t, err)

	air := fib.NewAIR(field, extField, height)
	claim := airstark.NewClaim(air.Digest()).WithInput(publicInputs)
	config := airstark.StandardFastConfig()

	prover := airstark.NewProver(field, extField, config)
	proof, err := prover.Prove(air, claim, columns)
	require.NoError(t, err)

	verifier := airstark.NewVerifier(field, extField, config)
	require.NoError(t, verifier.Verify(air, proof, height))
}

// TestKindOfExtractsErrorKind checks that KindOf unwraps a typed internal
// error, the mechanism callers outside this module use to branch on
// failure phase without importing internal/airstark.
func TestKindOfExtractsErrorKind(t *testing.T) {
	field, err := airstark.NewGoldilocksField()
	require.NoError(t, err)
	extField, err := airstark.NewExtField(field, 2, field.NewElementFromInt64(7))
	require.NoError(t, err)

	config := airstark.StandardFastConfig()
	config.NumChallenges = 0 // invalid: Validate requires >= 1

	prover := airstark.NewProver(field, extField, config)
	air := fib.NewAIR(field, extField, 16)
	columns, publicInputs, err := fib.BuildTrace(field, 16, field.Zero(), field.One())
	require.NoError(t, err)
	claim := airstark.NewClaim(air.Digest()).WithInput(publicInputs)

	_, err = prover.Prove(air, claim, columns)
	require.Error(t, err)

	kind, ok := airstark.KindOf(err)
	require.True(t, ok)
	require.Equal(t, airstark.ErrInvalidConfig, kind)
}
