package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/airstark/internal/airstark/core"
)

func newTestField(t *testing.T) *core.Field {
	t.Helper()
	field, err := core.NewGoldilocksField()
	require.NoError(t, err)
	return field
}

func TestChallengerIsDeterministicGivenIdenticalObservations(t *testing.T) {
	field := newTestField(t)

	build := func() *Challenger {
		c, err := NewChallenger(field, []byte("test-air"))
		require.NoError(t, err)
		c.ObserveElements([]*core.FieldElement{field.NewElementFromInt64(1), field.NewElementFromInt64(2)})
		c.ObserveBytes([]byte("commitment bytes"))
		return c
	}

	c1, c2 := build(), build()
	require.True(t, c1.GetChallenge().Equal(c2.GetChallenge()))

	more1 := c1.GetNChallenges(3)
	more2 := c2.GetNChallenges(3)
	for i := range more1 {
		require.True(t, more1[i].Equal(more2[i]))
	}
}

func TestChallengerDivergesAfterDifferentObservations(t *testing.T) {
	field := newTestField(t)

	c1, err := NewChallenger(field, nil)
	require.NoError(t, err)
	c1.ObserveElements([]*core.FieldElement{field.NewElementFromInt64(1)})

	c2, err := NewChallenger(field, nil)
	require.NoError(t, err)
	c2.ObserveElements([]*core.FieldElement{field.NewElementFromInt64(2)})

	require.False(t, c1.GetChallenge().Equal(c2.GetChallenge()))
}

func TestChallengerExtensionChallengeHasExpectedDegree(t *testing.T) {
	field := newTestField(t)
	extField, err := core.NewExtField(field, 2, field.NewElementFromInt64(7))
	require.NoError(t, err)

	c, err := NewChallenger(field, nil)
	require.NoError(t, err)

	challenge, err := c.GetExtensionChallenge(extField)
	require.NoError(t, err)
	require.Len(t, challenge.Limbs(), 2)

	many, err := c.GetNExtensionChallenges(extField, 4)
	require.NoError(t, err)
	require.Len(t, many, 4)
}

func TestChallengerObserveCapAbsorbsWithoutPanicking(t *testing.T) {
	field := newTestField(t)
	c, err := NewChallenger(field, nil)
	require.NoError(t, err)

	cap := core.MerkleCap{Height: 1, Hashes: [][]byte{{1, 2, 3}, {4, 5, 6}}}
	require.NotPanics(t, func() { c.ObserveCap(cap) })
	require.NotNil(t, c.GetChallenge())
}

func TestGrindProofOfWorkProducesAVerifiableNonce(t *testing.T) {
	field := newTestField(t)

	prover, err := NewChallenger(field, []byte("pow-test"))
	require.NoError(t, err)
	prover.ObserveElements([]*core.FieldElement{field.NewElementFromInt64(99)})

	nonce, err := prover.GrindProofOfWork(8)
	require.NoError(t, err)

	verifier, err := NewChallenger(field, []byte("pow-test"))
	require.NoError(t, err)
	verifier.ObserveElements([]*core.FieldElement{field.NewElementFromInt64(99)})

	ok, err := verifier.CheckProofOfWork(nonce, 8)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGrindProofOfWorkZeroBitsIsANoOp(t *testing.T) {
	field := newTestField(t)
	c, err := NewChallenger(field, nil)
	require.NoError(t, err)

	nonce, err := c.GrindProofOfWork(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), nonce)

	ok, err := c.CheckProofOfWork(12345, 0)
	require.NoError(t, err)
	require.True(t, ok)
}
