package fri

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/transcript"
)

// buildLowDegreeCodeword evaluates a degree-(degree-1) polynomial over a
// domain of the given length, the kind of codeword a quotient commitment
// phase would hand to FRI.
func buildLowDegreeCodeword(t *testing.T, field *core.Field, length, degree int) (*Domain, []*core.FieldElement) {
	t.Helper()

	coeffs := make([]*core.FieldElement, degree)
	for i := range coeffs {
		coeffs[i] = field.NewElementFromInt64(int64(i + 1))
	}
	poly, err := core.NewPolynomial(coeffs)
	require.NoError(t, err)

	generator := field.GetPrimitiveRootOfUnity(length)
	require.NotNil(t, generator)

	domain := &Domain{Field: field, Offset: field.NewElementFromInt64(3), Generator: generator, Length: length}
	values := make([]*core.FieldElement, length)
	for i, x := range domain.Elements() {
		values[i] = poly.Eval(x)
	}
	return domain, values
}

func TestFRIProveVerifyRoundTrip(t *testing.T) {
	field, err := core.NewGoldilocksField()
	require.NoError(t, err)

	const domainLength = 64
	const degree = 4
	domain, values := buildLowDegreeCodeword(t, field, domainLength, degree)

	cfg := Config{CapHeight: 0, NumQueryRounds: 8, StopDegree: degree - 1}

	prover, err := transcript.NewChallenger(field, []byte("fri-test"))
	require.NoError(t, err)

	queryCounter := 0
	proof, err := Prove(cfg, domain, values,
		func(cap core.MerkleCap) { prover.ObserveCap(cap) },
		func() *core.FieldElement { return prover.GetChallenge() },
		func(domainLen int) int {
			queryCounter++
			return queryCounter % domainLen
		},
	)
	require.NoError(t, err)
	require.NotEmpty(t, proof.LayerCaps)
	require.Len(t, proof.QueryRounds, cfg.NumQueryRounds)

	verifier, err := transcript.NewChallenger(field, []byte("fri-test"))
	require.NoError(t, err)
	betas := make([]*core.FieldElement, len(proof.LayerCaps))
	for i, cap := range proof.LayerCaps {
		verifier.ObserveCap(cap)
		betas[i] = verifier.GetChallenge()
	}

	require.NoError(t, Verify(cfg, domain, proof, betas))
}

func TestFRIVerifyRejectsTamperedOpening(t *testing.T) {
	field, err := core.NewGoldilocksField()
	require.NoError(t, err)

	const domainLength = 32
	const degree = 2
	domain, values := buildLowDegreeCodeword(t, field, domainLength, degree)

	cfg := Config{CapHeight: 0, NumQueryRounds: 4, StopDegree: degree - 1}

	prover, err := transcript.NewChallenger(field, []byte("fri-tamper-test"))
	require.NoError(t, err)

	proof, err := Prove(cfg, domain, values,
		func(cap core.MerkleCap) { prover.ObserveCap(cap) },
		func() *core.FieldElement { return prover.GetChallenge() },
		func(domainLen int) int { return 1 },
	)
	require.NoError(t, err)
	require.NotEmpty(t, proof.QueryRounds)

	// Corrupt the first query round's opened value at its first layer.
	proof.QueryRounds[0].LayerValues[0][0] = proof.QueryRounds[0].LayerValues[0][0].Add(field.One())

	verifier, err := transcript.NewChallenger(field, []byte("fri-tamper-test"))
	require.NoError(t, err)
	betas := make([]*core.FieldElement, len(proof.LayerCaps))
	for i, cap := range proof.LayerCaps {
		verifier.ObserveCap(cap)
		betas[i] = verifier.GetChallenge()
	}

	require.Error(t, Verify(cfg, domain, proof, betas))
}

func TestFRIVerifyRejectsWrongChallengeCount(t *testing.T) {
	field, err := core.NewGoldilocksField()
	require.NoError(t, err)

	const domainLength = 16
	const degree = 2
	domain, values := buildLowDegreeCodeword(t, field, domainLength, degree)
	cfg := Config{CapHeight: 0, NumQueryRounds: 2, StopDegree: degree - 1}

	prover, err := transcript.NewChallenger(field, nil)
	require.NoError(t, err)
	proof, err := Prove(cfg, domain, values,
		func(cap core.MerkleCap) { prover.ObserveCap(cap) },
		func() *core.FieldElement { return prover.GetChallenge() },
		func(domainLen int) int { return 0 },
	)
	require.NoError(t, err)

	require.Error(t, Verify(cfg, domain, proof, nil))
}
