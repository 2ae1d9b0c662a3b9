package stark

import (
	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/fri"
)

// StarkOpeningSet holds the prover's claimed evaluations of every trace,
// auxiliary (lookup helper), and quotient-chunk polynomial at the
// out-of-domain challenge point zeta, and at zeta*generator (the "next row"
// shift transition constraints need).
type StarkOpeningSet struct {
	// TraceLocal is each main trace column evaluated at zeta.
	TraceLocal []*core.ExtElement
	// TraceNext is each main trace column evaluated at zeta*generator.
	TraceNext []*core.ExtElement

	// AuxLocal is each lookup's helper column, recombined from its base-field
	// limb decomposition, evaluated at zeta.
	AuxLocal []*core.ExtElement
	// AuxNext is the same, evaluated at zeta*generator.
	AuxNext []*core.ExtElement

	// QuotientChunks holds, for each alpha challenge, quotientDegreeFactor
	// degree-bounded pieces (chunkQuotientColumns' output) evaluated at zeta
	// and recombined from their base-field limb decomposition; grouped
	// qFactor-at-a-time in challenge order so the verifier can recombine each
	// group with reduce_with_powers before comparing it against that
	// challenge's accumulated composition value.
	QuotientChunks []*core.ExtElement
}

// StarkProof is the full non-interactive proof transcript: the trace,
// auxiliary, and quotient commitments, the out-of-domain opening claims,
// and the FRI proofs run over the committed quotient chunks' low-degree
// extensions.
type StarkProof struct {
	// TraceCap is the Merkle cap of the low-degree-extended main trace.
	TraceCap core.MerkleCap

	// AuxCap is the Merkle cap of the low-degree-extended lookup helper
	// columns (committed after the Fiat-Shamir gamma challenge, since the
	// helper columns depend on it).
	AuxCap core.MerkleCap

	// QuotientCap is the Merkle cap of the low-degree-extended,
	// chunked quotient polynomial.
	QuotientCap core.MerkleCap

	// Openings is the out-of-domain opening set.
	Openings StarkOpeningSet

	// FRIProofs holds one fri.Proof per base-field limb column of the
	// committed quotient chunks (NumChallenges * quotientDegreeFactor *
	// Degree of them), each run on its own and drawing its own query indices
	// from the shared transcript. The trace and auxiliary codewords are not
	// FRI-proven, and no FRI query checks the out-of-domain openings against
	// the committed codewords.
	FRIProofs []fri.Proof

	// PowNonce is the proof-of-work grinding nonce found before the query
	// phase, raising the cost of a query-rigging adversary.
	PowNonce uint64
}

// StarkProofWithPublicInputs bundles a proof with the claim it attests to,
// the unit the verifier actually checks.
type StarkProofWithPublicInputs struct {
	Proof StarkProof
	Claim Claim
}
