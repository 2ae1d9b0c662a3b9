package airstark

import (
	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/stark"
)

// FieldElement is an element of the base field F.
type FieldElement = core.FieldElement

// Field is a prime field, constructed from a runtime-selected modulus.
type Field = core.Field

// ExtElement is an element of the degree-D extension field E.
type ExtElement = core.ExtElement

// ExtField describes a degree-D extension E/F.
type ExtField = core.ExtField

// AIR is the Algebraic Intermediate Representation interface a prover and
// verifier operate against.
type AIR = stark.AIR

// Lookup describes one logarithmic-derivative lookup argument.
type Lookup = stark.Lookup

// Claim is the public statement a StarkProof attests to.
type Claim = stark.Claim

// Config is a STARK instance's configuration (challenge count and FRI
// parameters).
type Config = stark.StarkConfig

// Proof is a complete non-interactive STARK proof.
type Proof = stark.StarkProof

// ProofWithPublicInputs bundles a Proof with the Claim it was produced
// against.
type ProofWithPublicInputs = stark.StarkProofWithPublicInputs

// Prover runs the proving protocol for a single AIR instance.
type Prover = stark.Prover

// Verifier checks a Proof against an AIR and a Claim.
type Verifier = stark.Verifier

// NewGoldilocksField builds the Goldilocks prime field (2^64 - 2^32 + 1),
// the default base field for this module's fixtures.
func NewGoldilocksField() (*Field, error) {
	return core.NewGoldilocksField()
}

// NewExtField constructs the degree-D extension F[X]/(X^D - nonResidue).
func NewExtField(base *Field, degree int, nonResidue *FieldElement) (*ExtField, error) {
	return core.NewExtField(base, degree, nonResidue)
}

// StandardFastConfig returns the standard development configuration:
// num_challenges=2, rate_bits=3, cap_height=4, targeting roughly 100 bits
// of conjectured security.
func StandardFastConfig() Config {
	return stark.StandardFastConfig()
}

// NewClaim creates a new Claim carrying the given AIR digest.
func NewClaim(airDigest []*FieldElement) *Claim {
	return stark.NewClaim(airDigest)
}

// NewProver builds a Prover over the given base and extension fields.
func NewProver(field *Field, extField *ExtField, config Config) *Prover {
	return stark.NewProver(field, extField, config)
}

// NewVerifier builds a Verifier over the given base and extension fields.
func NewVerifier(field *Field, extField *ExtField, config Config) *Verifier {
	return stark.NewVerifier(field, extField, config)
}
