package stark

import (
	"fmt"

	"github.com/vybium/airstark/internal/airstark/core"
)

// Claim contains the public information of a verifiably correct computation.
// A corresponding StarkProof is needed to verify the computation.
type Claim struct {
	// AIRDigest identifies the AIR instance (its constraints, column layout,
	// and lookup tables) that the proof was generated against. This ties the
	// proof to a specific computation definition, the same role Triton VM's
	// ProgramDigest plays for a fixed ISA program.
	AIRDigest []*core.FieldElement

	// Version of the proof system. Helps ensure proofs are only valid for
	// their intended version.
	Version uint32

	// PublicInputs is the public input to the computation.
	PublicInputs []*core.FieldElement

	// PublicOutputs is the public output of the computation.
	PublicOutputs []*core.FieldElement
}

// AIRDigestLength is the number of field elements in an AIR digest.
const AIRDigestLength = 5

// CurrentVersion is the version of the STARK proof system. This changes
// whenever the constraint system or proof format changes.
const CurrentVersion uint32 = 0

// NewClaim creates a new Claim with an AIR digest.
func NewClaim(airDigest []*core.FieldElement) *Claim {
	return &Claim{
		AIRDigest:     airDigest,
		Version:       CurrentVersion,
		PublicInputs:  make([]*core.FieldElement, 0),
		PublicOutputs: make([]*core.FieldElement, 0),
	}
}

// WithInput sets the public input for the claim.
func (c *Claim) WithInput(input []*core.FieldElement) *Claim {
	c.PublicInputs = input
	return c
}

// WithOutput sets the public output for the claim.
func (c *Claim) WithOutput(output []*core.FieldElement) *Claim {
	c.PublicOutputs = output
	return c
}

// Validate checks if the claim is well-formed.
func (c *Claim) Validate() error {
	if len(c.AIRDigest) != AIRDigestLength {
		return fmt.Errorf("AIR digest must be exactly %d elements, got %d", AIRDigestLength, len(c.AIRDigest))
	}
	return nil
}

// Hash computes a hash of the claim for Fiat-Shamir, binding the proof to
// the AIR, its version, and the public input/output it was produced for.
func (c *Claim) Hash(field *core.Field) (*core.FieldElement, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid claim: %w", err)
	}

	elements := make([]*core.FieldElement, 0, len(c.AIRDigest)+1+len(c.PublicInputs)+len(c.PublicOutputs))
	elements = append(elements, c.AIRDigest...)
	elements = append(elements, field.NewElementFromUint64(uint64(c.Version)))
	elements = append(elements, c.PublicInputs...)
	elements = append(elements, c.PublicOutputs...)

	poseidon, err := core.NewEnhancedPoseidonHash(field, core.GetDefaultPoseidonParameters(field, 128))
	if err != nil {
		return nil, fmt.Errorf("failed to build claim hasher: %w", err)
	}
	return poseidon.Hash(elements)
}
