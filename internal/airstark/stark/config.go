package stark

import (
	"fmt"
)

// ReductionStrategy controls how the FRI protocol reduces a layer's degree
// between folding rounds.
type ReductionStrategy int

const (
	// ConstantArityTwo folds every layer by a factor of 2 (the classic FRI
	// folding step: p_i(x) -> p_{i+1}(x^2)).
	ConstantArityTwo ReductionStrategy = iota
)

// FriConfig holds the FRI-specific parameters of a STARK configuration.
type FriConfig struct {
	// RateBits is R where the FRI domain has blowup factor 2^R over the
	// randomized trace domain (rate = 2^-R).
	RateBits int

	// CapHeight is the Merkle cap height: 2^CapHeight hashes are published
	// in place of a single root.
	CapHeight int

	// ProofOfWorkBits is the number of leading zero bits the prover must
	// find in a grinding nonce before the query phase, raising the cost of
	// a query-rigging adversary.
	ProofOfWorkBits int

	// NumQueryRounds is the number of FRI query rounds (collinearity
	// checks); soundness error scales as (1/blowup)^NumQueryRounds.
	NumQueryRounds int

	// ReductionStrategy selects the folding arity schedule.
	ReductionStrategy ReductionStrategy
}

// StarkConfig holds the full configuration of a STARK instance: the number
// of Fiat-Shamir challenges drawn per round, plus the FRI parameters.
type StarkConfig struct {
	// NumChallenges is the number of independent challenges drawn for the
	// constraint composition's random linear combination (alpha powers).
	NumChallenges int

	FriConfig FriConfig
}

// StandardFastConfig returns the spec's "standard fast" configuration:
// num_challenges=2, rate_bits=3, cap_height=4. This targets roughly 100 bits
// of conjectured security with 28 query rounds, a reasonable default for
// interactive development and testing.
func StandardFastConfig() StarkConfig {
	return StarkConfig{
		NumChallenges: 2,
		FriConfig: FriConfig{
			RateBits:          3,
			CapHeight:         4,
			ProofOfWorkBits:   16,
			NumQueryRounds:    28,
			ReductionStrategy: ConstantArityTwo,
		},
	}
}

// Validate checks that the configuration is internally consistent.
func (c *StarkConfig) Validate() error {
	if c.NumChallenges < 1 {
		return fmt.Errorf("num challenges must be at least 1, got %d", c.NumChallenges)
	}
	if c.FriConfig.RateBits < 1 {
		return fmt.Errorf("FRI rate bits must be at least 1, got %d", c.FriConfig.RateBits)
	}
	if c.FriConfig.CapHeight < 0 {
		return fmt.Errorf("FRI cap height must be non-negative, got %d", c.FriConfig.CapHeight)
	}
	if c.FriConfig.NumQueryRounds < 1 {
		return fmt.Errorf("FRI query rounds must be at least 1, got %d", c.FriConfig.NumQueryRounds)
	}
	if c.FriConfig.ProofOfWorkBits < 0 {
		return fmt.Errorf("FRI proof of work bits must be non-negative, got %d", c.FriConfig.ProofOfWorkBits)
	}
	return nil
}

// RateBits exposes the FRI blowup exponent; FRI domain size = randomized
// trace length * 2^RateBits.
func (c *StarkConfig) RateBits() int { return c.FriConfig.RateBits }

// BlowupFactor returns the FRI domain's blowup factor 2^RateBits.
func (c *StarkConfig) BlowupFactor() int { return 1 << uint(c.FriConfig.RateBits) }

// RandomizedTraceLength computes the length of the randomized, padded
// trace domain, guaranteed to be a power of two.
func RandomizedTraceLength(paddedHeight, numTraceRandomizers int) int {
	return nextPowerOfTwo(paddedHeight + numTraceRandomizers)
}

// FRIDomainLength computes the FRI domain's length given a padded trace
// height, the number of trace randomizers, and the configured blowup.
func (c *StarkConfig) FRIDomainLength(paddedHeight, numTraceRandomizers int) int {
	return RandomizedTraceLength(paddedHeight, numTraceRandomizers) * c.BlowupFactor()
}

// ConjecturedSecurityBits estimates the conjectured security level in bits
// achieved by this configuration against the given FRI domain size: FRI
// query soundness scales as rate^num_query_rounds, plus grinding bits.
func (c *StarkConfig) ConjecturedSecurityBits(friDomainLength int) float64 {
	_ = friDomainLength // a full analysis also depends on domain size; this estimate uses the per-round rate only
	friSoundness := float64(c.FriConfig.NumQueryRounds) * float64(c.FriConfig.RateBits)
	return friSoundness + float64(c.FriConfig.ProofOfWorkBits)
}

// String returns a human-readable representation of the configuration.
func (c *StarkConfig) String() string {
	return fmt.Sprintf("StarkConfig{challenges: %d, fri: {rate_bits: %d, cap_height: %d, pow_bits: %d, query_rounds: %d}}",
		c.NumChallenges, c.FriConfig.RateBits, c.FriConfig.CapHeight, c.FriConfig.ProofOfWorkBits, c.FriConfig.NumQueryRounds)
}
