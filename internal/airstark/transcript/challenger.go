// Package transcript implements the Fiat-Shamir transcript that turns the
// interactive STARK protocol into a non-interactive argument: every value
// the prover commits to is absorbed, and every challenge the (simulated)
// verifier would send is instead derived deterministically from the
// transcript state.
//
// Grounded on the teacher's Fiat-Shamir channel and its send/receive
// pattern, generalized from SHA3/SHA256 byte hashing to a field-friendly
// Poseidon sponge so challenges land directly in the field the STARK
// operates over instead of requiring a bytes-to-field reduction step.
package transcript

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/airstark/internal/airstark/core"
)

// byteObserveCondenseThreshold bounds how much raw byte data ObserveBytes
// will chunk straight into the Poseidon sponge 8 bytes at a time. Larger
// inputs (a tall Merkle cap, a long domain-separation label) are condensed
// first through a SHAKE256 duplex down to this many bytes, since absorbing
// them one field-sized chunk per Poseidon permutation call would be both
// slower and would spread one logical commitment across many sponge calls
// for no security benefit over a single fixed-size digest.
const byteObserveCondenseThreshold = 64

// condenseBytes squeezes data down to n bytes via SHAKE256, the duplex
// construction golang.org/x/crypto/sha3 exposes as a ShakeHash: writes are
// absorbed and reads squeeze output of arbitrary length, the same
// absorb/squeeze shape as Challenger's own Poseidon sponge, just over raw
// bytes instead of field elements.
func condenseBytes(data []byte, n int) []byte {
	h := sha3.NewShake256()
	h.Write(data)
	out := make([]byte, n)
	h.Read(out)
	return out
}

// Challenger is a Poseidon-sponge-backed Fiat-Shamir transcript. Observing
// data advances the sponge's internal state; drawing challenges squeezes
// fresh field elements from that state. Because every draw is a
// deterministic function of everything observed so far, prover and
// verifier derive identical challenges as long as they observe identical
// data in identical order.
type Challenger struct {
	field  *core.Field
	sponge *core.PoseidonSponge
}

// NewChallenger creates a challenger over the given field, seeded from an
// optional domain-separation label (e.g. identifying the AIR instance).
func NewChallenger(field *core.Field, label []byte) (*Challenger, error) {
	sponge, err := core.NewPoseidonSponge(field, core.GetDefaultPoseidonParameters(field, 128))
	if err != nil {
		return nil, fmt.Errorf("failed to build transcript sponge: %w", err)
	}
	c := &Challenger{field: field, sponge: sponge}
	if len(label) > 0 {
		c.ObserveBytes(label)
	}
	return c, nil
}

// ObserveElements absorbs field elements directly, e.g. public inputs or
// out-of-domain opening claims.
func (c *Challenger) ObserveElements(elements []*core.FieldElement) {
	c.sponge.Absorb(elements)
}

// ObserveBytes absorbs arbitrary bytes by reducing them, 8 bytes at a time,
// into field elements (mirroring the teacher's channel's byte-string
// absorption, adapted to a field-friendly sponge).
func (c *Challenger) ObserveBytes(data []byte) {
	if len(data) > byteObserveCondenseThreshold {
		data = condenseBytes(data, byteObserveCondenseThreshold)
	}
	elements := make([]*core.FieldElement, 0, (len(data)+7)/8)
	for i := 0; i < len(data); i += 8 {
		end := i + 8
		if end > len(data) {
			end = len(data)
		}
		chunk := new(big.Int).SetBytes(data[i:end])
		elements = append(elements, c.field.NewElement(chunk))
	}
	if len(elements) > 0 {
		c.sponge.Absorb(elements)
	}
}

// ObserveCap absorbs a Merkle cap, the commitment the prover publishes
// after building a Merkle tree. Absorbing the cap (rather than a single
// root) lets the verifier's later authentication-path checks stop
// cap-height levels early, matching the proof's own commitment shape.
func (c *Challenger) ObserveCap(cap core.MerkleCap) {
	c.ObserveBytes(cap.Flatten())
}

// ObserveOpenings absorbs a set of out-of-domain opening claims (extension
// field elements), flattened limb-by-limb.
func (c *Challenger) ObserveOpenings(openings []*core.ExtElement) {
	for _, o := range openings {
		c.sponge.Absorb(o.Limbs())
	}
}

// GetChallenge draws one base-field challenge.
func (c *Challenger) GetChallenge() *core.FieldElement {
	return c.sponge.Squeeze(1)[0]
}

// GetNChallenges draws n independent base-field challenges, e.g. the alpha
// powers a ConstraintConsumer folds constraints with.
func (c *Challenger) GetNChallenges(n int) []*core.FieldElement {
	return c.sponge.Squeeze(n)
}

// GetExtensionChallenge draws a single extension-field challenge (one base
// element per limb), e.g. the out-of-domain point zeta or a lookup
// argument's gamma.
func (c *Challenger) GetExtensionChallenge(extField *core.ExtField) (*core.ExtElement, error) {
	limbs := c.sponge.Squeeze(extField.Degree)
	return extField.NewExtElement(limbs)
}

// GetNExtensionChallenges draws n independent extension-field challenges.
func (c *Challenger) GetNExtensionChallenges(extField *core.ExtField, n int) ([]*core.ExtElement, error) {
	out := make([]*core.ExtElement, n)
	for i := range out {
		e, err := c.GetExtensionChallenge(extField)
		if err != nil {
			return nil, fmt.Errorf("challenge %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// GrindProofOfWork searches for the smallest nonce such that hashing the
// current transcript state together with the nonce yields a digest with at
// least bits leading zero bits, the proof-of-work step that raises the
// cost of a query-rigging adversary. It squeezes four elements from the
// challenger's sponge as the grinding base, which advances the challenger's
// state; callers must ObserveBytes the winning nonce afterward so the
// query challenges derived next depend on it.
func (c *Challenger) GrindProofOfWork(bits int) (uint64, error) {
	if bits <= 0 {
		return 0, nil
	}
	base := c.sponge.Squeeze(4)
	for nonce := uint64(0); ; nonce++ {
		trial, err := core.NewPoseidonSponge(c.field, core.GetDefaultPoseidonParameters(c.field, 128))
		if err != nil {
			return 0, fmt.Errorf("failed to build grinding sponge: %w", err)
		}
		trial.Absorb(base)
		trial.Absorb([]*core.FieldElement{c.field.NewElementFromUint64(nonce)})
		out := trial.Squeeze(1)[0]
		if leadingZeroBits(out) >= bits {
			return nonce, nil
		}
		if nonce == ^uint64(0) {
			return 0, fmt.Errorf("exhausted nonce space without finding %d leading zero bits", bits)
		}
	}
}

// CheckProofOfWork verifies that nonce satisfies the grinding requirement
// relative to the challenger's current state, squeezing the same "base"
// challenge GrindProofOfWork's search draws so the transcript ends up in
// the same state a verifier replaying the protocol needs.
func (c *Challenger) CheckProofOfWork(nonce uint64, bits int) (bool, error) {
	if bits <= 0 {
		return true, nil
	}
	base := c.sponge.Squeeze(4)
	trial, err := core.NewPoseidonSponge(c.field, core.GetDefaultPoseidonParameters(c.field, 128))
	if err != nil {
		return false, fmt.Errorf("failed to build grinding sponge: %w", err)
	}
	trial.Absorb(base)
	trial.Absorb([]*core.FieldElement{c.field.NewElementFromUint64(nonce)})
	out := trial.Squeeze(1)[0]
	return leadingZeroBits(out) >= bits, nil
}

func leadingZeroBits(fe *core.FieldElement) int {
	b := fe.Big()
	return 256 - b.BitLen()
}
