package recursive

import (
	"fmt"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/fib"
	"github.com/vybium/airstark/internal/airstark/stark"
)

// extVarFromExt converts a proof-side extension field element into the
// pair of native-field constants a circuit assignment's extVar expects,
// the same Limbs() coordinate order core.ExtElement.Mul already relies on.
func extVarFromExt(e *core.ExtElement) extVar {
	limbs := e.Limbs()
	return extVar{limbs[0].Big(), limbs[1].Big()}
}

// BuildCircuit converts a real Fibonacci proof into a fully-populated
// Circuit assignment: it replays the proof's transcript through
// stark.Verifier.DeriveChallenges to obtain the same challenges the native
// verifier would derive, then copies the proof's claimed openings in
// alongside them. The resulting Circuit is solvable exactly when the
// openings and challenges it carries satisfy the same composition identity
// stark.Verifier.checkComposition checks -- so a proof the native verifier
// accepts produces a solvable Circuit, and one it would reject (because an
// opening was tampered with after proving, for instance) produces an
// unsolvable one, even though this function itself never calls Verify.
func BuildCircuit(air *fib.AIR, verifier *stark.Verifier, proofWithInputs *stark.StarkProofWithPublicInputs, paddedHeight int) (*Circuit, error) {
	cs, _, err := verifier.DeriveChallenges(air, proofWithInputs, paddedHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to derive challenges: %w", err)
	}

	openings := proofWithInputs.Proof.Openings
	if len(openings.TraceLocal) != 5 || len(openings.TraceNext) != 5 {
		return nil, fmt.Errorf("expected 5 main trace openings, got %d local / %d next", len(openings.TraceLocal), len(openings.TraceNext))
	}
	if len(openings.AuxLocal) != 1 || len(openings.AuxNext) != 1 {
		return nil, fmt.Errorf("expected exactly one lookup's auxiliary openings, got %d local / %d next", len(openings.AuxLocal), len(openings.AuxNext))
	}

	numChallenges := len(cs.Alphas)
	qFactor := cs.QFactor
	traceDomainLength := cs.Domains.RandomizedTrace.Length

	circuit := NewCircuit(paddedHeight-1, traceDomainLength, numChallenges, qFactor)

	publicInputs := proofWithInputs.Claim.PublicInputs
	if len(publicInputs) != 3 {
		return nil, fmt.Errorf("expected 3 public inputs (x0, x1, output), got %d", len(publicInputs))
	}
	circuit.X0Start = publicInputs[0].Big()
	circuit.X1Start = publicInputs[1].Big()
	circuit.Output = publicInputs[2].Big()

	circuit.Zeta = extVarFromExt(cs.Zeta)
	circuit.Gamma = extVarFromExt(cs.Gamma)
	for i, alpha := range cs.Alphas {
		circuit.Alphas[i] = extVarFromExt(alpha)
	}
	circuit.L0 = extVarFromExt(cs.L0)
	circuit.LLast = extVarFromExt(cs.LLast)
	circuit.ZLast = extVarFromExt(cs.ZLast)
	circuit.LastPoint = cs.LastPoint.Big()

	for i := 0; i < 5; i++ {
		circuit.TraceLocal[i] = extVarFromExt(openings.TraceLocal[i])
		circuit.TraceNext[i] = extVarFromExt(openings.TraceNext[i])
	}
	circuit.AuxLocal[0] = extVarFromExt(openings.AuxLocal[0])
	circuit.AuxNext[0] = extVarFromExt(openings.AuxNext[0])

	if len(openings.QuotientChunks) != numChallenges*qFactor {
		return nil, fmt.Errorf("expected %d quotient chunk openings, got %d", numChallenges*qFactor, len(openings.QuotientChunks))
	}
	for i, chunk := range openings.QuotientChunks {
		circuit.QuotientChunks[i] = extVarFromExt(chunk)
	}

	return circuit, nil
}

// ShapeOf returns a Circuit with every slice sized the way c is, but with
// every witness value zeroed -- the shape frontend.Compile needs to build a
// proving/verifying key once, independent of any specific proof's values.
func ShapeOf(c *Circuit) *Circuit {
	return NewCircuit(c.Steps, c.TraceDomainLength, len(c.Alphas), c.QuotientDegreeFactor)
}
