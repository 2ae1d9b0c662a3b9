package stark

import (
	"fmt"
	"math/big"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/fri"
	"github.com/vybium/airstark/internal/airstark/transcript"
)

// Verifier checks a StarkProof against an AIR and a claim, by replaying the
// prover's Fiat-Shamir transcript and re-deriving every challenge, then
// checking the out-of-domain composition identity the whole proof exists
// to enforce.
type Verifier struct {
	Field    *core.Field
	ExtField *core.ExtField
	Config   StarkConfig
}

// NewVerifier builds a Verifier over the given base and extension fields.
func NewVerifier(field *core.Field, extField *core.ExtField, config StarkConfig) *Verifier {
	return &Verifier{Field: field, ExtField: extField, Config: config}
}

// ChallengeSet bundles every value a STARK proof's Fiat-Shamir transcript
// commits a verifier to before the query phase: the lookup challenge, the
// constraint composition challenges, the out-of-domain point, and the row
// selectors evaluated there. Exported so that a consumer re-expressing
// checkComposition natively (a recursive verification circuit, in
// particular) can derive exactly the values the verifier itself would,
// instead of replaying transcript bookkeeping by hand against unexported
// constants.
type ChallengeSet struct {
	Gamma     *core.ExtElement
	Alphas    []*core.ExtElement
	Zeta      *core.ExtElement
	L0        *core.ExtElement
	LLast     *core.ExtElement
	ZLast     *core.ExtElement
	LastPoint *core.FieldElement
	QFactor   int
	Domains   *ProverDomains
}

// DeriveChallenges replays a proof's transcript up through the out-of-domain
// point and evaluates the row selectors there. It does not observe the
// openings, check proof-of-work, or touch the FRI query phase -- Verify
// continues the same transcript from where this leaves off.
func (v *Verifier) DeriveChallenges(air AIR, proofWithInputs *StarkProofWithPublicInputs, paddedHeight int) (*ChallengeSet, *transcript.Challenger, error) {
	claim := &proofWithInputs.Claim
	proof := &proofWithInputs.Proof

	field := v.Field
	extField := v.ExtField
	lookups := air.Lookups()
	qFactor := quotientDegreeFactor(air)

	friLen := v.Config.FRIDomainLength(paddedHeight, defaultNumTraceRandomizers)
	friDomain, err := NewArithmeticDomain(field, friLen)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build FRI domain: %w", err)
	}
	friDomain = friDomain.WithOffset(field.NewElementFromInt64(friCosetOffsetValue))

	domains, err := DeriveProverDomains(field, paddedHeight, defaultNumTraceRandomizers, friDomain, friLen)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive domains: %w", err)
	}

	challenger, err := transcript.NewChallenger(field, []byte("airstark-v0"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build transcript: %w", err)
	}
	claimHash, err := claim.Hash(field)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash claim: %w", err)
	}
	challenger.ObserveElements([]*core.FieldElement{claimHash})
	challenger.ObserveCap(proof.TraceCap)

	gamma, err := challenger.GetExtensionChallenge(extField)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to draw lookup challenge: %w", err)
	}

	hasAux := len(lookups) > 0
	if hasAux {
		challenger.ObserveCap(proof.AuxCap)
	}

	alphasExt, err := challenger.GetNExtensionChallenges(extField, v.Config.NumChallenges)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to draw constraint challenges: %w", err)
	}

	challenger.ObserveCap(proof.QuotientCap)

	zeta, err := challenger.GetExtensionChallenge(extField)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to draw out-of-domain point: %w", err)
	}

	l0, lLast, zLast, err := EvalL0AndLLastExt(domains.RandomizedTrace, extField, zeta)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate row selectors at the out-of-domain point: %w", err)
	}
	lastPoint := domains.RandomizedTrace.Generator.Exp(big.NewInt(int64(domains.RandomizedTrace.Length - 1)))

	return &ChallengeSet{
		Gamma:     gamma,
		Alphas:    alphasExt,
		Zeta:      zeta,
		L0:        l0,
		LLast:     lLast,
		ZLast:     zLast,
		LastPoint: lastPoint,
		QFactor:   qFactor,
		Domains:   domains,
	}, challenger, nil
}

// Verify checks proofWithInputs against air. paddedHeight is the power-of-2
// trace height the proof was produced for; unlike the trace itself, this
// is not hidden, so it travels out of band rather than through the claim.
func (v *Verifier) Verify(air AIR, proofWithInputs *StarkProofWithPublicInputs, paddedHeight int) error {
	if err := v.Config.Validate(); err != nil {
		return newError(ErrInvalidConfig, "invalid verifier configuration", err)
	}
	claim := &proofWithInputs.Claim
	proof := &proofWithInputs.Proof
	if err := claim.Validate(); err != nil {
		return newError(ErrInvalidConfig, "invalid claim", err)
	}
	if !isPowerOfTwo(paddedHeight) {
		return newError(ErrTraceShape, fmt.Sprintf("padded height %d must be a power of 2", paddedHeight), nil)
	}

	extField := v.ExtField
	lookups := air.Lookups()

	cs, challenger, err := v.DeriveChallenges(air, proofWithInputs, paddedHeight)
	if err != nil {
		return err
	}
	domains := cs.Domains
	qFactor := cs.QFactor
	zeta := cs.Zeta
	alphasExt := cs.Alphas
	lookupEngine := NewLookupEngine(extField, cs.Gamma)

	hasAux := len(lookups) > 0

	openings := proof.Openings
	if err := v.checkOpeningShapes(air, lookups, qFactor, openings); err != nil {
		return newError(ErrTraceShape, "malformed opening set", err)
	}

	challenger.ObserveOpenings(openings.TraceLocal)
	challenger.ObserveOpenings(openings.TraceNext)
	if hasAux {
		challenger.ObserveOpenings(openings.AuxLocal)
		challenger.ObserveOpenings(openings.AuxNext)
	}
	challenger.ObserveOpenings(openings.QuotientChunks)

	powOK, err := challenger.CheckProofOfWork(proof.PowNonce, v.Config.FriConfig.ProofOfWorkBits)
	if err != nil {
		return fmt.Errorf("failed to check proof of work: %w", err)
	}
	if !powOK {
		return newError(ErrProofOfWork, "grinding nonce does not meet the required difficulty", nil)
	}
	challenger.ObserveBytes(nonceBytes(proof.PowNonce))

	if err := v.checkComposition(air, lookups, claim, domains, zeta, alphasExt, lookupEngine, qFactor, openings, extField); err != nil {
		return err
	}

	expectedFRIRuns := v.Config.NumChallenges * qFactor * extField.Degree
	if len(proof.FRIProofs) != expectedFRIRuns {
		return newError(ErrFRIVerification,
			fmt.Sprintf("expected %d FRI proofs (one per quotient chunk limb column), got %d", expectedFRIRuns, len(proof.FRIProofs)), nil)
	}

	friCfg := fri.Config{
		CapHeight:       v.Config.FriConfig.CapHeight,
		ProofOfWorkBits: 0,
		NumQueryRounds:  v.Config.FriConfig.NumQueryRounds,
		StopDegree:      domains.RandomizedTrace.Length - 1,
	}
	friDom := &fri.Domain{
		Field:     domains.FRI.Field,
		Offset:    domains.FRI.Offset,
		Generator: domains.FRI.Generator,
		Length:    domains.FRI.Length,
	}

	for i, fp := range proof.FRIProofs {
		betas := make([]*core.FieldElement, len(fp.LayerCaps))
		for layerIdx, cap := range fp.LayerCaps {
			challenger.ObserveCap(cap)
			betas[layerIdx] = challenger.GetChallenge()
		}

		// The prover's getQueryIndex callback draws one challenge per query
		// round from this same transcript; replaying that draw here and
		// comparing it against the proof's claimed index is what binds the
		// queried positions to the transcript instead of letting a prover
		// choose them freely.
		for q, round := range fp.QueryRounds {
			idxChallenge := challenger.GetChallenge()
			expectedIdx := int(idxChallenge.Big().Uint64() % uint64(friDom.Length))
			if expectedIdx != round.Index {
				return newError(ErrTranscriptMismatch,
					fmt.Sprintf("FRI limb %d query %d: claimed index %d does not match the transcript-derived index %d", i, q, round.Index, expectedIdx), nil)
			}
		}

		if err := fri.Verify(friCfg, friDom, fp, betas); err != nil {
			return newError(ErrFRIVerification, fmt.Sprintf("FRI limb column %d", i), err)
		}
	}

	return nil
}

// checkOpeningShapes validates that the proof's opening set has the column
// counts the AIR and its lookups declare, before any of it is absorbed into
// the transcript or used in the composition check.
func (v *Verifier) checkOpeningShapes(air AIR, lookups []Lookup, qFactor int, openings StarkOpeningSet) error {
	numMainCols := len(air.Columns())
	if len(openings.TraceLocal) != numMainCols || len(openings.TraceNext) != numMainCols {
		return fmt.Errorf("expected %d main trace openings, got %d local / %d next", numMainCols, len(openings.TraceLocal), len(openings.TraceNext))
	}
	if len(lookups) > 0 {
		if len(openings.AuxLocal) != len(lookups) || len(openings.AuxNext) != len(lookups) {
			return fmt.Errorf("expected %d auxiliary openings, got %d local / %d next", len(lookups), len(openings.AuxLocal), len(openings.AuxNext))
		}
	}
	expectedChunks := v.Config.NumChallenges * qFactor
	if len(openings.QuotientChunks) != expectedChunks {
		return fmt.Errorf("expected %d quotient chunk openings (%d challenges * %d quotient degree factor), got %d",
			expectedChunks, v.Config.NumChallenges, qFactor, len(openings.QuotientChunks))
	}
	return nil
}

// checkComposition recomputes the AIR's alpha-folded constraint
// composition at zeta from the proof's claimed openings, divides by the
// trace domain's vanishing polynomial evaluated at zeta, and checks the
// result against the proof's claimed quotient chunk openings recombined via
// reduce_with_powers -- the single identity that ties the out-of-domain
// openings to a low-degree quotient, split into qFactor degree-bounded
// pieces per challenge the way the prover's chunkQuotientColumns built them.
func (v *Verifier) checkComposition(
	air AIR,
	lookups []Lookup,
	claim *Claim,
	domains *ProverDomains,
	zeta *core.ExtElement,
	alphasExt []*core.ExtElement,
	lookupEngine *LookupEngine,
	qFactor int,
	openings StarkOpeningSet,
	extField *core.ExtField,
) error {
	H := domains.RandomizedTrace

	l0, lLast, zLast, err := EvalL0AndLLastExt(H, extField, zeta)
	if err != nil {
		return newError(ErrConstraintViolation, "failed to evaluate row selectors at the out-of-domain point", err)
	}

	consumer := NewExtConstraintConsumer(extField, alphasExt, zLast, l0, lLast)

	numMainCols := len(air.Columns())
	cur := make([]*core.ExtElement, numMainCols+len(lookups))
	next := make([]*core.ExtElement, numMainCols+len(lookups))
	copy(cur[:numMainCols], openings.TraceLocal)
	copy(next[:numMainCols], openings.TraceNext)
	for li := range lookups {
		cur[numMainCols+li] = openings.AuxLocal[li]
		next[numMainCols+li] = openings.AuxNext[li]
	}
	frame := NewExtensionFrame(cur, next)

	publicInputsExt := make([]*core.ExtElement, len(claim.PublicInputs))
	for i, val := range claim.PublicInputs {
		publicInputsExt[i] = extField.FromBase(val)
	}

	air.EvalExtension(frame, publicInputsExt, consumer)
	for li, lk := range lookups {
		if err := lk.EvalConstraints(lookupEngine, frame, consumer); err != nil {
			return newError(ErrLookupMismatch, fmt.Sprintf("lookup %q", lk.Name), err)
		}
	}

	zHAtZeta := extFieldPow(extField, zeta, H.Length).Sub(extField.One())
	zHInv, err := zHAtZeta.Inv()
	if err != nil {
		return newError(ErrConstraintViolation, "out-of-domain point lies in the trace's vanishing set", err)
	}

	zetaN := extFieldPow(extField, zeta, H.Length)

	accum := consumer.Accumulators()
	for c := range accum {
		group := openings.QuotientChunks[c*qFactor : (c+1)*qFactor]
		recombined := reduceWithPowers(group, zetaN)
		expected := accum[c].Mul(zHInv)
		if !expected.Equal(recombined) {
			return newError(ErrConstraintViolation, fmt.Sprintf("quotient chunk group %d does not match the recomputed composition at the out-of-domain point", c), nil)
		}
	}

	return nil
}
