package stark

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/fri"
	"github.com/vybium/airstark/internal/airstark/transcript"
)

// defaultNumTraceRandomizers is the number of random rows appended to every
// committed column before low-degree extension, the zero-knowledge padding
// Triton VM's MasterMainTable calls trace randomizers.
const defaultNumTraceRandomizers = 2

// friCosetOffsetValue shifts the FRI domain off the trace's own subgroup, so
// the vanishing polynomial Z_H never hits zero at a domain point the
// quotient is evaluated on.
const friCosetOffsetValue = 7

// Prover runs the STARK proving protocol for a single AIR instance and
// configuration.
type Prover struct {
	Field    *core.Field
	ExtField *core.ExtField
	Config   StarkConfig
}

// NewProver builds a Prover over the given base and extension fields.
func NewProver(field *core.Field, extField *core.ExtField, config StarkConfig) *Prover {
	return &Prover{Field: field, ExtField: extField, Config: config}
}

// Prove builds a StarkProof attesting that mainColumns (column-major, one
// slice per air.Columns() entry, all the same height) satisfies air's
// constraints and lookup arguments relative to claim's public input/output.
func (p *Prover) Prove(air AIR, claim *Claim, mainColumns [][]*core.FieldElement) (*StarkProofWithPublicInputs, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid prover configuration", err)
	}
	if len(mainColumns) != len(air.Columns()) {
		return nil, newError(ErrTraceShape,
			fmt.Sprintf("AIR declares %d columns, got %d", len(air.Columns()), len(mainColumns)), nil)
	}
	if err := claim.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid claim", err)
	}

	field := p.Field
	extField := p.ExtField
	numMainCols := len(mainColumns)

	rawHeight := len(mainColumns[0])
	for i, col := range mainColumns {
		if len(col) != rawHeight {
			return nil, newError(ErrTraceShape, fmt.Sprintf("column %d has height %d, expected %d", i, len(col), rawHeight), nil)
		}
	}
	paddedHeight := nextPowerOfTwo(rawHeight)

	friLen := p.Config.FRIDomainLength(paddedHeight, defaultNumTraceRandomizers)
	friDomain, err := NewArithmeticDomain(field, friLen)
	if err != nil {
		return nil, fmt.Errorf("failed to build FRI domain: %w", err)
	}
	friDomain = friDomain.WithOffset(field.NewElementFromInt64(friCosetOffsetValue))

	domains, err := DeriveProverDomains(field, paddedHeight, defaultNumTraceRandomizers, friDomain, friLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive prover domains: %w", err)
	}

	paddedMain := padColumns(mainColumns, paddedHeight)

	mainTable, err := NewMasterTable(field, paddedMain, domains, defaultNumTraceRandomizers, []byte("airstark-main-trace"))
	if err != nil {
		return nil, fmt.Errorf("failed to build main table: %w", err)
	}
	if err := mainTable.LowDegreeExtend(domains); err != nil {
		return nil, fmt.Errorf("failed to extend main table: %w", err)
	}
	mainTree, err := mainTable.BuildMerkleTree()
	if err != nil {
		return nil, fmt.Errorf("failed to commit main table: %w", err)
	}
	traceCap, err := mainTree.Cap(p.Config.FriConfig.CapHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to cap main table commitment: %w", err)
	}

	challenger, err := transcript.NewChallenger(field, []byte("airstark-v0"))
	if err != nil {
		return nil, fmt.Errorf("failed to build transcript: %w", err)
	}
	claimHash, err := claim.Hash(field)
	if err != nil {
		return nil, fmt.Errorf("failed to hash claim: %w", err)
	}
	challenger.ObserveElements([]*core.FieldElement{claimHash})
	challenger.ObserveCap(traceCap)

	lookups := air.Lookups()
	gamma, err := challenger.GetExtensionChallenge(extField)
	if err != nil {
		return nil, fmt.Errorf("failed to draw lookup challenge: %w", err)
	}
	lookupEngine := NewLookupEngine(extField, gamma)

	auxRaw := make([][]*core.FieldElement, 0, len(lookups)*extField.Degree)
	for _, lk := range lookups {
		helper, err := lookupEngine.ComputeHelperColumn(paddedMain[lk.LookedColumn], paddedMain[lk.TableColumn], paddedMain[lk.MultiplicityColumn])
		if err != nil {
			return nil, newError(ErrLookupMismatch, fmt.Sprintf("lookup %q helper column", lk.Name), err)
		}
		auxRaw = append(auxRaw, decomposeLimbColumns(helper, extField)...)
	}

	var auxTable *MasterTable
	var auxCap core.MerkleCap
	if len(auxRaw) > 0 {
		auxTable, err = NewMasterTable(field, auxRaw, domains, defaultNumTraceRandomizers, []byte("airstark-aux-trace"))
		if err != nil {
			return nil, fmt.Errorf("failed to build aux table: %w", err)
		}
		if err := auxTable.LowDegreeExtend(domains); err != nil {
			return nil, fmt.Errorf("failed to extend aux table: %w", err)
		}
		auxTree, err := auxTable.BuildMerkleTree()
		if err != nil {
			return nil, fmt.Errorf("failed to commit aux table: %w", err)
		}
		auxCap, err = auxTree.Cap(p.Config.FriConfig.CapHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to cap aux table commitment: %w", err)
		}
		challenger.ObserveCap(auxCap)
	}

	alphasExt, err := challenger.GetNExtensionChallenges(extField, p.Config.NumChallenges)
	if err != nil {
		return nil, fmt.Errorf("failed to draw constraint challenges: %w", err)
	}

	publicInputsExt := make([]*core.ExtElement, len(claim.PublicInputs))
	for i, v := range claim.PublicInputs {
		publicInputsExt[i] = extField.FromBase(v)
	}

	rawQuotient, err := p.computeQuotient(air, lookups, mainTable, auxTable, domains, alphasExt, lookupEngine, publicInputsExt, extField)
	if err != nil {
		return nil, fmt.Errorf("failed to compute quotient: %w", err)
	}

	qFactor := quotientDegreeFactor(air)
	quotientColumns, err := chunkQuotientColumns(rawQuotient, p.Config.NumChallenges, qFactor, extField, domains)
	if err != nil {
		return nil, fmt.Errorf("failed to split quotient into degree-bounded chunks: %w", err)
	}

	quotientTree, err := commitColumns(field, quotientColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to commit quotient: %w", err)
	}
	quotientCap, err := quotientTree.Cap(p.Config.FriConfig.CapHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to cap quotient commitment: %w", err)
	}
	challenger.ObserveCap(quotientCap)

	zeta, err := challenger.GetExtensionChallenge(extField)
	if err != nil {
		return nil, fmt.Errorf("failed to draw out-of-domain point: %w", err)
	}
	zetaNext := zeta.Mul(extField.FromBase(domains.RandomizedTrace.Generator))

	traceLocal, err := mainTable.EvaluateAtExtPoint(zeta, extField)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace at zeta: %w", err)
	}
	traceNext, err := mainTable.EvaluateAtExtPoint(zetaNext, extField)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace at zeta*g: %w", err)
	}

	var auxLocal, auxNext []*core.ExtElement
	if auxTable != nil {
		auxLocalLimbs, err := auxTable.EvaluateAtExtPoint(zeta, extField)
		if err != nil {
			return nil, fmt.Errorf("failed to open aux table at zeta: %w", err)
		}
		auxNextLimbs, err := auxTable.EvaluateAtExtPoint(zetaNext, extField)
		if err != nil {
			return nil, fmt.Errorf("failed to open aux table at zeta*g: %w", err)
		}
		auxLocal = make([]*core.ExtElement, len(lookups))
		auxNext = make([]*core.ExtElement, len(lookups))
		for li := range lookups {
			start := li * extField.Degree
			auxLocal[li] = recombineLimbs(auxLocalLimbs[start:start+extField.Degree], extField)
			auxNext[li] = recombineLimbs(auxNextLimbs[start:start+extField.Degree], extField)
		}
	}

	numQuotientChunks := p.Config.NumChallenges * qFactor
	quotientChunks := make([]*core.ExtElement, numQuotientChunks)
	for idx := 0; idx < numQuotientChunks; idx++ {
		limbEvals := make([]*core.ExtElement, extField.Degree)
		for limb := 0; limb < extField.Degree; limb++ {
			poly, err := interpolateCosetPolynomial(quotientColumns[idx*extField.Degree+limb], domains.FRI)
			if err != nil {
				return nil, fmt.Errorf("failed to interpolate quotient chunk %d limb %d: %w", idx, limb, err)
			}
			limbEvals[limb] = EvalBasePolyAtExtPoint(poly, zeta, extField)
		}
		quotientChunks[idx] = recombineLimbs(limbEvals, extField)
	}

	challenger.ObserveOpenings(traceLocal)
	challenger.ObserveOpenings(traceNext)
	if auxLocal != nil {
		challenger.ObserveOpenings(auxLocal)
		challenger.ObserveOpenings(auxNext)
	}
	challenger.ObserveOpenings(quotientChunks)

	powNonce, err := challenger.GrindProofOfWork(p.Config.FriConfig.ProofOfWorkBits)
	if err != nil {
		return nil, newError(ErrProofOfWork, "failed to grind proof of work", err)
	}
	challenger.ObserveBytes(nonceBytes(powNonce))

	friCfg := fri.Config{
		CapHeight:       p.Config.FriConfig.CapHeight,
		ProofOfWorkBits: 0,
		NumQueryRounds:  p.Config.FriConfig.NumQueryRounds,
		StopDegree:      domains.RandomizedTrace.Length - 1,
	}
	friDom := &fri.Domain{
		Field:     domains.FRI.Field,
		Offset:    domains.FRI.Offset,
		Generator: domains.FRI.Generator,
		Length:    domains.FRI.Length,
	}

	friProofs := make([]fri.Proof, len(quotientColumns))
	for i, col := range quotientColumns {
		proof, err := fri.Prove(friCfg, friDom, col,
			func(cap core.MerkleCap) { challenger.ObserveCap(cap) },
			func() *core.FieldElement { return challenger.GetChallenge() },
			func(domainLen int) int { return int(challenger.GetChallenge().Big().Uint64() % uint64(domainLen)) },
		)
		if err != nil {
			return nil, fmt.Errorf("FRI proof for quotient limb %d failed: %w", i, err)
		}
		friProofs[i] = proof
	}

	proof := StarkProof{
		TraceCap:    traceCap,
		AuxCap:      auxCap,
		QuotientCap: quotientCap,
		Openings: StarkOpeningSet{
			TraceLocal:     traceLocal,
			TraceNext:      traceNext,
			AuxLocal:       auxLocal,
			AuxNext:        auxNext,
			QuotientChunks: quotientChunks,
		},
		FRIProofs: friProofs,
		PowNonce:  powNonce,
	}

	return &StarkProofWithPublicInputs{Proof: proof, Claim: *claim}, nil
}

// computeQuotient evaluates the AIR's constraints and lookup arguments at
// every point of the FRI domain, folds them through an ExtConstraintConsumer
// per point, divides by the trace domain's vanishing polynomial (nonzero
// everywhere on the coset FRI domain), and decomposes the result into
// extField.Degree * len(alphas) base-field limb columns ready to commit and
// FRI-prove.
//
// The constraint evaluation always takes the extension-field path
// (AIR.EvalExtension), embedding base trace values via ExtField.FromBase,
// rather than the packed base-field path (AIR.EvalPackedBase): the lookup
// argument's terms are extension-valued regardless, so running everything
// through one arithmetic path keeps this loop simple at the cost of the
// packed path's performance. AIR.EvalPackedBase remains part of the
// interface for AIRs to implement and exercise under the "packed == scalar"
// consistency check, independent of this prover.
func (p *Prover) computeQuotient(
	air AIR,
	lookups []Lookup,
	mainTable *MasterTable,
	auxTable *MasterTable,
	domains *ProverDomains,
	alphasExt []*core.ExtElement,
	lookupEngine *LookupEngine,
	publicInputsExt []*core.ExtElement,
	extField *core.ExtField,
) ([][]*core.FieldElement, error) {
	field := p.Field
	H := domains.RandomizedTrace
	friLen := domains.FRI.Length
	blowup := friLen / H.Length
	nBig := big.NewInt(int64(H.Length))

	numMainCols := mainTable.NumColumns()
	var numAuxRawCols int
	if auxTable != nil {
		numAuxRawCols = auxTable.NumColumns()
	}

	mainExt := make([][]*core.FieldElement, numMainCols)
	for c := 0; c < numMainCols; c++ {
		col, err := mainTable.GetExtendedColumn(c)
		if err != nil {
			return nil, err
		}
		mainExt[c] = col
	}
	auxExt := make([][]*core.FieldElement, numAuxRawCols)
	for c := 0; c < numAuxRawCols; c++ {
		col, err := auxTable.GetExtendedColumn(c)
		if err != nil {
			return nil, err
		}
		auxExt[c] = col
	}

	numChallenges := len(alphasExt)
	quotient := make([][]*core.FieldElement, numChallenges*extField.Degree)
	for i := range quotient {
		quotient[i] = make([]*core.FieldElement, friLen)
	}

	friPoints := domains.FRI.Elements()

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > friLen {
		numWorkers = friLen
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunk := (friLen + numWorkers - 1) / numWorkers

	g, _ := errgroup.WithContext(context.Background())
	for start := 0; start < friLen; start += chunk {
		start := start
		end := start + chunk
		if end > friLen {
			end = friLen
		}
		g.Go(func() error {
			return p.computeQuotientRange(start, end, air, lookups, domains, alphasExt, lookupEngine,
				publicInputsExt, extField, mainExt, auxExt, numMainCols, blowup, friPoints, quotient, nBig, field)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return quotient, nil
}

// computeQuotientRange evaluates rows [start, end) of the FRI domain,
// independent goroutine-local work: each row only reads shared, already
// materialized column data and writes to its own disjoint slice of
// quotient, so no synchronization beyond the errgroup barrier is needed.
func (p *Prover) computeQuotientRange(
	start, end int,
	air AIR,
	lookups []Lookup,
	domains *ProverDomains,
	alphasExt []*core.ExtElement,
	lookupEngine *LookupEngine,
	publicInputsExt []*core.ExtElement,
	extField *core.ExtField,
	mainExt [][]*core.FieldElement,
	auxExt [][]*core.FieldElement,
	numMainCols int,
	blowup int,
	friPoints []*core.FieldElement,
	quotient [][]*core.FieldElement,
	nBig *big.Int,
	field *core.Field,
) error {
	H := domains.RandomizedTrace
	friLen := domains.FRI.Length
	numChallenges := len(alphasExt)

	for i := start; i < end; i++ {
		x := friPoints[i]
		nextIdx := (i + blowup) % friLen

		cur := make([]*core.ExtElement, numMainCols+len(lookups))
		next := make([]*core.ExtElement, numMainCols+len(lookups))
		for c := 0; c < numMainCols; c++ {
			cur[c] = extField.FromBase(mainExt[c][i])
			next[c] = extField.FromBase(mainExt[c][nextIdx])
		}
		for li := range lookups {
			limbsCur := make([]*core.FieldElement, extField.Degree)
			limbsNext := make([]*core.FieldElement, extField.Degree)
			for d := 0; d < extField.Degree; d++ {
				limbsCur[d] = auxExt[li*extField.Degree+d][i]
				limbsNext[d] = auxExt[li*extField.Degree+d][nextIdx]
			}
			curElem, err := extField.NewExtElement(limbsCur)
			if err != nil {
				return fmt.Errorf("row %d lookup %d: %w", i, li, err)
			}
			nextElem, err := extField.NewExtElement(limbsNext)
			if err != nil {
				return fmt.Errorf("row %d lookup %d: %w", i, li, err)
			}
			cur[numMainCols+li] = curElem
			next[numMainCols+li] = nextElem
		}

		frame := NewExtensionFrame(cur, next)

		l0, lLast, zLast, err := EvalL0AndLLast(H, x)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		consumer := NewExtConstraintConsumer(extField, alphasExt,
			extField.FromBase(zLast), extField.FromBase(l0), extField.FromBase(lLast))

		air.EvalExtension(frame, publicInputsExt, consumer)
		for li, lk := range lookups {
			if err := lk.EvalConstraints(lookupEngine, frame, consumer); err != nil {
				return fmt.Errorf("row %d lookup %d: %w", i, li, err)
			}
		}

		xN := x.Exp(nBig)
		zH := xN.Sub(field.One())
		zHInv, err := zH.Inv()
		if err != nil {
			return fmt.Errorf("row %d: FRI domain point lies in the trace's vanishing set: %w", i, err)
		}
		zHInvExt := extField.FromBase(zHInv)

		accum := consumer.Accumulators()
		for c := 0; c < numChallenges; c++ {
			qVal := accum[c].Mul(zHInvExt)
			limbs := qVal.Limbs()
			for d := 0; d < extField.Degree; d++ {
				quotient[c*extField.Degree+d][i] = limbs[d]
			}
		}
	}

	return nil
}

// padColumns repeats each column's last row up to height, the same padding
// rule MasterTable applies internally; used here so lookup helper columns
// are computed against the same padded shape the main table commits to.
func padColumns(columns [][]*core.FieldElement, height int) [][]*core.FieldElement {
	out := make([][]*core.FieldElement, len(columns))
	for i, col := range columns {
		padded := make([]*core.FieldElement, height)
		copy(padded, col)
		last := col[len(col)-1]
		for r := len(col); r < height; r++ {
			padded[r] = last
		}
		out[i] = padded
	}
	return out
}

// interpolateCosetPolynomial recovers the coefficient form of a polynomial
// from its evaluations over a (possibly offset) coset domain: an inverse
// NTT recovers the coefficients of f(offset*y) in y, which are then
// rescaled by powers of offset^-1 to give f's own coefficients.
func interpolateCosetPolynomial(values []*core.FieldElement, domain *ArithmeticDomain) (*core.Polynomial, error) {
	coeffs, err := core.IFFT(values, domain.Generator, domain.Field)
	if err != nil {
		return nil, fmt.Errorf("inverse NTT failed: %w", err)
	}
	if !domain.Offset.IsOne() {
		offsetInv, err := domain.Offset.Inv()
		if err != nil {
			return nil, fmt.Errorf("domain offset has no inverse: %w", err)
		}
		scale := domain.Field.One()
		for i := range coeffs {
			coeffs[i] = coeffs[i].Mul(scale)
			scale = scale.Mul(offsetInv)
		}
	}
	return core.NewPolynomial(coeffs)
}

// chunkQuotientColumns splits each raw per-challenge, per-limb quotient
// codeword (accum_c(x)/Z_H(x), evaluated pointwise over the FRI domain) into
// qFactor lower-degree pieces: recovering Q_c's coefficients via an inverse
// NTT, slicing them into qFactor blocks of domains.RandomizedTrace.Length
// coefficients each, and re-extending every block onto the FRI domain. A
// constraint of total degree 1 never needs this (qFactor collapses to 1 and
// a block holds the whole polynomial); it matters once lookups or
// higher-degree constraints push a single accumulator's true degree past
// one trace domain length.
//
// raw holds numChallenges*extField.Degree columns of friLen evaluations;
// the result holds numChallenges*qFactor*extField.Degree columns, ordered
// (challenge, chunk, limb), each still friLen evaluations long.
func chunkQuotientColumns(raw [][]*core.FieldElement, numChallenges, qFactor int, extField *core.ExtField, domains *ProverDomains) ([][]*core.FieldElement, error) {
	blockLen := domains.RandomizedTrace.Length
	field := domains.FRI.Field
	out := make([][]*core.FieldElement, numChallenges*qFactor*extField.Degree)

	for c := 0; c < numChallenges; c++ {
		for limb := 0; limb < extField.Degree; limb++ {
			column := raw[c*extField.Degree+limb]
			poly, err := interpolateCosetPolynomial(column, domains.FRI)
			if err != nil {
				return nil, fmt.Errorf("failed to interpolate quotient %d limb %d for chunking: %w", c, limb, err)
			}
			coeffs := poly.Coefficients()

			for j := 0; j < qFactor; j++ {
				blockCoeffs := make([]*core.FieldElement, blockLen)
				for k := 0; k < blockLen; k++ {
					idx := j*blockLen + k
					if idx < len(coeffs) {
						blockCoeffs[k] = coeffs[idx]
					} else {
						blockCoeffs[k] = field.Zero()
					}
				}
				blockPoly, err := core.NewPolynomial(blockCoeffs)
				if err != nil {
					return nil, fmt.Errorf("failed to build quotient chunk %d/%d polynomial: %w", c, j, err)
				}
				evals, err := domains.FRI.Evaluate(blockPoly)
				if err != nil {
					return nil, fmt.Errorf("failed to extend quotient chunk %d/%d: %w", c, j, err)
				}
				out[(c*qFactor+j)*extField.Degree+limb] = evals
			}
		}
	}
	return out, nil
}

func nonceBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
