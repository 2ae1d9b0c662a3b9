// Package recursive implements a gnark circuit re-expressing the
// Fibonacci AIR's out-of-domain composition check as arithmetic gates,
// letting one STARK proof's verification be itself proven inside a SNARK.
//
// Grounded on the pack's gnark checkouts (famouswizard-gnark's
// backend/plonk/plonk_test.go refCircuit, BaoNinh2808-gnark's go.mod
// dependency on github.com/consensys/gnark): frontend.Circuit's
// Define(api frontend.API) error contract, built from api.Add/api.Sub/
// api.Mul/api.AssertIsEqual, is the stable, well-documented surface; no
// circuit-recursion (proof-of-a-proof) example exists anywhere in the
// retrieved pack, so this circuit sticks to that known-good surface
// rather than guessing at an unverified recursive-verifier API.
package recursive

import (
	"github.com/consensys/gnark/frontend"
)

// Fibonacci AIR column layout, mirroring fib.ColX0..fib.ColFreq plus one
// appended helper slot for its single lookup -- the same layout
// stark.Verifier.checkComposition builds its frame from.
const (
	colX0             = 0
	colX1             = 1
	colI              = 2
	colJ              = 3
	colFreq           = 4
	colHelper         = 5
	numCircuitColumns = 6
)

// Circuit proves two things about a claimed Fibonacci run:
//
//  1. (direct re-execution) running the recurrence for Steps rows from
//     (X0Start, X1Start) produces Output as its final second coordinate --
//     the same check the original version of this circuit made on its own.
//
//  2. (composition replay) the out-of-domain opening set a stark.Prover
//     produced for that same claim -- trace/helper column openings at zeta
//     and zeta*generator, and the chunked quotient openings -- satisfies
//     exactly the identity stark.Verifier.checkComposition checks: the
//     Fibonacci AIR's boundary/transition constraints and its range-check
//     lookup's rational term, alpha-folded and divided by the trace
//     domain's vanishing polynomial, must equal the quotient chunks
//     recombined by reduce_with_powers. Tampering with any opening or
//     challenge in a way the native verifier would reject makes this
//     second check unsatisfiable, even though the first check alone would
//     not have noticed (it never looks at a proof at all).
//
// FRI itself -- the low-degree check the native verifier runs on the
// quotient chunks' codewords -- is not replayed in-circuit; proving FRI's
// folding and query phase as arithmetic gates is a substantial undertaking
// of its own, out of scope here and recorded as a known simplification in
// DESIGN.md. What this circuit proves is that the claimed output is
// reachable by the AIR's recurrence, and that a genuine set of
// Fiat-Shamir-consistent openings for that claim passes the same
// composition identity the native verifier's out-of-domain check enforces.
type Circuit struct {
	X0Start frontend.Variable `gnark:",public"`
	X1Start frontend.Variable `gnark:",public"`
	Output  frontend.Variable `gnark:",public"`

	// Zeta is the Fiat-Shamir out-of-domain challenge point, Gamma the
	// lookup challenge, and Alphas the per-challenge constraint-folding
	// weights -- all derived by stark.Verifier.DeriveChallenges from the
	// same transcript the native verifier replays, then supplied here as
	// witness values rather than recomputed in-circuit (the transcript's
	// Poseidon sponge is not reproduced as arithmetic gates; only the
	// composition identity those challenges feed into is).
	Zeta   extVar
	Gamma  extVar
	Alphas []extVar

	// L0, LLast, ZLast are the row selectors stark.EvalL0AndLLastExt
	// evaluates at Zeta, and LastPoint the trace domain's last point
	// (generator^(n-1)). Define does not trust the three selectors blindly:
	// it re-derives them from Zeta and LastPoint via their defining
	// multiplicative identities before using them to mask any constraint.
	// LastPoint itself is used as supplied.
	L0        extVar
	LLast     extVar
	ZLast     extVar
	LastPoint frontend.Variable

	// TraceLocal/TraceNext are the five main Fibonacci columns opened at
	// zeta and zeta*generator; AuxLocal/AuxNext the lookup's helper column
	// at the same two points.
	TraceLocal [5]extVar
	TraceNext  [5]extVar
	AuxLocal   [1]extVar
	AuxNext    [1]extVar

	// QuotientChunks holds, for each alpha challenge, QuotientDegreeFactor
	// consecutive degree-bounded quotient openings -- the same grouping
	// stark.Prover's chunkQuotientColumns produces and
	// stark.Verifier.checkComposition recombines via reduce_with_powers.
	QuotientChunks []extVar

	// Steps, TraceDomainLength, QuotientDegreeFactor are fixed at
	// circuit-compile time, not witness values.
	Steps                int
	TraceDomainLength    int
	QuotientDegreeFactor int
}

// NewCircuit builds a Circuit shaped for exactly steps recurrence
// applications, a trace (randomized) domain of length traceDomainLength,
// numChallenges constraint-folding challenges, and a quotient split into
// quotientDegreeFactor chunks per challenge -- the shape information
// frontend.Compile needs before any witness values are known.
func NewCircuit(steps, traceDomainLength, numChallenges, quotientDegreeFactor int) *Circuit {
	return &Circuit{
		Steps:                steps,
		TraceDomainLength:    traceDomainLength,
		QuotientDegreeFactor: quotientDegreeFactor,
		Alphas:               make([]extVar, numChallenges),
		QuotientChunks:       make([]extVar, numChallenges*quotientDegreeFactor),
	}
}

// Define implements frontend.Circuit.
func (c *Circuit) Define(api frontend.API) error {
	x0 := c.X0Start
	x1 := c.X1Start
	for i := 0; i < c.Steps; i++ {
		nextX1 := api.Add(x0, x1)
		x0 = x1
		x1 = nextX1
	}
	api.AssertIsEqual(x1, c.Output)

	g := newGoldilocksGadget(api)
	e := newExtGadget(g)

	n := c.TraceDomainLength
	one := e.one()

	zetaN := e.pow(c.Zeta, n)
	zH := e.sub(zetaN, one)
	nF := e.fromBase(n)

	// l0 * (zeta - 1) * n == zH, the identity l0 = zH / ((zeta-1)*n) rearranged
	// to avoid an in-circuit extension-field division.
	denom0 := e.mul(e.sub(c.Zeta, one), nF)
	e.assertEqual(e.mul(c.L0, denom0), zH)

	// zLast == zeta - lastPoint.
	e.assertEqual(c.ZLast, e.sub(c.Zeta, e.fromBase(c.LastPoint)))

	// lLast * zLast * n == zH.
	denomLast := e.mul(c.ZLast, nF)
	e.assertEqual(e.mul(c.LLast, denomLast), zH)

	cur := make([]extVar, numCircuitColumns)
	next := make([]extVar, numCircuitColumns)
	copy(cur[:5], c.TraceLocal[:])
	copy(next[:5], c.TraceNext[:])
	cur[colHelper] = c.AuxLocal[0]
	next[colHelper] = c.AuxNext[0]

	pub0 := e.fromBase(c.X0Start)
	pub1 := e.fromBase(c.X1Start)
	pub2 := e.fromBase(c.Output)

	accum := make([]extVar, len(c.Alphas))
	for i := range accum {
		accum[i] = e.zero()
	}
	fold := func(value extVar) {
		for i, alpha := range c.Alphas {
			accum[i] = e.add(e.mul(accum[i], alpha), value)
		}
	}
	foldFirst := func(value extVar) { fold(e.mul(value, c.L0)) }
	foldLast := func(value extVar) { fold(e.mul(value, c.LLast)) }
	foldTransition := func(value extVar) { fold(e.mul(value, c.ZLast)) }

	// Boundary: x0 == public[0], x1 == public[1], i == 0, on the first row.
	foldFirst(e.sub(cur[colX0], pub0))
	foldFirst(e.sub(cur[colX1], pub1))
	foldFirst(cur[colI])

	// Transition: x0' == x1, x1' == x0+x1, i' == i+1.
	foldTransition(e.sub(next[colX0], cur[colX1]))
	foldTransition(e.sub(next[colX1], e.add(cur[colX0], cur[colX1])))
	foldTransition(e.sub(e.sub(next[colI], cur[colI]), one))

	// Boundary: x1 == public[2] (the claimed output), on the last row.
	foldLast(e.sub(cur[colX1], pub2))

	// Lookup term: 1/(looked+gamma) - multiplicity/(table+gamma).
	term := func(row []extVar) extVar {
		looked := e.add(row[colI], c.Gamma)
		table := e.add(row[colJ], c.Gamma)
		lookedInv := e.inv(looked)
		tableInv := e.inv(table)
		weighted := e.mul(tableInv, row[colFreq])
		return e.sub(lookedInv, weighted)
	}
	curTerm := term(cur)
	nextTerm := term(next)

	foldFirst(e.sub(cur[colHelper], curTerm))
	foldTransition(e.sub(e.sub(next[colHelper], cur[colHelper]), nextTerm))
	foldLast(cur[colHelper])

	// Recombine each challenge's quotient chunk group via reduce_with_powers
	// and check it against that challenge's folded composition value,
	// rearranged as accum == recombined * zH to avoid inverting zH in-circuit.
	for ch := range accum {
		group := c.QuotientChunks[ch*c.QuotientDegreeFactor : (ch+1)*c.QuotientDegreeFactor]
		recombined := group[len(group)-1]
		for i := len(group) - 2; i >= 0; i-- {
			recombined = e.add(e.mul(recombined, zetaN), group[i])
		}
		e.assertEqual(accum[ch], e.mul(recombined, zH))
	}

	return nil
}
