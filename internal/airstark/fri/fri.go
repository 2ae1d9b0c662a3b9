// Package fri implements the FRI (Fast Reed-Solomon IOP of Proximity)
// low-degree test: given a committed codeword, convince a verifier that it
// is close to the evaluation of some polynomial of bounded degree, without
// revealing the polynomial.
//
// Grounded on the teacher's domain/Merkle-commitment machinery (the same
// coset-of-a-subgroup domain model stark.ArithmeticDomain uses, and
// core.MerkleTree for commitments), generalized from the teacher's
// VM-specific FRI pass into a degree-generic low-degree test any AIR's
// quotient codeword can run through.
package fri

import (
	"fmt"
	"math/big"

	"github.com/vybium/airstark/internal/airstark/core"
)

// Domain is a coset of a multiplicative subgroup of the base field, the
// same shape as stark.ArithmeticDomain; fri keeps its own copy to avoid an
// import cycle with package stark, which calls into fri.
type Domain struct {
	Field     *core.Field
	Offset    *core.FieldElement
	Generator *core.FieldElement
	Length    int
}

// Elements returns every point of the domain.
func (d *Domain) Elements() []*core.FieldElement {
	out := make([]*core.FieldElement, d.Length)
	cur := d.Offset
	for i := range out {
		out[i] = cur
		cur = cur.Mul(d.Generator)
	}
	return out
}

func (d *Domain) halve() *Domain {
	return &Domain{
		Field:     d.Field,
		Offset:    d.Offset.Mul(d.Offset),
		Generator: d.Generator.Mul(d.Generator),
		Length:    d.Length / 2,
	}
}

// Config controls the FRI protocol's Merkle cap height, query count, and
// stopping point; every round folds by a factor of 2. stark.Prover and
// stark.Verifier fill it in field by field from StarkConfig.FriConfig and
// the trace domain.
type Config struct {
	CapHeight       int
	ProofOfWorkBits int
	NumQueryRounds  int
	// StopDegree sets where folding stops: once a layer's domain has at most
	// StopDegree+1 points, its interpolating polynomial (at most StopDegree+1
	// coefficients) is sent directly instead of committed to.
	StopDegree int
}

// Proof is one completed FRI run's transcript. LayerCaps is what the
// verifier's transcript absorbs to derive folding challenges; LayerRoots
// is the (possibly taller) full Merkle root each layer's query
// authentication paths are checked against. LayerRoots[i] and
// LayerCaps[i] commit to the same tree, cap and root, at different depths.
type Proof struct {
	LayerCaps   []core.MerkleCap
	LayerRoots  [][]byte
	FinalPoly   []*core.FieldElement
	QueryRounds []QueryRound
}

// QueryRound is the authentication data for one FRI query index, carrying
// the opened (x, -x) codeword pair and a Merkle path to the layer root for
// each value, at every folded layer.
type QueryRound struct {
	Index int

	// LayerValues[l] == {f_l(x), f_l(-x)} for the query index at layer l.
	LayerValues [][2]*core.FieldElement

	// LayerProofs[l] == {proof for f_l(x), proof for f_l(-x)}.
	LayerProofs [][2][]core.ProofNode
}

// layer holds one folding round's state: the evaluations, domain, and
// Merkle tree committing to them.
type layer struct {
	domain *Domain
	values []*core.FieldElement
	tree   *core.MerkleTree
}

// commitLayer builds a Merkle tree over a layer's evaluations, one leaf per
// point.
func commitLayer(values []*core.FieldElement) (*core.MerkleTree, error) {
	leaves := make([][]byte, len(values))
	for i, v := range values {
		leaves[i] = v.Bytes()
	}
	return core.NewMerkleTree(leaves)
}

// Prove runs the FRI protocol to completion over an initial codeword
// (values, one per point of initialDomain), folding with challenges drawn
// from getChallenge after each layer's cap is absorbed by the caller's
// transcript (absorbCap), until the remaining polynomial has degree <=
// cfg.StopDegree, then opens cfg.NumQueryRounds query indices against every
// layer.
func Prove(
	cfg Config,
	initialDomain *Domain,
	initialValues []*core.FieldElement,
	absorbCap func(core.MerkleCap),
	getChallenge func() *core.FieldElement,
	getQueryIndex func(domainLen int) int,
) (Proof, error) {
	layers := []layer{}
	curDomain := initialDomain
	curValues := initialValues

	for curDomain.Length > cfg.StopDegree+1 {
		tree, err := commitLayer(curValues)
		if err != nil {
			return Proof{}, fmt.Errorf("failed to commit FRI layer of length %d: %w", curDomain.Length, err)
		}
		cap, err := tree.Cap(cfg.CapHeight)
		if err != nil {
			return Proof{}, fmt.Errorf("failed to cap FRI layer: %w", err)
		}
		absorbCap(cap)
		layers = append(layers, layer{domain: curDomain, values: curValues, tree: tree})

		beta := getChallenge()
		nextValues, err := foldLayer(curDomain, curValues, beta)
		if err != nil {
			return Proof{}, fmt.Errorf("failed to fold FRI layer: %w", err)
		}
		curDomain = curDomain.halve()
		curValues = nextValues
	}

	finalPoly, err := core.IFFT(curValues, curDomain.Generator, curDomain.Field)
	if err != nil {
		return Proof{}, fmt.Errorf("failed to interpolate final FRI layer: %w", err)
	}
	// The IFFT interpolates over the subgroup generated by curDomain.Generator,
	// giving the coefficients of p(offset*y); scaling coefficient k by
	// offset^-k turns them into p's own, the form Verify evaluates at
	// offset*generator^idx.
	offsetInv, err := curDomain.Offset.Inv()
	if err != nil {
		return Proof{}, fmt.Errorf("final FRI domain offset has no inverse: %w", err)
	}
	scale := curDomain.Field.One()
	for k := range finalPoly {
		finalPoly[k] = finalPoly[k].Mul(scale)
		scale = scale.Mul(offsetInv)
	}
	finalPoly = trimTrailingZeros(finalPoly, cfg.StopDegree+1)

	caps := make([]core.MerkleCap, len(layers))
	roots := make([][]byte, len(layers))
	for i, l := range layers {
		cap, err := l.tree.Cap(cfg.CapHeight)
		if err != nil {
			return Proof{}, fmt.Errorf("failed to re-derive layer %d cap: %w", i, err)
		}
		caps[i] = cap
		roots[i] = l.tree.Root()
	}

	queries := make([]QueryRound, cfg.NumQueryRounds)
	for q := 0; q < cfg.NumQueryRounds; q++ {
		idx := getQueryIndex(initialDomain.Length)
		round, err := openQuery(layers, idx)
		if err != nil {
			return Proof{}, fmt.Errorf("failed to open FRI query %d: %w", q, err)
		}
		queries[q] = round
	}

	return Proof{LayerCaps: caps, LayerRoots: roots, FinalPoly: finalPoly, QueryRounds: queries}, nil
}

// foldLayer applies one FRI folding step: for each pair of points x, -x in
// the domain (x_i and x_{i+n/2}, since generator^(n/2) = -1), the folded
// value combines the even and odd parts of f using the round challenge.
func foldLayer(domain *Domain, values []*core.FieldElement, beta *core.FieldElement) ([]*core.FieldElement, error) {
	n := domain.Length
	half := n / 2
	field := domain.Field

	two := field.NewElementFromInt64(2)
	twoInv, err := two.Inv()
	if err != nil {
		return nil, fmt.Errorf("field has no inverse of 2: %w", err)
	}

	elements := domain.Elements()
	out := make([]*core.FieldElement, half)
	for i := 0; i < half; i++ {
		x := elements[i]
		fx := values[i]
		fNegX := values[i+half]

		even := fx.Add(fNegX).Mul(twoInv)
		xInv, err := x.Inv()
		if err != nil {
			return nil, fmt.Errorf("domain point %d is zero: %w", i, err)
		}
		odd := fx.Sub(fNegX).Mul(twoInv).Mul(xInv)

		out[i] = even.Add(beta.Mul(odd))
	}
	return out, nil
}

func trimTrailingZeros(coeffs []*core.FieldElement, keepAtLeast int) []*core.FieldElement {
	end := len(coeffs)
	for end > keepAtLeast && coeffs[end-1].IsZero() {
		end--
	}
	return coeffs[:end]
}

// openQuery collects, at every folded layer, the queried index's value and
// its sibling's value (the pair the verifier needs to recompute the fold),
// plus Merkle authentication paths for both.
func openQuery(layers []layer, index int) (QueryRound, error) {
	round := QueryRound{Index: index}
	idx := index

	for _, l := range layers {
		half := l.domain.Length / 2
		i := idx % half
		sibling := i + half

		round.LayerValues = append(round.LayerValues, [2]*core.FieldElement{l.values[i], l.values[sibling]})

		proofI, err := l.tree.Proof(i)
		if err != nil {
			return QueryRound{}, fmt.Errorf("failed to build proof for index %d: %w", i, err)
		}
		proofSib, err := l.tree.Proof(sibling)
		if err != nil {
			return QueryRound{}, fmt.Errorf("failed to build proof for index %d: %w", sibling, err)
		}
		round.LayerProofs = append(round.LayerProofs, [2][]core.ProofNode{proofI, proofSib})

		idx = i
	}

	return round, nil
}

// Verify checks a FRI proof: every opened value authenticates against its
// layer's root, every layer's folding is consistent with its predecessor
// under the claimed challenge, and the final polynomial has degree <=
// cfg.StopDegree. betas must be the same challenges the verifier's own
// transcript derives after absorbing each of proof.LayerCaps in order.
func Verify(
	cfg Config,
	initialDomain *Domain,
	proof Proof,
	betas []*core.FieldElement,
) error {
	if len(proof.LayerCaps) != len(betas) || len(proof.LayerRoots) != len(betas) {
		return fmt.Errorf("expected %d folding challenges, got %d caps and %d roots", len(betas), len(proof.LayerCaps), len(proof.LayerRoots))
	}
	if len(proof.FinalPoly) > cfg.StopDegree+1 {
		return fmt.Errorf("final polynomial has %d coefficients, exceeds stop degree bound %d", len(proof.FinalPoly), cfg.StopDegree+1)
	}

	field := initialDomain.Field
	two := field.NewElementFromInt64(2)
	twoInv, err := two.Inv()
	if err != nil {
		return fmt.Errorf("field has no inverse of 2: %w", err)
	}

	finalPoly, err := core.NewPolynomial(proof.FinalPoly)
	if err != nil {
		return fmt.Errorf("failed to build final polynomial: %w", err)
	}

	for _, round := range proof.QueryRounds {
		if len(round.LayerValues) != len(betas) || len(round.LayerProofs) != len(betas) {
			return fmt.Errorf("query %d: expected %d layers of opening data, got %d values and %d proofs",
				round.Index, len(betas), len(round.LayerValues), len(round.LayerProofs))
		}

		domain := initialDomain
		idx := round.Index
		var folded *core.FieldElement

		for layerIdx, beta := range betas {
			half := domain.Length / 2
			i := idx % half
			sibling := i + half

			fx, fNegX := round.LayerValues[layerIdx][0], round.LayerValues[layerIdx][1]

			// The fold from the previous layer must match this layer's
			// opened value at the same index -- this is what ties
			// consecutive layers together into one consistent codeword.
			// That value is fx when idx lies in the lower half of this
			// layer, and its pair fNegX when idx lies in the upper half.
			opened := fx
			if idx >= half {
				opened = fNegX
			}
			if folded != nil && !folded.Equal(opened) {
				return fmt.Errorf("query %d, layer %d: folded value does not match opened value at index %d", round.Index, layerIdx, idx)
			}

			if !core.VerifyProof(proof.LayerRoots[layerIdx], fx.Bytes(), round.LayerProofs[layerIdx][0], i) {
				return fmt.Errorf("query %d, layer %d: authentication path for index %d failed", round.Index, layerIdx, i)
			}
			if !core.VerifyProof(proof.LayerRoots[layerIdx], fNegX.Bytes(), round.LayerProofs[layerIdx][1], sibling) {
				return fmt.Errorf("query %d, layer %d: authentication path for index %d failed", round.Index, layerIdx, sibling)
			}

			x := domain.Offset.Mul(pow(domain.Generator, i))
			even := fx.Add(fNegX).Mul(twoInv)
			xInv, err := x.Inv()
			if err != nil {
				return fmt.Errorf("query %d, layer %d: domain point is zero: %w", round.Index, layerIdx, err)
			}
			odd := fx.Sub(fNegX).Mul(twoInv).Mul(xInv)
			folded = even.Add(beta.Mul(odd))

			domain = domain.halve()
			idx = i
		}

		finalPoint := domain.Offset.Mul(pow(domain.Generator, idx))
		if !folded.Equal(finalPoly.Eval(finalPoint)) {
			return fmt.Errorf("query %d: final fold does not match the sent final polynomial", round.Index)
		}
	}

	return nil
}

func pow(base *core.FieldElement, exp int) *core.FieldElement {
	return base.Exp(big.NewInt(int64(exp)))
}
