package recursive

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/rangecheck"
)

// goldilocksPrime is 2^64 - 2^32 + 1, the same modulus core.NewGoldilocksField
// builds the STARK's base field from. A gnark circuit's own native field is
// the SNARK curve's scalar field (a different, much larger prime), so every
// frontend.Variable this package treats as "a Goldilocks element" is really
// just an integer constrained to stay a canonical representative in
// [0, goldilocksPrime) -- the embedding core.FieldElement.Big() already uses
// outside a circuit, made explicit here because arithmetic on it now needs
// its own reduction gates instead of getting them for free from the field.
var goldilocksPrime, _ = new(big.Int).SetString("18446744069414584321", 10)

// goldilocksNonResidue is 7, the same quadratic non-residue
// fib.goldilocksQuadraticNonResidue picks to build the degree-2 extension
// X^2 - 7 that zeta, gamma, and every folded accumulator live in.
var goldilocksNonResidue = big.NewInt(7)

func init() {
	solver.RegisterHint(goldilocksReduceHint, goldilocksExtInverseHint)
}

// goldilocksReduceHint computes the quotient and remainder of dividing an
// unreduced native-field value by goldilocksPrime -- the pair reduce's
// caller needs, since division by a non-native modulus isn't an arithmetic
// gate and has to be supplied as a witness and then checked.
func goldilocksReduceHint(_ *big.Int, inputs, outputs []*big.Int) error {
	q, r := new(big.Int).QuoRem(inputs[0], goldilocksPrime, new(big.Int))
	outputs[0].Set(q)
	outputs[1].Set(r)
	return nil
}

// goldilocksExtInverseHint computes the inverse of a0+a1*X in the degree-2
// extension F[X]/(X^2-7), via the standard conjugate-norm identity
// (a0+a1 X)(a0-a1 X) = a0^2 - 7*a1^2: dividing the conjugate by that norm
// (a base-field scalar) gives the inverse directly, without needing the
// Gaussian-elimination solve core.ExtElement.Inv uses for arbitrary degree.
func goldilocksExtInverseHint(_ *big.Int, inputs, outputs []*big.Int) error {
	p := goldilocksPrime
	a0, a1 := inputs[0], inputs[1]

	a0sq := new(big.Int).Mul(a0, a0)
	a1sq := new(big.Int).Mul(a1, a1)
	a1sq.Mul(a1sq, goldilocksNonResidue)
	norm := new(big.Int).Sub(a0sq, a1sq)
	norm.Mod(norm, p)

	normInv := new(big.Int).ModInverse(norm, p)
	if normInv == nil {
		return fmt.Errorf("goldilocks extension element has no inverse")
	}

	r0 := new(big.Int).Mul(a0, normInv)
	r0.Mod(r0, p)

	r1 := new(big.Int).Neg(a1)
	r1.Mul(r1, normInv)
	r1.Mod(r1, p)

	outputs[0].Set(r0)
	outputs[1].Set(r1)
	return nil
}

// goldilocksGadget performs Goldilocks-field arithmetic inside a circuit
// whose native field is the SNARK curve's own, much larger scalar field, by
// reducing every product and sum modulo goldilocksPrime through a
// prover-supplied quotient and remainder, range-checked canonical.
//
// Grounded on BaoNinh2808-gnark's std/math/uints.BinaryField, which builds
// its own non-native byte arithmetic the same way: a rangecheck.New(api)
// checker (std/rangecheck) plus api.Compiler().NewHint to obtain values an
// arithmetic gate can't derive on its own, then an AssertIsEqual binding the
// hint's output back to the identity it has to satisfy.
type goldilocksGadget struct {
	api      frontend.API
	rchecker frontend.Rangechecker
}

func newGoldilocksGadget(api frontend.API) *goldilocksGadget {
	return &goldilocksGadget{api: api, rchecker: rangecheck.New(api)}
}

// reduce asserts raw == q*goldilocksPrime + r for a hint-supplied quotient
// and returns the canonical remainder r. Every caller here keeps raw within
// a small constant number of multiplications of already-canonical
// Goldilocks-sized values (at most ~128 bits), far below the native field's
// own ~254-bit capacity, so no overflow of the surrounding arithmetic is
// possible regardless of what an adversarial prover supplies as q and r --
// the final AssertIsEqual is what actually pins the relation down.
func (g *goldilocksGadget) reduce(raw frontend.Variable) frontend.Variable {
	outs, err := g.api.Compiler().NewHint(goldilocksReduceHint, 2, raw)
	if err != nil {
		panic(err)
	}
	q, r := outs[0], outs[1]
	g.rchecker.Check(q, 64)
	g.assertCanonical(r)
	g.api.AssertIsEqual(raw, g.api.Add(g.api.Mul(q, goldilocksPrime), r))
	return r
}

// assertCanonical asserts 0 <= v < goldilocksPrime by range-checking
// v + (2^32 - 1) to 64 bits. goldilocksPrime is 2^64 - 2^32 + 1, so that sum
// stays under 2^64 exactly when v is already canonical, and reaches or
// exceeds 2^64 for any v in [goldilocksPrime, 2^64) -- the only other values
// a 64-bit-but-not-yet-range-checked r could otherwise take.
func (g *goldilocksGadget) assertCanonical(v frontend.Variable) {
	g.rchecker.Check(v, 64)
	shifted := g.api.Add(v, (1<<32)-1)
	g.rchecker.Check(shifted, 64)
}

func (g *goldilocksGadget) add(a, b frontend.Variable) frontend.Variable {
	return g.reduce(g.api.Add(a, b))
}

// sub computes a-b by first adding goldilocksPrime to a, so the subtraction
// that follows is always between two native-field values whose true integer
// difference is non-negative -- native Sub only agrees with integer
// subtraction when that holds.
func (g *goldilocksGadget) sub(a, b frontend.Variable) frontend.Variable {
	return g.reduce(g.api.Sub(g.api.Add(a, goldilocksPrime), b))
}

func (g *goldilocksGadget) mul(a, b frontend.Variable) frontend.Variable {
	return g.reduce(g.api.Mul(a, b))
}

func (g *goldilocksGadget) assertEqual(a, b frontend.Variable) {
	g.api.AssertIsEqual(a, b)
}

// extVar is an element of the degree-2 extension F[X]/(X^2-7), its two
// Goldilocks-valued coordinates in increasing power order -- the circuit
// analogue of core.ExtElement.Limbs().
type extVar [2]frontend.Variable

// extGadget lifts goldilocksGadget's base-field arithmetic to the degree-2
// extension every STARK challenge and accumulator in this module lives in.
type extGadget struct {
	g *goldilocksGadget
}

func newExtGadget(g *goldilocksGadget) *extGadget {
	return &extGadget{g: g}
}

func (e *extGadget) zero() extVar { return extVar{0, 0} }
func (e *extGadget) one() extVar  { return extVar{1, 0} }

func (e *extGadget) fromBase(v frontend.Variable) extVar { return extVar{v, 0} }

func (e *extGadget) add(a, b extVar) extVar {
	return extVar{e.g.add(a[0], b[0]), e.g.add(a[1], b[1])}
}

func (e *extGadget) sub(a, b extVar) extVar {
	return extVar{e.g.sub(a[0], b[0]), e.g.sub(a[1], b[1])}
}

// mul performs the same schoolbook degree-2 reduction core.ExtElement.Mul
// does: (a0+a1 X)(b0+b1 X) = a0 b0 + (a0 b1 + a1 b0) X + a1 b1 X^2, folding
// the X^2 term back down via X^2 == goldilocksNonResidue.
func (e *extGadget) mul(a, b extVar) extVar {
	a0b0 := e.g.mul(a[0], b[0])
	a0b1 := e.g.mul(a[0], b[1])
	a1b0 := e.g.mul(a[1], b[0])
	a1b1 := e.g.mul(a[1], b[1])
	folded := e.g.mul(a1b1, goldilocksNonResidue)
	return extVar{e.g.add(a0b0, folded), e.g.add(a0b1, a1b0)}
}

func (e *extGadget) assertEqual(a, b extVar) {
	e.g.assertEqual(a[0], b[0])
	e.g.assertEqual(a[1], b[1])
}

// inv returns a hint-witnessed multiplicative inverse of a, asserting
// a*inv == 1 so only a genuine inverse can satisfy the circuit.
func (e *extGadget) inv(a extVar) extVar {
	outs, err := e.g.api.Compiler().NewHint(goldilocksExtInverseHint, 2, a[0], a[1])
	if err != nil {
		panic(err)
	}
	inv := extVar{outs[0], outs[1]}
	e.assertEqual(e.mul(a, inv), e.one())
	return inv
}

// pow raises a to a non-negative, compile-time-known integer power by
// repeated squaring, the circuit analogue of stark.extFieldPow.
func (e *extGadget) pow(a extVar, exp int) extVar {
	result := e.one()
	base := a
	for exp > 0 {
		if exp&1 == 1 {
			result = e.mul(result, base)
		}
		base = e.mul(base, base)
		exp >>= 1
	}
	return result
}
