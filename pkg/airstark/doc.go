// Package airstark provides a STARK (Scalable Transparent Argument of
// Knowledge) prover and verifier over a configurable AIR (Algebraic
// Intermediate Representation), with a logarithmic-derivative lookup
// argument for range checks and permutations.
//
// # Quick Start
//
// Proving and verifying the Fibonacci fixture AIR:
//
//	field, _ := airstark.NewGoldilocksField()
//	extField, _ := airstark.NewExtField(field, 2, field.NewElementFromInt64(7))
//	config := airstark.StandardFastConfig()
//
//	prover := airstark.NewProver(field, extField, config)
//	proof, err := prover.Prove(air, claim, traceColumns)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	verifier := airstark.NewVerifier(field, extField, config)
//	if err := verifier.Verify(air, proof, paddedHeight); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// - pkg/airstark/: public API (this package)
// - internal/airstark/core: field, extension field, Poseidon, Merkle, NTT
// - internal/airstark/stark: the prover, verifier, AIR contract, lookups
// - internal/airstark/fri: the FRI low-degree test
// - internal/airstark/transcript: the Fiat-Shamir challenger
// - internal/airstark/recursive: a gnark circuit re-expressing the
// Fibonacci AIR's own relation as arithmetic gates
// - internal/airstark/fib: the Fibonacci fixture AIR used by this
// package's own tests
//
// Implementation details under internal/ can change without breaking the
// public API.
package airstark
