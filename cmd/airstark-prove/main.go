// Command airstark-prove runs the Fibonacci fixture AIR end to end: builds
// a trace, proves it, verifies the proof, and prints a JSON summary to
// stdout. It exists to demonstrate the prover/verifier pair the way
// vybium-vm-prover demonstrates the teacher's own VM pipeline, not as a
// general-purpose proving CLI.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vybium/airstark/internal/airstark/core"
	"github.com/vybium/airstark/internal/airstark/fib"
	"github.com/vybium/airstark/internal/airstark/utils"
	"github.com/vybium/airstark/pkg/airstark"
)

type proofSummary struct {
	Height            int    `json:"height"`
	PublicInputs      []string `json:"public_inputs"`
	TraceCap          string `json:"trace_cap"`
	QuotientCap       string `json:"quotient_cap"`
	FRIProofCount     int    `json:"fri_proof_count"`
	ProvingTimeMs     int64  `json:"proving_time_ms"`
	VerificationTimeMs int64 `json:"verification_time_ms"`
	Verified          bool   `json:"verified"`
}

func main() {
	height := flag.Int("height", 32, "Fibonacci trace height (a power of 2; verification rejects any other height)")
	x0 := flag.Int64("x0", 0, "first Fibonacci seed value")
	x1 := flag.Int64("x1", 1, "second Fibonacci seed value")
	legacyConfigPath := flag.String("legacy-config", "", "path to a legacy security-parameter JSON file (FieldModulus, SecurityLevel, TraceLength, EvaluationDomain, FRIQueries, HashFunction) to derive the FRI rate, proof-of-work bits, and query rounds from, in place of the standard fast configuration's values")
	flag.Parse()

	field, err := airstark.NewGoldilocksField()
	if err != nil {
		fatal(fmt.Sprintf("failed to construct field: %v", err))
	}
	extField, err := airstark.NewExtField(field, 2, field.NewElementFromInt64(7))
	if err != nil {
		fatal(fmt.Sprintf("failed to construct extension field: %v", err))
	}

	logStderr(fmt.Sprintf("building Fibonacci trace of height %d...", *height))
	columns, publicInputs, err := fib.BuildTrace(field, *height, field.NewElementFromInt64(*x0), field.NewElementFromInt64(*x1))
	if err != nil {
		fatal(fmt.Sprintf("failed to build trace: %v", err))
	}

	air := fib.NewAIR(field, extField, *height)
	claim := airstark.NewClaim(air.Digest()).WithInput(publicInputs)
	config := airstark.StandardFastConfig()

	if *legacyConfigPath != "" {
		legacy, err := loadLegacyConfig(*legacyConfigPath)
		if err != nil {
			fatal(fmt.Sprintf("failed to load legacy config: %v", err))
		}
		config.FriConfig.RateBits = legacy.DeriveRateBits()
		config.FriConfig.ProofOfWorkBits = legacy.DeriveProofOfWorkBits()
		config.FriConfig.NumQueryRounds = legacy.DeriveNumQueryRounds()
		logStderr(fmt.Sprintf("legacy config %q applied: %s", *legacyConfigPath, config.String()))
	}

	logStderr("proving...")
	prover := airstark.NewProver(field, extField, config)
	proveStart := time.Now()
	proof, err := prover.Prove(air, claim, columns)
	provingTime := time.Since(proveStart)
	if err != nil {
		fatal(fmt.Sprintf("proving failed: %v", err))
	}
	logStderr(fmt.Sprintf("proof generated in %s", provingTime))

	logStderr("verifying...")
	verifier := airstark.NewVerifier(field, extField, config)
	verifyStart := time.Now()
	verifyErr := verifier.Verify(air, proof, *height)
	verificationTime := time.Since(verifyStart)
	if verifyErr != nil {
		logStderr(fmt.Sprintf("verification failed: %v", verifyErr))
	} else {
		logStderr(fmt.Sprintf("verified in %s", verificationTime))
	}

	summary := proofSummary{
		Height:             *height,
		PublicInputs:       stringifyInputs(publicInputs),
		TraceCap:           hexCap(proof.Proof.TraceCap),
		QuotientCap:        hexCap(proof.Proof.QuotientCap),
		FRIProofCount:      len(proof.Proof.FRIProofs),
		ProvingTimeMs:      provingTime.Milliseconds(),
		VerificationTimeMs: verificationTime.Milliseconds(),
		Verified:           verifyErr == nil,
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize summary: %v", err))
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))

	if verifyErr != nil {
		os.Exit(1)
	}
}

func stringifyInputs(inputs []*airstark.FieldElement) []string {
	out := make([]string, len(inputs))
	for i, v := range inputs {
		out[i] = v.String()
	}
	return out
}

// loadLegacyConfig reads a legacy utils.Config security-parameter file,
// validates it, and returns it for translation into a stark.StarkConfig via
// its Derive* methods.
func loadLegacyConfig(path string) (*utils.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	config := utils.DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid legacy config: %w", err)
	}
	return config, nil
}

func hexCap(cap core.MerkleCap) string {
	if len(cap.Hashes) == 0 {
		return ""
	}
	return hex.EncodeToString(cap.Hashes[0])
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "airstark-prove:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
