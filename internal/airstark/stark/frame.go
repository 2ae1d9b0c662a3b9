package stark

import "github.com/vybium/airstark/internal/airstark/core"

// EvaluationFrame is a window of two adjacent packed rows of the trace:
// the current row and the next row, in FRI-domain index order. Transition
// constraints read both; boundary constraints (first/last row) read only
// CurrentRow and rely on the prover/verifier's Lagrange selectors to zero
// themselves out everywhere else.
type EvaluationFrame struct {
	CurrentRow []*core.Packed
	NextRow    []*core.Packed
}

// NewEvaluationFrame builds a frame from the two row slices; both must have
// the same length (one entry per AIR column) and lane width.
func NewEvaluationFrame(current, next []*core.Packed) *EvaluationFrame {
	return &EvaluationFrame{CurrentRow: current, NextRow: next}
}

// Width returns the packed lane width shared by every column in the frame.
func (f *EvaluationFrame) Width() int {
	if len(f.CurrentRow) == 0 {
		return 0
	}
	return f.CurrentRow[0].Width()
}

// ExtensionFrame is the out-of-domain analogue of EvaluationFrame: a single
// pair of rows (at zeta and zeta*generator) evaluated over the extension
// field instead of packed over the base field.
type ExtensionFrame struct {
	CurrentRow []*core.ExtElement
	NextRow    []*core.ExtElement
}

// NewExtensionFrame builds an out-of-domain frame from two row slices.
func NewExtensionFrame(current, next []*core.ExtElement) *ExtensionFrame {
	return &ExtensionFrame{CurrentRow: current, NextRow: next}
}
