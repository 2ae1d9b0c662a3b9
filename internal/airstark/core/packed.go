package core

import "fmt"

// Packed is a SIMD-style lane vector of W base-field elements processed
// together through the same arithmetic operation. W=1 is the scalar
// fallback (spec.md §3: "P may equal F").
//
// This generalizes protocols/constraints.go's ParallelEvaluateQuotients,
// which already fans independent column evaluations out across goroutines
// one column at a time; Packed turns that ad hoc fan-out into a lane-width
// abstraction the quotient loop can stride over uniformly, whether the
// underlying hardware lane width is 1 (portable fallback) or wider.
type Packed struct {
	field *Field
	lanes []*FieldElement
}

// Width of a packed lane vector.
func (p *Packed) Width() int { return len(p.lanes) }

// NewPacked builds a packed value from exactly width lanes.
func NewPacked(field *Field, lanes []*FieldElement) *Packed {
	cp := make([]*FieldElement, len(lanes))
	copy(cp, lanes)
	return &Packed{field: field, lanes: cp}
}

// Splat broadcasts a single field element across width lanes.
func Splat(field *Field, width int, value *FieldElement) *Packed {
	lanes := make([]*FieldElement, width)
	for i := range lanes {
		lanes[i] = value
	}
	return &Packed{field: field, lanes: lanes}
}

// PackedZero returns the additive identity lane vector.
func PackedZero(field *Field, width int) *Packed {
	return Splat(field, width, field.Zero())
}

// Lane returns the i-th scalar lane.
func (p *Packed) Lane(i int) *FieldElement { return p.lanes[i] }

// Lanes returns a copy of the underlying lane values.
func (p *Packed) Lanes() []*FieldElement {
	out := make([]*FieldElement, len(p.lanes))
	copy(out, p.lanes)
	return out
}

func (p *Packed) checkWidth(other *Packed) {
	if len(p.lanes) != len(other.lanes) {
		panic(fmt.Sprintf("packed width mismatch: %d vs %d", len(p.lanes), len(other.lanes)))
	}
}

// Add adds lane-wise.
func (p *Packed) Add(other *Packed) *Packed {
	p.checkWidth(other)
	out := make([]*FieldElement, len(p.lanes))
	for i := range out {
		out[i] = p.lanes[i].Add(other.lanes[i])
	}
	return &Packed{field: p.field, lanes: out}
}

// Sub subtracts lane-wise.
func (p *Packed) Sub(other *Packed) *Packed {
	p.checkWidth(other)
	out := make([]*FieldElement, len(p.lanes))
	for i := range out {
		out[i] = p.lanes[i].Sub(other.lanes[i])
	}
	return &Packed{field: p.field, lanes: out}
}

// Mul multiplies lane-wise.
func (p *Packed) Mul(other *Packed) *Packed {
	p.checkWidth(other)
	out := make([]*FieldElement, len(p.lanes))
	for i := range out {
		out[i] = p.lanes[i].Mul(other.lanes[i])
	}
	return &Packed{field: p.field, lanes: out}
}

// MulScalar scales every lane by the same base-field element.
func (p *Packed) MulScalar(c *FieldElement) *Packed {
	out := make([]*FieldElement, len(p.lanes))
	for i := range out {
		out[i] = p.lanes[i].Mul(c)
	}
	return &Packed{field: p.field, lanes: out}
}

// LoadStrided reads width consecutive lane values out of a dense LDE
// column starting at iStart, stepping by step in the LDE's own index
// order. This realizes §6.2's GetLDEValuesPacked contract: a packed row
// read at LDE index i_start, stepping in the LDE order to collect
// P::WIDTH consecutive lane values.
func LoadStrided(field *Field, column []*FieldElement, iStart, step, width int) *Packed {
	lanes := make([]*FieldElement, width)
	n := len(column)
	for i := 0; i < width; i++ {
		idx := (iStart + i*step) % n
		lanes[i] = column[idx]
	}
	return &Packed{field: field, lanes: lanes}
}
