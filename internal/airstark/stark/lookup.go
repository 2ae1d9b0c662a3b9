package stark

import (
	"fmt"

	"github.com/vybium/airstark/internal/airstark/core"
)

// Lookup describes one logarithmic-derivative lookup argument (Haböck):
// a claim that every value in LookedColumn appears in TableColumn, with
// TableColumn's rows weighted by MultiplicityColumn to account for repeats.
// HelperColumn names the auxiliary trace column (appended after an AIR's
// main columns) that carries the running partial sum proving the claim.
//
// The argument reduces a permutation/membership claim to a single sum
// identity over the extension field:
//
//	sum_i 1/(looked_i + gamma)  ==  sum_i multiplicity_i/(table_i + gamma)
//
// for a challenge gamma drawn after the main trace is committed. Pairing
// looked and table rows index-for-index (rather than keeping them as
// independently-sized lists) keeps the helper column a single trace column
// of the same height as everything else, at the cost of requiring the
// table to be padded/repeated to the trace's height -- the grouping
// decision this package makes for every lookup it evaluates.
type Lookup struct {
	Name                string
	LookedColumn        int
	TableColumn         int
	MultiplicityColumn  int
	HelperColumn        int
}

// RangeCheckLookup builds a Lookup proving that every value in valueColumn
// lies in [0, tableSize), by looking it up against a table column that
// enumerates 0..tableSize-1 (see CreateRangeTable).
func RangeCheckLookup(name string, valueColumn, tableColumn, multiplicityColumn, helperColumn int) Lookup {
	return Lookup{
		Name:               name,
		LookedColumn:       valueColumn,
		TableColumn:        tableColumn,
		MultiplicityColumn: multiplicityColumn,
		HelperColumn:       helperColumn,
	}
}

// BitCheckLookup builds a Lookup proving that every value in valueColumn is
// 0 or 1, by looking it up against a two-row table (see CreateBitTable).
func BitCheckLookup(name string, valueColumn, tableColumn, multiplicityColumn, helperColumn int) Lookup {
	return Lookup{
		Name:               name,
		LookedColumn:       valueColumn,
		TableColumn:        tableColumn,
		MultiplicityColumn: multiplicityColumn,
		HelperColumn:       helperColumn,
	}
}

// CreateRangeTable returns a table column enumerating 0..size-1, padded up
// to height by repeating the last entry. It returns no multiplicity column;
// ComputeMultiplicities builds that from the looked column and this table.
func CreateRangeTable(field *core.Field, size, height int) ([]*core.FieldElement, error) {
	if size <= 0 || size > height {
		return nil, fmt.Errorf("range table size %d must be in (0, %d]", size, height)
	}
	table := make([]*core.FieldElement, height)
	for i := 0; i < height; i++ {
		v := i
		if v >= size {
			v = size - 1
		}
		table[i] = field.NewElementFromInt64(int64(v))
	}
	return table, nil
}

// CreateBitTable returns a two-valued {0,1} table column padded up to
// height by repeating 1 (chosen so it never collides with a genuine
// unconstrained padding row's default zero value in typical AIRs; callers
// whose padding value is 1 should pad with 0 instead).
func CreateBitTable(field *core.Field, height int) ([]*core.FieldElement, error) {
	if height < 2 {
		return nil, fmt.Errorf("bit table needs height >= 2, got %d", height)
	}
	table := make([]*core.FieldElement, height)
	table[0] = field.Zero()
	for i := 1; i < height; i++ {
		table[i] = field.One()
	}
	return table, nil
}

// ComputeMultiplicities counts, for each table row, how many looked rows
// equal it -- the multiplicity column the log-derivative identity needs so
// that repeated table entries (e.g. the padded tail of CreateRangeTable)
// are weighted correctly.
func ComputeMultiplicities(field *core.Field, looked, table []*core.FieldElement) ([]*core.FieldElement, error) {
	if len(looked) != len(table) {
		return nil, fmt.Errorf("looked column length %d must match table column length %d", len(looked), len(table))
	}
	counts := make(map[string]int64, len(table))
	for _, v := range looked {
		counts[v.String()]++
	}
	mult := make([]*core.FieldElement, len(table))
	for i, v := range table {
		key := v.String()
		mult[i] = field.NewElementFromInt64(counts[key])
		// Only the first row holding a repeated value carries its count;
		// later repeats get zero so the value is not counted twice.
		counts[key] = 0
	}
	return mult, nil
}

// LookupEngine evaluates the helper column and transition constraints for
// one lookup argument, against a fixed Fiat-Shamir challenge gamma drawn
// after the main trace commitment.
type LookupEngine struct {
	ExtField *core.ExtField
	Gamma    *core.ExtElement
}

// NewLookupEngine builds a lookup engine bound to a specific challenge.
func NewLookupEngine(extField *core.ExtField, gamma *core.ExtElement) *LookupEngine {
	return &LookupEngine{ExtField: extField, Gamma: gamma}
}

// term computes 1/(looked+gamma) - multiplicity/(table+gamma) for one row.
func (le *LookupEngine) term(looked, table, multiplicity *core.FieldElement) (*core.ExtElement, error) {
	lookedExt := le.ExtField.FromBase(looked).Add(le.Gamma)
	tableExt := le.ExtField.FromBase(table).Add(le.Gamma)

	lookedInv, err := lookedExt.Inv()
	if err != nil {
		return nil, fmt.Errorf("looked value + gamma is zero: %w", err)
	}
	tableInv, err := tableExt.Inv()
	if err != nil {
		return nil, fmt.Errorf("table value + gamma is zero: %w", err)
	}

	weighted := tableInv.MulBase(multiplicity)
	return lookedInv.Sub(weighted), nil
}

// ComputeHelperColumn builds the running-sum helper column: helper[0] =
// term[0], helper[i] = helper[i-1] + term[i]. A valid lookup requires
// helper[height-1] == 0.
func (le *LookupEngine) ComputeHelperColumn(looked, table, multiplicity []*core.FieldElement) ([]*core.ExtElement, error) {
	n := len(looked)
	if len(table) != n || len(multiplicity) != n {
		return nil, fmt.Errorf("looked/table/multiplicity columns must share one height, got %d/%d/%d",
			n, len(table), len(multiplicity))
	}

	helper := make([]*core.ExtElement, n)
	running := le.ExtField.Zero()
	for i := 0; i < n; i++ {
		t, err := le.term(looked[i], table[i], multiplicity[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		running = running.Add(t)
		helper[i] = running
	}
	return helper, nil
}

// EvalConstraints folds this lookup's transition recurrence, first-row
// initialization, and last-row closure into consumer. frame must carry the
// looked/table/multiplicity/helper columns by the indices this Lookup was
// constructed with.
func (l Lookup) EvalConstraints(le *LookupEngine, frame *ExtensionFrame, consumer *ExtConstraintConsumer) error {
	curTerm, err := le.term(frame.CurrentRow[l.LookedColumn], frame.CurrentRow[l.TableColumn], frame.CurrentRow[l.MultiplicityColumn])
	if err != nil {
		return fmt.Errorf("lookup %q: %w", l.Name, err)
	}
	nextTerm, err := le.term(frame.NextRow[l.LookedColumn], frame.NextRow[l.TableColumn], frame.NextRow[l.MultiplicityColumn])
	if err != nil {
		return fmt.Errorf("lookup %q: %w", l.Name, err)
	}

	curHelper := frame.CurrentRow[l.HelperColumn]
	nextHelper := frame.NextRow[l.HelperColumn]

	// First row: helper[0] == term[0].
	consumer.ConstraintFirstRow(curHelper.Sub(curTerm))

	// Transition: helper[i+1] - helper[i] - term[i+1] == 0.
	consumer.ConstraintTransition(nextHelper.Sub(curHelper).Sub(nextTerm))

	// Last row: the running sum must close to zero.
	consumer.ConstraintLastRow(curHelper)

	return nil
}
