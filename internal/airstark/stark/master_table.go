package stark

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/vybium/airstark/internal/airstark/core"
)

// MasterTable combines all trace columns produced by an AIR instance and
// manages low-degree extension and commitment.
//
// Following Triton VM's MasterMainTable, this:
//   - Holds the raw trace columns
//   - Appends trace randomizers for zero-knowledge
//   - Performs low-degree extension onto the FRI domain
//   - Builds a Merkle commitment to the extended trace
type MasterTable struct {
	field *core.Field

	domains        *ProverDomains
	numRandomizers int
	randomnessSeed []byte

	// traceColumns holds one slice per column, each of length
	// domains.RandomizedTrace.Length once addTraceRandomizers has run.
	traceColumns [][]*core.FieldElement

	// extendedColumns holds the LDE of each column onto the FRI domain.
	extendedColumns [][]*core.FieldElement

	merkleTree *core.MerkleTree
}

// NewMasterTable builds a master table from a set of equal-length trace
// columns (column-major, one slice per column) padded to paddedHeight.
func NewMasterTable(
	field *core.Field,
	traceColumns [][]*core.FieldElement,
	domains *ProverDomains,
	numRandomizers int,
	randomnessSeed []byte,
) (*MasterTable, error) {
	if domains == nil {
		return nil, fmt.Errorf("domains cannot be nil")
	}
	if len(traceColumns) == 0 {
		return nil, fmt.Errorf("trace must have at least one column")
	}
	for i, col := range traceColumns {
		if len(col) > domains.Trace.Length {
			return nil, fmt.Errorf("trace column %d has length %d, exceeds trace domain length %d",
				i, len(col), domains.Trace.Length)
		}
	}

	owned := make([][]*core.FieldElement, len(traceColumns))
	for i, col := range traceColumns {
		owned[i] = append([]*core.FieldElement(nil), col...)
	}

	mt := &MasterTable{
		field:          field,
		domains:        domains,
		numRandomizers: numRandomizers,
		randomnessSeed: randomnessSeed,
		traceColumns:   owned,
	}

	if err := mt.padTraceColumns(); err != nil {
		return nil, fmt.Errorf("failed to pad trace columns: %w", err)
	}
	if err := mt.addTraceRandomizers(); err != nil {
		return nil, fmt.Errorf("failed to add trace randomizers: %w", err)
	}

	return mt, nil
}

// padTraceColumns repeats each column's last row up to the trace domain
// length, the standard STARK padding rule (pad by repeating the last row).
// A padding row equals the row before it, so a transition constraint holds
// there only if it accepts two identical consecutive rows.
func (mt *MasterTable) padTraceColumns() error {
	target := mt.domains.Trace.Length
	for col := range mt.traceColumns {
		current := len(mt.traceColumns[col])
		if current == 0 {
			return fmt.Errorf("column %d is empty", col)
		}
		last := mt.traceColumns[col][current-1]
		for i := current; i < target; i++ {
			mt.traceColumns[col] = append(mt.traceColumns[col], last)
		}
	}
	return nil
}

// addTraceRandomizers appends random values to each column for
// zero-knowledge, then pads up to the randomized trace domain length.
func (mt *MasterTable) addTraceRandomizers() error {
	numCols := len(mt.traceColumns)
	targetLen := mt.domains.RandomizedTrace.Length

	rng := newDeterministicRNG(mt.randomnessSeed)

	for col := 0; col < numCols; col++ {
		currentLen := len(mt.traceColumns[col])
		if cap(mt.traceColumns[col]) < targetLen {
			newCol := make([]*core.FieldElement, currentLen, targetLen)
			copy(newCol, mt.traceColumns[col])
			mt.traceColumns[col] = newCol
		}

		for i := 0; i < mt.numRandomizers && len(mt.traceColumns[col]) < targetLen; i++ {
			randomizer := mt.generateRandomElement(rng, col, i)
			mt.traceColumns[col] = append(mt.traceColumns[col], randomizer)
		}

		if paddingNeeded := targetLen - len(mt.traceColumns[col]); paddingNeeded > 0 {
			lastElem := mt.traceColumns[col][len(mt.traceColumns[col])-1]
			for i := 0; i < paddingNeeded; i++ {
				mt.traceColumns[col] = append(mt.traceColumns[col], lastElem)
			}
		}
	}

	return nil
}

// generateRandomElement generates a deterministic random field element.
func (mt *MasterTable) generateRandomElement(rng *deterministicRNG, col, idx int) *core.FieldElement {
	entropy := make([]byte, 16)
	binary.LittleEndian.PutUint64(entropy[0:8], uint64(col))
	binary.LittleEndian.PutUint64(entropy[8:16], uint64(idx))

	combined := append(append([]byte(nil), rng.next()...), entropy...)
	digest := sha256Hash(combined)
	return mt.field.NewElement(new(big.Int).SetBytes(digest))
}

// LowDegreeExtend performs low-degree extension of every trace column onto
// the FRI domain: interpolate to a polynomial over the randomized trace
// domain, then evaluate that polynomial over the (larger) FRI domain. This
// produces the codeword that the FRI protocol commits to and tests.
func (mt *MasterTable) LowDegreeExtend(domains *ProverDomains) error {
	numCols := len(mt.traceColumns)
	friLen := domains.FRI.Length

	mt.extendedColumns = make([][]*core.FieldElement, numCols)

	var wg sync.WaitGroup
	errs := make(chan error, numCols)

	for col := 0; col < numCols; col++ {
		wg.Add(1)
		go func(colIdx int) {
			defer wg.Done()

			poly, err := mt.interpolateColumn(colIdx)
			if err != nil {
				errs <- fmt.Errorf("failed to interpolate column %d: %w", colIdx, err)
				return
			}

			extended, err := domains.FRI.Evaluate(poly)
			if err != nil {
				errs <- fmt.Errorf("failed to extend column %d: %w", colIdx, err)
				return
			}
			if len(extended) != friLen {
				errs <- fmt.Errorf("column %d: expected %d values, got %d", colIdx, friLen, len(extended))
				return
			}

			mt.extendedColumns[colIdx] = extended
		}(col)
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return err
	}

	return nil
}

// interpolateColumn interpolates a column (over the randomized trace
// domain) back to its coefficient-form polynomial, via an inverse NTT since
// the randomized trace domain is an offset-free power-of-two subgroup.
func (mt *MasterTable) interpolateColumn(colIdx int) (*core.Polynomial, error) {
	column := mt.traceColumns[colIdx]
	domain := mt.domains.RandomizedTrace

	if len(column) != domain.Length {
		return nil, fmt.Errorf("column length %d doesn't match domain length %d", len(column), domain.Length)
	}

	coeffs, err := core.IFFT(column, domain.Generator, mt.field)
	if err != nil {
		return nil, fmt.Errorf("inverse NTT failed: %w", err)
	}
	return core.NewPolynomial(coeffs)
}

// BuildMerkleTree creates a Merkle commitment to the extended trace,
// hashing each row (across all columns) to form one leaf per FRI-domain
// point.
func (mt *MasterTable) BuildMerkleTree() (*core.MerkleTree, error) {
	if len(mt.extendedColumns) == 0 {
		return nil, fmt.Errorf("must call LowDegreeExtend before BuildMerkleTree")
	}

	numRows := len(mt.extendedColumns[0])
	numCols := len(mt.extendedColumns)

	leaves := make([][]byte, numRows)

	var wg sync.WaitGroup
	errs := make(chan error, numRows)

	batchSize := 1000
	for startRow := 0; startRow < numRows; startRow += batchSize {
		endRow := startRow + batchSize
		if endRow > numRows {
			endRow = numRows
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			rowValues := make([]*core.FieldElement, numCols)
			for row := start; row < end; row++ {
				for col := 0; col < numCols; col++ {
					rowValues[col] = mt.extendedColumns[col][row]
				}
				rowHash, err := mt.hashRow(rowValues)
				if err != nil {
					errs <- fmt.Errorf("failed to hash row %d: %w", row, err)
					return
				}
				leaves[row] = rowHash
			}
		}(startRow, endRow)
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	tree, err := core.NewMerkleTree(leaves)
	if err != nil {
		return nil, fmt.Errorf("failed to create Merkle tree: %w", err)
	}

	mt.merkleTree = tree
	return tree, nil
}

// hashRow hashes a row of field elements using the Poseidon sponge.
func (mt *MasterTable) hashRow(rowValues []*core.FieldElement) ([]byte, error) {
	hasher, err := core.NewEnhancedPoseidonHash(mt.field, core.GetDefaultPoseidonParameters(mt.field, 128))
	if err != nil {
		return nil, err
	}
	return hasher.HashToBytes(rowValues)
}

// EvaluateAtExtPoint evaluates all trace columns, whose row values live in
// the base field, at a single point of the degree-D extension field. Used
// for out-of-domain openings at the verifier's challenge point zeta and at
// zeta*generator, both of which lie in the extension field even though
// every committed column does not.
//
// This evaluates directly from each column's domain samples via
// core.BarycentricEvaluateExt rather than interpolating a coefficient-form
// polynomial first: every opening this method ever produces is used at
// exactly one point, so the inverse NTT LowDegreeExtend and
// chunkQuotientColumns need for re-extension would be wasted work here.
func (mt *MasterTable) EvaluateAtExtPoint(point *core.ExtElement, extField *core.ExtField) ([]*core.ExtElement, error) {
	numCols := len(mt.traceColumns)
	values := make([]*core.ExtElement, numCols)

	domain := mt.domains.RandomizedTrace
	domainElements := domain.Elements()

	var wg sync.WaitGroup
	errs := make(chan error, numCols)

	for col := 0; col < numCols; col++ {
		wg.Add(1)
		go func(colIdx int) {
			defer wg.Done()

			column := mt.traceColumns[colIdx]
			if len(column) != len(domainElements) {
				errs <- fmt.Errorf("column %d length %d doesn't match domain length %d", colIdx, len(column), len(domainElements))
				return
			}

			points := make([]core.Point, len(column))
			for i, y := range column {
				points[i] = core.Point{X: domainElements[i], Y: y}
			}

			value, err := core.BarycentricEvaluateExt(points, mt.field, point, extField)
			if err != nil {
				errs <- fmt.Errorf("failed to evaluate column %d: %w", colIdx, err)
				return
			}
			values[colIdx] = value
		}(col)
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	return values, nil
}

// GetExtendedColumn returns an extended column by index (for testing).
func (mt *MasterTable) GetExtendedColumn(colIdx int) ([]*core.FieldElement, error) {
	if colIdx < 0 || colIdx >= len(mt.extendedColumns) {
		return nil, fmt.Errorf("column index %d out of range [0, %d)", colIdx, len(mt.extendedColumns))
	}
	return mt.extendedColumns[colIdx], nil
}

// NumColumns returns the total number of columns.
func (mt *MasterTable) NumColumns() int {
	return len(mt.traceColumns)
}

// NumExtendedRows returns the number of rows in the extended table.
func (mt *MasterTable) NumExtendedRows() int {
	if len(mt.extendedColumns) == 0 {
		return 0
	}
	return len(mt.extendedColumns[0])
}

// deterministicRNG is a simple deterministic random byte generator, seeded
// once and rehashed periodically to avoid unbounded state growth.
type deterministicRNG struct {
	state []byte
	index int
}

func newDeterministicRNG(seed []byte) *deterministicRNG {
	state := sha256Hash(seed)
	return &deterministicRNG{state: state, index: 0}
}

func (rng *deterministicRNG) next() []byte {
	result := sha256Hash(append(append([]byte(nil), rng.state...), byte(rng.index)))
	rng.index++

	if rng.index%100 == 0 {
		rng.state = sha256Hash(rng.state)
		rng.index = 0
	}

	return result
}

func sha256Hash(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}
