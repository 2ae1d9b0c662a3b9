package stark

import (
	"fmt"
	"sync"

	"github.com/vybium/airstark/internal/airstark/core"
)

// commitColumns builds a Merkle tree over a set of equal-length, already
// low-degree-extended columns, hashing each row (across every column) into
// one leaf. Unlike MasterTable.BuildMerkleTree, this takes codewords that
// are already evaluated over the commitment domain (e.g. quotient chunk
// limbs produced directly by the prover's per-point quotient loop), so no
// interpolate-then-reextend step is needed first.
func commitColumns(field *core.Field, columns [][]*core.FieldElement) (*core.MerkleTree, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("cannot commit zero columns")
	}
	numRows := len(columns[0])
	for i, col := range columns {
		if len(col) != numRows {
			return nil, fmt.Errorf("column %d has length %d, expected %d", i, len(col), numRows)
		}
	}

	leaves := make([][]byte, numRows)
	numCols := len(columns)

	var wg sync.WaitGroup
	errs := make(chan error, numRows)

	batchSize := 1000
	for start := 0; start < numRows; start += batchSize {
		end := start + batchSize
		if end > numRows {
			end = numRows
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			hasher, err := core.NewEnhancedPoseidonHash(field, core.GetDefaultPoseidonParameters(field, 128))
			if err != nil {
				errs <- fmt.Errorf("failed to build row hasher: %w", err)
				return
			}
			row := make([]*core.FieldElement, numCols)
			for r := start; r < end; r++ {
				for c := 0; c < numCols; c++ {
					row[c] = columns[c][r]
				}
				leaf, err := hasher.HashToBytes(row)
				if err != nil {
					errs <- fmt.Errorf("failed to hash row %d: %w", r, err)
					return
				}
				leaves[r] = leaf
			}
		}(start, end)
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	return core.NewMerkleTree(leaves)
}
