package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testLeaves(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = []byte{byte(i), byte(i >> 8)}
	}
	return leaves
}

func TestMerkleTreeProofVerifiesForEveryLeaf(t *testing.T) {
	leaves := testLeaves(13) // odd count exercises the duplicate-last-node path
	tree, err := NewMerkleTree(leaves)
	require.NoError(t, err)

	root := tree.Root()
	for i, leaf := range leaves {
		proof, err := tree.Proof(i)
		require.NoError(t, err)
		require.True(t, VerifyProof(root, leaf, proof, i), "proof for leaf %d should verify", i)
	}
}

func TestMerkleTreeProofRejectsTamperedLeaf(t *testing.T) {
	leaves := testLeaves(8)
	tree, err := NewMerkleTree(leaves)
	require.NoError(t, err)

	proof, err := tree.Proof(2)
	require.NoError(t, err)

	tampered := []byte{0xFF, 0xFF, 0xFF}
	require.False(t, VerifyProof(tree.Root(), tampered, proof, 2))
}

func TestMerkleTreeRejectsOutOfRangeIndex(t *testing.T) {
	tree, err := NewMerkleTree(testLeaves(4))
	require.NoError(t, err)

	_, err = tree.Proof(-1)
	require.Error(t, err)
	_, err = tree.Proof(4)
	require.Error(t, err)
}

func TestNewMerkleTreeRejectsEmptyData(t *testing.T) {
	_, err := NewMerkleTree(nil)
	require.Error(t, err)
}

func TestMerkleCapDegeneratesToRootAtHeightZero(t *testing.T) {
	tree, err := NewMerkleTree(testLeaves(16))
	require.NoError(t, err)

	cap, err := tree.Cap(0)
	require.NoError(t, err)
	require.Len(t, cap.Hashes, 1)
	require.Equal(t, tree.Root(), cap.Hashes[0])
}

func TestMerkleCapHeightMatchesPowerOfTwoHashCount(t *testing.T) {
	tree, err := NewMerkleTree(testLeaves(16))
	require.NoError(t, err)

	cap, err := tree.Cap(2)
	require.NoError(t, err)
	require.Len(t, cap.Hashes, 4) // 2^2

	flattened := cap.Flatten()
	require.Len(t, flattened, 4*len(cap.Hashes[0]))
}

func TestMerkleCapRejectsHeightExceedingTreeDepth(t *testing.T) {
	tree, err := NewMerkleTree(testLeaves(4))
	require.NoError(t, err)

	_, err = tree.Cap(100)
	require.Error(t, err)
}

func TestMerkleRootConvenienceFunctionMatchesTreeRoot(t *testing.T) {
	leaves := testLeaves(5)
	tree, err := NewMerkleTree(leaves)
	require.NoError(t, err)

	root, err := MerkleRoot(leaves)
	require.NoError(t, err)
	require.Equal(t, tree.Root(), root)
}
