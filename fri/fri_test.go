// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fri

import (
	"testing"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/field"
	"github.com/stretchr/testify/require"
)

func TestQueriesFoldSortedUnique(t *testing.T) {
	q := Queries{LogDomainSize: 4, Positions: []uint64{1, 2, 3, 9, 10}}
	folded := q.Fold(1)
	require.Equal(t, uint32(3), folded.LogDomainSize)
	for i := 1; i < len(folded.Positions); i++ {
		require.Less(t, folded.Positions[i-1], folded.Positions[i])
	}
}

func TestGenerateQueriesDeterministic(t *testing.T) {
	c1 := channel.New()
	c1.MixU64(5)
	c2 := channel.New()
	c2.MixU64(5)

	q1 := GenerateQueries(c1, 4, 6)
	q2 := GenerateQueries(c2, 4, 6)
	require.Equal(t, q1, q2)
}

func TestReconstructSparseGroupsPairs(t *testing.T) {
	queries := []uint64{1, 4}
	queryEvals := []field.QM31{field.QM31One(), field.QM31One().Double()}
	witnessEvals := []field.QM31{field.QM31Zero(), field.QM31Zero()}

	positions, sparse, err := ReconstructSparse(queries, queryEvals, witnessEvals, 1, 4)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 4, 5}, positions)
	require.Len(t, sparse.SubsetEvals, 2)
	require.Equal(t, queryEvals[0], sparse.SubsetEvals[0][1])
	require.Equal(t, queryEvals[1], sparse.SubsetEvals[1][0])
}

func TestReconstructSparseInsufficientWitness(t *testing.T) {
	queries := []uint64{1}
	queryEvals := []field.QM31{field.QM31One()}
	_, _, err := ReconstructSparse(queries, queryEvals, nil, 1, 4)
	require.Error(t, err)
}
