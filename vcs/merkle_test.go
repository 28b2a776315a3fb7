// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vcs

import (
	"testing"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/wire"
	"github.com/stretchr/testify/require"
)

// testTree is a simple single-column tree built by buildTestTree over
// len(leaves) values (log2), one M31 value per leaf, with root() for the
// root hash and decommit() for a full decommitment of an arbitrary query set.
type testTree struct {
	logSize uint32
	leaves  []field.M31
	nodes   map[uint32]map[uint64]channel.Hash // level -> index -> hash (level logSize = leaves, level 0 = root)
}

func buildTestTree(leaves []field.M31) *testTree {
	n := len(leaves)
	logSize := uint32(0)
	for (1 << logSize) < n {
		logSize++
	}
	tt := &testTree{logSize: logSize, leaves: leaves, nodes: map[uint32]map[uint64]channel.Hash{}}
	level := map[uint64]channel.Hash{}
	for i, v := range leaves {
		level[uint64(i)] = hashLeaf([]field.M31{v})
	}
	tt.nodes[logSize] = level
	for l := logSize; l > 0; l-- {
		cur := tt.nodes[l]
		next := map[uint64]channel.Hash{}
		size := uint64(1) << l
		for idx := uint64(0); idx < size; idx += 2 {
			next[idx/2] = hashNode(cur[idx], cur[idx+1], nil)
		}
		tt.nodes[l-1] = next
	}
	return tt
}

func (tt *testTree) root() channel.Hash {
	return tt.nodes[0][0]
}

// decommit produces queriedValues + MerkleDecommitment for a sorted, deduped
// set of leaf-level queries, following the same top-down node-rebuild rule
// the verifier uses.
func (tt *testTree) decommit(queries []uint64) ([]field.M31, wire.MerkleDecommitment) {
	var queriedValues []field.M31
	var hashWitness []channel.Hash
	var colWitness []field.M31

	var prevQueries []uint64        // nodes rebuilt at the level below
	haveHash := map[uint64]bool{} // same set, for child lookups

	for l := tt.logSize; ; l-- {
		var queriesHere []uint64
		if l == tt.logSize {
			queriesHere = queries
		}
		needed := map[uint64]bool{}
		for _, q := range queriesHere {
			needed[q] = true
		}
		for _, q := range prevQueries {
			needed[q/2] = true
		}
		var nodeIdxs []uint64
		for idx := range needed {
			nodeIdxs = append(nodeIdxs, idx)
		}
		sortUint64(nodeIdxs)

		isQueried := map[uint64]bool{}
		for _, q := range queriesHere {
			isQueried[q] = true
		}

		for _, idx := range nodeIdxs {
			if l == tt.logSize {
				if isQueried[idx] {
					queriedValues = append(queriedValues, tt.leaves[idx])
				} else {
					colWitness = append(colWitness, tt.leaves[idx])
				}
			} else {
				leftIdx, rightIdx := idx*2, idx*2+1
				if !haveHash[leftIdx] {
					hashWitness = append(hashWitness, tt.nodes[l+1][leftIdx])
				}
				if !haveHash[rightIdx] {
					hashWitness = append(hashWitness, tt.nodes[l+1][rightIdx])
				}
			}
		}
		haveHash = needed
		prevQueries = nodeIdxs
		if l == 0 {
			break
		}
	}

	return queriedValues, wire.MerkleDecommitment{HashWitness: hashWitness, ColumnWitness: colWitness}
}

func sortUint64(s []uint64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func TestMerkleVerifyAccepts(t *testing.T) {
	leaves := make([]field.M31, 8)
	for i := range leaves {
		leaves[i] = field.NewM31(uint32(i + 1))
	}
	tt := buildTestTree(leaves)
	queries := []uint64{1, 5}
	queriedValues, decommitment := tt.decommit(queries)

	mv := NewMerkleVerifier(tt.root(), []uint32{3})
	mv.NColsPerLogSize[3] = 1

	err := mv.Verify(map[uint32][]uint64{3: queries}, queriedValues, decommitment)
	require.NoError(t, err)
}

func TestMerkleVerifyRejectsTamperedValue(t *testing.T) {
	leaves := make([]field.M31, 8)
	for i := range leaves {
		leaves[i] = field.NewM31(uint32(i + 1))
	}
	tt := buildTestTree(leaves)
	queries := []uint64{2}
	queriedValues, decommitment := tt.decommit(queries)
	queriedValues[0] = queriedValues[0].Add(field.One())

	mv := NewMerkleVerifier(tt.root(), []uint32{3})
	mv.NColsPerLogSize[3] = 1

	err := mv.Verify(map[uint32][]uint64{3: queries}, queriedValues, decommitment)
	require.Error(t, err)
}

func TestMerkleVerifyRejectsTamperedWitness(t *testing.T) {
	leaves := make([]field.M31, 8)
	for i := range leaves {
		leaves[i] = field.NewM31(uint32(i + 1))
	}
	tt := buildTestTree(leaves)
	queries := []uint64{0}
	queriedValues, decommitment := tt.decommit(queries)
	if len(decommitment.HashWitness) > 0 {
		decommitment.HashWitness[0][0] ^= 0xFF
	}

	mv := NewMerkleVerifier(tt.root(), []uint32{3})
	mv.NColsPerLogSize[3] = 1

	err := mv.Verify(map[uint32][]uint64{3: queries}, queriedValues, decommitment)
	require.Error(t, err)
}

func TestMerkleEmptyTree(t *testing.T) {
	empty := channel.HashBytes(nil)
	mv := NewMerkleVerifier(empty, nil)
	err := mv.Verify(nil, nil, wire.MerkleDecommitment{})
	require.NoError(t, err)
}
