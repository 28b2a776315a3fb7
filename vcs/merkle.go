// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vcs implements the Mixed Matrix Commitment Scheme (MMCS) Merkle
// verifier: a Blake2s tree committing to multiple columns of potentially
// different log sizes.
package vcs

import (
	"encoding/binary"
	"sort"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/verrors"
	"github.com/luxfi/circlestark/wire"
)

// MerkleVerifier holds the committed root and, per column log size, the
// number of columns committed at that level.
type MerkleVerifier struct {
	Root            channel.Hash
	ColumnLogSizes  []uint32 // distinct, descending
	NColsPerLogSize map[uint32]int

	// PerColumnLogSizes is the verbatim, one-entry-per-column log size list
	// this tree was committed with, in column order. Unlike ColumnLogSizes
	// (deduped, used for the level-by-level Merkle walk) this preserves
	// per-column identity, letting callers map a column index back to its
	// log size.
	PerColumnLogSizes []uint32
}

// NewMerkleVerifier builds a verifier from the root commitment and the
// column log sizes present in the tree (one entry per column; duplicates
// are expected when multiple columns share a log size).
func NewMerkleVerifier(root channel.Hash, columnLogSizes []uint32) *MerkleVerifier {
	nCols := make(map[uint32]int)
	maxSeen := map[uint32]bool{}
	var sizes []uint32
	for _, s := range columnLogSizes {
		nCols[s]++
		if !maxSeen[s] {
			maxSeen[s] = true
			sizes = append(sizes, s)
		}
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })
	return &MerkleVerifier{
		Root:              root,
		ColumnLogSizes:    sizes,
		NColsPerLogSize:   nCols,
		PerColumnLogSizes: append([]uint32(nil), columnLogSizes...),
	}
}

// hashLeaf hashes a leaf's column values: H(col_values), M31-encoded.
func hashLeaf(values []field.M31) channel.Hash {
	buf := encodeM31s(values)
	return channel.HashBytes(buf)
}

// hashNode hashes an internal node: H(left || right || col_values_at_level).
func hashNode(left, right channel.Hash, values []field.M31) channel.Hash {
	buf := encodeM31s(values)
	return channel.HashBytes(left[:], right[:], buf)
}

func encodeM31s(values []field.M31) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], v.Uint32())
	}
	return buf
}

// Verify checks a decommitment against the committed root.
//
// queriesPerLogSize maps each column log size present in this tree to the
// sorted list of leaf indices queried at that level. queriedValues is the
// column values at those query indices, concatenated in tree-traversal
// order (all columns at a query index, then the next query index), ordered
// by descending log size. decommitment carries the sibling hashes and
// column values for nodes the verifier needs but did not query.
func (v *MerkleVerifier) Verify(
	queriesPerLogSize map[uint32][]uint64,
	queriedValues []field.M31,
	decommitment wire.MerkleDecommitment,
) error {
	if len(v.ColumnLogSizes) == 0 {
		empty := channel.HashBytes(nil)
		if v.Root != empty {
			return verrors.New(verrors.Merkle, "empty tree root mismatch")
		}
		if len(queriedValues) != 0 || len(decommitment.HashWitness) != 0 || len(decommitment.ColumnWitness) != 0 {
			return verrors.New(verrors.Merkle, "empty tree has non-empty witness")
		}
		return nil
	}

	maxLogSize := v.ColumnLogSizes[0]

	hashWitness := decommitment.HashWitness
	hwIdx := 0
	colWitness := decommitment.ColumnWitness
	cwIdx := 0
	qvIdx := 0

	// layerNodes maps node index -> computed hash, for the level currently
	// being consumed by the level above.
	layerNodes := map[uint64]channel.Hash{}
	var prevQueries []uint64 // queries at the level above the current one

	nextHashWitness := func() (channel.Hash, bool) {
		if hwIdx >= len(hashWitness) {
			return channel.Hash{}, false
		}
		h := hashWitness[hwIdx]
		hwIdx++
		return h, true
	}
	nextColWitness := func(n int) ([]field.M31, bool) {
		if cwIdx+n > len(colWitness) {
			return nil, false
		}
		vals := colWitness[cwIdx : cwIdx+n]
		cwIdx += n
		return vals, true
	}
	nextQueriedValues := func(n int) ([]field.M31, bool) {
		if qvIdx+n > len(queriedValues) {
			return nil, false
		}
		vals := queriedValues[qvIdx : qvIdx+n]
		qvIdx += n
		return vals, true
	}

	for logSize := maxLogSize; ; logSize-- {
		queriesHere := queriesPerLogSize[logSize]

		// Nodes to rebuild this level: union of queries directly at this
		// level and (query/2) for every query at the level above.
		needed := map[uint64]bool{}
		for _, q := range queriesHere {
			needed[q] = true
		}
		for _, q := range prevQueries {
			needed[q/2] = true
		}
		nodeIdxs := make([]uint64, 0, len(needed))
		for idx := range needed {
			nodeIdxs = append(nodeIdxs, idx)
		}
		sort.Slice(nodeIdxs, func(i, j int) bool { return nodeIdxs[i] < nodeIdxs[j] })

		nCols, hasCols := v.NColsPerLogSize[logSize]
		if !hasCols {
			nCols = 0
		}

		isQueried := map[uint64]bool{}
		for _, q := range queriesHere {
			isQueried[q] = true
		}

		newLayer := make(map[uint64]channel.Hash, len(nodeIdxs))
		for _, idx := range nodeIdxs {
			var values []field.M31
			if isQueried[idx] && nCols > 0 {
				vals, ok := nextQueriedValues(nCols)
				if !ok {
					return verrors.New(verrors.Merkle, "insufficient queried values at log size %d", logSize)
				}
				values = vals
			} else if nCols > 0 {
				vals, ok := nextColWitness(nCols)
				if !ok {
					return verrors.New(verrors.Merkle, "insufficient column witness at log size %d", logSize)
				}
				values = vals
			}

			if logSize == maxLogSize {
				newLayer[idx] = hashLeaf(values)
				continue
			}

			leftIdx, rightIdx := idx*2, idx*2+1
			left, lok := layerNodes[leftIdx]
			if !lok {
				h, ok := nextHashWitness()
				if !ok {
					return verrors.New(verrors.Merkle, "insufficient hash witness at log size %d", logSize)
				}
				left = h
			}
			right, rok := layerNodes[rightIdx]
			if !rok {
				h, ok := nextHashWitness()
				if !ok {
					return verrors.New(verrors.Merkle, "insufficient hash witness at log size %d", logSize)
				}
				right = h
			}
			newLayer[idx] = hashNode(left, right, values)
		}

		layerNodes = newLayer
		prevQueries = nodeIdxs

		if logSize == 0 {
			break
		}
	}

	root, ok := layerNodes[0]
	if !ok {
		return verrors.New(verrors.Merkle, "root node not reconstructed")
	}
	if root != v.Root {
		return verrors.New(verrors.Merkle, "root mismatch")
	}
	if hwIdx != len(hashWitness) {
		return verrors.New(verrors.Merkle, "excess hash witness")
	}
	if cwIdx != len(colWitness) {
		return verrors.New(verrors.Merkle, "excess column witness")
	}
	if qvIdx != len(queriedValues) {
		return verrors.New(verrors.Merkle, "excess queried values")
	}
	return nil
}

// ExtractRows re-derives, for every queried (log size, position) pair, the
// slice of column values the tree committed there. queriedValues must be
// the same slice already accepted by Verify: per level (descending log
// size), per query position (sorted ascending), nCols values.
func (v *MerkleVerifier) ExtractRows(queriesPerLogSize map[uint32][]uint64, queriedValues []field.M31) map[uint32]map[uint64][]field.M31 {
	out := make(map[uint32]map[uint64][]field.M31)
	qvIdx := 0
	for _, logSize := range v.ColumnLogSizes {
		queries := append([]uint64(nil), queriesPerLogSize[logSize]...)
		sort.Slice(queries, func(i, j int) bool { return queries[i] < queries[j] })
		nCols := v.NColsPerLogSize[logSize]
		rows := make(map[uint64][]field.M31, len(queries))
		for _, q := range queries {
			rows[q] = queriedValues[qvIdx : qvIdx+nCols]
			qvIdx += nCols
		}
		out[logSize] = rows
	}
	return out
}
