// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fri

import (
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/verrors"
)

// SparseEvaluation groups of 2^FoldStep evaluations (one group per distinct
// subset start), plus the bit-reversed domain initial index of each group.
type SparseEvaluation struct {
	SubsetEvals                [][]field.QM31
	SubsetDomainInitialIndexes []uint64
}

// Flatten concatenates the groups in order, matching the positions returned
// by ReconstructSparse. Only the queried subsets are present, so the result
// is not a full-domain evaluation.
func (s SparseEvaluation) Flatten() []field.QM31 {
	out := make([]field.QM31, 0, len(s.SubsetEvals)*(1<<FoldStep))
	for _, group := range s.SubsetEvals {
		out = append(out, group...)
	}
	return out
}

// ReconstructSparse rebuilds, for every query in `queries` (sorted,
// deduped), the full 2^foldStep-sized subset of evaluations it belongs to.
// Positions directly present in `queries` consume the next element of
// queryEvals (in query order); every other position in the subset consumes
// the next element of witnessEvals. Returns the flat list of positions
// touched (for Merkle verification) and the grouped SparseEvaluation.
func ReconstructSparse(
	queries []uint64,
	queryEvals []field.QM31,
	witnessEvals []field.QM31,
	foldStep uint32,
	logDomainSize uint32,
) ([]uint64, SparseEvaluation, error) {
	groupSize := uint64(1) << foldStep
	isQueried := make(map[uint64]bool, len(queries))
	for _, q := range queries {
		isQueried[q] = true
	}

	var positions []uint64
	var subsets [][]field.QM31
	var starts []uint64

	qi, wi := 0, 0
	seenStart := map[uint64]bool{}
	for _, q := range queries {
		start := (q >> foldStep) << foldStep
		if seenStart[start] {
			continue
		}
		seenStart[start] = true

		group := make([]field.QM31, 0, groupSize)
		for p := start; p < start+groupSize; p++ {
			positions = append(positions, p)
			if isQueried[p] {
				if qi >= len(queryEvals) {
					return nil, SparseEvaluation{}, verrors.New(verrors.FriInsufficientWitness, "query evaluations exhausted")
				}
				group = append(group, queryEvals[qi])
				qi++
			} else {
				if wi >= len(witnessEvals) {
					return nil, SparseEvaluation{}, verrors.New(verrors.FriInsufficientWitness, "fri witness exhausted")
				}
				group = append(group, witnessEvals[wi])
				wi++
			}
		}
		subsets = append(subsets, group)
		starts = append(starts, circle.BitReverseIndex(start, logDomainSize))
	}

	if qi != len(queryEvals) {
		return nil, SparseEvaluation{}, verrors.New(verrors.FriInsufficientWitness, "excess query evaluations")
	}
	if wi != len(witnessEvals) {
		return nil, SparseEvaluation{}, verrors.New(verrors.FriInsufficientWitness, "excess fri witness")
	}

	return positions, SparseEvaluation{SubsetEvals: subsets, SubsetDomainInitialIndexes: starts}, nil
}
