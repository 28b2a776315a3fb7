// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fri implements the FRI (Fast Reed-Solomon IOP) low-degree test:
// commit-phase alpha drawing, query sampling, and layer-by-layer
// decommitment with line and circle-to-line folding.
package fri

import (
	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/vcs"
	"github.com/luxfi/circlestark/verrors"
	"github.com/luxfi/circlestark/wire"
)

// Verifier carries the FRI commit-phase state needed by Decommit: the
// degree bounds, their commitment domains, the drawn folding coefficients,
// and the proof itself.
type Verifier struct {
	config  wire.FriConfig
	proof   wire.FriProof
	bounds  []uint32 // log_degree_bound per committed group, descending
	domains []circle.CircleDomain
	alphas  []field.QM31 // len(InnerLayers)+1

	queries                 Queries
	foldedQueriesPerLogSize map[uint32]Queries
}

// Commit runs the FRI commit phase: validates the degree bounds, mixes the
// first-layer and every inner-layer commitment into the channel (drawing a
// folding alpha after each), then mixes the last-layer polynomial.
func Commit(ch *channel.Channel, config wire.FriConfig, proof wire.FriProof, boundsDescending []uint32) (*Verifier, error) {
	if len(boundsDescending) == 0 {
		return nil, verrors.New(verrors.InvalidStructure, "fri degree bounds must be non-empty")
	}
	for i := 1; i < len(boundsDescending); i++ {
		if boundsDescending[i] > boundsDescending[i-1] {
			return nil, verrors.New(verrors.InvalidStructure, "fri degree bounds must be sorted descending")
		}
	}

	domains := make([]circle.CircleDomain, len(boundsDescending))
	for i, bound := range boundsDescending {
		domains[i] = circle.NewCanonicCoset(bound + config.LogBlowupFactor).CircleDomain()
	}

	ch.MixRoot(proof.FirstLayer.Commitment)
	alphas := make([]field.QM31, 0, len(proof.InnerLayers)+1)
	alphas = append(alphas, ch.DrawFelt())

	for _, layer := range proof.InnerLayers {
		ch.MixRoot(layer.Commitment)
		alphas = append(alphas, ch.DrawFelt())
	}

	ch.MixFelts(proof.LastLayerPoly.Coeffs)

	return &Verifier{
		config:  config,
		proof:   proof,
		bounds:  boundsDescending,
		domains: domains,
		alphas:  alphas,
	}, nil
}

// SampleQueryPositions samples config.NQueries uniform distinct positions
// on the maximal commitment domain, then folds them down to every column
// log size the caller will need evaluations at.
func (v *Verifier) SampleQueryPositions(ch *channel.Channel, columnLogSizes []uint32) Queries {
	maxLogSize := v.domains[0].LogSize()
	queries := GenerateQueries(ch, v.config.NQueries, maxLogSize)
	v.queries = queries

	v.foldedQueriesPerLogSize = make(map[uint32]Queries, len(columnLogSizes))
	for _, logSize := range columnLogSizes {
		v.foldedQueriesPerLogSize[logSize] = queries.Fold(maxLogSize - logSize)
	}
	return queries
}

// QueriesAt returns the query positions folded down to the given column
// log size, computed by a prior call to SampleQueryPositions.
func (v *Verifier) QueriesAt(logSize uint32) (Queries, bool) {
	q, ok := v.foldedQueriesPerLogSize[logSize]
	return q, ok
}

// Decommit verifies the full FRI layer chain against externally supplied
// "fri input evaluations" (the DEEP-ALI quotient values from the quotients
// package) keyed by the log size of the domain they were sampled on.
func (v *Verifier) Decommit(friInputEvaluations map[uint32][]field.QM31) error {
	if v.queries.Positions == nil {
		return verrors.New(verrors.FriQueriesNotSampled, "query positions not sampled before decommit")
	}
	if len(v.proof.InnerLayers)+1 != len(v.alphas) {
		return verrors.New(verrors.FriInvalidNumLayers, "alpha count does not match layer count")
	}

	maxLogSize := v.domains[0].LogSize()
	currentQueries := v.queries
	currentValues, ok := friInputEvaluations[maxLogSize]
	if !ok {
		return verrors.New(verrors.InvalidStructure, "missing fri input evaluations for log size %d", maxLogSize)
	}

	bound := int(v.bounds[0])

	// First layer: circle-to-line fold.
	positions, sparse, err := ReconstructSparse(currentQueries.Positions, currentValues, v.proof.FirstLayer.FriWitness, CircleToLineFoldStep, maxLogSize)
	if err != nil {
		return err
	}
	if err := verifyLayerMerkle(v.proof.FirstLayer.Commitment, maxLogSize, positions, sparse, v.proof.FirstLayer.Decommitment); err != nil {
		return err
	}
	var folded []field.QM31
	for k, group := range sparse.SubsetEvals {
		subDomain := circle.NewCircleDomain(circle.NewCoset(v.domains[0].Coset.IndexAt(sparse.SubsetDomainInitialIndexes[k]), CircleToLineFoldStep))
		folded = append(folded, FoldCircleIntoLine(group, subDomain, v.alphas[0])...)
	}
	currentQueries = currentQueries.Fold(CircleToLineFoldStep)
	currentDomain := circle.NewLineDomain(v.domains[0].Coset).Double()
	currentValues = folded
	bound--

	// Inner layers: pure line folds.
	for i, layer := range v.proof.InnerLayers {
		if bound < 0 {
			return verrors.New(verrors.FriLastLayerDegreeInvalid, "fri degree bound went negative at inner layer %d", i)
		}
		logSize := currentDomain.LogSize()

		pos, sp, err := ReconstructSparse(currentQueries.Positions, currentValues, layer.FriWitness, FoldStep, logSize)
		if err != nil {
			return err
		}
		if err := verifyLayerMerkle(layer.Commitment, logSize, pos, sp, layer.Decommitment); err != nil {
			return verrors.New(verrors.FriInnerLayerEvaluationsInvalid, "inner layer %d: %v", i, err)
		}

		var foldedInner []field.QM31
		for k, group := range sp.SubsetEvals {
			subDomain := circle.NewLineDomain(circle.NewCoset(currentDomain.Coset.IndexAt(sp.SubsetDomainInitialIndexes[k]), FoldStep))
			foldedInner = append(foldedInner, FoldLine(group, subDomain, v.alphas[i+1])...)
		}
		currentValues = foldedInner
		currentQueries = currentQueries.Fold(FoldStep)
		currentDomain = currentDomain.Double()
		bound--
	}

	// Last layer: check folded evaluations against the sent polynomial.
	lastLogSize := v.config.LogLastLayerDegreeBound + v.config.LogBlowupFactor
	lastDomain := circle.NewLineDomain(circle.HalfOdds(lastLogSize))
	for j, q := range currentQueries.Positions {
		idx := circle.BitReverseIndex(q, lastLogSize)
		x := lastDomain.At(idx)
		xq := field.QM31{X: field.CM31{A: x}}
		expected := v.proof.LastLayerPoly.EvalAtPoint(xq)
		if !currentValues[j].Equal(expected) {
			return verrors.New(verrors.FriLastLayerEvaluationsInvalid, "last layer mismatch at query %d", q)
		}
	}

	return nil
}

func verifyLayerMerkle(root channel.Hash, logSize uint32, positions []uint64, sparse SparseEvaluation, decommitment wire.MerkleDecommitment) error {
	mv := vcs.NewMerkleVerifier(root, []uint32{logSize})
	mv.NColsPerLogSize[logSize] = 4 // a QM31 leaf is four M31 coordinates

	values := sparse.Flatten()
	flatM31 := make([]field.M31, 0, len(values)*4)
	for _, v := range values {
		limbs := v.Limbs()
		flatM31 = append(flatM31, limbs[:]...)
	}

	return mv.Verify(map[uint32][]uint64{logSize: positions}, flatM31, decommitment)
}
