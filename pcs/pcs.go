// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pcs implements the Polynomial Commitment Scheme verifier: the
// orchestrator that wires the channel, FRI, Merkle, and quotient
// subsystems together into commit / verify_values.
package pcs

import (
	"sort"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/fri"
	"github.com/luxfi/circlestark/quotients"
	"github.com/luxfi/circlestark/vcs"
	"github.com/luxfi/circlestark/verrors"
	"github.com/luxfi/circlestark/wire"
	log "github.com/luxfi/log"
)

// Verifier is the PCS verifier state: every committed MerkleVerifier (one
// per committed tree, in commit order) and the shared config.
type Verifier struct {
	Config wire.PcsConfig
	Trees  []*vcs.MerkleVerifier

	// Logger is optional; nil-safe. Used only for sparse phase-boundary
	// tracing, never on the per-query hot path.
	Logger log.Logger
}

// New builds an empty PCS verifier for the given config.
func New(config wire.PcsConfig) *Verifier {
	return &Verifier{Config: config}
}

func (v *Verifier) debugf(format string, args ...any) {
	if v.Logger != nil {
		v.Logger.Debug(format, args...)
	}
}

// Commit mixes a tree's root into the channel and records a MerkleVerifier
// for it, whose column log sizes are bound+log_blowup_factor per
// log-degree bound.
func (v *Verifier) Commit(commitment channel.Hash, logDegreeBounds []uint32, ch *channel.Channel) {
	ch.MixRoot(commitment)
	columnLogSizes := make([]uint32, len(logDegreeBounds))
	for i, b := range logDegreeBounds {
		columnLogSizes[i] = b + v.Config.FriConfig.LogBlowupFactor
	}
	v.Trees = append(v.Trees, vcs.NewMerkleVerifier(commitment, columnLogSizes))
	v.debugf("pcs: committed tree %d at log sizes %v", len(v.Trees)-1, columnLogSizes)
}

// TreeSample bundles one committed tree's per-column out-of-domain samples,
// keyed by (point, column), so VerifyValues can assemble ColumnSampleBatches
// per log size.
type TreeSample struct {
	Tree    int
	Column  int
	LogSize uint32
	Point   circle.Point[field.QM31]
	Value   field.QM31
}

// VerifyValues runs the full PCS verification pipeline: mix sampled
// values, draw random_coeff, collect FRI degree bounds, run FRI's commit
// phase, check proof-of-work, sample query positions, verify every tree's
// Merkle decommitment, reassemble DEEP-ALI quotients, and delegate to
// FRI's decommit.
func (v *Verifier) VerifyValues(samples []TreeSample, proof wire.CommitmentSchemeProof, ch *channel.Channel) error {
	// 1. Mix every sampled value into the channel, flattened.
	flatValues := make([]field.QM31, 0, len(samples))
	for _, s := range samples {
		flatValues = append(flatValues, s.Value)
	}
	ch.MixFelts(flatValues)

	// 2. Draw random_coeff.
	randomCoeff := ch.DrawFelt()

	// 3. Collect all column log sizes across every committed tree; sort
	// descending, dedup. These still drive query sampling and per-tree
	// Merkle verification below, independent of FRI's own bound.
	logSizeSet := map[uint32]bool{}
	for _, t := range v.Trees {
		for _, s := range t.ColumnLogSizes {
			logSizeSet[s] = true
		}
	}
	var columnLogSizes []uint32
	for s := range logSizeSet {
		columnLogSizes = append(columnLogSizes, s)
	}
	sort.Slice(columnLogSizes, func(i, j int) bool { return columnLogSizes[i] > columnLogSizes[j] })
	if len(columnLogSizes) == 0 {
		return verrors.New(verrors.InvalidStructure, "no committed columns to verify")
	}

	// 4. Run FRI's commit phase against a single effective bound: the
	// widest column log size across every committed tree, minus the
	// blowup factor. The proof's FRI layer chain carries exactly one
	// first-layer Merkle witness (wire.FriProof.FirstLayer), so there is
	// no way to decommit more than one degree bound independently; any
	// committed column narrower than this bound is still Merkle-bound to
	// its tree's root (step 7 below) but its degree is only checked to
	// the precision of the widest bound, matching how the reference
	// verifier collapses its own per-poly bounds to a single
	// effective_fri_input_log_degree before constructing its FRI
	// verifier.
	effectiveBound := columnLogSizes[0] - v.Config.FriConfig.LogBlowupFactor
	friVerifier, err := fri.Commit(ch, v.Config.FriConfig, proof.FriProof, []uint32{effectiveBound})
	if err != nil {
		return err
	}

	// 5. Mix the proof-of-work nonce and require enough trailing zeros.
	ch.MixU64(proof.ProofOfWork)
	if ch.TrailingZeros() < v.Config.PowBits {
		return verrors.New(verrors.ProofOfWork, "trailing zeros %d < required %d", ch.TrailingZeros(), v.Config.PowBits)
	}

	// 6. Sample query positions for the union of column log sizes.
	friVerifier.SampleQueryPositions(ch, columnLogSizes)

	// 7. Verify each tree's Merkle decommitment at those positions.
	for i, tree := range v.Trees {
		if i >= len(proof.Decommitments) || i >= len(proof.QueriedValues) {
			return verrors.New(verrors.InvalidStructure, "missing decommitment or queried values for tree %d", i)
		}
		queriesPerLogSize := map[uint32][]uint64{}
		for _, logSize := range tree.ColumnLogSizes {
			q, ok := friVerifier.QueriesAt(logSize)
			if !ok {
				return verrors.New(verrors.InvalidStructure, "no queries sampled for log size %d", logSize)
			}
			queriesPerLogSize[logSize] = q.Positions
		}
		if err := tree.Verify(queriesPerLogSize, proof.QueriedValues[i], proof.Decommitments[i]); err != nil {
			return err
		}
	}

	// 8. Reassemble samples into ColumnSampleBatches per log size and run
	// the DEEP-ALI quotient reduction.
	rowsByLogSize := map[uint32]map[uint64][]field.M31{}
	for i, tree := range v.Trees {
		queriesPerLogSize := map[uint32][]uint64{}
		for _, logSize := range tree.ColumnLogSizes {
			q, _ := friVerifier.QueriesAt(logSize)
			queriesPerLogSize[logSize] = q.Positions
		}
		for logSize, rows := range tree.ExtractRows(queriesPerLogSize, proof.QueriedValues[i]) {
			if rowsByLogSize[logSize] == nil {
				rowsByLogSize[logSize] = map[uint64][]field.M31{}
			}
			for pos, vals := range rows {
				rowsByLogSize[logSize][pos] = append(rowsByLogSize[logSize][pos], vals...)
			}
		}
	}

	groups, err := buildColumnGroups(samples, rowsByLogSize, friVerifier, columnLogSizes)
	if err != nil {
		return err
	}
	domains := map[uint32]circle.CircleDomain{}
	for _, logSize := range columnLogSizes {
		domains[logSize] = circle.NewCanonicCoset(logSize).CircleDomain()
	}
	friAnswers := quotients.FriAnswers(groups, domains, randomCoeff)

	// 9. Delegate to FRI's decommit.
	return friVerifier.Decommit(friAnswers)
}

// buildColumnGroups reorganizes samples and extracted tree rows into the
// per-log-size ColumnGroup shape the quotients package expects.
func buildColumnGroups(
	samples []TreeSample,
	rowsByLogSize map[uint32]map[uint64][]field.M31,
	fv *fri.Verifier,
	columnLogSizes []uint32,
) ([]quotients.ColumnGroup, error) {
	bySize := map[uint32][]quotients.PointSample{}
	for _, s := range samples {
		bySize[s.LogSize] = append(bySize[s.LogSize], quotients.PointSample{
			Point:  s.Point,
			Values: []quotients.ColumnValue{{Column: s.Column, Value: s.Value}},
		})
	}

	var groups []quotients.ColumnGroup
	for _, logSize := range columnLogSizes {
		pointSamples, ok := bySize[logSize]
		if !ok {
			continue
		}
		batches := quotients.NewColumnSampleBatches(pointSamples)

		queries, ok := fv.QueriesAt(logSize)
		if !ok {
			return nil, verrors.New(verrors.InvalidStructure, "no queries for log size %d", logSize)
		}

		rows := rowsByLogSize[logSize]
		rowValues := make([][]field.M31, len(queries.Positions))
		for i, pos := range queries.Positions {
			vals, ok := rows[pos]
			if !ok {
				return nil, verrors.New(verrors.InvalidStructure, "no row values for query %d at log size %d", pos, logSize)
			}
			rowValues[i] = vals
		}

		groups = append(groups, quotients.ColumnGroup{
			LogSize:        logSize,
			Batches:        batches,
			QueryPositions: queries.Positions,
			RowValues:      rowValues,
		})
	}
	return groups, nil
}
