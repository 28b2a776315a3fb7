// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pcs

import (
	"encoding/binary"
	"testing"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/fri"
	"github.com/luxfi/circlestark/verrors"
	"github.com/luxfi/circlestark/wire"
	"github.com/stretchr/testify/require"
)

func TestCommitRecordsTreeAndMixesRoot(t *testing.T) {
	ch := channel.New()
	before := ch.Digest()

	v := New(wire.PcsConfig{FriConfig: wire.FriConfig{LogBlowupFactor: 1}})
	v.Commit(channel.Hash{0xAB}, []uint32{3, 4}, ch)

	require.NotEqual(t, before, ch.Digest())
	require.Len(t, v.Trees, 1)
	require.Equal(t, []uint32{5, 4}, v.Trees[0].ColumnLogSizes)
}

func fridaVerifierAt(t *testing.T, boundLogSize uint32, nQueries uint32) (*fri.Verifier, fri.Queries) {
	t.Helper()
	proof := wire.FriProof{
		FirstLayer:    wire.FriLayerProof{Commitment: channel.Hash{1}},
		LastLayerPoly: wire.LinePoly{Coeffs: []field.QM31{field.QM31Zero()}},
	}
	config := wire.FriConfig{LogBlowupFactor: 1, LogLastLayerDegreeBound: 0, NQueries: nQueries}
	ch := channel.New()
	fv, err := fri.Commit(ch, config, proof, []uint32{boundLogSize - 1})
	require.NoError(t, err)
	queries := fv.SampleQueryPositions(ch, []uint32{boundLogSize})
	_ = queries
	q, ok := fv.QueriesAt(boundLogSize)
	require.True(t, ok)
	return fv, q
}

func TestBuildColumnGroupsAssemblesRowValues(t *testing.T) {
	const logSize = uint32(4)
	fv, queries := fridaVerifierAt(t, logSize, 3)

	samples := []TreeSample{{
		Column:  0,
		LogSize: logSize,
		Point:   circle.Point[field.QM31]{X: field.LiftM31(field.NewM31(2)), Y: field.LiftM31(field.NewM31(3))},
		Value:   field.QM31One(),
	}}

	rowsByLogSize := map[uint32]map[uint64][]field.M31{logSize: {}}
	for _, pos := range queries.Positions {
		rowsByLogSize[logSize][pos] = []field.M31{field.NewM31(7)}
	}

	groups, err := buildColumnGroups(samples, rowsByLogSize, fv, []uint32{logSize})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, queries.Positions, groups[0].QueryPositions)
	for _, row := range groups[0].RowValues {
		require.Equal(t, []field.M31{field.NewM31(7)}, row)
	}
}

// constantFriProof builds a structurally valid, single-bound FRI proof over
// a 4-point circle domain whose evaluation is the constant c everywhere, so
// it mixes cleanly through fri.Commit regardless of the drawn alpha. It is
// not meant to reach fri.Decommit: these PCS-level tests only need it to
// survive Commit so VerifyValues reaches the proof-of-work check.
func constantFriProof(c field.QM31, domainLogSize uint32) wire.FriProof {
	domain := circle.NewCanonicCoset(domainLogSize).CircleDomain()
	limbs := c.Limbs()
	buf := make([]byte, 16)
	for i, l := range limbs {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], l.Uint32())
	}
	leafHash := channel.HashBytes(buf)
	subtreeHash := channel.HashBytes(leafHash[:], leafHash[:], nil)
	root := channel.HashBytes(subtreeHash[:], subtreeHash[:], nil)
	folded := fri.FoldCircleIntoLine([]field.QM31{c, c}, domain, field.QM31Zero())
	return wire.FriProof{
		FirstLayer: wire.FriLayerProof{
			Commitment: root,
			FriWitness: []field.QM31{c},
			Decommitment: wire.MerkleDecommitment{
				HashWitness: []channel.Hash{subtreeHash},
			},
		},
		LastLayerPoly: wire.LinePoly{Coeffs: []field.QM31{folded[0]}},
	}
}

func TestVerifyValuesRejectsInsufficientProofOfWork(t *testing.T) {
	config := wire.PcsConfig{
		PowBits:   20,
		FriConfig: wire.FriConfig{LogBlowupFactor: 1, LogLastLayerDegreeBound: 0, NQueries: 1},
	}
	v := New(config)
	ch := channel.New()
	v.Commit(channel.Hash{0xCD}, []uint32{1}, ch)

	proof := wire.CommitmentSchemeProof{
		FriProof:    constantFriProof(field.QM31One(), 2),
		ProofOfWork: 1, // not ground: the digest after mixing it lacks 20 trailing zeros
	}

	err := v.VerifyValues(nil, proof, ch)
	require.Error(t, err)
	require.True(t, verrors.Is(err, verrors.ProofOfWork))
}

func TestBuildColumnGroupsErrorsOnMissingRow(t *testing.T) {
	const logSize = uint32(4)
	fv, _ := fridaVerifierAt(t, logSize, 3)

	samples := []TreeSample{{
		Column:  0,
		LogSize: logSize,
		Point:   circle.Point[field.QM31]{X: field.LiftM31(field.NewM31(2)), Y: field.LiftM31(field.NewM31(3))},
		Value:   field.QM31One(),
	}}

	_, err := buildColumnGroups(samples, map[uint32]map[uint64][]field.M31{}, fv, []uint32{logSize})
	require.Error(t, err)
}
