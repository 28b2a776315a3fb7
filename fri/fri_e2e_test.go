// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fri

import (
	"encoding/binary"
	"testing"

	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/luxfi/circlestark/verrors"
	"github.com/luxfi/circlestark/wire"
	"github.com/stretchr/testify/require"
)

// constantFriFixture builds the "minimal valid proof" scenario: a single
// degree-bound group (bound=1, log_blowup=1, log_last_layer_degree_bound=0,
// n_queries=1) whose first-layer evaluation is the constant c everywhere on
// a 4-point circle domain. A constant evaluation folds to the same value
// from either query pair regardless of the drawn alpha (the antisymmetric
// half of the butterfly, f1, is always zero), so the fixture is valid no
// matter which of the two raw query positions the channel ends up drawing.
type constantFriFixture struct {
	config              wire.FriConfig
	proof               wire.FriProof
	friInputEvaluations map[uint32][]field.QM31
	domain              circle.CircleDomain
}

func buildConstantFriFixture(t *testing.T, c field.QM31) constantFriFixture {
	t.Helper()

	config := wire.FriConfig{LogBlowupFactor: 1, LogLastLayerDegreeBound: 0, NQueries: 1}
	bound := uint32(1)
	domain := circle.NewCanonicCoset(bound + config.LogBlowupFactor).CircleDomain()
	require.Equal(t, uint32(2), domain.LogSize())

	leafHash := hashQM31Leaf(c)
	subtreeHash := channel.HashBytes(leafHash[:], leafHash[:], nil)
	root := channel.HashBytes(subtreeHash[:], subtreeHash[:], nil)

	folded := FoldCircleIntoLine([]field.QM31{c, c}, domain, field.QM31Zero())

	proof := wire.FriProof{
		FirstLayer: wire.FriLayerProof{
			Commitment: root,
			FriWitness: []field.QM31{c},
			Decommitment: wire.MerkleDecommitment{
				HashWitness: []channel.Hash{subtreeHash},
			},
		},
		LastLayerPoly: wire.LinePoly{Coeffs: []field.QM31{folded[0]}},
	}

	return constantFriFixture{
		config:              config,
		proof:               proof,
		friInputEvaluations: map[uint32][]field.QM31{domain.LogSize(): {c}},
		domain:              domain,
	}
}

func hashQM31Leaf(v field.QM31) channel.Hash {
	limbs := v.Limbs()
	var buf [16]byte
	for i, l := range limbs {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], l.Uint32())
	}
	return channel.HashBytes(buf[:])
}

func TestDecommitAcceptsMinimalValidProof(t *testing.T) {
	fx := buildConstantFriFixture(t, field.QM31One())

	ch := channel.New()
	fv, err := Commit(ch, fx.config, fx.proof, []uint32{1})
	require.NoError(t, err)

	fv.SampleQueryPositions(ch, []uint32{fx.domain.LogSize()})

	require.NoError(t, fv.Decommit(fx.friInputEvaluations))
}

func TestDecommitRejectsCorruptedLastLayerCoefficient(t *testing.T) {
	fx := buildConstantFriFixture(t, field.QM31One())
	fx.proof.LastLayerPoly.Coeffs[0] = fx.proof.LastLayerPoly.Coeffs[0].Add(field.QM31One())

	ch := channel.New()
	fv, err := Commit(ch, fx.config, fx.proof, []uint32{1})
	require.NoError(t, err)

	fv.SampleQueryPositions(ch, []uint32{fx.domain.LogSize()})

	err = fv.Decommit(fx.friInputEvaluations)
	require.Error(t, err)
	require.True(t, verrors.Is(err, verrors.FriLastLayerEvaluationsInvalid))
}

func TestDecommitRejectsTruncatedFriWitness(t *testing.T) {
	fx := buildConstantFriFixture(t, field.QM31One())
	fx.proof.FirstLayer.FriWitness = nil

	ch := channel.New()
	fv, err := Commit(ch, fx.config, fx.proof, []uint32{1})
	require.NoError(t, err)

	fv.SampleQueryPositions(ch, []uint32{fx.domain.LogSize()})

	err = fv.Decommit(fx.friInputEvaluations)
	require.Error(t, err)
	require.True(t, verrors.Is(err, verrors.FriInsufficientWitness))
}
