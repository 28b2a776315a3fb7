// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire defines the serde-portable proof structures the verifier
// ingests, with field ordering fixed per the external interface contract.
package wire

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/field"
)

// FriConfig configures the FRI low-degree test.
type FriConfig struct {
	LogBlowupFactor         uint32 `cbor:"log_blowup_factor"`
	LogLastLayerDegreeBound uint32 `cbor:"log_last_layer_degree_bound"`
	NQueries                uint32 `cbor:"n_queries"`
}

// SecurityBits is an informational estimate of the configuration's bit
// security, blowup contribution plus per-query contribution.
func (c FriConfig) SecurityBits() uint32 {
	return c.LogBlowupFactor*c.NQueries + c.NQueries
}

// PcsConfig configures the polynomial commitment scheme verifier.
type PcsConfig struct {
	PowBits   uint32    `cbor:"pow_bits"`
	FriConfig FriConfig `cbor:"fri_config"`
}

// LinePoly holds coefficients in QM31, standard monomial basis, low to high
// degree.
type LinePoly struct {
	Coeffs []field.QM31 `cbor:"coeffs"`
}

// EvalAtPoint evaluates the polynomial at point via Horner's method.
func (p LinePoly) EvalAtPoint(point field.QM31) field.QM31 {
	eval := field.QM31Zero()
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		eval = eval.Mul(point).Add(p.Coeffs[i])
	}
	return eval
}

// MerkleDecommitment carries the sibling hashes and column values for nodes
// the verifier needs but did not directly query.
type MerkleDecommitment struct {
	HashWitness   []channel.Hash `cbor:"hash_witness"`
	ColumnWitness []field.M31    `cbor:"column_witness"`
}

// FriLayerProof is one layer of the FRI commit phase.
type FriLayerProof struct {
	FriWitness   []field.QM31       `cbor:"fri_witness"`
	Decommitment MerkleDecommitment `cbor:"decommitment"`
	Commitment   channel.Hash       `cbor:"commitment"`
}

// FriProof is the full FRI proof: first layer, inner layers, and the
// last-layer polynomial sent in the clear.
type FriProof struct {
	FirstLayer    FriLayerProof   `cbor:"first_layer"`
	InnerLayers   []FriLayerProof `cbor:"inner_layers"`
	LastLayerPoly LinePoly        `cbor:"last_layer_poly"`
}

// CommitmentSchemeProof is the full PCS proof.
type CommitmentSchemeProof struct {
	Config        PcsConfig            `cbor:"config"`
	Commitments   []channel.Hash       `cbor:"commitments"`
	SampledValues [][][]field.QM31     `cbor:"sampled_values"`
	Decommitments []MerkleDecommitment `cbor:"decommitments"`
	QueriedValues [][]field.M31        `cbor:"queried_values"`
	ProofOfWork   uint64               `cbor:"proof_of_work"`
	FriProof      FriProof             `cbor:"fri_proof"`
}

// StarkProof is the top-level proof the caller hands to stark.Verify.
type StarkProof struct {
	CommitmentSchemeProof
}

// DecodeProof decodes a CBOR-encoded StarkProof.
func DecodeProof(data []byte) (*StarkProof, error) {
	var p StarkProof
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeProof CBOR-encodes a StarkProof.
func EncodeProof(p *StarkProof) ([]byte, error) {
	return cbor.Marshal(p)
}
