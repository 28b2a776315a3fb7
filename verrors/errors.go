// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verrors defines the single tagged error kind the verifier returns:
// every failure surfaces through VerificationError, never a bare error.
package verrors

import "fmt"

// Kind tags the category of verification failure.
type Kind int

const (
	// InvalidStructure covers any proof shape violation: wrong counts of
	// decommitments or sampled values, non-decreasing FRI bounds, empty
	// bounds, a missing composition commitment, and so on.
	InvalidStructure Kind = iota
	// Merkle covers a root mismatch or insufficient/excess witness during
	// Merkle decommitment.
	Merkle
	// ProofOfWork covers a grinding nonce with too few trailing zero bits.
	ProofOfWork
	// OodsNotMatching covers a DEEP-ALI disagreement between the claimed
	// and recomputed composition OODS value.
	OodsNotMatching
	// FriQueriesNotSampled covers FRI query positions requested before
	// sampling.
	FriQueriesNotSampled
	// FriInsufficientWitness covers a FRI witness iterator exhausted early.
	FriInsufficientWitness
	// FriLastLayerDegreeInvalid covers a last-layer degree bound that goes
	// negative during folding.
	FriLastLayerDegreeInvalid
	// FriLastLayerEvaluationsInvalid covers a last-layer evaluation that
	// disagrees with the sent polynomial.
	FriLastLayerEvaluationsInvalid
	// FriInnerLayerEvaluationsInvalid covers an inner-layer Merkle or fold
	// mismatch.
	FriInnerLayerEvaluationsInvalid
	// FriInvalidNumLayers covers a FRI proof whose inner-layer count
	// disagrees with the number of folding alphas drawn at commit. The layer
	// count is not checked against the degree bounds.
	FriInvalidNumLayers
)

func (k Kind) String() string {
	switch k {
	case InvalidStructure:
		return "InvalidStructure"
	case Merkle:
		return "Merkle"
	case ProofOfWork:
		return "ProofOfWork"
	case OodsNotMatching:
		return "OodsNotMatching"
	case FriQueriesNotSampled:
		return "Fri.QueriesNotSampled"
	case FriInsufficientWitness:
		return "Fri.InsufficientWitness"
	case FriLastLayerDegreeInvalid:
		return "Fri.LastLayerDegreeInvalid"
	case FriLastLayerEvaluationsInvalid:
		return "Fri.LastLayerEvaluationsInvalid"
	case FriInnerLayerEvaluationsInvalid:
		return "Fri.InnerLayerEvaluationsInvalid"
	case FriInvalidNumLayers:
		return "Fri.InvalidNumLayers"
	default:
		return "Unknown"
	}
}

// VerificationError is the single error type the verifier ever returns.
type VerificationError struct {
	Kind Kind
	Msg  string
}

func (e *VerificationError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New constructs a VerificationError of the given kind with a formatted
// message.
func New(kind Kind, format string, args ...any) *VerificationError {
	return &VerificationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a VerificationError of the given kind.
func Is(err error, kind Kind) bool {
	ve, ok := err.(*VerificationError)
	return ok && ve.Kind == kind
}
