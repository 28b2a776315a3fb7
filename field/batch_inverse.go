// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

// BatchInverseQM31 inverts every element of xs using Montgomery's trick: one
// forward pass accumulating prefix products, a single general inverse at the
// pivot, then a backward pass peeling the accumulated product back apart.
// Every xs[i] must be non-zero; the caller is responsible for that contract.
func BatchInverseQM31(xs []QM31) []QM31 {
	n := len(xs)
	out := make([]QM31, n)
	if n == 0 {
		return out
	}
	prefix := make([]QM31, n)
	acc := QM31One()
	for i, x := range xs {
		prefix[i] = acc
		acc = acc.Mul(x)
	}
	accInv := acc.Inverse()
	for i := n - 1; i >= 0; i-- {
		out[i] = prefix[i].Mul(accInv)
		accInv = accInv.Mul(xs[i])
	}
	return out
}

// BatchInverseCM31 is the CM31 analogue of BatchInverseQM31, used by the
// DEEP-ALI quotient denominator computation which works in CM31.
func BatchInverseCM31(xs []CM31) []CM31 {
	n := len(xs)
	out := make([]CM31, n)
	if n == 0 {
		return out
	}
	prefix := make([]CM31, n)
	acc := CM31One()
	for i, x := range xs {
		prefix[i] = acc
		acc = acc.Mul(x)
	}
	accInv := acc.Inverse()
	for i := n - 1; i >= 0; i-- {
		out[i] = prefix[i].Mul(accInv)
		accInv = accInv.Mul(xs[i])
	}
	return out
}

// BatchInverseM31 is the M31 analogue, used where base-field values must be
// inverted in bulk.
func BatchInverseM31(xs []M31) []M31 {
	n := len(xs)
	out := make([]M31, n)
	if n == 0 {
		return out
	}
	prefix := make([]M31, n)
	acc := One()
	for i, x := range xs {
		prefix[i] = acc
		acc = acc.Mul(x)
	}
	accInv := acc.Inverse()
	for i := n - 1; i >= 0; i-- {
		out[i] = prefix[i].Mul(accInv)
		accInv = accInv.Mul(xs[i])
	}
	return out
}
