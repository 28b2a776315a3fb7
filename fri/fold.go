// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fri

import (
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
)

// FoldStep is the fixed FRI folding arity: every fold halves the domain.
const FoldStep = 1

// CircleToLineFoldStep is the fixed arity of the one circle-to-line fold
// that converts the first (circle-domain) layer into a LineEvaluation.
const CircleToLineFoldStep = 1

// FoldLine folds a bit-reversed-order line evaluation of length 2^logSize
// by one bit using folding coefficient alpha:
//
//	f0 = f(x) + f(-x)
//	f1 = (f(x) - f(-x)) * x^-1
//	folded = f0 + alpha*f1
//
// where x is domain.At(bit_reverse_index(2*i, logSize)) for pair i.
func FoldLine(values []field.QM31, domain circle.LineDomain, alpha field.QM31) []field.QM31 {
	logSize := domain.LogSize()
	n := len(values)
	out := make([]field.QM31, n/2)
	for i := 0; i < n/2; i++ {
		xIdx := circle.BitReverseIndex(uint64(i)*2, logSize)
		x := domain.At(xIdx)
		xInv := x.Inverse()

		fx := values[2*i]
		fnegx := values[2*i+1]
		f0 := fx.Add(fnegx)
		f1 := fx.Sub(fnegx).MulM31(xInv)
		out[i] = f0.Add(alpha.Mul(f1))
	}
	return out
}

// FoldCircleIntoLine folds a bit-reversed-order circle-domain evaluation of
// length 2^logSize into a line evaluation of half the length, the one
// circle-to-line fold that starts the FRI layer chain. Instead of x^-1 it
// uses p.y^-1, the inverse-butterfly factor for the circle group.
func FoldCircleIntoLine(values []field.QM31, domain circle.CircleDomain, alpha field.QM31) []field.QM31 {
	logSize := domain.LogSize()
	n := len(values)
	out := make([]field.QM31, n/2)
	for i := 0; i < n/2; i++ {
		pIdx := circle.BitReverseIndex(uint64(i)*2, logSize)
		p := domain.At(pIdx)
		yInv := p.Y.Inverse()

		fp := values[2*i]
		fnegp := values[2*i+1]
		f0 := fp.Add(fnegp)
		f1 := fp.Sub(fnegp).MulM31(yInv)
		out[i] = f0.Add(alpha.Mul(f1))
	}
	return out
}
