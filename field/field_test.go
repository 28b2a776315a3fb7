// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestM31AddNeg(t *testing.T) {
	for _, x := range []uint32{0, 1, 2, P - 1, P / 2} {
		a := NewM31(x)
		require.True(t, a.Add(a.Neg()).IsZero())
	}
}

func TestM31Inverse(t *testing.T) {
	cases := []uint32{1, 2, 3, 12345, P - 1}
	for _, x := range cases {
		a := NewM31(x)
		require.Equal(t, One(), a.Mul(a.Inverse()))
	}
}

func TestM31ReduceWraps(t *testing.T) {
	require.Equal(t, M31(0), NewM31(P))
	require.Equal(t, M31(1), NewM31(P+1))
}

func TestCM31Inverse(t *testing.T) {
	z := CM31{A: NewM31(7), B: NewM31(11)}
	got := z.Mul(z.Inverse())
	require.Equal(t, CM31One(), got)
}

func TestCM31ConjugateInvolution(t *testing.T) {
	z := CM31{A: NewM31(3), B: NewM31(5)}
	require.Equal(t, z, z.ComplexConjugate().ComplexConjugate())
	require.Equal(t, CM31{A: NewM31(3), B: NewM31(5).Neg()}, z.ComplexConjugate())
}

func TestQM31Inverse(t *testing.T) {
	z := QM31{X: CM31{A: NewM31(2), B: NewM31(3)}, Y: CM31{A: NewM31(5), B: NewM31(7)}}
	got := z.Mul(z.Inverse())
	require.Equal(t, QM31One(), got)
}

func TestQM31ConjugateInvolution(t *testing.T) {
	z := QM31{X: CM31{A: NewM31(1), B: NewM31(2)}, Y: CM31{A: NewM31(3), B: NewM31(4)}}
	require.Equal(t, z, z.ComplexConjugate().ComplexConjugate())
}

func TestBatchInverseQM31(t *testing.T) {
	xs := []QM31{
		{X: CM31{A: NewM31(1), B: NewM31(1)}, Y: CM31{A: NewM31(2), B: NewM31(0)}},
		{X: CM31{A: NewM31(9), B: NewM31(3)}, Y: CM31{A: NewM31(1), B: NewM31(1)}},
		{X: CM31{A: NewM31(17), B: NewM31(2)}, Y: CM31{A: NewM31(4), B: NewM31(5)}},
	}
	got := BatchInverseQM31(xs)
	for i, x := range xs {
		require.Equal(t, x.Inverse(), got[i])
	}
}

func TestBatchInverseM31(t *testing.T) {
	xs := []M31{NewM31(2), NewM31(3), NewM31(12345), NewM31(P - 2)}
	got := BatchInverseM31(xs)
	for i, x := range xs {
		require.Equal(t, x.Inverse(), got[i])
	}
}
