// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quotients

import (
	"testing"

	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
	"github.com/stretchr/testify/require"
)

func samplePoint(x, y uint32) circle.Point[field.QM31] {
	return circle.Point[field.QM31]{X: field.LiftM31(field.NewM31(x)), Y: field.LiftM31(field.NewM31(y))}
}

func TestNewColumnSampleBatchesGroupsByPoint(t *testing.T) {
	p1 := samplePoint(1, 2)
	p2 := samplePoint(3, 4)
	samples := []PointSample{
		{Point: p1, Values: []ColumnValue{{Column: 0, Value: field.QM31One()}}},
		{Point: p2, Values: []ColumnValue{{Column: 1, Value: field.QM31One()}}},
		{Point: p1, Values: []ColumnValue{{Column: 2, Value: field.QM31One()}}},
	}
	batches := NewColumnSampleBatches(samples)
	require.Len(t, batches, 2)
	require.Equal(t, []int{0, 2}, batches[0].Columns)
	require.Equal(t, []int{1}, batches[1].Columns)
}

func TestDenominatorInversesAreInverses(t *testing.T) {
	// The point needs non-zero Pi parts: for a base-field point every
	// denominator is zero.
	batches := []ColumnSampleBatch{
		{Point: circle.Point[field.QM31]{
			X: field.NewQM31(field.NewCM31(field.NewM31(5), field.Zero()), field.NewCM31(field.NewM31(1), field.Zero())),
			Y: field.NewQM31(field.NewCM31(field.NewM31(7), field.Zero()), field.NewCM31(field.NewM31(2), field.Zero())),
		}},
	}
	domain := circle.NewCanonicCoset(3).CircleDomain()
	positions := []uint64{0, 1, 2}

	invs := ComputeDenominatorInverses(batches, domain, positions)
	require.Len(t, invs, 1)
	require.Len(t, invs[0], 3)

	for j, pos := range positions {
		p := domain.At(pos)
		prx, pix := batches[0].Point.X.X, batches[0].Point.X.Y
		pry, piy := batches[0].Point.Y.X, batches[0].Point.Y.Y
		dx := prx.Sub(field.CM31{A: p.X})
		dy := pry.Sub(field.CM31{A: p.Y})
		denom := dx.Mul(piy).Sub(dy.Mul(pix))
		require.Equal(t, field.CM31One(), denom.Mul(invs[0][j]))
	}
}

func TestComplexConjugateLineCoeffsVanishAtConjugatePoint(t *testing.T) {
	v := field.QM31{X: field.CM31{A: field.NewM31(3), B: field.NewM31(4)}, Y: field.CM31{A: field.NewM31(1)}}
	y := field.QM31{X: field.CM31{A: field.NewM31(9), B: field.NewM31(2)}, Y: field.CM31{A: field.NewM31(6)}}
	alpha := field.QM31One()

	a, b, c := complexConjugateLineCoeffs(v, y, alpha)
	// The line c*V - a*Y - b passes through both (y, v) and its complex
	// conjugate (conj(y), conj(v)) by construction.
	require.Equal(t, a.Mul(y).Add(b), c.Mul(v))

	yConj := y.ComplexConjugate()
	vConj := v.ComplexConjugate()
	require.Equal(t, a.Mul(yConj).Add(b), c.Mul(vConj))
}
