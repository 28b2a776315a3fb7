// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package quotients implements the DEEP-ALI quotient reduction: column-line
// coefficients derived from out-of-domain samples, and the per-row quotient
// accumulation that turns trace values into FRI input evaluations.
package quotients

import (
	"github.com/luxfi/circlestark/circle"
	"github.com/luxfi/circlestark/field"
)

// ColumnValue is a single (column index, sampled value) pair at a sample
// point.
type ColumnValue struct {
	Column int
	Value  field.QM31
}

// PointSample is a circle point together with every (column, value) pair
// that was sampled there.
type PointSample struct {
	Point  circle.Point[field.QM31]
	Values []ColumnValue
}

// ColumnSampleBatch groups every PointSample sharing the same point into one
// batch: a point plus the flattened list of (column, value) pairs sampled
// there, in first-seen column order.
type ColumnSampleBatch struct {
	Point   circle.Point[field.QM31]
	Columns []int
	Values  []field.QM31
}

// NewColumnSampleBatches groups samples by point, preserving first-seen
// point order.
func NewColumnSampleBatches(samples []PointSample) []ColumnSampleBatch {
	index := map[circle.Point[field.QM31]]int{}
	var batches []ColumnSampleBatch
	for _, s := range samples {
		i, ok := index[s.Point]
		if !ok {
			i = len(batches)
			index[s.Point] = i
			batches = append(batches, ColumnSampleBatch{Point: s.Point})
		}
		for _, cv := range s.Values {
			batches[i].Columns = append(batches[i].Columns, cv.Column)
			batches[i].Values = append(batches[i].Values, cv.Value)
		}
	}
	return batches
}

// ComputeDenominatorInverses computes, for every (batch, query position)
// pair, the inverse of
//
//	(Pr(x) - domain.x)*Pi(y) - (Pr(y) - domain.y)*Pi(x)
//
// where Pr/Pi are the two CM31 components of the sample point's QM31
// coordinates, using a single batched inversion across every pair.
func ComputeDenominatorInverses(batches []ColumnSampleBatch, domain circle.CircleDomain, positions []uint64) [][]field.CM31 {
	flat := make([]field.CM31, 0, len(batches)*len(positions))
	for _, b := range batches {
		prx, pix := b.Point.X.X, b.Point.X.Y
		pry, piy := b.Point.Y.X, b.Point.Y.Y
		for _, pos := range positions {
			p := domain.At(pos)
			dx := prx.Sub(field.CM31{A: p.X})
			dy := pry.Sub(field.CM31{A: p.Y})
			flat = append(flat, dx.Mul(piy).Sub(dy.Mul(pix)))
		}
	}
	invFlat := field.BatchInverseCM31(flat)

	out := make([][]field.CM31, len(batches))
	k := 0
	for i := range batches {
		out[i] = make([]field.CM31, len(positions))
		for j := range positions {
			out[i][j] = invFlat[k]
			k++
		}
	}
	return out
}

// complexConjugateLineCoeffs computes the line through (point, v) and its
// complex conjugate that the DEEP quotient subtracts off: a = conj(v)-v,
// c = conj(y)-y, b = v*c - a*y, then scales the triple by alpha.
func complexConjugateLineCoeffs(v field.QM31, y field.QM31, alpha field.QM31) (a, b, c field.QM31) {
	vConj := v.ComplexConjugate()
	yConj := y.ComplexConjugate()
	a0 := vConj.Sub(v)
	c0 := yConj.Sub(y)
	b0 := v.Mul(c0).Sub(a0.Mul(y))
	return alpha.Mul(a0), alpha.Mul(b0), alpha.Mul(c0)
}

// accumulateRowQuotients computes one batch's contribution to the row
// accumulator: advances a per-column multiplier alpha by alpha*randomCoeff,
// derives the conjugate-line triple for each (column, sampled value) pair,
// and sums value*c - (a*domain.y + b) across the batch's columns.
func accumulateRowQuotients(batch ColumnSampleBatch, domainPoint circle.Point[field.M31], rowValues []field.M31, randomCoeff field.QM31) field.QM31 {
	numerator := field.QM31Zero()
	alpha := field.QM31One()
	domainY := field.LiftM31(domainPoint.Y)
	for i, col := range batch.Columns {
		alpha = alpha.Mul(randomCoeff)
		a, b, c := complexConjugateLineCoeffs(batch.Values[i], batch.Point.Y, alpha)
		rowVal := field.LiftM31(rowValues[col])
		numerator = numerator.Add(rowVal.Mul(c).Sub(a.Mul(domainY).Add(b)))
	}
	return numerator
}

// ColumnGroup is every column sharing a log size, the batches of samples
// taken of them, and the queried trace values needed to answer those
// samples at this group's query positions.
type ColumnGroup struct {
	LogSize        uint32
	Batches        []ColumnSampleBatch
	QueryPositions []uint64
	// RowValues[q][c] is the value of column c (indexed as in Batches'
	// Columns entries) at the row QueryPositions[q].
	RowValues [][]field.M31
}

// FriAnswersForLogSize computes one QM31 FRI input evaluation per query
// position in the group, accumulating every sample batch's contribution
// with the batch random coefficient random_coeff^(#columns in batch).
func FriAnswersForLogSize(group ColumnGroup, domain circle.CircleDomain, randomCoeff field.QM31) []field.QM31 {
	denomInvs := ComputeDenominatorInverses(group.Batches, domain, group.QueryPositions)

	out := make([]field.QM31, len(group.QueryPositions))
	for qi, pos := range group.QueryPositions {
		p := domain.At(pos)
		acc := field.QM31Zero()
		for bi, batch := range group.Batches {
			numerator := accumulateRowQuotients(batch, p, group.RowValues[qi], randomCoeff)
			batchRandomCoeff := randomCoeff.Pow(uint32(len(batch.Columns)))
			acc = acc.Mul(batchRandomCoeff).Add(numerator.Mul(field.LiftCM31(denomInvs[bi][qi])))
		}
		out[qi] = acc
	}
	return out
}

// FriAnswers computes FriAnswersForLogSize for each already-grouped
// ColumnGroup, producing the full set of FRI input evaluations keyed by log
// size. Grouping the columns by log size is left to the caller.
func FriAnswers(groups []ColumnGroup, domains map[uint32]circle.CircleDomain, randomCoeff field.QM31) map[uint32][]field.QM31 {
	out := make(map[uint32][]field.QM31, len(groups))
	for _, g := range groups {
		out[g.LogSize] = FriAnswersForLogSize(g, domains[g.LogSize], randomCoeff)
	}
	return out
}
