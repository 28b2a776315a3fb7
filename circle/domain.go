// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package circle

import (
	"math/bits"

	"github.com/luxfi/circlestark/field"
)

// Coset is {initial + j*step : 0 <= j < 2^logSize}.
type Coset struct {
	InitialIndex Index
	Initial      Point[field.M31]
	StepSize     Index
	Step         Point[field.M31]
	LogSize      uint32
}

// NewCoset builds the coset with the given initial index and log size.
func NewCoset(initialIndex Index, logSize uint32) Coset {
	stepSize := SubgroupGen(logSize)
	return Coset{
		InitialIndex: initialIndex,
		Initial:      initialIndex.ToPoint(),
		StepSize:     stepSize,
		Step:         stepSize.ToPoint(),
		LogSize:      logSize,
	}
}

// HalfOdds returns the coset whose step is the subgroup generator for
// logSize and whose initial index is the generator for logSize+2 — the
// canonical "twin-coset" shift used to build CircleDomains.
func HalfOdds(logSize uint32) Coset {
	return NewCoset(SubgroupGen(logSize+2), logSize)
}

// At returns the i-th point of the coset (no bit-reversal is applied here;
// callers that want bit-reversed access apply BitReverseIndex first).
func (c Coset) At(i uint64) Point[field.M31] {
	idx := c.InitialIndex.Add(c.StepSize.Mul(i))
	return idx.ToPoint()
}

// IndexAt returns the CirclePointIndex of the i-th coset element.
func (c Coset) IndexAt(i uint64) Index {
	return c.InitialIndex.Add(c.StepSize.Mul(i))
}

// Size is 2^LogSize.
func (c Coset) Size() uint64 { return uint64(1) << c.LogSize }

// Double squares every point of the coset and halves the log size.
func (c Coset) Double() Coset {
	if c.LogSize == 0 {
		panic("circle: cannot double a coset of log size 0")
	}
	return Coset{
		InitialIndex: c.InitialIndex.Mul(2),
		Initial:      c.Initial.Double(),
		StepSize:     c.StepSize.Mul(2),
		Step:         c.Step.Double(),
		LogSize:      c.LogSize - 1,
	}
}

// RepeatedDouble applies Double n times.
func (c Coset) RepeatedDouble(n uint32) Coset {
	res := c
	for i := uint32(0); i < n; i++ {
		res = res.Double()
	}
	return res
}

// CircleDomain wraps a coset of a given log size, used as the evaluation
// domain for committed polynomials.
type CircleDomain struct {
	Coset Coset
}

// NewCircleDomain wraps coset as a CircleDomain.
func NewCircleDomain(coset Coset) CircleDomain { return CircleDomain{Coset: coset} }

func (d CircleDomain) LogSize() uint32 { return d.Coset.LogSize }

func (d CircleDomain) At(i uint64) Point[field.M31] { return d.Coset.At(i) }

func (d CircleDomain) Size() uint64 { return d.Coset.Size() }

// LineDomain is the x-projection of a circle coset.
type LineDomain struct {
	Coset Coset
}

// NewLineDomain wraps coset as a LineDomain.
func NewLineDomain(coset Coset) LineDomain {
	return LineDomain{Coset: coset}
}

func (d LineDomain) LogSize() uint32 { return d.Coset.LogSize }

// At returns the x-coordinate of the i-th point.
func (d LineDomain) At(i uint64) field.M31 { return d.Coset.At(i).X }

// Double returns the LineDomain for the doubled coset.
func (d LineDomain) Double() LineDomain {
	return LineDomain{Coset: d.Coset.Double()}
}

// CanonicCoset constructs the commitment domain for degree-2^LogSize
// polynomials.
type CanonicCoset struct {
	LogSize uint32
}

// NewCanonicCoset builds the canonic coset of the given log size.
func NewCanonicCoset(logSize uint32) CanonicCoset {
	return CanonicCoset{LogSize: logSize}
}

// CircleDomain builds the domain: half-odds coset of size 2^(LogSize).
func (c CanonicCoset) CircleDomain() CircleDomain {
	return NewCircleDomain(HalfOdds(c.LogSize))
}

// Coset returns the underlying half-odds coset.
func (c CanonicCoset) Coset() Coset {
	return HalfOdds(c.LogSize)
}

// BitReverseIndex reverses the low `log` bits of i.
func BitReverseIndex(i uint64, log uint32) uint64 {
	if log == 0 {
		return i
	}
	return bits.Reverse64(i) >> (64 - log)
}

// CosetVanishing evaluates the vanishing polynomial of `coset` at point p:
// shift p by -initial + step/2 (putting the coset in canonic +-G_{2^log}
// form), then apply DoubleX (logSize-1) times to the x-coordinate.
func CosetVanishing(coset Coset, p Point[field.QM31]) field.QM31 {
	shiftIdx := coset.InitialIndex.Neg().Add(coset.StepSize.Half())
	shift := shiftIdx.ToPoint()
	shiftQ := Point[field.QM31]{X: field.QM31{X: field.CM31{A: shift.X}}, Y: field.QM31{X: field.CM31{A: shift.Y}}}
	shifted := p.Add(shiftQ)
	x := shifted.X
	for i := uint32(0); i < coset.LogSize-1; i++ {
		x = DoubleXQM31(x)
	}
	return x
}
