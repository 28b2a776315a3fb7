// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package circle implements the circle group used as the Circle-STARK
// evaluation domain: points (x,y) with x^2+y^2=1, cosets, and the
// Canonic/Line domains built from them.
package circle

import "github.com/luxfi/circlestark/field"

// LogOrder is the log2 of the M31 circle group's order (2^31).
const LogOrder = 31

// GenX, GenY are the coordinates of the fixed M31 circle group generator.
var (
	GenX = field.NewM31(2)
	GenY = field.NewM31(1268011823)
)

// Field is the capability set a circle coordinate type needs: the full
// arithmetic surface shared by M31 and QM31 (the only two coordinate types
// the verifier instantiates CirclePoint over).
type Field[T any] interface {
	Add(T) T
	Sub(T) T
	Neg() T
	Mul(T) T
	Square() T
	IsZero() bool
}

// Point is a point on the circle group over coordinate type T.
type Point[T Field[T]] struct {
	X, Y T
}

// Add implements the circle group law via complex multiplication:
// (x1,y1) ⊕ (x2,y2) = (x1*x2 - y1*y2, x1*y2 + x2*y1).
func (p Point[T]) Add(q Point[T]) Point[T] {
	return Point[T]{
		X: p.X.Mul(q.X).Sub(p.Y.Mul(q.Y)),
		Y: p.X.Mul(q.Y).Add(q.X.Mul(p.Y)),
	}
}

// Neg returns the group inverse: (x,y) -> (x,-y).
func (p Point[T]) Neg() Point[T] {
	return Point[T]{X: p.X, Y: p.Y.Neg()}
}

// Sub returns p ⊕ (-q).
func (p Point[T]) Sub(q Point[T]) Point[T] {
	return p.Add(q.Neg())
}

// Double returns p ⊕ p via the complex-squaring shortcut.
func (p Point[T]) Double() Point[T] {
	xx := p.X.Square()
	yy := p.Y.Square()
	xy := p.X.Mul(p.Y)
	return Point[T]{X: xx.Sub(yy), Y: xy.Add(xy)}
}

// RepeatedDouble doubles p n times.
func (p Point[T]) RepeatedDouble(n uint32) Point[T] {
	res := p
	for i := uint32(0); i < n; i++ {
		res = res.Double()
	}
	return res
}

// DoubleX computes 2x^2 - 1, the vanishing-polynomial building block: the
// x-coordinate of doubling a point without needing its y-coordinate.
func DoubleX[T Field[T]](x T, one T) T {
	return x.Square().Add(x.Square()).Sub(one)
}

// DoubleXM31 is DoubleX specialized to M31.
func DoubleXM31(x field.M31) field.M31 {
	return DoubleX(x, field.One())
}

// DoubleXQM31 is DoubleX specialized to QM31, used when evaluating the
// coset vanishing polynomial at an out-of-domain (secure field) point.
func DoubleXQM31(x field.QM31) field.QM31 {
	return DoubleX(x, field.QM31One())
}

// IdentityM31 is the circle group identity (1,0) over M31.
func IdentityM31() Point[field.M31] {
	return Point[field.M31]{X: field.One(), Y: field.Zero()}
}

// IdentityQM31 is the circle group identity (1,0) over QM31.
func IdentityQM31() Point[field.QM31] {
	return Point[field.QM31]{X: field.QM31One(), Y: field.QM31Zero()}
}

// Generator is the fixed M31 circle group generator G = (2, 1268011823).
func Generator() Point[field.M31] {
	return Point[field.M31]{X: GenX, Y: GenY}
}

// Index is an integer i representing the circle point i*G, treated as an
// additive ring modulo 2^LogOrder.
type Index uint64

const indexMask = (uint64(1) << LogOrder) - 1

// reduceIndex wraps n into [0, 2^LogOrder).
func reduceIndex(n uint64) Index {
	return Index(n & indexMask)
}

// ZeroIndex is the identity index.
func ZeroIndex() Index { return Index(0) }

// GeneratorIndex is the index of the generator itself (index 1).
func GeneratorIndex() Index { return Index(1) }

// SubgroupGen returns the index of the generator of the order-2^logSize
// subgroup: 2^(LogOrder - logSize).
func SubgroupGen(logSize uint32) Index {
	if logSize > LogOrder {
		panic("circle: subgroup log size exceeds circle group log order")
	}
	return Index(uint64(1) << (LogOrder - logSize))
}

// Add returns i+j mod 2^LogOrder.
func (i Index) Add(j Index) Index {
	return reduceIndex(uint64(i) + uint64(j))
}

// Sub returns i-j mod 2^LogOrder.
func (i Index) Sub(j Index) Index {
	return reduceIndex(uint64(i) + (uint64(1)<<LogOrder) - uint64(j))
}

// Neg returns -i mod 2^LogOrder.
func (i Index) Neg() Index {
	return Index(0).Sub(i)
}

// Mul returns i*n mod 2^LogOrder.
func (i Index) Mul(n uint64) Index {
	return reduceIndex(uint64(i) * n)
}

// Half returns i/2; i must be even.
func (i Index) Half() Index {
	if i&1 != 0 {
		panic("circle: Half called on odd index")
	}
	return Index(i >> 1)
}

// ToPoint converts the index to its circle point via double-and-add over
// the fixed generator.
func (i Index) ToPoint() Point[field.M31] {
	res := IdentityM31()
	gen := Generator()
	n := uint64(i)
	for n > 0 {
		if n&1 == 1 {
			res = res.Add(gen)
		}
		gen = gen.Double()
		n >>= 1
	}
	return res
}
