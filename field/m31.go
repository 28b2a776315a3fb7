// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package field implements the M31/CM31/QM31 field tower used by the
// Circle-STARK verifier: the Mersenne-31 base field and its quadratic
// and quartic extensions.
package field

// P is the Mersenne prime 2^31 - 1.
const P uint32 = (1 << 31) - 1

// M31 is an element of GF(2^31 - 1), always stored in canonical form [0, P).
type M31 uint32

// Zero is the additive identity.
func Zero() M31 { return M31(0) }

// One is the multiplicative identity.
func One() M31 { return M31(1) }

// NewM31 reduces n into canonical form.
func NewM31(n uint32) M31 {
	return reduce32(n)
}

// reduce32 folds a value that may exceed P by at most one wraparound,
// the shape produced by addition of two canonical values.
func reduce32(x uint32) M31 {
	x = (x & P) + (x >> 31)
	if x >= P {
		x -= P
	}
	return M31(x)
}

// reduce64 folds a 64-bit product down to canonical form using two passes
// of the Mersenne-shape reduction, since a product of two 31-bit values can
// reach roughly 2^62: one pass brings it under 2^32 but can leave it above
// 2P, too large for the single conditional subtract at the end.
func reduce64(x uint64) M31 {
	x = (x & uint64(P)) + (x >> 31)
	x = (x & uint64(P)) + (x >> 31)
	v := uint32(x)
	if v >= P {
		v -= P
	}
	return M31(v)
}

// Add returns a + b mod P.
func (a M31) Add(b M31) M31 {
	return reduce32(uint32(a) + uint32(b))
}

// Sub returns a - b mod P.
func (a M31) Sub(b M31) M31 {
	return reduce32(uint32(a) + (P - uint32(b)))
}

// Neg returns -a mod P.
func (a M31) Neg() M31 {
	if a == 0 {
		return 0
	}
	return M31(P) - a
}

// Mul returns a * b mod P.
func (a M31) Mul(b M31) M31 {
	return reduce64(uint64(a) * uint64(b))
}

// Square returns a * a mod P.
func (a M31) Square() M31 {
	return a.Mul(a)
}

// Double returns a + a mod P.
func (a M31) Double() M31 {
	return a.Add(a)
}

// Pow returns a^e mod P via square-and-multiply.
func (a M31) Pow(e uint32) M31 {
	result := One()
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}

// Inverse returns a^(P-2), the multiplicative inverse of a. Callers must not
// invoke this on zero; the field has no inverse there.
func (a M31) Inverse() M31 {
	if a == 0 {
		panic("field: inverse of zero")
	}
	return a.Pow(P - 2)
}

// IsZero reports whether a is the additive identity.
func (a M31) IsZero() bool { return a == 0 }

// Uint32 returns the canonical representative.
func (a M31) Uint32() uint32 { return uint32(a) }

// Equal reports value equality.
func (a M31) Equal(b M31) bool { return a == b }
