// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

// CM31 is an element a + b*i of M31[i]/(i^2+1), the quadratic extension.
type CM31 struct {
	A, B M31
}

// NewCM31 builds a + b*i.
func NewCM31(a, b M31) CM31 { return CM31{A: a, B: b} }

// CM31Zero is the additive identity.
func CM31Zero() CM31 { return CM31{} }

// CM31One is the multiplicative identity.
func CM31One() CM31 { return CM31{A: One()} }

func (z CM31) Add(w CM31) CM31 {
	return CM31{A: z.A.Add(w.A), B: z.B.Add(w.B)}
}

func (z CM31) Sub(w CM31) CM31 {
	return CM31{A: z.A.Sub(w.A), B: z.B.Sub(w.B)}
}

func (z CM31) Neg() CM31 {
	return CM31{A: z.A.Neg(), B: z.B.Neg()}
}

// Mul computes (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (z CM31) Mul(w CM31) CM31 {
	ac := z.A.Mul(w.A)
	bd := z.B.Mul(w.B)
	ad := z.A.Mul(w.B)
	bc := z.B.Mul(w.A)
	return CM31{A: ac.Sub(bd), B: ad.Add(bc)}
}

func (z CM31) Square() CM31 { return z.Mul(z) }

func (z CM31) Double() CM31 { return z.Add(z) }

// ComplexConjugate negates the imaginary part: a+bi -> a-bi.
func (z CM31) ComplexConjugate() CM31 {
	return CM31{A: z.A, B: z.B.Neg()}
}

// Inverse returns (a-bi)/(a^2+b^2).
func (z CM31) Inverse() CM31 {
	norm := z.A.Square().Add(z.B.Square())
	normInv := norm.Inverse()
	conj := z.ComplexConjugate()
	return CM31{A: conj.A.Mul(normInv), B: conj.B.Mul(normInv)}
}

func (z CM31) IsZero() bool { return z.A.IsZero() && z.B.IsZero() }

func (z CM31) Equal(w CM31) bool { return z.A == w.A && z.B == w.B }
