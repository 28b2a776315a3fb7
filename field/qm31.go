// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package field

// QM31 is an element x + y*u of CM31[u]/(u^2-(2+i)), the degree-4 secure
// extension used for all Fiat-Shamir challenges and FRI arithmetic.
type QM31 struct {
	X, Y CM31
}

// secureR is the fixed non-residue 2+i used by the u^2 = 2+i relation.
var secureR = CM31{A: M31(2), B: M31(1)}

// NewQM31 builds x + y*u.
func NewQM31(x, y CM31) QM31 { return QM31{X: x, Y: y} }

// LiftM31 embeds a base-field element into QM31.
func LiftM31(x M31) QM31 { return QM31{X: CM31{A: x}} }

// LiftCM31 embeds a CM31 element into QM31.
func LiftCM31(x CM31) QM31 { return QM31{X: x} }

// QM31FromM31s builds a QM31 directly from its four M31 limbs, in (a,b,c,d)
// order matching the wire encoding used by the proof serde layer.
func QM31FromM31s(a, b, c, d M31) QM31 {
	return QM31{X: CM31{A: a, B: b}, Y: CM31{A: c, B: d}}
}

func QM31Zero() QM31 { return QM31{} }

func QM31One() QM31 { return QM31{X: CM31One()} }

func (z QM31) Add(w QM31) QM31 {
	return QM31{X: z.X.Add(w.X), Y: z.Y.Add(w.Y)}
}

func (z QM31) Sub(w QM31) QM31 {
	return QM31{X: z.X.Sub(w.X), Y: z.Y.Sub(w.Y)}
}

func (z QM31) Neg() QM31 {
	return QM31{X: z.X.Neg(), Y: z.Y.Neg()}
}

// Mul computes (a+bu)(c+du) = (ac + (2+i)*bd) + (ad+bc)*u.
func (z QM31) Mul(w QM31) QM31 {
	ac := z.X.Mul(w.X)
	bd := z.Y.Mul(w.Y)
	ad := z.X.Mul(w.Y)
	bc := z.Y.Mul(w.X)
	return QM31{X: ac.Add(secureR.Mul(bd)), Y: ad.Add(bc)}
}

func (z QM31) Square() QM31 { return z.Mul(z) }

// Pow returns z^e via square-and-multiply.
func (z QM31) Pow(e uint32) QM31 {
	result := QM31One()
	base := z
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}

func (z QM31) Double() QM31 { return z.Add(z) }

// MulCM31 multiplies a QM31 by a CM31 scalar, broadcasting componentwise.
func (z QM31) MulCM31(w CM31) QM31 {
	return QM31{X: z.X.Mul(w), Y: z.Y.Mul(w)}
}

// MulM31 multiplies a QM31 by an M31 scalar.
func (z QM31) MulM31(w M31) QM31 {
	return z.MulCM31(CM31{A: w})
}

// ComplexConjugate negates the whole second CM31 component: (x,y) -> (x,-y).
// This lifts CM31's involution to QM31 componentwise on the u-coordinate,
// not on the inner imaginary part of either component.
func (z QM31) ComplexConjugate() QM31 {
	return QM31{X: z.X, Y: z.Y.Neg()}
}

// Inverse returns the inverse of x+yu: denominator = x^2 - (2+i)*y^2 in CM31,
// inverted, then multiplied through.
func (z QM31) Inverse() QM31 {
	denom := z.X.Square().Sub(secureR.Mul(z.Y.Square()))
	denomInv := denom.Inverse()
	return QM31{X: z.X.Mul(denomInv), Y: z.Y.Neg().Mul(denomInv)}
}

// FromPartialEvals recombines four independently-accumulated QM31
// evaluations (one per basis element 1, i, u, iu) into a single QM31, per
// the partial-evaluation trick used to commit the composition polynomial
// as four base-degree-bound columns.
func FromPartialEvals(evals [4]QM31) QM31 {
	i := QM31FromM31s(Zero(), One(), Zero(), Zero())
	u := QM31FromM31s(Zero(), Zero(), One(), Zero())
	iu := QM31FromM31s(Zero(), Zero(), Zero(), One())
	res := evals[0]
	res = res.Add(evals[1].Mul(i))
	res = res.Add(evals[2].Mul(u))
	res = res.Add(evals[3].Mul(iu))
	return res
}

func (z QM31) IsZero() bool { return z.X.IsZero() && z.Y.IsZero() }

func (z QM31) Equal(w QM31) bool { return z.X.Equal(w.X) && z.Y.Equal(w.Y) }

// Limbs returns the four M31 coordinates in (a,b,c,d) order, matching the
// proof serde wire encoding and the M31-leaf encoding used by FRI's first
// layer Merkle commitment.
func (z QM31) Limbs() [4]M31 {
	return [4]M31{z.X.A, z.X.B, z.Y.A, z.Y.B}
}
