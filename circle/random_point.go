// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package circle

import (
	"github.com/luxfi/circlestark/channel"
	"github.com/luxfi/circlestark/field"
)

// GetRandomPointQM31 draws an out-of-domain circle point over the secure
// field from the channel, via the rational parametrization
// x = (1-t^2)/(1+t^2), y = 2t/(1+t^2) for a drawn t. Every t with
// 1+t^2 != 0 produces a point satisfying x^2+y^2=1 (for 1+t^2 = 0 the
// inversion panics); the point essentially never lies on any FFT domain
// the prover committed over.
func GetRandomPointQM31(ch *channel.Channel) Point[field.QM31] {
	t := ch.DrawFelt()
	tSquare := t.Square()
	onePlusTSquare := tSquare.Add(field.QM31One())
	inv := onePlusTSquare.Inverse()

	x := field.QM31One().Sub(tSquare).Mul(inv)
	y := t.Double().Mul(inv)
	return Point[field.QM31]{X: x, Y: y}
}
