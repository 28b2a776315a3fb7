// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

// This file ports Blake2s's raw compression function, used only by MixU64
// for the compress-form absorption spec.md's open-question resolution pins
// as authoritative: the nonce is placed directly into message word slots
// rather than concatenated and re-hashed through blake2s.New256.

var blake2sIV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

var blake2sSigma = [10][16]byte{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
}

func rotr32(x uint32, n uint) uint32 { return x>>n | x<<(32-n) }

// blake2sRound applies one of Blake2s's 10 rounds: four G-function
// applications to the columns, then four to the diagonals.
func blake2sRound(v *[16]uint32, m [16]uint32, r int) {
	s := blake2sSigma[r]

	g := func(a, b, c, d, x, y int) {
		v[a] += v[b] + m[x]
		v[d] = rotr32(v[d]^v[a], 16)
		v[c] += v[d]
		v[b] = rotr32(v[b]^v[c], 12)
		v[a] += v[b] + m[y]
		v[d] = rotr32(v[d]^v[a], 8)
		v[c] += v[d]
		v[b] = rotr32(v[b]^v[c], 7)
	}

	g(0, 4, 8, 12, int(s[0]), int(s[1]))
	g(1, 5, 9, 13, int(s[2]), int(s[3]))
	g(2, 6, 10, 14, int(s[4]), int(s[5]))
	g(3, 7, 11, 15, int(s[6]), int(s[7]))
	g(0, 5, 10, 15, int(s[8]), int(s[9]))
	g(1, 6, 11, 12, int(s[10]), int(s[11]))
	g(2, 7, 8, 13, int(s[12]), int(s[13]))
	g(3, 4, 9, 14, int(s[14]), int(s[15]))
}

// blake2sCompress runs the 10-round Blake2s compression function on an
// 8-word state with a 16-word message block, folding the working vector
// back into the state on exit.
func blake2sCompress(h [8]uint32, m [16]uint32, countLow, countHigh, lastBlock, lastNode uint32) [8]uint32 {
	v := [16]uint32{
		h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7],
		blake2sIV[0], blake2sIV[1], blake2sIV[2], blake2sIV[3],
		blake2sIV[4] ^ countLow, blake2sIV[5] ^ countHigh,
		blake2sIV[6] ^ lastBlock, blake2sIV[7] ^ lastNode,
	}

	for r := 0; r < 10; r++ {
		blake2sRound(&v, m, r)
	}

	var out [8]uint32
	for i := 0; i < 8; i++ {
		out[i] = h[i] ^ v[i] ^ v[i+8]
	}
	return out
}
