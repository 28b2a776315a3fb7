// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package channel implements the Blake2s-seeded Fiat-Shamir transcript: a
// 32-byte digest plus challenge counter that absorbs commitments and public
// values and emits uniformly distributed field elements and query indices.
package channel

import (
	"encoding/binary"

	"github.com/luxfi/circlestark/field"
	"golang.org/x/crypto/blake2s"
)

// Hash is a 32-byte Blake2s-256 digest, used both as the channel state and
// as the Merkle commitment type.
type Hash [32]byte

// Channel is the Fiat-Shamir transcript. The zero value is a valid fresh
// channel seeded to the all-zero digest.
type Channel struct {
	digest  Hash
	counter uint64
}

// New returns a fresh channel with the all-zero initial digest.
func New() *Channel {
	return &Channel{}
}

// Digest returns the current digest, mostly useful for tests.
func (c *Channel) Digest() Hash { return c.digest }

// MixU64 absorbs n into the digest via Blake2s compress-form: the current
// digest is reinterpreted as the 8-word compression state, n's two 32-bit
// halves are placed in message slots 0 and 1, and compress's folded output
// becomes the new digest. This differs from MixRoot/MixFelts, which hash
// digest||bytes through a fresh Blake2s instance; spec.md's channel
// open-question resolution pins mix_u64 to this compress-form path
// specifically, since it is the one the proof-of-work nonce mix depends on.
func (c *Channel) MixU64(n uint64) {
	var h [8]uint32
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint32(c.digest[i*4 : i*4+4])
	}

	var m [16]uint32
	m[0] = uint32(n)
	m[1] = uint32(n >> 32)

	out := blake2sCompress(h, m, 8, 0, 0xFFFFFFFF, 0)

	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(c.digest[i*4:i*4+4], out[i])
	}
}

// MixRoot absorbs a Merkle root hash into the digest.
func (c *Channel) MixRoot(h Hash) {
	c.digest = hashConcat(c.digest[:], h[:])
}

// MixFelts absorbs the little-endian encoding of every M31 limb of every
// QM31 element (4 limbs per element) into the digest.
func (c *Channel) MixFelts(felts []field.QM31) {
	buf := make([]byte, 0, 16*len(felts))
	for _, f := range felts {
		limbs := f.Limbs()
		for _, limb := range limbs {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], limb.Uint32())
			buf = append(buf, b[:]...)
		}
	}
	c.digest = hashConcat(c.digest[:], buf)
}

// DrawRandomBytes hashes digest||counter_le, replaces the digest with the
// result, increments the counter, and returns the new digest.
func (c *Channel) DrawRandomBytes() [32]byte {
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], c.counter)
	c.digest = hashConcat(c.digest[:], ctr[:])
	c.counter++
	return [32]byte(c.digest)
}

// DrawFelt draws a QM31 by repeatedly drawing 32 bytes, parsing them as 8
// little-endian u32s, and rejecting the whole round if any group is >= 2p
// (retry probability per round is about 2^-28). The accepted groups are
// reduced mod p and the first four become the returned QM31.
func (c *Channel) DrawFelt() field.QM31 {
	for {
		bytes := c.DrawRandomBytes()
		var words [8]uint32
		ok := true
		for i := 0; i < 8; i++ {
			w := binary.LittleEndian.Uint32(bytes[i*4 : i*4+4])
			if w >= 2*field.P {
				ok = false
				break
			}
			words[i] = w
		}
		if !ok {
			continue
		}
		limbs := [4]field.M31{}
		for i := 0; i < 4; i++ {
			limbs[i] = field.NewM31(words[i] % field.P)
		}
		return field.QM31FromM31s(limbs[0], limbs[1], limbs[2], limbs[3])
	}
}

// DrawFelts draws n independent QM31 elements.
func (c *Channel) DrawFelts(n int) []field.QM31 {
	out := make([]field.QM31, n)
	for i := range out {
		out[i] = c.DrawFelt()
	}
	return out
}

// TrailingZeros interprets the low 16 bytes of the digest as a
// little-endian u128 and returns its trailing-zero bit count, used by the
// proof-of-work check.
func (c *Channel) TrailingZeros() uint32 {
	lo := binary.LittleEndian.Uint64(c.digest[0:8])
	hi := binary.LittleEndian.Uint64(c.digest[8:16])
	if lo != 0 {
		return uint32(trailingZeros64(lo))
	}
	if hi != 0 {
		return 64 + uint32(trailingZeros64(hi))
	}
	return 128
}

func trailingZeros64(x uint64) int {
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

func hashConcat(parts ...[]byte) Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashBytes hashes an arbitrary byte slice with Blake2s-256, used by the
// Merkle verifier for leaf and internal node hashing.
func HashBytes(data ...[]byte) Hash {
	return hashConcat(data...)
}
