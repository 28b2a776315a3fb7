// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fri

import (
	"encoding/binary"
	"sort"

	"github.com/luxfi/circlestark/channel"
)

// Queries is a sorted, deduplicated set of positions in [0, 2^LogDomainSize).
type Queries struct {
	LogDomainSize uint32
	Positions     []uint64
}

// GenerateQueries draws nQueries uniform positions in [0, 2^logDomainSize)
// from the channel, sorted and deduplicated. Each candidate position
// consumes a fresh 32-byte draw (only its low 8 bytes are used, the rest
// discarded), matching the channel-consumption pattern of a conformant
// prover: drawing several candidates out of one 32-byte block instead would
// desynchronize the transcript for any n_queries > 1.
func GenerateQueries(ch *channel.Channel, nQueries uint32, logDomainSize uint32) Queries {
	domainSize := uint64(1) << logDomainSize
	seen := map[uint64]bool{}
	var positions []uint64
	for uint32(len(positions)) < nQueries {
		bytes := ch.DrawRandomBytes()
		v := binary.LittleEndian.Uint64(bytes[:8]) % domainSize
		if !seen[v] {
			seen[v] = true
			positions = append(positions, v)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	return Queries{LogDomainSize: logDomainSize, Positions: positions}
}

// Fold shifts every position right by n bits and deduplicates, yielding
// queries on the domain halved n times.
func (q Queries) Fold(n uint32) Queries {
	seen := map[uint64]bool{}
	var out []uint64
	for _, p := range q.Positions {
		shifted := p >> n
		if !seen[shifted] {
			seen[shifted] = true
			out = append(out, shifted)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return Queries{LogDomainSize: q.LogDomainSize - n, Positions: out}
}
