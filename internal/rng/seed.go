// Package rng reproduces the game's hash-seeded random streams.
//
// A stream is derived from up to five numeric components. Each component is
// reduced modulo MaxInt32, the five results are packed little-endian and
// hashed with xxHash32; the hash seeds a subtractive generator (Stream).
package rng

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/OneOfOne/xxhash"
)

const modulus = 2147483647.0

// maxComponents is the number of slots packed into the seed hash.
const maxComponents = 5

// Seed hashes five seed components into the 32-bit generator seed.
func Seed(a, b, c, d, e float64) int32 {
	var buf [maxComponents * 4]byte
	for i, v := range [maxComponents]float64{a, b, c, d, e} {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(reduce(v)))
	}
	return int32(xxhash.Checksum32(buf[:]))
}

// reduce truncates toward zero after taking the remainder, matching a
// double-to-int cast in the game.
func reduce(v float64) int32 {
	return int32(math.Mod(v, modulus))
}

// New builds a stream from one to five components; missing components are 0.
// More than five components is a programming error and panics.
func New(a float64, rest ...float64) *Stream {
	if len(rest) > maxComponents-1 {
		panic(fmt.Sprintf("rng: %d seed components, at most %d allowed", len(rest)+1, maxComponents))
	}
	var c [maxComponents]float64
	c[0] = a
	copy(c[1:], rest)
	return NewStream(Seed(c[0], c[1], c[2], c[3], c[4]))
}

// DaySave is the per-day stream keyed by days played and game id. The game
// id is halved as a double, so ids 2k and 2k+1 share every day-save stream.
func DaySave(daysPlayed int, gameID uint64, extra ...float64) *Stream {
	if len(extra) > maxComponents-2 {
		panic(fmt.Sprintf("rng: %d extra day-save components, at most %d allowed", len(extra), maxComponents-2))
	}
	var c [maxComponents]float64
	c[0] = float64(daysPlayed)
	c[1] = float64(gameID) / 2.0
	copy(c[2:], extra)
	return NewStream(Seed(c[0], c[1], c[2], c[3], c[4]))
}

// DaySaveSeed returns the generator seed DaySave would use, for callers that
// Reset a Stream they already own.
func DaySaveSeed(daysPlayed int, gameID uint64) int32 {
	return Seed(float64(daysPlayed), float64(gameID)/2.0, 0, 0, 0)
}
