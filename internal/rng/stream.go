package rng

import "math"

const (
	mbig  = math.MaxInt32
	mseed = 161803398
)

// Stream is the seeded subtractive generator the game uses (System.Random
// with an explicit seed). Every method consumes draws in exactly the same
// order as the game does, so a Stream stays comparable draw for draw.
//
// The zero value is not usable; call Reset or NewStream.
type Stream struct {
	seedArray [56]int32
	inext     int32
	inextp    int32
	draws     int
}

// NewStream returns a stream seeded with seed.
func NewStream(seed int32) *Stream {
	s := &Stream{}
	s.Reset(seed)
	return s
}

// Reset reseeds s in place. Callers on hot paths keep a Stream value in their
// scratch state and Reset it instead of allocating a new one.
func (s *Stream) Reset(seed int32) {
	var subtraction int32
	if seed == math.MinInt32 {
		subtraction = math.MaxInt32
	} else {
		subtraction = seed
		if subtraction < 0 {
			subtraction = -subtraction
		}
	}

	mj := mseed - subtraction
	s.seedArray[0] = 0
	s.seedArray[55] = mj
	mk := int32(1)
	ii := 0
	for i := 1; i < 55; i++ {
		if ii += 21; ii >= 55 {
			ii -= 55
		}
		s.seedArray[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += mbig
		}
		mj = s.seedArray[ii]
	}
	for k := 1; k < 5; k++ {
		for i := 1; i < 56; i++ {
			n := i + 30
			if n >= 55 {
				n -= 55
			}
			s.seedArray[i] -= s.seedArray[1+n]
			if s.seedArray[i] < 0 {
				s.seedArray[i] += mbig
			}
		}
	}
	s.inext = 0
	s.inextp = 21
	s.draws = 0
}

// Draws reports how many raw samples have been consumed since the last seed.
func (s *Stream) Draws() int { return s.draws }

func (s *Stream) internalSample() int32 {
	s.draws++
	locINext := s.inext + 1
	if locINext >= 56 {
		locINext = 1
	}
	locINextp := s.inextp + 1
	if locINextp >= 56 {
		locINextp = 1
	}
	ret := s.seedArray[locINext] - s.seedArray[locINextp]
	if ret == mbig {
		ret--
	}
	if ret < 0 {
		ret += mbig
	}
	s.seedArray[locINext] = ret
	s.inext = locINext
	s.inextp = locINextp
	return ret
}

func (s *Stream) sample() float64 {
	return float64(s.internalSample()) * (1.0 / mbig)
}

// largeSample spreads two raw samples over the full int range. Used only
// when a requested range does not fit in an int32.
func (s *Stream) largeSample() float64 {
	result := s.internalSample()
	if s.internalSample()%2 == 0 {
		result = -result
	}
	d := float64(result)
	d += mbig - 1
	d /= 2.0*mbig - 1
	return d
}

// NextInt32 returns a non-negative value in [0, MaxInt32).
func (s *Stream) NextInt32() int32 {
	return s.internalSample()
}

// Intn returns a value in [0, n). It panics if n < 0; Intn(0) is 0 and still
// consumes a draw.
func (s *Stream) Intn(n int) int {
	if n < 0 {
		panic("rng: Intn called with negative bound")
	}
	return int(s.sample() * float64(n))
}

// IntRange returns a value in [lo, hi). Both bounds must fit in an int32.
func (s *Stream) IntRange(lo, hi int) int {
	if lo > hi {
		panic("rng: IntRange called with lo > hi")
	}
	r := int64(hi) - int64(lo)
	if r <= mbig {
		return int(s.sample()*float64(r)) + lo
	}
	return int(int64(s.largeSample()*float64(r)) + int64(lo))
}

// Float64 returns a value in [0.0, 1.0).
func (s *Stream) Float64() float64 {
	return s.sample()
}

// ChooseOne picks a uniform element of list. It reports false, without
// consuming a draw, when list is empty.
func ChooseOne[T any](s *Stream, list []T) (T, bool) {
	var zero T
	if len(list) == 0 {
		return zero, false
	}
	return list[s.Intn(len(list))], true
}

// Shuffle permutes list in place, walking from the end and swapping each
// position with a uniformly chosen earlier-or-equal one.
func Shuffle[T any](s *Stream, list []T) {
	j := len(list)
	for j > 1 {
		i := s.Intn(j)
		j--
		list[j], list[i] = list[i], list[j]
	}
}
