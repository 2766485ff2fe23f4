package zone

import "math/rand"

// shufflePermutation is a per-zone permutation of track indices (1-based),
// fixed at playlist-load time and rotated on each wrap (spec §4.2: "If
// shuffle is on, 'next' draws from a per-zone shuffle permutation fixed at
// playlist-load time and rotated on each wrap").
type shufflePermutation struct {
	order  []int // permutation of [1..n]
	cursor int    // index into order of the currently playing track
}

func newShufflePermutation(trackCount int, rng *rand.Rand) *shufflePermutation {
	order := make([]int, trackCount)
	for i := range order {
		order[i] = i + 1
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	return &shufflePermutation{order: order}
}

// SetCurrent positions the cursor at the given track index, if present.
func (s *shufflePermutation) SetCurrent(trackIndex int) {
	for i, t := range s.order {
		if t == trackIndex {
			s.cursor = i
			return
		}
	}
}

// Next advances the cursor and returns the next track index and whether the
// permutation wrapped (end of list reached).
func (s *shufflePermutation) Next(rng *rand.Rand) (trackIndex int, wrapped bool) {
	s.cursor++
	if s.cursor >= len(s.order) {
		s.cursor = 0
		wrapped = true
		rng.Shuffle(len(s.order), func(i, j int) { s.order[i], s.order[j] = s.order[j], s.order[i] })
	}
	return s.order[s.cursor], wrapped
}

// Previous retreats the cursor and returns the previous track index and
// whether it wrapped to the end.
func (s *shufflePermutation) Previous() (trackIndex int, wrapped bool) {
	s.cursor--
	if s.cursor < 0 {
		s.cursor = len(s.order) - 1
		wrapped = true
	}
	return s.order[s.cursor], wrapped
}
