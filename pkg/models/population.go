package models

import (
	"fmt"
	"math/rand/v2"
)

// Population maps a stable id (the slice index) to a melody.
type Population []Melody

// Clone deep-copies every melody.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, m := range p {
		out[i] = m.Clone()
	}
	return out
}

// NoteCount returns N, the shared note count, or 0 for an empty population.
func (p Population) NoteCount() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0].Pitches)
}

// Validate checks every melody has n notes (n < 0 means "same as the first melody").
func (p Population) Validate(n int) error {
	if n < 0 {
		n = p.NoteCount()
	}
	for id, m := range p {
		if err := m.Validate(n); err != nil {
			return fmt.Errorf("melody %d: %w", id, err)
		}
	}
	return nil
}

// RandomPopulation builds m random melodies of n notes each.
func RandomPopulation(rng *rand.Rand, m, n int) Population {
	pop := make(Population, m)
	for i := range pop {
		pop[i] = RandomMelody(rng, n)
	}
	return pop
}
