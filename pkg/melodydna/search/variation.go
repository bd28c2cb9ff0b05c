package search

import (
	"fmt"
	"math/rand/v2"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

const (
	DefaultPitchRate    = 0.05
	DefaultDurationRate = 0.05
)

// DefaultStepWeights is the probability of a pitch step of 1..12 semitones.
var DefaultStepWeights = []float64{0.45, 0.20, 0.10, 0.05, 0.05, 0.05, 0.03, 0.02, 0.02, 0.01, 0.01, 0.01}

// Crossover splits both parents at a uniform point in [1, N-1] and joins a's head to b's tail.
func Crossover(a, b models.Melody, rng *rand.Rand) (models.Melody, error) {
	n, err := crossoverShape(a, b)
	if err != nil {
		return models.Melody{}, err
	}
	return CrossoverAt(a, b, 1+rng.IntN(n-1))
}

// CrossoverAt is Crossover with an explicit split index k.
func CrossoverAt(a, b models.Melody, k int) (models.Melody, error) {
	n, err := crossoverShape(a, b)
	if err != nil {
		return models.Melody{}, err
	}
	if k < 1 || k > n-1 {
		return models.Melody{}, fmt.Errorf("%w: split %d outside [1, %d]", models.ErrShapeMismatch, k, n-1)
	}

	child := models.Melody{
		Pitches:   make([]int, n),
		Durations: make([]int, n),
	}
	copy(child.Pitches, a.Pitches[:k])
	copy(child.Pitches[k:], b.Pitches[k:])
	copy(child.Durations, a.Durations[:k])
	copy(child.Durations[k:], b.Durations[k:])
	return child, nil
}

func crossoverShape(a, b models.Melody) (int, error) {
	n := a.Len()
	if n < 0 || b.Len() != n {
		return 0, fmt.Errorf("%w: parents have %d/%d and %d/%d notes", models.ErrShapeMismatch,
			len(a.Pitches), len(a.Durations), len(b.Pitches), len(b.Durations))
	}
	if n < 2 {
		return 0, fmt.Errorf("%w: crossover needs at least 2 notes, got %d", models.ErrShapeMismatch, n)
	}
	return n, nil
}

// Mutator perturbs pitches and durations position by position.
type Mutator struct {
	PitchRate    float64
	DurationRate float64
	// StepWeights[i] is the relative weight of a step of i+1 semitones.
	StepWeights []float64
	// Sign forces the step direction when +1 or -1; 0 picks it uniformly.
	Sign int
}

// DefaultMutator uses 5% per-position rates and DefaultStepWeights.
func DefaultMutator() Mutator {
	return Mutator{
		PitchRate:    DefaultPitchRate,
		DurationRate: DefaultDurationRate,
		StepWeights:  DefaultStepWeights,
	}
}

// Mutate returns a mutated copy of m; m itself is left untouched.
func (mu Mutator) Mutate(m models.Melody, rng *rand.Rand) models.Melody {
	out := m.Clone()
	for j := range out.Pitches {
		if rng.Float64() < mu.PitchRate {
			out.Pitches[j] = models.ClampPitch(out.Pitches[j] + mu.step(rng))
		}
		if j < len(out.Durations) && rng.Float64() < mu.DurationRate {
			out.Durations[j] = models.ClampDuration(scaleDuration(out.Durations[j], rng))
		}
	}
	return out
}

// MutatePopulation mutates every melody into a new population.
func (mu Mutator) MutatePopulation(pop models.Population, rng *rand.Rand) models.Population {
	out := make(models.Population, len(pop))
	for i, m := range pop {
		out[i] = mu.Mutate(m, rng)
	}
	return out
}

func (mu Mutator) step(rng *rand.Rand) int {
	weights := mu.StepWeights
	if len(weights) == 0 {
		weights = DefaultStepWeights
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}

	magnitude := len(weights)
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			magnitude = i + 1
			break
		}
		x -= w
	}

	sign := mu.Sign
	if sign != 1 && sign != -1 {
		sign = 2*rng.IntN(2) - 1
	}
	return sign * magnitude
}

// scaleDuration doubles or halves d, truncating toward zero.
func scaleDuration(d int, rng *rand.Rand) int {
	if rng.IntN(2) == 0 {
		return d * 2
	}
	return int(float64(d) * 0.5)
}
