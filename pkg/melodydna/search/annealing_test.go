package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnealingHillClimbsAtZeroTemperature(t *testing.T) {
	var steps []Step
	a, err := NewAnnealing(4, 8, monotonic(t), WithSeed(12), WithTemperature(0),
		WithObserver(ObserverFunc(func(s Step) { steps = append(steps, s) })))
	require.NoError(t, err)
	require.NoError(t, a.Run(300))

	require.Len(t, steps, 300)
	prev := a.InitialBestScore()
	for _, s := range steps {
		assert.GreaterOrEqual(t, s.CurrentScore, prev, "iteration %d accepted a worse neighbour", s.Iteration)
		prev = s.CurrentScore
	}
	assert.Equal(t, a.BestScore(), a.Evaluate(a.Current()))
}

func TestAnnealingBestScoreNeverDecreases(t *testing.T) {
	var steps []Step
	a, err := NewAnnealing(6, 8, monotonic(t), WithSeed(4), WithTemperature(5),
		WithObserver(ObserverFunc(func(s Step) { steps = append(steps, s) })))
	require.NoError(t, err)
	require.NoError(t, a.Run(500))

	prev := a.InitialBestScore()
	for _, s := range steps {
		assert.Equal(t, AlgorithmAnnealing, s.Algorithm)
		assert.GreaterOrEqual(t, s.BestScore, prev)
		assert.GreaterOrEqual(t, s.BestScore, s.CurrentScore)
		prev = s.BestScore
	}
	assert.Equal(t, a.BestScore(), a.Evaluate(a.BestMelody()))
	assert.NoError(t, a.Population().Validate(8))
}

func TestAnnealingCools(t *testing.T) {
	a, err := NewAnnealing(2, 4, monotonic(t), WithSeed(1), WithTemperature(2), WithCooling(0.5))
	require.NoError(t, err)
	require.NoError(t, a.Run(3))
	assert.InDelta(t, 0.25, a.Temperature(), 1e-12)

	require.NoError(t, a.Run(200))
	assert.Equal(t, FrozenTemperature, a.Temperature())
	assert.Equal(t, 203, a.Iteration())
}

func TestAnnealingStartsFromBestMember(t *testing.T) {
	start := flatPopulation(3)
	start[1].Pitches = []int{60, 62, 64, 65}
	a, err := NewAnnealing(0, 0, monotonic(t), WithPopulation(start))
	require.NoError(t, err)

	assert.Equal(t, start[1], a.Current())
	assert.Equal(t, 3.0, a.InitialBestScore())
}

func TestAnnealingErrors(t *testing.T) {
	h := monotonic(t)

	_, err := NewAnnealing(4, 8, h, WithTemperature(-1))
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewAnnealing(4, 8, h, WithCooling(0))
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewAnnealing(4, 8, h, WithCooling(1.5))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	a, err := NewAnnealing(4, 8, h)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Run(-3), ErrInvalidParameter)

	empty, err := NewAnnealing(0, 8, h)
	require.NoError(t, err)
	assert.ErrorIs(t, empty.Run(1), ErrEmptyPopulation)
	assert.NoError(t, empty.Run(0))
}
