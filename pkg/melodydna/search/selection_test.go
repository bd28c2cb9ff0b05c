package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

func flatPopulation(m int) models.Population {
	pop := make(models.Population, m)
	for i := range pop {
		pop[i] = models.Melody{Pitches: repeat(48+i, 4), Durations: repeat(480, 4)}
	}
	return pop
}

func TestHeuristicSelectionKeepsBestHalf(t *testing.T) {
	pop := flatPopulation(6)
	scores := []float64{1, 5, 3, 5, 0, 2}

	winners, err := HeuristicSelection{}.Select(pop, scores, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2}, winners)
}

func TestHeuristicSelectionOddPopulation(t *testing.T) {
	winners, err := HeuristicSelection{}.Select(flatPopulation(5), []float64{0, 0, 0, 0, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, winners)
}

func TestHeuristicSelectionScoresWithEvaluator(t *testing.T) {
	eval := evaluatorFunc(func(p []int) float64 { return float64(p[0]) })
	winners, err := HeuristicSelection{Evaluator: eval}.Select(flatPopulation(4), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, winners)
}

func TestHeuristicSelectionErrors(t *testing.T) {
	_, err := HeuristicSelection{}.Select(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPopulation)

	_, err = HeuristicSelection{}.Select(flatPopulation(4), []float64{1}, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPairsCoverEveryID(t *testing.T) {
	pairs := Pairs(NewRand(21), 6)
	require.Len(t, pairs, 3)

	seen := map[int]bool{}
	for _, p := range pairs {
		seen[p[0]] = true
		seen[p[1]] = true
	}
	assert.Len(t, seen, 6)
	assert.Len(t, Pairs(NewRand(21), 7), 3)
}

func TestTournamentSelectionPicksJudgedWinner(t *testing.T) {
	pop := flatPopulation(6)
	// prefer the higher first pitch, i.e. the higher id
	judge := JudgeFunc(func(a, b models.Melody) (int, error) {
		if a.Pitches[0] > b.Pitches[0] {
			return 0, nil
		}
		return 1, nil
	})

	rng := NewRand(23)
	pairs := Pairs(NewRand(23), 6)
	winners, err := TournamentSelection{Judge: judge}.Select(pop, nil, rng)
	require.NoError(t, err)
	require.Len(t, winners, 3)
	for i, p := range pairs {
		assert.Equal(t, max(p[0], p[1]), winners[i])
	}
}

func TestTournamentSelectionReprompts(t *testing.T) {
	calls := 0
	judge := JudgeFunc(func(a, b models.Melody) (int, error) {
		calls++
		if calls%2 == 1 {
			return 7, nil
		}
		return 0, nil
	})

	winners, err := TournamentSelection{Judge: judge}.Select(flatPopulation(4), nil, NewRand(1))
	require.NoError(t, err)
	assert.Len(t, winners, 2)
	assert.Equal(t, 4, calls)
}

func TestTournamentSelectionGivesUp(t *testing.T) {
	calls := 0
	judge := JudgeFunc(func(a, b models.Melody) (int, error) {
		calls++
		return -1, nil
	})

	_, err := TournamentSelection{Judge: judge, MaxAttempts: 2}.Select(flatPopulation(4), nil, NewRand(1))
	assert.ErrorIs(t, err, ErrInvalidWinnerIndex)
	assert.Equal(t, 2, calls)
}

func TestTournamentSelectionWrapsJudgeError(t *testing.T) {
	boom := errors.New("boom")
	judge := JudgeFunc(func(a, b models.Melody) (int, error) { return 0, boom })

	_, err := TournamentSelection{Judge: judge}.Select(flatPopulation(4), nil, NewRand(1))
	assert.ErrorIs(t, err, boom)
}

func TestTournamentSelectionJudgeGetsCopies(t *testing.T) {
	pop := flatPopulation(2)
	judge := JudgeFunc(func(a, b models.Melody) (int, error) {
		a.Pitches[0] = 0
		b.Pitches[0] = 0
		return 0, nil
	})

	_, err := TournamentSelection{Judge: judge}.Select(pop, nil, NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, 48, pop[0].Pitches[0])
	assert.Equal(t, 49, pop[1].Pitches[0])
}

type evaluatorFunc func([]int) float64

func (f evaluatorFunc) Evaluate(p []int) float64 { return f(p) }
