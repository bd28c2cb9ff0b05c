package search

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// DefaultJudgeAttempts bounds how often a judge is re-asked about one pair.
const DefaultJudgeAttempts = 3

// Selector picks the ids of the melodies allowed to breed.
// scores is aligned with pop and may be nil when the selector does not need it.
type Selector interface {
	Select(pop models.Population, scores []float64, rng *rand.Rand) ([]int, error)
}

// HeuristicSelection keeps the best-scoring half of the population.
type HeuristicSelection struct {
	// Evaluator scores the population when Select is called without scores.
	Evaluator Evaluator
}

// Select returns floor(M/2) ids ordered by descending score; lower ids win ties.
func (s HeuristicSelection) Select(pop models.Population, scores []float64, _ *rand.Rand) ([]int, error) {
	if len(pop) == 0 {
		return nil, ErrEmptyPopulation
	}
	if scores == nil {
		if s.Evaluator == nil {
			return nil, errors.New("heuristic selection needs scores or an evaluator")
		}
		scores = make([]float64, len(pop))
		for i, m := range pop {
			scores[i] = s.Evaluator.Evaluate(m.Pitches)
		}
	}
	if len(scores) != len(pop) {
		return nil, fmt.Errorf("%w: %d scores for %d melodies", ErrInvalidParameter, len(scores), len(pop))
	}

	ids := make([]int, len(pop))
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	return ids[:len(pop)/2], nil
}

// Judge names the preferred melody of a pair: 0 for a, 1 for b.
type Judge interface {
	Prefer(a, b models.Melody) (int, error)
}

// JudgeFunc adapts a function to Judge.
type JudgeFunc func(a, b models.Melody) (int, error)

func (f JudgeFunc) Prefer(a, b models.Melody) (int, error) { return f(a, b) }

// TournamentSelection pairs the population at random and lets a Judge pick each winner.
type TournamentSelection struct {
	Judge Judge
	// MaxAttempts is how many answers a judge gets per pair before the round fails.
	MaxAttempts int
}

// Pairs shuffles the ids 0..m-1 and groups them two by two. With odd m the last id sits out.
func Pairs(rng *rand.Rand, m int) [][2]int {
	perm := rng.Perm(m)
	pairs := make([][2]int, 0, m/2)
	for i := 0; i+1 < m; i += 2 {
		pairs = append(pairs, [2]int{perm[i], perm[i+1]})
	}
	return pairs
}

// Select ignores scores and returns one winner per pair.
func (s TournamentSelection) Select(pop models.Population, _ []float64, rng *rand.Rand) ([]int, error) {
	if len(pop) == 0 {
		return nil, ErrEmptyPopulation
	}
	if s.Judge == nil {
		return nil, errors.New("tournament selection needs a judge")
	}
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultJudgeAttempts
	}

	pairs := Pairs(rng, len(pop))
	winners := make([]int, 0, len(pairs))
	for _, pair := range pairs {
		w, err := s.judge(pop, pair, attempts)
		if err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return winners, nil
}

func (s TournamentSelection) judge(pop models.Population, pair [2]int, attempts int) (int, error) {
	last := -1
	for i := 0; i < attempts; i++ {
		idx, err := s.Judge.Prefer(pop[pair[0]].Clone(), pop[pair[1]].Clone())
		if err != nil {
			return 0, fmt.Errorf("judging melodies %d and %d: %w", pair[0], pair[1], err)
		}
		if idx == 0 || idx == 1 {
			return pair[idx], nil
		}
		last = idx
	}
	return 0, fmt.Errorf("%w: %d for melodies %d and %d after %d attempts",
		ErrInvalidWinnerIndex, last, pair[0], pair[1], attempts)
}
