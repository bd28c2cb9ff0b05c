package search

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// Genetic evolves a fixed-size population by selection, one-point crossover and mutation.
type Genetic struct {
	opts       *options
	eval       Evaluator
	selector   Selector
	population models.Population
	generation int

	best             models.Melody
	bestScore        float64
	initialBestScore float64
}

var _ Generator = (*Genetic)(nil)

// NewGenetic creates a driver over melodies x notes. The starting population is scored
// immediately so BestMelody is meaningful before Run.
func NewGenetic(melodies, notes int, eval Evaluator, opts ...Option) (*Genetic, error) {
	if eval == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrInvalidParameter)
	}
	o := buildOptions(opts)
	pop, err := initialPopulation(o, melodies, notes)
	if err != nil {
		return nil, err
	}

	g := &Genetic{
		opts:       o,
		eval:       eval,
		selector:   o.selector,
		population: pop,
		bestScore:  math.Inf(-1),
	}
	if g.selector == nil {
		g.selector = HeuristicSelection{Evaluator: eval}
	}
	g.track(g.scores())
	g.initialBestScore = g.bestScore
	return g, nil
}

func (g *Genetic) Name() string      { return "GeneticSearch" }
func (g *Genetic) Algorithm() string { return AlgorithmGenetic }

// Run evolves exactly generations rounds. The population is replaced only once the next
// one is complete, so an error leaves the previous generation in place.
func (g *Genetic) Run(generations int) error {
	if generations < 0 {
		return fmt.Errorf("%w: generation budget %d", ErrInvalidParameter, generations)
	}
	g.opts.log.Debugf("genetic search: %d generations over %d melodies", generations, len(g.population))

	for i := 0; i < generations; i++ {
		if err := g.step(); err != nil {
			return fmt.Errorf("generation %d: %w", g.generation, err)
		}
	}
	if generations > 0 {
		g.track(g.scores())
	}

	g.opts.log.Debugf("genetic search: best score %.3f after %d generations", g.bestScore, g.generation)
	return nil
}

func (g *Genetic) step() error {
	scores := g.scores()
	g.track(scores)

	winners, err := g.selector.Select(g.population, scores, g.opts.rng)
	if err != nil {
		return err
	}
	if len(winners) < 2 {
		return fmt.Errorf("%w: %d winner(s) from %d melodies", ErrInsufficientWinners, len(winners), len(g.population))
	}

	next := make(models.Population, len(g.population))
	for i := range next {
		a, b := pickParents(winners, g.opts.rng)
		child, err := Crossover(g.population[a], g.population[b], g.opts.rng)
		if err != nil {
			return err
		}
		next[i] = child
	}
	g.population = g.opts.mutator.MutatePopulation(next, g.opts.rng)
	g.generation++

	current := math.Inf(-1)
	if i := argmax(scores); i >= 0 {
		current = scores[i]
	}
	g.opts.notify(Step{
		Algorithm:    AlgorithmGenetic,
		Iteration:    g.generation,
		BestScore:    g.bestScore,
		CurrentScore: current,
		Accepted:     true,
	})
	return nil
}

// pickParents draws two distinct winners uniformly.
func pickParents(winners []int, rng *rand.Rand) (int, int) {
	i := rng.IntN(len(winners))
	j := rng.IntN(len(winners) - 1)
	if j >= i {
		j++
	}
	return winners[i], winners[j]
}

func (g *Genetic) scores() []float64 {
	scores := make([]float64, len(g.population))
	for i, m := range g.population {
		scores[i] = g.Evaluate(m)
	}
	return scores
}

// track records a new best only when a score strictly improves on it.
func (g *Genetic) track(scores []float64) {
	i := argmax(scores)
	if i >= 0 && scores[i] > g.bestScore {
		g.best = g.population[i].Clone()
		g.bestScore = scores[i]
	}
}

func (g *Genetic) Evaluate(m models.Melody) float64 { return g.eval.Evaluate(m.Pitches) }
func (g *Genetic) BestMelody() models.Melody        { return g.best.Clone() }
func (g *Genetic) BestScore() float64               { return g.bestScore }
func (g *Genetic) InitialBestScore() float64        { return g.initialBestScore }
func (g *Genetic) Population() models.Population    { return g.population.Clone() }
func (g *Genetic) Iteration() int                   { return g.generation }
