package search

import (
	"fmt"
	"math"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

const (
	DefaultTemperature = 1.0
	DefaultCooling     = 0.995
	// FrozenTemperature is the floor the schedule cools toward. At or below it only
	// non-worsening neighbours are accepted.
	FrozenTemperature = 1e-9
)

// Annealing walks a single current melody, taken as the best member of the starting
// population, through mutation neighbours under a geometric cooling schedule.
type Annealing struct {
	opts       *options
	eval       Evaluator
	population models.Population
	iteration  int

	currentID    int
	currentScore float64
	temperature  float64

	best             models.Melody
	bestScore        float64
	initialBestScore float64
}

var _ Generator = (*Annealing)(nil)

// NewAnnealing builds the driver. Temperature must be >= 0 and cooling in (0, 1].
func NewAnnealing(melodies, notes int, eval Evaluator, opts ...Option) (*Annealing, error) {
	if eval == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrInvalidParameter)
	}
	o := buildOptions(opts)
	if o.temperature < 0 || math.IsNaN(o.temperature) {
		return nil, fmt.Errorf("%w: temperature %v", ErrInvalidParameter, o.temperature)
	}
	if !(o.cooling > 0 && o.cooling <= 1) {
		return nil, fmt.Errorf("%w: cooling %v outside (0, 1]", ErrInvalidParameter, o.cooling)
	}
	pop, err := initialPopulation(o, melodies, notes)
	if err != nil {
		return nil, err
	}

	a := &Annealing{
		opts:         o,
		eval:         eval,
		population:   pop,
		currentID:    -1,
		currentScore: math.Inf(-1),
		temperature:  o.temperature,
		bestScore:    math.Inf(-1),
	}
	scores := make([]float64, len(pop))
	for i, m := range pop {
		scores[i] = a.Evaluate(m)
	}
	if i := argmax(scores); i >= 0 {
		a.currentID = i
		a.currentScore = scores[i]
		a.best = pop[i].Clone()
		a.bestScore = scores[i]
	}
	a.initialBestScore = a.bestScore
	return a, nil
}

func (a *Annealing) Name() string      { return "AnnealingSearch" }
func (a *Annealing) Algorithm() string { return AlgorithmAnnealing }

// Run performs exactly iterations neighbour proposals.
func (a *Annealing) Run(iterations int) error {
	if iterations < 0 {
		return fmt.Errorf("%w: iteration budget %d", ErrInvalidParameter, iterations)
	}
	if iterations > 0 && a.currentID < 0 {
		return ErrEmptyPopulation
	}
	a.opts.log.Debugf("annealing search: %d iterations from T=%.4g", iterations, a.temperature)

	for i := 0; i < iterations; i++ {
		a.step()
	}

	a.opts.log.Debugf("annealing search: best score %.3f, T=%.4g", a.bestScore, a.temperature)
	return nil
}

func (a *Annealing) step() {
	rng := a.opts.rng
	neighbour := a.opts.mutator.Mutate(a.population[a.currentID], rng)
	score := a.Evaluate(neighbour)
	delta := score - a.currentScore

	accepted := delta >= 0
	if !accepted && a.temperature > FrozenTemperature {
		accepted = rng.Float64() < math.Exp(delta/a.temperature)
	}
	if accepted {
		a.population[a.currentID] = neighbour
		a.currentScore = score
	}
	if score > a.bestScore {
		a.best = neighbour.Clone()
		a.bestScore = score
	}

	a.temperature = max(a.temperature*a.opts.cooling, FrozenTemperature)
	a.iteration++
	a.opts.notify(Step{
		Algorithm:    AlgorithmAnnealing,
		Iteration:    a.iteration,
		BestScore:    a.bestScore,
		CurrentScore: a.currentScore,
		Temperature:  a.temperature,
		Accepted:     accepted,
	})
}

// Temperature is the temperature the next iteration will use.
func (a *Annealing) Temperature() float64 { return a.temperature }

// Current returns the melody being annealed.
func (a *Annealing) Current() models.Melody {
	if a.currentID < 0 {
		return models.Melody{}
	}
	return a.population[a.currentID].Clone()
}

func (a *Annealing) Evaluate(m models.Melody) float64 { return a.eval.Evaluate(m.Pitches) }
func (a *Annealing) BestMelody() models.Melody        { return a.best.Clone() }
func (a *Annealing) BestScore() float64               { return a.bestScore }
func (a *Annealing) InitialBestScore() float64        { return a.initialBestScore }
func (a *Annealing) Population() models.Population    { return a.population.Clone() }
func (a *Annealing) Iteration() int                   { return a.iteration }
