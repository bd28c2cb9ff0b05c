// Package search implements the two melody search drivers, a generational genetic
// algorithm and simulated annealing, together with the selection and variation
// operators they share.
//
// Drivers are single-threaded and synchronous. All randomness comes from an explicit
// *rand.Rand so a fixed seed reproduces a run exactly.
package search

import (
	"fmt"
	"math/rand/v2"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// Algorithm keys accepted by the CLI and used as metric labels.
const (
	AlgorithmGenetic   = "melody"
	AlgorithmAnnealing = "annealing"
)

// Evaluator scores a pitch sequence; heuristic.Heuristic satisfies it.
type Evaluator interface {
	Evaluate(pitches []int) float64
}

// Generator is the surface shared by both drivers.
type Generator interface {
	Name() string
	Algorithm() string
	// Run advances the search by exactly generations rounds (iterations for annealing).
	Run(generations int) error
	Evaluate(m models.Melody) float64
	BestMelody() models.Melody
	BestScore() float64
	// InitialBestScore is the best score of the population the driver started from.
	InitialBestScore() float64
	Population() models.Population
	Iteration() int
}

// Step is reported to observers after each generation or annealing iteration.
type Step struct {
	Algorithm    string
	Iteration    int
	BestScore    float64
	CurrentScore float64
	Temperature  float64
	Accepted     bool
}

type Observer interface {
	OnStep(Step)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Step)

func (f ObserverFunc) OnStep(s Step) { f(s) }

// Logger is the subset of pkg/logger the drivers use.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

type options struct {
	rng         *rand.Rand
	mutator     Mutator
	selector    Selector
	population  models.Population
	observers   []Observer
	log         Logger
	temperature float64
	cooling     float64
}

type Option func(*options)

// WithRand supplies the random source.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed is WithRand(NewRand(seed)).
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = NewRand(seed) }
}

func WithMutator(m Mutator) Option {
	return func(o *options) { o.mutator = m }
}

// WithSelector replaces heuristic selection in the genetic driver.
func WithSelector(s Selector) Option {
	return func(o *options) { o.selector = s }
}

// WithPopulation starts from an existing population (for example one loaded from a sink)
// instead of a random one.
func WithPopulation(pop models.Population) Option {
	return func(o *options) { o.population = pop.Clone() }
}

// WithObserver adds an observer; it may be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithTemperature sets the annealing start temperature. Zero gives hill-climbing.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithCooling sets the multiplicative cooling factor applied after every iteration.
func WithCooling(c float64) Option {
	return func(o *options) { o.cooling = c }
}

func buildOptions(opts []Option) *options {
	o := &options{
		mutator:     DefaultMutator(),
		log:         nopLogger{},
		temperature: DefaultTemperature,
		cooling:     DefaultCooling,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = NewRand(0)
	}
	return o
}

func (o *options) notify(s Step) {
	for _, obs := range o.observers {
		obs.OnStep(s)
	}
}

func initialPopulation(o *options, melodies, notes int) (models.Population, error) {
	if o.population == nil {
		if melodies < 0 {
			return nil, fmt.Errorf("%w: melody count %d", ErrInvalidParameter, melodies)
		}
		if notes < 2 {
			return nil, fmt.Errorf("%w: note count %d, need at least 2", ErrInvalidParameter, notes)
		}
		return models.RandomPopulation(o.rng, melodies, notes), nil
	}

	pop := o.population
	if err := pop.Validate(-1); err != nil {
		return nil, fmt.Errorf("starting population: %w", err)
	}
	if melodies > 0 && len(pop) != melodies {
		return nil, fmt.Errorf("%w: starting population has %d melodies, expected %d",
			models.ErrShapeMismatch, len(pop), melodies)
	}
	if len(pop) > 0 && ((notes > 0 && pop.NoteCount() != notes) || pop.NoteCount() < 2) {
		return nil, fmt.Errorf("%w: starting population has %d notes per melody, expected %d",
			models.ErrShapeMismatch, pop.NoteCount(), notes)
	}
	return pop, nil
}

// argmax returns the index of the highest score, the lowest index on ties, or -1.
func argmax(scores []float64) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}
