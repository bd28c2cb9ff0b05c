package melodydna

import (
	"context"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

type Service interface {
	// Generate runs the configured search for generations rounds and saves the final
	// population to the sink.
	Generate(melodies, notes, generations int) (*Result, error)
	Evaluate(m models.Melody) float64
	LoadPopulation() (models.Population, error)
	Play(ctx context.Context, m models.Melody) error
	HeuristicName() string
	Close() error
}

// Sink persists populations. Load returns the most recently saved one.
type Sink interface {
	Save(pop models.Population) error
	Load() (models.Population, error)
	Close() error
}

type Player interface {
	Play(ctx context.Context, m models.Melody) error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
