package melodydna

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/audio"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/heuristic"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/storage"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// melodyService is the default implementation of the Service interface.
type melodyService struct {
	heuristic *heuristic.Heuristic
	sink      Sink
	player    Player
	log       Logger
	config    *Config
}

// NewService loads the heuristic once; an invalid heuristic surfaces as *heuristic.ConfigError.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Named("melodydna")
	}

	switch cfg.Algorithm {
	case search.AlgorithmGenetic, search.AlgorithmAnnealing:
	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownAlgorithm,
			cfg.Algorithm, search.AlgorithmGenetic, search.AlgorithmAnnealing)
	}

	h, err := heuristic.FromRef(cfg.HeuristicRef)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debugf("heuristic %s (%s) loaded from %s", h.Name(), h.Pattern(), cfg.HeuristicRef)

	sink := cfg.Sink
	if sink == nil {
		sink, err = NewSink(cfg.SavePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sink %s: %w", cfg.SavePath, err)
		}
	}

	player := cfg.Player
	if player == nil {
		player = audio.NewPlayer()
	}

	return &melodyService{
		heuristic: h,
		sink:      sink,
		player:    player,
		log:       cfg.Logger,
		config:    cfg,
	}, nil
}

func (s *melodyService) Generate(melodies, notes, generations int) (*Result, error) {
	opts := []search.Option{
		search.WithSeed(s.config.Seed),
		search.WithLogger(s.log),
		search.WithTemperature(s.config.Temperature),
		search.WithCooling(s.config.Cooling),
	}
	for _, obs := range s.config.Observers {
		opts = append(opts, search.WithObserver(obs))
	}

	if s.config.Resume {
		pop, err := s.resumePopulation()
		if err != nil {
			return nil, err
		}
		if pop != nil {
			opts = append(opts, search.WithPopulation(pop))
		}
	}

	if s.config.Judge != nil {
		if s.config.Algorithm == search.AlgorithmGenetic {
			opts = append(opts, search.WithSelector(search.TournamentSelection{Judge: s.config.Judge}))
		} else {
			s.log.Warnf("judge ignored: %s search has no selection step", s.config.Algorithm)
		}
	}

	var (
		gen search.Generator
		err error
	)
	switch s.config.Algorithm {
	case search.AlgorithmAnnealing:
		gen, err = search.NewAnnealing(melodies, notes, s.heuristic, opts...)
	default:
		gen, err = search.NewGenetic(melodies, notes, s.heuristic, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", s.config.Algorithm, err)
	}

	s.log.Infof("%s: %d melodies x %d notes, %d rounds, heuristic %s",
		gen.Name(), len(gen.Population()), gen.Population().NoteCount(), generations, s.heuristic.Name())

	if err := gen.Run(generations); err != nil {
		return nil, fmt.Errorf("%s: %w", gen.Name(), err)
	}

	pop := gen.Population()
	if err := s.sink.Save(pop); err != nil {
		return nil, fmt.Errorf("saving population: %w", err)
	}
	s.log.Infof("saved %d melodies, best score %.3f (started at %.3f)",
		len(pop), gen.BestScore(), gen.InitialBestScore())

	return &Result{
		Algorithm:        gen.Algorithm(),
		Name:             gen.Name(),
		Heuristic:        s.heuristic.Name(),
		BestMelody:       gen.BestMelody(),
		BestScore:        gen.BestScore(),
		InitialBestScore: gen.InitialBestScore(),
		Population:       pop,
		Generations:      gen.Iteration(),
	}, nil
}

// resumePopulation returns nil, without error, when the sink holds nothing yet.
func (s *melodyService) resumePopulation() (models.Population, error) {
	pop, err := s.sink.Load()
	switch {
	case err == nil:
		s.log.Infof("resuming from %d saved melodies", len(pop))
		return pop, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, storage.ErrNoRuns):
		s.log.Warnf("nothing to resume from, starting with a random population")
		return nil, nil
	default:
		return nil, fmt.Errorf("loading population to resume: %w", err)
	}
}

func (s *melodyService) Evaluate(m models.Melody) float64 {
	return s.heuristic.Evaluate(m.Pitches)
}

func (s *melodyService) LoadPopulation() (models.Population, error) {
	return s.sink.Load()
}

func (s *melodyService) Play(ctx context.Context, m models.Melody) error {
	return s.player.Play(ctx, m)
}

func (s *melodyService) HeuristicName() string {
	return s.heuristic.Name()
}

func (s *melodyService) Close() error {
	return s.sink.Close()
}
