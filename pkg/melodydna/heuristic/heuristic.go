// Package heuristic scores melodies against a named melodic pattern.
//
// A Heuristic is built once from a Config (JSON or YAML, see Load and Resolve) and is
// read-only afterwards, so Evaluate is deterministic and safe to call from any driver.
package heuristic

import (
	"errors"
	"slices"
)

var errNilConfig = errors.New("config is nil")

// Heuristic computes a fitness for a pitch sequence. Higher is better.
type Heuristic struct {
	cfg       Config
	score     scoreFunc
	params    map[string]float64
	intervals []int
	scale     [12]bool
}

// New builds a Heuristic from a validated configuration.
func New(cfg *Config) (*Heuristic, error) {
	if cfg == nil {
		return nil, &ConfigError{Path: "<nil>", Err: errNilConfig}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: cfg.Name, Err: err}
	}

	h := &Heuristic{
		cfg:       *cfg,
		score:     patterns[cfg.Pattern].score,
		params:    cfg.merged(),
		intervals: slices.Clone(cfg.Intervals),
	}
	if len(h.intervals) == 0 {
		h.intervals = defaultIntervals
	}
	degrees := cfg.Scale
	if len(degrees) == 0 {
		degrees = majorScale
	}
	for _, d := range degrees {
		h.scale[d] = true
	}
	return h, nil
}

// FromRef resolves a path or "builtin:<name>" and builds the Heuristic.
func FromRef(ref string) (*Heuristic, error) {
	cfg, err := Resolve(ref)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Evaluate scores pitches. The slice is never modified.
func (h *Heuristic) Evaluate(pitches []int) float64 {
	if len(pitches) < 2 && h.cfg.Pattern != "scale" {
		return 0
	}
	return h.score(h, pitches)
}

// Pattern returns the configured pattern name.
func (h *Heuristic) Pattern() string { return h.cfg.Pattern }

// Name returns the human readable config name, falling back to the pattern.
func (h *Heuristic) Name() string {
	if h.cfg.Name != "" {
		return h.cfg.Name
	}
	return h.cfg.Pattern
}

// Param returns an effective parameter value (file value or pattern default).
func (h *Heuristic) Param(name string) float64 { return h.params[name] }
