package main

import (
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/storage"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// Request limits
const (
	// MaxBodyBytes caps JSON request bodies
	MaxBodyBytes = 1 << 20

	// DefaultMaxGenerations is used when ServerConfig.MaxGenerations is unset
	DefaultMaxGenerations = 100000
)

// GenerateRequest is the request body for POST /api/generate
type GenerateRequest struct {
	Melodies    int      `json:"melodies" validate:"min=1,max=1000"`
	Notes       int      `json:"notes" validate:"min=2,max=256"`
	Generations int      `json:"generations" validate:"min=0"`
	Algorithm   string   `json:"algorithm,omitempty" validate:"omitempty,oneof=melody annealing"`
	Heuristic   string   `json:"heuristic,omitempty" validate:"omitempty,startswith=builtin:"`
	Seed        uint64   `json:"seed,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=0"`
	Cooling     *float64 `json:"cooling,omitempty" validate:"omitempty,gt=0,lte=1"`
	Label       string   `json:"label,omitempty" validate:"max=128"`

	// ResumeFrom starts from a stored run instead of a random population
	ResumeFrom string `json:"resume_from,omitempty" validate:"omitempty,uuid"`
}

// GenerateResponse is returned after a search finished and its population was stored
type GenerateResponse struct {
	RunID            string            `json:"run_id"`
	Algorithm        string            `json:"algorithm"`
	Name             string            `json:"name"`
	Heuristic        string            `json:"heuristic"`
	BestMelody       MelodyDTO         `json:"best_melody"`
	BestScore        float64           `json:"best_score"`
	InitialBestScore float64           `json:"initial_best_score"`
	Generations      int               `json:"generations"`
	Population       models.Population `json:"population"`
}

// EvaluateRequest is the request body for POST /api/evaluate
type EvaluateRequest struct {
	Heuristic string        `json:"heuristic,omitempty" validate:"omitempty,startswith=builtin:"`
	Melody    models.Melody `json:"melody"`
}

type EvaluateResponse struct {
	Heuristic string  `json:"heuristic"`
	Score     float64 `json:"score"`
}

// MelodyDTO is a melody with its id, readable note names and score
type MelodyDTO struct {
	ID        int     `json:"id"`
	Pitches   []int   `json:"pitches"`
	Durations []int   `json:"durations"`
	Notes     string  `json:"notes"`
	Score     float64 `json:"score"`
}

// PatternsResponse lists what a request may pass as heuristic
type PatternsResponse struct {
	Builtins []string `json:"builtins"`
	Patterns []string `json:"patterns"`
}

type ListRunsResponse struct {
	Runs  []storage.Run `json:"runs"`
	Count int           `json:"count"`
}

// RunResponse is a stored population scored with the requested heuristic
type RunResponse struct {
	ID        string      `json:"id"`
	Heuristic string      `json:"heuristic"`
	Melodies  []MelodyDTO `json:"melodies"`
	Best      int         `json:"best"`
}

type DeleteRunResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
