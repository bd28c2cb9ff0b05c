package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/heuristic"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/metrics"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/storage"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

var validate = validator.New()

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	db      *storage.DBClient
	metrics *metrics.SearchMetrics
	config  *ServerConfig
	log     melodydna.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
	MaxGenerations int
}

// NewServer creates a new server instance
func NewServer(db *storage.DBClient, config *ServerConfig) *Server {
	if config.MaxGenerations <= 0 {
		config.MaxGenerations = DefaultMaxGenerations
	}
	return &Server{
		db:      db,
		metrics: metrics.NewSearchMetrics(),
		config:  config,
		log:     logger.GetLogger().Named("server"),
	}
}

// runSink stores each generated population as a new run and remembers its id.
// Load returns the run named by resumeFrom.
type runSink struct {
	db         *storage.DBClient
	label      string
	resumeFrom string
	runID      string
}

func (s *runSink) Save(pop models.Population) error {
	id, err := s.db.SavePopulation(pop, s.label)
	if err != nil {
		return err
	}
	s.runID = id
	return nil
}

func (s *runSink) Load() (models.Population, error) {
	return s.db.LoadPopulation(s.resumeFrom)
}

// Close is a no-op, the database belongs to the server.
func (s *runSink) Close() error { return nil }

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// decodeRequest reads a size-limited JSON body into dst and validates its tags.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	// Reject oversized bodies and unknown fields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	// Check the struct's validate tags
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// heuristicFor resolves a request's heuristic, defaulting to the builtin monotonic pattern.
func heuristicFor(ref string) (*heuristic.Heuristic, error) {
	if ref == "" {
		ref = melodydna.DefaultHeuristic
	}
	return heuristic.FromRef(ref)
}

// statusFor maps a search or storage error to an HTTP status.
func statusFor(err error) int {
	var cfgErr *heuristic.ConfigError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, melodydna.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrInvalidParameter),
		errors.Is(err, search.ErrInsufficientWinners),
		errors.Is(err, search.ErrEmptyPopulation),
		errors.Is(err, models.ErrShapeMismatch),
		errors.Is(err, models.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) scored(h *heuristic.Heuristic, id int, m models.Melody) MelodyDTO {
	return MelodyDTO{
		ID:        id,
		Pitches:   m.Pitches,
		Durations: m.Durations,
		Notes:     m.String(),
		Score:     h.Evaluate(m.Pitches),
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "MelodyDNA API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":    "GET /health",
			"metrics":   "GET /metrics",
			"patterns":  "GET /api/patterns",
			"generate":  "POST /api/generate",
			"evaluate":  "POST /api/evaluate",
			"runs":      "GET /api/runs",
			"getRun":    "GET /api/runs/{id}",
			"deleteRun": "DELETE /api/runs/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handlePatterns handles GET /api/patterns
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	// Report builtins in the form a request passes them
	builtins := heuristic.Builtins()
	for i, name := range builtins {
		builtins[i] = heuristic.BuiltinPrefix + name
	}
	s.respondJSON(w, http.StatusOK, PatternsResponse{
		Builtins: builtins,
		Patterns: heuristic.Patterns(),
	})
}

// handleGenerate handles POST /api/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Validate request
	var req GenerateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Generations > s.config.MaxGenerations {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("generations %d exceeds the limit of %d", req.Generations, s.config.MaxGenerations))
		return
	}

	// Fill in defaults
	ref := req.Heuristic
	if ref == "" {
		ref = melodydna.DefaultHeuristic
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = search.AlgorithmGenetic
	}
	label := req.Label
	if label == "" {
		label = "api-" + algorithm
	}
	// Every request stores its own run, optionally starting from an earlier one
	sink := &runSink{db: s.db, label: label, resumeFrom: req.ResumeFrom}

	opts := []melodydna.Option{
		melodydna.WithHeuristic(ref),
		melodydna.WithAlgorithm(algorithm),
		melodydna.WithSeed(req.Seed),
		melodydna.WithSink(sink),
		melodydna.WithResume(req.ResumeFrom != ""),
		melodydna.WithLogger(s.log),
		melodydna.WithObserver(s.metrics),
	}
	if req.Temperature != nil {
		opts = append(opts, melodydna.WithTemperature(*req.Temperature))
	}
	if req.Cooling != nil {
		opts = append(opts, melodydna.WithCooling(*req.Cooling))
	}

	// Build the service and run the search
	svc, err := melodydna.NewService(opts...)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	defer svc.Close()

	res, err := svc.Generate(req.Melodies, req.Notes, req.Generations)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Errorf("Generate failed: %v", err)
		}
		s.respondError(w, status, err.Error())
		return
	}

	// Convert to DTOs
	best := MelodyDTO{
		ID:        -1,
		Pitches:   res.BestMelody.Pitches,
		Durations: res.BestMelody.Durations,
		Notes:     res.BestMelody.String(),
		Score:     svc.Evaluate(res.BestMelody),
	}
	s.log.Infof("Run %s stored: %s best %.3f after %d rounds", sink.runID, res.Name, res.BestScore, res.Generations)
	s.respondJSON(w, http.StatusCreated, GenerateResponse{
		RunID:            sink.runID,
		Algorithm:        res.Algorithm,
		Name:             res.Name,
		Heuristic:        res.Heuristic,
		BestMelody:       best,
		BestScore:        res.BestScore,
		InitialBestScore: res.InitialBestScore,
		Generations:      res.Generations,
		Population:       res.Population,
	})
}

// handleEvaluate handles POST /api/evaluate
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Validate request, the melody may have any length
	var req EvaluateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Melody.Validate(-1); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h, err := heuristicFor(req.Heuristic)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, EvaluateResponse{
		Heuristic: h.Name(),
		Score:     h.Evaluate(req.Melody.Pitches),
	})
}

// handleRuns handles GET /api/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runs, err := s.db.ListRuns()
	if err != nil {
		s.log.Errorf("Failed to list runs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve runs")
		return
	}
	// Encode an empty store as [] rather than null
	if runs == nil {
		runs = []storage.Run{}
	}

	s.respondJSON(w, http.StatusOK, ListRunsResponse{
		Runs:  runs,
		Count: len(runs),
	})
}

// handleRun routes requests to /api/runs/{id}
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Run ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRun(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRun(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleGetRun handles GET /api/runs/{id}?heuristic=builtin:<name>
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request, id string) {
	// Only builtin heuristics, the server does not read files for clients
	ref := r.URL.Query().Get("heuristic")
	if ref != "" && !strings.HasPrefix(ref, heuristic.BuiltinPrefix) {
		s.respondError(w, http.StatusBadRequest, "heuristic must be a builtin:<name> reference")
		return
	}
	h, err := heuristicFor(ref)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	// Load run
	pop, err := s.db.LoadPopulation(id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Errorf("Failed to load run %s: %v", id, err)
		}
		s.respondError(w, status, err.Error())
		return
	}

	// Score every melody and track the best
	resp := RunResponse{
		ID:        id,
		Heuristic: h.Name(),
		Melodies:  make([]MelodyDTO, len(pop)),
		Best:      -1,
	}
	for i, m := range pop {
		resp.Melodies[i] = s.scored(h, i, m)
		if resp.Best < 0 || resp.Melodies[i].Score > resp.Melodies[resp.Best].Score {
			resp.Best = i
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleDeleteRun handles DELETE /api/runs/{id}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.db.DeleteRun(id); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Errorf("Failed to delete run %s: %v", id, err)
		}
		s.respondError(w, status, err.Error())
		return
	}

	s.log.Infof("Deleted run %s", id)
	s.respondJSON(w, http.StatusOK, DeleteRunResponse{
		Message: "Run deleted successfully",
		ID:      id,
	})
}
