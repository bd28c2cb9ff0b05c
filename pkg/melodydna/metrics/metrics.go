// Package metrics exposes search progress as Prometheus metrics.
package metrics

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
	"github.com/himanishpuri/MelodyDNA/pkg/utils"
)

const namespace = "melodydna"

const searchSubsystem = "search"

// SearchMetrics records every step a search driver reports. Each instance owns its
// registry so several runs in one process never collide.
type SearchMetrics struct {
	Registry *prometheus.Registry

	// BestScore is the best heuristic score seen so far.
	// Labels: algorithm (melody, annealing)
	BestScore *prometheus.GaugeVec

	// CurrentScore is the best score of the current generation, or the score of the
	// melody being annealed.
	CurrentScore *prometheus.GaugeVec

	// Temperature is the annealing temperature; genetic runs leave it at 0.
	Temperature *prometheus.GaugeVec

	StepsTotal *prometheus.CounterVec

	// MovesTotal counts annealing proposals.
	// Labels: algorithm, outcome (accepted, rejected)
	MovesTotal *prometheus.CounterVec
}

var _ search.Observer = (*SearchMetrics)(nil)

func NewSearchMetrics() *SearchMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &SearchMetrics{
		Registry: reg,
		BestScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: searchSubsystem,
			Name:      "best_score",
			Help:      "Best heuristic score found so far",
		}, []string{"algorithm"}),
		CurrentScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: searchSubsystem,
			Name:      "current_score",
			Help:      "Score of the current generation or annealing state",
		}, []string{"algorithm"}),
		Temperature: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: searchSubsystem,
			Name:      "temperature",
			Help:      "Current annealing temperature",
		}, []string{"algorithm"}),
		StepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: searchSubsystem,
			Name:      "steps_total",
			Help:      "Generations or annealing iterations completed",
		}, []string{"algorithm"}),
		MovesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: searchSubsystem,
			Name:      "moves_total",
			Help:      "Annealing neighbour proposals by outcome",
		}, []string{"algorithm", "outcome"}),
	}
}

func (m *SearchMetrics) OnStep(s search.Step) {
	m.BestScore.WithLabelValues(s.Algorithm).Set(s.BestScore)
	m.CurrentScore.WithLabelValues(s.Algorithm).Set(s.CurrentScore)
	m.Temperature.WithLabelValues(s.Algorithm).Set(s.Temperature)
	m.StepsTotal.WithLabelValues(s.Algorithm).Inc()

	if s.Algorithm != search.AlgorithmAnnealing {
		return
	}
	outcome := "rejected"
	if s.Accepted {
		outcome = "accepted"
	}
	m.MovesTotal.WithLabelValues(s.Algorithm, outcome).Inc()
}

// WriteTextfile dumps the registry in the text exposition format, for the node
// exporter textfile collector.
func (m *SearchMetrics) WriteTextfile(path string) error {
	if err := utils.MakeDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
