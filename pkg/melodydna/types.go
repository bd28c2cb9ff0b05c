package melodydna

import "github.com/himanishpuri/MelodyDNA/pkg/models"

// Result is the outcome of one Generate call.
type Result struct {
	Algorithm        string            // "melody" or "annealing"
	Name             string            // driver name, e.g. "GeneticSearch"
	Heuristic        string            // heuristic name
	BestMelody       models.Melody     // best melody ever evaluated
	BestScore        float64           // its heuristic score
	InitialBestScore float64           // best score of the starting population
	Population       models.Population // final population, as saved
	Generations      int               // rounds actually run
}

// Improvement is how far the search moved the best score.
func (r *Result) Improvement() float64 {
	return r.BestScore - r.InitialBestScore
}
