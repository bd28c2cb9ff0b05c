package heuristic

import (
	"errors"
	"math"
	"sort"
)

type scoreFunc func(h *Heuristic, pitches []int) float64

type pattern struct {
	defaults map[string]float64
	score    scoreFunc
	check    func(params map[string]float64) error
}

var (
	defaultIntervals = []int{4, 3, 5}
	majorScale       = []int{0, 2, 4, 5, 7, 9, 11}
)

var patterns = map[string]pattern{
	"monotonic": {
		defaults: map[string]float64{
			"direction":   1,
			"reward":      1,
			"plateau":     0,
			"penalty":     1,
			"drop_weight": 0.1,
			"max_leap":    12,
			"leap_weight": 0.1,
		},
		score: scoreMonotonic,
		check: checkDirection,
	},
	"arpeggio": {
		defaults: map[string]float64{
			"direction":        1,
			"reward":           1,
			"tolerance_weight": 0.25,
		},
		score: scoreArpeggio,
		check: checkDirection,
	},
	"scale": {
		defaults: map[string]float64{
			"root":       60,
			"in_key":     1,
			"out_of_key": 1,
			"step_bonus": 0.5,
			"max_step":   2,
		},
		score: scoreScale,
	},
	"zigzag": {
		defaults: map[string]float64{
			"reward":   1,
			"penalty":  0.5,
			"min_step": 2,
		},
		score: scoreZigzag,
	},
}

// Patterns lists the registered pattern names.
func Patterns() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkDirection(params map[string]float64) error {
	if d := params["direction"]; d != 1 && d != -1 {
		return errors.New("direction must be 1 or -1")
	}
	return nil
}

// scoreMonotonic rewards every step in the configured direction, penalises steps against it
// in proportion to their size and taxes leaps wider than max_leap.
func scoreMonotonic(h *Heuristic, pitches []int) float64 {
	var (
		dir        = h.params["direction"]
		reward     = h.params["reward"]
		plateau    = h.params["plateau"]
		penalty    = h.params["penalty"]
		dropWeight = h.params["drop_weight"]
		maxLeap    = h.params["max_leap"]
		leapWeight = h.params["leap_weight"]
	)

	score := 0.0
	for j := 1; j < len(pitches); j++ {
		step := dir * float64(pitches[j]-pitches[j-1])
		switch {
		case step > 0:
			score += reward - leapWeight*math.Max(0, step-maxLeap)
		case step == 0:
			score += plateau
		default:
			score -= penalty + dropWeight*(-step)
		}
	}
	return score
}

// scoreArpeggio compares each step with the cycling interval template.
func scoreArpeggio(h *Heuristic, pitches []int) float64 {
	dir := h.params["direction"]
	reward := h.params["reward"]
	tolerance := h.params["tolerance_weight"]

	score := 0.0
	for j := 1; j < len(pitches); j++ {
		target := dir * float64(h.intervals[(j-1)%len(h.intervals)])
		step := float64(pitches[j] - pitches[j-1])
		score += reward - tolerance*math.Abs(step-target)
	}
	return score
}

func scoreScale(h *Heuristic, pitches []int) float64 {
	root := int(h.params["root"])
	inKey := h.params["in_key"]
	outOfKey := h.params["out_of_key"]
	stepBonus := h.params["step_bonus"]
	maxStep := int(h.params["max_step"])

	score := 0.0
	for j, p := range pitches {
		class := ((p-root)%12 + 12) % 12
		if h.scale[class] {
			score += inKey
		} else {
			score -= outOfKey
		}
		if j > 0 {
			d := abs(p - pitches[j-1])
			if d > 0 && d <= maxStep {
				score += stepBonus
			}
		}
	}
	return score
}

func scoreZigzag(h *Heuristic, pitches []int) float64 {
	reward := h.params["reward"]
	penalty := h.params["penalty"]
	minStep := int(h.params["min_step"])

	score := 0.0
	for j := 2; j < len(pitches); j++ {
		prev := pitches[j-1] - pitches[j-2]
		next := pitches[j] - pitches[j-1]
		if abs(prev) >= minStep && abs(next) >= minStep && (prev > 0) != (next > 0) {
			score += reward
		} else {
			score -= penalty
		}
	}
	return score
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
