package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Pitch bounds (MIDI note numbers, C3..B5).
const (
	LowPitch  = 48
	HighPitch = 83
)

// Duration bounds in ticks (480 ticks per quarter note).
const (
	MinDuration = 240
	MaxDuration = 1920
)

// Durations is the set new melodies draw their note lengths from.
var Durations = []int{240, 480, 960, 1920}

var (
	ErrShapeMismatch = errors.New("melody shape mismatch")
	ErrOutOfRange    = errors.New("melody value out of range")
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Melody is a monophonic note sequence. Pitches and Durations always have the same length.
type Melody struct {
	Pitches   []int `json:"pitches"`
	Durations []int `json:"durations"`
}

// Len returns the number of notes, or -1 when the two sequences disagree.
func (m Melody) Len() int {
	if len(m.Pitches) != len(m.Durations) {
		return -1
	}
	return len(m.Pitches)
}

// Clone returns a deep copy that shares no backing arrays with m.
func (m Melody) Clone() Melody {
	return Melody{
		Pitches:   append([]int(nil), m.Pitches...),
		Durations: append([]int(nil), m.Durations...),
	}
}

// Validate checks that m has exactly n notes and every value is inside its range.
// Pass n < 0 to only check that the two sequences agree.
func (m Melody) Validate(n int) error {
	if len(m.Pitches) != len(m.Durations) {
		return fmt.Errorf("%w: %d pitches, %d durations", ErrShapeMismatch, len(m.Pitches), len(m.Durations))
	}
	if n >= 0 && len(m.Pitches) != n {
		return fmt.Errorf("%w: expected %d notes, got %d", ErrShapeMismatch, n, len(m.Pitches))
	}
	for i, p := range m.Pitches {
		if p < LowPitch || p > HighPitch {
			return fmt.Errorf("%w: pitch %d at position %d", ErrOutOfRange, p, i)
		}
	}
	for i, d := range m.Durations {
		if d < MinDuration || d > MaxDuration {
			return fmt.Errorf("%w: duration %d at position %d", ErrOutOfRange, d, i)
		}
	}
	return nil
}

// TotalTicks is the summed length of all notes.
func (m Melody) TotalTicks() int {
	total := 0
	for _, d := range m.Durations {
		total += d
	}
	return total
}

func (m Melody) String() string {
	parts := make([]string, len(m.Pitches))
	for i, p := range m.Pitches {
		if i < len(m.Durations) {
			parts[i] = fmt.Sprintf("%s/%d", NoteName(p), m.Durations[i])
		} else {
			parts[i] = NoteName(p)
		}
	}
	return strings.Join(parts, " ")
}

// NoteName formats a MIDI note number, 60 is "C4".
func NoteName(pitch int) string {
	octave := pitch/12 - 1
	return fmt.Sprintf("%s%d", noteNames[((pitch%12)+12)%12], octave)
}

// ClampPitch forces p into [LowPitch, HighPitch].
func ClampPitch(p int) int {
	return min(max(p, LowPitch), HighPitch)
}

// ClampDuration forces d into [MinDuration, MaxDuration].
func ClampDuration(d int) int {
	return min(max(d, MinDuration), MaxDuration)
}

// RandomMelody draws n pitches uniformly from the pitch range and n durations from Durations.
func RandomMelody(rng *rand.Rand, n int) Melody {
	m := Melody{
		Pitches:   make([]int, n),
		Durations: make([]int, n),
	}
	for i := 0; i < n; i++ {
		m.Pitches[i] = LowPitch + rng.IntN(HighPitch-LowPitch+1)
		m.Durations[i] = Durations[rng.IntN(len(Durations))]
	}
	return m
}
