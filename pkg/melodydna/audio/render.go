// Package audio turns melodies into sound: sample rendering, WAV files, playback
// through an external player and spectrogram images.
package audio

import (
	"math"
	"time"

	"github.com/mjibson/go-dsp/window"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

const (
	TicksPerQuarter   = 480
	DefaultSampleRate = 22050
	DefaultTempoBPM   = 120
)

type RenderConfig struct {
	SampleRate int
	TempoBPM   float64
	// Amplitude is the peak level in [0, 1].
	Amplitude float64
	// Harmonic is the level of the second harmonic relative to the fundamental.
	Harmonic float64
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		SampleRate: DefaultSampleRate,
		TempoBPM:   DefaultTempoBPM,
		Amplitude:  0.6,
		Harmonic:   0.3,
	}
}

func (c RenderConfig) withDefaults() RenderConfig {
	d := DefaultRenderConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.TempoBPM <= 0 {
		c.TempoBPM = d.TempoBPM
	}
	if c.Amplitude <= 0 {
		c.Amplitude = d.Amplitude
	}
	if c.Harmonic < 0 {
		c.Harmonic = 0
	}
	return c
}

// Frequency is the equal-tempered frequency of a MIDI pitch, A4 (69) = 440 Hz.
func Frequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// TicksToSamples converts a note length to a sample count.
func (c RenderConfig) TicksToSamples(ticks int) int {
	c = c.withDefaults()
	seconds := float64(ticks) / TicksPerQuarter * 60 / c.TempoBPM
	return int(math.Round(seconds * float64(c.SampleRate)))
}

// Length is how long m plays at the configured tempo.
func (c RenderConfig) Length(m models.Melody) time.Duration {
	c = c.withDefaults()
	return time.Duration(float64(c.TicksToSamples(m.TotalTicks())) / float64(c.SampleRate) * float64(time.Second))
}

// Render synthesizes m as mono samples in [-1, 1]. Each note is a sine plus its second
// harmonic, shaped by a Hann window so notes start and end at silence.
func Render(m models.Melody, cfg RenderConfig) []float64 {
	cfg = cfg.withDefaults()

	total := 0
	for _, d := range m.Durations {
		total += cfg.TicksToSamples(d)
	}
	out := make([]float64, 0, total)

	rate := float64(cfg.SampleRate)
	norm := cfg.Amplitude / (1 + cfg.Harmonic)
	for i, p := range m.Pitches {
		if i >= len(m.Durations) {
			break
		}
		n := cfg.TicksToSamples(m.Durations[i])
		if n == 0 {
			continue
		}
		env := envelope(n)
		w := 2 * math.Pi * Frequency(p) / rate
		for k := 0; k < n; k++ {
			x := float64(k) * w
			out = append(out, norm*env[k]*(math.Sin(x)+cfg.Harmonic*math.Sin(2*x)))
		}
	}
	return out
}

func envelope(n int) []float64 {
	if n < 2 {
		return []float64{1}
	}
	return window.Hann(n)
}
