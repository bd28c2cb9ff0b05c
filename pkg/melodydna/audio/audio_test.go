package audio

import (
	"context"
	"image/png"
	"math"
	"math/cmplx"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/mjibson/go-dsp/fft"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		pitch    int
		expected float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6256},
	}
	for _, tt := range tests {
		if got := Frequency(tt.pitch); math.Abs(got-tt.expected) > 1e-3 {
			t.Errorf("Frequency(%d) = %.4f, expected %.4f", tt.pitch, got, tt.expected)
		}
	}
}

func TestRenderLength(t *testing.T) {
	cfg := DefaultRenderConfig()
	m := models.Melody{Pitches: []int{60, 64}, Durations: []int{480, 960}}

	samples := Render(m, cfg)
	if len(samples) != 11025+22050 {
		t.Errorf("Expected %d samples, got %d", 11025+22050, len(samples))
	}
	for i, s := range samples {
		if s < -1 || s > 1 {
			t.Fatalf("Sample %d out of range: %f", i, s)
		}
	}
	if math.Abs(samples[0]) > 1e-9 || math.Abs(samples[len(samples)-1]) > 1e-9 {
		t.Errorf("Expected notes to start and end silent, got %f and %f", samples[0], samples[len(samples)-1])
	}
}

func TestRenderConfigLength(t *testing.T) {
	m := models.Melody{Pitches: []int{60, 62, 64, 65}, Durations: []int{480, 480, 960, 1920}}

	// 3840 ticks is eight quarters, four seconds at 120 BPM
	if got := DefaultRenderConfig().Length(m); got != 4*time.Second {
		t.Errorf("Expected 4s, got %v", got)
	}

	slow := RenderConfig{TempoBPM: 60}
	if got := slow.Length(m); got != 8*time.Second {
		t.Errorf("Expected 8s at 60 BPM, got %v", got)
	}
}

func TestRenderDominantFrequency(t *testing.T) {
	m := models.Melody{Pitches: []int{69}, Durations: []int{1920}}
	samples := Render(m, DefaultRenderConfig())

	const n = 16384
	frame := samples[8192 : 8192+n]
	spectrum := fft.FFTReal(frame)

	peak := 1
	for k := 1; k < n/2; k++ {
		if cmplx.Abs(spectrum[k]) > cmplx.Abs(spectrum[peak]) {
			peak = k
		}
	}
	freq := float64(peak) * DefaultSampleRate / n
	if math.Abs(freq-440) > 2 {
		t.Errorf("Expected dominant frequency near 440 Hz, got %.1f", freq)
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := []float64{0, 0.5, -0.5, 1, -1, 2}

	if err := WriteWAV(path, samples, 8000); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("Expected a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("Decoding failed: %v", err)
	}
	if dec.SampleRate != 8000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("Unexpected format: %d Hz, %d channels, %d bits", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	expected := []int{0, 16383, -16383, 32767, -32767, 32767}
	if len(buf.Data) != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), len(buf.Data))
	}
	for i, v := range expected {
		if buf.Data[i] != v {
			t.Errorf("Sample %d: expected %d, got %d", i, v, buf.Data[i])
		}
	}
}

func TestReadWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melody.wav")
	m := models.Melody{Pitches: []int{60, 67}, Durations: []int{240, 240}}
	samples := Render(m, DefaultRenderConfig())

	if err := WriteWAV(path, samples, DefaultSampleRate); err != nil {
		t.Fatal(err)
	}
	got, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if rate != DefaultSampleRate || len(got) != len(samples) {
		t.Fatalf("Expected %d samples at %d Hz, got %d at %d", len(samples), DefaultSampleRate, len(got), rate)
	}
	for i := range got {
		if math.Abs(got[i]-samples[i]) > 1e-3 {
			t.Fatalf("Sample %d: expected %f, got %f", i, samples[i], got[i])
		}
	}
}

func TestSaveSpectrogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img", "best.png")
	m := models.Melody{Pitches: []int{60, 64, 67, 72}, Durations: []int{480, 480, 480, 480}}

	if err := SaveSpectrogram(path, Render(m, DefaultRenderConfig()), DefaultSampleRate); err != nil {
		t.Fatalf("SaveSpectrogram failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Expected a PNG, got %v", err)
	}
	if cfg.Width != SpectrogramWidth || cfg.Height != SpectrogramHeight {
		t.Errorf("Expected %dx%d image, got %dx%d", SpectrogramWidth, SpectrogramHeight, cfg.Width, cfg.Height)
	}

	if err := SaveSpectrogram(path, nil, DefaultSampleRate); err == nil {
		t.Error("Expected an error for empty samples")
	}
}

func TestPlayerRunsCommand(t *testing.T) {
	bin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}
	dir := t.TempDir()
	p := &Player{Command: bin, TempDir: dir}

	m := models.Melody{Pitches: []int{60}, Durations: []int{240}}
	if err := p.Play(context.Background(), m); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected temp WAV to be removed, found %d files", len(entries))
	}
}

func TestPlayerReportsFailure(t *testing.T) {
	bin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}
	p := &Player{Command: bin, TempDir: t.TempDir()}

	m := models.Melody{Pitches: []int{60}, Durations: []int{240}}
	if err := p.Play(context.Background(), m); err == nil {
		t.Error("Expected an error from a failing player")
	}
}

func TestNewPlayerFromEnv(t *testing.T) {
	t.Setenv(EnvPlayer, "aplay")
	if p := NewPlayer(); p.Command != "aplay" {
		t.Errorf("Expected aplay, got %s", p.Command)
	}
	t.Setenv(EnvPlayer, "")
	if p := NewPlayer(); p.Command != DefaultPlayer {
		t.Errorf("Expected %s, got %s", DefaultPlayer, p.Command)
	}
}
