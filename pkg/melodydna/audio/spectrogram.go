package audio

import (
	"errors"
	"image"
	"image/draw"
	"path/filepath"

	"github.com/eligwz/spectrogram"

	"github.com/himanishpuri/MelodyDNA/pkg/utils"
)

const (
	SpectrogramWidth  = 1024
	SpectrogramHeight = 256
)

// SaveSpectrogram draws a magnitude spectrogram of samples to a PNG at path.
func SaveSpectrogram(path string, samples []float64, sampleRate int) error {
	if len(samples) == 0 {
		return errors.New("no samples to draw")
	}
	if err := utils.MakeDir(filepath.Dir(path)); err != nil {
		return err
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, SpectrogramWidth, SpectrogramHeight))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, linear magnitude
	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(SpectrogramHeight),
		false,
		false,
		true,
		false,
	)

	return spectrogram.SavePng(img, path)
}
