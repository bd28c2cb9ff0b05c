package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/himanishpuri/MelodyDNA/pkg/utils"
)

const (
	bitDepth      = 16
	wavFormatPCM  = 1
	maxSampleBits = 1<<(bitDepth-1) - 1
)

// WriteWAV stores samples as 16-bit mono PCM. Values outside [-1, 1] are clipped.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(max(-1, min(1, s)) * maxSampleBits)
	}

	return utils.WriteFileAtomic(path, func(f *os.File) error {
		enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, wavFormatPCM)
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("encoding wav: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("finalizing wav: %w", err)
		}
		return nil
	})
}

// ReadWAV decodes a PCM WAV file into samples normalized to [-1, 1]. Multi-channel
// files are downmixed by averaging.
func ReadWAV(path string) ([]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading samples: %w", err)
	}

	chans := int(decoder.NumChans)
	if chans < 1 {
		chans = 1
	}
	maxVal := float64(int(1) << (uint(decoder.BitDepth) - 1))
	samples := make([]float64, len(buf.Data)/chans)
	for i := range samples {
		sum := 0
		for c := 0; c < chans; c++ {
			sum += buf.Data[i*chans+c]
		}
		samples[i] = float64(sum) / float64(chans) / maxVal
	}
	return samples, int(decoder.SampleRate), nil
}
