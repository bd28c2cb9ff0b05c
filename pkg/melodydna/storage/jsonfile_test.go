package storage

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melodies.json")
	pop := models.RandomPopulation(rand.New(rand.NewPCG(1, 2)), 12, 8)

	sink := NewJSONFile(path)
	if err := sink.Save(pop); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := sink.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != len(pop) {
		t.Fatalf("Expected %d melodies, got %d", len(pop), len(loaded))
	}
	for id := range pop {
		if loaded[id].String() != pop[id].String() {
			t.Errorf("Melody %d: expected %s, got %s", id, pop[id], loaded[id])
		}
	}
}

func TestJSONFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melodies.json")
	pop := models.Population{{Pitches: []int{60, 62}, Durations: []int{480, 240}}}

	if err := NewJSONFile(path).Save(pop); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	expected := "{\n  \"0\": {\n    \"pitches\": [\n      60,\n      62\n    ],\n    \"durations\": [\n      480,\n      240\n    ]\n  }\n}\n"
	if string(data) != expected {
		t.Errorf("Unexpected file content:\n%s", data)
	}
}

func TestJSONFileRejectsInvalidPopulation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melodies.json")
	bad := models.Population{{Pitches: []int{60, 62}, Durations: []int{480}}}

	if err := NewJSONFile(path).Save(bad); !errors.Is(err, models.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected no file to be written, got %v", err)
	}
}

func TestJSONFileLoadMissing(t *testing.T) {
	_, err := NewJSONFile(filepath.Join(t.TempDir(), "nope.json")).Load()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestDecodePopulationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"not json", `[1,2`, ErrMalformed},
		{"gap in ids", `{"0":{"pitches":[60],"durations":[480]},"2":{"pitches":[60],"durations":[480]}}`, ErrMalformed},
		{"padded id", `{"00":{"pitches":[60],"durations":[480]}}`, ErrMalformed},
		{"unknown field", `{"0":{"pitches":[60],"durations":[480],"velocity":[90]}}`, ErrMalformed},
		{"missing durations", `{"0":{"pitches":[60]}}`, ErrMalformed},
		{"unequal n", `{"0":{"pitches":[60,61],"durations":[480,480]},"1":{"pitches":[60],"durations":[480]}}`, models.ErrShapeMismatch},
		{"out of range", `{"0":{"pitches":[100],"durations":[480]}}`, models.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePopulation([]byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeEmptyPopulation(t *testing.T) {
	pop, err := DecodePopulation([]byte(`{}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(pop) != 0 {
		t.Errorf("Expected empty population, got %d melodies", len(pop))
	}
}
