package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
	"github.com/himanishpuri/MelodyDNA/pkg/utils"
)

// ErrMalformed marks a population file whose structure cannot be read back.
var ErrMalformed = errors.New("malformed population file")

// JSONFile stores a population as {"<id>": {"pitches": [...], "durations": [...]}}.
type JSONFile struct {
	Path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Save replaces the file atomically.
func (f *JSONFile) Save(pop models.Population) error {
	if err := pop.Validate(-1); err != nil {
		return fmt.Errorf("refusing to save population: %w", err)
	}

	doc := make(map[string]models.Melody, len(pop))
	for id, m := range pop {
		doc[strconv.Itoa(id)] = m
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding population: %w", err)
	}

	return utils.WriteFileAtomic(f.Path, func(out *os.File) error {
		if _, err := out.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
		return nil
	})
}

// Load reads the file back. Ids must be exactly 0..M-1 and all melodies must share N.
func (f *JSONFile) Load() (models.Population, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return DecodePopulation(data)
}

func (f *JSONFile) Close() error { return nil }

// DecodePopulation parses the JSON population document.
func DecodePopulation(data []byte) (models.Population, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	pop := make(models.Population, len(doc))
	seen := make([]bool, len(doc))
	for key, raw := range doc {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 || id >= len(doc) || strconv.Itoa(id) != key {
			return nil, fmt.Errorf("%w: id %q is not in 0..%d", ErrMalformed, key, len(doc)-1)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformed, id)
		}
		seen[id] = true

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		var m models.Melody
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: melody %d: %v", ErrMalformed, id, err)
		}
		if m.Pitches == nil || m.Durations == nil {
			return nil, fmt.Errorf("%w: melody %d lacks pitches or durations", ErrMalformed, id)
		}
		pop[id] = m
	}

	if err := pop.Validate(-1); err != nil {
		return nil, err
	}
	return pop, nil
}
