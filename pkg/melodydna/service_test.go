package melodydna

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/heuristic"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

func quietLogger() Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

// setupTestService creates a service saving to a JSON file in a temp dir
func setupTestService(t *testing.T, opts ...Option) (Service, string) {
	t.Helper()

	savePath := filepath.Join(t.TempDir(), "melodies.json")
	base := []Option{WithSavePath(savePath), WithSeed(7), WithLogger(quietLogger())}

	svc, err := NewService(append(base, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}
	t.Cleanup(func() {
		svc.Close()
	})
	return svc, savePath
}

func TestGenerateSavesPopulation(t *testing.T) {
	svc, savePath := setupTestService(t)

	res, err := svc.Generate(6, 8, 30)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Algorithm != search.AlgorithmGenetic {
		t.Errorf("Expected algorithm %s, got %s", search.AlgorithmGenetic, res.Algorithm)
	}
	if res.Generations != 30 {
		t.Errorf("Expected 30 generations, got %d", res.Generations)
	}
	if res.BestScore < res.InitialBestScore {
		t.Errorf("Best score %f fell below initial %f", res.BestScore, res.InitialBestScore)
	}
	if got := res.Improvement(); got != res.BestScore-res.InitialBestScore || got < 0 {
		t.Errorf("Expected improvement %f, got %f", res.BestScore-res.InitialBestScore, got)
	}
	if got := svc.Evaluate(res.BestMelody); got != res.BestScore {
		t.Errorf("Expected best melody to score %f, got %f", res.BestScore, got)
	}

	if _, err := os.Stat(savePath); err != nil {
		t.Fatalf("Expected population file at %s: %v", savePath, err)
	}
	loaded, err := svc.LoadPopulation()
	if err != nil {
		t.Fatalf("LoadPopulation failed: %v", err)
	}
	if len(loaded) != 6 || loaded.NoteCount() != 8 {
		t.Fatalf("Expected 6x8 population, got %dx%d", len(loaded), loaded.NoteCount())
	}
	for id := range loaded {
		if loaded[id].String() != res.Population[id].String() {
			t.Errorf("Melody %d differs after reload", id)
		}
	}
}

func TestGenerateAnnealing(t *testing.T) {
	svc, _ := setupTestService(t, WithAlgorithm(search.AlgorithmAnnealing), WithTemperature(0))

	res, err := svc.Generate(4, 8, 100)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Algorithm != search.AlgorithmAnnealing || res.Generations != 100 {
		t.Errorf("Unexpected result: %s after %d iterations", res.Algorithm, res.Generations)
	}
	if len(res.Population) != 4 {
		t.Errorf("Expected population of 4, got %d", len(res.Population))
	}
}

func TestGenerateSQLiteSink(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.sqlite3")
	svc, _ := setupTestService(t, WithSavePath(dbPath))

	res, err := svc.Generate(4, 6, 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	loaded, err := svc.LoadPopulation()
	if err != nil {
		t.Fatalf("LoadPopulation failed: %v", err)
	}
	if loaded[3].String() != res.Population[3].String() {
		t.Errorf("Expected %s, got %s", res.Population[3], loaded[3])
	}
}

func TestResume(t *testing.T) {
	savePath := filepath.Join(t.TempDir(), "melodies.json")

	first, err := NewService(WithSavePath(savePath), WithSeed(1), WithLogger(quietLogger()), WithResume(true))
	if err != nil {
		t.Fatal(err)
	}
	// nothing saved yet: starts fresh
	res, err := first.Generate(6, 8, 5)
	if err != nil {
		t.Fatalf("Generate without saved population failed: %v", err)
	}
	first.Close()

	second, err := NewService(WithSavePath(savePath), WithSeed(2), WithLogger(quietLogger()), WithResume(true))
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	startScore := second.Evaluate(res.Population[0])
	for _, m := range res.Population[1:] {
		startScore = max(startScore, second.Evaluate(m))
	}

	resumed, err := second.Generate(6, 8, 0)
	if err != nil {
		t.Fatalf("Resumed Generate failed: %v", err)
	}
	if resumed.InitialBestScore != startScore {
		t.Errorf("Expected resumed run to start at %f, got %f", startScore, resumed.InitialBestScore)
	}

	if _, err := second.Generate(5, 8, 1); !errors.Is(err, models.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for a different melody count, got %v", err)
	}
}

func TestJudgeDrivesSelection(t *testing.T) {
	calls := 0
	judge := search.JudgeFunc(func(a, b models.Melody) (int, error) {
		calls++
		return 0, nil
	})
	svc, _ := setupTestService(t, WithJudge(judge))

	if _, err := svc.Generate(4, 8, 3); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if calls != 6 {
		t.Errorf("Expected 2 judgements per generation, got %d calls", calls)
	}
}

func TestNewServiceErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewService(WithSavePath(filepath.Join(dir, "x.json")), WithAlgorithm("bogus"), WithLogger(quietLogger()))
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}

	_, err = NewService(WithSavePath(filepath.Join(dir, "x.json")), WithHeuristic(filepath.Join(dir, "missing.json")),
		WithLogger(quietLogger()))
	var cfgErr *heuristic.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected *heuristic.ConfigError, got %v", err)
	}
}

type fakePlayer struct {
	played int
}

func (p *fakePlayer) Play(context.Context, models.Melody) error {
	p.played++
	return nil
}

func TestPlayUsesPlayer(t *testing.T) {
	p := &fakePlayer{}
	svc, _ := setupTestService(t, WithPlayer(p))

	m := models.Melody{Pitches: []int{60}, Durations: []int{480}}
	if err := svc.Play(context.Background(), m); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if p.played != 1 {
		t.Errorf("Expected one playback, got %d", p.played)
	}
	if svc.HeuristicName() != "monotonic ascent" {
		t.Errorf("Expected the monotonic builtin, got %s", svc.HeuristicName())
	}
}

func TestNewSinkByExtension(t *testing.T) {
	for _, name := range []string{"a.sqlite", "b.SQLITE3", "c.db"} {
		if !IsSQLitePath(name) {
			t.Errorf("Expected %s to be a SQLite path", name)
		}
	}
	for _, name := range []string{"melodies.json", "out", "x.yaml"} {
		if IsSQLitePath(name) {
			t.Errorf("Expected %s to be a JSON path", name)
		}
	}
}
