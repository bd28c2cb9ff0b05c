package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

const (
	DefaultDBFile = "melodydna.sqlite3"
	// EnvDBPath overrides DefaultDBFile for NewDBClient.
	EnvDBPath = "MELODY_DB_PATH"

	errDBClientNil = "db client is nil"
	batchSize      = 500
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrNoRuns      = errors.New("no runs stored")
)

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Run is one saved population.
type Run struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Label     string    `json:"label"`
	Melodies  int       `json:"melodies"`
	Notes     int       `json:"notes"`
	CreatedAt time.Time `gorm:"index:idx_run_created" json:"created_at"`
}

// Note is a single (pitch, duration) of melody MelodyID at Position within a run.
type Note struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RunID    string `gorm:"type:varchar(36);index:idx_note_run,priority:1" json:"run_id"`
	MelodyID int    `gorm:"index:idx_note_run,priority:2" json:"melody_id"`
	Position int    `gorm:"index:idx_note_run,priority:3" json:"position"`
	Pitch    int    `json:"pitch"`
	Duration int    `json:"duration"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv(EnvDBPath)
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}, &Note{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SavePopulation stores pop as a new run and returns its id. Every note of every melody
// is inserted in one transaction.
func (c *DBClient) SavePopulation(pop models.Population, label string) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}
	if err := pop.Validate(-1); err != nil {
		return "", fmt.Errorf("refusing to store population: %w", err)
	}

	run := Run{
		ID:       uuid.NewString(),
		Label:    label,
		Melodies: len(pop),
		Notes:    pop.NoteCount(),
	}

	notes := make([]Note, 0, len(pop)*pop.NoteCount())
	for id, m := range pop {
		for pos := range m.Pitches {
			notes = append(notes, Note{
				RunID:    run.ID,
				MelodyID: id,
				Position: pos,
				Pitch:    m.Pitches[pos],
				Duration: m.Durations[pos],
			})
		}
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}
		if len(notes) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(notes, batchSize).Error; err != nil {
			return fmt.Errorf("batch insert notes: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// LoadPopulation rebuilds the population saved under runID.
func (c *DBClient) LoadPopulation(runID string) (models.Population, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var run Run
	if err := c.DB.Where("id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}

	var rows []Note
	if err := c.DB.Where("run_id = ?", runID).Order("melody_id, position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	if len(rows) != run.Melodies*run.Notes {
		return nil, fmt.Errorf("%w: run %s has %d notes, expected %d x %d",
			models.ErrShapeMismatch, runID, len(rows), run.Melodies, run.Notes)
	}

	pop := make(models.Population, run.Melodies)
	for i := range pop {
		pop[i] = models.Melody{
			Pitches:   make([]int, run.Notes),
			Durations: make([]int, run.Notes),
		}
	}
	for _, r := range rows {
		if r.MelodyID < 0 || r.MelodyID >= run.Melodies || r.Position < 0 || r.Position >= run.Notes {
			return nil, fmt.Errorf("%w: note at melody %d position %d outside run %s",
				models.ErrShapeMismatch, r.MelodyID, r.Position, runID)
		}
		pop[r.MelodyID].Pitches[r.Position] = r.Pitch
		pop[r.MelodyID].Durations[r.Position] = r.Duration
	}

	if err := pop.Validate(run.Notes); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return pop, nil
}

// LatestRunID returns the most recently saved run, or ErrNoRuns.
func (c *DBClient) LatestRunID() (string, error) {
	runs, err := c.listRuns(1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[0].ID, nil
}

// ListRuns returns every run, newest first.
func (c *DBClient) ListRuns() ([]Run, error) {
	return c.listRuns(-1)
}

func (c *DBClient) listRuns(limit int) ([]Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var runs []Run
	if err := c.DB.Order("created_at DESC").Order("rowid DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (c *DBClient) DeleteRun(runID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&Note{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", runID).Delete(&Run{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}
