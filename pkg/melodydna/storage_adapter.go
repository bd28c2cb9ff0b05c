package melodydna

import (
	"path/filepath"
	"strings"

	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/storage"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// sqliteSink adapts storage.DBClient to the Sink interface. Each Save is a new run.
type sqliteSink struct {
	db    *storage.DBClient
	label string
}

// NewSQLiteSink opens (or creates) the database at dbPath.
func NewSQLiteSink(dbPath, label string) (Sink, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteSink{db: db, label: label}, nil
}

func (s *sqliteSink) Save(pop models.Population) error {
	_, err := s.db.SavePopulation(pop, s.label)
	return err
}

func (s *sqliteSink) Load() (models.Population, error) {
	runID, err := s.db.LatestRunID()
	if err != nil {
		return nil, err
	}
	return s.db.LoadPopulation(runID)
}

func (s *sqliteSink) Close() error {
	return s.db.Close()
}

// IsSQLitePath reports whether NewSink would open path as a database.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		return true
	}
	return false
}

// NewSink opens a SQLite sink for .sqlite, .sqlite3 and .db paths and a JSON file sink
// for anything else.
func NewSink(path string) (Sink, error) {
	if IsSQLitePath(path) {
		return NewSQLiteSink(path, filepath.Base(path))
	}
	return storage.NewJSONFile(path), nil
}
