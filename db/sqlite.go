package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"couponcast/features"
)

// Record is one logged prediction.
type Record struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	ModelType   string       `json:"model_type"`
	Class       int          `json:"predicted_class"`
	Probability *float64     `json:"probability,omitempty"`
	Row         features.Row `json:"features"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Store appends predictions to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        source VARCHAR(20) NOT NULL,
        model_type VARCHAR(50) NOT NULL,
        predicted_class INTEGER NOT NULL,
        probability REAL,
        features TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

// Record inserts rec, assigning an ID and timestamp when unset.
func (s *Store) Record(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(rec.Row)
	if err != nil {
		return Record{}, err
	}
	var probability sql.NullFloat64
	if rec.Probability != nil {
		probability = sql.NullFloat64{Float64: *rec.Probability, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (id, source, model_type, predicted_class, probability, features, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.ModelType, rec.Class, probability, string(payload), rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, source, model_type, predicted_class, probability, features, created_at
        FROM predictions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rec         Record
			probability sql.NullFloat64
			payload     string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.ModelType, &rec.Class, &probability, &payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if probability.Valid {
			p := probability.Float64
			rec.Probability = &p
		}
		if err := json.Unmarshal([]byte(payload), &rec.Row); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
