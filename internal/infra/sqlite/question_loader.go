package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"quizroom/internal/domain"
	_ "modernc.org/sqlite"
)

// QuestionLoader loads the trivia bank from a single-file SQLite database,
// for deployments that want a local bank without running Postgres.
type QuestionLoader struct {
	db *sql.DB
}

// Open prepares the SQLite database at path and ensures the schema exists.
func Open(path string) (*QuestionLoader, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &QuestionLoader{db: db}, nil
}

func (l *QuestionLoader) Close() error {
	return l.db.Close()
}

func (l *QuestionLoader) LoadBank(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT id, data FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var bank []domain.Question
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("unmarshal question %s: %w", id, err)
		}
		q.ID = id
		bank = append(bank, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return bank, nil
}

// Seed inserts or replaces questions, used by tests and first-run imports.
func (l *QuestionLoader) Seed(ctx context.Context, bank []domain.Question) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	for _, q := range bank {
		data, err := json.Marshal(q)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO questions (id, data) VALUES (?, ?)`, q.ID, string(data)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}
