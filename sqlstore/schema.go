package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// schema lists the statements creating the tables, {{primary_key}} being the definition of a
// generated primary key for the driver in use. There are no foreign keys,
// references between rows are maintained by the application.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS questions (
		id {{primary_key}},
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id {{primary_key}},
		question_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id)`,
	`CREATE TABLE IF NOT EXISTS question_votes (
		id {{primary_key}},
		question_id INTEGER NOT NULL,
		vote INTEGER NOT NULL CHECK (vote IN (1, -1)),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_question_votes_question_id ON question_votes(question_id)`,
	`CREATE TABLE IF NOT EXISTS answer_votes (
		id {{primary_key}},
		answer_id INTEGER NOT NULL,
		vote INTEGER NOT NULL CHECK (vote IN (1, -1)),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answer_votes_answer_id ON answer_votes(answer_id)`,
}

var tables = []string{"questions", "answers", "question_votes", "answer_votes"}

func (s *Store) primaryKey() string {
	if s.driver == DriverSQLite {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "SERIAL PRIMARY KEY"
}

// EnsureSchema creates the tables if they do not exist yet. It is meant for development
// and tests, it does not migrate existing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, strings.ReplaceAll(stmt, "{{primary_key}}", s.primaryKey())); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

// Truncate deletes every row of every table.
func (s *Store) Truncate(ctx context.Context) error {
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("truncate %s: %w", t, err)
		}
	}

	return nil
}
