package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jhchabran/qanda"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// A Store is responsible of interacting with the storage layer using a SQL database.
// Queries are written with ? placeholders and rebound for the driver in use.
type Store struct {
	driver   string
	dbString string
	db       *sqlx.DB
}

var _ qanda.Store = (*Store)(nil)

// New returns a Store configured for a given driver and connection string.
func New(driver string, addr string) *Store {
	return &Store{
		driver:   driver,
		dbString: addr,
	}
}

// Connect establish a connection with the database using the address given at initialization.
func (s *Store) Connect() error {
	db, err := sqlx.Connect(s.driver, s.dbString)
	if err != nil {
		return fmt.Errorf("connect to %s database: %w", s.driver, err)
	}

	// an in-memory sqlite database only lives as long as its connection
	if s.driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	s.db = db

	return nil
}

// DB returns the existing connection, making it suitable to perform requests not already supported by
// the store interface. If called while not connected, it will return nil.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// withTx runs f in a transaction, which is committed if f succeeds and rolled back otherwise.
func (s *Store) withTx(ctx context.Context, f func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) ListQuestions(ctx context.Context, filter qanda.QuestionFilter) ([]*qanda.Question, error) {
	var conds []string
	var args []interface{}
	if filter.Title != "" {
		conds = append(conds, "title = ?")
		args = append(args, filter.Title)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}

	query := "SELECT * FROM questions"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	questions := []*qanda.Question{}
	err := s.db.SelectContext(ctx, &questions, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	return questions, nil
}

func (s *Store) FindQuestion(ctx context.Context, id int64) (*qanda.Question, error) {
	return s.findQuestion(ctx, s.db, id)
}

func (s *Store) findQuestion(ctx context.Context, q sqlx.QueryerContext, id int64) (*qanda.Question, error) {
	question := qanda.Question{}
	err := sqlx.GetContext(ctx, q, &question, s.rebind("SELECT * FROM questions WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("find question %d: %w", id, err)
	}

	return &question, nil
}

// InsertQuestion inserts the question and reloads it, so it reflects what was stored.
func (s *Store) InsertQuestion(ctx context.Context, question *qanda.Question) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.GetContext(ctx, &id,
			s.rebind("INSERT INTO questions (title, description, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
			question.Title, question.Description, question.Category, question.CreatedAt, question.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}

		stored, err := s.findQuestion(ctx, tx, id)
		if err != nil {
			return err
		}

		*question = *stored
		return nil
	})
}

// UpdateQuestion replaces the mutable fields of the question with the given ID and reloads it.
// It returns sql.ErrNoRows if there is no such question.
func (s *Store) UpdateQuestion(ctx context.Context, question *qanda.Question) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.rebind("UPDATE questions SET title = ?, description = ?, category = ?, updated_at = ? WHERE id = ?"),
			question.Title, question.Description, question.Category, question.UpdatedAt, question.ID,
		)
		if err != nil {
			return fmt.Errorf("update question %d: %w", question.ID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("update question %d: %w", question.ID, sql.ErrNoRows)
		}

		stored, err := s.findQuestion(ctx, tx, question.ID)
		if err != nil {
			return err
		}

		*question = *stored
		return nil
	})
}

// DeleteQuestion deletes a question and its answers. Votes are kept. Answers are deleted
// even if the question was already gone, in which case sql.ErrNoRows is returned.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	var deleted int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind("DELETE FROM questions WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete question %d: %w", id, err)
		}

		deleted, err = res.RowsAffected()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, s.rebind("DELETE FROM answers WHERE question_id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete answers of question %d: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if deleted == 0 {
		return fmt.Errorf("delete question %d: %w", id, sql.ErrNoRows)
	}

	return nil
}

func (s *Store) findAnswer(ctx context.Context, q sqlx.QueryerContext, id int64) (*qanda.Answer, error) {
	answer := qanda.Answer{}
	err := sqlx.GetContext(ctx, q, &answer, s.rebind("SELECT * FROM answers WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("find answer %d: %w", id, err)
	}

	return &answer, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID int64) ([]*qanda.Answer, error) {
	answers := []*qanda.Answer{}
	err := s.db.SelectContext(ctx, &answers, s.rebind("SELECT * FROM answers WHERE question_id = ? ORDER BY id"), questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers of question %d: %w", questionID, err)
	}

	return answers, nil
}

// InsertAnswer inserts the answer and reloads it. It returns sql.ErrNoRows if the question
// it answers does not exist.
func (s *Store) InsertAnswer(ctx context.Context, answer *qanda.Answer) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := s.findQuestion(ctx, tx, answer.QuestionID)
		if err != nil {
			return err
		}

		var id int64
		err = tx.GetContext(ctx, &id,
			s.rebind("INSERT INTO answers (question_id, content, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id"),
			answer.QuestionID, answer.Content, answer.CreatedAt, answer.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}

		stored, err := s.findAnswer(ctx, tx, id)
		if err != nil {
			return err
		}

		*answer = *stored
		return nil
	})
}

// QuestionTally counts the votes cast on a question. Questions without votes, existing or
// not, have an empty tally.
func (s *Store) QuestionTally(ctx context.Context, questionID int64) (qanda.Tally, error) {
	return s.tallyVotes(ctx, s.db, questionVotes, questionID)
}

func (s *Store) AnswerTally(ctx context.Context, answerID int64) (qanda.Tally, error) {
	return s.tallyVotes(ctx, s.db, answerVotes, answerID)
}

// VoteOnQuestion records a vote on a question and returns the question with its tally,
// which includes the new vote. It returns sql.ErrNoRows if there is no such question.
func (s *Store) VoteOnQuestion(ctx context.Context, questionID int64, vote qanda.Polarity) (*qanda.QuestionWithTally, error) {
	var result *qanda.QuestionWithTally
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		question, err := s.findQuestion(ctx, tx, questionID)
		if err != nil {
			return err
		}

		err = s.insertVote(ctx, tx, questionVotes, qanda.NewQuestionVote(questionID, vote))
		if err != nil {
			return err
		}

		tally, err := s.tallyVotes(ctx, tx, questionVotes, questionID)
		if err != nil {
			return err
		}

		result = &qanda.QuestionWithTally{Question: *question, Tally: tally}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// VoteOnAnswer records a vote on an answer and returns the answer with its tally,
// which includes the new vote. It returns sql.ErrNoRows if there is no such answer.
func (s *Store) VoteOnAnswer(ctx context.Context, answerID int64, vote qanda.Polarity) (*qanda.AnswerWithTally, error) {
	var result *qanda.AnswerWithTally
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		answer, err := s.findAnswer(ctx, tx, answerID)
		if err != nil {
			return err
		}

		err = s.insertVote(ctx, tx, answerVotes, qanda.NewAnswerVote(answerID, vote))
		if err != nil {
			return err
		}

		tally, err := s.tallyVotes(ctx, tx, answerVotes, answerID)
		if err != nil {
			return err
		}

		result = &qanda.AnswerWithTally{Answer: *answer, Tally: tally}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
