package qanda

import (
	"database/sql"
	"database/sql/driver"
	"time"
)

// Polarity is the value of a single vote row, either +1 or -1.
type Polarity int

const (
	Upvote   Polarity = 1
	Downvote Polarity = -1
)

func (p Polarity) String() string {
	if p == Upvote {
		return "upvote"
	}
	return "downvote"
}

func (p Polarity) Value() (driver.Value, error) {
	return int64(p), nil
}

// Vote is a row of either question_votes or answer_votes. Votes are append-only:
// casting the same vote twice stores two rows.
type Vote struct {
	ID         int64         `db:"id"`
	QuestionID sql.NullInt64 `db:"question_id"`
	AnswerID   sql.NullInt64 `db:"answer_id"`
	Vote       Polarity      `db:"vote"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

// NewQuestionVote returns a vote on the given question.
func NewQuestionVote(questionID int64, vote Polarity) *Vote {
	now := NowFunc()
	return &Vote{
		QuestionID: sql.NullInt64{Int64: questionID, Valid: true},
		Vote:       vote,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewAnswerVote returns a vote on the given answer.
func NewAnswerVote(answerID int64, vote Polarity) *Vote {
	now := NowFunc()
	return &Vote{
		AnswerID:  sql.NullInt64{Int64: answerID, Valid: true},
		Vote:      vote,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Tally is derived from vote rows and never stored.
type Tally struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

func (t Tally) Score() int64 {
	return t.Upvotes - t.Downvotes
}
