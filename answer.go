package qanda

import (
	"time"
	"unicode/utf8"
)

// MaxAnswerLength is the maximum number of characters of an answer content.
const MaxAnswerLength = 300

type Answer struct {
	ID         int64     `db:"id" json:"id"`
	QuestionID int64     `db:"question_id" json:"question_id"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type AnswerWithTally struct {
	Answer
	Tally
}

type answerForm struct {
	Content string `json:"content"`
}

func (f *answerForm) validate() error {
	if f.Content == "" || utf8.RuneCountInString(f.Content) > MaxAnswerLength {
		return Validation("content")
	}

	return nil
}

func NewAnswer(questionID int64, content string) *Answer {
	now := NowFunc()
	return &Answer{
		QuestionID: questionID,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
