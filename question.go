package qanda

import (
	"time"
)

type Question struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// QuestionWithTally is what voting endpoints respond with: the question row
// and its current tally, flattened into a single JSON object.
type QuestionWithTally struct {
	Question
	Tally
}

// QuestionFilter restricts ListQuestions. Empty fields do not filter.
type QuestionFilter struct {
	Title    string
	Category string
}

// questionForm is the JSON body accepted when creating or updating a question.
type questionForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (f *questionForm) validate() error {
	var missing []string
	if f.Title == "" {
		missing = append(missing, "title")
	}
	if f.Description == "" {
		missing = append(missing, "description")
	}
	if f.Category == "" {
		missing = append(missing, "category")
	}

	if len(missing) > 0 {
		return Validation(missing...)
	}

	return nil
}

func NewQuestion(title string, description string, category string) *Question {
	now := NowFunc()
	return &Question{
		Title:       title,
		Description: description,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
