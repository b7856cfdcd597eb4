package qanda

import "context"

// Store is the persistence layer used by the Server. Lookups of missing rows
// return an error wrapping sql.ErrNoRows.
type Store interface {
	Connect() error
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]*Question, error)
	FindQuestion(ctx context.Context, id int64) (*Question, error)
	InsertQuestion(ctx context.Context, question *Question) error
	UpdateQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListAnswers(ctx context.Context, questionID int64) ([]*Answer, error)
	InsertAnswer(ctx context.Context, answer *Answer) error
	VoteOnQuestion(ctx context.Context, questionID int64, vote Polarity) (*QuestionWithTally, error)
	VoteOnAnswer(ctx context.Context, answerID int64, vote Polarity) (*AnswerWithTally, error)
}
