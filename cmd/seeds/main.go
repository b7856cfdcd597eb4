package main

import (
	"context"

	"github.com/jhchabran/qanda"
	"github.com/jhchabran/qanda/cmd"
	"github.com/jhchabran/qanda/sqlstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var categories = []string{"go", "databases", "networking"}

var titles = []string{
	"How do I cancel a running query?",
	"What does a nil interface hold?",
	"When should I reach for a transaction?",
	"Why is my connection pool exhausted?",
	"Is TCP keepalive enabled by default?",
	"How are struct fields aligned in memory?",
	"What is the difference between a mutex and a channel?",
	"Can I index a JSON column?",
}

var answers = []string{
	"Pass a context and cancel it, the driver aborts the statement.",
	"A type and a value, both nil only when the interface is nil.",
	"Whenever several statements have to succeed or fail together.",
	"Rows that are never closed keep their connection busy.",
	"It depends on the platform, set it explicitly.",
}

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Seeding database")

	ctx := context.Background()
	store := sqlstore.New(cfg.DatabaseDriver, cfg.DSN())
	err = store.Connect()
	if err != nil {
		logger.Fatal().Err(err).Msg("Can't connect to database")
	}
	defer store.Close()

	err = store.EnsureSchema(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Can't create schema")
	}

	// each question gets a few answers and votes, the amounts cycling with its position
	for i, title := range titles {
		question := qanda.NewQuestion(title, "Asked while seeding: "+title, categories[i%len(categories)])
		err := store.InsertQuestion(ctx, question)
		if err != nil {
			logger.Fatal().Err(err).Msg("Can't create question")
		}

		for j := 0; j < i%4; j++ {
			answer := qanda.NewAnswer(question.ID, answers[(i+j)%len(answers)])
			err := store.InsertAnswer(ctx, answer)
			if err != nil {
				logger.Fatal().Err(err).Msg("Can't create answer")
			}

			for k := 0; k < j+1; k++ {
				_, err := store.VoteOnAnswer(ctx, answer.ID, qanda.Upvote)
				if err != nil {
					logger.Fatal().Err(err).Msg("Can't vote on answer")
				}
			}
		}

		for k := 0; k < i%5; k++ {
			vote := qanda.Upvote
			if k%3 == 2 {
				vote = qanda.Downvote
			}
			_, err := store.VoteOnQuestion(ctx, question.ID, vote)
			if err != nil {
				logger.Fatal().Err(err).Msg("Can't vote on question")
			}
		}
	}

	err = logSummary(ctx, logger, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Can't read back seeded data")
	}

	logger.Info().Int("questions", len(titles)).Msg("Database seeded")
}

// logSummary logs the score of each seeded question and of its answers.
func logSummary(ctx context.Context, logger zerolog.Logger, store *sqlstore.Store) error {
	questions, err := store.ListQuestions(ctx, qanda.QuestionFilter{})
	if err != nil {
		return err
	}

	for _, question := range questions {
		tally, err := store.QuestionTally(ctx, question.ID)
		if err != nil {
			return err
		}

		answers, err := store.ListAnswers(ctx, question.ID)
		if err != nil {
			return err
		}

		var answersScore int64
		for _, answer := range answers {
			t, err := store.AnswerTally(ctx, answer.ID)
			if err != nil {
				return err
			}
			answersScore += t.Score()
		}

		logger.Debug().
			Int64("question_id", question.ID).
			Int64("score", tally.Score()).
			Int("answers", len(answers)).
			Int64("answers_score", answersScore).
			Msg("Seeded question")
	}

	return nil
}
