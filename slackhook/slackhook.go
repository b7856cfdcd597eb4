// Package slackhook posts forum activity to a Slack channel through an incoming webhook.
package slackhook

import (
	"context"
	"fmt"

	"github.com/jhchabran/qanda"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

type Notifier struct {
	webhookURL string
	logger     zerolog.Logger
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func New(webhookURL string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		logger:     logger,
		post:       slack.PostWebhookContext,
	}
}

// Register adds the notifier hooks to the server.
func (n *Notifier) Register(s *qanda.Server) {
	s.AddQuestionHook(n.QuestionCreated)
	s.AddAnswerHook(n.AnswerCreated)
}

func (n *Notifier) QuestionCreated(ctx context.Context, question *qanda.Question) error {
	text := fmt.Sprintf("New question in *%s*: %s (#%d)", question.Category, question.Title, question.ID)
	return n.send(ctx, text)
}

func (n *Notifier) AnswerCreated(ctx context.Context, question *qanda.Question, answer *qanda.Answer) error {
	text := fmt.Sprintf("New answer on %q (#%d):\n>%s", question.Title, question.ID, answer.Content)
	return n.send(ctx, text)
}

func (n *Notifier) send(ctx context.Context, text string) error {
	n.logger.Debug().Str("text", text).Msg("posting to slack")

	err := n.post(ctx, n.webhookURL, &slack.WebhookMessage{Text: text})
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}

	return nil
}
