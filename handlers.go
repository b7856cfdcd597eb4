package qanda

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const msgQuestionNotFound = "Not Found: Question not found."

// respondError answers with the response carried by err if it knows how to
// respond, or with a 500 with the given message otherwise. Internal details
// are only logged.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger := zerolog.Ctx(r.Context())

	var responder ErrorResponder
	if errors.As(err, &responder) && responder.RespondError(w, r) {
		logger.Warn().Err(err).Msg("Request rejected")
		return
	}

	logger.Error().Err(err).Msg(message)
	writeMessage(w, http.StatusInternalServerError, message)
}

// HandleTest handles requests checking that the API is up.
func (s *Server) HandleTest() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_ = writeJSON(w, http.StatusOK, "Server API is working 🚀")
	}
}

// HandleCreateQuestion handles requests to create a question. Title, description and category
// are all required.
func (s *Server) HandleCreateQuestion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var form questionForm
		err := decodeJSON(r, &form)
		if err == nil {
			err = form.validate()
		}
		if err != nil {
			s.respondError(w, r, err, "Invalid question")
			return
		}

		question := NewQuestion(form.Title, form.Description, form.Category)
		err = s.store.InsertQuestion(r.Context(), question)
		if err != nil {
			s.respondError(w, r, err, "Server could not create question due to a database connection error")
			return
		}

		_ = writeJSON(w, http.StatusCreated, envelope{
			Message: "Created: Question created successfully",
			Data:    question,
		})

		hooks := make([]func(context.Context) error, 0, len(s.questionHooks))
		for _, h := range s.questionHooks {
			h := h
			hooks = append(hooks, func(ctx context.Context) error { return h(ctx, question) })
		}
		logger := zerolog.Ctx(r.Context()).With().Int64("question_id", question.ID).Logger()
		s.runHooks(r, logger, hooks)
	}
}

// HandleListQuestions handles requests listing questions. Filtering requires both title
// and category to be given, or none of them.
func (s *Server) HandleListQuestions() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		title := r.URL.Query().Get("title")
		category := r.URL.Query().Get("category")

		if (title == "") != (category == "") {
			s.respondError(w, r, BadQuery("title", "category"), "Invalid query")
			return
		}

		message := "OK: Successfully retrieved the list of questions."
		if title != "" {
			message = "OK: Successfully retrieved the questions"
		}

		questions, err := s.store.ListQuestions(r.Context(), QuestionFilter{Title: title, Category: category})
		if err != nil {
			s.respondError(w, r, err, "Server could not read questions because database connection")
			return
		}

		_ = writeJSON(w, http.StatusOK, envelope{Message: message, Data: questions})
	}
}

// HandleShowQuestion handles requests to read a single question. The tally is not included.
func (s *Server) HandleShowQuestion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		question, err := s.store.FindQuestion(r.Context(), id)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not read questions because database connection")
			return
		}

		_ = writeJSON(w, http.StatusOK, envelope{
			Message: "OK: Successfully retrieved the question",
			Data:    question,
		})
	}
}

// HandleUpdateQuestion handles requests replacing the title, description and category of a question.
func (s *Server) HandleUpdateQuestion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		var form questionForm
		err := decodeJSON(r, &form)
		if err == nil {
			err = form.validate()
		}
		if err != nil {
			s.respondError(w, r, err, "Invalid question")
			return
		}

		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		question := &Question{
			ID:          id,
			Title:       form.Title,
			Description: form.Description,
			Category:    form.Category,
			UpdatedAt:   NowFunc(),
		}
		err = s.store.UpdateQuestion(r.Context(), question)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not update question because database connection")
			return
		}

		_ = writeJSON(w, http.StatusOK, envelope{
			Message: "OK: Successfully updated the question",
			Data:    question,
		})
	}
}

// HandleDeleteQuestion handles requests deleting a question along with its answers.
func (s *Server) HandleDeleteQuestion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		err := s.store.DeleteQuestion(r.Context(), id)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not delete question because database connection")
			return
		}

		writeMessage(w, http.StatusOK, "Question deleted successfully")
	}
}

// HandleCreateAnswer handles requests posting an answer on a question.
func (s *Server) HandleCreateAnswer() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		question, err := s.store.FindQuestion(r.Context(), id)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not read answers because database connection")
			return
		}

		var form answerForm
		err = decodeJSON(r, &form)
		if err == nil {
			err = form.validate()
		}
		if err != nil {
			s.respondError(w, r, err, "Invalid answer")
			return
		}

		answer := NewAnswer(question.ID, form.Content)
		err = s.store.InsertAnswer(r.Context(), answer)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not create answer because database connection")
			return
		}

		_ = writeJSON(w, http.StatusCreated, envelope{
			Message: "Created: Answer created successfully.",
			Data:    []*Answer{answer},
		})

		hooks := make([]func(context.Context) error, 0, len(s.answerHooks))
		for _, h := range s.answerHooks {
			h := h
			hooks = append(hooks, func(ctx context.Context) error { return h(ctx, question, answer) })
		}
		logger := zerolog.Ctx(r.Context()).With().Int64("answer_id", answer.ID).Logger()
		s.runHooks(r, logger, hooks)
	}
}

// HandleListAnswers handles requests listing the answers of a question. A question without
// answers yields an empty list, a missing question a 404.
func (s *Server) HandleListAnswers() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		_, err := s.store.FindQuestion(r.Context(), id)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not read answers because database connection")
			return
		}

		answers, err := s.store.ListAnswers(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err, "Server could not read answers because database connection")
			return
		}

		_ = writeJSON(w, http.StatusOK, envelope{
			Message: "OK: Successfully retrieved the answers.",
			Data:    answers,
		})
	}
}

// HandleVoteQuestion handles requests casting a vote on a question, responding with the
// question and its updated tally.
func (s *Server) HandleVoteQuestion(vote Polarity) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgQuestionNotFound)
			return
		}

		result, err := s.store.VoteOnQuestion(r.Context(), id, vote)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgQuestionNotFound), "Server could not vote on question because database connection")
			return
		}

		_ = writeJSON(w, http.StatusOK, envelope{
			Message: "OK: Successfully " + vote.String() + "d the question.",
			Data:    result,
		})
	}
}
