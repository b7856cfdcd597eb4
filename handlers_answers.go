package qanda

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

const msgAnswerNotFound = "Not Found: Answer not found."

// HandleVoteAnswer handles requests casting a vote on an answer, responding with the
// answer and its updated tally.
func (s *Server) HandleVoteAnswer(vote Polarity) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, ok := paramID(params)
		if !ok {
			writeMessage(w, http.StatusNotFound, msgAnswerNotFound)
			return
		}

		result, err := s.store.VoteOnAnswer(r.Context(), id, vote)
		if err != nil {
			s.respondError(w, r, Maybe404(err, msgAnswerNotFound), "Server could not vote on answer because database connection")
			return
		}

		_ = writeJSON(w, http.StatusOK, envelope{
			Message: "OK: Successfully " + vote.String() + "d the answer.",
			Data:    result,
		})
	}
}
