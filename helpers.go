package qanda

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

var NowFunc func() time.Time = time.Now

// envelope is the shape of every JSON response body.
type envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, envelope{Message: message})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched so
// that validation reports the missing fields.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return ValidationWithError(err)
	}

	return nil
}

// paramID reads the "id" path parameter. Identifiers that cannot be parsed
// cannot match any row, so false is returned and the caller answers 404.
func paramID(params httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
