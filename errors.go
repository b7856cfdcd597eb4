package qanda

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorResponder interface {
	RespondError(w http.ResponseWriter, r *http.Request) bool
}

// Maybe404Error responds with not found status code, if its supplied error
// is sql.ErrNoRows.
type Maybe404Error struct {
	err     error
	message string
}

func Maybe404(err error, message string) *Maybe404Error {
	return &Maybe404Error{err: err, message: message}
}

func (e *Maybe404Error) Error() string {
	return fmt.Sprintf("Maybe404: %v", e.err.Error())
}

func (e *Maybe404Error) Unwrap() error {
	return e.err
}

func (e *Maybe404Error) Is404() bool {
	return errors.Is(e.err, sql.ErrNoRows)
}

func (e *Maybe404Error) RespondError(w http.ResponseWriter, r *http.Request) bool {
	if !e.Is404() {
		return false
	}

	writeMessage(w, http.StatusNotFound, e.message)
	return true
}

// ValidationError responds with bad request status code. It lists the fields
// that were missing or invalid, if any.
type ValidationError struct {
	fieldNames []string
	err        error
}

func Validation(fieldNames ...string) *ValidationError {
	return &ValidationError{fieldNames: fieldNames}
}

func ValidationWithError(err error, fieldNames ...string) *ValidationError {
	return &ValidationError{err: err, fieldNames: fieldNames}
}

func (e *ValidationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("ValidationError: error %v, %v", e.err, e.fieldNames)
	}
	return fmt.Sprintf("ValidationError: %v", e.fieldNames)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// Fields returns the names of the invalid fields.
func (e *ValidationError) Fields() []string {
	return e.fieldNames
}

func (e *ValidationError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	writeMessage(w, http.StatusBadRequest, "Bad Request: Missing or invalid request data")
	return true
}

// QueryError responds with bad request status code when query parameters are inconsistent.
type QueryError struct {
	params []string
}

func BadQuery(params ...string) *QueryError {
	return &QueryError{params: params}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("QueryError: %v", strings.Join(e.params, ", "))
}

func (e *QueryError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	writeMessage(w, http.StatusBadRequest, "Bad Request: Invalid query parameters.")
	return true
}

// MethodNotAllowedError responds with a method not allowed status code.
type MethodNotAllowedError struct {
	method string
	path   string
}

func MethodNotAllowed(method string, path string) *MethodNotAllowedError {
	return &MethodNotAllowedError{
		method: method,
		path:   path,
	}
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("MethodNotAllowed: %v %v", e.method, e.path)
}

func (e *MethodNotAllowedError) RespondError(w http.ResponseWriter, r *http.Request) bool {
	writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	return true
}
