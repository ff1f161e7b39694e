package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fjacquet/finance-analyzer/internal/budget"
	"fjacquet/finance-analyzer/internal/chat"
	"fjacquet/finance-analyzer/internal/database"
	"fjacquet/finance-analyzer/internal/insight"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/parsererror"
	"fjacquet/finance-analyzer/internal/upload"
)

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }
func (e badRequest) Unwrap() error { return errBadRequest }

func invalid(msg string) error { return badRequest{msg: msg} }

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var (
		missing    *parsererror.MissingColumnsError
		validation *parsererror.ValidationError
	)
	switch {
	case errors.Is(err, errBadRequest),
		errors.As(err, &validation),
		errors.Is(err, upload.ErrUnknownCategory),
		errors.Is(err, budget.ErrInvalidPeriod),
		errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, budget.ErrInvalidMonth),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, insight.ErrNoTransactions):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrJobNotFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, upload.ErrJobNotCompleted), errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, parsererror.ErrUnrecognizedFormat), errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, insight.ErrAIUnavailable), errors.Is(err, chat.ErrAIUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged and their
// details are not sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.WithError(err).Error("Request failed",
			logging.F(logging.FieldMethod, r.Method),
			logging.F(logging.FieldPath, r.URL.Path))
		WriteError(w, status, "Internal server error")
		return
	}
	WriteError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid JSON body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid " + name)
	}
	return id, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
