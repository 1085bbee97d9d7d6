package api

import (
	"encoding/json"
	"net/http"

	"github.com/gatorbacon/wrestledata-simple-sub000/pkg/errors"
)

// ErrorResponse is the body of every error reply:
// {"error": {"code": "...", "message": "..."}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoData:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMatrix, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidOrder, errors.ErrCodeInvalidGroup, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeErr reports err with the status and code it carries. Internal
// failures are not described to the client.
func writeErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		code = string(errors.ErrCodeInternal)
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
