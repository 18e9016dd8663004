package json

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hilthontt/quorum/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteValidationError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, err.Error())
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// WriteDomainError maps the error taxonomy onto HTTP statuses. Infrastructure
// failures get the generic 500 body; their messages are not for clients.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		WriteError(w, http.StatusBadRequest, err.Error())
	case domain.KindNotFound:
		WriteError(w, http.StatusNotFound, err.Error())
	case domain.KindConflict:
		WriteError(w, http.StatusConflict, err.Error())
	case domain.KindUnauthorized:
		WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		WriteInternalError(w)
	}
}

func WriteRateLimitError(w http.ResponseWriter, retryAfter int) {
	resp := ErrorResponse{
		Error:   http.StatusText(http.StatusTooManyRequests),
		Message: "Too many requests. Please try again later.",
	}

	w.Header().Set("Content-Type", "application/json")
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(resp)
}
