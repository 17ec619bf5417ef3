package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/dto"
	"github.com/sakif/cards/internal/repository"
)

// maxBodyBytes caps request bodies. The largest valid body is a card of
// 1000 characters, so 64KB leaves plenty of headroom.
const maxBodyBytes = 64 << 10

// ErrorResponse is the standard error format returned by all API endpoints:
//
//	{"error": "validation_error", "message": "this field is required", "field": "content"}
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON sends a JSON response with the given status code. Headers must
// be set before WriteHeader, so the order here matters.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and sends it.
//
// errors.Is walks the wrap chain, so a service error such as
// fmt.Errorf("service/card: ...: %w", apperror.NotFound(...)) still maps
// to 404.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// Never expose internal error details to the client.
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		errorType = "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
		errorType = "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		errorType = "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		errorType = "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		errorType = "conflict"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// bind decodes and validates a JSON request body.
func bind(w http.ResponseWriter, r *http.Request, dst any) error {
	return dto.Bind(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
}

// requester returns the authenticated user's ID, or "" for anonymous
// requests.
func requester(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

// listOptions reads ?limit= and ?offset=. Absent values fall back to the
// service defaults.
func listOptions(r *http.Request) (repository.ListOptions, error) {
	var opts repository.ListOptions
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, apperror.ValidationFailed("limit", "limit must be a positive integer")
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, apperror.ValidationFailed("offset", "offset must be a non-negative integer")
		}
		opts.Offset = n
	}

	return opts, nil
}
