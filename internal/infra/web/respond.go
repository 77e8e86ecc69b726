package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"case-portal/internal/domain"
	"case-portal/internal/infra/logging"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownService),
		errors.Is(err, domain.ErrUnknownDocumentSlot),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAtReview),
		errors.Is(err, domain.ErrIncompleteFlow),
		errors.Is(err, domain.ErrSubmissionInProgress),
		errors.Is(err, domain.ErrFlowChanged),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTooManySubmissions):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("request cancelled")
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
		writeError(w, code, "internal error")
		return
	}
	writeError(w, code, publicMessage(err))
}

// publicMessage strips wrapping context so internal identifiers do not leak.
func publicMessage(err error) string {
	for _, e := range []error{
		domain.ErrNotFound, domain.ErrInvalidArgument, domain.ErrUnknownService,
		domain.ErrUnknownDocumentSlot, domain.ErrInvalidStatus, domain.ErrNotAtReview,
		domain.ErrIncompleteFlow, domain.ErrSubmissionInProgress, domain.ErrTooManySubmissions,
		domain.ErrAlreadyExists, domain.ErrFlowChanged,
	} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return err.Error()
}
