package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"exodash/internal/domain"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var upstream *domain.UpstreamError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		if upstream.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for err. Internal errors
// are not echoed.
func errorMessage(err error, status int) string {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var upstream *domain.UpstreamError
	switch {
	case errors.As(err, &notFound):
		return notFound.Message
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &upstream):
		return "Error fetching data from NASA Exoplanet Archive: " + upstream.Message
	default:
		return http.StatusText(status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "status", status, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, ErrorBody{Code: status, Message: errorMessage(err, status)})
}
