package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"elegance/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already written, nothing useful to do
		return
	}
}

// writeError maps an error to its HTTP response. Domain errors carry their
// own status and public code; anything else is a 500 with no detail leaked.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", domainErr.Status).Msg("handler error")
		} else {
			logger.Debug().Err(err).Int("status", domainErr.Status).Msg("request rejected")
		}
		writeJSON(w, domainErr.Status, model.ErrorResponse{Error: domainErr.Code, Message: domainErr.Message})
		return
	}

	logger.Error().Err(err).Msg("unhandled error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	})
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}
