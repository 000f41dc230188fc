// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/obs"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, jsonError{Error: message, Details: details})
}

// writeServiceError maps the domain error taxonomy onto HTTP responses.
func (a *App) writeServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		a.metrics.invalidInput.Add(1)
		WriteJSONError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteJSONError(c, http.StatusNotFound, "not_found", "")
	case errors.Is(err, model.ErrStoreUnavailable):
		a.metrics.storeErrors.Add(1)
		obs.Logger.Errorw("request_failed", "op", op, "request_id", RequestIDFromContext(c), "error", err)
		WriteJSONError(c, http.StatusInternalServerError, "store_unavailable", "")
	default:
		obs.Logger.Errorw("request_failed", "op", op, "request_id", RequestIDFromContext(c), "error", err)
		WriteJSONError(c, http.StatusInternalServerError, "internal_error", "")
	}
}
