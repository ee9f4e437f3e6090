package handlers

import (
	"errors"
	"net/http"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/services"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// ValidationError and InvalidStateTransition are deterministic and surfaced
// verbatim; GatewayError is the only category the caller should retry.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
		return
	}
	var ist *services.InvalidStateTransitionError
	if errors.As(err, &ist) {
		httpx.JSONError(w, http.StatusConflict, "invalid_state_transition", map[string]string{"op": ist.Op, "from": ist.From})
		return
	}
	var ge *services.GatewayError
	if errors.As(err, &ge) {
		httpx.JSONError(w, http.StatusBadGateway, "gateway_error", nil)
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
