// Package handlers holds the thin JSON handlers of the product API. Handlers
// decode and validate requests, call a service and map its errors.
package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/middleware"
	"github.com/upb/conference-portal/utils"
	"go.uber.org/zap"
)

// currentUser returns the authenticated user's ID, writing a 401 when the
// request carries no claims.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "")
	}
	return id, ok
}

// decodeAndValidate reads the body into dst and validates it, writing a 400 on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		HandleValidationError(w, err, logger)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// pathID parses a UUID route parameter, writing a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := utils.URLParamUUID(r, name)
	if err != nil {
		HandleValidationError(w, err, logger)
		return uuid.Nil, false
	}
	return id, true
}
