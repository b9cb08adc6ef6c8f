package controllers

import (
	"encoding/json"
	"net/http"

	"farm-market/middleware"
	"farm-market/models"
	"farm-market/utils"

	"go.uber.org/zap"
)

// respondError logs unexpected failures with their cause and writes the
// public part of err.
func respondError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if utils.KindOf(err) == utils.KindInternal {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	utils.RespondError(w, err)
}

// decodeBody decodes the JSON body into v and runs its validate tags.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return utils.ValidationError("Invalid input")
	}
	return utils.ValidateStruct(v)
}

// currentIdentity returns the identity attached by the auth gate.
func currentIdentity(r *http.Request) (*models.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, utils.AuthError("Unauthorized")
	}
	return identity, nil
}
