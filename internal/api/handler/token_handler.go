package handler

import (
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/smarthousehold/inventory-service/internal/api/middleware"
	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/service"
)

// TokenHandler registers and removes the caller's push tokens.
type TokenHandler struct {
	svc    *service.TokenService
	logger *zap.Logger
}

func NewTokenHandler(svc *service.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{svc: svc, logger: logger}
}

// Register handles PUT /api/v1/push-tokens
//
// @Summary  Register or refresh a device push token
// @Tags     push
// @Accept   json
// @Produce  json
// @Param    body  body      domain.RegisterTokenRequest  true  "Token payload"
// @Success  200   {object}  domain.PushToken
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/push-tokens [put]
func (h *TokenHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := apimw.GetUserID(r.Context())
	t, err := h.svc.Register(r.Context(), userID, req)
	if err != nil {
		mapError(w, err)
		return
	}
	h.logger.Info("push token registered", zap.String("user_id", userID), zap.String("platform", string(t.Platform)))
	respondJSON(w, http.StatusOK, t)
}

// Remove handles DELETE /api/v1/push-tokens
func (h *TokenHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.Remove(r.Context(), apimw.GetUserID(r.Context()), req.Token); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
