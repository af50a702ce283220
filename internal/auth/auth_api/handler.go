package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-tombola/internal/auth"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/utils"
)

type Handler struct {
	Service *auth.Service
	Logger  *logger.Logger
}

func NewHandler(service *auth.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

type requestCodeRequest struct {
	UserID string `json:"user_id"`
}

// RequestCode issues a login code for an allow-listed user. The
// response never carries the code; it travels out of band.
func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", "user_id is required"))
		return
	}

	if err := h.Service.RequestCode(r.Context(), req.UserID); err != nil {
		if errors.Is(err, auth.ErrNotAllowed) {
			h.Logger.Warn("AUTH", fmt.Sprintf("RequestCode: user %s is not allow-listed", req.UserID))
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Access denied", err.Error()))
			return
		}
		h.Logger.Error("AUTH", fmt.Sprintf("RequestCode: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not issue code", err.Error()))
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("RequestCode: code issued for user %s", req.UserID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Code sent", nil))
}

type verifyCodeRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

// VerifyCode exchanges a valid login code for a session token.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Code == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", "user_id and code are required"))
		return
	}

	token, err := h.Service.VerifyCode(r.Context(), req.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotAllowed):
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Access denied", err.Error()))
		case errors.Is(err, auth.ErrTooManyAttempts):
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.ErrorResponse("Too many attempts", err.Error()))
		case errors.Is(err, auth.ErrCodeInvalid), errors.Is(err, auth.ErrCodeExpired):
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Invalid code", err.Error()))
		default:
			h.Logger.Error("AUTH", fmt.Sprintf("VerifyCode: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not verify code", err.Error()))
		}
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("VerifyCode: session opened for user %s", req.UserID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", map[string]string{"token": token}))
}

// Logout revokes the presented session token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not logged in", err.Error()))
		return
	}

	if err := h.Service.Logout(r.Context(), token); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Logout: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not log out", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged out", nil))
}
