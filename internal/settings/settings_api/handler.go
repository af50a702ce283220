package settings_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/settings"
	"ms-tombola/internal/utils"
)

type Handler struct {
	Service      *settings.Service
	Logger       *logger.Logger
	DefaultGuild string
}

func NewHandler(service *settings.Service, log *logger.Logger, defaultGuild string) *Handler {
	return &Handler{Service: service, Logger: log, DefaultGuild: defaultGuild}
}

func (h *Handler) guild(r *http.Request) string {
	if g := r.Header.Get("X-Guild-ID"); g != "" {
		return g
	}
	return h.DefaultGuild
}

// GetSettings serves the effective config plus the guild's objective
// and alert rules in one payload, the shape the settings page binds to.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	guildID := h.guild(r)

	resolved, err := h.Service.Resolve(r.Context(), guildID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSettings: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not load settings", err.Error()))
		return
	}

	goal, err := h.Service.Objective(r.Context(), guildID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSettings: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not load settings", err.Error()))
		return
	}

	alerts, err := h.Service.AlertRules(r.Context(), guildID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSettings: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not load settings", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Settings", map[string]interface{}{
		"config":              resolved,
		"monthly_ticket_goal": goal,
		"alerts":              alerts,
	}))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in settings.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	resolved, err := h.Service.Update(r.Context(), h.guild(r), in)
	if err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid settings", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateSettings: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not update settings", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateSettings: settings updated for guild %s", h.guild(r)))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Settings updated", resolved))
}

type alertsRequest struct {
	Alerts []settings.AlertInput `json:"alerts"`
}

// UpdateAlerts rewrites the guild's alert rules from the panel's batch.
func (h *Handler) UpdateAlerts(w http.ResponseWriter, r *http.Request) {
	var req alertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Alerts == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", "alerts list missing"))
		return
	}

	rules, err := h.Service.SaveAlertRules(r.Context(), h.guild(r), req.Alerts)
	if err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid alert rule", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateAlerts: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not update alerts", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateAlerts: %d alert rules saved for guild %s", len(req.Alerts), h.guild(r)))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Alerts updated", rules))
}

type objectiveRequest struct {
	MonthlyTicketGoal int `json:"monthly_ticket_goal"`
}

func (h *Handler) SetObjective(w http.ResponseWriter, r *http.Request) {
	var req objectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.Service.SetObjective(r.Context(), h.guild(r), req.MonthlyTicketGoal); err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid objective", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("SetObjective: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not set objective", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Objective set", req))
}
