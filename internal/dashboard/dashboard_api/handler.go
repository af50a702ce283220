package dashboard_api

import (
	"fmt"
	"net/http"
	"time"

	"ms-tombola/internal/dashboard"
	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/utils"
)

type Handler struct {
	Service      *dashboard.Service
	Logger       *logger.Logger
	DefaultGuild string
}

func NewHandler(service *dashboard.Service, log *logger.Logger, defaultGuild string) *Handler {
	return &Handler{Service: service, Logger: log, DefaultGuild: defaultGuild}
}

// Overview serves the dashboard, bounded by the panel's period filter
// (period=today|7days|30days|custom with from/to dates).
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := ledger.ParsePeriod(q.Get("period"), q.Get("from"), q.Get("to"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date filter", err.Error()))
		return
	}

	overview, err := h.Service.Overview(r.Context(), win, time.Now())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Overview: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not build dashboard", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Dashboard", overview))
}

func (h *Handler) ObjectiveProgress(w http.ResponseWriter, r *http.Request) {
	guildID := r.Header.Get("X-Guild-ID")
	if guildID == "" {
		guildID = h.DefaultGuild
	}

	progress, err := h.Service.ObjectiveProgress(r.Context(), guildID, time.Now())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ObjectiveProgress: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not compute progress", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Objective progress", progress))
}
