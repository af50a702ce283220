package season_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-tombola/internal/export"
	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/seasons"
	"ms-tombola/internal/utils"
)

type Handler struct {
	Service *seasons.Service
	Logger  *logger.Logger
}

func NewHandler(service *seasons.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

type closeRequest struct {
	Name string `json:"name"`
}

// CloseSeason archives the live ledger under a season and wipes it.
func (h *Handler) CloseSeason(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	season, err := h.Service.CloseSeason(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, ledger.ErrNothingToArchive) {
			h.Logger.Warn("API", "CloseSeason: ledger is empty")
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Nothing to archive", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CloseSeason: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not close season", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CloseSeason: season %s closed with %d sales", season.ID, season.TotalSales))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Season closed", season))
}

// ResetLedger wipes the ledger into the loose archive, with no season.
func (h *Handler) ResetLedger(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.ResetLedger(r.Context())
	if err != nil {
		if errors.Is(err, ledger.ErrNothingToArchive) {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Nothing to reset", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ResetLedger: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not reset ledger", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("ResetLedger: removed %d sales (%d tickets)", summary.SalesRemoved, summary.Tickets))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ledger reset", summary))
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListSeasons(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSeasons: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list seasons", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seasons listed", list))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonId")

	season, err := h.Service.GetSeason(r.Context(), seasonID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSeason: season not found: %v", err))
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Season not found", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Season found", season))
}

// SeasonSales serves one page of a closed season's archived rows.
func (h *Handler) SeasonSales(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonId")

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	rows, total, err := h.Service.SeasonSales(r.Context(), seasonID, page, limit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SeasonSales: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list season sales", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Season sales listed", map[string]interface{}{
		"season_id": seasonID,
		"sales":     rows,
		"total":     total,
	}))
}

// ExportSeasonCSV streams one closed season's sales as a CSV attachment.
func (h *Handler) ExportSeasonCSV(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonId")

	rows, err := h.Service.ExportSeason(r.Context(), seasonID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ExportSeasonCSV: %v", err))
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Season not found", err.Error()))
		return
	}

	data, err := export.SalesCSV(rows)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ExportSeasonCSV: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not render CSV", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
