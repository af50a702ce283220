package draw_api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-tombola/internal/draw"
	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/models"
	"ms-tombola/internal/sales"
	"ms-tombola/internal/utils"
)

type Handler struct {
	Engine *draw.Engine
	Sales  *sales.Service
	Logger *logger.Logger
}

func NewHandler(engine *draw.Engine, salesService *sales.Service, log *logger.Logger) *Handler {
	return &Handler{Engine: engine, Sales: salesService, Logger: log}
}

// pool loads the draw pool, optionally bounded by from/to query dates.
// The returned flag distinguishes a bad filter from a storage failure.
func (h *Handler) pool(r *http.Request) ([]models.Sale, bool, error) {
	q := r.URL.Query()
	win, err := ledger.ParsePeriod(q.Get("period"), q.Get("from"), q.Get("to"))
	if err != nil {
		return nil, true, err
	}
	rows, err := h.Sales.ListSales(r.Context(), win)
	return rows, false, err
}

// Draw runs a weighted draw over the live ledger, optionally restricted
// to a date window. The result is never persisted, so repeated calls
// redraw over the same pool.
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	pool, badFilter, err := h.pool(r)
	if err != nil {
		if badFilter {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date filter", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Draw: failed to load pool: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not load draw pool", err.Error()))
		return
	}

	result, err := h.Engine.Draw(pool)
	if err != nil {
		if errors.Is(err, ledger.ErrEmptyPool) {
			h.Logger.Warn("API", "Draw: empty pool")
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("No tickets in the pool", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Draw: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Draw failed", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Draw: winner %s %s (sale %s, %d/%d tickets)",
		result.Winner.FirstName, result.Winner.LastName, result.Winner.ID,
		result.Winner.Quantity, result.TotalTickets))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Winner drawn", result))
}

// DrawVoucher draws a winner and returns the result as a QR PNG.
func (h *Handler) DrawVoucher(w http.ResponseWriter, r *http.Request) {
	pool, badFilter, err := h.pool(r)
	if err != nil {
		if badFilter {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date filter", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DrawVoucher: failed to load pool: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not load draw pool", err.Error()))
		return
	}

	result, err := h.Engine.Draw(pool)
	if err != nil {
		if errors.Is(err, ledger.ErrEmptyPool) {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("No tickets in the pool", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Draw failed", err.Error()))
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := draw.WinnerVoucher(result, size)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DrawVoucher: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not render voucher", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
