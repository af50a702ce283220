package sale_api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-tombola/internal/export"
	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/models"
	"ms-tombola/internal/sales"
	"ms-tombola/internal/settings"
	"ms-tombola/internal/utils"
)

// RateResolver yields the effective rates for a guild.
type RateResolver interface {
	Resolve(ctx context.Context, guildID string) (*settings.Resolved, error)
}

type Handler struct {
	Service      *sales.Service
	Settings     RateResolver
	Logger       *logger.Logger
	DefaultGuild string
}

func NewHandler(service *sales.Service, resolver RateResolver, log *logger.Logger, defaultGuild string) *Handler {
	return &Handler{
		Service:      service,
		Settings:     resolver,
		Logger:       log,
		DefaultGuild: defaultGuild,
	}
}

type saleRequest struct {
	SellerID  string `json:"seller_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Contact   string `json:"contact"`
	Quantity  int    `json:"quantity"`
}

// rates resolves per-guild rates, falling back to defaults when the
// settings lookup fails.
func (h *Handler) rates(r *http.Request) ledger.Rates {
	guildID := r.Header.Get("X-Guild-ID")
	if guildID == "" {
		guildID = h.DefaultGuild
	}
	resolved, err := h.Settings.Resolve(r.Context(), guildID)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("rates: settings lookup failed, using defaults: %v", err))
		return ledger.DefaultRates
	}
	return resolved.Rates
}

func statusForError(err error) int {
	var ve *ledger.ValidationError
	var oor *ledger.OutOfRangeError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &oor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) RegisterSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RegisterSale: failed to decode request body: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	sale, err := h.Service.RegisterSale(r.Context(), req.SellerID, sales.SaleInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Contact:   req.Contact,
		Quantity:  req.Quantity,
	}, h.rates(r))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RegisterSale: %v", err))
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not register sale", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("RegisterSale: sale %s registered for seller %s (%d tickets)", sale.ID, sale.SellerID, sale.Quantity))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Sale registered", sale))
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")

	sale, err := h.Service.DB.GetSaleByID(r.Context(), saleID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSale: sale not found: %v", err))
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Sale not found", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sale found", sale))
}

func (h *Handler) EditSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")

	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("EditSale: failed to decode request body: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	sale, err := h.Service.EditSale(r.Context(), saleID, sales.SaleInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Contact:   req.Contact,
		Quantity:  req.Quantity,
	}, h.rates(r))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EditSale: %v", err))
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not edit sale", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("EditSale: sale %s updated", sale.ID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sale updated", sale))
}

func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")

	sale, err := h.Service.DeleteSale(r.Context(), saleID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteSale: %v", err))
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not delete sale", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteSale: sale %s removed", sale.ID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sale deleted", sale))
}

// ListSales serves a paged, optionally filtered view of the ledger.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := ledger.SearchOptions{
		SellerID: q.Get("seller_id"),
		Search:   q.Get("search"),
	}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))

	if w2, err := ledger.ParsePeriod(q.Get("period"), q.Get("from"), q.Get("to")); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date filter", err.Error()))
		return
	} else {
		opts.Window = w2
	}

	rows, total, err := h.Service.SearchSales(r.Context(), opts)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSales: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list sales", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Sales listed", map[string]interface{}{
		"sales": rows,
		"total": total,
	}))
}

// SellerSales serves one seller's rows plus their aggregate totals,
// average ticket count per sale and per-day breakdown.
func (h *Handler) SellerSales(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")

	q := r.URL.Query()
	win, err := ledger.ParsePeriod(q.Get("period"), q.Get("from"), q.Get("to"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date filter", err.Error()))
		return
	}

	rows, err := h.Service.SellerSales(r.Context(), sellerID, win)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SellerSales: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not fetch seller sales", err.Error()))
		return
	}

	totals := ledger.Aggregate(rows)
	avgPerSale := 0.0
	if totals.TotalSales > 0 {
		avgPerSale = float64(totals.TotalTickets) / float64(totals.TotalSales)
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seller sales", map[string]interface{}{
		"seller_id":    sellerID,
		"sales":        rows,
		"totals":       totals,
		"avg_per_sale": avgPerSale,
		"daily":        dailyBreakdown(rows),
	}))
}

type reduceRequest struct {
	Amount int `json:"amount"`
}

// ReduceTickets drains tickets from a seller, newest sales first.
func (h *Handler) ReduceTickets(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerId")

	var req reduceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReduceTickets: failed to decode request body: %v", err))
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	correction, err := h.Service.ReduceTickets(r.Context(), sellerID, req.Amount, h.rates(r))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ReduceTickets: %v", err))
		utils.WriteJSON(w, statusForError(err), utils.ErrorResponse("Could not reduce tickets", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("ReduceTickets: removed %d tickets from seller %s", correction.Removed, correction.SellerID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tickets reduced", correction))
}

// ExportCSV streams the ledger as a CSV attachment.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := ledger.ParsePeriod(q.Get("period"), q.Get("from"), q.Get("to"))
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid date filter", err.Error()))
		return
	}

	rows, err := h.Service.ListSales(r.Context(), win)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ExportCSV: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not export sales", err.Error()))
		return
	}

	data, err := export.SalesCSV(rows)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ExportCSV: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not render CSV", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// sellerDay is one row of a seller's per-day breakdown.
type sellerDay struct {
	Date    string `json:"date"`
	Tickets int    `json:"tickets"`
	Sales   int    `json:"sales"`
}

// dailyBreakdown groups rows by calendar day, oldest first. Only days
// with activity appear.
func dailyBreakdown(rows []models.Sale) []sellerDay {
	byDay := make(map[string]*sellerDay)
	for _, s := range rows {
		date := s.CreatedAt.Format("2006-01-02")
		day, ok := byDay[date]
		if !ok {
			day = &sellerDay{Date: date}
			byDay[date] = day
		}
		day.Tickets += s.Quantity
		day.Sales++
	}

	out := make([]sellerDay, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}
