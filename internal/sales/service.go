package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/models"
	"ms-tombola/internal/utils"
)

type SaleDBLayer interface {
	CreateSale(ctx context.Context, sale models.Sale) error
	GetSaleByID(ctx context.Context, id string) (*models.Sale, error)
	UpdateSale(ctx context.Context, sale models.Sale) error
	DeleteSale(ctx context.Context, id string) error
	ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error)
	GetSalesBySeller(ctx context.Context, sellerID string) ([]models.Sale, error)
	SearchSales(ctx context.Context, opts ledger.SearchOptions) ([]models.Sale, int, error)
}

// Notifier forwards ledger activity to the notification channel. A nil
// Notifier disables notifications; publish failures never fail the sale.
type Notifier interface {
	PublishSaleLogged(sale models.Sale) error
}

type Service struct {
	DB     SaleDBLayer
	Notify Notifier
	Log    *logger.Logger
}

func NewService(db SaleDBLayer, notify Notifier, log *logger.Logger) *Service {
	return &Service{DB: db, Notify: notify, Log: log}
}

// SaleInput carries the customer-facing fields of a registration or edit.
type SaleInput struct {
	FirstName string
	LastName  string
	Contact   string
	Quantity  int
}

func (in SaleInput) validate() error {
	if strings.TrimSpace(in.LastName) == "" {
		return &ledger.ValidationError{Field: "last_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return &ledger.ValidationError{Field: "first_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Contact) == "" {
		return &ledger.ValidationError{Field: "contact", Reason: "must not be empty"}
	}
	if in.Quantity < 1 {
		return &ledger.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	return nil
}

// RegisterSale validates the input, computes both earnings from the rates
// in effect right now, and writes the sale. Validation failures happen
// before any store call.
func (s *Service) RegisterSale(ctx context.Context, sellerID string, in SaleInput, rates ledger.Rates) (*models.Sale, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, &ledger.ValidationError{Field: "seller_id", Reason: "must not be empty"}
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	sale := models.Sale{
		ID:             utils.NewSaleID(),
		SellerID:       sellerID,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Contact:        strings.TrimSpace(in.Contact),
		Quantity:       in.Quantity,
		SellerEarning:  rates.SellerEarning(in.Quantity),
		CompanyEarning: rates.CompanyEarning(in.Quantity),
		CreatedAt:      time.Now(),
	}

	if err := s.DB.CreateSale(ctx, sale); err != nil {
		return nil, &ledger.StorageError{Step: "insert sale", Err: err}
	}

	if s.Notify != nil {
		if err := s.Notify.PublishSaleLogged(sale); err != nil {
			s.Log.Warn("KAFKA", fmt.Sprintf("Failed to publish sale logged event: %v", err))
		}
	}

	return &sale, nil
}

// EditSale rewrites a sale's customer fields and quantity, recomputing
// earnings from the rates passed in.
func (s *Service) EditSale(ctx context.Context, id string, in SaleInput, rates ledger.Rates) (*models.Sale, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	sale, err := s.DB.GetSaleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sale %s not found: %w", id, err)
	}

	sale.FirstName = strings.TrimSpace(in.FirstName)
	sale.LastName = strings.TrimSpace(in.LastName)
	sale.Contact = strings.TrimSpace(in.Contact)
	sale.Quantity = in.Quantity
	sale.SellerEarning = rates.SellerEarning(in.Quantity)
	sale.CompanyEarning = rates.CompanyEarning(in.Quantity)
	sale.UpdatedAt = time.Now()

	if err := s.DB.UpdateSale(ctx, *sale); err != nil {
		return nil, &ledger.StorageError{Step: "update sale", Err: err}
	}
	return sale, nil
}

// DeleteSale removes one sale by id, returning the deleted row.
func (s *Service) DeleteSale(ctx context.Context, id string) (*models.Sale, error) {
	sale, err := s.DB.GetSaleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sale %s not found: %w", id, err)
	}
	if err := s.DB.DeleteSale(ctx, id); err != nil {
		return nil, &ledger.StorageError{Step: "delete sale", Err: err}
	}
	return sale, nil
}

// Correction is the outcome of a ticket reduction.
type Correction struct {
	SellerID string `json:"seller_id"`
	Removed  int    `json:"removed"`
	NewTotal int    `json:"new_total"`
}

// ReduceTickets removes amount tickets from a seller by draining their
// sales newest first: whole rows are deleted while they fit, then the
// last row is split and its earnings recomputed. The most recent sales
// absorb corrections so the attribution of early sales stays intact.
//
// Rejections (amount < 1, amount above the current total) mutate
// nothing. A store failure mid-drain aborts without rolling back rows
// already changed in this call; the error names the failed step.
func (s *Service) ReduceTickets(ctx context.Context, sellerID string, amount int, rates ledger.Rates) (*Correction, error) {
	if amount < 1 {
		return nil, &ledger.ValidationError{Field: "amount", Reason: "must be a positive integer"}
	}

	rows, err := s.DB.GetSalesBySeller(ctx, sellerID)
	if err != nil {
		return nil, &ledger.StorageError{Step: "fetch seller sales", Err: err}
	}

	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	if amount > total {
		return nil, &ledger.OutOfRangeError{SellerID: sellerID, Requested: amount, Available: total}
	}

	remaining := amount
	for _, row := range rows {
		if remaining == 0 {
			break
		}
		if row.Quantity <= remaining {
			if err := s.DB.DeleteSale(ctx, row.ID); err != nil {
				return nil, &ledger.StorageError{Step: "delete drained sale", Err: err}
			}
			remaining -= row.Quantity
			continue
		}

		row.Quantity -= remaining
		row.SellerEarning = rates.SellerEarning(row.Quantity)
		row.CompanyEarning = rates.CompanyEarning(row.Quantity)
		row.UpdatedAt = time.Now()
		if err := s.DB.UpdateSale(ctx, row); err != nil {
			return nil, &ledger.StorageError{Step: "split drained sale", Err: err}
		}
		remaining = 0
	}

	return &Correction{SellerID: sellerID, Removed: amount, NewTotal: total - amount}, nil
}

// SellerSales returns one seller's rows newest first, bounded by a window.
func (s *Service) SellerSales(ctx context.Context, sellerID string, w ledger.Window) ([]models.Sale, error) {
	rows, err := s.DB.GetSalesBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales for seller %s: %w", sellerID, err)
	}
	return w.Filter(rows), nil
}

// SearchSales returns a page of sales plus the total match count.
func (s *Service) SearchSales(ctx context.Context, opts ledger.SearchOptions) ([]models.Sale, int, error) {
	rows, total, err := s.DB.SearchSales(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search sales: %w", err)
	}
	return rows, total, nil
}

// ListSales returns the ledger newest first, bounded by a window.
func (s *Service) ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error) {
	rows, err := s.DB.ListSales(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return rows, nil
}
