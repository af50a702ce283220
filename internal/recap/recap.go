package recap

import (
	"context"
	"fmt"
	"time"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

// LiveSource reads the live ledger.
type LiveSource interface {
	ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error)
}

// ArchiveSource reads sales that were already moved into season storage.
type ArchiveSource interface {
	ListArchivedSales(ctx context.Context, w ledger.Window) ([]models.Sale, error)
}

// Recap summarizes one day's activity.
type Recap struct {
	From                 time.Time             `json:"from"`
	To                   time.Time             `json:"to"`
	TotalTickets         int                   `json:"total_tickets"`
	TotalSellerEarnings  int64                 `json:"total_seller_earnings"`
	TotalCompanyEarnings int64                 `json:"total_company_earnings"`
	SaleCount            int                   `json:"sale_count"`
	PerSeller            []ledger.SellerTotals `json:"per_seller"`
}

// Empty reports whether the window saw no activity. Callers render a
// distinct "no activity" message for this; it is not an error.
func (r Recap) Empty() bool {
	return r.SaleCount == 0
}

type Service struct {
	Live    LiveSource
	Archive ArchiveSource
}

func NewService(live LiveSource, archive ArchiveSource) *Service {
	return &Service{Live: live, Archive: archive}
}

// DailyRecap aggregates [startOfDay(now), now] across the live ledger
// and season storage. A season closure inside the window copies rows
// before deleting them, so the same sale can momentarily exist on both
// sides; rows are deduplicated by (seller, quantity, createdAt) and
// counted exactly once.
func (s *Service) DailyRecap(ctx context.Context, now time.Time) (*Recap, error) {
	w := ledger.Window{Start: ledger.StartOfDay(now), End: now}

	live, err := s.Live.ListSales(ctx, w)
	if err != nil {
		return nil, &ledger.StorageError{Step: "fetch live sales", Err: err}
	}
	archived, err := s.Archive.ListArchivedSales(ctx, w)
	if err != nil {
		return nil, &ledger.StorageError{Step: "fetch archived sales", Err: err}
	}

	seen := make(map[string]struct{}, len(live)+len(archived))
	unique := make([]models.Sale, 0, len(live)+len(archived))
	for _, sale := range append(live, archived...) {
		key := fmt.Sprintf("%s|%d|%s", sale.SellerID, sale.Quantity, sale.CreatedAt.UTC().Format(time.RFC3339Nano))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, sale)
	}

	totals := ledger.Aggregate(unique)
	return &Recap{
		From:                 w.Start,
		To:                   now,
		TotalTickets:         totals.TotalTickets,
		TotalSellerEarnings:  totals.TotalSellerEarnings,
		TotalCompanyEarnings: totals.TotalCompanyEarnings,
		SaleCount:            totals.TotalSales,
		PerSeller:            totals.PerSeller,
	}, nil
}
