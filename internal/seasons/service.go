package seasons

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

// SeasonDBLayer is the season storage surface the service drives.
type SeasonDBLayer interface {
	CreateSeason(ctx context.Context, season models.Season) error
	GetSeasonByID(ctx context.Context, id string) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]models.Season, error)
	CopySales(ctx context.Context, seasonID string, sales []models.Sale, archivedAt time.Time) error
	ListSeasonSales(ctx context.Context, seasonID string, page, limit int) ([]models.SeasonSale, int, error)
	ListAllSeasonSales(ctx context.Context, seasonID string) ([]models.Sale, error)
	SinkSales(ctx context.Context, sales []models.Sale, archivedAt time.Time) error
}

// LedgerDBLayer is the slice of the live sales storage the archival
// pipeline needs.
type LedgerDBLayer interface {
	ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error)
	DeleteAllSales(ctx context.Context) error
}

type Notifier interface {
	PublishSeasonClosed(season models.Season) error
}

type Service struct {
	DB     SeasonDBLayer
	Ledger LedgerDBLayer
	Notify Notifier
	Log    *logger.Logger
}

// ResetSummary reports what a destructive reset removed.
type ResetSummary struct {
	SalesRemoved int   `json:"sales_removed"`
	Tickets      int   `json:"tickets"`
	Earnings     int64 `json:"earnings"`
}

// CloseSeason snapshots the whole live ledger under a named season and
// wipes the ledger. The steps run in order: read, insert header, copy
// rows, delete. There is no cross-step transaction, so a failure leaves
// earlier steps applied; the step name travels in the error so the
// operator knows where the pipeline stopped.
func (s *Service) CloseSeason(ctx context.Context, name string) (*models.Season, error) {
	now := time.Now()

	sales, err := s.Ledger.ListSales(ctx, ledger.Window{})
	if err != nil {
		return nil, &ledger.StorageError{Step: "read live ledger", Err: err}
	}
	if len(sales) == 0 {
		return nil, ledger.ErrNothingToArchive
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Season of " + now.Format("02/01/2006")
	}

	totals := ledger.Aggregate(sales)
	season := models.Season{
		ID:                   utils.NewSeasonID(),
		Name:                 name,
		ClosedAt:             now,
		TotalTickets:         totals.TotalTickets,
		TotalSellerEarnings:  totals.TotalSellerEarnings,
		TotalCompanyEarnings: totals.TotalCompanyEarnings,
		TotalSales:           totals.TotalSales,
	}

	if err := s.DB.CreateSeason(ctx, season); err != nil {
		return nil, &ledger.StorageError{Step: "insert season header", Err: err}
	}
	if err := s.DB.CopySales(ctx, season.ID, sales, now); err != nil {
		return nil, &ledger.StorageError{Step: "copy sales into season", Err: err}
	}
	if err := s.Ledger.DeleteAllSales(ctx); err != nil {
		return nil, &ledger.StorageError{Step: "clear live ledger", Err: err}
	}

	if s.Notify != nil {
		if err := s.Notify.PublishSeasonClosed(season); err != nil {
			s.Log.Warn("KAFKA", fmt.Sprintf("Failed to publish season closed event: %v", err))
		}
	}

	return &season, nil
}

// ResetLedger wipes the live ledger without creating a season. Rows are
// still copied into the loose archive first so a mistaken reset is
// recoverable by hand.
func (s *Service) ResetLedger(ctx context.Context) (*ResetSummary, error) {
	sales, err := s.Ledger.ListSales(ctx, ledger.Window{})
	if err != nil {
		return nil, &ledger.StorageError{Step: "read live ledger", Err: err}
	}
	if len(sales) == 0 {
		return nil, ledger.ErrNothingToArchive
	}

	if err := s.DB.SinkSales(ctx, sales, time.Now()); err != nil {
		return nil, &ledger.StorageError{Step: "archive sales", Err: err}
	}
	if err := s.Ledger.DeleteAllSales(ctx); err != nil {
		return nil, &ledger.StorageError{Step: "clear live ledger", Err: err}
	}

	totals := ledger.Aggregate(sales)
	return &ResetSummary{
		SalesRemoved: totals.TotalSales,
		Tickets:      totals.TotalTickets,
		Earnings:     totals.TotalSellerEarnings + totals.TotalCompanyEarnings,
	}, nil
}

func (s *Service) ListSeasons(ctx context.Context) ([]models.Season, error) {
	return s.DB.ListSeasons(ctx)
}

func (s *Service) GetSeason(ctx context.Context, id string) (*models.Season, error) {
	return s.DB.GetSeasonByID(ctx, id)
}

func (s *Service) SeasonSales(ctx context.Context, seasonID string, page, limit int) ([]models.SeasonSale, int, error) {
	return s.DB.ListSeasonSales(ctx, seasonID, page, limit)
}

// ExportSeason returns all of a season's sales for export. The season
// must exist; an unknown id is an error rather than an empty file.
func (s *Service) ExportSeason(ctx context.Context, seasonID string) ([]models.Sale, error) {
	if _, err := s.DB.GetSeasonByID(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.DB.ListAllSeasonSales(ctx, seasonID)
}
