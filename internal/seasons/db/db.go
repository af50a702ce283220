package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateSeason(ctx context.Context, season models.Season) error {
	_, err := d.Bun.NewInsert().Model(&season).Exec(ctx)
	return err
}

func (d *DB) GetSeasonByID(ctx context.Context, id string) (*models.Season, error) {
	var season models.Season
	err := d.Bun.NewSelect().
		Model(&season).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// ListSeasons returns all closed seasons, newest first.
func (d *DB) ListSeasons(ctx context.Context) ([]models.Season, error) {
	seasons := make([]models.Season, 0)
	err := d.Bun.NewSelect().
		Model(&seasons).
		Order("closed_at DESC").
		Scan(ctx)
	return seasons, err
}

// CopySales writes every live sale under the season, preserving the
// original creation time.
func (d *DB) CopySales(ctx context.Context, seasonID string, sales []models.Sale, archivedAt time.Time) error {
	if len(sales) == 0 {
		return nil
	}
	rows := make([]models.SeasonSale, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, models.SeasonSale{
			ID:             s.ID,
			SeasonID:       seasonID,
			SellerID:       s.SellerID,
			FirstName:      s.FirstName,
			LastName:       s.LastName,
			Contact:        s.Contact,
			Quantity:       s.Quantity,
			SellerEarning:  s.SellerEarning,
			CompanyEarning: s.CompanyEarning,
			CreatedAt:      s.CreatedAt,
			ArchivedAt:     archivedAt,
		})
	}
	_, err := d.Bun.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// ListSeasonSales returns a page of one season's archived sales, newest
// first, plus the season's total row count.
func (d *DB) ListSeasonSales(ctx context.Context, seasonID string, page, limit int) ([]models.SeasonSale, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	rows := make([]models.SeasonSale, 0)
	total, err := d.Bun.NewSelect().
		Model(&rows).
		Where("season_id = ?", seasonID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAllSeasonSales returns every sale of one season, newest first,
// flattened to plain sales for export.
func (d *DB) ListAllSeasonSales(ctx context.Context, seasonID string) ([]models.Sale, error) {
	rows := make([]models.SeasonSale, 0)
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("season_id = ?", seasonID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return flatten(rows), nil
}

// ListArchivedSales returns season-archived sales inside a window,
// flattened back to plain sales so the recap can merge them with the
// live ledger.
func (d *DB) ListArchivedSales(ctx context.Context, w ledger.Window) ([]models.Sale, error) {
	rows := make([]models.SeasonSale, 0)
	q := d.Bun.NewSelect().Model(&rows).Order("created_at DESC")
	if !w.Start.IsZero() {
		q = q.Where("created_at >= ?", w.Start)
	}
	if !w.End.IsZero() {
		q = q.Where("created_at <= ?", w.End)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return flatten(rows), nil
}

func flatten(rows []models.SeasonSale) []models.Sale {
	sales := make([]models.Sale, 0, len(rows))
	for _, r := range rows {
		sales = append(sales, models.Sale{
			ID:             r.ID,
			SellerID:       r.SellerID,
			FirstName:      r.FirstName,
			LastName:       r.LastName,
			Contact:        r.Contact,
			Quantity:       r.Quantity,
			SellerEarning:  r.SellerEarning,
			CompanyEarning: r.CompanyEarning,
			CreatedAt:      r.CreatedAt,
		})
	}
	return sales
}

// SinkSales copies sales into the season-less archive table. Used by
// destructive resets right before the ledger is wiped.
func (d *DB) SinkSales(ctx context.Context, sales []models.Sale, archivedAt time.Time) error {
	if len(sales) == 0 {
		return nil
	}
	rows := make([]models.ArchiveSale, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, models.ArchiveSale{
			SaleID:         s.ID,
			SellerID:       s.SellerID,
			FirstName:      s.FirstName,
			LastName:       s.LastName,
			Contact:        s.Contact,
			Quantity:       s.Quantity,
			SellerEarning:  s.SellerEarning,
			CompanyEarning: s.CompanyEarning,
			CreatedAt:      s.CreatedAt,
			ArchivedAt:     archivedAt,
		})
	}
	_, err := d.Bun.NewInsert().Model(&rows).Exec(ctx)
	return err
}
