package db

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateSale(ctx context.Context, sale models.Sale) error {
	_, err := d.Bun.NewInsert().Model(&sale).Exec(ctx)
	return err
}

func (d *DB) GetSaleByID(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	err := d.Bun.NewSelect().
		Model(&sale).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (d *DB) UpdateSale(ctx context.Context, sale models.Sale) error {
	_, err := d.Bun.NewUpdate().
		Model(&sale).
		Column("first_name", "last_name", "contact", "quantity", "seller_earning", "company_earning", "updated_at").
		Where("id = ?", sale.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteSale(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Sale)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListSales returns the ledger newest first, optionally bounded by a
// creation-time window.
func (d *DB) ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error) {
	sales := make([]models.Sale, 0)
	q := d.Bun.NewSelect().Model(&sales).Order("created_at DESC")
	if !w.Start.IsZero() {
		q = q.Where("created_at >= ?", w.Start)
	}
	if !w.End.IsZero() {
		q = q.Where("created_at <= ?", w.End)
	}
	err := q.Scan(ctx)
	return sales, err
}

// GetSalesBySeller returns one seller's rows newest first. The ordering
// is what the correction drain relies on.
func (d *DB) GetSalesBySeller(ctx context.Context, sellerID string) ([]models.Sale, error) {
	sales := make([]models.Sale, 0)
	err := d.Bun.NewSelect().
		Model(&sales).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Scan(ctx)
	return sales, err
}

// SearchSales returns a page of sales plus the total match count.
func (d *DB) SearchSales(ctx context.Context, opts ledger.SearchOptions) ([]models.Sale, int, error) {
	opts = opts.Normalize()

	sales := make([]models.Sale, 0)
	q := d.Bun.NewSelect().Model(&sales).Order("created_at DESC")
	if !opts.Window.Start.IsZero() {
		q = q.Where("created_at >= ?", opts.Window.Start)
	}
	if !opts.Window.End.IsZero() {
		q = q.Where("created_at <= ?", opts.Window.End)
	}
	if opts.SellerID != "" {
		q = q.Where("seller_id = ?", opts.SellerID)
	}
	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("LOWER(last_name) LIKE ?", pattern).
				WhereOr("LOWER(first_name) LIKE ?", pattern).
				WhereOr("LOWER(contact) LIKE ?", pattern)
		})
	}

	total, err := q.
		Limit(opts.Limit).
		Offset((opts.Page - 1) * opts.Limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// DeleteAllSales wipes the live ledger. Used by season closure and resets.
func (d *DB) DeleteAllSales(ctx context.Context) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Sale)(nil)).
		Where("1 = 1").
		Exec(ctx)
	return err
}

func (d *DB) CountSales(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.Sale)(nil)).Count(ctx)
}
