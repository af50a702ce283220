package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err, "Failed to open SQLite")

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	err = bunDB.ResetModel(context.Background(),
		(*models.Season)(nil),
		(*models.SeasonSale)(nil),
		(*models.ArchiveSale)(nil),
	)
	require.NoError(t, err, "Failed to create tables")

	t.Cleanup(func() { bunDB.Close() })
	return &DB{Bun: bunDB}
}

func liveSale(id string, qty int, created time.Time) models.Sale {
	return models.Sale{
		ID:             id,
		SellerID:       "seller-1",
		FirstName:      "Jean",
		LastName:       "Dupont",
		Contact:        "jean@example.com",
		Quantity:       qty,
		SellerEarning:  ledger.DefaultRates.SellerEarning(qty),
		CompanyEarning: ledger.DefaultRates.CompanyEarning(qty),
		CreatedAt:      created,
	}
}

func TestCreateAndListSeasons(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)

	for i, name := range []string{"Spring", "Summer"} {
		season := models.Season{
			ID:       name,
			Name:     name,
			ClosedAt: base.AddDate(0, i, 0),
		}
		require.NoError(t, db.CreateSeason(ctx, season))
	}

	seasons, err := db.ListSeasons(ctx)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, "Summer", seasons[0].Name, "newest season first")
}

func TestCopyAndListSeasonSales(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateSeason(ctx, models.Season{ID: "season-1", Name: "Test", ClosedAt: base}))

	sales := []models.Sale{
		liveSale("a", 3, base.Add(-2*time.Hour)),
		liveSale("b", 5, base.Add(-time.Hour)),
	}
	require.NoError(t, db.CopySales(ctx, "season-1", sales, base))

	rows, total, err := db.ListSeasonSales(ctx, "season-1", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].ID, "newest first")
	// Original creation time survives archival.
	assert.True(t, rows[1].CreatedAt.Equal(sales[0].CreatedAt), "created_at preserved")
	assert.True(t, rows[0].ArchivedAt.Equal(base))
}

func TestListSeasonSalesPaging(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateSeason(ctx, models.Season{ID: "season-1", Name: "Test", ClosedAt: base}))

	sales := make([]models.Sale, 0, 5)
	for i := 0; i < 5; i++ {
		sales = append(sales, liveSale(string(rune('a'+i)), 1, base.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, db.CopySales(ctx, "season-1", sales, base.Add(time.Hour)))

	rows, total, err := db.ListSeasonSales(ctx, "season-1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rows, 2, "page of 2")
}

func TestListAllSeasonSales(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateSeason(ctx, models.Season{ID: "season-1", Name: "Test", ClosedAt: base}))
	sales := []models.Sale{
		liveSale("a", 3, base.Add(-2*time.Hour)),
		liveSale("b", 5, base.Add(-time.Hour)),
	}
	require.NoError(t, db.CopySales(ctx, "season-1", sales, base))

	got, err := db.ListAllSeasonSales(ctx, "season-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID, "newest first")
	assert.Equal(t, 3, got[1].Quantity)
	assert.Equal(t, "Dupont", got[1].LastName, "flattened sale keeps customer fields")
}

func TestListArchivedSalesWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateSeason(ctx, models.Season{ID: "season-1", Name: "Test", ClosedAt: base}))
	sales := []models.Sale{
		liveSale("today", 4, base),
		liveSale("last-week", 2, base.AddDate(0, 0, -7)),
	}
	require.NoError(t, db.CopySales(ctx, "season-1", sales, base.Add(time.Hour)))

	w := ledger.Window{Start: base.Add(-time.Hour)}
	got, err := db.ListArchivedSales(ctx, w)
	require.NoError(t, err)
	require.Len(t, got, 1, "only today's archived sale")
	assert.Equal(t, "today", got[0].ID)
	assert.Equal(t, 4, got[0].Quantity)
	assert.Equal(t, "seller-1", got[0].SellerID)
}

func TestSinkSales(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	sales := []models.Sale{
		liveSale("a", 3, now.Add(-time.Hour)),
		liveSale("b", 2, now),
	}
	require.NoError(t, db.SinkSales(ctx, sales, now))

	count, err := db.Bun.NewSelect().Model((*models.ArchiveSale)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
