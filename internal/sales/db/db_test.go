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
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Sale)(nil)), "Failed to create tables")

	t.Cleanup(func() { bunDB.Close() })
	return &DB{Bun: bunDB}
}

func testSale(id, seller string, qty int, created time.Time) models.Sale {
	return models.Sale{
		ID:             id,
		SellerID:       seller,
		FirstName:      "Jean",
		LastName:       "Dupont",
		Contact:        "jean@example.com",
		Quantity:       qty,
		SellerEarning:  ledger.DefaultRates.SellerEarning(qty),
		CompanyEarning: ledger.DefaultRates.CompanyEarning(qty),
		CreatedAt:      created,
	}
}

func TestCreateAndGetSale(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sale := testSale("sale-1", "seller-1", 3, time.Now())
	require.NoError(t, db.CreateSale(ctx, sale))

	got, err := db.GetSaleByID(ctx, "sale-1")
	require.NoError(t, err)
	assert.Equal(t, "seller-1", got.SellerID)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, int64(1200), got.SellerEarning)
}

func TestListSalesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "middle", "new"} {
		sale := testSale(id, "seller-1", 1, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, db.CreateSale(ctx, sale))
	}

	rows, err := db.ListSales(ctx, ledger.Window{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "new", rows[0].ID, "newest first")
	assert.Equal(t, "old", rows[2].ID)
}

func TestListSalesWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		sale := testSale(string(rune('a'+i)), "seller-1", 1, base.AddDate(0, 0, i))
		require.NoError(t, db.CreateSale(ctx, sale))
	}

	w := ledger.Window{Start: base.AddDate(0, 0, 1), End: base.AddDate(0, 0, 3)}
	rows, err := db.ListSales(ctx, w)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "only rows inside the window")
}

func TestGetSalesBySellerOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"s1-old", "s1-new"} {
		require.NoError(t, db.CreateSale(ctx, testSale(id, "seller-1", i+1, base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, db.CreateSale(ctx, testSale("s2", "seller-2", 9, base)))

	rows, err := db.GetSalesBySeller(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1-new", rows[0].ID, "newest sale first")
}

func TestUpdateSale(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	sale := testSale("sale-1", "seller-1", 5, time.Now())
	require.NoError(t, db.CreateSale(ctx, sale))

	sale.Quantity = 3
	sale.SellerEarning = ledger.DefaultRates.SellerEarning(3)
	sale.CompanyEarning = ledger.DefaultRates.CompanyEarning(3)
	sale.UpdatedAt = time.Now()
	require.NoError(t, db.UpdateSale(ctx, sale))

	got, err := db.GetSaleByID(ctx, "sale-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, int64(1200), got.SellerEarning)
	assert.False(t, got.UpdatedAt.IsZero(), "updated_at is persisted")
}

func TestSearchSales(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	sales := []models.Sale{
		testSale("sale-1", "seller-1", 1, now.Add(-2*time.Hour)),
		testSale("sale-2", "seller-2", 2, now.Add(-time.Hour)),
		testSale("sale-3", "seller-1", 3, now),
	}
	sales[1].LastName = "Martin"
	sales[1].FirstName = "Sophie"
	for _, s := range sales {
		require.NoError(t, db.CreateSale(ctx, s))
	}

	rows, total, err := db.SearchSales(ctx, ledger.SearchOptions{Search: "martin"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "sale-2", rows[0].ID)

	rows, total, err = db.SearchSales(ctx, ledger.SearchOptions{SellerID: "seller-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = db.SearchSales(ctx, ledger.SearchOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, rows, 2, "page of 2 out of 3")
}

func TestDeleteAllSales(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.CreateSale(ctx, testSale(string(rune('a'+i)), "seller-1", 1, time.Now())))
	}

	require.NoError(t, db.DeleteAllSales(ctx))

	count, err := db.CountSales(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "ledger is empty after wipe")
}
