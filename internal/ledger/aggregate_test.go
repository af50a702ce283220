package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-tombola/internal/models"
)

func sale(seller string, qty int, created time.Time) models.Sale {
	return models.Sale{
		ID:             seller + "-" + created.Format("150405.000000000"),
		SellerID:       seller,
		FirstName:      "Jean",
		LastName:       "Dupont",
		Contact:        "jean@example.com",
		Quantity:       qty,
		SellerEarning:  DefaultRates.SellerEarning(qty),
		CompanyEarning: DefaultRates.CompanyEarning(qty),
		CreatedAt:      created,
	}
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil)

	assert.Zero(t, totals.TotalTickets)
	assert.Zero(t, totals.TotalSales)
	assert.Zero(t, totals.TotalSellerEarnings)
	assert.Zero(t, totals.TotalCompanyEarnings)
	assert.Empty(t, totals.PerSeller)
}

func TestAggregateTotals(t *testing.T) {
	now := time.Now()
	sales := []models.Sale{
		sale("alice", 3, now),
		sale("bob", 5, now.Add(time.Minute)),
		sale("alice", 2, now.Add(2*time.Minute)),
	}

	totals := Aggregate(sales)

	assert.Equal(t, 10, totals.TotalTickets)
	assert.Equal(t, 3, totals.TotalSales)
	assert.Equal(t, int64(4000), totals.TotalSellerEarnings)
	assert.Equal(t, int64(11000), totals.TotalCompanyEarnings)
}

func TestAggregatePerSellerOrdering(t *testing.T) {
	now := time.Now()
	sales := []models.Sale{
		sale("alice", 3, now),
		sale("bob", 5, now),
		sale("alice", 2, now),
		sale("carol", 5, now),
	}

	totals := Aggregate(sales)
	require.Len(t, totals.PerSeller, 3)

	// alice and bob tie at 5 tickets; bob appeared first so he stays
	// ahead, and carol's single 5-ticket sale ranks after both entries
	// that reached 5 earlier in input order.
	assert.Equal(t, "bob", totals.PerSeller[0].SellerID)
	assert.Equal(t, 5, totals.PerSeller[0].Tickets)
	assert.Equal(t, 1, totals.PerSeller[0].SaleCount)
	assert.Equal(t, "alice", totals.PerSeller[1].SellerID)
	assert.Equal(t, 5, totals.PerSeller[1].Tickets)
	assert.Equal(t, 2, totals.PerSeller[1].SaleCount)
	assert.Equal(t, "carol", totals.PerSeller[2].SellerID)
}

func TestRatesSplit(t *testing.T) {
	assert.Equal(t, int64(1600), DefaultRates.SellerEarning(4))
	assert.Equal(t, int64(4400), DefaultRates.CompanyEarning(4))
	assert.Equal(t, int64(6000), DefaultRates.Revenue(4))
}
