package ledger

import (
	"sort"

	"ms-tombola/internal/models"
)

// SellerTotals is one seller's slice of the ledger.
type SellerTotals struct {
	SellerID        string `json:"seller_id"`
	Tickets         int    `json:"tickets"`
	SellerEarnings  int64  `json:"seller_earnings"`
	CompanyEarnings int64  `json:"company_earnings"`
	SaleCount       int    `json:"sale_count"`
}

// Totals is the aggregate view of a set of sales.
type Totals struct {
	TotalTickets         int            `json:"total_tickets"`
	TotalSellerEarnings  int64          `json:"total_seller_earnings"`
	TotalCompanyEarnings int64          `json:"total_company_earnings"`
	TotalSales           int            `json:"total_sales"`
	PerSeller            []SellerTotals `json:"per_seller"`
}

// Aggregate sums a set of sales into global and per-seller totals.
// Per-seller rows come back sorted by tickets descending; ties keep the
// order in which each seller first appears in the input. Pure function:
// an empty input yields all-zero totals, never an error.
func Aggregate(sales []models.Sale) Totals {
	var t Totals
	index := make(map[string]int)
	for _, s := range sales {
		t.TotalTickets += s.Quantity
		t.TotalSellerEarnings += s.SellerEarning
		t.TotalCompanyEarnings += s.CompanyEarning
		t.TotalSales++

		i, ok := index[s.SellerID]
		if !ok {
			i = len(t.PerSeller)
			index[s.SellerID] = i
			t.PerSeller = append(t.PerSeller, SellerTotals{SellerID: s.SellerID})
		}
		t.PerSeller[i].Tickets += s.Quantity
		t.PerSeller[i].SellerEarnings += s.SellerEarning
		t.PerSeller[i].CompanyEarnings += s.CompanyEarning
		t.PerSeller[i].SaleCount++
	}

	sort.SliceStable(t.PerSeller, func(a, b int) bool {
		return t.PerSeller[a].Tickets > t.PerSeller[b].Tickets
	})

	return t
}
