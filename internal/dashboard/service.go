package dashboard

import (
	"context"
	"sort"
	"time"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

// SalesSource reads the live ledger.
type SalesSource interface {
	ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error)
}

// ObjectiveSource reads the monthly ticket goal.
type ObjectiveSource interface {
	Objective(ctx context.Context, guildID string) (int, error)
}

// Service aggregates the live ledger into the panel dashboard view.
type Service struct {
	Sales      SalesSource
	Objectives ObjectiveSource
	Rates      ledger.Rates
}

// DailyMetrics contains metrics for a single day.
type DailyMetrics struct {
	Date        string `json:"date"`
	TicketsSold int    `json:"tickets_sold"`
	Revenue     int64  `json:"revenue"`
	SaleCount   int    `json:"sale_count"`
}

// Overview is the dashboard payload. Sellers carries every seller in
// ranked order; TopSellers is the short list for the landing widget.
type Overview struct {
	TotalTickets         int                   `json:"total_tickets"`
	TotalRevenue         int64                 `json:"total_revenue"`
	TotalSellerEarnings  int64                 `json:"total_seller_earnings"`
	TotalCompanyEarnings int64                 `json:"total_company_earnings"`
	SaleCount            int                   `json:"sale_count"`
	TodayTickets         int                   `json:"today_tickets"`
	TodaySaleCount       int                   `json:"today_sale_count"`
	Sellers              []ledger.SellerTotals `json:"sellers"`
	TopSellers           []ledger.SellerTotals `json:"top_sellers"`
	DailySales           []DailyMetrics        `json:"daily_sales"`
}

// Progress reports the month's ticket count against the stored goal.
type Progress struct {
	Goal     int     `json:"goal"`
	Tickets  int     `json:"tickets"`
	Fraction float64 `json:"fraction"`
}

const (
	seriesDays    = 14
	topSellerSize = 5
)

// Overview computes the dashboard from the live ledger, bounded by the
// caller's window. The zero window covers everything.
func (s *Service) Overview(ctx context.Context, w ledger.Window, now time.Time) (*Overview, error) {
	sales, err := s.Sales.ListSales(ctx, w)
	if err != nil {
		return nil, &ledger.StorageError{Step: "read live ledger", Err: err}
	}

	totals := ledger.Aggregate(sales)

	top := totals.PerSeller
	if len(top) > topSellerSize {
		top = top[:topSellerSize]
	}

	today := ledger.Today(now)
	todayTickets, todayCount := 0, 0
	for _, sale := range sales {
		if today.Contains(sale.CreatedAt) {
			todayTickets += sale.Quantity
			todayCount++
		}
	}

	return &Overview{
		TotalTickets:         totals.TotalTickets,
		TotalRevenue:         s.Rates.Revenue(totals.TotalTickets),
		TotalSellerEarnings:  totals.TotalSellerEarnings,
		TotalCompanyEarnings: totals.TotalCompanyEarnings,
		SaleCount:            totals.TotalSales,
		TodayTickets:         todayTickets,
		TodaySaleCount:       todayCount,
		Sellers:              totals.PerSeller,
		TopSellers:           top,
		DailySales:           dailySeries(sales, now, seriesDays, s.Rates),
	}, nil
}

// ObjectiveProgress compares this calendar month's tickets with the
// guild's goal. A zero goal yields a zero fraction.
func (s *Service) ObjectiveProgress(ctx context.Context, guildID string, now time.Time) (*Progress, error) {
	goal, err := s.Objectives.Objective(ctx, guildID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	sales, err := s.Sales.ListSales(ctx, ledger.Window{Start: monthStart, End: now})
	if err != nil {
		return nil, &ledger.StorageError{Step: "read live ledger", Err: err}
	}

	tickets := 0
	for _, sale := range sales {
		tickets += sale.Quantity
	}

	p := &Progress{Goal: goal, Tickets: tickets}
	if goal > 0 {
		p.Fraction = float64(tickets) / float64(goal)
	}
	return p, nil
}

// dailySeries buckets sales by calendar day over the trailing window,
// emitting a row for every day so the chart has no gaps.
func dailySeries(sales []models.Sale, now time.Time, days int, rates ledger.Rates) []DailyMetrics {
	w := ledger.LastDays(now, days)

	buckets := make(map[string]*DailyMetrics, days)
	for _, sale := range sales {
		if !w.Contains(sale.CreatedAt) {
			continue
		}
		day := sale.CreatedAt.Format("2006-01-02")
		m, ok := buckets[day]
		if !ok {
			m = &DailyMetrics{Date: day}
			buckets[day] = m
		}
		m.TicketsSold += sale.Quantity
		m.Revenue += rates.Revenue(sale.Quantity)
		m.SaleCount++
	}

	series := make([]DailyMetrics, 0, days)
	for d := w.Start; !d.After(now); d = d.AddDate(0, 0, 1) {
		day := d.Format("2006-01-02")
		if m, ok := buckets[day]; ok {
			series = append(series, *m)
		} else {
			series = append(series, DailyMetrics{Date: day})
		}
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
