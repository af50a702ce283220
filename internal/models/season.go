package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Season is a closed selling period. Written exactly once when the live
// ledger is archived, immutable afterwards.
type Season struct {
	bun.BaseModel `bun:"table:seasons"`

	ID                   string    `bun:"id,pk" json:"id"`
	Name                 string    `bun:"name,notnull" json:"name"`
	ClosedAt             time.Time `bun:"closed_at,notnull" json:"closed_at"`
	TotalTickets         int       `bun:"total_tickets,notnull" json:"total_tickets"`
	TotalSellerEarnings  int64     `bun:"total_seller_earnings,notnull" json:"total_seller_earnings"`
	TotalCompanyEarnings int64     `bun:"total_company_earnings,notnull" json:"total_company_earnings"`
	TotalSales           int       `bun:"total_sales,notnull" json:"total_sales"`
}

// SeasonSale is a sale copied under a season for historical reporting.
// Original created_at is preserved so recaps spanning an archival
// boundary still see the sale in its real time slot.
type SeasonSale struct {
	bun.BaseModel `bun:"table:season_sales"`

	ID             string    `bun:"id,pk" json:"id"`
	SeasonID       string    `bun:"season_id,notnull" json:"season_id"`
	SellerID       string    `bun:"seller_id,notnull" json:"seller_id"`
	FirstName      string    `bun:"first_name,notnull" json:"first_name"`
	LastName       string    `bun:"last_name,notnull" json:"last_name"`
	Contact        string    `bun:"contact,notnull" json:"contact"`
	Quantity       int       `bun:"quantity,notnull" json:"quantity"`
	SellerEarning  int64     `bun:"seller_earning,notnull" json:"seller_earning"`
	CompanyEarning int64     `bun:"company_earning,notnull" json:"company_earning"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
	ArchivedAt     time.Time `bun:"archived_at,notnull" json:"archived_at"`
}
