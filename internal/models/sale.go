package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Sale is one transaction of N tickets sold by one seller to one customer.
// Earnings are computed from the rates in effect when the row is written
// and are never recomputed retroactively.
type Sale struct {
	bun.BaseModel `bun:"table:sales"`

	ID             string    `bun:"id,pk" json:"id"`
	SellerID       string    `bun:"seller_id,notnull" json:"seller_id"`
	FirstName      string    `bun:"first_name,notnull" json:"first_name"`
	LastName       string    `bun:"last_name,notnull" json:"last_name"`
	Contact        string    `bun:"contact,notnull" json:"contact"`
	Quantity       int       `bun:"quantity,notnull" json:"quantity"`
	SellerEarning  int64     `bun:"seller_earning,notnull" json:"seller_earning"`
	CompanyEarning int64     `bun:"company_earning,notnull" json:"company_earning"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}
