package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ArchiveSale is the season-less archive sink used by destructive resets:
// sales are copied here right before the live ledger is wiped, so a reset
// discards the working set without losing history entirely.
type ArchiveSale struct {
	bun.BaseModel `bun:"table:sales_archive"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	SaleID         string    `bun:"sale_id,notnull" json:"sale_id"`
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
