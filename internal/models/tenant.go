package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TenantConfig holds per-guild runtime overrides. At most one row per
// guild; absent values fall back to the service defaults.
type TenantConfig struct {
	bun.BaseModel `bun:"table:tenant_config"`

	GuildID     string    `bun:"guild_id,pk" json:"guild_id"`
	LogsTopic   string    `bun:"logs_topic,nullzero" json:"logs_topic,omitempty"`
	TicketPrice int64     `bun:"ticket_price,nullzero" json:"ticket_price,omitempty"`
	SellerRate  int64     `bun:"seller_rate,nullzero" json:"seller_rate,omitempty"`
	CompanyRate int64     `bun:"company_rate,nullzero" json:"company_rate,omitempty"`
	RecapHour   *int      `bun:"recap_hour" json:"recap_hour,omitempty"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// AlertRule is a per-guild threshold alert. Known types are
// tickets_per_hour and balance_threshold; disabled rules are kept so
// the panel can re-enable them with their last threshold.
type AlertRule struct {
	bun.BaseModel `bun:"table:alert_rules"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	GuildID   string    `bun:"guild_id,notnull" json:"guild_id"`
	Type      string    `bun:"type,notnull" json:"type"`
	Threshold int       `bun:"threshold,notnull" json:"threshold"`
	Enabled   bool      `bun:"enabled" json:"enabled"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// Objective is a per-guild monthly ticket goal shown on the dashboard.
type Objective struct {
	bun.BaseModel `bun:"table:objectives"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	GuildID           string    `bun:"guild_id,notnull" json:"guild_id"`
	MonthlyTicketGoal int       `bun:"monthly_ticket_goal,notnull" json:"monthly_ticket_goal"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}
