package settings

import (
	"context"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/models"
)

// SettingsDBLayer is the tenant configuration storage surface.
type SettingsDBLayer interface {
	GetTenantConfig(ctx context.Context, guildID string) (*models.TenantConfig, error)
	UpsertTenantConfig(ctx context.Context, cfg models.TenantConfig) error
	GetObjective(ctx context.Context, guildID string) (*models.Objective, error)
	UpsertObjective(ctx context.Context, obj models.Objective) error
	ListAlertRules(ctx context.Context, guildID string) ([]models.AlertRule, error)
	InsertAlertRule(ctx context.Context, rule models.AlertRule) error
	UpdateAlertRule(ctx context.Context, id int64, threshold int, enabled bool) error
}

// Alert rule types the panel knows how to evaluate.
const (
	AlertTicketsPerHour   = "tickets_per_hour"
	AlertBalanceThreshold = "balance_threshold"
)

// Service resolves per-guild settings over the service defaults.
type Service struct {
	DB       SettingsDBLayer
	Defaults Defaults
}

// Defaults are the values used when a guild has no stored override.
type Defaults struct {
	Rates     ledger.Rates
	RecapHour int
}

// Resolved is the effective configuration for a guild after overrides.
type Resolved struct {
	GuildID   string       `json:"guild_id"`
	LogsTopic string       `json:"logs_topic,omitempty"`
	Rates     ledger.Rates `json:"rates"`
	RecapHour int          `json:"recap_hour"`
}

// Resolve merges the stored tenant row over the defaults.
func (s *Service) Resolve(ctx context.Context, guildID string) (*Resolved, error) {
	out := &Resolved{
		GuildID:   guildID,
		Rates:     s.Defaults.Rates,
		RecapHour: s.Defaults.RecapHour,
	}

	cfg, err := s.DB.GetTenantConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return out, nil
	}

	out.LogsTopic = cfg.LogsTopic
	if cfg.TicketPrice > 0 {
		out.Rates.TicketPrice = cfg.TicketPrice
	}
	if cfg.SellerRate > 0 {
		out.Rates.SellerRate = cfg.SellerRate
	}
	if cfg.CompanyRate > 0 {
		out.Rates.CompanyRate = cfg.CompanyRate
	}
	// A stored 0 is a valid midnight override, so unset is nil.
	if cfg.RecapHour != nil {
		out.RecapHour = *cfg.RecapHour
	}
	return out, nil
}

// UpdateInput carries a partial settings update; zero fields keep their
// current value.
type UpdateInput struct {
	LogsTopic   string `json:"logs_topic"`
	TicketPrice int64  `json:"ticket_price"`
	SellerRate  int64  `json:"seller_rate"`
	CompanyRate int64  `json:"company_rate"`
	RecapHour   *int   `json:"recap_hour"`
}

func (in UpdateInput) validate() error {
	if in.TicketPrice < 0 {
		return &ledger.ValidationError{Field: "ticket_price", Reason: "must not be negative"}
	}
	if in.SellerRate < 0 {
		return &ledger.ValidationError{Field: "seller_rate", Reason: "must not be negative"}
	}
	if in.CompanyRate < 0 {
		return &ledger.ValidationError{Field: "company_rate", Reason: "must not be negative"}
	}
	if in.RecapHour != nil && (*in.RecapHour < 0 || *in.RecapHour > 23) {
		return &ledger.ValidationError{Field: "recap_hour", Reason: "must be between 0 and 23"}
	}
	return nil
}

// Update merges the input over the stored row and persists it.
func (s *Service) Update(ctx context.Context, guildID string, in UpdateInput) (*Resolved, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.DB.GetTenantConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	cfg := models.TenantConfig{GuildID: guildID}
	if current != nil {
		cfg = *current
	}

	if in.LogsTopic != "" {
		cfg.LogsTopic = in.LogsTopic
	}
	if in.TicketPrice > 0 {
		cfg.TicketPrice = in.TicketPrice
	}
	if in.SellerRate > 0 {
		cfg.SellerRate = in.SellerRate
	}
	if in.CompanyRate > 0 {
		cfg.CompanyRate = in.CompanyRate
	}
	if in.RecapHour != nil {
		cfg.RecapHour = in.RecapHour
	}

	if err := s.DB.UpsertTenantConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return s.Resolve(ctx, guildID)
}

// AlertInput carries one alert rule from the panel. A zero ID creates
// a rule; a set ID rewrites the stored one's threshold and flag.
type AlertInput struct {
	ID        int64  `json:"id,omitempty"`
	Type      string `json:"type"`
	Threshold int    `json:"threshold"`
	Enabled   bool   `json:"enabled"`
}

func (in AlertInput) validate() error {
	if in.ID == 0 && in.Type != AlertTicketsPerHour && in.Type != AlertBalanceThreshold {
		return &ledger.ValidationError{Field: "type", Reason: "unknown alert type"}
	}
	if in.Threshold < 0 {
		return &ledger.ValidationError{Field: "threshold", Reason: "must not be negative"}
	}
	return nil
}

// AlertRules returns the guild's alert rules ordered by type.
func (s *Service) AlertRules(ctx context.Context, guildID string) ([]models.AlertRule, error) {
	return s.DB.ListAlertRules(ctx, guildID)
}

// SaveAlertRules validates the whole batch before touching storage,
// then creates or rewrites each rule and returns the stored set.
func (s *Service) SaveAlertRules(ctx context.Context, guildID string, in []AlertInput) ([]models.AlertRule, error) {
	for _, a := range in {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}

	for _, a := range in {
		if a.ID != 0 {
			if err := s.DB.UpdateAlertRule(ctx, a.ID, a.Threshold, a.Enabled); err != nil {
				return nil, err
			}
			continue
		}
		rule := models.AlertRule{
			GuildID:   guildID,
			Type:      a.Type,
			Threshold: a.Threshold,
			Enabled:   a.Enabled,
		}
		if err := s.DB.InsertAlertRule(ctx, rule); err != nil {
			return nil, err
		}
	}

	return s.DB.ListAlertRules(ctx, guildID)
}

// Objective returns the guild's monthly ticket goal, 0 when unset.
func (s *Service) Objective(ctx context.Context, guildID string) (int, error) {
	obj, err := s.DB.GetObjective(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	return obj.MonthlyTicketGoal, nil
}

// SetObjective stores the guild's monthly ticket goal.
func (s *Service) SetObjective(ctx context.Context, guildID string, goal int) error {
	if goal < 0 {
		return &ledger.ValidationError{Field: "monthly_ticket_goal", Reason: "must not be negative"}
	}
	return s.DB.UpsertObjective(ctx, models.Objective{GuildID: guildID, MonthlyTicketGoal: goal})
}
