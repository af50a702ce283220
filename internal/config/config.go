package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"ms-tombola/internal/ledger"
)

type Config struct {
	Server  Server
	Redis   Redis
	Kafka   Kafka
	Auth    Auth
	Rates   ledger.Rates
	Recap   Recap
	GuildID string
}

type Server struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Redis struct {
	Addr string
}

type Kafka struct {
	Brokers []string
	Enabled bool
}

type Auth struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CodeTTL      time.Duration
	MaxAttempts  int
	AllowedUsers []string
}

type Recap struct {
	Hour    int
	Enabled bool
}

func Load() *Config {
	return &Config{
		Server: Server{
			Port:         getEnv("PORT", ":8085"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: Redis{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: Kafka{
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
		},
		Auth: Auth{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
			CodeTTL:      time.Duration(getEnvInt("LOGIN_CODE_TTL_MINUTES", 5)) * time.Minute,
			MaxAttempts:  getEnvInt("LOGIN_CODE_MAX_ATTEMPTS", 3),
			AllowedUsers: getEnvList("PANEL_ALLOWED_IDS"),
		},
		Rates: ledger.Rates{
			TicketPrice: int64(getEnvInt("TICKET_PRICE", 1500)),
			SellerRate:  int64(getEnvInt("SELLER_RATE_PER_TICKET", 400)),
			CompanyRate: int64(getEnvInt("COMPANY_RATE_PER_TICKET", 1100)),
		},
		Recap: Recap{
			Hour:    getEnvInt("RECAP_HOUR", 17),
			Enabled: getEnvBool("RECAP_ENABLED", true),
		},
		GuildID: getEnv("GUILD_ID", "panel"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
