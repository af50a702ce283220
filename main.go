package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-tombola/internal/auth"
	"ms-tombola/internal/auth/auth_api"
	"ms-tombola/internal/config"
	"ms-tombola/internal/dashboard"
	"ms-tombola/internal/dashboard/dashboard_api"
	"ms-tombola/internal/database/migrations"
	"ms-tombola/internal/draw"
	"ms-tombola/internal/draw/draw_api"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/notify"
	"ms-tombola/internal/recap"
	"ms-tombola/internal/sales"
	sales_db "ms-tombola/internal/sales/db"
	"ms-tombola/internal/sales/sale_api"
	"ms-tombola/internal/seasons"
	seasons_db "ms-tombola/internal/seasons/db"
	"ms-tombola/internal/seasons/season_api"
	"ms-tombola/internal/settings"
	settings_db "ms-tombola/internal/settings/db"
	"ms-tombola/internal/settings/settings_api"
)

func connectDatabase(log *logger.Logger) *bun.DB {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Tombola Ledger Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	bunDB := connectDatabase(log)
	defer bunDB.Close()

	redisClient, err := auth.InitializeRedis(cfg.Redis.Addr, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	log.Info("DATABASE", "Schema migrations applied")

	var producer *notify.Producer
	if cfg.Kafka.Enabled {
		producer = notify.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := notify.EnsureTopicsExist(cfg.Kafka.Brokers, notify.AllTopics()); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, ledger events will not be published")
	}

	salesDB := &sales_db.DB{Bun: bunDB}
	seasonsDB := &seasons_db.DB{Bun: bunDB}
	settingsDB := &settings_db.DB{Bun: bunDB}

	var saleNotify sales.Notifier
	var seasonNotify seasons.Notifier
	var recapNotify recap.Publisher
	var codeNotify auth.CodeNotifier
	if producer != nil {
		saleNotify = producer
		seasonNotify = producer
		recapNotify = producer
		codeNotify = producer
	}

	salesService := sales.NewService(salesDB, saleNotify, log)
	seasonsService := &seasons.Service{DB: seasonsDB, Ledger: salesDB, Notify: seasonNotify, Log: log}
	settingsService := &settings.Service{
		DB: settingsDB,
		Defaults: settings.Defaults{
			Rates:     cfg.Rates,
			RecapHour: cfg.Recap.Hour,
		},
	}
	dashboardService := &dashboard.Service{
		Sales:      salesDB,
		Objectives: settingsService,
		Rates:      cfg.Rates,
	}
	recapService := recap.NewService(salesDB, seasonsDB)
	drawEngine := draw.NewEngine()

	codes := &auth.CodeStore{
		Redis:       redisClient,
		TTL:         cfg.Auth.CodeTTL,
		MaxAttempts: cfg.Auth.MaxAttempts,
	}
	sessions := &auth.Sessions{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.SessionTTL,
		Redis:  redisClient,
	}
	authService := auth.NewService(codes, sessions, cfg.Auth.AllowedUsers, codeNotify, log)

	saleHandler := sale_api.NewHandler(salesService, settingsService, log, cfg.GuildID)
	drawHandler := draw_api.NewHandler(drawEngine, salesService, log)
	seasonHandler := season_api.NewHandler(seasonsService, log)
	dashboardHandler := dashboard_api.NewHandler(dashboardService, log, cfg.GuildID)
	settingsHandler := settings_api.NewHandler(settingsService, log, cfg.GuildID)
	authHandler := auth_api.NewHandler(authService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Guild-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Public Routes ---
	r.Route("/auth", func(r chi.Router) {
		r.Post("/request-code", authHandler.RequestCode)
		r.Post("/verify-code", authHandler.VerifyCode)
		r.Post("/logout", authHandler.Logout)
	})
	log.Info("ROUTER", "Auth routes registered under /auth")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(sessions))
		log.Info("AUTH", "Session middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Route("/sales", func(r chi.Router) {
				r.Post("/", saleHandler.RegisterSale)
				r.Get("/", saleHandler.ListSales)
				r.Get("/{saleId}", saleHandler.GetSale)
				r.Put("/{saleId}", saleHandler.EditSale)
				r.Delete("/{saleId}", saleHandler.DeleteSale)
			})
			log.Info("ROUTER", "Sale routes registered under /api/sales")

			r.Route("/sellers/{sellerId}", func(r chi.Router) {
				r.Get("/", saleHandler.SellerSales)
				r.Post("/reduce", saleHandler.ReduceTickets)
			})
			log.Info("ROUTER", "Seller routes registered under /api/sellers")

			r.Post("/draw", drawHandler.Draw)
			r.Get("/draw/voucher", drawHandler.DrawVoucher)
			r.Get("/export/csv", saleHandler.ExportCSV)
			r.Get("/dashboard", dashboardHandler.Overview)
			r.Get("/objectives/progress", dashboardHandler.ObjectiveProgress)
			r.Put("/objectives", settingsHandler.SetObjective)
			r.Get("/settings", settingsHandler.GetSettings)
			r.Put("/settings", settingsHandler.UpdateSettings)
			r.Put("/settings/alerts", settingsHandler.UpdateAlerts)
			r.Post("/reset", seasonHandler.ResetLedger)

			r.Route("/seasons", func(r chi.Router) {
				r.Get("/", seasonHandler.ListSeasons)
				r.Post("/close", seasonHandler.CloseSeason)
				r.Get("/{seasonId}", seasonHandler.GetSeason)
				r.Get("/{seasonId}/sales", seasonHandler.SeasonSales)
				r.Get("/{seasonId}/export/csv", seasonHandler.ExportSeasonCSV)
			})
			log.Info("ROUTER", "Season routes registered under /api/seasons")
		})
	})

	var scheduler *recap.Scheduler
	if cfg.Recap.Enabled {
		recapHour := cfg.Recap.Hour
		if resolved, err := settingsService.Resolve(context.Background(), cfg.GuildID); err != nil {
			log.Warn("RECAP", fmt.Sprintf("Could not resolve tenant recap hour, using default: %v", err))
		} else {
			recapHour = resolved.RecapHour
		}
		scheduler = recap.NewScheduler(recapService, recapNotify, log, recapHour)
		scheduler.Start()
	} else {
		log.Warn("RECAP", "Daily recap scheduler disabled")
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Tombola Ledger Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Tombola Ledger Service shutdown complete")
	}
}
