package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/robfig/cron/v3"

	"github.com/mvdbosch/kapgains/internal/api"
	"github.com/mvdbosch/kapgains/internal/config"
	"github.com/mvdbosch/kapgains/internal/database"
	"github.com/mvdbosch/kapgains/internal/ecb"
	"github.com/mvdbosch/kapgains/internal/numeric"
	"github.com/mvdbosch/kapgains/internal/offset"
	"github.com/mvdbosch/kapgains/internal/repository"
	"github.com/mvdbosch/kapgains/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Printf("Connected to database: %s", cfg.Database.Path)

	sealKey, err := loadFernetKey(cfg.Security.FernetKey)
	if err != nil {
		log.Fatalf("Failed to load fernet key: %v", err)
	}

	// Create repositories
	assetRepo := repository.NewAssetRepository(db)
	eventRepo := repository.NewEventRepository(db)
	taxRunRepo := repository.NewTaxRunRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	ecbClient := ecb.NewClient()
	ecbClient.BaseURL = cfg.ECB.BaseURL

	// Create services
	systemService := service.NewSystemService(db)
	assetService := service.NewAssetService(assetRepo)
	eventService := service.NewEventService(eventRepo)
	fxService := service.NewFxRateService(rateRepo, ecbClient)
	settingsService := service.NewSettingsService(settingsRepo, sealKey)
	taxRunService := service.NewTaxRunService(
		taxRunRepo,
		assetService,
		eventService,
		fxService,
		numeric.DefaultContext(),
		offset.Config{
			CapEnabled:        cfg.Engine.DerivativeLossCapEnabled,
			DerivativeLossCap: cfg.Engine.DerivativeLossCap,
		},
	)

	// Daily ECB rate refresh
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Scheduler.RateRefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := fxService.RefreshLatest(ctx); err != nil {
			log.Printf("Rate refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule rate refresh: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(systemService, assetService, eventService, taxRunService, fxService, settingsService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// loadFernetKey decodes the configured sealing key, or generates an
// ephemeral one when unset. With an ephemeral key, stored broker tokens do
// not survive a restart.
func loadFernetKey(encoded string) (*fernet.Key, error) {
	if encoded != "" {
		return fernet.DecodeKey(encoded)
	}
	log.Println("FERNET_KEY not set, generating ephemeral key")
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return nil, err
	}
	return &key, nil
}
