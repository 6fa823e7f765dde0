package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvdbosch/kapgains/internal/api/handlers"
	custommiddleware "github.com/mvdbosch/kapgains/internal/api/middleware"
	"github.com/mvdbosch/kapgains/internal/config"
	"github.com/mvdbosch/kapgains/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	assetService *service.AssetService,
	eventService *service.EventService,
	taxRunService *service.TaxRunService,
	fxService *service.FxRateService,
	settingsService *service.SettingsService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(custommiddleware.RequireAPIKey(cfg.Security.APIKey))

		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/assets", func(r chi.Router) {
			assetHandler := handlers.NewAssetHandler(assetService)
			r.Get("/", assetHandler.List)
			r.Post("/", assetHandler.Create)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", assetHandler.Get)
				r.Put("/", assetHandler.Update)
				r.Delete("/", assetHandler.Delete)
			})
		})

		r.Route("/events", func(r chi.Router) {
			eventHandler := handlers.NewEventHandler(eventService)
			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)
			r.Post("/import", eventHandler.Import)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", eventHandler.Get)
				r.Delete("/", eventHandler.Delete)
			})
		})

		r.Route("/taxruns", func(r chi.Router) {
			taxRunHandler := handlers.NewTaxRunHandler(taxRunService)
			r.Get("/", taxRunHandler.List)
			r.Post("/", taxRunHandler.Run)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", taxRunHandler.Get)
				r.Get("/report", taxRunHandler.Report)
				r.Delete("/", taxRunHandler.Delete)
			})
		})

		r.Route("/rates", func(r chi.Router) {
			rateHandler := handlers.NewRateHandler(fxService)
			r.Get("/convert", rateHandler.Convert)
			r.Post("/backfill", rateHandler.Backfill)
			r.Post("/refresh", rateHandler.Refresh)
		})

		r.Route("/settings", func(r chi.Router) {
			settingsHandler := handlers.NewSettingsHandler(settingsService)
			r.Get("/broker", settingsHandler.GetBroker)
			r.Put("/broker", settingsHandler.SetBroker)
		})
	})

	return r
}
