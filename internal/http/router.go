package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qrscanner/internal/handlers"
	"qrscanner/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ScanService     service.ScanService
	HistoryService  service.HistoryService
	SettingsService service.SettingsService

	DB             handlers.Pinger
	VectorStore    handlers.CollectionInspector // nil when the related-scan index is off
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	scanHandler := handlers.NewScanHandler(deps.ScanService)
	historyHandler := handlers.NewHistoryHandler(deps.HistoryService)
	settingsHandler := handlers.NewSettingsHandler(deps.SettingsService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Post("/scan", scanHandler.Process)
		r.Post("/scan/image", scanHandler.ScanImage)
		r.Get("/scan/latest", scanHandler.Latest)
		r.Post("/frames", scanHandler.Frame)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Delete("/", historyHandler.Clear)
			r.Get("/stats", historyHandler.Stats)
			r.Get("/{id}", historyHandler.Get)
			r.Delete("/{id}", historyHandler.Delete)
			r.Get("/{id}/related", historyHandler.Related)
		})

		r.Get("/settings", settingsHandler.Get)
		r.Patch("/settings", settingsHandler.Update)

		r.Method(http.MethodPost, "/myqr", handlers.NewMyQRHandler())
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/history/{id}", handlers.NewScanPageHandler(deps.HistoryService))

	return r
}
