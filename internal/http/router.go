package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"knowledge-search/internal/handlers"
	"knowledge-search/internal/rag"
	"knowledge-search/internal/service"
	"knowledge-search/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Documents   service.DocumentService
	Engine      rag.Engine
	VectorStore vectorstore.VectorStore
	Collection  string
	// Cache is reported by the health check when set.
	Cache handlers.Pinger
	// JWTSecret enables bearer-token auth. Empty trusts the X-Owner-ID header.
	JWTSecret      string
	MaxUploadBytes int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	documentsHandler := handlers.NewDocumentsHandler(deps.Documents, deps.MaxUploadBytes)
	searchHandler := handlers.NewSearchHandler(deps.Engine)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection, deps.Cache)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Use(OwnerMiddleware(deps.JWTSecret))

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", documentsHandler.List)
				r.Post("/", documentsHandler.Upload)
				r.Get("/stats", documentsHandler.Stats)
				r.Get("/{id}", documentsHandler.Get)
				r.Delete("/{id}", documentsHandler.Delete)
			})
			r.Method(http.MethodPost, "/search", searchHandler)
		})
	})

	return r
}
