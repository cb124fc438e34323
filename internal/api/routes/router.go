package routes

import (
	"net/http"

	"github.com/blendora/shopsense/backend/internal/api/handlers"
	"github.com/blendora/shopsense/backend/internal/api/middleware"
	"github.com/blendora/shopsense/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	indexHandler     *handlers.IndexHandler
	interpretHandler *handlers.InterpretHandler
	sessionHandler   *handlers.SessionHandler
	analyticsHandler *handlers.AnalyticsHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	indexHandler *handlers.IndexHandler,
	interpretHandler *handlers.InterpretHandler,
	sessionHandler *handlers.SessionHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		indexHandler:     indexHandler,
		interpretHandler: interpretHandler,
		sessionHandler:   sessionHandler,
		analyticsHandler: analyticsHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Indexing endpoints
	r.mux.HandleFunc("POST /embed", r.indexHandler.EmbedCatalog)
	r.mux.HandleFunc("POST /embed-images", r.indexHandler.EmbedImages)
	r.mux.HandleFunc("POST /query", r.indexHandler.Query)
	r.mux.HandleFunc("GET /status", r.indexHandler.Status)

	// Interpretation endpoint
	r.mux.HandleFunc("POST /api/interpret", r.interpretHandler.Interpret)

	// Session endpoints
	r.mux.HandleFunc("GET /api/session", r.sessionHandler.GetSession)
	r.mux.HandleFunc("DELETE /api/session", r.sessionHandler.ClearSession)
	r.mux.HandleFunc("GET /api/session/gaps", r.sessionHandler.GetResearchGaps)

	// Analytics endpoint
	r.mux.HandleFunc("GET /api/analytics/low-confidence", r.analyticsHandler.GetLowConfidenceEvents)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on preflights
	handler = middleware.CORSMiddleware(handler)

	return handler
}
