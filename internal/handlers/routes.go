package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/klipy/klipy-go/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Feeds       FeedResolver
	Categories  CategorySource
	Tracking    TrackingQueue
	Metrics     *middleware.Metrics
	RowHeight   float64
	CORSOrigins []string
	Configured  func() bool
}

// NewRouter wires the HTTP handlers into an httprouter tree wrapped with CORS.
func NewRouter(deps Dependencies) http.Handler {
	var upstream UpstreamRecorder
	if deps.Metrics != nil {
		upstream = deps.Metrics
	}

	health := HealthHandler{Configured: deps.Configured}
	feeds := FeedHandler{Feeds: deps.Feeds, RowHeight: deps.RowHeight, Upstream: upstream}
	categories := CategoryHandler{Categories: deps.Categories, Upstream: upstream}
	actions := ActionHandler{Feeds: deps.Feeds, Queue: deps.Tracking, Upstream: upstream}

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(r.Context(), w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
	})

	handle := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, deps.Metrics.Instrument(path, h))
	}

	handle(http.MethodGet, "/healthz", health.Handle)
	if deps.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	handle(http.MethodGet, "/api/v1/:kind/trending", feeds.Trending)
	handle(http.MethodGet, "/api/v1/:kind/search", feeds.Search)
	handle(http.MethodGet, "/api/v1/:kind/recent", feeds.Recent)
	handle(http.MethodGet, "/api/v1/:kind/categories", categories.List)

	handle(http.MethodPost, "/api/v1/:kind/:slug/view", actions.View)
	handle(http.MethodPost, "/api/v1/:kind/:slug/share", actions.Share)
	handle(http.MethodPost, "/api/v1/:kind/:slug/report", actions.Report)
	handle(http.MethodDelete, "/api/v1/:kind/recent/:slug", actions.Hide)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         600,
	}).Handler(router)
}
