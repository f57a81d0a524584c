// Package dashboard serves the map views, statistics and chart series over HTTP.
package dashboard

import (
	"net/http"

	"github.com/danielpemor/DashWeb/internal/metrics"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(viewer Viewer, cache ViewCache) http.Handler {
	if cache == nil {
		cache = NopCache{}
	}
	h := &handlers{viewer: viewer, cache: cache}
	r := chi.NewRouter()

	r.Get("/", h.health)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/states", h.states)
		r.Get("/levels", h.levels)
		r.Get("/metrics", h.metrics)
		r.Get("/view", h.view)
		r.Get("/stats", h.stats)
		r.Get("/metric-view", h.metricView)
		r.Get("/charts/parties", h.partyChart)
		r.Get("/charts/participation", h.participationChart)
	})

	return r
}
