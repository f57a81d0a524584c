package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashweb_requests_total",
		Help: "Total number of API requests by route and status",
	}, []string{"route", "status"})
	LoadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashweb_load_duration_ms",
		Help:    "Source file load duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
	}, []string{"source"})
	AggregationDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashweb_aggregation_duration_ms",
		Help:    "Aggregation duration in milliseconds by level",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
	}, []string{"level"})
	DissolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashweb_dissolve_total",
		Help: "Dissolved units by the strategy that produced their geometry",
	}, []string{"strategy"})
	GeometryRepairsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashweb_geometry_repairs_total",
		Help: "Loaded geometries by repair step",
	}, []string{"step"})
	RegionCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashweb_region_cache_total",
		Help: "Region cache events (hit, miss, evict)",
	}, []string{"event"})
	ViewCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashweb_view_cache_total",
		Help: "Encoded view cache events (hit, miss)",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(AggregationDurationMs)
	prometheus.MustRegister(DissolveTotal)
	prometheus.MustRegister(GeometryRepairsTotal)
	prometheus.MustRegister(RegionCacheTotal)
	prometheus.MustRegister(ViewCacheTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
