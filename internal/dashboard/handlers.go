package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/logging"
	"github.com/danielpemor/DashWeb/internal/middleware"
	"github.com/danielpemor/DashWeb/internal/visualizer"
	"github.com/paulmach/orb/geojson"
)

// Viewer answers dashboard queries. *visualizer.Service implements it.
type Viewer interface {
	States() []electoral.State
	Levels() []electoral.Level
	Metrics() []visualizer.Metric
	View(ctx context.Context, level electoral.Level, region *int64) (*visualizer.View, error)
	Statistics(ctx context.Context, level electoral.Level, region *int64, focus string) (*visualizer.Statistics, error)
	MetricView(ctx context.Context, metric string, level electoral.Level, region *int64) (*visualizer.MetricView, error)
	PartyChart(ctx context.Context, level electoral.Level, region *int64) (*visualizer.PartyChart, error)
	ParticipationChart(ctx context.Context, level electoral.Level, region *int64) (*visualizer.ParticipationChart, error)
}

var ErrInvalidState = errors.New("invalid state")

type handlers struct {
	viewer Viewer
	cache  ViewCache
}

// cachedResponse is what the view cache stores for one request.
type cachedResponse struct {
	Status  string          `json:"status"`
	Warning string          `json:"warning,omitempty"`
	Body    json.RawMessage `json:"body"`
}

type metricViewResponse struct {
	*visualizer.MetricView
	Data *geojson.FeatureCollection `json:"data"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSONStatus(w, status, map[string]string{"error": msg})
}

// query reads the level and state parameters. A missing, zero or "nacional" state means no region.
func query(r *http.Request) (electoral.Level, *int64, error) {
	level, err := electoral.ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		return "", nil, err
	}
	raw := strings.TrimSpace(r.URL.Query().Get("state"))
	if raw == "" || raw == "0" || strings.EqualFold(raw, "nacional") {
		return level, nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return "", nil, ErrInvalidState
	}
	return level, &id, nil
}

func stateKey(region *int64) string {
	if region == nil {
		return "all"
	}
	return strconv.FormatInt(*region, 10)
}

func setDataHeaders(w http.ResponseWriter, status visualizer.Status, warnings []string) {
	w.Header().Set("X-Data-Status", string(status))
	if len(warnings) > 0 {
		w.Header().Set("X-Data-Warning", strings.Join(warnings, "; "))
	}
}

func (h *handlers) fail(w http.ResponseWriter, op string, err error) {
	logging.LogError("dashboard", op, err)
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *handlers) states(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.viewer.States())
}

func (h *handlers) levels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.viewer.Levels())
}

func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.viewer.Metrics())
}

// cached serves key from the view cache when present, otherwise runs build and stores the result.
func (h *handlers) cached(w http.ResponseWriter, r *http.Request, key string, build func() (*cachedResponse, error)) {
	if b, ok := h.cache.Get(r.Context(), key); ok {
		var hit cachedResponse
		if err := json.Unmarshal(b, &hit); err == nil {
			h.writeCached(w, &hit)
			return
		}
	}

	resp, err := build()
	if err != nil {
		if errors.Is(err, electoral.ErrUnknownLevel) || errors.Is(err, ErrInvalidState) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, key, err)
		return
	}
	if b, err := json.Marshal(resp); err == nil {
		h.cache.Set(r.Context(), key, b)
	}
	h.writeCached(w, resp)
}

func (h *handlers) writeCached(w http.ResponseWriter, resp *cachedResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Data-Status", resp.Status)
	if resp.Warning != "" {
		w.Header().Set("X-Data-Warning", resp.Warning)
	}
	_, _ = w.Write(resp.Body)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	level, region, err := query(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key := "view:" + string(level) + ":" + stateKey(region)
	h.cached(w, r, key, func() (*cachedResponse, error) {
		start := time.Now()
		v, err := h.viewer.View(r.Context(), level, region)
		if err != nil {
			return nil, err
		}
		middleware.AddServerTiming(w, "aggregate", time.Since(start))

		start = time.Now()
		fc, err := v.FeatureCollection()
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(fc)
		if err != nil {
			return nil, err
		}
		middleware.AddServerTiming(w, "encode", time.Since(start))
		return &cachedResponse{Status: string(v.Status), Warning: strings.Join(v.Warnings, "; "), Body: body}, nil
	})
}

func (h *handlers) metricView(w http.ResponseWriter, r *http.Request) {
	level, region, err := query(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metric := strings.TrimSpace(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = visualizer.MetricPartyWinner
	}
	key := "metric:" + metric + ":" + string(level) + ":" + stateKey(region)
	h.cached(w, r, key, func() (*cachedResponse, error) {
		start := time.Now()
		mv, err := h.viewer.MetricView(r.Context(), metric, level, region)
		if err != nil {
			return nil, err
		}
		middleware.AddServerTiming(w, "aggregate", time.Since(start))

		fc, err := mv.FeatureCollection()
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(metricViewResponse{MetricView: mv, Data: fc})
		if err != nil {
			return nil, err
		}
		return &cachedResponse{Status: string(mv.Status), Warning: strings.Join(mv.Warnings, "; "), Body: body}, nil
	})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	level, region, err := query(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	st, err := h.viewer.Statistics(r.Context(), level, region, r.URL.Query().Get("metric"))
	if err != nil {
		h.fail(w, "statistics", err)
		return
	}
	middleware.AddServerTiming(w, "aggregate", time.Since(start))
	setDataHeaders(w, st.Status, st.Warnings)
	writeJSON(w, st)
}

func (h *handlers) partyChart(w http.ResponseWriter, r *http.Request) {
	level, region, err := query(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chart, err := h.viewer.PartyChart(r.Context(), level, region)
	if err != nil {
		h.fail(w, "party chart", err)
		return
	}
	setDataHeaders(w, chart.Status, chart.Warnings)
	writeJSON(w, chart)
}

func (h *handlers) participationChart(w http.ResponseWriter, r *http.Request) {
	level, region, err := query(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chart, err := h.viewer.ParticipationChart(r.Context(), level, region)
	if err != nil {
		h.fail(w, "participation chart", err)
		return
	}
	setDataHeaders(w, chart.Status, chart.Warnings)
	writeJSON(w, chart)
}
