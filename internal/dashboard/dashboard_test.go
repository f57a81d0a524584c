package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielpemor/DashWeb/internal/dashboard"
	"github.com/danielpemor/DashWeb/internal/electoral"
	"github.com/danielpemor/DashWeb/internal/sanitize"
	"github.com/danielpemor/DashWeb/internal/visualizer"
	"github.com/twpayne/go-geos"
)

// fakeViewer implements dashboard.Viewer without loading any files.
type fakeViewer struct {
	views   int
	regions []*int64
	err     error
}

func (f *fakeViewer) States() []electoral.State { return electoral.States() }
func (f *fakeViewer) Levels() []electoral.Level {
	return []electoral.Level{electoral.LevelPrecinct, electoral.LevelMunicipality}
}
func (f *fakeViewer) Metrics() []visualizer.Metric {
	return visualizer.AvailableMetrics([]string{"PAN_2024"})
}

func (f *fakeViewer) View(_ context.Context, level electoral.Level, region *int64) (*visualizer.View, error) {
	f.views++
	f.regions = append(f.regions, region)
	if f.err != nil {
		return nil, f.err
	}
	if region == nil {
		return &visualizer.View{Requested: level, Level: level, Status: visualizer.StatusEmpty,
			Warnings: []string{visualizer.ErrRegionRequired.Error()}}, nil
	}
	g, err := geos.NewGeomFromWKT("POLYGON ((0 0, 1 0, 1 1, 0 1, 0 0))")
	if err != nil {
		return nil, err
	}
	return &visualizer.View{
		Requested: level,
		Level:     level,
		Region:    region,
		Status:    visualizer.StatusOK,
		Features: []sanitize.Feature{{
			Properties: map[string]any{"ID_ENTIDAD": *region, "PAN_2024": 180.0},
			Geometry:   g,
		}},
	}, nil
}

func (f *fakeViewer) Statistics(_ context.Context, level electoral.Level, _ *int64, focus string) (*visualizer.Statistics, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := &visualizer.Statistics{Status: visualizer.StatusOK, Level: level, TotalVotes: 400, Units: 3}
	if focus != "" {
		v := 185.0
		st.FocusParty, st.FocusVotes = &focus, &v
	}
	return st, nil
}

func (f *fakeViewer) MetricView(_ context.Context, metric string, level electoral.Level, _ *int64) (*visualizer.MetricView, error) {
	return &visualizer.MetricView{Metric: metric, Status: visualizer.StatusMetricNotFound, Level: level}, nil
}

func (f *fakeViewer) PartyChart(_ context.Context, level electoral.Level, _ *int64) (*visualizer.PartyChart, error) {
	return &visualizer.PartyChart{Status: visualizer.StatusOK, Level: level,
		Bars: []visualizer.Bar{{Name: "PAN", Votes: 180, Percent: 100}}}, nil
}

func (f *fakeViewer) ParticipationChart(_ context.Context, level electoral.Level, _ *int64) (*visualizer.ParticipationChart, error) {
	return &visualizer.ParticipationChart{Status: visualizer.StatusEmpty, Level: level}, nil
}

// closingCache counts Close calls.
type closingCache struct {
	memCache
	closed int
}

func (c *closingCache) Close() error {
	c.closed++
	return nil
}

// memCache is an in-process dashboard.ViewCache.
type memCache map[string][]byte

func (m memCache) Get(_ context.Context, key string) ([]byte, bool) {
	b, ok := m[key]
	return b, ok
}

func (m memCache) Set(_ context.Context, key string, body []byte) { m[key] = body }

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestViewServesGeoJSON(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)

	rec := get(t, h, "/api/view?level=municipio&state=9")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Data-Status") != "ok" {
		t.Errorf("X-Data-Status = %q", rec.Header().Get("X-Data-Status"))
	}
	if len(rec.Header().Values("Server-Timing")) != 2 {
		t.Errorf("Server-Timing = %v", rec.Header().Values("Server-Timing"))
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("collection = %+v", fc)
	}
	if fc.Features[0].Geometry.Type != "Polygon" || fc.Features[0].Properties["PAN_2024"] != 180.0 {
		t.Errorf("feature = %+v", fc.Features[0])
	}
}

func TestViewWithoutRegionWarns(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)

	rec := get(t, h, "/api/view?state=nacional")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Data-Status") != "empty" {
		t.Errorf("X-Data-Status = %q", rec.Header().Get("X-Data-Status"))
	}
	if rec.Header().Get("X-Data-Warning") != visualizer.ErrRegionRequired.Error() {
		t.Errorf("X-Data-Warning = %q", rec.Header().Get("X-Data-Warning"))
	}
}

func TestViewIsCached(t *testing.T) {
	viewer := &fakeViewer{}
	cache := memCache{}
	h := dashboard.SetupRoutes(viewer, cache)

	first := get(t, h, "/api/view?level=MUNICIPIO&state=9")
	second := get(t, h, "/api/view?level=municipality&state=9")

	if viewer.views != 1 {
		t.Errorf("expected one computed view, got %d", viewer.views)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs")
	}
	if second.Header().Get("X-Data-Status") != "ok" {
		t.Errorf("cached X-Data-Status = %q", second.Header().Get("X-Data-Status"))
	}
	if _, ok := cache["view:MUNICIPIO:9"]; !ok {
		t.Errorf("cache keys = %v", cache)
	}
}

func TestBadRequests(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)
	for _, target := range []string{
		"/api/view?level=COLONIA",
		"/api/view?state=abc",
		"/api/stats?state=-1",
		"/api/charts/parties?level=x",
	} {
		if rec := get(t, h, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestViewerErrorIs500(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{err: errors.New("load geometry: unreadable")}, memCache{})

	for _, target := range []string{"/api/view?state=9", "/api/stats?state=9"} {
		rec := get(t, h, target)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", target, rec.Code)
		}
		if rec.Header().Get("Cache-Control") != "no-store" {
			t.Errorf("%s: Cache-Control = %q", target, rec.Header().Get("Cache-Control"))
		}
	}
}

func TestStatsPassesFocusMetric(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)

	rec := get(t, h, "/api/stats?level=SECCION&state=9&metric=PAN_2024")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st["focus_party"] != "PAN_2024" || st["focus_votes"] != 185.0 || st["total_votes"] != 400.0 {
		t.Errorf("stats = %v", st)
	}
}

func TestMetricViewNotFound(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)

	rec := get(t, h, "/api/metric-view?metric=NOPE_2024&state=9")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Data-Status") != string(visualizer.StatusMetricNotFound) {
		t.Errorf("X-Data-Status = %q", rec.Header().Get("X-Data-Status"))
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["metric"] != "NOPE_2024" || body["data"] == nil {
		t.Errorf("body = %v", body)
	}
}

func TestCatalogRoutes(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)

	var states []electoral.State
	if err := json.Unmarshal(get(t, h, "/api/states").Body.Bytes(), &states); err != nil || len(states) != 32 {
		t.Errorf("states = %d, %v", len(states), err)
	}
	var levels []string
	if err := json.Unmarshal(get(t, h, "/api/levels").Body.Bytes(), &levels); err != nil || len(levels) != 2 || levels[1] != "MUNICIPIO" {
		t.Errorf("levels = %v, %v", levels, err)
	}
	var metrics []visualizer.Metric
	if err := json.Unmarshal(get(t, h, "/api/metrics").Body.Bytes(), &metrics); err != nil || len(metrics) == 0 {
		t.Errorf("metrics = %v, %v", metrics, err)
	}
	if rec := get(t, h, "/"); rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}
	if rec := get(t, h, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("metrics endpoint = %d", rec.Code)
	}
}

func TestCharts(t *testing.T) {
	h := dashboard.SetupRoutes(&fakeViewer{}, nil)

	rec := get(t, h, "/api/charts/parties?state=9")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Data-Status") != "ok" {
		t.Errorf("parties = %d %q", rec.Code, rec.Header().Get("X-Data-Status"))
	}
	rec = get(t, h, "/api/charts/participation?state=9")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Data-Status") != "empty" {
		t.Errorf("participation = %d %q", rec.Code, rec.Header().Get("X-Data-Status"))
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	cache, err := dashboard.OpenRedisCache(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0, time.Minute)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := "test:" + time.Now().Format(time.RFC3339Nano)
	if _, ok := cache.Get(ctx, key); ok {
		t.Fatalf("unexpected hit")
	}
	cache.Set(ctx, key, []byte(`{"status":"ok"}`))
	if b, ok := cache.Get(ctx, key); !ok || string(b) != `{"status":"ok"}` {
		t.Errorf("get = %q %v", b, ok)
	}
	if err := dashboard.CloseCache(cache); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestCloseCache(t *testing.T) {
	c := &closingCache{memCache: memCache{}}
	if err := dashboard.CloseCache(c); err != nil || c.closed != 1 {
		t.Errorf("close = %v, calls = %d", err, c.closed)
	}
	if err := dashboard.CloseCache(dashboard.NopCache{}); err != nil {
		t.Errorf("nop close: %v", err)
	}
	disabled, err := dashboard.OpenRedisCache(context.Background(), "", "", 0, time.Minute)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := dashboard.CloseCache(disabled); err != nil {
		t.Errorf("disabled close: %v", err)
	}
}
