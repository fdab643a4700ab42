package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/appengine-ltd/wildcast/internal/store"
	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

type testServer struct {
	*Server
	store   *store.MemoryStore
	metrics *Metrics
}

func newTestServer(t *testing.T, writable bool) testServer {
	t.Helper()
	mem := store.NewMemoryStore()
	metrics := NewMetrics(prometheus.NewRegistry())
	opts := Options{
		Engine:  wildlife.NewEngine(wildlife.WithStore(mem)),
		Metrics: metrics,
		Logger:  zaptest.NewLogger(t),
		Mode:    gin.TestMode,
		Now:     func() time.Time { return time.Date(2024, time.October, 1, 15, 0, 0, 0, time.UTC) },
	}
	if writable {
		opts.Writer = mem
	}
	return testServer{Server: New(opts), store: mem, metrics: metrics}
}

func (ts testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListSpeciesAndModel(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/v1/species", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	species := decode[struct {
		Species []wildlife.Species `json:"species"`
	}](t, rec)
	assert.Len(t, species.Species, len(wildlife.BuiltInSpecies()))

	rec = ts.do(t, http.MethodGet, "/v1/species/moose/model?region=alaska", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	model := decode[wildlife.SeasonalModel](t, rec)
	assert.Equal(t, "alaska", model.Region)
	assert.NotEmpty(t, model.Phases)
}

func TestGetPredictFromQueryParams(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/v1/predict/moose?date=2024-10-10&region=northeast&temp=20&wind=4&cond=moon_phase:new", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[wildlife.PredictionResult](t, rec)
	assert.Equal(t, "rut_peak", result.Phase.Name)
	assert.Equal(t, "2024-10-10", result.Date)
	assert.GreaterOrEqual(t, result.FinalActivity, 0.0)
	assert.LessOrEqual(t, result.FinalActivity, 1.0)
	assert.NotEmpty(t, result.Recommendations)

	ids := make([]string, 0, len(result.ApplicableRules))
	for _, app := range result.ApplicableRules {
		ids = append(ids, app.RuleID)
	}
	assert.Contains(t, ids, "moose_heat_avoidance")
	assert.NotContains(t, ids, "shared_full_moon")
}

func TestGetPredictDefaultsToToday(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodGet, "/v1/predict/moose", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[wildlife.PredictionResult](t, rec)
	assert.Equal(t, "2024-10-01", result.Date)
}

func TestPostPredict(t *testing.T) {
	ts := newTestServer(t, false)
	body := map[string]any{
		"species":     "whitetail",
		"date":        "2024-11-10",
		"location":    map[string]any{"region": "midwest"},
		"temperature": 3,
		"conditions":  map[string]any{"pressure_trend": "falling", "hunting_pressure": "high"},
	}
	rec := ts.do(t, http.MethodPost, "/v1/predict", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[wildlife.PredictionResult](t, rec)
	assert.Equal(t, "whitetail_deer", result.Species)
	assert.Equal(t, "rut_peak", result.Phase.Name)
	assert.InDelta(t, 0.1, result.ConditionModifier, 1e-9)
}

func TestPredictErrors(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/v1/predict/mose", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decode[struct {
		Error       string   `json:"error"`
		Suggestions []string `json:"suggestions"`
	}](t, rec)
	assert.Contains(t, errBody.Suggestions, "moose")

	rec = ts.do(t, http.MethodGet, "/v1/predict/moose?date=10/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/predict/moose?temp=warm", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/v1/predict", map[string]any{"date": "2024-10-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoverageGapIsConflict(t *testing.T) {
	ts := newTestServer(t, false)
	require.NoError(t, ts.store.SaveModel(context.Background(), wildlife.SeasonalModel{
		Species: "moose",
		Region:  "yukon",
		Phases:  []wildlife.Phase{{Name: "winter", Start: wildlife.MD(time.December, 1), End: wildlife.MD(time.February, 28), BaseActivity: 0.3}},
	}))
	rec := ts.do(t, http.MethodGet, "/v1/predict/moose?region=yukon&date=2024-07-01", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestForecast(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/v1/forecast/elk?date=2024-09-20&days=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	forecast := decode[struct {
		Species string                      `json:"species"`
		Days    []wildlife.PredictionResult `json:"days"`
	}](t, rec)
	assert.Equal(t, "elk", forecast.Species)
	require.Len(t, forecast.Days, 3)
	assert.Equal(t, "2024-09-22", forecast.Days[2].Date)

	rec = ts.do(t, http.MethodGet, "/v1/forecast/elk?days=30", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodGet, "/v1/forecast/elk?days=many", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuleAdminRoutes(t *testing.T) {
	ts := newTestServer(t, true)
	rule := map[string]any{
		"id":           "moose_fog_bedding",
		"name":         "Fog bedding",
		"species":      []string{"moose"},
		"seasons":      []string{"all"},
		"habitats":     []string{"spruce_bogs"},
		"conditions":   map[string]any{"humidity": map[string]any{"min": 90}},
		"effect_type":  "location_preference",
		"effect_value": 0.6,
		"confidence":   0.5,
		"active":       true,
	}

	rec := ts.do(t, http.MethodPost, "/v1/rules", rule)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/v1/rules", rule)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rule["id"] = "too_strong"
	rule["effect_value"] = 1.5
	rec = ts.do(t, http.MethodPost, "/v1/rules", rule)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/v1/rules/moose_fog_bedding/weight", map[string]any{"weight": 2.5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = ts.do(t, http.MethodPatch, "/v1/rules/moose_fog_bedding/weight", map[string]any{"weight": 1.5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.5, decode[wildlife.Rule](t, rec).EffectiveWeight())

	rec = ts.do(t, http.MethodGet, "/v1/rules?species=moose&season=rut", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moose_fog_bedding")

	rec = ts.do(t, http.MethodPatch, "/v1/rules/moose_fog_bedding/active", map[string]any{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/v1/rules?species=moose", nil)
	assert.NotContains(t, rec.Body.String(), "moose_fog_bedding")

	rec = ts.do(t, http.MethodPatch, "/v1/rules/ghost/active", map[string]any{"active": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodPatch, "/v1/rules/moose_fog_bedding/active", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadOnlyServerHasNoAdminRoutes(t *testing.T) {
	ts := newTestServer(t, false)
	rec := ts.do(t, http.MethodPost, "/v1/rules", map[string]any{"id": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsCountQueries(t *testing.T) {
	ts := newTestServer(t, false)
	ts.do(t, http.MethodGet, "/v1/predict/moose?date=2024-10-10", nil)
	ts.do(t, http.MethodGet, "/v1/predict/mose", nil)

	rec := httptest.NewRecorder()
	ts.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.True(t, strings.Contains(out, `wildcast_queries_total{outcome="ok",species="moose"} 1`), out)
	assert.True(t, strings.Contains(out, `wildcast_queries_total{outcome="not_found",species="unknown"} 1`), out)
	assert.Contains(t, out, "wildcast_query_duration_seconds_bucket")
}

func TestParseCondition(t *testing.T) {
	field, value, err := ParseCondition("Snow Depth=45")
	require.NoError(t, err)
	assert.Equal(t, "snow_depth", field)
	assert.True(t, value.IsNumber())

	field, value, err = ParseCondition("moon_phase:full")
	require.NoError(t, err)
	assert.Equal(t, "moon_phase", field)
	assert.Equal(t, "full", value.String())

	for _, bad := range []string{"", "novalue:", ":full", "plain"} {
		_, _, err := ParseCondition(bad)
		assert.ErrorIs(t, err, wildlife.ErrValidation, bad)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	ts := newTestServer(t, false)
	require.NoError(t, ts.Shutdown(context.Background()))
	assert.NoError(t, ts.Start("127.0.0.1:0"))
}
