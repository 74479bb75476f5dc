package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/core/engine"
	"observatory/core/filter"
	"observatory/core/records"
	"observatory/core/region"
	"observatory/internal/metrics"
)

const jaliscoShape = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Jalisco"},
     "geometry": {"type": "Polygon", "coordinates": [[[-104,20],[-103,20],[-103,21],[-104,20]]]}}
  ]
}`

func testServer(t *testing.T) *Server {
	t.Helper()
	y2018, y2021 := 2018.0, 2021.0
	data := records.Dataset{
		Policies: []*records.Policy{
			{Common: records.Common{ID: 1, State: "Jalisco", Year: &y2018, Status: "Active"}, Name: "Programa Automotriz", Instrument: 3, Sector: "Automotive"},
			{Common: records.Common{ID: 2, State: "Jalisco", Year: &y2021, Status: "Closed"}, Name: "Fondo Semiconductores", Instrument: 1, Sector: "Electronics"},
			{Common: records.Common{ID: 3, State: "Nuevo León", Year: &y2021, Status: "Active"}, Name: "Monterrey Digital", Instrument: 1, Sector: "Software"},
		},
		FDI: []*records.FDI{
			{Common: records.Common{ID: 10, State: "Jalisco", Year: &y2021}, CompanyName: "Acme", LinkedPolicyIDs: []int{1, 999}},
		},
	}
	n := region.NewMexicoNormalizer()
	geometry, err := region.BindGeometry([]byte(jaliscoShape), n)
	require.NoError(t, err)

	m := metrics.New(false)
	e, err := engine.New(records.NewStore(n, data, geometry), filter.Default(), engine.WithMetrics(m))
	require.NoError(t, err)
	return NewServer("test", e, m, nil)
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, target, r))

	var decoded map[string]any
	if strings.Contains(rec.Header().Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func TestHealthAndVersion(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	_, body = do(t, s, http.MethodGet, "/version", "")
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, "v1", body["api_version"])
}

func TestGetFilter(t *testing.T) {
	rec, body := do(t, testServer(t), http.MethodGet, "/filter", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f := body["filter"].(map[string]any)
	assert.Equal(t, "policies", f["layer"])
	assert.EqualValues(t, filter.MaxYear, f["year"])
	assert.Equal(t, true, f["cumulative"])

	years := body["years"].(map[string]any)
	assert.EqualValues(t, 2018, years["min"])
	assert.EqualValues(t, 2026, years["max"])

	assert.Equal(t, []any{"Active", "Closed"}, body["statuses"])
	assert.Len(t, body["layers"], len(filter.Layers()))
}

func TestPutFilterMergesFields(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodPut, "/filter", `{"status":"Active","year":2020}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f := body["filter"].(map[string]any)
	assert.Equal(t, "Active", f["status"])
	assert.EqualValues(t, 2020, f["year"])
	assert.Equal(t, "policies", f["layer"])

	_, body = do(t, s, http.MethodGet, "/regions/Jalisco/value", "")
	assert.EqualValues(t, 1, body["value"])
}

func TestPutFilterRejectsBadInput(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodPut, "/filter", `{"layer":"roads"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INPUT_ERROR", body["error"].(map[string]any)["code"])

	rec, _ = do(t, s, http.MethodPut, "/filter", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, filter.LayerPolicies, s.engine.Filter().Layer)
}

func TestRegions(t *testing.T) {
	rec, body := do(t, testServer(t), http.MethodGet, "/regions?layer=instruments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "instruments", body["layer"])

	regions := body["regions"].([]any)
	require.Len(t, regions, 32)

	byName := map[string]map[string]any{}
	for _, r := range regions {
		entry := r.(map[string]any)
		byName[entry["region"].(string)] = entry
	}
	assert.Equal(t, true, byName["Jalisco"]["has_shape"])
	assert.Equal(t, false, byName["Sonora"]["has_shape"])
	assert.Equal(t, "None", byName["Sonora"]["value"])
	assert.Len(t, byName["Jalisco"]["centroid"], 2)
}

func TestRegionsRejectsUnknownLayer(t *testing.T) {
	rec, _ := do(t, testServer(t), http.MethodGet, "/regions?layer=roads", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegionResolvesAliases(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/regions/"+url.PathEscape("nuevo leon"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nuevo León", body["region"])
	assert.Equal(t, "folded", body["matched_by"])
	assert.EqualValues(t, 1, body["summary"].(map[string]any)["policies_count"])

	rec, body = do(t, s, http.MethodGet, "/regions/Atlantis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestRegionValue(t *testing.T) {
	s := testServer(t)

	_, body := do(t, s, http.MethodGet, "/regions/Jalisco/value", "")
	assert.Equal(t, "policies", body["layer"])
	assert.EqualValues(t, 2, body["value"])

	_, body = do(t, s, http.MethodGet, "/regions/Jalisco/value?layer=fdi", "")
	assert.EqualValues(t, 0, body["value"])

	_, body = do(t, s, http.MethodGet, "/regions/Jalisco/value?layer=sectors", "")
	assert.Equal(t, "Automotive", body["value"])
}

func TestRegionShape(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/regions/Jalisco/shape", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Feature", body["type"])
	assert.Equal(t, "Polygon", body["geometry"].(map[string]any)["type"])
	assert.Equal(t, "Jalisco", body["properties"].(map[string]any)["name"])

	rec, _ = do(t, s, http.MethodGet, "/regions/Sonora/shape", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecords(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/records/policies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["count"])

	require.NoError(t, s.engine.SetStatus("Closed"))
	_, body = do(t, s, http.MethodGet, "/records/policies", "")
	assert.EqualValues(t, 1, body["count"])

	rec, _ = do(t, s, http.MethodGet, "/records/roads", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLinkages(t *testing.T) {
	s := testServer(t)

	_, body := do(t, s, http.MethodGet, "/linkages", "")
	assert.EqualValues(t, 1, body["count"])
	link := body["linkages"].([]any)[0].(map[string]any)
	assert.Equal(t, "Acme", link["company"])
	assert.Equal(t, "Programa Automotriz", link["policy_name"])

	_, body = do(t, s, http.MethodGet, "/linkages?region=Nuevo+Leon", "")
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["linkages"])

	rec, _ := do(t, s, http.MethodGet, "/linkages?region=Atlantis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, body = do(t, s, http.MethodGet, "/linkages/groups", "")
	groups := body["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "Jalisco", groups[0].(map[string]any)["state"])
}

func TestDistribution(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/distribution/policies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	bars := body["bars"].([]any)
	require.NotEmpty(t, bars)
	assert.Equal(t, "Jalisco", bars[0].(map[string]any)["label"])

	rec, _ = do(t, s, http.MethodGet, "/distribution/roads", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBreakdown(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/distribution/fdi/pie", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Policy Linkage", body["title"])
	slices := body["slices"].([]any)
	require.Len(t, slices, 2)
	assert.Equal(t, "Policy Linked", slices[0].(map[string]any)["label"])
	assert.EqualValues(t, 1, slices[0].(map[string]any)["count"])

	_, body = do(t, s, http.MethodGet, "/distribution/energy/pie", "")
	assert.Equal(t, "Clean vs. Conventional", body["title"])

	rec, _ = do(t, s, http.MethodGet, "/distribution/roads/pie", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	s := testServer(t)

	rec, body := do(t, s, http.MethodGet, "/stats/policies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "policies", body["layer"])
	stats := body["stats"].([]any)
	require.Len(t, stats, 2)
	assert.Equal(t, map[string]any{"label": "POLICIES", "value": float64(3)}, stats[0])
	assert.Equal(t, map[string]any{"label": "STATES", "value": float64(2)}, stats[1])

	rec, _ = do(t, s, http.MethodPut, "/filter", `{"year":2019}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = do(t, s, http.MethodGet, "/stats/policies", "")
	assert.EqualValues(t, 1, body["stats"].([]any)[0].(map[string]any)["value"])

	rec, _ = do(t, s, http.MethodGet, "/stats/roads", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutFilterBodyTooLarge(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/filter", strings.NewReader(`{"status":"Active","year":2020}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 8)
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PAYLOAD_TOO_LARGE", body.Error.Code)
	assert.Equal(t, "", s.engine.Filter().Status)
}

func TestReport(t *testing.T) {
	_, body := do(t, testServer(t), http.MethodGet, "/report", "")
	assert.EqualValues(t, 1, body["dangling_links"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)
	do(t, s, http.MethodPut, "/filter", `{"show_undated":false}`)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "observatory_recomputes_total 2")
	assert.Contains(t, rec.Body.String(), "observatory_dangling_links 1")
}

func TestNoMetricsRouteWithoutRegistry(t *testing.T) {
	s := testServer(t)
	bare := NewServer("test", s.engine, nil, nil)

	rec := httptest.NewRecorder()
	bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
