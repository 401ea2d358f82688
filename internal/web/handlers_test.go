package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/logger"
	"github.com/hpungsan/fittrack/internal/storage"
	"github.com/hpungsan/fittrack/internal/tracker"
	"github.com/hpungsan/fittrack/internal/view"
)

var testNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func setupTest(t *testing.T) (http.Handler, *tracker.Tracker) {
	t.Helper()

	tr, err := tracker.Open(context.Background(),
		storage.NewAdapter(storage.NewMemoryBackend(), nil),
		tracker.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	templateSub, err := fs.Sub(templateFS, "templates")
	require.NoError(t, err)
	staticSub, err := fs.Sub(staticFS, "static")
	require.NoError(t, err)

	renderer, err := NewRenderer(templateSub, "test", nil)
	require.NoError(t, err)

	h := &Handlers{
		tr:       tr,
		cfg:      config.DefaultConfig(),
		renderer: renderer,
	}
	return newRouter(h, staticSub, logger.Nop()), tr
}

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// --- Dashboard ---

func TestHandleDashboard_Empty(t *testing.T) {
	router, _ := setupTest(t)

	rec := get(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "No goals yet.")
	assert.Contains(t, body, "Nothing logged.")
	assert.Contains(t, body, `<strong id="summary-count">0</strong>`)
	assert.Contains(t, body, `value="2024-03-10"`)
}

func TestHandleDashboard_WithSample(t *testing.T) {
	router, _ := setupTest(t)

	rec := postForm(t, router, "/sample", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = get(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Correr 50 km em 30 dias")
	assert.Contains(t, body, "18/50 km · 36%")
	assert.Contains(t, body, `width="36"`)
	assert.Contains(t, body, "2024-03-09: Corrida, 6 km")
	assert.Contains(t, body, `<strong id="summary-count">3</strong>`)
	assert.Equal(t, 3, strings.Count(body, `class="chart-bar"`))
}

func TestHandleDashboard_SecurityHeaders(t *testing.T) {
	router, _ := setupTest(t)

	rec := get(t, router, "/")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestHandleDashboard_BadPolicy(t *testing.T) {
	router, _ := setupTest(t)

	rec := get(t, router, "/?policy=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "policy must be one of")
}

func TestHandleDashboardJSON(t *testing.T) {
	router, _ := setupTest(t)
	postForm(t, router, "/sample", url.Values{})

	rec := get(t, router, "/api/dashboard?recent=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var d view.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 3, d.SummaryCount)
	assert.Len(t, d.Recent, 2)
	assert.Equal(t, []string{"2024-03-06", "2024-03-07", "2024-03-09"}, d.Chart.Labels)
	assert.Equal(t, []float64{5, 7, 6}, d.Chart.Values)
}

func TestHandleDashboardJSON_ErrorIsJSON(t *testing.T) {
	router, _ := setupTest(t)

	rec := get(t, router, "/api/dashboard?recent=-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "INVALID_REQUEST", payload["error"]["code"])
}

// --- Goals ---

func TestHandleAddGoal(t *testing.T) {
	router, tr := setupTest(t)

	rec := postForm(t, router, "/goals", url.Values{
		"title":  {"Correr 20 km"},
		"target": {"20,5"},
		"unit":   {"km"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?flash=goal+added", rec.Header().Get("Location"))

	goals := tr.Snapshot().Goals
	require.Len(t, goals, 1)
	assert.Equal(t, 20.5, goals[0].Target)
	assert.Equal(t, "km", goals[0].Unit)
}

func TestHandleAddGoal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing target", url.Values{"title": {"Run"}}},
		{"non numeric target", url.Values{"title": {"Run"}, "target": {"lots"}}},
		{"zero target", url.Values{"title": {"Run"}, "target": {"0"}}},
		{"blank title", url.Values{"title": {"  "}, "target": {"5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, tr := setupTest(t)

			rec := postForm(t, router, "/goals", tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, tr.Snapshot().Goals)
		})
	}
}

func TestHandleRenameAndRemoveGoal(t *testing.T) {
	router, tr := setupTest(t)

	postForm(t, router, "/goals", url.Values{"title": {"Old"}, "target": {"5"}})
	id := tr.Snapshot().Goals[0].ID

	rec := postForm(t, router, "/goals/"+id+"/rename", url.Values{"title": {""}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "", tr.Snapshot().Goals[0].Title)

	rec = postForm(t, router, "/goals/"+id+"/rename", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(t, router, "/goals/"+id+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, tr.Snapshot().Goals)

	rec = postForm(t, router, "/goals/"+id+"/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Activities ---

func TestHandleLogActivity(t *testing.T) {
	router, tr := setupTest(t)

	rec := postForm(t, router, "/activities", url.Values{
		"type":   {"Corrida"},
		"amount": {"5"},
		"unit":   {"km"},
		"date":   {"2024-03-01"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	acts := tr.Snapshot().Activities
	require.Len(t, acts, 1)
	assert.Equal(t, "2024-03-01", tracker.Day(acts[0].Date))

	rec = postForm(t, router, "/activities", url.Values{"type": {"Corrida"}, "amount": {"5"}, "date": {"yesterday"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, tr.Snapshot().Activities, 1)
}

func TestHandleRemoveActivity(t *testing.T) {
	router, tr := setupTest(t)

	postForm(t, router, "/activities", url.Values{"type": {"Corrida"}, "amount": {"5"}})
	id := tr.Snapshot().Activities[0].ID

	rec := postForm(t, router, "/activities/"+id+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, tr.Snapshot().Activities)

	rec = postForm(t, router, "/activities/missing/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "activity not found: missing")
}

// --- Clear ---

func TestHandleClear(t *testing.T) {
	router, tr := setupTest(t)
	postForm(t, router, "/sample", url.Values{})

	rec := postForm(t, router, "/clear", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, tr.Snapshot().Activities, 3)

	rec = postForm(t, router, "/clear", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, tr.Snapshot().Goals)
	assert.Empty(t, tr.Snapshot().Activities)
}

func TestMutatingRoutes_RejectCrossOrigin(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    int
	}{
		{"cross-site clear", "/clear", map[string]string{"Origin": "https://evil.example", "Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"same-site clear", "/clear", map[string]string{"Sec-Fetch-Site": "same-site"}, http.StatusForbidden},
		{"foreign origin only", "/clear", map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
		{"null origin", "/sample", map[string]string{"Origin": "null"}, http.StatusForbidden},
		{"cross-site goal delete", "/goals/x/delete", map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"same origin header", "/clear", map[string]string{"Sec-Fetch-Site": "same-origin"}, http.StatusSeeOther},
		{"matching origin", "/clear", map[string]string{"Origin": "http://example.com"}, http.StatusSeeOther},
		{"no browser headers", "/clear", nil, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, tr := setupTest(t)
			postForm(t, router, "/sample", url.Values{})

			form := url.Values{"confirm": {"yes"}}
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Len(t, tr.Snapshot().Goals, 1)
				assert.Len(t, tr.Snapshot().Activities, 3)
			}
		})
	}
}

func TestCrossSiteGetStillServed(t *testing.T) {
	router, _ := setupTest(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- Report ---

func TestHandleReport(t *testing.T) {
	router, _ := setupTest(t)
	postForm(t, router, "/sample", url.Values{})

	rec := get(t, router, "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Fitness report</h1>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "36%")

	rec = get(t, router, "/report?format=md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Fitness report"))
}

func TestHandleReport_EscapesTitles(t *testing.T) {
	router, _ := setupTest(t)
	postForm(t, router, "/goals", url.Values{"title": {"<script>alert(1)</script>"}, "target": {"5"}})

	rec := get(t, router, "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

// --- Static ---

func TestStaticAssets(t *testing.T) {
	router, _ := setupTest(t)

	rec := get(t, router, "/static/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".bar-fill")
}

// --- Chart layout ---

func TestLayoutChart(t *testing.T) {
	c := layoutChart(view.Chart{
		Labels: []string{"2024-03-01", "2024-03-02"},
		Values: []float64{10, 5},
	})

	require.Len(t, c.Bars, 2)
	plot := float64(chartHeight - 2*chartPadding)
	assert.InDelta(t, plot, c.Bars[0].Height, 1e-9)
	assert.InDelta(t, plot/2, c.Bars[1].Height, 1e-9)
	assert.Greater(t, c.Bars[1].X, c.Bars[0].X)
	assert.Equal(t, "5", c.Bars[1].Value)

	assert.Empty(t, layoutChart(view.Chart{}).Bars)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"5", 5, false},
		{" 2.5 ", 2.5, false},
		{"2,5", 2.5, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in, "amount")
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
