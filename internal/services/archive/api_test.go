package archive

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecentDefaultsAndClamps(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  recentQueryParams
	}{
		{"defaults", "", recentQueryParams{Minutes: 1440, Limit: 20, TimeoutMS: 2000}},
		{"explicit", "?minutes=90&limit=5&timeout_ms=500", recentQueryParams{Minutes: 90, Limit: 5, TimeoutMS: 500}},
		{"clamped low", "?minutes=0&limit=0&timeout_ms=10", recentQueryParams{Minutes: 1, Limit: 1, TimeoutMS: 200}},
		{"clamped high", "?minutes=999999&limit=9999&timeout_ms=60000", recentQueryParams{Minutes: 7 * 24 * 60, Limit: 500, TimeoutMS: 5000}},
		{"garbage ignored", "?minutes=abc&limit=-&timeout_ms=", recentQueryParams{Minutes: 1440, Limit: 20, TimeoutMS: 2000}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/evaluations/recent"+tc.query, nil)
			assert.Equal(t, tc.want, parseRecent(r, 1440, 20, 2000))
		})
	}
}

func TestBuildFlux(t *testing.T) {
	flux := buildFlux("surveys", 90, 5)
	assert.Contains(t, flux, `from(bucket: "surveys")`)
	assert.Contains(t, flux, "range(start: -90m)")
	assert.Contains(t, flux, `r._measurement == "fdem_evaluation"`)
	assert.Contains(t, flux, "pivot(")
	assert.Contains(t, flux, `sort(columns: ["_time"], desc: true)`)
	assert.Contains(t, flux, "limit(n:5)")
}

func TestRecentHandlerServesCacheWhenInfluxDown(t *testing.T) {
	cache := NewLatestCache(10)
	cache.Add(Evaluation{SurveyID: "field-7", RequestID: "req-1", QPContrastPPM: 60, DetectableQP: true, Time: "2025-06-01T12:00:00Z"})
	cache.Add(Evaluation{SurveyID: "field-7", RequestID: "req-2", QPContrastPPM: 80, DetectableQP: true, Time: "2025-06-01T12:01:00Z"})

	// porta chiusa: la query fallisce subito
	influx := influxdb2.NewClient("http://127.0.0.1:1", "")
	defer influx.Close()

	h := NewRecentHandler(influx, "geodetica", "surveys", cache)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/evaluations/recent?limit=1&timeout_ms=200", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cache", rec.Header().Get("X-Source"))

	var out []Evaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "req-2", out[0].RequestID)
}

func TestLatestCacheNewestFirstAndBounded(t *testing.T) {
	cache := NewLatestCache(2)
	cache.Add(Evaluation{RequestID: "req-1"})
	cache.Add(Evaluation{RequestID: "req-2"})
	cache.Add(Evaluation{RequestID: "req-3"})

	rows := cache.Recent(0)
	require.Len(t, rows, 2)
	assert.Equal(t, "req-3", rows[0].RequestID)
	assert.Equal(t, "req-2", rows[1].RequestID)
}

func TestEvaluationFromEvent(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := EvaluationFrom(ArchivedEvent{
		EventType: EventTypeResult,
		SurveyID:  "field-7",
		RequestID: "req-1",
		Fields: map[string]interface{}{
			"qp_contrast_ppm": 75.2,
			"ip_contrast_ppm": 0.4,
			"detectable_qp":   true,
			"detectable_ip":   false,
		},
		Timestamp: ts,
	})
	assert.Equal(t, "field-7", e.SurveyID)
	assert.Equal(t, 75.2, e.QPContrastPPM)
	assert.True(t, e.DetectableQP)
	assert.False(t, e.DetectableIP)
	assert.Equal(t, "2025-06-01T12:00:00Z", e.Time)
}
