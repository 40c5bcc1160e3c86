package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

const timeLayout = time.RFC3339

// Payload esposta al gateway
type Evaluation struct {
	SurveyID      string  `json:"survey_id,omitempty"`
	RequestID     string  `json:"request_id,omitempty"`
	QPContrastPPM float64 `json:"qp_contrast_ppm"`
	IPContrastPPM float64 `json:"ip_contrast_ppm"`
	DetectableQP  bool    `json:"detectable_qp"`
	DetectableIP  bool    `json:"detectable_ip"`
	Time          string  `json:"time"` // RFC3339
}

type recentQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseRecent(r *http.Request, defMin, defLim, defTOms int) recentQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return recentQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

// buildFlux produce la query sui risultati: pivot dei field per riga,
// ordinata dalla più recente.
func buildFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)
  |> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> keep(columns: ["_time","survey_id","request_id","qp_contrast_ppm","ip_contrast_ppm","detectable_qp","detectable_ip"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, MeasurementEvaluation, limit)
}

func runRecent(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket string, cache *LatestCache, defMin, defLim int) {
	p := parseRecent(r, defMin, defLim, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	api := influx.QueryAPI(org)
	res, err := api.Query(ctx, buildFlux(bucket, p.Minutes, p.Limit))
	if err != nil {
		// Influx giù: servi la cache in-memory invece di fallire
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		w.Header().Set("X-Source", "cache")
		_ = json.NewEncoder(w).Encode(cache.Recent(p.Limit))
		return
	}
	defer func() {
		_ = res.Close()
	}()

	out := make([]Evaluation, 0, p.Limit)
	for res.Next() {
		rec := res.Record()
		out = append(out, Evaluation{
			SurveyID:      toString(rec.ValueByKey("survey_id")),
			RequestID:     toString(rec.ValueByKey("request_id")),
			QPContrastPPM: toFloat(rec.ValueByKey("qp_contrast_ppm")),
			IPContrastPPM: toFloat(rec.ValueByKey("ip_contrast_ppm")),
			DetectableQP:  toBool(rec.ValueByKey("detectable_qp")),
			DetectableIP:  toBool(rec.ValueByKey("detectable_ip")),
			Time:          rec.Time().UTC().Format(timeLayout),
		})
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// === HANDLER PUBBLICO ===
// GET /evaluations/recent?limit=20[&minutes=1440][&timeout_ms=2000]
func NewRecentHandler(influx influxdb2.Client, org, bucket string, cache *LatestCache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runRecent(w, r, influx, org, bucket, cache, 1440, 20)
	})
}

// --------------------- conversioni ---------------------

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}

func toBool(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	}
	return false
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
