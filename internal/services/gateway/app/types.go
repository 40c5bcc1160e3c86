package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/geodetica/fdemsurvey/internal/model"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

// ---------- Request / error payloads ----------

type EvaluateRequest struct {
	SurveyID string                `json:"survey_id"`
	ProfileA entities.SoilProfile  `json:"profile_a"`
	ProfileB entities.SoilProfile  `json:"profile_b"`
	Sensor   entities.SensorConfig `json:"sensor"`
}

type ErrorBody struct {
	Error   string `json:"error"`
	Profile string `json:"profile,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type SweepRequest struct {
	SurveyID string                  `json:"survey_id"`
	ProfileA entities.SoilProfile    `json:"profile_a"`
	ProfileB entities.SoilProfile    `json:"profile_b"`
	Sensors  []entities.SensorConfig `json:"sensors"`
}

// SweepEntry riporta il verdetto per una singola configurazione, con i
// parametri chiave ripetuti per identificarla.
type SweepEntry struct {
	Frequency   float64                  `json:"frequency_hz"`
	Orientation entities.CoilOrientation `json:"orientation"`
	QP          model.ChannelOutcome     `json:"qp"`
	IP          model.ChannelOutcome     `json:"ip"`
	ResponseA   model.ResponsePPM        `json:"response_a"`
	ResponseB   model.ResponsePPM        `json:"response_b"`
}

type SweepResponse struct {
	RequestID string       `json:"request_id"`
	SurveyID  string       `json:"survey_id,omitempty"`
	Results   []SweepEntry `json:"results"`
}

// ---------- Upstream payloads ----------

type Evaluation struct {
	SurveyID      string  `json:"survey_id"`
	RequestID     string  `json:"request_id"`
	QPContrastPPM float64 `json:"qp_contrast_ppm"`
	IPContrastPPM float64 `json:"ip_contrast_ppm"`
	DetectableQP  bool    `json:"detectable_qp"`
	DetectableIP  bool    `json:"detectable_ip"`
	Time          string  `json:"time"` // RFC3339
}

// UnmarshalJSON tollera numeri come stringhe e l'alias "timestamp" per "time",
// così il gateway non si rompe se l'archivio cambia versione.
func (e *Evaluation) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if v, ok := m["survey_id"].(string); ok {
		e.SurveyID = v
	}
	if v, ok := m["request_id"].(string); ok {
		e.RequestID = v
	}
	if t, ok := m["time"].(string); ok && t != "" {
		e.Time = t
	} else if t, ok := m["timestamp"].(string); ok && t != "" {
		e.Time = t
	}
	e.QPContrastPPM = num(m, "qp_contrast_ppm")
	e.IPContrastPPM = num(m, "ip_contrast_ppm")
	e.DetectableQP = boolish(m, "detectable_qp")
	e.DetectableIP = boolish(m, "detectable_ip")
	return nil
}

// num accetta numero o stringa
func num(m map[string]any, key string) float64 {
	switch x := m[key].(type) {
	case float64:
		return x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}

// boolish accetta bool o stringa "true"/"false"
func boolish(m map[string]any, key string) bool {
	switch x := m[key].(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	}
	return false
}
