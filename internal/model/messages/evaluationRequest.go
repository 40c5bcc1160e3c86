package messages

import (
	"time"

	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

// EvaluationRequest asks for a detectability comparison of two soil
// scenarios under a single sensor configuration.
type EvaluationRequest struct {
	RequestID string                `json:"request_id"`
	SurveyID  string                `json:"survey_id"`
	ProfileA  entities.SoilProfile  `json:"profile_a"`
	ProfileB  entities.SoilProfile  `json:"profile_b"`
	Sensor    entities.SensorConfig `json:"sensor"`
	Timestamp time.Time             `json:"timestamp"`
}
