package messages

import "time"

// ResponsePPM is a raw forward-model response in parts per million of the
// primary field.
type ResponsePPM struct {
	InPhase    float64 `json:"in_phase_ppm"`
	Quadrature float64 `json:"quadrature_ppm"`
}

// ChannelOutcome is the verdict for one instrument channel.
type ChannelOutcome struct {
	ContrastPPM float64 `json:"contrast_ppm"`
	Detectable  bool    `json:"detectable"`
}

// ContrastResultEvent is published by the evaluator when a comparison
// completes on both profiles.
type ContrastResultEvent struct {
	RequestID string         `json:"request_id"`
	SurveyID  string         `json:"survey_id"`
	QP        ChannelOutcome `json:"qp"`
	IP        ChannelOutcome `json:"ip"`
	ResponseA ResponsePPM    `json:"response_a"`
	ResponseB ResponsePPM    `json:"response_b"`
	NoisePPM  float64        `json:"noise_ppm"`
	Timestamp time.Time      `json:"timestamp"`
}
