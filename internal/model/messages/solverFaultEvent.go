package messages

import "time"

// SolverFaultEvent è pubblicato dall'evaluator quando il forward solver
// segnala un fault numerico. Profile indica lo scenario che lo ha sollevato.
// È allineato allo stile degli altri eventi in internal/model/messages/*.
type SolverFaultEvent struct {
	RequestID string    `json:"request_id"`
	SurveyID  string    `json:"survey_id"`
	Profile   string    `json:"profile"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
