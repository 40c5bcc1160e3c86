package archive

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/geodetica/fdemsurvey/internal/model/messages"
)

const (
	EventTypeResult = "contrast.result"
	EventTypeFault  = "solver.fault"
)

type ArchivedEvent struct {
	EventType     string // contrast.result | solver.fault
	SourceService string
	SurveyID      string
	RequestID     string
	Severity      string // info|warning|error
	Fields        map[string]interface{}
	Timestamp     time.Time
}

// MQTTHandler trasforma i messaggi MQTT in ArchivedEvent e li passa a sink (Influx).
type MQTTHandler struct{ sink func(ArchivedEvent) }

func NewMQTTHandler(sink func(ArchivedEvent)) *MQTTHandler { return &MQTTHandler{sink: sink} }

func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	payload := m.Payload()

	var (
		evt ArchivedEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, "event/contrastResult/"):
		evt, err = decodeResult(topic, payload)
	case strings.HasPrefix(topic, "event/solverFault/"):
		evt, err = decodeFault(topic, payload)
	default:
		return nil // ignora altri topic
	}
	if err != nil {
		return err
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func decodeResult(topic string, payload []byte) (ArchivedEvent, error) {
	var r msg.ContrastResultEvent
	if err := json.Unmarshal(payload, &r); err != nil {
		return ArchivedEvent{}, err
	}
	surveyID, requestID := pickIDs(topic, r.SurveyID, r.RequestID, "event/contrastResult/")
	if surveyID == "" || requestID == "" {
		return ArchivedEvent{}, errors.New("result: missing survey/request")
	}
	return ArchivedEvent{
		EventType:     EventTypeResult,
		SourceService: "evaluator",
		SurveyID:      surveyID,
		RequestID:     requestID,
		Severity:      "info",
		Fields: map[string]interface{}{
			"qp_contrast_ppm": r.QP.ContrastPPM,
			"ip_contrast_ppm": r.IP.ContrastPPM,
			"detectable_qp":   r.QP.Detectable,
			"detectable_ip":   r.IP.Detectable,
			"qp_a_ppm":        r.ResponseA.Quadrature,
			"qp_b_ppm":        r.ResponseB.Quadrature,
			"ip_a_ppm":        r.ResponseA.InPhase,
			"ip_b_ppm":        r.ResponseB.InPhase,
			"noise_ppm":       r.NoisePPM,
		},
		Timestamp: r.Timestamp,
	}, nil
}

func decodeFault(topic string, payload []byte) (ArchivedEvent, error) {
	var f msg.SolverFaultEvent
	if err := json.Unmarshal(payload, &f); err != nil {
		return ArchivedEvent{}, err
	}
	surveyID, requestID := pickIDs(topic, f.SurveyID, f.RequestID, "event/solverFault/")
	if surveyID == "" || requestID == "" {
		return ArchivedEvent{}, errors.New("fault: missing survey/request")
	}
	return ArchivedEvent{
		EventType:     EventTypeFault,
		SourceService: "evaluator",
		SurveyID:      surveyID,
		RequestID:     requestID,
		Severity:      "warning",
		Fields: map[string]interface{}{
			"profile": f.Profile,
			"reason":  f.Reason,
		},
		Timestamp: f.Timestamp,
	}, nil
}

// pickIDs usa il payload, oppure il topic "prefix/{survey}/{request}".
func pickIDs(topic, surveyID, requestID, prefix string) (string, string) {
	if strings.TrimSpace(surveyID) != "" && strings.TrimSpace(requestID) != "" {
		return surveyID, requestID
	}
	suffix := strings.TrimPrefix(topic, prefix)
	parts := strings.Split(suffix, "/")
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return surveyID, requestID
}
