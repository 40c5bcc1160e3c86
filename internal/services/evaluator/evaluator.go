package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/geodetica/fdemsurvey/internal/contrast"
	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model"
	"github.com/geodetica/fdemsurvey/pkg/broker"
	"github.com/geodetica/fdemsurvey/pkg/dedup"
)

// ===================== Config / topics =====================

const (
	defaultResultTopicTmpl = "event/contrastResult/{survey}/{request}"
	defaultFaultTopicTmpl  = "event/solverFault/{survey}/{request}"

	evaluateTimeout = 30 * time.Second
)

// ===================== Service =====================

type Service struct {
	consumer  broker.IConsumer
	publisher broker.IPublisher
	evaluator *contrast.Evaluator

	// template topic "event/.../{survey}/{request}"
	resultTopicTmpl string
	faultTopicTmpl  string

	// deduper per scartare redelivery QoS1 (hash payload)
	deduper *dedup.Deduper
}

// ===================== ctor =====================

func NewService(consumer broker.IConsumer, publisher broker.IPublisher, ev *contrast.Evaluator, resultTmpl, faultTmpl string) *Service {
	if resultTmpl == "" {
		resultTmpl = defaultResultTopicTmpl
	}
	if faultTmpl == "" {
		faultTmpl = defaultFaultTopicTmpl
	}
	s := &Service{
		consumer:        consumer,
		publisher:       publisher,
		evaluator:       ev,
		resultTopicTmpl: resultTmpl,
		faultTopicTmpl:  faultTmpl,
		deduper:         dedup.New(0, 0),
	}
	consumer.SetHandler(s.handleRequest)
	return s
}

// Start avvia il consumer e blocca fino alla cancellazione del context.
func (s *Service) Start(ctx context.Context) {
	go s.consumer.ConsumeMessage(ctx)
	<-ctx.Done()
}

// ===================== handler richieste =====================

func (s *Service) handleRequest(_ string, msg mqtt.Message) error {
	// DEDUP PRIMA DI UNMARSHAL: scarta redelivery QoS1 identiche
	h := sha256.Sum256(msg.Payload())
	if s.deduper != nil && !s.deduper.ShouldProcess(hex.EncodeToString(h[:])) {
		return nil
	}

	var req model.EvaluationRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		log.Printf("evaluator: bad payload: %v", err)
		return nil
	}
	if req.RequestID == "" {
		log.Printf("evaluator: dropping request without request_id")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.evaluator.Evaluate(ctx, req.ProfileA, req.ProfileB, req.Sensor)
	switch {
	case err == nil:
		log.Printf("evaluator: %s/%s qp=%.1fppm det=%v ip=%.1fppm det=%v [%dms]",
			req.SurveyID, req.RequestID,
			res.QP.ContrastPPM, res.QP.Detectable, res.IP.ContrastPPM, res.IP.Detectable,
			time.Since(start).Milliseconds())
		return s.publishResult(req, res)
	case errors.Is(err, forward.ErrSolverFault):
		// fault del solver: pubblica l'evento, nessun retry
		log.Printf("evaluator: solver fault for %s/%s: %v", req.SurveyID, req.RequestID, err)
		return s.publishFault(req, err)
	default:
		// input malformato: logga e scarta (non retryabile)
		log.Printf("evaluator: request %s/%s rejected: %v", req.SurveyID, req.RequestID, err)
		return nil
	}
}

// ===================== Publish & utilities =====================

func (s *Service) publishResult(req model.EvaluationRequest, res contrast.Result) error {
	evt := model.ContrastResultEvent{
		RequestID: req.RequestID,
		SurveyID:  req.SurveyID,
		QP:        model.ChannelOutcome{ContrastPPM: res.QP.ContrastPPM, Detectable: res.QP.Detectable},
		IP:        model.ChannelOutcome{ContrastPPM: res.IP.ContrastPPM, Detectable: res.IP.Detectable},
		ResponseA: model.ResponsePPM{InPhase: res.A.InPhase, Quadrature: res.A.Quadrature},
		ResponseB: model.ResponsePPM{InPhase: res.B.InPhase, Quadrature: res.B.Quadrature},
		NoisePPM:  req.Sensor.NoisePPM,
		Timestamp: time.Now().UTC(),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	// publish risultato a QoS=1
	topic := s.topicFor(s.resultTopicTmpl, req)
	if err := s.publisher.Publish(topic, 1, false, b); err != nil {
		log.Printf("evaluator: publish result error: %v", err)
		return err
	}
	return nil
}

func (s *Service) publishFault(req model.EvaluationRequest, cause error) error {
	var profile string
	var pe *contrast.ProfileError
	if errors.As(cause, &pe) {
		profile = pe.Profile
	}
	reason := cause.Error()
	var fe *forward.FaultError
	if errors.As(cause, &fe) {
		reason = fe.Reason
	}

	evt := model.SolverFaultEvent{
		RequestID: req.RequestID,
		SurveyID:  req.SurveyID,
		Profile:   profile,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	// avviso advisory: QoS=0 basta
	topic := s.topicFor(s.faultTopicTmpl, req)
	if err := s.publisher.Publish(topic, 0, false, b); err != nil {
		log.Printf("evaluator: publish fault error: %v", err)
		return err
	}
	return nil
}

func (s *Service) topicFor(tmpl string, req model.EvaluationRequest) string {
	return strings.NewReplacer(
		"{survey}", req.SurveyID,
		"{request}", req.RequestID,
	).Replace(tmpl)
}
