package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/geodetica/fdemsurvey/internal/contrast"
	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

// HandleEvaluate: POST /evaluate, valutazione sincrona di una coppia di profili.
func (g *Gateway) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		evaluationsTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "bad_request", Detail: err.Error()})
		return
	}
	requestID := uuid.NewString()

	res, err := g.evaluator.Evaluate(ctx, req.ProfileA, req.ProfileB, req.Sensor)
	switch {
	case err == nil:
		evaluationsTotal.WithLabelValues("ok").Inc()
		writeJSON(w, http.StatusOK, model.ContrastResultEvent{
			RequestID: requestID,
			SurveyID:  req.SurveyID,
			QP:        model.ChannelOutcome{ContrastPPM: res.QP.ContrastPPM, Detectable: res.QP.Detectable},
			IP:        model.ChannelOutcome{ContrastPPM: res.IP.ContrastPPM, Detectable: res.IP.Detectable},
			ResponseA: model.ResponsePPM{InPhase: res.A.InPhase, Quadrature: res.A.Quadrature},
			ResponseB: model.ResponsePPM{InPhase: res.B.InPhase, Quadrature: res.B.Quadrature},
			NoisePPM:  req.Sensor.NoisePPM,
			Timestamp: time.Now().UTC(),
		})
	case errors.Is(err, forward.ErrSolverFault):
		// il solver non converge su questo input: 502 verso il chiamante
		evaluationsTotal.WithLabelValues("fault").Inc()
		var pe *contrast.ProfileError
		var profile string
		if errors.As(err, &pe) {
			profile = pe.Profile
		}
		detail := err.Error()
		var fe *forward.FaultError
		if errors.As(err, &fe) {
			detail = fe.Reason
		}
		writeJSON(w, http.StatusBadGateway, ErrorBody{Error: "solver_fault", Profile: profile, Detail: detail})
	case errors.Is(err, entities.ErrInvalidConfig) || errors.Is(err, forward.ErrInvalidProfile):
		evaluationsTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid_request", Detail: err.Error()})
	default:
		evaluationsTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal", Detail: err.Error()})
	}
	evaluationSeconds.Observe(time.Since(start).Seconds())
	g.cfg.Logger.Printf("POST /evaluate survey=%s req=%s [%dms]",
		req.SurveyID, requestID, time.Since(start).Milliseconds())
}

// HandleSweep: POST /evaluate/sweep, stessa coppia di profili su più
// configurazioni strumentali in una chiamata. Una configurazione invalida o
// un fault del solver fanno fallire l'intera richiesta.
func (g *Gateway) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var req SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		evaluationsTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "bad_request", Detail: err.Error()})
		return
	}
	if len(req.Sensors) == 0 {
		evaluationsTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid_request", Detail: "no sensor configurations"})
		return
	}
	requestID := uuid.NewString()

	results, err := g.evaluator.EvaluateSweep(ctx, req.ProfileA, req.ProfileB, req.Sensors)
	switch {
	case err == nil:
		evaluationsTotal.WithLabelValues("ok").Inc()
		out := SweepResponse{RequestID: requestID, SurveyID: req.SurveyID, Results: make([]SweepEntry, 0, len(results))}
		for i, res := range results {
			out.Results = append(out.Results, SweepEntry{
				Frequency:   req.Sensors[i].Frequency,
				Orientation: req.Sensors[i].Orientation,
				QP:          model.ChannelOutcome{ContrastPPM: res.QP.ContrastPPM, Detectable: res.QP.Detectable},
				IP:          model.ChannelOutcome{ContrastPPM: res.IP.ContrastPPM, Detectable: res.IP.Detectable},
				ResponseA:   model.ResponsePPM{InPhase: res.A.InPhase, Quadrature: res.A.Quadrature},
				ResponseB:   model.ResponsePPM{InPhase: res.B.InPhase, Quadrature: res.B.Quadrature},
			})
		}
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, forward.ErrSolverFault):
		evaluationsTotal.WithLabelValues("fault").Inc()
		var pe *contrast.ProfileError
		var profile string
		if errors.As(err, &pe) {
			profile = pe.Profile
		}
		writeJSON(w, http.StatusBadGateway, ErrorBody{Error: "solver_fault", Profile: profile, Detail: err.Error()})
	case errors.Is(err, entities.ErrInvalidConfig) || errors.Is(err, forward.ErrInvalidProfile):
		evaluationsTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid_request", Detail: err.Error()})
	default:
		evaluationsTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal", Detail: err.Error()})
	}
	g.cfg.Logger.Printf("POST /evaluate/sweep survey=%s req=%s configs=%d [%dms]",
		req.SurveyID, requestID, len(req.Sensors), time.Since(start).Milliseconds())
}

// HandleRecent: GET /evaluations/recent, proxy verso l'archivio con fallback
// all'ultima risposta valida.
func (g *Gateway) HandleRecent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var out []Evaluation
	err := g.archive.GetJSON(ctx, r.URL.RawQuery, &out)
	if err == nil {
		if len(out) > 0 {
			g.mu.Lock()
			g.lastGood = out
			g.mu.Unlock()
		}
	} else {
		// archivio giù o breaker aperto: ultima cache valida (se presente)
		g.mu.RLock()
		out = g.lastGood
		g.mu.RUnlock()
		w.Header().Set("X-Source", "cache")
	}
	if out == nil {
		out = []Evaluation{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)

	g.cfg.Logger.Printf("GET /evaluations/recent [%dms] cb[archive]=%v rows=%d",
		time.Since(start).Milliseconds(), g.archive.State(), len(out))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
