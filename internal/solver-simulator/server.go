// Package solver_simulator espone il contratto HTTP del forward solver
// sopra il motore LIN, al posto del solver reale nei deploy locali.
package solver_simulator

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/geodetica/fdemsurvey/internal/contrast"
	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
	"github.com/geodetica/fdemsurvey/internal/solver"
)

type Server struct {
	engine contrast.Solver
}

func NewServer(engine contrast.Solver) *Server { return &Server{engine: engine} }

// Routes monta il contratto del solver su un mux nuovo.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/forward", s.handleForward)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req solver.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, solver.Fault{Code: "bad_request", Detail: err.Error()})
		return
	}

	start := time.Now()
	resp, err := s.engine.Simulate(r.Context(), req.Model, req.Config)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, solver.Result{InPhase: resp.InPhase, Quadrature: resp.Quadrature})
	case errors.Is(err, forward.ErrSolverFault):
		// fault numerico: 422 con dettaglio, non è un errore del servizio
		var fe *forward.FaultError
		detail := err.Error()
		if errors.As(err, &fe) {
			detail = fe.Reason
		}
		writeJSON(w, http.StatusUnprocessableEntity, solver.Fault{Code: solver.FaultCodeNumeric, Detail: detail})
	case errors.Is(err, entities.ErrInvalidConfig) || errors.Is(err, forward.ErrInvalidProfile):
		writeJSON(w, http.StatusBadRequest, solver.Fault{Code: "bad_request", Detail: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, solver.Fault{Code: "internal", Detail: err.Error()})
	}
	log.Printf("solver-sim: POST /v1/forward layers=%d f=%.0fHz [%dms]",
		len(req.Model.Conductivities), req.Config.Frequency, time.Since(start).Milliseconds())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
