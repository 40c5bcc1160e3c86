// Package solver provides the adapters behind the contrast.Solver port: a
// Remote HTTP client for the external forward-EM solver service and an
// in-process low-induction-number stand-in for local runs and tests.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

// RemoteConfig configures the HTTP adapter and its circuit breaker.
type RemoteConfig struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFails    int
	BreakerOpen     time.Duration
	BreakerInterval time.Duration
}

// Remote calls the forward solver service over HTTP.
type Remote struct {
	base    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFails <= 0 {
		cfg.BreakerFails = 3
	}
	if cfg.BreakerOpen <= 0 {
		cfg.BreakerOpen = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "forward-solver",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerOpen,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(cfg.BreakerFails)
		},
	})
	return &Remote{
		base:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
	}
}

// State exposes the breaker state for health reporting.
func (r *Remote) State() gobreaker.State { return r.breaker.State() }

// Simulate implements contrast.Solver. Declared numeric faults come back as
// *forward.FaultError; transport and server errors count against the
// breaker, declared faults do not.
func (r *Remote) Simulate(ctx context.Context, m forward.LayeredEarthModel, cfg entities.SensorConfig) (forward.Response, error) {
	body, err := json.Marshal(Request{Model: m, Config: cfg})
	if err != nil {
		return forward.Response{}, err
	}

	out, err := r.breaker.Execute(func() (any, error) {
		return r.post(ctx, body)
	})
	if err != nil {
		return forward.Response{}, fmt.Errorf("forward solver: %w", err)
	}

	res := out.(*postOutcome)
	if res.fault != nil {
		return forward.Response{}, &forward.FaultError{Reason: res.fault.Detail}
	}
	return res.resp, nil
}

// postOutcome separates a declared fault from a healthy response so the
// breaker only sees transport-level failures.
type postOutcome struct {
	resp  forward.Response
	fault *Fault
}

func (r *Remote) post(ctx context.Context, body []byte) (*postOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/v1/forward", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var f Fault
		if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
			return nil, fmt.Errorf("decode fault: %w", err)
		}
		return &postOutcome{fault: &f}, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("solver status %d: %s", resp.StatusCode, string(b))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &postOutcome{resp: forward.Response{InPhase: out.InPhase, Quadrature: out.Quadrature}}, nil
}
