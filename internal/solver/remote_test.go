package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

func TestRemoteSimulate(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/forward", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Result{InPhase: 12.5, Quadrature: 310.25})
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{BaseURL: srv.URL})
	resp, err := r.Simulate(context.Background(), halfSpace(0.01, 1e-4), linConfig())
	require.NoError(t, err)
	assert.Equal(t, forward.Response{InPhase: 12.5, Quadrature: 310.25}, resp)

	require.Len(t, got.Model.Conductivities, 1)
	assert.InDelta(t, 0.01, got.Model.Conductivities[0], 1e-12)
	assert.Equal(t, entities.OrientationHCP, got.Config.Orientation)
}

func TestRemoteNumericFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(Fault{Code: FaultCodeNumeric, Detail: "hankel kernel overflow"})
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{BaseURL: srv.URL})
	_, err := r.Simulate(context.Background(), halfSpace(0.01, 0), linConfig())
	require.Error(t, err)

	var fe *forward.FaultError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, forward.ErrSolverFault)
	assert.Contains(t, fe.Reason, "hankel kernel overflow")
}

func TestRemoteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{BaseURL: srv.URL})
	_, err := r.Simulate(context.Background(), halfSpace(0.01, 0), linConfig())
	require.Error(t, err)
	assert.NotErrorIs(t, err, forward.ErrSolverFault)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRemoteBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{BaseURL: srv.URL, BreakerFails: 2})
	for i := 0; i < 2; i++ {
		_, err := r.Simulate(context.Background(), halfSpace(0.01, 0), linConfig())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, r.State())

	_, err := r.Simulate(context.Background(), halfSpace(0.01, 0), linConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

// A declared numeric fault is a property of the input, not of upstream
// health, so it must leave the breaker closed.
func TestRemoteFaultLeavesBreakerClosed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(Fault{Code: FaultCodeNumeric, Detail: "overflow"})
	}))
	defer srv.Close()

	r := NewRemote(RemoteConfig{BaseURL: srv.URL, BreakerFails: 1})
	for i := 0; i < 2; i++ {
		_, err := r.Simulate(context.Background(), halfSpace(0.01, 0), linConfig())
		assert.ErrorIs(t, err, forward.ErrSolverFault)
	}
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, gobreaker.StateClosed, r.State())
}
