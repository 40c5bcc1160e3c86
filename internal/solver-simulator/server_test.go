package solver_simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
	"github.com/geodetica/fdemsurvey/internal/solver"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(solver.NewLIN()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func goodRequest() solver.Request {
	return solver.Request{
		Model: forward.LayeredEarthModel{
			Thicknesses:      []float64{},
			Susceptibilities: []float64{4e-4},
			Conductivities:   []float64{0.01},
			Permittivities:   []float64{0},
		},
		Config: entities.SensorConfig{
			OffsetX:     1.0,
			Frequency:   10000,
			Moment:      1,
			Orientation: entities.OrientationHCP,
			NoisePPM:    50,
		},
	}
}

func postForward(t *testing.T, url string, req solver.Request) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/v1/forward", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestForwardEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := postForward(t, srv.URL, goodRequest())
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out solver.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.InDelta(t, 197.392, out.Quadrature, 1e-3)
	assert.InDelta(t, 100, out.InPhase, 1e-9)
}

func TestForwardEndpointNumericFault(t *testing.T) {
	srv := testServer(t)

	req := goodRequest()
	req.Model.Conductivities = []float64{2.0}
	req.Config.Frequency = 100000

	resp := postForward(t, srv.URL, req)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var fault solver.Fault
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fault))
	assert.Equal(t, solver.FaultCodeNumeric, fault.Code)
	assert.Contains(t, fault.Detail, "induction number")
}

func TestForwardEndpointBadConfig(t *testing.T) {
	srv := testServer(t)

	req := goodRequest()
	req.Config.Frequency = -1

	resp := postForward(t, srv.URL, req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForwardEndpointMalformedBody(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/v1/forward", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForwardEndpointMethodNotAllowed(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/v1/forward")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// The Remote adapter against this server must agree with calling the engine
// directly, faults included.
func TestRemoteAdapterRoundTrip(t *testing.T) {
	srv := testServer(t)
	remote := solver.NewRemote(solver.RemoteConfig{BaseURL: srv.URL})

	req := goodRequest()
	direct, err := solver.NewLIN().Simulate(context.Background(), req.Model, req.Config)
	require.NoError(t, err)

	viaHTTP, err := remote.Simulate(context.Background(), req.Model, req.Config)
	require.NoError(t, err)
	assert.InDelta(t, direct.Quadrature, viaHTTP.Quadrature, 1e-9)
	assert.InDelta(t, direct.InPhase, viaHTTP.InPhase, 1e-9)

	req.Model.Conductivities = []float64{2.0}
	req.Config.Frequency = 100000
	_, err = remote.Simulate(context.Background(), req.Model, req.Config)
	require.Error(t, err)
	assert.ErrorIs(t, err, forward.ErrSolverFault)
}
