package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, nil)
}

func TestRouteParsesFirstRoute(t *testing.T) {
	t.Parallel()

	var path, query string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":12345.6,"duration":900.5},{"distance":1,"duration":1}]}`))
	})

	route, err := client.Route(context.Background(), orb.Point{-121.5, 39.25}, orb.Point{-121, 40})
	require.NoError(t, err)

	assert.Equal(t, 12345.6, route.Distance)
	assert.Equal(t, 900.5, route.Duration)
	assert.Equal(t, "/route/v1/driving/-121.500000,39.250000;-121.000000,40.000000", path)
	assert.Equal(t, "overview=false", query)
}

func TestRoundTripStartsAtOrigin(t *testing.T) {
	t.Parallel()

	var path string
	var params map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		params = r.URL.Query()
		_, _ = w.Write([]byte(`{"code":"Ok","trips":[{"distance":54321,"duration":3600}]}`))
	})

	distance, err := client.RoundTrip(context.Background(), orb.Point{1, 2}, []orb.Point{{3, 4}, {5, 6}})
	require.NoError(t, err)

	assert.Equal(t, 54321.0, distance)
	assert.Equal(t, "/trip/v1/driving/1.000000,2.000000;3.000000,4.000000;5.000000,6.000000", path)
	assert.Equal(t, []string{"true"}, params["roundtrip"])
	assert.Equal(t, []string{"first"}, params["source"])
}

func TestRoundTripWithoutStopsSkipsCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	distance, err := client.RoundTrip(context.Background(), orb.Point{}, nil)
	require.NoError(t, err)
	assert.Zero(t, distance)
	assert.Zero(t, calls.Load())
}

func TestRouteReportsNoRoute(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"Impossible route between points"}`))
	})

	_, err := client.Route(context.Background(), orb.Point{}, orb.Point{1, 1})
	require.ErrorIs(t, err, ErrNoRoute)
	assert.Contains(t, err.Error(), "Impossible route")
}

func TestRouteServerErrorIsNotNoRoute(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Route(context.Background(), orb.Point{}, orb.Point{1, 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRoute)
	assert.Contains(t, err.Error(), "500")
}
