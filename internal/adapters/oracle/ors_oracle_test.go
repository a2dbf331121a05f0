package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

func testQuery(mode domain.TravelMode) ports.TravelQuery {
	origin := domain.GeoPoint{Lat: 37.50, Lng: 127.03}
	dest := domain.GeoPoint{Lat: 37.51, Lng: 127.04}
	return ports.TravelQuery{
		Origin:         origin,
		Destination:    dest,
		Mode:           mode,
		OriginKey:      origin.Key(),
		DestinationKey: dest.Key(),
	}
}

func newTestORS(t *testing.T, h http.HandlerFunc) *ORSOracle {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	o, err := NewORSOracle("test-key", WithBaseURL(srv.URL), WithBackoff(time.Millisecond))
	require.NoError(t, err)
	return o
}

func TestNewORSOracle_RequiresKey(t *testing.T) {
	_, err := NewORSOracle("")
	require.Error(t, err)
}

func TestORSOracle_Query(t *testing.T) {
	o := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/directions/foot-walking", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		var body directionsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]float64{{127.03, 37.50}, {127.04, 37.51}}, body.Coordinates)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[{"summary":{"distance":1450.0,"duration":1261.0}}]}`))
	})

	est, err := o.Query(context.Background(), testQuery(domain.Walking))
	require.NoError(t, err)
	assert.Equal(t, 22, est.DurationMin, "seconds are rounded up to whole minutes")
	assert.InDelta(t, 1.45, est.DistanceKm, 1e-9)
}

func TestORSOracle_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	o := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"routes":[{"summary":{"distance":1000,"duration":60}}]}`))
	})

	est, err := o.Query(context.Background(), testQuery(domain.Driving))
	require.NoError(t, err)
	assert.Equal(t, 1, est.DurationMin)
	assert.EqualValues(t, 3, calls.Load())
}

func TestORSOracle_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	o := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := o.Query(context.Background(), testQuery(domain.Driving))
	require.Error(t, err)

	var oe *domain.OracleError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, domain.Transient, oe.Kind)
	assert.EqualValues(t, maxRetries+1, calls.Load())
}

func TestORSOracle_PermanentFailures(t *testing.T) {
	var calls atomic.Int32
	o := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unroutable"}`))
	})

	_, err := o.Query(context.Background(), testQuery(domain.Bicycling))
	var oe *domain.OracleError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, domain.Permanent, oe.Kind)
	assert.EqualValues(t, 1, calls.Load(), "client errors are not retried")

	_, err = o.Query(context.Background(), testQuery(domain.Transit))
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, domain.Permanent, oe.Kind)
	assert.ErrorIs(t, err, domain.ErrOracle)
	assert.EqualValues(t, 1, calls.Load(), "transit never reaches ORS")
}

func TestORSOracle_EmptyRoutes(t *testing.T) {
	o := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	})

	_, err := o.Query(context.Background(), testQuery(domain.Driving))
	var oe *domain.OracleError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, domain.Permanent, oe.Kind)
}

func TestORSOracle_ContextCancelled(t *testing.T) {
	o := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Query(ctx, testQuery(domain.Driving))
	assert.ErrorIs(t, err, context.Canceled)
}
