package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// orsProfiles maps travel modes to OpenRouteService directions profiles.
// TRANSIT has no ORS profile.
var orsProfiles = map[domain.TravelMode]string{
	domain.Driving:   "driving-car",
	domain.Walking:   "foot-walking",
	domain.Bicycling: "cycling-regular",
}

// ORSOracle implements ports.TravelOracle using the OpenRouteService
// directions API. It performs no caching; wrap it with a RouteResolver.
// Safe for concurrent use.
type ORSOracle struct {
	session *http.Client
	apiKey  string
	baseURL string
	backoff time.Duration
}

type ORSOption func(*ORSOracle)

// WithBaseURL points the oracle at another ORS deployment (or a test server).
func WithBaseURL(url string) ORSOption {
	return func(o *ORSOracle) { o.baseURL = url }
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSOracle) { o.session = c }
}

// WithBackoff sets the initial retry delay.
func WithBackoff(d time.Duration) ORSOption {
	return func(o *ORSOracle) { o.backoff = d }
}

func NewORSOracle(apiKey string, opts ...ORSOption) (*ORSOracle, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	o := &ORSOracle{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		backoff: baseBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// Query fetches a single origin to destination estimate.
func (o *ORSOracle) Query(ctx context.Context, q ports.TravelQuery) (_ domain.TravelEstimate, err error) {
	defer obs.Time(ctx, "ors.Query")(&err)

	key := q.Key()
	profile, ok := orsProfiles[q.Mode]
	if !ok {
		return domain.TravelEstimate{}, &domain.OracleError{
			Kind: domain.Permanent,
			Key:  key,
			Err:  fmt.Errorf("travel mode %q is not supported by ORS", q.Mode),
		}
	}

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{q.Origin.CoordsToList(), q.Destination.CoordsToList()},
	})
	if err != nil {
		return domain.TravelEstimate{}, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, profile)
	resp, err := o.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.TravelEstimate{}, ctxErr
		}
		return domain.TravelEstimate{}, &domain.OracleError{Kind: classify(err), Key: key, Err: err}
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return domain.TravelEstimate{}, &domain.OracleError{
			Kind: domain.Transient,
			Key:  key,
			Err:  fmt.Errorf("decode directions response: %w", err),
		}
	}
	if len(dr.Routes) == 0 {
		return domain.TravelEstimate{}, &domain.OracleError{
			Kind: domain.Permanent,
			Key:  key,
			Err:  errors.New("no route between origin and destination"),
		}
	}

	s := dr.Routes[0].Summary
	return domain.TravelEstimate{
		DurationMin: int(math.Ceil(s.Duration / 60)),
		DistanceKm:  s.Distance / 1000,
	}, nil
}

// classify reports whether a failed request may succeed on a later attempt.
func classify(err error) domain.OracleErrorKind {
	var he *httpStatusError
	if errors.As(err, &he) && he.Code < 500 && he.Code != http.StatusTooManyRequests {
		return domain.Permanent
	}
	return domain.Transient
}
