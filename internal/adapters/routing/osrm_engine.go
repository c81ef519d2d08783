package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	ErrTooFewPoints = errors.New("routing engine: at least two coordinates are required")
	ErrNoRoute      = errors.New("routing engine: no route found")
)

// OSRMConfig configures an OSRMEngine. Zero values fall back to defaults.
type OSRMConfig struct {
	BaseURL     string
	Profile     string
	HTTPClient  *http.Client
	Metrics     *obs.Metrics
	MaxAttempts int
	Backoff     time.Duration
	// Consecutive failures after which the breaker opens.
	BreakerFailures uint32
	// How long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

// OSRMEngine implements RoutingEngine against an OSRM-compatible HTTP API.
//
// It coordinates:
//   - (lat,lng) <-> (lon,lat) axis swapping at the wire boundary
//   - Unit conversion (meters/seconds to km/minutes)
//   - Retry with backoff for transient failures
//   - A circuit breaker so a dead engine fails fast
//
// The engine is safe for concurrent use.
type OSRMEngine struct {
	session     *http.Client
	baseURL     string
	profile     string
	metrics     *obs.Metrics
	breaker     *gobreaker.CircuitBreaker
	maxAttempts int
	backoff     time.Duration
}

func NewOSRMEngine(cfg OSRMConfig) (*OSRMEngine, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("OSRM base url is empty")
	}

	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}

	session := cfg.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: 10 * time.Second}
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "osrm",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("routing circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &OSRMEngine{
		session:     session,
		baseURL:     base,
		profile:     profile,
		metrics:     cfg.Metrics,
		breaker:     breaker,
		maxAttempts: attempts,
		backoff:     backoff,
	}, nil
}

type osrmGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type osrmLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type osrmRoute struct {
	Geometry osrmGeometry `json:"geometry"`
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Legs     []osrmLeg    `json:"legs"`
}

type osrmWaypoint struct {
	WaypointIndex int `json:"waypoint_index"`
	TripsIndex    int `json:"trips_index"`
}

type routeResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type tripResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Trips     []osrmRoute    `json:"trips"`
	Waypoints []osrmWaypoint `json:"waypoints"`
}

// Route resolves coordinates in the given order via /route.
func (o *OSRMEngine) Route(ctx context.Context, coords []domain.LatLng) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if len(coords) < 2 {
		return ports.RouteResult{}, ErrTooFewPoints
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson&steps=false",
		o.baseURL, o.profile, encodeCoords(coords))

	var decoded routeResponse
	if err := o.getJSON(ctx, "route", endpoint, &decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("route request: %w", err)
	}

	if err := checkCode(decoded.Code, decoded.Message); err != nil {
		return ports.RouteResult{}, err
	}
	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, ErrNoRoute
	}

	return toRouteResult(decoded.Routes[0])
}

// Trip asks the engine for the best visiting order of an open path that
// starts at the first coordinate.
func (o *OSRMEngine) Trip(ctx context.Context, coords []domain.LatLng) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "osrm.Trip")(&err)

	if len(coords) < 2 {
		return ports.RouteResult{}, ErrTooFewPoints
	}

	endpoint := fmt.Sprintf(
		"%s/trip/v1/%s/%s?roundtrip=false&source=first&destination=any&overview=full&geometries=geojson&steps=false",
		o.baseURL, o.profile, encodeCoords(coords))

	var decoded tripResponse
	if err := o.getJSON(ctx, "trip", endpoint, &decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("trip request: %w", err)
	}

	if err := checkCode(decoded.Code, decoded.Message); err != nil {
		return ports.RouteResult{}, err
	}
	if len(decoded.Trips) == 0 {
		return ports.RouteResult{}, ErrNoRoute
	}
	if len(decoded.Waypoints) != len(coords) {
		return ports.RouteResult{}, fmt.Errorf(
			"trip response: expected %d waypoints, got %d", len(coords), len(decoded.Waypoints))
	}

	result, err := toRouteResult(decoded.Trips[0])
	if err != nil {
		return ports.RouteResult{}, err
	}

	// Waypoints come back in input order; waypoint_index is the trip position.
	order := make([]int, len(coords))
	seen := make([]bool, len(coords))
	for inputIdx, wp := range decoded.Waypoints {
		if wp.TripsIndex != 0 || wp.WaypointIndex < 0 || wp.WaypointIndex >= len(coords) || seen[wp.WaypointIndex] {
			return ports.RouteResult{}, fmt.Errorf("trip response: invalid waypoint %d", inputIdx)
		}
		seen[wp.WaypointIndex] = true
		order[wp.WaypointIndex] = inputIdx
	}
	result.Order = order

	return result, nil
}

func toRouteResult(r osrmRoute) (ports.RouteResult, error) {
	if len(r.Geometry.Coordinates) < 2 {
		return ports.RouteResult{}, errors.New("route response: geometry has fewer than two points")
	}

	polyline := make([]domain.LatLng, 0, len(r.Geometry.Coordinates))
	for i, c := range r.Geometry.Coordinates {
		if len(c) != 2 {
			return ports.RouteResult{}, fmt.Errorf("route response: invalid coordinate at %d", i)
		}
		polyline = append(polyline, domain.LatLng{Lat: c[1], Lng: c[0]})
	}

	legs := make([]ports.Leg, 0, len(r.Legs))
	for _, l := range r.Legs {
		legs = append(legs, ports.Leg{
			DistanceKm:  l.Distance / 1000,
			DurationMin: l.Duration / 60,
		})
	}

	return ports.RouteResult{
		Polyline:    polyline,
		DistanceKm:  r.Distance / 1000,
		DurationMin: r.Duration / 60,
		Legs:        legs,
		Source:      domain.PathEngine,
	}, nil
}

// checkCode maps the OSRM status field onto an error.
func checkCode(code, message string) error {
	switch code {
	case "Ok":
		return nil
	case "NoRoute", "NoTrips", "NoSegment":
		return fmt.Errorf("%w: %s", ErrNoRoute, code)
	case "":
		return errors.New("routing engine: response has no status code")
	default:
		return fmt.Errorf("routing engine: status %q: %s", code, message)
	}
}

// encodeCoords renders "lon,lat;lon,lat" with six decimals (~0.1 m).
func encodeCoords(coords []domain.LatLng) string {
	parts := make([]string, 0, len(coords))
	for _, c := range coords {
		parts = append(parts,
			strconv.FormatFloat(c.Lng, 'f', 6, 64)+","+strconv.FormatFloat(c.Lat, 'f', 6, 64))
	}
	return strings.Join(parts, ";")
}
