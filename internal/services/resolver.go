package services

import (
	"context"
	"fmt"
	"log/slog"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	kindRoute = "route"
	kindTrip  = "trip"
	kindTable = "table"

	// Intermediate points per segment in straight-line fallbacks.
	fallbackPointsPerSegment = 8
	// Assumed driving speed for straight-line fallbacks.
	fallbackSpeedKmh = 40
	// Decimal places of a coordinate in a cache key (~1 m).
	cacheKeyPrecision = 5
)

// ResolverOptions tune a RouteResolver. Zero values fall back to defaults.
type ResolverOptions struct {
	Timeout time.Duration
	Metrics *obs.Metrics
}

// RouteResolver turns ordered coordinates into road geometry through a
// RoutingEngine.
//
// It never returns an error: any engine failure (network, bad status,
// "no route", timeout, open breaker) degrades to a deterministic local
// result. Only engine successes are cached, and identical concurrent
// requests share a single engine call.
type RouteResolver struct {
	engine  ports.RoutingEngine
	cache   ports.RouteCache
	group   singleflight.Group
	timeout time.Duration
	metrics *obs.Metrics
}

func NewRouteResolver(engine ports.RoutingEngine, cache ports.RouteCache, opts ResolverOptions) *RouteResolver {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &RouteResolver{
		engine:  engine,
		cache:   cache,
		timeout: timeout,
		metrics: opts.Metrics,
	}
}

// Resolve returns the road route through coords in the given order.
func (r *RouteResolver) Resolve(ctx context.Context, coords []domain.LatLng) ports.RouteResult {
	if len(coords) < 2 {
		r.metrics.ObserveResolution(kindRoute, string(domain.PathFallback))
		return StraightLineRoute(coords)
	}

	res, err := r.cached(ctx, kindRoute, coords, func(ctx context.Context) (ports.CachedResolution, error) {
		route, err := r.engine.Route(ctx, coords)
		if err != nil {
			return ports.CachedResolution{}, err
		}
		if err := validRoute(route); err != nil {
			return ports.CachedResolution{}, err
		}
		return ports.CachedResolution{Route: &route}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "route resolution fell back to straight line",
			"req_id", obs.RequestID(ctx), "points", len(coords), "err", err)
		r.metrics.ObserveResolution(kindRoute, string(domain.PathFallback))
		return StraightLineRoute(coords)
	}

	r.metrics.ObserveResolution(kindRoute, string(res.Route.Source))
	return copyRoute(*res.Route)
}

// ResolveTrip lets the engine choose the visiting order of an open path that
// starts at coords[0]. When the engine cannot optimize, the order comes from
// the local nearest-neighbor construction instead.
func (r *RouteResolver) ResolveTrip(ctx context.Context, coords []domain.LatLng) ports.RouteResult {
	if len(coords) < 2 {
		res := StraightLineRoute(coords)
		res.Order = identityOrder(len(coords))
		r.metrics.ObserveResolution(kindTrip, string(domain.PathHeuristic))
		return res
	}

	res, err := r.cached(ctx, kindTrip, coords, func(ctx context.Context) (ports.CachedResolution, error) {
		trip, err := r.engine.Trip(ctx, coords)
		if err != nil {
			return ports.CachedResolution{}, err
		}
		if err := validRoute(trip); err != nil {
			return ports.CachedResolution{}, err
		}
		if !isPermutation(trip.Order, len(coords)) {
			return ports.CachedResolution{}, fmt.Errorf("trip order is not a permutation of %d points", len(coords))
		}
		if trip.Order[0] != 0 {
			return ports.CachedResolution{}, fmt.Errorf("trip starts at point %d, want 0", trip.Order[0])
		}
		return ports.CachedResolution{Route: &trip}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "trip optimization fell back to nearest neighbor",
			"req_id", obs.RequestID(ctx), "points", len(coords), "err", err)
		r.metrics.ObserveResolution(kindTrip, string(domain.PathHeuristic))
		return HeuristicTrip(coords)
	}

	r.metrics.ObserveResolution(kindTrip, string(res.Route.Source))
	return copyRoute(*res.Route)
}

// Matrix returns pairwise distances and durations. The fallback is the
// haversine matrix with a zero diagonal.
func (r *RouteResolver) Matrix(ctx context.Context, coords []domain.LatLng) ports.Matrix {
	if len(coords) < 2 {
		r.metrics.ObserveResolution(kindTable, string(domain.PathFallback))
		return StraightLineMatrix(coords)
	}

	res, err := r.cached(ctx, kindTable, coords, func(ctx context.Context) (ports.CachedResolution, error) {
		m, err := r.engine.Table(ctx, coords)
		if err != nil {
			return ports.CachedResolution{}, err
		}
		if err := squareTable(m, len(coords)); err != nil {
			return ports.CachedResolution{}, err
		}
		return ports.CachedResolution{Matrix: &m}, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "matrix resolution fell back to straight line",
			"req_id", obs.RequestID(ctx), "points", len(coords), "err", err)
		r.metrics.ObserveResolution(kindTable, string(domain.PathFallback))
		return StraightLineMatrix(coords)
	}

	r.metrics.ObserveResolution(kindTable, string(res.Matrix.Source))
	return copyMatrix(*res.Matrix)
}

func squareTable(m ports.Matrix, n int) error {
	if len(m.DistancesKm) != n || len(m.DurationsMin) != n {
		return fmt.Errorf("table has %d rows, want %d", len(m.DistancesKm), n)
	}
	for i := 0; i < n; i++ {
		if len(m.DistancesKm[i]) != n || len(m.DurationsMin[i]) != n {
			return fmt.Errorf("table row %d is not %d wide", i, n)
		}
	}
	return nil
}

// ClearCache drops every cached resolution, forcing the next request of each
// kind back to the engine.
func (r *RouteResolver) ClearCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	if err := r.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear route cache: %w", err)
	}
	return nil
}

// cached serves key from the cache or runs fetch once per key, no matter how
// many callers are waiting on it. Only successful fetches are stored.
func (r *RouteResolver) cached(
	ctx context.Context,
	kind string,
	coords []domain.LatLng,
	fetch func(ctx context.Context) (ports.CachedResolution, error),
) (ports.CachedResolution, error) {
	key := CacheKey(kind, coords)

	if r.cache != nil {
		v, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "route cache read failed", "key", key, "err", err)
		} else if ok && (v.Route != nil || v.Matrix != nil) {
			r.metrics.CacheHit()
			return v, nil
		}
		r.metrics.CacheMiss()
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		// Detach from the first caller's cancellation so a departing caller
		// does not fail the call for everyone sharing it.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		v, err := fetch(callCtx)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			if err := r.cache.Put(callCtx, key, v); err != nil {
				slog.WarnContext(ctx, "route cache write failed", "key", key, "err", err)
			}
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return ports.CachedResolution{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ports.CachedResolution{}, res.Err
		}
		return res.Val.(ports.CachedResolution), nil
	}
}

// CacheKey is the request signature: kind plus coordinates rounded to about
// a meter.
func CacheKey(kind string, coords []domain.LatLng) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('|')
	for i, c := range coords {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(geo.Round(c.Lat, cacheKeyPrecision), 'f', cacheKeyPrecision, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(geo.Round(c.Lng, cacheKeyPrecision), 'f', cacheKeyPrecision, 64))
	}
	return b.String()
}

func validRoute(r ports.RouteResult) error {
	if len(r.Polyline) < 2 {
		return fmt.Errorf("engine returned %d polyline points", len(r.Polyline))
	}
	if r.DistanceKm < 0 || r.DurationMin < 0 {
		return fmt.Errorf("engine returned negative metrics (%.3f km, %.3f min)", r.DistanceKm, r.DurationMin)
	}
	return nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

func identityOrder(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Cached values are shared between callers; hand out copies so no caller can
// mutate another's result.
func copyRoute(r ports.RouteResult) ports.RouteResult {
	r.Polyline = append([]domain.LatLng(nil), r.Polyline...)
	r.Legs = append([]ports.Leg(nil), r.Legs...)
	if r.Order != nil {
		r.Order = append([]int(nil), r.Order...)
	}
	return r
}

func copyMatrix(m ports.Matrix) ports.Matrix {
	dist := make([][]float64, len(m.DistancesKm))
	for i, row := range m.DistancesKm {
		dist[i] = append([]float64(nil), row...)
	}
	dur := make([][]float64, len(m.DurationsMin))
	for i, row := range m.DurationsMin {
		dur[i] = append([]float64(nil), row...)
	}
	m.DistancesKm, m.DurationsMin = dist, dur
	return m
}
