package services

import (
	"context"
	"errors"
	"log/slog"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/platform/obs"
	"sync"
)

var ErrRouteNotFound = errors.New("plan session: route not found")

// SessionOptions tune a PlanSession.
type SessionOptions struct {
	// Clear the resolver cache as part of Reset.
	ClearCacheOnReset bool
	Metrics           *obs.Metrics
}

type sessionRoute struct {
	route   domain.Route
	version uint64
}

// PlanSession holds the routes of one interactive planning session and
// refines them in the background.
//
// Start returns the provisional routes immediately. Each background
// resolution is stamped with the session generation and the route version it
// was launched for; on arrival the result is applied only if both still match,
// so a Reset or a newer Refine always wins over a slow response.
type PlanSession struct {
	planner  *Planner
	resolver *RouteResolver
	opts     SessionOptions

	mu         sync.Mutex
	generation uint64
	req        PlanRequest
	routes     map[string]*sessionRoute
	order      []string
	pending    int
	discarded  int
	idle       chan struct{}
	updates    chan string
}

func NewPlanSession(planner *Planner, resolver *RouteResolver, opts SessionOptions) *PlanSession {
	return &PlanSession{
		planner:  planner,
		resolver: resolver,
		opts:     opts,
		routes:   make(map[string]*sessionRoute),
		updates:  make(chan string, 64),
	}
}

// Start plans req, replaces the session's routes with the provisional result
// and launches one background resolution per route.
func (s *PlanSession) Start(ctx context.Context, req PlanRequest) ([]domain.Route, error) {
	routes, err := s.planner.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	s.req = req
	s.routes = make(map[string]*sessionRoute, len(routes))
	s.order = s.order[:0]
	for _, r := range routes {
		s.routes[r.RouteID] = &sessionRoute{route: r}
		s.order = append(s.order, r.RouteID)
	}
	for _, r := range routes {
		s.launchLocked(ctx, r.RouteID)
	}
	s.mu.Unlock()

	return routes, nil
}

// Refine re-resolves one route, superseding any request still in flight for
// it.
func (s *PlanSession) Refine(ctx context.Context, routeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.routes[routeID]; !ok {
		return ErrRouteNotFound
	}
	s.launchLocked(ctx, routeID)
	return nil
}

// Reset drops all routes. Results of requests launched before the reset are
// discarded when they arrive.
func (s *PlanSession) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	s.req = PlanRequest{}
	s.routes = make(map[string]*sessionRoute)
	s.order = s.order[:0]
	s.mu.Unlock()

	if s.opts.ClearCacheOnReset && s.resolver != nil {
		return s.resolver.ClearCache(ctx)
	}
	return nil
}

// Routes returns a snapshot of the session's routes in planning order.
func (s *PlanSession) Routes() []domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Route, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.routes[id].route)
	}
	return out
}

// Updates delivers the id of every route a resolution was applied to. Sends
// never block; a slow reader misses notifications, not results.
func (s *PlanSession) Updates() <-chan string {
	return s.updates
}

// Discarded reports how many resolutions arrived too late to be applied.
func (s *PlanSession) Discarded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

// Wait blocks until no resolution is in flight or ctx is done.
func (s *PlanSession) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()
		return nil
	}
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// launchLocked must be called with s.mu held.
func (s *PlanSession) launchLocked(ctx context.Context, routeID string) {
	sr := s.routes[routeID]
	sr.version++

	gen, version := s.generation, sr.version
	coords := domain.Locations(sr.route.Stops)

	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++

	// The resolution outlives the request that started it.
	bg := context.WithoutCancel(ctx)
	go func() {
		res := s.resolver.Resolve(bg, coords)

		s.mu.Lock()
		defer s.mu.Unlock()
		defer s.doneLocked()

		current, ok := s.routes[routeID]
		if gen != s.generation || !ok || current.version != version {
			slog.DebugContext(bg, "discarding stale route resolution",
				"route_id", routeID, "generation", gen, "version", version)
			s.discarded++
			s.opts.Metrics.StaleDiscarded()
			return
		}

		refreshed, applied := s.planner.Refresh(current.route, res, s.req)
		if !applied {
			// Keep the provisional estimate; the straight line is final now.
			refreshed = current.route
			refreshed.PathSource = res.Source
		}
		current.route = refreshed

		select {
		case s.updates <- routeID:
		default:
		}
	}()
}

func (s *PlanSession) doneLocked() {
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}
