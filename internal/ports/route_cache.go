package ports

import "context"

// Cached resolution keyed by request signature. Exactly one of Route or
// Matrix is set.
type CachedResolution struct {
	Route  *RouteResult
	Matrix *Matrix
}

// Contract for storing resolved routes between identical requests.
// A missing key is reported as ok=false, not as an error.
type RouteCache interface {
	Get(ctx context.Context, key string) (CachedResolution, bool, error)
	Put(ctx context.Context, key string, value CachedResolution) error
	Clear(ctx context.Context) error
}
