package cache

import (
	"context"
	"errors"
	"log/slog"
	"route-planning-service/internal/ports"
)

// TieredRouteCache reads the local cache first and the shared cache second,
// back-filling the local tier on a shared hit. Shared-tier failures degrade
// to misses so a Redis outage never blocks route resolution.
type TieredRouteCache struct {
	local  ports.RouteCache
	shared ports.RouteCache
}

func NewTieredRouteCache(local, shared ports.RouteCache) *TieredRouteCache {
	return &TieredRouteCache{local: local, shared: shared}
}

func (t *TieredRouteCache) Get(ctx context.Context, key string) (ports.CachedResolution, bool, error) {
	if v, ok, err := t.local.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}

	if t.shared == nil {
		return ports.CachedResolution{}, false, nil
	}

	v, ok, err := t.shared.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "shared route cache read failed", "key", key, "err", err)
		return ports.CachedResolution{}, false, nil
	}
	if !ok {
		return ports.CachedResolution{}, false, nil
	}

	if err := t.local.Put(ctx, key, v); err != nil {
		slog.WarnContext(ctx, "local route cache write failed", "key", key, "err", err)
	}
	return v, true, nil
}

func (t *TieredRouteCache) Put(ctx context.Context, key string, value ports.CachedResolution) error {
	if err := t.local.Put(ctx, key, value); err != nil {
		return err
	}
	if t.shared != nil {
		if err := t.shared.Put(ctx, key, value); err != nil {
			slog.WarnContext(ctx, "shared route cache write failed", "key", key, "err", err)
		}
	}
	return nil
}

func (t *TieredRouteCache) Clear(ctx context.Context) error {
	var errs []error
	if err := t.local.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if t.shared != nil {
		if err := t.shared.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
