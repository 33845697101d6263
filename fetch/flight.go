package fetch

import (
	"context"
	"log/slog"

	"github.com/poiesic/tekir/cache"
	"golang.org/x/sync/singleflight"
)

// cachedFlight serves key from c, or runs load at most once across
// concurrent callers for the same key. The cache is read again inside the
// flight, so a load that completed after the first miss is not repeated.
// load is responsible for writing its own result to the cache.
func cachedFlight[T any](ctx context.Context, c *cache.Cache, group *singleflight.Group, logger *slog.Logger, key string, load func() (T, error)) (T, error) {
	lookup := func() (T, bool) {
		var v T
		hit, err := c.Get(ctx, key, &v)
		if err != nil {
			logger.Warn("cache read failed", "key", key, "error", err)
			return v, false
		}
		return v, hit
	}

	if v, ok := lookup(); ok {
		return v, nil
	}

	res, err, _ := group.Do(key, func() (any, error) {
		if v, ok := lookup(); ok {
			return v, nil
		}
		return load()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
