// Package cache provides a Redis-backed response cache for the statistics
// service client.
//
// Responses are cached for a fixed TTL instead of honouring per-response
// expiry headers. Paths that belong to a season before the current year get
// the longer FinishedSeasonTTL, since a finished season's results are final.
// Caching is optional: the client runs without it when no Redis client is
// configured.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, 24*time.Hour)
//
//	key := cache.Key{
//		Path:  "/2021/driverStandings/1.json",
//		Query: url.Values{"limit": []string{"100"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the service, then manager.Put(ctx, key, body)
//	}
//
// # Metrics
//
//   - f1_cache_hits_total{scope} - Cache hits (scope: finished, current)
//   - f1_cache_misses_total{scope} - Cache misses
//   - f1_cache_written_bytes_total - Bytes written to the cache
//   - f1_cache_errors_total{operation} - Cache operation errors
package cache
