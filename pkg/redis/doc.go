// Package redis opens go-redis clients for the quota counters and the
// category cache.
//
//	client, err := redis.Open(ctx, cfg.RedisURL, redis.WithPoolSize(20))
//	if err != nil {
//		return err
//	}
//	app.OnShutdown(redis.Shutdown(client))
//	checks["redis"] = redis.Healthcheck(client)
package redis
