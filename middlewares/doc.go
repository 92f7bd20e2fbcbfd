// Package middlewares holds the request pipeline of the API.
//
// A typical stack, outermost first:
//
//	web.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.AccessLog(),
//	    middlewares.Recover(),
//	    middlewares.CORS(),
//	    middlewares.Timeout(15*time.Second),
//	)
//
// and per route group:
//
//	r.Use(
//	    middlewares.Auth(tokens),
//	    middlewares.Throttle(throttle, key),
//	    middlewares.DailyQuota(limiter, 1000, middlewares.WithQuotaKeyFunc(key)),
//	)
//
// Auth runs before the limiters so authenticated callers are charged by
// user ID rather than by address.
package middlewares
