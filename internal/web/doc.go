// Package web is the HTTP layer of the API: a chi-backed router that speaks
// in terms of HandlerFunc and Context instead of http.Handler, a JSON-first
// request context, structured HTTP errors and a server runner with graceful
// shutdown.
//
// Handlers declare their routes:
//
//	type ArticleHandler struct{ svc *content.Service }
//
//	func (h *ArticleHandler) Routes(r web.Router) {
//	    r.Route("/api/articles", func(r web.Router) {
//	        r.GET("/", h.list)
//	        r.POST("/", h.create, middlewares.Auth(tokens))
//	    })
//	}
//
// and are assembled into an App:
//
//	app := web.New(
//	    web.WithLogger(log),
//	    web.WithErrorHandler(handlers.ErrorHandler()),
//	    web.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    web.WithHealthChecks(health.Checks{"db": db.Healthcheck(pool)}),
//	    web.WithHandlers(articles, categories),
//	)
//	err := app.Run(":8080", web.ShutdownHook(db.Shutdown(pool)))
//
// A handler returning a non-nil error hands it to the configured
// ErrorHandler unless the response has already been written.
package web
