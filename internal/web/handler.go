package web

// Handler declares routes on a router.
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error triggers the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
//	func RequireJSON(next web.HandlerFunc) web.HandlerFunc {
//	    return func(c web.Context) error {
//	        if c.Header("Content-Type") != "application/json" {
//	            return web.ErrBadRequest("expected a JSON body")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
