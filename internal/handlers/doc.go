// Package handlers exposes the content API over HTTP.
//
// Each handler implements web.Handler and registers its routes under
// /api. Route groups are wrapped in the Guards chains, so authenticated
// and public endpoints get their own middleware (auth, throttle, daily
// quota) without the handlers knowing about them.
//
// Handlers return errors; ErrorHandler renders them as JSON:
//
//	{"error": "...", "code": "...", "request_id": "...", "fields": {...}}
package handlers
