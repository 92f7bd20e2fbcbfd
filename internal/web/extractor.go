package web

import "strings"

// ExtractorSource reads one candidate value from a request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value, or ("", false).
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Header(name)
		return v, v != ""
	}
}

func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Query(name)
		return v, v != ""
	}
}

func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := c.Param(name)
		return v, v != ""
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Header("Authorization")
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
}
