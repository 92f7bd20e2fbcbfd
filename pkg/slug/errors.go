package slug

import "errors"

var (
	ErrInvalidInput = errors.New("slug: source text produces an empty slug")
	ErrConflict     = errors.New("slug: could not find a free slug")
	ErrLookup       = errors.New("slug: uniqueness lookup failed")
)
