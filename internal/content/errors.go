package content

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrNotFound      = errors.New("content: not found")
	ErrForbidden     = errors.New("content: caller does not own the article")
	ErrCategoryInUse = errors.New("content: category is referenced by articles")
	ErrUnknownUser   = errors.New("content: authenticated user does not exist")
)

// ValidationError lists the rejected input fields with their messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "content: invalid input (" + strings.Join(parts, "; ") + ")"
}

// Message is the first message, for a one-line summary.
func (e *ValidationError) Message() string {
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		return e.Fields[k][0]
	}
	return "The given data was invalid."
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// err returns e when any field failed, nil otherwise.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
