package web

import (
	"strconv"

	"github.com/google/uuid"
)

// ContextValue returns the value stored under key, or T's zero value.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// ParamUUID parses a UUID path parameter.
// A malformed value is reported as 404 since no resource can match it.
func ParamUUID(c Context, name string) (uuid.UUID, error) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, ErrNotFound("resource not found", WithErrorCode("not_found"), WithError(err))
	}
	return v, nil
}

// QueryDefault retrieves a typed query parameter. It returns def when the
// parameter is missing or cannot be parsed.
func QueryDefault[T string | int | int64 | bool](c Context, name string, def T) T {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return def
	}
	return v
}

func convertParam[T string | int | int64 | bool](raw string) (T, bool) {
	var zero T
	switch p := any(&zero).(type) {
	case *string:
		*p = raw
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		*p = v
	case *int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		*p = v
	default:
		return zero, false
	}
	return zero, true
}
