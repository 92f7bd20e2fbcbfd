package slug

import (
	"context"
	"errors"
	"fmt"
)

// ExistsFunc reports whether candidate is already used within one
// uniqueness scope. The record identified by exclude, when non-nil,
// is ignored so an entity never collides with itself.
type ExistsFunc[ID any] func(ctx context.Context, candidate string, exclude *ID) (bool, error)

// Assigner derives unique slugs for one scope (articles, categories, ...).
type Assigner[ID any] struct {
	exists       ExistsFunc[ID]
	makeOpts     []Option
	separator    string
	suffixLength int
	attempts     int
	lowercase    bool
}

// AssignerOption configures an Assigner.
type AssignerOption func(*assignerOptions)

type assignerOptions struct {
	makeOpts     []Option
	suffixLength int
	attempts     int
}

// WithMakeOptions sets the options used to normalize the source text.
func WithMakeOptions(opts ...Option) AssignerOption {
	return func(o *assignerOptions) {
		o.makeOpts = append(o.makeOpts, opts...)
	}
}

// WithSuffixLength sets the length of the disambiguating suffix. Default: 6.
func WithSuffixLength(n int) AssignerOption {
	return func(o *assignerOptions) {
		if n > 0 {
			o.suffixLength = n
		}
	}
}

// WithAttempts sets how many disambiguated candidates are probed after
// the base slug is found taken. Default: 3.
func WithAttempts(n int) AssignerOption {
	return func(o *assignerOptions) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// NewAssigner creates an Assigner backed by the given uniqueness probe.
func NewAssigner[ID any](exists ExistsFunc[ID], opts ...AssignerOption) *Assigner[ID] {
	o := assignerOptions{
		suffixLength: defaultSuffixLength,
		attempts:     3,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Suffixes follow the separator and case of the base slug.
	cfg := newConfig(o.makeOpts)
	return &Assigner[ID]{
		exists:       exists,
		makeOpts:     o.makeOpts,
		separator:    cfg.separator,
		suffixLength: o.suffixLength,
		attempts:     o.attempts,
		lowercase:    cfg.lowercase,
	}
}

// Assign returns a slug for source that is free in the scope at the time
// of the check. The normalized base is returned unchanged when free;
// otherwise a random suffix is appended.
//
// The result is only a candidate: a concurrent writer may claim it before
// the caller persists it, so storage must enforce uniqueness too.
func (a *Assigner[ID]) Assign(ctx context.Context, source string, exclude *ID) (string, error) {
	base := Make(source, a.makeOpts...)
	if base == "" {
		return "", ErrInvalidInput
	}

	taken, err := a.exists(ctx, base, exclude)
	if err != nil {
		return "", errors.Join(ErrLookup, err)
	}
	if !taken {
		return base, nil
	}

	for range a.attempts {
		candidate := base + a.separator + generateSuffix(a.suffixLength, a.lowercase)

		taken, err := a.exists(ctx, candidate, exclude)
		if err != nil {
			return "", errors.Join(ErrLookup, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: base %q", ErrConflict, base)
}
