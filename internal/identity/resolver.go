package identity

import (
	"context"
	"errors"
	"strings"

	"kallisto/internal/transcripts"
)

// ErrEmptyIdentity is returned when a request carries no usable identity.
var ErrEmptyIdentity = errors.New("empty identity")

// Registry is the slice of the store the resolver needs.
type Registry interface {
	RegisterCleaner(ctx context.Context, name string) (*transcripts.Cleaner, error)
	CleanerByName(ctx context.Context, name string) (*transcripts.Cleaner, error)
}

// Resolver maps opaque identity values to cleaner records.
type Resolver struct {
	store Registry
}

// NewResolver constructs a Resolver around the provided registry.
func NewResolver(store Registry) *Resolver {
	if store == nil {
		return nil
	}
	return &Resolver{store: store}
}

// Resolve returns the cleaner for the given identity value, registering a
// new record the first time the value is seen.
func (r *Resolver) Resolve(ctx context.Context, value string) (*transcripts.Cleaner, error) {
	name := Normalize(value)
	if name == "" {
		return nil, ErrEmptyIdentity
	}
	cleaner, err := r.store.CleanerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cleaner != nil {
		return cleaner, nil
	}
	return r.store.RegisterCleaner(ctx, name)
}

// Normalize canonicalizes an identity value so the same volunteer always
// maps to the same cleaner record regardless of surrounding whitespace or
// letter case.
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
