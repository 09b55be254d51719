package identity_test

import (
	"context"
	"errors"
	"testing"

	"kallisto/internal/identity"
	"kallisto/internal/testsupport"
)

func TestResolveRegistersOnFirstSight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := identity.NewResolver(store)

	ctx := context.Background()
	first, err := resolver.Resolve(ctx, "alice")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first == nil || first.Name != "alice" || first.ID == "" {
		t.Fatalf("unexpected cleaner %+v", first)
	}

	second, err := resolver.Resolve(ctx, "alice")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity must be stable: %q then %q", first.ID, second.ID)
	}
}

func TestResolveNormalizesValue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := identity.NewResolver(store)

	ctx := context.Background()
	first, err := resolver.Resolve(ctx, "  Alice ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := resolver.Resolve(ctx, "ALICE")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("case and whitespace variants must resolve to the same cleaner")
	}
	if first.Name != "alice" {
		t.Fatalf("expected normalized name, got %q", first.Name)
	}
}

func TestResolveEmptyIdentity(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	resolver := identity.NewResolver(store)

	if _, err := resolver.Resolve(context.Background(), "   "); !errors.Is(err, identity.ErrEmptyIdentity) {
		t.Fatalf("expected ErrEmptyIdentity, got %v", err)
	}
}
