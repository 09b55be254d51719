package transcripts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kallisto/internal/testsupport"
	"kallisto/internal/transcripts"
)

func TestAcquirePageClaimsAndRefreshes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLockTTLSeconds(600))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")

	page, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now)
	if err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if !page.HeldBy(alice.ID, now) {
		t.Fatalf("expected page held by alice: %#v", page)
	}
	if page.LockedUntil == nil || page.LockedUntil.Sub(now.Truncate(time.Second)) > 601*time.Second {
		t.Fatalf("unexpected lock deadline: %v", page.LockedUntil)
	}

	// Same cleaner refreshes the deadline.
	later := now.Add(5 * time.Minute)
	refreshed, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, later)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !refreshed.LockedUntil.After(*page.LockedUntil) {
		t.Fatalf("expected refreshed deadline after %v, got %v", page.LockedUntil, refreshed.LockedUntil)
	}
}

func TestAcquirePageConflictsWithActiveLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")
	bob := testsupport.RegisterCleaner(t, store, "bob")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if _, err := store.AcquirePage(ctx, pages[0].ID, bob.ID, now.Add(5*time.Second)); !errors.Is(err, transcripts.ErrLockConflict) {
		t.Fatalf("expected ErrLockConflict, got %v", err)
	}
}

func TestAcquirePageTakesOverExpiredLock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLockTTLSeconds(60))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")
	bob := testsupport.RegisterCleaner(t, store, "bob")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}

	page, err := store.AcquirePage(ctx, pages[0].ID, bob.ID, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("expected takeover of expired lock, got %v", err)
	}
	if page.LockedBy != bob.ID {
		t.Fatalf("expected bob to hold the page, got %q", page.LockedBy)
	}
}

func TestAcquireMissingPage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	alice := testsupport.RegisterCleaner(t, store, "alice")

	if _, err := store.AcquirePage(context.Background(), 9999, alice.ID, time.Now()); !errors.Is(err, transcripts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRevisionWithoutLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")

	if _, err := store.CreateRevision(ctx, pages[0].ID, alice.ID, "text", time.Now()); !errors.Is(err, transcripts.ErrLockExpired) {
		t.Fatalf("expected ErrLockExpired, got %v", err)
	}
}

func TestCreateRevisionWithExpiredLock(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLockTTLSeconds(60))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}

	// Deadline passed one second before the commit arrives.
	commitAt := now.Add(61 * time.Second)
	if _, err := store.CreateRevision(ctx, pages[0].ID, alice.ID, "too late", commitAt); !errors.Is(err, transcripts.ErrLockExpired) {
		t.Fatalf("expected ErrLockExpired, got %v", err)
	}

	// The failed commit must not have recorded anything.
	revisions, err := store.Revisions(ctx, pages[0].ID)
	if err != nil {
		t.Fatalf("Revisions failed: %v", err)
	}
	if len(revisions) != 0 {
		t.Fatalf("expected no revisions after failed commit, got %d", len(revisions))
	}
}

func TestCreateRevisionOwnershipMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")
	bob := testsupport.RegisterCleaner(t, store, "bob")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}

	// Bob's lock is valid for nobody: alice holds the page, so bob's commit
	// fails on ownership, not time.
	if _, err := store.CreateRevision(ctx, pages[0].ID, bob.ID, "hijack", now.Add(time.Second)); !errors.Is(err, transcripts.ErrLockExpired) {
		t.Fatalf("expected ErrLockExpired on ownership mismatch, got %v", err)
	}
}

func TestCreateRevisionUnlocksPage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if _, err := store.CreateRevision(ctx, pages[0].ID, alice.ID, "cleaned", now.Add(10*time.Second)); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	page, err := store.PageByID(ctx, pages[0].ID)
	if err != nil {
		t.Fatalf("PageByID failed: %v", err)
	}
	if page.LockedBy != "" || page.LockedUntil != nil {
		t.Fatalf("expected page unlocked after commit: %#v", page)
	}
}

func TestConfirmingPassApprovesPage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "raw")
	alice := testsupport.RegisterCleaner(t, store, "alice")
	bob := testsupport.RegisterCleaner(t, store, "bob")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if _, err := store.CreateRevision(ctx, pages[0].ID, alice.ID, "cleaned text", now); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	page, _ := store.PageByID(ctx, pages[0].ID)
	if page.Approved {
		t.Fatal("first differing pass must not approve the page")
	}

	// Bob resubmits the identical text: confirming pass, page approved.
	if _, err := store.AcquirePage(ctx, pages[0].ID, bob.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if _, err := store.CreateRevision(ctx, pages[0].ID, bob.ID, "cleaned text", now); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	page, _ = store.PageByID(ctx, pages[0].ID)
	if !page.Approved {
		t.Fatal("confirming pass should approve the page")
	}
	if page.NeedsCleaning() {
		t.Fatal("approved page must not need cleaning")
	}

	aliceAfter, _ := store.CleanerByID(ctx, alice.ID)
	bobAfter, _ := store.CleanerByID(ctx, bob.ID)
	if aliceAfter.PagesCleaned != 1 || aliceAfter.Score != 1 {
		t.Fatalf("unexpected alice counters: %#v", aliceAfter)
	}
	if bobAfter.PagesApproved != 1 || bobAfter.Score != 1 {
		t.Fatalf("unexpected bob counters: %#v", bobAfter)
	}
}

func TestReleaseExpiredLocks(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLockTTLSeconds(60))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "one", "two")
	alice := testsupport.RegisterCleaner(t, store, "alice")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}

	released, err := store.ReleaseExpiredLocks(ctx, mission.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ReleaseExpiredLocks failed: %v", err)
	}
	if released != 0 {
		t.Fatalf("expected no releases while lock valid, got %d", released)
	}

	released, err = store.ReleaseExpiredLocks(ctx, mission.ID, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("ReleaseExpiredLocks failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected one release, got %d", released)
	}
}
