package transcripts_test

import (
	"context"
	"testing"
	"time"

	"kallisto/internal/testsupport"
	"kallisto/internal/transcripts"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission, err := store.CreateMission(ctx, "ma7", "Mercury-Atlas 7", time.Date(1962, 5, 24, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("CreateMission failed: %v", err)
	}
	if mission.ID == 0 {
		t.Fatal("expected mission ID to be assigned")
	}
	if !mission.Active {
		t.Fatal("expected new mission to be active")
	}

	fetched, err := store.MissionBySlug(ctx, "ma7")
	if err != nil {
		t.Fatalf("MissionBySlug failed: %v", err)
	}
	if fetched == nil || fetched.Name != "Mercury-Atlas 7" {
		t.Fatalf("unexpected fetched mission: %#v", fetched)
	}
	if !fetched.Start.Equal(mission.Start) {
		t.Fatalf("start date mismatch: %s vs %s", fetched.Start, mission.Start)
	}
}

func TestMissionBySlugMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mission, err := store.MissionBySlug(context.Background(), "nope")
	if err != nil {
		t.Fatalf("MissionBySlug failed: %v", err)
	}
	if mission != nil {
		t.Fatalf("expected nil mission, got %#v", mission)
	}
}

func TestCreateMissionRejectsDuplicateSlug(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	if _, err := store.CreateMission(ctx, "apollo11", "Apollo Eleven", time.Now(), ""); err == nil {
		t.Fatal("expected unique constraint error for duplicate slug")
	}
}

func TestPagesOrderedByNumber(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	for _, number := range []int{3, 1, 2} {
		if _, err := store.AddPage(ctx, mission.ID, number, "raw"); err != nil {
			t.Fatalf("AddPage failed: %v", err)
		}
	}

	pages, err := store.Pages(ctx, mission.ID)
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Number != i+1 {
			t.Fatalf("expected page %d at position %d, got %d", i+1, i, page.Number)
		}
		if !page.NeedsCleaning() {
			t.Fatalf("new page %d should need cleaning", page.Number)
		}
	}
}

func TestDuplicatePageNumberRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	if _, err := store.AddPage(ctx, mission.ID, 1, "a"); err != nil {
		t.Fatalf("AddPage failed: %v", err)
	}
	if _, err := store.AddPage(ctx, mission.ID, 1, "b"); err == nil {
		t.Fatal("expected unique constraint error for duplicate page number")
	}
}

func TestCurrentTextFallsBackToOriginal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "machine transcription")

	text, err := store.CurrentText(ctx, pages[0].ID)
	if err != nil {
		t.Fatalf("CurrentText failed: %v", err)
	}
	if text != "machine transcription" {
		t.Fatalf("expected original text, got %q", text)
	}
}

func TestCurrentTextFollowsLatestRevision(t *testing.T) {
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
	if _, err := store.CreateRevision(ctx, pages[0].ID, alice.ID, "first pass", now); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	text, err := store.CurrentText(ctx, pages[0].ID)
	if err != nil {
		t.Fatalf("CurrentText failed: %v", err)
	}
	if text != "first pass" {
		t.Fatalf("read-your-write violated: got %q", text)
	}

	if _, err := store.AcquirePage(ctx, pages[0].ID, bob.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if _, err := store.CreateRevision(ctx, pages[0].ID, bob.ID, "second pass", now); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	text, err = store.CurrentText(ctx, pages[0].ID)
	if err != nil {
		t.Fatalf("CurrentText failed: %v", err)
	}
	if text != "second pass" {
		t.Fatalf("expected latest revision, got %q", text)
	}

	revisions, err := store.Revisions(ctx, pages[0].ID)
	if err != nil {
		t.Fatalf("Revisions failed: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	if revisions[0].Text != "first pass" || revisions[1].Text != "second pass" {
		t.Fatalf("revision order wrong: %q then %q", revisions[0].Text, revisions[1].Text)
	}
}

func TestMissionProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	now := time.Now()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")
	pages := testsupport.AddPages(t, store, mission.ID, "one", "two", "three")
	alice := testsupport.RegisterCleaner(t, store, "alice")

	if _, err := store.AcquirePage(ctx, pages[0].ID, alice.ID, now); err != nil {
		t.Fatalf("AcquirePage failed: %v", err)
	}
	if _, err := store.CreateRevision(ctx, pages[0].ID, alice.ID, "cleaned one", now); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	progress, err := store.MissionProgress(ctx, mission.ID)
	if err != nil {
		t.Fatalf("MissionProgress failed: %v", err)
	}
	if progress.Pages != 3 || progress.Cleaned != 1 || progress.Approved != 0 {
		t.Fatalf("unexpected progress: %#v", progress)
	}
	if progress.Done() {
		t.Fatal("mission should not be done")
	}
}

func TestSchemaMismatchDetected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	_ = store

	// Reopening against the same database must succeed with matching versions.
	second, err := transcripts.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	second.Close()
}
