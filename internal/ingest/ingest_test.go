package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kallisto/internal/ingest"
	"kallisto/internal/testsupport"
)

func TestIngestMission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission, err := ingest.IngestMission(ctx, store, ingest.Mission{
		Slug:  " Apollo11 ",
		Start: time.Date(1969, 7, 16, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("IngestMission failed: %v", err)
	}
	if mission.Slug != "apollo11" {
		t.Fatalf("expected normalized slug, got %q", mission.Slug)
	}
	if mission.Name != "Apollo 11" {
		t.Fatalf("expected derived name, got %q", mission.Name)
	}

	if _, err := ingest.IngestMission(ctx, store, ingest.Mission{Slug: "apollo11"}); err == nil {
		t.Fatal("expected duplicate slug to fail")
	}
}

func TestIngestMissionRejectsBadSlug(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	for _, slug := range []string{"", "apollo-11", "apollo 11", "apollo_11"} {
		if _, err := ingest.IngestMission(context.Background(), store, ingest.Mission{Slug: slug}); err == nil {
			t.Fatalf("expected slug %q to be rejected", slug)
		}
	}
}

func TestIngestPages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2.txt"), "page two")
	writeFile(t, filepath.Join(dir, "1.txt"), "page one")
	writeFile(t, filepath.Join(dir, "10.txt"), "page ten")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	count, err := ingest.IngestPages(ctx, store, mission.ID, dir)
	if err != nil {
		t.Fatalf("IngestPages failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected three pages ingested, got %d", count)
	}

	pages, err := store.Pages(ctx, mission.ID)
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected three pages, got %d", len(pages))
	}
	if pages[0].Number != 1 || pages[0].OriginalText != "page one" {
		t.Fatalf("unexpected first page %+v", pages[0])
	}
	if pages[2].Number != 10 || pages[2].OriginalText != "page ten" {
		t.Fatalf("unexpected last page %+v", pages[2])
	}
}

func TestIngestPagesEmptyDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	mission := testsupport.NewMission(t, store, "apollo11", "Apollo 11")

	if _, err := ingest.IngestPages(context.Background(), store, mission.ID, t.TempDir()); !errors.Is(err, ingest.ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestDeriveName(t *testing.T) {
	for slug, want := range map[string]string{
		"apollo11": "Apollo 11",
		"mercury6": "Mercury 6",
		"gemini":   "Gemini",
	} {
		if got := ingest.DeriveName(slug); got != want {
			t.Errorf("DeriveName(%q) = %q, want %q", slug, got, want)
		}
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
