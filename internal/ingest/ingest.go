package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kallisto/internal/transcripts"
)

// ErrNoPages is returned when a page directory contains no numbered text
// files.
var ErrNoPages = errors.New("no page files found")

// MissionWriter is the slice of the store ingestion needs.
type MissionWriter interface {
	CreateMission(ctx context.Context, slug, name string, start time.Time, wikiURL string) (*transcripts.Mission, error)
	MissionBySlug(ctx context.Context, slug string) (*transcripts.Mission, error)
	AddPage(ctx context.Context, missionID int64, number int, originalText string) (*transcripts.Page, error)
}

// Mission describes a mission to be created.
type Mission struct {
	Slug    string
	Name    string
	Start   time.Time
	WikiURL string
}

// IngestMission validates and creates a mission. An empty Name is derived
// from the slug ("apollo11" becomes "Apollo 11").
func IngestMission(ctx context.Context, store MissionWriter, spec Mission) (*transcripts.Mission, error) {
	slug := NormalizeSlug(spec.Slug)
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	existing, err := store.MissionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("mission %q already exists", slug)
	}
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		name = DeriveName(slug)
	}
	mission, err := store.CreateMission(ctx, slug, name, spec.Start, spec.WikiURL)
	if err != nil {
		return nil, fmt.Errorf("create mission %q: %w", slug, err)
	}
	return mission, nil
}

// IngestPages loads every numbered text file under dir as a page of the
// mission. A file named "3.txt" (or bare "3") becomes page 3; other files
// are ignored. Returns the number of pages created.
func IngestPages(ctx context.Context, store MissionWriter, missionID int64, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read page directory: %w", err)
	}

	type pageFile struct {
		number int
		path   string
	}
	var files []pageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		number, ok := pageNumber(entry.Name())
		if !ok {
			continue
		}
		files = append(files, pageFile{number: number, path: filepath.Join(dir, entry.Name())})
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%s: %w", dir, ErrNoPages)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].number < files[j].number })

	for _, file := range files {
		text, err := os.ReadFile(file.path)
		if err != nil {
			return 0, fmt.Errorf("read page %d: %w", file.number, err)
		}
		if _, err := store.AddPage(ctx, missionID, file.number, string(text)); err != nil {
			return 0, fmt.Errorf("add page %d: %w", file.number, err)
		}
	}
	return len(files), nil
}

// NormalizeSlug canonicalizes a mission slug: lowercase, surrounding
// whitespace removed.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// ValidateSlug accepts lowercase letters and digits only. Slugs become
// subdomains and archive prefixes, so anything else is rejected.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("mission slug is required")
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fmt.Errorf("invalid mission slug %q: only lowercase letters and digits allowed", slug)
		}
	}
	return nil
}

// DeriveName builds a display name from a slug by splitting letter and digit
// runs and title-casing the result.
func DeriveName(slug string) string {
	var b strings.Builder
	var prev rune
	for _, r := range slug {
		if prev != 0 && unicode.IsLetter(prev) != unicode.IsLetter(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return cases.Title(language.Und).String(b.String())
}

func pageNumber(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	number, err := strconv.Atoi(base)
	if err != nil || number < 1 {
		return 0, false
	}
	return number, true
}
