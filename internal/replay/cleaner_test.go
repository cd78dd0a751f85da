package replay

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"tankduel/engine/internal/logging"
)

// writeBundle fakes a replay bundle whose files were last touched at modTime.
func writeBundle(t *testing.T, root, name string, modTime time.Time, size int) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string][]byte{
		manifestFile: []byte(`{"version":1}`),
		framesFile:   make([]byte, size),
	}
	for file, data := range files {
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
}

func listBundles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func TestCleanerEnforcesMaxMatches(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	//1.- Seed three bundles of different ages.
	writeBundle(t, root, "alpha", now.Add(-3*time.Hour), 64)
	writeBundle(t, root, "bravo", now.Add(-2*time.Hour), 32)
	writeBundle(t, root, "charlie", now.Add(-time.Hour), 48)

	cleaner := NewCleaner(root, RetentionPolicy{MaxMatches: 2}, logging.NewTestLogger())
	cleaner.now = func() time.Time { return now }
	stats := cleaner.RunOnce()

	//2.- The oldest bundle goes first.
	remaining := listBundles(t, root)
	if len(remaining) != 2 || remaining[0] != "bravo" || remaining[1] != "charlie" {
		t.Fatalf("unexpected retained bundles: %v", remaining)
	}
	if stats.Matches != 2 || stats.Removed != 1 || !stats.LastSweep.Equal(now) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Bytes < 80 {
		t.Fatalf("expected retained bytes to include both bundles, got %d", stats.Bytes)
	}
}

func TestCleanerEnforcesMaxAge(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	writeBundle(t, root, "stale", now.Add(-48*time.Hour), 8)
	writeBundle(t, root, "fresh", now.Add(-time.Hour), 8)

	cleaner := NewCleaner(root, RetentionPolicy{MaxAge: 24 * time.Hour}, logging.NewTestLogger())
	cleaner.now = func() time.Time { return now }
	cleaner.RunOnce()

	remaining := listBundles(t, root)
	if len(remaining) != 1 || remaining[0] != "fresh" {
		t.Fatalf("unexpected retained bundles: %v", remaining)
	}
}

func TestCleanerIgnoresDirectoriesWithoutManifest(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	if err := os.MkdirAll(filepath.Join(root, "notes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeBundle(t, root, "old", now.Add(-72*time.Hour), 8)

	cleaner := NewCleaner(root, RetentionPolicy{MaxAge: time.Hour}, logging.NewTestLogger())
	cleaner.now = func() time.Time { return now }
	cleaner.RunOnce()

	remaining := listBundles(t, root)
	if len(remaining) != 1 || remaining[0] != "notes" {
		t.Fatalf("expected only the foreign directory to survive, got %v", remaining)
	}
	var nilCleaner *Cleaner
	if stats := nilCleaner.RunOnce(); stats.Matches != 0 {
		t.Fatalf("expected nil cleaner to be inert")
	}
}
