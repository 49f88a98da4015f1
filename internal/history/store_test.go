package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tagres/internal/faults"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func TestRecorderRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec, err := store.Begin(ctx, RunInfo{OutputDir: "/out", IndexPath: "/out/idx", Checksum: "crc32"})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	rec.Add(Entry{BaseDir: "/src", Original: "a.css", Tagged: "a_1.css", Fingerprint: "1", Bytes: 10})
	rec.Add(Entry{BaseDir: "/src", Original: "b.js", Tagged: "b_4294967295.js", Fingerprint: "4294967295", Bytes: 20})

	finished, err := rec.Finish(ctx, Outcome{Skipped: 3})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if finished.Status != StatusSucceeded || finished.Tagged != 2 || finished.Skipped != 3 {
		t.Fatalf("unexpected finished run %+v", finished)
	}
	if finished.Duration() != time.Second {
		t.Fatalf("duration = %s", finished.Duration())
	}

	run, entries, err := store.Get(ctx, rec.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.ID != rec.ID() || run.Checksum != "crc32" || run.OutputDir != "/out" || run.Status != StatusSucceeded {
		t.Fatalf("unexpected run %+v", run)
	}
	if len(entries) != 2 || entries[0].Original != "a.css" || entries[1].Fingerprint != "4294967295" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	byPrefix, _, err := store.Get(ctx, rec.ID()[:8])
	if err != nil || byPrefix.ID != rec.ID() {
		t.Fatalf("prefix lookup = %+v, %v", byPrefix, err)
	}
}

func TestFinishRecordsFailure(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	rec, err := store.Begin(ctx, RunInfo{OutputDir: "/out", IndexPath: "/out/idx", Checksum: "crc32"})
	if err != nil {
		t.Fatal(err)
	}
	runErr := faults.Wrap(faults.ErrIO, "tagrun", "copy", "a to b", errors.New("disk full"))
	run, err := rec.Finish(ctx, Outcome{Err: runErr})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if run.Status != StatusFailed || run.ErrorKind != "io" || run.ErrorMessage != runErr.Error() {
		t.Fatalf("unexpected run %+v", run)
	}

	stored, _, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ErrorKind != "io" {
		t.Fatalf("stored error kind = %q", stored.ErrorKind)
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := store.Begin(ctx, RunInfo{OutputDir: "/out", IndexPath: "/out/idx", Checksum: "crc32"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := rec.Finish(ctx, Outcome{}); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, rec.ID())
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order %+v", runs)
	}

	removed, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	runs, err = store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != ids[2] {
		t.Fatalf("unexpected runs after prune %+v", runs)
	}
}

func TestGetMissingRun(t *testing.T) {
	store := openTestStore(t)
	if _, _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = second.Close()
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
