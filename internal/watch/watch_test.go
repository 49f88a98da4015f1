package watch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add("b")
	d.Add("a")
	d.Add("b")

	select {
	case <-d.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never signaled")
	}
	if got := d.Drain(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Drain = %v", got)
	}

	select {
	case <-d.Ready():
		t.Fatal("unexpected second signal")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerStopIgnoresLaterAdds(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	d.Stop()
	d.Add("a")

	select {
	case <-d.Ready():
		t.Fatal("stopped debouncer signaled")
	case <-time.After(100 * time.Millisecond):
	}
	if got := d.Drain(); len(got) != 0 {
		t.Fatalf("Drain = %v", got)
	}
}

func TestWatcherReportsSettledChanges(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "generated")
	if err := os.MkdirAll(filepath.Join(root, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}

	lock := out + ".lock"
	w, err := New(Options{Roots: []string{root}, Ignore: []string{out, lock}, Debounce: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, dir := range w.WatchList() {
		if dir == out {
			t.Fatal("ignored directory must not be watched")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			batches <- changed
			return nil
		})
	}()

	write := func(path string) {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(out, "ignored.css"))
	write(lock)
	write(filepath.Join(root, "css", "a.css"))
	write(filepath.Join(root, "css", "b.css"))

	var batch []string
	select {
	case batch = <-batches:
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch delivered")
	}
	for _, path := range batch {
		if filepath.Dir(path) == out || path == lock {
			t.Fatalf("ignored path reported: %s", path)
		}
	}
	if len(batch) < 2 {
		t.Fatalf("expected both writes in one batch, got %v", batch)
	}

	select {
	case extra := <-batches:
		t.Fatalf("unexpected extra batch %v", extra)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewRequiresRoots(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without roots")
	}
}
