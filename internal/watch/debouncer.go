package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects changed paths and signals once no new path has arrived
// for the configured delay. Signals coalesce: a consumer that is still busy
// when more changes settle sees one pending signal and drains everything.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	ready   chan struct{}
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]struct{}),
		ready:   make(chan struct{}, 1),
	}
}

// Add records a changed path and restarts the quiet period.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.signal)
}

func (d *Debouncer) signal() {
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Ready fires when pending changes have settled.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

// Drain returns the pending paths in sorted order and clears them.
func (d *Debouncer) Drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	d.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}

// Stop cancels any pending signal. Later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
