package history

import "time"

// Status values stored for a run.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded tagging pass.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	OutputDir    string
	IndexPath    string
	Checksum     string
	Tagged       int
	Skipped      int
	ErrorKind    string
	ErrorMessage string
}

// Duration reports how long a finished run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Entry is one resource tagged during a run.
type Entry struct {
	BaseDir     string
	Original    string
	Tagged      string
	Fingerprint string
	Bytes       int64
}

// RunInfo describes a run as it starts.
type RunInfo struct {
	OutputDir string
	IndexPath string
	Checksum  string
}

// Outcome describes a run as it finishes. A nil Err marks success.
type Outcome struct {
	Skipped int
	Err     error
}
