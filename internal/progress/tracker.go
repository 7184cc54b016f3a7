package progress

import (
	"fmt"
	"sync"
	"time"
)

// LogCapacity is the number of recent log lines a tracker retains.
// Older entries are evicted as new ones arrive.
const LogCapacity = 4

// Stage is one phase of an analysis run
type Stage string

const (
	StageIdle      Stage = "idle"
	StageVision    Stage = "vision"
	StageRegistry  Stage = "registry"
	StageRetrieval Stage = "retrieval"
	StageSynthesis Stage = "synthesis"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// Snapshot is a point-in-time copy of tracker state, safe to retain
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Stage     Stage     `json:"stage"`
	Label     string    `json:"label,omitempty"`
	Percent   int       `json:"percent"`
	Log       []string  `json:"log,omitempty"`
}

// Reporter receives a snapshot after every tracker write.
// Implementations must not block; the pipeline calls them inline.
type Reporter interface {
	Report(snap Snapshot)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(snap Snapshot)

func (f ReporterFunc) Report(snap Snapshot) { f(snap) }

// Tracker records the current stage, label, percent, and recent log of one
// analysis run. Exactly one writer (the pipeline) mutates it; any number of
// readers may call Snapshot concurrently.
type Tracker struct {
	mu        sync.RWMutex
	stage     Stage
	label     string
	percent   int
	log       []string
	observers []Reporter
}

// NewTracker creates an idle tracker. Observers are notified after every
// write; register them before the run starts.
func NewTracker(observers ...Reporter) *Tracker {
	return &Tracker{
		stage:     StageIdle,
		observers: observers,
	}
}

// Advance moves the tracker to the given stage, label, and percent.
// Percent must never regress within a run and never exceed 100; violations
// are programmer errors and panic.
func (t *Tracker) Advance(stage Stage, label string, percent int) {
	t.mu.Lock()
	if percent < t.percent {
		cur := t.percent
		t.mu.Unlock()
		panic(fmt.Sprintf("progress: percent regression %d -> %d entering stage %s", cur, percent, stage))
	}
	if percent > 100 {
		t.mu.Unlock()
		panic(fmt.Sprintf("progress: percent %d out of range entering stage %s", percent, stage))
	}
	t.stage = stage
	t.label = label
	t.percent = percent
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// Append pushes a log entry, evicting the oldest beyond LogCapacity
func (t *Tracker) Append(entry string) {
	t.mu.Lock()
	t.log = append(t.log, entry)
	if len(t.log) > LogCapacity {
		t.log = t.log[len(t.log)-LogCapacity:]
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// Reset returns the tracker to idle with zero percent and an empty log.
// Called only when a new run starts.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.stage = StageIdle
	t.label = ""
	t.percent = 0
	t.log = nil
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snap)
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	logCopy := make([]string, len(t.log))
	copy(logCopy, t.log)
	return Snapshot{
		Timestamp: time.Now().UTC(),
		Stage:     t.stage,
		Label:     t.label,
		Percent:   t.percent,
		Log:       logCopy,
	}
}

func (t *Tracker) notify(snap Snapshot) {
	for _, obs := range t.observers {
		obs.Report(snap)
	}
}
