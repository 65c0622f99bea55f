package engine

import "time"

// DefaultOutlierThreshold separates typing rhythm from thinking pauses.
const DefaultOutlierThreshold = 2000 * time.Millisecond

// Recorder tracks session start and the gaps between correct keystrokes.
type Recorder struct {
	threshold time.Duration
	startedAt time.Time
	anchor    time.Time
	intervals []time.Duration
}

// NewRecorder returns a Recorder that drops gaps at or above threshold.
func NewRecorder(threshold time.Duration) *Recorder {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	return &Recorder{threshold: threshold}
}

// Accept marks an accepted keystroke. The first one starts the session clock.
func (r *Recorder) Accept(now time.Time) {
	if r.startedAt.IsZero() {
		r.startedAt = now
	}
}

// Correct records the gap since the previous correct keystroke. The anchor
// always moves to now; only gaps below the threshold are kept.
func (r *Recorder) Correct(now time.Time) {
	if !r.anchor.IsZero() {
		if gap := now.Sub(r.anchor); gap >= 0 && gap < r.threshold {
			r.intervals = append(r.intervals, gap)
		}
	}
	r.anchor = now
}

// Started reports whether any keystroke has been accepted.
func (r *Recorder) Started() bool {
	return !r.startedAt.IsZero()
}

// StartedAt returns the time of the first accepted keystroke.
func (r *Recorder) StartedAt() time.Time {
	return r.startedAt
}

// Intervals returns a copy of the recorded gaps.
func (r *Recorder) Intervals() []time.Duration {
	return append([]time.Duration(nil), r.intervals...)
}
