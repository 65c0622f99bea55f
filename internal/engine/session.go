package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keykids/internal/model"
)

// Phase is the session lifecycle state.
type Phase int

const (
	// PhaseIdle has no text loaded.
	PhaseIdle Phase = iota
	// PhaseBriefing has text loaded and waits for the player to start.
	PhaseBriefing
	// PhaseActive accepts keystrokes.
	PhaseActive
	// PhaseFinished is terminal for the session.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBriefing:
		return "briefing"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Signal is a feedback event for the presentation layer.
type Signal int

// Feedback signals.
const (
	SignalCorrect Signal = iota
	SignalIncorrect
	SignalComplete
)

// Notifier receives feedback signals. It must not block.
type Notifier func(Signal)

// Session errors.
var (
	ErrEmptyText       = errors.New("target text is empty")
	ErrNotIdle         = errors.New("session already has text loaded")
	ErrNotBriefing     = errors.New("session is not in briefing")
	ErrNotLoaded       = errors.New("session has no text loaded")
	ErrNotActive       = errors.New("session is not active")
	ErrNotTimed        = errors.New("session is not timed")
	ErrSessionFinished = errors.New("session already finished")
	ErrStaleSession    = errors.New("event belongs to a replaced session")
	ErrNotFinished     = errors.New("session has not finished")
)

// Options configures a Session.
type Options struct {
	Mode             model.Mode
	TimeBudget       time.Duration
	OutlierThreshold time.Duration
	Notifier         Notifier
}

// Session is one attempt at a target text. It is driven from a single
// goroutine; every event carries its own timestamp.
type Session struct {
	id     string
	opts   Options
	phase  Phase
	ready  bool
	base   []rune
	target []rune
	cursor int
	typed  []rune
	missed bool

	sessionErrors   map[string]int
	sessionCorrects map[string]int
	totalErrors     int

	rec     *Recorder
	endedAt time.Time
}

// NewSession returns an idle session.
func NewSession(opts Options) *Session {
	if opts.Mode == "" {
		opts.Mode = model.ModeLesson
	}
	s := &Session{opts: opts}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.id = uuid.NewString()
	s.phase = PhaseIdle
	s.ready = false
	s.base = nil
	s.target = nil
	s.cursor = 0
	s.typed = nil
	s.missed = false
	s.sessionErrors = map[string]int{}
	s.sessionCorrects = map[string]int{}
	s.totalErrors = 0
	s.rec = NewRecorder(s.opts.OutlierThreshold)
	s.endedAt = time.Time{}
}

// Load moves an idle session into briefing with the given text.
func (s *Session) Load(text string) error {
	if s.phase != PhaseIdle {
		return ErrNotIdle
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return ErrEmptyText
	}
	s.base = runes
	s.target = append([]rune(nil), runes...)
	s.phase = PhaseBriefing
	return nil
}

// Start records the player's explicit start action. The session becomes
// active on the first accepted keystroke after this.
func (s *Session) Start() error {
	if s.phase != PhaseBriefing {
		return ErrNotBriefing
	}
	s.ready = true
	return nil
}

// Cancel abandons the session. All session-local state is dropped and any
// pending countdown for the old session becomes stale.
func (s *Session) Cancel() {
	s.reset()
}

// HandleKey classifies a key event and applies its side effects.
func (s *Session) HandleKey(key string, now time.Time) (Outcome, error) {
	switch s.phase {
	case PhaseIdle:
		return Ignored, ErrNotLoaded
	case PhaseFinished:
		return Ignored, ErrSessionFinished
	case PhaseBriefing:
		if !s.ready {
			return Ignored, nil
		}
	case PhaseActive:
		if deadline, ok := s.deadline(); ok && !now.Before(deadline) {
			s.finish(deadline)
			return Ignored, ErrSessionFinished
		}
	}

	outcome, r := Classify(s.target, s.cursor, key)
	if outcome == Ignored {
		return Ignored, nil
	}
	if s.phase == PhaseBriefing {
		s.phase = PhaseActive
	}
	s.rec.Accept(now)

	expected := string(s.target[s.cursor])
	if outcome == Incorrect {
		s.sessionErrors[expected]++
		s.totalErrors++
		s.missed = true
		s.emit(SignalIncorrect)
		return Incorrect, nil
	}

	s.cursor++
	s.typed = append(s.typed, r)
	s.sessionCorrects[expected]++
	s.missed = false
	s.rec.Correct(now)
	s.emit(SignalCorrect)

	if s.cursor == len(s.target) {
		if s.opts.Mode == model.ModeTimed {
			s.target = append(s.target, ' ')
			s.target = append(s.target, s.base...)
		} else {
			s.finish(now)
		}
	}
	return Correct, nil
}

// Expire ends a timed session when its countdown reaches zero. The id must
// match the session the countdown was started for.
func (s *Session) Expire(id string, now time.Time) error {
	if id != s.id {
		return ErrStaleSession
	}
	if s.opts.Mode != model.ModeTimed {
		return ErrNotTimed
	}
	switch s.phase {
	case PhaseFinished:
		return ErrSessionFinished
	case PhaseActive:
		if deadline, ok := s.deadline(); ok && now.After(deadline) {
			now = deadline
		}
		s.finish(now)
		return nil
	default:
		return ErrNotActive
	}
}

// deadline is the instant a timed countdown reaches zero. Keys at or after
// it are not counted.
func (s *Session) deadline() (time.Time, bool) {
	if s.opts.Mode != model.ModeTimed || s.opts.TimeBudget <= 0 || s.rec.StartedAt().IsZero() {
		return time.Time{}, false
	}
	return s.rec.StartedAt().Add(s.opts.TimeBudget), true
}

func (s *Session) finish(now time.Time) {
	s.phase = PhaseFinished
	s.endedAt = now
	s.emit(SignalComplete)
}

func (s *Session) emit(sig Signal) {
	if s.opts.Notifier != nil {
		s.opts.Notifier(sig)
	}
}

// ID identifies this session instance. It changes on Cancel.
func (s *Session) ID() string { return s.id }

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// Ready reports whether the start action has been taken.
func (s *Session) Ready() bool { return s.ready }

// Mode returns the session mode.
func (s *Session) Mode() model.Mode { return s.opts.Mode }

// TimeBudget returns the configured countdown length for timed sessions.
func (s *Session) TimeBudget() time.Duration { return s.opts.TimeBudget }

// Target returns the current target text.
func (s *Session) Target() []rune { return append([]rune(nil), s.target...) }

// Typed returns the correctly typed prefix.
func (s *Session) Typed() []rune { return append([]rune(nil), s.typed...) }

// Cursor returns the number of completed characters.
func (s *Session) Cursor() int { return s.cursor }

// Errors returns the number of incorrect keystrokes.
func (s *Session) Errors() int { return s.totalErrors }

// Missed reports whether the latest accepted keystroke was incorrect.
func (s *Session) Missed() bool { return s.missed }

// StartedAt returns the first accepted keystroke time, zero before that.
func (s *Session) StartedAt() time.Time { return s.rec.StartedAt() }

// Snapshot is the measured data of a finished session.
type Snapshot struct {
	ID              string
	Mode            model.Mode
	Cursor          int
	Errors          int
	Intervals       []time.Duration
	StartedAt       time.Time
	EndedAt         time.Time
	TimeBudget      time.Duration
	SessionErrors   map[string]int
	SessionCorrects map[string]int
}

// Snapshot copies the measurements of a finished session.
func (s *Session) Snapshot() (Snapshot, error) {
	if s.phase != PhaseFinished {
		return Snapshot{}, ErrNotFinished
	}
	snap := Snapshot{
		ID:              s.id,
		Mode:            s.opts.Mode,
		Cursor:          s.cursor,
		Errors:          s.totalErrors,
		Intervals:       s.rec.Intervals(),
		StartedAt:       s.rec.StartedAt(),
		EndedAt:         s.endedAt,
		TimeBudget:      s.opts.TimeBudget,
		SessionErrors:   make(map[string]int, len(s.sessionErrors)),
		SessionCorrects: make(map[string]int, len(s.sessionCorrects)),
	}
	for ch, n := range s.sessionErrors {
		snap.SessionErrors[ch] = n
	}
	for ch, n := range s.sessionCorrects {
		snap.SessionCorrects[ch] = n
	}
	return snap, nil
}
