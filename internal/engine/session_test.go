package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keykids/internal/model"
)

var t0 = time.Date(2026, 5, 4, 15, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

func startedSession(t *testing.T, opts Options, text string) *Session {
	t.Helper()
	s := NewSession(opts)
	require.NoError(t, s.Load(text))
	require.NoError(t, s.Start())
	return s
}

func TestSessionLifecycle(t *testing.T) {
	var signals []Signal
	s := NewSession(Options{Notifier: func(sig Signal) { signals = append(signals, sig) }})
	assert.Equal(t, PhaseIdle, s.Phase())

	_, err := s.HandleKey("a", ms(0))
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, s.Load(""), ErrEmptyText)

	require.NoError(t, s.Load("ab"))
	assert.Equal(t, PhaseBriefing, s.Phase())
	assert.ErrorIs(t, s.Load("cd"), ErrNotIdle)

	out, err := s.HandleKey("a", ms(0))
	require.NoError(t, err)
	assert.Equal(t, Ignored, out, "keys before start are ignored")
	assert.Equal(t, 0, s.Cursor())

	require.NoError(t, s.Start())
	assert.Equal(t, PhaseBriefing, s.Phase())

	out, _ = s.HandleKey("shift", ms(10))
	assert.Equal(t, Ignored, out)
	assert.Equal(t, PhaseBriefing, s.Phase(), "ignored keys do not activate")
	assert.True(t, s.StartedAt().IsZero())

	out, _ = s.HandleKey("x", ms(100))
	assert.Equal(t, Incorrect, out)
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, ms(100), s.StartedAt())
	assert.True(t, s.Missed())

	out, _ = s.HandleKey("a", ms(200))
	assert.Equal(t, Correct, out)
	assert.False(t, s.Missed())
	out, _ = s.HandleKey("b", ms(300))
	assert.Equal(t, Correct, out)

	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, []Signal{SignalIncorrect, SignalCorrect, SignalCorrect, SignalComplete}, signals)

	_, err = s.HandleKey("b", ms(400))
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestSessionIncorrectDoesNotAdvance(t *testing.T) {
	s := startedSession(t, Options{}, "abc")
	for i := 0; i < 3; i++ {
		out, err := s.HandleKey("z", ms(i*100))
		require.NoError(t, err)
		assert.Equal(t, Incorrect, out)
	}
	_, _ = s.HandleKey("backspace", ms(400))
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, 3, s.Errors())

	prev := s.Cursor()
	for i, key := range []string{"a", "q", "b", "left", "c"} {
		_, _ = s.HandleKey(key, ms(500+i*100))
		assert.GreaterOrEqual(t, s.Cursor(), prev, "cursor never decreases")
		assert.LessOrEqual(t, s.Cursor(), 3)
		prev = s.Cursor()
	}
	assert.Equal(t, "abc", string(s.Typed()))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 3, "b": 1}, snap.SessionErrors)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, snap.SessionCorrects)
	assert.Equal(t, 4, snap.Errors)
}

func TestSessionIntervalsOnlyFromCorrectKeys(t *testing.T) {
	s := startedSession(t, Options{}, "abcde")
	_, _ = s.HandleKey("a", ms(0))
	_, _ = s.HandleKey("x", ms(100))
	_, _ = s.HandleKey("b", ms(250))
	_, _ = s.HandleKey("c", ms(3000))
	_, _ = s.HandleKey("d", ms(3200))
	_, _ = s.HandleKey("e", ms(3350))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 200 * time.Millisecond, 150 * time.Millisecond}, snap.Intervals)
	assert.Equal(t, ms(0), snap.StartedAt)
	assert.Equal(t, ms(3350), snap.EndedAt)
}

func TestSessionTimedExtendsAndExpires(t *testing.T) {
	s := startedSession(t, Options{Mode: model.ModeTimed, TimeBudget: 30 * time.Second}, "ab")
	_, _ = s.HandleKey("a", ms(0))
	_, _ = s.HandleKey("b", ms(100))
	assert.Equal(t, PhaseActive, s.Phase(), "timed sessions keep going")
	assert.Equal(t, "ab ab", string(s.Target()))

	_, _ = s.HandleKey("space", ms(200))
	assert.Equal(t, 3, s.Cursor())

	require.NoError(t, s.Expire(s.ID(), ms(5000)))
	assert.Equal(t, PhaseFinished, s.Phase())
	assert.ErrorIs(t, s.Expire(s.ID(), ms(6000)), ErrSessionFinished, "second trigger is not honored")
}

func TestSessionTimedIgnoresKeysAfterDeadline(t *testing.T) {
	var signals []Signal
	s := startedSession(t, Options{
		Mode:       model.ModeTimed,
		TimeBudget: 2 * time.Second,
		Notifier:   func(sig Signal) { signals = append(signals, sig) },
	}, "asdf")
	_, _ = s.HandleKey("a", ms(0))
	_, _ = s.HandleKey("s", ms(1000))
	require.Equal(t, 2, s.Cursor())

	outcome, err := s.HandleKey("d", ms(2000))
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.Equal(t, Ignored, outcome)
	assert.Equal(t, 2, s.Cursor(), "late keys do not move the cursor")
	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, SignalComplete, signals[len(signals)-1])

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, ms(2000), snap.EndedAt)
	assert.Equal(t, []time.Duration{time.Second}, snap.Intervals)

	assert.ErrorIs(t, s.Expire(s.ID(), ms(2250)), ErrSessionFinished)
}

func TestSessionExpireClampsToDeadline(t *testing.T) {
	s := startedSession(t, Options{Mode: model.ModeTimed, TimeBudget: time.Second}, "ab")
	_, _ = s.HandleKey("a", ms(0))
	require.NoError(t, s.Expire(s.ID(), ms(1400)))
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, ms(1000), snap.EndedAt)
}

func TestSessionExpireGuards(t *testing.T) {
	lesson := startedSession(t, Options{}, "ab")
	_, _ = lesson.HandleKey("a", ms(0))
	assert.ErrorIs(t, lesson.Expire(lesson.ID(), ms(100)), ErrNotTimed)

	timed := startedSession(t, Options{Mode: model.ModeTimed, TimeBudget: time.Minute}, "ab")
	assert.ErrorIs(t, timed.Expire(timed.ID(), ms(0)), ErrNotActive)

	oldID := timed.ID()
	timed.Cancel()
	assert.Equal(t, PhaseIdle, timed.Phase())
	assert.NotEqual(t, oldID, timed.ID())
	assert.ErrorIs(t, timed.Expire(oldID, ms(100)), ErrStaleSession)
}

func TestSessionCancelDiscardsState(t *testing.T) {
	s := startedSession(t, Options{}, "abc")
	_, _ = s.HandleKey("a", ms(0))
	_, _ = s.HandleKey("z", ms(100))
	s.Cancel()

	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, 0, s.Errors())
	assert.Empty(t, s.Target())
	assert.False(t, s.Ready())
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, ErrNotFinished)

	require.NoError(t, s.Load("xy"))
	assert.Equal(t, PhaseBriefing, s.Phase())
}
