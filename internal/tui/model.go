// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keykids/internal/engine"
	"github.com/verte-zerg/keykids/internal/generator"
	"github.com/verte-zerg/keykids/internal/logging"
	"github.com/verte-zerg/keykids/internal/model"
	statsPkg "github.com/verte-zerg/keykids/internal/stats"
)

// ProfileSaver persists completed sessions.
type ProfileSaver interface {
	SaveCompletion(ctx context.Context, profile model.Profile, result model.SessionResult) error
}

// Options wires a practice Model.
type Options struct {
	Config  model.Config
	Level   model.Level
	Catalog engine.LevelCatalog
	Profile model.Profile
	Store   ProfileSaver
	Source  generator.Source
	Logger  *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type screen int

const (
	screenLoading screen = iota
	screenBriefing
	screenTyping
	screenResult
)

const tickInterval = 250 * time.Millisecond

type textMsg struct {
	sessionID string
	text      string
}

type tickMsg struct {
	sessionID string
	at        time.Time
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	cfg     model.Config
	level   model.Level
	catalog engine.LevelCatalog
	profile model.Profile
	store   ProfileSaver
	src     generator.Source
	logger  *slog.Logger
	now     func() time.Time

	session    *engine.Session
	screen     screen
	lastSignal engine.Signal
	hasSignal  bool
	bar        progress.Model
	remaining  time.Duration

	completion *engine.Completion
	errMsg     string

	width  int
	height int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	starStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD24D"))
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	flashStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#FF4D4F")).
				Padding(0, 1)
	calmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

// NewModel constructs a typing TUI model.
func NewModel(opts Options) *Model {
	m := &Model{
		cfg:     opts.Config,
		level:   opts.Level,
		catalog: opts.Catalog,
		profile: opts.Profile,
		store:   opts.Store,
		src:     opts.Source,
		logger:  opts.Logger,
		now:     opts.Now,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.session = engine.NewSession(engine.Options{
		Mode:             opts.Config.Mode,
		TimeBudget:       time.Duration(opts.Config.Seconds) * time.Second,
		OutlierThreshold: time.Duration(opts.Config.OutlierMs) * time.Millisecond,
		Notifier:         m.notify,
	})
	return m
}

// Profile returns the latest profile, including sessions finished in this
// program run.
func (m *Model) Profile() model.Profile {
	return m.profile
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.fetchText()
}

func (m *Model) fetchText() tea.Cmd {
	m.screen = screenLoading
	id := m.session.ID()
	req := generator.Request{
		Level:      m.level,
		Mode:       m.cfg.Mode,
		ErrorStats: m.profile.ErrorStats,
		Difficulty: m.cfg.Difficulty,
	}
	src, timeout, logger := m.src, m.cfg.GenerateTimeout, m.logger
	return func() tea.Msg {
		text := generator.WithFallback(context.Background(), src, req, timeout, logger)
		return textMsg{sessionID: id, text: text}
	}
}

func (m *Model) tick() tea.Cmd {
	id := m.session.ID()
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{sessionID: id, at: t}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, msg.Width/2)
		return m, nil
	case textMsg:
		return m, m.handleText(msg)
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleText(msg textMsg) tea.Cmd {
	if msg.sessionID != m.session.ID() {
		return nil
	}
	if err := m.session.Load(msg.text); err != nil {
		m.errMsg = err.Error()
		m.logger.Error("failed to load session text", "err", err)
		return nil
	}
	m.errMsg = ""
	m.screen = screenBriefing
	m.remaining = m.session.TimeBudget()
	return nil
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.sessionID != m.session.ID() || m.session.Phase() == engine.PhaseFinished {
		return nil
	}
	if m.session.Phase() != engine.PhaseActive {
		return m.tick()
	}
	elapsed := msg.at.Sub(m.session.StartedAt())
	m.remaining = m.session.TimeBudget() - elapsed
	if m.remaining > 0 {
		return m.tick()
	}
	m.remaining = 0
	if err := m.session.Expire(msg.sessionID, msg.at); err != nil {
		m.logger.Debug("countdown expiry ignored", "err", err)
		return nil
	}
	m.finish()
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.screen {
	case screenLoading:
		if msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		return m, nil
	case screenBriefing:
		switch msg.Type {
		case tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if err := m.session.Start(); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.screen = screenTyping
			if m.session.Mode() == model.ModeTimed {
				return m, m.tick()
			}
		}
		return m, nil
	case screenResult:
		switch {
		case msg.Type == tea.KeyEnter:
			return m, m.restart()
		case msg.Type == tea.KeyEsc || msg.String() == "q":
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.logger.Info("session cancelled", "session", m.session.ID())
		return m, m.restart()
	}
	m.hasSignal = false
	for _, key := range keyNames(msg) {
		_, err := m.session.HandleKey(key, m.now())
		if err != nil {
			m.logger.Debug("key rejected", "key", key, "err", err)
		}
		if m.session.Phase() == engine.PhaseFinished {
			m.remaining = 0
			m.finish()
			break
		}
		if err != nil {
			break
		}
	}
	return m, nil
}

// keyNames splits a key event into the names the session classifies. Pasted
// or buffered input arrives as several runes in one event.
func keyNames(msg tea.KeyMsg) []string {
	switch msg.Type {
	case tea.KeyRunes:
		keys := make([]string, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, string(r))
		}
		return keys
	case tea.KeySpace:
		return []string{"space"}
	default:
		return []string{msg.String()}
	}
}

func (m *Model) restart() tea.Cmd {
	m.session.Cancel()
	m.completion = nil
	m.hasSignal = false
	return m.fetchText()
}

func (m *Model) notify(sig engine.Signal) {
	m.lastSignal = sig
	m.hasSignal = true
}

func (m *Model) finish() {
	updated, completion, err := engine.Complete(m.profile, m.session, m.level, m.catalog, m.cfg.DecayRate)
	if err != nil {
		m.errMsg = err.Error()
		m.logger.Error("failed to complete session", "err", err)
		return
	}
	m.profile = updated
	m.completion = &completion
	m.screen = screenResult

	r := completion.Result
	m.logger.Info("session finished",
		"session", r.ID, "level", r.LevelID, "mode", string(r.Mode),
		"wpm", r.Wpm, "accuracy", r.Accuracy, "consistency", r.Consistency,
		"stars", r.Stars, "achievements", strings.Join(completion.JustUnlocked, ","))

	if m.store == nil {
		return
	}
	if err := m.store.SaveCompletion(context.Background(), updated, r); err != nil {
		m.errMsg = fmt.Sprintf("failed to save session: %v", err)
		m.logger.Error("failed to save session", "session", r.ID, "err", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenLoading:
		content = hintStyle.Render("Getting your letters ready...")
	case screenBriefing:
		content = m.renderBriefing()
	case screenResult:
		content = m.renderResult()
	default:
		content = m.renderTyping()
	}
	if m.errMsg != "" {
		content += "\n\n" + errorStyle.Render(m.errMsg)
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBriefing() string {
	lines := []string{titleStyle.Render(levelTitle(m.level))}
	if m.level.NewKeys != "" {
		lines = append(lines, "New keys: "+spaced(m.level.NewKeys))
	}
	if m.level.MinWpm > 0 || m.level.MinAccuracy > 0 {
		lines = append(lines, fmt.Sprintf("Goal: %d WPM and %d%% accuracy for three stars", m.level.MinWpm, m.level.MinAccuracy))
	}
	if m.session.Mode() == model.ModeTimed {
		lines = append(lines, fmt.Sprintf("Type as much as you can in %d seconds.", int(m.session.TimeBudget().Seconds())))
	}
	lines = append(lines, "", hintStyle.Render("Press enter to start, esc to leave."))
	return strings.Join(lines, "\n")
}

func (m *Model) renderTyping() string {
	target := m.session.Target()
	cursorIndex := m.session.Cursor()
	if cursorIndex >= len(target) {
		cursorIndex = -1
	}
	styled := buildStyledRunes(target, cursorIndex, m.session.Missed())

	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	text := renderStyledRunes(styled)
	if m.width > 0 {
		text = lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(styled, contentWidth))
	}
	box := calmStyle
	if m.hasSignal && m.lastSignal == engine.SignalIncorrect {
		box = flashStyle
	}
	return titleStyle.Render(levelTitle(m.level)) + "\n\n" + box.Render(text) + "\n\n" + m.bar.ViewAs(m.progressFraction())
}

func (m *Model) renderResult() string {
	if m.completion == nil {
		return ""
	}
	r := m.completion.Result
	lines := []string{
		titleStyle.Render("Well done!"),
		starStyle.Render(statsPkg.StarString(r.Stars)),
		"",
		fmt.Sprintf("Speed        %d WPM", r.Wpm),
		fmt.Sprintf("Accuracy     %d%%", r.Accuracy),
		fmt.Sprintf("Rhythm       %d%%", r.Consistency),
	}
	for _, id := range m.completion.JustUnlocked {
		if a, ok := statsPkg.AchievementByID(id); ok {
			lines = append(lines, "", starStyle.Render("New badge: "+a.Title)+" "+hintStyle.Render(a.Description))
		}
	}
	if m.completion.UnlockedLevel > 0 {
		lines = append(lines, "", titleStyle.Render(fmt.Sprintf("Level %d is open!", m.completion.UnlockedLevel)))
	}
	lines = append(lines, "", hintStyle.Render("Press enter to go again, q to quit."))
	return strings.Join(lines, "\n")
}

func (m *Model) progressFraction() float64 {
	if m.session.Mode() == model.ModeTimed {
		budget := m.session.TimeBudget()
		if budget <= 0 {
			return 0
		}
		return 1 - float64(m.remaining)/float64(budget)
	}
	target := len(m.session.Target())
	if target == 0 {
		return 0
	}
	return float64(m.session.Cursor()) / float64(target)
}

func (m *Model) renderFooter() string {
	if m.screen != screenTyping {
		return ""
	}
	var segments []string
	if m.session.Mode() == model.ModeTimed {
		secs := int(m.remaining.Round(time.Second) / time.Second)
		segments = append(segments, fmt.Sprintf("Time %d:%02d", secs/60, secs%60))
	} else {
		segments = append(segments, fmt.Sprintf("Progress %d%%", int(m.progressFraction()*100)))
	}
	segments = append(segments, fmt.Sprintf("Oops %d", m.session.Errors()))
	if n := len(m.profile.History); n > 0 {
		last := m.profile.History[n-1]
		segments = append(segments, fmt.Sprintf("Last %d WPM · %s", last.Wpm, statsPkg.StarString(last.Stars)))
	}
	segments = append(segments, "esc to restart")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func levelTitle(level model.Level) string {
	if level.ID > 0 {
		return fmt.Sprintf("Level %d: %s", level.ID, level.Name)
	}
	return level.Name
}

func spaced(keys string) string {
	runes := []rune(keys)
	parts := make([]string, 0, len(runes))
	for _, r := range runes {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, " ")
}
