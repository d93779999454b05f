package tui

import (
	"context"
	"time"

	"diagai/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type analyzeResultMsg struct {
	resp *app.AnalysisResponse
	err  error
}

type researchResultMsg struct {
	resp *app.WebResearchResponse
	err  error
}

type spinMsg struct{}

// Model renders one conversation session. Exactly one backend call is ever in
// flight; busy gates every submission path until the reply lands.
type Model struct {
	session *app.Session
	backend app.Backend
	timeout time.Duration

	theme Theme
	keys  keyMap

	symptoms textarea.Model
	answers  []textinput.Model
	focusIdx int

	busy       bool
	spinnerPos int
	status     string

	width  int
	height int
}

func New(session *app.Session, backend app.Backend, timeout time.Duration, theme Theme) *Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your symptoms: what, where, since when, and how they have changed."
	ta.Focus()
	ta.CharLimit = app.MaxSymptomLen
	ta.SetWidth(76)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.Prompt = " "

	// The input container carries the styling, not the textarea itself.
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	return &Model{
		session:  session,
		backend:  backend,
		timeout:  timeout,
		theme:    theme,
		keys:     defaultKeyMap(),
		symptoms: ta,
		width:    100,
		height:   30,
	}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.symptoms.SetWidth(max(20, m.width-8))
		for i := range m.answers {
			m.answers[i].Width = max(20, m.width-12)
		}
		return m, nil

	case spinMsg:
		if m.busy {
			m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
			return m, m.spinCmd()
		}
		return m, nil

	case analyzeResultMsg:
		m.busy = false
		if msg.err != nil {
			m.status = app.UserMessage(msg.err)
			return m, nil
		}
		m.status = ""
		m.session.ApplyAnalysis(msg.resp)
		m.symptoms.Reset()
		m.rebuildAnswerInputs()
		return m, nil

	case researchResultMsg:
		m.busy = false
		if msg.err != nil {
			m.session.FailResearch()
			m.status = app.UserMessage(msg.err)
			return m, nil
		}
		m.status = ""
		m.session.ApplyResearch(msg.resp)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case msg.String() == "q" && !m.editing():
		return m, tea.Quit

	case key.Matches(msg, m.keys.Enter):
		return m, m.onEnter()

	case key.Matches(msg, m.keys.Research):
		if m.busy || m.session.Stage != app.StageExtracted {
			return m, nil
		}
		if err := m.session.BeginResearch(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, tea.Batch(m.researchCmd(), m.spinCmd())

	case key.Matches(msg, m.keys.NewConv):
		if m.busy || m.session.Stage != app.StageComplete {
			return m, nil
		}
		m.session.Reset()
		m.status = ""
		m.symptoms.Reset()
		m.symptoms.Focus()
		m.answers = nil
		m.focusIdx = 0
		return m, textarea.Blink

	case key.Matches(msg, m.keys.NextField):
		if m.session.Stage == app.StageAwaitingFollowUp {
			m.moveFocus(1)
			return m, nil
		}

	case key.Matches(msg, m.keys.PrevField):
		if m.session.Stage == app.StageAwaitingFollowUp {
			m.moveFocus(-1)
			return m, nil
		}
	}

	return m, m.updateFocusedInput(msg)
}

// onEnter submits whatever the current screen is collecting. Local validation
// failures never reach the network.
func (m *Model) onEnter() tea.Cmd {
	if m.busy {
		return nil
	}

	switch m.session.Stage {
	case app.StageCollecting:
		text := m.symptoms.Value()
		if err := app.ValidateSymptoms(text); err != nil {
			m.status = err.Error()
			return nil
		}
		m.busy = true
		m.status = ""
		return tea.Batch(m.analyzeCmd(text), m.spinCmd())

	case app.StageAwaitingFollowUp:
		m.syncAnswers()
		round := m.session.Round
		if round == nil {
			return nil
		}
		if idx := round.FirstUnanswered(); idx != -1 {
			m.status = "Please answer every question before submitting."
			m.setFocus(idx)
			return nil
		}
		m.busy = true
		m.status = ""
		return tea.Batch(m.analyzeCmd(round.Transcript()), m.spinCmd())
	}

	return nil
}

func (m *Model) analyzeCmd(symptoms string) tea.Cmd {
	backend, threadID, timeout := m.backend, m.session.ThreadID, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := backend.Analyze(ctx, symptoms, threadID)
		return analyzeResultMsg{resp: resp, err: err}
	}
}

func (m *Model) researchCmd() tea.Cmd {
	backend, threadID, timeout := m.backend, m.session.ThreadID, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := backend.WebResearch(ctx, threadID)
		return researchResultMsg{resp: resp, err: err}
	}
}

func (m *Model) spinCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinMsg{}
	})
}

// rebuildAnswerInputs makes one text input per pending follow-up question, or
// drops them when the backend stopped asking.
func (m *Model) rebuildAnswerInputs() {
	round := m.session.Round
	if m.session.Stage != app.StageAwaitingFollowUp || round == nil {
		m.answers = nil
		m.focusIdx = 0
		return
	}

	m.answers = make([]textinput.Model, len(round.Questions))
	for i := range round.Questions {
		ti := textinput.New()
		ti.Placeholder = "Your answer"
		ti.Prompt = "> "
		ti.Width = max(20, m.width-12)
		m.answers[i] = ti
	}
	m.focusIdx = 0
	if len(m.answers) > 0 {
		m.answers[0].Focus()
	}
}

func (m *Model) moveFocus(delta int) {
	if len(m.answers) == 0 {
		return
	}
	m.setFocus((m.focusIdx + delta + len(m.answers)) % len(m.answers))
}

func (m *Model) setFocus(idx int) {
	if idx < 0 || idx >= len(m.answers) {
		return
	}
	m.answers[m.focusIdx].Blur()
	m.focusIdx = idx
	m.answers[idx].Focus()
}

// syncAnswers copies the widget values into the round before validation.
func (m *Model) syncAnswers() {
	round := m.session.Round
	if round == nil {
		return
	}
	for i := range m.answers {
		round.SetAnswer(i, m.answers[i].Value())
	}
}

func (m *Model) editing() bool {
	switch m.session.Stage {
	case app.StageCollecting, app.StageAwaitingFollowUp:
		return true
	default:
		return false
	}
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.session.Stage {
	case app.StageCollecting:
		m.symptoms, cmd = m.symptoms.Update(msg)
	case app.StageAwaitingFollowUp:
		if m.focusIdx < len(m.answers) {
			m.answers[m.focusIdx], cmd = m.answers[m.focusIdx].Update(msg)
		}
	}
	return cmd
}
