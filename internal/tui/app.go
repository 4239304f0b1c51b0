package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/worktimer/internal/submit"
	"github.com/Tiliavir/worktimer/internal/timer"
)

// Timer is the engine surface the UI drives.
type Timer interface {
	Start(ctx context.Context) bool
	TakeBreak(ctx context.Context) bool
	EndBreak(ctx context.Context) bool
	LogOut(ctx context.Context) bool
	DisplayState() timer.DisplayState
	submit.Session
}

// Submitter delivers a logged out session.
type Submitter interface {
	Submit(ctx context.Context, sess submit.Session, employeeName, blockers string) (submit.Result, error)
}

type viewMode int

const (
	modeTimer viewMode = iota
	modeSubmit
)

type tickMsg time.Time

type submittedMsg struct {
	res submit.Result
	err error
}

// Model is the bubbletea model of `wt watch`.
type Model struct {
	ctx          context.Context
	timer        Timer
	submitter    Submitter
	employeeName string

	mode       viewMode
	display    timer.DisplayState
	textarea   textarea.Model
	help       help.Model
	keys       keyMap
	submitting bool
	status     string
	statusErr  bool
	width      int
}

// New builds the UI model. ctx bounds engine calls and submissions.
func New(ctx context.Context, t Timer, s Submitter, employeeName string) Model {
	ta := textarea.New()
	ta.Placeholder = "Any blockers today? (optional)"
	ta.ShowLineNumbers = false
	ta.SetHeight(4)

	return Model{
		ctx:          ctx,
		timer:        t,
		submitter:    s,
		employeeName: employeeName,
		display:      t.DisplayState(),
		textarea:     ta,
		help:         help.New(),
		keys:         keys,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Model) refresh() {
	m.display = m.timer.DisplayState()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.textarea.SetWidth(min(msg.Width-8, 72))
		return m, nil

	case submittedMsg:
		return m.handleSubmitted(msg), nil
	}

	if m.mode == modeSubmit {
		return m.updateSubmit(msg)
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Start):
		m.act(m.timer.Start, "Started", "Already started today")
	case key.Matches(keyMsg, m.keys.Break):
		m.act(m.timer.TakeBreak, "On break", "Not running")
	case key.Matches(keyMsg, m.keys.Resume):
		m.act(m.timer.EndBreak, "Back to work", "Not on a break")
	case key.Matches(keyMsg, m.keys.LogOut):
		m.timer.LogOut(m.ctx)
		m.refresh()
		if !m.display.Ended {
			m.setStatus("Start the timer before logging out", true)
			return m, nil
		}
		m.mode = modeSubmit
		m.setStatus("", false)
		return m, m.textarea.Focus()
	}
	return m, nil
}

func (m *Model) act(apply func(context.Context) bool, done, ignored string) {
	if apply(m.ctx) {
		m.setStatus(done, false)
	} else {
		m.setStatus(ignored, true)
	}
	m.refresh()
}

func (m Model) updateSubmit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, isKey := msg.(tea.KeyMsg); isKey {
		switch {
		case keyMsg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.Close):
			if m.submitting {
				return m, nil
			}
			m.mode = modeTimer
			m.textarea.Blur()
			m.setStatus("Logged out. Press l to submit your work log.", false)
			return m, nil
		case key.Matches(keyMsg, m.keys.Submit):
			if m.submitting {
				return m, nil
			}
			m.submitting = true
			m.setStatus("Submitting…", false)
			return m, m.submit(m.textarea.Value())
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) submit(blockers string) tea.Cmd {
	ctx, s, t, name := m.ctx, m.submitter, m.timer, m.employeeName
	return func() tea.Msg {
		res, err := s.Submit(ctx, t, name, blockers)
		return submittedMsg{res: res, err: err}
	}
}

// handleSubmitted closes the dialog unless nothing was delivered, so the
// user can retry.
func (m Model) handleSubmitted(msg submittedMsg) Model {
	m.submitting = false
	m.refresh()
	if msg.err != nil {
		m.setStatus(msg.err.Error(), true)
		return m
	}
	if !msg.res.Outcome.Delivered() {
		m.setStatus(msg.res.Outcome.Message(), true)
		return m
	}
	m.mode = modeTimer
	m.textarea.Reset()
	m.textarea.Blur()
	m.setStatus(msg.res.Outcome.Message(), msg.res.Outcome != submit.BothOK)
	return m
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, t Timer, s Submitter, employeeName string) error {
	p := tea.NewProgram(New(ctx, t, s, employeeName), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
