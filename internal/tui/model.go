// Package tui is the full-screen login form.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tillpoint/posadmin/internal/throttle"
)

// Submitter processes one login attempt. *throttle.Throttle satisfies it.
type Submitter interface {
	Submit(ctx context.Context, attempt throttle.Attempt) (throttle.Result, error)
}

const (
	focusUsername = iota
	focusPasscode
)

// Model is the bubbletea model of the login form.
type Model struct {
	ctx       context.Context
	submitter Submitter

	username textinput.Model
	passcode textinput.Model
	focus    int

	errText    string
	lockText   string
	submitting bool

	target    throttle.Target
	navigated bool
	cancelled bool
}

// NewModel builds the form. username pre-fills the first field.
func NewModel(ctx context.Context, submitter Submitter, username string) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = ""
	user.CharLimit = 64
	user.Width = 24
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "passcode"
	pass.Prompt = ""
	pass.CharLimit = 32
	pass.Width = 24
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m := Model{ctx: ctx, submitter: submitter, username: user, passcode: pass}
	if strings.TrimSpace(username) != "" {
		m.focus = focusPasscode
		m.passcode.Focus()
	} else {
		m.username.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			m.toggleFocus()
			return m, nil
		case tea.KeyCtrlR:
			m.togglePasscodeVisibility()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}

	case ErrorMsg:
		m.errText = msg.Text
		return m, nil

	case LockoutMsg:
		m.lockText = msg.Text
		m.errText = ""
		return m, nil

	case HideLockoutMsg:
		m.lockText = ""
		return m, nil

	case ClearFieldsMsg:
		m.username.Reset()
		m.passcode.Reset()
		m.focus = focusPasscode
		m.toggleFocus()
		return m, nil

	case NavigateMsg:
		m.target = msg.Target
		m.navigated = true
		return m, tea.Quit

	case submitDoneMsg:
		m.submitting = false
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.passcode, cmd = m.passcode.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == focusUsername {
		m.focus = focusPasscode
		m.username.Blur()
		m.passcode.Focus()
		return
	}
	m.focus = focusUsername
	m.passcode.Blur()
	m.username.Focus()
}

func (m *Model) togglePasscodeVisibility() {
	if m.passcode.EchoMode == textinput.EchoPassword {
		m.passcode.EchoMode = textinput.EchoNormal
		return
	}
	m.passcode.EchoMode = textinput.EchoPassword
}

// PasscodeVisible reports whether the passcode is shown in clear text.
func (m Model) PasscodeVisible() bool {
	return m.passcode.EchoMode == textinput.EchoNormal
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.submitting || m.submitter == nil {
		return m, nil
	}
	m.submitting = true
	if m.lockText == "" {
		m.errText = ""
	}

	ctx := m.ctx
	submitter := m.submitter
	attempt := throttle.Attempt{
		Username: strings.TrimSpace(m.username.Value()),
		Passcode: m.passcode.Value(),
	}
	return m, func() tea.Msg {
		result, err := submitter.Submit(ctx, attempt)
		return submitDoneMsg{result: result, err: err}
	}
}

func (m Model) View() string {
	if m.navigated {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("POS Login"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Username") + " " + m.username.View() + "\n")
	b.WriteString(labelStyle.Render("Passcode") + " " + m.passcode.View() + "\n")

	if m.lockText != "" {
		b.WriteString("\n" + lockoutStyle.Render(m.lockText) + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText) + "\n")
	}
	if m.submitting {
		b.WriteString("\n" + hintStyle.Render("Checking…") + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("enter: log in • tab: switch field • ctrl+r: show/hide passcode • esc: quit"))

	return frameStyle.Render(b.String()) + "\n"
}

// Target reports where a successful login landed.
func (m Model) Target() (throttle.Target, bool) {
	return m.target, m.navigated
}

// Cancelled reports whether the user quit without logging in.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Run shows the form until the user logs in or quits. The presenter is
// attached to the program before it starts.
func Run(ctx context.Context, submitter Submitter, presenter *Presenter, username string, opts ...tea.ProgramOption) (Model, error) {
	program := tea.NewProgram(NewModel(ctx, submitter, username), opts...)
	if presenter != nil {
		presenter.Attach(program)
	}

	final, err := program.Run()
	if err != nil {
		return Model{}, err
	}
	model, _ := final.(Model)
	return model, nil
}
