package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tillpoint/posadmin/internal/throttle"
)

// ErrorMsg sets the error line under the form.
type ErrorMsg struct{ Text string }

// LockoutMsg shows or refreshes the lockout countdown.
type LockoutMsg struct{ Text string }

// HideLockoutMsg removes the countdown.
type HideLockoutMsg struct{}

// ClearFieldsMsg empties both inputs.
type ClearFieldsMsg struct{}

// NavigateMsg ends the form with a landing view.
type NavigateMsg struct{ Target throttle.Target }

// submitDoneMsg reports that a Submit call returned.
type submitDoneMsg struct {
	result throttle.Result
	err    error
}

// Presenter forwards throttle effects into a running program as messages.
type Presenter struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ throttle.Presenter = (*Presenter)(nil)

// NewPresenter returns a presenter that drops messages until Attach is called.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Attach routes messages to p.
func (p *Presenter) Attach(program *tea.Program) {
	p.AttachFunc(program.Send)
}

// AttachFunc routes messages to send.
func (p *Presenter) AttachFunc(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *Presenter) emit(msg tea.Msg) {
	p.mu.RLock()
	send := p.send
	p.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (p *Presenter) ShowError(text string)           { p.emit(ErrorMsg{Text: text}) }
func (p *Presenter) ShowLockout(text string)         { p.emit(LockoutMsg{Text: text}) }
func (p *Presenter) HideLockout()                    { p.emit(HideLockoutMsg{}) }
func (p *Presenter) ClearCredentialFields()          { p.emit(ClearFieldsMsg{}) }
func (p *Presenter) Navigate(target throttle.Target) { p.emit(NavigateMsg{Target: target}) }
