// Package presenter renders throttle transitions for a line-oriented terminal.
package presenter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tillpoint/posadmin/internal/throttle"
)

// Console writes throttle output to a terminal. The lockout line is redrawn
// in place with a carriage return while the countdown runs.
type Console struct {
	// BaseURL is prefixed to navigation targets when set.
	BaseURL string

	mu         sync.Mutex
	out        io.Writer
	lockoutLen int
	target     throttle.Target
	navigated  bool
	cleared    int
}

var _ throttle.Presenter = (*Console)(nil)

// NewConsole returns a presenter writing to out.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{out: out}
}

func (c *Console) ShowError(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLockoutLine()
	_, _ = fmt.Fprintf(c.out, "error: %s\n", text)
}

func (c *Console) ShowLockout(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := text
	if pad := c.lockoutLen - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	_, _ = fmt.Fprintf(c.out, "\r%s", line)
	c.lockoutLen = len(text)
}

func (c *Console) HideLockout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lockoutLen == 0 {
		return
	}
	_, _ = fmt.Fprintf(c.out, "\r%s\r", strings.Repeat(" ", c.lockoutLen))
	c.lockoutLen = 0
}

// ClearCredentialFields has nothing to erase on a console; it is counted so
// callers know the next prompt starts fresh.
func (c *Console) ClearCredentialFields() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
}

func (c *Console) Navigate(target throttle.Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLockoutLine()
	c.target = target
	c.navigated = true
	_, _ = fmt.Fprintf(c.out, "Login successful. Continue at %s\n", c.resolve(target))
}

// Target reports the last navigation target, if any.
func (c *Console) Target() (throttle.Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.navigated
}

// Cleared reports how many times the credential fields were reset.
func (c *Console) Cleared() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared
}

// Locked reports whether a countdown line is on screen.
func (c *Console) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lockoutLen > 0
}

func (c *Console) resolve(target throttle.Target) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		return string(target)
	}
	return base + string(target)
}

// endLockoutLine moves past an in-place countdown so other output starts on a
// fresh line.
func (c *Console) endLockoutLine() {
	if c.lockoutLen > 0 {
		_, _ = io.WriteString(c.out, "\n")
		c.lockoutLen = 0
	}
}
