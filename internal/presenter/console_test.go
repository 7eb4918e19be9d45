package presenter

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/posadmin/internal/throttle"
)

func TestConsoleShowError(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowError("Passcode is required.")
	assert.Equal(t, "error: Passcode is required.\n", buf.String())
}

func TestConsoleCountdownRedrawsInPlace(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowLockout("Too many failed attempts. Please wait for 5 minutes before trying again.")
	c.ShowLockout("Please wait 4:59 before trying again.")
	require.True(t, c.Locked())

	out := buf.String()
	assert.Contains(t, out, "\rToo many failed attempts.")
	assert.Contains(t, out, "\rPlease wait 4:59 before trying again.")
	assert.NotContains(t, out, "\n")

	c.HideLockout()
	assert.False(t, c.Locked())
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\r")))
}

func TestConsoleHideWithoutLockoutIsSilent(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.HideLockout()
	assert.Empty(t, buf.String())
}

func TestConsoleErrorAfterCountdownStartsNewLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowLockout("Please wait 0:01 before trying again.")
	c.ShowError("An error occurred. Please try again.")
	assert.Equal(t, "\rPlease wait 0:01 before trying again.\nerror: An error occurred. Please try again.\n", buf.String())
}

func TestConsoleNavigate(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.BaseURL = "http://pos.local:5000/"

	_, ok := c.Target()
	require.False(t, ok)

	c.Navigate(throttle.TargetManagement)
	target, ok := c.Target()
	require.True(t, ok)
	assert.Equal(t, throttle.TargetManagement, target)
	assert.Contains(t, buf.String(), "http://pos.local:5000/managers")
}

func TestConsoleDrivenByThrottle(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	auth := throttle.AuthenticatorFunc(func(context.Context, throttle.Credentials) (throttle.Role, error) {
		return "", &throttle.AuthenticationFailure{Status: 401, Message: "Invalid Credentials"}
	})
	lock := throttle.New(auth, c, throttle.Config{MaxAttempts: 2, LockoutDuration: time.Minute, Scheduler: idleScheduler{}})
	defer lock.Close()

	_, _ = lock.Submit(context.Background(), throttle.Attempt{Passcode: "1234"})
	_, _ = lock.Submit(context.Background(), throttle.Attempt{Passcode: "1234"})

	assert.Contains(t, buf.String(), "error: Invalid Credentials\n")
	assert.Contains(t, buf.String(), "\rToo many failed attempts. Please wait for 1 minute before trying again.")
	assert.Equal(t, 2, c.Cleared())
	assert.True(t, c.Locked())
}

type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) func() { return func() {} }
