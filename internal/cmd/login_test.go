package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/posadmin/internal/backend"
	"github.com/tillpoint/posadmin/internal/backend/backendtest"
	"github.com/tillpoint/posadmin/internal/presenter"
	"github.com/tillpoint/posadmin/internal/throttle"
)

func newLoginFixture(t *testing.T, cfg throttle.Config) (*backendtest.Server, *presenter.Console, *throttle.Throttle, *bytes.Buffer) {
	t.Helper()

	srv := backendtest.New(
		backendtest.Account{Username: "maria", Passcode: "1234", Role: "manager"},
		backendtest.Account{Username: "joel", Passcode: "5678", Role: "cashier"},
	)
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	var out bytes.Buffer
	console := presenter.NewConsole(&out)
	console.BaseURL = srv.URL

	lock := throttle.New(client, console, cfg)
	t.Cleanup(lock.Close)
	return srv, console, lock, &out
}

func TestConsoleLoginRetriesUntilSuccess(t *testing.T) {
	_, console, lock, out := newLoginFixture(t, throttle.Config{})

	input := strings.NewReader("maria\n12a4\nmaria\n9999\nmaria\n1234\n")
	result, err := runConsoleLogin(context.Background(), meteredSubmitter{lock: lock}, console, newLoginIO(input, out), "")
	require.NoError(t, err)
	assert.Equal(t, throttle.TargetManagement, result.Target)

	text := out.String()
	assert.Contains(t, text, "error: Passcode should only contain numbers.")
	assert.Contains(t, text, "error: Invalid Credentials")
	assert.Contains(t, text, "/managers")

	target, ok := console.Target()
	require.True(t, ok)
	assert.Equal(t, throttle.TargetManagement, target)
}

func TestConsoleLoginFixedUsername(t *testing.T) {
	_, console, lock, out := newLoginFixture(t, throttle.Config{})

	input := strings.NewReader("5678\n")
	result, err := runConsoleLogin(context.Background(), meteredSubmitter{lock: lock}, console, newLoginIO(input, out), "joel")
	require.NoError(t, err)
	assert.Equal(t, throttle.TargetSales, result.Target)
	assert.NotContains(t, out.String(), "Username:")
}

func TestConsoleLoginWaitsOutLockout(t *testing.T) {
	srv, console, lock, out := newLoginFixture(t, throttle.Config{
		MaxAttempts:     2,
		LockoutDuration: 150 * time.Millisecond,
		TickInterval:    10 * time.Millisecond,
	})

	input := strings.NewReader("9999\n9999\n1234\n")
	started := time.Now()
	result, err := runConsoleLogin(context.Background(), meteredSubmitter{lock: lock}, console, newLoginIO(input, out), "maria")
	require.NoError(t, err)
	assert.Equal(t, throttle.TargetManagement, result.Target)

	assert.GreaterOrEqual(t, time.Since(started), 150*time.Millisecond)
	assert.Equal(t, 3, srv.Hits("/login"))
	assert.Contains(t, out.String(), "Too many failed attempts.")
}

func TestConsoleLoginEndOfInput(t *testing.T) {
	_, console, lock, out := newLoginFixture(t, throttle.Config{})

	_, err := runConsoleLogin(context.Background(), meteredSubmitter{lock: lock}, console, newLoginIO(strings.NewReader("maria\n"), out), "")
	require.ErrorIs(t, err, errLoginCancelled)
}

func TestConsoleLoginCancelledWhileLocked(t *testing.T) {
	_, console, lock, out := newLoginFixture(t, throttle.Config{MaxAttempts: 1, LockoutDuration: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runConsoleLogin(ctx, meteredSubmitter{lock: lock}, console, newLoginIO(strings.NewReader("9999\n1234\n"), out), "maria")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, throttle.StateLocked, lock.Snapshot().State)
}

func TestMeteredSubmitterPassesResultThrough(t *testing.T) {
	_, _, lock, _ := newLoginFixture(t, throttle.Config{})

	result, err := meteredSubmitter{lock: lock}.Submit(context.Background(), throttle.Attempt{Passcode: ""})
	require.Error(t, err)
	assert.Equal(t, throttle.OutcomeInvalid, result.Outcome)
}
