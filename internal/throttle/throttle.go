package throttle

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Defaults mirror the kiosk login form.
const (
	DefaultMaxAttempts     = 3
	DefaultLockoutDuration = 5 * time.Minute
	DefaultTickInterval    = time.Second
)

var errMissingRole = errors.New("login response did not include a role")

// State is the throttle's position in its two-state cycle.
type State int

const (
	StateIdle State = iota
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	default:
		return "idle"
	}
}

// Outcome classifies what a single Submit did.
type Outcome int

const (
	OutcomeAuthenticated Outcome = iota + 1
	OutcomeInvalid
	OutcomeRejected
	OutcomeLockedOut
	OutcomeThrottled
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeLockedOut:
		return "locked_out"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Result describes a completed submission.
type Result struct {
	Outcome   Outcome
	Role      Role
	Target    Target
	Failures  int
	Remaining time.Duration
}

// Snapshot is a point-in-time view of the throttle state.
type Snapshot struct {
	State        State
	Failures     int
	LockoutUntil time.Time
	Remaining    time.Duration
}

// Config tunes the throttle. Zero values fall back to the defaults.
type Config struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	TickInterval    time.Duration
	Clock           func() time.Time
	Scheduler       Scheduler
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = DefaultLockoutDuration
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.Scheduler == nil {
		c.Scheduler = TickerScheduler{}
	}
	return c
}

type effect func(Presenter)

// Throttle owns the login state of one session.
type Throttle struct {
	auth      Authenticator
	presenter Presenter
	cfg       Config

	// submitMu serializes submissions so overlapping requests cannot
	// double-count failures.
	submitMu sync.Mutex
	// mu guards the fields below. It is never held across the authenticator
	// call or while the presenter runs.
	mu sync.Mutex
	// emitMu keeps presenter batches in state order.
	emitMu sync.Mutex

	failures     int
	lockoutUntil *time.Time
	stopTick     func()
	closed       bool
}

// New creates a throttle in the Idle state with no recorded failures.
func New(auth Authenticator, presenter Presenter, cfg Config) *Throttle {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	return &Throttle{
		auth:      auth,
		presenter: presenter,
		cfg:       cfg.withDefaults(),
	}
}

// Submit processes one login attempt.
//
// The returned error is nil only for a successful login. Use errors.As with
// *ValidationError, *AuthenticationFailure, *TransportError or *LockedError,
// or errors.Is with ErrLocked, to tell the cases apart.
func (t *Throttle) Submit(ctx context.Context, attempt Attempt) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	t.submitMu.Lock()
	defer t.submitMu.Unlock()

	t.mu.Lock()
	var effects []effect

	if t.lockoutUntil != nil {
		until := *t.lockoutUntil
		remaining := until.Sub(t.now())
		if remaining > 0 {
			effects = append(effects, showLockout(waitMessage(remaining)))
			result := Result{Outcome: OutcomeThrottled, Failures: t.failures, Remaining: remaining}
			t.release(effects)
			return result, &LockedError{Until: until, Remaining: remaining}
		}
		effects = append(effects, t.expire()...)
	}

	if err := ValidatePasscode(attempt.Passcode); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			effects = append(effects, showError(verr.Message))
		}
		result := Result{Outcome: OutcomeInvalid, Failures: t.failures}
		t.release(effects)
		return result, err
	}

	if t.auth == nil {
		effects = append(effects, showError(GenericErrorMessage))
		result := Result{Outcome: OutcomeTransportError, Failures: t.failures}
		t.release(effects)
		return result, &TransportError{Err: errors.New("no authenticator configured")}
	}
	t.release(effects)

	role, authErr := t.auth.Authenticate(ctx, Credentials{
		Username: attempt.Username,
		Passcode: attempt.Passcode,
	})
	if authErr == nil && role == "" {
		authErr = &TransportError{Err: errMissingRole}
	}

	t.mu.Lock()
	return t.complete(role, authErr)
}

// complete applies the authenticator's answer. Called with mu held; releases it.
func (t *Throttle) complete(role Role, authErr error) (Result, error) {
	var effects []effect

	if authErr == nil {
		t.failures = 0
		result := Result{Outcome: OutcomeAuthenticated, Role: role}
		if target, ok := role.Target(); ok {
			result.Target = target
			effects = append(effects, navigate(target))
		}
		t.release(effects)
		return result, nil
	}

	var failure *AuthenticationFailure
	if errors.As(authErr, &failure) {
		t.failures++
		if t.failures < t.cfg.MaxAttempts {
			effects = append(effects, showError(failure.DisplayMessage()), clearFields)
			result := Result{Outcome: OutcomeRejected, Failures: t.failures}
			t.release(effects)
			return result, failure
		}

		until := t.now().Add(t.cfg.LockoutDuration)
		t.lockoutUntil = &until
		t.failures = 0
		t.startTick()

		effects = append(effects, clearFields, showLockout(lockoutMessage(t.cfg.LockoutDuration)))
		result := Result{Outcome: OutcomeLockedOut, Remaining: t.cfg.LockoutDuration}
		t.release(effects)
		return result, &LockedError{Until: until, Remaining: t.cfg.LockoutDuration, Cause: failure}
	}

	var transport *TransportError
	if !errors.As(authErr, &transport) {
		transport = &TransportError{Err: authErr}
	}
	effects = append(effects, showError(GenericErrorMessage))
	result := Result{Outcome: OutcomeTransportError, Failures: t.failures}
	t.release(effects)
	return result, transport
}

// Tick re-evaluates the lockout. While locked it refreshes the countdown; once
// the deadline has passed it returns to Idle. In Idle it does nothing.
func (t *Throttle) Tick() {
	t.mu.Lock()
	if t.lockoutUntil == nil {
		t.mu.Unlock()
		return
	}

	var effects []effect
	remaining := t.lockoutUntil.Sub(t.now())
	if remaining <= 0 {
		effects = t.expire()
	} else {
		effects = append(effects, showLockout(waitMessage(remaining)))
	}
	t.release(effects)
}

// Snapshot reports the current state. Expiry is evaluated against the clock,
// so a lapsed lockout reads as Idle even before the next tick.
func (t *Throttle) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{State: StateIdle, Failures: t.failures}
	if t.lockoutUntil != nil {
		if remaining := t.lockoutUntil.Sub(t.now()); remaining > 0 {
			snap.State = StateLocked
			snap.LockoutUntil = *t.lockoutUntil
			snap.Remaining = remaining
		}
	}
	return snap
}

// Close stops the countdown task. The throttle stays usable but no new
// countdown is started afterwards.
func (t *Throttle) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.stopTickLocked()
}

func (t *Throttle) expire() []effect {
	t.lockoutUntil = nil
	t.failures = 0
	t.stopTickLocked()
	return []effect{hideLockout}
}

func (t *Throttle) startTick() {
	t.stopTickLocked()
	if t.closed {
		return
	}
	t.stopTick = t.cfg.Scheduler.Every(t.cfg.TickInterval, t.Tick)
}

func (t *Throttle) stopTickLocked() {
	if t.stopTick != nil {
		t.stopTick()
		t.stopTick = nil
	}
}

// release unlocks mu and delivers effects in order. Taking emitMu before
// dropping mu keeps batches in the same order as the state changes.
func (t *Throttle) release(effects []effect) {
	t.emitMu.Lock()
	t.mu.Unlock()
	defer t.emitMu.Unlock()

	for _, apply := range effects {
		apply(t.presenter)
	}
}

func (t *Throttle) now() time.Time {
	if t.cfg.Clock != nil {
		return t.cfg.Clock()
	}
	return time.Now()
}

func showError(text string) effect {
	return func(p Presenter) { p.ShowError(text) }
}

func showLockout(text string) effect {
	return func(p Presenter) { p.ShowLockout(text) }
}

func navigate(target Target) effect {
	return func(p Presenter) { p.Navigate(target) }
}

func hideLockout(p Presenter) { p.HideLockout() }

func clearFields(p Presenter) { p.ClearCredentialFields() }
