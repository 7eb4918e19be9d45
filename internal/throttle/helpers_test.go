package throttle

import (
	"context"
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// manualScheduler records the recurring task so tests can fire it on demand.
type manualScheduler struct {
	mu       sync.Mutex
	fn       func()
	interval time.Duration
	active   bool
	starts   int
	stops    int
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	s.interval = interval
	s.active = true
	s.starts++

	stopped := false
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if stopped {
			return
		}
		stopped = true
		s.active = false
		s.stops++
	}
}

func (s *manualScheduler) Fire() bool {
	s.mu.Lock()
	fn, active := s.fn, s.active
	s.mu.Unlock()
	if !active || fn == nil {
		return false
	}
	fn()
	return true
}

func (s *manualScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

type recordingPresenter struct {
	mu    sync.Mutex
	calls []string
}

func (p *recordingPresenter) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *recordingPresenter) ShowError(text string)   { p.record("error:" + text) }
func (p *recordingPresenter) ShowLockout(text string) { p.record("lockout:" + text) }
func (p *recordingPresenter) HideLockout()            { p.record("hide") }
func (p *recordingPresenter) ClearCredentialFields()  { p.record("clear") }
func (p *recordingPresenter) Navigate(target Target)  { p.record("navigate:" + string(target)) }

func (p *recordingPresenter) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *recordingPresenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

func (p *recordingPresenter) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

// stubAuth answers from a per-passcode table and counts calls.
type stubAuth struct {
	mu        sync.Mutex
	calls     int
	responses map[string]stubResponse
}

type stubResponse struct {
	role Role
	err  error
}

func newStubAuth() *stubAuth {
	return &stubAuth{responses: map[string]stubResponse{
		"1111": {role: RoleManager},
		"2222": {role: RoleCashier},
		"9999": {err: &AuthenticationFailure{Status: 401, Message: "Invalid Credentials"}},
	}}
}

func (a *stubAuth) Authenticate(ctx context.Context, creds Credentials) (Role, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	resp, ok := a.responses[creds.Passcode]
	if !ok {
		return "", &AuthenticationFailure{Status: 401, Message: "Unknown passcode"}
	}
	return resp.role, resp.err
}

func (a *stubAuth) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fixture struct {
	clock     *fakeClock
	scheduler *manualScheduler
	presenter *recordingPresenter
	auth      *stubAuth
	throttle  *Throttle
}

func newFixture() *fixture {
	f := &fixture{
		clock:     newFakeClock(),
		scheduler: &manualScheduler{},
		presenter: &recordingPresenter{},
		auth:      newStubAuth(),
	}
	f.throttle = New(f.auth, f.presenter, Config{
		Clock:     f.clock.Now,
		Scheduler: f.scheduler,
	})
	return f
}

func (f *fixture) submit(passcode string) (Result, error) {
	return f.throttle.Submit(context.Background(), Attempt{Username: "jdoe", Passcode: passcode})
}
