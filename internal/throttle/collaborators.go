package throttle

import (
	"context"
	"strings"
)

// Role is the account role returned by a successful login.
type Role string

const (
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Target is the view a session navigates to after logging in.
type Target string

const (
	TargetManagement Target = "/managers"
	TargetSales      Target = "/sales_order"
)

// ParseRole normalizes a role string from the backend.
func ParseRole(value string) Role {
	return Role(strings.ToLower(strings.TrimSpace(value)))
}

// Target maps a role to its landing view. Unknown roles have no target.
func (r Role) Target() (Target, bool) {
	switch r {
	case RoleManager:
		return TargetManagement, true
	case RoleCashier:
		return TargetSales, true
	default:
		return "", false
	}
}

// Attempt is a single login submission as typed by the user.
type Attempt struct {
	Username string
	Passcode string
}

// Credentials are forwarded to the Authenticator once the passcode is valid.
type Credentials struct {
	Username string `json:"username"`
	Passcode string `json:"passcode"`
}

// Authenticator verifies credentials against the backend.
//
// A rejection must be reported as *AuthenticationFailure. Anything else,
// including context cancellation, is treated as a transport failure.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Role, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, creds Credentials) (Role, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, creds Credentials) (Role, error) {
	return f(ctx, creds)
}

// Presenter receives the observable output of each transition.
//
// Calls for a single transition arrive in order and are never interleaved with
// those of another transition. Implementations must not call back into the
// Throttle from these methods.
type Presenter interface {
	ShowError(text string)
	ShowLockout(text string)
	HideLockout()
	ClearCredentialFields()
	Navigate(target Target)
}

type nopPresenter struct{}

func (nopPresenter) ShowError(string)       {}
func (nopPresenter) ShowLockout(string)     {}
func (nopPresenter) HideLockout()           {}
func (nopPresenter) ClearCredentialFields() {}
func (nopPresenter) Navigate(Target)        {}
