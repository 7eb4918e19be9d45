// Package throttle implements the session-scoped login attempt throttle.
//
// A Throttle sits between the login form and the backend authenticator. It
// validates the passcode shape, forwards well-formed credentials, counts
// consecutive credential rejections and, once the threshold is reached, locks
// the session for a fixed duration while a recurring tick publishes a live
// countdown. The lock lifts on its own once the clock passes the deadline.
//
// All user-visible output is expressed as Presenter commands; the package never
// renders anything itself.
package throttle
