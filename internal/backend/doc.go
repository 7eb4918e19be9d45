// Package backend is the HTTP client for the point-of-sale admin backend.
//
// It covers the login endpoint used by the throttle and the user and staff
// management endpoints behind the admin panel's data grids. Every request is
// paced by a token-bucket limiter and tagged with an X-Request-ID header.
package backend
