// Package common defines shared constants and sentinel errors used across
// client and server layers of Daybook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorMalformedRecord marks a stored settings blob that failed to
	// parse. Callers substitute defaults and continue instead of aborting
	// the user session.
	ErrorMalformedRecord = errors.New("malformed stored record")

	// Service-level errors (generic/internal flow control).
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorInvalidArgument = errors.New("invalid argument")

	// ErrorRemoteUnavailable marks a failed calendar collaborator call or
	// a user without a stored calendar authorization. Never retried inside
	// the core; surfaced to the caller as-is.
	ErrorRemoteUnavailable = errors.New("calendar unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
