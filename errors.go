package dexshare

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned when the client configuration is invalid
// in a way that has no dedicated reason code (e.g. an unknown region).
var ErrInvalidConfig = errors.New("invalid configuration")

// ArgumentReason identifies why an ArgumentError was raised. Reasons map
// one-to-one to local validation rules so callers can branch on them
// programmatically instead of parsing messages.
type ArgumentReason int

const (
	// ReasonNoneUserIDProvided means neither a username nor an account ID
	// was supplied at construction.
	ReasonNoneUserIDProvided ArgumentReason = iota
	// ReasonTooManyUserIDsProvided means both a username and an account ID
	// were supplied; exactly one is required.
	ReasonTooManyUserIDsProvided
	// ReasonUsernameInvalid means the username is empty or malformed.
	ReasonUsernameInvalid
	// ReasonPasswordInvalid means the password is empty.
	ReasonPasswordInvalid
	// ReasonAccountIDInvalid means the account ID is not a UUID.
	ReasonAccountIDInvalid
	// ReasonAccountIDDefault means the account ID is the all-zero UUID.
	ReasonAccountIDDefault
	// ReasonSessionIDInvalid means the session ID is not a UUID.
	ReasonSessionIDInvalid
	// ReasonSessionIDDefault means the session ID is the all-zero UUID.
	ReasonSessionIDDefault
	// ReasonMinutesInvalid means minutes is outside [0, MaxMinutes].
	ReasonMinutesInvalid
	// ReasonMaxCountInvalid means maxCount is outside [0, MaxMaxCount].
	ReasonMaxCountInvalid
	// ReasonGlucoseReadingInvalid means a raw reading record was missing
	// required fields or carried values that could not be parsed.
	ReasonGlucoseReadingInvalid
)

// String returns a human-readable description of the reason.
func (r ArgumentReason) String() string {
	switch r {
	case ReasonNoneUserIDProvided:
		return "at least one user ID must be provided"
	case ReasonTooManyUserIDsProvided:
		return "only one user ID must be provided"
	case ReasonUsernameInvalid:
		return "username must be a non-empty string"
	case ReasonPasswordInvalid:
		return "password must be a non-empty string"
	case ReasonAccountIDInvalid:
		return "account ID must be a UUID"
	case ReasonAccountIDDefault:
		return "account ID is the default UUID"
	case ReasonSessionIDInvalid:
		return "session ID must be a UUID"
	case ReasonSessionIDDefault:
		return "session ID is the default UUID"
	case ReasonMinutesInvalid:
		return "minutes must be an integer between 0 and 1440"
	case ReasonMaxCountInvalid:
		return "max count must be an integer between 0 and 288"
	case ReasonGlucoseReadingInvalid:
		return "glucose reading record incorrectly formatted"
	default:
		return "unknown argument error"
	}
}

// ArgumentError reports that caller-supplied or locally-held state failed
// validation. It is always raised before a network call is made.
//
// Example:
//
//	readings, err := client.GetGlucoseReadings(ctx, 5000, 1)
//	var argErr *dexshare.ArgumentError
//	if errors.As(err, &argErr) && argErr.Reason == dexshare.ReasonMinutesInvalid {
//	    // fix the window and try again
//	}
type ArgumentError struct {
	Reason ArgumentReason
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error: %s", e.Reason)
}

// AccountReason identifies why an AccountError was raised.
type AccountReason int

const (
	// ReasonAuthenticationFailed means the server rejected the credentials.
	ReasonAuthenticationFailed AccountReason = iota
	// ReasonMaxAttemptsExceeded means the server locked the account after
	// too many failed authentication attempts.
	ReasonMaxAttemptsExceeded
)

// String returns a human-readable description of the reason.
func (r AccountReason) String() string {
	switch r {
	case ReasonAuthenticationFailed:
		return "failed to authenticate"
	case ReasonMaxAttemptsExceeded:
		return "maximum authentication attempts exceeded"
	default:
		return "unknown account error"
	}
}

// AccountError reports that the server rejected the supplied credentials.
type AccountError struct {
	Reason AccountReason
	cause  error
}

// Error implements the error interface.
func (e *AccountError) Error() string {
	return fmt.Sprintf("account error: %s", e.Reason)
}

// Unwrap returns the server response error that produced this error, if any.
func (e *AccountError) Unwrap() error {
	return e.cause
}

// SessionReason identifies why a SessionError was raised.
type SessionReason int

const (
	// ReasonSessionNotFound means the server has no record of the session ID,
	// typically because it expired.
	ReasonSessionNotFound SessionReason = iota
	// ReasonSessionNotValid means the server rejected the session ID as
	// malformed or revoked.
	ReasonSessionNotValid
)

// String returns a human-readable description of the reason.
func (r SessionReason) String() string {
	switch r {
	case ReasonSessionNotFound:
		return "session ID not found"
	case ReasonSessionNotValid:
		return "session ID not valid"
	default:
		return "unknown session error"
	}
}

// SessionError reports that the server rejected the session ID. This is the
// only error kind that triggers the client's one-shot session re-acquisition;
// everywhere else it propagates to the caller.
type SessionError struct {
	Reason SessionReason
	cause  error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("session error: %s", e.Reason)
}

// Unwrap returns the server response error that produced this error, if any.
func (e *SessionError) Unwrap() error {
	return e.cause
}

// APIError is a non-2xx Share API response whose error code did not decode
// to a known Session, Account, or Argument failure. It is returned unchanged
// so no failure is silently absorbed.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Code is the vendor error code from the response body, if present.
	Code string
	// Message is the vendor error message from the response body, if present.
	Message string
	// Endpoint is the Share API endpoint that produced the response.
	Endpoint string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error (status %d) from %s: %s: %s", e.StatusCode, e.Endpoint, e.Code, e.Message)
	}
	return fmt.Sprintf("api error (status %d) from %s", e.StatusCode, e.Endpoint)
}

// IsServerError returns true if the response carried a 5xx status.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// shareErrorRule maps a vendor error code, optionally narrowed by a message
// substring, to the domain error it represents. The empty substring matches
// any message.
type shareErrorRule struct {
	code    string
	substr  string
	resolve func(cause error) error
}

// shareErrorRules is the single decode table for server-signaled failures.
// Rules are evaluated in order; the first match wins.
var shareErrorRules = []shareErrorRule{
	{code: "SessionIdNotFound", resolve: func(cause error) error {
		return &SessionError{Reason: ReasonSessionNotFound, cause: cause}
	}},
	{code: "SessionNotValid", resolve: func(cause error) error {
		return &SessionError{Reason: ReasonSessionNotValid, cause: cause}
	}},
	// Defunct code kept for older deployments.
	{code: "AccountPasswordInvalid", resolve: func(cause error) error {
		return &AccountError{Reason: ReasonAuthenticationFailed, cause: cause}
	}},
	{code: "SSO_AuthenticateMaxAttemptsExceeded", resolve: func(cause error) error {
		return &AccountError{Reason: ReasonMaxAttemptsExceeded, cause: cause}
	}},
	{code: "SSO_InternalError", substr: "Cannot Authenticate by AccountName", resolve: func(cause error) error {
		return &AccountError{Reason: ReasonAuthenticationFailed, cause: cause}
	}},
	{code: "SSO_InternalError", substr: "Cannot Authenticate by AccountId", resolve: func(cause error) error {
		return &AccountError{Reason: ReasonAuthenticationFailed, cause: cause}
	}},
	{code: "InvalidArgument", substr: "accountName", resolve: func(cause error) error {
		return &ArgumentError{Reason: ReasonUsernameInvalid}
	}},
	{code: "InvalidArgument", substr: "password", resolve: func(cause error) error {
		return &ArgumentError{Reason: ReasonPasswordInvalid}
	}},
	{code: "InvalidArgument", substr: "UUID", resolve: func(cause error) error {
		return &ArgumentError{Reason: ReasonAccountIDInvalid}
	}},
}

// decodeShareError translates a vendor error code and message into a domain
// error, or nil when the code is unrecognized.
func decodeShareError(code, message string, cause error) error {
	for _, rule := range shareErrorRules {
		if rule.code != code {
			continue
		}
		if rule.substr != "" && !strings.Contains(message, rule.substr) {
			continue
		}
		return rule.resolve(cause)
	}
	return nil
}

// NetworkError represents a transport-level failure such as a refused
// connection, DNS resolution failure, or a timed-out request.
type NetworkError struct {
	// Op is the operation that failed.
	Op string
	// Err is the underlying network error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsArgumentError checks whether err is (or wraps) an ArgumentError.
func IsArgumentError(err error) bool {
	var argErr *ArgumentError
	return errors.As(err, &argErr)
}

// IsAccountError checks whether err is (or wraps) an AccountError.
func IsAccountError(err error) bool {
	var accErr *AccountError
	return errors.As(err, &accErr)
}

// IsSessionError checks whether err is (or wraps) a SessionError.
//
// Example:
//
//	readings, err := client.GetGlucoseReadings(ctx, 60, 12)
//	if dexshare.IsSessionError(err) {
//	    // the session expired twice in a row; back off before polling again
//	}
func IsSessionError(err error) bool {
	var sessErr *SessionError
	return errors.As(err, &sessErr)
}

// isTransient reports whether err may be retried at the transport level.
// Decoded Share failures are never transient: retrying them would either
// mask the session-retry contract or hammer a locked account. Only raw
// network failures and undecodable 5xx responses qualify.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsSessionError(err) || IsAccountError(err) || IsArgumentError(err) {
		return false
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsServerError()
	}
	return false
}
