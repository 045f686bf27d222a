package dexshare

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShareError(t *testing.T) {
	cause := &APIError{StatusCode: 500, Endpoint: glucoseReadingsEndpoint}

	tests := []struct {
		name    string
		code    string
		message string
		check   func(t *testing.T, err error)
	}{
		{
			name: "session id not found",
			code: "SessionIdNotFound",
			check: func(t *testing.T, err error) {
				var sessErr *SessionError
				require.ErrorAs(t, err, &sessErr)
				assert.Equal(t, ReasonSessionNotFound, sessErr.Reason)
			},
		},
		{
			name: "session not valid",
			code: "SessionNotValid",
			check: func(t *testing.T, err error) {
				var sessErr *SessionError
				require.ErrorAs(t, err, &sessErr)
				assert.Equal(t, ReasonSessionNotValid, sessErr.Reason)
			},
		},
		{
			name: "defunct password code",
			code: "AccountPasswordInvalid",
			check: func(t *testing.T, err error) {
				var accErr *AccountError
				require.ErrorAs(t, err, &accErr)
				assert.Equal(t, ReasonAuthenticationFailed, accErr.Reason)
			},
		},
		{
			name: "max attempts",
			code: "SSO_AuthenticateMaxAttemptsExceeded",
			check: func(t *testing.T, err error) {
				var accErr *AccountError
				require.ErrorAs(t, err, &accErr)
				assert.Equal(t, ReasonMaxAttemptsExceeded, accErr.Reason)
			},
		},
		{
			name:    "cannot authenticate by name",
			code:    "SSO_InternalError",
			message: "Cannot Authenticate by AccountName",
			check: func(t *testing.T, err error) {
				assert.True(t, IsAccountError(err))
			},
		},
		{
			name:    "cannot authenticate by id",
			code:    "SSO_InternalError",
			message: "Cannot Authenticate by AccountId",
			check: func(t *testing.T, err error) {
				assert.True(t, IsAccountError(err))
			},
		},
		{
			name:    "invalid account name argument",
			code:    "InvalidArgument",
			message: "accountName must not be empty",
			check: func(t *testing.T, err error) {
				requireArgumentReason(t, err, ReasonUsernameInvalid)
			},
		},
		{
			name:    "invalid password argument",
			code:    "InvalidArgument",
			message: "password must not be empty",
			check: func(t *testing.T, err error) {
				requireArgumentReason(t, err, ReasonPasswordInvalid)
			},
		},
		{
			name:    "invalid uuid argument",
			code:    "InvalidArgument",
			message: "accountId must be a valid UUID",
			check: func(t *testing.T, err error) {
				// The accountName rule matches first only when the message
				// names accountName; a UUID complaint maps to the account ID.
				requireArgumentReason(t, err, ReasonAccountIDInvalid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeShareError(tt.code, tt.message, cause)
			require.NotNil(t, err)
			tt.check(t, err)
		})
	}
}

func TestDecodeShareError_Unrecognized(t *testing.T) {
	cause := &APIError{StatusCode: 500}

	assert.Nil(t, decodeShareError("SomethingNew", "mystery failure", cause))
	assert.Nil(t, decodeShareError("", "", cause))
	// A known code whose message narrower does not match stays undecoded.
	assert.Nil(t, decodeShareError("SSO_InternalError", "disk on fire", cause))
	assert.Nil(t, decodeShareError("InvalidArgument", "applicationId malformed", cause))
}

func TestSessionError_UnwrapsCause(t *testing.T) {
	cause := &APIError{StatusCode: 500, Code: "SessionIdNotFound", Endpoint: glucoseReadingsEndpoint}
	err := decodeShareError("SessionIdNotFound", "", cause)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr, "the original response error stays reachable")
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "argument error: minutes must be an integer between 0 and 1440",
		(&ArgumentError{Reason: ReasonMinutesInvalid}).Error())
	assert.Equal(t, "session error: session ID not found",
		(&SessionError{Reason: ReasonSessionNotFound}).Error())
	assert.Equal(t, "account error: maximum authentication attempts exceeded",
		(&AccountError{Reason: ReasonMaxAttemptsExceeded}).Error())

	apiErr := &APIError{StatusCode: 500, Code: "Weird", Message: "boom", Endpoint: "General/Foo"}
	assert.Contains(t, apiErr.Error(), "Weird")
	assert.Contains(t, apiErr.Error(), "500")
}

func TestIsHelpers(t *testing.T) {
	sessErr := fmt.Errorf("fetch failed: %w", &SessionError{Reason: ReasonSessionNotValid})
	assert.True(t, IsSessionError(sessErr))
	assert.False(t, IsAccountError(sessErr))
	assert.False(t, IsArgumentError(sessErr))

	accErr := fmt.Errorf("login failed: %w", &AccountError{Reason: ReasonAuthenticationFailed})
	assert.True(t, IsAccountError(accErr))

	argErr := fmt.Errorf("bad input: %w", &ArgumentError{Reason: ReasonMaxCountInvalid})
	assert.True(t, IsArgumentError(argErr))

	assert.False(t, IsSessionError(nil))
	assert.False(t, IsSessionError(errors.New("plain")))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, isTransient(nil))
	assert.True(t, isTransient(&NetworkError{Op: "POST", Err: errors.New("connection refused")}))
	assert.True(t, isTransient(&APIError{StatusCode: 503}))
	assert.False(t, isTransient(&APIError{StatusCode: 400}))
	assert.False(t, isTransient(&SessionError{Reason: ReasonSessionNotFound}))
	assert.False(t, isTransient(&AccountError{Reason: ReasonAuthenticationFailed}))
	assert.False(t, isTransient(&ArgumentError{Reason: ReasonMinutesInvalid}))

	// A decoded session error keeps its API cause but is still not transient.
	decoded := decodeShareError("SessionIdNotFound", "", &APIError{StatusCode: 500})
	assert.False(t, isTransient(decoded))
}

func TestNetworkError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := &NetworkError{Op: "POST General/LoginPublisherAccountById", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}
