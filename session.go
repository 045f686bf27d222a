package dexshare

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// session is one credential-validity window against the Share API: the
// resolved account ID plus the server-issued session ID authorizing fetches.
// Acquisition is a pure function of the client's credentials; replacing the
// client's current session is a separate, explicit step so the expiry-retry
// path is a simple reassignment.
type session struct {
	accountID string
	sessionID string
}

// authenticateRequest is the body of the authenticate endpoint, which
// resolves a username to an account ID.
type authenticateRequest struct {
	AccountName   string `json:"accountName"`
	Password      string `json:"password"`
	ApplicationID string `json:"applicationId"`
}

// loginRequest is the body of the login-by-id endpoint, which issues a
// session ID for an account.
type loginRequest struct {
	AccountID     string `json:"accountId"`
	Password      string `json:"password"`
	ApplicationID string `json:"applicationId"`
}

// validateAccountID checks that an account ID is a syntactically valid,
// non-zero UUID. A zero or malformed ID is never usable and is rejected
// before any fetch is attempted.
func validateAccountID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return &ArgumentError{Reason: ReasonAccountIDInvalid}
	}
	if parsed == uuid.Nil {
		return &ArgumentError{Reason: ReasonAccountIDDefault}
	}
	return nil
}

// validateSessionID checks that a session ID is a syntactically valid,
// non-zero UUID, under the same rules as validateAccountID.
func validateSessionID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return &ArgumentError{Reason: ReasonSessionIDInvalid}
	}
	if parsed == uuid.Nil {
		return &ArgumentError{Reason: ReasonSessionIDDefault}
	}
	return nil
}

// validatePassword checks that the password is non-empty.
func validatePassword(password string) error {
	if password == "" {
		return &ArgumentError{Reason: ReasonPasswordInvalid}
	}
	return nil
}

// validateUsername checks that the username is non-empty.
func validateUsername(username string) error {
	if username == "" {
		return &ArgumentError{Reason: ReasonUsernameInvalid}
	}
	return nil
}

// authenticate resolves the configured username to an account ID via the
// authenticate endpoint.
func (c *client) authenticate(ctx context.Context) (string, error) {
	var accountID string
	err := c.transport.post(ctx, authenticateEndpoint, nil, authenticateRequest{
		AccountName:   c.config.Username,
		Password:      c.config.Password,
		ApplicationID: c.config.applicationID(),
	}, &accountID)
	if err != nil {
		return "", err
	}
	return accountID, nil
}

// loginByID obtains a session ID for an account via the login-by-id endpoint.
func (c *client) loginByID(ctx context.Context, accountID string) (string, error) {
	var sessionID string
	err := c.transport.post(ctx, loginByIDEndpoint, nil, loginRequest{
		AccountID:     accountID,
		Password:      c.config.Password,
		ApplicationID: c.config.applicationID(),
	}, &sessionID)
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// acquireSession performs the full two-step handshake: resolve the account ID
// (once; later acquisitions reuse it), then obtain a fresh session ID. Both
// identifiers are validated before and after the network calls they gate, so
// garbage state never costs a round trip.
func (c *client) acquireSession(ctx context.Context) (session, error) {
	start := time.Now()
	sess, err := c.doAcquireSession(ctx)
	c.config.Observer.OnSessionRefresh(time.Since(start), err)
	return sess, err
}

func (c *client) doAcquireSession(ctx context.Context) (session, error) {
	if err := validatePassword(c.config.Password); err != nil {
		return session{}, err
	}

	accountID := c.resolvedAccountID()
	if accountID == "" {
		if err := validateUsername(c.config.Username); err != nil {
			return session{}, err
		}
		var err error
		accountID, err = c.authenticate(ctx)
		if err != nil {
			return session{}, err
		}
	}

	if err := validateAccountID(accountID); err != nil {
		return session{}, err
	}

	sessionID, err := c.loginByID(ctx, accountID)
	if err != nil {
		return session{}, err
	}
	if err := validateSessionID(sessionID); err != nil {
		return session{}, err
	}

	return session{accountID: accountID, sessionID: sessionID}, nil
}
