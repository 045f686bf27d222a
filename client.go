package dexshare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

// Client communicates with the Dexcom Share API on behalf of one account.
//
// A Client owns its own account and session identifiers, so two Clients for
// two accounts can be used concurrently with no coordination. A single Client
// assumes at most one in-flight call at a time: overlapping calls could race
// on the session refresh, and serializing them is the caller's job.
//
// Example:
//
//	config := dexshare.DefaultConfig().
//	    WithUsername("user@example.com").
//	    WithPassword("hunter2")
//
//	client, err := dexshare.NewClient(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	reading, err := client.GetCurrentGlucoseReading(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if reading == nil {
//	    log.Println("no reading in the last 10 minutes")
//	} else {
//	    log.Printf("%d mg/dL %s", reading.MgDL(), reading.Trend().Arrow())
//	}
type Client interface {
	// GetGlucoseReadings returns up to maxCount readings recorded within the
	// last minutes minutes, in the order the server delivered them (most
	// recent first). minutes must be in [0, MaxMinutes] and maxCount in
	// [0, MaxMaxCount].
	//
	// If the server reports the session as expired mid-flight, the client
	// re-acquires a session exactly once and retries the fetch exactly once;
	// a second failure propagates unmodified.
	GetGlucoseReadings(ctx context.Context, minutes, maxCount int) ([]GlucoseReading, error)

	// GetLatestGlucoseReading returns the most recent reading within the
	// last 24 hours, or nil if there is none.
	GetLatestGlucoseReading(ctx context.Context) (*GlucoseReading, error)

	// GetCurrentGlucoseReading returns the most recent reading within the
	// last 10 minutes, or nil if there is none.
	GetCurrentGlucoseReading(ctx context.Context) (*GlucoseReading, error)

	// AccountID returns the resolved account ID.
	AccountID() string

	// SessionID returns the current session ID. It changes whenever the
	// client re-acquires a session.
	SessionID() string

	// Close releases the client's resources. Close is safe to call multiple
	// times; after Close the client must not be used.
	Close() error
}

// client is the concrete implementation of the Client interface.
type client struct {
	transport *shareTransport
	config    *Config
	mu        sync.RWMutex
	sess      session
	closed    bool
}

// NewClient creates a client and performs the initial session handshake.
// Construction fails before any network call if the configuration does not
// carry exactly one of username and account ID, and fails with the server's
// error if the handshake is rejected.
//
// Example:
//
//	config := dexshare.DefaultConfig().
//	    WithAccountID("1e913fce-5a24-4d14-8d06-2c90e307b4e3").
//	    WithPassword("hunter2").
//	    WithRegion(dexshare.RegionOUS)
//
//	client, err := dexshare.NewClient(ctx, config)
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		return nil, &ArgumentError{Reason: ReasonNoneUserIDProvided}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport, err := newShareTransport(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	c := &client{
		transport: transport,
		config:    config,
	}

	sess, err := c.acquireSession(ctx)
	if err != nil {
		transport.close()
		return nil, err
	}
	c.sess = sess

	return c, nil
}

// GetGlucoseReadings implements Client.
func (c *client) GetGlucoseReadings(ctx context.Context, minutes, maxCount int) ([]GlucoseReading, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if minutes < 0 || minutes > MaxMinutes {
		return nil, &ArgumentError{Reason: ReasonMinutesInvalid}
	}
	if maxCount < 0 || maxCount > MaxMaxCount {
		return nil, &ArgumentError{Reason: ReasonMaxCountInvalid}
	}

	// A default or garbage session ID is never usable; reject it before it
	// costs a round trip. The server answers a zero-UUID session with a
	// non-JSON empty body rather than a decodable error.
	sess := c.session()
	if err := validateSessionID(sess.sessionID); err != nil {
		return nil, err
	}

	records, err := c.fetchReadings(ctx, sess.sessionID, minutes, maxCount)
	if err != nil {
		if !IsSessionError(err) {
			return nil, err
		}

		// The session expired after the local pre-check passed. Re-acquire
		// once and retry once; a second failure propagates unmodified.
		c.config.Logger.Debug("session rejected by server, re-acquiring")
		fresh, rerr := c.acquireSession(ctx)
		if rerr != nil {
			return nil, rerr
		}
		c.replaceSession(fresh)

		records, err = c.fetchReadings(ctx, fresh.sessionID, minutes, maxCount)
		if err != nil {
			return nil, err
		}
	}

	readings := make([]GlucoseReading, 0, len(records))
	for _, record := range records {
		reading, err := newGlucoseReading(record)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// GetLatestGlucoseReading implements Client.
func (c *client) GetLatestGlucoseReading(ctx context.Context) (*GlucoseReading, error) {
	readings, err := c.GetGlucoseReadings(ctx, MaxMinutes, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

// GetCurrentGlucoseReading implements Client.
func (c *client) GetCurrentGlucoseReading(ctx context.Context) (*GlucoseReading, error) {
	readings, err := c.GetGlucoseReadings(ctx, 10, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

// fetchReadings issues the readings call against a specific session ID and
// returns the raw records in server order.
func (c *client) fetchReadings(ctx context.Context, sessionID string, minutes, maxCount int) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("sessionId", sessionID)
	params.Set("minutes", strconv.Itoa(minutes))
	params.Set("maxCount", strconv.Itoa(maxCount))

	var records []json.RawMessage
	if err := c.transport.post(ctx, glucoseReadingsEndpoint, params, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AccountID implements Client.
func (c *client) AccountID() string {
	return c.session().accountID
}

// SessionID implements Client.
func (c *client) SessionID() string {
	return c.session().sessionID
}

// Close implements Client.
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.transport.close()
}

// session returns a snapshot of the current session.
func (c *client) session() session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

// replaceSession installs a freshly acquired session.
func (c *client) replaceSession(sess session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = sess
}

// resolvedAccountID returns the account ID once known: the one resolved by a
// previous handshake, else the one supplied at construction, else empty.
func (c *client) resolvedAccountID() string {
	if id := c.session().accountID; id != "" {
		return id
	}
	return c.config.AccountID
}

// checkClosed fails if the client has been closed.
func (c *client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("client is closed")
	}
	return nil
}
