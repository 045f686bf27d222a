package dexshare

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the configuration for a Share API client. Credentials are
// required; everything else has sensible defaults.
//
// Configuration is built using the fluent builder pattern:
//
//	config := dexshare.DefaultConfig().
//	    WithUsername("user@example.com").
//	    WithPassword("hunter2").
//	    WithRegion(dexshare.RegionOUS).
//	    WithTimeout(10 * time.Second)
//
//	client, err := dexshare.NewClient(ctx, config)
type Config struct {
	// Username is the Share account username (the user, not a follower).
	// Exactly one of Username and AccountID must be set.
	Username string

	// AccountID is the stable per-user identifier, a UUID. Supplying it
	// directly skips the authenticate call that resolves it from Username.
	// Exactly one of Username and AccountID must be set.
	AccountID string

	// Password is the Share account password. Required.
	Password string

	// Region selects the Share deployment serving the account's data.
	// Default: RegionUS
	Region Region

	// BaseURL overrides the region's base URL. Intended for tests and
	// proxies; leave empty to use the regional deployment.
	BaseURL string

	// Timeout is the HTTP request timeout, including connection time and
	// reading the response body.
	// Default: 30s
	Timeout time.Duration

	// RetryConfig controls transport-level retry of transient failures
	// (network errors and undecodable 5xx responses). Retries are disabled
	// by default; session expiry is handled separately by the client and is
	// never subject to this config.
	RetryConfig RetryConfig

	// RetryStrategy overrides the retry strategy. If nil and retries are
	// enabled, exponential backoff with jitter is used.
	RetryStrategy RetryStrategy

	// TransportConfig holds HTTP connection-pool settings.
	TransportConfig TransportConfig

	// Headers are custom headers to include in all requests.
	Headers map[string]string

	// Observer receives hooks for monitoring client operations.
	// If nil, NoopObserver is used.
	Observer Observer

	// Logger receives debug lines for each endpoint call and warnings for
	// unrecognized server error codes. If nil, the logrus standard logger
	// is used.
	Logger logrus.FieldLogger
}

// RetryConfig holds transport-level retry settings.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts for transient
	// failures. Zero disables retries.
	// Default: 0
	MaxRetries int

	// InitialInterval is the delay before the first retry.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the retry delay.
	// Default: 5s
	MaxInterval time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64
}

// TransportConfig holds HTTP transport configuration for connection pooling.
type TransportConfig struct {
	// MaxIdleConns controls the maximum number of idle connections.
	// Default: 10
	MaxIdleConns int

	// MaxConnsPerHost controls the maximum connections per host.
	// Default: 5
	MaxConnsPerHost int

	// IdleConnTimeout is how long an idle connection is kept before closing.
	// Default: 90s
	IdleConnTimeout time.Duration
}

// DefaultConfig returns a Config with defaults suitable for most use cases:
// US region, 30 second timeout, transport retries disabled. Credentials must
// still be supplied via WithUsername or WithAccountID plus WithPassword.
func DefaultConfig() *Config {
	return &Config{
		Region:  RegionUS,
		Timeout: 30 * time.Second,
		RetryConfig: RetryConfig{
			MaxRetries:      0,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2.0,
		},
		TransportConfig: TransportConfig{
			MaxIdleConns:    10,
			MaxConnsPerHost: 5,
			IdleConnTimeout: 90 * time.Second,
		},
		Headers:  make(map[string]string),
		Observer: &NoopObserver{},
	}
}

// WithUsername sets the Share account username.
func (c *Config) WithUsername(username string) *Config {
	c.Username = username
	return c
}

// WithAccountID sets the Share account ID, skipping username resolution.
func (c *Config) WithAccountID(accountID string) *Config {
	c.AccountID = accountID
	return c
}

// WithPassword sets the Share account password.
func (c *Config) WithPassword(password string) *Config {
	c.Password = password
	return c
}

// WithRegion selects the Share deployment.
//
// Example:
//
//	config := dexshare.DefaultConfig().
//	    WithRegion(dexshare.RegionJP)
func (c *Config) WithRegion(region Region) *Config {
	c.Region = region
	return c
}

// WithBaseURL overrides the regional base URL. Intended for tests and proxies.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the HTTP request timeout.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRetries sets the maximum number of transport-level retry attempts for
// transient failures. This never applies to decoded Session, Account, or
// Argument failures.
func (c *Config) WithRetries(maxRetries int) *Config {
	c.RetryConfig.MaxRetries = maxRetries
	return c
}

// WithRetryStrategy sets a custom retry strategy for transient failures.
func (c *Config) WithRetryStrategy(strategy RetryStrategy) *Config {
	c.RetryStrategy = strategy
	return c
}

// WithHeader adds a custom header to be sent with all requests.
func (c *Config) WithHeader(key, value string) *Config {
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	c.Headers[key] = value
	return c
}

// WithObserver sets a custom observer for monitoring client operations.
//
// Example:
//
//	collector := dexshare.NewMetricsCollector()
//	config := dexshare.DefaultConfig().
//	    WithObserver(collector)
func (c *Config) WithObserver(observer Observer) *Config {
	c.Observer = observer
	return c
}

// WithLogger sets the logger used for debug and warning output.
func (c *Config) WithLogger(logger logrus.FieldLogger) *Config {
	c.Logger = logger
	return c
}

// Validate validates the configuration and applies defaults for missing
// values. Called automatically by NewClient.
//
// Exactly one of Username and AccountID must be set; violations fail with
// an ArgumentError before any network call is made.
func (c *Config) Validate() error {
	if c.Username == "" && c.AccountID == "" {
		return &ArgumentError{Reason: ReasonNoneUserIDProvided}
	}
	if c.Username != "" && c.AccountID != "" {
		return &ArgumentError{Reason: ReasonTooManyUserIDsProvided}
	}
	if c.Region == "" {
		c.Region = RegionUS
	}
	if _, ok := baseURLs[c.Region]; !ok {
		return fmt.Errorf("%w: unknown region %q", ErrInvalidConfig, c.Region)
	}
	if c.BaseURL == "" {
		c.BaseURL = baseURLs[c.Region]
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryConfig.MaxRetries < 0 {
		c.RetryConfig.MaxRetries = 0
	}
	if c.RetryConfig.InitialInterval <= 0 {
		c.RetryConfig.InitialInterval = 100 * time.Millisecond
	}
	if c.RetryConfig.MaxInterval <= 0 {
		c.RetryConfig.MaxInterval = 5 * time.Second
	}
	if c.RetryConfig.Multiplier <= 1 {
		c.RetryConfig.Multiplier = 2.0
	}
	if c.TransportConfig.MaxIdleConns <= 0 {
		c.TransportConfig.MaxIdleConns = 10
	}
	if c.TransportConfig.MaxConnsPerHost <= 0 {
		c.TransportConfig.MaxConnsPerHost = 5
	}
	if c.TransportConfig.IdleConnTimeout <= 0 {
		c.TransportConfig.IdleConnTimeout = 90 * time.Second
	}
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	if c.Observer == nil {
		c.Observer = &NoopObserver{}
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return nil
}

// applicationID returns the application UUID for the configured region.
func (c *Config) applicationID() string {
	return applicationIDs[c.Region]
}
