package dexshare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// shareTransport handles HTTP communication with the Share API. Every Share
// endpoint is a POST with a JSON body (the readings endpoint additionally
// takes query parameters), so the transport only exposes post.
type shareTransport struct {
	client   *http.Client
	baseURL  *url.URL
	headers  map[string]string
	logger   logrus.FieldLogger
	observer Observer
	retry    *retryExecutor
}

// newShareTransport creates a transport from a validated configuration.
func newShareTransport(config *Config) (*shareTransport, error) {
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: base URL must have a scheme and host", ErrInvalidConfig)
	}

	httpTransport := &http.Transport{
		MaxIdleConns:        config.TransportConfig.MaxIdleConns,
		MaxConnsPerHost:     config.TransportConfig.MaxConnsPerHost,
		IdleConnTimeout:     config.TransportConfig.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	strategy := config.RetryStrategy
	if strategy == nil {
		if config.RetryConfig.MaxRetries > 0 {
			strategy = &ExponentialBackoffStrategy{
				InitialInterval: config.RetryConfig.InitialInterval,
				MaxInterval:     config.RetryConfig.MaxInterval,
				Multiplier:      config.RetryConfig.Multiplier,
				Jitter:          0.3,
				MaxRetries:      config.RetryConfig.MaxRetries,
			}
		} else {
			strategy = &NoRetryStrategy{}
		}
	}

	return &shareTransport{
		client: &http.Client{
			Transport: httpTransport,
			Timeout:   config.Timeout,
		},
		baseURL:  baseURL,
		headers:  config.Headers,
		logger:   config.Logger,
		observer: config.Observer,
		retry:    newRetryExecutor(strategy, config.Observer),
	}, nil
}

// post sends a POST request to a Share endpoint and decodes the JSON response
// into result. params go into the query string; body is marshaled as JSON,
// with a nil body sent as an empty object the way the vendor expects.
func (t *shareTransport) post(ctx context.Context, endpoint string, params url.Values, body, result interface{}) error {
	t.observer.OnRequestStart(endpoint)
	start := time.Now()

	err := t.retry.execute(ctx, endpoint, func() error {
		return t.performRequest(ctx, endpoint, params, body, result)
	})

	t.observer.OnRequestEnd(endpoint, time.Since(start), err)
	return err
}

// performRequest executes a single HTTP request.
func (t *shareTransport) performRequest(ctx context.Context, endpoint string, params url.Values, body, result interface{}) error {
	if body == nil {
		body = struct{}{}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	fullURL := *t.baseURL
	fullURL.Path = fullURL.Path + "/" + endpoint
	if params != nil {
		fullURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL.String(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// The vendor keys its JSON handling off this header.
	req.Header.Set("Accept-Encoding", "application/json")
	req.Header.Set("User-Agent", "dexshare-go/1.0.0")
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	t.logger.WithField("endpoint", endpoint).Debug("sending request")

	resp, err := t.client.Do(req)
	if err != nil {
		return &NetworkError{Op: "POST " + endpoint, Err: err}
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return &NetworkError{Op: "reading response", Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return t.decodeError(endpoint, resp.StatusCode, respBody)
}

// decodeError translates a non-2xx response into a domain error via the
// share error decode table. Unrecognized codes are logged and the response
// error is returned unchanged so no failure is silently absorbed.
func (t *shareTransport) decodeError(endpoint string, status int, body []byte) error {
	apiErr := &APIError{
		StatusCode: status,
		Endpoint:   endpoint,
	}

	var payload struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}

	if decoded := decodeShareError(apiErr.Code, apiErr.Message, apiErr); decoded != nil {
		return decoded
	}

	t.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   status,
		"code":     apiErr.Code,
		"message":  apiErr.Message,
	}).Warn("unrecognized error response")

	return apiErr
}

// close releases idle connections held by the transport.
func (t *shareTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}
