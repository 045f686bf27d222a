package dexshare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, baseURL string, configure func(*Config)) *shareTransport {
	t.Helper()
	config := DefaultConfig().
		WithUsername("user").
		WithPassword("pw").
		WithBaseURL(baseURL)
	if configure != nil {
		configure(config)
	}
	require.NoError(t, config.Validate())

	transport, err := newShareTransport(config)
	require.NoError(t, err)
	return transport
}

func TestTransport_PostDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept-Encoding"))
		json.NewEncoder(w).Encode("6aabeee0-4b27-4f6d-a081-0a35bba1d2ac")
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, nil)
	defer transport.close()

	var result string
	err := transport.post(context.Background(), loginByIDEndpoint, nil, nil, &result)
	require.NoError(t, err)
	assert.Equal(t, "6aabeee0-4b27-4f6d-a081-0a35bba1d2ac", result)
}

func TestTransport_CustomHeaders(t *testing.T) {
	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Correlation-ID"))
		json.NewEncoder(w).Encode([]json.RawMessage{})
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, func(c *Config) {
		c.WithHeader("X-Correlation-ID", "abc-123")
	})
	defer transport.close()

	var result []json.RawMessage
	require.NoError(t, transport.post(context.Background(), glucoseReadingsEndpoint, nil, nil, &result))
	assert.Equal(t, "abc-123", got.Load())
}

func TestTransport_QueryParameters(t *testing.T) {
	var query atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		json.NewEncoder(w).Encode([]json.RawMessage{})
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, nil)
	defer transport.close()

	params := url.Values{}
	params.Set("sessionId", "6aabeee0-4b27-4f6d-a081-0a35bba1d2ac")
	params.Set("minutes", "10")
	params.Set("maxCount", "1")

	var result []json.RawMessage
	require.NoError(t, transport.post(context.Background(), glucoseReadingsEndpoint, params, nil, &result))

	q := query.Load().(url.Values)
	assert.Equal(t, "10", q.Get("minutes"))
	assert.Equal(t, "1", q.Get("maxCount"))
}

func TestTransport_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode("6aabeee0-4b27-4f6d-a081-0a35bba1d2ac")
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, func(c *Config) {
		c.WithRetries(3)
		c.RetryConfig.InitialInterval = time.Millisecond
	})
	defer transport.close()

	var result string
	err := transport.post(context.Background(), loginByIDEndpoint, nil, nil, &result)
	require.NoError(t, err, "transient 5xx responses should be retried")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestTransport_DoesNotRetryDecodedSessionError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"Code":    "SessionIdNotFound",
			"Message": "session not found",
		})
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, func(c *Config) {
		c.WithRetries(3)
		c.RetryConfig.InitialInterval = time.Millisecond
	})
	defer transport.close()

	var result []json.RawMessage
	err := transport.post(context.Background(), glucoseReadingsEndpoint, nil, nil, &result)

	assert.True(t, IsSessionError(err), "a decoded session error must surface, not be retried")
	assert.Equal(t, int32(1), attempts.Load(), "session expiry is the client's retry protocol, not the transport's")
}

func TestTransport_UnknownCodePassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"Code":    "SomethingNew",
			"Message": "mystery failure",
		})
	}))
	defer server.Close()

	logger, hook := logrustest.NewNullLogger()
	transport := newTestTransport(t, server.URL, func(c *Config) {
		c.WithLogger(logger)
	})
	defer transport.close()

	err := transport.post(context.Background(), authenticateEndpoint, nil, nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr, "unknown codes pass through unchanged")
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "SomethingNew", apiErr.Code)
	assert.Equal(t, "mystery failure", apiErr.Message)

	// The unrecognized code is logged, never silently absorbed.
	require.NotEmpty(t, hook.Entries)
	last := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "SomethingNew", last.Data["code"])
}

func TestTransport_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	transport := newTestTransport(t, server.URL, nil)
	defer transport.close()

	err := transport.post(context.Background(), authenticateEndpoint, nil, nil, nil)
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.True(t, isTransient(err))
}

func TestNewShareTransport_InvalidBaseURL(t *testing.T) {
	config := DefaultConfig().
		WithUsername("user").
		WithPassword("pw").
		WithBaseURL("not-a-url")
	require.NoError(t, config.Validate())

	_, err := newShareTransport(config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
