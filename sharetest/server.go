// Package sharetest provides a configurable in-process mock of the Dexcom
// Share API for tests: the three endpoints the client consumes, request
// recording, session expiry injection, and handler overrides.
package sharetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default credentials accepted by a new Server.
const (
	DefaultUsername  = "user@example.com"
	DefaultPassword  = "hunter2"
	DefaultAccountID = "1e913fce-5a24-4d14-8d06-2c90e307b4e3"
)

// Endpoint paths, relative to the server URL.
const (
	AuthenticatePath = "/General/AuthenticatePublisherAccount"
	LoginByIDPath    = "/General/LoginPublisherAccountById"
	ReadingsPath     = "/Publisher/ReadPublisherLatestGlucoseValues"
)

// HandlerFunc overrides the canned behavior for one endpoint. It returns the
// status code and a value to encode as the JSON response body.
type HandlerFunc func(r *http.Request) (int, interface{})

// RecordedRequest stores one request the server received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   []byte
	Time   time.Time
}

// Server is a mock Share API deployment. It accepts one set of credentials,
// issues a fresh session ID on every login, and serves a configurable list
// of raw reading records.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	username       string
	password       string
	accountID      string
	activeSessions map[string]bool
	lastSessionID  string
	readings       []map[string]interface{}
	alwaysExpired  bool
	handlers       map[string]HandlerFunc
	requests       []RecordedRequest
	loginCount     int
	authCount      int
	readingsCount  int
}

// NewServer starts a mock Share server with the default credentials and two
// canned readings.
func NewServer() *Server {
	s := &Server{
		username:       DefaultUsername,
		password:       DefaultPassword,
		accountID:      DefaultAccountID,
		activeSessions: make(map[string]bool),
		handlers:       make(map[string]HandlerFunc),
		readings: []map[string]interface{}{
			Reading(120, "Flat", time.Now()),
			Reading(118, "FortyFiveUp", time.Now().Add(-5*time.Minute)),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	s.Server = httptest.NewServer(mux)
	return s
}

// Reading builds a raw reading record the way the Share API encodes one.
func Reading(value int, trend string, at time.Time) map[string]interface{} {
	dt := fmt.Sprintf("Date(%d%s)", at.UnixMilli(), at.Format("-0700"))
	return map[string]interface{}{
		"WT":    dt,
		"ST":    dt,
		"DT":    dt,
		"Value": value,
		"Trend": trend,
	}
}

// SetReadings replaces the records served by the readings endpoint.
func (s *Server) SetReadings(readings ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = readings
}

// SetCredentials replaces the accepted username and password.
func (s *Server) SetCredentials(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.password = password
}

// SetAccountID replaces the account ID issued by the authenticate endpoint.
func (s *Server) SetAccountID(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = accountID
}

// ExpireSession invalidates one session ID; the next readings call with it
// fails with SessionIdNotFound while logins keep succeeding.
func (s *Server) ExpireSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeSessions, sessionID)
}

// ExpireAllSessions makes the readings endpoint reject every session,
// including ones issued after this call. Logins keep succeeding, so a client
// that refreshes and retries still fails the retried fetch.
func (s *Server) ExpireAllSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alwaysExpired = true
	s.activeSessions = make(map[string]bool)
}

// RegisterHandler overrides the canned behavior for an endpoint path.
func (s *Server) RegisterHandler(path string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = handler
}

// LastSessionID returns the most recently issued session ID.
func (s *Server) LastSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSessionID
}

// Requests returns a copy of all recorded requests.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns how many requests hit the given endpoint path.
func (s *Server) RequestCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch path {
	case AuthenticatePath:
		return s.authCount
	case LoginByIDPath:
		return s.loginCount
	case ReadingsPath:
		return s.readingsCount
	default:
		n := 0
		for _, r := range s.requests {
			if r.Path == path {
				n++
			}
		}
		return n
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body := []byte{}
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	query := make(map[string]string)
	for key := range r.URL.Query() {
		query[key] = r.URL.Query().Get(key)
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  query,
		Body:   body,
		Time:   time.Now(),
	})
	handler, overridden := s.handlers[r.URL.Path]
	s.mu.Unlock()

	if overridden {
		status, payload := handler(r)
		writeJSON(w, status, payload)
		return
	}

	switch r.URL.Path {
	case AuthenticatePath:
		s.handleAuthenticate(w, body)
	case LoginByIDPath:
		s.handleLogin(w, body)
	case ReadingsPath:
		s.handleReadings(w, query)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{
			"Code":    "NotFound",
			"Message": "unknown endpoint",
		})
	}
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, body []byte) {
	var req struct {
		AccountName   string `json:"accountName"`
		Password      string `json:"password"`
		ApplicationID string `json:"applicationId"`
	}
	json.Unmarshal(body, &req)

	s.mu.Lock()
	s.authCount++
	ok := req.AccountName == s.username && req.Password == s.password
	accountID := s.accountID
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"Code":    "SSO_InternalError",
			"Message": "Cannot Authenticate by AccountName",
		})
		return
	}
	writeJSON(w, http.StatusOK, accountID)
}

func (s *Server) handleLogin(w http.ResponseWriter, body []byte) {
	var req struct {
		AccountID     string `json:"accountId"`
		Password      string `json:"password"`
		ApplicationID string `json:"applicationId"`
	}
	json.Unmarshal(body, &req)

	s.mu.Lock()
	s.loginCount++
	ok := req.AccountID == s.accountID && req.Password == s.password
	var sessionID string
	if ok {
		sessionID = uuid.NewString()
		s.activeSessions[sessionID] = true
		s.lastSessionID = sessionID
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"Code":    "SSO_InternalError",
			"Message": "Cannot Authenticate by AccountId",
		})
		return
	}
	writeJSON(w, http.StatusOK, sessionID)
}

func (s *Server) handleReadings(w http.ResponseWriter, query map[string]string) {
	sessionID := query["sessionId"]

	s.mu.Lock()
	s.readingsCount++
	valid := !s.alwaysExpired && s.activeSessions[sessionID]
	readings := s.readings
	s.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"Code":    "SessionIdNotFound",
			"Message": "session not found",
		})
		return
	}

	maxCount := len(readings)
	if mc, ok := query["maxCount"]; ok {
		fmt.Sscanf(mc, "%d", &maxCount)
	}
	if maxCount > len(readings) {
		maxCount = len(readings)
	}
	if maxCount < 0 {
		maxCount = 0
	}
	writeJSON(w, http.StatusOK, readings[:maxCount])
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
