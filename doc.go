// Package dexshare provides a Go client library for the Dexcom Share API,
// the web service behind Dexcom's continuous glucose monitors. It
// authenticates a Share user, maintains the short-lived session credential
// the service issues, and retrieves recent blood-glucose readings as typed
// values.
//
// # Features
//
// The library provides:
//   - Two-step session handshake (credentials → account ID → session ID)
//     with strict UUID validation of both identifiers
//   - Transparent one-shot session re-acquisition when the server reports
//     the session as expired mid-flight
//   - Typed glucose readings with mg/dL and mmol/L values, trend
//     directions, descriptions, and arrow glyphs
//   - A closed taxonomy of argument, account, and session errors carrying
//     symbolic reason codes for programmatic handling
//   - Region selection for the US, outside-US, and Japan deployments
//   - Context support for cancellation and timeouts
//   - Observer hooks for latency, retry, and session-churn monitoring
//
// # Basic Usage
//
// Create a client and fetch the current reading:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/dexshare/dexshare-go"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    config := dexshare.DefaultConfig().
//	        WithUsername("user@example.com").
//	        WithPassword("hunter2")
//
//	    client, err := dexshare.NewClient(ctx, config)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer client.Close()
//
//	    reading, err := client.GetCurrentGlucoseReading(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if reading == nil {
//	        log.Println("no reading in the last 10 minutes")
//	        return
//	    }
//	    log.Printf("%d mg/dL (%.1f mmol/L) %s", reading.MgDL(), reading.MmolL(), reading.Trend().Arrow())
//	}
//
// # Sessions
//
// The Share service issues session IDs that expire after an undocumented
// period. The client validates its session ID locally before every fetch and
// lazily re-acquires a session when the server rejects one mid-flight: the
// fetch is retried exactly once with the fresh session, and a second failure
// propagates to the caller. Local validation failures (a malformed or
// all-zero UUID) never reach the network.
//
// # Error Handling
//
// Failures decode into three kinds, each with a closed set of reason codes:
//
//	readings, err := client.GetGlucoseReadings(ctx, 60, 12)
//	if err != nil {
//	    var argErr *dexshare.ArgumentError
//	    switch {
//	    case errors.As(err, &argErr):
//	        // local validation failed; inspect argErr.Reason
//	    case dexshare.IsAccountError(err):
//	        // credentials rejected; do not retry blindly
//	    case dexshare.IsSessionError(err):
//	        // session rejected twice in a row
//	    }
//	}
//
// Responses with unrecognized vendor error codes are logged and returned
// as *APIError so no failure is silently absorbed.
//
// # Polling
//
// The client has no internal scheduler; callers loop externally:
//
//	ticker := time.NewTicker(5 * time.Minute)
//	defer ticker.Stop()
//	for range ticker.C {
//	    reading, err := client.GetCurrentGlucoseReading(ctx)
//	    // ...
//	}
//
// A Client is not safe for overlapping calls; give each goroutine its own
// Client or serialize access.
package dexshare
