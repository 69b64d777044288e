// Package httpclient provides the authenticated HTTP client used by every
// FlowMastery API call, with transparent session refresh, resilience, and
// observability built in.
//
// # Features
//
//   - Cookie-based session handling with single-flight token refresh on 401
//   - Exactly-one retry per request after a successful refresh
//   - One-shot HTTPS correction for the backend's 307 redirect quirk
//   - Structured error normalization from the API's response envelope
//   - Automatic retries with exponential backoff for transient failures
//   - Circuit breaking (local or Redis-backed distributed)
//   - Client-level rate limiting and GET request coalescing
//   - OpenTelemetry tracing and metrics
//
// # Quick Start
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("https://api.flowmastery.app"),
//	    httpclient.WithServiceName("dashboard"),
//	)
//
//	var me api.User
//	err := client.Get(ctx, "/auth/me", &me)
//
// Or use the fluent request builder:
//
//	var workflows []Workflow
//	resp, err := client.Request("ListWorkflows").
//	    Query("client_id", clientID).
//	    Decode(&workflows).
//	    Get(ctx, "/workflows")
//
// # Session Refresh
//
// The backend issues an httpOnly cookie pair (access + refresh). When a
// request fails with 401, the client issues exactly one POST /auth/refresh
// call no matter how many requests observe the expiry concurrently; the
// others suspend and are replayed once the refresh settles. A request whose
// retry also fails with 401 is terminal and is surfaced as an *APIError.
// When the refresh itself fails the session is unrecoverable: every waiting
// request is rejected with the same error and the hook registered with
// WithSessionExpiredHook fires exactly once.
//
// # Error Normalization
//
// The API wraps payloads in an envelope: success responses carry a "data"
// field, error responses carry "message", "code", "details" and
// "request_id". Decoded requests unwrap "data" automatically and surface
// error envelopes as *APIError:
//
//	var apiErr *httpclient.APIError
//	if errors.As(err, &apiErr) {
//	    fmt.Println(apiErr.Code, apiErr.RequestID)
//	}
package httpclient
