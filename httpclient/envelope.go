package httpclient

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
)

// envelopeProbe matches both shapes of the API response envelope in one
// pass: success responses carry "data", error responses carry "message",
// "code", "details" and "request_id".
type envelopeProbe struct {
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Code      string          `json:"code"`
	Details   map[string]any  `json:"details"`
	RequestID string          `json:"request_id"`
}

// DecodeEnvelope interprets body as a FlowMastery response envelope.
//
// Error envelopes are returned as *APIError regardless of HTTP status. For
// success envelopes the inner "data" payload is unmarshaled into target
// (which may be nil when the caller does not need the payload). Empty bodies
// are valid for 2xx responses; for non-2xx responses without an envelope an
// *APIError is synthesized from the status code. Anything else is reported
// as ErrUnexpectedFormat.
func DecodeEnvelope(body []byte, status int, target any) error {
	success := status >= 200 && status < 300

	if len(body) == 0 {
		if success {
			return nil
		}
		return &APIError{Status: status, Message: http.StatusText(status)}
	}

	var probe envelopeProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		if success {
			return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		return &APIError{Status: status, Message: http.StatusText(status)}
	}

	// Shape detection is message-first: an error envelope wins even on a
	// 2xx status, matching how the backend reports soft failures.
	if probe.Message != "" && probe.Data == nil {
		return &APIError{
			Message:   probe.Message,
			Code:      probe.Code,
			Details:   probe.Details,
			RequestID: probe.RequestID,
			Status:    status,
		}
	}

	if probe.Data != nil {
		if target == nil {
			return nil
		}
		if err := json.Unmarshal(probe.Data, target); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		return nil
	}

	if !success {
		return &APIError{Status: status, Message: http.StatusText(status)}
	}
	return ErrUnexpectedFormat
}
