package httpclient

import (
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// Response wraps http.Response with cached body reading and envelope-aware
// decoding.
type Response struct {
	*http.Response

	body     []byte
	bodyRead bool

	result    any
	rawDecode bool
}

// Body returns the response body, reading and caching it on first access.
func (r *Response) Body() ([]byte, error) {
	if r.bodyRead {
		return r.body, nil
	}
	defer r.Response.Body.Close()
	body, err := io.ReadAll(r.Response.Body)
	if err != nil {
		return nil, err
	}
	r.body = body
	r.bodyRead = true
	return r.body, nil
}

// String returns the response body as a string.
func (r *Response) String() (string, error) {
	body, err := r.Body()
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError reports whether the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// decode interprets the body. Enveloped responses unwrap their data payload
// into the decode target and surface error envelopes as *APIError; raw
// decoding unmarshals the whole body.
func (r *Response) decode() error {
	body, err := r.Body()
	if err != nil {
		return err
	}

	if r.rawDecode {
		if len(body) == 0 || r.result == nil {
			return nil
		}
		return json.Unmarshal(body, r.result)
	}

	// Without a decode target a successful response passes shape checks;
	// error envelopes still surface so Delete-style calls see failures.
	if r.result == nil && r.IsSuccess() {
		if len(body) == 0 {
			return nil
		}
		var probe envelopeProbe
		if err := json.Unmarshal(body, &probe); err != nil {
			return nil
		}
		if probe.Message != "" && probe.Data == nil {
			return DecodeEnvelope(body, r.StatusCode, nil)
		}
		return nil
	}

	return DecodeEnvelope(body, r.StatusCode, r.result)
}
