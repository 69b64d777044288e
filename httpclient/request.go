package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// RequestBuilder provides a fluent API for constructing API requests.
//
//	var workflow Workflow
//	resp, err := client.Request("GetWorkflow").
//	    Path("/workflows/{id}").
//	    PathParam("id", workflowID).
//	    Decode(&workflow).
//	    Get(ctx)
type RequestBuilder struct {
	client        *Client
	operationName string
	path          string
	pathParams    map[string]string
	queryParams   url.Values
	headers       http.Header
	body          io.Reader
	contentType   string
	result        any
	rawDecode     bool
}

// Path sets the request path, relative to the client's base URL and API
// prefix. Path parameters use {name} syntax and are filled by PathParam.
func (rb *RequestBuilder) Path(path string) *RequestBuilder {
	rb.path = path
	return rb
}

// PathParam fills a {name} placeholder in the path.
func (rb *RequestBuilder) PathParam(key, value string) *RequestBuilder {
	rb.pathParams[key] = value
	return rb
}

// Query adds a single query parameter.
func (rb *RequestBuilder) Query(key, value string) *RequestBuilder {
	if rb.queryParams == nil {
		rb.queryParams = make(url.Values)
	}
	rb.queryParams.Set(key, value)
	return rb
}

// Queries adds multiple query parameters.
func (rb *RequestBuilder) Queries(params map[string]string) *RequestBuilder {
	if rb.queryParams == nil {
		rb.queryParams = make(url.Values)
	}
	for k, v := range params {
		rb.queryParams.Set(k, v)
	}
	return rb
}

// Header sets a request header.
func (rb *RequestBuilder) Header(key, value string) *RequestBuilder {
	rb.headers.Set(key, value)
	return rb
}

// Body sets the request body with content type detection:
// string → text, []byte → octet-stream, io.Reader → passthrough,
// url.Values → form, anything else → JSON.
func (rb *RequestBuilder) Body(v any) *RequestBuilder {
	if v == nil {
		return rb
	}
	switch body := v.(type) {
	case string:
		rb.body = strings.NewReader(body)
		rb.contentType = "text/plain; charset=utf-8"
	case []byte:
		rb.body = bytes.NewReader(body)
		rb.contentType = "application/octet-stream"
	case io.Reader:
		rb.body = body
	case url.Values:
		rb.body = strings.NewReader(body.Encode())
		rb.contentType = "application/x-www-form-urlencoded"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			rb.body = &bodyEncodingError{err: err}
			return rb
		}
		rb.body = bytes.NewReader(data)
		rb.contentType = "application/json"
	}
	return rb
}

// BodyForm sets form data as the request body.
func (rb *RequestBuilder) BodyForm(data map[string]string) *RequestBuilder {
	values := make(url.Values)
	for k, v := range data {
		values.Set(k, v)
	}
	return rb.Body(values)
}

// Decode sets the target the response envelope's data payload is unwrapped
// into. Error envelopes surface as *APIError.
func (rb *RequestBuilder) Decode(v any) *RequestBuilder {
	rb.result = v
	return rb
}

// DecodeRaw decodes the whole response body into v without envelope
// handling. Use for endpoints outside the enveloped API surface.
func (rb *RequestBuilder) DecodeRaw(v any) *RequestBuilder {
	rb.result = v
	rb.rawDecode = true
	return rb
}

// Get executes a GET request.
func (rb *RequestBuilder) Get(ctx context.Context, path ...string) (*Response, error) {
	if len(path) > 0 {
		rb.path = path[0]
	}
	return rb.execute(ctx, http.MethodGet)
}

// Post executes a POST request.
func (rb *RequestBuilder) Post(ctx context.Context, path ...string) (*Response, error) {
	if len(path) > 0 {
		rb.path = path[0]
	}
	return rb.execute(ctx, http.MethodPost)
}

// Put executes a PUT request.
func (rb *RequestBuilder) Put(ctx context.Context, path ...string) (*Response, error) {
	if len(path) > 0 {
		rb.path = path[0]
	}
	return rb.execute(ctx, http.MethodPut)
}

// Patch executes a PATCH request.
func (rb *RequestBuilder) Patch(ctx context.Context, path ...string) (*Response, error) {
	if len(path) > 0 {
		rb.path = path[0]
	}
	return rb.execute(ctx, http.MethodPatch)
}

// Delete executes a DELETE request.
func (rb *RequestBuilder) Delete(ctx context.Context, path ...string) (*Response, error) {
	if len(path) > 0 {
		rb.path = path[0]
	}
	return rb.execute(ctx, http.MethodDelete)
}

// execute builds and sends the HTTP request.
func (rb *RequestBuilder) execute(ctx context.Context, method string) (*Response, error) {
	targetURL, err := rb.buildURL()
	if err != nil {
		return nil, err
	}
	if encErr, ok := rb.body.(*bodyEncodingError); ok {
		return nil, encErr.err
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, rb.body)
	if err != nil {
		return nil, err
	}

	for k, values := range rb.client.defaultHeaders {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	for k, values := range rb.headers {
		req.Header[k] = values
	}
	if rb.contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", rb.contentType)
	}

	if rb.client.debug {
		logRequest(rb.client.config.Logger, rb.operationName, req)
	}

	start := time.Now()
	//nolint:bodyclose // closed via Response.Body()
	httpResp, err := rb.client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if rb.client.debug {
		logResponse(rb.client.config.Logger, rb.operationName, httpResp, time.Since(start))
	}

	resp := &Response{
		Response:  httpResp,
		result:    rb.result,
		rawDecode: rb.rawDecode,
	}

	if err := resp.decode(); err != nil {
		return resp, err
	}
	return resp, nil
}

// buildURL constructs the full URL from base URL, API prefix, path and
// query parameters.
func (rb *RequestBuilder) buildURL() (string, error) {
	path := rb.path
	for k, v := range rb.pathParams {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}

	fullURL := joinURL(rb.client.baseURL, rb.client.apiPrefix+"/"+strings.TrimPrefix(path, "/"))

	if len(rb.queryParams) > 0 {
		u, err := url.Parse(fullURL)
		if err != nil {
			return "", err
		}
		q := u.Query()
		for k, values := range rb.queryParams {
			for _, v := range values {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		fullURL = u.String()
	}
	return fullURL, nil
}

// bodyEncodingError is an io.Reader carrying a deferred marshal error.
type bodyEncodingError struct {
	err error
}

func (e *bodyEncodingError) Read(_ []byte) (int, error) {
	return 0, e.err
}
